package render

import (
	"fmt"

	"github.com/regland/regland/pkg/expression"
)

const (
	LabelLogTPM = "log10(TPM+1)"
	LabelTPM    = "TPM (GTEx v10 median)"
	colorBar    = "#4c6ef5"
)

type ExpressionPlot struct {
	ExpressionData []expression.Entry `json:"expression_data"`
	PlotData       *Figure            `json:"plot_data"`
	Error          string             `json:"error,omitempty"`
}

// BuildExpressionPlot draws one bar per tissue group with its value printed
// just above the bar.
func BuildExpressionPlot(symbol string, values []expression.Entry, logScale bool) ExpressionPlot {
	if len(values) == 0 {
		return ExpressionPlot{ExpressionData: []expression.Entry{}, Error: "No expression data available"}
	}

	label := LabelTPM
	if logScale {
		label = LabelLogTPM
	}

	top := 0.0
	for _, v := range values {
		top = max(top, v.TPM)
	}

	trace := Trace{Type: "bar", Name: label, Marker: &Marker{}}
	notes := make([]Annotation, 0, len(values))
	for _, v := range values {
		trace.X = append(trace.X, v.Tissue)
		trace.Y = append(trace.Y, v.TPM)
		trace.Marker.Color = append(trace.Marker.Color, colorBar)
		notes = append(notes, Annotation{
			X:    v.Tissue,
			Y:    v.TPM + top*0.02,
			Text: fmt.Sprintf("%.2f", v.TPM),
			Font: &Font{Size: 10},
		})
	}

	return ExpressionPlot{
		ExpressionData: values,
		PlotData: &Figure{
			Data: []Trace{trace},
			Layout: Layout{
				Title:       "Expression - " + symbol,
				XAxis:       Axis{Title: "Tissue"},
				YAxis:       Axis{Title: label},
				Height:      350,
				Margin:      defaultMargin,
				Annotations: notes,
			},
		},
	}
}
