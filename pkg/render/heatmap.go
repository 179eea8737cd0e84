package render

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"go.uber.org/zap"

	"github.com/regland/regland/logger"
	"github.com/regland/regland/pkg/expression"
	"github.com/regland/regland/pkg/genome"
)

const (
	chartWidth    = "1100px"
	heatmapHeight = "360px"
	barHeight     = "320px"
	heatSteps     = 6
)

// HeatmapPage is everything drawn on the standalone heatmap page.
type HeatmapPage struct {
	Region     genome.Region
	Matrix     *genome.ConservationMatrix
	Expression []expression.Entry
	LogScale   bool
}

func binLabels(bins []genome.Bin) []string {
	out := make([]string, len(bins))
	for i, b := range bins {
		out[i] = fmt.Sprintf("%.3f", b.Center/1e6)
	}
	return out
}

func matrixMax(m [][]float64) float64 {
	top := 0.0
	for _, row := range m {
		for _, v := range row {
			top = max(top, v)
		}
	}
	return top
}

func newMatrixChart(p HeatmapPage) *charts.HeatMap {
	m := p.Matrix
	top := matrixMax(m.Matrix)
	if m.Normalized || top < 1 {
		top = 1
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: heatmapHeight}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("Enhancer conservation - %s", p.Region.Symbol),
			Subtitle: fmt.Sprintf("%s:%d-%d, %d bins", p.Region.Chrom, m.RegionStart, m.RegionEnd, m.NBins),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Name: "Mb", SplitArea: &opts.SplitArea{Show: opts.Bool(true)}}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: m.Classes, SplitArea: &opts.SplitArea{Show: opts.Bool(true)}}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(top),
			InRange:    &opts.VisualMapInRange{Color: gradient(colorEmpty, ClassColors[genome.ClassConserved], heatSteps)},
		}),
	)

	data := make([]opts.HeatMapData, 0, len(m.Classes)*len(m.Bins))
	for y, row := range m.Matrix {
		for x, v := range row {
			data = append(data, opts.HeatMapData{Value: [3]any{x, y, v}})
		}
	}
	hm.SetXAxis(binLabels(m.Bins)).AddSeries("enhancers", data)
	return hm
}

func newExpressionChart(p HeatmapPage) *charts.Bar {
	label := LabelTPM
	if p.LogScale {
		label = LabelLogTPM
	}
	tissues := make([]string, len(p.Expression))
	values := make([]opts.BarData, len(p.Expression))
	for i, e := range p.Expression {
		tissues[i] = e.Tissue
		values[i] = opts.BarData{Value: e.TPM, ItemStyle: &opts.ItemStyle{Color: colorBar}}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: barHeight}),
		charts.WithTitleOpts(opts.Title{Title: "Expression - " + p.Region.Symbol}),
		charts.WithYAxisOpts(opts.YAxis{Name: label}),
	)
	bar.SetXAxis(tissues).AddSeries(label, values, charts.WithLabelOpts(opts.Label{Show: opts.Bool(true)}))
	return bar
}

// RenderHeatmapPage writes an HTML page with the conservation heatmap and,
// when expression values are present, the tissue bar chart.
func RenderHeatmapPage(w io.Writer, p HeatmapPage) error {
	if p.Matrix == nil {
		return fmt.Errorf("%w: heatmap page needs a matrix", genome.ErrInvalidArgument)
	}
	logger.Info("Rendering heatmap page", zap.String("gene", p.Region.Symbol), zap.Int("nbins", p.Matrix.NBins))

	page := components.NewPage()
	page.SetPageTitle("RegLand - " + p.Region.Symbol)
	page.AddCharts(newMatrixChart(p))
	if len(p.Expression) > 0 {
		page.AddCharts(newExpressionChart(p))
	}
	return page.Render(w)
}
