package render

import (
	"math"

	"github.com/regland/regland/pkg/genome"
)

// Drawing caps.
const (
	MaxTrackEnhancers = 200
	MaxTrackSNPs      = 50
)

var stackedRows = map[string]float64{
	genome.ClassConserved: 0.75,
	genome.ClassGained:    0.6,
	genome.ClassLost:      0.45,
	genome.ClassUnlabeled: 0.3,
}

const (
	rowHalfHeight = 0.08
	snpBase       = 0.90
	snpTop        = 0.98
)

type TrackOptions struct {
	StackTracks bool
	ShowGene    bool
	ShowSNPs    bool
	MarkTSS     bool
}

type Tracks struct {
	PlotData      Figure `json:"plot_data"`
	EnhancerCount int    `json:"enhancer_count"`
	SnpCount      int    `json:"snp_count"`
}

// BuildTracks lays enhancers, the gene body, the TSS and GWAS SNPs over the
// region window. Shapes are clipped to the window.
func BuildTracks(region genome.Region, enhancers []genome.EnhancerRecord, snps []genome.GWASRecord, o TrackOptions) Tracks {
	lo, hi := float64(region.Start), float64(region.End)
	var shapes []Shape
	var notes []Annotation

	drawn := 0
	for _, e := range enhancers {
		if drawn == MaxTrackEnhancers {
			break
		}
		if !e.Overlaps(lo, hi) {
			continue
		}
		drawn++
		y0, y1 := 0.6, 0.8
		if o.StackTracks {
			y, ok := stackedRows[e.Class]
			if !ok {
				y = stackedRows[genome.ClassUnlabeled]
			}
			y0, y1 = y-rowHalfHeight, y+rowHalfHeight
		}
		shapes = append(shapes, Shape{
			Type:      "rect",
			X0:        math.Max(float64(e.Start), lo),
			X1:        math.Min(float64(e.End), hi),
			Y0:        y0,
			Y1:        y1,
			FillColor: ClassColor(e.Class),
		})
	}

	if o.ShowGene && float64(region.GeneEnd) > lo && float64(region.GeneStart) < hi {
		shapes = append(shapes, Shape{
			Type:      "rect",
			X0:        math.Max(float64(region.GeneStart), lo),
			X1:        math.Min(float64(region.GeneEnd), hi),
			Y0:        0.10,
			Y1:        0.16,
			FillColor: colorGeneBody,
		})
	}

	if o.MarkTSS {
		tss := float64(region.TSS)
		shapes = append(shapes, Shape{
			Type: "line",
			X0:   tss,
			X1:   tss,
			Y0:   0.16,
			Y1:   0.92,
			Line: Line{Color: colorTSS, Width: 2, Dash: "dash"},
		})
		notes = append(notes, Annotation{X: tss, Y: 0.95, Text: "TSS", Font: &Font{Size: 10, Color: colorTSS}})
	}

	if o.ShowSNPs {
		for i, s := range snps {
			if i == MaxTrackSNPs {
				break
			}
			pos := float64(s.Pos)
			shapes = append(shapes, Shape{
				Type: "line",
				X0:   pos,
				X1:   pos,
				Y0:   snpBase,
				Y1:   SNPHeight(s.MLog10P()),
				Line: Line{Color: colorSNP, Width: 2},
			})
		}
	}

	return Tracks{
		PlotData: Figure{
			Data: []Trace{},
			Layout: Layout{
				Title:       "Genome Tracks - " + region.Symbol,
				XAxis:       Axis{Title: "Genomic Position", Range: []float64{lo, hi}, TickFormat: ",d"},
				YAxis:       Axis{Range: []float64{0.08, 1.02}, ShowTickLabels: boolPtr(false)},
				Height:      400,
				Margin:      defaultMargin,
				Shapes:      shapes,
				Annotations: notes,
			},
		},
		EnhancerCount: len(enhancers),
		SnpCount:      len(snps),
	}
}

// SNPHeight maps -log10(p) onto the stem top, capped at the track ceiling.
func SNPHeight(mlog10p float64) float64 {
	return math.Min(snpBase+mlog10p/35, snpTop)
}
