package render

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/regland/regland/pkg/expression"
	"github.com/regland/regland/pkg/genome"
)

func testRegion() genome.Region {
	return genome.Region{
		GeneID: 1, Symbol: "BDNF", SpeciesID: "human_hg38", Chrom: "chr11",
		TSS: 1_000, Start: 0, End: 2_000, GeneStart: 1_000, GeneEnd: 5_000, FlankKb: 1,
	}
}

func enh(id, start, end int64, class string) genome.EnhancerRecord {
	return genome.EnhancerRecord{ID: id, Interval: genome.Interval{Chrom: "chr11", Start: start, End: end}, Class: class}
}

func pval(p float64) *float64 { return &p }

func TestGradient(t *testing.T) {
	g := gradient("#000000", "#ffffff", 3)
	assert.Equal(t, []string{"#000000", "#808080", "#ffffff"}, g)
	assert.Equal(t, []string{"#31c06a"}, gradient("#000000", "#31c06a", 1))
	assert.Equal(t, ClassColors[genome.ClassUnlabeled], ClassColor("mystery"))
}

func TestBuildTracksStacked(t *testing.T) {
	enhancers := []genome.EnhancerRecord{
		enh(1, -500, 100, genome.ClassConserved),
		enh(2, 300, 400, genome.ClassLost),
		enh(3, 2_000, 2_100, genome.ClassGained), // starts at the window end
	}
	snps := []genome.GWASRecord{{SnpID: 1, Pos: 900, PValue: pval(1e-2)}, {SnpID: 2, Pos: 950, PValue: pval(1e-100)}}

	tr := BuildTracks(testRegion(), enhancers, snps, TrackOptions{StackTracks: true, ShowGene: true, ShowSNPs: true, MarkTSS: true})
	assert.Equal(t, 3, tr.EnhancerCount)
	assert.Equal(t, 2, tr.SnpCount)

	shapes := tr.PlotData.Layout.Shapes
	// two enhancers, gene body, TSS, two SNPs
	require.Len(t, shapes, 6)

	assert.Equal(t, Shape{Type: "rect", X0: 0, X1: 100, Y0: 0.67, Y1: 0.83, FillColor: "#31c06a"}, roundShape(shapes[0]))
	assert.InDelta(t, 0.37, shapes[1].Y0, 1e-9)
	assert.Equal(t, "#8f9aa7", shapes[1].FillColor)

	gene := shapes[2]
	assert.Equal(t, 1_000.0, gene.X0)
	assert.Equal(t, 2_000.0, gene.X1, "gene body is clipped to the window")
	assert.Equal(t, colorGeneBody, gene.FillColor)

	assert.Equal(t, "dash", shapes[3].Line.Dash)
	assert.Equal(t, 1_000.0, shapes[3].X0)
	require.Len(t, tr.PlotData.Layout.Annotations, 1)

	assert.InDelta(t, 0.90+2.0/35, shapes[4].Y1, 1e-9)
	assert.Equal(t, 0.98, shapes[5].Y1)

	assert.Equal(t, []float64{0, 2_000}, tr.PlotData.Layout.XAxis.Range)
	assert.Equal(t, []float64{0.08, 1.02}, tr.PlotData.Layout.YAxis.Range)
	assert.Equal(t, 400, tr.PlotData.Layout.Height)
}

func roundShape(s Shape) Shape {
	round := func(f float64) float64 { return float64(int64(f*100+0.5)) / 100 }
	s.Y0, s.Y1 = round(s.Y0), round(s.Y1)
	return s
}

func TestBuildTracksFlatAndCaps(t *testing.T) {
	var enhancers []genome.EnhancerRecord
	for i := range MaxTrackEnhancers + 20 {
		enhancers = append(enhancers, enh(int64(i), 10, 20, genome.ClassGained))
	}
	var snps []genome.GWASRecord
	for i := range MaxTrackSNPs + 5 {
		snps = append(snps, genome.GWASRecord{SnpID: int64(i), Pos: 15})
	}

	tr := BuildTracks(testRegion(), enhancers, snps, TrackOptions{ShowSNPs: true})
	shapes := tr.PlotData.Layout.Shapes
	require.Len(t, shapes, MaxTrackEnhancers+MaxTrackSNPs)
	assert.Equal(t, 0.6, shapes[0].Y0)
	assert.Equal(t, 0.8, shapes[0].Y1)
	assert.Equal(t, 0.90, shapes[len(shapes)-1].Y1, "missing p-value draws a flat stem")
	assert.Empty(t, tr.PlotData.Layout.Annotations)
}

func TestTracksJSON(t *testing.T) {
	tr := BuildTracks(testRegion(), nil, nil, TrackOptions{MarkTSS: true})
	raw, err := json.Marshal(tr)
	require.NoError(t, err)

	assert.Equal(t, "Genome Tracks - BDNF", gjson.GetBytes(raw, "plot_data.layout.title").String())
	assert.False(t, gjson.GetBytes(raw, "plot_data.layout.yaxis.showticklabels").Bool())
	assert.Equal(t, "line", gjson.GetBytes(raw, "plot_data.layout.shapes.0.type").String())
	assert.True(t, gjson.GetBytes(raw, "plot_data.data").IsArray())
}

func TestBuildExpressionPlot(t *testing.T) {
	values := []expression.Entry{
		{Symbol: "BDNF", Tissue: "Brain", TPM: 15},
		{Symbol: "BDNF", Tissue: "Heart", TPM: 2},
		{Symbol: "BDNF", Tissue: "Liver", TPM: 0.5},
	}
	p := BuildExpressionPlot("BDNF", values, false)
	require.NotNil(t, p.PlotData)
	assert.Equal(t, "Expression - BDNF", p.PlotData.Layout.Title)
	assert.Equal(t, LabelTPM, p.PlotData.Layout.YAxis.Title)
	assert.Equal(t, []string{"Brain", "Heart", "Liver"}, p.PlotData.Data[0].X)
	assert.Equal(t, 350, p.PlotData.Layout.Height)

	notes := p.PlotData.Layout.Annotations
	require.Len(t, notes, 3)
	assert.Equal(t, "15.00", notes[0].Text)
	assert.InDelta(t, 15.3, notes[0].Y, 1e-9)
	assert.Equal(t, "0.50", notes[2].Text)

	assert.Equal(t, LabelLogTPM, BuildExpressionPlot("BDNF", values, true).PlotData.Layout.YAxis.Title)

	empty := BuildExpressionPlot("BDNF", nil, false)
	assert.Nil(t, empty.PlotData)
	assert.NotEmpty(t, empty.Error)
}

func TestUCSCURL(t *testing.T) {
	assert.Equal(t,
		"https://genome.ucsc.edu/cgi-bin/hgTracks?db=hg38&position=chr11:27,554,893-27,754,893",
		UCSCURL("human_hg38", "chr11", 27_554_893, 27_754_893))
	assert.Equal(t,
		"https://genome.ucsc.edu/cgi-bin/hgTracks?db=mm39&position=chr2:0-100",
		UCSCURL("mouse_mm39", "chr2", 0, 100))
	assert.Empty(t, UCSCURL("zebrafish_danRer11", "chr1", 1, 2))
}

func TestRenderHeatmapPage(t *testing.T) {
	m, err := genome.Build([]genome.EnhancerRecord{enh(1, 0, 500, genome.ClassConserved)}, 0, 2_000, genome.DefaultClasses, 4, false)
	require.NoError(t, err)

	var buf bytes.Buffer
	err = RenderHeatmapPage(&buf, HeatmapPage{
		Region:     testRegion(),
		Matrix:     m,
		Expression: []expression.Entry{{Symbol: "BDNF", Tissue: "Brain", TPM: 3}},
	})
	require.NoError(t, err)
	html := buf.String()
	assert.Contains(t, html, "RegLand - BDNF")
	assert.Contains(t, html, "Enhancer conservation - BDNF")
	assert.Contains(t, html, "Expression - BDNF")

	err = RenderHeatmapPage(&buf, HeatmapPage{Region: testRegion()})
	assert.ErrorIs(t, err, genome.ErrInvalidArgument)
}
