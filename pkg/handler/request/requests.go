package request

import (
	"strings"

	"github.com/regland/regland/pkg/genome"
	"github.com/regland/regland/pkg/region"
)

// Region window and enhancer filter shared by combined-data and export.
type RegionRequest struct {
	Gene    string   `json:"gene"`
	Species string   `json:"species"`
	Tissue  string   `json:"tissue"`
	TSSKb   int      `json:"tss_kb"`
	Classes []string `json:"classes"`
}

func (r RegionRequest) Query() region.Query {
	return region.Query{
		Gene:    r.Gene,
		Species: r.Species,
		Tissue:  r.Tissue,
		TSSKb:   r.TSSKb,
		Classes: r.Classes,
	}
}

func defaultRegionRequest() RegionRequest {
	return RegionRequest{
		Gene:    region.DefaultGene,
		Species: region.DefaultSpecies,
		Tissue:  region.DefaultTissue,
		TSSKb:   region.DefaultTSSKb,
		Classes: append([]string(nil), genome.DefaultClasses...),
	}
}

// Combined-data request body
type CombinedRequest struct {
	RegionRequest
	NBins         int  `json:"nbins"`
	NormalizeRows bool `json:"normalize_rows"`
	MarkTSS       bool `json:"mark_tss"`
	StackTracks   bool `json:"stack_tracks"`
	ShowGene      bool `json:"show_gene"`
	ShowSNPs      bool `json:"show_snps"`
	LogExpression bool `json:"log_expression"`
	Enhanced      bool `json:"enhanced"`
}

func NewCombinedRequest() CombinedRequest {
	d := region.DefaultParams()
	return CombinedRequest{
		RegionRequest: defaultRegionRequest(),
		NBins:         d.NBins,
		NormalizeRows: d.NormalizeRows,
		MarkTSS:       d.MarkTSS,
		StackTracks:   d.StackTracks,
		ShowGene:      d.ShowGene,
		ShowSNPs:      d.ShowSNPs,
		LogExpression: d.LogExpression,
		Enhanced:      d.Enhanced,
	}
}

func (r CombinedRequest) Params() region.Params {
	return region.Params{
		Query:         r.Query(),
		NBins:         r.NBins,
		NormalizeRows: r.NormalizeRows,
		MarkTSS:       r.MarkTSS,
		StackTracks:   r.StackTracks,
		ShowGene:      r.ShowGene,
		ShowSNPs:      r.ShowSNPs,
		LogExpression: r.LogExpression,
		Enhanced:      r.Enhanced,
	}
}

// CTCF analysis request body
type CTCFRequest struct {
	Gene          string   `json:"gene"`
	Species       string   `json:"species"`
	LinkMode      string   `json:"link_mode"`
	TSSKbCTCF     int      `json:"tss_kb_ctcf"`
	CTCFGroups    []string `json:"ctcf_cons_groups"`
	EnhGroups     []string `json:"enh_cons_groups"`
	CTCFDistCapKb int      `json:"ctcf_dist_cap_kb"`
}

func NewCTCFRequest() CTCFRequest {
	d := region.DefaultCTCFParams()
	return CTCFRequest{
		Species:       d.Species,
		LinkMode:      d.LinkMode,
		TSSKbCTCF:     d.TSSKb,
		CTCFGroups:    append([]string(nil), d.CTCFClasses...),
		EnhGroups:     append([]string(nil), d.EnhancerClasses...),
		CTCFDistCapKb: d.DistCapKb,
	}
}

func (r CTCFRequest) Params() region.CTCFParams {
	return region.CTCFParams{
		Gene:            r.Gene,
		Species:         r.Species,
		LinkMode:        strings.ToLower(r.LinkMode),
		TSSKb:           r.TSSKbCTCF,
		CTCFClasses:     r.CTCFGroups,
		EnhancerClasses: r.EnhGroups,
		DistCapKb:       r.CTCFDistCapKb,
	}
}

// GWAS trait listing
type TraitsRequest struct {
	Search   string `json:"search"`
	Category string `json:"category"`
	Limit    int    `json:"limit"`
}

type TraitSNPsRequest struct {
	Trait string `json:"trait"`
	Limit int    `json:"limit"`
}

// Export request. Format is the file format (csv only), DataType the table.
type ExportRequest struct {
	RegionRequest
	Format   string `json:"type"`
	DataType string `json:"data_type"`
}

func NewExportRequest() ExportRequest {
	return ExportRequest{
		RegionRequest: defaultRegionRequest(),
		Format:        "csv",
		DataType:      region.ExportEnhancers,
	}
}
