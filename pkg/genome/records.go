package genome

import (
	"math"
	"strings"
)

// Enhancer class labels.
const (
	ClassConserved = "conserved"
	ClassGained    = "gained"
	ClassLost      = "lost"
	ClassUnlabeled = "unlabeled"
)

// DefaultClasses is the row order used when a request names no classes.
var DefaultClasses = []string{ClassConserved, ClassGained, ClassLost, ClassUnlabeled}

// Interval is a half-open range [Start, End) on one chromosome.
type Interval struct {
	SpeciesID string `json:"species_id,omitempty"`
	Chrom     string `json:"chrom"`
	Start     int64  `json:"start"`
	End       int64  `json:"end"`
}

func (iv Interval) Len() int64 {
	return iv.End - iv.Start
}

func (iv Interval) Valid() bool {
	return iv.Start < iv.End
}

// Overlaps reports whether iv intersects the half-open range [start, end).
func (iv Interval) Overlaps(start, end float64) bool {
	return float64(iv.End) > start && float64(iv.Start) < end
}

type EnhancerRecord struct {
	ID int64 `json:"enh_id"`
	Interval
	Tissue      *string  `json:"tissue"`
	Score       *float64 `json:"score"`
	Source      *string  `json:"source"`
	Class       string   `json:"class"`
	QualityFlag string   `json:"quality_flag,omitempty"`
}

type Gene struct {
	ID int64 `json:"gene_id"`
	Interval
	Symbol string `json:"symbol"`
}

type GWASRecord struct {
	SnpID             int64    `json:"snp_id"`
	Chrom             string   `json:"chrom"`
	Pos               int64    `json:"pos"`
	RSID              *string  `json:"rsid"`
	Trait             *string  `json:"trait"`
	PValue            *float64 `json:"pval"`
	Category          *string  `json:"category"`
	Source            *string  `json:"source"`
	Method            *string  `json:"method,omitempty"`
	DistanceBP        *int64   `json:"distance_bp,omitempty"`
	MappingConfidence string   `json:"mapping_confidence,omitempty"`
}

// MLog10P returns -log10(pval), or 0 when the p-value is absent or not positive.
func (g GWASRecord) MLog10P() float64 {
	if g.PValue == nil || *g.PValue <= 0 {
		return 0
	}
	return -math.Log10(*g.PValue)
}

type CTCFRecord struct {
	SiteID int64 `json:"site_id"`
	Interval
	Score     *float64 `json:"score"`
	MotifP    *float64 `json:"motif_p"`
	ConsClass string   `json:"cons_class"`
}

type TADDomain struct {
	TadID int64 `json:"tad_id"`
	Interval
	Source *string `json:"source"`
}

// NormalizeClasses trims and drops empty labels while keeping order.
// An empty result falls back to DefaultClasses.
func NormalizeClasses(classes []string) []string {
	out := make([]string, 0, len(classes))
	for _, c := range classes {
		c = strings.ToLower(strings.TrimSpace(c))
		if c != "" {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), DefaultClasses...)
	}
	return out
}
