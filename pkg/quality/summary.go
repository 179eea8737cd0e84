package quality

import (
	"fmt"
	"strings"
)

// Summary metric names.
const (
	MetricEnhancersTotal    = "enhancers_total"
	MetricEnhancersScored   = "enhancers_with_scores"
	MetricEnhancersHiConf   = "enhancers_high_confidence"
	MetricGeneEnhancerLinks = "gene_enhancer_mappings"

	minScoreCoverage = 0.7
)

type Recommendation struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Action  string `json:"action"`
}

type Summary struct {
	Species         string           `json:"species"`
	QualityStats    map[string]int64 `json:"quality_stats"`
	TissueCoverage  []TissueCoverage `json:"tissue_coverage"`
	Recommendations []Recommendation `json:"recommendations"`
}

func Summarize(speciesID string, stats map[string]int64, coverage []TissueCoverage) Summary {
	if coverage == nil {
		coverage = []TissueCoverage{}
	}
	return Summary{
		Species:         speciesID,
		QualityStats:    stats,
		TissueCoverage:  coverage,
		Recommendations: Recommend(stats, coverage),
	}
}

// Recommend flags poor score coverage and thinly covered tissues.
func Recommend(stats map[string]int64, coverage []TissueCoverage) []Recommendation {
	out := []Recommendation{}

	if total := stats[MetricEnhancersTotal]; total > 0 {
		ratio := float64(stats[MetricEnhancersScored]) / float64(total)
		if ratio < minScoreCoverage {
			out = append(out, Recommendation{
				Type:    "scores",
				Message: fmt.Sprintf("Only %.1f%% of enhancers have scores. Use high-confidence views for scored analysis.", ratio*100),
				Action:  "Filter to high-confidence enhancers",
			})
		}
	}

	var thin []string
	for _, c := range coverage {
		if c.CoverageLevel == CoverageCritical || c.CoverageLevel == CoverageLow {
			thin = append(thin, c.Tissue)
		}
	}
	if len(thin) > 0 {
		out = append(out, Recommendation{
			Type:    "tissues",
			Message: fmt.Sprintf("Limited data for %s. Consider alternative tissues.", strings.Join(thin, ", ")),
			Action:  "Use a tissue with medium or good coverage",
		})
	}
	return out
}
