package quality

import (
	"slices"
	"strings"
)

type CoverageLevel string

const (
	CoverageCritical CoverageLevel = "critical"
	CoverageLow      CoverageLevel = "low"
	CoverageMedium   CoverageLevel = "medium"
	CoverageGood     CoverageLevel = "good"
)

// Coverage thresholds on enhancer counts per tissue.
const (
	criticalBelow = 100
	lowBelow      = 1000
	mediumBelow   = 10000
)

func ClassifyCoverage(count int) CoverageLevel {
	switch {
	case count < criticalBelow:
		return CoverageCritical
	case count < lowBelow:
		return CoverageLow
	case count < mediumBelow:
		return CoverageMedium
	default:
		return CoverageGood
	}
}

// TissueCoverage is the number of high-confidence enhancers for one tissue.
type TissueCoverage struct {
	Tissue        string        `json:"tissue"`
	EnhancerCount int           `json:"enhancer_count"`
	CoverageLevel CoverageLevel `json:"coverage_level"`
}

func NewTissueCoverage(tissue string, count int) TissueCoverage {
	return TissueCoverage{Tissue: tissue, EnhancerCount: count, CoverageLevel: ClassifyCoverage(count)}
}

// SupportedTissues are the tissues with curated enhancer sets.
var SupportedTissues = []string{"Brain", "Heart", "Liver"}

func IsSupportedTissue(tissue string) bool {
	return slices.ContainsFunc(SupportedTissues, func(t string) bool {
		return strings.EqualFold(t, tissue)
	})
}

// CoverageFor finds the entry for tissue, matching case-insensitively.
func CoverageFor(coverage []TissueCoverage, tissue string) (TissueCoverage, bool) {
	for _, c := range coverage {
		if strings.EqualFold(c.Tissue, tissue) {
			return c, true
		}
	}
	return TissueCoverage{}, false
}
