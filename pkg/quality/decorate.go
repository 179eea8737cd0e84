package quality

import (
	"fmt"
	"strings"

	"github.com/regland/regland/pkg/genome"
)

// Enhancer quality flags.
const (
	FlagHighConfidence = "high_confidence"
	FlagTissueUnknown  = "tissue_unknown"
	FlagScoreMissing   = "score_missing"
	FlagStandard       = "standard"
)

// HighConfidenceScore is the score an enhancer must exceed to be high confidence.
const HighConfidenceScore = 0.5

// GWAS mapping confidence tiers.
const (
	ConfidenceHigh    = "high_confidence"
	ConfidenceMedium  = "medium_confidence"
	ConfidenceLow     = "low_confidence"
	ConfidenceUnknown = "unknown"
)

// EnhancerFlag classifies one enhancer for the requested tissue.
func EnhancerFlag(rec genome.EnhancerRecord, tissue string) string {
	recTissue := ""
	if rec.Tissue != nil {
		recTissue = *rec.Tissue
	}
	if IsSupportedTissue(tissue) && strings.EqualFold(recTissue, tissue) &&
		rec.Score != nil && *rec.Score > HighConfidenceScore {
		return FlagHighConfidence
	}
	switch {
	case recTissue == "" || strings.EqualFold(recTissue, "unknown"):
		return FlagTissueUnknown
	case rec.Score == nil:
		return FlagScoreMissing
	default:
		return FlagStandard
	}
}

// MappingConfidence maps a gene-to-enhancer linking method to a tier.
func MappingConfidence(method string) string {
	switch strings.ToLower(method) {
	case "promoter", "overlap":
		return ConfidenceHigh
	case "nearest":
		return ConfidenceMedium
	case "window500k":
		return ConfidenceLow
	default:
		return ConfidenceUnknown
	}
}

// DecorateEnhancers sets QualityFlag in place and returns counts per flag.
func DecorateEnhancers(records []genome.EnhancerRecord, tissue string) map[string]int {
	counts := map[string]int{}
	for i := range records {
		f := EnhancerFlag(records[i], tissue)
		records[i].QualityFlag = f
		counts[f]++
	}
	return counts
}

// DecorateGWAS sets MappingConfidence in place.
func DecorateGWAS(snps []genome.GWASRecord) {
	for i := range snps {
		method := ""
		if snps[i].Method != nil {
			method = *snps[i].Method
		}
		snps[i].MappingConfidence = MappingConfidence(method)
	}
}

type Warning struct {
	Type     string `json:"type"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// Info is attached to region responses when quality decoration is requested.
type Info struct {
	TissueCoverage   TissueCoverage            `json:"tissue_coverage"`
	AvailableTissues map[string]TissueCoverage `json:"available_tissues"`
	DataQualityFlags map[string]int            `json:"data_quality_flags"`
	Warnings         []Warning                 `json:"warnings"`
}

// Advise builds the quality block for a tissue given the species coverage.
// Critical coverage gives a data_scarcity error and low coverage a
// tissue_coverage warning; both name the better covered tissues.
func Advise(speciesID, tissue string, coverage []TissueCoverage, flags map[string]int) Info {
	info := Info{
		AvailableTissues: make(map[string]TissueCoverage, len(coverage)),
		DataQualityFlags: flags,
		Warnings:         []Warning{},
	}
	if info.DataQualityFlags == nil {
		info.DataQualityFlags = map[string]int{}
	}
	for _, c := range coverage {
		info.AvailableTissues[c.Tissue] = c
	}

	current, ok := CoverageFor(coverage, tissue)
	if !ok {
		current = NewTissueCoverage(tissue, 0)
	}
	info.TissueCoverage = current

	switch current.CoverageLevel {
	case CoverageCritical:
		info.Warnings = append(info.Warnings, Warning{
			Type:     "data_scarcity",
			Message:  fmt.Sprintf("%s enhancer data for %s is very limited (%d enhancers). Results may not be representative; consider using %s.", tissue, speciesID, current.EnhancerCount, betterTissues(coverage, tissue)),
			Severity: "error",
		})
	case CoverageLow:
		info.Warnings = append(info.Warnings, Warning{
			Type:     "tissue_coverage",
			Message:  fmt.Sprintf("Limited %s data available (%d enhancers). Consider using %s for %s.", tissue, current.EnhancerCount, betterTissues(coverage, tissue), speciesID),
			Severity: "warning",
		})
	}
	return info
}

// betterTissues names the best covered supported tissues other than the current one.
func betterTissues(coverage []TissueCoverage, current string) string {
	var names []string
	for _, c := range coverage {
		if strings.EqualFold(c.Tissue, current) || !IsSupportedTissue(c.Tissue) {
			continue
		}
		if c.CoverageLevel == CoverageMedium || c.CoverageLevel == CoverageGood {
			names = append(names, c.Tissue)
		}
	}
	if len(names) == 0 {
		return "another tissue"
	}
	return strings.Join(names, " or ")
}
