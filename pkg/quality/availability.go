package quality

import (
	"github.com/shopspring/decimal"
)

type Availability string

const (
	AvailabilityHigh Availability = "high"
	AvailabilityLow  Availability = "low"
	AvailabilityNone Availability = "none"
)

// GeneStats are raw counts over the enhancers linked to one gene.
type GeneStats struct {
	TotalEnhancers int `json:"total_enhancers"`
	WithTissue     int `json:"with_tissue"`
	WithScore      int `json:"with_score"`
	HighConfidence int `json:"high_confidence"`
	ConservedCount int `json:"conserved_count"`
}

type GeneReport struct {
	Symbol              string       `json:"gene_symbol"`
	SpeciesID           string       `json:"species_id"`
	TotalEnhancers      int          `json:"total_enhancers"`
	HighConfidence      int          `json:"high_confidence_enhancers"`
	TissueAvailability  Availability `json:"tissue_availability"`
	ScoreAvailability   Availability `json:"score_availability"`
	ConservationPercent float64      `json:"conservation_percent"`
	AvailableSpecies    []string     `json:"available_species"`
	Recommendations     []string     `json:"recommendations"`
}

// ratio returns part/total*100 unrounded; zero when total is not positive.
func ratio(part, total int) decimal.Decimal {
	if total <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(part)).Mul(decimal.NewFromInt(100)).Div(decimal.NewFromInt(int64(total)))
}

// Percent returns part/total*100 rounded half-up to one decimal place.
func Percent(part, total int) float64 {
	f, _ := ratio(part, total).Round(1).Float64()
	return f
}

// tier compares an unrounded percentage against the high and low cut-offs.
func tier(pct decimal.Decimal, high, low int64) Availability {
	switch {
	case pct.GreaterThanOrEqual(decimal.NewFromInt(high)):
		return AvailabilityHigh
	case pct.GreaterThanOrEqual(decimal.NewFromInt(low)):
		return AvailabilityLow
	default:
		return AvailabilityNone
	}
}

func tissueAvailability(pct decimal.Decimal) Availability { return tier(pct, 70, 30) }

func scoreAvailability(pct decimal.Decimal) Availability { return tier(pct, 60, 20) }

// AssessGene turns raw per-gene counts into a report.
func AssessGene(symbol, speciesID string, stats GeneStats, species []string) GeneReport {
	r := GeneReport{
		Symbol:              symbol,
		SpeciesID:           speciesID,
		TotalEnhancers:      stats.TotalEnhancers,
		HighConfidence:      stats.HighConfidence,
		TissueAvailability:  tissueAvailability(ratio(stats.WithTissue, stats.TotalEnhancers)),
		ScoreAvailability:   scoreAvailability(ratio(stats.WithScore, stats.TotalEnhancers)),
		ConservationPercent: Percent(stats.ConservedCount, stats.TotalEnhancers),
		AvailableSpecies:    species,
		Recommendations:     []string{},
	}
	if r.AvailableSpecies == nil {
		r.AvailableSpecies = []string{}
	}

	if stats.TotalEnhancers == 0 {
		r.Recommendations = append(r.Recommendations, "No enhancers are linked to this gene; try another species or a wider window.")
		return r
	}
	if r.TissueAvailability == AvailabilityNone {
		r.Recommendations = append(r.Recommendations, "Most enhancers lack tissue labels; use tissue 'Other' to see all of them.")
	}
	if r.ScoreAvailability != AvailabilityHigh {
		r.Recommendations = append(r.Recommendations, "Many enhancers have no activity score; score-based ranking is unreliable.")
	}
	if stats.HighConfidence == 0 {
		r.Recommendations = append(r.Recommendations, "No high-confidence enhancers; interpret the heatmap as exploratory.")
	}
	return r
}
