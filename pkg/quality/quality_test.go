package quality

import (
	"testing"

	"github.com/regland/regland/pkg/genome"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }
func fp(f float64) *float64 { return &f }

func TestClassifyCoverage(t *testing.T) {
	cases := map[int]CoverageLevel{
		0:      CoverageCritical,
		23:     CoverageCritical,
		99:     CoverageCritical,
		100:    CoverageLow,
		999:    CoverageLow,
		1000:   CoverageMedium,
		9999:   CoverageMedium,
		10000:  CoverageGood,
		250000: CoverageGood,
	}
	for n, want := range cases {
		assert.Equal(t, want, ClassifyCoverage(n), "count %d", n)
	}
}

func TestPercentRoundsToOneDecimal(t *testing.T) {
	assert.Equal(t, 33.3, Percent(1, 3))
	assert.Equal(t, 66.7, Percent(2, 3))
	assert.Equal(t, 0.0, Percent(5, 0))
	assert.Equal(t, 100.0, Percent(4, 4))
}

func TestAssessGene(t *testing.T) {
	r := AssessGene("BDNF", "human_hg38", GeneStats{
		TotalEnhancers: 12,
		WithTissue:     9,
		WithScore:      3,
		HighConfidence: 2,
		ConservedCount: 4,
	}, []string{"human_hg38", "mouse_mm39"})

	assert.Equal(t, AvailabilityHigh, r.TissueAvailability)
	assert.Equal(t, AvailabilityLow, r.ScoreAvailability)
	assert.Equal(t, 33.3, r.ConservationPercent)
	assert.Equal(t, 12, r.TotalEnhancers)
	assert.Len(t, r.Recommendations, 1)

	empty := AssessGene("X", "human_hg38", GeneStats{}, nil)
	assert.Equal(t, AvailabilityNone, empty.TissueAvailability)
	assert.Equal(t, AvailabilityNone, empty.ScoreAvailability)
	assert.NotNil(t, empty.AvailableSpecies)
	assert.Len(t, empty.Recommendations, 1)
}

func TestAvailabilityUsesUnroundedRatio(t *testing.T) {
	r := AssessGene("BDNF", "human_hg38", GeneStats{
		TotalEnhancers: 10000,
		WithTissue:     6997,
		WithScore:      5996,
		ConservedCount: 6997,
	}, nil)
	assert.Equal(t, AvailabilityLow, r.TissueAvailability)
	assert.Equal(t, AvailabilityLow, r.ScoreAvailability)
	assert.Equal(t, 70.0, r.ConservationPercent)

	r = AssessGene("BDNF", "human_hg38", GeneStats{TotalEnhancers: 10, WithTissue: 7, WithScore: 6}, nil)
	assert.Equal(t, AvailabilityHigh, r.TissueAvailability)
	assert.Equal(t, AvailabilityHigh, r.ScoreAvailability)
}

func TestEnhancerFlag(t *testing.T) {
	hi := genome.EnhancerRecord{Tissue: strp("Brain"), Score: fp(0.9)}
	assert.Equal(t, FlagHighConfidence, EnhancerFlag(hi, "brain"))
	assert.Equal(t, FlagStandard, EnhancerFlag(hi, "Other"))

	edge := genome.EnhancerRecord{Tissue: strp("Brain"), Score: fp(0.5)}
	assert.Equal(t, FlagStandard, EnhancerFlag(edge, "Brain"))

	assert.Equal(t, FlagTissueUnknown, EnhancerFlag(genome.EnhancerRecord{Tissue: strp("unknown"), Score: fp(1)}, "Brain"))
	assert.Equal(t, FlagTissueUnknown, EnhancerFlag(genome.EnhancerRecord{}, "Brain"))
	assert.Equal(t, FlagScoreMissing, EnhancerFlag(genome.EnhancerRecord{Tissue: strp("Heart")}, "Heart"))
}

func TestDecorate(t *testing.T) {
	recs := []genome.EnhancerRecord{
		{Tissue: strp("Liver"), Score: fp(0.8)},
		{Tissue: strp("Liver")},
		{},
	}
	counts := DecorateEnhancers(recs, "Liver")
	assert.Equal(t, map[string]int{FlagHighConfidence: 1, FlagScoreMissing: 1, FlagTissueUnknown: 1}, counts)
	assert.Equal(t, FlagHighConfidence, recs[0].QualityFlag)

	snps := []genome.GWASRecord{{Method: strp("promoter")}, {Method: strp("nearest")}, {Method: strp("window500k")}, {}}
	DecorateGWAS(snps)
	assert.Equal(t, ConfidenceHigh, snps[0].MappingConfidence)
	assert.Equal(t, ConfidenceMedium, snps[1].MappingConfidence)
	assert.Equal(t, ConfidenceLow, snps[2].MappingConfidence)
	assert.Equal(t, ConfidenceUnknown, snps[3].MappingConfidence)
}

func TestAdvise(t *testing.T) {
	coverage := []TissueCoverage{
		NewTissueCoverage("Brain", 40000),
		NewTissueCoverage("Heart", 5000),
		NewTissueCoverage("Liver", 9),
		NewTissueCoverage("Kidney", 500),
	}

	info := Advise("human_hg38", "Liver", coverage, nil)
	require.Len(t, info.Warnings, 1)
	assert.Equal(t, "data_scarcity", info.Warnings[0].Type)
	assert.Equal(t, "error", info.Warnings[0].Severity)
	assert.Contains(t, info.Warnings[0].Message, "9 enhancers")
	assert.Contains(t, info.Warnings[0].Message, "consider using Brain or Heart")
	assert.Len(t, info.AvailableTissues, 4)

	info = Advise("human_hg38", "Kidney", coverage, map[string]int{FlagStandard: 2})
	require.Len(t, info.Warnings, 1)
	assert.Equal(t, "tissue_coverage", info.Warnings[0].Type)
	assert.Contains(t, info.Warnings[0].Message, "Brain or Heart")

	info = Advise("human_hg38", "Brain", coverage, nil)
	assert.Empty(t, info.Warnings)
	assert.Equal(t, CoverageGood, info.TissueCoverage.CoverageLevel)

	info = Advise("human_hg38", "Lung", coverage, nil)
	assert.Equal(t, 0, info.TissueCoverage.EnhancerCount)
	assert.Equal(t, "data_scarcity", info.Warnings[0].Type)
	assert.Contains(t, info.Warnings[0].Message, "Brain or Heart")
}

func TestRecommend(t *testing.T) {
	recs := Recommend(map[string]int64{MetricEnhancersTotal: 100, MetricEnhancersScored: 50}, []TissueCoverage{
		NewTissueCoverage("Brain", 50000),
		NewTissueCoverage("Liver", 9),
	})
	require.Len(t, recs, 2)
	assert.Equal(t, "scores", recs[0].Type)
	assert.Contains(t, recs[0].Message, "50.0%")
	assert.Equal(t, "tissues", recs[1].Type)
	assert.Contains(t, recs[1].Message, "Liver")

	assert.Empty(t, Recommend(map[string]int64{MetricEnhancersTotal: 10, MetricEnhancersScored: 10}, nil))

	s := Summarize("mouse_mm39", map[string]int64{}, nil)
	assert.NotNil(t, s.TissueCoverage)
	assert.Empty(t, s.Recommendations)
}
