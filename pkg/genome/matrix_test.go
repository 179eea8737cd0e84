package genome

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func enh(id, start, end int64, class string) EnhancerRecord {
	return EnhancerRecord{ID: id, Interval: Interval{Chrom: "chr11", Start: start, End: end}, Class: class}
}

func TestBuildBinsCoverRegion(t *testing.T) {
	for _, tc := range []struct {
		start, end int64
		nbins      int
	}{
		{0, 1000, 4},
		{27_579_000, 27_779_000, 30},
		{17, 1000, 7},
		{0, 3, 10},
	} {
		bins, err := BuildBins(tc.start, tc.end, tc.nbins)
		require.NoError(t, err)
		require.Len(t, bins, tc.nbins)

		assert.Equal(t, float64(tc.start), bins[0].Start)
		assert.Equal(t, float64(tc.end), bins[len(bins)-1].End)
		for i := 0; i+1 < len(bins); i++ {
			assert.Equal(t, bins[i].End, bins[i+1].Start, "bins %d and %d must touch", i, i+1)
			assert.Equal(t, i+1, bins[i].Index)
		}
	}
}

func TestBuildExample(t *testing.T) {
	m, err := Build([]EnhancerRecord{enh(1, 100, 300, ClassConserved)}, 0, 1000, []string{ClassConserved}, 4, false)
	require.NoError(t, err)

	assert.Equal(t, []Bin{
		{Index: 1, Start: 0, End: 250, Center: 125},
		{Index: 2, Start: 250, End: 500, Center: 375},
		{Index: 3, Start: 500, End: 750, Center: 625},
		{Index: 4, Start: 750, End: 1000, Center: 875},
	}, m.Bins)
	assert.Equal(t, [][]float64{{1, 1, 0, 0}}, m.Matrix)
	assert.Equal(t, 4, m.NBins)
	assert.False(t, m.Normalized)
}

func TestBuildEmptyRecordsKeepsShape(t *testing.T) {
	m, err := Build(nil, 0, 1000, []string{ClassConserved, ClassGained}, 4, true)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{0, 0, 0, 0}, {0, 0, 0, 0}}, m.Matrix)
	assert.Len(t, m.Bins, 4)
}

func TestBuildHalfOpenBoundaries(t *testing.T) {
	records := []EnhancerRecord{
		enh(1, 200, 250, ClassGained), // ends exactly at a bin edge
		enh(2, 250, 260, ClassGained), // starts exactly at a bin edge
		enh(3, 999, 1500, ClassGained),
	}
	m, err := Build(records, 0, 1000, []string{ClassGained}, 4, false)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 1, 0, 1}}, m.Matrix)
}

func TestBuildIgnoresUnrequestedClasses(t *testing.T) {
	records := []EnhancerRecord{
		enh(1, 0, 1000, ClassLost),
		enh(2, 0, 10, ClassConserved),
	}
	m, err := Build(records, 0, 1000, []string{ClassConserved}, 2, false)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 0}}, m.Matrix)
	assert.Nil(t, m.Row(ClassLost))
}

func TestBuildDuplicationDoublesCells(t *testing.T) {
	records := []EnhancerRecord{
		enh(1, 10, 400, ClassConserved),
		enh(2, 380, 720, ClassGained),
		enh(3, 600, 990, ClassConserved),
		enh(4, 0, 1000, ClassUnlabeled),
	}
	classes := DefaultClasses

	single, err := Build(records, 0, 1000, classes, 5, false)
	require.NoError(t, err)

	doubled, err := Build(append(append([]EnhancerRecord{}, records...), records...), 0, 1000, classes, 5, false)
	require.NoError(t, err)

	for r := range single.Matrix {
		for c := range single.Matrix[r] {
			assert.Equal(t, 2*single.Matrix[r][c], doubled.Matrix[r][c])
		}
	}
}

func TestBuildNormalize(t *testing.T) {
	records := []EnhancerRecord{
		enh(1, 0, 500, ClassConserved),
		enh(2, 0, 250, ClassConserved),
		enh(3, 0, 100, ClassConserved),
	}
	classes := []string{ClassConserved, ClassLost}

	m, err := Build(records, 0, 1000, classes, 4, true)
	require.NoError(t, err)
	assert.True(t, m.Normalized)
	assert.Equal(t, []float64{1, 1.0 / 3, 0, 0}, m.Row(ClassConserved))
	assert.Equal(t, []float64{0, 0, 0, 0}, m.Row(ClassLost))

	again := [][]float64{append([]float64{}, m.Matrix[0]...), append([]float64{}, m.Matrix[1]...)}
	normalizeRows(again)
	assert.Equal(t, m.Matrix, again)
}

func TestBuildInvalidArguments(t *testing.T) {
	classes := []string{ClassConserved}

	_, err := Build(nil, 100, 100, classes, 4, false)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = Build(nil, 0, 100, classes, 0, false)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = Build(nil, 0, 100, nil, 4, false)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = Build([]EnhancerRecord{enh(9, 50, 50, ClassConserved)}, 0, 100, classes, 4, false)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestWithTSS(t *testing.T) {
	m, err := Build(nil, 0, 10, []string{ClassLost}, 1, false)
	require.NoError(t, err)
	assert.Nil(t, m.TSSPosition)
	m.WithTSS(5)
	require.NotNil(t, m.TSSPosition)
	assert.EqualValues(t, 5, *m.TSSPosition)
}
