package genome

import (
	"fmt"

	"github.com/biogo/store/interval"
)

type Bin struct {
	Index  int     `json:"bin"`
	Start  float64 `json:"start"`
	End    float64 `json:"end"`
	Center float64 `json:"center"`
}

// ConservationMatrix holds per-class overlap counts; rows follow Classes,
// columns follow Bins.
type ConservationMatrix struct {
	Bins        []Bin       `json:"bins"`
	Classes     []string    `json:"classes"`
	Matrix      [][]float64 `json:"matrix"`
	RegionStart int64       `json:"region_start"`
	RegionEnd   int64       `json:"region_end"`
	NBins       int         `json:"nbins"`
	Normalized  bool        `json:"normalized"`
	TSSPosition *int64      `json:"tss_position"`
}

// WithTSS records the TSS coordinate for rendering.
func (m *ConservationMatrix) WithTSS(tss int64) *ConservationMatrix {
	m.TSSPosition = &tss
	return m
}

// Row returns the counts for a class label, or nil if the class is absent.
func (m *ConservationMatrix) Row(class string) []float64 {
	for i, c := range m.Classes {
		if c == class {
			return m.Matrix[i]
		}
	}
	return nil
}

// BuildBins splits [start, end) into nbins equal-width bins numbered from 1.
// Edges are computed once so neighbouring bins share the exact same boundary.
func BuildBins(start, end int64, nbins int) ([]Bin, error) {
	if end <= start {
		return nil, fmt.Errorf("%w: region end %d must be greater than start %d", ErrInvalidArgument, end, start)
	}
	if nbins < 1 {
		return nil, fmt.Errorf("%w: nbins must be at least 1, got %d", ErrInvalidArgument, nbins)
	}

	width := end - start
	edges := make([]float64, nbins+1)
	for i := 0; i <= nbins; i++ {
		edges[i] = float64(start) + float64(int64(i)*width)/float64(nbins)
	}

	bins := make([]Bin, nbins)
	for i := range bins {
		bins[i] = Bin{
			Index:  i + 1,
			Start:  edges[i],
			End:    edges[i+1],
			Center: (edges[i] + edges[i+1]) / 2,
		}
	}
	return bins, nil
}

// Build counts, per class and per bin, the records overlapping that bin.
// A record spanning several bins is counted in each of them. With normalize
// set every row is divided by its own maximum; all-zero rows stay zero.
func Build(records []EnhancerRecord, regionStart, regionEnd int64, classes []string, nbins int, normalize bool) (*ConservationMatrix, error) {
	if len(classes) == 0 {
		return nil, fmt.Errorf("%w: class list is empty", ErrInvalidArgument)
	}
	bins, err := BuildBins(regionStart, regionEnd, nbins)
	if err != nil {
		return nil, err
	}

	index, err := newClassIndex(records, classes)
	if err != nil {
		return nil, err
	}

	matrix := make([][]float64, len(classes))
	for row, class := range classes {
		counts := make([]float64, nbins)
		for col, bin := range bins {
			counts[col] = float64(index.count(class, bin.Start, bin.End))
		}
		matrix[row] = counts
	}

	if normalize {
		normalizeRows(matrix)
	}

	return &ConservationMatrix{
		Bins:        bins,
		Classes:     append([]string(nil), classes...),
		Matrix:      matrix,
		RegionStart: regionStart,
		RegionEnd:   regionEnd,
		NBins:       nbins,
		Normalized:  normalize,
	}, nil
}

func normalizeRows(matrix [][]float64) {
	for _, row := range matrix {
		var peak float64
		for _, v := range row {
			if v > peak {
				peak = v
			}
		}
		if peak == 0 {
			continue
		}
		for i := range row {
			row[i] /= peak
		}
	}
}

// classIndex keeps one interval tree per requested class.
type classIndex map[string]*interval.IntTree

type span struct {
	start, end int
	uid        uintptr
}

func (s span) Overlap(b interval.IntRange) bool { return s.end > b.Start && s.start < b.End }
func (s span) ID() uintptr                      { return s.uid }
func (s span) Range() interval.IntRange         { return interval.IntRange{Start: s.start, End: s.end} }

// binQuery matches with the same half-open test against fractional bin edges.
type binQuery struct {
	start, end float64
}

func (q binQuery) Overlap(b interval.IntRange) bool {
	return float64(b.End) > q.start && float64(b.Start) < q.end
}

func newClassIndex(records []EnhancerRecord, classes []string) (classIndex, error) {
	idx := make(classIndex, len(classes))
	for _, c := range classes {
		if _, ok := idx[c]; !ok {
			idx[c] = &interval.IntTree{}
		}
	}
	for i, rec := range records {
		if !rec.Valid() {
			return nil, fmt.Errorf("%w: record %d has end %d not greater than start %d", ErrInvalidArgument, rec.ID, rec.End, rec.Start)
		}
		tree, ok := idx[rec.Class]
		if !ok {
			continue
		}
		s := span{start: int(rec.Start), end: int(rec.End), uid: uintptr(i + 1)}
		if err := tree.Insert(s, false); err != nil {
			return nil, fmt.Errorf("index record %d: %w", rec.ID, err)
		}
	}
	return idx, nil
}

func (idx classIndex) count(class string, start, end float64) int {
	tree := idx[class]
	if tree == nil || tree.Len() == 0 {
		return 0
	}
	n := 0
	tree.DoMatching(func(interval.IntInterface) bool {
		n++
		return false
	}, binQuery{start: start, end: end})
	return n
}
