package region

import (
	"fmt"
	"strings"

	"github.com/regland/regland/pkg/cache"
	"github.com/regland/regland/pkg/genome"
)

// Request defaults.
const (
	DefaultGene    = "BDNF"
	DefaultSpecies = "human_hg38"
	DefaultTissue  = "Liver"
	DefaultTSSKb   = 100
	DefaultNBins   = 30

	MaxTSSKb = 5000
	MaxNBins = 500
)

// Query names a region and the enhancer filters applied inside it.
type Query struct {
	Gene    string
	Species string
	Tissue  string
	TSSKb   int
	Classes []string
}

// Params is a combined-data request: the region query plus matrix and
// display options.
type Params struct {
	Query
	NBins         int
	NormalizeRows bool
	MarkTSS       bool
	StackTracks   bool
	ShowGene      bool
	ShowSNPs      bool
	LogExpression bool
	Enhanced      bool
}

// DefaultParams mirrors the front end's initial form.
func DefaultParams() Params {
	return Params{
		Query: Query{
			Gene:    DefaultGene,
			Species: DefaultSpecies,
			Tissue:  DefaultTissue,
			TSSKb:   DefaultTSSKb,
			Classes: genome.DefaultClasses,
		},
		NBins:       DefaultNBins,
		MarkTSS:     true,
		StackTracks: true,
		ShowGene:    true,
		ShowSNPs:    true,
	}
}

func (q Query) normalized() (Query, error) {
	q.Gene = strings.ToUpper(strings.TrimSpace(q.Gene))
	q.Species = strings.TrimSpace(q.Species)
	q.Tissue = strings.TrimSpace(q.Tissue)
	if q.Gene == "" {
		return q, fmt.Errorf("%w: gene symbol is required", genome.ErrInvalidArgument)
	}
	if q.Species == "" {
		q.Species = DefaultSpecies
	}
	if q.TSSKb < 0 || q.TSSKb > MaxTSSKb {
		return q, fmt.Errorf("%w: tss_kb must be within 0..%d, got %d", genome.ErrInvalidArgument, MaxTSSKb, q.TSSKb)
	}
	q.Classes = genome.NormalizeClasses(q.Classes)
	return q, nil
}

func (p Params) normalized() (Params, error) {
	q, err := p.Query.normalized()
	if err != nil {
		return p, err
	}
	p.Query = q
	if p.NBins < 1 || p.NBins > MaxNBins {
		return p, fmt.Errorf("%w: nbins must be within 1..%d, got %d", genome.ErrInvalidArgument, MaxNBins, p.NBins)
	}
	return p, nil
}

// CacheKey derives the response cache key from the ordered parameter tuple.
// Class order is kept since it fixes the matrix row order.
func (p Params) CacheKey() string {
	return cache.Key("combined",
		p.Gene, p.Species, p.Tissue, p.TSSKb, p.Classes, p.NBins,
		p.NormalizeRows, p.MarkTSS, p.StackTracks, p.ShowGene, p.ShowSNPs,
		p.LogExpression, p.Enhanced,
	)
}
