package genome

import (
	"context"
	"fmt"
	"strings"
)

// GeneLookup finds a gene by case-insensitive exact symbol within a species.
// Implementations return an error wrapping ErrNotFound when nothing matches.
type GeneLookup interface {
	FindGene(ctx context.Context, speciesID, symbol string) (*Gene, error)
}

// Region is a window centred on a gene's transcription start site.
type Region struct {
	GeneID    int64  `json:"gene_id"`
	Symbol    string `json:"symbol"`
	SpeciesID string `json:"species_id"`
	Chrom     string `json:"chrom"`
	TSS       int64  `json:"tss"`
	Start     int64  `json:"start"`
	End       int64  `json:"end"`
	GeneStart int64  `json:"gene_start"`
	GeneEnd   int64  `json:"gene_end"`
	FlankKb   int    `json:"tss_kb"`
}

func (r Region) Interval() Interval {
	return Interval{SpeciesID: r.SpeciesID, Chrom: r.Chrom, Start: r.Start, End: r.End}
}

// Window computes [max(0, tss-flank), tss+flank) for a flank in kilobases.
func Window(tss int64, flankKb int) (int64, int64) {
	flank := int64(flankKb) * 1000
	return max(0, tss-flank), tss + flank
}

// Resolve looks the gene up and returns the window around its TSS.
func Resolve(ctx context.Context, lookup GeneLookup, symbol, speciesID string, flankKb int) (*Region, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("%w: empty gene symbol", ErrInvalidArgument)
	}
	if flankKb < 0 {
		return nil, fmt.Errorf("%w: flank must not be negative, got %d kb", ErrInvalidArgument, flankKb)
	}

	gene, err := lookup.FindGene(ctx, speciesID, strings.ToUpper(symbol))
	if err != nil {
		return nil, err
	}
	if gene == nil {
		return nil, fmt.Errorf("gene %s in %s: %w", symbol, speciesID, ErrNotFound)
	}

	species := gene.SpeciesID
	if species == "" {
		species = speciesID
	}
	start, end := Window(gene.Start, flankKb)
	return &Region{
		GeneID:    gene.ID,
		Symbol:    gene.Symbol,
		SpeciesID: species,
		Chrom:     gene.Chrom,
		TSS:       gene.Start,
		Start:     start,
		End:       end,
		GeneStart: gene.Start,
		GeneEnd:   gene.End,
		FlankKb:   flankKb,
	}, nil
}
