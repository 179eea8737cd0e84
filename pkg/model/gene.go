package model

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/regland/regland/pkg/genome"
)

const findGeneSQL = `
	SELECT gene_id, symbol, species_id, chrom, start, "end"
	FROM genes
	WHERE UPPER(symbol) = UPPER(?) AND species_id = ?
	ORDER BY gene_id
	LIMIT 1`

const searchGenesSQL = `
	SELECT gene_id, symbol, species_id, chrom, start, "end"
	FROM genes
	WHERE UPPER(symbol) LIKE ? AND species_id = ?
	ORDER BY CASE WHEN UPPER(symbol) = ? THEN 1 ELSE 2 END, symbol
	LIMIT ?`

const geneSpeciesSQL = `
	SELECT DISTINCT species_id
	FROM genes
	WHERE UPPER(symbol) = UPPER(?)
	ORDER BY species_id`

func scanGenes(rows *sql.Rows) ([]genome.Gene, error) {
	genes := []genome.Gene{}
	for rows.Next() {
		var g genome.Gene
		if err := rows.Scan(&g.ID, &g.Symbol, &g.SpeciesID, &g.Chrom, &g.Start, &g.End); err != nil {
			return nil, fmt.Errorf("scan gene: %w", err)
		}
		genes = append(genes, g)
	}
	return genes, rows.Err()
}

// FindGene implements genome.GeneLookup.
func (s *Store) FindGene(ctx context.Context, speciesID, symbol string) (*genome.Gene, error) {
	stm, err := s.db.SQL.PrepareContext(ctx, findGeneSQL)
	if err != nil {
		return nil, err
	}
	defer stm.Close()

	var g genome.Gene
	err = stm.QueryRowContext(ctx, strings.TrimSpace(symbol), speciesID).
		Scan(&g.ID, &g.Symbol, &g.SpeciesID, &g.Chrom, &g.Start, &g.End)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("gene %s in %s: %w", symbol, speciesID, genome.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find gene %s: %w", symbol, err)
	}
	return &g, nil
}

// SearchGenes returns genes whose symbol contains q, exact matches first.
func (s *Store) SearchGenes(ctx context.Context, speciesID, q string, limit int) ([]genome.Gene, error) {
	q = strings.ToUpper(strings.TrimSpace(q))
	if q == "" {
		return []genome.Gene{}, nil
	}
	stm, err := s.db.SQL.PrepareContext(ctx, searchGenesSQL)
	if err != nil {
		return nil, err
	}
	defer stm.Close()

	rows, err := stm.QueryContext(ctx, "%"+q+"%", speciesID, q, capLimit(limit, DefaultSearchLimit))
	if err != nil {
		return nil, fmt.Errorf("search genes: %w", err)
	}
	defer rows.Close()
	return scanGenes(rows)
}

// GeneSpecies lists the species that carry a gene symbol.
func (s *Store) GeneSpecies(ctx context.Context, symbol string) ([]string, error) {
	rows, err := s.db.SQL.QueryContext(ctx, geneSpeciesSQL, strings.TrimSpace(symbol))
	if err != nil {
		return nil, fmt.Errorf("gene species: %w", err)
	}
	defer rows.Close()

	species := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		species = append(species, id)
	}
	return species, rows.Err()
}
