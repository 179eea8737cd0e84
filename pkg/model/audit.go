package model

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/regland/regland/pkg/quality"
)

type MissingCheck struct {
	Name    string         `json:"name"`
	Table   string         `json:"table"`
	Missing int64          `json:"missing"`
	Total   int64          `json:"total"`
	Percent float64        `json:"percent"`
	Status  quality.Status `json:"status"`
}

type IntegrityCheck struct {
	Name   string         `json:"name"`
	Count  int64          `json:"count"`
	Status quality.Status `json:"status"`
}

type ScoreStats struct {
	Total      int64    `json:"total"`
	WithScores int64    `json:"with_scores"`
	Min        *float64 `json:"min"`
	Max        *float64 `json:"max"`
	Avg        *float64 `json:"avg"`
	Median     *float64 `json:"median,omitempty"`
}

type Audit struct {
	OrphanSpecies  []string         `json:"orphan_species"`
	Missing        []MissingCheck   `json:"missing"`
	Integrity      []IntegrityCheck `json:"integrity"`
	EmptyTables    []string         `json:"empty_tables"`
	EnhancerScores ScoreStats       `json:"enhancer_scores"`
	CTCFScores     ScoreStats       `json:"ctcf_scores"`
}

var missingChecks = []struct{ name, table, where string }{
	{"Gene-Enhancer Methods", "gene_to_enhancer", "method IS NULL OR method = ''"},
	{"Gene-Enhancer Distances", "gene_to_enhancer", "distance_bp IS NULL"},
	{"SNP-Enhancer Overlaps", "snp_to_enhancer", "overlap_bp IS NULL"},
	{"Enhancer Scores", "enhancers_all", "score IS NULL"},
	{"Enhancer Tissues", "enhancers_all", "tissue IS NULL"},
	{"CTCF Motif P-values", "ctcf_sites", "motif_p IS NULL"},
	{"CTCF Conservation", "ctcf_sites", "cons_class IS NULL"},
}

var integrityChecks = []struct{ name, sql string }{
	{"Orphaned Gene-Enhancer (genes)", `SELECT COUNT(*) FROM gene_to_enhancer ge LEFT JOIN genes g ON ge.gene_id = g.gene_id WHERE g.gene_id IS NULL`},
	{"Orphaned Gene-Enhancer (enhancers)", `SELECT COUNT(*) FROM gene_to_enhancer ge LEFT JOIN enhancers_all e ON ge.enh_id = e.enh_id WHERE e.enh_id IS NULL`},
	{"Orphaned SNP-Enhancer (SNPs)", `SELECT COUNT(*) FROM snp_to_enhancer se LEFT JOIN gwas_snps s ON se.snp_id = s.snp_id WHERE s.snp_id IS NULL`},
	{"Orphaned SNP-Enhancer (enhancers)", `SELECT COUNT(*) FROM snp_to_enhancer se LEFT JOIN enhancers_all e ON se.enh_id = e.enh_id WHERE e.enh_id IS NULL`},
}

const orphanSpeciesSQL = `
	SELECT DISTINCT species_id FROM (
		SELECT species_id FROM genes
		UNION SELECT species_id FROM enhancers_all
	)
	WHERE species_id NOT IN (SELECT species_id FROM species)
	ORDER BY species_id`

const enhancerScoreSQL = `
	WITH ordered AS (
		SELECT score FROM enhancers_all WHERE score IS NOT NULL ORDER BY score
	),
	cnt AS (SELECT COUNT(*) AS c FROM ordered)
	SELECT
		(SELECT COUNT(*) FROM enhancers_all),
		(SELECT COUNT(score) FROM enhancers_all),
		(SELECT MIN(score) FROM enhancers_all),
		(SELECT MAX(score) FROM enhancers_all),
		(SELECT AVG(score) FROM enhancers_all),
		(SELECT AVG(score) FROM (
			SELECT score FROM ordered
			LIMIT 2 - (SELECT c % 2 FROM cnt)
			OFFSET (SELECT (c - 1) / 2 FROM cnt)
		))`

const ctcfScoreSQL = `SELECT COUNT(*), COUNT(score), MIN(score), MAX(score), AVG(score) FROM ctcf_sites`

// Audit runs the database health checks used by the quality report.
// The check table names are fixed, never user input.
func (s *Store) Audit(ctx context.Context) (*Audit, error) {
	a := &Audit{OrphanSpecies: []string{}, EmptyTables: []string{}}

	rows, err := s.db.SQL.QueryContext(ctx, orphanSpeciesSQL)
	if err != nil {
		return nil, fmt.Errorf("orphan species: %w", err)
	}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		a.OrphanSpecies = append(a.OrphanSpecies, id)
	}
	rows.Close()

	for _, c := range missingChecks {
		var missing, total int64
		if err := s.count(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", c.table, c.where), &missing); err != nil {
			return nil, fmt.Errorf("%s: %w", c.name, err)
		}
		if err := s.count(ctx, "SELECT COUNT(*) FROM "+c.table, &total); err != nil {
			return nil, fmt.Errorf("%s total: %w", c.name, err)
		}
		pct := quality.Percent(int(missing), int(total))
		a.Missing = append(a.Missing, MissingCheck{
			Name: c.name, Table: c.table, Missing: missing, Total: total,
			Percent: pct, Status: quality.MissingStatus(pct),
		})
	}

	for _, c := range integrityChecks {
		var n int64
		if err := s.count(ctx, c.sql, &n); err != nil {
			return nil, fmt.Errorf("%s: %w", c.name, err)
		}
		a.Integrity = append(a.Integrity, IntegrityCheck{Name: c.name, Count: n, Status: quality.IntegrityStatus(n)})
	}

	var tads int64
	if err := s.count(ctx, "SELECT COUNT(*) FROM tad_domains", &tads); err != nil {
		return nil, fmt.Errorf("tad domains: %w", err)
	}
	if tads == 0 {
		a.EmptyTables = append(a.EmptyTables, "tad_domains")
	}

	if err := s.db.SQL.QueryRowContext(ctx, enhancerScoreSQL).Scan(
		&a.EnhancerScores.Total, &a.EnhancerScores.WithScores,
		&a.EnhancerScores.Min, &a.EnhancerScores.Max, &a.EnhancerScores.Avg, &a.EnhancerScores.Median,
	); err != nil {
		return nil, fmt.Errorf("enhancer score stats: %w", err)
	}
	if err := s.db.SQL.QueryRowContext(ctx, ctcfScoreSQL).Scan(
		&a.CTCFScores.Total, &a.CTCFScores.WithScores,
		&a.CTCFScores.Min, &a.CTCFScores.Max, &a.CTCFScores.Avg,
	); err != nil {
		return nil, fmt.Errorf("ctcf score stats: %w", err)
	}
	return a, nil
}

func (s *Store) count(ctx context.Context, query string, dst *int64) error {
	var n sql.NullInt64
	if err := s.db.SQL.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return err
	}
	*dst = n.Int64
	return nil
}
