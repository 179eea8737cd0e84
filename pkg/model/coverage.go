package model

import (
	"context"
	"fmt"

	"github.com/regland/regland/pkg/quality"
)

const tissueCoverageSQL = `
	SELECT COALESCE(tissue, 'unknown') AS tissue, COUNT(*) AS enhancer_count
	FROM enhancers_hiconf
	WHERE species_id = ?
	GROUP BY COALESCE(tissue, 'unknown')
	ORDER BY enhancer_count DESC, tissue`

// TissueCoverage counts high-confidence enhancers per tissue and classifies
// each count.
func (s *Store) TissueCoverage(ctx context.Context, speciesID string) ([]quality.TissueCoverage, error) {
	stm, err := s.db.SQL.PrepareContext(ctx, tissueCoverageSQL)
	if err != nil {
		return nil, err
	}
	defer stm.Close()

	rows, err := stm.QueryContext(ctx, speciesID)
	if err != nil {
		return nil, fmt.Errorf("tissue coverage: %w", err)
	}
	defer rows.Close()

	out := []quality.TissueCoverage{}
	for rows.Next() {
		var (
			tissue string
			n      int
		)
		if err := rows.Scan(&tissue, &n); err != nil {
			return nil, err
		}
		out = append(out, quality.NewTissueCoverage(tissue, n))
	}
	return out, rows.Err()
}

const qualityStatsSQL = `
	SELECT 'enhancers_total', COUNT(*) FROM enhancers_all WHERE species_id = ?
	UNION ALL
	SELECT 'enhancers_with_scores', COUNT(*) FROM enhancers_all WHERE species_id = ? AND score IS NOT NULL
	UNION ALL
	SELECT 'enhancers_high_confidence', COUNT(*) FROM enhancers_hiconf WHERE species_id = ?
	UNION ALL
	SELECT 'gene_enhancer_mappings', COUNT(*)
	FROM gene_to_enhancer ge JOIN genes g ON ge.gene_id = g.gene_id
	WHERE g.species_id = ?`

// QualityStats returns the headline counts keyed by quality metric name.
func (s *Store) QualityStats(ctx context.Context, speciesID string) (map[string]int64, error) {
	rows, err := s.db.SQL.QueryContext(ctx, qualityStatsSQL, speciesID, speciesID, speciesID, speciesID)
	if err != nil {
		return nil, fmt.Errorf("quality stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]int64, 4)
	for rows.Next() {
		var (
			name string
			n    int64
		)
		if err := rows.Scan(&name, &n); err != nil {
			return nil, err
		}
		stats[name] = n
	}
	return stats, rows.Err()
}

const geneStatsSQL = `
	SELECT COUNT(*),
	       COUNT(e.tissue),
	       COUNT(CASE WHEN e.score IS NOT NULL THEN 1 END),
	       COUNT(CASE WHEN e.score IS NOT NULL AND e.score > 0.5 THEN 1 END),
	       COUNT(CASE WHEN ec.class = 'conserved' THEN 1 END)
	FROM gene_to_enhancer gte
	LEFT JOIN enhancers_all e ON gte.enh_id = e.enh_id
	LEFT JOIN enhancer_class ec ON e.enh_id = ec.enh_id
	WHERE gte.gene_id = ?`

// GeneStats counts annotation completeness over a gene's linked enhancers.
func (s *Store) GeneStats(ctx context.Context, geneID int64) (quality.GeneStats, error) {
	var st quality.GeneStats
	err := s.db.SQL.QueryRowContext(ctx, geneStatsSQL, geneID).
		Scan(&st.TotalEnhancers, &st.WithTissue, &st.WithScore, &st.HighConfidence, &st.ConservedCount)
	if err != nil {
		return st, fmt.Errorf("gene stats %d: %w", geneID, err)
	}
	return st, nil
}
