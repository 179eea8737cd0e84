package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/regland/regland/logger"
	"go.uber.org/zap"
)

var ErrReadOnly = errors.New("database opened read-only")

// Statements run after AutoMigrate. Expression indexes back the
// case-insensitive symbol lookups; the views back the quality endpoints.
var schemaStatements = []struct {
	name string
	sql  string
}{
	{"idx_genes_symbol_upper", `CREATE INDEX IF NOT EXISTS idx_genes_symbol_upper ON genes (UPPER(symbol))`},
	{"idx_genes_symbol_species_upper", `CREATE INDEX IF NOT EXISTS idx_genes_symbol_species_upper ON genes (UPPER(symbol), species_id)`},
	{"idx_gene_to_enhancer_gene", `CREATE INDEX IF NOT EXISTS idx_gene_to_enhancer_gene ON gene_to_enhancer (gene_id)`},
	{"enhancers_hiconf", `CREATE VIEW IF NOT EXISTS enhancers_hiconf AS
		SELECT * FROM enhancers_all
		WHERE score IS NOT NULL AND score > 0.5`},
	{"enhancers_tissue_any", `CREATE VIEW IF NOT EXISTS enhancers_tissue_any AS
		SELECT species_id, tissue, COUNT(*) AS enhancer_count,
		       AVG(CAST(score AS REAL)) AS avg_score,
		       MIN(CAST(score AS REAL)) AS min_score,
		       MAX(CAST(score AS REAL)) AS max_score
		FROM enhancers_all
		WHERE tissue IS NOT NULL AND score IS NOT NULL
		GROUP BY species_id, tissue`},
	{"data_quality_summary", `CREATE VIEW IF NOT EXISTS data_quality_summary AS
		SELECT species_id,
		       COUNT(*) AS total_enhancers,
		       COUNT(CASE WHEN score IS NOT NULL THEN 1 END) AS scored_enhancers,
		       COUNT(CASE WHEN score IS NOT NULL AND score > 0.5 THEN 1 END) AS high_conf_enhancers,
		       COUNT(DISTINCT tissue) AS tissue_count,
		       COUNT(DISTINCT chrom) AS chromosome_count
		FROM enhancers_all
		GROUP BY species_id`},
}

// Migrate creates missing tables, indexes and quality views.
func (r *RegDB) Migrate(ctx context.Context) error {
	if r.ReadOnly {
		return fmt.Errorf("migrate: %w", ErrReadOnly)
	}
	if err := r.ORM.WithContext(ctx).AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	for _, stmt := range schemaStatements {
		if _, err := r.SQL.ExecContext(ctx, stmt.sql); err != nil {
			return fmt.Errorf("create %s: %w", stmt.name, err)
		}
		logger.Debug("Schema object ready", zap.String("name", stmt.name))
	}
	return nil
}

// DataQualityRow is one row of the data_quality_summary view.
type DataQualityRow struct {
	SpeciesID         string `gorm:"column:species_id" json:"species_id"`
	TotalEnhancers    int64  `gorm:"column:total_enhancers" json:"total_enhancers"`
	ScoredEnhancers   int64  `gorm:"column:scored_enhancers" json:"scored_enhancers"`
	HighConfEnhancers int64  `gorm:"column:high_conf_enhancers" json:"high_conf_enhancers"`
	TissueCount       int64  `gorm:"column:tissue_count" json:"tissue_count"`
	ChromosomeCount   int64  `gorm:"column:chromosome_count" json:"chromosome_count"`
}

// QualitySummary reads the data_quality_summary view.
func (r *RegDB) QualitySummary(ctx context.Context) ([]DataQualityRow, error) {
	var rows []DataQualityRow
	if err := r.ORM.WithContext(ctx).Table("data_quality_summary").Order("species_id").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("read data_quality_summary: %w", err)
	}
	return rows, nil
}
