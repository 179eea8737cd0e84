package expression

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/regland/regland/logger"
	regdb "github.com/regland/regland/pkg/db"
)

const DefaultBatchSize = 5000

type LoadOptions struct {
	BatchSize int
	// Clear deletes existing rows first.
	Clear bool
}

type LoadResult struct {
	Inserted int64 `json:"inserted"`
	Rows     int   `json:"rows"`
	Skipped  int   `json:"skipped"`
}

// BulkLoad writes a parsed table into gene_expression in batches.
// Duplicate (symbol, tissue) pairs keep the row already stored.
func BulkLoad(ctx context.Context, db *gorm.DB, t *Table, opts LoadOptions) (LoadResult, error) {
	var res LoadResult
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if opts.Clear {
			del := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&regdb.GeneExpression{})
			if del.Error != nil {
				return fmt.Errorf("clear gene_expression: %w", del.Error)
			}
			logger.Info("Cleared expression rows", zap.Int64("deleted", del.RowsAffected))
		}

		entries := t.Entries()
		for lo := 0; lo < len(entries); lo += opts.BatchSize {
			hi := min(lo+opts.BatchSize, len(entries))
			rows := make([]regdb.GeneExpression, 0, hi-lo)
			for _, e := range entries[lo:hi] {
				rows = append(rows, regdb.GeneExpression{Symbol: e.Symbol, Tissue: e.Tissue, TPM: e.TPM})
			}
			ins := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows)
			if ins.Error != nil {
				return fmt.Errorf("insert expression batch at %d: %w", lo, ins.Error)
			}
			res.Inserted += ins.RowsAffected
			logger.Debug("Inserted expression batch", zap.Int("offset", lo), zap.Int64("rows", ins.RowsAffected))
		}
		return nil
	})
	if err != nil {
		return res, err
	}
	return res, nil
}

// LoadFile parses a TSV file and bulk loads it.
func LoadFile(ctx context.Context, db *gorm.DB, path string, opts LoadOptions) (LoadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return LoadResult{}, fmt.Errorf("open expression file: %w", err)
	}
	defer f.Close()

	t, stats, err := Parse(f)
	if err != nil {
		return LoadResult{}, fmt.Errorf("parse %s: %w", path, err)
	}
	res, err := BulkLoad(ctx, db, t, opts)
	res.Rows, res.Skipped = stats.Rows, stats.Skipped
	return res, err
}
