package expression

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/regland/regland/logger"
	regdb "github.com/regland/regland/pkg/db"
)

// Source loads a complete expression table.
type Source interface {
	Load(ctx context.Context) (*Table, error)
	Name() string
}

// FileSource reads a TSV file from disk.
type FileSource struct {
	Path string
}

func (s FileSource) Name() string { return "file:" + s.Path }

func (s FileSource) Load(ctx context.Context) (*Table, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open expression file: %w", err)
	}
	defer f.Close()

	t, stats, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.Path, err)
	}
	logger.Info("Loaded expression table",
		zap.String("path", s.Path),
		zap.Int("rows", stats.Rows),
		zap.Int("skipped", stats.Skipped),
		zap.Int("genes", t.Genes()),
		zap.Bool("wide", stats.Wide),
	)
	return t, nil
}

const dbBatchSize = 5000

// DBSource reads the gene_expression table.
type DBSource struct {
	DB *gorm.DB
}

func (s DBSource) Name() string { return "db:gene_expression" }

func (s DBSource) Load(ctx context.Context) (*Table, error) {
	t := NewTable()
	var batch []regdb.GeneExpression
	res := s.DB.WithContext(ctx).Order("id").FindInBatches(&batch, dbBatchSize, func(tx *gorm.DB, _ int) error {
		for _, row := range batch {
			t.Add(Entry{Symbol: row.Symbol, Tissue: row.Tissue, TPM: row.TPM})
		}
		return nil
	})
	if res.Error != nil {
		return nil, fmt.Errorf("load gene_expression: %w", res.Error)
	}
	logger.Info("Loaded expression table", zap.String("source", s.Name()), zap.Int("rows", t.Len()), zap.Int("genes", t.Genes()))
	return t, nil
}
