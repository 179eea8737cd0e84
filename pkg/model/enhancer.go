package model

import (
	"context"
	"fmt"
	"strings"

	"github.com/regland/regland/pkg/genome"
	"gorm.io/gorm"
)

// TissueAny disables the tissue filter.
const TissueAny = "Other"

// EnhancerQuery selects enhancers overlapping [Start, End) on one chromosome.
type EnhancerQuery struct {
	SpeciesID string
	Chrom     string
	Start     int64
	End       int64
	Tissue    string   // "" or TissueAny matches every tissue
	Classes   []string // empty matches every class
	Limit     int
}

type enhancerRow struct {
	EnhID     int64    `gorm:"column:enh_id"`
	SpeciesID string   `gorm:"column:species_id"`
	Chrom     string   `gorm:"column:chrom"`
	Start     int64    `gorm:"column:start"`
	End       int64    `gorm:"column:end"`
	Tissue    *string  `gorm:"column:tissue"`
	Score     *float64 `gorm:"column:score"`
	Source    *string  `gorm:"column:source"`
	Class     string   `gorm:"column:class"`
}

func (r enhancerRow) record() genome.EnhancerRecord {
	return genome.EnhancerRecord{
		ID:       r.EnhID,
		Interval: genome.Interval{SpeciesID: r.SpeciesID, Chrom: r.Chrom, Start: r.Start, End: r.End},
		Tissue:   r.Tissue,
		Score:    r.Score,
		Source:   r.Source,
		Class:    r.Class,
	}
}

func (s *Store) enhancerScope(ctx context.Context, q EnhancerQuery) *gorm.DB {
	tx := s.db.ORM.WithContext(ctx).
		Table("enhancers_all AS e").
		Joins("LEFT JOIN enhancer_class ec ON e.enh_id = ec.enh_id").
		Where("e.species_id = ? AND e.chrom = ?", q.SpeciesID, q.Chrom).
		Where(`e.start < ? AND e."end" > ?`, q.End, q.Start).
		Where(`e."end" > e.start`)

	if tissue := strings.TrimSpace(q.Tissue); tissue != "" && tissue != TissueAny {
		tx = tx.Where("COALESCE(e.tissue, 'Other') = ?", tissue)
	}
	if len(q.Classes) > 0 {
		tx = tx.Where("COALESCE(ec.class, 'unlabeled') IN ?", q.Classes)
	}
	return tx
}

// Enhancers returns the overlapping enhancers, best scored first.
func (s *Store) Enhancers(ctx context.Context, q EnhancerQuery) ([]genome.EnhancerRecord, error) {
	var rows []enhancerRow
	err := s.enhancerScope(ctx, q).
		Select(`e.enh_id, e.species_id, e.chrom, e.start, e."end", e.tissue, e.score, e.source, COALESCE(ec.class, 'unlabeled') AS class`).
		Order("COALESCE(e.score, 0) DESC").
		Order("e.start").
		Limit(capLimit(q.Limit, s.limits.Enhancers)).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query enhancers %s:%d-%d: %w", q.Chrom, q.Start, q.End, err)
	}

	out := make([]genome.EnhancerRecord, len(rows))
	for i, r := range rows {
		out[i] = r.record()
	}
	return out, nil
}

// CountEnhancers counts matches without the result cap.
func (s *Store) CountEnhancers(ctx context.Context, q EnhancerQuery) (int64, error) {
	var n int64
	if err := s.enhancerScope(ctx, q).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count enhancers: %w", err)
	}
	return n, nil
}
