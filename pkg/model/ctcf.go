package model

import (
	"context"
	"fmt"

	regdb "github.com/regland/regland/pkg/db"
	"github.com/regland/regland/pkg/genome"
)

// CTCFQuery selects CTCF sites overlapping [Start, End). ConsClasses
// filters on the conservation class, where a missing class reads as "other".
type CTCFQuery struct {
	SpeciesID   string
	Chrom       string
	Start       int64
	End         int64
	ConsClasses []string
	Limit       int
}

type ctcfRow struct {
	SiteID    int64    `gorm:"column:site_id"`
	SpeciesID string   `gorm:"column:species_id"`
	Chrom     string   `gorm:"column:chrom"`
	Start     int64    `gorm:"column:start"`
	End       int64    `gorm:"column:end"`
	Score     *float64 `gorm:"column:score"`
	MotifP    *float64 `gorm:"column:motif_p"`
	ConsClass string   `gorm:"column:cons_class"`
}

// CTCFSites returns overlapping sites, strongest first.
func (s *Store) CTCFSites(ctx context.Context, q CTCFQuery) ([]genome.CTCFRecord, error) {
	tx := s.db.ORM.WithContext(ctx).
		Table("ctcf_sites").
		Select(`site_id, species_id, chrom, start, "end", score, motif_p, COALESCE(cons_class, 'other') AS cons_class`).
		Where("species_id = ? AND chrom = ?", q.SpeciesID, q.Chrom).
		Where(`start < ? AND "end" > ?`, q.End, q.Start)
	if len(q.ConsClasses) > 0 {
		tx = tx.Where("COALESCE(cons_class, 'other') IN ?", q.ConsClasses)
	}

	var rows []ctcfRow
	err := tx.Order("COALESCE(score, 0) DESC").Order("start").
		Limit(capLimit(q.Limit, s.limits.CTCF)).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query ctcf %s:%d-%d: %w", q.Chrom, q.Start, q.End, err)
	}

	out := make([]genome.CTCFRecord, len(rows))
	for i, r := range rows {
		out[i] = genome.CTCFRecord{
			SiteID:    r.SiteID,
			Interval:  genome.Interval{SpeciesID: r.SpeciesID, Chrom: r.Chrom, Start: r.Start, End: r.End},
			Score:     r.Score,
			MotifP:    r.MotifP,
			ConsClass: r.ConsClass,
		}
	}
	return out, nil
}

// DomainAt returns the smallest TAD containing pos, or nil when none does.
func (s *Store) DomainAt(ctx context.Context, speciesID, chrom string, pos int64) (*genome.TADDomain, error) {
	var tads []regdb.TADDomain
	err := s.db.ORM.WithContext(ctx).
		Where("species_id = ? AND chrom = ?", speciesID, chrom).
		Where(`start <= ? AND "end" > ?`, pos, pos).
		Order(`("end" - start) ASC`).
		Limit(1).
		Find(&tads).Error
	if err != nil {
		return nil, fmt.Errorf("query tad at %s:%d: %w", chrom, pos, err)
	}
	if len(tads) == 0 {
		return nil, nil
	}
	t := tads[0]
	return &genome.TADDomain{
		TadID:    t.TadID,
		Interval: genome.Interval{SpeciesID: t.SpeciesID, Chrom: t.Chrom, Start: t.Start, End: t.End},
		Source:   t.Source,
	}, nil
}
