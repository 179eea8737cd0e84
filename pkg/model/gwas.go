package model

import (
	"context"
	"fmt"
	"strings"

	"github.com/regland/regland/pkg/genome"
)

// GWASQuery selects SNPs with positions in [Start, End) that fall in an
// enhancer. With a GeneID only enhancers linked to that gene count and the
// mapping method is reported; otherwise any enhancer of SpeciesID counts.
type GWASQuery struct {
	GeneID    int64
	SpeciesID string
	Chrom     string
	Start     int64
	End       int64
	Limit     int
}

type gwasRow struct {
	SnpID      int64    `gorm:"column:snp_id"`
	RSID       *string  `gorm:"column:rsid"`
	Chrom      string   `gorm:"column:chrom"`
	Pos        int64    `gorm:"column:pos"`
	Trait      *string  `gorm:"column:trait"`
	PValue     *float64 `gorm:"column:pval"`
	Category   *string  `gorm:"column:category"`
	Source     *string  `gorm:"column:source"`
	Method     *string  `gorm:"column:method"`
	DistanceBP *int64   `gorm:"column:distance_bp"`
	ClosestBP  *float64 `gorm:"column:closest_bp"`
}

// GWAS returns one row per SNP ordered by p-value then rsid. A SNP reached
// through several enhancers keeps the closest mapping. Deduplication and the
// limit both happen in SQL. With a single MIN aggregate sqlite takes the bare
// ge columns from the row holding the minimum.
func (s *Store) GWAS(ctx context.Context, q GWASQuery) ([]genome.GWASRecord, error) {
	limit := capLimit(q.Limit, s.limits.GWAS)

	tx := s.db.ORM.WithContext(ctx).
		Table("gwas_snps AS s").
		Joins("JOIN snp_to_enhancer se ON se.snp_id = s.snp_id")
	if q.GeneID > 0 {
		tx = tx.Select("s.snp_id, s.rsid, s.chrom, s.pos, s.trait, s.pval, s.category, s.source, "+
			"ge.method, ge.distance_bp, MIN(COALESCE(ge.distance_bp, 1e18)) AS closest_bp").
			Joins("JOIN gene_to_enhancer ge ON ge.enh_id = se.enh_id").
			Where("ge.gene_id = ?", q.GeneID)
	} else {
		tx = tx.Select("s.snp_id, s.rsid, s.chrom, s.pos, s.trait, s.pval, s.category, s.source").
			Joins("JOIN enhancers_all e ON e.enh_id = se.enh_id").
			Where("e.species_id = ?", q.SpeciesID)
	}

	var rows []gwasRow
	err := tx.Where("s.chrom = ?", q.Chrom).
		Where("s.pos >= ? AND s.pos < ?", q.Start, q.End).
		Group("s.snp_id").
		Order("COALESCE(s.pval, 1e99) ASC").
		Order("s.rsid ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query gwas %s:%d-%d: %w", q.Chrom, q.Start, q.End, err)
	}

	out := make([]genome.GWASRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, genome.GWASRecord{
			SnpID: r.SnpID, Chrom: r.Chrom, Pos: r.Pos, RSID: r.RSID, Trait: r.Trait,
			PValue: r.PValue, Category: r.Category, Source: r.Source,
			Method: r.Method, DistanceBP: r.DistanceBP,
		})
	}
	return out, nil
}

type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

const categoriesSQL = `
	SELECT category, COUNT(*) AS count
	FROM gwas_snps
	WHERE category IS NOT NULL AND category != ''
	GROUP BY category
	ORDER BY count DESC, category`

func (s *Store) GWASCategories(ctx context.Context) ([]Category, error) {
	stm, err := s.db.SQL.PrepareContext(ctx, categoriesSQL)
	if err != nil {
		return nil, err
	}
	defer stm.Close()

	rows, err := stm.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("gwas categories: %w", err)
	}
	defer rows.Close()

	out := []Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.Name, &c.Count); err != nil {
			return nil, err
		}
		c.ID = c.Name
		out = append(out, c)
	}
	return out, rows.Err()
}

// TraitQuery filters the trait summary. Search matches trait, rsid,
// category or a linked gene symbol.
type TraitQuery struct {
	Search   string
	Category string
	Limit    int
}

type TraitSummary struct {
	Trait     string   `gorm:"column:trait" json:"trait"`
	SnpCount  int64    `gorm:"column:snp_count" json:"snp_count"`
	GeneCount int64    `gorm:"column:gene_count" json:"gene_count"`
	Category  *string  `gorm:"column:category" json:"category"`
	MinPValue *float64 `gorm:"column:min_pval" json:"min_pval"`
}

func (s *Store) GWASTraits(ctx context.Context, q TraitQuery) ([]TraitSummary, error) {
	tx := s.db.ORM.WithContext(ctx).
		Table("gwas_snps AS g").
		Select(`g.trait, COUNT(DISTINCT g.snp_id) AS snp_count, COUNT(DISTINCT ge.gene_id) AS gene_count, g.category,
			MIN(CASE WHEN g.pval IS NOT NULL AND g.pval > 0 THEN g.pval END) AS min_pval`).
		Joins("LEFT JOIN snp_to_enhancer se ON g.snp_id = se.snp_id").
		Joins("LEFT JOIN gene_to_enhancer ge ON se.enh_id = ge.enh_id").
		Where("g.trait IS NOT NULL AND g.trait != ''")

	if search := strings.TrimSpace(q.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		tx = tx.Joins("LEFT JOIN genes gn ON ge.gene_id = gn.gene_id").
			Where("(LOWER(g.trait) LIKE ? OR LOWER(g.rsid) LIKE ? OR LOWER(g.category) LIKE ? OR LOWER(gn.symbol) LIKE ?)",
				pattern, pattern, pattern, pattern)
	}
	if cat := strings.TrimSpace(q.Category); cat != "" && cat != "all" {
		tx = tx.Where("g.category = ?", cat)
	}
	tx = tx.Group("g.trait, g.category").Order("snp_count DESC").Order("min_pval ASC")
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	traits := []TraitSummary{}
	if err := tx.Scan(&traits).Error; err != nil {
		return nil, fmt.Errorf("gwas traits: %w", err)
	}
	return traits, nil
}

type TraitSNP struct {
	SnpID           int64    `json:"snp_id"`
	RSID            *string  `json:"rsid"`
	Chrom           string   `json:"chrom"`
	Pos             int64    `json:"pos"`
	Trait           *string  `json:"trait"`
	PValue          *float64 `json:"pval"`
	Category        *string  `json:"category"`
	Source          *string  `json:"source"`
	AssociatedGenes *string  `json:"associated_genes"`
}

const traitSNPsSQL = `
	SELECT g.snp_id, g.rsid, g.chrom, g.pos, g.trait, g.pval, g.category, g.source,
	       GROUP_CONCAT(DISTINCT gn.symbol) AS associated_genes
	FROM gwas_snps g
	LEFT JOIN snp_to_enhancer se ON g.snp_id = se.snp_id
	LEFT JOIN gene_to_enhancer ge ON se.enh_id = ge.enh_id
	LEFT JOIN genes gn ON ge.gene_id = gn.gene_id
	WHERE g.trait = ?
	GROUP BY g.snp_id, g.rsid, g.chrom, g.pos, g.trait, g.pval, g.category, g.source
	ORDER BY COALESCE(g.pval, 1e99) ASC, g.snp_id
	LIMIT ?`

// TraitSNPs lists SNPs for a trait; limit <= 0 returns all of them. The
// second value is the total number of SNPs carrying the trait.
func (s *Store) TraitSNPs(ctx context.Context, trait string, limit int) ([]TraitSNP, int64, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.SQL.QueryContext(ctx, traitSNPsSQL, trait, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("trait snps: %w", err)
	}
	defer rows.Close()

	snps := []TraitSNP{}
	for rows.Next() {
		var t TraitSNP
		if err := rows.Scan(&t.SnpID, &t.RSID, &t.Chrom, &t.Pos, &t.Trait, &t.PValue, &t.Category, &t.Source, &t.AssociatedGenes); err != nil {
			return nil, 0, err
		}
		snps = append(snps, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	rows.Close()

	var total int64
	if err := s.db.SQL.QueryRowContext(ctx, `SELECT COUNT(DISTINCT snp_id) FROM gwas_snps WHERE trait = ?`, trait).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count trait snps: %w", err)
	}
	return snps, total, nil
}
