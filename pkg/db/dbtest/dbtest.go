// Package dbtest provides in-memory RegLand databases for tests.
package dbtest

import (
	"context"
	"testing"

	regdb "github.com/regland/regland/pkg/db"
)

// BDNF coordinates used by the seeded fixture.
const (
	BDNFTSS   = 27_654_893
	BDNFEnd   = 27_722_058
	BDNFChrom = "chr11"
)

func str(s string) *string { return &s }
func num(f float64) *float64 { return &f }
func bp(n int64) *int64 { return &n }

// Open returns a migrated, empty in-memory database closed on cleanup.
func Open(t testing.TB) *regdb.RegDB {
	t.Helper()
	r, err := regdb.Open(regdb.MemoryPath, regdb.Options{})
	if err != nil {
		t.Fatalf("open memory db: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	if err := r.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate memory db: %v", err)
	}
	return r
}

// Seeded returns a migrated database holding a small human/mouse fixture
// around BDNF and ALB.
func Seeded(t testing.TB) *regdb.RegDB {
	t.Helper()
	r := Open(t)
	Seed(t, r)
	return r
}

func Seed(t testing.TB, r *regdb.RegDB) {
	t.Helper()
	rows := []any{
		&[]regdb.Species{
			{SpeciesID: "human_hg38", Name: "Human", GenomeBuild: str("hg38")},
			{SpeciesID: "mouse_mm39", Name: "Mouse", GenomeBuild: str("mm39")},
		},
		&[]regdb.SpeciesBiotypeCount{
			{SpeciesID: "human_hg38", LncRNACount: 18000, ProteinCodingCount: 20000, Total: 38000},
		},
		&[]regdb.Gene{
			{GeneID: 1, Symbol: "BDNF", SpeciesID: "human_hg38", Chrom: BDNFChrom, Start: BDNFTSS, End: BDNFEnd},
			{GeneID: 2, Symbol: "ALB", SpeciesID: "human_hg38", Chrom: "chr4", Start: 73_404_256, End: 73_421_482},
			{GeneID: 3, Symbol: "Bdnf", SpeciesID: "mouse_mm39", Chrom: "chr2", Start: 109_674_700, End: 109_727_043},
			{GeneID: 4, Symbol: "BDNF-AS", SpeciesID: "human_hg38", Chrom: BDNFChrom, Start: 27_600_000, End: 27_650_000},
		},
		&[]regdb.Enhancer{
			{EnhID: 10, SpeciesID: "human_hg38", Chrom: BDNFChrom, Start: 27_600_000, End: 27_601_000, Tissue: str("Brain"), Score: num(0.9), Source: str("ENCODE")},
			{EnhID: 11, SpeciesID: "human_hg38", Chrom: BDNFChrom, Start: 27_650_000, End: 27_652_000, Tissue: str("Brain"), Score: num(0.3), Source: str("ENCODE")},
			{EnhID: 12, SpeciesID: "human_hg38", Chrom: BDNFChrom, Start: 27_700_000, End: 27_700_500, Tissue: str("Liver"), Score: num(0.8), Source: str("FANTOM5")},
			{EnhID: 13, SpeciesID: "human_hg38", Chrom: BDNFChrom, Start: 27_720_000, End: 27_721_000},
			{EnhID: 14, SpeciesID: "human_hg38", Chrom: BDNFChrom, Start: 27_900_000, End: 27_901_000, Tissue: str("Brain"), Score: num(0.95)},
			{EnhID: 15, SpeciesID: "human_hg38", Chrom: BDNFChrom, Start: 27_553_000, End: 27_555_000, Tissue: str("Liver")},
			{EnhID: 16, SpeciesID: "human_hg38", Chrom: "chr4", Start: 73_400_000, End: 73_401_000, Tissue: str("Liver"), Score: num(0.7)},
			{EnhID: 17, SpeciesID: "mouse_mm39", Chrom: "chr2", Start: 109_680_000, End: 109_681_000, Tissue: str("Brain"), Score: num(0.6)},
		},
		&[]regdb.EnhancerClass{
			{EnhID: 10, Class: "conserved"},
			{EnhID: 11, Class: "conserved"},
			{EnhID: 12, Class: "gained"},
			{EnhID: 14, Class: "conserved"},
			{EnhID: 15, Class: "lost"},
			{EnhID: 16, Class: "conserved"},
			{EnhID: 17, Class: "conserved"},
		},
		&[]regdb.GeneToEnhancer{
			{GeneID: 1, EnhID: 10, Method: str("promoter"), DistanceBP: bp(1000)},
			{GeneID: 1, EnhID: 11, Method: str("overlap"), DistanceBP: bp(0)},
			{GeneID: 1, EnhID: 12, Method: str("nearest"), DistanceBP: bp(45000)},
			{GeneID: 1, EnhID: 13, Method: str("window500k"), DistanceBP: bp(65000)},
			{GeneID: 2, EnhID: 16, Method: str("promoter"), DistanceBP: bp(4000)},
		},
		&[]regdb.GWASSnp{
			{SnpID: 100, Chrom: BDNFChrom, Pos: 27_600_500, RSID: str("rs1"), Trait: str("Depression"), PValue: num(1e-8), Source: str("GWAS Catalog"), Category: str("Psychiatric")},
			{SnpID: 101, Chrom: BDNFChrom, Pos: 27_651_000, RSID: str("rs2"), Trait: str("Body mass index"), PValue: num(5e-6), Source: str("GWAS Catalog"), Category: str("Metabolic")},
			{SnpID: 102, Chrom: BDNFChrom, Pos: 27_700_100, RSID: str("rs3"), Trait: str("Depression"), Source: str("GWAS Catalog"), Category: str("Psychiatric")},
			{SnpID: 103, Chrom: "chr4", Pos: 73_400_500, RSID: str("rs4"), Trait: str("Cholesterol"), PValue: num(1e-12), Source: str("GWAS Catalog"), Category: str("Metabolic")},
		},
		&[]regdb.SnpToEnhancer{
			{SnpID: 100, EnhID: 10, OverlapBP: bp(1)},
			{SnpID: 101, EnhID: 11, OverlapBP: bp(1)},
			{SnpID: 102, EnhID: 12, OverlapBP: bp(1)},
			{SnpID: 103, EnhID: 16, OverlapBP: bp(1)},
		},
		&[]regdb.CTCFSite{
			{SiteID: 200, SpeciesID: "human_hg38", Chrom: BDNFChrom, Start: 27_610_000, End: 27_610_020, Score: num(12.5), MotifP: num(1e-5), ConsClass: str("conserved")},
			{SiteID: 201, SpeciesID: "human_hg38", Chrom: BDNFChrom, Start: 27_690_000, End: 27_690_020, Score: num(8.1), MotifP: num(1e-4), ConsClass: str("human_specific")},
			{SiteID: 202, SpeciesID: "human_hg38", Chrom: BDNFChrom, Start: 27_740_000, End: 27_740_020},
			{SiteID: 203, SpeciesID: "mouse_mm39", Chrom: "chr2", Start: 109_690_000, End: 109_690_020, Score: num(5), ConsClass: str("conserved")},
		},
		&[]regdb.TADDomain{
			{TadID: 300, SpeciesID: "human_hg38", Chrom: BDNFChrom, Start: 27_500_000, End: 27_800_000, Source: str("Rao2014")},
		},
		&[]regdb.GeneExpression{
			{Symbol: "BDNF", Tissue: "Brain - Cortex", TPM: 10},
			{Symbol: "BDNF", Tissue: "Brain - Hippocampus", TPM: 20},
			{Symbol: "BDNF", Tissue: "Heart - Left Ventricle", TPM: 2},
			{Symbol: "BDNF", Tissue: "Liver", TPM: 0.5},
			{Symbol: "ALB", Tissue: "Liver", TPM: 5000},
		},
	}
	for _, batch := range rows {
		if err := r.ORM.Create(batch).Error; err != nil {
			t.Fatalf("seed %T: %v", batch, err)
		}
	}
}
