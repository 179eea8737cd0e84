package db

// Table models. Column names match the existing RegLand sqlite schema.

type Species struct {
	SpeciesID   string  `gorm:"column:species_id;primaryKey;size:50" json:"species_id"`
	Name        string  `gorm:"column:name;size:200" json:"name"`
	GenomeBuild *string `gorm:"column:genome_build;size:50" json:"genome_build"`
}

func (Species) TableName() string { return "species" }

type SpeciesBiotypeCount struct {
	SpeciesID          string `gorm:"column:species_id;primaryKey;size:50" json:"species_id"`
	LncRNACount        int64  `gorm:"column:lncRNA_count" json:"lncRNA_count"`
	ProteinCodingCount int64  `gorm:"column:protein_coding_count" json:"protein_coding_count"`
	Total              int64  `gorm:"column:total" json:"total"`
}

func (SpeciesBiotypeCount) TableName() string { return "species_biotype_counts" }

type Gene struct {
	GeneID    int64  `gorm:"column:gene_id;primaryKey"`
	Symbol    string `gorm:"column:symbol;size:200"`
	SpeciesID string `gorm:"column:species_id;size:50;index:idx_genes_species_chrom,priority:1"`
	Chrom     string `gorm:"column:chrom;size:50;index:idx_genes_species_chrom,priority:2"`
	Start     int64  `gorm:"column:start"`
	End       int64  `gorm:"column:end"`
}

func (Gene) TableName() string { return "genes" }

type Enhancer struct {
	EnhID     int64    `gorm:"column:enh_id;primaryKey"`
	SpeciesID string   `gorm:"column:species_id;size:50;index:idx_enh_region,priority:1"`
	Chrom     string   `gorm:"column:chrom;size:50;index:idx_enh_region,priority:2"`
	Start     int64    `gorm:"column:start;index:idx_enh_region,priority:3"`
	End       int64    `gorm:"column:end"`
	Tissue    *string  `gorm:"column:tissue;size:100"`
	Score     *float64 `gorm:"column:score"`
	Source    *string  `gorm:"column:source;size:200"`
}

func (Enhancer) TableName() string { return "enhancers_all" }

type EnhancerClass struct {
	EnhID int64  `gorm:"column:enh_id;primaryKey;autoIncrement:false"`
	Class string `gorm:"column:class;size:50"`
}

func (EnhancerClass) TableName() string { return "enhancer_class" }

type GWASSnp struct {
	SnpID    int64    `gorm:"column:snp_id;primaryKey"`
	Chrom    string   `gorm:"column:chrom;size:50;index:idx_gwas_pos,priority:1"`
	Pos      int64    `gorm:"column:pos;index:idx_gwas_pos,priority:2"`
	RSID     *string  `gorm:"column:rsid;size:50"`
	Trait    *string  `gorm:"column:trait;size:500;index"`
	PValue   *float64 `gorm:"column:pval"`
	Source   *string  `gorm:"column:source;size:200"`
	Category *string  `gorm:"column:category;size:100"`
}

func (GWASSnp) TableName() string { return "gwas_snps" }

type SnpToEnhancer struct {
	SnpID     int64  `gorm:"column:snp_id;primaryKey;autoIncrement:false"`
	EnhID     int64  `gorm:"column:enh_id;primaryKey;autoIncrement:false;index"`
	OverlapBP *int64 `gorm:"column:overlap_bp"`
}

func (SnpToEnhancer) TableName() string { return "snp_to_enhancer" }

type GeneToEnhancer struct {
	GeneID     int64   `gorm:"column:gene_id;primaryKey;autoIncrement:false"`
	EnhID      int64   `gorm:"column:enh_id;primaryKey;autoIncrement:false;index"`
	Method     *string `gorm:"column:method;size:100"`
	DistanceBP *int64  `gorm:"column:distance_bp"`
}

func (GeneToEnhancer) TableName() string { return "gene_to_enhancer" }

type CTCFSite struct {
	SiteID    int64    `gorm:"column:site_id;primaryKey"`
	SpeciesID string   `gorm:"column:species_id;size:50;index:idx_ctcf_region,priority:1"`
	Chrom     string   `gorm:"column:chrom;size:50;index:idx_ctcf_region,priority:2"`
	Start     int64    `gorm:"column:start;index:idx_ctcf_region,priority:3"`
	End       int64    `gorm:"column:end"`
	Score     *float64 `gorm:"column:score"`
	MotifP    *float64 `gorm:"column:motif_p"`
	ConsClass *string  `gorm:"column:cons_class;size:50"`
}

func (CTCFSite) TableName() string { return "ctcf_sites" }

type TADDomain struct {
	TadID     int64   `gorm:"column:tad_id;primaryKey"`
	SpeciesID string  `gorm:"column:species_id;size:50"`
	Chrom     string  `gorm:"column:chrom;size:50"`
	Start     int64   `gorm:"column:start"`
	End       int64   `gorm:"column:end"`
	Source    *string `gorm:"column:source;size:200"`
}

func (TADDomain) TableName() string { return "tad_domains" }

type GeneExpression struct {
	ID     int64   `gorm:"column:id;primaryKey"`
	Symbol string  `gorm:"column:symbol;size:200;uniqueIndex:idx_expr_symbol_tissue,priority:1"`
	Tissue string  `gorm:"column:tissue;size:200;uniqueIndex:idx_expr_symbol_tissue,priority:2"`
	TPM    float64 `gorm:"column:tpm"`
}

func (GeneExpression) TableName() string { return "gene_expression" }

// Models lists every table managed by Migrate.
func Models() []any {
	return []any{
		&Species{},
		&SpeciesBiotypeCount{},
		&Gene{},
		&Enhancer{},
		&EnhancerClass{},
		&GWASSnp{},
		&SnpToEnhancer{},
		&GeneToEnhancer{},
		&CTCFSite{},
		&TADDomain{},
		&GeneExpression{},
	}
}
