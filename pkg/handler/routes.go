package handler

import "net/http"

// Register mounts the JSON API on mux.
func (api *APIContext) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health/{$}", api.HealthCheck)

	// Genes
	mux.HandleFunc("GET /api/genes/search/{$}", api.GeneSearch)
	mux.HandleFunc("GET /api/genes/region/{$}", api.GeneRegion)
	mux.HandleFunc("POST /api/genes/combined-data/{$}", api.CombinedData)
	mux.HandleFunc("GET /api/genes/presets/{$}", GenePresets)
	mux.HandleFunc("GET /api/genes/heatmap/{$}", api.Heatmap)
	mux.HandleFunc("GET /api/genes/quality/{$}", api.GeneQuality)

	mux.HandleFunc("GET /api/species/{$}", api.SpeciesList)
	mux.HandleFunc("GET /api/species/biotypes/{$}", api.SpeciesBiotypes)

	mux.HandleFunc("GET /api/gwas/categories/{$}", api.GWASCategories)
	mux.HandleFunc("POST /api/gwas/traits/{$}", api.GWASTraits)
	mux.HandleFunc("POST /api/gwas/trait-snps/{$}", api.TraitSNPs)

	mux.HandleFunc("POST /api/analysis/ctcf/{$}", api.CTCFAnalysis)
	mux.HandleFunc("POST /api/export/{$}", api.Export)

	mux.HandleFunc("GET /api/quality/summary/{$}", api.QualitySummary)
	mux.HandleFunc("GET /api/quality/tissues/{$}", api.QualityTissues)
}
