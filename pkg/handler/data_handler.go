package handler

import (
	"net/http"

	"github.com/regland/regland/pkg/handler/params"
	"github.com/regland/regland/pkg/handler/request"
	"github.com/regland/regland/pkg/model"
	"github.com/regland/regland/pkg/quality"
	"github.com/regland/regland/pkg/region"
)

// GET /api/species/
func (api *APIContext) SpeciesList(w http.ResponseWriter, r *http.Request) {
	species, err := api.Store.Species(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"species": species})
}

// GET /api/species/biotypes/
func (api *APIContext) SpeciesBiotypes(w http.ResponseWriter, r *http.Request) {
	counts, err := api.Store.BiotypeCounts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"species_counts": counts})
}

// GET /api/gwas/categories/
func (api *APIContext) GWASCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := api.Store.GWASCategories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

// POST /api/gwas/traits/
func (api *APIContext) GWASTraits(w http.ResponseWriter, r *http.Request) {
	var req request.TraitsRequest
	if err := request.Decode(r.Body, request.TraitsSchema, &req); err != nil {
		writeError(w, r, err)
		return
	}

	traits, err := api.Store.GWASTraits(r.Context(), model.TraitQuery{
		Search:   req.Search,
		Category: req.Category,
		Limit:    req.Limit,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"traits": traits})
}

type TraitSNPsResponse struct {
	SNPs       []model.TraitSNP `json:"snps"`
	TotalCount int64            `json:"total_count"`
}

// POST /api/gwas/trait-snps/
func (api *APIContext) TraitSNPs(w http.ResponseWriter, r *http.Request) {
	var req request.TraitSNPsRequest
	if err := request.Decode(r.Body, request.TraitSNPsSchema, &req); err != nil {
		writeError(w, r, err)
		return
	}

	snps, total, err := api.Store.TraitSNPs(r.Context(), req.Trait, req.Limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TraitSNPsResponse{SNPs: snps, TotalCount: total})
}

// POST /api/analysis/ctcf/
func (api *APIContext) CTCFAnalysis(w http.ResponseWriter, r *http.Request) {
	req := request.NewCTCFRequest()
	if err := request.Decode(r.Body, request.CTCFSchema, &req); err != nil {
		writeError(w, r, err)
		return
	}

	analysis, err := api.Regions.CTCF(r.Context(), req.Params())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

// GET /api/quality/summary/?species=
func (api *APIContext) QualitySummary(w http.ResponseWriter, r *http.Request) {
	species := params.String(r.URL.Query(), "species", region.DefaultSpecies)

	stats, err := api.Store.QualityStats(r.Context(), species)
	if err != nil {
		writeError(w, r, err)
		return
	}
	coverage, err := api.Store.TissueCoverage(r.Context(), species)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quality.Summarize(species, stats, coverage))
}

type TissuesResponse struct {
	Species          string                   `json:"species"`
	SupportedTissues []string                 `json:"supported_tissues"`
	TissueCoverage   []quality.TissueCoverage `json:"tissue_coverage"`
}

// GET /api/quality/tissues/?species=
func (api *APIContext) QualityTissues(w http.ResponseWriter, r *http.Request) {
	species := params.String(r.URL.Query(), "species", region.DefaultSpecies)

	coverage, err := api.Store.TissueCoverage(r.Context(), species)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TissuesResponse{
		Species:          species,
		SupportedTissues: quality.SupportedTissues,
		TissueCoverage:   coverage,
	})
}
