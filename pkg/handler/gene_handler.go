package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/regland/regland/logger"
	"github.com/regland/regland/pkg/genome"
	"github.com/regland/regland/pkg/handler/params"
	"github.com/regland/regland/pkg/handler/request"
	"github.com/regland/regland/pkg/quality"
	"github.com/regland/regland/pkg/region"
	"github.com/regland/regland/pkg/render"
)

const searchLimit = 10

type GeneSearchResponse struct {
	Genes []genome.Gene `json:"genes"`
}

// GET /api/genes/search/?q=&species=
func (api *APIContext) GeneSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	term := strings.TrimSpace(q.Get("q"))
	species := params.String(q, "species", region.DefaultSpecies)

	if term == "" {
		writeJSON(w, http.StatusOK, GeneSearchResponse{Genes: []genome.Gene{}})
		return
	}

	genes, err := api.Store.SearchGenes(r.Context(), species, term, searchLimit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, GeneSearchResponse{Genes: genes})
}

func queryFromURL(q url.Values) (region.Query, error) {
	tssKb, err := params.Int(q, "tss_kb", region.DefaultTSSKb)
	if err != nil {
		return region.Query{}, err
	}
	return region.Query{
		Gene:    params.String(q, "gene", region.DefaultGene),
		Species: params.String(q, "species", region.DefaultSpecies),
		Tissue:  params.String(q, "tissue", region.DefaultTissue),
		TSSKb:   tssKb,
		Classes: params.Classes(q),
	}, nil
}

func paramsFromURL(q url.Values) (region.Params, error) {
	p := region.DefaultParams()
	query, err := queryFromURL(q)
	if err != nil {
		return p, err
	}
	p.Query = query
	if p.NBins, err = params.Int(q, "nbins", p.NBins); err != nil {
		return p, err
	}
	flags := []struct {
		key string
		dst *bool
	}{
		{"normalize_rows", &p.NormalizeRows},
		{"mark_tss", &p.MarkTSS},
		{"stack_tracks", &p.StackTracks},
		{"show_gene", &p.ShowGene},
		{"show_snps", &p.ShowSNPs},
		{"log_expression", &p.LogExpression},
		{"enhanced", &p.Enhanced},
	}
	for _, f := range flags {
		if *f.dst, err = params.Bool(q, f.key, *f.dst); err != nil {
			return p, err
		}
	}
	return p, nil
}

// GET /api/genes/region/
func (api *APIContext) GeneRegion(w http.ResponseWriter, r *http.Request) {
	query, err := queryFromURL(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}

	data, err := api.Regions.Region(r.Context(), query)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

// POST /api/genes/combined-data/
func (api *APIContext) CombinedData(w http.ResponseWriter, r *http.Request) {
	req := request.NewCombinedRequest()
	if err := request.Decode(r.Body, request.CombinedSchema, &req); err != nil {
		writeError(w, r, err)
		return
	}

	logger.Debug("Combined data",
		zap.String("gene", req.Gene),
		zap.String("species", req.Species),
		zap.String("tissue", req.Tissue),
		zap.Int("tss_kb", req.TSSKb),
		zap.Strings("classes", req.Classes),
		zap.Bool("enhanced", req.Enhanced),
	)

	data, err := api.Regions.Combined(r.Context(), req.Params())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

// GET /api/genes/heatmap/ renders the matrix as a standalone HTML page.
func (api *APIContext) Heatmap(w http.ResponseWriter, r *http.Request) {
	p, err := paramsFromURL(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}

	page, err := api.Regions.Heatmap(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := render.RenderHeatmapPage(&buf, page); err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// GET /api/genes/quality/?gene=&species=
func (api *APIContext) GeneQuality(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	symbol := strings.ToUpper(strings.TrimSpace(q.Get("gene")))
	species := params.String(q, "species", region.DefaultSpecies)
	if symbol == "" {
		writeError(w, r, fmt.Errorf("%w: gene symbol is required", genome.ErrInvalidArgument))
		return
	}

	gene, err := api.Store.FindGene(r.Context(), species, symbol)
	if err != nil {
		writeError(w, r, err)
		return
	}
	stats, err := api.Store.GeneStats(r.Context(), gene.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	available, err := api.Store.GeneSpecies(r.Context(), symbol)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, quality.AssessGene(gene.Symbol, species, stats, available))
}
