package handler

import (
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/regland/regland/pkg/cache"
	"github.com/regland/regland/pkg/db/dbtest"
	"github.com/regland/regland/pkg/expression"
	"github.com/regland/regland/pkg/model"
	"github.com/regland/regland/pkg/region"
)

func newTestMux(t *testing.T) (*http.ServeMux, *APIContext) {
	t.Helper()
	r := dbtest.Seeded(t)
	store := model.NewStore(r, model.Limits{})
	expr := expression.NewCache(expression.DBSource{DB: r.ORM}, nil)
	api := &APIContext{
		Store:      store,
		Regions:    region.NewService(store, expr, cache.NewTTL[*region.CombinedData](16, time.Minute)),
		Expression: expr,
		Version:    "test",
	}
	mux := http.NewServeMux()
	api.Register(mux)
	return mux, api
}

func do(t *testing.T, mux http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	mux, _ := newTestMux(t)
	rec := do(t, mux, http.MethodGet, "/api/health/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", gjson.Get(rec.Body.String(), "status").String())
	assert.Equal(t, "test", gjson.Get(rec.Body.String(), "version").String())
}

func TestGeneSearch(t *testing.T) {
	mux, _ := newTestMux(t)

	rec := do(t, mux, http.MethodGet, "/api/genes/search/?q=bdnf", "")
	require.Equal(t, http.StatusOK, rec.Code)
	genes := gjson.Get(rec.Body.String(), "genes").Array()
	require.Len(t, genes, 2)
	assert.Equal(t, "BDNF", genes[0].Get("symbol").String())

	rec = do(t, mux, http.MethodGet, "/api/genes/search/?q=", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"genes":[]}`, rec.Body.String())
}

func TestGeneRegion(t *testing.T) {
	mux, _ := newTestMux(t)

	rec := do(t, mux, http.MethodGet, "/api/genes/region/?gene=bdnf&tissue=Other&tss_kb=100", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Equal(t, "BDNF", gjson.Get(body, "gene.symbol").String())
	assert.Len(t, gjson.Get(body, "enhancers").Array(), 5)
	assert.Len(t, gjson.Get(body, "gwas_snps").Array(), 3)
	assert.Contains(t, gjson.Get(body, "ucsc_url").String(), "position=chr11:27,554,893-27,754,893")

	rec = do(t, mux, http.MethodGet, "/api/genes/region/?gene=bdnf&tissue=Other&classes[]=gained&classes[]=lost", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, gjson.Get(rec.Body.String(), "enhancers").Array(), 2)

	rec = do(t, mux, http.MethodGet, "/api/genes/region/?gene=NOPE", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.True(t, gjson.Get(rec.Body.String(), "error").Exists())

	rec = do(t, mux, http.MethodGet, "/api/genes/region/?gene=BDNF&tss_kb=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCombinedData(t *testing.T) {
	mux, _ := newTestMux(t)

	rec := do(t, mux, http.MethodPost, "/api/genes/combined-data/", `{"gene":"bdnf"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := rec.Body.String()
	assert.Equal(t, "BDNF", gjson.Get(body, "regionData.gene.symbol").String())
	assert.Len(t, gjson.Get(body, "regionData.enhancers").Array(), 2)
	assert.Len(t, gjson.Get(body, "matrixData.bins").Array(), 30)
	assert.EqualValues(t, dbtest.BDNFTSS, gjson.Get(body, "matrixData.tss_position").Int())
	assert.Equal(t, int64(2), gjson.Get(body, "tracksData.enhancer_count").Int())
	assert.Len(t, gjson.Get(body, "exprData.expression_data").Array(), 3)
	assert.False(t, gjson.Get(body, "qualityInfo").Exists())

	rec = do(t, mux, http.MethodPost, "/api/genes/combined-data/", `{"gene":"BDNF","enhanced":true,"nbins":10}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body = rec.Body.String()
	assert.Len(t, gjson.Get(body, "matrixData.bins").Array(), 10)
	assert.Equal(t, "data_scarcity", gjson.Get(body, "qualityInfo.warnings.0.type").String())
	assert.Equal(t, "high_confidence", gjson.Get(body, "regionData.enhancers.0.quality_flag").String())
}

func TestCombinedDataRejectsBadBodies(t *testing.T) {
	mux, _ := newTestMux(t)

	cases := map[string]string{
		"not json":      `{"gene":`,
		"array":         `[1,2]`,
		"zero bins":     `{"nbins":0}`,
		"string bins":   `{"nbins":"30"}`,
		"negative tss":  `{"tss_kb":-5}`,
		"class type":    `{"classes":"conserved"}`,
		"boolean flags": `{"enhanced":"yes"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := do(t, mux, http.MethodPost, "/api/genes/combined-data/", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.NotEmpty(t, gjson.Get(rec.Body.String(), "error").String())
		})
	}

	rec := do(t, mux, http.MethodPost, "/api/genes/combined-data/", `{"gene":"NOPE"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPresets(t *testing.T) {
	mux, _ := newTestMux(t)
	rec := do(t, mux, http.MethodGet, "/api/genes/presets/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Equal(t, "Brain", gjson.Get(body, "presets.brain.tissue").String())
	assert.Equal(t, "PCSK9", gjson.Get(body, "presets.liver.genes.4").String())
	assert.Len(t, gjson.Get(body, "presets.heart.genes").Array(), 5)
}

func TestHeatmapPage(t *testing.T) {
	mux, _ := newTestMux(t)
	rec := do(t, mux, http.MethodGet, "/api/genes/heatmap/?gene=BDNF&nbins=20&log_expression=true", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "RegLand - BDNF")

	rec = do(t, mux, http.MethodGet, "/api/genes/heatmap/?gene=BDNF&mark_tss=maybe", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGeneQuality(t *testing.T) {
	mux, _ := newTestMux(t)

	rec := do(t, mux, http.MethodGet, "/api/genes/quality/?gene=bdnf", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Equal(t, "high", gjson.Get(body, "tissue_availability").String())
	assert.Equal(t, "high", gjson.Get(body, "score_availability").String())
	assert.Equal(t, 50.0, gjson.Get(body, "conservation_percent").Float())
	assert.Equal(t, []any{"human_hg38", "mouse_mm39"}, gjson.Get(body, "available_species").Value())

	assert.Equal(t, http.StatusBadRequest, do(t, mux, http.MethodGet, "/api/genes/quality/", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, mux, http.MethodGet, "/api/genes/quality/?gene=NOPE", "").Code)
}

func TestSpeciesEndpoints(t *testing.T) {
	mux, _ := newTestMux(t)

	rec := do(t, mux, http.MethodGet, "/api/species/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, gjson.Get(rec.Body.String(), "species").Array(), 2)
	assert.Equal(t, "hg38", gjson.Get(rec.Body.String(), "species.0.genome_build").String())

	rec = do(t, mux, http.MethodGet, "/api/species/biotypes/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(38000), gjson.Get(rec.Body.String(), "species_counts.0.total").Int())
}

func TestGWASEndpoints(t *testing.T) {
	mux, _ := newTestMux(t)

	rec := do(t, mux, http.MethodGet, "/api/gwas/categories/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, gjson.Get(rec.Body.String(), "categories").Array(), 2)

	rec = do(t, mux, http.MethodPost, "/api/gwas/traits/", `{"search":"alb"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Cholesterol", gjson.Get(rec.Body.String(), "traits.0.trait").String())

	rec = do(t, mux, http.MethodPost, "/api/gwas/traits/", `{"limit":null}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, gjson.Get(rec.Body.String(), "traits").Array(), 3)

	rec = do(t, mux, http.MethodPost, "/api/gwas/trait-snps/", `{"trait":"Depression","limit":1}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Len(t, gjson.Get(body, "snps").Array(), 1)
	assert.Equal(t, int64(2), gjson.Get(body, "total_count").Int())
	assert.Equal(t, "BDNF", gjson.Get(body, "snps.0.associated_genes").String())

	rec = do(t, mux, http.MethodPost, "/api/gwas/trait-snps/", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, gjson.Get(rec.Body.String(), "error").String(), "trait")
}

func TestCTCFAnalysis(t *testing.T) {
	mux, _ := newTestMux(t)

	rec := do(t, mux, http.MethodPost, "/api/analysis/ctcf/", `{"gene":"BDNF"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := rec.Body.String()
	assert.Equal(t, int64(2), gjson.Get(body, "stats.ctcf_count").Int())
	assert.Equal(t, int64(6), gjson.Get(body, "stats.enhancer_count").Int())
	assert.Equal(t, "gene", gjson.Get(body, "domain_region.link_mode").String())

	rec = do(t, mux, http.MethodPost, "/api/analysis/ctcf/", `{"gene":"BDNF","link_mode":"tad"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tad", gjson.Get(rec.Body.String(), "domain_region.source").String())

	assert.Equal(t, http.StatusBadRequest, do(t, mux, http.MethodPost, "/api/analysis/ctcf/", `{"gene":"BDNF","link_mode":"loop"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, mux, http.MethodPost, "/api/analysis/ctcf/", `{}`).Code)
}

func TestExport(t *testing.T) {
	mux, _ := newTestMux(t)

	rec := do(t, mux, http.MethodPost, "/api/export/", `{"gene":"bdnf","tissue":"Brain"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "BDNF_human_hg38_100kb_enhancers.csv")
	rows, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	rec = do(t, mux, http.MethodPost, "/api/export/", `{"gene":"BDNF","data_type":"ctcf"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rows, err = csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 4)

	assert.Equal(t, http.StatusBadRequest, do(t, mux, http.MethodPost, "/api/export/", `{"type":"png"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, mux, http.MethodPost, "/api/export/", `{"data_type":"bam"}`).Code)
}

func TestQualityEndpoints(t *testing.T) {
	mux, _ := newTestMux(t)

	rec := do(t, mux, http.MethodGet, "/api/quality/summary/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Equal(t, "human_hg38", gjson.Get(body, "species").String())
	assert.Equal(t, int64(7), gjson.Get(body, "quality_stats.enhancers_total").Int())
	assert.Len(t, gjson.Get(body, "tissue_coverage").Array(), 2)

	rec = do(t, mux, http.MethodGet, "/api/quality/tissues/?species=human_hg38", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body = rec.Body.String()
	assert.Equal(t, []any{"Brain", "Heart", "Liver"}, gjson.Get(body, "supported_tissues").Value())
	assert.Equal(t, "critical", gjson.Get(body, "tissue_coverage.0.coverage_level").String())
}

func TestMethodNotAllowed(t *testing.T) {
	mux, _ := newTestMux(t)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, mux, http.MethodGet, "/api/genes/combined-data/", "").Code)
}
