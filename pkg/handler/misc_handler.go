// Handler for miscellaneous endpoints such as health check

package handler

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/regland/regland/logger"
)

type HealthResponse struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Database  string    `json:"database"`
	Version   string    `json:"version,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Error     string    `json:"error,omitempty"`
}

func (api *APIContext) HealthCheck(w http.ResponseWriter, r *http.Request) {

	response := HealthResponse{
		Status:    "healthy",
		Message:   "RegLand API is running",
		Database:  "connected",
		Version:   api.Version,
		Timestamp: time.Now(),
	}

	w.Header().Set("Cache-Control", "no-store")
	if err := api.Store.Ping(r.Context()); err != nil {
		logger.Warn("Health check failed", zap.Error(err))
		response.Status = "unhealthy"
		response.Message = "Database connection failed"
		response.Database = "disconnected"
		response.Error = err.Error()
		writeJSON(w, http.StatusServiceUnavailable, response)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

type Preset struct {
	Tissue string   `json:"tissue"`
	Genes  []string `json:"genes"`
}

var genePresets = map[string]Preset{
	"brain": {Tissue: "Brain", Genes: []string{"BDNF", "SCN1A", "GRIN2B", "DRD2", "APOE"}},
	"heart": {Tissue: "Heart", Genes: []string{"TTN", "MYH6", "MYH7", "PLN", "KCNQ1"}},
	"liver": {Tissue: "Liver", Genes: []string{"ALB", "APOB", "CYP3A4", "HNF4A", "PCSK9"}},
}

func GenePresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"presets": genePresets})
}
