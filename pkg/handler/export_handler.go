package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/regland/regland/logger"
	"github.com/regland/regland/pkg/handler/request"
	"github.com/regland/regland/pkg/region"
)

// POST /api/export/ streams the chosen table as a CSV attachment.
func (api *APIContext) Export(w http.ResponseWriter, r *http.Request) {
	req := request.NewExportRequest()
	if err := request.Decode(r.Body, request.ExportSchema, &req); err != nil {
		writeError(w, r, err)
		return
	}

	// Buffer so a failed query can still answer with a JSON error.
	var buf bytes.Buffer
	if err := api.Regions.Export(r.Context(), req.Query(), req.DataType, &buf); err != nil {
		writeError(w, r, err)
		return
	}

	filename := region.ExportFilename(req.Query(), req.DataType)
	logger.Info("Export", zap.String("file", filename), zap.Int("bytes", buf.Len()))

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Write(buf.Bytes())
}
