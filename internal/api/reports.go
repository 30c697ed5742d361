package api

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/assettrack/internal/catalog"
	"github.com/erazemk/assettrack/internal/report"
)

// ReportsHandler handles catalog statistics and export.
type ReportsHandler struct {
	Catalog *catalog.Service
}

// Summary handles GET /api/reports/summary.
func (h *ReportsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	assets, err := h.Catalog.List(r.Context(), claims.DepartmentID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, report.Summarize(assets))
}

// AssetsCSV handles GET /api/reports/assets.csv.
func (h *ReportsHandler) AssetsCSV(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	assets, err := h.Catalog.List(r.Context(), claims.DepartmentID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	attachment(w, "assets.csv")
	w.WriteHeader(http.StatusOK)
	if err := report.WriteCSV(w, assets); err != nil {
		slog.Error("writing assets csv", "error", err)
	}
}
