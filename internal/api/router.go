// Package api serves the JSON HTTP interface.
package api

import (
	"net/http"

	"github.com/erazemk/assettrack/internal/auth"
	"github.com/erazemk/assettrack/internal/catalog"
	"github.com/erazemk/assettrack/internal/inventory"
	"github.com/erazemk/assettrack/internal/metrics"
	"github.com/erazemk/assettrack/internal/photos"
	"github.com/erazemk/assettrack/internal/store"
)

// Deps are the services the API is built on. Metrics may be nil.
type Deps struct {
	Store     store.Store
	Auth      *auth.Service
	Catalog   *catalog.Service
	Inventory *inventory.Service
	Photos    *photos.Store
	Metrics   *metrics.Metrics
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{Auth: d.Auth, Store: d.Store}
	assetsHandler := &AssetsHandler{Catalog: d.Catalog, Photos: d.Photos}
	sessionsHandler := &SessionsHandler{Inventory: d.Inventory}
	reportsHandler := &ReportsHandler{Catalog: d.Catalog}

	authMW := AuthMiddleware(d.Auth)
	protect := func(h http.HandlerFunc) http.Handler { return authMW(h) }

	// Public: first-run setup and login.
	mux.HandleFunc("GET /api/setup", authHandler.SetupStatus)
	mux.HandleFunc("POST /api/setup", authHandler.Setup)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	mux.Handle("POST /api/auth/logout", protect(authHandler.Logout))
	mux.Handle("PUT /api/auth/password", protect(authHandler.ChangePassword))
	mux.Handle("GET /api/department", protect(authHandler.Department))

	// Assets.
	mux.Handle("GET /api/assets", protect(assetsHandler.List))
	mux.Handle("POST /api/assets", protect(assetsHandler.Create))
	mux.Handle("GET /api/assets/{id}", protect(assetsHandler.Get))
	mux.Handle("PATCH /api/assets/{id}", protect(assetsHandler.Update))
	mux.Handle("DELETE /api/assets/{id}", protect(assetsHandler.Delete))
	mux.Handle("PUT /api/assets/{id}/photo", protect(assetsHandler.UploadPhoto))
	mux.Handle("GET /api/assets/{id}/photo", protect(assetsHandler.GetPhoto))
	mux.Handle("GET /api/rfid/{code}", protect(assetsHandler.LookupRFID))

	// Inventory sessions.
	mux.Handle("GET /api/sessions", protect(sessionsHandler.List))
	mux.Handle("POST /api/sessions", protect(sessionsHandler.Create))
	mux.Handle("GET /api/sessions/{id}", protect(sessionsHandler.Get))
	mux.Handle("DELETE /api/sessions/{id}", protect(sessionsHandler.Delete))
	mux.Handle("POST /api/sessions/{id}/scans", protect(sessionsHandler.RecordScan))
	mux.Handle("GET /api/sessions/{id}/scans", protect(sessionsHandler.ListScans))
	mux.Handle("GET /api/sessions/{id}/result", protect(sessionsHandler.Result))

	// Reports.
	mux.Handle("GET /api/reports/summary", protect(reportsHandler.Summary))
	mux.Handle("GET /api/reports/assets.csv", protect(reportsHandler.AssetsCSV))

	if d.Metrics != nil {
		mux.Handle("GET /metrics", d.Metrics.Handler())
	}

	return mux
}
