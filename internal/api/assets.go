package api

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/assettrack/internal/catalog"
	"github.com/erazemk/assettrack/internal/imaging"
	"github.com/erazemk/assettrack/internal/model"
	"github.com/erazemk/assettrack/internal/photos"
)

// AssetsHandler handles asset catalog endpoints.
type AssetsHandler struct {
	Catalog *catalog.Service
	Photos  *photos.Store
}

type createAssetRequest struct {
	Name         string `json:"name"`
	SerialNumber string `json:"serial_number"`
	Quantity     *int   `json:"quantity"`
	Location     string `json:"location"`
	RFIDCode     string `json:"rfid_code"`
}

type updateAssetRequest struct {
	Name         *string `json:"name"`
	SerialNumber *string `json:"serial_number"`
	Quantity     *int    `json:"quantity"`
	Location     *string `json:"location"`
	RFIDCode     *string `json:"rfid_code"`
}

// List handles GET /api/assets. The optional q parameter searches.
func (h *AssetsHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	assets, err := h.Catalog.Search(r.Context(), claims.DepartmentID, r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, assets)
}

// Create handles POST /api/assets. Quantity defaults to 1.
func (h *AssetsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAssetRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	claims := GetClaims(r.Context())
	asset, err := h.Catalog.Create(r.Context(), claims.DepartmentID, model.NewAsset{
		Name:         req.Name,
		SerialNumber: req.SerialNumber,
		Quantity:     quantity,
		Location:     req.Location,
		RFIDCode:     req.RFIDCode,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, asset)
}

// Get handles GET /api/assets/{id}.
func (h *AssetsHandler) Get(w http.ResponseWriter, r *http.Request) {
	asset, err := h.asset(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, asset)
}

// LookupRFID handles GET /api/rfid/{code}.
func (h *AssetsHandler) LookupRFID(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	asset, err := h.Catalog.LookupRFID(r.Context(), claims.DepartmentID, r.PathValue("code"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, asset)
}

// Update handles PATCH /api/assets/{id}. Omitted fields are left unchanged.
func (h *AssetsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req updateAssetRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims := GetClaims(r.Context())
	asset, err := h.Catalog.Update(r.Context(), claims.DepartmentID, id, model.AssetUpdate{
		Name:         req.Name,
		SerialNumber: req.SerialNumber,
		Quantity:     req.Quantity,
		Location:     req.Location,
		RFIDCode:     req.RFIDCode,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, asset)
}

// Delete handles DELETE /api/assets/{id}.
func (h *AssetsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	claims := GetClaims(r.Context())
	asset, err := h.Catalog.Delete(r.Context(), claims.DepartmentID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.removePhoto(r, asset.PhotoRef)
	jsonMessage(w, "asset deleted")
}

// UploadPhoto handles PUT /api/assets/{id}/photo with a multipart "photo" file.
func (h *AssetsHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	asset, err := h.asset(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadBytes+1<<20)
	file, _, err := r.FormFile("photo")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "photo file required")
		return
	}
	defer file.Close()

	photo, err := imaging.Process(file)
	if err != nil {
		writeError(w, r, err)
		return
	}

	key, err := h.Photos.Put(r.Context(), bytes.NewReader(photo.Data))
	if err != nil {
		writeError(w, r, err)
		return
	}

	claims := GetClaims(r.Context())
	updated, err := h.Catalog.Update(r.Context(), claims.DepartmentID, asset.ID, model.AssetUpdate{PhotoRef: &key})
	if err != nil {
		h.removePhoto(r, key)
		writeError(w, r, err)
		return
	}
	h.removePhoto(r, asset.PhotoRef)

	slog.Info("photo uploaded", "asset_id", asset.ID, "key", key, "width", photo.Width, "height", photo.Height)
	jsonResponse(w, http.StatusOK, updated)
}

// GetPhoto handles GET /api/assets/{id}/photo.
func (h *AssetsHandler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	asset, err := h.asset(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if asset.PhotoRef == "" {
		jsonError(w, http.StatusNotFound, "asset has no photo")
		return
	}

	rc, err := h.Photos.Open(r.Context(), asset.PhotoRef)
	if errors.Is(err, photos.ErrNotFound) {
		slog.Warn("photo blob missing", "asset_id", asset.ID, "key", asset.PhotoRef)
		jsonError(w, http.StatusNotFound, "asset has no photo")
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", imaging.ContentType)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		slog.Error("writing photo", "asset_id", asset.ID, "error", err)
	}
}

func (h *AssetsHandler) asset(r *http.Request) (*model.Asset, error) {
	id, err := pathID(r)
	if err != nil {
		return nil, err
	}
	claims := GetClaims(r.Context())
	return h.Catalog.Get(r.Context(), claims.DepartmentID, id)
}

// removePhoto deletes a blob that is no longer referenced. Failures only
// leave an orphaned file, so they are logged and not returned.
func (h *AssetsHandler) removePhoto(r *http.Request, key string) {
	if key == "" {
		return
	}
	if err := h.Photos.Delete(r.Context(), key); err != nil {
		slog.Warn("deleting photo", "key", key, "error", err)
	}
}

func attachment(w http.ResponseWriter, filename string) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(filename))
}
