package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/erazemk/assettrack/internal/inventory"
	"github.com/erazemk/assettrack/internal/model"
	"github.com/erazemk/assettrack/internal/report"
)

// SessionsHandler handles inventory session endpoints.
type SessionsHandler struct {
	Inventory *inventory.Service
}

type createSessionRequest struct {
	Name string `json:"name"`
}

type recordScanRequest struct {
	RFIDCode string `json:"rfid_code"`
}

type resultResponse struct {
	Session   *model.InventorySession `json:"session"`
	Found     []model.Asset           `json:"found"`
	Missing   []model.Asset           `json:"missing"`
	Scanned   []model.InventoryScan   `json:"scanned"`
	Unmatched []string                `json:"unmatched"`
}

// List handles GET /api/sessions.
func (h *SessionsHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	sessions, err := h.Inventory.ListSessions(r.Context(), claims.DepartmentID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, sessions)
}

// Create handles POST /api/sessions.
func (h *SessionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims := GetClaims(r.Context())
	sess, err := h.Inventory.StartSession(r.Context(), req.Name, claims.DepartmentID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, sess)
}

// Get handles GET /api/sessions/{id}.
func (h *SessionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, sess)
}

// Delete handles DELETE /api/sessions/{id}. The session's scans go with it.
func (h *SessionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Inventory.DeleteSession(r.Context(), sess.ID); err != nil {
		writeError(w, r, err)
		return
	}
	jsonMessage(w, "session deleted")
}

// RecordScan handles POST /api/sessions/{id}/scans.
func (h *SessionsHandler) RecordScan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req recordScanRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// A session of another department is hidden; an unknown one is left to
	// RecordScan, which reports that no session is active.
	claims := GetClaims(r.Context())
	if sess, err := h.Inventory.GetSession(r.Context(), id); err == nil && sess.DepartmentID != claims.DepartmentID {
		writeError(w, r, &model.NotFoundError{Kind: "session", ID: id})
		return
	}

	scan, err := h.Inventory.RecordScan(r.Context(), id, req.RFIDCode)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, scan)
}

// ListScans handles GET /api/sessions/{id}/scans.
func (h *SessionsHandler) ListScans(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	scans, err := h.Inventory.ListScans(r.Context(), sess.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, scans)
}

// Result handles GET /api/sessions/{id}/result. With format=csv the result
// is downloaded as a spreadsheet.
func (h *SessionsHandler) Result(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	claims := GetClaims(r.Context())
	result, err := h.Inventory.Reconcile(r.Context(), sess.ID, claims.DepartmentID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		jsonResponse(w, http.StatusOK, resultResponse{
			Session:   sess,
			Found:     result.Found,
			Missing:   result.Missing,
			Scanned:   result.Scanned,
			Unmatched: result.Unmatched(),
		})
	case "csv":
		attachment(w, fmt.Sprintf("session-%d.csv", sess.ID))
		w.WriteHeader(http.StatusOK)
		if err := report.WriteResultCSV(w, result); err != nil {
			slog.Error("writing result csv", "session_id", sess.ID, "error", err)
		}
	default:
		jsonError(w, http.StatusBadRequest, "unknown format "+format)
	}
}

// session loads the {id} session if it belongs to the caller's department.
func (h *SessionsHandler) session(r *http.Request) (*model.InventorySession, error) {
	id, err := pathID(r)
	if err != nil {
		return nil, err
	}
	sess, err := h.Inventory.GetSession(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if sess.DepartmentID != GetClaims(r.Context()).DepartmentID {
		return nil, &model.NotFoundError{Kind: "session", ID: id}
	}
	return sess, nil
}
