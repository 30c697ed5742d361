// Package inventory runs inventory sessions: it starts sessions, appends RFID
// scans to their log and reconciles the log against the asset catalog.
package inventory

import (
	"context"
	"log/slog"
	"strings"

	"github.com/erazemk/assettrack/internal/metrics"
	"github.com/erazemk/assettrack/internal/model"
	"github.com/erazemk/assettrack/internal/store"
)

// Service implements the session manager, scan log and reconciliation engine.
// It holds no current-session state; every call names its session.
type Service struct {
	store   store.Store
	metrics *metrics.Metrics
}

// New returns a Service backed by s. m may be nil.
func New(s store.Store, m *metrics.Metrics) *Service {
	return &Service{store: s, metrics: m}
}

// StartSession creates a session in the department.
func (s *Service) StartSession(ctx context.Context, name string, departmentID int64) (*model.InventorySession, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &model.ValidationError{Field: "name", Message: "session name is required"}
	}
	if err := s.requireDepartment(ctx, departmentID); err != nil {
		return nil, err
	}

	sess, err := s.store.CreateSession(ctx, name, departmentID)
	if err != nil {
		return nil, err
	}
	s.metrics.SessionStarted()
	slog.Info("session started", "id", sess.ID, "name", sess.Name, "department_id", departmentID)
	return sess, nil
}

// GetSession returns a session by ID.
func (s *Service) GetSession(ctx context.Context, id int64) (*model.InventorySession, error) {
	sess, err := s.store.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, &model.NotFoundError{Kind: "session", ID: id}
	}
	return sess, nil
}

// ListSessions returns the department's sessions, newest first.
func (s *Service) ListSessions(ctx context.Context, departmentID int64) ([]model.InventorySession, error) {
	return s.store.ListSessions(ctx, departmentID)
}

// DeleteSession removes a session together with its scans.
func (s *Service) DeleteSession(ctx context.Context, id int64) error {
	if err := s.store.DeleteSession(ctx, id); err != nil {
		return err
	}
	slog.Info("session deleted", "id", id)
	return nil
}

// RecordScan appends code to the session's scan log. The code is stored as
// read and is not checked against the catalog; duplicates are kept.
func (s *Service) RecordScan(ctx context.Context, sessionID int64, code string) (*model.InventoryScan, error) {
	if sessionID <= 0 {
		return nil, errNoSession()
	}
	if code == "" {
		return nil, &model.ValidationError{Field: "rfid_code", Message: "rfid code is required"}
	}

	scan, err := s.store.AddScan(ctx, sessionID, code)
	if model.IsNotFound(err) {
		return nil, &model.StateError{Message: "session does not exist; start a session first"}
	}
	if err != nil {
		return nil, err
	}
	s.metrics.ScanRecorded()
	slog.Info("scan recorded", "session_id", sessionID, "rfid_code", code)
	return scan, nil
}

// ListScans returns the session's scans in the order they were recorded.
func (s *Service) ListScans(ctx context.Context, sessionID int64) ([]model.InventoryScan, error) {
	return s.store.ListScans(ctx, sessionID)
}

// Reconcile compares the session's scans against the department's catalog
// as it is now.
func (s *Service) Reconcile(ctx context.Context, sessionID, departmentID int64) (model.Result, error) {
	if err := s.requireDepartment(ctx, departmentID); err != nil {
		return model.Result{}, err
	}
	if _, err := s.GetSession(ctx, sessionID); err != nil {
		return model.Result{}, err
	}

	assets, err := s.store.ListAssets(ctx, departmentID)
	if err != nil {
		return model.Result{}, err
	}
	scans, err := s.store.ListScans(ctx, sessionID)
	if err != nil {
		return model.Result{}, err
	}

	result := Partition(assets, scans)
	unmatched := len(result.Unmatched())
	s.metrics.ObserveReconciliation(len(result.Found), len(result.Missing), unmatched)
	slog.Info("inventory reconciled",
		"session_id", sessionID,
		"found", len(result.Found),
		"missing", len(result.Missing),
		"scanned", len(result.Scanned),
		"unmatched", unmatched,
	)
	return result, nil
}

func (s *Service) requireDepartment(ctx context.Context, id int64) error {
	d, err := s.store.GetDepartment(ctx, id)
	if err != nil {
		return err
	}
	if d == nil {
		return &model.NotFoundError{Kind: "department", ID: id}
	}
	return nil
}

func errNoSession() error {
	return &model.StateError{Message: "no active session; start a session first"}
}
