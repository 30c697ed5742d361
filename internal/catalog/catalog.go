// Package catalog manages a department's registered assets.
package catalog

import (
	"context"
	"log/slog"
	"strings"

	"github.com/erazemk/assettrack/internal/model"
	"github.com/erazemk/assettrack/internal/store"
)

// Service is the asset catalog of one store. Every operation is scoped by
// department; an asset of another department is reported as not found.
type Service struct {
	store store.Store
}

// New returns a catalog backed by s.
func New(s store.Store) *Service {
	return &Service{store: s}
}

// Create validates and stores a new asset in the department.
func (c *Service) Create(ctx context.Context, departmentID int64, in model.NewAsset) (*model.Asset, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.SerialNumber = strings.TrimSpace(in.SerialNumber)
	in.Location = strings.TrimSpace(in.Location)
	in.RFIDCode = strings.TrimSpace(in.RFIDCode)
	in.DepartmentID = departmentID

	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := c.requireDepartment(ctx, departmentID); err != nil {
		return nil, err
	}

	a, err := c.store.CreateAsset(ctx, in)
	if err != nil {
		return nil, err
	}
	slog.Info("asset created", "id", a.ID, "rfid_code", a.RFIDCode, "department_id", departmentID)
	return a, nil
}

// Get returns the asset with the given ID.
func (c *Service) Get(ctx context.Context, departmentID, id int64) (*model.Asset, error) {
	a, err := c.store.GetAsset(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil || a.DepartmentID != departmentID {
		return nil, &model.NotFoundError{Kind: "asset", ID: id}
	}
	return a, nil
}

// LookupRFID returns the department's asset carrying code.
func (c *Service) LookupRFID(ctx context.Context, departmentID int64, code string) (*model.Asset, error) {
	a, err := c.store.GetAssetByRFID(ctx, code)
	if err != nil {
		return nil, err
	}
	if a == nil || a.DepartmentID != departmentID {
		return nil, &model.NotFoundError{Kind: "rfid code", ID: code}
	}
	return a, nil
}

// Update applies a partial update. Supplied text fields are trimmed and
// must stay non-blank.
func (c *Service) Update(ctx context.Context, departmentID, id int64, u model.AssetUpdate) (*model.Asset, error) {
	trim(u.Name)
	trim(u.SerialNumber)
	trim(u.Location)
	trim(u.RFIDCode)

	if err := u.Validate(); err != nil {
		return nil, err
	}
	if _, err := c.Get(ctx, departmentID, id); err != nil {
		return nil, err
	}

	a, err := c.store.UpdateAsset(ctx, id, u)
	if err != nil {
		return nil, err
	}
	slog.Info("asset updated", "id", id)
	return a, nil
}

// Delete permanently removes an asset and returns what was deleted.
// Scans that recorded its code are kept.
func (c *Service) Delete(ctx context.Context, departmentID, id int64) (*model.Asset, error) {
	a, err := c.Get(ctx, departmentID, id)
	if err != nil {
		return nil, err
	}
	if err := c.store.DeleteAsset(ctx, id); err != nil {
		return nil, err
	}
	slog.Info("asset deleted", "id", id, "rfid_code", a.RFIDCode)
	return a, nil
}

// List returns the department's assets, newest first.
func (c *Service) List(ctx context.Context, departmentID int64) ([]model.Asset, error) {
	return c.store.ListAssets(ctx, departmentID)
}

// Search returns the assets whose name, serial number, RFID code or
// location contains query, ignoring case. A blank query lists everything.
func (c *Service) Search(ctx context.Context, departmentID int64, query string) ([]model.Asset, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return c.List(ctx, departmentID)
	}
	return c.store.SearchAssets(ctx, departmentID, query)
}

func (c *Service) requireDepartment(ctx context.Context, id int64) error {
	d, err := c.store.GetDepartment(ctx, id)
	if err != nil {
		return err
	}
	if d == nil {
		return &model.NotFoundError{Kind: "department", ID: id}
	}
	return nil
}

func trim(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}
