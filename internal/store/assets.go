package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/erazemk/assettrack/internal/model"
)

const assetColumns = `id, name, serial_number, quantity, location, photo_ref, rfid_code,
	department_id, created_at, updated_at`

// CreateAsset creates a new asset.
func (s *SQLite) CreateAsset(ctx context.Context, a model.NewAsset) (*model.Asset, error) {
	now := Now()
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO assets (name, serial_number, quantity, location, photo_ref, rfid_code,
		                     department_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.Name, a.SerialNumber, a.Quantity, a.Location, nullString(a.PhotoRef), a.RFIDCode,
		a.DepartmentID, now, now,
	)
	if isUniqueViolation(err) {
		return nil, ErrDuplicateRFID(a.RFIDCode)
	}
	if isForeignKeyViolation(err) {
		return nil, &model.NotFoundError{Kind: "department", ID: a.DepartmentID}
	}
	if err != nil {
		return nil, StorageErr("creating asset", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, StorageErr("getting asset id", err)
	}

	return s.GetAsset(ctx, id)
}

// GetAsset returns an asset by ID.
func (s *SQLite) GetAsset(ctx context.Context, id int64) (*model.Asset, error) {
	return s.getAsset(ctx, `SELECT `+assetColumns+` FROM assets WHERE id = ?`, id)
}

// GetAssetByRFID returns the asset carrying the given RFID code.
func (s *SQLite) GetAssetByRFID(ctx context.Context, code string) (*model.Asset, error) {
	return s.getAsset(ctx, `SELECT `+assetColumns+` FROM assets WHERE rfid_code = ?`, code)
}

func (s *SQLite) getAsset(ctx context.Context, query string, arg any) (*model.Asset, error) {
	a, err := scanAsset(s.db.QueryRowContext(ctx, query, arg))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, StorageErr("getting asset", err)
	}
	return a, nil
}

// ListAssets returns a department's assets, most recently created first.
func (s *SQLite) ListAssets(ctx context.Context, departmentID int64) ([]model.Asset, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+assetColumns+` FROM assets
		 WHERE department_id = ?
		 ORDER BY created_at DESC, id DESC`, departmentID,
	)
	if err != nil {
		return nil, StorageErr("listing assets", err)
	}
	defer rows.Close()

	return scanAssets(rows)
}

// SearchAssets returns a department's assets matching query.
func (s *SQLite) SearchAssets(ctx context.Context, departmentID int64, query string) ([]model.Asset, error) {
	pattern := "%" + escapeLike(query) + "%"
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+assetColumns+` FROM assets
		 WHERE department_id = ?
		   AND (name LIKE ? ESCAPE '\' OR serial_number LIKE ? ESCAPE '\'
		        OR rfid_code LIKE ? ESCAPE '\' OR location LIKE ? ESCAPE '\')
		 ORDER BY created_at DESC, id DESC`,
		departmentID, pattern, pattern, pattern, pattern,
	)
	if err != nil {
		return nil, StorageErr("searching assets", err)
	}
	defer rows.Close()

	return scanAssets(rows)
}

// UpdateAsset applies a partial update and refreshes updated_at.
func (s *SQLite) UpdateAsset(ctx context.Context, id int64, u model.AssetUpdate) (*model.Asset, error) {
	var fields []string
	var args []any

	if u.Name != nil {
		fields = append(fields, "name = ?")
		args = append(args, *u.Name)
	}
	if u.SerialNumber != nil {
		fields = append(fields, "serial_number = ?")
		args = append(args, *u.SerialNumber)
	}
	if u.Quantity != nil {
		fields = append(fields, "quantity = ?")
		args = append(args, *u.Quantity)
	}
	if u.Location != nil {
		fields = append(fields, "location = ?")
		args = append(args, *u.Location)
	}
	if u.PhotoRef != nil {
		fields = append(fields, "photo_ref = ?")
		args = append(args, nullString(*u.PhotoRef))
	}
	if u.RFIDCode != nil {
		fields = append(fields, "rfid_code = ?")
		args = append(args, *u.RFIDCode)
	}
	fields = append(fields, "updated_at = ?")
	args = append(args, Now(), id)

	result, err := s.db.ExecContext(ctx,
		`UPDATE assets SET `+strings.Join(fields, ", ")+` WHERE id = ?`, args...,
	)
	if isUniqueViolation(err) {
		return nil, ErrDuplicateRFID(*u.RFIDCode)
	}
	if err != nil {
		return nil, StorageErr("updating asset", err)
	}
	if err := requireAffected(result, "asset", id); err != nil {
		return nil, err
	}

	return s.GetAsset(ctx, id)
}

// DeleteAsset permanently deletes an asset. Recorded scans are untouched.
func (s *SQLite) DeleteAsset(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM assets WHERE id = ?`, id)
	if err != nil {
		return StorageErr("deleting asset", err)
	}
	return requireAffected(result, "asset", id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAsset(row rowScanner) (*model.Asset, error) {
	a := &model.Asset{}
	var photoRef sql.NullString
	err := row.Scan(&a.ID, &a.Name, &a.SerialNumber, &a.Quantity, &a.Location, &photoRef, &a.RFIDCode,
		&a.DepartmentID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.PhotoRef = photoRef.String
	return a, nil
}

func scanAssets(rows *sql.Rows) ([]model.Asset, error) {
	assets := []model.Asset{}
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, StorageErr("scanning asset", err)
		}
		assets = append(assets, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, StorageErr("iterating assets", err)
	}
	return assets, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
