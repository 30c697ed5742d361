package store

import (
	"context"
	"database/sql"

	"github.com/erazemk/assettrack/internal/model"
)

// CreateDepartment creates a department owned by userID.
func (s *SQLite) CreateDepartment(ctx context.Context, name string, userID int64) (*model.Department, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO departments (name, user_id, created_at) VALUES (?, ?, ?)`,
		name, userID, Now(),
	)
	if isForeignKeyViolation(err) {
		return nil, &model.NotFoundError{Kind: "user", ID: userID}
	}
	if err != nil {
		return nil, StorageErr("creating department", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, StorageErr("getting department id", err)
	}

	return s.GetDepartment(ctx, id)
}

// GetDepartment returns a department by ID.
func (s *SQLite) GetDepartment(ctx context.Context, id int64) (*model.Department, error) {
	return s.getDepartment(ctx, `SELECT id, name, user_id, created_at FROM departments WHERE id = ?`, id)
}

// GetDepartmentByUser returns the department owned by userID.
func (s *SQLite) GetDepartmentByUser(ctx context.Context, userID int64) (*model.Department, error) {
	return s.getDepartment(ctx,
		`SELECT id, name, user_id, created_at FROM departments WHERE user_id = ? ORDER BY id LIMIT 1`, userID)
}

func (s *SQLite) getDepartment(ctx context.Context, query string, arg any) (*model.Department, error) {
	d := &model.Department{}
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&d.ID, &d.Name, &d.UserID, &d.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, StorageErr("getting department", err)
	}
	return d, nil
}

// DeleteDepartment deletes a department. Assets, sessions and scans go with
// it through ON DELETE CASCADE.
func (s *SQLite) DeleteDepartment(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM departments WHERE id = ?`, id)
	if err != nil {
		return StorageErr("deleting department", err)
	}
	return requireAffected(result, "department", id)
}
