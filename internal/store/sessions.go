package store

import (
	"context"
	"database/sql"

	"github.com/erazemk/assettrack/internal/model"
)

// CreateSession creates an inventory session started now.
func (s *SQLite) CreateSession(ctx context.Context, name string, departmentID int64) (*model.InventorySession, error) {
	now := Now()
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO inventory_sessions (name, started_at, department_id, created_at) VALUES (?, ?, ?, ?)`,
		name, now, departmentID, now,
	)
	if isForeignKeyViolation(err) {
		return nil, &model.NotFoundError{Kind: "department", ID: departmentID}
	}
	if err != nil {
		return nil, StorageErr("creating session", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, StorageErr("getting session id", err)
	}

	return s.GetSession(ctx, id)
}

// GetSession returns a session by ID.
func (s *SQLite) GetSession(ctx context.Context, id int64) (*model.InventorySession, error) {
	sess := &model.InventorySession{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, started_at, department_id, created_at
		 FROM inventory_sessions WHERE id = ?`, id,
	).Scan(&sess.ID, &sess.Name, &sess.StartedAt, &sess.DepartmentID, &sess.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, StorageErr("getting session", err)
	}
	return sess, nil
}

// ListSessions returns a department's sessions, newest first.
func (s *SQLite) ListSessions(ctx context.Context, departmentID int64) ([]model.InventorySession, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, started_at, department_id, created_at
		 FROM inventory_sessions WHERE department_id = ?
		 ORDER BY created_at DESC, id DESC`, departmentID,
	)
	if err != nil {
		return nil, StorageErr("listing sessions", err)
	}
	defer rows.Close()

	sessions := []model.InventorySession{}
	for rows.Next() {
		var sess model.InventorySession
		if err := rows.Scan(&sess.ID, &sess.Name, &sess.StartedAt, &sess.DepartmentID, &sess.CreatedAt); err != nil {
			return nil, StorageErr("scanning session", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, StorageErr("iterating sessions", err)
	}
	return sessions, nil
}

// DeleteSession deletes a session and, by cascade, its scans.
func (s *SQLite) DeleteSession(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM inventory_sessions WHERE id = ?`, id)
	if err != nil {
		return StorageErr("deleting session", err)
	}
	return requireAffected(result, "session", id)
}
