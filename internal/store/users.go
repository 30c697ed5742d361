package store

import (
	"context"
	"database/sql"

	"github.com/erazemk/assettrack/internal/model"
)

// Setup creates the user and department in one transaction.
func (s *SQLite) Setup(ctx context.Context, username, passwordHash, departmentName string) (*model.User, *model.Department, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, StorageErr("beginning transaction", err)
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return nil, nil, StorageErr("counting users", err)
	}
	if count > 0 {
		return nil, nil, ErrAlreadySetUp()
	}

	now := Now()
	result, err := tx.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, created_at) VALUES (?, ?, ?)`,
		username, passwordHash, now,
	)
	if err != nil {
		return nil, nil, StorageErr("creating user", err)
	}
	userID, err := result.LastInsertId()
	if err != nil {
		return nil, nil, StorageErr("getting user id", err)
	}

	result, err = tx.ExecContext(ctx,
		`INSERT INTO departments (name, user_id, created_at) VALUES (?, ?, ?)`,
		departmentName, userID, now,
	)
	if err != nil {
		return nil, nil, StorageErr("creating department", err)
	}
	deptID, err := result.LastInsertId()
	if err != nil {
		return nil, nil, StorageErr("getting department id", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, StorageErr("committing setup", err)
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	dept, err := s.GetDepartment(ctx, deptID)
	if err != nil {
		return nil, nil, err
	}
	return user, dept, nil
}

// CreateUser creates a new user.
func (s *SQLite) CreateUser(ctx context.Context, username, passwordHash string) (*model.User, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, created_at) VALUES (?, ?, ?)`,
		username, passwordHash, Now(),
	)
	if isUniqueViolation(err) {
		return nil, ErrDuplicateUsername(username)
	}
	if err != nil {
		return nil, StorageErr("creating user", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, StorageErr("getting user id", err)
	}

	return s.GetUser(ctx, id)
}

// GetUser returns a user by ID.
func (s *SQLite) GetUser(ctx context.Context, id int64) (*model.User, error) {
	return s.getUser(ctx, `SELECT id, username, password_hash, created_at FROM users WHERE id = ?`, id)
}

// GetUserByUsername returns a user by username.
func (s *SQLite) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.getUser(ctx, `SELECT id, username, password_hash, created_at FROM users WHERE username = ?`, username)
}

func (s *SQLite) getUser(ctx context.Context, query string, arg any) (*model.User, error) {
	u := &model.User{}
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, StorageErr("getting user", err)
	}
	return u, nil
}

// CountUsers returns the number of users.
func (s *SQLite) CountUsers(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, StorageErr("counting users", err)
	}
	return count, nil
}

// UpdateUserPassword updates a user's password hash.
func (s *SQLite) UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ?`,
		passwordHash, id,
	)
	if err != nil {
		return StorageErr("updating user password", err)
	}
	return requireAffected(result, "user", id)
}

// requireAffected turns a zero-row mutation into a NotFoundError.
func requireAffected(result sql.Result, kind string, id int64) error {
	n, err := result.RowsAffected()
	if err != nil {
		return StorageErr("reading affected rows", err)
	}
	if n == 0 {
		return &model.NotFoundError{Kind: kind, ID: id}
	}
	return nil
}
