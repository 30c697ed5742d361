// Package store defines the persistence contract shared by the inventory
// core and its storage backends, and implements the SQLite backend.
package store

import (
	"context"
	"time"

	"github.com/erazemk/assettrack/internal/model"
)

// Get methods return (nil, nil) when the record does not exist. Mutations of
// a missing record return *model.NotFoundError. Failures of the backend
// itself are returned as *model.StorageError.

// Users persists the local account.
type Users interface {
	// Setup creates the user and their department together. It fails with
	// *model.StateError if a user already exists.
	Setup(ctx context.Context, username, passwordHash, departmentName string) (*model.User, *model.Department, error)
	CreateUser(ctx context.Context, username, passwordHash string) (*model.User, error)
	GetUser(ctx context.Context, id int64) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	CountUsers(ctx context.Context) (int, error)
	UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error
}

// Departments persists department scopes.
type Departments interface {
	CreateDepartment(ctx context.Context, name string, userID int64) (*model.Department, error)
	GetDepartment(ctx context.Context, id int64) (*model.Department, error)
	GetDepartmentByUser(ctx context.Context, userID int64) (*model.Department, error)
	// DeleteDepartment cascades to the department's assets, sessions and scans.
	DeleteDepartment(ctx context.Context, id int64) error
}

// Assets persists the asset catalog. RFID codes are unique across all
// assets; a write that would duplicate one fails with *model.ValidationError.
type Assets interface {
	CreateAsset(ctx context.Context, a model.NewAsset) (*model.Asset, error)
	GetAsset(ctx context.Context, id int64) (*model.Asset, error)
	GetAssetByRFID(ctx context.Context, code string) (*model.Asset, error)
	// ListAssets returns the department's assets, most recently created first.
	ListAssets(ctx context.Context, departmentID int64) ([]model.Asset, error)
	// SearchAssets matches query case-insensitively as a substring of name,
	// serial number, RFID code or location, in ListAssets order.
	SearchAssets(ctx context.Context, departmentID int64, query string) ([]model.Asset, error)
	UpdateAsset(ctx context.Context, id int64, u model.AssetUpdate) (*model.Asset, error)
	DeleteAsset(ctx context.Context, id int64) error
}

// Sessions persists inventory sessions.
type Sessions interface {
	CreateSession(ctx context.Context, name string, departmentID int64) (*model.InventorySession, error)
	GetSession(ctx context.Context, id int64) (*model.InventorySession, error)
	// ListSessions returns the department's sessions, newest first.
	ListSessions(ctx context.Context, departmentID int64) ([]model.InventorySession, error)
	// DeleteSession cascades to the session's scans.
	DeleteSession(ctx context.Context, id int64) error
}

// Scans persists the append-only scan log.
type Scans interface {
	// AddScan fails with *model.NotFoundError if the session does not exist.
	AddScan(ctx context.Context, sessionID int64, code string) (*model.InventoryScan, error)
	// ListScans returns the session's scans in ascending timestamp order.
	ListScans(ctx context.Context, sessionID int64) ([]model.InventoryScan, error)
}

// Settings persists server settings and revoked tokens.
type Settings interface {
	// JWTSecret returns the signing secret, generating and storing it on
	// first use.
	JWTSecret(ctx context.Context) (string, error)
	RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

// Store is the persistence adapter consumed by the rest of the application.
type Store interface {
	Users
	Departments
	Assets
	Sessions
	Scans
	Settings
	Close() error
}

// Kinds of backend selectable at startup.
const (
	KindSQLite   = "sqlite"
	KindDocument = "doc"
)

// Now returns the current time as stored by backends.
var Now = func() time.Time { return time.Now().UTC() }

// StorageErr wraps a backend failure for operation op.
func StorageErr(op string, err error) error {
	return &model.StorageError{Op: op, Err: err}
}

// ErrDuplicateRFID returns the validation error for an RFID code already in use.
func ErrDuplicateRFID(code string) error {
	return &model.ValidationError{Field: "rfid_code", Message: "rfid code " + code + " is already in use"}
}

// ErrDuplicateUsername returns the validation error for a taken username.
func ErrDuplicateUsername(username string) error {
	return &model.ValidationError{Field: "username", Message: "username " + username + " is already in use"}
}

// ErrAlreadySetUp is returned by Setup when a user already exists.
func ErrAlreadySetUp() error {
	return &model.StateError{Message: "setup has already been completed"}
}
