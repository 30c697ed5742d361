package store

import (
	"context"
	"crypto/rand"
	"encoding/hex"
)

// NewSecret returns a random hex-encoded 32 byte secret.
func NewSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// JWTSecret retrieves the JWT secret from the database.
// If no secret exists, it generates one, stores it, and returns it.
// Uses INSERT OR IGNORE + re-SELECT to avoid TOCTOU race on concurrent startup.
func (s *SQLite) JWTSecret(ctx context.Context) (string, error) {
	candidate, err := NewSecret()
	if err != nil {
		return "", StorageErr("generating jwt secret", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (key, value) VALUES ('jwt_secret', ?)`,
		candidate,
	)
	if err != nil {
		return "", StorageErr("storing jwt_secret", err)
	}

	// Always read back (either our insert or the existing value).
	var secret string
	err = s.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = 'jwt_secret'`,
	).Scan(&secret)
	if err != nil {
		return "", StorageErr("querying jwt_secret", err)
	}

	return secret, nil
}
