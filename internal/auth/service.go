package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/assettrack/internal/model"
	"github.com/erazemk/assettrack/internal/store"
)

var (
	// ErrInvalidCredentials is returned for a wrong username or password.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrInvalidToken is returned for a malformed, expired or revoked token.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Session is the result of a successful setup or login.
type Session struct {
	Token      string            `json:"token"`
	User       *model.User       `json:"user"`
	Department *model.Department `json:"department"`
}

// Service owns the single local account.
type Service struct {
	store  store.Store
	secret string

	// Cost is the bcrypt cost for new hashes.
	Cost int
}

// New returns a Service signing tokens with secret.
func New(s store.Store, secret string) *Service {
	return &Service{store: s, secret: secret, Cost: bcrypt.DefaultCost}
}

// SetupRequired reports whether no account exists yet.
func (a *Service) SetupRequired(ctx context.Context) (bool, error) {
	n, err := a.store.CountUsers(ctx)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// Setup creates the account and its department and logs the user in.
func (a *Service) Setup(ctx context.Context, username, password, departmentName string) (*Session, error) {
	username = strings.TrimSpace(username)
	departmentName = strings.TrimSpace(departmentName)
	if err := model.ValidateSetup(username, password, departmentName); err != nil {
		return nil, err
	}

	hash, err := a.hash(password)
	if err != nil {
		return nil, err
	}
	user, dept, err := a.store.Setup(ctx, username, hash, departmentName)
	if err != nil {
		return nil, err
	}
	slog.Info("setup completed", "username", user.Username, "department", dept.Name)
	return a.issue(user, dept)
}

// Login checks the credential and issues a token.
func (a *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	user, err := a.store.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	dept, err := a.store.GetDepartmentByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if dept == nil {
		return nil, &model.StateError{Message: "user has no department"}
	}
	slog.Info("user logged in", "username", user.Username)
	return a.issue(user, dept)
}

// Authenticate validates a bearer token and checks it was not revoked.
func (a *Service) Authenticate(ctx context.Context, token string) (*Claims, error) {
	claims, err := ValidateToken(a.secret, token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	revoked, err := a.store.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Logout revokes the token until it would have expired anyway.
func (a *Service) Logout(ctx context.Context, claims *Claims) error {
	if err := a.store.RevokeToken(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return err
	}
	slog.Info("user logged out", "username", claims.Username)
	return nil
}

// ChangePassword replaces the user's password after checking the current one.
func (a *Service) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	if err := model.ValidatePassword(next); err != nil {
		return err
	}
	user, err := a.store.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return &model.NotFoundError{Kind: "user", ID: userID}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := a.hash(next)
	if err != nil {
		return err
	}
	if err := a.store.UpdateUserPassword(ctx, userID, hash); err != nil {
		return err
	}
	slog.Info("password changed", "username", user.Username)
	return nil
}

func (a *Service) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.Cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

func (a *Service) issue(user *model.User, dept *model.Department) (*Session, error) {
	token, err := GenerateToken(a.secret, user.ID, user.Username, dept.ID)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, User: user, Department: dept}, nil
}

// GeneratePassword returns a random password of the given length.
func GeneratePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
