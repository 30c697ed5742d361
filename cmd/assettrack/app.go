package main

import (
	"context"
	"fmt"

	"github.com/erazemk/assettrack/internal/auth"
	"github.com/erazemk/assettrack/internal/catalog"
	"github.com/erazemk/assettrack/internal/config"
	"github.com/erazemk/assettrack/internal/db"
	"github.com/erazemk/assettrack/internal/inventory"
	"github.com/erazemk/assettrack/internal/metrics"
	"github.com/erazemk/assettrack/internal/model"
	"github.com/erazemk/assettrack/internal/store"
	"github.com/erazemk/assettrack/internal/store/docstore"
)

// app wires the services every subcommand works with.
type app struct {
	store     store.Store
	auth      *auth.Service
	catalog   *catalog.Service
	inventory *inventory.Service
	metrics   *metrics.Metrics
}

// openStore opens the backend selected by cfg.
func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.StoreKind {
	case store.KindDocument:
		s, err := docstore.Open(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		database, err := db.Open(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		if err := db.EnsureSchema(database); err != nil {
			database.Close()
			return nil, err
		}
		return store.NewSQLite(database), nil
	}
}

func newApp(ctx context.Context, s store.Store) (*app, error) {
	secret, err := s.JWTSecret(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading jwt secret: %w", err)
	}
	m := metrics.New()
	return &app{
		store:     s,
		auth:      auth.New(s, secret),
		catalog:   catalog.New(s),
		inventory: inventory.New(s, m),
		metrics:   m,
	}, nil
}

// department returns the department of the named user, for commands that
// run locally without a token.
func (a *app) department(ctx context.Context, username string) (*model.Department, error) {
	user, err := a.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %q does not exist, run setup first", username)
	}
	dept, err := a.store.GetDepartmentByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if dept == nil {
		return nil, fmt.Errorf("user %q has no department", username)
	}
	return dept, nil
}
