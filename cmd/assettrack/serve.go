package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/erazemk/assettrack/internal/api"
	"github.com/erazemk/assettrack/internal/auth"
	"github.com/erazemk/assettrack/internal/config"
	"github.com/erazemk/assettrack/internal/photos"
)

func serve(ctx context.Context, cfg *config.Config, username, department string, out io.Writer) error {
	return withApp(ctx, cfg, func(a *app) error {
		required, err := a.auth.SetupRequired(ctx)
		if err != nil {
			return err
		}
		if required {
			if err := setup(ctx, a, cfg, username, "", department, out); err != nil {
				return fmt.Errorf("first-run setup: %w", err)
			}
			fmt.Fprintln(out)
		}

		slog.Info("store ready", "kind", cfg.StoreKind, "path", cfg.DBPath)

		photoStore, err := photos.New(cfg.PhotoDir)
		if err != nil {
			return fmt.Errorf("opening photo directory: %w", err)
		}

		mux := api.NewRouter(api.Deps{
			Store:     a.store,
			Auth:      a.auth,
			Catalog:   a.catalog,
			Inventory: a.inventory,
			Photos:    photoStore,
			Metrics:   a.metrics,
		})

		server := &http.Server{
			Addr:              cfg.Addr,
			Handler:           api.LoggingMiddleware(a.metrics, mux),
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
		}

		ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			slog.Info("shutdown signal received")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				slog.Error("server forced to shutdown", "error", err)
			}
		}()

		slog.Info("server started", "addr", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		slog.Info("server stopped, closing store")
		return nil
	})
}

// setup creates the single account. An empty password is generated and
// printed.
func setup(ctx context.Context, a *app, cfg *config.Config, username, password, department string, out io.Writer) error {
	generated := password == ""
	if generated {
		var err error
		password, err = auth.GeneratePassword(16)
		if err != nil {
			return fmt.Errorf("generating password: %w", err)
		}
	}

	session, err := a.auth.Setup(ctx, username, password, department)
	if err != nil {
		return err
	}
	printSetupResult(out, cfg, session, password, generated)
	return nil
}

func printSetupResult(out io.Writer, cfg *config.Config, session *auth.Session, password string, generated bool) {
	fmt.Fprintf(out, "Store initialized: %s (%s)\n", cfg.DBPath, cfg.StoreKind)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Account created:")
	fmt.Fprintf(out, "  Username:   %s\n", session.User.Username)
	fmt.Fprintf(out, "  Department: %s\n", session.Department.Name)
	if generated {
		fmt.Fprintf(out, "  Password:   %s\n", password)
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Save this password, it cannot be recovered.")
		fmt.Fprintln(out, "It can be changed after logging in.")
	}
}
