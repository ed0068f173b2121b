package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rezkam/gtf/internal/application/tasks"
	"github.com/rezkam/gtf/internal/config"
	httpserver "github.com/rezkam/gtf/internal/infrastructure/http"
	"github.com/rezkam/gtf/internal/infrastructure/http/handler"
	"github.com/rezkam/gtf/internal/infrastructure/observability"
	"github.com/rezkam/gtf/internal/query"
	"github.com/rezkam/gtf/internal/storage/backend"
)

func main() {
	if err := run(); err != nil {
		// slog may not be initialized if config fails.
		fmt.Fprintf(os.Stderr, "failed to run: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	providers, err := observability.Setup(ctx, observability.ConfigFrom(cfg.Observability))
	if err != nil {
		return err
	}
	defer func() {
		// Bounded so an unreachable collector cannot hang exit.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = providers.Shutdown(shutdownCtx)
	}()

	loc, err := cfg.App.Location()
	if err != nil {
		return err
	}
	palette, err := query.LoadPalette(cfg.App.PaletteFile)
	if err != nil {
		return err
	}

	b, err := backend.Open(ctx, cfg.Storage, backend.Options{
		Logger:        providers.Logger,
		MeterProvider: providers.MeterProvider,
	})
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}

	slog.InfoContext(ctx, "storage initialized",
		"local_backend", cfg.Storage.LocalBackend,
		"remote_backend", cfg.Storage.Remote.Backend,
		"mode", b.Store.Mode())

	svc := tasks.NewService(b.Store, tasks.Config{Location: loc})
	api := handler.NewRouter(svc, palette, b.Store)
	server := httpserver.NewAPIServer(api, httpserver.ServerConfigFrom(cfg.HTTP))

	errResult := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errResult <- fmt.Errorf("failed to serve http: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.InfoContext(ctx, "shutting down")
	case err := <-errResult:
		newCleanup(context.Background(), nil, b)()
		return err
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()
	newCleanup(shutdownCtx, server, b)()
	slog.InfoContext(shutdownCtx, "shutdown complete")
	return nil
}
