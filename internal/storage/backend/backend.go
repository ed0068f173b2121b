// Package backend builds a storage.Store from configuration.
package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rezkam/gtf/internal/config"
	"github.com/rezkam/gtf/internal/storage"
	"github.com/rezkam/gtf/internal/storage/fs"
	"github.com/rezkam/gtf/internal/storage/gcs"
	"github.com/rezkam/gtf/internal/storage/github"
	"github.com/rezkam/gtf/internal/storage/postgres"
	"github.com/rezkam/gtf/internal/storage/sqlite"
	"go.opentelemetry.io/otel/metric"
)

// Backend is an opened Store together with the resources it holds.
type Backend struct {
	Store  *storage.Store
	Local  storage.Local
	Remote storage.Remote

	closers []func() error
}

// Close releases every adapter resource.
func (b *Backend) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		errs = append(errs, b.closers[i]())
	}
	return errors.Join(errs...)
}

// Options carries the ambient dependencies of the Store.
type Options struct {
	Logger        *slog.Logger
	MeterProvider metric.MeterProvider
}

// Open builds the local adapter and, when the selected remote has
// credentials, the remote adapter. Missing credentials are not an error:
// the store runs local-only and never touches the network. A remote that
// fails to initialize is logged and also yields local-only mode.
func Open(ctx context.Context, cfg config.StorageConfig, opts Options) (*Backend, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	b := &Backend{}

	local, err := openLocal(ctx, cfg, b)
	if err != nil {
		b.Close()
		return nil, err
	}
	b.Local = local

	if cfg.Remote.Enabled() {
		remote, err := openRemote(ctx, cfg.Remote, b)
		if err != nil {
			logger.WarnContext(ctx, "remote storage unavailable, running local-only",
				slog.String("backend", cfg.Remote.Backend),
				slog.String("error", err.Error()))
		} else {
			b.Remote = remote
		}
	} else {
		logger.InfoContext(ctx, "no remote credentials configured, running local-only",
			slog.String("backend", cfg.Remote.Backend))
	}

	store, err := storage.NewStore(b.Local, storage.Config{
		Remote:        b.Remote,
		RemoteTimeout: cfg.Remote.Timeout,
		CommitMessage: cfg.CommitMessage,
		Logger:        logger,
		MeterProvider: opts.MeterProvider,
	})
	if err != nil {
		b.Close()
		return nil, err
	}
	b.Store = store

	logger.InfoContext(ctx, "storage ready",
		slog.String("mode", string(store.Mode())),
		slog.String("local", cfg.LocalBackend))
	return b, nil
}

func openLocal(ctx context.Context, cfg config.StorageConfig, b *Backend) (storage.Local, error) {
	switch cfg.LocalBackend {
	case config.LocalFS:
		return fs.NewStore(cfg.LocalPath)
	case config.LocalSQLite:
		s, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, s.Close)
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownLocalBackend, cfg.LocalBackend)
	}
}

func openRemote(ctx context.Context, cfg config.RemoteConfig, b *Backend) (storage.Remote, error) {
	switch cfg.Backend {
	case config.RemoteGitHub:
		return github.NewClient(github.Config{
			APIURL: cfg.GitHub.APIURL,
			Token:  cfg.GitHub.Token,
			Repo:   cfg.GitHub.Repo,
			Path:   cfg.GitHub.Path,
			Branch: cfg.GitHub.Branch,
		})

	case config.RemoteGCS:
		s, err := gcs.NewStore(ctx, gcs.Config{
			Bucket:          cfg.GCS.Bucket,
			Object:          cfg.GCS.Object,
			CredentialsFile: cfg.GCS.CredentialsFile,
		})
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, s.Close)
		return s, nil

	case config.RemotePostgres:
		octx, cancel := context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
		s, err := postgres.Open(octx, postgres.DBConfig{
			DSN:         cfg.Postgres.DSN,
			DocumentKey: cfg.Postgres.DocumentKey,
			MaxConns:    cfg.Postgres.MaxConns,
			AutoMigrate: cfg.Postgres.AutoMigrate,
		})
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, s.Close)
		return s, nil

	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownRemoteBackend, cfg.Backend)
	}
}
