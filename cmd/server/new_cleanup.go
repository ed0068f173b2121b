package main

import (
	"context"
	"io"
	"log/slog"
)

// shutdowner abstracts the HTTP server so tests can verify cleanup order.
type shutdowner interface {
	Shutdown(context.Context) error
}

// newCleanup builds the shutdown hook: stop accepting requests and drain
// in-flight ones, then release the storage backend they may still be using.
func newCleanup(ctx context.Context, server shutdowner, backend io.Closer) func() {
	return func() {
		if server != nil {
			if err := server.Shutdown(ctx); err != nil {
				slog.Error("failed to shut down http server", slog.String("error", err.Error()))
			}
		}

		if backend != nil {
			if err := backend.Close(); err != nil {
				slog.Error("failed to close storage backend", slog.String("error", err.Error()))
			}
		}
	}
}
