// Package storage persists the task document. A Store combines a Local
// adapter, always written, with an optional Remote adapter that holds the
// shared copy under optimistic version control.
package storage

import (
	"context"
	"errors"

	"github.com/rezkam/gtf/internal/domain"
)

var (
	// ErrLocalNotFound means no local document exists yet.
	ErrLocalNotFound = errors.New("local document not found")

	// ErrRemoteNotFound means the remote holds no document yet.
	ErrRemoteNotFound = errors.New("remote document not found")

	// ErrVersionConflict means the remote changed since the version token
	// passed to Commit was read.
	ErrVersionConflict = errors.New("remote version conflict")

	// ErrRemoteUnauthorized means the remote rejected the credentials.
	ErrRemoteUnauthorized = errors.New("remote unauthorized")

	// ErrRemoteUnavailable covers network failures, timeouts and unexpected
	// responses.
	ErrRemoteUnavailable = errors.New("remote unavailable")

	// ErrMalformedDocument means stored bytes did not decode as a document.
	ErrMalformedDocument = errors.New("malformed document")
)

// Local reads and writes the durable local copy.
type Local interface {
	// Read returns ErrLocalNotFound when nothing has been written yet.
	Read(ctx context.Context) (*domain.Document, error)
	Write(ctx context.Context, doc *domain.Document) error
}

// Snapshot is a fetched document with the version token it was read at.
type Snapshot struct {
	Document *domain.Document
	Version  string
}

// Remote reads and writes the shared copy.
type Remote interface {
	Fetch(ctx context.Context) (Snapshot, error)

	// Commit writes doc if the remote is still at version. An empty version
	// means "create": it conflicts if a document already exists, unless the
	// backend cannot tell. It returns the new version token, which may be
	// empty if the backend does not report one.
	Commit(ctx context.Context, doc *domain.Document, version, message string) (string, error)
}
