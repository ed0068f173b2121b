// Package postgres stores the task document as a versioned row in
// PostgreSQL. The integer version column is the token; updates are a
// compare-and-swap on it and every commit is logged with its message.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rezkam/gtf/internal/domain"
	"github.com/rezkam/gtf/internal/storage"
)

// DefaultDocumentKey names the row used when none is configured.
const DefaultDocumentKey = "default"

// Store is a PostgreSQL implementation of storage.Remote.
type Store struct {
	pool *pgxpool.Pool
	key  string
}

// NewStore creates a store over an existing pool.
func NewStore(pool *pgxpool.Pool, key string) *Store {
	if key == "" {
		key = DefaultDocumentKey
	}
	return &Store{pool: pool, key: key}
}

// Close closes the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Fetch reads the document row.
func (s *Store) Fetch(ctx context.Context) (storage.Snapshot, error) {
	var (
		body    []byte
		version int64
	)
	err := s.pool.QueryRow(ctx,
		`SELECT body::text, version FROM gtf_documents WHERE key = $1`, s.key,
	).Scan(&body, &version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storage.Snapshot{}, fmt.Errorf("%w: key %s", storage.ErrRemoteNotFound, s.key)
		}
		return storage.Snapshot{}, mapError("fetch document", err)
	}

	doc, err := storage.Decode(body)
	if err != nil {
		return storage.Snapshot{}, err
	}
	return storage.Snapshot{Document: doc, Version: strconv.FormatInt(version, 10)}, nil
}

// Commit inserts the row when version is empty, or updates it when the
// stored version still equals version.
func (s *Store) Commit(ctx context.Context, doc *domain.Document, version, message string) (string, error) {
	body, err := storage.Encode(doc)
	if err != nil {
		return "", err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return "", mapError("begin transaction", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	var next int64
	if version == "" {
		err = tx.QueryRow(ctx, `
			INSERT INTO gtf_documents (key, body, version) VALUES ($1, $2::jsonb, 1)
			ON CONFLICT (key) DO NOTHING
			RETURNING version`,
			s.key, string(body),
		).Scan(&next)
	} else {
		current, perr := strconv.ParseInt(version, 10, 64)
		if perr != nil {
			return "", fmt.Errorf("%w: bad version %q", storage.ErrVersionConflict, version)
		}
		err = tx.QueryRow(ctx, `
			UPDATE gtf_documents
			SET body = $2::jsonb, version = version + 1, updated_at = now()
			WHERE key = $1 AND version = $3
			RETURNING version`,
			s.key, string(body), current,
		).Scan(&next)
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("%w: key %s at version %q", storage.ErrVersionConflict, s.key, version)
		}
		return "", mapError("write document", err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO gtf_document_commits (key, version, message) VALUES ($1, $2, $3)`,
		s.key, next, message,
	); err != nil {
		return "", mapError("record commit", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return "", mapError("commit transaction", err)
	}
	return strconv.FormatInt(next, 10), nil
}

// LogEntry is one entry of the document's commit log.
type LogEntry struct {
	Version string
	Message string
}

// History returns the most recent commits, newest first.
func (s *Store) History(ctx context.Context, limit int) ([]LogEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT version, message FROM gtf_document_commits
		WHERE key = $1 ORDER BY version DESC LIMIT $2`, s.key, limit)
	if err != nil {
		return nil, mapError("list commits", err)
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (LogEntry, error) {
		var (
			c       LogEntry
			version int64
		)
		err := row.Scan(&version, &c.Message)
		c.Version = strconv.FormatInt(version, 10)
		return c, err
	})
}

// invalidAuthorization is the SQLSTATE class for rejected credentials.
const invalidAuthorization = "28"

func mapError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && len(pgErr.Code) >= 2 && pgErr.Code[:2] == invalidAuthorization {
		return fmt.Errorf("%w: %s: %w", storage.ErrRemoteUnauthorized, op, err)
	}
	return fmt.Errorf("%w: %s: %w", storage.ErrRemoteUnavailable, op, err)
}
