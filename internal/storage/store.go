package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rezkam/gtf/internal/domain"
	"go.opentelemetry.io/otel/metric"
)

// Mode reports whether the store talks to a remote.
type Mode string

const (
	ModeRemote    Mode = "remote"
	ModeLocalOnly Mode = "local-only"
)

// DefaultRemoteTimeout bounds every remote call when Config leaves it zero.
const DefaultRemoteTimeout = 10 * time.Second

// DefaultCommitMessage is used when Save is given no message.
const DefaultCommitMessage = "Dashboard update"

// Config holds Store configuration.
type Config struct {
	// Remote is optional. Nil selects local-only mode for the store's lifetime.
	Remote Remote

	RemoteTimeout time.Duration
	CommitMessage string
	Logger        *slog.Logger
	MeterProvider metric.MeterProvider
}

// Store is the task store. Load and Save never fail outwardly: every
// storage error degrades to a defined fallback and is logged.
type Store struct {
	local   Local
	remote  Remote
	timeout time.Duration
	message string
	logger  *slog.Logger
	metrics *storeMetrics

	mu       sync.Mutex
	version  string
	disabled bool
	status   Status
}

// Status describes the store's current state.
type Status struct {
	Mode       Mode   `json:"mode"`
	LastSource Source `json:"last_source,omitempty"`
	Version    string `json:"version,omitempty"`
	LastError  string `json:"last_error,omitempty"`
}

// SaveResult reports the outcome of each half of a save.
type SaveResult struct {
	LocalErr        error
	RemoteAttempted bool
	RemoteErr       error
	Version         string
}

// OK reports whether the local write succeeded. Remote success is best
// effort and does not affect it.
func (r SaveResult) OK() bool {
	return r.LocalErr == nil
}

// RemoteSaved reports whether the remote commit was attempted and succeeded.
func (r SaveResult) RemoteSaved() bool {
	return r.RemoteAttempted && r.RemoteErr == nil
}

// NewStore creates a store over local and, when cfg.Remote is set, a remote.
func NewStore(local Local, cfg Config) (*Store, error) {
	if local == nil {
		return nil, errors.New("storage: local adapter is required")
	}
	if cfg.RemoteTimeout <= 0 {
		cfg.RemoteTimeout = DefaultRemoteTimeout
	}
	if cfg.CommitMessage == "" {
		cfg.CommitMessage = DefaultCommitMessage
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	m, err := newStoreMetrics(cfg.MeterProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage metrics: %w", err)
	}

	s := &Store{
		local:   local,
		remote:  cfg.Remote,
		timeout: cfg.RemoteTimeout,
		message: cfg.CommitMessage,
		logger:  cfg.Logger,
		metrics: m,
	}
	s.status.Mode = s.modeLocked()
	return s, nil
}

// Mode reports ModeRemote while a remote is configured and has not been
// disabled by an authorization failure.
func (s *Store) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modeLocked()
}

func (s *Store) modeLocked() Mode {
	if s.remote == nil || s.disabled {
		return ModeLocalOnly
	}
	return ModeRemote
}

// Status returns a snapshot of the store's state.
func (s *Store) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.status
	st.Mode = s.modeLocked()
	st.Version = s.version
	return st
}

// Load returns the current document: the remote copy when reachable, else
// the local copy, else an empty document. The returned document is the
// caller's to mutate.
func (s *Store) Load(ctx context.Context) *domain.Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := fallback(s.fetchLocked(ctx), func() ReadResult {
		doc, err := s.local.Read(ctx)
		return ReadResult{Document: doc, Err: err}
	})

	if res.RemoteErr != nil {
		s.logger.WarnContext(ctx, "remote fetch failed, using local document",
			slog.String("error", res.RemoteErr.Error()),
			slog.String("source", string(res.Source)))
	}
	if res.LocalErr != nil {
		s.logger.WarnContext(ctx, "local read failed, using empty document",
			slog.String("error", res.LocalErr.Error()))
	}

	if res.Source == SourceRemote {
		s.version = res.Version
	}
	s.status.LastSource = res.Source
	s.status.LastError = errString(errors.Join(res.RemoteErr, res.LocalErr))

	s.repair(ctx, res.Document, res.Source)
	return res.Document
}

// repair keeps a document with bad records usable: tasks missing an id get
// one, repeated ids and mistyped fields are only reported.
func (s *Store) repair(ctx context.Context, doc *domain.Document, source Source) {
	for _, t := range doc.Tasks {
		if err := t.DecodeError(); err != nil {
			s.logger.WarnContext(ctx, "task has a mistyped field, keeping raw value",
				slog.String("task_id", t.ID),
				slog.String("source", string(source)),
				slog.String("error", err.Error()))
		}
	}
	if doc.Validate() == nil {
		return
	}

	assigned, duplicates := doc.RepairIDs()
	for _, id := range assigned {
		s.logger.WarnContext(ctx, "task has no id, assigned one",
			slog.String("task_id", id),
			slog.String("source", string(source)))
	}
	for _, id := range duplicates {
		s.logger.WarnContext(ctx, "task id is not unique, edits apply to the first match",
			slog.String("task_id", id),
			slog.String("source", string(source)))
	}
}

func (s *Store) fetchLocked(ctx context.Context) FetchResult {
	if s.modeLocked() != ModeRemote {
		return FetchResult{Skipped: true}
	}

	rctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	snap, err := s.remote.Fetch(rctx)
	record(ctx, s.metrics.fetches, err)

	if errors.Is(err, ErrRemoteNotFound) {
		// Nothing to conflict with: the next commit creates the document.
		s.version = ""
	}
	s.disableOnAuthLocked(ctx, err)
	return FetchResult{Snapshot: snap, Err: err}
}

// Save writes doc locally and, in remote mode, commits it with the version
// token of the last fetch. An empty message uses the configured default.
func (s *Store) Save(ctx context.Context, doc *domain.Document, message string) SaveResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if message == "" {
		message = s.message
	}

	var res SaveResult
	res.LocalErr = s.local.Write(ctx, doc)
	record(ctx, s.metrics.localWrites, res.LocalErr)
	if res.LocalErr != nil {
		s.logger.ErrorContext(ctx, "local write failed",
			slog.String("error", res.LocalErr.Error()))
	}

	if s.modeLocked() == ModeRemote {
		res.RemoteAttempted = true
		res.Version, res.RemoteErr = s.commitLocked(ctx, doc, message)
		if res.RemoteErr != nil {
			s.logger.WarnContext(ctx, "remote commit failed, change kept locally",
				slog.String("error", res.RemoteErr.Error()),
				slog.String("message", message))
		}
	}

	s.status.LastError = errString(errors.Join(res.LocalErr, res.RemoteErr))
	return res
}

func (s *Store) commitLocked(ctx context.Context, doc *domain.Document, message string) (string, error) {
	rctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	version, err := s.remote.Commit(rctx, doc, s.version, message)
	record(ctx, s.metrics.commits, err)
	if err != nil {
		s.disableOnAuthLocked(ctx, err)
		return "", err
	}

	if version == "" {
		// The backend did not report the new token; read it back.
		snap, ferr := s.remote.Fetch(rctx)
		record(ctx, s.metrics.fetches, ferr)
		if ferr != nil {
			s.logger.WarnContext(ctx, "failed to refresh version after commit",
				slog.String("error", ferr.Error()))
		}
		version = snap.Version
	}

	s.version = version
	return version, nil
}

// disableOnAuthLocked switches the store to local-only mode for the rest of
// its lifetime when the remote rejects the credentials.
func (s *Store) disableOnAuthLocked(ctx context.Context, err error) {
	if !errors.Is(err, ErrRemoteUnauthorized) || s.disabled {
		return
	}
	s.disabled = true
	s.logger.WarnContext(ctx, "remote rejected credentials, switching to local-only mode")
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
