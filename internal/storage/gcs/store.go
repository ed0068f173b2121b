// Package gcs stores the task document as a Cloud Storage object. The
// object generation is the version token; writes are conditional on it.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	cloudstorage "cloud.google.com/go/storage"
	"github.com/rezkam/gtf/internal/domain"
	"github.com/rezkam/gtf/internal/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Config addresses the document object.
type Config struct {
	Bucket string
	Object string
	// CredentialsFile is optional; Application Default Credentials are used
	// when empty.
	CredentialsFile string
}

// Store is a GCS-based implementation of storage.Remote.
type Store struct {
	client *cloudstorage.Client
	bucket string
	object string
	owned  bool
}

// NewStore creates a new GCS store with its own client.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("gcs: bucket is required")
	}
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := cloudstorage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}
	s := NewStoreWithClient(client, cfg.Bucket, cfg.Object)
	s.owned = true
	return s, nil
}

// NewStoreWithClient creates a store over an existing client, which the
// caller keeps ownership of.
func NewStoreWithClient(client *cloudstorage.Client, bucket, object string) *Store {
	if object == "" {
		object = "tasks.json"
	}
	return &Store{client: client, bucket: bucket, object: object}
}

// Close releases the client if the store created it.
func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	return s.client.Close()
}

func (s *Store) handle() *cloudstorage.ObjectHandle {
	return s.client.Bucket(s.bucket).Object(s.object)
}

// Fetch reads the object and its generation.
func (s *Store) Fetch(ctx context.Context) (storage.Snapshot, error) {
	r, err := s.handle().NewReader(ctx)
	if err != nil {
		return storage.Snapshot{}, mapError("read object", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return storage.Snapshot{}, mapError("read object", err)
	}

	doc, err := storage.Decode(data)
	if err != nil {
		return storage.Snapshot{}, err
	}
	return storage.Snapshot{
		Document: doc,
		Version:  strconv.FormatInt(r.Attrs.Generation, 10),
	}, nil
}

// Commit writes the object if it is still at version. An empty version
// only succeeds when the object does not exist.
func (s *Store) Commit(ctx context.Context, doc *domain.Document, version, message string) (string, error) {
	cond := cloudstorage.Conditions{DoesNotExist: true}
	if version != "" {
		gen, err := strconv.ParseInt(version, 10, 64)
		if err != nil {
			return "", fmt.Errorf("%w: bad generation %q", storage.ErrVersionConflict, version)
		}
		cond = cloudstorage.Conditions{GenerationMatch: gen}
	}

	data, err := storage.Encode(doc)
	if err != nil {
		return "", err
	}

	w := s.handle().If(cond).NewWriter(ctx)
	w.ContentType = "application/json"
	w.Metadata = map[string]string{"gtf-message": message}

	if _, err := w.Write(data); err != nil {
		w.Close()
		return "", mapError("write object", err)
	}
	if err := w.Close(); err != nil {
		return "", mapError("write object", err)
	}

	return strconv.FormatInt(w.Attrs().Generation, 10), nil
}

func mapError(op string, err error) error {
	if errors.Is(err, cloudstorage.ErrObjectNotExist) {
		return fmt.Errorf("%w: %s", storage.ErrRemoteNotFound, op)
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusPreconditionFailed:
			return fmt.Errorf("%w: %s: %w", storage.ErrVersionConflict, op, err)
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %s: %w", storage.ErrRemoteUnauthorized, op, err)
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s: %w", storage.ErrRemoteNotFound, op, err)
		}
	}
	return fmt.Errorf("%w: %s: %w", storage.ErrRemoteUnavailable, op, err)
}
