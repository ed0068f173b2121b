package tasks

import (
	"context"

	"github.com/rezkam/gtf/internal/domain"
	"github.com/rezkam/gtf/internal/storage"
)

// DocumentStore loads and saves the whole task document.
// *storage.Store is the production implementation.
type DocumentStore interface {
	// Load never fails; unreadable sources degrade to an empty document.
	Load(ctx context.Context) *domain.Document

	// Save persists doc locally and, when a remote is active, commits it there
	// with message.
	Save(ctx context.Context, doc *domain.Document, message string) storage.SaveResult
}
