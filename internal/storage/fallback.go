package storage

import (
	"errors"

	"github.com/rezkam/gtf/internal/domain"
)

// Source names where a loaded document came from.
type Source string

const (
	SourceRemote Source = "remote"
	SourceLocal  Source = "local"
	SourceEmpty  Source = "empty"
)

// FetchResult is the outcome of one remote fetch. A zero value with
// Skipped set means no remote is configured.
type FetchResult struct {
	Snapshot Snapshot
	Err      error
	Skipped  bool
}

// ReadResult is the outcome of one local read.
type ReadResult struct {
	Document *domain.Document
	Err      error
}

// Resolved is the document chosen by fallback together with the reasons
// the preferred sources were passed over.
type Resolved struct {
	Document  *domain.Document
	Source    Source
	Version   string
	RemoteErr error
	LocalErr  error
}

// fallback picks the remote document when the fetch succeeded, else the
// local document, else an empty one. Local is read lazily, only when the
// remote result is unusable. Every error variant maps to the next source.
func fallback(remote FetchResult, readLocal func() ReadResult) Resolved {
	if !remote.Skipped && remote.Err == nil && remote.Snapshot.Document != nil {
		return Resolved{
			Document: remote.Snapshot.Document,
			Source:   SourceRemote,
			Version:  remote.Snapshot.Version,
		}
	}

	out := Resolved{RemoteErr: remote.Err}
	local := readLocal()
	if local.Err == nil && local.Document != nil {
		out.Document, out.Source = local.Document, SourceLocal
		return out
	}

	if !errors.Is(local.Err, ErrLocalNotFound) {
		out.LocalErr = local.Err
	}
	out.Document, out.Source = domain.NewDocument(), SourceEmpty
	return out
}
