// Package compliance holds shared behavioral tests for storage adapters.
package compliance

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/rezkam/gtf/internal/domain"
	"github.com/rezkam/gtf/internal/ptr"
	"github.com/rezkam/gtf/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SampleDocument returns a document exercising every field kind, including
// members no struct field models.
func SampleDocument() *domain.Document {
	doc := domain.NewDocument()
	doc.Departments = []string{"content"}
	doc.DepartmentLabels = map[string]string{"content": "📝 Content", "ops": "Ops"}
	doc.Extra = map[string]json.RawMessage{"schema": json.RawMessage(`2`)}
	doc.Tasks = []domain.Task{
		{
			ID:          uuid.NewString(),
			Title:       "Write post",
			Department:  "content",
			Priority:    domain.PriorityHigh,
			DueDate:     "2024-01-01",
			Notes:       "Draft <first>",
			Order:       ptr.To(0),
			ZoyaCanHelp: ptr.To(true),
			Extra:       map[string]json.RawMessage{"estimate_minutes": json.RawMessage(`45`)},
		},
		{
			ID:            uuid.NewString(),
			Title:         "Ship invoice",
			Done:          true,
			CompletedDate: "2024-01-04",
		},
	}
	return doc
}

// assertSameDocument compares documents by their encoded form.
func assertSameDocument(t *testing.T, want, got *domain.Document) {
	t.Helper()
	require.NotNil(t, got)

	wantJSON, err := storage.Encode(want)
	require.NoError(t, err)
	gotJSON, err := storage.Encode(got)
	require.NoError(t, err)
	assert.JSONEq(t, string(wantJSON), string(gotJSON))
}

// RunLocalComplianceTest runs the standard tests against a Local adapter.
// setup returns a fresh, empty adapter and its cleanup function.
func RunLocalComplianceTest(t *testing.T, setup func() (storage.Local, func())) {
	t.Run("ReadBeforeWrite", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()

		_, err := store.Read(context.Background())
		assert.ErrorIs(t, err, storage.ErrLocalNotFound)
	})

	t.Run("WriteAndRead", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		doc := SampleDocument()
		require.NoError(t, store.Write(ctx, doc))

		got, err := store.Read(ctx)
		require.NoError(t, err)
		assertSameDocument(t, doc, got)
		assert.JSONEq(t, `45`, string(got.Tasks[0].Extra["estimate_minutes"]))
	})

	t.Run("WriteOverwrites", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		require.NoError(t, store.Write(ctx, SampleDocument()))

		replacement := domain.NewDocument()
		replacement.Tasks = []domain.Task{{ID: "only", Title: "Only task"}}
		require.NoError(t, store.Write(ctx, replacement))

		got, err := store.Read(ctx)
		require.NoError(t, err)
		assertSameDocument(t, replacement, got)
	})

	t.Run("EmptyDocument", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		require.NoError(t, store.Write(ctx, domain.NewDocument()))

		got, err := store.Read(ctx)
		require.NoError(t, err)
		assert.Empty(t, got.Tasks)
		assert.NotNil(t, got.DepartmentLabels)
	})
}

// RunRemoteComplianceTest runs the standard tests against a Remote adapter.
// setup returns an adapter addressing a document that does not exist yet.
func RunRemoteComplianceTest(t *testing.T, setup func() (storage.Remote, func())) {
	// commit writes and resolves the resulting version, fetching when the
	// adapter does not report one.
	commit := func(t *testing.T, r storage.Remote, doc *domain.Document, version string) string {
		t.Helper()
		ctx := context.Background()
		v, err := r.Commit(ctx, doc, version, "test commit")
		require.NoError(t, err)
		if v == "" {
			snap, err := r.Fetch(ctx)
			require.NoError(t, err)
			v = snap.Version
		}
		require.NotEmpty(t, v)
		return v
	}

	t.Run("FetchMissing", func(t *testing.T) {
		remote, teardown := setup()
		defer teardown()

		_, err := remote.Fetch(context.Background())
		assert.ErrorIs(t, err, storage.ErrRemoteNotFound)
	})

	t.Run("CreateAndFetch", func(t *testing.T) {
		remote, teardown := setup()
		defer teardown()

		doc := SampleDocument()
		version := commit(t, remote, doc, "")

		snap, err := remote.Fetch(context.Background())
		require.NoError(t, err)
		assert.Equal(t, version, snap.Version)
		assertSameDocument(t, doc, snap.Document)
	})

	t.Run("UpdateWithCurrentVersion", func(t *testing.T) {
		remote, teardown := setup()
		defer teardown()

		v1 := commit(t, remote, SampleDocument(), "")

		updated := SampleDocument()
		updated.Tasks[0].Done = true
		v2 := commit(t, remote, updated, v1)
		assert.NotEqual(t, v1, v2)

		snap, err := remote.Fetch(context.Background())
		require.NoError(t, err)
		assert.True(t, snap.Document.Tasks[0].Done)
	})

	t.Run("StaleVersionConflicts", func(t *testing.T) {
		remote, teardown := setup()
		defer teardown()

		v1 := commit(t, remote, SampleDocument(), "")
		commit(t, remote, SampleDocument(), v1)

		_, err := remote.Commit(context.Background(), domain.NewDocument(), v1, "stale")
		assert.ErrorIs(t, err, storage.ErrVersionConflict)
	})

	t.Run("CreateOverExistingConflicts", func(t *testing.T) {
		remote, teardown := setup()
		defer teardown()

		commit(t, remote, SampleDocument(), "")

		_, err := remote.Commit(context.Background(), domain.NewDocument(), "", "blind create")
		assert.ErrorIs(t, err, storage.ErrVersionConflict)
	})
}
