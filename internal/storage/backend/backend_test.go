package backend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rezkam/gtf/internal/config"
	"github.com/rezkam/gtf/internal/domain"
	"github.com/rezkam/gtf/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storageConfig(t *testing.T, apiURL string) config.StorageConfig {
	t.Helper()
	return config.StorageConfig{
		LocalBackend:  config.LocalFS,
		LocalPath:     filepath.Join(t.TempDir(), "tasks.json"),
		CommitMessage: "Dashboard update",
		Remote: config.RemoteConfig{
			Backend: config.RemoteGitHub,
			Timeout: time.Second,
			GitHub: config.GitHubConfig{
				Repo:   "acme/gtf-tasks",
				Path:   "tasks.json",
				Branch: "main",
				APIURL: apiURL,
			},
		},
	}
}

func TestOpen_NoCredentialsMakesNoNetworkCall(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	b, err := Open(context.Background(), storageConfig(t, srv.URL), Options{})
	require.NoError(t, err)
	defer b.Close()

	assert.Nil(t, b.Remote)
	assert.Equal(t, storage.ModeLocalOnly, b.Store.Mode())

	ctx := context.Background()
	doc := domain.NewDocument()
	doc.Tasks = []domain.Task{{ID: "1", Title: "Offline"}}
	res := b.Store.Save(ctx, doc, "")
	assert.True(t, res.OK())
	assert.False(t, res.RemoteAttempted)

	loaded := b.Store.Load(ctx)
	require.Len(t, loaded.Tasks, 1)
	assert.Equal(t, "Offline", loaded.Tasks[0].Title)

	assert.Zero(t, calls.Load())
}

func TestOpen_GitHubRemote(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	cfg := storageConfig(t, srv.URL)
	cfg.Remote.GitHub.Token = "ghp_test"

	b, err := Open(context.Background(), cfg, Options{})
	require.NoError(t, err)
	defer b.Close()

	assert.NotNil(t, b.Remote)
	assert.Equal(t, storage.ModeRemote, b.Store.Mode())

	doc := b.Store.Load(context.Background())
	assert.Empty(t, doc.Tasks)
	assert.Equal(t, int32(1), calls.Load())
}

func TestOpen_SQLiteLocal(t *testing.T) {
	cfg := storageConfig(t, "")
	cfg.LocalBackend = config.LocalSQLite
	cfg.SQLitePath = filepath.Join(t.TempDir(), "gtf.db")

	b, err := Open(context.Background(), cfg, Options{})
	require.NoError(t, err)
	defer b.Close()

	require.True(t, b.Store.Save(context.Background(), domain.NewDocument(), "").OK())
}

func TestOpen_UnknownLocal(t *testing.T) {
	cfg := storageConfig(t, "")
	cfg.LocalBackend = "tape"

	_, err := Open(context.Background(), cfg, Options{})
	assert.ErrorIs(t, err, config.ErrUnknownLocalBackend)
}
