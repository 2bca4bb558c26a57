package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cybersandbox/internal/backend"
	"cybersandbox/internal/domain"
	"cybersandbox/internal/mockbackend"
)

func newUploader(t *testing.T, workers int) (*Uploader, *mockbackend.Server) {
	t.Helper()
	mock := mockbackend.New(nil)
	srv := httptest.NewServer(mock)
	t.Cleanup(srv.Close)

	c, err := backend.NewClient(backend.Config{BaseURL: srv.URL, Registerer: prometheus.NewRegistry()})
	require.NoError(t, err)
	return NewUploader(c, workers, domain.ChunkParagraph, nil), mock
}

func writeFiles(t *testing.T, names ...string) []string {
	t.Helper()
	dir := t.TempDir()
	var out []string
	for _, n := range names {
		p := filepath.Join(dir, n)
		require.NoError(t, os.WriteFile(p, []byte("content of "+n), 0o644))
		out = append(out, p)
	}
	return out
}

func TestAll_MissingFilesSendNothing(t *testing.T) {
	u, mock := newUploader(t, 2)
	paths := writeFiles(t, "a.txt")
	paths = append(paths, "/nope/b.txt", "/nope/c.txt")

	_, err := u.All(context.Background(), paths)
	var missing *MissingFilesError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "missing files: /nope/b.txt, /nope/c.txt", err.Error())
	assert.Empty(t, mock.Requests())
}

func TestAll_UploadsInOrder(t *testing.T) {
	u, mock := newUploader(t, 3)
	paths := writeFiles(t, "a.txt", "b.md", "c.txt", "d.md")

	results, err := u.All(context.Background(), paths)
	require.NoError(t, err)
	require.Len(t, results, 4)
	for i, r := range results {
		assert.Equal(t, paths[i], r.Path)
		require.NoError(t, r.Err)
		assert.Equal(t, "Ingested demo-0001 with 3 chunks", r.Line())
	}

	reqs := mock.Requests()
	require.Len(t, reqs, 4)
	for _, r := range reqs {
		assert.Equal(t, "chunk_mode=paragraph", r.Query)
		assert.True(t, strings.HasPrefix(r.ContentType, "multipart/form-data"))
	}
}

func TestAll_FailureLine(t *testing.T) {
	u, mock := newUploader(t, 1)
	mock.Set("/rag/ingest", http.StatusBadRequest, "Unsupported file type")
	paths := writeFiles(t, "a.bin")

	results, err := u.All(context.Background(), paths)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Error(t, results[0].Err)
	assert.Equal(t, paths[0]+": Error: Unsupported file type", results[0].Line())
}

func TestAll_NoPaths(t *testing.T) {
	u, _ := newUploader(t, 1)
	_, err := u.All(context.Background(), nil)
	assert.Error(t, err)
}

func TestSeed(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "vault")
	paths, err := Seed(dir)
	require.NoError(t, err)
	require.Len(t, paths, len(DemoDocs))

	data, err := os.ReadFile(paths[1])
	require.NoError(t, err)
	assert.Contains(t, string(data), "203.0.113.4")

	manifest, err := os.ReadFile(filepath.Join(dir, ManifestName))
	require.NoError(t, err)
	assert.Equal(t, "[\n  \"CLIENT_001_policy.md\",\n  \"CLIENT_002_incident.txt\",\n  \"CLIENT_003_audit.md\"\n]", string(manifest))
}

func TestWatcher_UploadsNewFiles(t *testing.T) {
	u, mock := newUploader(t, 1)
	dir := t.TempDir()
	w := NewWatcher(u, 50, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	results := make(chan Result, 8)
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, dir, func(r Result) { results <- r }) }()

	// Give the watcher time to register before the file lands.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden"), []byte("x"), 0o644))
	target := filepath.Join(dir, "incident.txt")
	require.NoError(t, os.WriteFile(target, []byte("phishing from example.net"), 0o644))

	select {
	case r := <-results:
		assert.Equal(t, target, r.Path)
		assert.NoError(t, r.Err)
	case <-time.After(5 * time.Second):
		t.Fatal("no upload observed")
	}

	cancel()
	require.NoError(t, <-done)
	for _, r := range mock.Requests() {
		assert.NotContains(t, string(r.Body), `filename=".hidden"`)
	}
}

func TestWatcher_RejectsFile(t *testing.T) {
	u, _ := newUploader(t, 1)
	f := writeFiles(t, "x.txt")[0]
	err := NewWatcher(u, 1, 0).Run(context.Background(), f, func(Result) {})
	assert.Error(t, err)
}
