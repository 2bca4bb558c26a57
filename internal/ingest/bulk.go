// Package ingest uploads many documents to /rag/ingest: bulk runs over a worker pool, a
// directory watcher for dropped files, and the demo vault seed.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"cybersandbox/internal/codec"
	"cybersandbox/internal/domain"
	"cybersandbox/internal/render"
)

// MissingFilesError lists paths that did not exist. Nothing is uploaded when it is returned.
type MissingFilesError struct {
	Paths []string
}

func (e *MissingFilesError) Error() string {
	return "missing files: " + strings.Join(e.Paths, ", ")
}

// Result is the outcome of one upload.
type Result struct {
	Path    string
	Summary domain.IngestSummary
	Raw     json.RawMessage
	Err     error
}

// Line is the one-line report printed for the result.
func (r Result) Line() string {
	if r.Err != nil {
		return r.Path + ": " + render.Error(r.Err)
	}
	return fmt.Sprintf("Ingested %s with %d chunks", r.Summary.DocID, r.Summary.Chunks)
}

// Uploader sends files to the ingest route with a bounded number in flight.
type Uploader struct {
	backend   domain.Backend
	workers   int
	chunkMode domain.ChunkMode
	logger    *zap.Logger
}

// NewUploader creates an Uploader. workers below one means one.
func NewUploader(be domain.Backend, workers int, chunkMode domain.ChunkMode, logger *zap.Logger) *Uploader {
	if workers < 1 {
		workers = 1
	}
	if chunkMode == "" {
		chunkMode = domain.ChunkFixed
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Uploader{backend: be, workers: workers, chunkMode: chunkMode, logger: logger}
}

// One uploads a single file.
func (u *Uploader) One(ctx context.Context, path string) Result {
	res := Result{Path: path}
	raw, err := u.backend.Ingest(ctx, domain.IngestRequest{Path: path, ChunkMode: u.chunkMode})
	if err != nil {
		res.Err = err
		u.logger.Warn("ingest failed", zap.String("path", path), zap.Error(err))
		return res
	}
	res.Raw = raw
	if err := codec.Unmarshal(raw, &res.Summary); err != nil {
		u.logger.Debug("ingest summary not decodable", zap.String("path", path), zap.Error(err))
	}
	u.logger.Info("ingested",
		zap.String("path", path),
		zap.String("doc_id", res.Summary.DocID),
		zap.Int("chunks", res.Summary.Chunks),
	)
	return res
}

// All checks every path exists, then uploads them over a worker pool. Results keep input order.
func (u *Uploader) All(ctx context.Context, paths []string) ([]Result, error) {
	if len(paths) == 0 {
		return nil, errors.New("no files given")
	}
	var missing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			missing = append(missing, p)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingFilesError{Paths: missing}
	}

	pool, err := ants.NewPool(u.workers)
	if err != nil {
		return nil, fmt.Errorf("create upload pool: %w", err)
	}
	defer pool.Release()

	results := make([]Result, len(paths))
	var wg sync.WaitGroup
	for i, p := range paths {
		i, p := i, p
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			results[i] = u.One(ctx, p)
		}); err != nil {
			wg.Done()
			results[i] = Result{Path: p, Err: fmt.Errorf("submit upload: %w", err)}
		}
	}
	wg.Wait()
	return results, nil
}
