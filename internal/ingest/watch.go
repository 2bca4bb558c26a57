package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Watcher uploads files created or rewritten in a directory.
type Watcher struct {
	uploader *Uploader
	limiter  *rate.Limiter
	quiet    time.Duration
	logger   *zap.Logger

	mu   sync.Mutex
	last map[string]time.Time
}

// NewWatcher limits uploads to perSecond. Repeat events for a path within quiet are dropped.
func NewWatcher(u *Uploader, perSecond float64, quiet time.Duration) *Watcher {
	if perSecond <= 0 {
		perSecond = 1
	}
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	return &Watcher{
		uploader: u,
		limiter:  rate.NewLimiter(rate.Limit(perSecond), burst),
		quiet:    quiet,
		logger:   u.logger,
		last:     make(map[string]time.Time),
	}
}

// Run watches dir until ctx ends, calling report for every upload attempt.
func (w *Watcher) Run(ctx context.Context, dir string, report func(Result)) error {
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.logger.Info("watching for documents", zap.String("dir", dir))

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			if !w.wanted(ev.Name) {
				continue
			}
			if err := w.limiter.Wait(ctx); err != nil {
				return nil
			}
			report(w.uploader.One(ctx, ev.Name))
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))
		}
	}
}

func (w *Watcher) wanted(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") || base == ManifestName {
		return false
	}
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	now := time.Now()
	if t, ok := w.last[path]; ok && now.Sub(t) < w.quiet {
		return false
	}
	w.last[path] = now
	return true
}
