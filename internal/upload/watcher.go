// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package upload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before a changed file is uploaded.
const DefaultDebounce = 500 * time.Millisecond

// Watcher uploads PDFs that appear or change in a directory.
type Watcher struct {
	uploader *Uploader
	dir      string
	debounce time.Duration
	log      *slog.Logger

	watcher *fsnotify.Watcher
	results chan Result

	mu      sync.Mutex
	pending map[string]time.Time // path -> last change time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	closeOnce sync.Once
	closeErr  error
}

// NewWatcher creates a watcher for dir. It does not start watching.
func NewWatcher(u *Uploader, dir string, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("watch folder: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch folder: %s is not a directory", dir)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		uploader: u,
		dir:      dir,
		debounce: debounce,
		log:      logger.With("component", "upload-watch", "dir", dir),
		watcher:  fsw,
		results:  make(chan Result, 16),
		pending:  make(map[string]time.Time),
	}, nil
}

// Results delivers one Result per attempted upload. It is closed by Close.
func (w *Watcher) Results() <-chan Result {
	return w.results
}

// Start begins watching until ctx is done or Close is called. A watcher
// that fails to start is already closed.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.watcher.Add(w.dir); err != nil {
		_ = w.Close()
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.ctx, w.cancel = context.WithCancel(ctx)

	w.wg.Add(2)
	go w.processEvents()
	go w.processPending()
	w.log.Info("watching for PDFs")
	return nil
}

// Close stops watching and closes Results. Later calls return the first
// call's error.
func (w *Watcher) Close() error {
	w.closeOnce.Do(func() {
		if w.cancel != nil {
			w.cancel()
		}
		w.closeErr = w.watcher.Close()
		w.wg.Wait()
		close(w.results)
	})
	return w.closeErr
}

func (w *Watcher) processEvents() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 || !IsPDF(event.Name) {
				continue
			}
			w.mu.Lock()
			w.pending[event.Name] = time.Now()
			w.mu.Unlock()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", "error", err)
		}
	}
}

// processPending uploads files whose last change is older than the debounce.
// Uploads run one at a time on this goroutine.
func (w *Watcher) processPending() {
	defer w.wg.Done()
	tick := min(w.debounce/2, 100*time.Millisecond)
	ticker := time.NewTicker(max(tick, 10*time.Millisecond))
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return

		case <-ticker.C:
			now := time.Now()

			w.mu.Lock()
			var ready []string
			for path, changed := range w.pending {
				if now.Sub(changed) >= w.debounce {
					ready = append(ready, path)
					delete(w.pending, path)
				}
			}
			w.mu.Unlock()

			for _, path := range ready {
				if info, err := os.Stat(path); err != nil || info.IsDir() {
					continue
				}
				res := w.uploader.Upload(w.ctx, path)
				if errors.Is(res.Err, ErrBusy) {
					// A manual upload is running; try again later.
					w.mu.Lock()
					w.pending[path] = time.Now()
					w.mu.Unlock()
					continue
				}
				w.log.Info("auto upload", "file", path, "ok", res.OK(), "message", res.Message)
				select {
				case w.results <- res:
				case <-w.ctx.Done():
					return
				}
			}
		}
	}
}
