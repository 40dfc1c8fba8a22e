// Package watch reloads the retriever when the chunk table file is replaced.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/normativa/internal/logger"
)

// DefaultDebounce collapses the burst of events produced by one table replacement.
const DefaultDebounce = 500 * time.Millisecond

// Reloader re-reads the chunk table.
type Reloader interface {
	Reload(ctx context.Context) error
}

// TableWatcher watches the directory holding the chunk table. The table is
// replaced by renaming a temp file over it, so watching the file itself would
// lose track of it after the first replacement.
type TableWatcher struct {
	path     string
	reloader Reloader
	debounce time.Duration
	done     chan struct{}
}

// Option configures a TableWatcher.
type Option func(*TableWatcher)

// WithDebounce sets the quiet period before a reload.
func WithDebounce(d time.Duration) Option {
	return func(w *TableWatcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// NewTableWatcher creates a watcher for the table at path.
func NewTableWatcher(path string, reloader Reloader, opts ...Option) *TableWatcher {
	w := &TableWatcher{
		path:     path,
		reloader: reloader,
		debounce: DefaultDebounce,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins watching and returns once the directory is registered.
// Events are handled in the background until ctx is cancelled.
func (w *TableWatcher) Start(ctx context.Context) error {
	abs, err := filepath.Abs(w.path)
	if err != nil {
		return fmt.Errorf("resolve chunk table path: %w", err)
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create chunk table directory: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	logger.Info("Watching %s for chunk table updates", abs)
	go w.loop(ctx, fsw, abs)
	return nil
}

// Done is closed when the watcher has stopped.
func (w *TableWatcher) Done() <-chan struct{} {
	return w.done
}

func (w *TableWatcher) loop(ctx context.Context, fsw *fsnotify.Watcher, target string) {
	defer close(w.done)
	defer func() { _ = fsw.Close() }()

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			logger.Debug("Chunk table event: %s", event)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			if err := w.reloader.Reload(ctx); err != nil {
				logger.Warn("Reload after chunk table change failed: %v", err)
				continue
			}
			logger.Info("Reloaded chunk table %s", target)

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("File watcher error: %v", err)
		}
	}
}
