package scene

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/go-hclog"
)

// DefaultDebounce coalesces the burst of events editors emit on save.
const DefaultDebounce = 150 * time.Millisecond

// Watcher reloads a scene file into a Store whenever it changes on disk.
type Watcher struct {
	path     string
	store    *Store
	logger   hclog.Logger
	debounce time.Duration
	onSync   func(SyncResult)

	done chan struct{}
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithWatchLogger sets the logger.
func WithWatchLogger(l hclog.Logger) WatcherOption {
	return func(w *Watcher) { w.logger = l }
}

// WithDebounce sets how long to wait for events to settle before reloading.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.debounce = d }
}

// WithOnSync registers a callback run after each successful reload.
func WithOnSync(fn func(SyncResult)) WatcherOption {
	return func(w *Watcher) { w.onSync = fn }
}

// NewWatcher returns a watcher for the scene file at path.
func NewWatcher(path string, store *Store, opts ...WatcherOption) *Watcher {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	w := &Watcher{
		path:     abs,
		store:    store,
		logger:   hclog.NewNullLogger(),
		debounce: DefaultDebounce,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start registers the watch and processes events in the background until
// ctx is cancelled. The parent directory is watched rather than the file so
// that atomic saves (write to temp, rename over) are seen.
func (w *Watcher) Start(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		fw.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.path), err)
	}

	w.logger.Debug("watching scene", "path", w.path)
	go w.loop(ctx, fw)
	return nil
}

// Done is closed once the watcher has stopped.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

// Run starts the watcher and blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.Start(ctx); err != nil {
		return err
	}
	<-w.done
	return nil
}

func (w *Watcher) loop(ctx context.Context, fw *fsnotify.Watcher) {
	defer close(w.done)
	defer fw.Close()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			switch {
			case event.Op&fsnotify.Write == fsnotify.Write ||
				event.Op&fsnotify.Create == fsnotify.Create ||
				event.Op&fsnotify.Rename == fsnotify.Rename:
				if timer == nil {
					timer = time.NewTimer(w.debounce)
				} else {
					timer.Reset(w.debounce)
				}
				fire = timer.C
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "path", w.path, "error", err)
		case <-fire:
			fire = nil
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	doc, err := LoadFile(w.path)
	if err != nil {
		w.logger.Warn("failed to reload scene", "path", w.path, "error", err)
		return
	}
	res, err := w.store.Sync(doc)
	if err != nil {
		w.logger.Warn("failed to sync scene", "path", w.path, "error", err)
		return
	}
	if res.Changed() {
		w.logger.Info("scene reloaded",
			"added", len(res.Added),
			"updated", len(res.Updated),
			"resynced", len(res.Resynced),
			"removed", len(res.Removed))
	}
	if w.onSync != nil {
		w.onSync(res)
	}
}
