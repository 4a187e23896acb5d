package plans

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"deflect-hq/roicalc/pkg/debounce"
)

// DefaultWatchDebounce is the quiet period before a changed catalog file is
// re-read.
const DefaultWatchDebounce = 100 * time.Millisecond

// Watcher reloads a catalog file into a Source whenever it changes on disk.
// A file that fails to load or validate is logged and ignored; the previous
// catalog stays current.
type Watcher struct {
	path     string
	source   *Source
	watcher  *fsnotify.Watcher
	debounce *debounce.Debouncer
	logger   *slog.Logger

	// Validate, when set, vets a freshly loaded catalog before it is swapped
	// in. A non-nil error rejects the file like a load failure.
	Validate func(*Catalog) error

	// OnReload, when set, is called after each successful swap.
	OnReload func(*Catalog)

	// OnError, when set, is called when a changed file is rejected.
	OnError func(error)

	mu      sync.Mutex
	running bool
}

// NewWatcher creates a watcher for the catalog at path. Nothing is watched
// until Watch is called.
func NewWatcher(path string, source *Source, interval time.Duration, logger *slog.Logger) (*Watcher, error) {
	if interval <= 0 {
		interval = DefaultWatchDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		path:     filepath.Clean(path),
		source:   source,
		watcher:  fw,
		debounce: debounce.New(interval),
		logger:   logger.With("component", "plans.watcher"),
	}, nil
}

// Watch blocks until ctx is cancelled, reloading the catalog on writes,
// creates and renames of the file. The parent directory is watched so that
// editors that replace the file atomically are still noticed.
func (w *Watcher) Watch(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.debounce.Stop()
		_ = w.watcher.Close()
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %q: %w", dir, err)
	}

	w.logger.Info("catalog watcher started", "path", w.path)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("catalog watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("catalog file event", "op", event.Op.String())
			w.debounce.Trigger(w.reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("catalog watcher error", "error", err)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

// reload re-reads the catalog file and swaps it in on success.
func (w *Watcher) reload() {
	c, err := Load(w.path)
	if err == nil && w.Validate != nil {
		if verr := w.Validate(c); verr != nil {
			err = fmt.Errorf("catalog rejected: %w", verr)
		}
	}
	if err != nil {
		w.logger.Error("catalog reload failed, keeping previous catalog", "error", err)
		if w.OnError != nil {
			w.OnError(err)
		}
		return
	}

	prev := w.source.Swap(c)
	prevVersion := ""
	if prev != nil {
		prevVersion = prev.Version()
	}
	w.logger.Info("catalog reloaded",
		"version", c.Version(),
		"previous_version", prevVersion,
		"plans", c.Len(),
	)

	if w.OnReload != nil {
		w.OnReload(c)
	}
}
