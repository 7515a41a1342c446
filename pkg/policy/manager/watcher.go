package manager

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches a policy file or directory and invokes a reload
// callback when it changes. Rapid event bursts are debounced so an
// editor save producing several events triggers a single reload.
type Watcher struct {
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	config   *WatcherConfig
	debounce *Debouncer

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// WatcherConfig contains configuration for the policy watcher.
type WatcherConfig struct {
	// Path is the policy file or directory to watch.
	Path string

	// DebounceInterval is the quiet period required before a reload
	// fires (default: 100ms).
	DebounceInterval time.Duration

	// Extensions is the list of file extensions that trigger reloads
	// (default: [".yaml", ".yml"]).
	Extensions []string

	// SkipHidden controls whether hidden files are ignored.
	SkipHidden bool
}

// DefaultWatcherConfig returns the default watcher configuration.
func DefaultWatcherConfig() *WatcherConfig {
	return &WatcherConfig{
		DebounceInterval: 100 * time.Millisecond,
		Extensions:       []string{".yaml", ".yml"},
		SkipHidden:       true,
	}
}

// NewWatcher creates a new policy watcher.
func NewWatcher(config *WatcherConfig, logger *slog.Logger) (*Watcher, error) {
	if config == nil {
		config = DefaultWatcherConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		watcher:  fsw,
		logger:   logger.With("component", "policy.watcher"),
		config:   config,
		debounce: NewDebouncer(config.DebounceInterval),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Watch blocks, invoking onReload after each debounced change, until
// the context is cancelled or Stop is called.
func (w *Watcher) Watch(ctx context.Context, onReload func() error) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		close(w.doneCh)
	}()

	if err := w.addPath(w.config.Path); err != nil {
		return fmt.Errorf("failed to watch path: %w", err)
	}

	w.logger.Info("policy watcher started",
		"path", w.config.Path,
		"debounce_ms", w.config.DebounceInterval.Milliseconds(),
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("policy watcher stopped", "reason", "context cancelled")
			return nil

		case <-w.stopCh:
			w.logger.Info("policy watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !w.shouldProcessEvent(event) {
				continue
			}

			w.logger.Debug("policy file event",
				"path", event.Name,
				"op", event.Op.String(),
			)

			w.debounce.Trigger(func() {
				w.logger.Info("reloading policies", "path", event.Name)
				if err := onReload(); err != nil {
					w.logger.Error("policy reload failed", "error", err)
				}
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			// Keep watching despite transient errors.
			w.logger.Error("policy watcher error", "error", err)
		}
	}
}

// Stop stops the watcher and releases its resources.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	w.debounce.Stop()

	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}

// addPath registers a file, or a directory tree, with the watcher.
func (w *Watcher) addPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	if !info.IsDir() {
		return w.watcher.Add(path)
	}

	return filepath.Walk(path, func(p string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if w.config.SkipHidden && strings.HasPrefix(filepath.Base(p), ".") && p != path {
			if fi.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if fi.IsDir() {
			if err := w.watcher.Add(p); err != nil {
				return fmt.Errorf("failed to watch directory %q: %w", p, err)
			}
			w.logger.Debug("watching directory", "path", p)
		}
		return nil
	})
}

// shouldProcessEvent filters out events that cannot change policy
// content.
func (w *Watcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op&fsnotify.Chmod == fsnotify.Chmod {
		return false
	}

	ext := strings.ToLower(filepath.Ext(event.Name))
	valid := false
	for _, e := range w.config.Extensions {
		if ext == strings.ToLower(e) {
			valid = true
			break
		}
	}
	if !valid {
		return false
	}

	if w.config.SkipHidden && strings.HasPrefix(filepath.Base(event.Name), ".") {
		return false
	}
	return true
}

// Debouncer collapses rapid event bursts: the callback fires only
// after a quiet period of the configured interval.
type Debouncer struct {
	interval time.Duration
	timer    *time.Timer
	mu       sync.Mutex
	callback func()
	stopCh   chan struct{}
}

// NewDebouncer creates a new debouncer.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Trigger records an event. The most recent callback runs after the
// debounce interval if no further events arrive.
func (d *Debouncer) Trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.callback = callback

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, func() {
		select {
		case <-d.stopCh:
			return
		default:
		}

		d.mu.Lock()
		cb := d.callback
		d.mu.Unlock()

		if cb != nil {
			cb()
		}
	})
}

// Stop cancels any pending callback.
func (d *Debouncer) Stop() {
	close(d.stopCh)

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.callback = nil
}
