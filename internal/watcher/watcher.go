// Package watcher reloads the scoring tables file when it changes on disk.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// DefaultDebounce coalesces the burst of events an editor save produces.
const DefaultDebounce = 300 * time.Millisecond

// ReloadFunc is called with the watched path once a change has settled.
type ReloadFunc func(path string) error

// Stats tracks watcher activity.
type Stats struct {
	Events     int       `json:"events"`
	Reloads    int       `json:"reloads"`
	Rejected   int       `json:"rejected"`
	Errors     int       `json:"errors"`
	LastReload time.Time `json:"last_reload"`
}

// TablesWatcher watches a single file. It watches the parent directory so
// atomic rename-over saves are seen too.
type TablesWatcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	path     string
	dir      string
	reload   ReloadFunc
	debounce time.Duration
	pending  time.Time
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
	stats    Stats
}

// New creates a watcher for path. reload runs on the watcher goroutine.
func New(path string, reload ReloadFunc) (*TablesWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		_ = w.Close()
		return nil, err
	}

	return &TablesWatcher{
		watcher:  w,
		path:     abs,
		dir:      filepath.Dir(abs),
		reload:   reload,
		debounce: DefaultDebounce,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// SetDebounce changes the settle window. Call before Start.
func (tw *TablesWatcher) SetDebounce(d time.Duration) {
	tw.mu.Lock()
	tw.debounce = d
	tw.mu.Unlock()
}

// Start begins watching. It is non-blocking.
func (tw *TablesWatcher) Start(ctx context.Context) error {
	tw.mu.Lock()
	if tw.running {
		tw.mu.Unlock()
		return nil
	}
	tw.running = true
	tw.mu.Unlock()

	if err := tw.watcher.Add(tw.dir); err != nil {
		tw.mu.Lock()
		tw.running = false
		tw.mu.Unlock()
		return err
	}
	log.Info().Str("path", tw.path).Msg("Watching scoring tables")

	go tw.run(ctx)
	return nil
}

// Stop stops the watcher and waits for the event loop to exit.
func (tw *TablesWatcher) Stop() {
	tw.mu.Lock()
	if !tw.running {
		tw.mu.Unlock()
		return
	}
	tw.running = false
	tw.mu.Unlock()

	close(tw.stopCh)
	<-tw.doneCh

	if err := tw.watcher.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close tables watcher")
	}
}

// Stats returns a snapshot of watcher activity.
func (tw *TablesWatcher) Stats() Stats {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	return tw.stats
}

func (tw *TablesWatcher) run(ctx context.Context) {
	defer close(tw.doneCh)

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tw.stopCh:
			return
		case event, ok := <-tw.watcher.Events:
			if !ok {
				return
			}
			tw.handleEvent(event)
		case err, ok := <-tw.watcher.Errors:
			if !ok {
				return
			}
			log.Error().Err(err).Msg("Tables watcher error")
			tw.mu.Lock()
			tw.stats.Errors++
			tw.mu.Unlock()
		case <-ticker.C:
			tw.flush()
		}
	}
}

func (tw *TablesWatcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != tw.path {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}

	tw.mu.Lock()
	tw.stats.Events++
	tw.pending = time.Now()
	tw.mu.Unlock()
}

func (tw *TablesWatcher) flush() {
	tw.mu.Lock()
	if tw.pending.IsZero() || time.Since(tw.pending) < tw.debounce {
		tw.mu.Unlock()
		return
	}
	tw.pending = time.Time{}
	tw.mu.Unlock()

	// The file may be mid-rename; a later event retries.
	if _, err := os.Stat(tw.path); err != nil {
		return
	}

	err := tw.reload(tw.path)

	tw.mu.Lock()
	defer tw.mu.Unlock()
	if err != nil {
		tw.stats.Rejected++
		log.Warn().Err(err).Str("path", tw.path).Msg("Scoring tables rejected, keeping current engine")
		return
	}
	tw.stats.Reloads++
	tw.stats.LastReload = time.Now()
	log.Info().Str("path", tw.path).Msg("Scoring tables reloaded")
}
