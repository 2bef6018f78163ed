// Package watch implements ICU's filesystem watch mode: a debounced
// fsnotify loop that re-scans modified files shortly after they settle,
// instead of on every individual write event.
package watch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/icu-sec/icu/internal/engine"
	"github.com/icu-sec/icu/internal/rules"
)

// DefaultDebounce is how long a path must sit idle before it is
// submitted for scanning.
const DefaultDebounce = 500 * time.Millisecond

const flushTick = 100 * time.Millisecond

// Callback receives the result of a debounced re-scan.
type Callback func(path string, result rules.ScanResult, err error)

// Watcher wraps an fsnotify.Watcher with a per-path debounce buffer so
// that a burst of writes to the same file (an editor's save-then-touch
// sequence, for example) triggers a single scan.
type Watcher struct {
	fsw      *fsnotify.Watcher
	scanner  *engine.Scanner
	onResult Callback
	depth    engine.Depth
	debounce time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	pending map[string]time.Time

	stop chan struct{}
	done chan struct{}
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithDepth sets the scan depth used for debounced re-scans.
func WithDepth(d engine.Depth) Option {
	return func(w *Watcher) { w.depth = d }
}

// WithLogger overrides the watcher's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) { w.logger = logger }
}

// New creates a Watcher that scans with scanner and reports debounced
// results to onResult.
func New(scanner *engine.Scanner, onResult Callback, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fsw:      fsw,
		scanner:  scanner,
		onResult: onResult,
		depth:    engine.DepthAuto,
		debounce: DefaultDebounce,
		logger:   slog.Default(),
		pending:  make(map[string]time.Time),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Add registers dir (recursively is the caller's responsibility — add
// each subdirectory individually) for watching.
func (w *Watcher) Add(dir string) error {
	return w.fsw.Add(dir)
}

// Run starts the event loop. It blocks until ctx is canceled or Stop
// is called.
func (w *Watcher) Run(ctx context.Context) {
	defer close(w.done)
	ticker := time.NewTicker(flushTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "error", err)
		case <-ticker.C:
			w.flush(ctx)
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}
	if skip, _ := engine.ShouldSkip(ev.Name); skip {
		return
	}
	w.mu.Lock()
	w.pending[ev.Name] = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) flush(ctx context.Context) {
	now := time.Now()
	var ready []string

	w.mu.Lock()
	for path, last := range w.pending {
		if now.Sub(last) >= w.debounce {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	for _, path := range ready {
		result, err := w.scanner.ScanFile(ctx, path, w.depth)
		if w.onResult != nil {
			w.onResult(path, result, err)
		}
	}
}

// Stop shuts down the watcher, waiting up to 5s for the event loop to
// exit.
func (w *Watcher) Stop() error {
	close(w.stop)
	select {
	case <-w.done:
	case <-time.After(5 * time.Second):
		w.logger.Warn("watcher did not stop within timeout")
	}
	return w.fsw.Close()
}
