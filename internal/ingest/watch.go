package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/entrepeneur4lyf/taskpad/internal/debounce"
	"github.com/fsnotify/fsnotify"
)

const changeBuffer = 64

// Watcher reports attached files that changed on disk. Editors tend to write,
// rename and chmod in quick succession, so events for one file are coalesced
// and reported once the file has been quiet for the delay.
type Watcher struct {
	root     string
	watcher  *fsnotify.Watcher
	debounce *debounce.Debouncer
	delay    time.Duration
	changes  chan string

	mu      sync.Mutex
	tracked map[string]string // absolute path -> record path
	dirs    map[string]struct{}
	// Track is called from one goroutine at a time.

	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

// WatchOption configures a Watcher
type WatchOption func(*Watcher)

// WithWatchDelay sets how long a file must be quiet before it is reported
func WithWatchDelay(d time.Duration) WatchOption {
	return func(w *Watcher) {
		if d > 0 {
			w.delay = d
		}
	}
}

// WithWatchClock sets the time source for coalescing
func WithWatchClock(c debounce.Clock) WatchOption {
	return func(w *Watcher) {
		w.debounce = debounce.New(c)
	}
}

// NewWatcher creates a watcher resolving relative record paths against root
func NewWatcher(root string, opts ...WatchOption) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create filesystem watcher: %w", err)
	}
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		root:    root,
		watcher: fsw,
		delay:   debounce.DefaultDelay,
		changes: make(chan string, changeBuffer),
		tracked: make(map[string]string),
		dirs:    make(map[string]struct{}),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.debounce == nil {
		w.debounce = debounce.New(nil)
	}
	return w, nil
}

// Changes delivers the record path of every file that changed. The channel
// is never closed; stop receiving once the watcher is stopped.
func (w *Watcher) Changes() <-chan string {
	return w.changes
}

// Start begins processing filesystem events
func (w *Watcher) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return
	}
	w.started = true
	go w.processEvents()
}

// Stop drops pending reports and releases the watcher
func (w *Watcher) Stop() error {
	w.debounce.Stop()
	w.cancel()
	err := w.watcher.Close()

	w.mu.Lock()
	started := w.started
	w.mu.Unlock()
	if started {
		<-w.done
	}
	return err
}

// Track replaces the set of watched files with paths. The parent directory of
// each file is watched rather than the file itself so that files replaced by
// rename are still seen.
func (w *Watcher) Track(paths []string) error {
	tracked := make(map[string]string, len(paths))
	dirs := make(map[string]struct{})
	for _, p := range paths {
		abs := w.abs(p)
		tracked[abs] = p
		dirs[filepath.Dir(abs)] = struct{}{}
	}

	w.mu.Lock()
	w.tracked = tracked
	var stale, fresh []string
	for dir := range w.dirs {
		if _, keep := dirs[dir]; !keep {
			stale = append(stale, dir)
		}
	}
	for dir := range dirs {
		if _, ok := w.dirs[dir]; !ok {
			fresh = append(fresh, dir)
		}
	}
	w.mu.Unlock()

	for _, dir := range stale {
		if err := w.watcher.Remove(dir); err != nil {
			log.Debug("failed to unwatch directory", "dir", dir, "error", err)
		}
	}

	var firstErr error
	added := fresh[:0]
	for _, dir := range fresh {
		if err := w.watcher.Add(dir); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("failed to watch %s: %w", dir, err)
			}
			continue
		}
		added = append(added, dir)
	}

	w.mu.Lock()
	for _, dir := range stale {
		delete(w.dirs, dir)
	}
	for _, dir := range added {
		w.dirs[dir] = struct{}{}
	}
	w.mu.Unlock()
	return firstErr
}

func (w *Watcher) abs(p string) string {
	native := filepath.FromSlash(p)
	if filepath.IsAbs(native) {
		return filepath.Clean(native)
	}
	return filepath.Join(w.root, native)
}

func (w *Watcher) processEvents() {
	defer close(w.done)

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warn("file watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	w.mu.Lock()
	path, ok := w.tracked[filepath.Clean(event.Name)]
	w.mu.Unlock()
	if !ok {
		return
	}

	log.Debug("attached file changed", "path", path, "op", event.Op.String())
	w.debounce.Schedule(path, func() {
		select {
		case w.changes <- path:
		default:
			log.Warn("change queue full, dropping", "path", path)
		}
	}, w.delay)
}
