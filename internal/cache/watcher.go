package cache

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"otaku-manga/internal/logging"
	"otaku-manga/internal/metrics"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce groups bursts of filesystem events into one invalidation.
const DefaultDebounce = 250 * time.Millisecond

// Invalidator is implemented by *Cache.
type Invalidator interface {
	Invalidate(source string)
}

// Watcher invalidates the cache when the content tree or the manifest changes.
// It watches the content root, every manga directory, every chapter directory
// and the directory holding the manifest.
type Watcher struct {
	root         string
	manifestPath string
	target       Invalidator
	debounce     time.Duration

	watcher *fsnotify.Watcher
	done    chan struct{}

	mu      sync.Mutex
	watched map[string]bool
}

// NewWatcher creates a watcher for root and manifestPath.
func NewWatcher(root, manifestPath string, target Invalidator) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		metrics.WatcherErrors.Inc()
		return nil, err
	}
	return &Watcher{
		root:         filepath.Clean(root),
		manifestPath: filepath.Clean(manifestPath),
		target:       target,
		debounce:     DefaultDebounce,
		watcher:      fw,
		done:         make(chan struct{}),
		watched:      make(map[string]bool),
	}, nil
}

// SetDebounce changes the debounce window. Call before Start.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// Start registers the directories and begins processing events.
func (w *Watcher) Start() error {
	if err := w.add(w.root); err != nil {
		// Release the inotify handle; Stop stays safe to call.
		_ = w.watcher.Close()
		close(w.done)
		return err
	}
	w.addTree(w.root, 2)

	manifestDir := filepath.Dir(w.manifestPath)
	if !w.isWatched(manifestDir) {
		if err := w.add(manifestDir); err != nil {
			logging.Warn("Cannot watch manifest directory %s: %v", manifestDir, err)
		}
	}

	logging.Debug("Content watcher started, watching %d directories", w.count())
	go w.loop()
	return nil
}

// Stop closes the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() {
	if err := w.watcher.Close(); err != nil {
		logging.Error("failed to close content watcher: %v", err)
	}
	<-w.done
}

// addTree watches non-hidden subdirectories of dir down to depth levels.
func (w *Watcher) addTree(dir string, depth int) {
	if depth <= 0 {
		return
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		logging.Warn("failed to list %s for watcher: %v", dir, err)
		metrics.WatcherErrors.Inc()
		return
	}
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := w.add(path); err != nil {
			logging.Warn("failed to add path to watcher %s: %v", path, err)
			continue
		}
		w.addTree(path, depth-1)
	}
}

func (w *Watcher) add(path string) error {
	if err := w.watcher.Add(path); err != nil {
		metrics.WatcherErrors.Inc()
		return err
	}
	w.mu.Lock()
	w.watched[path] = true
	n := len(w.watched)
	w.mu.Unlock()
	metrics.WatchedDirectories.Set(float64(n))
	return nil
}

func (w *Watcher) forget(path string) {
	w.mu.Lock()
	delete(w.watched, path)
	n := len(w.watched)
	w.mu.Unlock()
	metrics.WatchedDirectories.Set(float64(n))
}

func (w *Watcher) isWatched(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.watched[path]
}

func (w *Watcher) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.watched)
}

// depth returns how many levels path sits below the content root, or -1 when
// it is outside the root.
func (w *Watcher) depth(path string) int {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return -1
	}
	if rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}

// relevant reports whether an event can change the index.
func (w *Watcher) relevant(name string) bool {
	if filepath.Clean(name) == w.manifestPath {
		return true
	}
	d := w.depth(name)
	if d < 1 || d > 3 {
		return false
	}
	rel, _ := filepath.Rel(w.root, name)
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if strings.HasPrefix(part, ".") {
			return false
		}
	}
	return true
}

func (w *Watcher) loop() {
	defer close(w.done)

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				if timer != nil {
					timer.Stop()
				}
				return
			}
			if !w.relevant(event.Name) {
				continue
			}
			metrics.WatcherEventsTotal.WithLabelValues(eventType(event.Op)).Inc()
			if event.Op == fsnotify.Chmod {
				continue
			}
			w.track(event)

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.target.Invalidate("watcher")

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Error("Watcher error: %v", err)
			metrics.WatcherErrors.Inc()
		}
	}
}

// track keeps directory registrations in step with the tree.
func (w *Watcher) track(event fsnotify.Event) {
	name := filepath.Clean(event.Name)
	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		if w.isWatched(name) {
			w.forget(name)
		}
		return
	}
	if !event.Has(fsnotify.Create) {
		return
	}
	d := w.depth(name)
	if d < 1 || d > 2 {
		return
	}
	info, err := os.Stat(name)
	if err != nil || !info.IsDir() {
		return
	}
	if err := w.add(name); err != nil {
		logging.Warn("failed to add new directory to watcher %s: %v", name, err)
		return
	}
	logging.Debug("Added new directory to watcher: %s", name)
	if d == 1 {
		w.addTree(name, 1)
	}
}

func eventType(op fsnotify.Op) string {
	switch {
	case op&fsnotify.Create != 0:
		return "create"
	case op&fsnotify.Write != 0:
		return "write"
	case op&fsnotify.Remove != 0:
		return "remove"
	case op&fsnotify.Rename != 0:
		return "rename"
	case op&fsnotify.Chmod != 0:
		return "chmod"
	default:
		return "unknown"
	}
}
