package cache

import (
	"sync"
	"sync/atomic"
	"time"

	"otaku-manga/internal/library"
	"otaku-manga/internal/logging"
	"otaku-manga/internal/metrics"
)

// DefaultInterval is how long a built index is reused.
const DefaultInterval = 10 * time.Second

// Builder produces a fresh index. *library.Scanner satisfies it.
type Builder interface {
	Scan() (library.Index, error)
}

// Options configures a Cache.
type Options struct {
	// Interval is the freshness window. Zero means DefaultInterval.
	Interval time.Duration
	// Now overrides the clock. Nil means time.Now.
	Now func() time.Time
}

type snapshot struct {
	index   library.Index
	counts  library.Counts
	builtAt time.Time
}

// Status describes the cache for health and debug endpoints.
type Status struct {
	Ready        bool          `json:"ready"`
	Rebuilding   bool          `json:"rebuilding"`
	LastBuilt    time.Time     `json:"lastBuilt"`
	LastDuration time.Duration `json:"lastDuration"`
	LastError    string        `json:"lastError,omitempty"`
	Manga        int           `json:"manga"`
	Chapters     int           `json:"chapters"`
}

// Cache is safe for concurrent use.
type Cache struct {
	builder  Builder
	interval time.Duration
	now      func() time.Time

	current     atomic.Pointer[snapshot]
	invalidated atomic.Bool
	rebuilding  atomic.Bool
	background  atomic.Bool

	wake     chan struct{}
	stopChan chan struct{}
	done     chan struct{}

	rebuildMu sync.Mutex

	statusMu     sync.RWMutex
	lastErr      error
	lastDuration time.Duration
}

// New creates a cache that rebuilds with b.
func New(b Builder, opts Options) *Cache {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Cache{
		builder:  b,
		interval: opts.Interval,
		now:      opts.Now,
		wake:     make(chan struct{}, 1),
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Interval returns the freshness window.
func (c *Cache) Interval() time.Duration {
	return c.interval
}

// Get returns the current index, rebuilding it first when it is stale. While
// the refresher runs, a stale index is returned as is and the refresher is
// woken instead.
func (c *Cache) Get() library.Index {
	return c.GetAt(c.now())
}

// GetAt is Get with an explicit current time.
func (c *Cache) GetAt(now time.Time) library.Index {
	snap := c.current.Load()
	if c.fresh(snap, now) {
		metrics.CacheRequestsTotal.WithLabelValues("hit").Inc()
		return snap.index
	}

	if snap != nil {
		if c.background.Load() {
			c.kick()
			metrics.CacheRequestsTotal.WithLabelValues("stale").Inc()
			return snap.index
		}
		if !c.rebuildMu.TryLock() {
			metrics.CacheRequestsTotal.WithLabelValues("stale").Inc()
			return snap.index
		}
	} else {
		metrics.CacheRequestsTotal.WithLabelValues("wait").Inc()
		c.rebuildMu.Lock()
	}
	defer c.rebuildMu.Unlock()

	// Another caller may have finished a rebuild while we waited.
	snap = c.current.Load()
	if c.fresh(snap, now) {
		return snap.index
	}

	metrics.CacheRequestsTotal.WithLabelValues("rebuild").Inc()
	return c.rebuildLocked(snap)
}

// Invalidate marks the current index stale so the next Get rebuilds it.
// source labels the caller in metrics ("watcher", "api").
func (c *Cache) Invalidate(source string) {
	c.invalidated.Store(true)
	metrics.CacheInvalidationsTotal.WithLabelValues(source).Inc()
	logging.Debug("Index invalidated by %s", source)
	if c.background.Load() {
		c.kick()
	}
}

// Refresh rebuilds the index immediately, after any rebuild in flight, and
// returns the result. A failed rebuild returns the previous index.
func (c *Cache) Refresh(source string) library.Index {
	metrics.CacheInvalidationsTotal.WithLabelValues(source).Inc()
	logging.Debug("Index refresh requested by %s", source)

	c.rebuildMu.Lock()
	defer c.rebuildMu.Unlock()
	metrics.CacheRequestsTotal.WithLabelValues("rebuild").Inc()
	return c.rebuildLocked(c.current.Load())
}

// StartRefresher rebuilds the index in the background whenever it goes stale
// or is invalidated, so Get stops scanning on the caller's goroutine once an
// index exists. Call at most once.
func (c *Cache) StartRefresher() {
	c.background.Store(true)
	go c.refreshLoop()
}

// StopRefresher stops the background loop and waits for it to exit. Get
// rebuilds inline again afterwards.
func (c *Cache) StopRefresher() {
	close(c.stopChan)
	<-c.done
	c.background.Store(false)
}

func (c *Cache) kick() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (c *Cache) refreshLoop() {
	defer close(c.done)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
		case <-c.wake:
		case <-c.stopChan:
			return
		}
		c.refreshIfStale()
	}
}

func (c *Cache) refreshIfStale() {
	c.rebuildMu.Lock()
	defer c.rebuildMu.Unlock()

	snap := c.current.Load()
	if c.fresh(snap, c.now()) {
		return
	}
	metrics.CacheRequestsTotal.WithLabelValues("rebuild").Inc()
	c.rebuildLocked(snap)
}

// Peek returns the current index without triggering a rebuild. It is nil
// before the first successful build.
func (c *Cache) Peek() library.Index {
	if snap := c.current.Load(); snap != nil {
		return snap.index
	}
	return nil
}

// Ready reports whether an index has ever been built.
func (c *Cache) Ready() bool {
	return c.current.Load() != nil
}

// GetStats implements metrics.StatsProvider. It never triggers a rebuild.
func (c *Cache) GetStats() metrics.Stats {
	snap := c.current.Load()
	if snap == nil {
		return metrics.Stats{}
	}
	return metrics.Stats{
		Manga:    snap.counts.Manga,
		Chapters: snap.counts.Chapters,
		Pages:    snap.counts.Pages,
		Tags:     snap.counts.Tags,
	}
}

// Status returns a point-in-time description of the cache.
func (c *Cache) Status() Status {
	c.statusMu.RLock()
	st := Status{
		Rebuilding:   c.rebuilding.Load(),
		LastDuration: c.lastDuration,
	}
	if c.lastErr != nil {
		st.LastError = c.lastErr.Error()
	}
	c.statusMu.RUnlock()

	if snap := c.current.Load(); snap != nil {
		st.Ready = true
		st.LastBuilt = snap.builtAt
		st.Manga = snap.counts.Manga
		st.Chapters = snap.counts.Chapters
	}
	return st
}

func (c *Cache) fresh(snap *snapshot, now time.Time) bool {
	if snap == nil || c.invalidated.Load() {
		return false
	}
	return now.Sub(snap.builtAt) < c.interval
}

// rebuildLocked must be called with rebuildMu held.
func (c *Cache) rebuildLocked(prev *snapshot) library.Index {
	c.invalidated.Store(false)
	c.rebuilding.Store(true)
	metrics.CacheRebuildRunning.Set(1)
	defer func() {
		c.rebuilding.Store(false)
		metrics.CacheRebuildRunning.Set(0)
	}()

	start := time.Now()
	idx, err := c.builder.Scan()
	duration := time.Since(start)
	metrics.CacheRebuildDuration.Observe(duration.Seconds())

	c.statusMu.Lock()
	c.lastErr = err
	c.lastDuration = duration
	c.statusMu.Unlock()

	if err != nil {
		metrics.CacheRebuildsTotal.WithLabelValues("error").Inc()
		// Keep retrying on subsequent reads.
		c.invalidated.Store(true)
		if prev != nil {
			logging.Error("Index rebuild failed, keeping previous index: %v", err)
			return prev.index
		}
		logging.Error("Index build failed, serving empty index: %v", err)
		return library.Index{}
	}
	if idx == nil {
		idx = library.Index{}
	}

	snap := &snapshot{
		index:   idx,
		counts:  idx.Counts(),
		builtAt: c.now(),
	}
	c.current.Store(snap)

	metrics.CacheRebuildsTotal.WithLabelValues("success").Inc()
	metrics.CacheLastRebuildTimestamp.Set(float64(snap.builtAt.Unix()))
	logging.Info("Index rebuilt: %d manga, %d chapters, %d pages in %v",
		snap.counts.Manga, snap.counts.Chapters, snap.counts.Pages, duration)

	return idx
}
