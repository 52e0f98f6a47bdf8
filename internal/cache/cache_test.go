package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"otaku-manga/internal/library"
)

type fakeBuilder struct {
	mu    sync.Mutex
	calls int
	err   error
	index library.Index

	// block, when set, holds Scan until closed; started is signalled on entry.
	block   chan struct{}
	started chan struct{}

	active    atomic.Int32
	maxActive atomic.Int32
}

func (f *fakeBuilder) Scan() (library.Index, error) {
	n := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		m := f.maxActive.Load()
		if n <= m || f.maxActive.CompareAndSwap(m, n) {
			break
		}
	}

	f.mu.Lock()
	f.calls++
	err, idx, block, started := f.err, f.index, f.block, f.started
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if block != nil {
		<-block
	}
	return idx, err
}

func (f *fakeBuilder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeBuilder) set(idx library.Index, err error) {
	f.mu.Lock()
	f.index, f.err = idx, err
	f.mu.Unlock()
}

func indexOf(slugs ...string) library.Index {
	idx := library.Index{}
	for _, s := range slugs {
		idx[s] = library.NewManga(s, "", library.DefaultMetadata(s), nil)
	}
	return idx
}

// fakeClock is advanced manually by tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestCache(b Builder) (*Cache, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	return New(b, Options{Interval: 10 * time.Second, Now: clock.Now}), clock
}

func TestGetBuildsOnceWithinInterval(t *testing.T) {
	b := &fakeBuilder{index: indexOf("alpha")}
	c, clock := newTestCache(b)

	if c.Ready() {
		t.Fatal("cache should not be ready before first Get")
	}

	first := c.Get()
	clock.Advance(9 * time.Second)
	second := c.Get()

	if b.callCount() != 1 {
		t.Errorf("Scan called %d times, want 1", b.callCount())
	}
	if len(first) != 1 || len(second) != 1 {
		t.Errorf("unexpected index sizes %d, %d", len(first), len(second))
	}
	if !c.Ready() {
		t.Error("cache should be ready after a successful build")
	}
}

func TestGetRebuildsAfterInterval(t *testing.T) {
	b := &fakeBuilder{index: indexOf("alpha")}
	c, clock := newTestCache(b)

	c.Get()
	b.set(indexOf("alpha", "beta"), nil)
	clock.Advance(10 * time.Second)

	if got := c.Get(); len(got) != 2 {
		t.Errorf("index has %d manga after expiry, want 2", len(got))
	}
	if b.callCount() != 2 {
		t.Errorf("Scan called %d times, want 2", b.callCount())
	}
}

func TestInvalidateForcesRebuild(t *testing.T) {
	b := &fakeBuilder{index: indexOf("alpha")}
	c, _ := newTestCache(b)

	c.Get()
	b.set(indexOf("alpha", "beta"), nil)
	c.Invalidate("api")

	if got := c.Get(); len(got) != 2 {
		t.Errorf("index has %d manga after invalidation, want 2", len(got))
	}
	c.Get()
	if b.callCount() != 2 {
		t.Errorf("Scan called %d times, want 2", b.callCount())
	}
}

func TestFailedRebuildKeepsPreviousIndex(t *testing.T) {
	b := &fakeBuilder{index: indexOf("alpha")}
	c, clock := newTestCache(b)

	c.Get()
	builtAt := c.Status().LastBuilt

	b.set(nil, errors.New("disk gone"))
	clock.Advance(11 * time.Second)

	got := c.Get()
	if _, ok := got["alpha"]; !ok || len(got) != 1 {
		t.Errorf("failed rebuild replaced index: %v", got)
	}

	st := c.Status()
	if !st.LastBuilt.Equal(builtAt) {
		t.Errorf("LastBuilt moved on failure: %v -> %v", builtAt, st.LastBuilt)
	}
	if st.LastError == "" {
		t.Error("LastError not recorded")
	}

	// The next read retries without waiting for another interval.
	b.set(indexOf("alpha", "beta"), nil)
	if got := c.Get(); len(got) != 2 {
		t.Errorf("retry did not pick up new index, got %d manga", len(got))
	}
	if c.Status().LastError != "" {
		t.Error("LastError not cleared after success")
	}
}

func TestFirstBuildFailureServesEmptyIndex(t *testing.T) {
	b := &fakeBuilder{err: errors.New("no root")}
	c, _ := newTestCache(b)

	got := c.Get()
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil index, got %v", got)
	}
	if c.Ready() {
		t.Error("cache should not be ready after a failed first build")
	}

	b.set(indexOf("alpha"), nil)
	if got := c.Get(); len(got) != 1 {
		t.Errorf("second Get did not rebuild, got %d manga", len(got))
	}
}

func TestStaleReadDuringRebuild(t *testing.T) {
	b := &fakeBuilder{index: indexOf("alpha")}
	c, clock := newTestCache(b)
	c.Get()

	block := make(chan struct{})
	started := make(chan struct{}, 1)
	b.mu.Lock()
	b.index, b.block, b.started = indexOf("alpha", "beta"), block, started
	b.mu.Unlock()
	clock.Advance(time.Minute)

	done := make(chan library.Index)
	go func() { done <- c.Get() }()
	<-started

	if got := c.Get(); len(got) != 1 {
		t.Errorf("reader during rebuild got %d manga, want the previous 1", len(got))
	}
	if !c.Status().Rebuilding {
		t.Error("Status().Rebuilding = false during rebuild")
	}

	close(block)
	if got := <-done; len(got) != 2 {
		t.Errorf("rebuilding caller got %d manga, want 2", len(got))
	}
}

func TestConcurrentGetSingleRebuild(t *testing.T) {
	b := &fakeBuilder{index: indexOf("alpha", "beta")}
	c, clock := newTestCache(b)

	var wg sync.WaitGroup
	for round := 0; round < 5; round++ {
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if got := c.Get(); got == nil {
					t.Error("Get returned nil index")
				}
			}()
		}
		wg.Wait()
		clock.Advance(time.Minute)
	}

	if m := b.maxActive.Load(); m != 1 {
		t.Errorf("max concurrent rebuilds = %d, want 1", m)
	}
	if n := b.callCount(); n != 5 {
		t.Errorf("Scan called %d times, want 5 (one per expired round)", n)
	}
}

func TestGetStatsDoesNotBuild(t *testing.T) {
	b := &fakeBuilder{index: indexOf("alpha", "beta")}
	c, _ := newTestCache(b)

	if s := c.GetStats(); s.Manga != 0 {
		t.Errorf("GetStats before build = %+v", s)
	}
	if b.callCount() != 0 {
		t.Error("GetStats triggered a rebuild")
	}

	c.Get()
	if s := c.GetStats(); s.Manga != 2 {
		t.Errorf("GetStats().Manga = %d, want 2", s.Manga)
	}
	if c.Peek() == nil {
		t.Error("Peek() = nil after build")
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestRefreshRebuildsImmediately(t *testing.T) {
	b := &fakeBuilder{index: indexOf("alpha")}
	c, _ := newTestCache(b)

	c.Get()
	b.set(indexOf("alpha", "beta"), nil)

	if got := c.Refresh("api"); len(got) != 2 {
		t.Errorf("Refresh() returned %d manga, want 2", len(got))
	}
	if b.callCount() != 2 {
		t.Errorf("Scan called %d times, want 2", b.callCount())
	}
	c.Get()
	if b.callCount() != 2 {
		t.Errorf("Get after Refresh scanned again (%d calls)", b.callCount())
	}
}

func TestRefresherServesStaleWithoutScanning(t *testing.T) {
	b := &fakeBuilder{index: indexOf("alpha")}
	c, clock := newTestCache(b)
	c.Get()

	c.StartRefresher()
	defer c.StopRefresher()

	block := make(chan struct{})
	started := make(chan struct{}, 1)
	b.mu.Lock()
	b.index = indexOf("alpha", "beta")
	b.block, b.started = block, started
	b.mu.Unlock()

	clock.Advance(10 * time.Second)

	// The scan blocks, so a Get that ran it would not return.
	got := make(chan library.Index, 1)
	go func() { got <- c.Get() }()
	select {
	case idx := <-got:
		if len(idx) != 1 {
			t.Errorf("stale Get returned %d manga, want 1", len(idx))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Get blocked on a rebuild while the refresher runs")
	}

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("refresher did not start a rebuild")
	}
	close(block)

	waitFor(t, "refreshed index", func() bool { return len(c.Get()) == 2 })
	if b.callCount() != 2 {
		t.Errorf("Scan called %d times, want 2", b.callCount())
	}
}

func TestRefresherRebuildsOnInvalidate(t *testing.T) {
	b := &fakeBuilder{index: indexOf("alpha")}
	c, _ := newTestCache(b)
	c.Get()

	c.StartRefresher()
	defer c.StopRefresher()

	b.set(indexOf("alpha", "beta"), nil)
	c.Invalidate("watcher")

	waitFor(t, "background rebuild", func() bool { return b.callCount() == 2 })
	waitFor(t, "new snapshot", func() bool { return len(c.Peek()) == 2 })
}

func TestStopRefresherRestoresInlineRebuild(t *testing.T) {
	b := &fakeBuilder{index: indexOf("alpha")}
	c, clock := newTestCache(b)
	c.Get()

	c.StartRefresher()
	c.StopRefresher()

	b.set(indexOf("alpha", "beta"), nil)
	clock.Advance(10 * time.Second)

	if got := c.Get(); len(got) != 2 {
		t.Errorf("Get after StopRefresher returned %d manga, want 2", len(got))
	}
}
