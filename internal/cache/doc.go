// Package cache holds the current library index and decides when to rebuild it.
//
// A Cache owns one immutable library.Index snapshot plus the time it was
// built. Get returns the snapshot while it is younger than the configured
// interval and rebuilds it synchronously otherwise. Concurrency rules:
//
//   - At most one rebuild runs at a time.
//   - Readers that arrive while a rebuild is in flight get the previous
//     snapshot. Only the very first build makes callers wait.
//   - A failed rebuild keeps the previous snapshot and does not reset the
//     freshness clock, so the next Get tries again.
//
// StartRefresher moves rebuilds onto a background loop driven by a ticker and
// by invalidations. Get then only reads the snapshot once one exists, and
// Refresh is the synchronous path used by the reindex endpoint.
//
// Watcher feeds fsnotify events from the content tree into Cache.Invalidate,
// which forces the next rebuild regardless of the interval.
package cache
