// Package metrics provides Prometheus instrumentation for the manga library.
//
// All metrics are prefixed with "otaku_manga_".
//
// # HTTP
//   - HTTPRequestsTotal, HTTPRequestDuration, HTTPRequestsInFlight
//
// # Index cache
//   - CacheRequestsTotal: Get calls by result (hit, rebuild, stale, wait)
//   - CacheRebuildsTotal: rebuilds by status (success, error)
//   - CacheRebuildDuration, CacheLastRebuildTimestamp, CacheRebuildRunning
//   - CacheInvalidationsTotal: explicit invalidations by source (watcher, api)
//
// # Library contents
//   - LibraryMangaTotal, LibraryChaptersTotal, LibraryPagesTotal, LibraryTagsTotal
//     (set by Collector from the current snapshot)
//
// # Scanner
//   - ScannerDegradedTotal: units dropped or defaulted by unit (manga, metadata, chapter, page)
//   - ScannerEmptyChaptersTotal: chapter directories without pages
//   - ScannerTimestampSourceTotal: which fallback step produced each chapter's timestamp
//
// # Manifest
//   - ManifestLoadsTotal by status (ok, missing, invalid, error), ManifestEntries
//
// # Watcher
//   - WatcherEventsTotal by event type, WatcherErrors, WatchedDirectories
//
// # Filesystem
//   - FilesystemRetry* and FilesystemStaleErrors by operation and volume
//
// # Feeds
//   - FeedRenderDuration by feed (rss, sitemap)
package metrics
