package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "otaku_manga_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "otaku_manga_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "otaku_manga_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Index cache metrics
var (
	CacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "otaku_manga_cache_requests_total",
			Help: "Index cache reads by result",
		},
		[]string{"result"}, // "hit", "rebuild", "stale", "wait"
	)

	CacheRebuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "otaku_manga_cache_rebuilds_total",
			Help: "Index rebuilds by status",
		},
		[]string{"status"},
	)

	CacheRebuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "otaku_manga_cache_rebuild_duration_seconds",
			Help:    "Duration of full index rebuilds in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	CacheLastRebuildTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "otaku_manga_cache_last_rebuild_timestamp",
			Help: "Unix timestamp of the last successful index rebuild",
		},
	)

	CacheRebuildRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "otaku_manga_cache_rebuild_running",
			Help: "Whether an index rebuild is in flight (1 = running, 0 = idle)",
		},
	)

	CacheInvalidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "otaku_manga_cache_invalidations_total",
			Help: "Explicit index invalidations by source",
		},
		[]string{"source"},
	)
)

// Library content metrics
var (
	LibraryMangaTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "otaku_manga_library_manga",
			Help: "Number of manga in the current index",
		},
	)

	LibraryChaptersTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "otaku_manga_library_chapters",
			Help: "Number of chapters in the current index",
		},
	)

	LibraryPagesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "otaku_manga_library_pages",
			Help: "Number of pages in the current index",
		},
	)

	LibraryTagsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "otaku_manga_library_tags",
			Help: "Number of distinct tags in the current index",
		},
	)
)

// Scanner metrics
var (
	ScannerDegradedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "otaku_manga_scanner_degraded_total",
			Help: "Units degraded during scans because of read errors",
		},
		[]string{"unit"}, // "manga", "metadata", "chapter", "page"
	)

	ScannerEmptyChaptersTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "otaku_manga_scanner_empty_chapters_total",
			Help: "Chapter directories skipped because they contain no pages",
		},
	)

	ScannerTimestampSourceTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "otaku_manga_scanner_timestamp_source_total",
			Help: "Source of each chapter's effective update timestamp",
		},
		[]string{"source"}, // "manifest", "file_mtime", "dir_mtime", "none"
	)
)

// Manifest metrics
var (
	ManifestLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "otaku_manga_manifest_loads_total",
			Help: "Manifest loads by status",
		},
		[]string{"status"},
	)

	ManifestEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "otaku_manga_manifest_entries",
			Help: "Chapter entries in the most recently loaded manifest",
		},
	)
)

// Watcher metrics
var (
	WatcherEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "otaku_manga_watcher_events_total",
			Help: "Total number of filesystem watcher events",
		},
		[]string{"event_type"},
	)

	WatcherErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "otaku_manga_watcher_errors_total",
			Help: "Total number of filesystem watcher errors",
		},
	)

	WatchedDirectories = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "otaku_manga_watched_directories",
			Help: "Number of directories currently being watched",
		},
	)
)

// Filesystem retry metrics
var (
	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "otaku_manga_filesystem_retry_attempts_total",
			Help: "Retry attempts after NFS stale file handle errors",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "otaku_manga_filesystem_retry_success_total",
			Help: "Operations that succeeded after at least one retry",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "otaku_manga_filesystem_retry_failures_total",
			Help: "Operations that failed after exhausting retries",
		},
		[]string{"operation", "volume"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "otaku_manga_filesystem_stale_errors_total",
			Help: "NFS stale file handle errors observed",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "otaku_manga_filesystem_operation_duration_seconds",
			Help:    "Duration of retried filesystem operations including backoff",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
		},
		[]string{"operation", "volume"},
	)
)

// Feed metrics
var (
	FeedRenderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "otaku_manga_feed_render_duration_seconds",
			Help:    "Time to render a feed document from the index",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
		[]string{"feed"},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "otaku_manga_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
