// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// Configuration comes from environment variables, optionally seeded from a
// .env file in the working directory (variables already set win). See
// [LoadConfig]:
//
//   - CONTENT_DIR: Content root (default: ./content, created if missing)
//   - UPDATED_MANIFEST: Timestamp manifest (default: $CONTENT_DIR/_updated.yml)
//   - PORT: HTTP server port (default: 5000)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable or disable metrics server (default: true)
//   - SCAN_INTERVAL: Index refresh interval as Go duration (default: 10s)
//   - WATCH_ENABLED: Invalidate the index on filesystem events (default: true)
//   - SITE_URL: Absolute base URL for feeds and sitemaps (default: http://localhost:$PORT)
//   - SITE_TITLE: Feed channel title (default: Otaku Manga)
//   - PAGE_SIZE: Default library page size (default: 16)
//   - SCAN_WORKERS: Manga scanned in parallel (default: 2 x GOMAXPROCS, max 8)
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
//   - LOG_STATIC_FILES: Log /content requests (default: false)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: true)
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo].
//
// # Lifecycle Logging
//
// [LogIndexInit], [LogWatcherStarted], [LogHTTPRoutes], [LogServerStarted]
// and the shutdown helpers print the banner-and-section startup log.
package startup
