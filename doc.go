// Package main provides the entry point for the Otaku Manga server.
//
// Otaku Manga serves a manga library straight from a content directory. The
// directory is the database: every top-level folder is a manga, every
// subfolder a chapter, every image file a page. An optional manga.yml holds
// metadata and an optional _updated.yml manifest pins chapter timestamps.
//
// # Application Lifecycle
//
//  1. Memory Configuration: Sets GOMEMLIMIT from MEMORY_LIMIT if present
//  2. Configuration Loading: Reads .env and environment variables
//  3. Metrics Registration: Pre-populates Prometheus series
//  4. Index Build: Scans the content directory once before serving
//  5. Background Services:
//     - Index Refresher: Rebuilds the index when it goes stale
//     - Content Watcher: Invalidates the index on filesystem events
//     - Metrics Collector: Copies library counts into gauges every minute
//  6. HTTP Server Setup: Registers routes and middleware
//  7. Graceful Shutdown: Handles SIGINT/SIGTERM
//
// # Index Freshness
//
// The index is rebuilt in the background: once it is older than
// SCAN_INTERVAL, or a watcher event invalidates it, the refresher scans the
// content directory while requests keep reading the previous index. POST
// /api/reindex rebuilds synchronously and answers with the new counts.
//
// # HTTP Server
//
//  1. Main Server (default port 5000):
//     - JSON API under /api
//     - Page images under /content
//     - RSS feed, sitemap and robots.txt
//     - Health, readiness and version endpoints
//
//  2. Metrics Server (default port 9090, optional):
//     - Prometheus metrics endpoint (/metrics)
//     - Liveness endpoint (/health)
//
// # Graceful Shutdown
//
//  1. Stop the content watcher
//  2. Stop the index refresher
//  3. Stop the metrics collector
//  4. Shut down the metrics server (if running)
//  5. Shut down the main HTTP server (30s timeout)
//
// # Related Packages
//
//   - [otaku-manga/internal/library]: Content directory scanner and model
//   - [otaku-manga/internal/cache]: Index cache, background refresher and watcher
//   - [otaku-manga/internal/query]: Search, sorting and pagination
//   - [otaku-manga/internal/feed]: RSS and sitemap rendering
//   - [otaku-manga/internal/handlers]: HTTP request handlers
//   - [otaku-manga/internal/middleware]: Logging, metrics and compression
//   - [otaku-manga/internal/startup]: Configuration and startup logging
//
// The update-manifest command in cmd/update-manifest regenerates
// _updated.yml from git history.
package main
