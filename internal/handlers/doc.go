// Package handlers exposes the library index over HTTP.
//
// It includes handlers for:
//   - Library listing with search, tag filter and pagination (/api/mangas)
//   - Manga detail with chapter sort modes and chapter reader data
//   - Tag list and cross-library recent updates
//   - RSS feed, sitemap and robots.txt
//   - Page image passthrough from the content root (/content/)
//   - Health, readiness, liveness, version and manual reindex
//
// Handlers never touch the filesystem to answer index queries; every request
// reads one snapshot from the index cache and renders it.
package handlers
