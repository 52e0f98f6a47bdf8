package metrics

// InitializeMetrics pre-populates expected label combinations so every
// series is exported from the first scrape.
func InitializeMetrics() {
	for _, result := range []string{"hit", "rebuild", "stale", "wait"} {
		CacheRequestsTotal.WithLabelValues(result)
	}
	for _, status := range []string{"success", "error"} {
		CacheRebuildsTotal.WithLabelValues(status)
	}
	for _, source := range []string{"watcher", "api"} {
		CacheInvalidationsTotal.WithLabelValues(source)
	}

	for _, unit := range []string{"manga", "metadata", "chapter", "page"} {
		ScannerDegradedTotal.WithLabelValues(unit)
	}
	for _, source := range []string{"manifest", "file_mtime", "dir_mtime", "none"} {
		ScannerTimestampSourceTotal.WithLabelValues(source)
	}

	for _, status := range []string{"ok", "missing", "invalid", "error"} {
		ManifestLoadsTotal.WithLabelValues(status)
	}

	for _, event := range []string{"create", "write", "remove", "rename", "chmod"} {
		WatcherEventsTotal.WithLabelValues(event)
	}

	volumes := []string{"content", "manifest", "unknown"}
	for _, op := range []string{"stat", "readdir", "read", "open"} {
		for _, vol := range volumes {
			FilesystemRetryAttempts.WithLabelValues(op, vol)
			FilesystemRetrySuccess.WithLabelValues(op, vol)
			FilesystemRetryFailures.WithLabelValues(op, vol)
			FilesystemStaleErrors.WithLabelValues(op, vol)
			FilesystemRetryDuration.WithLabelValues(op, vol)
		}
	}

	for _, feed := range []string{"rss", "sitemap"} {
		FeedRenderDuration.WithLabelValues(feed)
	}
}
