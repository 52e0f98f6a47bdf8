package handlers

import (
	"time"

	"otaku-manga/internal/cache"
	"otaku-manga/internal/feed"
	"otaku-manga/internal/filesystem"
	"otaku-manga/internal/library"
	"otaku-manga/internal/query"
)

// IndexSource is the subset of *cache.Cache the handlers need.
type IndexSource interface {
	Get() library.Index
	Refresh(source string) library.Index
	Ready() bool
	Status() cache.Status
}

// Options configures Handlers.
type Options struct {
	ContentDir string
	SiteURL    string
	SiteTitle  string
	PageSize   int
	// Now overrides the clock used for relative times and feed dates.
	Now func() time.Time
}

// Handlers serves the HTTP API.
type Handlers struct {
	index      IndexSource
	site       feed.Site
	contentDir string
	pageSize   int
	retry      filesystem.RetryConfig
	startTime  time.Time
	now        func() time.Time
}

// New creates the handler set.
func New(index IndexSource, opts Options) *Handlers {
	if opts.PageSize < 1 {
		opts.PageSize = query.DefaultPageSize
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Handlers{
		index:      index,
		site:       feed.NewSite(opts.SiteURL, opts.SiteTitle),
		contentDir: opts.ContentDir,
		pageSize:   opts.PageSize,
		retry:      filesystem.DefaultRetryConfig(),
		startTime:  time.Now(),
		now:        opts.Now,
	}
}
