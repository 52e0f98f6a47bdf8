package handlers

import (
	"bytes"
	"io"
	"net/http"

	"otaku-manga/internal/feed"
	"otaku-manga/internal/logging"
	"otaku-manga/internal/query"
)

// feedItemLimit caps the number of RSS items.
const feedItemLimit = query.DefaultRecentLimit

// Feed serves the RSS feed of recent chapter updates.
func (h *Handlers) Feed(w http.ResponseWriter, _ *http.Request) {
	h.renderXML(w, "feed", feed.RSSContentType, func(buf io.Writer) error {
		return feed.WriteRSS(buf, h.index.Get(), h.site, feedItemLimit, h.now())
	})
}

// Sitemap serves sitemap.xml for every manga and chapter.
func (h *Handlers) Sitemap(w http.ResponseWriter, _ *http.Request) {
	h.renderXML(w, "sitemap", feed.SitemapContentType, func(buf io.Writer) error {
		return feed.WriteSitemap(buf, h.index.Get(), h.site, h.now())
	})
}

// Robots serves robots.txt pointing crawlers at the sitemap.
func (h *Handlers) Robots(w http.ResponseWriter, _ *http.Request) {
	h.renderXML(w, "robots", "text/plain; charset=utf-8", func(buf io.Writer) error {
		return feed.WriteRobots(buf, h.site)
	})
}

// renderXML buffers the document so a render error can still become a 500.
func (h *Handlers) renderXML(w http.ResponseWriter, name, contentType string, render func(io.Writer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		logging.Error("failed to render %s: %v", name, err)
		http.Error(w, "Failed to render "+name, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=60")
	if _, err := w.Write(buf.Bytes()); err != nil {
		logging.Debug("failed to write %s: %v", name, err)
	}
}
