package feed

import (
	"encoding/xml"
	"fmt"
	"io"
	"time"

	"otaku-manga/internal/library"
	"otaku-manga/internal/metrics"
	"otaku-manga/internal/timeutil"
)

// SitemapContentType is served with the sitemap.
const SitemapContentType = "application/xml; charset=utf-8"

const sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// Sitemap priorities by page kind.
const (
	PriorityRoot    = "1.0"
	PriorityManga   = "0.8"
	PriorityChapter = "0.6"
)

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc      string `xml:"loc"`
	LastMod  string `xml:"lastmod"`
	Priority string `xml:"priority"`
}

// WriteSitemap lists the library root, every manga and every chapter.
// Missing timestamps render as today's date.
func WriteSitemap(w io.Writer, idx library.Index, site Site, now time.Time) error {
	start := time.Now()
	defer func() {
		metrics.FeedRenderDuration.WithLabelValues("sitemap").Observe(time.Since(start).Seconds())
	}()

	set := urlSet{
		XMLNS: sitemapNamespace,
		URLs: []sitemapURL{{
			Loc:      site.RootURL(),
			LastMod:  timeutil.LastmodDate(now, now),
			Priority: PriorityRoot,
		}},
	}

	for _, m := range idx.Sorted() {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:      site.MangaURL(m.Slug),
			LastMod:  timeutil.LastmodDate(m.Updated(), now),
			Priority: PriorityManga,
		})
		for _, c := range m.Chapters {
			updated := c.Updated
			if timeutil.IsZero(updated) {
				updated = m.Updated()
			}
			set.URLs = append(set.URLs, sitemapURL{
				Loc:      site.ChapterURL(m.Slug, c.Slug),
				LastMod:  timeutil.LastmodDate(updated, now),
				Priority: PriorityChapter,
			})
		}
	}

	return encode(w, set)
}

// WriteRobots renders a permissive robots.txt pointing at the sitemap.
func WriteRobots(w io.Writer, site Site) error {
	_, err := fmt.Fprintf(w, "User-agent: *\nAllow: /\n\nSitemap: %s\n", site.SitemapURL())
	return err
}
