package feed

import (
	"net/url"
	"strings"
)

// Site carries the absolute base URL and title used in generated documents.
type Site struct {
	BaseURL string
	Title   string
}

// NewSite trims a trailing slash from baseURL.
func NewSite(baseURL, title string) Site {
	return Site{BaseURL: strings.TrimRight(baseURL, "/"), Title: title}
}

// RootURL is the library index page.
func (s Site) RootURL() string {
	return s.BaseURL + "/"
}

// MangaURL is the canonical detail page of a manga.
func (s Site) MangaURL(slug string) string {
	return s.BaseURL + "/manga/" + url.PathEscape(slug)
}

// ChapterURL is the canonical reader page of a chapter. Feed GUIDs use it.
func (s Site) ChapterURL(mangaSlug, chapterSlug string) string {
	return s.MangaURL(mangaSlug) + "/" + url.PathEscape(chapterSlug)
}

// FeedURL is the self link of the RSS feed.
func (s Site) FeedURL() string {
	return s.BaseURL + "/feed.xml"
}

// SitemapURL is advertised in robots.txt.
func (s Site) SitemapURL() string {
	return s.BaseURL + "/sitemap.xml"
}
