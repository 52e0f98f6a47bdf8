package feed

import (
	"bytes"
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"otaku-manga/internal/library"
)

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func chapter(manga, slug string, updated time.Time, pages int) *library.Chapter {
	ps := make([]library.Page, pages)
	for i := range ps {
		ps[i] = library.Page{ChapterSlug: slug, Index: i + 1}
	}
	return library.NewChapter(manga, slug, "", ps, updated, updated)
}

func testIndex() library.Index {
	meta := library.DefaultMetadata("berserk")
	meta.Title = "Berserk & Co"
	return library.Index{
		"berserk": library.NewManga("berserk", "", meta, []*library.Chapter{
			chapter("berserk", "chapter-1", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 3),
			chapter("berserk", "chapter-2", time.Date(2024, 2, 1, 8, 30, 0, 0, time.UTC), 5),
		}),
		"undated": library.NewManga("undated", "", library.DefaultMetadata("undated"), []*library.Chapter{
			chapter("undated", "chapter-1", time.Time{}, 1),
		}),
	}
}

var site = NewSite("https://example.com/", "Otaku Manga")

type parsedRSS struct {
	Channel struct {
		Title         string `xml:"title"`
		LastBuildDate string `xml:"lastBuildDate"`
		Items         []struct {
			Title       string `xml:"title"`
			Link        string `xml:"link"`
			GUID        string `xml:"guid"`
			PubDate     string `xml:"pubDate"`
			Description string `xml:"description"`
		} `xml:"item"`
	} `xml:"channel"`
}

func TestWriteRSS(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteRSS(&buf, testIndex(), site, 50, testNow); err != nil {
		t.Fatalf("WriteRSS() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		`<?xml version="1.0" encoding="UTF-8"?>`,
		`<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">`,
		`<atom:link href="https://example.com/feed.xml" rel="self" type="application/rss+xml"></atom:link>`,
		`isPermaLink="true"`,
		`<![CDATA[Berserk & Co • Chapter 2 • 5 pages]]>`,
		"Berserk &amp; Co \u2014 Chapter 2",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("RSS output missing %q\n%s", want, out)
		}
	}

	var doc parsedRSS
	if err := xml.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("RSS is not well-formed: %v", err)
	}
	if doc.Channel.Title != "Otaku Manga \u2014 Latest Updates" {
		t.Errorf("channel title = %q", doc.Channel.Title)
	}
	if len(doc.Channel.Items) != 3 {
		t.Fatalf("got %d items, want 3", len(doc.Channel.Items))
	}

	first := doc.Channel.Items[0]
	if first.Title != "Berserk & Co \u2014 Chapter 2" {
		t.Errorf("first item title = %q", first.Title)
	}
	if first.Link != "https://example.com/manga/berserk/chapter-2" || first.GUID != first.Link {
		t.Errorf("first item link/guid = %q/%q", first.Link, first.GUID)
	}
	if first.PubDate != "Thu, 01 Feb 2024 08:30:00 +0000" {
		t.Errorf("first pubDate = %q", first.PubDate)
	}
	if doc.Channel.LastBuildDate != first.PubDate {
		t.Errorf("lastBuildDate = %q, want newest item %q", doc.Channel.LastBuildDate, first.PubDate)
	}
}

func TestWriteRSSEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteRSS(&buf, library.Index{}, site, 50, testNow); err != nil {
		t.Fatalf("WriteRSS() error = %v", err)
	}

	var doc parsedRSS
	if err := xml.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatal(err)
	}
	if doc.Channel.LastBuildDate != "Sat, 15 Jun 2024 12:00:00 +0000" {
		t.Errorf("lastBuildDate = %q, want now", doc.Channel.LastBuildDate)
	}
	if len(doc.Channel.Items) != 0 {
		t.Errorf("got %d items, want 0", len(doc.Channel.Items))
	}
}

func TestWriteRSSLimit(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteRSS(&buf, testIndex(), site, 1, testNow); err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(buf.String(), "<item>"); n != 1 {
		t.Errorf("got %d items with limit 1", n)
	}
}

func TestWriteSitemap(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSitemap(&buf, testIndex(), site, testNow); err != nil {
		t.Fatalf("WriteSitemap() error = %v", err)
	}

	if !strings.Contains(buf.String(), `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`) {
		t.Errorf("missing urlset namespace:\n%s", buf.String())
	}

	var set urlSet
	if err := xml.Unmarshal(buf.Bytes(), &set); err != nil {
		t.Fatalf("sitemap is not well-formed: %v", err)
	}

	want := []sitemapURL{
		{"https://example.com/", "2024-06-15", "1.0"},
		{"https://example.com/manga/berserk", "2024-02-01", "0.8"},
		{"https://example.com/manga/berserk/chapter-1", "2024-01-01", "0.6"},
		{"https://example.com/manga/berserk/chapter-2", "2024-02-01", "0.6"},
		{"https://example.com/manga/undated", "2024-06-15", "0.8"},
		{"https://example.com/manga/undated/chapter-1", "2024-06-15", "0.6"},
	}
	if len(set.URLs) != len(want) {
		t.Fatalf("got %d urls, want %d", len(set.URLs), len(want))
	}
	for i, u := range set.URLs {
		if u != want[i] {
			t.Errorf("url %d = %+v, want %+v", i, u, want[i])
		}
	}
}

func TestWriteRobots(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteRobots(&buf, site); err != nil {
		t.Fatal(err)
	}
	want := "User-agent: *\nAllow: /\n\nSitemap: https://example.com/sitemap.xml\n"
	if buf.String() != want {
		t.Errorf("robots.txt = %q, want %q", buf.String(), want)
	}
}

func TestSiteURLsEscapeSlugs(t *testing.T) {
	s := NewSite("http://localhost:5000", "x")
	if got := s.ChapterURL("a b", "c?d"); got != "http://localhost:5000/manga/a%20b/c%3Fd" {
		t.Errorf("ChapterURL() = %q", got)
	}
}
