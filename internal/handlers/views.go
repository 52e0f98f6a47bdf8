package handlers

import (
	"math"
	"net/url"
	"strings"
	"time"

	"otaku-manga/internal/library"
	"otaku-manga/internal/timeutil"
)

// ChapterView is the JSON form of a chapter. Number is null for chapters
// without a number in their slug; Updated is null when no timestamp is known.
type ChapterView struct {
	Slug       string     `json:"slug"`
	Title      string     `json:"title"`
	Number     *float64   `json:"number"`
	Updated    *time.Time `json:"updated"`
	UpdatedAgo string     `json:"updatedAgo"`
	PageCount  int        `json:"pageCount"`
}

// MangaSummary is the JSON form of a manga in listings.
type MangaSummary struct {
	Slug          string       `json:"slug"`
	Title         string       `json:"title"`
	AltTitles     []string     `json:"altTitles"`
	Author        string       `json:"author"`
	Artist        string       `json:"artist"`
	Tags          []string     `json:"tags"`
	Status        string       `json:"status"`
	CoverURL      string       `json:"coverUrl"`
	Updated       *time.Time   `json:"updated"`
	UpdatedAgo    string       `json:"updatedAgo"`
	ChapterCount  int          `json:"chapterCount"`
	LatestChapter *ChapterView `json:"latestChapter"`
}

// MangaDetail adds the description and sorted chapter list.
type MangaDetail struct {
	MangaSummary
	Description string        `json:"description"`
	Sort        string        `json:"sort"`
	Chapters    []ChapterView `json:"chapters"`
}

// PageView is one readable page.
type PageView struct {
	Index int    `json:"index"`
	URL   string `json:"url"`
}

// ChapterDetail is the reader payload.
type ChapterDetail struct {
	Manga   MangaSummary `json:"manga"`
	Chapter ChapterView  `json:"chapter"`
	Pages   []PageView   `json:"pages"`
	Prev    *ChapterView `json:"prev"`
	Next    *ChapterView `json:"next"`
}

// UpdateView is one entry of the recent updates list.
type UpdateView struct {
	Updated    *time.Time  `json:"updated"`
	UpdatedAgo string      `json:"updatedAgo"`
	MangaSlug  string      `json:"mangaSlug"`
	MangaTitle string      `json:"mangaTitle"`
	Chapter    ChapterView `json:"chapter"`
}

// contentURL maps a slash-separated path under the content root to its URL.
func contentURL(rel string) string {
	parts := strings.Split(rel, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return "/content/" + strings.Join(parts, "/")
}

func timePtr(t time.Time) *time.Time {
	if timeutil.IsZero(t) {
		return nil
	}
	u := timeutil.UTC(t)
	return &u
}

func chapterView(c *library.Chapter, now time.Time) ChapterView {
	v := ChapterView{
		Slug:       c.Slug,
		Title:      c.DisplayTitle,
		Updated:    timePtr(c.Updated),
		UpdatedAgo: timeutil.TimeAgo(c.Updated, now),
		PageCount:  len(c.Pages),
	}
	if !math.IsInf(c.Number, 0) {
		n := c.Number
		v.Number = &n
	}
	return v
}

func optionalChapterView(c *library.Chapter, now time.Time) *ChapterView {
	if c == nil {
		return nil
	}
	v := chapterView(c, now)
	return &v
}

func mangaSummary(m *library.Manga, now time.Time) MangaSummary {
	return MangaSummary{
		Slug:          m.Slug,
		Title:         m.Title,
		AltTitles:     m.AltTitles,
		Author:        m.Author,
		Artist:        m.Artist,
		Tags:          m.Tags,
		Status:        m.Status,
		CoverURL:      contentURL(m.CoverRelPath()),
		Updated:       timePtr(m.Updated()),
		UpdatedAgo:    timeutil.TimeAgo(m.Updated(), now),
		ChapterCount:  len(m.Chapters),
		LatestChapter: optionalChapterView(m.LatestChapter(), now),
	}
}
