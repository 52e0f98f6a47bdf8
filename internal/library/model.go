package library

import (
	"cmp"
	"path"
	"slices"
	"time"
)

// Page is one image within a chapter.
type Page struct {
	// ChapterSlug identifies the owning chapter within its manga.
	ChapterSlug string
	// Index is the 1-based position within the chapter.
	Index int
	// Path is the absolute filesystem path.
	Path string
	// RelPath is slash-separated and relative to the content root.
	RelPath string
}

// Chapter is an ordered unit of pages belonging to one manga.
type Chapter struct {
	Slug      string
	MangaSlug string
	Dir       string
	Pages     []Page

	// Updated is the authoritative update time used for ordering and feeds.
	Updated time.Time
	// Timestamp is the chapter directory mtime.
	Timestamp time.Time

	// Number is parsed from the slug; +Inf when the slug has no number.
	Number       float64
	DisplayTitle string
}

// NewChapter derives Number and DisplayTitle from the slug.
func NewChapter(mangaSlug, slug, dir string, pages []Page, updated, timestamp time.Time) *Chapter {
	return &Chapter{
		Slug:         slug,
		MangaSlug:    mangaSlug,
		Dir:          dir,
		Pages:        pages,
		Updated:      updated,
		Timestamp:    timestamp,
		Number:       ChapterNumber(slug),
		DisplayTitle: ChapterDisplayTitle(slug),
	}
}

// CompareByNumber orders chapters by (Number, Updated, Timestamp).
func CompareByNumber(a, b *Chapter) int {
	if c := cmp.Compare(a.Number, b.Number); c != 0 {
		return c
	}
	if c := a.Updated.Compare(b.Updated); c != 0 {
		return c
	}
	return a.Timestamp.Compare(b.Timestamp)
}

// CompareByUpdated orders chapters by (Updated, Number, Timestamp).
func CompareByUpdated(a, b *Chapter) int {
	if c := a.Updated.Compare(b.Updated); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Number, b.Number); c != 0 {
		return c
	}
	return a.Timestamp.Compare(b.Timestamp)
}

// Manga is one library item. Chapters are sorted ascending by CompareByNumber.
type Manga struct {
	Slug string
	Dir  string
	Metadata
	Chapters []*Chapter

	updated time.Time
	latest  *Chapter
}

// NewManga sorts chapters and precomputes derived fields.
func NewManga(slug, dir string, meta Metadata, chapters []*Chapter) *Manga {
	slices.SortStableFunc(chapters, CompareByNumber)

	m := &Manga{
		Slug:     slug,
		Dir:      dir,
		Metadata: meta,
		Chapters: chapters,
	}

	for _, c := range chapters {
		if c.Updated.After(m.updated) {
			m.updated = c.Updated
		}
		if m.latest == nil || c.Number > m.latest.Number ||
			(c.Number == m.latest.Number && c.Updated.After(m.latest.Updated)) {
			m.latest = c
		}
	}

	return m
}

// Updated is the newest chapter update, or timeutil.Zero without chapters.
func (m *Manga) Updated() time.Time {
	return m.updated
}

// LatestChapter returns the chapter with the greatest (Number, Updated),
// or nil when the manga has no chapters.
func (m *Manga) LatestChapter() *Chapter {
	return m.latest
}

// CoverRelPath returns the cover path relative to the content root.
func (m *Manga) CoverRelPath() string {
	return path.Join(m.Slug, m.Cover)
}

// Chapter finds a chapter by slug.
func (m *Manga) Chapter(slug string) (*Chapter, bool) {
	i := m.chapterIndex(slug)
	if i < 0 {
		return nil, false
	}
	return m.Chapters[i], true
}

// Neighbors returns the chapters before and after slug in ascending order.
// ok is false when slug is not a chapter of m.
func (m *Manga) Neighbors(slug string) (prev, next *Chapter, ok bool) {
	i := m.chapterIndex(slug)
	if i < 0 {
		return nil, nil, false
	}
	if i > 0 {
		prev = m.Chapters[i-1]
	}
	if i+1 < len(m.Chapters) {
		next = m.Chapters[i+1]
	}
	return prev, next, true
}

func (m *Manga) chapterIndex(slug string) int {
	return slices.IndexFunc(m.Chapters, func(c *Chapter) bool { return c.Slug == slug })
}

// Index maps manga slug to manga.
type Index map[string]*Manga

// Sorted returns all manga ordered by slug.
func (idx Index) Sorted() []*Manga {
	out := make([]*Manga, 0, len(idx))
	for _, m := range idx {
		out = append(out, m)
	}
	slices.SortFunc(out, func(a, b *Manga) int { return cmp.Compare(a.Slug, b.Slug) })
	return out
}

// Counts summarizes an index.
type Counts struct {
	Manga    int
	Chapters int
	Pages    int
	Tags     int
}

// Counts returns the number of manga, chapters, pages and distinct tags.
func (idx Index) Counts() Counts {
	tags := make(map[string]struct{})
	c := Counts{Manga: len(idx)}
	for _, m := range idx {
		c.Chapters += len(m.Chapters)
		for _, ch := range m.Chapters {
			c.Pages += len(ch.Pages)
		}
		for _, t := range m.Tags {
			tags[t] = struct{}{}
		}
	}
	c.Tags = len(tags)
	return c
}
