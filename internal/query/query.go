package query

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"otaku-manga/internal/library"
)

// Defaults applied when callers pass non-positive sizes.
const (
	DefaultPageSize    = 16
	DefaultRecentLimit = 50
	MaxPageSize        = 200
	MaxRecentLimit     = 500
)

// SortMode selects the chapter ordering.
type SortMode int

const (
	NumberDesc SortMode = iota
	NumberAsc
	UpdatedDesc
	UpdatedAsc
)

var sortModeNames = map[SortMode]string{
	NumberDesc:  "number_desc",
	NumberAsc:   "number_asc",
	UpdatedDesc: "updated_desc",
	UpdatedAsc:  "updated_asc",
}

// ParseSortMode maps external input to a SortMode. Unknown names give NumberDesc.
func ParseSortMode(s string) SortMode {
	s = strings.ToLower(strings.TrimSpace(s))
	for mode, name := range sortModeNames {
		if name == s {
			return mode
		}
	}
	return NumberDesc
}

func (m SortMode) String() string {
	if name, ok := sortModeNames[m]; ok {
		return name
	}
	return sortModeNames[NumberDesc]
}

// Search returns the manga matching text and tag, newest first. Empty
// arguments do not filter. Ties keep slug order.
func Search(idx library.Index, text, tag string) []*library.Manga {
	text = strings.ToLower(strings.TrimSpace(text))
	tag = strings.ToLower(strings.TrimSpace(tag))

	var out []*library.Manga
	for _, m := range idx.Sorted() {
		if text != "" && !strings.Contains(haystack(m), text) {
			continue
		}
		if tag != "" && !hasTag(m, tag) {
			continue
		}
		out = append(out, m)
	}

	slices.SortStableFunc(out, func(a, b *library.Manga) int {
		return b.Updated().Compare(a.Updated())
	})
	return out
}

func haystack(m *library.Manga) string {
	parts := make([]string, 0, 3+len(m.AltTitles)+len(m.Tags))
	parts = append(parts, m.Title)
	parts = append(parts, m.AltTitles...)
	parts = append(parts, m.Author, m.Artist)
	parts = append(parts, m.Tags...)
	return strings.ToLower(strings.Join(parts, " "))
}

func hasTag(m *library.Manga, lowered string) bool {
	for _, t := range m.Tags {
		if strings.ToLower(t) == lowered {
			return true
		}
	}
	return false
}

// SortChapters returns a sorted copy of chapters.
func SortChapters(chapters []*library.Chapter, mode SortMode) []*library.Chapter {
	out := slices.Clone(chapters)

	var compare func(a, b *library.Chapter) int
	switch mode {
	case NumberAsc:
		compare = library.CompareByNumber
	case UpdatedDesc:
		compare = func(a, b *library.Chapter) int { return library.CompareByUpdated(b, a) }
	case UpdatedAsc:
		compare = library.CompareByUpdated
	default:
		compare = func(a, b *library.Chapter) int { return library.CompareByNumber(b, a) }
	}

	slices.SortStableFunc(out, compare)
	return out
}

// Page is one slice of a paginated sequence.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	TotalPages int `json:"totalPages"`
	Total      int `json:"total"`
}

// Paginate clamps page into [1, totalPages] and returns that slice. There is
// always at least one page. pageSize < 1 uses DefaultPageSize.
func Paginate[T any](items []T, page, pageSize int) Page[T] {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	total := len(items)
	totalPages := max(1, (total+pageSize-1)/pageSize)
	page = min(max(page, 1), totalPages)

	start := (page - 1) * pageSize
	end := min(start+pageSize, total)

	return Page[T]{
		Items:      items[start:end],
		Page:       page,
		TotalPages: totalPages,
		Total:      total,
	}
}

// Update is one entry of the recent updates list.
type Update struct {
	Updated time.Time
	Manga   *library.Manga
	Chapter *library.Chapter
}

// RecentUpdates returns the limit most recently updated chapters across the
// whole library. limit < 1 uses DefaultRecentLimit. Ties are ordered by
// manga slug and then chapter order so results are deterministic.
func RecentUpdates(idx library.Index, limit int) []Update {
	if limit < 1 {
		limit = DefaultRecentLimit
	}

	var updates []Update
	for _, m := range idx.Sorted() {
		for _, c := range m.Chapters {
			updates = append(updates, Update{Updated: c.Updated, Manga: m, Chapter: c})
		}
	}

	slices.SortStableFunc(updates, func(a, b Update) int {
		return b.Updated.Compare(a.Updated)
	})

	if len(updates) > limit {
		updates = updates[:limit]
	}
	return updates
}

// AllTags returns every distinct tag in the library, sorted case-insensitively.
func AllTags(idx library.Index) []string {
	seen := make(map[string]bool)
	tags := []string{}
	for _, m := range idx {
		for _, t := range m.Tags {
			if t == "" || seen[t] {
				continue
			}
			seen[t] = true
			tags = append(tags, t)
		}
	}
	slices.SortFunc(tags, func(a, b string) int {
		if c := cmp.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	return tags
}

// ClampLimit bounds a caller supplied size to [1, upper], using def for
// values below 1.
func ClampLimit(n, def, upper int) int {
	if n < 1 {
		return def
	}
	return min(n, upper)
}
