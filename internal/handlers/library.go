package handlers

import (
	"net/http"
	"strings"
	"time"

	"otaku-manga/internal/query"
	"otaku-manga/internal/timeutil"

	"github.com/gorilla/mux"
)

// MangaListResponse is one page of library results.
type MangaListResponse struct {
	Items      []MangaSummary `json:"items"`
	Page       int            `json:"page"`
	TotalPages int            `json:"totalPages"`
	Total      int            `json:"total"`
	PerPage    int            `json:"perPage"`
	Query      string         `json:"query"`
	Tag        string         `json:"tag"`
}

// ListMangas returns the library newest first, filtered by q and tag.
func (h *Handlers) ListMangas(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	tag := strings.TrimSpace(r.URL.Query().Get("tag"))
	perPage := query.ClampLimit(intParam(r, "per_page", h.pageSize), h.pageSize, query.MaxPageSize)

	now := h.now()
	results := query.Search(h.index.Get(), q, tag)
	page := query.Paginate(results, intParam(r, "page", 1), perPage)

	items := make([]MangaSummary, 0, len(page.Items))
	for _, m := range page.Items {
		items = append(items, mangaSummary(m, now))
	}

	writeJSON(w, MangaListResponse{
		Items:      items,
		Page:       page.Page,
		TotalPages: page.TotalPages,
		Total:      page.Total,
		PerPage:    perPage,
		Query:      q,
		Tag:        tag,
	})
}

// GetManga returns one manga with its chapters in the requested sort order.
func (h *Handlers) GetManga(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	m, ok := h.index.Get()[slug]
	if !ok {
		writeJSONError(w, "Manga not found", http.StatusNotFound)
		return
	}

	mode := query.ParseSortMode(r.URL.Query().Get("sort"))
	now := h.now()

	chapters := make([]ChapterView, 0, len(m.Chapters))
	for _, c := range query.SortChapters(m.Chapters, mode) {
		chapters = append(chapters, chapterView(c, now))
	}

	writeJSON(w, MangaDetail{
		MangaSummary: mangaSummary(m, now),
		Description:  m.Description,
		Sort:         mode.String(),
		Chapters:     chapters,
	})
}

// GetChapter returns the reader payload: pages plus previous/next chapters.
func (h *Handlers) GetChapter(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	m, ok := h.index.Get()[vars["slug"]]
	if !ok {
		writeJSONError(w, "Manga not found", http.StatusNotFound)
		return
	}

	c, ok := m.Chapter(vars["chapter"])
	if !ok {
		writeJSONError(w, "Chapter not found", http.StatusNotFound)
		return
	}
	prev, next, _ := m.Neighbors(c.Slug)

	now := h.now()
	pages := make([]PageView, 0, len(c.Pages))
	for _, p := range c.Pages {
		pages = append(pages, PageView{Index: p.Index, URL: contentURL(p.RelPath)})
	}

	writeJSON(w, ChapterDetail{
		Manga:   mangaSummary(m, now),
		Chapter: chapterView(c, now),
		Pages:   pages,
		Prev:    optionalChapterView(prev, now),
		Next:    optionalChapterView(next, now),
	})
}

// GetAllTags returns every distinct tag in the library.
func (h *Handlers) GetAllTags(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, query.AllTags(h.index.Get()))
}

// GetUpdates returns the most recently updated chapters across the library.
func (h *Handlers) GetUpdates(w http.ResponseWriter, r *http.Request) {
	limit := query.ClampLimit(intParam(r, "limit", query.DefaultRecentLimit), query.DefaultRecentLimit, query.MaxRecentLimit)

	now := h.now()
	updates := query.RecentUpdates(h.index.Get(), limit)

	out := make([]UpdateView, 0, len(updates))
	for _, u := range updates {
		out = append(out, UpdateView{
			Updated:    timePtr(u.Updated),
			UpdatedAgo: timeutil.TimeAgo(u.Updated, now),
			MangaSlug:  u.Manga.Slug,
			MangaTitle: u.Manga.Title,
			Chapter:    chapterView(u.Chapter, now),
		})
	}
	writeJSON(w, out)
}

type debugChapter struct {
	Slug    string `json:"slug"`
	Updated string `json:"updated"`
	Pages   int    `json:"pages"`
}

type debugManga struct {
	Title    string         `json:"title"`
	Updated  string         `json:"updated"`
	Chapters []debugChapter `json:"chapters"`
}

// DebugUpdated dumps the effective timestamps of every manga and chapter.
// The zero timestamp is rendered as-is so missing sources stand out.
func (h *Handlers) DebugUpdated(w http.ResponseWriter, _ *http.Request) {
	out := make(map[string]debugManga)
	for slug, m := range h.index.Get() {
		dm := debugManga{
			Title:    m.Title,
			Updated:  m.Updated().Format(time.RFC3339Nano),
			Chapters: make([]debugChapter, 0, len(m.Chapters)),
		}
		for _, c := range m.Chapters {
			dm.Chapters = append(dm.Chapters, debugChapter{
				Slug:    c.Slug,
				Updated: c.Updated.Format(time.RFC3339Nano),
				Pages:   len(c.Pages),
			})
		}
		out[slug] = dm
	}
	writeJSON(w, out)
}

// TriggerReindex rebuilds the index before responding.
func (h *Handlers) TriggerReindex(w http.ResponseWriter, _ *http.Request) {
	idx := h.index.Refresh("api")

	st := h.index.Status()
	status := "ok"
	if st.LastError != "" {
		status = "error"
	}
	writeJSON(w, map[string]interface{}{
		"status": status,
		"manga":  len(idx),
		"error":  st.LastError,
	})
}
