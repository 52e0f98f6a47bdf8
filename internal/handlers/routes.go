package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Register adds every route to r. Route names appear in the startup log.
func (h *Handlers) Register(r *mux.Router) {
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet).Name("health")
	r.HandleFunc("/healthz", h.HealthCheck).Methods(http.MethodGet).Name("healthz")
	r.HandleFunc("/livez", h.LivenessCheck).Methods(http.MethodGet, http.MethodHead).Name("livez")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods(http.MethodGet).Name("readyz")
	r.HandleFunc("/version", h.GetVersion).Methods(http.MethodGet).Name("version")

	r.HandleFunc("/feed.xml", h.Feed).Methods(http.MethodGet).Name("feed")
	r.HandleFunc("/sitemap.xml", h.Sitemap).Methods(http.MethodGet).Name("sitemap")
	r.HandleFunc("/robots.txt", h.Robots).Methods(http.MethodGet).Name("robots")

	r.HandleFunc("/admin/debug-updated", h.DebugUpdated).Methods(http.MethodGet).Name("debugUpdated")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/mangas", h.ListMangas).Methods(http.MethodGet).Name("listMangas")
	api.HandleFunc("/mangas/{slug}", h.GetManga).Methods(http.MethodGet).Name("getManga")
	api.HandleFunc("/mangas/{slug}/{chapter}", h.GetChapter).Methods(http.MethodGet).Name("getChapter")
	api.HandleFunc("/tags", h.GetAllTags).Methods(http.MethodGet).Name("tags")
	api.HandleFunc("/updates", h.GetUpdates).Methods(http.MethodGet).Name("updates")
	api.HandleFunc("/reindex", h.TriggerReindex).Methods(http.MethodPost).Name("reindex")

	r.PathPrefix("/content/").HandlerFunc(h.ServeContent).Methods(http.MethodGet, http.MethodHead).Name("content")
}
