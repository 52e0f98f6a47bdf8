package handlers

import (
	"net/http"
	"runtime"
	"time"

	"otaku-manga/internal/startup"
)

const (
	statusHealthy  = "healthy"
	statusStarting = "starting"
	statusDegraded = "degraded"
)

// HealthResponse contains the health check response
type HealthResponse struct {
	Status     string `json:"status"`
	Ready      bool   `json:"ready"`
	Version    string `json:"version"`
	Uptime     string `json:"uptime"`
	Rebuilding bool   `json:"rebuilding"`
	LastBuilt  string `json:"lastBuilt,omitempty"`
	LastError  string `json:"lastError,omitempty"`

	// Library summary
	Manga    int `json:"manga"`
	Chapters int `json:"chapters"`

	// System info
	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

// HealthCheck returns the health status of the service
func (h *Handlers) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	st := h.index.Status()

	response := HealthResponse{
		Ready:        st.Ready,
		Version:      startup.Version,
		Uptime:       time.Since(h.startTime).Round(time.Second).String(),
		Rebuilding:   st.Rebuilding,
		Manga:        st.Manga,
		Chapters:     st.Chapters,
		GoVersion:    runtime.Version(),
		NumCPU:       runtime.NumCPU(),
		NumGoroutine: runtime.NumGoroutine(),
	}

	if st.Ready {
		response.Status = statusHealthy
	} else {
		response.Status = statusStarting
	}

	if !st.LastBuilt.IsZero() {
		response.LastBuilt = st.LastBuilt.Format(time.RFC3339)
	}

	// A failed rebuild still serves the previous index.
	if st.LastError != "" {
		response.LastError = st.LastError
		response.Status = statusDegraded
	}

	w.Header().Set("Content-Type", "application/json")
	if !st.Ready {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	writeJSON(w, response)
}

// LivenessCheck is a simple liveness probe (always returns 200 if server is running)
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	// HEAD gets headers only
	if r.Method != http.MethodHead {
		writeJSON(w, map[string]string{
			"status": "alive",
		})
	}
}

// ReadinessCheck returns 200 once the first index has been built
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if h.index.Ready() {
		w.WriteHeader(http.StatusOK)
		writeJSON(w, map[string]string{
			"status": "ready",
		})
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
		writeJSON(w, map[string]string{
			"status": "not_ready",
		})
	}
}
