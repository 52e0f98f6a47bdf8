package handlers

import (
	"errors"
	"io/fs"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"otaku-manga/internal/filesystem"
	"otaku-manga/internal/logging"
	"otaku-manga/internal/mediatypes"
)

// ServeContent serves page images from the content directory. Only files
// with a page extension are served; hidden paths, the manifest and
// metadata files are not reachable.
func (h *Handlers) ServeContent(w http.ResponseWriter, r *http.Request) {
	rel, ok := contentPath(r.URL.Path)
	if !ok || !mediatypes.IsPage(rel) {
		http.NotFound(w, r)
		return
	}

	fullPath := filepath.Join(h.contentDir, filepath.FromSlash(rel))

	info, err := filesystem.StatWithRetry(fullPath, h.retry)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logging.Warn("content: stat %s: %v", fullPath, err)
		}
		http.NotFound(w, r)
		return
	}
	if info.IsDir() {
		http.NotFound(w, r)
		return
	}

	f, err := filesystem.OpenWithRetry(fullPath, h.retry)
	if err != nil {
		logging.Error("content: open %s: %v", fullPath, err)
		http.Error(w, "Failed to open file", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", mediatypes.GetMimeType(rel))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

// contentPath turns a /content/... URL path into a cleaned relative path.
// It rejects traversal and any hidden segment.
func contentPath(urlPath string) (string, bool) {
	rel := strings.TrimPrefix(urlPath, "/content/")
	if rel == "" || rel == urlPath {
		return "", false
	}

	cleaned := strings.TrimPrefix(path.Clean("/"+rel), "/")
	if cleaned == "" {
		return "", false
	}
	for _, seg := range strings.Split(cleaned, "/") {
		if seg == ".." || strings.HasPrefix(seg, ".") {
			return "", false
		}
	}
	return cleaned, true
}
