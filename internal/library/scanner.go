package library

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"otaku-manga/internal/filesystem"
	"otaku-manga/internal/logging"
	"otaku-manga/internal/manifest"
	"otaku-manga/internal/mediatypes"
	"otaku-manga/internal/metrics"
	"otaku-manga/internal/timeutil"
	"otaku-manga/internal/workers"
)

// Timestamp sources, in fallback order.
const (
	SourceManifest  = "manifest"
	SourceFileMtime = "file_mtime"
	SourceDirMtime  = "dir_mtime"
	SourceNone      = "none"
)

// Scanner walks the content tree and builds an Index.
type Scanner struct {
	root         string
	manifestPath string
	retry        filesystem.RetryConfig
	workers      int
	// stat looks up page and chapter directory times; nil means
	// filesystem.StatWithRetry.
	stat func(path string) (os.FileInfo, error)
}

// NewScanner creates a scanner for root. An empty manifestPath means
// root/_updated.yml.
func NewScanner(root, manifestPath string) *Scanner {
	if manifestPath == "" {
		manifestPath = filepath.Join(root, manifest.DefaultFilename)
	}
	return &Scanner{
		root:         root,
		manifestPath: manifestPath,
		retry:        filesystem.DefaultRetryConfig(),
		workers:      workers.ForIO(16),
	}
}

// Root returns the content root.
func (s *Scanner) Root() string {
	return s.root
}

// ManifestPath returns the manifest location.
func (s *Scanner) ManifestPath() string {
	return s.manifestPath
}

// SetWorkers sets the number of manga scanned in parallel.
func (s *Scanner) SetWorkers(n int) {
	if n < 1 {
		n = 1
	}
	s.workers = n
}

// SetRetryConfig replaces the filesystem retry policy.
func (s *Scanner) SetRetryConfig(c filesystem.RetryConfig) {
	s.retry = c
}

func (s *Scanner) statTime(path string) (os.FileInfo, error) {
	if s.stat != nil {
		return s.stat(path)
	}
	return filesystem.StatWithRetry(path, s.retry)
}

// Scan reloads the manifest and builds a fresh index. The returned index is
// never nil. An error is returned only when the content root itself cannot be
// listed; failures below the root degrade the affected item instead.
func (s *Scanner) Scan() (Index, error) {
	return s.ScanWithManifest(manifest.Load(s.manifestPath))
}

// ScanWithManifest builds an index using an already loaded manifest.
func (s *Scanner) ScanWithManifest(m manifest.Manifest) (Index, error) {
	start := time.Now()

	entries, err := filesystem.ReadDirWithRetry(s.root, s.retry)
	if err != nil {
		return Index{}, fmt.Errorf("list content root %s: %w", s.root, err)
	}

	var slugs []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
			continue
		}
		if s.isDir(filepath.Join(s.root, name), entry) {
			slugs = append(slugs, name)
		}
	}

	results := make([]*Manga, len(slugs))
	workers.Each(len(slugs), s.workers, func(i int) {
		results[i] = s.scanManga(slugs[i], m)
	})

	idx := make(Index, len(results))
	for _, manga := range results {
		if manga != nil {
			idx[manga.Slug] = manga
		}
	}

	logging.Debug("Scanned %d manga in %v", len(idx), time.Since(start))
	return idx, nil
}

// isDir follows symlinks, which DirEntry.IsDir does not.
func (s *Scanner) isDir(path string, entry os.DirEntry) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := filesystem.StatWithRetry(path, s.retry)
	return err == nil && info.IsDir()
}

func (s *Scanner) isFile(path string, entry os.DirEntry) bool {
	if entry.Type().IsRegular() {
		return true
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := filesystem.StatWithRetry(path, s.retry)
	return err == nil && info.Mode().IsRegular()
}

// scanManga returns nil when the manga directory cannot be listed.
func (s *Scanner) scanManga(slug string, m manifest.Manifest) *Manga {
	dir := filepath.Join(s.root, slug)

	meta, err := LoadMetadata(slug, filepath.Join(dir, MetadataFilename), s.retry)
	if err != nil {
		logging.Warn("Using default metadata for %s: %v", slug, err)
		metrics.ScannerDegradedTotal.WithLabelValues("metadata").Inc()
	}

	entries, err := filesystem.ReadDirWithRetry(dir, s.retry)
	if err != nil {
		logging.Warn("Skipping manga %s: %v", slug, err)
		metrics.ScannerDegradedTotal.WithLabelValues("manga").Inc()
		return nil
	}

	var chapters []*Chapter
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		chapterDir := filepath.Join(dir, name)
		if !s.isDir(chapterDir, entry) {
			continue
		}
		if ch := s.scanChapter(slug, name, chapterDir, m); ch != nil {
			chapters = append(chapters, ch)
		}
	}

	return NewManga(slug, dir, meta, chapters)
}

// scanChapter returns nil for unreadable or empty chapter directories.
func (s *Scanner) scanChapter(mangaSlug, slug, dir string, m manifest.Manifest) *Chapter {
	entries, err := filesystem.ReadDirWithRetry(dir, s.retry)
	if err != nil {
		logging.Warn("Skipping chapter %s/%s: %v", mangaSlug, slug, err)
		metrics.ScannerDegradedTotal.WithLabelValues("chapter").Inc()
		return nil
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") || !mediatypes.IsPage(name) {
			continue
		}
		if s.isFile(filepath.Join(dir, name), entry) {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		metrics.ScannerEmptyChaptersTotal.Inc()
		return nil
	}
	slices.Sort(names)

	pages := make([]Page, len(names))
	for i, name := range names {
		path := filepath.Join(dir, name)
		pages[i] = Page{
			ChapterSlug: slug,
			Index:       i + 1,
			Path:        path,
			RelPath:     filepath.ToSlash(filepath.Join(mangaSlug, slug, name)),
		}
	}

	dirTime := timeutil.Zero
	if info, err := s.statTime(dir); err == nil {
		dirTime = timeutil.Normalize(info.ModTime())
	} else {
		logging.Debug("Stat failed for chapter %s/%s: %v", mangaSlug, slug, err)
	}

	updated, source := s.resolveUpdated(mangaSlug, slug, pages, dirTime, m)
	metrics.ScannerTimestampSourceTotal.WithLabelValues(source).Inc()

	return NewChapter(mangaSlug, slug, dir, pages, updated, dirTime)
}

// resolveUpdated walks the fallback chain: manifest, newest page mtime,
// directory mtime, Zero. A stat failure on any page abandons the page pass.
func (s *Scanner) resolveUpdated(mangaSlug, slug string, pages []Page, dirTime time.Time, m manifest.Manifest) (time.Time, string) {
	if raw := m.Lookup(mangaSlug, slug); raw != "" {
		if t := timeutil.ParseISO(raw); !timeutil.IsZero(t) {
			return t, SourceManifest
		}
		logging.Warn("Ignoring unparseable manifest timestamp for %s/%s: %q", mangaSlug, slug, raw)
	}

	newest := timeutil.Zero
	for _, p := range pages {
		info, err := s.statTime(p.Path)
		if err != nil {
			logging.Warn("Stat failed for page %s: %v", p.RelPath, err)
			metrics.ScannerDegradedTotal.WithLabelValues("page").Inc()
			newest = timeutil.Zero
			break
		}
		newest = timeutil.Max(newest, timeutil.Normalize(info.ModTime()))
	}
	if !timeutil.IsZero(newest) {
		return newest, SourceFileMtime
	}

	if !timeutil.IsZero(dirTime) {
		return dirTime, SourceDirMtime
	}
	return timeutil.Zero, SourceNone
}
