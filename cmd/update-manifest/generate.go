package main

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"otaku-manga/internal/filesystem"
	"otaku-manga/internal/logging"
	"otaku-manga/internal/manifest"

	"gopkg.in/yaml.v3"
)

// commitTimeFunc returns the ISO 8601 time of the last commit touching path,
// or "" when there is none. An empty path asks for the latest commit overall.
type commitTimeFunc func(path string) string

type generator struct {
	contentDir string
	commitTime commitTimeFunc
	now        func() time.Time
}

// build walks contentDir/<manga>/<chapter>. Top-level directories starting
// with "_" and hidden directories are skipped, as are manga with no chapter
// directories.
func (g *generator) build() (manifest.Manifest, error) {
	retry := filesystem.DefaultRetryConfig()

	mangaEntries, err := filesystem.ReadDirWithRetry(g.contentDir, retry)
	if err != nil {
		return nil, fmt.Errorf("read content directory: %w", err)
	}

	// Resolved lazily and at most once.
	var head string
	headResolved := false
	fallback := func() string {
		if !headResolved {
			head = g.commitTime("")
			headResolved = true
		}
		if head != "" {
			return head
		}
		return g.now().UTC().Format(time.RFC3339)
	}

	m := manifest.Manifest{}
	for _, me := range mangaEntries {
		name := me.Name()
		if !me.IsDir() || strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".") {
			continue
		}

		mangaDir := filepath.Join(g.contentDir, name)
		chapterEntries, err := filesystem.ReadDirWithRetry(mangaDir, retry)
		if err != nil {
			logging.Warn("Skipping %s: %v", mangaDir, err)
			continue
		}

		chapters := map[string]string{}
		for _, ce := range chapterEntries {
			if !ce.IsDir() || strings.HasPrefix(ce.Name(), ".") {
				continue
			}
			ts := g.commitTime(filepath.Join(mangaDir, ce.Name()))
			if ts == "" {
				ts = fallback()
			}
			chapters[ce.Name()] = ts
		}

		if len(chapters) > 0 {
			m[name] = chapters
		}
	}

	return m, nil
}

// gitCommitTime asks git for commit times inside repo.
func gitCommitTime(ctx context.Context, repo string) commitTimeFunc {
	return func(path string) string {
		args := []string{"-C", repo, "log", "-1", "--format=%cI"}
		if path != "" {
			abs, err := filepath.Abs(path)
			if err != nil {
				return ""
			}
			args = append(args, "--", abs)
		}

		out, err := exec.CommandContext(ctx, "git", args...).Output()
		if err != nil {
			logging.Debug("git log for %q failed: %v", path, err)
			return ""
		}
		return strings.TrimSpace(string(out))
	}
}

// writeTo prints m in the same layout manifest.Write produces.
func writeTo(w io.Writer, m manifest.Manifest) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(map[string]map[string]string(m)); err != nil {
		return err
	}
	return enc.Close()
}
