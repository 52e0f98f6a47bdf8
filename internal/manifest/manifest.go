package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"otaku-manga/internal/filesystem"
	"otaku-manga/internal/logging"
	"otaku-manga/internal/metrics"

	"gopkg.in/yaml.v3"
)

// DefaultFilename is the manifest name inside the content root.
const DefaultFilename = "_updated.yml"

// ErrNotMapping is returned by Parse when the document's top level is not a mapping.
var ErrNotMapping = errors.New("manifest top level is not a mapping")

// Manifest maps manga slug to chapter slug to a raw timestamp string.
type Manifest map[string]map[string]string

// Lookup returns the raw timestamp for a chapter, or "" if none is recorded.
func (m Manifest) Lookup(mangaSlug, chapterSlug string) string {
	if m == nil {
		return ""
	}
	return m[mangaSlug][chapterSlug]
}

// Entries returns the total number of chapter entries.
func (m Manifest) Entries() int {
	n := 0
	for _, chapters := range m {
		n += len(chapters)
	}
	return n
}

// Parse decodes a manifest document. An empty document is an empty manifest.
func Parse(data []byte) (Manifest, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}

	out := Manifest{}
	if root.Kind == 0 || len(root.Content) == 0 {
		return out, nil
	}

	doc := root.Content[0]
	if doc.Kind == yaml.ScalarNode && doc.ShortTag() == "!!null" {
		return out, nil
	}
	if doc.Kind != yaml.MappingNode {
		return nil, ErrNotMapping
	}

	for i := 0; i+1 < len(doc.Content); i += 2 {
		key, value := doc.Content[i], doc.Content[i+1]

		var chapters map[string]string
		if err := value.Decode(&chapters); err != nil {
			logging.Warn("Manifest entry %q ignored (line %d): %v", key.Value, key.Line, err)
			continue
		}
		if chapters == nil {
			chapters = map[string]string{}
		}
		out[key.Value] = chapters
	}

	return out, nil
}

// Load reads the manifest at path. It never fails: any error is logged and
// an empty Manifest is returned.
func Load(path string) Manifest {
	if path == "" {
		return Manifest{}
	}

	data, err := filesystem.ReadFileWithRetry(path, filesystem.DefaultRetryConfig())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logging.Debug("No manifest at %s", path)
			metrics.ManifestLoadsTotal.WithLabelValues("missing").Inc()
		} else {
			logging.Warn("Failed to read manifest %s: %v", path, err)
			metrics.ManifestLoadsTotal.WithLabelValues("error").Inc()
		}
		metrics.ManifestEntries.Set(0)
		return Manifest{}
	}

	m, err := Parse(data)
	if err != nil {
		logging.Warn("Ignoring manifest %s: %v", path, err)
		metrics.ManifestLoadsTotal.WithLabelValues("invalid").Inc()
		metrics.ManifestEntries.Set(0)
		return Manifest{}
	}

	metrics.ManifestLoadsTotal.WithLabelValues("ok").Inc()
	metrics.ManifestEntries.Set(float64(m.Entries()))
	return m
}

// Write encodes m as YAML with sorted keys and atomically replaces path.
func Write(path string, m Manifest) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(map[string]map[string]string(m)); err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create manifest directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".manifest-*.yml")
	if err != nil {
		return fmt.Errorf("create temp manifest: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp manifest: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		logging.Warn("failed to chmod %s: %v", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace manifest: %w", err)
	}
	return nil
}
