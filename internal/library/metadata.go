package library

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"otaku-manga/internal/filesystem"

	"gopkg.in/yaml.v3"
)

// MetadataFilename is the per-manga metadata document.
const MetadataFilename = "manga.yml"

// Metadata defaults.
const (
	DefaultAuthor = "Unknown"
	DefaultStatus = "Ongoing"
	DefaultCover  = "cover.jpg"
)

// Metadata holds the descriptive fields of a manga.
type Metadata struct {
	Title       string   `json:"title"`
	AltTitles   []string `json:"altTitles"`
	Author      string   `json:"author"`
	Artist      string   `json:"artist"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Status      string   `json:"status"`
	Cover       string   `json:"cover"`
}

// DefaultMetadata returns the metadata used when manga.yml is absent.
func DefaultMetadata(slug string) Metadata {
	return Metadata{
		Title:     titleCase(strings.ReplaceAll(slug, "-", " ")),
		AltTitles: []string{},
		Author:    DefaultAuthor,
		Artist:    DefaultAuthor,
		Tags:      []string{},
		Status:    DefaultStatus,
		Cover:     DefaultCover,
	}
}

// metadataDocument mirrors manga.yml. Pointer fields distinguish an absent
// key from an explicit value.
type metadataDocument struct {
	Title       *string    `yaml:"title"`
	AltTitles   stringList `yaml:"alt_titles"`
	Author      *string    `yaml:"author"`
	Artist      *string    `yaml:"artist"`
	Description *string    `yaml:"description"`
	Tags        stringList `yaml:"tags"`
	Status      *string    `yaml:"status"`
	Cover       *string    `yaml:"cover"`
}

// stringList accepts either a YAML sequence or a single scalar.
type stringList []string

func (l *stringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.ShortTag() == "!!null" || strings.TrimSpace(value.Value) == "" {
			*l = nil
			return nil
		}
		*l = stringList{value.Value}
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := value.Decode(&items); err != nil {
			return err
		}
		*l = items
		return nil
	default:
		return fmt.Errorf("line %d: expected a list of strings", value.Line)
	}
}

// ParseMetadata merges a manga.yml document over DefaultMetadata(slug).
// Empty strings count as absent.
func ParseMetadata(slug string, data []byte) (Metadata, error) {
	meta := DefaultMetadata(slug)

	var doc metadataDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return meta, fmt.Errorf("decode %s: %w", MetadataFilename, err)
	}

	set := func(dst *string, src *string) {
		if src != nil && strings.TrimSpace(*src) != "" {
			*dst = *src
		}
	}

	set(&meta.Title, doc.Title)
	set(&meta.Author, doc.Author)
	meta.Artist = meta.Author
	set(&meta.Artist, doc.Artist)
	set(&meta.Description, doc.Description)
	set(&meta.Status, doc.Status)
	set(&meta.Cover, doc.Cover)

	if doc.AltTitles != nil {
		meta.AltTitles = []string(doc.AltTitles)
	}
	if doc.Tags != nil {
		meta.Tags = []string(doc.Tags)
	}

	return meta, nil
}

// LoadMetadata reads manga.yml from path. A missing file is not an error.
// On a read or decode error the defaults are returned along with the error.
func LoadMetadata(slug, path string, retry filesystem.RetryConfig) (Metadata, error) {
	data, err := filesystem.ReadFileWithRetry(path, retry)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultMetadata(slug), nil
		}
		return DefaultMetadata(slug), fmt.Errorf("read %s: %w", path, err)
	}
	return ParseMetadata(slug, data)
}
