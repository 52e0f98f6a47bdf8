package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFilename)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, `
one-piece:
  chapter-1000: "2024-01-01T00:00:00Z"
  chapter-1001: 2024-01-08T00:00:00+09:00
berserk:
  "1": "2023-05-05T10:00:00"
`)

	m := Load(path)

	if got := m.Lookup("one-piece", "chapter-1000"); got != "2024-01-01T00:00:00Z" {
		t.Errorf("Lookup quoted = %q", got)
	}
	if got := m.Lookup("one-piece", "chapter-1001"); got != "2024-01-08T00:00:00+09:00" {
		t.Errorf("Lookup unquoted timestamp = %q", got)
	}
	if got := m.Lookup("berserk", "1"); got != "2023-05-05T10:00:00" {
		t.Errorf("Lookup numeric key = %q", got)
	}
	if got := m.Lookup("berserk", "2"); got != "" {
		t.Errorf("Lookup missing chapter = %q, want empty", got)
	}
	if got := m.Lookup("nope", "1"); got != "" {
		t.Errorf("Lookup missing manga = %q, want empty", got)
	}
	if m.Entries() != 3 {
		t.Errorf("Entries = %d, want 3", m.Entries())
	}
}

func TestLoad_DegradesToEmpty(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed yaml", "one-piece: [unclosed"},
		{"list at top level", "- a\n- b\n"},
		{"scalar at top level", "just a string"},
		{"empty file", ""},
		{"explicit null", "~"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Load(writeFile(t, tt.content))
			if m == nil {
				t.Fatal("Load returned nil manifest")
			}
			if len(m) != 0 {
				t.Errorf("Load = %v, want empty", m)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	m := Load(filepath.Join(t.TempDir(), "absent.yml"))
	if m == nil || len(m) != 0 {
		t.Errorf("Load(missing) = %v, want empty manifest", m)
	}
	if m := Load(""); len(m) != 0 {
		t.Errorf("Load(\"\") = %v, want empty manifest", m)
	}
}

func TestParse_SkipsBadEntries(t *testing.T) {
	m, err := Parse([]byte(`
good:
  ch-1: "2024-01-01T00:00:00Z"
listy:
  - ch-1
empty:
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, ok := m["listy"]; ok {
		t.Error("non-mapping manga entry should be dropped")
	}
	if _, ok := m["empty"]; !ok {
		t.Error("null manga entry should become an empty chapter map")
	}
	if m.Lookup("good", "ch-1") == "" {
		t.Error("valid entry should survive alongside bad ones")
	}
}

func TestParse_NotMapping(t *testing.T) {
	if _, err := Parse([]byte("- 1\n")); !errors.Is(err, ErrNotMapping) {
		t.Errorf("Parse(list) err = %v, want ErrNotMapping", err)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", DefaultFilename)
	in := Manifest{
		"b-manga": {"ch-2": "2024-02-02T00:00:00+00:00", "ch-1": "2024-01-01T00:00:00+00:00"},
		"a-manga": {"ch-1": "2023-01-01T00:00:00Z"},
	}

	if err := Write(path, in); err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	a, b := strings.Index(text, "a-manga:"), strings.Index(text, "b-manga:")
	if a < 0 || b < 0 || a > b {
		t.Errorf("Write output should list manga in sorted order:\n%s", text)
	}

	out := Load(path)
	if out.Lookup("b-manga", "ch-2") != "2024-02-02T00:00:00+00:00" {
		t.Errorf("round trip lost entry: %v", out)
	}
}
