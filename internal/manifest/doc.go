// Package manifest reads and writes the update-timestamp manifest: a YAML
// document mapping manga slug to chapter slug to ISO-8601 timestamp.
//
//	one-piece:
//	  chapter-1000: "2024-01-01T00:00:00Z"
//	  chapter-1001: "2024-01-08T00:00:00+09:00"
//
// Load never fails. A missing file, malformed YAML, or a document whose top
// level is not a mapping all yield an empty Manifest. Individual manga entries
// that are not chapter mappings are dropped. Timestamp strings are not
// validated here.
package manifest
