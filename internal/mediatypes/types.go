package mediatypes

import (
	"path/filepath"
	"strings"
)

// PageExtensions is the allow-list of page image extensions (lowercase).
var PageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
}

// MimeTypes maps page extensions to their MIME types.
var MimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
}

// IsPage reports whether name has an allowed page extension,
// compared case-insensitively.
func IsPage(name string) bool {
	return PageExtensions[strings.ToLower(filepath.Ext(name))]
}

// GetMimeType returns the MIME type for a filename, or
// "application/octet-stream" if the extension is not a page type.
func GetMimeType(name string) string {
	if mime, ok := MimeTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return mime
	}
	return "application/octet-stream"
}
