// Package library models the manga library and builds it from the content tree.
//
// Layout on disk:
//
//	<root>/<manga-slug>/manga.yml                 optional metadata
//	<root>/<manga-slug>/<chapter-slug>/<pages>    .jpg .jpeg .png .webp .gif
//
// Top-level directories starting with "_" are reserved (the manifest lives in
// _updated.yml) and hidden entries are ignored everywhere. A chapter directory
// without pages is never turned into a Chapter.
//
// Every value in an Index is built fresh by Scanner.Scan and never mutated
// afterwards, so an Index can be shared between goroutines without locking.
//
// A chapter's Updated timestamp is taken from the first source that yields a
// value: the manifest entry, the newest page mtime, the chapter directory
// mtime, and finally timeutil.Zero.
package library
