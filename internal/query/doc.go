// Package query provides read-only views over a library.Index snapshot:
// search, chapter sorting, pagination, recent updates and the tag list.
// Every function is pure and safe to call concurrently on a shared index.
package query
