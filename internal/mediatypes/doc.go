// Package mediatypes defines which files in a chapter directory count as
// pages, and the MIME types used when those pages are served.
package mediatypes
