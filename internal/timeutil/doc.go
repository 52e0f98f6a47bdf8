// Package timeutil normalizes timestamps from manifests and the filesystem
// into one comparable UTC form and renders them for feeds and views.
//
// All comparisons inside the library use values returned by Normalize or
// ParseISO. Zero (the zero time.Time) is the "no timestamp" sentinel: it sorts
// before every real timestamp and is what failed parses and failed stats yield.
// Rendering helpers convert back to an explicit UTC value before formatting.
package timeutil
