package timeutil

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Zero is the sentinel for a missing or unparseable timestamp.
// It compares before every valid timestamp.
var Zero = time.Time{}

// isoLayouts are tried in order by ParseISO. Layouts without an offset are
// interpreted as UTC.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02",
	"20060102T150405Z0700",
	"20060102T150405",
	"20060102",
}

// Normalize converts t to UTC and strips the monotonic reading so values
// compare and serialize identically regardless of where they came from.
func Normalize(t time.Time) time.Time {
	if t.IsZero() {
		return Zero
	}
	return t.UTC().Round(0)
}

// FromUnix converts an mtime-style value to a normalized timestamp.
func FromUnix(sec int64, nsec int64) time.Time {
	return Normalize(time.Unix(sec, nsec))
}

// ParseISO parses an ISO-8601 timestamp with or without an offset, including
// a trailing literal "Z". Empty or unparseable input yields Zero.
func ParseISO(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return Zero
	}
	if strings.HasSuffix(value, "z") {
		value = value[:len(value)-1] + "Z"
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return Normalize(t)
		}
	}
	return Zero
}

// IsZero reports whether t is the sentinel.
func IsZero(t time.Time) bool {
	return t.IsZero()
}

// Max returns the later of two timestamps.
func Max(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}

// UTC returns t as an explicit UTC value for rendering.
func UTC(t time.Time) time.Time {
	return t.In(time.UTC)
}

// TimeAgo renders t relative to now ("3 minutes ago"). The sentinel renders
// as "never".
func TimeAgo(t, now time.Time) string {
	if IsZero(t) {
		return "never"
	}
	return humanize.RelTime(UTC(t), UTC(now), "ago", "from now")
}

// RFC2822 formats t for RSS pubDate/lastBuildDate fields.
func RFC2822(t time.Time) string {
	return UTC(t).Format(time.RFC1123Z)
}

// LastmodDate formats t as a calendar date for sitemaps. The sentinel renders
// as the current UTC date so crawlers never see implausible dates.
func LastmodDate(t, now time.Time) string {
	if IsZero(t) {
		return UTC(now).Format(time.DateOnly)
	}
	return UTC(t).Format(time.DateOnly)
}
