package library

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// chapterNumberPattern matches decimal digits from any script, so full-width
// and other non-ASCII numerals count as chapter numbers.
var chapterNumberPattern = regexp.MustCompile(`\p{Nd}+(?:\.\p{Nd}+)?`)

// asciiDigits rewrites every Unicode decimal digit in s as its ASCII form.
func asciiDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' || !unicode.Is(unicode.Nd, r) {
			return r
		}
		return '0' + rune(digitValue(r))
	}, s)
}

// digitValue relies on decimal digits being encoded in contiguous runs that
// start at zero.
func digitValue(r rune) int {
	for _, rg := range unicode.Nd.R16 {
		if r >= rune(rg.Lo) && r <= rune(rg.Hi) {
			return int(r-rune(rg.Lo)) / int(rg.Stride) % 10
		}
	}
	for _, rg := range unicode.Nd.R32 {
		if r >= rune(rg.Lo) && r <= rune(rg.Hi) {
			return int(r-rune(rg.Lo)) / int(rg.Stride) % 10
		}
	}
	return 0
}

// ChapterNumber returns the last numeric substring of slug as a float,
// or +Inf when there is none.
func ChapterNumber(slug string) float64 {
	matches := chapterNumberPattern.FindAllString(slug, -1)
	if len(matches) == 0 {
		return math.Inf(1)
	}
	n, err := strconv.ParseFloat(asciiDigits(matches[len(matches)-1]), 64)
	if err != nil {
		return math.Inf(1)
	}
	return n
}

// ChapterDisplayTitle renders "Chapter N" from the first number in the slug.
// Integers lose leading zeros, decimals are kept as written. Slugs without a
// number are title-cased.
func ChapterDisplayTitle(slug string) string {
	normalized := strings.ToLower(strings.ReplaceAll(slug, "_", "-"))
	num := chapterNumberPattern.FindString(normalized)
	if num == "" {
		return titleCase(strings.ReplaceAll(slug, "-", " "))
	}
	if !strings.Contains(num, ".") {
		num = strings.TrimLeft(asciiDigits(num), "0")
		if num == "" {
			num = "0"
		}
	}
	return "Chapter " + num
}

// titleCase upper-cases the first letter of every run of letters and
// lower-cases the rest.
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inWord := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if inWord {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToTitle(r))
			}
			inWord = true
			continue
		}
		b.WriteRune(r)
		inWord = false
	}
	return b.String()
}
