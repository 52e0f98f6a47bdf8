package library

import (
	"math"
	"testing"
)

func TestChapterNumber(t *testing.T) {
	tests := []struct {
		slug string
		want float64
	}{
		{"chapter-1", 1},
		{"chapter-010", 10},
		{"ch-1.5", 1.5},
		{"v2-ch10", 10},
		{"vol3_chapter_12.25", 12.25},
		{"1", 1},
		{"0", 0},
		{"extra", math.Inf(1)},
		{"", math.Inf(1)},
		{"chapter-\uff13", 3},
		{"\u7b2c\uff11\uff12\u8a71", 12},
		{"ch-\u0664.\u0665", 4.5},
		{"ch-\u0967\u0966", 10},
	}

	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			got := ChapterNumber(tt.slug)
			if got != tt.want {
				t.Errorf("ChapterNumber(%q) = %v, want %v", tt.slug, got, tt.want)
			}
		})
	}
}

func TestChapterDisplayTitle(t *testing.T) {
	tests := []struct {
		slug string
		want string
	}{
		{"chapter-1", "Chapter 1"},
		{"chapter-007", "Chapter 7"},
		{"Chapter_1.5", "Chapter 1.5"},
		{"ch-000", "Chapter 0"},
		{"v2-ch10", "Chapter 2"},
		{"extra-story", "Extra Story"},
		{"bonus_side", "Bonus_Side"},
		{"oneshot", "Oneshot"},
		{"chapter-\uff10\uff17", "Chapter 7"},
	}

	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			if got := ChapterDisplayTitle(tt.slug); got != tt.want {
				t.Errorf("ChapterDisplayTitle(%q) = %q, want %q", tt.slug, got, tt.want)
			}
		})
	}
}

func TestTitleCase(t *testing.T) {
	tests := map[string]string{
		"one piece":     "One Piece",
		"ONE PIECE":     "One Piece",
		"dr. stone":     "Dr. Stone",
		"86 eighty six": "86 Eighty Six",
		"x's tale":      "X'S Tale",
		"":              "",
	}

	for in, want := range tests {
		if got := titleCase(in); got != want {
			t.Errorf("titleCase(%q) = %q, want %q", in, got, want)
		}
	}
}
