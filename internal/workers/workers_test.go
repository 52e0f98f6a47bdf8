package workers

import (
	"runtime"
	"sync/atomic"
	"testing"
)

func TestCount(t *testing.T) {
	t.Setenv(EnvOverride, "")

	availableCPU := runtime.GOMAXPROCS(0)

	tests := []struct {
		name       string
		multiplier float64
		limit      int
		minExpect  int
		maxExpect  int
	}{
		{"I/O-bound", 2.0, 0, 1, availableCPU * 2},
		{"limited", 2.0, 1, 1, 1},
		{"tiny multiplier floors at 1", 0.0001, 0, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Count(tt.multiplier, tt.limit)
			if got < tt.minExpect || got > tt.maxExpect {
				t.Errorf("Count(%v, %d) = %d, want in [%d, %d]", tt.multiplier, tt.limit, got, tt.minExpect, tt.maxExpect)
			}
		})
	}
}

func TestCountOverride(t *testing.T) {
	t.Setenv(EnvOverride, "5")

	if got := Count(1.0, 0); got != 5 {
		t.Errorf("Count with override = %d, want 5", got)
	}
	if got := Count(1.0, 3); got != 3 {
		t.Errorf("Count with override and limit = %d, want 3", got)
	}

	t.Setenv(EnvOverride, "garbage")
	if got := ForIO(1); got != 1 {
		t.Errorf("ForIO(1) with invalid override = %d, want 1", got)
	}
}

func TestEach(t *testing.T) {
	tests := []struct {
		name    string
		n       int
		workers int
	}{
		{"more items than workers", 100, 4},
		{"more workers than items", 3, 10},
		{"zero workers", 5, 0},
		{"no items", 0, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen := make([]atomic.Int32, tt.n)
			Each(tt.n, tt.workers, func(i int) {
				seen[i].Add(1)
			})
			for i := range seen {
				if c := seen[i].Load(); c != 1 {
					t.Errorf("item %d visited %d times, want 1", i, c)
				}
			}
		})
	}
}
