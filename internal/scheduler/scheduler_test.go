package scheduler

import (
	"testing"
	"time"
)

func TestNextTickUnaligned(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 17, 30, 0, time.UTC)
	next := NextTick(now, time.Hour, false)
	if !next.Equal(now.Add(time.Hour)) {
		t.Fatalf("unaligned next tick %s, want %s", next, now.Add(time.Hour))
	}
}

func TestNextTickAligned(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 17, 30, 0, time.UTC)
	next := NextTick(now, time.Hour, true)
	want := time.Date(2025, 3, 1, 11, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Fatalf("aligned next tick %s, want %s", next, want)
	}
}

func TestNextTickAlignedOnBoundary(t *testing.T) {
	now := time.Date(2025, 3, 1, 11, 0, 0, 0, time.UTC)
	next := NextTick(now, time.Hour, true)
	want := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Fatalf("boundary next tick %s, want %s", next, want)
	}
}
