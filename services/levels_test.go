package services

import (
	"testing"
	"time"
)

func TestLevelFor(t *testing.T) {
	tests := []struct {
		points   int
		current  string
		next     string
		progress int
	}{
		{0, "Beginner Trader", "Intermediate Trader", 0},
		{500, "Beginner Trader", "Intermediate Trader", 50},
		{1000, "Intermediate Trader", "Advanced Trader", 0},
		{1750, "Intermediate Trader", "Advanced Trader", 50},
		{4999, "Advanced Trader", "Expert Investor", 99},
		{7500, "Expert Investor", "Master Investor", 50},
		{10000, "Master Investor", "", 100},
		{25000, "Master Investor", "", 100},
		{-5, "Beginner Trader", "Intermediate Trader", 0},
	}
	for _, tt := range tests {
		got := LevelFor(tt.points)
		if got.Current != tt.current || got.Next != tt.next || got.Progress != tt.progress {
			t.Fatalf("LevelFor(%d) = %+v, want {%s %s %d}", tt.points, got, tt.current, tt.next, tt.progress)
		}
	}
}

func TestNextStreak(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	day := func(d int, hour int) *time.Time {
		v := time.Date(2026, 3, d, hour, 0, 0, 0, time.UTC)
		return &v
	}

	if got := NextStreak(0, nil, now); got != 1 {
		t.Fatalf("first activity streak = %d, want 1", got)
	}
	if got := NextStreak(4, day(10, 1), now); got != 4 {
		t.Fatalf("same day streak = %d, want 4", got)
	}
	if got := NextStreak(4, day(9, 23), now); got != 5 {
		t.Fatalf("next day streak = %d, want 5", got)
	}
	if got := NextStreak(4, day(7, 12), now); got != 1 {
		t.Fatalf("after gap streak = %d, want 1", got)
	}
	// The day boundary is UTC regardless of the caller's zone.
	local := time.FixedZone("UTC+10", 10*3600)
	if got := NextStreak(2, day(9, 20), now.In(local)); got != 3 {
		t.Fatalf("zoned next day streak = %d, want 3", got)
	}
}
