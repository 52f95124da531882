package queststreak

import (
	"context"
	"testing"
	"time"
)

func TestEffectsFor(t *testing.T) {
	tests := []struct {
		streak        int
		wantMult      float64
		wantExtra     int
		wantRare      bool
		wantLegendary bool
	}{
		{streak: 0, wantMult: 1},
		{streak: 1, wantMult: 1.05},
		{streak: 2, wantMult: 1.05},
		{streak: 3, wantMult: 1.1},
		{streak: 6, wantMult: 1.1},
		{streak: 7, wantMult: 1.1, wantExtra: 1},
		{streak: 13, wantMult: 1.1, wantExtra: 1},
		{streak: 14, wantMult: 1.1, wantExtra: 1, wantRare: true},
		{streak: 29, wantMult: 1.1, wantExtra: 1, wantRare: true},
		{streak: 30, wantMult: 1.1, wantExtra: 1, wantRare: true, wantLegendary: true},
		{streak: 90, wantMult: 1.1, wantExtra: 1, wantRare: true, wantLegendary: true},
	}

	for _, tt := range tests {
		got := EffectsFor(tt.streak)
		if got.XPMultiplier != tt.wantMult {
			t.Errorf("EffectsFor(%d).XPMultiplier = %v, want %v", tt.streak, got.XPMultiplier, tt.wantMult)
		}
		if got.ExtraLootDrops != tt.wantExtra {
			t.Errorf("EffectsFor(%d).ExtraLootDrops = %d, want %d", tt.streak, got.ExtraLootDrops, tt.wantExtra)
		}
		if got.GuaranteedRare != tt.wantRare {
			t.Errorf("EffectsFor(%d).GuaranteedRare = %v, want %v", tt.streak, got.GuaranteedRare, tt.wantRare)
		}
		if got.GuaranteedLegendary != tt.wantLegendary {
			t.Errorf("EffectsFor(%d).GuaranteedLegendary = %v, want %v", tt.streak, got.GuaranteedLegendary, tt.wantLegendary)
		}
	}
}

func TestDescribe(t *testing.T) {
	if got := Describe(0); got != "No active bonus" {
		t.Errorf("Describe(0) = %q", got)
	}
	if got := Describe(30); got != "guaranteed legendary drop once/day" {
		t.Errorf("Describe(30) = %q", got)
	}
}

func TestNextStreak(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2026, time.April, d, 12, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name    string
		current int
		last    time.Time
		now     time.Time
		want    int
	}{
		{name: "no prior completion", current: 0, now: day(10), want: 1},
		{name: "same day keeps", current: 5, last: day(10), now: day(10), want: 5},
		{name: "next day extends", current: 5, last: day(10), now: day(11), want: 6},
		{name: "missed day resets", current: 5, last: day(10), now: day(12), want: 1},
		{name: "same day with zero repairs", current: 0, last: day(10), now: day(10), want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nextStreak(tt.current, tt.last, tt.now); got != tt.want {
				t.Errorf("nextStreak(%d, %v, %v) = %d, want %d", tt.current, tt.last, tt.now, got, tt.want)
			}
		})
	}
}

func TestMilestoneDropBelowThreshold(t *testing.T) {
	tracker := NewTracker(nil, nil, nil, nil)
	drop, err := tracker.MaybeGrantMilestoneDrop(context.Background(), 1, 13)
	if err != nil {
		t.Fatalf("MaybeGrantMilestoneDrop returned error: %v", err)
	}
	if drop != nil {
		t.Errorf("drop below threshold = %+v, want nil", drop)
	}
}
