package progression

import "testing"

func TestLevel(t *testing.T) {
	tests := []struct {
		name    string
		totalXP int64
		want    int
	}{
		{name: "zero xp starts at level 1", totalXP: 0, want: 1},
		{name: "just under first threshold", totalXP: 999, want: 1},
		{name: "first threshold", totalXP: 1000, want: 2},
		{name: "between thresholds", totalXP: 3999, want: 2},
		{name: "second threshold", totalXP: 4000, want: 3},
		{name: "third threshold", totalXP: 9000, want: 4},
		{name: "negative clamps to level 1", totalXP: -50, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Level(tt.totalXP); got != tt.want {
				t.Errorf("Level(%d) = %d, want %d", tt.totalXP, got, tt.want)
			}
		})
	}
}

func TestLevelMonotonic(t *testing.T) {
	prev := Level(0)
	for xp := int64(0); xp <= 50000; xp += 100 {
		got := Level(xp)
		if got < prev {
			t.Fatalf("Level(%d) = %d dropped below previous %d", xp, got, prev)
		}
		prev = got
	}
}

func TestXPForLevelRoundTrip(t *testing.T) {
	for level := 1; level <= 25; level++ {
		xp := XPForLevel(level)
		if got := Level(xp); got != level {
			t.Errorf("Level(XPForLevel(%d)) = %d, want %d", level, got, level)
		}
		if level > 1 {
			if got := Level(xp - 1); got != level-1 {
				t.Errorf("Level(%d) = %d, want %d just below threshold", xp-1, got, level-1)
			}
		}
	}
}
