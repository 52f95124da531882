package guilds

import (
	"testing"
	"time"
)

func TestActiveBonus(t *testing.T) {
	now := time.Date(2026, time.May, 10, 12, 0, 0, 0, time.UTC)
	fresh := now.Add(-2 * time.Hour)
	stale := now.AddDate(0, 0, -5)

	tests := []struct {
		name       string
		members    []Member
		wantActive int
		wantMult   float64
	}{
		{
			name:       "no members",
			wantActive: 0,
			wantMult:   1,
		},
		{
			name: "self does not count",
			members: []Member{
				{UserID: 1, LastActive: fresh},
			},
			wantActive: 0,
			wantMult:   1,
		},
		{
			name: "one active other",
			members: []Member{
				{UserID: 1, LastActive: fresh},
				{UserID: 2, LastActive: fresh},
			},
			wantActive: 1,
			wantMult:   1.01,
		},
		{
			name: "stale member ignored",
			members: []Member{
				{UserID: 1, LastActive: fresh},
				{UserID: 2, LastActive: stale},
				{UserID: 3, LastActive: fresh},
			},
			wantActive: 1,
			wantMult:   1.01,
		},
		{
			name: "never-active member ignored",
			members: []Member{
				{UserID: 1, LastActive: fresh},
				{UserID: 2},
			},
			wantActive: 0,
			wantMult:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			active, _, mult := activeBonus(tt.members, 1, now)
			if active != tt.wantActive {
				t.Errorf("active = %d, want %d", active, tt.wantActive)
			}
			if mult != tt.wantMult {
				t.Errorf("multiplier = %v, want %v", mult, tt.wantMult)
			}
		})
	}
}

func TestActiveBonusCap(t *testing.T) {
	now := time.Date(2026, time.May, 10, 12, 0, 0, 0, time.UTC)
	members := []Member{{UserID: 1, LastActive: now}}
	for i := int64(2); i <= 20; i++ {
		members = append(members, Member{UserID: i, LastActive: now})
	}

	active, bonus, mult := activeBonus(members, 1, now)
	if active != 19 {
		t.Errorf("active = %d, want 19", active)
	}
	if bonus != 0.10 {
		t.Errorf("bonus = %v, want capped at 0.10", bonus)
	}
	if mult != 1.10 {
		t.Errorf("multiplier = %v, want 1.10", mult)
	}
}
