package crafting

import "testing"

func TestSkillLevel(t *testing.T) {
	tests := []struct {
		xp   int64
		want int
	}{
		{xp: 0, want: 1},
		{xp: 99, want: 1},
		{xp: 100, want: 2},
		{xp: 249, want: 2},
		{xp: 250, want: 3},
		{xp: 499, want: 3},
		{xp: 500, want: 4},
		{xp: 10000, want: 4},
	}

	for _, tt := range tests {
		if got := SkillLevel(tt.xp); got != tt.want {
			t.Errorf("SkillLevel(%d) = %d, want %d", tt.xp, got, tt.want)
		}
	}
}

func TestPerksFor(t *testing.T) {
	if p := PerksFor(1, 0); p.DuplicateChance != 0 || p.Discount != 0 || p.UpgradeChance != 0 {
		t.Errorf("level 1 perks = %+v, want all zero", p)
	}
	if p := PerksFor(2, 0); p.DuplicateChance != 0.1 {
		t.Errorf("level 2 duplicate chance = %v, want 0.1", p.DuplicateChance)
	}
	if p := PerksFor(3, 0); p.Discount != 0.2 {
		t.Errorf("level 3 discount = %v, want 0.2", p.Discount)
	}
	if p := PerksFor(4, 0); p.UpgradeChance != 0.05 {
		t.Errorf("level 4 upgrade chance = %v, want 0.05", p.UpgradeChance)
	}
}

func TestPerksForStacksPrestigeDiscount(t *testing.T) {
	p := PerksFor(3, 0.03)
	if p.Discount < 0.2299 || p.Discount > 0.2301 {
		t.Errorf("discount = %v, want 0.23", p.Discount)
	}

	// Below level 3 the prestige discount still applies on its own.
	p = PerksFor(1, 0.05)
	if p.Discount != 0.05 {
		t.Errorf("discount = %v, want 0.05", p.Discount)
	}
}

func TestIngredientNeed(t *testing.T) {
	tests := []struct {
		quantity int64
		discount float64
		want     int
	}{
		{quantity: 3, discount: 0, want: 3},
		{quantity: 3, discount: 0.2, want: 3},  // ceil(2.4)
		{quantity: 5, discount: 0.2, want: 4},  // ceil(4.0)
		{quantity: 1, discount: 0.2, want: 1},
		{quantity: 1, discount: 0.99, want: 1}, // floor of 1 enforced
		{quantity: 10, discount: 0.23, want: 8},
	}

	for _, tt := range tests {
		if got := IngredientNeed(tt.quantity, tt.discount); got != tt.want {
			t.Errorf("IngredientNeed(%d, %v) = %d, want %d", tt.quantity, tt.discount, got, tt.want)
		}
	}
}

func TestDescribePerks(t *testing.T) {
	entries := DescribePerks(PerksFor(4, 0.01))
	if len(entries) != 3 {
		t.Fatalf("entries = %v, want 3 lines", entries)
	}
}
