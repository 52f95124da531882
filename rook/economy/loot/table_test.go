package loot

import (
	"context"
	"testing"

	"github.com/rookgg/rook/rook/database/models"
	"github.com/rookgg/rook/rook/database/repositories"
)

func catalogTable(items ...models.LootItem) *Table {
	t := NewTable(nil, nil, nil)
	t.items = items
	return t
}

func sampleCatalog() []models.LootItem {
	return []models.LootItem{
		{ID: 1, Code: "wood_log", Name: "Wood Log", Rarity: models.RarityCommon, DropWeight: 60},
		{ID: 2, Code: "merge_brick", Name: "Merge Brick", Rarity: models.RarityRare, DropWeight: 25},
		{ID: 3, Code: "bugfix_shard", Name: "Bugfix Shard", Rarity: models.RarityEpic, DropWeight: 10},
		{ID: 4, Code: "golden_flame", Name: "Golden Flame", Rarity: models.RarityLegendary, DropWeight: 2},
	}
}

func TestDrawEmptyCatalog(t *testing.T) {
	table := catalogTable()
	if got := table.Draw(DrawOptions{}); got != nil {
		t.Errorf("Draw on empty catalog = %v, want nil", got)
	}
}

func TestDrawSingleItem(t *testing.T) {
	table := catalogTable(models.LootItem{ID: 1, Code: "wood_log", Rarity: models.RarityCommon, DropWeight: 60})
	got := table.Draw(DrawOptions{})
	if got == nil || got.ID != 1 {
		t.Errorf("Draw = %v, want the only item", got)
	}
}

func TestDrawForceRarity(t *testing.T) {
	table := catalogTable(sampleCatalog()...)
	for i := 0; i < 50; i++ {
		got := table.Draw(DrawOptions{ForceRarity: models.RarityEpic})
		if got == nil || got.Rarity != models.RarityEpic {
			t.Fatalf("Draw with forced epic = %v", got)
		}
	}
}

func TestDrawMinRarity(t *testing.T) {
	table := catalogTable(sampleCatalog()...)
	for i := 0; i < 50; i++ {
		got := table.Draw(DrawOptions{MinRarity: models.RarityRare})
		if got == nil {
			t.Fatal("Draw with min rarity returned nil")
		}
		if models.RarityRank(got.Rarity) < models.RarityRank(models.RarityRare) {
			t.Fatalf("Draw with min rare returned %s", got.Rarity)
		}
	}
}

func TestDrawForceRarityNoMatch(t *testing.T) {
	table := catalogTable(models.LootItem{ID: 1, Rarity: models.RarityCommon, DropWeight: 60})
	if got := table.Draw(DrawOptions{ForceRarity: models.RarityLegendary}); got != nil {
		t.Errorf("Draw with unmatched forced rarity = %v, want nil", got)
	}
}

func TestDrawWeightDistribution(t *testing.T) {
	table := catalogTable(
		models.LootItem{ID: 1, Rarity: models.RarityCommon, DropWeight: 90},
		models.LootItem{ID: 2, Rarity: models.RarityRare, DropWeight: 10},
	)

	// Deterministic rolls: anything below 0.9 lands on the common item.
	table.randFloat = func() float64 { return 0.5 }
	if got := table.Draw(DrawOptions{}); got.ID != 1 {
		t.Errorf("roll 0.5 drew item %d, want 1", got.ID)
	}

	table.randFloat = func() float64 { return 0.95 }
	if got := table.Draw(DrawOptions{}); got.ID != 2 {
		t.Errorf("roll 0.95 drew item %d, want 2", got.ID)
	}
}

func TestDrawLuckBoostsRarePool(t *testing.T) {
	table := catalogTable(
		models.LootItem{ID: 1, Rarity: models.RarityCommon, DropWeight: 90},
		models.LootItem{ID: 2, Rarity: models.RarityRare, DropWeight: 10},
	)

	// With 100 luck the rare weight grows to 15 of a 105 total, so a roll
	// just past the common band must land on the rare item.
	table.randFloat = func() float64 { return 90.1 / 105.0 }
	got := table.Draw(DrawOptions{LuckMeter: 100})
	if got == nil || got.ID != 2 {
		t.Errorf("boosted draw = %v, want rare item", got)
	}

	// Without luck the same roll stays inside the common band of 100.
	table.randFloat = func() float64 { return 90.1 / 105.0 }
	got = table.Draw(DrawOptions{})
	if got == nil || got.ID != 1 {
		t.Errorf("unboosted draw = %v, want common item", got)
	}
}

type fakeLootRepo struct {
	quantities map[[2]int64]int64
}

func (f *fakeLootRepo) Catalog(_ context.Context) ([]models.LootItem, error) { return nil, nil }
func (f *fakeLootRepo) ItemByID(_ context.Context, _ int64) (*models.LootItem, error) {
	return nil, nil
}
func (f *fakeLootRepo) TopByRarity(_ context.Context, _ string) (*models.LootItem, error) {
	return nil, nil
}
func (f *fakeLootRepo) Award(_ context.Context, userID, itemID int64) (int64, error) {
	if f.quantities == nil {
		f.quantities = make(map[[2]int64]int64)
	}
	f.quantities[[2]int64{userID, itemID}]++
	return f.quantities[[2]int64{userID, itemID}], nil
}
func (f *fakeLootRepo) Inventory(_ context.Context, _ int64) ([]*models.LootDrop, error) {
	return nil, nil
}

type fakeLuckStats struct {
	luck   map[int64]int
	resets int
}

func (f *fakeLuckStats) Ensure(_ context.Context, _ int64) error { return nil }
func (f *fakeLuckStats) Get(_ context.Context, userID int64) (*models.UserStats, error) {
	return &models.UserStats{UserID: userID, LuckMeter: f.luck[userID], CraftingLevel: 1}, nil
}
func (f *fakeLuckStats) SetProgress(_ context.Context, _ int64, _ int64, _ int) error { return nil }
func (f *fakeLuckStats) SetQuestStreak(_ context.Context, _ int64, _ int) error       { return nil }
func (f *fakeLuckStats) SetCraftingSkill(_ context.Context, _ int64, _ int64, _ int) error {
	return nil
}
func (f *fakeLuckStats) ResetLuckMeter(_ context.Context, userID int64) error {
	if f.luck == nil {
		f.luck = make(map[int64]int)
	}
	f.luck[userID] = 0
	f.resets++
	return nil
}
func (f *fakeLuckStats) IncrementLuckMeter(_ context.Context, userID int64) error {
	if f.luck == nil {
		f.luck = make(map[int64]int)
	}
	f.luck[userID]++
	return nil
}
func (f *fakeLuckStats) SetGuild(_ context.Context, _ int64, _ int64) error { return nil }
func (f *fakeLuckStats) TopByXP(_ context.Context, _ int) ([]repositories.LeaderboardEntry, error) {
	return nil, nil
}

func TestAwardRandomMovesLuckMeter(t *testing.T) {
	repo := &fakeLootRepo{}
	stats := &fakeLuckStats{luck: map[int64]int{1: 5}}
	table := NewTable(repo, stats, nil)
	table.items = sampleCatalog()

	// Force a common draw: meter should climb.
	table.randFloat = func() float64 { return 0.0 }
	drop, err := table.AwardRandom(context.Background(), 1, DrawOptions{})
	if err != nil {
		t.Fatalf("AwardRandom returned error: %v", err)
	}
	if drop == nil || drop.Rarity != models.RarityCommon {
		t.Fatalf("drop = %+v, want common", drop)
	}
	if stats.luck[1] != 6 {
		t.Errorf("luck meter = %d, want 6", stats.luck[1])
	}

	// Force a legendary draw: meter resets.
	drop, err = table.AwardRandom(context.Background(), 1, DrawOptions{ForceRarity: models.RarityLegendary})
	if err != nil {
		t.Fatalf("AwardRandom returned error: %v", err)
	}
	if drop == nil || drop.Rarity != models.RarityLegendary {
		t.Fatalf("drop = %+v, want legendary", drop)
	}
	if stats.luck[1] != 0 || stats.resets != 1 {
		t.Errorf("luck meter = %d resets = %d, want 0 and 1", stats.luck[1], stats.resets)
	}
}
