package database

import (
	"context"
	"fmt"

	"log/slog"

	"github.com/rookgg/rook/rook/database/models"
)

var seedAchievements = []models.Achievement{
	{Code: models.AchievementFirstBlood, Name: "First Blood", Description: "Earn your first XP.", Icon: "🩸", Rarity: models.RarityCommon},
	{Code: models.AchievementStreak3, Name: "On a Roll", Description: "Maintain a 3-day streak.", Icon: "🔥", Rarity: models.RarityRare},
	{Code: models.AchievementStreak7, Name: "Streak Master", Description: "Maintain a 7-day streak.", Icon: "🔥", Rarity: models.RarityEpic},
	{Code: models.AchievementXP1000, Name: "Grinding Hard", Description: "Reach 1000 total XP.", Icon: "💪", Rarity: models.RarityEpic},
}

var seedLootItems = []models.LootItem{
	{Code: "wood_log", Name: "Wood Log", Icon: "🪵", Rarity: models.RarityCommon, DropWeight: 60, Description: "Basic crafting material."},
	{Code: "merge_brick", Name: "Merge Brick", Icon: "🧱", Rarity: models.RarityRare, DropWeight: 25, Description: "Forged from merged PRs."},
	{Code: "review_crystal", Name: "Insight Crystal", Icon: "🔷", Rarity: models.RarityRare, DropWeight: 20, Description: "Gleams with review wisdom."},
	{Code: "bugfix_shard", Name: "Bugfix Shard", Icon: "💎", Rarity: models.RarityEpic, DropWeight: 10, Description: "A shard from squashed bugs."},
	{Code: "golden_flame", Name: "Golden Flame", Icon: "🔥", Rarity: models.RarityLegendary, DropWeight: 2, Description: "Burns with eternal shipping energy."},
}

type seedRecipe struct {
	Code        string
	Name        string
	Description string
	ResultCode  string
	Ingredients []struct {
		Code string
		Qty  int64
	}
}

var seedRecipes = []seedRecipe{
	{
		Code: "iron_blade", Name: "Iron Blade",
		Description: "A sturdy blade forged from wood and bricks.",
		ResultCode:  "review_crystal",
		Ingredients: []struct {
			Code string
			Qty  int64
		}{{"wood_log", 3}, {"merge_brick", 1}},
	},
	{
		Code: "wisdom_orb", Name: "Wisdom Orb",
		Description: "Channels review insights into debugging power.",
		ResultCode:  "bugfix_shard",
		Ingredients: []struct {
			Code string
			Qty  int64
		}{{"review_crystal", 2}, {"wood_log", 1}},
	},
	{
		Code: "phoenix_core", Name: "Phoenix Core",
		Description: "The ultimate crafting achievement.",
		ResultCode:  "golden_flame",
		Ingredients: []struct {
			Code string
			Qty  int64
		}{{"golden_flame", 1}, {"bugfix_shard", 2}},
	},
}

// SeedCatalogs inserts the static achievement, loot item and crafting recipe
// catalogs. Every insert is ON CONFLICT DO NOTHING, so reruns are no-ops.
func (db *DB) SeedCatalogs(ctx context.Context) error {
	for i := range seedAchievements {
		if _, err := db.bunDB.NewInsert().
			Model(&seedAchievements[i]).
			On("CONFLICT (code) DO NOTHING").
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to seed achievement %s: %w", seedAchievements[i].Code, err)
		}
	}

	for i := range seedLootItems {
		if _, err := db.bunDB.NewInsert().
			Model(&seedLootItems[i]).
			On("CONFLICT (code) DO NOTHING").
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to seed loot item %s: %w", seedLootItems[i].Code, err)
		}
	}

	if err := db.seedCraftingRecipes(ctx); err != nil {
		return err
	}

	slog.Info("Static catalogs seeded",
		slog.String("type", "db"),
		slog.Int("achievements", len(seedAchievements)),
		slog.Int("loot_items", len(seedLootItems)),
		slog.Int("recipes", len(seedRecipes)))
	return nil
}

func (db *DB) seedCraftingRecipes(ctx context.Context) error {
	var items []models.LootItem
	if err := db.bunDB.NewSelect().Model(&items).Scan(ctx); err != nil {
		return fmt.Errorf("failed to load loot items for recipe seed: %w", err)
	}
	byCode := make(map[string]int64, len(items))
	for _, item := range items {
		byCode[item.Code] = item.ID
	}

	for _, r := range seedRecipes {
		resultID, ok := byCode[r.ResultCode]
		if !ok {
			continue
		}
		recipe := &models.CraftingRecipe{
			Code:         r.Code,
			Name:         r.Name,
			Description:  r.Description,
			ResultItemID: resultID,
		}
		if _, err := db.bunDB.NewInsert().
			Model(recipe).
			On("CONFLICT (code) DO NOTHING").
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to seed recipe %s: %w", r.Code, err)
		}

		// The insert may have conflicted; fetch the canonical id either way.
		existing := new(models.CraftingRecipe)
		if err := db.bunDB.NewSelect().
			Model(existing).
			Where("code = ?", r.Code).
			Scan(ctx); err != nil {
			return fmt.Errorf("failed to load recipe %s: %w", r.Code, err)
		}

		for _, ing := range r.Ingredients {
			itemID, ok := byCode[ing.Code]
			if !ok {
				continue
			}
			ingredient := &models.RecipeIngredient{
				RecipeID: existing.ID,
				ItemID:   itemID,
				Quantity: ing.Qty,
			}
			if _, err := db.bunDB.NewInsert().
				Model(ingredient).
				On("CONFLICT (recipe_id, item_id) DO NOTHING").
				Exec(ctx); err != nil {
				return fmt.Errorf("failed to seed ingredient %s for %s: %w", ing.Code, r.Code, err)
			}
		}
	}
	return nil
}
