package crafting

import (
	"context"
	"fmt"
	"math"

	"github.com/rookgg/rook/rook/database/repositories"
)

// Skill level thresholds over lifetime crafting XP.
var skillLevels = []struct {
	level int
	xp    int64
}{
	{level: 2, xp: 100},
	{level: 3, xp: 250},
	{level: 4, xp: 500},
}

// Perks collects the crafting bonuses for a skill level, with any prestige
// discount folded in.
type Perks struct {
	DuplicateChance float64 `json:"duplicateChance"`
	Discount        float64 `json:"discount"`
	UpgradeChance   float64 `json:"upgradeChance"`
}

// SkillLevel maps lifetime crafting XP to a level on the ladder.
func SkillLevel(xp int64) int {
	level := 1
	for _, threshold := range skillLevels {
		if xp >= threshold.xp {
			level = threshold.level
		}
	}
	return level
}

// PerksFor resolves the perk set for a level. The prestige discount stacks
// additively with the level 3 discount.
func PerksFor(level int, prestigeDiscount float64) Perks {
	perks := Perks{Discount: prestigeDiscount}
	if level >= 2 {
		perks.DuplicateChance = 0.1
	}
	if level >= 3 {
		perks.Discount += 0.2
	}
	if level >= 4 {
		perks.UpgradeChance = 0.05
	}
	return perks
}

// DescribePerks renders the active perks as display strings.
func DescribePerks(perks Perks) []string {
	var entries []string
	if perks.DuplicateChance > 0 {
		entries = append(entries, fmt.Sprintf("%d%% chance duplicate craft", int(perks.DuplicateChance*100+0.5)))
	}
	if perks.Discount > 0 {
		entries = append(entries, fmt.Sprintf("%d%% ingredient discount", int(perks.Discount*100+0.5)))
	}
	if perks.UpgradeChance > 0 {
		entries = append(entries, fmt.Sprintf("%d%% chance to upgrade rarity", int(perks.UpgradeChance*100+0.5)))
	}
	return entries
}

// IngredientNeed applies the discount to a recipe quantity. A craft always
// consumes at least one of each ingredient.
func IngredientNeed(quantity int64, discount float64) int {
	need := int(math.Ceil(float64(quantity) * (1 - discount)))
	if need < 1 {
		return 1
	}
	return need
}

// Skill is a user's crafting progression snapshot.
type Skill struct {
	XP    int64 `json:"xp"`
	Level int   `json:"level"`
	Perks Perks `json:"perks"`
}

func (e *Engine) skillFor(ctx context.Context, stats repositories.StatsRepository, userID int64, prestigeDiscount float64) (Skill, error) {
	row, err := stats.Get(ctx, userID)
	if err != nil {
		return Skill{}, fmt.Errorf("failed to load crafting skill: %w", err)
	}
	level := row.CraftingLevel
	if level < 1 {
		level = SkillLevel(row.CraftingXP)
	}
	return Skill{XP: row.CraftingXP, Level: level, Perks: PerksFor(level, prestigeDiscount)}, nil
}

// AddSkillXP banks crafting XP and re-derives the level.
func (e *Engine) AddSkillXP(ctx context.Context, userID int64, gained int64, prestigeDiscount float64) (Skill, error) {
	row, err := e.stats.Get(ctx, userID)
	if err != nil {
		return Skill{}, fmt.Errorf("failed to load crafting xp: %w", err)
	}
	newXP := row.CraftingXP + gained
	newLevel := SkillLevel(newXP)
	if err := e.stats.SetCraftingSkill(ctx, userID, newXP, newLevel); err != nil {
		return Skill{}, fmt.Errorf("failed to store crafting xp: %w", err)
	}
	return Skill{XP: newXP, Level: newLevel, Perks: PerksFor(newLevel, prestigeDiscount)}, nil
}

// SkillFor returns the user's crafting skill with perks resolved.
func (e *Engine) SkillFor(ctx context.Context, userID int64, prestigeDiscount float64) (Skill, error) {
	return e.skillFor(ctx, e.stats, userID, prestigeDiscount)
}
