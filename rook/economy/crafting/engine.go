package crafting

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"

	"github.com/uptrace/bun"

	"github.com/rookgg/rook/rook/database"
	"github.com/rookgg/rook/rook/database/models"
	"github.com/rookgg/rook/rook/database/repositories"
	"github.com/rookgg/rook/rook/economy/utils"
)

var ErrRecipeNotFound = errors.New("recipe not found")

// InsufficientError reports a missing ingredient by code.
type InsufficientError struct {
	ItemCode string
	Need     int
	Have     int64
}

func (e *InsufficientError) Error() string {
	return fmt.Sprintf("not enough %s (need %d, have %d)", e.ItemCode, e.Need, e.Have)
}

// PrestigeSource exposes the prestige perks crafting cares about.
type PrestigeSource interface {
	CraftingDiscount(ctx context.Context, userID int64) (float64, error)
}

// LegendaryNotifier is told when a craft produces a legendary item.
type LegendaryNotifier interface {
	CraftingLegendary(ctx context.Context, userID int64, itemName string)
}

// Result is the outcome of a successful craft.
type Result struct {
	Crafted       string           `json:"crafted"`
	ItemIcon      string           `json:"itemIcon"`
	NewQuantity   int64            `json:"newQuantity"`
	BonusQuantity int              `json:"bonusQuantity"`
	Upgraded      *models.LootItem `json:"upgraded,omitempty"`
	CraftingLevel int              `json:"craftingLevel"`
	CraftingXP    int64            `json:"craftingXp"`
}

// Engine executes crafting recipes. The debit and credit of a craft run in
// one transaction so a failed craft never half-consumes an inventory.
type Engine struct {
	db       *database.DB
	tx       *utils.EconomicTransactionManager
	stats    repositories.StatsRepository
	lootRepo repositories.LootRepository
	prestige PrestigeSource
	notifier LegendaryNotifier

	randFloat func() float64
}

func NewEngine(
	db *database.DB,
	tx *utils.EconomicTransactionManager,
	stats repositories.StatsRepository,
	lootRepo repositories.LootRepository,
	prestige PrestigeSource,
	notifier LegendaryNotifier,
) *Engine {
	return &Engine{
		db:        db,
		tx:        tx,
		stats:     stats,
		lootRepo:  lootRepo,
		prestige:  prestige,
		notifier:  notifier,
		randFloat: rand.Float64,
	}
}

// Recipes lists the catalog with ingredients and results resolved.
func (e *Engine) Recipes(ctx context.Context) ([]*models.CraftingRecipe, error) {
	var recipes []*models.CraftingRecipe
	err := e.db.BunDB().NewSelect().
		Model(&recipes).
		Relation("ResultItem").
		Relation("Ingredients").
		Relation("Ingredients.Item").
		Order("cr.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipes: %w", err)
	}
	return recipes, nil
}

// Craft runs one recipe for the user: verify discounted ingredient needs,
// debit them, credit the result, then roll the duplicate and upgrade perks.
// Crafting XP is banked after the transaction commits.
func (e *Engine) Craft(ctx context.Context, userID int64, recipeCode string) (*Result, error) {
	if err := e.stats.Ensure(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to ensure stats row: %w", err)
	}

	prestigeDiscount := 0.0
	if e.prestige != nil {
		var err error
		prestigeDiscount, err = e.prestige.CraftingDiscount(ctx, userID)
		if err != nil {
			return nil, err
		}
	}
	skill, err := e.SkillFor(ctx, userID, prestigeDiscount)
	if err != nil {
		return nil, err
	}
	perks := skill.Perks

	result := &Result{}
	var resultRarity string
	err = e.tx.WithTransaction(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		recipe := new(models.CraftingRecipe)
		err := tx.NewSelect().
			Model(recipe).
			Relation("ResultItem").
			Relation("Ingredients").
			Relation("Ingredients.Item").
			Where("cr.code = ?", recipeCode).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrRecipeNotFound
			}
			return fmt.Errorf("failed to load recipe: %w", err)
		}

		var inventory []*models.LootDrop
		if err := tx.NewSelect().
			Model(&inventory).
			Where("user_id = ?", userID).
			Scan(ctx); err != nil {
			return fmt.Errorf("failed to load inventory: %w", err)
		}
		have := make(map[int64]int64, len(inventory))
		for _, drop := range inventory {
			have[drop.ItemID] = drop.Quantity
		}

		for _, ing := range recipe.Ingredients {
			need := IngredientNeed(ing.Quantity, perks.Discount)
			if have[ing.ItemID] < int64(need) {
				code := ""
				if ing.Item != nil {
					code = ing.Item.Code
				}
				return &InsufficientError{ItemCode: code, Need: need, Have: have[ing.ItemID]}
			}
		}

		for _, ing := range recipe.Ingredients {
			need := IngredientNeed(ing.Quantity, perks.Discount)
			if err := e.tx.RemoveItemFromInventory(ctx, tx, utils.ItemOperationOptions{
				UserID: userID,
				ItemID: ing.ItemID,
				Amount: need,
			}); err != nil {
				return err
			}
		}

		crafted := &models.LootDrop{UserID: userID, ItemID: recipe.ResultItemID, Quantity: 1}
		if err := tx.NewInsert().
			Model(crafted).
			On("CONFLICT (user_id, item_id) DO UPDATE").
			Set("quantity = ld.quantity + 1").
			Returning("quantity").
			Scan(ctx); err != nil {
			return fmt.Errorf("failed to credit result: %w", err)
		}
		result.NewQuantity = crafted.Quantity
		result.Crafted = recipe.Name
		if recipe.ResultItem != nil {
			result.ItemIcon = recipe.ResultItem.Icon
			resultRarity = recipe.ResultItem.Rarity
		}

		if perks.DuplicateChance > 0 && e.randFloat() < perks.DuplicateChance {
			if err := e.tx.AddItemToInventory(ctx, tx, utils.ItemOperationOptions{
				UserID: userID,
				ItemID: recipe.ResultItemID,
				Amount: 1,
			}); err != nil {
				return err
			}
			result.BonusQuantity = 1
			result.NewQuantity++
		}

		if perks.UpgradeChance > 0 && e.randFloat() < perks.UpgradeChance {
			target := models.NextRarity(resultRarity)
			upgrade := new(models.LootItem)
			err := tx.NewSelect().
				Model(upgrade).
				Where("rarity = ?", target).
				Order("drop_weight DESC").
				Limit(1).
				Scan(ctx)
			if err != nil && !errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("failed to pick upgrade item: %w", err)
			}
			if err == nil {
				if err := e.tx.AddItemToInventory(ctx, tx, utils.ItemOperationOptions{
					UserID: userID,
					ItemID: upgrade.ID,
					Amount: 1,
				}); err != nil {
					return err
				}
				result.Upgraded = upgrade
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	progress, err := e.AddSkillXP(ctx, userID, utils.CraftXPPerCraft, prestigeDiscount)
	if err != nil {
		return nil, err
	}
	result.CraftingLevel = progress.Level
	result.CraftingXP = progress.XP

	if e.notifier != nil {
		if resultRarity == models.RarityLegendary ||
			(result.Upgraded != nil && result.Upgraded.Rarity == models.RarityLegendary) {
			e.notifier.CraftingLegendary(ctx, userID, result.Crafted)
		}
	}
	return result, nil
}
