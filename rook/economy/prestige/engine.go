package prestige

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/rookgg/rook/rook/database"
	"github.com/rookgg/rook/rook/database/models"
	"github.com/rookgg/rook/rook/database/repositories"
	"github.com/rookgg/rook/rook/economy/loot"
	"github.com/rookgg/rook/rook/economy/progression"
	"github.com/rookgg/rook/rook/economy/utils"
)

// Gate: users can prestige only at this level or above.
const minPrestigeLevel = 20

// Each reset banks this perk bundle. Perks stack without cap across resets.
var perReset = models.PrestigePerks{
	XPBonus:          0.02,
	RareDaily:        1,
	CraftingDiscount: 0.01,
}

var ErrLevelTooLow = fmt.Errorf("prestige requires level %d", minPrestigeLevel)

// Summary is the aggregate prestige state for a user.
type Summary struct {
	Count       int                  `json:"count"`
	Perks       models.PrestigePerks `json:"perks"`
	PerkSummary string               `json:"perkSummary"`
}

// Engine owns prestige resets and the perks they accumulate.
type Engine struct {
	db         *database.DB
	tx         *utils.EconomicTransactionManager
	activities repositories.ActivityRepository
	lootRepo   repositories.LootRepository
	table      *loot.Table
}

func NewEngine(
	db *database.DB,
	tx *utils.EconomicTransactionManager,
	activities repositories.ActivityRepository,
	lootRepo repositories.LootRepository,
	table *loot.Table,
) *Engine {
	return &Engine{db: db, tx: tx, activities: activities, lootRepo: lootRepo, table: table}
}

func (e *Engine) records(ctx context.Context, userID int64) ([]*models.PrestigeReset, error) {
	var resets []*models.PrestigeReset
	err := e.db.BunDB().NewSelect().
		Model(&resets).
		Where("user_id = ?", userID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load prestige records: %w", err)
	}
	return resets, nil
}

// AggregatePerks sums the perk bundles across all resets.
func AggregatePerks(resets []*models.PrestigeReset) models.PrestigePerks {
	var total models.PrestigePerks
	for _, reset := range resets {
		total = total.Add(reset.Perks)
	}
	return total
}

// SummaryFor reports how many resets a user holds and what they add up to.
func (e *Engine) SummaryFor(ctx context.Context, userID int64) (*Summary, error) {
	resets, err := e.records(ctx, userID)
	if err != nil {
		return nil, err
	}
	perks := AggregatePerks(resets)
	return &Summary{
		Count: len(resets),
		Perks: perks,
		PerkSummary: fmt.Sprintf("+%d%% XP, +%d rares/day, %d%% crafting discount",
			int(perks.XPBonus*100+0.5), perks.RareDaily, int(perks.CraftingDiscount*100+0.5)),
	}, nil
}

// Perform resets the user's progression in exchange for a permanent perk
// bundle. The XP log survives the reset; only the stats row is zeroed.
func (e *Engine) Perform(ctx context.Context, userID int64) (*Summary, error) {
	stats := new(models.UserStats)
	err := e.db.BunDB().NewSelect().
		Model(stats).
		Where("user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("failed to load stats: %w", err)
		}
		stats = &models.UserStats{UserID: userID}
	}

	level := progression.Level(stats.TotalXP)
	if level < minPrestigeLevel {
		return nil, ErrLevelTooLow
	}

	err = e.tx.WithTransaction(ctx, utils.SerializableTransactionOptions(), func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().
			Model(&models.PrestigeReset{UserID: userID, LevelResetAt: level, Perks: perReset}).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to record reset: %w", err)
		}

		if _, err := tx.NewUpdate().
			Model((*models.UserStats)(nil)).
			Set("total_xp = 0").
			Set("streak = 0").
			Set("last_active = NULL").
			Set("quest_streak = 0").
			Set("last_quest_completed = NULL").
			Where("user_id = ?", userID).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to reset stats: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return e.SummaryFor(ctx, userID)
}

// XPMultiplier returns 1 plus the stacked XP bonus.
func (e *Engine) XPMultiplier(ctx context.Context, userID int64) (float64, error) {
	resets, err := e.records(ctx, userID)
	if err != nil {
		return 1, err
	}
	return 1 + AggregatePerks(resets).XPBonus, nil
}

// CraftingDiscount returns the stacked crafting discount fraction.
func (e *Engine) CraftingDiscount(ctx context.Context, userID int64) (float64, error) {
	resets, err := e.records(ctx, userID)
	if err != nil {
		return 0, err
	}
	return AggregatePerks(resets).CraftingDiscount, nil
}

// MaybeGrantDailyDrops hands out the rare-per-day perk. Each grant writes a
// zero-amount marker row, so the count of today's markers caps the grants.
// Returns the last drop, or nil when nothing was due.
func (e *Engine) MaybeGrantDailyDrops(ctx context.Context, userID int64) (*loot.Drop, error) {
	resets, err := e.records(ctx, userID)
	if err != nil {
		return nil, err
	}
	perks := AggregatePerks(resets)
	if perks.RareDaily <= 0 {
		return nil, nil
	}

	existing, err := e.activities.SentinelCountToday(ctx, userID, models.ActivityPrestigeRareBonus)
	if err != nil {
		return nil, fmt.Errorf("failed to count today's grants: %w", err)
	}
	remaining := perks.RareDaily - existing
	if remaining <= 0 {
		return nil, nil
	}

	// The perk pays the top rare, not the best item in the catalog.
	item, err := e.lootRepo.TopByRarity(ctx, models.RarityRare)
	if err != nil {
		return nil, fmt.Errorf("failed to pick bonus item: %w", err)
	}
	if item == nil {
		return nil, nil
	}

	var last *loot.Drop
	for i := 0; i < remaining; i++ {
		if err := e.activities.Append(ctx, &models.XPActivity{
			UserID:       userID,
			Amount:       0,
			Reason:       "Prestige rare bonus",
			ActivityType: models.ActivityPrestigeRareBonus,
		}); err != nil {
			return last, fmt.Errorf("failed to record grant marker: %w", err)
		}
		drop, err := e.table.AwardItem(ctx, userID, item)
		if err != nil {
			return last, err
		}
		last = drop
	}
	return last, nil
}
