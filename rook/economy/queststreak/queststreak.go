package queststreak

import (
	"context"
	"fmt"
	"time"

	"github.com/rookgg/rook/rook/database/models"
	"github.com/rookgg/rook/rook/database/repositories"
	"github.com/rookgg/rook/rook/economy/loot"
)

// Effects describes the active bonus tier for a quest streak.
type Effects struct {
	Streak              int     `json:"streak"`
	XPMultiplier        float64 `json:"xpMultiplier"`
	ExtraLootDrops      int     `json:"extraLootDrops"`
	GuaranteedRare      bool    `json:"guaranteedRare"`
	GuaranteedLegendary bool    `json:"guaranteedLegendary"`
	Label               string  `json:"label"`
}

type tier struct {
	streak              int
	xpMultiplier        float64
	extraLootDrops      int
	guaranteedRare      bool
	guaranteedLegendary bool
	label               string
}

// Tiers are checked highest first; the first match wins.
var bonusTiers = []tier{
	{streak: 30, xpMultiplier: 1.1, extraLootDrops: 1, guaranteedRare: true, guaranteedLegendary: true, label: "guaranteed legendary drop once/day"},
	{streak: 14, xpMultiplier: 1.1, extraLootDrops: 1, guaranteedRare: true, label: "guaranteed rare drop once/day"},
	{streak: 7, xpMultiplier: 1.1, extraLootDrops: 1, label: "+1 extra loot drop"},
	{streak: 3, xpMultiplier: 1.1, label: "+10% XP"},
	{streak: 1, xpMultiplier: 1.05, label: "+5% XP"},
}

// EffectsFor resolves the bonus tier for a streak value.
func EffectsFor(streak int) Effects {
	for _, t := range bonusTiers {
		if streak >= t.streak {
			return Effects{
				Streak:              streak,
				XPMultiplier:        t.xpMultiplier,
				ExtraLootDrops:      t.extraLootDrops,
				GuaranteedRare:      t.guaranteedRare,
				GuaranteedLegendary: t.guaranteedLegendary,
				Label:               t.label,
			}
		}
	}
	return Effects{Streak: streak, XPMultiplier: 1, Label: "No active bonus"}
}

// Describe returns the human label for a streak's bonus.
func Describe(streak int) string {
	return EffectsFor(streak).Label
}

// Tracker advances quest streaks and hands out the daily milestone drops.
type Tracker struct {
	stats      repositories.StatsRepository
	activities repositories.ActivityRepository
	lootRepo   repositories.LootRepository
	table      *loot.Table
	now        func() time.Time
}

func NewTracker(
	stats repositories.StatsRepository,
	activities repositories.ActivityRepository,
	lootRepo repositories.LootRepository,
	table *loot.Table,
) *Tracker {
	return &Tracker{
		stats:      stats,
		activities: activities,
		lootRepo:   lootRepo,
		table:      table,
		now:        time.Now,
	}
}

// Status reads the current streak without touching it.
func (t *Tracker) Status(ctx context.Context, userID int64) (Effects, error) {
	stats, err := t.stats.Get(ctx, userID)
	if err != nil {
		return Effects{}, fmt.Errorf("failed to load quest streak: %w", err)
	}
	return EffectsFor(stats.QuestStreak), nil
}

// Advance moves the streak for a completed quest day. Completing more quests
// on the same UTC day keeps the value, the next day extends it, and a missed
// day starts over at 1.
func (t *Tracker) Advance(ctx context.Context, userID int64) (Effects, error) {
	stats, err := t.stats.Get(ctx, userID)
	if err != nil {
		return Effects{}, fmt.Errorf("failed to load quest streak: %w", err)
	}

	streak := nextStreak(stats.QuestStreak, stats.LastQuestCompleted, t.now().UTC())
	if err := t.stats.SetQuestStreak(ctx, userID, streak); err != nil {
		return Effects{}, fmt.Errorf("failed to store quest streak: %w", err)
	}
	return EffectsFor(streak), nil
}

func nextStreak(current int, lastCompleted, now time.Time) int {
	if lastCompleted.IsZero() {
		return 1
	}
	last := lastCompleted.UTC().Truncate(24 * time.Hour)
	today := now.Truncate(24 * time.Hour)
	switch int(today.Sub(last).Hours() / 24) {
	case 0:
		if current < 1 {
			return 1
		}
		return current
	case 1:
		return current + 1
	default:
		return 1
	}
}

// MaybeGrantMilestoneDrop hands out the once-per-day guaranteed drop for
// streaks of 14 and above. A zero-amount activity row marks the grant so a
// second completion the same day is a no-op. Returns nil when nothing is due.
func (t *Tracker) MaybeGrantMilestoneDrop(ctx context.Context, userID int64, streak int) (*loot.Drop, error) {
	if streak < 14 {
		return nil, nil
	}

	dropType := models.ActivityQuestStreakRare
	rarity := models.RarityRare
	if streak >= 30 {
		dropType = models.ActivityQuestStreakLegendary
		rarity = models.RarityLegendary
	}

	granted, err := t.activities.HasSentinelToday(ctx, userID, dropType)
	if err != nil {
		return nil, fmt.Errorf("failed to check milestone marker: %w", err)
	}
	if granted {
		return nil, nil
	}

	item, err := t.pickByRarity(ctx, rarity)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}

	drop, err := t.table.AwardItem(ctx, userID, item)
	if err != nil {
		return nil, err
	}

	if err := t.activities.Append(ctx, &models.XPActivity{
		UserID:       userID,
		Amount:       0,
		Reason:       fmt.Sprintf("Quest streak bonus (%s)", rarity),
		ActivityType: dropType,
	}); err != nil {
		return nil, fmt.Errorf("failed to record milestone marker: %w", err)
	}
	return drop, nil
}

// pickByRarity prefers the heaviest catalog item of the exact rarity, then
// falls back to a random draw at or above it.
func (t *Tracker) pickByRarity(ctx context.Context, rarity string) (*models.LootItem, error) {
	item, err := t.lootRepo.TopByRarity(ctx, rarity)
	if err != nil {
		return nil, fmt.Errorf("failed to pick milestone item: %w", err)
	}
	if item != nil {
		return item, nil
	}
	if drawn := t.table.Draw(loot.DrawOptions{ForceRarity: rarity}); drawn != nil {
		return drawn, nil
	}
	return t.table.Draw(loot.DrawOptions{MinRarity: rarity}), nil
}
