package economy

import (
	"context"
	"fmt"
	"math"

	"github.com/rookgg/rook/rook/economy/loot"
	"github.com/rookgg/rook/rook/economy/progression"
	"github.com/rookgg/rook/rook/economy/queststreak"
	"github.com/rookgg/rook/rook/logger"
)

// GuildBonusSource resolves the guild XP multiplier for a user.
type GuildBonusSource interface {
	XPMultiplier(ctx context.Context, userID int64) (float64, error)
}

// PrestigeBonusSource resolves the prestige multiplier and daily drops.
type PrestigeBonusSource interface {
	XPMultiplier(ctx context.Context, userID int64) (float64, error)
	MaybeGrantDailyDrops(ctx context.Context, userID int64) (*loot.Drop, error)
}

// LevelUpNotifier is told once per grant that crossed a level boundary.
type LevelUpNotifier interface {
	LevelUp(ctx context.Context, userID int64, level int, reason string)
}

// GrantResult is the full outcome of a boosted XP grant.
type GrantResult struct {
	*progression.Result
	BaseXP           int64        `json:"baseXp"`
	AppliedXP        int64        `json:"appliedXp"`
	XPMultiplier     float64      `json:"xpMultiplier"`
	QuestStreak      int          `json:"questStreak"`
	QuestStreakBonus string       `json:"questStreakBonus"`
	Drops            []*loot.Drop `json:"drops,omitempty"`
}

// Orchestrator is the single entry point for XP grants. It composes the
// quest-streak, guild and prestige multipliers over the base amount, applies
// the result through the ledger and then settles every bonus that can fall
// out of a grant: extra drops, streak milestones and prestige dailies.
type Orchestrator struct {
	ledger   *progression.Ledger
	streaks  *queststreak.Tracker
	table    *loot.Table
	guilds   GuildBonusSource
	prestige PrestigeBonusSource
	notify   LevelUpNotifier
}

func NewOrchestrator(
	ledger *progression.Ledger,
	streaks *queststreak.Tracker,
	table *loot.Table,
	guilds GuildBonusSource,
	prestige PrestigeBonusSource,
	notify LevelUpNotifier,
) *Orchestrator {
	return &Orchestrator{
		ledger:   ledger,
		streaks:  streaks,
		table:    table,
		guilds:   guilds,
		prestige: prestige,
		notify:   notify,
	}
}

// ApplyXPWithBonuses boosts and applies one XP grant. The milestone and
// prestige checks run even when the applied amount is zero: holding a streak
// is enough to earn the daily drops.
func (o *Orchestrator) ApplyXPWithBonuses(ctx context.Context, userID int64, amount int64, reason, activityType string) (*GrantResult, error) {
	effects, err := o.streaks.Status(ctx, userID)
	if err != nil {
		return nil, err
	}
	questMult := effects.XPMultiplier
	if questMult == 0 {
		questMult = 1
	}

	guildMult := 1.0
	if o.guilds != nil {
		guildMult, err = o.guilds.XPMultiplier(ctx, userID)
		if err != nil {
			return nil, err
		}
	}
	prestigeMult := 1.0
	if o.prestige != nil {
		prestigeMult, err = o.prestige.XPMultiplier(ctx, userID)
		if err != nil {
			return nil, err
		}
	}

	totalMult := questMult * guildMult * prestigeMult
	applied := int64(math.Round(float64(amount) * totalMult))

	result, err := o.ledger.ApplyXP(ctx, userID, applied, reason, activityType)
	if err != nil {
		return nil, err
	}
	logger.LogXP(userID, amount, applied, totalMult)

	if result.LeveledUp && o.notify != nil {
		o.notify.LevelUp(ctx, userID, result.NewLevel, reason)
	}

	grant := &GrantResult{
		Result:           result,
		BaseXP:           amount,
		AppliedXP:        applied,
		XPMultiplier:     totalMult,
		QuestStreak:      effects.Streak,
		QuestStreakBonus: effects.Label,
	}

	for i := 0; i < effects.ExtraLootDrops; i++ {
		drop, err := o.table.AwardRandom(ctx, userID, loot.DrawOptions{})
		if err != nil {
			return grant, fmt.Errorf("failed to award bonus drop: %w", err)
		}
		if drop != nil {
			grant.Drops = append(grant.Drops, drop)
		}
	}

	milestone, err := o.streaks.MaybeGrantMilestoneDrop(ctx, userID, effects.Streak)
	if err != nil {
		return grant, err
	}
	if milestone != nil {
		grant.Drops = append(grant.Drops, milestone)
	}

	if o.prestige != nil {
		daily, err := o.prestige.MaybeGrantDailyDrops(ctx, userID)
		if err != nil {
			return grant, err
		}
		if daily != nil {
			grant.Drops = append(grant.Drops, daily)
		}
	}
	return grant, nil
}

// GrantXP adapts the orchestrator to callers that only need the side
// effects.
func (o *Orchestrator) GrantXP(ctx context.Context, userID int64, amount int64, reason, activityType string) error {
	_, err := o.ApplyXPWithBonuses(ctx, userID, amount, reason, activityType)
	return err
}
