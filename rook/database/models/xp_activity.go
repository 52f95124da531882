package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Activity type tags. The sentinel types mark once-per-day bonus grants and
// are recorded as zero-amount entries.
const (
	ActivityCommit   = "commit"
	ActivityPR       = "pr"
	ActivityReview   = "review"
	ActivityIssue    = "issue"
	ActivityQuest    = "quest"
	ActivityManual   = "manual"
	ActivityPrBattle = "pr_battle"

	ActivityQuestStreakRare      = "quest_streak_rare"
	ActivityQuestStreakLegendary = "quest_streak_legendary"
	ActivityPrestigeRareBonus    = "prestige_rare_bonus"
)

// XPActivity is the append-only XP log. Rows are never mutated or deleted.
type XPActivity struct {
	bun.BaseModel `bun:"table:xp_activity,alias:xa"`

	ID           int64     `bun:"id,pk,autoincrement"`
	UserID       int64     `bun:"user_id,notnull"`
	Amount       int64     `bun:"amount,notnull"`
	Reason       string    `bun:"reason"`
	ActivityType string    `bun:"activity_type"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
