package models

import (
	"time"

	"github.com/uptrace/bun"
)

// UserStats is the per-user progression row. Field ownership is split:
// total_xp/streak/last_active belong to the progression ledger, the
// quest_streak pair to the quest-streak engine, crafting_xp/crafting_level
// to the crafting skill ladder and luck_meter to the loot table.
type UserStats struct {
	bun.BaseModel `bun:"table:user_stats,alias:ust"`

	UserID     int64     `bun:"user_id,pk"`
	TotalXP    int64     `bun:"total_xp,notnull,default:0"`
	Streak     int       `bun:"streak,notnull,default:0"`
	LastActive time.Time `bun:"last_active,nullzero"`

	QuestStreak        int       `bun:"quest_streak,notnull,default:0"`
	LastQuestCompleted time.Time `bun:"last_quest_completed,nullzero,type:date"`

	CraftingXP    int64 `bun:"crafting_xp,notnull,default:0"`
	CraftingLevel int   `bun:"crafting_level,notnull,default:1"`

	LuckMeter int   `bun:"luck_meter,notnull,default:0"`
	GuildID   int64 `bun:"guild_id,nullzero"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}
