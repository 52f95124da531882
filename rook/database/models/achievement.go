package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	AchievementFirstBlood = "FIRST_BLOOD"
	AchievementStreak3    = "STREAK_3"
	AchievementStreak7    = "STREAK_7"
	AchievementXP1000     = "XP_1000"
)

type Achievement struct {
	bun.BaseModel `bun:"table:achievements,alias:ach"`

	ID          int64  `bun:"id,pk,autoincrement"`
	Code        string `bun:"code,notnull,unique"`
	Name        string `bun:"name,notnull"`
	Description string `bun:"description"`
	Icon        string `bun:"icon"`
	Rarity      string `bun:"rarity,notnull"`
}

// UserAchievement records an unlock. The composite primary key makes a
// duplicate unlock a conflict no-op rather than an error.
type UserAchievement struct {
	bun.BaseModel `bun:"table:user_achievements,alias:uach"`

	UserID        int64     `bun:"user_id,pk"`
	AchievementID int64     `bun:"achievement_id,pk"`
	UnlockedAt    time.Time `bun:"unlocked_at,notnull,default:current_timestamp"`

	Achievement *Achievement `bun:"rel:has-one,join:achievement_id=id"`
}
