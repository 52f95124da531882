package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	QuestTypeDaily = "daily"
	// Weekly quests are stored as "boss"; legacy rows may still carry "weekly".
	QuestTypeBoss   = "boss"
	QuestTypeWeekly = "weekly"
)

// Quest is one entry on a user's quest board. Daily quests are keyed by
// creation date = current UTC day, boss quests by creation within the current
// ISO week. Old incomplete quests are abandoned when the window rolls over.
type Quest struct {
	bun.BaseModel `bun:"table:daily_quests,alias:dq"`

	ID              int64     `bun:"id,pk,autoincrement"`
	UserID          int64     `bun:"user_id,notnull"`
	Title           string    `bun:"title,notnull"`
	Description     string    `bun:"description"`
	Type            string    `bun:"type,notnull"`
	XPReward        int64     `bun:"xp_reward,notnull"`
	ProgressCurrent int64     `bun:"progress_current,notnull,default:0"`
	ProgressTotal   int64     `bun:"progress_total,notnull"`
	Completed       bool      `bun:"completed,notnull,default:false"`
	CreatedAt       time.Time `bun:"created_at,notnull,type:date,default:current_date"`
}
