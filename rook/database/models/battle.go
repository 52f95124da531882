package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	BattlePending   = "pending"
	BattleActive    = "active"
	BattleCompleted = "completed"
)

type PrBattle struct {
	bun.BaseModel `bun:"table:pr_battles,alias:pb"`

	ID           int64     `bun:"id,pk,autoincrement"`
	Status       string    `bun:"status,notnull"`
	WinnerUserID int64     `bun:"winner_user_id,nullzero"`
	Repo         string    `bun:"repo"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp"`
	StartedAt    time.Time `bun:"started_at,nullzero"`
	EndedAt      time.Time `bun:"ended_at,nullzero"`
}

type PrBattleParticipant struct {
	bun.BaseModel `bun:"table:pr_battle_participants,alias:pbp"`

	BattleID   int64     `bun:"battle_id,pk"`
	UserID     int64     `bun:"user_id,pk"`
	PrID       int64     `bun:"pr_id,notnull"`
	PrNumber   int       `bun:"pr_number,nullzero"`
	PrURL      string    `bun:"pr_url"`
	ReviewedAt time.Time `bun:"reviewed_at,nullzero"`
}
