package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	GuildRoleLeader = "leader"
	GuildRoleMember = "member"

	GuildInvitePending = "pending"
)

type Guild struct {
	bun.BaseModel `bun:"table:guilds,alias:g"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Name      string    `bun:"name,notnull,unique"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// GuildMember keys on user_id alone: a user belongs to at most one guild.
type GuildMember struct {
	bun.BaseModel `bun:"table:guild_members,alias:gm"`

	UserID  int64  `bun:"user_id,pk"`
	GuildID int64  `bun:"guild_id,notnull"`
	Role    string `bun:"role,notnull"`
}

type GuildInvite struct {
	bun.BaseModel `bun:"table:guild_invites,alias:gi"`

	GuildID   int64     `bun:"guild_id,pk"`
	UserID    int64     `bun:"user_id,pk"`
	InvitedBy int64     `bun:"invited_by,notnull"`
	Status    string    `bun:"status,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// GuildQuest is a weekly collective quest, regenerated per ISO week.
type GuildQuest struct {
	bun.BaseModel `bun:"table:guild_quests,alias:gq"`

	ID              int64     `bun:"id,pk,autoincrement"`
	GuildID         int64     `bun:"guild_id,notnull"`
	Title           string    `bun:"title,notnull"`
	Description     string    `bun:"description"`
	XPReward        int64     `bun:"xp_reward,notnull"`
	ProgressCurrent int64     `bun:"progress_current,notnull,default:0"`
	ProgressTotal   int64     `bun:"progress_total,notnull"`
	RefreshAt       time.Time `bun:"refresh_at,notnull"`
}
