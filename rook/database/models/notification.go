package models

import (
	"github.com/uptrace/bun"
)

const (
	IntegrationSlack   = "slack"
	IntegrationDiscord = "discord"
)

type NotificationIntegration struct {
	bun.BaseModel `bun:"table:notification_integrations,alias:ni"`

	UserID     int64  `bun:"user_id,pk"`
	Type       string `bun:"type,pk"`
	WebhookURL string `bun:"webhook_url,notnull"`
}

// Friendship stores one row per pair, with user_id < friend_id.
type Friendship struct {
	bun.BaseModel `bun:"table:friendships,alias:f"`

	UserID   int64 `bun:"user_id,pk"`
	FriendID int64 `bun:"friend_id,pk"`
}
