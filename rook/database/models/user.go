package models

import (
	"time"

	"github.com/uptrace/bun"
)

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID          int64     `bun:"id,pk,autoincrement"`
	GithubID    string    `bun:"github_id,notnull,unique"`
	Username    string    `bun:"username,notnull"`
	GithubToken string    `bun:"github_token"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
