package utils

import "time"

// Transaction timeouts
const (
	DefaultTxTimeout = 30 * time.Second
)

// Base XP award per activity type.
var ActivityXP = map[string]int64{
	"commit":       50,
	"pr_opened":    100,
	"pr_merged":    200,
	"pr_reviewed":  75,
	"issue_opened": 25,
	"issue_closed": 100,
}

// PR battle rewards and matchmaking.
const (
	BattleWinXP       int64 = 150
	BattleLossXP      int64 = 50
	BattleMatchWindow       = 10 * time.Minute
)

// Crafting.
const (
	CraftXPPerCraft int64 = 10
)

// Level curve: one level per 1000 XP under a square root, so early levels
// come fast and later ones stretch out.
const XPPerLevelUnit int64 = 1000
