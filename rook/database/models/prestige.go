package models

import (
	"time"

	"github.com/uptrace/bun"
)

// PrestigePerks is the perk bundle attached to one prestige reset. Perks
// accumulate additively across resets and are never merged into the row.
type PrestigePerks struct {
	XPBonus          float64 `json:"xpBonus"`
	RareDaily        int     `json:"rareDaily"`
	CraftingDiscount float64 `json:"craftingDiscount"`
}

// Add returns the component-wise sum of two perk bundles.
func (p PrestigePerks) Add(other PrestigePerks) PrestigePerks {
	return PrestigePerks{
		XPBonus:          p.XPBonus + other.XPBonus,
		RareDaily:        p.RareDaily + other.RareDaily,
		CraftingDiscount: p.CraftingDiscount + other.CraftingDiscount,
	}
}

// PrestigeReset is an append-only record, one per prestige action.
type PrestigeReset struct {
	bun.BaseModel `bun:"table:prestige_resets,alias:pr"`

	ID           int64         `bun:"id,pk,autoincrement"`
	UserID       int64         `bun:"user_id,notnull"`
	LevelResetAt int           `bun:"level_reset_at,notnull"`
	Perks        PrestigePerks `bun:"perks,type:jsonb"`
	CreatedAt    time.Time     `bun:"created_at,notnull,default:current_timestamp"`
}
