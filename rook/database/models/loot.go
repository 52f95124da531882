package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	RarityCommon    = "common"
	RarityRare      = "rare"
	RarityEpic      = "epic"
	RarityLegendary = "legendary"
)

var rarityRank = map[string]int{
	RarityCommon:    0,
	RarityRare:      1,
	RarityEpic:      2,
	RarityLegendary: 3,
}

// RarityRank returns the position of a rarity in the total order
// common < rare < epic < legendary, or -1 for an unknown rarity.
func RarityRank(rarity string) int {
	if rank, ok := rarityRank[rarity]; ok {
		return rank
	}
	return -1
}

// NextRarity returns the tier above the given rarity, clamped at legendary.
func NextRarity(rarity string) string {
	switch rarity {
	case RarityCommon:
		return RarityRare
	case RarityRare:
		return RarityEpic
	default:
		return RarityLegendary
	}
}

type LootItem struct {
	bun.BaseModel `bun:"table:loot_items,alias:li"`

	ID          int64   `bun:"id,pk,autoincrement"`
	Code        string  `bun:"code,notnull,unique"`
	Name        string  `bun:"name,notnull"`
	Rarity      string  `bun:"rarity,notnull"`
	DropWeight  float64 `bun:"drop_weight,notnull,default:0"`
	Description string  `bun:"description"`
	Icon        string  `bun:"ascii_icon"`
}

// LootDrop is an inventory row. The row exists only while quantity >= 1;
// crafting consumption deletes it at zero.
type LootDrop struct {
	bun.BaseModel `bun:"table:loot_drops,alias:ld"`

	UserID     int64     `bun:"user_id,pk"`
	ItemID     int64     `bun:"item_id,pk"`
	Quantity   int64     `bun:"quantity,notnull,default:1"`
	ObtainedAt time.Time `bun:"obtained_at,notnull,default:current_timestamp"`

	Item *LootItem `bun:"rel:has-one,join:item_id=id"`
}
