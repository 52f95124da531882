package models

import (
	"github.com/uptrace/bun"
)

type CraftingRecipe struct {
	bun.BaseModel `bun:"table:crafting_recipes,alias:cr"`

	ID           int64  `bun:"id,pk,autoincrement"`
	Code         string `bun:"code,notnull,unique"`
	Name         string `bun:"name,notnull"`
	Description  string `bun:"description"`
	ResultItemID int64  `bun:"result_item_id,notnull"`

	ResultItem  *LootItem           `bun:"rel:has-one,join:result_item_id=id"`
	Ingredients []*RecipeIngredient `bun:"rel:has-many,join:id=recipe_id"`
}

type RecipeIngredient struct {
	bun.BaseModel `bun:"table:crafting_recipe_ingredients,alias:cri"`

	RecipeID int64 `bun:"recipe_id,pk"`
	ItemID   int64 `bun:"item_id,pk"`
	Quantity int64 `bun:"quantity,notnull"`

	Item *LootItem `bun:"rel:has-one,join:item_id=id"`
}
