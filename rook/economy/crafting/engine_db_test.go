package crafting

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"

	"github.com/rookgg/rook/rook/database"
	"github.com/rookgg/rook/rook/database/dbtest"
	"github.com/rookgg/rook/rook/database/models"
	"github.com/rookgg/rook/rook/database/repositories"
	"github.com/rookgg/rook/rook/economy/utils"
)

func newDBEngine(t *testing.T) (*Engine, *database.DB) {
	db := dbtest.Open(t)
	bunDB := db.BunDB()
	engine := NewEngine(
		db,
		utils.NewEconomicTransactionManager(bunDB),
		repositories.NewStatsRepository(bunDB),
		repositories.NewLootRepository(bunDB),
		nil,
		nil,
	)
	engine.randFloat = func() float64 { return 1 }
	return engine, db
}

func lootItemID(t *testing.T, db *database.DB, code string) int64 {
	t.Helper()
	item := new(models.LootItem)
	err := db.BunDB().NewSelect().
		Model(item).
		Where("code = ?", code).
		Scan(context.Background())
	if err != nil {
		t.Fatalf("failed to load item %s: %v", code, err)
	}
	return item.ID
}

func giveItems(t *testing.T, db *database.DB, userID, itemID, quantity int64) {
	t.Helper()
	drop := &models.LootDrop{UserID: userID, ItemID: itemID, Quantity: quantity}
	if _, err := db.BunDB().NewInsert().Model(drop).Exec(context.Background()); err != nil {
		t.Fatalf("failed to seed inventory: %v", err)
	}
}

func heldQuantity(t *testing.T, db *database.DB, userID, itemID int64) int64 {
	t.Helper()
	drop := new(models.LootDrop)
	err := db.BunDB().NewSelect().
		Model(drop).
		Where("user_id = ? AND item_id = ?", userID, itemID).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return 0
	}
	if err != nil {
		t.Fatalf("failed to read inventory: %v", err)
	}
	return drop.Quantity
}

func TestCraftDebitsAndCreditsOnce(t *testing.T) {
	engine, db := newDBEngine(t)
	ctx := context.Background()
	userID := dbtest.NextUserID()

	wood := lootItemID(t, db, "wood_log")
	brick := lootItemID(t, db, "merge_brick")
	crystal := lootItemID(t, db, "review_crystal")
	giveItems(t, db, userID, wood, 3)
	giveItems(t, db, userID, brick, 1)

	result, err := engine.Craft(ctx, userID, "iron_blade")
	if err != nil {
		t.Fatalf("Craft returned error: %v", err)
	}
	if result.Crafted != "Iron Blade" {
		t.Errorf("Crafted = %q, want Iron Blade", result.Crafted)
	}
	if got := heldQuantity(t, db, userID, crystal); got != 1 {
		t.Errorf("crystal quantity = %d, want 1", got)
	}
	if got := heldQuantity(t, db, userID, wood); got != 0 {
		t.Errorf("wood quantity = %d, want 0 after craft", got)
	}

	// A second craft has nothing to spend. It must fail with the missing
	// ingredient and leave the inventory exactly as the first craft did.
	_, err = engine.Craft(ctx, userID, "iron_blade")
	var insufficient *InsufficientError
	if !errors.As(err, &insufficient) {
		t.Fatalf("second Craft error = %v, want InsufficientError", err)
	}
	if insufficient.ItemCode != "wood_log" {
		t.Errorf("missing item = %q, want wood_log", insufficient.ItemCode)
	}
	if got := heldQuantity(t, db, userID, crystal); got != 1 {
		t.Errorf("crystal quantity after failed craft = %d, want 1", got)
	}
	if got := heldQuantity(t, db, userID, brick); got != 0 {
		t.Errorf("brick quantity after failed craft = %d, want 0", got)
	}
}

func TestCraftConcurrentDoubleSpend(t *testing.T) {
	engine, db := newDBEngine(t)
	ctx := context.Background()
	userID := dbtest.NextUserID()

	wood := lootItemID(t, db, "wood_log")
	brick := lootItemID(t, db, "merge_brick")
	crystal := lootItemID(t, db, "review_crystal")
	giveItems(t, db, userID, wood, 3)
	giveItems(t, db, userID, brick, 1)

	// Ingredients cover exactly one craft; two racers must not both win.
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = engine.Craft(ctx, userID, "iron_blade")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		}
	}
	if succeeded != 1 {
		t.Fatalf("%d of 2 concurrent crafts succeeded, want exactly 1 (errors: %v)", succeeded, errs)
	}
	if got := heldQuantity(t, db, userID, crystal); got != 1 {
		t.Errorf("crystal quantity = %d, want 1", got)
	}
	if got := heldQuantity(t, db, userID, wood); got != 0 {
		t.Errorf("wood quantity = %d, want 0", got)
	}
	if got := heldQuantity(t, db, userID, brick); got != 0 {
		t.Errorf("brick quantity = %d, want 0", got)
	}
}

func TestCraftUnknownRecipe(t *testing.T) {
	engine, _ := newDBEngine(t)

	_, err := engine.Craft(context.Background(), dbtest.NextUserID(), "philosophers_stone")
	if !errors.Is(err, ErrRecipeNotFound) {
		t.Errorf("Craft error = %v, want ErrRecipeNotFound", err)
	}
}
