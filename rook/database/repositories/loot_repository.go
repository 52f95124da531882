package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"github.com/rookgg/rook/rook/database/models"
)

type LootRepository interface {
	Catalog(ctx context.Context) ([]models.LootItem, error)
	ItemByID(ctx context.Context, itemID int64) (*models.LootItem, error)
	// TopByRarity returns the highest-drop-weight item of exactly that rarity.
	TopByRarity(ctx context.Context, rarity string) (*models.LootItem, error)
	// Award upserts the inventory row and returns the new quantity.
	Award(ctx context.Context, userID, itemID int64) (int64, error)
	Inventory(ctx context.Context, userID int64) ([]*models.LootDrop, error)
}

type lootRepository struct {
	db *bun.DB
}

func NewLootRepository(db *bun.DB) LootRepository {
	return &lootRepository{db: db}
}

func (r *lootRepository) Catalog(ctx context.Context) ([]models.LootItem, error) {
	var items []models.LootItem
	err := r.db.NewSelect().
		Model(&items).
		Order("id ASC").
		Scan(ctx)
	return items, err
}

func (r *lootRepository) ItemByID(ctx context.Context, itemID int64) (*models.LootItem, error) {
	item := new(models.LootItem)
	err := r.db.NewSelect().
		Model(item).
		Where("id = ?", itemID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return item, nil
}

func (r *lootRepository) TopByRarity(ctx context.Context, rarity string) (*models.LootItem, error) {
	item := new(models.LootItem)
	err := r.db.NewSelect().
		Model(item).
		Where("rarity = ?", rarity).
		Order("drop_weight DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return item, nil
}

// Award serializes concurrent grants for the same (user, item) through the
// conflict clause so two awards never race to create duplicate rows.
func (r *lootRepository) Award(ctx context.Context, userID, itemID int64) (int64, error) {
	drop := &models.LootDrop{UserID: userID, ItemID: itemID, Quantity: 1}
	_, err := r.db.NewInsert().
		Model(drop).
		On("CONFLICT (user_id, item_id) DO UPDATE").
		Set("quantity = ld.quantity + 1").
		Returning("quantity").
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return drop.Quantity, nil
}

func (r *lootRepository) Inventory(ctx context.Context, userID int64) ([]*models.LootDrop, error) {
	var drops []*models.LootDrop
	err := r.db.NewSelect().
		Model(&drops).
		Relation("Item").
		Where("ld.user_id = ?", userID).
		Order("ld.item_id ASC").
		Scan(ctx)
	return drops, err
}
