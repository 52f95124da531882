package utils

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/rookgg/rook/rook/database/models"
)

// TransactionOptions configures transaction behavior
type TransactionOptions struct {
	IsolationLevel sql.IsolationLevel
	Timeout        time.Duration
}

// EconomicTransactionManager provides standardized transaction utilities for economic operations
type EconomicTransactionManager struct {
	db *bun.DB
}

// NewEconomicTransactionManager creates a new transaction manager
func NewEconomicTransactionManager(db *bun.DB) *EconomicTransactionManager {
	return &EconomicTransactionManager{db: db}
}

// StandardTransactionOptions returns default transaction options
func StandardTransactionOptions() *TransactionOptions {
	return &TransactionOptions{
		IsolationLevel: sql.LevelReadCommitted,
		Timeout:        DefaultTxTimeout,
	}
}

// SerializableTransactionOptions returns serializable isolation level options for critical operations
func SerializableTransactionOptions() *TransactionOptions {
	return &TransactionOptions{
		IsolationLevel: sql.LevelSerializable,
		Timeout:        DefaultTxTimeout,
	}
}

// WithTransaction executes a function within a database transaction
func (etm *EconomicTransactionManager) WithTransaction(ctx context.Context, opts *TransactionOptions, fn func(context.Context, bun.Tx) error) error {
	if opts == nil {
		opts = StandardTransactionOptions()
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	tx, err := etm.db.BeginTx(timeoutCtx, &sql.TxOptions{
		Isolation: opts.IsolationLevel,
	})
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(timeoutCtx, tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ItemOperationOptions configures inventory operations
type ItemOperationOptions struct {
	UserID int64
	ItemID int64
	Amount int
}

// AddItemToInventory adds loot items to a user's inventory with UPSERT logic
func (etm *EconomicTransactionManager) AddItemToInventory(ctx context.Context, tx bun.Tx, opts ItemOperationOptions) error {
	result, err := tx.NewUpdate().
		Model((*models.LootDrop)(nil)).
		Set("quantity = quantity + ?", opts.Amount).
		Where("user_id = ? AND item_id = ?", opts.UserID, opts.ItemID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update item quantity: %w", err)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		_, err = tx.NewInsert().
			Model(&models.LootDrop{
				UserID:     opts.UserID,
				ItemID:     opts.ItemID,
				Quantity:   int64(opts.Amount),
				ObtainedAt: time.Now().UTC(),
			}).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to add new item: %w", err)
		}
	}

	return nil
}

// RemoveItemFromInventory removes loot items from a user's inventory. The row
// is deleted when the quantity reaches zero so inventories never carry empty
// stacks.
func (etm *EconomicTransactionManager) RemoveItemFromInventory(ctx context.Context, tx bun.Tx, opts ItemOperationOptions) error {
	var drop models.LootDrop
	err := tx.NewSelect().
		Model(&drop).
		Where("user_id = ? AND item_id = ?", opts.UserID, opts.ItemID).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("item not found in inventory")
		}
		return fmt.Errorf("failed to get inventory item: %w", err)
	}

	if drop.Quantity < int64(opts.Amount) {
		return fmt.Errorf("insufficient items in inventory (has %d, needs %d)", drop.Quantity, opts.Amount)
	}

	if drop.Quantity == int64(opts.Amount) {
		result, err := tx.NewDelete().
			Model((*models.LootDrop)(nil)).
			Where("user_id = ? AND item_id = ?", opts.UserID, opts.ItemID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to delete item: %w", err)
		}
		if affected, _ := result.RowsAffected(); affected == 0 {
			return fmt.Errorf("item not found in user's inventory")
		}
	} else {
		result, err := tx.NewUpdate().
			Model((*models.LootDrop)(nil)).
			Set("quantity = quantity - ?", opts.Amount).
			Where("user_id = ? AND item_id = ? AND quantity >= ?", opts.UserID, opts.ItemID, opts.Amount).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to update item quantity: %w", err)
		}
		if affected, _ := result.RowsAffected(); affected == 0 {
			return fmt.Errorf("failed to remove items from inventory")
		}
	}

	return nil
}

// GetDB returns the underlying database connection
func (etm *EconomicTransactionManager) GetDB() *bun.DB {
	return etm.db
}
