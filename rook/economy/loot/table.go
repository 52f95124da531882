package loot

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/rookgg/rook/rook/database/models"
	"github.com/rookgg/rook/rook/database/repositories"
)

// Publisher is the slice of the event bus the loot table needs.
type Publisher interface {
	Publish(name string, payload any)
}

// DrawOptions steers a single draw. ForceRarity restricts the pool to one
// tier, MinRarity to that tier and above. LuckMeter boosts non-common
// weights.
type DrawOptions struct {
	LuckMeter   int
	ForceRarity string
	MinRarity   string
}

// Drop is what a user actually received.
type Drop struct {
	UserID   int64  `json:"userId"`
	ItemID   int64  `json:"itemId"`
	ItemName string `json:"itemName"`
	ItemIcon string `json:"itemIcon"`
	Rarity   string `json:"rarity"`
	Quantity int64  `json:"quantity"`
}

// Table holds an in-memory snapshot of the loot catalog and draws from it
// with weighted selection. The snapshot is immutable between Reload calls so
// draws never block on the database.
type Table struct {
	repo  repositories.LootRepository
	stats repositories.StatsRepository
	bus   Publisher

	mu    sync.RWMutex
	items []models.LootItem

	randFloat func() float64
}

func NewTable(repo repositories.LootRepository, stats repositories.StatsRepository, bus Publisher) *Table {
	return &Table{
		repo:      repo,
		stats:     stats,
		bus:       bus,
		randFloat: rand.Float64,
	}
}

// Reload replaces the catalog snapshot from the database.
func (t *Table) Reload(ctx context.Context) error {
	items, err := t.repo.Catalog(ctx)
	if err != nil {
		return fmt.Errorf("failed to load loot catalog: %w", err)
	}
	t.mu.Lock()
	t.items = items
	t.mu.Unlock()
	return nil
}

// Catalog returns the current snapshot.
func (t *Table) Catalog() []models.LootItem {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]models.LootItem, len(t.items))
	copy(out, t.items)
	return out
}

// Draw picks one item by weighted roulette, or nil when the filtered pool is
// empty. Each point of luck adds 0.5% weight to rare-and-above items, which
// acts as a pity timer for dry streaks.
func (t *Table) Draw(opts DrawOptions) *models.LootItem {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if len(t.items) == 0 {
		return nil
	}

	minRank := -1
	if opts.MinRarity != "" {
		minRank = models.RarityRank(opts.MinRarity)
	}

	type entry struct {
		item   *models.LootItem
		weight float64
	}
	var pool []entry
	var total float64
	for i := range t.items {
		item := &t.items[i]
		if opts.ForceRarity != "" && item.Rarity != opts.ForceRarity {
			continue
		}
		if minRank >= 0 && models.RarityRank(item.Rarity) < minRank {
			continue
		}
		weight := item.DropWeight
		if opts.LuckMeter > 0 && models.RarityRank(item.Rarity) > models.RarityRank(models.RarityCommon) {
			weight *= 1 + float64(opts.LuckMeter)*0.005
		}
		if weight <= 0 {
			continue
		}
		pool = append(pool, entry{item: item, weight: weight})
		total += weight
	}
	if total <= 0 {
		return nil
	}

	roll := t.randFloat() * total
	for _, e := range pool {
		roll -= e.weight
		if roll <= 0 {
			return e.item
		}
	}
	return pool[len(pool)-1].item
}

// AwardRandom draws against the user's luck meter, persists the drop and
// moves the meter: a rare-or-better hit resets it, anything else feeds it.
func (t *Table) AwardRandom(ctx context.Context, userID int64, opts DrawOptions) (*Drop, error) {
	if opts.LuckMeter == 0 {
		stats, err := t.stats.Get(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to read luck meter: %w", err)
		}
		opts.LuckMeter = stats.LuckMeter
	}

	item := t.Draw(opts)
	if item == nil {
		return nil, nil
	}
	return t.award(ctx, userID, item)
}

// AwardItem grants a specific catalog item, applying the same luck meter
// movement as a random draw.
func (t *Table) AwardItem(ctx context.Context, userID int64, item *models.LootItem) (*Drop, error) {
	if item == nil {
		return nil, nil
	}
	return t.award(ctx, userID, item)
}

func (t *Table) award(ctx context.Context, userID int64, item *models.LootItem) (*Drop, error) {
	quantity, err := t.repo.Award(ctx, userID, item.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to award loot: %w", err)
	}

	if models.RarityRank(item.Rarity) > models.RarityRank(models.RarityCommon) {
		err = t.stats.ResetLuckMeter(ctx, userID)
	} else {
		err = t.stats.IncrementLuckMeter(ctx, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to move luck meter: %w", err)
	}

	drop := &Drop{
		UserID:   userID,
		ItemID:   item.ID,
		ItemName: item.Name,
		ItemIcon: item.Icon,
		Rarity:   item.Rarity,
		Quantity: quantity,
	}
	if t.bus != nil {
		t.bus.Publish("loot", drop)
	}
	return drop, nil
}
