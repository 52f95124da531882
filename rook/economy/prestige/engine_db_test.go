package prestige

import (
	"context"
	"errors"
	"testing"

	"github.com/rookgg/rook/rook/database"
	"github.com/rookgg/rook/rook/database/dbtest"
	"github.com/rookgg/rook/rook/database/models"
	"github.com/rookgg/rook/rook/database/repositories"
	"github.com/rookgg/rook/rook/economy/loot"
	"github.com/rookgg/rook/rook/economy/utils"
)

func newDBEngine(t *testing.T) (*Engine, *database.DB, repositories.StatsRepository) {
	db := dbtest.Open(t)
	bunDB := db.BunDB()
	stats := repositories.NewStatsRepository(bunDB)
	lootRepo := repositories.NewLootRepository(bunDB)
	engine := NewEngine(
		db,
		utils.NewEconomicTransactionManager(bunDB),
		repositories.NewActivityRepository(bunDB),
		lootRepo,
		loot.NewTable(lootRepo, stats, nil),
	)
	return engine, db, stats
}

func seedTotalXP(t *testing.T, stats repositories.StatsRepository, userID, totalXP int64) {
	t.Helper()
	ctx := context.Background()
	if err := stats.Ensure(ctx, userID); err != nil {
		t.Fatalf("failed to ensure stats row: %v", err)
	}
	if err := stats.SetProgress(ctx, userID, totalXP, 5); err != nil {
		t.Fatalf("failed to seed total xp: %v", err)
	}
}

func TestPerformRejectedBelowLevelTwenty(t *testing.T) {
	engine, _, stats := newDBEngine(t)
	ctx := context.Background()
	userID := dbtest.NextUserID()

	// 324000 XP is level 19, one level short of the gate.
	seedTotalXP(t, stats, userID, 324000)

	_, err := engine.Perform(ctx, userID)
	if !errors.Is(err, ErrLevelTooLow) {
		t.Fatalf("Perform error = %v, want ErrLevelTooLow", err)
	}

	row, err := stats.Get(ctx, userID)
	if err != nil {
		t.Fatalf("failed to reload stats: %v", err)
	}
	if row.TotalXP != 324000 || row.Streak != 5 {
		t.Errorf("stats after rejected prestige = xp %d streak %d, want untouched 324000/5", row.TotalXP, row.Streak)
	}

	summary, err := engine.SummaryFor(ctx, userID)
	if err != nil {
		t.Fatalf("SummaryFor returned error: %v", err)
	}
	if summary.Count != 0 {
		t.Errorf("reset count = %d, want 0", summary.Count)
	}
}

func TestPerformResetsAtLevelTwenty(t *testing.T) {
	engine, db, stats := newDBEngine(t)
	ctx := context.Background()
	userID := dbtest.NextUserID()

	// 361000 XP is exactly level 20.
	seedTotalXP(t, stats, userID, 361000)

	summary, err := engine.Perform(ctx, userID)
	if err != nil {
		t.Fatalf("Perform returned error: %v", err)
	}
	if summary.Count != 1 {
		t.Errorf("reset count = %d, want 1", summary.Count)
	}
	if summary.Perks.RareDaily != 1 {
		t.Errorf("RareDaily = %d, want 1", summary.Perks.RareDaily)
	}

	row, err := stats.Get(ctx, userID)
	if err != nil {
		t.Fatalf("failed to reload stats: %v", err)
	}
	if row.TotalXP != 0 || row.Streak != 0 || row.QuestStreak != 0 {
		t.Errorf("stats after prestige = %+v, want zeroed progression", row)
	}

	var resets []*models.PrestigeReset
	err = db.BunDB().NewSelect().
		Model(&resets).
		Where("user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		t.Fatalf("failed to load resets: %v", err)
	}
	if len(resets) != 1 {
		t.Fatalf("reset rows = %d, want 1", len(resets))
	}
	if resets[0].LevelResetAt != 20 {
		t.Errorf("LevelResetAt = %d, want 20", resets[0].LevelResetAt)
	}

	mult, err := engine.XPMultiplier(ctx, userID)
	if err != nil {
		t.Fatalf("XPMultiplier returned error: %v", err)
	}
	if mult < 1.019 || mult > 1.021 {
		t.Errorf("XPMultiplier = %v, want 1.02", mult)
	}
}

func TestDailyDropPaysRare(t *testing.T) {
	engine, db, stats := newDBEngine(t)
	ctx := context.Background()
	userID := dbtest.NextUserID()

	if err := stats.Ensure(ctx, userID); err != nil {
		t.Fatalf("failed to ensure stats row: %v", err)
	}
	reset := &models.PrestigeReset{UserID: userID, LevelResetAt: 20, Perks: perReset}
	if _, err := db.BunDB().NewInsert().Model(reset).Exec(ctx); err != nil {
		t.Fatalf("failed to seed reset: %v", err)
	}

	drop, err := engine.MaybeGrantDailyDrops(ctx, userID)
	if err != nil {
		t.Fatalf("MaybeGrantDailyDrops returned error: %v", err)
	}
	if drop == nil {
		t.Fatal("expected a daily drop, got nil")
	}
	// The perk pays a rare, never epic or legendary.
	if drop.Rarity != models.RarityRare {
		t.Errorf("drop rarity = %q, want %q", drop.Rarity, models.RarityRare)
	}

	again, err := engine.MaybeGrantDailyDrops(ctx, userID)
	if err != nil {
		t.Fatalf("second MaybeGrantDailyDrops returned error: %v", err)
	}
	if again != nil {
		t.Errorf("second grant on the same day = %+v, want nil", again)
	}
}
