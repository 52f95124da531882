package battles

import (
	"context"
	"testing"

	"github.com/rookgg/rook/rook/database"
	"github.com/rookgg/rook/rook/database/dbtest"
	"github.com/rookgg/rook/rook/database/models"
	"github.com/rookgg/rook/rook/economy/utils"
)

type grantRecord struct {
	userID int64
	amount int64
}

type grantRecorder struct {
	grants []grantRecord
}

func (g *grantRecorder) GrantXP(_ context.Context, userID int64, amount int64, _, _ string) error {
	g.grants = append(g.grants, grantRecord{userID: userID, amount: amount})
	return nil
}

func newDBManager(t *testing.T) (*Manager, *database.DB, *grantRecorder) {
	db := dbtest.Open(t)
	granter := &grantRecorder{}
	manager := NewManager(db, utils.NewEconomicTransactionManager(db.BunDB()), granter, nil, nil)

	// Matchmaking grabs any recent pending battle, so leftovers from a
	// previous run would steal this test's pairing.
	ctx := context.Background()
	if _, err := db.BunDB().NewDelete().
		Model((*models.PrBattle)(nil)).
		Where("status = ?", models.BattlePending).
		Exec(ctx); err != nil {
		t.Fatalf("failed to clear pending battles: %v", err)
	}
	return manager, db, granter
}

func TestBattleLifecycle(t *testing.T) {
	manager, db, granter := newDBManager(t)
	ctx := context.Background()
	alice := dbtest.NextUserID()
	bob := dbtest.NextUserID()
	alicePr := dbtest.NextUserID()
	bobPr := dbtest.NextUserID()

	opened, err := manager.HandlePrOpened(ctx, alice, alicePr, 41, "rookgg/rook", "https://example.com/41")
	if err != nil {
		t.Fatalf("first HandlePrOpened returned error: %v", err)
	}
	if opened.Status != "waiting for challenger" {
		t.Errorf("status = %q, want waiting for challenger", opened.Status)
	}

	matched, err := manager.HandlePrOpened(ctx, bob, bobPr, 42, "rookgg/rook", "https://example.com/42")
	if err != nil {
		t.Fatalf("second HandlePrOpened returned error: %v", err)
	}
	if matched.BattleID != opened.BattleID {
		t.Fatalf("second PR opened battle %d, want to join %d", matched.BattleID, opened.BattleID)
	}

	battle := new(models.PrBattle)
	if err := db.BunDB().NewSelect().Model(battle).Where("id = ?", opened.BattleID).Scan(ctx); err != nil {
		t.Fatalf("failed to load battle: %v", err)
	}
	if battle.Status != models.BattleActive {
		t.Errorf("battle status = %q, want active", battle.Status)
	}

	resolved, err := manager.HandlePrReviewed(ctx, alicePr)
	if err != nil {
		t.Fatalf("HandlePrReviewed returned error: %v", err)
	}
	if resolved == nil || resolved.Status != "won" {
		t.Fatalf("resolved view = %+v, want status won", resolved)
	}

	if err := db.BunDB().NewSelect().Model(battle).Where("id = ?", opened.BattleID).Scan(ctx); err != nil {
		t.Fatalf("failed to reload battle: %v", err)
	}
	if battle.Status != models.BattleCompleted || battle.WinnerUserID != alice {
		t.Errorf("battle = status %q winner %d, want completed/%d", battle.Status, battle.WinnerUserID, alice)
	}

	// The reviewed side takes the win purse, the opponent the consolation.
	want := []grantRecord{
		{userID: alice, amount: utils.BattleWinXP},
		{userID: bob, amount: utils.BattleLossXP},
	}
	if len(granter.grants) != len(want) {
		t.Fatalf("grants = %+v, want %+v", granter.grants, want)
	}
	for i, grant := range want {
		if granter.grants[i] != grant {
			t.Errorf("grant[%d] = %+v, want %+v", i, granter.grants[i], grant)
		}
	}

	// A review on the other PR of a settled battle pays nothing more.
	again, err := manager.HandlePrReviewed(ctx, bobPr)
	if err != nil {
		t.Fatalf("second HandlePrReviewed returned error: %v", err)
	}
	if again != nil {
		t.Errorf("review of settled battle = %+v, want nil", again)
	}
	if len(granter.grants) != 2 {
		t.Errorf("grants after repeat review = %d, want 2", len(granter.grants))
	}
}

func TestBattleStaleWindowOpensNew(t *testing.T) {
	manager, db, _ := newDBManager(t)
	ctx := context.Background()
	alice := dbtest.NextUserID()
	bob := dbtest.NextUserID()

	opened, err := manager.HandlePrOpened(ctx, alice, dbtest.NextUserID(), 7, "rookgg/rook", "https://example.com/7")
	if err != nil {
		t.Fatalf("HandlePrOpened returned error: %v", err)
	}

	// Age the pending battle past the matchmaking window.
	if _, err := db.BunDB().NewUpdate().
		Model((*models.PrBattle)(nil)).
		Set("created_at = NOW() - INTERVAL '11 minutes'").
		Where("id = ?", opened.BattleID).
		Exec(ctx); err != nil {
		t.Fatalf("failed to age battle: %v", err)
	}

	fresh, err := manager.HandlePrOpened(ctx, bob, dbtest.NextUserID(), 8, "rookgg/rook", "https://example.com/8")
	if err != nil {
		t.Fatalf("second HandlePrOpened returned error: %v", err)
	}
	if fresh.BattleID == opened.BattleID {
		t.Fatalf("joined stale battle %d, want a new pending battle", opened.BattleID)
	}
	if fresh.Status != "waiting for challenger" {
		t.Errorf("status = %q, want waiting for challenger", fresh.Status)
	}
}
