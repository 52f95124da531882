package economy

import (
	"context"
	"testing"
	"time"

	"github.com/rookgg/rook/rook/database/models"
	"github.com/rookgg/rook/rook/database/repositories"
	"github.com/rookgg/rook/rook/economy/loot"
	"github.com/rookgg/rook/rook/economy/progression"
	"github.com/rookgg/rook/rook/economy/queststreak"
)

type stubStats struct {
	rows map[int64]*models.UserStats
}

func (s *stubStats) Ensure(_ context.Context, userID int64) error {
	if _, ok := s.rows[userID]; !ok {
		s.rows[userID] = &models.UserStats{UserID: userID, CraftingLevel: 1}
	}
	return nil
}

func (s *stubStats) Get(_ context.Context, userID int64) (*models.UserStats, error) {
	if row, ok := s.rows[userID]; ok {
		copied := *row
		return &copied, nil
	}
	return &models.UserStats{UserID: userID, CraftingLevel: 1}, nil
}

func (s *stubStats) SetProgress(_ context.Context, userID int64, totalXP int64, streak int) error {
	row := s.rows[userID]
	row.TotalXP = totalXP
	row.Streak = streak
	row.LastActive = time.Now().UTC()
	return nil
}

func (s *stubStats) SetQuestStreak(_ context.Context, userID int64, questStreak int) error {
	s.rows[userID].QuestStreak = questStreak
	return nil
}

func (s *stubStats) SetCraftingSkill(_ context.Context, userID int64, xp int64, level int) error {
	return nil
}
func (s *stubStats) ResetLuckMeter(_ context.Context, _ int64) error     { return nil }
func (s *stubStats) IncrementLuckMeter(_ context.Context, _ int64) error { return nil }
func (s *stubStats) SetGuild(_ context.Context, _ int64, _ int64) error  { return nil }
func (s *stubStats) TopByXP(_ context.Context, _ int) ([]repositories.LeaderboardEntry, error) {
	return nil, nil
}

type stubActivities struct {
	entries []*models.XPActivity
}

func (s *stubActivities) Append(_ context.Context, entry *models.XPActivity) error {
	entry.CreatedAt = time.Now().UTC()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *stubActivities) Recent(_ context.Context, _ int64, _ int) ([]*models.XPActivity, error) {
	return nil, nil
}

func (s *stubActivities) HasSentinelToday(_ context.Context, userID int64, activityType string) (bool, error) {
	for _, e := range s.entries {
		if e.UserID == userID && e.ActivityType == activityType {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubActivities) SentinelCountToday(_ context.Context, userID int64, activityType string) (int, error) {
	count := 0
	for _, e := range s.entries {
		if e.UserID == userID && e.ActivityType == activityType {
			count++
		}
	}
	return count, nil
}

type stubAchievements struct{}

func (stubAchievements) ByCode(_ context.Context, _ string) (*models.Achievement, error) {
	return nil, nil
}
func (stubAchievements) Unlock(_ context.Context, _, _ int64) (bool, error) { return false, nil }
func (stubAchievements) ListUnlocked(_ context.Context, _ int64) ([]*models.UserAchievement, error) {
	return nil, nil
}

type stubLootRepo struct{}

func (stubLootRepo) Catalog(_ context.Context) ([]models.LootItem, error)              { return nil, nil }
func (stubLootRepo) ItemByID(_ context.Context, _ int64) (*models.LootItem, error)     { return nil, nil }
func (stubLootRepo) TopByRarity(_ context.Context, _ string) (*models.LootItem, error) { return nil, nil }
func (stubLootRepo) Award(_ context.Context, _, _ int64) (int64, error) { return 1, nil }
func (stubLootRepo) Inventory(_ context.Context, _ int64) ([]*models.LootDrop, error) {
	return nil, nil
}

type fixedMultiplier struct{ value float64 }

func (f fixedMultiplier) XPMultiplier(_ context.Context, _ int64) (float64, error) {
	return f.value, nil
}

type fixedPrestige struct{ value float64 }

func (f fixedPrestige) XPMultiplier(_ context.Context, _ int64) (float64, error) {
	return f.value, nil
}
func (f fixedPrestige) MaybeGrantDailyDrops(_ context.Context, _ int64) (*loot.Drop, error) {
	return nil, nil
}

type levelUpRecorder struct {
	calls []int
}

func (r *levelUpRecorder) LevelUp(_ context.Context, _ int64, level int, _ string) {
	r.calls = append(r.calls, level)
}

func newTestOrchestrator(stats *stubStats, notify LevelUpNotifier) *Orchestrator {
	activities := &stubActivities{}
	lootRepo := stubLootRepo{}
	table := loot.NewTable(lootRepo, stats, nil)
	ledger := progression.NewLedger(stats, activities, stubAchievements{}, nil)
	tracker := queststreak.NewTracker(stats, activities, lootRepo, table)
	return NewOrchestrator(ledger, tracker, table, fixedMultiplier{1.1}, fixedPrestige{1.02}, notify)
}

func TestApplyXPWithBonusesComposesMultipliers(t *testing.T) {
	stats := &stubStats{rows: map[int64]*models.UserStats{
		1: {UserID: 1, QuestStreak: 1, CraftingLevel: 1},
	}}
	orch := newTestOrchestrator(stats, nil)

	// 100 base at quest 1.05, guild 1.1, prestige 1.02 applies 118.
	grant, err := orch.ApplyXPWithBonuses(context.Background(), 1, 100, "pr merged", models.ActivityPR)
	if err != nil {
		t.Fatalf("ApplyXPWithBonuses returned error: %v", err)
	}
	if grant.AppliedXP != 118 {
		t.Errorf("AppliedXP = %d, want 118", grant.AppliedXP)
	}
	if grant.BaseXP != 100 {
		t.Errorf("BaseXP = %d, want 100", grant.BaseXP)
	}
	if grant.TotalXP != 118 {
		t.Errorf("TotalXP = %d, want 118", grant.TotalXP)
	}
	if grant.QuestStreak != 1 {
		t.Errorf("QuestStreak = %d, want 1", grant.QuestStreak)
	}
}

func TestApplyXPWithBonusesNoStreak(t *testing.T) {
	stats := &stubStats{rows: map[int64]*models.UserStats{
		2: {UserID: 2, CraftingLevel: 1},
	}}
	orch := newTestOrchestrator(stats, nil)

	// Quest multiplier stays 1 with no streak: 100 * 1.1 * 1.02 = 112.2 -> 112.
	grant, err := orch.ApplyXPWithBonuses(context.Background(), 2, 100, "commit", models.ActivityCommit)
	if err != nil {
		t.Fatalf("ApplyXPWithBonuses returned error: %v", err)
	}
	if grant.AppliedXP != 112 {
		t.Errorf("AppliedXP = %d, want 112", grant.AppliedXP)
	}
}

func TestApplyXPWithBonusesNotifiesLevelUpOnce(t *testing.T) {
	stats := &stubStats{rows: map[int64]*models.UserStats{
		3: {UserID: 3, TotalXP: 990, CraftingLevel: 1},
	}}
	recorder := &levelUpRecorder{}
	orch := newTestOrchestrator(stats, recorder)

	if _, err := orch.ApplyXPWithBonuses(context.Background(), 3, 100, "commit", models.ActivityCommit); err != nil {
		t.Fatalf("ApplyXPWithBonuses returned error: %v", err)
	}
	if len(recorder.calls) != 1 || recorder.calls[0] != 2 {
		t.Errorf("level-up notifications = %v, want one call at level 2", recorder.calls)
	}

	// A second small grant stays inside level 2 and must not notify.
	if _, err := orch.ApplyXPWithBonuses(context.Background(), 3, 10, "commit", models.ActivityCommit); err != nil {
		t.Fatalf("ApplyXPWithBonuses returned error: %v", err)
	}
	if len(recorder.calls) != 1 {
		t.Errorf("level-up notifications = %v, want still one call", recorder.calls)
	}
}
