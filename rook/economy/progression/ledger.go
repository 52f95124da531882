package progression

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"github.com/rookgg/rook/rook/database/models"
	"github.com/rookgg/rook/rook/database/repositories"
	"github.com/rookgg/rook/rook/logger"
)

// Publisher is the slice of the event bus the ledger needs.
type Publisher interface {
	Publish(name string, payload any)
}

// Result describes the outcome of a single XP grant.
type Result struct {
	Amount       int64
	TotalXP      int64
	OldLevel     int
	NewLevel     int
	LeveledUp    bool
	Streak       int
	Achievements []*models.Achievement
}

// Ledger applies XP grants. Every grant is one append-only activity row plus
// a stats update, so total_xp can always be rebuilt from the log.
type Ledger struct {
	stats        repositories.StatsRepository
	activities   repositories.ActivityRepository
	achievements repositories.AchievementRepository
	bus          Publisher
	codeCache    *lru.Cache
	now          func() time.Time
}

func NewLedger(
	stats repositories.StatsRepository,
	activities repositories.ActivityRepository,
	achievements repositories.AchievementRepository,
	bus Publisher,
) *Ledger {
	cache, _ := lru.New(64)
	return &Ledger{
		stats:        stats,
		activities:   activities,
		achievements: achievements,
		bus:          bus,
		codeCache:    cache,
		now:          time.Now,
	}
}

// ApplyXP records the grant, advances the streak and unlocks any achievements
// the new totals earn. Amount must be non-negative; zero-amount grants are
// allowed for sentinel entries.
func (l *Ledger) ApplyXP(ctx context.Context, userID int64, amount int64, reason, activityType string) (*Result, error) {
	if amount < 0 {
		return nil, fmt.Errorf("xp amount must be non-negative, got %d", amount)
	}

	if err := l.stats.Ensure(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to ensure stats row: %w", err)
	}

	stats, err := l.stats.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load stats: %w", err)
	}

	now := l.now().UTC()
	oldLevel := Level(stats.TotalXP)
	newTotal := stats.TotalXP + amount
	newLevel := Level(newTotal)
	streak := CalculateStreakUTC(stats.Streak, stats.LastActive, now)

	if err := l.activities.Append(ctx, &models.XPActivity{
		UserID:       userID,
		Amount:       amount,
		Reason:       reason,
		ActivityType: activityType,
	}); err != nil {
		return nil, fmt.Errorf("failed to append activity: %w", err)
	}

	if err := l.stats.SetProgress(ctx, userID, newTotal, streak); err != nil {
		return nil, fmt.Errorf("failed to update stats: %w", err)
	}

	result := &Result{
		Amount:    amount,
		TotalXP:   newTotal,
		OldLevel:  oldLevel,
		NewLevel:  newLevel,
		LeveledUp: newLevel > oldLevel,
		Streak:    streak,
	}

	unlocked, err := l.evaluateAchievements(ctx, userID, newTotal, streak)
	if err != nil {
		// Achievement evaluation is best-effort: the XP is already banked.
		slog.Warn("Achievement evaluation failed",
			slog.String("type", string(logger.TypeEconomy)),
			slog.Int64("user_id", userID),
			slog.String("error", err.Error()),
		)
	} else {
		result.Achievements = unlocked
	}

	if l.bus != nil {
		l.bus.Publish("leaderboard:update", map[string]any{
			"userId":  userID,
			"totalXp": newTotal,
			"delta":   amount,
		})
	}

	return result, nil
}

// Recent returns the user's latest activity entries, newest first.
func (l *Ledger) Recent(ctx context.Context, userID int64, limit int) ([]*models.XPActivity, error) {
	return l.activities.Recent(ctx, userID, limit)
}

// Stats loads the user's progression snapshot, with the level derived.
func (l *Ledger) Stats(ctx context.Context, userID int64) (*models.UserStats, int, error) {
	stats, err := l.stats.Get(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return stats, Level(stats.TotalXP), nil
}

func (l *Ledger) evaluateAchievements(ctx context.Context, userID, totalXP int64, streak int) ([]*models.Achievement, error) {
	var codes []string
	if totalXP > 0 {
		codes = append(codes, models.AchievementFirstBlood)
	}
	if streak >= 3 {
		codes = append(codes, models.AchievementStreak3)
	}
	if streak >= 7 {
		codes = append(codes, models.AchievementStreak7)
	}
	if totalXP >= 1000 {
		codes = append(codes, models.AchievementXP1000)
	}

	var unlocked []*models.Achievement
	for _, code := range codes {
		achievement, err := l.achievementByCode(ctx, code)
		if err != nil {
			return unlocked, err
		}
		if achievement == nil {
			continue
		}
		fresh, err := l.achievements.Unlock(ctx, userID, achievement.ID)
		if err != nil {
			return unlocked, err
		}
		if fresh {
			unlocked = append(unlocked, achievement)
			if l.bus != nil {
				l.bus.Publish("achievement:unlocked", map[string]any{
					"userId": userID,
					"code":   achievement.Code,
					"name":   achievement.Name,
				})
			}
		}
	}
	return unlocked, nil
}

func (l *Ledger) achievementByCode(ctx context.Context, code string) (*models.Achievement, error) {
	if cached, ok := l.codeCache.Get(code); ok {
		return cached.(*models.Achievement), nil
	}
	achievement, err := l.achievements.ByCode(ctx, code)
	if err != nil || achievement == nil {
		return achievement, err
	}
	l.codeCache.Add(code, achievement)
	return achievement, nil
}
