package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"

	"github.com/rookgg/rook/rook/database/models"
)

// LeaderboardEntry is a stats row joined with its username for ranking views.
type LeaderboardEntry struct {
	UserID   int64  `bun:"user_id"`
	Username string `bun:"username"`
	TotalXP  int64  `bun:"total_xp"`
	Streak   int    `bun:"streak"`
}

type StatsRepository interface {
	Ensure(ctx context.Context, userID int64) error
	Get(ctx context.Context, userID int64) (*models.UserStats, error)
	SetProgress(ctx context.Context, userID int64, totalXP int64, streak int) error
	SetQuestStreak(ctx context.Context, userID int64, questStreak int) error
	SetCraftingSkill(ctx context.Context, userID int64, xp int64, level int) error
	ResetLuckMeter(ctx context.Context, userID int64) error
	IncrementLuckMeter(ctx context.Context, userID int64) error
	SetGuild(ctx context.Context, userID int64, guildID int64) error
	TopByXP(ctx context.Context, limit int) ([]LeaderboardEntry, error)
}

type statsRepository struct {
	db *bun.DB
}

func NewStatsRepository(db *bun.DB) StatsRepository {
	return &statsRepository{db: db}
}

// Ensure lazily creates the stats row with zero defaults. Safe to call from
// every entry point; concurrent calls resolve via the conflict clause.
func (r *statsRepository) Ensure(ctx context.Context, userID int64) error {
	_, err := r.db.NewInsert().
		Model(&models.UserStats{UserID: userID, CraftingLevel: 1}).
		On("CONFLICT (user_id) DO NOTHING").
		Exec(ctx)
	return err
}

func (r *statsRepository) Get(ctx context.Context, userID int64) (*models.UserStats, error) {
	stats := new(models.UserStats)
	err := r.db.NewSelect().
		Model(stats).
		Where("user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.UserStats{UserID: userID, CraftingLevel: 1}, nil
		}
		return nil, err
	}
	return stats, nil
}

func (r *statsRepository) SetProgress(ctx context.Context, userID int64, totalXP int64, streak int) error {
	_, err := r.db.NewUpdate().
		Model((*models.UserStats)(nil)).
		Set("total_xp = ?", totalXP).
		Set("streak = ?", streak).
		Set("last_active = ?", time.Now().UTC()).
		Set("updated_at = ?", time.Now().UTC()).
		Where("user_id = ?", userID).
		Exec(ctx)
	return err
}

func (r *statsRepository) SetQuestStreak(ctx context.Context, userID int64, questStreak int) error {
	_, err := r.db.NewUpdate().
		Model((*models.UserStats)(nil)).
		Set("quest_streak = ?", questStreak).
		Set("last_quest_completed = CURRENT_DATE").
		Set("updated_at = ?", time.Now().UTC()).
		Where("user_id = ?", userID).
		Exec(ctx)
	return err
}

func (r *statsRepository) SetCraftingSkill(ctx context.Context, userID int64, xp int64, level int) error {
	_, err := r.db.NewUpdate().
		Model((*models.UserStats)(nil)).
		Set("crafting_xp = ?", xp).
		Set("crafting_level = ?", level).
		Set("updated_at = ?", time.Now().UTC()).
		Where("user_id = ?", userID).
		Exec(ctx)
	return err
}

func (r *statsRepository) ResetLuckMeter(ctx context.Context, userID int64) error {
	_, err := r.db.NewUpdate().
		Model((*models.UserStats)(nil)).
		Set("luck_meter = 0").
		Where("user_id = ?", userID).
		Exec(ctx)
	return err
}

func (r *statsRepository) IncrementLuckMeter(ctx context.Context, userID int64) error {
	_, err := r.db.NewUpdate().
		Model((*models.UserStats)(nil)).
		Set("luck_meter = luck_meter + 1").
		Where("user_id = ?", userID).
		Exec(ctx)
	return err
}

func (r *statsRepository) SetGuild(ctx context.Context, userID int64, guildID int64) error {
	q := r.db.NewUpdate().
		Model((*models.UserStats)(nil)).
		Where("user_id = ?", userID)
	if guildID == 0 {
		q = q.Set("guild_id = NULL")
	} else {
		q = q.Set("guild_id = ?", guildID)
	}
	_, err := q.Exec(ctx)
	return err
}

func (r *statsRepository) TopByXP(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	var entries []LeaderboardEntry
	err := r.db.NewSelect().
		Model((*models.UserStats)(nil)).
		ColumnExpr("ust.user_id, u.username, ust.total_xp, ust.streak").
		Join("JOIN users u ON u.id = ust.user_id").
		Order("total_xp DESC").
		Limit(limit).
		Scan(ctx, &entries)
	return entries, err
}
