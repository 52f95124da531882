package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/rookgg/rook/rook/database/models"
)

type AchievementRepository interface {
	ByCode(ctx context.Context, code string) (*models.Achievement, error)
	Unlock(ctx context.Context, userID, achievementID int64) (bool, error)
	ListUnlocked(ctx context.Context, userID int64) ([]*models.UserAchievement, error)
}

type achievementRepository struct {
	db *bun.DB
}

func NewAchievementRepository(db *bun.DB) AchievementRepository {
	return &achievementRepository{db: db}
}

func (r *achievementRepository) ByCode(ctx context.Context, code string) (*models.Achievement, error) {
	achievement := new(models.Achievement)
	err := r.db.NewSelect().
		Model(achievement).
		Where("code = ?", code).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("achievement not found: %s", code)
		}
		return nil, err
	}
	return achievement, nil
}

// Unlock inserts the unlock row. Returns false when the user already holds
// the achievement; the duplicate attempt is a no-op, not an error.
func (r *achievementRepository) Unlock(ctx context.Context, userID, achievementID int64) (bool, error) {
	result, err := r.db.NewInsert().
		Model(&models.UserAchievement{UserID: userID, AchievementID: achievementID}).
		On("CONFLICT DO NOTHING").
		Exec(ctx)
	if err != nil {
		return false, err
	}
	affected, _ := result.RowsAffected()
	return affected > 0, nil
}

func (r *achievementRepository) ListUnlocked(ctx context.Context, userID int64) ([]*models.UserAchievement, error) {
	var unlocked []*models.UserAchievement
	err := r.db.NewSelect().
		Model(&unlocked).
		Relation("Achievement").
		Where("uach.user_id = ?", userID).
		Order("uach.unlocked_at ASC").
		Scan(ctx)
	return unlocked, err
}
