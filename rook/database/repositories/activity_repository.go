package repositories

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/rookgg/rook/rook/database/models"
)

type ActivityRepository interface {
	Append(ctx context.Context, entry *models.XPActivity) error
	Recent(ctx context.Context, userID int64, limit int) ([]*models.XPActivity, error)
	HasSentinelToday(ctx context.Context, userID int64, activityType string) (bool, error)
	SentinelCountToday(ctx context.Context, userID int64, activityType string) (int, error)
}

type activityRepository struct {
	db *bun.DB
}

func NewActivityRepository(db *bun.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Append(ctx context.Context, entry *models.XPActivity) error {
	_, err := r.db.NewInsert().Model(entry).Exec(ctx)
	return err
}

func (r *activityRepository) Recent(ctx context.Context, userID int64, limit int) ([]*models.XPActivity, error) {
	var entries []*models.XPActivity
	err := r.db.NewSelect().
		Model(&entries).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Scan(ctx)
	return entries, err
}

// HasSentinelToday reports whether a dedup sentinel of the given activity
// type was already logged during the current UTC day.
func (r *activityRepository) HasSentinelToday(ctx context.Context, userID int64, activityType string) (bool, error) {
	count, err := r.db.NewSelect().
		Model((*models.XPActivity)(nil)).
		Where("user_id = ?", userID).
		Where("activity_type = ?", activityType).
		Where("created_at::date = CURRENT_DATE").
		Limit(1).
		Count(ctx)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *activityRepository) SentinelCountToday(ctx context.Context, userID int64, activityType string) (int, error) {
	return r.db.NewSelect().
		Model((*models.XPActivity)(nil)).
		Where("user_id = ?", userID).
		Where("activity_type = ?", activityType).
		Where("created_at::date = CURRENT_DATE").
		Count(ctx)
}
