package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"github.com/rookgg/rook/rook/database/models"
)

type QuestRepository interface {
	DailyForToday(ctx context.Context, userID int64) ([]*models.Quest, error)
	WeeklyForWeek(ctx context.Context, userID int64) ([]*models.Quest, error)
	InsertBatch(ctx context.Context, quests []*models.Quest) error
	FindDailyByTitle(ctx context.Context, userID int64, title string) (*models.Quest, error)
	FindWeeklyByTitle(ctx context.Context, userID int64, title string) (*models.Quest, error)
	ByID(ctx context.Context, questID, userID int64) (*models.Quest, error)
	SetProgress(ctx context.Context, questID, progress int64) error
	MarkCompleted(ctx context.Context, questID int64) error
	RemainingDaily(ctx context.Context, userID int64) (int, error)
	RemainingWeekly(ctx context.Context, userID int64) (int, error)
}

type questRepository struct {
	db *bun.DB
}

func NewQuestRepository(db *bun.DB) QuestRepository {
	return &questRepository{db: db}
}

func (r *questRepository) DailyForToday(ctx context.Context, userID int64) ([]*models.Quest, error) {
	var quests []*models.Quest
	err := r.db.NewSelect().
		Model(&quests).
		Where("user_id = ?", userID).
		Where("type = ?", models.QuestTypeDaily).
		Where("created_at = CURRENT_DATE").
		Order("id ASC").
		Scan(ctx)
	return quests, err
}

func (r *questRepository) WeeklyForWeek(ctx context.Context, userID int64) ([]*models.Quest, error) {
	var quests []*models.Quest
	err := r.db.NewSelect().
		Model(&quests).
		Where("user_id = ?", userID).
		Where("type IN (?)", bun.In([]string{models.QuestTypeBoss, models.QuestTypeWeekly})).
		Where("created_at >= date_trunc('week', CURRENT_DATE)").
		Order("id ASC").
		Scan(ctx)
	return quests, err
}

func (r *questRepository) InsertBatch(ctx context.Context, quests []*models.Quest) error {
	if len(quests) == 0 {
		return nil
	}
	_, err := r.db.NewInsert().Model(&quests).Exec(ctx)
	return err
}

func (r *questRepository) FindDailyByTitle(ctx context.Context, userID int64, title string) (*models.Quest, error) {
	quest := new(models.Quest)
	err := r.db.NewSelect().
		Model(quest).
		Where("user_id = ?", userID).
		Where("title = ?", title).
		Where("type = ?", models.QuestTypeDaily).
		Where("created_at = CURRENT_DATE").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return quest, nil
}

func (r *questRepository) FindWeeklyByTitle(ctx context.Context, userID int64, title string) (*models.Quest, error) {
	quest := new(models.Quest)
	err := r.db.NewSelect().
		Model(quest).
		Where("user_id = ?", userID).
		Where("title = ?", title).
		Where("type IN (?)", bun.In([]string{models.QuestTypeBoss, models.QuestTypeWeekly})).
		Where("created_at >= date_trunc('week', CURRENT_DATE)").
		Order("created_at DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return quest, nil
}

func (r *questRepository) ByID(ctx context.Context, questID, userID int64) (*models.Quest, error) {
	quest := new(models.Quest)
	err := r.db.NewSelect().
		Model(quest).
		Where("id = ?", questID).
		Where("user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return quest, nil
}

func (r *questRepository) SetProgress(ctx context.Context, questID, progress int64) error {
	_, err := r.db.NewUpdate().
		Model((*models.Quest)(nil)).
		Set("progress_current = ?", progress).
		Where("id = ?", questID).
		Exec(ctx)
	return err
}

// MarkCompleted latches the completed flag. The guard in the WHERE clause
// keeps a concurrent double-completion from flipping it twice.
func (r *questRepository) MarkCompleted(ctx context.Context, questID int64) error {
	_, err := r.db.NewUpdate().
		Model((*models.Quest)(nil)).
		Set("completed = true").
		Where("id = ?", questID).
		Where("completed = false").
		Exec(ctx)
	return err
}

func (r *questRepository) RemainingDaily(ctx context.Context, userID int64) (int, error) {
	return r.db.NewSelect().
		Model((*models.Quest)(nil)).
		Where("user_id = ?", userID).
		Where("type = ?", models.QuestTypeDaily).
		Where("created_at = CURRENT_DATE").
		Where("completed = false").
		Count(ctx)
}

func (r *questRepository) RemainingWeekly(ctx context.Context, userID int64) (int, error) {
	return r.db.NewSelect().
		Model((*models.Quest)(nil)).
		Where("user_id = ?", userID).
		Where("type IN (?)", bun.In([]string{models.QuestTypeBoss, models.QuestTypeWeekly})).
		Where("created_at >= date_trunc('week', CURRENT_DATE)").
		Where("completed = false").
		Count(ctx)
}
