package repositories

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/rookgg/rook/rook/database/models"
)

type NotificationRepository interface {
	Upsert(ctx context.Context, integration *models.NotificationIntegration) error
	Remove(ctx context.Context, userID int64, integrationType string) error
	List(ctx context.Context, userID int64) ([]*models.NotificationIntegration, error)
}

type notificationRepository struct {
	db *bun.DB
}

func NewNotificationRepository(db *bun.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Upsert(ctx context.Context, integration *models.NotificationIntegration) error {
	_, err := r.db.NewInsert().
		Model(integration).
		On("CONFLICT (user_id, type) DO UPDATE").
		Set("webhook_url = EXCLUDED.webhook_url").
		Exec(ctx)
	return err
}

func (r *notificationRepository) Remove(ctx context.Context, userID int64, integrationType string) error {
	_, err := r.db.NewDelete().
		Model((*models.NotificationIntegration)(nil)).
		Where("user_id = ?", userID).
		Where("type = ?", integrationType).
		Exec(ctx)
	return err
}

func (r *notificationRepository) List(ctx context.Context, userID int64) ([]*models.NotificationIntegration, error) {
	var integrations []*models.NotificationIntegration
	err := r.db.NewSelect().
		Model(&integrations).
		Where("user_id = ?", userID).
		Scan(ctx)
	return integrations, err
}
