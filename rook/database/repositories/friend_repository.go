package repositories

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/rookgg/rook/rook/database/models"
)

// FriendEntry is a friend row joined with profile data for the social view.
type FriendEntry struct {
	UserID   int64  `bun:"id"`
	Username string `bun:"username"`
	Streak   int    `bun:"streak"`
}

type FriendRepository interface {
	Add(ctx context.Context, userID, friendID int64) error
	Remove(ctx context.Context, userID, friendID int64) error
	List(ctx context.Context, userID int64) ([]FriendEntry, error)
}

type friendRepository struct {
	db *bun.DB
}

func NewFriendRepository(db *bun.DB) FriendRepository {
	return &friendRepository{db: db}
}

// orderedPair normalizes the pair so one row represents the friendship in
// both directions.
func orderedPair(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}

func (r *friendRepository) Add(ctx context.Context, userID, friendID int64) error {
	lo, hi := orderedPair(userID, friendID)
	_, err := r.db.NewInsert().
		Model(&models.Friendship{UserID: lo, FriendID: hi}).
		On("CONFLICT DO NOTHING").
		Exec(ctx)
	return err
}

func (r *friendRepository) Remove(ctx context.Context, userID, friendID int64) error {
	lo, hi := orderedPair(userID, friendID)
	_, err := r.db.NewDelete().
		Model((*models.Friendship)(nil)).
		Where("user_id = ?", lo).
		Where("friend_id = ?", hi).
		Exec(ctx)
	return err
}

func (r *friendRepository) List(ctx context.Context, userID int64) ([]FriendEntry, error) {
	var entries []FriendEntry
	err := r.db.NewSelect().
		ColumnExpr("u.id, u.username, COALESCE(s.streak, 0) AS streak").
		TableExpr("friendships f").
		Join("JOIN users u ON u.id = CASE WHEN f.user_id = ? THEN f.friend_id ELSE f.user_id END", userID).
		Join("LEFT JOIN user_stats s ON s.user_id = u.id").
		Where("f.user_id = ? OR f.friend_id = ?", userID, userID).
		Scan(ctx, &entries)
	return entries, err
}
