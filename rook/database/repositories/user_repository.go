package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/rookgg/rook/rook/database/models"
)

type UserRepository interface {
	Register(ctx context.Context, githubID, username, token string) (*models.User, error)
	GetByID(ctx context.Context, userID int64) (*models.User, error)
	GetByGithubID(ctx context.Context, githubID string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UsernamesByIDs(ctx context.Context, userIDs []int64) (map[int64]string, error)
}

type userRepository struct {
	db *bun.DB
}

func NewUserRepository(db *bun.DB) UserRepository {
	return &userRepository{db: db}
}

// Register creates the user on first contact and refreshes username/token on
// every subsequent login.
func (r *userRepository) Register(ctx context.Context, githubID, username, token string) (*models.User, error) {
	user := &models.User{
		GithubID:    githubID,
		Username:    username,
		GithubToken: token,
	}
	_, err := r.db.NewInsert().
		Model(user).
		On("CONFLICT (github_id) DO UPDATE").
		Set("username = EXCLUDED.username").
		Set("github_token = EXCLUDED.github_token").
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	return user, nil
}

func (r *userRepository) GetByID(ctx context.Context, userID int64) (*models.User, error) {
	user := new(models.User)
	err := r.db.NewSelect().
		Model(user).
		Where("id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

func (r *userRepository) GetByGithubID(ctx context.Context, githubID string) (*models.User, error) {
	user := new(models.User)
	err := r.db.NewSelect().
		Model(user).
		Where("github_id = ?", githubID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user := new(models.User)
	err := r.db.NewSelect().
		Model(user).
		Where("username = ?", username).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

func (r *userRepository) UsernamesByIDs(ctx context.Context, userIDs []int64) (map[int64]string, error) {
	if len(userIDs) == 0 {
		return map[int64]string{}, nil
	}
	var users []models.User
	err := r.db.NewSelect().
		Model(&users).
		Where("id IN (?)", bun.In(userIDs)).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Username
	}
	return names, nil
}
