package guilds

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/rookgg/rook/rook/database"
	"github.com/rookgg/rook/rook/database/models"
	"github.com/rookgg/rook/rook/database/repositories"
	"github.com/rookgg/rook/rook/economy/utils"
)

// Members active inside this window count toward the guild bonus.
const activeWindowDays = 3

var (
	ErrNameTaken     = errors.New("guild name already taken")
	ErrGuildNotFound = errors.New("guild not found")
	ErrNoGuild       = errors.New("user is not in a guild")
)

// Member is a guild roster entry with activity data joined in.
type Member struct {
	UserID     int64     `bun:"user_id" json:"userId"`
	Role       string    `bun:"role" json:"role"`
	Username   string    `bun:"username" json:"username"`
	LastActive time.Time `bun:"last_active" json:"lastActive"`
}

// Info is a guild with its roster.
type Info struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	Members   []Member  `json:"members"`
}

// Summary is the bonus view for one member.
type Summary struct {
	Name       string  `json:"name"`
	Members    int     `json:"members"`
	Active     int     `json:"active"`
	Bonus      float64 `json:"bonus"`
	Multiplier float64 `json:"multiplier"`
}

// Manager owns guild membership and the guild XP bonus. Membership writes go
// through transactions because they touch both guild_members and user_stats.
type Manager struct {
	db    *database.DB
	tx    *utils.EconomicTransactionManager
	stats repositories.StatsRepository
	now   func() time.Time
}

func NewManager(db *database.DB, tx *utils.EconomicTransactionManager, stats repositories.StatsRepository) *Manager {
	return &Manager{db: db, tx: tx, stats: stats, now: time.Now}
}

// Create makes a new guild with the owner as leader.
func (m *Manager) Create(ctx context.Context, name string, ownerID int64) (int64, error) {
	if err := m.stats.Ensure(ctx, ownerID); err != nil {
		return 0, fmt.Errorf("failed to ensure stats row: %w", err)
	}

	var guildID int64
	err := m.tx.WithTransaction(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		guild := &models.Guild{Name: name}
		res, err := tx.NewInsert().
			Model(guild).
			On("CONFLICT (name) DO NOTHING").
			Returning("id").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to insert guild: %w", err)
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			return ErrNameTaken
		}
		guildID = guild.ID

		if _, err := tx.NewInsert().
			Model(&models.GuildMember{UserID: ownerID, GuildID: guildID, Role: models.GuildRoleLeader}).
			On("CONFLICT (user_id) DO UPDATE").
			Set("guild_id = EXCLUDED.guild_id, role = EXCLUDED.role").
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to add leader: %w", err)
		}

		if _, err := tx.NewUpdate().
			Model((*models.UserStats)(nil)).
			Set("guild_id = ?", guildID).
			Where("user_id = ?", ownerID).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to link stats row: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return guildID, nil
}

// Join adds the user to a guild by id or, when id is zero, by name. Joining
// while already in a guild moves the user.
func (m *Manager) Join(ctx context.Context, userID, guildID int64, name string) (int64, error) {
	if err := m.stats.Ensure(ctx, userID); err != nil {
		return 0, fmt.Errorf("failed to ensure stats row: %w", err)
	}

	if guildID == 0 {
		guild := new(models.Guild)
		err := m.db.BunDB().NewSelect().
			Model(guild).
			Where("name = ?", name).
			Limit(1).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return 0, ErrGuildNotFound
			}
			return 0, fmt.Errorf("failed to find guild: %w", err)
		}
		guildID = guild.ID
	}

	err := m.tx.WithTransaction(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().
			Model((*models.Guild)(nil)).
			Where("id = ?", guildID).
			Exists(ctx)
		if err != nil {
			return fmt.Errorf("failed to check guild: %w", err)
		}
		if !exists {
			return ErrGuildNotFound
		}

		if _, err := tx.NewInsert().
			Model(&models.GuildMember{UserID: userID, GuildID: guildID, Role: models.GuildRoleMember}).
			On("CONFLICT (user_id) DO UPDATE").
			Set("guild_id = EXCLUDED.guild_id, role = ?", models.GuildRoleMember).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to add member: %w", err)
		}

		if _, err := tx.NewUpdate().
			Model((*models.UserStats)(nil)).
			Set("guild_id = ?", guildID).
			Where("user_id = ?", userID).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to link stats row: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return guildID, nil
}

// Leave removes the user from their guild and returns the guild they left.
func (m *Manager) Leave(ctx context.Context, userID int64) (int64, error) {
	var guildID int64
	err := m.tx.WithTransaction(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		member := new(models.GuildMember)
		err := tx.NewSelect().
			Model(member).
			Where("user_id = ?", userID).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNoGuild
			}
			return fmt.Errorf("failed to load membership: %w", err)
		}
		guildID = member.GuildID

		if _, err := tx.NewDelete().
			Model((*models.GuildMember)(nil)).
			Where("user_id = ?", userID).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to remove member: %w", err)
		}

		if _, err := tx.NewUpdate().
			Model((*models.UserStats)(nil)).
			Set("guild_id = NULL").
			Where("user_id = ?", userID).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to unlink stats row: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return guildID, nil
}

// Invite records a pending invite. With guildID zero the inviter's own guild
// is used.
func (m *Manager) Invite(ctx context.Context, guildID, userID, invitedBy int64) (int64, error) {
	if guildID == 0 {
		member := new(models.GuildMember)
		err := m.db.BunDB().NewSelect().
			Model(member).
			Where("user_id = ?", invitedBy).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return 0, ErrNoGuild
			}
			return 0, fmt.Errorf("failed to resolve inviter guild: %w", err)
		}
		guildID = member.GuildID
	}

	_, err := m.db.BunDB().NewInsert().
		Model(&models.GuildInvite{GuildID: guildID, UserID: userID, InvitedBy: invitedBy, Status: models.GuildInvitePending}).
		On("CONFLICT (guild_id, user_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to record invite: %w", err)
	}
	return guildID, nil
}

// InfoByID loads a guild and its roster, or nil when it does not exist.
func (m *Manager) InfoByID(ctx context.Context, guildID int64) (*Info, error) {
	guild := new(models.Guild)
	err := m.db.BunDB().NewSelect().
		Model(guild).
		Where("id = ?", guildID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load guild: %w", err)
	}

	var members []Member
	err = m.db.BunDB().NewSelect().
		ColumnExpr("gm.user_id, gm.role, u.username, COALESCE(s.last_active, to_timestamp(0)) AS last_active").
		TableExpr("guild_members gm").
		Join("JOIN users u ON u.id = gm.user_id").
		Join("LEFT JOIN user_stats s ON s.user_id = gm.user_id").
		Where("gm.guild_id = ?", guildID).
		Scan(ctx, &members)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}

	return &Info{ID: guild.ID, Name: guild.Name, CreatedAt: guild.CreatedAt, Members: members}, nil
}

// InfoForUser resolves the user's guild, or nil when they have none.
func (m *Manager) InfoForUser(ctx context.Context, userID int64) (*Info, error) {
	member := new(models.GuildMember)
	err := m.db.BunDB().NewSelect().
		Model(member).
		Where("user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to resolve guild: %w", err)
	}
	return m.InfoByID(ctx, member.GuildID)
}

// XPMultiplier returns the guild bonus for a user: 1% per other member
// active within the window, capped at 10%. Users without a guild get 1.
func (m *Manager) XPMultiplier(ctx context.Context, userID int64) (float64, error) {
	info, err := m.InfoForUser(ctx, userID)
	if err != nil {
		return 1, err
	}
	if info == nil {
		return 1, nil
	}
	_, _, multiplier := activeBonus(info.Members, userID, m.now().UTC())
	return multiplier, nil
}

// SummaryForUser returns the bonus breakdown, or nil without a guild.
func (m *Manager) SummaryForUser(ctx context.Context, userID int64) (*Summary, error) {
	info, err := m.InfoForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, nil
	}
	active, bonus, multiplier := activeBonus(info.Members, userID, m.now().UTC())
	return &Summary{
		Name:       info.Name,
		Members:    len(info.Members),
		Active:     active,
		Bonus:      bonus,
		Multiplier: multiplier,
	}, nil
}

func activeBonus(members []Member, excludeUserID int64, now time.Time) (int, float64, float64) {
	since := now.AddDate(0, 0, -activeWindowDays)
	active := 0
	for _, member := range members {
		if member.UserID == excludeUserID {
			continue
		}
		if !member.LastActive.IsZero() && !member.LastActive.Before(since) {
			active++
		}
	}
	bonus := 0.01 * float64(active)
	if bonus > 0.10 {
		bonus = 0.10
	}
	return active, bonus, 1 + bonus
}
