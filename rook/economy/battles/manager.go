package battles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/rookgg/rook/rook/database"
	"github.com/rookgg/rook/rook/database/models"
	"github.com/rookgg/rook/rook/economy/utils"
)

// XPGranter applies battle rewards through the shared bonus pipeline.
type XPGranter interface {
	GrantXP(ctx context.Context, userID int64, amount int64, reason, activityType string) error
}

// WinNotifier is told about resolved battles.
type WinNotifier interface {
	PrBattleWin(ctx context.Context, winnerID, opponentID, battleID int64)
}

// Publisher is the slice of the event bus battles need.
type Publisher interface {
	Publish(name string, payload any)
}

// Side is one participant's PR as seen in a battle view.
type Side struct {
	PrNumber int  `json:"prNumber"`
	Reviewed bool `json:"reviewed"`
}

// View is a battle rendered from one participant's perspective: the status
// label depends on who is looking.
type View struct {
	BattleID int64  `json:"battleId"`
	Opponent string `json:"opponent"`
	Status   string `json:"status"`
	You      Side   `json:"you"`
	Them     Side   `json:"them"`
}

// Manager pairs freshly opened PRs into head-to-head battles and resolves
// them on first review.
type Manager struct {
	db      *database.DB
	tx      *utils.EconomicTransactionManager
	granter XPGranter
	notify  WinNotifier
	bus     Publisher
}

func NewManager(db *database.DB, tx *utils.EconomicTransactionManager, granter XPGranter, notify WinNotifier, bus Publisher) *Manager {
	return &Manager{db: db, tx: tx, granter: granter, notify: notify, bus: bus}
}

// HandlePrOpened joins the oldest pending battle opened by someone else
// within the matchmaking window, or opens a new pending battle when none
// fits.
func (m *Manager) HandlePrOpened(ctx context.Context, userID, prID int64, prNumber int, repo, url string) (*View, error) {
	var battleID int64
	err := m.tx.WithTransaction(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		pending := new(models.PrBattle)
		err := tx.NewSelect().
			Model(pending).
			Column("pb.id").
			Join("JOIN pr_battle_participants p ON p.battle_id = pb.id").
			Where("pb.status = ?", models.BattlePending).
			Where("pb.created_at >= ?", time.Now().UTC().Add(-utils.BattleMatchWindow)).
			Where("p.user_id <> ?", userID).
			Order("pb.created_at ASC").
			Limit(1).
			Scan(ctx)
		switch {
		case err == nil:
			battleID = pending.ID
			if _, err := tx.NewUpdate().
				Model((*models.PrBattle)(nil)).
				Set("status = ?", models.BattleActive).
				Set("started_at = NOW()").
				Where("id = ?", battleID).
				Exec(ctx); err != nil {
				return fmt.Errorf("failed to activate battle: %w", err)
			}
		case errors.Is(err, sql.ErrNoRows):
			battle := &models.PrBattle{Status: models.BattlePending, Repo: repo}
			if _, err := tx.NewInsert().
				Model(battle).
				Returning("id").
				Exec(ctx); err != nil {
				return fmt.Errorf("failed to open battle: %w", err)
			}
			battleID = battle.ID
		default:
			return fmt.Errorf("failed to match battle: %w", err)
		}

		if _, err := tx.NewInsert().
			Model(&models.PrBattleParticipant{
				BattleID: battleID,
				UserID:   userID,
				PrID:     prID,
				PrNumber: prNumber,
				PrURL:    url,
			}).
			On("CONFLICT (battle_id, user_id) DO NOTHING").
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to enlist participant: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	view, err := m.viewFor(ctx, battleID, userID)
	if err != nil {
		return nil, err
	}
	if view != nil && m.bus != nil {
		m.bus.Publish("battle:update", view)
	}
	return view, nil
}

// HandlePrReviewed resolves the newest battle holding this PR: the reviewed
// participant wins, the opponent takes the consolation reward. Already
// resolved battles are left alone.
func (m *Manager) HandlePrReviewed(ctx context.Context, prID int64) (*View, error) {
	var battleID, winnerID, opponentID int64
	resolved := false

	err := m.tx.WithTransaction(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var row struct {
			ID           int64  `bun:"id"`
			Status       string `bun:"status"`
			WinnerUserID int64  `bun:"winner_user_id"`
			UserID       int64  `bun:"user_id"`
		}
		err := tx.NewSelect().
			ColumnExpr("pb.id, pb.status, COALESCE(pb.winner_user_id, 0) AS winner_user_id, p.user_id").
			TableExpr("pr_battle_participants p").
			Join("JOIN pr_battles pb ON pb.id = p.battle_id").
			Where("p.pr_id = ?", prID).
			Order("pb.created_at DESC").
			Limit(1).
			Scan(ctx, &row)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return fmt.Errorf("failed to find battle: %w", err)
		}
		if row.Status == models.BattleCompleted || row.WinnerUserID != 0 {
			return nil
		}

		battleID = row.ID
		winnerID = row.UserID

		opponent := new(models.PrBattleParticipant)
		err = tx.NewSelect().
			Model(opponent).
			Where("battle_id = ?", battleID).
			Where("user_id <> ?", winnerID).
			Limit(1).
			Scan(ctx)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to find opponent: %w", err)
		}
		if err == nil {
			opponentID = opponent.UserID
		}

		if _, err := tx.NewUpdate().
			Model((*models.PrBattle)(nil)).
			Set("status = ?", models.BattleCompleted).
			Set("winner_user_id = ?", winnerID).
			Set("ended_at = NOW()").
			Where("id = ?", battleID).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to complete battle: %w", err)
		}
		if _, err := tx.NewUpdate().
			Model((*models.PrBattleParticipant)(nil)).
			Set("reviewed_at = NOW()").
			Where("battle_id = ?", battleID).
			Where("user_id = ?", winnerID).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to mark review: %w", err)
		}
		resolved = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !resolved {
		return nil, nil
	}

	if m.granter != nil {
		if err := m.granter.GrantXP(ctx, winnerID, utils.BattleWinXP, "PR Battle win", models.ActivityPrBattle); err != nil {
			return nil, err
		}
		if opponentID != 0 {
			if err := m.granter.GrantXP(ctx, opponentID, utils.BattleLossXP, "PR Battle loss", models.ActivityPrBattle); err != nil {
				return nil, err
			}
		}
	}

	if m.bus != nil {
		m.bus.Publish("battle:win", map[string]any{
			"battleId": battleID,
			"winner":   winnerID,
			"opponent": opponentID,
		})
	}
	if m.notify != nil {
		m.notify.PrBattleWin(ctx, winnerID, opponentID, battleID)
	}
	return m.viewFor(ctx, battleID, winnerID)
}

// ListUserBattles returns the user's ten most recent battles from their
// perspective.
func (m *Manager) ListUserBattles(ctx context.Context, userID int64) ([]*View, error) {
	var battleIDs []int64
	err := m.db.BunDB().NewSelect().
		ColumnExpr("pb.id").
		TableExpr("pr_battle_participants p").
		Join("JOIN pr_battles pb ON pb.id = p.battle_id").
		Where("p.user_id = ?", userID).
		Order("pb.created_at DESC").
		Limit(10).
		Scan(ctx, &battleIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list battles: %w", err)
	}

	views := make([]*View, 0, len(battleIDs))
	for _, id := range battleIDs {
		view, err := m.viewFor(ctx, id, userID)
		if err != nil {
			return nil, err
		}
		if view != nil {
			views = append(views, view)
		}
	}
	return views, nil
}

func (m *Manager) viewFor(ctx context.Context, battleID, userID int64) (*View, error) {
	var row struct {
		Status       string       `bun:"status"`
		WinnerUserID int64        `bun:"winner_user_id"`
		YouID        int64        `bun:"you_id"`
		YouPr        int          `bun:"you_pr"`
		YouReviewed  sql.NullTime `bun:"you_reviewed"`
		OppPr        int          `bun:"opp_pr"`
		OppReviewed  sql.NullTime `bun:"opp_reviewed"`
		OppName      string       `bun:"opp_name"`
	}
	err := m.db.BunDB().NewSelect().
		ColumnExpr("pb.status, COALESCE(pb.winner_user_id, 0) AS winner_user_id").
		ColumnExpr("p.user_id AS you_id, COALESCE(p.pr_number, 0) AS you_pr, p.reviewed_at AS you_reviewed").
		ColumnExpr("COALESCE(opp.pr_number, 0) AS opp_pr, opp.reviewed_at AS opp_reviewed").
		ColumnExpr("COALESCE(u2.username, '') AS opp_name").
		TableExpr("pr_battle_participants p").
		Join("JOIN pr_battles pb ON pb.id = p.battle_id").
		Join("LEFT JOIN pr_battle_participants opp ON opp.battle_id = pb.id AND opp.user_id <> p.user_id").
		Join("LEFT JOIN users u2 ON u2.id = opp.user_id").
		Where("p.battle_id = ?", battleID).
		Where("p.user_id = ?", userID).
		Limit(1).
		Scan(ctx, &row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to build battle view: %w", err)
	}

	view := &View{
		BattleID: battleID,
		Opponent: row.OppName,
		Status:   statusLabel(row.Status, row.WinnerUserID, row.YouID),
		You:      Side{PrNumber: row.YouPr, Reviewed: row.YouReviewed.Valid},
		Them:     Side{PrNumber: row.OppPr, Reviewed: row.OppReviewed.Valid},
	}
	if view.Opponent == "" {
		view.Opponent = "TBD"
	}
	return view, nil
}

// statusLabel renders the battle state from one participant's point of view.
func statusLabel(status string, winnerID, viewerID int64) string {
	switch status {
	case models.BattleCompleted:
		if winnerID == viewerID {
			return "won"
		}
		return "lost"
	case models.BattleActive:
		return "you are WINNING (review pending)"
	case models.BattlePending:
		return "waiting for challenger"
	default:
		return status
	}
}
