package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/disgo/webhook"
	"golang.org/x/sync/errgroup"

	"github.com/rookgg/rook/rook/database/models"
	"github.com/rookgg/rook/rook/database/repositories"
	"github.com/rookgg/rook/rook/logger"
)

// Notifier fans progression milestones out to the user's configured Slack
// and Discord webhooks. Delivery is best-effort: a dead webhook never fails
// the operation that triggered it.
type Notifier struct {
	integrations repositories.NotificationRepository
	users        repositories.UserRepository
	httpClient   *http.Client
}

func NewNotifier(integrations repositories.NotificationRepository, users repositories.UserRepository) *Notifier {
	return &Notifier{
		integrations: integrations,
		users:        users,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *Notifier) username(ctx context.Context, userID int64) string {
	user, err := n.users.GetByID(ctx, userID)
	if err != nil || user == nil {
		return fmt.Sprintf("User %d", userID)
	}
	return user.Username
}

func (n *Notifier) dispatch(ctx context.Context, userID int64, message string) {
	integrations, err := n.integrations.List(ctx, userID)
	if err != nil {
		logger.LogError("Failed to list notification integrations", err)
		return
	}
	if len(integrations) == 0 {
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, integration := range integrations {
		g.Go(func() error {
			switch integration.Type {
			case models.IntegrationSlack:
				return n.sendSlack(gctx, integration.WebhookURL, message)
			case models.IntegrationDiscord:
				return n.sendDiscord(gctx, integration.WebhookURL, message)
			default:
				return nil
			}
		})
	}
	if err := g.Wait(); err != nil {
		logger.LogError("Notification delivery failed", err)
	}
}

func (n *Notifier) sendSlack(ctx context.Context, url, message string) error {
	body, err := json.Marshal(map[string]string{"text": message})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("slack webhook failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("slack webhook returned status %d", resp.StatusCode)
	}
	return nil
}

func (n *Notifier) sendDiscord(ctx context.Context, url, message string) error {
	client, err := webhook.NewWithURL(url)
	if err != nil {
		return fmt.Errorf("invalid discord webhook url: %w", err)
	}
	defer client.Close(ctx)

	_, err = client.CreateMessage(discord.WebhookMessageCreate{Content: message}, rest.WithCtx(ctx))
	if err != nil {
		return fmt.Errorf("discord webhook failed: %w", err)
	}
	return nil
}

// LevelUp announces a level gain.
func (n *Notifier) LevelUp(ctx context.Context, userID int64, level int, reason string) {
	if reason == "" {
		reason = "XP milestone"
	}
	message := fmt.Sprintf("🏆 %s reached level %d! (%s)", n.username(ctx, userID), level, reason)
	n.dispatch(ctx, userID, message)
}

// CraftingLegendary announces a legendary craft.
func (n *Notifier) CraftingLegendary(ctx context.Context, userID int64, itemName string) {
	message := fmt.Sprintf("🛠️ %s crafted a legendary item: %s", n.username(ctx, userID), itemName)
	n.dispatch(ctx, userID, message)
}

// PrBattleWin announces a battle victory to the winner's integrations.
func (n *Notifier) PrBattleWin(ctx context.Context, winnerID, opponentID, battleID int64) {
	opponent := "unknown rival"
	if opponentID != 0 {
		opponent = n.username(ctx, opponentID)
	}
	message := fmt.Sprintf("⚔️ %s won a PR Battle against %s! (Battle #%d)",
		n.username(ctx, winnerID), opponent, battleID)
	n.dispatch(ctx, winnerID, message)
}

// WeeklyBoss announces a cleared weekly board.
func (n *Notifier) WeeklyBoss(ctx context.Context, userID int64) {
	message := fmt.Sprintf("🏰 %s cleared all weekly bosses!", n.username(ctx, userID))
	n.dispatch(ctx, userID, message)
}
