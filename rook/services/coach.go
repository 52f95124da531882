package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rookgg/rook/rook/database/models"
	"github.com/rookgg/rook/rook/database/repositories"
	"github.com/rookgg/rook/rook/logger"
)

const openAIChatURL = "https://api.openai.com/v1/chat/completions"

// Coach turns a user's quest board and recent activity into one short tip
// via a chat completion. Without an API key every call returns empty; the
// feature degrades, the endpoint does not.
type Coach struct {
	apiKey     string
	model      string
	stats      repositories.StatsRepository
	activities repositories.ActivityRepository
	quests     *QuestService
	httpClient *http.Client
}

func NewCoach(apiKey, model string, stats repositories.StatsRepository, activities repositories.ActivityRepository, quests *QuestService) *Coach {
	if model == "" {
		model = "gpt-3.5-turbo"
	}
	return &Coach{
		apiKey:     apiKey,
		model:      model,
		stats:      stats,
		activities: activities,
		quests:     quests,
		httpClient: &http.Client{Timeout: 20 * time.Second},
	}
}

type chatRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	Messages  []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Tip generates a coaching tip, or "" when the coach is unconfigured or the
// upstream call fails.
func (c *Coach) Tip(ctx context.Context, userID int64, username string) (string, error) {
	if c.apiKey == "" {
		return "", nil
	}

	prompt, err := c.buildPrompt(ctx, userID, username)
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(chatRequest{
		Model:     c.model,
		MaxTokens: 60,
		Messages:  []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, openAIChatURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.LogError("Coach tip request failed", err)
		return "", nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		logger.LogError("Coach tip rejected", fmt.Errorf("status %d: %s", resp.StatusCode, detail))
		return "", nil
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		logger.LogError("Coach tip decode failed", err)
		return "", nil
	}
	if len(parsed.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

func (c *Coach) buildPrompt(ctx context.Context, userID int64, username string) (string, error) {
	stats, err := c.stats.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	recent, err := c.activities.Recent(ctx, userID, 5)
	if err != nil {
		return "", err
	}
	daily, err := c.quests.EnsureDaily(ctx, userID)
	if err != nil {
		return "", err
	}
	weekly, err := c.quests.EnsureWeekly(ctx, userID)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("You are a playful roguelike coach for developers. Provide ONE short actionable tip.\n")
	fmt.Fprintf(&b, "User: %s\n", username)
	fmt.Fprintf(&b, "Level-ish XP: %d, Streak: %d\n", stats.TotalXP, stats.Streak)
	fmt.Fprintf(&b, "Daily quests remaining: %s\n", incompleteList(daily))
	fmt.Fprintf(&b, "Weekly quests remaining: %s\n", incompleteList(weekly))
	fmt.Fprintf(&b, "Recent XP: %s\n", recentList(recent))
	b.WriteString("Reply with a single sentence, keep it fun, <= 25 words, add one emoji.")
	return b.String(), nil
}

func incompleteList(quests []*models.Quest) string {
	var parts []string
	for _, quest := range quests {
		if quest.Completed {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s (%d/%d)", quest.Title, quest.ProgressCurrent, quest.ProgressTotal))
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "; ")
}

func recentList(entries []*models.XPActivity) string {
	var parts []string
	for _, entry := range entries {
		reason := entry.Reason
		if reason == "" {
			reason = entry.ActivityType
		}
		if reason == "" {
			reason = "activity"
		}
		parts = append(parts, fmt.Sprintf("%d for %s", entry.Amount, reason))
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "; ")
}
