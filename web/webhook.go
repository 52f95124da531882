package web

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/rookgg/rook/rook/database/models"
	"github.com/rookgg/rook/rook/economy"
	"github.com/rookgg/rook/rook/economy/utils"
)

type webhookSender struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
}

type webhookPR struct {
	ID     int64  `json:"id"`
	Number int    `json:"number"`
	Merged bool   `json:"merged"`
	URL    string `json:"html_url"`
	Base   struct {
		Repo struct {
			FullName string `json:"full_name"`
		} `json:"repo"`
	} `json:"base"`
}

type webhookPayload struct {
	Action      string            `json:"action"`
	Sender      webhookSender     `json:"sender"`
	Commits     []json.RawMessage `json:"commits"`
	PullRequest *webhookPR        `json:"pull_request"`
	Review      json.RawMessage   `json:"review"`
}

// verifySignature checks the HMAC SHA-256 signature GitHub sends with each
// delivery. An unconfigured secret accepts everything.
func verifySignature(secret string, body []byte, signature string) bool {
	if secret == "" {
		return true
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := "sha256=" + hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// GitHubWebhook converts GitHub activity into XP grants, quest progress and
// PR battle transitions.
func GitHubWebhook(a *App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body := c.Body()
		if !verifySignature(a.WebhookSecret, body, c.Get("X-Hub-Signature-256")) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid signature"})
		}

		var payload webhookPayload
		if err := json.Unmarshal(body, &payload); err != nil {
			return badRequest(c, "invalid payload")
		}
		if payload.Sender.ID == 0 {
			return c.JSON(fiber.Map{"status": "ignored"})
		}

		user, err := a.Users.GetByGithubID(c.Context(), strconv.FormatInt(payload.Sender.ID, 10))
		if err != nil {
			return internalError(c, err)
		}
		if user == nil {
			return c.JSON(fiber.Map{"status": "ignored"})
		}

		event := c.Get("X-GitHub-Event")
		result, err := dispatchEvent(c.Context(), a, user.ID, event, &payload)
		if err != nil {
			return internalError(c, err)
		}
		if result == nil {
			return c.JSON(fiber.Map{"status": "ignored"})
		}
		return c.JSON(fiber.Map{
			"status":    "processed",
			"event":     event,
			"appliedXp": result.AppliedXP,
		})
	}
}

// settleGrant runs the quest bookkeeping every boosted grant owes: feeding
// the weekly XP quest and finishing the maintain-streak quest once the user
// holds a streak.
func settleGrant(ctx context.Context, a *App, userID int64, result *economy.GrantResult) error {
	if err := a.Quests.TrackWeeklyXP(ctx, userID, result.AppliedXP); err != nil {
		return err
	}
	if _, err := a.Quests.CompleteMaintainQuest(ctx, userID, result.Streak); err != nil {
		return err
	}
	return nil
}

// dispatchEvent routes one webhook event. A nil result with nil error means
// the event carried nothing XP-worthy.
func dispatchEvent(ctx context.Context, a *App, userID int64, event string, payload *webhookPayload) (*economy.GrantResult, error) {
	switch event {
	case "push":
		return handlePush(ctx, a, userID, payload)
	case "pull_request":
		return handlePullRequest(ctx, a, userID, payload)
	case "pull_request_review":
		return handleReview(ctx, a, userID, payload)
	case "issues":
		return handleIssue(ctx, a, userID, payload)
	default:
		return nil, nil
	}
}

func handlePush(ctx context.Context, a *App, userID int64, payload *webhookPayload) (*economy.GrantResult, error) {
	commits := int64(len(payload.Commits))
	if commits == 0 {
		return nil, nil
	}

	amount := commits * utils.ActivityXP["commit"]
	result, err := a.Orchestrator.ApplyXPWithBonuses(ctx, userID, amount, "GitHub commits", models.ActivityCommit)
	if err != nil {
		return nil, err
	}
	if _, err := a.Quests.UpdateProgress(ctx, userID, "Make 3 commits", commits, models.QuestTypeDaily, true); err != nil {
		return nil, err
	}
	if _, err := a.Quests.UpdateProgress(ctx, userID, "Make 20 commits this week", commits, models.QuestTypeBoss, true); err != nil {
		return nil, err
	}
	if err := settleGrant(ctx, a, userID, result); err != nil {
		return nil, err
	}
	return result, nil
}

func handlePullRequest(ctx context.Context, a *App, userID int64, payload *webhookPayload) (*economy.GrantResult, error) {
	pr := payload.PullRequest
	if pr == nil {
		return nil, nil
	}

	switch {
	case payload.Action == "opened":
		result, err := a.Orchestrator.ApplyXPWithBonuses(ctx, userID, utils.ActivityXP["pr_opened"], "Opened PR", models.ActivityPR)
		if err != nil {
			return nil, err
		}
		if _, err := a.Quests.UpdateProgress(ctx, userID, "Open 1 PR", 1, models.QuestTypeDaily, true); err != nil {
			return nil, err
		}
		if _, err := a.Battles.HandlePrOpened(ctx, userID, pr.ID, pr.Number, pr.Base.Repo.FullName, pr.URL); err != nil {
			return nil, err
		}
		if err := settleGrant(ctx, a, userID, result); err != nil {
			return nil, err
		}
		return result, nil

	case payload.Action == "closed" && pr.Merged:
		result, err := a.Orchestrator.ApplyXPWithBonuses(ctx, userID, utils.ActivityXP["pr_merged"], "Merged PR", models.ActivityPR)
		if err != nil {
			return nil, err
		}
		if _, err := a.Quests.UpdateProgress(ctx, userID, "Merge 3 PRs this week", 1, models.QuestTypeBoss, true); err != nil {
			return nil, err
		}
		if err := settleGrant(ctx, a, userID, result); err != nil {
			return nil, err
		}
		return result, nil
	}
	return nil, nil
}

func handleReview(ctx context.Context, a *App, userID int64, payload *webhookPayload) (*economy.GrantResult, error) {
	if payload.Action != "submitted" || payload.PullRequest == nil {
		return nil, nil
	}

	result, err := a.Orchestrator.ApplyXPWithBonuses(ctx, userID, utils.ActivityXP["pr_reviewed"], "Reviewed PR", models.ActivityReview)
	if err != nil {
		return nil, err
	}
	if _, err := a.Quests.UpdateProgress(ctx, userID, "Review 2 PRs", 1, models.QuestTypeDaily, true); err != nil {
		return nil, err
	}
	if _, err := a.Battles.HandlePrReviewed(ctx, payload.PullRequest.ID); err != nil {
		return nil, err
	}
	if err := settleGrant(ctx, a, userID, result); err != nil {
		return nil, err
	}
	return result, nil
}

func handleIssue(ctx context.Context, a *App, userID int64, payload *webhookPayload) (*economy.GrantResult, error) {
	var amount int64
	var reason string
	switch payload.Action {
	case "opened":
		amount, reason = utils.ActivityXP["issue_opened"], "Opened issue"
	case "closed":
		amount, reason = utils.ActivityXP["issue_closed"], "Closed issue"
	default:
		return nil, nil
	}

	result, err := a.Orchestrator.ApplyXPWithBonuses(ctx, userID, amount, reason, models.ActivityIssue)
	if err != nil {
		return nil, err
	}
	if payload.Action == "closed" {
		if _, err := a.Quests.UpdateProgress(ctx, userID, "Close 1 issue", 1, models.QuestTypeDaily, true); err != nil {
			return nil, err
		}
	}
	if err := settleGrant(ctx, a, userID, result); err != nil {
		return nil, err
	}
	return result, nil
}
