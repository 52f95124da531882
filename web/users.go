package web

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilm/fuzzy"

	"github.com/rookgg/rook/rook/database/models"
	"github.com/rookgg/rook/rook/economy/progression"
)

const shareBaseURL = "https://rook.gg/share"

type registerRequest struct {
	GithubID    string `json:"githubId"`
	Username    string `json:"username"`
	GithubToken string `json:"githubToken"`
}

// RegisterUser creates or refreshes a user keyed by GitHub id.
func RegisterUser(a *App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req registerRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
		if req.GithubID == "" || req.Username == "" {
			return badRequest(c, "githubId and username are required")
		}

		user, err := a.Users.Register(c.Context(), req.GithubID, req.Username, req.GithubToken)
		if err != nil {
			return internalError(c, err)
		}
		if err := a.Stats.Ensure(c.Context(), user.ID); err != nil {
			return internalError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"userId":   user.ID,
			"githubId": user.GithubID,
			"username": user.Username,
		})
	}
}

// UserStats returns the progression projection for one user.
func UserStats(a *App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := paramInt64(c, "userId")
		if err != nil {
			return badRequest(c, "invalid user id")
		}

		user, err := a.Users.GetByID(c.Context(), userID)
		if err != nil {
			return internalError(c, err)
		}
		if user == nil {
			return notFound(c, "user not found")
		}

		stats, err := a.Stats.Get(c.Context(), userID)
		if err != nil {
			return internalError(c, err)
		}
		unlocked, err := a.Achievements.ListUnlocked(c.Context(), userID)
		if err != nil {
			return internalError(c, err)
		}

		achievements := make([]fiber.Map, 0, len(unlocked))
		for _, ua := range unlocked {
			entry := fiber.Map{"unlockedAt": ua.UnlockedAt}
			if ua.Achievement != nil {
				entry["code"] = ua.Achievement.Code
				entry["name"] = ua.Achievement.Name
				entry["rarity"] = ua.Achievement.Rarity
			}
			achievements = append(achievements, entry)
		}

		return c.JSON(fiber.Map{
			"userId":        user.ID,
			"username":      user.Username,
			"totalXp":       stats.TotalXP,
			"level":         progression.Level(stats.TotalXP),
			"streak":        stats.Streak,
			"questStreak":   stats.QuestStreak,
			"craftingLevel": stats.CraftingLevel,
			"craftingXp":    stats.CraftingXP,
			"luckMeter":     stats.LuckMeter,
			"achievements":  achievements,
		})
	}
}

type grantRequest struct {
	Amount       int64  `json:"amount"`
	Reason       string `json:"reason"`
	ActivityType string `json:"activityType"`
}

// GrantXP applies a manual XP grant. Manual grants go through the same bonus
// pipeline as webhook-driven ones.
func GrantXP(a *App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := paramInt64(c, "userId")
		if err != nil {
			return badRequest(c, "invalid user id")
		}
		var req grantRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
		if req.Amount <= 0 {
			return badRequest(c, "amount must be positive")
		}
		if req.Reason == "" {
			req.Reason = "Manual grant"
		}
		if req.ActivityType == "" {
			req.ActivityType = models.ActivityManual
		}

		result, err := a.Orchestrator.ApplyXPWithBonuses(c.Context(), userID, req.Amount, req.Reason, req.ActivityType)
		if err != nil {
			return mapDomainError(c, err)
		}
		if err := settleGrant(c.Context(), a, userID, result); err != nil {
			return internalError(c, err)
		}
		return c.JSON(result)
	}
}

// UserActivity returns the most recent XP log entries.
func UserActivity(a *App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := paramInt64(c, "userId")
		if err != nil {
			return badRequest(c, "invalid user id")
		}
		limit := c.QueryInt("limit", 10)
		if limit < 1 || limit > 100 {
			limit = 10
		}

		entries, err := a.Activities.Recent(c.Context(), userID, limit)
		if err != nil {
			return internalError(c, err)
		}
		activity := make([]fiber.Map, 0, len(entries))
		for _, e := range entries {
			activity = append(activity, fiber.Map{
				"amount":       e.Amount,
				"reason":       e.Reason,
				"activityType": e.ActivityType,
				"createdAt":    e.CreatedAt,
			})
		}
		return c.JSON(fiber.Map{"userId": userID, "activity": activity})
	}
}

// UserInventory lists owned loot, optionally narrowed by a fuzzy name search.
func UserInventory(a *App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := paramInt64(c, "userId")
		if err != nil {
			return badRequest(c, "invalid user id")
		}

		drops, err := a.LootRepo.Inventory(c.Context(), userID)
		if err != nil {
			return internalError(c, err)
		}

		if search := strings.TrimSpace(c.Query("search")); search != "" {
			names := make([]string, len(drops))
			for i, d := range drops {
				if d.Item != nil {
					names[i] = d.Item.Name
				}
			}
			matches := fuzzy.Find(search, names)
			filtered := make([]*models.LootDrop, 0, len(matches))
			for _, m := range matches {
				filtered = append(filtered, drops[m.Index])
			}
			drops = filtered
		}

		items := make([]fiber.Map, 0, len(drops))
		for _, d := range drops {
			entry := fiber.Map{
				"itemId":     d.ItemID,
				"quantity":   d.Quantity,
				"obtainedAt": d.ObtainedAt,
			}
			if d.Item != nil {
				entry["name"] = d.Item.Name
				entry["rarity"] = d.Item.Rarity
				entry["icon"] = d.Item.Icon
			}
			items = append(items, entry)
		}
		return c.JSON(fiber.Map{"userId": userID, "inventory": items})
	}
}

// ShareAchievement builds a public share link for an unlocked achievement.
func ShareAchievement(a *App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := paramInt64(c, "userId")
		if err != nil {
			return badRequest(c, "invalid user id")
		}
		achievementID, err := paramInt64(c, "achievementId")
		if err != nil {
			return badRequest(c, "invalid achievement id")
		}

		unlocked, err := a.Achievements.ListUnlocked(c.Context(), userID)
		if err != nil {
			return internalError(c, err)
		}
		owned := false
		for _, ua := range unlocked {
			if ua.AchievementID == achievementID {
				owned = true
				break
			}
		}
		if !owned {
			return notFound(c, "achievement not unlocked")
		}

		platform := c.Query("platform", "twitter")
		url := fmt.Sprintf("%s/%s/%s?platform=%s",
			shareBaseURL,
			strconv.FormatInt(userID, 10),
			strconv.FormatInt(achievementID, 10),
			platform)
		return c.JSON(fiber.Map{"shareUrl": url, "platform": platform})
	}
}

// CoachTip returns an optional advisory tip. An empty tip is a valid answer.
func CoachTip(a *App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := paramInt64(c, "userId")
		if err != nil {
			return badRequest(c, "invalid user id")
		}
		user, err := a.Users.GetByID(c.Context(), userID)
		if err != nil {
			return internalError(c, err)
		}
		if user == nil {
			return notFound(c, "user not found")
		}

		tip, err := a.Coach.Tip(c.Context(), userID, user.Username)
		if err != nil {
			return internalError(c, err)
		}
		return c.JSON(fiber.Map{"tip": tip})
	}
}
