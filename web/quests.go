package web

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rookgg/rook/rook/database/models"
)

func questJSON(q *models.Quest) fiber.Map {
	return fiber.Map{
		"id":          q.ID,
		"title":       q.Title,
		"description": q.Description,
		"xpReward":    q.XPReward,
		"type":        q.Type,
		"completed":   q.Completed,
		"progress": fiber.Map{
			"current": q.ProgressCurrent,
			"total":   q.ProgressTotal,
		},
	}
}

func questBoardJSON(quests []*models.Quest) []fiber.Map {
	board := make([]fiber.Map, 0, len(quests))
	for _, q := range quests {
		board = append(board, questJSON(q))
	}
	return board
}

// DailyQuests returns today's board, generating it on first access.
func DailyQuests(a *App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := paramInt64(c, "userId")
		if err != nil {
			return badRequest(c, "invalid user id")
		}
		quests, err := a.Quests.EnsureDaily(c.Context(), userID)
		if err != nil {
			return internalError(c, err)
		}
		return c.JSON(fiber.Map{"userId": userID, "quests": questBoardJSON(quests)})
	}
}

// WeeklyQuests returns this week's board, generating it on first access.
func WeeklyQuests(a *App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := paramInt64(c, "userId")
		if err != nil {
			return badRequest(c, "invalid user id")
		}
		quests, err := a.Quests.EnsureWeekly(c.Context(), userID)
		if err != nil {
			return internalError(c, err)
		}
		return c.JSON(fiber.Map{"userId": userID, "quests": questBoardJSON(quests)})
	}
}

// CompleteQuest force-completes a quest and pays its reward. Completing an
// already-completed quest returns the quest unchanged with no new grant.
func CompleteQuest(a *App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := paramInt64(c, "userId")
		if err != nil {
			return badRequest(c, "invalid user id")
		}
		questID, err := paramInt64(c, "questId")
		if err != nil {
			return badRequest(c, "invalid quest id")
		}

		update, err := a.Quests.CompleteByID(c.Context(), userID, questID)
		if err != nil {
			return mapDomainError(c, err)
		}

		resp := fiber.Map{
			"quest":     questJSON(update.Quest),
			"completed": update.Completed,
		}
		if update.Grant != nil {
			resp["grant"] = update.Grant
		}
		if update.StreakAfter != nil {
			resp["questStreak"] = update.StreakAfter
		}
		return c.JSON(resp)
	}
}
