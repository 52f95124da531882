package web

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rookgg/rook/rook/economy/battles"
)

// PrestigeSummary returns the user's accumulated prestige state.
func PrestigeSummary(a *App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := paramInt64(c, "userId")
		if err != nil {
			return badRequest(c, "invalid user id")
		}
		summary, err := a.Prestige.SummaryFor(c.Context(), userID)
		if err != nil {
			return internalError(c, err)
		}
		return c.JSON(summary)
	}
}

// PerformPrestige resets the user's progression in exchange for a permanent
// perk bundle. Requires level 20.
func PerformPrestige(a *App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := paramInt64(c, "userId")
		if err != nil {
			return badRequest(c, "invalid user id")
		}
		summary, err := a.Prestige.Perform(c.Context(), userID)
		if err != nil {
			return mapDomainError(c, err)
		}
		return c.JSON(fiber.Map{"prestiged": true, "summary": summary})
	}
}

// ListBattles returns the user's recent PR battles from their perspective.
func ListBattles(a *App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := paramInt64(c, "userId")
		if err != nil {
			return badRequest(c, "invalid user id")
		}
		views, err := a.Battles.ListUserBattles(c.Context(), userID)
		if err != nil {
			return internalError(c, err)
		}
		if views == nil {
			views = []*battles.View{}
		}
		return c.JSON(fiber.Map{"userId": userID, "battles": views})
	}
}
