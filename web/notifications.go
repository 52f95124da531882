package web

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/rookgg/rook/rook/database/models"
)

type integrationRequest struct {
	Type       string `json:"type"`
	WebhookURL string `json:"webhookUrl"`
}

// ListIntegrations returns the user's notification integrations.
func ListIntegrations(a *App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := paramInt64(c, "userId")
		if err != nil {
			return badRequest(c, "invalid user id")
		}
		integrations, err := a.Integrations.List(c.Context(), userID)
		if err != nil {
			return internalError(c, err)
		}
		out := make([]fiber.Map, 0, len(integrations))
		for _, in := range integrations {
			out = append(out, fiber.Map{
				"type":       in.Type,
				"webhookUrl": in.WebhookURL,
			})
		}
		return c.JSON(fiber.Map{"userId": userID, "integrations": out})
	}
}

// UpsertIntegration creates or replaces one integration for the user.
func UpsertIntegration(a *App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := paramInt64(c, "userId")
		if err != nil {
			return badRequest(c, "invalid user id")
		}
		var req integrationRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
		req.Type = strings.ToLower(req.Type)
		if req.Type != models.IntegrationSlack && req.Type != models.IntegrationDiscord {
			return badRequest(c, "type must be slack or discord")
		}
		if !strings.HasPrefix(req.WebhookURL, "https://") {
			return badRequest(c, "webhookUrl must be an https URL")
		}

		integration := &models.NotificationIntegration{
			UserID:     userID,
			Type:       req.Type,
			WebhookURL: req.WebhookURL,
		}
		if err := a.Integrations.Upsert(c.Context(), integration); err != nil {
			return internalError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"type":       integration.Type,
			"webhookUrl": integration.WebhookURL,
		})
	}
}

// RemoveIntegration deletes one integration by type.
func RemoveIntegration(a *App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := paramInt64(c, "userId")
		if err != nil {
			return badRequest(c, "invalid user id")
		}
		integrationType := strings.ToLower(c.Params("type"))
		if err := a.Integrations.Remove(c.Context(), userID, integrationType); err != nil {
			return internalError(c, err)
		}
		return c.JSON(fiber.Map{"removed": integrationType})
	}
}
