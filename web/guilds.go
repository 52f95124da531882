package web

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

type createGuildRequest struct {
	Name   string `json:"name"`
	UserID int64  `json:"userId"`
}

// CreateGuild creates a guild with the caller as leader.
func CreateGuild(a *App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createGuildRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
		if strings.TrimSpace(req.Name) == "" || req.UserID == 0 {
			return badRequest(c, "name and userId are required")
		}

		guildID, err := a.Guilds.Create(c.Context(), req.Name, req.UserID)
		if err != nil {
			return mapDomainError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"guildId": guildID,
			"name":    req.Name,
		})
	}
}

type joinGuildRequest struct {
	UserID  int64  `json:"userId"`
	GuildID int64  `json:"guildId"`
	Name    string `json:"name"`
}

// JoinGuild joins by guild id or name. Joining while in another guild moves
// the user.
func JoinGuild(a *App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req joinGuildRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
		if req.UserID == 0 || (req.GuildID == 0 && req.Name == "") {
			return badRequest(c, "userId and guildId or name are required")
		}

		guildID, err := a.Guilds.Join(c.Context(), req.UserID, req.GuildID, req.Name)
		if err != nil {
			return mapDomainError(c, err)
		}
		return c.JSON(fiber.Map{"guildId": guildID, "joined": true})
	}
}

type leaveGuildRequest struct {
	UserID int64 `json:"userId"`
}

// LeaveGuild removes the user from their current guild.
func LeaveGuild(a *App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req leaveGuildRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
		if req.UserID == 0 {
			return badRequest(c, "userId is required")
		}

		guildID, err := a.Guilds.Leave(c.Context(), req.UserID)
		if err != nil {
			return mapDomainError(c, err)
		}
		return c.JSON(fiber.Map{"guildId": guildID, "left": true})
	}
}

type inviteRequest struct {
	GuildID        int64  `json:"guildId"`
	TargetUsername string `json:"targetUsername"`
	TargetUserID   int64  `json:"targetUserId"`
	InvitedBy      int64  `json:"invitedBy"`
}

// InviteToGuild records a pending invite. When guildId is omitted the
// inviter's own guild is used.
func InviteToGuild(a *App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req inviteRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
		if req.InvitedBy == 0 {
			return badRequest(c, "invitedBy is required")
		}

		targetID := req.TargetUserID
		if targetID == 0 {
			if req.TargetUsername == "" {
				return badRequest(c, "targetUserId or targetUsername is required")
			}
			target, err := a.Users.GetByUsername(c.Context(), req.TargetUsername)
			if err != nil {
				return internalError(c, err)
			}
			if target == nil {
				return notFound(c, "user not found")
			}
			targetID = target.ID
		}

		guildID, err := a.Guilds.Invite(c.Context(), req.GuildID, targetID, req.InvitedBy)
		if err != nil {
			return mapDomainError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"guildId": guildID,
			"userId":  targetID,
			"invited": true,
		})
	}
}

// GuildForUser returns the user's guild summary merged with the roster.
func GuildForUser(a *App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := paramInt64(c, "userId")
		if err != nil {
			return badRequest(c, "invalid user id")
		}

		info, err := a.Guilds.InfoForUser(c.Context(), userID)
		if err != nil {
			return mapDomainError(c, err)
		}
		summary, err := a.Guilds.SummaryForUser(c.Context(), userID)
		if err != nil {
			return mapDomainError(c, err)
		}

		return c.JSON(fiber.Map{
			"id":            info.ID,
			"name":          info.Name,
			"createdAt":     info.CreatedAt,
			"members":       info.Members,
			"activeMembers": summary.Active,
			"bonus":         summary.Bonus,
			"multiplier":    summary.Multiplier,
		})
	}
}

// GuildDetail returns one guild with its roster.
func GuildDetail(a *App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		guildID, err := paramInt64(c, "guildId")
		if err != nil {
			return badRequest(c, "invalid guild id")
		}
		info, err := a.Guilds.InfoByID(c.Context(), guildID)
		if err != nil {
			return mapDomainError(c, err)
		}
		return c.JSON(info)
	}
}

// GuildQuests returns the guild's weekly quest board.
func GuildQuests(a *App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		guildID, err := paramInt64(c, "guildId")
		if err != nil {
			return badRequest(c, "invalid guild id")
		}
		quests, err := a.Guilds.Quests(c.Context(), guildID)
		if err != nil {
			return mapDomainError(c, err)
		}
		return c.JSON(fiber.Map{"guildId": guildID, "quests": quests})
	}
}
