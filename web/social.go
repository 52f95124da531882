package web

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/rookgg/rook/rook/economy/progression"
)

// GlobalLeaderboard returns the top users by total XP.
func GlobalLeaderboard(a *App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", 10)
		if limit < 1 || limit > 100 {
			limit = 10
		}

		entries, err := a.Stats.TopByXP(c.Context(), limit)
		if err != nil {
			return internalError(c, err)
		}
		board := make([]fiber.Map, 0, len(entries))
		for i, e := range entries {
			board = append(board, fiber.Map{
				"rank":     i + 1,
				"userId":   e.UserID,
				"username": e.Username,
				"totalXp":  e.TotalXP,
				"level":    progression.Level(e.TotalXP),
				"streak":   e.Streak,
			})
		}
		return c.JSON(fiber.Map{"leaderboard": board})
	}
}

// FriendLeaderboard ranks the user and their friends by total XP.
func FriendLeaderboard(a *App) fiber.Handler {
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

		friends, err := a.Friends.List(c.Context(), userID)
		if err != nil {
			return internalError(c, err)
		}

		type row struct {
			UserID   int64
			Username string
			TotalXP  int64
			Streak   int
		}
		stats, err := a.Stats.Get(c.Context(), userID)
		if err != nil {
			return internalError(c, err)
		}
		rows := []row{{UserID: userID, Username: user.Username, TotalXP: stats.TotalXP, Streak: stats.Streak}}
		for _, f := range friends {
			fs, err := a.Stats.Get(c.Context(), f.UserID)
			if err != nil {
				return internalError(c, err)
			}
			rows = append(rows, row{UserID: f.UserID, Username: f.Username, TotalXP: fs.TotalXP, Streak: fs.Streak})
		}

		// Insertion sort, friend lists are small.
		for i := 1; i < len(rows); i++ {
			for j := i; j > 0 && rows[j].TotalXP > rows[j-1].TotalXP; j-- {
				rows[j], rows[j-1] = rows[j-1], rows[j]
			}
		}

		board := make([]fiber.Map, 0, len(rows))
		for i, r := range rows {
			board = append(board, fiber.Map{
				"rank":     i + 1,
				"userId":   r.UserID,
				"username": r.Username,
				"totalXp":  r.TotalXP,
				"level":    progression.Level(r.TotalXP),
				"streak":   r.Streak,
				"isYou":    r.UserID == userID,
			})
		}
		return c.JSON(fiber.Map{"leaderboard": board})
	}
}

// ListFriends returns the user's friends with their streaks.
func ListFriends(a *App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := paramInt64(c, "userId")
		if err != nil {
			return badRequest(c, "invalid user id")
		}
		friends, err := a.Friends.List(c.Context(), userID)
		if err != nil {
			return internalError(c, err)
		}
		return c.JSON(fiber.Map{"userId": userID, "friends": friends})
	}
}

type addFriendRequest struct {
	Username string `json:"username"`
}

// AddFriend creates a mutual friendship by username.
func AddFriend(a *App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := paramInt64(c, "userId")
		if err != nil {
			return badRequest(c, "invalid user id")
		}
		var req addFriendRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
		if strings.TrimSpace(req.Username) == "" {
			return badRequest(c, "username is required")
		}

		friend, err := a.Users.GetByUsername(c.Context(), req.Username)
		if err != nil {
			return internalError(c, err)
		}
		if friend == nil {
			return notFound(c, "user not found")
		}
		if friend.ID == userID {
			return badRequest(c, "cannot add yourself")
		}

		if err := a.Friends.Add(c.Context(), userID, friend.ID); err != nil {
			return internalError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"friendId": friend.ID,
			"username": friend.Username,
		})
	}
}

// RemoveFriend removes a friendship. The friend may be named by id or by
// username.
func RemoveFriend(a *App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := paramInt64(c, "userId")
		if err != nil {
			return badRequest(c, "invalid user id")
		}

		param := c.Params("friendId")
		friendID, err := strconv.ParseInt(param, 10, 64)
		if err != nil {
			friend, lookupErr := a.Users.GetByUsername(c.Context(), param)
			if lookupErr != nil {
				return internalError(c, lookupErr)
			}
			if friend == nil {
				return notFound(c, "user not found")
			}
			friendID = friend.ID
		}

		if err := a.Friends.Remove(c.Context(), userID, friendID); err != nil {
			return internalError(c, err)
		}
		return c.JSON(fiber.Map{"removed": friendID})
	}
}
