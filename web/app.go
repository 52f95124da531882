package web

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/rookgg/rook/rook/database"
	"github.com/rookgg/rook/rook/database/repositories"
	"github.com/rookgg/rook/rook/economy"
	"github.com/rookgg/rook/rook/economy/battles"
	"github.com/rookgg/rook/rook/economy/crafting"
	"github.com/rookgg/rook/rook/economy/guilds"
	"github.com/rookgg/rook/rook/economy/prestige"
	"github.com/rookgg/rook/rook/events"
	"github.com/rookgg/rook/rook/services"
)

// App bundles every dependency the HTTP layer needs. Handlers are factory
// functions over it so each route closes over exactly the same wiring.
type App struct {
	DB            *database.DB
	Users         repositories.UserRepository
	Stats         repositories.StatsRepository
	Activities    repositories.ActivityRepository
	Achievements  repositories.AchievementRepository
	Friends       repositories.FriendRepository
	LootRepo      repositories.LootRepository
	Integrations  repositories.NotificationRepository
	Orchestrator  *economy.Orchestrator
	Quests        *services.QuestService
	Guilds        *guilds.Manager
	Prestige      *prestige.Engine
	Crafting      *crafting.Engine
	Battles       *battles.Manager
	Coach         *services.Coach
	Bus           *events.Bus
	WebhookSecret string
	Version       string
}

// SetupRoutes registers the full API surface on the Fiber app.
func SetupRoutes(app *fiber.App, a *App) {
	api := app.Group("/api")

	api.Get("/health", HealthCheck(a))
	api.Get("/events", EventStream(a))
	api.Post("/webhooks/github", GitHubWebhook(a))

	users := api.Group("/users")
	users.Post("/register", RegisterUser(a))
	users.Get("/:userId/stats", UserStats(a))
	users.Post("/:userId/xp", GrantXP(a))
	users.Get("/:userId/activity", UserActivity(a))
	users.Get("/:userId/inventory", UserInventory(a))
	users.Post("/:userId/achievements/:achievementId/share", ShareAchievement(a))
	users.Get("/:userId/quests/daily", DailyQuests(a))
	users.Get("/:userId/quests/weekly", WeeklyQuests(a))
	users.Post("/:userId/quests/:questId/complete", CompleteQuest(a))
	users.Get("/:userId/friends", ListFriends(a))
	users.Post("/:userId/friends", AddFriend(a))
	users.Delete("/:userId/friends/:friendId", RemoveFriend(a))
	users.Get("/:userId/leaderboard/friends", FriendLeaderboard(a))
	users.Get("/:userId/battles", ListBattles(a))
	users.Get("/:userId/prestige", PrestigeSummary(a))
	users.Post("/:userId/prestige", PerformPrestige(a))
	users.Get("/:userId/coach", CoachTip(a))

	api.Get("/leaderboard/global", GlobalLeaderboard(a))

	guildGroup := api.Group("/guilds")
	guildGroup.Post("/", CreateGuild(a))
	guildGroup.Post("/join", JoinGuild(a))
	guildGroup.Post("/leave", LeaveGuild(a))
	guildGroup.Post("/invite", InviteToGuild(a))
	guildGroup.Get("/user/:userId", GuildForUser(a))
	guildGroup.Get("/:guildId", GuildDetail(a))
	guildGroup.Get("/:guildId/quests", GuildQuests(a))

	craftGroup := api.Group("/crafting")
	craftGroup.Get("/recipes", ListRecipes(a))
	craftGroup.Post("/:userId/craft/:recipeCode", CraftItem(a))

	notifGroup := api.Group("/notifications")
	notifGroup.Get("/:userId/integrations", ListIntegrations(a))
	notifGroup.Post("/:userId/integrations", UpsertIntegration(a))
	notifGroup.Delete("/:userId/integrations/:type", RemoveIntegration(a))
}

// HealthCheck reports service liveness including a database ping.
func HealthCheck(a *App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbStatus := "up"
		if err := a.DB.GetPool().Ping(c.Context()); err != nil {
			dbStatus = "down"
		}
		return c.JSON(fiber.Map{
			"status":   "ok",
			"database": dbStatus,
			"version":  a.Version,
		})
	}
}

func paramInt64(c *fiber.Ctx, name string) (int64, error) {
	return strconv.ParseInt(c.Params(name), 10, 64)
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": message})
}

func notFound(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": message})
}

func internalError(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}

// mapDomainError turns business rejections into 4xx responses; anything else
// is an infrastructure failure.
func mapDomainError(c *fiber.Ctx, err error) error {
	var insufficient *crafting.InsufficientError
	switch {
	case errors.Is(err, guilds.ErrNameTaken),
		errors.Is(err, guilds.ErrGuildNotFound),
		errors.Is(err, guilds.ErrNoGuild),
		errors.Is(err, crafting.ErrRecipeNotFound),
		errors.Is(err, prestige.ErrLevelTooLow):
		return badRequest(c, err.Error())
	case errors.As(err, &insufficient):
		return badRequest(c, insufficient.Error())
	case errors.Is(err, services.ErrQuestNotFound):
		return notFound(c, err.Error())
	default:
		return internalError(c, err)
	}
}
