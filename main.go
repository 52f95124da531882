package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/rookgg/rook/rook"
	"github.com/rookgg/rook/rook/database"
	"github.com/rookgg/rook/rook/database/repositories"
	"github.com/rookgg/rook/rook/economy"
	"github.com/rookgg/rook/rook/economy/battles"
	"github.com/rookgg/rook/rook/economy/crafting"
	"github.com/rookgg/rook/rook/economy/guilds"
	"github.com/rookgg/rook/rook/economy/loot"
	"github.com/rookgg/rook/rook/economy/prestige"
	"github.com/rookgg/rook/rook/economy/progression"
	"github.com/rookgg/rook/rook/economy/queststreak"
	"github.com/rookgg/rook/rook/economy/utils"
	"github.com/rookgg/rook/rook/events"
	"github.com/rookgg/rook/rook/logger"
	"github.com/rookgg/rook/rook/services"
	"github.com/rookgg/rook/web"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to config file")
	flag.Parse()

	slog.SetDefault(slog.New(logger.NewHandler("Rook")))
	slog.Info("Starting Rook",
		slog.String("version", version),
		slog.String("commit", commit))

	cfg, err := rook.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.New(ctx, cfg.DB)
	if err != nil {
		slog.Error("Failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	if err := db.InitializeSchema(ctx); err != nil {
		slog.Error("Failed to initialize schema", slog.Any("error", err))
		os.Exit(1)
	}
	if err := db.SeedCatalogs(ctx); err != nil {
		slog.Error("Failed to seed catalogs", slog.Any("error", err))
		os.Exit(1)
	}

	users := repositories.NewUserRepository(db.BunDB())
	stats := repositories.NewStatsRepository(db.BunDB())
	activities := repositories.NewActivityRepository(db.BunDB())
	achievements := repositories.NewAchievementRepository(db.BunDB())
	friends := repositories.NewFriendRepository(db.BunDB())
	lootRepo := repositories.NewLootRepository(db.BunDB())
	quests := repositories.NewQuestRepository(db.BunDB())
	integrations := repositories.NewNotificationRepository(db.BunDB())

	bus := events.NewBus()
	defer bus.Close()

	table := loot.NewTable(lootRepo, stats, bus)
	if err := table.Reload(ctx); err != nil {
		slog.Error("Failed to load loot catalog", slog.Any("error", err))
		os.Exit(1)
	}

	txManager := utils.NewEconomicTransactionManager(db.BunDB())
	notifier := services.NewNotifier(integrations, users)

	ledger := progression.NewLedger(stats, activities, achievements, bus)
	streaks := queststreak.NewTracker(stats, activities, lootRepo, table)
	guildManager := guilds.NewManager(db, txManager, stats)
	prestigeEngine := prestige.NewEngine(db, txManager, activities, lootRepo, table)
	orchestrator := economy.NewOrchestrator(ledger, streaks, table, guildManager, prestigeEngine, notifier)
	craftingEngine := crafting.NewEngine(db, txManager, stats, lootRepo, prestigeEngine, notifier)
	battleManager := battles.NewManager(db, txManager, orchestrator, notifier, bus)
	questService := services.NewQuestService(quests, stats, orchestrator, streaks, notifier)
	coach := services.NewCoach(cfg.Coach.OpenAIKey, cfg.Coach.Model, stats, activities, questService)

	app := fiber.New(fiber.Config{
		AppName:      "Rook API",
		ServerHeader: "Rook",
	})
	app.Use(recover.New())
	app.Use(cors.New())

	web.SetupRoutes(app, &web.App{
		DB:            db,
		Users:         users,
		Stats:         stats,
		Activities:    activities,
		Achievements:  achievements,
		Friends:       friends,
		LootRepo:      lootRepo,
		Integrations:  integrations,
		Orchestrator:  orchestrator,
		Quests:        questService,
		Guilds:        guildManager,
		Prestige:      prestigeEngine,
		Crafting:      craftingEngine,
		Battles:       battleManager,
		Coach:         coach,
		Bus:           bus,
		WebhookSecret: cfg.GitHub.WebhookSecret,
		Version:       version,
	})

	addr := cfg.Server.Addr
	if addr == "" {
		addr = ":8080"
	}

	go func() {
		if err := app.Listen(addr); err != nil {
			slog.Error("Server stopped", slog.Any("error", err))
		}
	}()
	logger.LogSystem("Server listening", slog.String("addr", addr))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	slog.Info("Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("Shutdown error", slog.Any("error", err))
	}
	slog.Info("Shutdown complete")
}
