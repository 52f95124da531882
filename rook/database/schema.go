package database

import (
	"context"
	"fmt"

	"log/slog"

	"github.com/rookgg/rook/rook/database/models"
)

// InitializeSchema creates all application tables in dependency order.
func (db *DB) InitializeSchema(ctx context.Context) error {
	tables := []interface{}{
		(*models.User)(nil),
		(*models.Guild)(nil),
		(*models.UserStats)(nil),
		(*models.XPActivity)(nil),
		(*models.Achievement)(nil),
		(*models.UserAchievement)(nil),
		(*models.Quest)(nil),
		(*models.LootItem)(nil),
		(*models.LootDrop)(nil),
		(*models.CraftingRecipe)(nil),
		(*models.RecipeIngredient)(nil),
		(*models.GuildMember)(nil),
		(*models.GuildInvite)(nil),
		(*models.GuildQuest)(nil),
		(*models.PrestigeReset)(nil),
		(*models.PrBattle)(nil),
		(*models.PrBattleParticipant)(nil),
		(*models.NotificationIntegration)(nil),
		(*models.Friendship)(nil),
	}

	for _, model := range tables {
		if _, err := db.bunDB.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	slog.Info("Database schema initialized",
		slog.String("type", "db"),
		slog.Int("tables", len(tables)))
	return nil
}
