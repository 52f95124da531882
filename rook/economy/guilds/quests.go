package guilds

import (
	"context"
	"fmt"

	"github.com/rookgg/rook/rook/database/models"
)

var weeklyGuildQuests = []models.GuildQuest{
	{Title: "Ship 5 features", Description: "Collectively merge 5 PRs", XPReward: 200, ProgressTotal: 5},
	{Title: "Assist allies", Description: "Complete 3 reviews", XPReward: 150, ProgressTotal: 3},
}

// EnsureQuests creates this week's collective quests for a guild if none
// exist yet.
func (m *Manager) EnsureQuests(ctx context.Context, guildID int64) error {
	exists, err := m.db.BunDB().NewSelect().
		Model((*models.GuildQuest)(nil)).
		Where("guild_id = ?", guildID).
		Where("refresh_at >= date_trunc('week', NOW())").
		Exists(ctx)
	if err != nil {
		return fmt.Errorf("failed to check guild quests: %w", err)
	}
	if exists {
		return nil
	}

	quests := make([]*models.GuildQuest, 0, len(weeklyGuildQuests))
	for _, template := range weeklyGuildQuests {
		quest := template
		quest.GuildID = guildID
		quests = append(quests, &quest)
	}
	_, err = m.db.BunDB().NewInsert().
		Model(&quests).
		Value("refresh_at", "date_trunc('week', NOW())").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create guild quests: %w", err)
	}
	return nil
}

// Quests returns the guild's current weekly quests, creating them on first
// access.
func (m *Manager) Quests(ctx context.Context, guildID int64) ([]*models.GuildQuest, error) {
	if err := m.EnsureQuests(ctx, guildID); err != nil {
		return nil, err
	}

	var quests []*models.GuildQuest
	err := m.db.BunDB().NewSelect().
		Model(&quests).
		Where("guild_id = ?", guildID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load guild quests: %w", err)
	}
	return quests, nil
}
