package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rookgg/rook/rook/database/models"
	"github.com/rookgg/rook/rook/database/repositories"
	"github.com/rookgg/rook/rook/economy"
	"github.com/rookgg/rook/rook/economy/queststreak"
)

// WeeklyXPQuestTitle tracks XP earned from other quests, so its own reward
// never feeds back into itself.
const WeeklyXPQuestTitle = "Earn 1000 XP this week"

// MaintainQuestTitle is completed implicitly by any streak-holding activity.
const MaintainQuestTitle = "Maintain your streak"

var dailyQuestTemplates = []models.Quest{
	{Title: "Make 3 commits", Description: "Push code to earn XP", XPReward: 150, ProgressTotal: 3},
	{Title: "Open 1 PR", Description: "Open a pull request", XPReward: 100, ProgressTotal: 1},
	{Title: "Review 2 PRs", Description: "Give feedback to peers", XPReward: 150, ProgressTotal: 2},
	{Title: "Close 1 issue", Description: "Close an issue", XPReward: 100, ProgressTotal: 1},
	{Title: MaintainQuestTitle, Description: "Stay active today", XPReward: 50, ProgressTotal: 1},
}

var weeklyQuestTemplates = []models.Quest{
	{Title: "Make 20 commits this week", Description: "Stay consistent", XPReward: 500, ProgressTotal: 20},
	{Title: "Merge 3 PRs this week", Description: "Ship features", XPReward: 600, ProgressTotal: 3},
	{Title: WeeklyXPQuestTitle, Description: "Go big or go home", XPReward: 1000, ProgressTotal: 1000},
}

// WeeklyBossNotifier is told when a user clears the whole weekly board.
type WeeklyBossNotifier interface {
	WeeklyBoss(ctx context.Context, userID int64)
}

// BonusGranter pays quest rewards through the shared bonus pipeline.
type BonusGranter interface {
	ApplyXPWithBonuses(ctx context.Context, userID int64, amount int64, reason, activityType string) (*economy.GrantResult, error)
}

// StreakAdvancer moves the quest streak when a daily board clears.
type StreakAdvancer interface {
	Advance(ctx context.Context, userID int64) (queststreak.Effects, error)
}

// ProgressUpdate is the outcome of a quest progress bump.
type ProgressUpdate struct {
	Quest       *models.Quest        `json:"quest"`
	Completed   bool                 `json:"completed"`
	Grant       *economy.GrantResult `json:"grant,omitempty"`
	StreakAfter *queststreak.Effects `json:"questStreak,omitempty"`
}

// QuestService owns the per-user quest boards: generation, progress and the
// rewards that fall out of completing them.
type QuestService struct {
	quests   repositories.QuestRepository
	stats    repositories.StatsRepository
	orch     BonusGranter
	streaks  StreakAdvancer
	notifier WeeklyBossNotifier
}

func NewQuestService(
	quests repositories.QuestRepository,
	stats repositories.StatsRepository,
	orch BonusGranter,
	streaks StreakAdvancer,
	notifier WeeklyBossNotifier,
) *QuestService {
	return &QuestService{
		quests:   quests,
		stats:    stats,
		orch:     orch,
		streaks:  streaks,
		notifier: notifier,
	}
}

// EnsureDaily returns today's quest board, generating it on first access.
func (s *QuestService) EnsureDaily(ctx context.Context, userID int64) ([]*models.Quest, error) {
	existing, err := s.quests.DailyForToday(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load daily quests: %w", err)
	}
	if len(existing) > 0 {
		return existing, nil
	}

	fresh := make([]*models.Quest, 0, len(dailyQuestTemplates))
	for _, template := range dailyQuestTemplates {
		quest := template
		quest.UserID = userID
		quest.Type = models.QuestTypeDaily
		fresh = append(fresh, &quest)
	}
	if err := s.quests.InsertBatch(ctx, fresh); err != nil {
		return nil, fmt.Errorf("failed to create daily quests: %w", err)
	}
	return fresh, nil
}

// EnsureWeekly returns this week's boss board, generating it on first
// access.
func (s *QuestService) EnsureWeekly(ctx context.Context, userID int64) ([]*models.Quest, error) {
	existing, err := s.quests.WeeklyForWeek(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load weekly quests: %w", err)
	}
	if len(existing) > 0 {
		return existing, nil
	}

	fresh := make([]*models.Quest, 0, len(weeklyQuestTemplates))
	for _, template := range weeklyQuestTemplates {
		quest := template
		quest.UserID = userID
		quest.Type = models.QuestTypeBoss
		fresh = append(fresh, &quest)
	}
	if err := s.quests.InsertBatch(ctx, fresh); err != nil {
		return nil, fmt.Errorf("failed to create weekly quests: %w", err)
	}
	return fresh, nil
}

// UpdateProgress bumps a quest by title. Progress clamps at the total and a
// completed quest latches: further increments are no-ops. The completion
// reward routes through the full bonus pipeline, and for tracked quests the
// reward also feeds the weekly XP quest.
func (s *QuestService) UpdateProgress(ctx context.Context, userID int64, title string, increment int64, questType string, trackXPReward bool) (*ProgressUpdate, error) {
	if err := s.stats.Ensure(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to ensure stats row: %w", err)
	}

	var quest *models.Quest
	var err error
	if questType == models.QuestTypeDaily {
		if _, err = s.EnsureDaily(ctx, userID); err != nil {
			return nil, err
		}
		quest, err = s.quests.FindDailyByTitle(ctx, userID, title)
	} else {
		if _, err = s.EnsureWeekly(ctx, userID); err != nil {
			return nil, err
		}
		quest, err = s.quests.FindWeeklyByTitle(ctx, userID, title)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find quest: %w", err)
	}
	if quest == nil {
		return nil, nil
	}
	if quest.Completed {
		return &ProgressUpdate{Quest: quest, Completed: true}, nil
	}

	newProgress := quest.ProgressCurrent + increment
	if newProgress > quest.ProgressTotal {
		newProgress = quest.ProgressTotal
	}
	if newProgress != quest.ProgressCurrent {
		if err := s.quests.SetProgress(ctx, quest.ID, newProgress); err != nil {
			return nil, fmt.Errorf("failed to store progress: %w", err)
		}
		quest.ProgressCurrent = newProgress
	}

	if newProgress < quest.ProgressTotal {
		return &ProgressUpdate{Quest: quest}, nil
	}

	return s.complete(ctx, userID, quest, questType, trackXPReward)
}

// complete marks the quest done, pays its reward and settles board-clear
// effects.
func (s *QuestService) complete(ctx context.Context, userID int64, quest *models.Quest, questType string, trackXPReward bool) (*ProgressUpdate, error) {
	if err := s.quests.MarkCompleted(ctx, quest.ID); err != nil {
		return nil, fmt.Errorf("failed to mark quest completed: %w", err)
	}
	quest.Completed = true

	update := &ProgressUpdate{Quest: quest, Completed: true}

	grant, err := s.orch.ApplyXPWithBonuses(ctx, userID, quest.XPReward, quest.Title, models.ActivityQuest)
	if err != nil {
		return nil, err
	}
	update.Grant = grant

	if questType == models.QuestTypeDaily {
		remaining, err := s.quests.RemainingDaily(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to count daily board: %w", err)
		}
		if remaining == 0 {
			effects, err := s.streaks.Advance(ctx, userID)
			if err != nil {
				return nil, err
			}
			update.StreakAfter = &effects
		}
	} else {
		remaining, err := s.quests.RemainingWeekly(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to count weekly board: %w", err)
		}
		if remaining == 0 && s.notifier != nil {
			s.notifier.WeeklyBoss(ctx, userID)
		}
	}

	if trackXPReward && quest.Title != WeeklyXPQuestTitle {
		if _, err := s.UpdateProgress(ctx, userID, WeeklyXPQuestTitle, quest.XPReward, models.QuestTypeBoss, false); err != nil {
			return nil, err
		}
	}
	return update, nil
}

// TrackWeeklyXP feeds earned XP into the weekly XP quest.
func (s *QuestService) TrackWeeklyXP(ctx context.Context, userID int64, amount int64) error {
	if amount <= 0 {
		return nil
	}
	_, err := s.UpdateProgress(ctx, userID, WeeklyXPQuestTitle, amount, models.QuestTypeBoss, false)
	return err
}

// ErrQuestNotFound is returned when a quest id does not belong to the user.
var ErrQuestNotFound = errors.New("quest not found")

// CompleteByID force-completes one quest by id, regardless of its tracked
// progress. Completing an already-completed quest is a no-op that still
// reports the quest as completed.
func (s *QuestService) CompleteByID(ctx context.Context, userID, questID int64) (*ProgressUpdate, error) {
	quest, err := s.quests.ByID(ctx, questID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load quest: %w", err)
	}
	if quest == nil {
		return nil, ErrQuestNotFound
	}
	if quest.Completed {
		return &ProgressUpdate{Quest: quest, Completed: true}, nil
	}

	if quest.ProgressCurrent < quest.ProgressTotal {
		if err := s.quests.SetProgress(ctx, quest.ID, quest.ProgressTotal); err != nil {
			return nil, fmt.Errorf("failed to store progress: %w", err)
		}
		quest.ProgressCurrent = quest.ProgressTotal
	}

	questType := models.QuestTypeDaily
	if quest.Type != models.QuestTypeDaily {
		questType = models.QuestTypeBoss
	}
	return s.complete(ctx, userID, quest, questType, true)
}

// CompleteMaintainQuest finishes the streak-maintenance quest for users who
// were active today. A zero streak means no activity, so nothing happens.
func (s *QuestService) CompleteMaintainQuest(ctx context.Context, userID int64, streak int) (*ProgressUpdate, error) {
	if streak <= 0 {
		return nil, nil
	}
	if _, err := s.EnsureDaily(ctx, userID); err != nil {
		return nil, err
	}
	quest, err := s.quests.FindDailyByTitle(ctx, userID, MaintainQuestTitle)
	if err != nil {
		return nil, fmt.Errorf("failed to find maintain quest: %w", err)
	}
	if quest == nil || quest.Completed {
		return nil, nil
	}

	if err := s.quests.SetProgress(ctx, quest.ID, quest.ProgressTotal); err != nil {
		return nil, fmt.Errorf("failed to store progress: %w", err)
	}
	quest.ProgressCurrent = quest.ProgressTotal
	return s.complete(ctx, userID, quest, models.QuestTypeDaily, false)
}
