package query

import (
	"context"

	"github.com/violet-vault/backend/internal/models"
	"github.com/violet-vault/backend/internal/store"
)

// ActiveSavingsGoals returns the goals that are neither completed nor paused.
func (s *Service) ActiveSavingsGoals(ctx context.Context) ([]models.SavingsGoal, error) {
	return read(ctx, s, "activeSavingsGoals", func(ctx context.Context) ([]models.SavingsGoal, error) {
		return store.Where[models.SavingsGoal](ctx, s.store, "priority, name", "is_completed = ? AND is_paused = ?", false, false)
	})
}

// CompletedSavingsGoals returns the completed goals.
func (s *Service) CompletedSavingsGoals(ctx context.Context) ([]models.SavingsGoal, error) {
	return read(ctx, s, "completedSavingsGoals", func(ctx context.Context) ([]models.SavingsGoal, error) {
		return store.Where[models.SavingsGoal](ctx, s.store, "name", "is_completed = ?", true)
	})
}

// UpcomingDeadlines returns the open goals with a target date in the next
// daysAhead days, soonest first.
func (s *Service) UpcomingDeadlines(ctx context.Context, daysAhead int) ([]models.SavingsGoal, error) {
	return read(ctx, s, "upcomingDeadlines", func(ctx context.Context) ([]models.SavingsGoal, error) {
		return store.Where[models.SavingsGoal](ctx, s.store, "target_date", "is_completed = ? AND target_date >= ? AND target_date <= ?", false, s.days(0), s.days(daysAhead))
	})
}
