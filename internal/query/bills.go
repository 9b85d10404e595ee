package query

import (
	"context"

	"github.com/violet-vault/backend/internal/models"
	"github.com/violet-vault/backend/internal/store"
)

// UpcomingBills returns the unpaid bills due in the next daysAhead days,
// soonest first.
func (s *Service) UpcomingBills(ctx context.Context, daysAhead int) ([]models.Bill, error) {
	return read(ctx, s, "upcomingBills", func(ctx context.Context) ([]models.Bill, error) {
		return store.Where[models.Bill](ctx, s.store, "due_date", "is_paid = ? AND due_date >= ? AND due_date <= ?", false, s.days(0), s.days(daysAhead))
	})
}

// OverdueBills returns the unpaid bills that are past due, oldest first.
func (s *Service) OverdueBills(ctx context.Context) ([]models.Bill, error) {
	return read(ctx, s, "overdueBills", func(ctx context.Context) ([]models.Bill, error) {
		return store.Where[models.Bill](ctx, s.store, "due_date", "is_paid = ? AND due_date < ?", false, s.days(0))
	})
}

// PaidBills returns the paid bills due in the range, newest first.
func (s *Service) PaidBills(ctx context.Context, r DateRange) ([]models.Bill, error) {
	return read(ctx, s, "paidBills", func(ctx context.Context) ([]models.Bill, error) {
		query, args := bounded("is_paid = ?", []any{true}, "due_date", r)
		return store.Where[models.Bill](ctx, s.store, "due_date DESC", query, args...)
	})
}

// RecurringBills returns all recurring bills. If frequency is not empty,
// only bills with that frequency are returned.
func (s *Service) RecurringBills(ctx context.Context, frequency string) ([]models.Bill, error) {
	return read(ctx, s, "recurringBills", func(ctx context.Context) ([]models.Bill, error) {
		if frequency != "" {
			return store.Where[models.Bill](ctx, s.store, "name", "is_recurring = ? AND frequency = ?", true, frequency)
		}
		return store.Where[models.Bill](ctx, s.store, "name", "is_recurring = ?", true)
	})
}
