package query

import (
	"context"

	"github.com/violet-vault/backend/internal/balance"
	"github.com/violet-vault/backend/internal/models"
	"github.com/violet-vault/backend/internal/projection"
	"github.com/violet-vault/backend/internal/store"
)

// Dashboard is the overview of the budget.
type Dashboard struct {
	Balances        balance.Balances   `json:"balances"`
	Validation      balance.Validation `json:"validation"`
	ActiveEnvelopes int                `json:"activeEnvelopes" example:"12"`
	OverdueBills    int                `json:"overdueBills" example:"1"`
	Version         int                `json:"version" example:"42"` // Version of the budget metadata
}

// Balances returns the current balances. The result is cached.
func (s *Service) Balances(ctx context.Context) (balance.Balances, error) {
	return cached(ctx, s, projection.BudgetMetadata, "balances", s.ttl, func(ctx context.Context) (balance.Balances, error) {
		metadata, err := s.store.BudgetMetadata(ctx)
		if err != nil {
			return balance.Balances{}, err
		}

		envelopes, err := store.All[models.Envelope](ctx, s.store, "")
		if err != nil {
			return balance.Balances{}, err
		}

		goals, err := store.All[models.SavingsGoal](ctx, s.store, "")
		if err != nil {
			return balance.Balances{}, err
		}

		return balance.Snapshot(metadata, envelopes, goals), nil
	})
}

// Dashboard returns the overview of the budget. The result is cached.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	return cached(ctx, s, projection.Dashboard, "summary", s.ttl, func(ctx context.Context) (Dashboard, error) {
		metadata, err := s.store.BudgetMetadata(ctx)
		if err != nil {
			return Dashboard{}, err
		}

		envelopes, err := store.All[models.Envelope](ctx, s.store, "")
		if err != nil {
			return Dashboard{}, err
		}

		goals, err := store.All[models.SavingsGoal](ctx, s.store, "")
		if err != nil {
			return Dashboard{}, err
		}

		var overdue int64
		err = s.store.DB(ctx).Model(&models.Bill{}).Where("is_paid = ? AND due_date < ?", false, s.days(0)).Count(&overdue).Error
		if err != nil {
			return Dashboard{}, err
		}

		active := 0
		for _, e := range envelopes {
			if !e.Archived {
				active++
			}
		}

		b := balance.Snapshot(metadata, envelopes, goals)
		return Dashboard{
			Balances:        b,
			Validation:      balance.Validate(b),
			ActiveEnvelopes: active,
			OverdueBills:    int(overdue),
			Version:         metadata.Version,
		}, nil
	})
}
