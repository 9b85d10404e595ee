package query

import (
	"context"

	"github.com/violet-vault/backend/internal/models"
	"github.com/violet-vault/backend/internal/store"
)

// PaycheckHistory returns the newest paychecks. A limit of 0 returns all.
func (s *Service) PaycheckHistory(ctx context.Context, limit int) ([]models.PaycheckHistory, error) {
	return read(ctx, s, "paycheckHistory", func(ctx context.Context) ([]models.PaycheckHistory, error) {
		paychecks := []models.PaycheckHistory{}

		q := s.store.DB(ctx).Order("date DESC")
		if limit > 0 {
			q = q.Limit(limit)
		}

		err := q.Find(&paychecks).Error
		return paychecks, err
	})
}

// Paycheck returns one paycheck.
func (s *Service) Paycheck(ctx context.Context, id string) (models.PaycheckHistory, error) {
	return read(ctx, s, "paycheck", func(ctx context.Context) (models.PaycheckHistory, error) {
		return store.Get[models.PaycheckHistory](ctx, s.store, id)
	})
}

// PaychecksByDateRange returns the paychecks in the range, newest first.
func (s *Service) PaychecksByDateRange(ctx context.Context, r DateRange) ([]models.PaycheckHistory, error) {
	return read(ctx, s, "paychecksByDateRange", func(ctx context.Context) ([]models.PaycheckHistory, error) {
		query, args := bounded("1 = 1", nil, "date", r)
		return store.Where[models.PaycheckHistory](ctx, s.store, "date DESC", query, args...)
	})
}

// PaychecksBySource returns the paychecks of a payer, newest first.
func (s *Service) PaychecksBySource(ctx context.Context, source string) ([]models.PaycheckHistory, error) {
	return read(ctx, s, "paychecksBySource", func(ctx context.Context) ([]models.PaycheckHistory, error) {
		return store.Where[models.PaycheckHistory](ctx, s.store, "date DESC", "source = ?", source)
	})
}
