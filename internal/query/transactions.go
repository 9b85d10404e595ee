package query

import (
	"context"
	"fmt"

	"github.com/violet-vault/backend/internal/models"
	"github.com/violet-vault/backend/internal/projection"
	"github.com/violet-vault/backend/internal/store"
)

const transactionOrder = "date DESC, id DESC"

// Transaction returns one transaction.
func (s *Service) Transaction(ctx context.Context, id string) (models.Transaction, error) {
	return read(ctx, s, "transaction", func(ctx context.Context) (models.Transaction, error) {
		return store.Get[models.Transaction](ctx, s.store, id)
	})
}

// TransactionFilter selects transactions. Empty fields do not filter.
type TransactionFilter struct {
	DateRange
	EnvelopeID string                 `form:"envelope"`
	Category   string                 `form:"category"`
	Type       models.TransactionType `form:"type"`
	Reconciled *bool                  `form:"reconciled"`
}

// Transactions returns the transactions matching the filter, newest first.
func (s *Service) Transactions(ctx context.Context, f TransactionFilter) ([]models.Transaction, error) {
	return read(ctx, s, "transactions", func(ctx context.Context) ([]models.Transaction, error) {
		query, args := "1 = 1", []any{}

		if f.EnvelopeID != "" {
			query += " AND envelope_id = ?"
			args = append(args, f.EnvelopeID)
		}

		if f.Category != "" {
			query += " AND category = ?"
			args = append(args, f.Category)
		}

		if f.Type != "" {
			query += " AND type = ?"
			args = append(args, f.Type)
		}

		if f.Reconciled != nil {
			query += " AND reconciled = ?"
			args = append(args, *f.Reconciled)
		}

		query, args = bounded(query, args, "date", f.DateRange)
		return store.Where[models.Transaction](ctx, s.store, transactionOrder, query, args...)
	})
}

// TransactionsByDateRange returns the transactions in the range, newest first.
func (s *Service) TransactionsByDateRange(ctx context.Context, r DateRange) ([]models.Transaction, error) {
	return s.Transactions(ctx, TransactionFilter{DateRange: r})
}

// TransactionsByEnvelope returns the transactions of an envelope, newest first.
func (s *Service) TransactionsByEnvelope(ctx context.Context, envelopeID string, r DateRange) ([]models.Transaction, error) {
	return s.Transactions(ctx, TransactionFilter{DateRange: r, EnvelopeID: envelopeID})
}

// TransactionsByCategory returns the transactions of a category, newest first.
func (s *Service) TransactionsByCategory(ctx context.Context, category string, r DateRange) ([]models.Transaction, error) {
	return s.Transactions(ctx, TransactionFilter{DateRange: r, Category: category})
}

// TransactionsByType returns the transactions of a type, newest first.
func (s *Service) TransactionsByType(ctx context.Context, t models.TransactionType, r DateRange) ([]models.Transaction, error) {
	return s.Transactions(ctx, TransactionFilter{DateRange: r, Type: t})
}

// RecentTransactions returns the transactions of the last days, newest first.
// If limit is greater than 0, at most limit transactions are returned.
func (s *Service) RecentTransactions(ctx context.Context, days, limit int) ([]models.Transaction, error) {
	transactions, err := s.Transactions(ctx, TransactionFilter{DateRange: DateRange{Start: s.days(-days)}})
	if err != nil {
		return nil, err
	}

	if limit > 0 && len(transactions) > limit {
		transactions = transactions[:limit]
	}
	return transactions, nil
}

// AnalyticsData returns the transactions relevant for spending analysis in
// the range. Transfers only move money between envelopes and are excluded
// unless requested. Split parents are always excluded, their children are
// included instead. The result is cached.
func (s *Service) AnalyticsData(ctx context.Context, r DateRange, includeTransfers bool) ([]models.Transaction, error) {
	key := fmt.Sprintf("%d:%d:%t", r.Start.Unix(), r.End.Unix(), includeTransfers)

	return cached(ctx, s, projection.Analytics, key, s.ttl, func(ctx context.Context) ([]models.Transaction, error) {
		query, args := "1 = 1", []any{}
		if !includeTransfers {
			query += " AND type <> ?"
			args = append(args, models.TypeTransfer)
		}

		query, args = bounded(query, args, "date", r)

		transactions, err := store.Where[models.Transaction](ctx, s.store, "date", query, args...)
		if err != nil {
			return nil, err
		}

		out := make([]models.Transaction, 0, len(transactions))
		for _, t := range transactions {
			if !t.IsSplitParent() {
				out = append(out, t)
			}
		}
		return out, nil
	})
}
