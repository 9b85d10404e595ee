package store

import (
	"context"
	"fmt"

	"github.com/violet-vault/backend/internal/models"
	"gorm.io/gorm"
)

func (s *Store) BulkUpsertEnvelopes(ctx context.Context, envelopes []models.Envelope) error {
	return s.Transaction(ctx, func(tx *Store) error { return BulkPut(ctx, tx, envelopes) })
}

func (s *Store) BulkUpsertTransactions(ctx context.Context, transactions []models.Transaction) error {
	return s.Transaction(ctx, func(tx *Store) error { return BulkPut(ctx, tx, transactions) })
}

func (s *Store) BulkUpsertBills(ctx context.Context, bills []models.Bill) error {
	return s.Transaction(ctx, func(tx *Store) error { return BulkPut(ctx, tx, bills) })
}

func (s *Store) BulkUpsertSavingsGoals(ctx context.Context, goals []models.SavingsGoal) error {
	return s.Transaction(ctx, func(tx *Store) error { return BulkPut(ctx, tx, goals) })
}

func (s *Store) BulkUpsertPaychecks(ctx context.Context, paychecks []models.PaycheckHistory) error {
	return s.Transaction(ctx, func(tx *Store) error { return BulkPut(ctx, tx, paychecks) })
}

func (s *Store) BulkUpsertDebts(ctx context.Context, debts []models.Debt) error {
	return s.Transaction(ctx, func(tx *Store) error { return BulkPut(ctx, tx, debts) })
}

// BulkUpdate changes columns of one record.
type BulkUpdate struct {
	Collection string         // Table name, e.g. "envelopes"
	ID         string         // Primary key of the record
	Changes    map[string]any // Column name to new value
}

// collections are the tables that BatchUpdate may write to.
var collections = map[string]bool{
	"envelopes":        true,
	"transactions":     true,
	"bills":            true,
	"savings_goals":    true,
	"paycheck_history": true,
	"debts":            true,
}

// BatchUpdate applies all updates atomically. Records that do not exist are skipped.
func (s *Store) BatchUpdate(ctx context.Context, updates []BulkUpdate) error {
	for _, u := range updates {
		if !collections[u.Collection] {
			return fmt.Errorf("cannot batch update unknown collection %q", u.Collection)
		}
	}

	return s.Transaction(ctx, func(tx *Store) error {
		for _, u := range updates {
			changes := make(map[string]any, len(u.Changes)+1)
			for k, v := range u.Changes {
				changes[k] = v
			}
			changes["last_modified"] = s.now()

			err := tx.db.WithContext(ctx).Session(&gorm.Session{SkipHooks: true}).Table(u.Collection).Where("id = ?", u.ID).Updates(changes).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}
