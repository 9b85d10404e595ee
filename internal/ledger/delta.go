package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/violet-vault/backend/internal/balance"
	"github.com/violet-vault/backend/internal/models"
	"github.com/violet-vault/backend/internal/store"
)

// applyDelta writes a balance delta to the envelope and the budget metadata.
//
// With reversal set, the envelope may have been deleted since. Its share is
// then moved to unassigned cash, where the envelope's balance went on deletion.
// It returns the updated envelope, which is zero-valued if no envelope changed.
func (e *Engine) applyDelta(ctx context.Context, tx *store.Store, operation string, d balance.Delta, reversal bool) (models.Envelope, error) {
	if d.IsZero() {
		return models.Envelope{}, nil
	}

	var envelope models.Envelope
	unassigned := d.Unassigned

	if !d.Envelope.IsZero() {
		env, ok, err := store.Find[models.Envelope](ctx, tx, d.EnvelopeID)
		if err != nil {
			return models.Envelope{}, err
		}

		switch {
		case ok:
			env.CurrentBalance = env.CurrentBalance.Add(d.Envelope)
			envelope, err = store.Put(ctx, tx, env)
			if err != nil {
				return models.Envelope{}, err
			}
		case reversal:
			e.log.Warn().Str("source", operation).Str("envelope", d.EnvelopeID).Str("amount", d.Envelope.String()).Msg("envelope no longer exists, reversing against unassigned cash")
			unassigned = unassigned.Add(d.Envelope)
		default:
			return models.Envelope{}, fmt.Errorf("%w: %s", ErrEnvelopeNotFound, d.EnvelopeID)
		}
	}

	if !d.Actual.IsZero() || !unassigned.IsZero() {
		err := adjustMetadata(ctx, tx, d.Actual, unassigned)
		if err != nil {
			return models.Envelope{}, err
		}
	}

	return envelope, nil
}

// adjustMetadata adds to the actual balance and unassigned cash.
func adjustMetadata(ctx context.Context, tx *store.Store, actual, unassigned decimal.Decimal) error {
	m, err := tx.BudgetMetadata(ctx)
	if err != nil {
		return err
	}

	m.ActualBalance = m.ActualBalance.Add(actual)
	m.UnassignedCash = m.UnassignedCash.Add(unassigned)

	_, err = tx.SetBudgetMetadata(ctx, m)
	return err
}
