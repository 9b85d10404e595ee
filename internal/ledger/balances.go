package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/violet-vault/backend/internal/balance"
	"github.com/violet-vault/backend/internal/models"
	"github.com/violet-vault/backend/internal/projection"
	"github.com/violet-vault/backend/internal/store"
)

var balanceScopes = []projection.Scope{projection.Envelopes, projection.Dashboard, projection.BudgetMetadata}

// DistributeUnassignedCash moves unassigned cash into envelopes. The actual
// balance does not change.
func (e *Engine) DistributeUnassignedCash(ctx context.Context, distributions []models.EnvelopeAllocation) (balance.Balances, error) {
	const operation = "distributeUnassignedCash"

	v := &ValidationError{Fields: map[string]string{}}
	if len(distributions) == 0 {
		v.Fields["distributions"] = "at least one distribution is required"
	}
	for i, d := range distributions {
		if strings.TrimSpace(d.EnvelopeID) == "" {
			v.Fields[fmt.Sprintf("distributions[%d].envelopeId", i)] = "envelopeId is required"
		}
		if !d.Amount.IsPositive() {
			v.Fields[fmt.Sprintf("distributions[%d].amount", i)] = "amount must be greater than 0"
		}
	}
	if len(v.Fields) > 0 {
		mutations.WithLabelValues(operation, "rejected").Inc()
		return balance.Balances{}, v
	}

	cleaned := make([]models.EnvelopeAllocation, 0, len(distributions))
	for _, d := range distributions {
		id, err := checkEnvelope(ctx, e.store, d.EnvelopeID)
		if err != nil {
			mutations.WithLabelValues(operation, "rejected").Inc()
			return balance.Balances{}, err
		}
		cleaned = append(cleaned, models.EnvelopeAllocation{EnvelopeID: id, Amount: d.Amount})
	}

	var after balance.Balances
	err := e.store.Transaction(ctx, func(tx *store.Store) error {
		before, metadata, err := snapshot(ctx, tx)
		if err != nil {
			return err
		}

		after = balance.Distribution(before, cleaned)
		e.check(operation, after)

		for _, d := range cleaned {
			envelope, err := store.Get[models.Envelope](ctx, tx, d.EnvelopeID)
			if err != nil {
				return err
			}

			envelope.CurrentBalance = envelope.CurrentBalance.Add(d.Amount)
			envelope, err = store.Put(ctx, tx, envelope)
			if err != nil {
				return err
			}
			e.projector.UpsertEnvelope(envelope)
		}

		metadata.UnassignedCash = after.UnassignedCash
		_, err = tx.SetBudgetMetadata(ctx, metadata)
		if err != nil {
			return err
		}

		return tx.Audit(ctx, "distribute", "budget", models.MetadataID, cleaned)
	})

	e.done(ctx, operation, models.MetadataID, err, balanceScopes...)
	if err != nil {
		return balance.Balances{}, err
	}

	e.log.Info().Str("source", operation).Str("amount", balance.Total(cleaned).String()).Int("envelopes", len(cleaned)).Msg("unassigned cash distributed")
	return after, nil
}

// SetActualBalance sets the actual balance, e.g. from a bank statement.
// Unassigned cash becomes the difference to the virtual balance.
func (e *Engine) SetActualBalance(ctx context.Context, amount decimal.Decimal, isManual bool) (balance.Balances, error) {
	const operation = "setActualBalance"

	var after balance.Balances
	err := e.store.Transaction(ctx, func(tx *store.Store) error {
		before, metadata, err := snapshot(ctx, tx)
		if err != nil {
			return err
		}

		after = before
		after.ActualBalance = amount
		after.UnassignedCash = amount.Sub(before.VirtualBalance)
		after.IsActualBalanceManual = isManual
		e.check(operation, after)

		metadata.ActualBalance = after.ActualBalance
		metadata.UnassignedCash = after.UnassignedCash
		metadata.IsActualBalanceManual = isManual
		_, err = tx.SetBudgetMetadata(ctx, metadata)
		if err != nil {
			return err
		}

		return tx.Audit(ctx, "update", "budget", models.MetadataID, map[string]any{"before": before, "after": after})
	})

	e.done(ctx, operation, models.MetadataID, err, projection.Dashboard, projection.BudgetMetadata)
	if err != nil {
		return balance.Balances{}, err
	}

	return after, nil
}

// CheckBalances validates the stored balances without changing them.
// Inconsistencies are logged, RecalculateBalances repairs them.
func (e *Engine) CheckBalances(ctx context.Context) (balance.Balances, balance.Validation, error) {
	const operation = "checkBalances"

	b, err := e.Balances(ctx)
	if err != nil {
		return balance.Balances{}, balance.Validation{}, err
	}

	v := balance.Validate(b)
	for _, msg := range v.Errors {
		e.log.Warn().Str("source", operation).Msg(msg)
	}
	for _, msg := range v.Warnings {
		e.log.Info().Str("source", operation).Msg(msg)
	}

	return b, v, nil
}

// RecalculateBalances rebuilds the budget metadata from the stored records.
//
// Split parents are skipped, their children carry the amounts. Paychecks
// without a deposit transaction count as income. A manual actual balance is
// kept.
func (e *Engine) RecalculateBalances(ctx context.Context) (balance.Balances, error) {
	const operation = "recalculateBalances"

	var after balance.Balances
	err := e.store.Transaction(ctx, func(tx *store.Store) error {
		metadata, err := tx.BudgetMetadata(ctx)
		if err != nil {
			return err
		}

		envelopes, err := store.All[models.Envelope](ctx, tx, "")
		if err != nil {
			return err
		}

		goals, err := store.All[models.SavingsGoal](ctx, tx, "")
		if err != nil {
			return err
		}

		stored, err := store.All[models.Transaction](ctx, tx, "")
		if err != nil {
			return err
		}

		paychecks, err := store.All[models.PaycheckHistory](ctx, tx, "")
		if err != nil {
			return err
		}

		deposited := map[string]bool{}
		transactions := make([]models.Transaction, 0, len(stored)+len(paychecks))
		for _, t := range stored {
			if t.IsSplitParent() {
				continue
			}
			if t.PaycheckID != "" {
				deposited[t.PaycheckID] = true
			}
			transactions = append(transactions, t)
		}

		for _, p := range paychecks {
			if deposited[p.ID] {
				continue
			}
			transactions = append(transactions, models.Transaction{ID: p.ID, Amount: p.Amount, Type: models.TypeIncome})
		}

		var manual *decimal.Decimal
		if metadata.IsActualBalanceManual {
			manual = &metadata.ActualBalance
		}

		after = balance.Calculate(envelopes, transactions, goals, manual)
		e.check(operation, after)

		before := balance.Snapshot(metadata, envelopes, goals)
		if !before.UnassignedCash.Equal(after.UnassignedCash) || !before.ActualBalance.Equal(after.ActualBalance) {
			e.log.Warn().Str("source", operation).
				Str("actualBefore", before.ActualBalance.String()).Str("actualAfter", after.ActualBalance.String()).
				Str("unassignedBefore", before.UnassignedCash.String()).Str("unassignedAfter", after.UnassignedCash.String()).
				Msg("stored balances drifted, repairing")
		}

		metadata.ActualBalance = after.ActualBalance
		metadata.UnassignedCash = after.UnassignedCash
		_, err = tx.SetBudgetMetadata(ctx, metadata)
		if err != nil {
			return err
		}

		return tx.Audit(ctx, "recalculate", "budget", models.MetadataID, after)
	})

	e.done(ctx, operation, models.MetadataID, err, projection.Dashboard, projection.BudgetMetadata)
	if err != nil {
		return balance.Balances{}, err
	}

	return after, nil
}
