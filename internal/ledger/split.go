package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/violet-vault/backend/internal/balance"
	"github.com/violet-vault/backend/internal/models"
	"github.com/violet-vault/backend/internal/notify"
	"github.com/violet-vault/backend/internal/split"
	"github.com/violet-vault/backend/internal/store"
)

// SplitTransaction replaces a transaction with one transaction per allocation.
//
// The original transaction is kept and marked as split. Its balance effect is
// moved to the new transactions, which go through the same checks as
// AddTransaction. Allocations without an envelope use the envelope of the
// original transaction.
func (e *Engine) SplitTransaction(ctx context.Context, id string, allocations []split.Allocation) (models.Transaction, []models.Transaction, error) {
	const operation = "splitTransaction"

	parent, err := store.Get[models.Transaction](ctx, e.store, id)
	if err != nil {
		return models.Transaction{}, nil, err
	}

	reject := func(err error) (models.Transaction, []models.Transaction, error) {
		mutations.WithLabelValues(operation, "rejected").Inc()
		return models.Transaction{}, nil, err
	}

	switch {
	case parent.IsSplitParent():
		return reject(newValidationError("id", "the transaction has already been split"))
	case parent.ParentTransactionID != "":
		return reject(newValidationError("id", "a transaction that is part of a split cannot be split again"))
	case parent.PaycheckID != "":
		return reject(newValidationError("id", "a paycheck deposit cannot be split"))
	}

	if len(allocations) == 0 {
		return reject(newValidationError("splits", "at least one split is required"))
	}

	if errs := split.Validate(allocations, parent); len(errs) > 0 {
		return reject(&ValidationError{Fields: map[string]string{"splits": strings.Join(errs, "; ")}})
	}

	filled := make([]split.Allocation, len(allocations))
	for i, a := range allocations {
		if strings.TrimSpace(a.EnvelopeID) == "" {
			a.EnvelopeID = parent.EnvelopeID
		}
		filled[i] = a
	}

	children := split.Prepare(filled, parent)
	for i, c := range children {
		c.EnvelopeID, err = checkEnvelope(ctx, e.store, c.EnvelopeID)
		if err != nil {
			return reject(err)
		}

		err = validationError(e.validate.Struct(transactionFields{
			Description: c.Description,
			Merchant:    c.Merchant,
			Type:        string(c.Type),
		}))
		if err != nil {
			return reject(err)
		}

		children[i] = e.normalize(operation, c)
	}

	updated := parent
	updated.IsSplit = true
	updated.SplitInto = make([]string, 0, len(children))
	for _, c := range children {
		updated.SplitInto = append(updated.SplitInto, c.ID)
	}
	now := time.Now().UTC()
	updated.UpdatedAt = &now

	e.projector.UpsertTransaction(updated)
	for _, c := range children {
		e.projector.UpsertTransaction(c)
	}

	stored := make([]models.Transaction, 0, len(children))
	err = e.store.Transaction(ctx, func(tx *store.Store) error {
		envelope, err := e.applyDelta(ctx, tx, operation, balance.Effect(parent).Neg(), true)
		if err != nil {
			return err
		}
		if envelope.ID != "" {
			e.projector.UpsertEnvelope(envelope)
		}

		updated, err = store.Put(ctx, tx, updated)
		if err != nil {
			return err
		}

		for _, c := range children {
			child, envelope, err := e.persistTransaction(ctx, tx, operation, c)
			if err != nil {
				return err
			}
			if envelope.ID != "" {
				e.projector.UpsertEnvelope(envelope)
			}
			stored = append(stored, child)
		}

		return tx.Audit(ctx, "split", "transaction", parent.ID, map[string]any{"splitInto": updated.SplitInto})
	})

	e.done(ctx, operation, id, err, transactionScopes...)
	if err != nil {
		return models.Transaction{}, nil, err
	}

	e.log.Info().Str("source", operation).Str("transaction", id).Int("splits", len(stored)).Msg("transaction split")
	e.sync.TriggerSyncForCriticalChange(notify.TransactionUpdated)
	for range stored {
		e.sync.TriggerSyncForCriticalChange(notify.TransactionAdded)
	}

	return updated, stored, nil
}
