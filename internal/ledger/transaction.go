package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/violet-vault/backend/internal/balance"
	"github.com/violet-vault/backend/internal/models"
	"github.com/violet-vault/backend/internal/notify"
	"github.com/violet-vault/backend/internal/projection"
	"github.com/violet-vault/backend/internal/store"
)

var transactionScopes = []projection.Scope{projection.Transactions, projection.Envelopes, projection.Dashboard, projection.Analytics, projection.BudgetMetadata}

// transactionFields are the fields of a transaction with format constraints.
type transactionFields struct {
	Description string `json:"description" validate:"max=500"`
	Merchant    string `json:"merchant" validate:"max=200"`
	ReceiptURL  string `json:"receiptUrl" validate:"omitempty,url"`
	Type        string `json:"type" validate:"omitempty,oneof=income expense transfer"`
}

// TransactionUpdate holds the fields to change. Nil fields are not changed.
type TransactionUpdate struct {
	Date        *time.Time              `json:"date,omitempty"`
	Amount      *decimal.Decimal        `json:"amount,omitempty"`
	Description *string                 `json:"description,omitempty"`
	Merchant    *string                 `json:"merchant,omitempty"`
	ReceiptURL  *string                 `json:"receiptUrl,omitempty"`
	Notes       *string                 `json:"notes,omitempty"`
	Category    *string                 `json:"category,omitempty"`
	Type        *models.TransactionType `json:"type,omitempty"`
	EnvelopeID  *string                 `json:"envelopeId,omitempty"`
	BillID      *string                 `json:"billId,omitempty"`
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// checkEnvelope verifies that the envelope is set and exists.
func checkEnvelope(ctx context.Context, s *store.Store, envelopeID string) (string, error) {
	id := strings.TrimSpace(envelopeID)
	if id == "" {
		return "", ErrMissingEnvelope
	}

	_, ok, err := store.Find[models.Envelope](ctx, s, id)
	if err != nil {
		return "", err
	}

	if !ok {
		return "", fmt.Errorf("%w: %s", ErrEnvelopeNotFound, id)
	}

	return id, nil
}

// normalize returns a copy of the transaction with the sign of the amount
// matching its type. Expenses are negative, income is positive.
func (e *Engine) normalize(operation string, t models.Transaction) models.Transaction {
	if t.Type == "" {
		t.Type = models.TypeExpense
		if t.Amount.IsPositive() {
			t.Type = models.TypeIncome
		}
	}

	switch {
	case t.Type == models.TypeExpense && t.Amount.IsPositive():
		e.log.Warn().Str("source", operation).Str("transaction", t.ID).Str("amount", t.Amount.String()).Msg("expense with positive amount, negating")
		t.Amount = t.Amount.Neg()
	case t.Type == models.TypeIncome && t.Amount.IsNegative():
		e.log.Warn().Str("source", operation).Str("transaction", t.ID).Str("amount", t.Amount.String()).Msg("income with negative amount, using absolute value")
		t.Amount = t.Amount.Abs()
	}

	return t
}

// prepareTransaction validates and normalizes a new transaction. It does not write.
func (e *Engine) prepareTransaction(ctx context.Context, operation string, data models.Transaction) (models.Transaction, error) {
	envelopeID, err := checkEnvelope(ctx, e.store, data.EnvelopeID)
	if err != nil {
		return models.Transaction{}, err
	}

	err = validationError(e.validate.Struct(transactionFields{
		Description: data.Description,
		Merchant:    data.Merchant,
		ReceiptURL:  data.ReceiptURL,
		Type:        string(data.Type),
	}))
	if err != nil {
		return models.Transaction{}, err
	}

	if data.ID != "" {
		_, exists, err := store.Find[models.Transaction](ctx, e.store, strings.TrimSpace(data.ID))
		if err != nil {
			return models.Transaction{}, err
		}

		if exists {
			return models.Transaction{}, newValidationError("id", fmt.Sprintf("a transaction with id %s already exists", data.ID))
		}
	}

	// Build a fresh record, the caller's data is never written to.
	// Paycheck and split links are only set by the engine itself.
	t := data
	t.EnvelopeID = envelopeID
	t.PaycheckID = ""
	t.IsSplit = false
	t.SplitInto = nil
	t.ParentTransactionID = ""
	t.SplitIndex = 0
	t.SplitTotal = 0
	t.OriginalAmount = decimal.NullDecimal{}
	t.Metadata.SplitData = nil
	t.Metadata.Items = append([]models.LineItem(nil), data.Metadata.Items...)
	t.Timestamps = models.Timestamps{}
	t.UpdatedAt = nil

	if t.ID == "" {
		t.ID = models.NewID()
	}

	if t.Date.IsZero() {
		t.Date = time.Now()
	}
	t.Date = t.Date.UTC()

	return e.normalize(operation, t), nil
}

// persistTransaction writes the transaction and applies its balance effect.
func (e *Engine) persistTransaction(ctx context.Context, tx *store.Store, operation string, t models.Transaction) (models.Transaction, models.Envelope, error) {
	stored, err := store.Put(ctx, tx, t)
	if err != nil {
		return models.Transaction{}, models.Envelope{}, err
	}

	envelope, err := e.applyDelta(ctx, tx, operation, balance.Effect(stored), false)
	if err != nil {
		return models.Transaction{}, models.Envelope{}, err
	}

	return stored, envelope, nil
}

// AddTransaction validates, normalizes and stores a new transaction and
// applies its effect to the balances.
func (e *Engine) AddTransaction(ctx context.Context, data models.Transaction) (models.Transaction, error) {
	const operation = "addTransaction"

	t, err := e.prepareTransaction(ctx, operation, data)
	if err != nil {
		mutations.WithLabelValues(operation, "rejected").Inc()
		return models.Transaction{}, err
	}

	e.projector.UpsertTransaction(t)

	var stored models.Transaction
	err = e.store.Transaction(ctx, func(tx *store.Store) error {
		var envelope models.Envelope
		stored, envelope, err = e.persistTransaction(ctx, tx, operation, t)
		if err != nil {
			return err
		}

		if envelope.ID != "" {
			e.projector.UpsertEnvelope(envelope)
		}

		return tx.Audit(ctx, "create", "transaction", stored.ID, stored)
	})

	e.done(ctx, operation, t.ID, err, transactionScopes...)
	if err != nil {
		return models.Transaction{}, err
	}

	e.log.Debug().Str("source", operation).Str("transaction", stored.ID).Str("envelope", stored.EnvelopeID).Str("amount", stored.Amount.String()).Msg("transaction added")
	e.sync.TriggerSyncForCriticalChange(notify.TransactionAdded)
	return stored, nil
}

// UpdateTransaction changes a transaction and moves its balance effect from
// the old values to the new ones.
func (e *Engine) UpdateTransaction(ctx context.Context, id string, u TransactionUpdate) (models.Transaction, error) {
	const operation = "updateTransaction"

	err := validationError(e.validate.Struct(transactionFields{
		Description: deref(u.Description),
		Merchant:    deref(u.Merchant),
		ReceiptURL:  deref(u.ReceiptURL),
		Type:        string(deref(u.Type)),
	}))
	if err != nil {
		mutations.WithLabelValues(operation, "rejected").Inc()
		return models.Transaction{}, err
	}

	if u.EnvelopeID != nil && strings.TrimSpace(*u.EnvelopeID) == "" {
		mutations.WithLabelValues(operation, "rejected").Inc()
		return models.Transaction{}, ErrMissingEnvelope
	}

	old, err := store.Get[models.Transaction](ctx, e.store, id)
	if err != nil {
		return models.Transaction{}, err
	}

	updated := old
	updated.SplitInto = append([]string(nil), old.SplitInto...)
	if u.Date != nil {
		updated.Date = u.Date.UTC()
	}
	if u.Amount != nil {
		updated.Amount = *u.Amount
	}
	if u.Description != nil {
		updated.Description = *u.Description
	}
	if u.Merchant != nil {
		updated.Merchant = *u.Merchant
	}
	if u.ReceiptURL != nil {
		updated.ReceiptURL = *u.ReceiptURL
	}
	if u.Notes != nil {
		updated.Notes = *u.Notes
	}
	if u.Category != nil {
		updated.Category = *u.Category
	}
	if u.Type != nil {
		updated.Type = *u.Type
	}
	if u.BillID != nil {
		updated.BillID = *u.BillID
	}
	if u.EnvelopeID != nil && strings.TrimSpace(*u.EnvelopeID) != old.EnvelopeID {
		updated.EnvelopeID, err = checkEnvelope(ctx, e.store, *u.EnvelopeID)
		if err != nil {
			mutations.WithLabelValues(operation, "rejected").Inc()
			return models.Transaction{}, err
		}
	}

	updated = e.normalize(operation, updated)

	if old.IsSplitParent() && (!old.Amount.Equal(updated.Amount) || old.Type != updated.Type || old.EnvelopeID != updated.EnvelopeID) {
		mutations.WithLabelValues(operation, "rejected").Inc()
		return models.Transaction{}, newValidationError("amount", "amount, type and envelope of a transaction that has been split cannot be changed")
	}

	now := time.Now().UTC()
	updated.UpdatedAt = &now

	e.projector.UpsertTransaction(updated)

	var stored models.Transaction
	err = e.store.Transaction(ctx, func(tx *store.Store) error {
		stored, err = store.Put(ctx, tx, updated)
		if err != nil {
			return err
		}

		// The envelope of the old effect may have been deleted since. The new
		// effect may only target a deleted envelope if it did not change.
		deltas := []struct {
			delta    balance.Delta
			reversal bool
		}{
			{balance.Effect(old).Neg(), true},
			{balance.Effect(stored), stored.EnvelopeID == old.EnvelopeID},
		}

		for _, d := range deltas {
			envelope, err := e.applyDelta(ctx, tx, operation, d.delta, d.reversal)
			if err != nil {
				return err
			}

			if envelope.ID != "" {
				e.projector.UpsertEnvelope(envelope)
			}
		}

		return tx.Audit(ctx, "update", "transaction", id, map[string]any{"before": old, "after": stored})
	})

	e.done(ctx, operation, id, err, transactionScopes...)
	if err != nil {
		return models.Transaction{}, err
	}

	e.sync.TriggerSyncForCriticalChange(notify.TransactionUpdated)
	return stored, nil
}

// DeleteTransaction deletes a transaction and reverses its balance effect.
//
// Deleting a transaction that does not exist is not an error. Deleting a
// paycheck deposit deletes the paycheck. Deleting a split transaction deletes
// the transactions it was split into.
func (e *Engine) DeleteTransaction(ctx context.Context, id string) error {
	const operation = "deleteTransaction"

	t, ok, err := store.Find[models.Transaction](ctx, e.store, id)
	if err != nil {
		e.done(ctx, operation, id, err, transactionScopes...)
		return err
	}

	if !ok {
		e.log.Debug().Str("source", operation).Str("transaction", id).Msg("transaction does not exist, nothing to delete")
		e.projector.RemoveTransaction(id)
		return nil
	}

	if t.PaycheckID != "" {
		err = e.DeletePaycheck(ctx, t.PaycheckID)
		if err == nil {
			e.sync.TriggerSyncForCriticalChange(notify.TransactionDeleted)
			return nil
		}

		if !errors.Is(err, ErrNotFound) {
			return err
		}

		e.log.Warn().Str("source", operation).Str("transaction", id).Str("paycheck", t.PaycheckID).Msg("paycheck of deposit does not exist, deleting the deposit only")
	}

	e.projector.RemoveTransaction(id)

	err = e.store.Transaction(ctx, func(tx *store.Store) error {
		children := []models.Transaction{}
		if t.IsSplitParent() {
			children, err = store.Where[models.Transaction](ctx, tx, "", "parent_transaction_id = ? AND id IN ?", t.ID, t.SplitInto)
			if err != nil {
				return err
			}
		}

		for _, r := range append(children, t) {
			e.projector.RemoveTransaction(r.ID)

			err := store.Delete[models.Transaction](ctx, tx, r.ID)
			if err != nil {
				return err
			}

			envelope, err := e.applyDelta(ctx, tx, operation, balance.Effect(r).Neg(), true)
			if err != nil {
				return err
			}

			if envelope.ID != "" {
				e.projector.UpsertEnvelope(envelope)
			}

			err = tx.Audit(ctx, "delete", "transaction", r.ID, r)
			if err != nil {
				return err
			}
		}

		return nil
	})

	e.done(ctx, operation, id, err, transactionScopes...)
	if err != nil {
		return err
	}

	e.sync.TriggerSyncForCriticalChange(notify.TransactionDeleted)
	return nil
}

// ReconcileTransaction marks a transaction as reconciled with the bank statement.
func (e *Engine) ReconcileTransaction(ctx context.Context, id string) (models.Transaction, error) {
	const operation = "reconcileTransaction"

	t, err := store.Get[models.Transaction](ctx, e.store, id)
	if err != nil {
		return models.Transaction{}, err
	}

	now := time.Now().UTC()
	t.Reconciled = true
	t.UpdatedAt = &now

	e.projector.UpsertTransaction(t)

	var stored models.Transaction
	err = e.store.Transaction(ctx, func(tx *store.Store) error {
		stored, err = store.Put(ctx, tx, t)
		if err != nil {
			return err
		}
		return tx.Audit(ctx, "reconcile", "transaction", id, nil)
	})

	e.done(ctx, operation, id, err, projection.Transactions, projection.Analytics)
	if err != nil {
		return models.Transaction{}, err
	}

	e.sync.TriggerSyncForCriticalChange(notify.TransactionReconciled)
	return stored, nil
}
