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
	"github.com/violet-vault/backend/internal/projection"
	"github.com/violet-vault/backend/internal/store"
)

var paycheckScopes = []projection.Scope{projection.Envelopes, projection.Dashboard, projection.Paychecks, projection.BudgetMetadata, projection.Transactions, projection.Analytics}

// Paycheck is a paycheck to process.
type Paycheck struct {
	Date                time.Time                   `json:"date"`
	Amount              decimal.Decimal             `json:"amount"`
	Source              string                      `json:"source"`
	Mode                models.PaycheckMode         `json:"mode"`
	EnvelopeAllocations []models.EnvelopeAllocation `json:"envelopeAllocations"`
	Notes               string                      `json:"notes"`

	// If set, a deposit transaction for the paycheck is recorded in this envelope.
	// The deposit has no balance effect of its own.
	DepositEnvelopeID string `json:"depositEnvelopeId"`
}

// validate checks the paycheck. It does not read from the store.
func (p Paycheck) validate() error {
	v := &ValidationError{Fields: map[string]string{}}

	if !p.Amount.IsPositive() {
		v.Fields["amount"] = "amount must be greater than 0"
	}

	_, err := balance.Paycheck(balance.Balances{}, p.Amount, p.Mode, p.EnvelopeAllocations)
	if errors.Is(err, balance.ErrUnknownPaycheckMode) {
		v.Fields["mode"] = err.Error()
	}

	for i, a := range p.EnvelopeAllocations {
		if strings.TrimSpace(a.EnvelopeID) == "" {
			v.Fields[fmt.Sprintf("envelopeAllocations[%d].envelopeId", i)] = "envelopeId is required"
		}
		if a.Amount.IsNegative() {
			v.Fields[fmt.Sprintf("envelopeAllocations[%d].amount", i)] = "amount must not be negative"
		}
	}

	if len(v.Fields) > 0 {
		return v
	}
	return nil
}

// ProcessPaycheck deposits a paycheck.
//
// In allocate mode, the allocations are added to their envelopes and the rest
// becomes unassigned cash. In leftover mode, all of it becomes unassigned cash
// and allocations are ignored. The returned history record holds everything
// needed to reverse the paycheck.
func (e *Engine) ProcessPaycheck(ctx context.Context, p Paycheck) (models.PaycheckHistory, error) {
	const operation = "processPaycheck"

	err := p.validate()
	if err != nil {
		mutations.WithLabelValues(operation, "rejected").Inc()
		return models.PaycheckHistory{}, err
	}

	allocations := []models.EnvelopeAllocation{}
	if p.Mode == models.ModeAllocate {
		for _, a := range p.EnvelopeAllocations {
			id, err := checkEnvelope(ctx, e.store, a.EnvelopeID)
			if err != nil {
				mutations.WithLabelValues(operation, "rejected").Inc()
				return models.PaycheckHistory{}, err
			}
			allocations = append(allocations, models.EnvelopeAllocation{EnvelopeID: id, Amount: a.Amount})
		}
	} else if len(p.EnvelopeAllocations) > 0 {
		e.log.Debug().Str("source", operation).Int("allocations", len(p.EnvelopeAllocations)).Msg("ignoring allocations in leftover mode")
	}

	depositEnvelopeID := ""
	if strings.TrimSpace(p.DepositEnvelopeID) != "" {
		depositEnvelopeID, err = checkEnvelope(ctx, e.store, p.DepositEnvelopeID)
		if err != nil {
			mutations.WithLabelValues(operation, "rejected").Inc()
			return models.PaycheckHistory{}, err
		}
	}

	date := p.Date
	if date.IsZero() {
		date = time.Now()
	}

	var record models.PaycheckHistory
	err = e.store.Transaction(ctx, func(tx *store.Store) error {
		before, metadata, err := snapshot(ctx, tx)
		if err != nil {
			return err
		}

		after, err := balance.Paycheck(before, p.Amount, p.Mode, allocations)
		if err != nil {
			return err
		}
		e.check(operation, after)

		metadata.ActualBalance = after.ActualBalance
		metadata.UnassignedCash = after.UnassignedCash
		_, err = tx.SetBudgetMetadata(ctx, metadata)
		if err != nil {
			return err
		}

		// One read-modify-write per allocation so that several allocations
		// to the same envelope add up
		for _, a := range allocations {
			envelope, err := store.Get[models.Envelope](ctx, tx, a.EnvelopeID)
			if err != nil {
				return err
			}

			envelope.CurrentBalance = envelope.CurrentBalance.Add(a.Amount)
			envelope, err = store.Put(ctx, tx, envelope)
			if err != nil {
				return err
			}
			e.projector.UpsertEnvelope(envelope)
		}

		record, err = store.Put(ctx, tx, models.PaycheckHistory{
			ID:                   models.NewID(),
			Date:                 date.UTC(),
			Amount:               p.Amount,
			Source:               strings.TrimSpace(p.Source),
			Mode:                 p.Mode,
			UnassignedCashBefore: before.UnassignedCash,
			UnassignedCashAfter:  after.UnassignedCash,
			ActualBalanceBefore:  before.ActualBalance,
			ActualBalanceAfter:   after.ActualBalance,
			EnvelopeAllocations:  allocations,
			Notes:                p.Notes,
		})
		if err != nil {
			return err
		}

		if depositEnvelopeID != "" {
			description := "Paycheck"
			if record.Source != "" {
				description = fmt.Sprintf("Paycheck: %s", record.Source)
			}

			deposit, err := store.Put(ctx, tx, models.Transaction{
				ID:          models.NewID(),
				Date:        record.Date,
				Amount:      p.Amount,
				Description: description,
				Category:    "Income",
				Type:        models.TypeIncome,
				EnvelopeID:  depositEnvelopeID,
				PaycheckID:  record.ID,
			})
			if err != nil {
				return err
			}
			e.projector.UpsertTransaction(deposit)
		}

		return tx.Audit(ctx, "create", "paycheck", record.ID, record)
	})

	e.done(ctx, operation, record.ID, err, paycheckScopes...)
	if err != nil {
		return models.PaycheckHistory{}, err
	}

	e.log.Info().Str("source", operation).Str("paycheck", record.ID).Str("amount", record.Amount.String()).Str("mode", string(record.Mode)).Msg("paycheck processed")
	return record, nil
}

// DeletePaycheck reverses a paycheck using the deltas stored in its history
// record and deletes it.
//
// Envelope balances are floored at 0 by the reversal. If an envelope has
// been spent below its allocation, the shortfall is taken from unassigned
// cash instead.
func (e *Engine) DeletePaycheck(ctx context.Context, id string) error {
	const operation = "deletePaycheck"

	var record models.PaycheckHistory
	err := e.store.Transaction(ctx, func(tx *store.Store) error {
		var err error
		record, err = store.Get[models.PaycheckHistory](ctx, tx, id)
		if err != nil {
			return err
		}

		metadata, err := tx.BudgetMetadata(ctx)
		if err != nil {
			return err
		}

		metadata.ActualBalance = metadata.ActualBalance.Sub(record.Amount)
		metadata.UnassignedCash = metadata.UnassignedCash.Sub(record.UnassignedCashAfter.Sub(record.UnassignedCashBefore))

		for _, a := range record.EnvelopeAllocations {
			envelope, ok, err := store.Find[models.Envelope](ctx, tx, a.EnvelopeID)
			if err != nil {
				return err
			}

			if !ok {
				// The envelope's balance went to unassigned cash when it was deleted
				e.log.Warn().Str("source", operation).Str("paycheck", id).Str("envelope", a.EnvelopeID).Msg("envelope no longer exists, reversing allocation against unassigned cash")
				metadata.UnassignedCash = metadata.UnassignedCash.Sub(a.Amount)
				continue
			}

			// The reversal does not take the envelope below 0, or below its
			// current balance if that is negative already
			floor := decimal.Min(envelope.CurrentBalance, decimal.Zero)
			reversed := envelope.CurrentBalance.Sub(a.Amount)
			if reversed.LessThan(floor) {
				shortfall := floor.Sub(reversed)
				e.log.Warn().Str("source", operation).Str("paycheck", id).Str("envelope", envelope.ID).Str("shortfall", shortfall.String()).Msg("envelope was spent below its allocation, taking the shortfall from unassigned cash")
				metadata.UnassignedCash = metadata.UnassignedCash.Sub(shortfall)
				reversed = floor
			}

			envelope.CurrentBalance = reversed
			envelope, err = store.Put(ctx, tx, envelope)
			if err != nil {
				return err
			}
			e.projector.UpsertEnvelope(envelope)
		}

		_, err = tx.SetBudgetMetadata(ctx, metadata)
		if err != nil {
			return err
		}

		// Deposits have no balance effect of their own
		deposits, err := store.Where[models.Transaction](ctx, tx, "", "paycheck_id = ?", id)
		if err != nil {
			return err
		}

		for _, d := range deposits {
			err = store.Delete[models.Transaction](ctx, tx, d.ID)
			if err != nil {
				return err
			}
			e.projector.RemoveTransaction(d.ID)
		}

		err = store.Delete[models.PaycheckHistory](ctx, tx, id)
		if err != nil {
			return err
		}

		return tx.Audit(ctx, "delete", "paycheck", id, record)
	})

	if errors.Is(err, ErrNotFound) {
		mutations.WithLabelValues(operation, "rejected").Inc()
		return fmt.Errorf("paycheck %s cannot be reversed: %w", id, err)
	}

	e.done(ctx, operation, id, err, paycheckScopes...)
	if err != nil {
		return err
	}

	e.log.Info().Str("source", operation).Str("paycheck", id).Msg("paycheck deleted")
	return nil
}
