package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/violet-vault/backend/internal/models"
	"github.com/violet-vault/backend/internal/projection"
	"github.com/violet-vault/backend/internal/store"
)

var (
	envelopeScopes = []projection.Scope{projection.Envelopes, projection.Dashboard, projection.BudgetMetadata}
	goalScopes     = []projection.Scope{projection.SavingsGoals, projection.Dashboard, projection.BudgetMetadata}
)

// NewEnvelope is the data to create an envelope with.
type NewEnvelope struct {
	ID             string          `json:"id" validate:"max=100"`
	Name           string          `json:"name" validate:"required,max=100" example:"Groceries"`
	Category       string          `json:"category" validate:"max=100" example:"Food"`
	InitialBalance decimal.Decimal `json:"initialBalance" example:"100"` // Taken from unassigned cash
}

// EnvelopeUpdate holds the fields to change. Nil fields are not changed.
type EnvelopeUpdate struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,max=100"`
	Category *string `json:"category,omitempty" validate:"omitempty,max=100"`
	Archived *bool   `json:"archived,omitempty"`
}

// CreateEnvelope creates an envelope. Its initial balance is moved from
// unassigned cash.
func (e *Engine) CreateEnvelope(ctx context.Context, data NewEnvelope) (models.Envelope, error) {
	const operation = "createEnvelope"

	data.ID = strings.TrimSpace(data.ID)
	data.Name = strings.TrimSpace(data.Name)

	err := validationError(e.validate.Struct(data))
	if err == nil && data.InitialBalance.IsNegative() {
		err = newValidationError("initialBalance", "initialBalance must not be negative")
	}
	if err != nil {
		mutations.WithLabelValues(operation, "rejected").Inc()
		return models.Envelope{}, err
	}

	if data.ID != "" {
		_, exists, err := store.Find[models.Envelope](ctx, e.store, data.ID)
		if err != nil {
			return models.Envelope{}, err
		}

		if exists {
			mutations.WithLabelValues(operation, "rejected").Inc()
			return models.Envelope{}, newValidationError("id", "an envelope with id "+data.ID+" already exists")
		}
	} else {
		data.ID = models.NewID()
	}

	envelope := models.Envelope{
		ID:             data.ID,
		Name:           data.Name,
		Category:       strings.TrimSpace(data.Category),
		CurrentBalance: data.InitialBalance,
	}
	e.projector.UpsertEnvelope(envelope)

	err = e.store.Transaction(ctx, func(tx *store.Store) error {
		envelope, err = store.Put(ctx, tx, envelope)
		if err != nil {
			return err
		}

		if !envelope.CurrentBalance.IsZero() {
			err = adjustMetadata(ctx, tx, decimal.Zero, envelope.CurrentBalance.Neg())
			if err != nil {
				return err
			}
		}

		return tx.Audit(ctx, "create", "envelope", envelope.ID, envelope)
	})

	e.done(ctx, operation, envelope.ID, err, envelopeScopes...)
	if err != nil {
		return models.Envelope{}, err
	}

	return envelope, nil
}

// UpdateEnvelope changes name, category or archival state of an envelope.
// Balances are not changed.
func (e *Engine) UpdateEnvelope(ctx context.Context, id string, u EnvelopeUpdate) (models.Envelope, error) {
	const operation = "updateEnvelope"

	err := validationError(e.validate.Struct(u))
	if err == nil && u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		err = newValidationError("name", "name is required")
	}
	if err != nil {
		mutations.WithLabelValues(operation, "rejected").Inc()
		return models.Envelope{}, err
	}

	var envelope models.Envelope
	err = e.store.Transaction(ctx, func(tx *store.Store) error {
		envelope, err = store.Get[models.Envelope](ctx, tx, id)
		if err != nil {
			return err
		}

		if u.Name != nil {
			envelope.Name = *u.Name
		}
		if u.Category != nil {
			envelope.Category = *u.Category
		}
		if u.Archived != nil {
			envelope.Archived = *u.Archived
		}

		envelope, err = store.Put(ctx, tx, envelope)
		if err != nil {
			return err
		}
		e.projector.UpsertEnvelope(envelope)

		return tx.Audit(ctx, "update", "envelope", id, u)
	})

	e.done(ctx, operation, id, err, projection.Envelopes, projection.Dashboard)
	if err != nil {
		return models.Envelope{}, err
	}

	return envelope, nil
}

// ArchiveEnvelope sets the archival state of an envelope.
func (e *Engine) ArchiveEnvelope(ctx context.Context, id string, archived bool) (models.Envelope, error) {
	return e.UpdateEnvelope(ctx, id, EnvelopeUpdate{Archived: &archived})
}

// DeleteEnvelope deletes an envelope and returns its balance to unassigned cash.
//
// Transactions of the envelope are kept. Reversing them later moves their
// share to unassigned cash.
func (e *Engine) DeleteEnvelope(ctx context.Context, id string) error {
	const operation = "deleteEnvelope"

	err := e.store.Transaction(ctx, func(tx *store.Store) error {
		envelope, err := store.Get[models.Envelope](ctx, tx, id)
		if err != nil {
			return err
		}

		err = store.Delete[models.Envelope](ctx, tx, id)
		if err != nil {
			return err
		}

		if !envelope.CurrentBalance.IsZero() {
			err = adjustMetadata(ctx, tx, decimal.Zero, envelope.CurrentBalance)
			if err != nil {
				return err
			}
		}

		return tx.Audit(ctx, "delete", "envelope", id, envelope)
	})

	e.done(ctx, operation, id, err, envelopeScopes...)
	if err != nil {
		return err
	}

	e.projector.RemoveEnvelope(id)
	return nil
}

// NewSavingsGoal is the data to create a savings goal with.
type NewSavingsGoal struct {
	Name          string          `json:"name" validate:"required,max=100" example:"Vacation"`
	Category      string          `json:"category" validate:"max=100" example:"Travel"`
	Priority      string          `json:"priority" validate:"omitempty,oneof=low medium high" example:"medium"`
	TargetAmount  decimal.Decimal `json:"targetAmount" example:"2000"`
	CurrentAmount decimal.Decimal `json:"currentAmount" example:"250"` // Taken from unassigned cash
	TargetDate    *time.Time      `json:"targetDate"`
}

// CreateSavingsGoal creates a savings goal. Its current amount is moved from
// unassigned cash.
func (e *Engine) CreateSavingsGoal(ctx context.Context, data NewSavingsGoal) (models.SavingsGoal, error) {
	const operation = "createSavingsGoal"

	data.Name = strings.TrimSpace(data.Name)

	err := validationError(e.validate.Struct(data))
	if err == nil && !data.TargetAmount.IsPositive() {
		err = newValidationError("targetAmount", "targetAmount must be greater than 0")
	}
	if err == nil && data.CurrentAmount.IsNegative() {
		err = newValidationError("currentAmount", "currentAmount must not be negative")
	}
	if err != nil {
		mutations.WithLabelValues(operation, "rejected").Inc()
		return models.SavingsGoal{}, err
	}

	goal := models.SavingsGoal{
		ID:            models.NewID(),
		Name:          data.Name,
		Category:      data.Category,
		Priority:      data.Priority,
		TargetAmount:  data.TargetAmount,
		CurrentAmount: data.CurrentAmount,
		TargetDate:    data.TargetDate,
		IsCompleted:   data.CurrentAmount.GreaterThanOrEqual(data.TargetAmount),
	}

	err = e.store.Transaction(ctx, func(tx *store.Store) error {
		goal, err = store.Put(ctx, tx, goal)
		if err != nil {
			return err
		}

		if !goal.CurrentAmount.IsZero() {
			err = adjustMetadata(ctx, tx, decimal.Zero, goal.CurrentAmount.Neg())
			if err != nil {
				return err
			}
		}

		return tx.Audit(ctx, "create", "savings_goal", goal.ID, goal)
	})

	e.done(ctx, operation, goal.ID, err, goalScopes...)
	if err != nil {
		return models.SavingsGoal{}, err
	}

	return goal, nil
}

// DeleteSavingsGoal deletes a savings goal and returns its amount to
// unassigned cash.
func (e *Engine) DeleteSavingsGoal(ctx context.Context, id string) error {
	const operation = "deleteSavingsGoal"

	err := e.store.Transaction(ctx, func(tx *store.Store) error {
		goal, err := store.Get[models.SavingsGoal](ctx, tx, id)
		if err != nil {
			return err
		}

		err = store.Delete[models.SavingsGoal](ctx, tx, id)
		if err != nil {
			return err
		}

		if !goal.CurrentAmount.IsZero() {
			err = adjustMetadata(ctx, tx, decimal.Zero, goal.CurrentAmount)
			if err != nil {
				return err
			}
		}

		return tx.Audit(ctx, "delete", "savings_goal", id, goal)
	})

	e.done(ctx, operation, id, err, goalScopes...)
	return err
}
