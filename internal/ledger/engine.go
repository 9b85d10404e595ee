// Package ledger applies all mutations of budget data.
//
// Every mutation keeps the actual balance equal to the sum of the virtual
// balance and unassigned cash. Records and the balances derived from them
// are written in one store transaction.
package ledger

import (
	"context"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/violet-vault/backend/internal/balance"
	"github.com/violet-vault/backend/internal/models"
	"github.com/violet-vault/backend/internal/projection"
	"github.com/violet-vault/backend/internal/store"
)

// Projector applies optimistic updates to an in-memory read projection
// before they are durable.
type Projector interface {
	UpsertTransaction(models.Transaction)
	RemoveTransaction(id string)
	UpsertEnvelope(models.Envelope)
	RemoveEnvelope(id string)
}

// Invalidator is notified after every mutation with the scopes it changed.
type Invalidator interface {
	Invalidate(ctx context.Context, scopes ...projection.Scope)
}

// SyncTrigger is told about critical changes. It must not block.
type SyncTrigger interface {
	TriggerSyncForCriticalChange(changeType string)
}

var mutations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ledger_mutations_total",
		Help: "How many mutations were applied, partitioned by operation and result.",
	},
	[]string{"operation", "result"},
)

var inconsistencies = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "ledger_balance_inconsistencies_total",
		Help: "How many times the balances were found to be inconsistent after a mutation.",
	},
)

// Metrics are the prometheus collectors of this package.
var Metrics = []prometheus.Collector{mutations, inconsistencies}

// Engine applies mutations to the store.
type Engine struct {
	store        *store.Store
	projector    Projector
	invalidators []Invalidator
	sync         SyncTrigger
	log          zerolog.Logger
	validate     *validator.Validate
}

// New creates an Engine. projector and sync may be nil.
func New(s *store.Store, projector Projector, sync SyncTrigger, logger zerolog.Logger, invalidators ...Invalidator) *Engine {
	validate := validator.New()

	// Use the JSON names of fields in error messages
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	if projector == nil {
		projector = noopProjector{}
	}

	if sync == nil {
		sync = noopSync{}
	}

	return &Engine{
		store:        s,
		projector:    projector,
		invalidators: invalidators,
		sync:         sync,
		log:          logger,
		validate:     validate,
	}
}

func (e *Engine) invalidate(ctx context.Context, scopes ...projection.Scope) {
	for _, i := range e.invalidators {
		i.Invalidate(ctx, scopes...)
	}
}

// done records the result of an operation. On failure, it logs the error and
// invalidates the scopes so that the next read reconciles with the store.
func (e *Engine) done(ctx context.Context, operation, id string, err error, scopes ...projection.Scope) {
	if err != nil {
		mutations.WithLabelValues(operation, "error").Inc()
		e.log.Error().Str("source", operation).Str("id", id).Err(err).Msg("mutation failed")
	} else {
		mutations.WithLabelValues(operation, "ok").Inc()
	}

	e.invalidate(ctx, scopes...)
}

// check logs inconsistent balances. It never fails the mutation.
func (e *Engine) check(operation string, b balance.Balances) {
	v := balance.Validate(b)

	for _, w := range v.Warnings {
		e.log.Warn().Str("source", operation).Msg(w)
	}

	if !v.IsValid {
		inconsistencies.Inc()
		for _, msg := range v.Errors {
			e.log.Error().Str("source", operation).Msg(msg)
		}
	}
}

// snapshot reads the current balances.
func snapshot(ctx context.Context, tx *store.Store) (balance.Balances, models.BudgetMetadata, error) {
	metadata, err := tx.BudgetMetadata(ctx)
	if err != nil {
		return balance.Balances{}, metadata, err
	}

	envelopes, err := store.All[models.Envelope](ctx, tx, "")
	if err != nil {
		return balance.Balances{}, metadata, err
	}

	goals, err := store.All[models.SavingsGoal](ctx, tx, "")
	if err != nil {
		return balance.Balances{}, metadata, err
	}

	return balance.Snapshot(metadata, envelopes, goals), metadata, nil
}

// Balances returns the current balances.
func (e *Engine) Balances(ctx context.Context) (balance.Balances, error) {
	b, _, err := snapshot(ctx, e.store)
	return b, err
}

type noopProjector struct{}

func (noopProjector) UpsertTransaction(models.Transaction) {}
func (noopProjector) RemoveTransaction(string)             {}
func (noopProjector) UpsertEnvelope(models.Envelope)       {}
func (noopProjector) RemoveEnvelope(string)                {}

type noopSync struct{}

func (noopSync) TriggerSyncForCriticalChange(string) {}
