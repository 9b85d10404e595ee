// Package projection holds the in-memory read projection that reflects
// mutations before they are durable.
package projection

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/violet-vault/backend/internal/models"
	"golang.org/x/exp/slices"
)

// Scope names a group of cached reads that a mutation can make stale.
type Scope string

const (
	Transactions   Scope = "transactions"
	Envelopes      Scope = "envelopes"
	Dashboard      Scope = "dashboard"
	Analytics      Scope = "analytics"
	Paychecks      Scope = "paychecks"
	BudgetMetadata Scope = "budgetMetadata"
	SavingsGoals   Scope = "savingsGoals"
)

// Scopes lists all scopes.
var Scopes = []Scope{Transactions, Envelopes, Dashboard, Analytics, Paychecks, BudgetMetadata, SavingsGoals}

// Cache is the in-memory projection of transactions and envelopes.
//
// Optimistic updates are applied to it before the durable write. An
// invalidated scope is empty until it is loaded again.
type Cache struct {
	mu           sync.RWMutex
	transactions map[string]models.Transaction
	envelopes    map[string]models.Envelope
	versions     map[Scope]uint64
	loaded       map[Scope]bool
}

func New() *Cache {
	return &Cache{
		transactions: map[string]models.Transaction{},
		envelopes:    map[string]models.Envelope{},
		versions:     map[Scope]uint64{},
		loaded:       map[Scope]bool{},
	}
}

// LoadTransactions replaces the projected transactions.
func (c *Cache) LoadTransactions(transactions []models.Transaction) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.transactions = make(map[string]models.Transaction, len(transactions))
	for _, t := range transactions {
		c.transactions[t.ID] = t
	}
	c.loaded[Transactions] = true
}

// LoadEnvelopes replaces the projected envelopes.
func (c *Cache) LoadEnvelopes(envelopes []models.Envelope) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.envelopes = make(map[string]models.Envelope, len(envelopes))
	for _, e := range envelopes {
		c.envelopes[e.ID] = e
	}
	c.loaded[Envelopes] = true
}

func (c *Cache) UpsertTransaction(t models.Transaction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transactions[t.ID] = t
	c.versions[Transactions]++
}

func (c *Cache) RemoveTransaction(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.transactions, id)
	c.versions[Transactions]++
}

func (c *Cache) UpsertEnvelope(e models.Envelope) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.envelopes[e.ID] = e
	c.versions[Envelopes]++
}

func (c *Cache) RemoveEnvelope(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.envelopes, id)
	c.versions[Envelopes]++
}

// Transaction returns the projected transaction.
func (c *Cache) Transaction(id string) (models.Transaction, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.transactions[id]
	return t, ok
}

// Transactions returns all projected transactions, newest first, and whether
// the projection is loaded.
func (c *Cache) Transactions() ([]models.Transaction, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]models.Transaction, 0, len(c.transactions))
	for _, t := range c.transactions {
		out = append(out, t)
	}

	slices.SortFunc(out, func(a, b models.Transaction) int {
		if a.Date.Equal(b.Date) {
			return strings.Compare(b.ID, a.ID)
		}
		return b.Date.Compare(a.Date)
	})

	return out, c.loaded[Transactions]
}

// Envelope returns the projected envelope.
func (c *Cache) Envelope(id string) (models.Envelope, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.envelopes[id]
	return e, ok
}

// Envelopes returns all projected envelopes ordered by category and name, and
// whether the projection is loaded.
func (c *Cache) Envelopes() ([]models.Envelope, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]models.Envelope, 0, len(c.envelopes))
	for _, e := range c.envelopes {
		out = append(out, e)
	}

	slices.SortFunc(out, func(a, b models.Envelope) int {
		if a.Category == b.Category {
			return strings.Compare(a.Name, b.Name)
		}
		return strings.Compare(a.Category, b.Category)
	})

	return out, c.loaded[Envelopes]
}

// Invalidate drops the projection of the given scopes so that the next read
// loads them from the store.
func (c *Cache) Invalidate(_ context.Context, scopes ...Scope) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, s := range scopes {
		switch s {
		case Transactions:
			c.transactions = map[string]models.Transaction{}
		case Envelopes:
			c.envelopes = map[string]models.Envelope{}
		}

		c.loaded[s] = false
		c.versions[s]++
	}

	log.Debug().Str("source", "projection").Interface("scopes", scopes).Msg("invalidated")
}

// Version returns a counter that changes whenever the scope changes.
func (c *Cache) Version(s Scope) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.versions[s]
}
