package query

import (
	"context"
	"fmt"

	"github.com/violet-vault/backend/internal/models"
	"github.com/violet-vault/backend/internal/projection"
	"github.com/violet-vault/backend/internal/store"
)

const envelopeOrder = "category, name"

// Envelope returns one envelope.
func (s *Service) Envelope(ctx context.Context, id string) (models.Envelope, error) {
	return read(ctx, s, "envelope", func(ctx context.Context) (models.Envelope, error) {
		return store.Get[models.Envelope](ctx, s.store, id)
	})
}

// Envelopes returns all envelopes.
func (s *Service) Envelopes(ctx context.Context, includeArchived bool) ([]models.Envelope, error) {
	if !includeArchived {
		return s.ActiveEnvelopes(ctx)
	}

	return read(ctx, s, "envelopes", func(ctx context.Context) ([]models.Envelope, error) {
		return store.All[models.Envelope](ctx, s.store, envelopeOrder)
	})
}

// ActiveEnvelopes returns all envelopes that are not archived.
func (s *Service) ActiveEnvelopes(ctx context.Context) ([]models.Envelope, error) {
	return read(ctx, s, "activeEnvelopes", func(ctx context.Context) ([]models.Envelope, error) {
		return store.Where[models.Envelope](ctx, s.store, envelopeOrder, "archived = ?", false)
	})
}

// EnvelopesByCategory returns the envelopes of a category. The result is cached.
func (s *Service) EnvelopesByCategory(ctx context.Context, category string, includeArchived bool) ([]models.Envelope, error) {
	key := fmt.Sprintf("category:%s:%t", category, includeArchived)

	return cached(ctx, s, projection.Envelopes, key, CategoryTTL, func(ctx context.Context) ([]models.Envelope, error) {
		if includeArchived {
			return store.Where[models.Envelope](ctx, s.store, "name", "category = ?", category)
		}
		return store.Where[models.Envelope](ctx, s.store, "name", "category = ? AND archived = ?", category, false)
	})
}
