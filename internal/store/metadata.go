package store

import (
	"context"

	"github.com/violet-vault/backend/internal/models"
)

// BudgetMetadata returns the singleton metadata record. If it has never been
// written, a zero-valued record is returned.
func (s *Store) BudgetMetadata(ctx context.Context) (models.BudgetMetadata, error) {
	m, ok, err := Find[models.BudgetMetadata](ctx, s, models.MetadataID)
	if err != nil {
		return models.BudgetMetadata{}, err
	}

	if !ok {
		return models.BudgetMetadata{ID: models.MetadataID}, nil
	}

	return m, nil
}

// SetBudgetMetadata writes the metadata record and increments its version.
func (s *Store) SetBudgetMetadata(ctx context.Context, m models.BudgetMetadata) (models.BudgetMetadata, error) {
	m.ID = models.MetadataID
	m.Version++
	return Put(ctx, s, m)
}
