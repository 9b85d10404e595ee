// Package query implements the read side of the budget.
//
// Reads that fail because of the local database are retried with
// exponential backoff. Some results are cached in the store's cache
// collection until a mutation invalidates their scope.
package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
	"github.com/violet-vault/backend/internal/projection"
	"github.com/violet-vault/backend/internal/store"
)

const (
	// Retries is how often a failed read is retried.
	Retries = 3

	// RetryBase is the delay before the first retry. It doubles with every retry.
	RetryBase = 50 * time.Millisecond

	// CategoryTTL is how long envelopes by category are cached.
	CategoryTTL = time.Minute
)

// Service answers queries against the store.
type Service struct {
	store *store.Store
	ttl   time.Duration
	log   zerolog.Logger
	now   func() time.Time
}

// New creates a Service. ttl is the lifetime of cached results.
func New(s *store.Store, ttl time.Duration, logger zerolog.Logger) *Service {
	return &Service{
		store: s,
		ttl:   ttl,
		log:   logger,
		now:   time.Now,
	}
}

// DateRange bounds a query by date. Zero values are unbounded.
type DateRange struct {
	Start time.Time `form:"start" json:"start"`
	End   time.Time `form:"end" json:"end"`
}

func (s *Service) backoff() retry.Backoff {
	return retry.WithMaxRetries(Retries, retry.NewExponential(RetryBase))
}

// read runs fn and retries it while the store fails.
func read[T any](ctx context.Context, s *Service, name string, fn func(context.Context) (T, error)) (T, error) {
	var result T
	attempt := 0

	err := retry.Do(ctx, s.backoff(), func(ctx context.Context) error {
		attempt++

		r, err := fn(ctx)
		if errors.Is(err, store.ErrStorage) {
			s.log.Warn().Str("source", name).Int("attempt", attempt).Err(err).Msg("query failed, retrying")
			return retry.RetryableError(err)
		}

		if err != nil {
			return err
		}

		result = r
		return nil
	})

	if errors.Is(err, store.ErrStorage) {
		s.log.Error().Str("source", name).Int("attempts", attempt).Err(err).Msg("query failed")
	}
	return result, err
}

// cached returns the value cached under key. On a miss, it reads the value
// with fn and caches it in the category of the scope.
func cached[T any](ctx context.Context, s *Service, scope projection.Scope, key string, ttl time.Duration, fn func(context.Context) (T, error)) (T, error) {
	key = fmt.Sprintf("%s:%s", scope, key)

	var value T
	ok, err := s.store.GetCachedValue(ctx, key, &value)
	if err != nil {
		s.log.Warn().Str("source", "cache").Str("key", key).Err(err).Msg("cache read failed")
	}

	if ok {
		return value, nil
	}

	value, err = read(ctx, s, key, fn)
	if err != nil {
		return value, err
	}

	err = s.store.SetCachedValue(ctx, key, value, ttl, string(scope))
	if err != nil {
		s.log.Warn().Str("source", "cache").Str("key", key).Err(err).Msg("cache write failed")
	}

	return value, nil
}

// Invalidate removes all cached results of the scopes.
func (s *Service) Invalidate(ctx context.Context, scopes ...projection.Scope) {
	for _, scope := range scopes {
		n, err := s.store.InvalidateCacheKeys(ctx, fmt.Sprintf("%s:*", scope))
		if err != nil {
			s.log.Warn().Str("source", "cache").Str("scope", string(scope)).Err(err).Msg("cache invalidation failed")
			continue
		}

		if n > 0 {
			s.log.Debug().Str("source", "cache").Str("scope", string(scope)).Int("entries", n).Msg("cache invalidated")
		}
	}
}

// Cleanup removes expired cache entries.
func (s *Service) Cleanup(ctx context.Context) (int64, error) {
	return s.store.CleanupCache(ctx, "")
}

// bounded adds the date range to a condition on the date column.
func bounded(query string, args []any, column string, r DateRange) (string, []any) {
	if !r.Start.IsZero() {
		query += fmt.Sprintf(" AND %s >= ?", column)
		args = append(args, r.Start.UTC())
	}

	if !r.End.IsZero() {
		query += fmt.Sprintf(" AND %s <= ?", column)
		args = append(args, r.End.UTC())
	}

	return query, args
}

// days returns the time d days from now.
func (s *Service) days(d int) time.Time {
	return s.now().UTC().AddDate(0, 0, d)
}
