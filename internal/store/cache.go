package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/ryanuber/go-glob"
	"github.com/violet-vault/backend/internal/models"
)

// SetCachedValue stores value as JSON under key until ttl has passed.
func (s *Store) SetCachedValue(ctx context.Context, key string, value any, ttl time.Duration, category string) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache value for %s cannot be encoded: %w", key, err)
	}

	_, err = Put(ctx, s, models.CacheEntry{
		Key:       key,
		Value:     string(encoded),
		ExpiresAt: s.now().Add(ttl),
		Category:  category,
	})
	return err
}

// GetCachedValue decodes the value cached under key into target.
//
// It returns false if there is no entry or the entry has expired. Expired
// entries are removed.
func (s *Store) GetCachedValue(ctx context.Context, key string, target any) (bool, error) {
	var entries []models.CacheEntry
	err := s.db.WithContext(ctx).Where("key = ?", key).Limit(1).Find(&entries).Error
	if err != nil {
		return false, err
	}

	if len(entries) == 0 {
		return false, nil
	}

	entry := entries[0]
	if !entry.ExpiresAt.After(s.now()) {
		return false, s.db.WithContext(ctx).Where("key = ?", key).Delete(&models.CacheEntry{}).Error
	}

	err = json.Unmarshal([]byte(entry.Value), target)
	if err != nil {
		// A broken entry is treated like a miss
		log.Warn().Str("source", "store").Str("key", key).Err(err).Msg("dropping undecodable cache entry")
		return false, s.db.WithContext(ctx).Where("key = ?", key).Delete(&models.CacheEntry{}).Error
	}

	return true, nil
}

// ClearCacheCategory removes all cache entries of a category.
func (s *Store) ClearCacheCategory(ctx context.Context, category string) error {
	return s.db.WithContext(ctx).Where("category = ?", category).Delete(&models.CacheEntry{}).Error
}

// CleanupCache removes expired cache entries and returns how many were removed.
// If category is empty, expired entries of all categories are removed.
func (s *Store) CleanupCache(ctx context.Context, category string) (int64, error) {
	q := s.db.WithContext(ctx).Where("expires_at <= ?", s.now())
	if category != "" {
		q = q.Where("category = ?", category)
	}

	q = q.Delete(&models.CacheEntry{})
	return q.RowsAffected, q.Error
}

// InvalidateCacheKeys removes all cache entries whose key matches the
// glob pattern, e.g. "transactions:*".
func (s *Store) InvalidateCacheKeys(ctx context.Context, pattern string) (int, error) {
	var keys []string
	err := s.db.WithContext(ctx).Model(&models.CacheEntry{}).Pluck("key", &keys).Error
	if err != nil {
		return 0, err
	}

	var matched []string
	for _, key := range keys {
		if glob.Glob(pattern, key) {
			matched = append(matched, key)
		}
	}

	if len(matched) == 0 {
		return 0, nil
	}

	err = s.db.WithContext(ctx).Where("key IN ?", matched).Delete(&models.CacheEntry{}).Error
	return len(matched), err
}
