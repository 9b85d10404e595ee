package store

import (
	"context"
	"time"

	"gorm.io/gorm/clause"
)

type toucher interface {
	Touch(time.Time)
}

// Put inserts or replaces the record with the same primary key.
//
// rec is passed by value and the stored copy is returned, the caller's
// record is never modified.
func Put[T any](ctx context.Context, s *Store, rec T) (T, error) {
	if t, ok := any(&rec).(toucher); ok {
		t.Touch(s.now())
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&rec).Error
	return rec, err
}

// Get returns the record with the given ID.
func Get[T any](ctx context.Context, s *Store, id string) (T, error) {
	var rec T
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	return rec, err
}

// Find returns the record with the given ID and whether it exists.
// Only storage failures are returned as errors.
func Find[T any](ctx context.Context, s *Store, id string) (T, bool, error) {
	var recs []T
	err := s.db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&recs).Error
	if err != nil || len(recs) == 0 {
		var zero T
		return zero, false, err
	}
	return recs[0], true, nil
}

// Delete removes the record with the given ID. Deleting a record
// that does not exist is not an error.
func Delete[T any](ctx context.Context, s *Store, id string) error {
	var rec T
	return s.db.WithContext(ctx).Where("id = ?", id).Delete(&rec).Error
}

// All returns all records of a collection, ordered by the given clause.
func All[T any](ctx context.Context, s *Store, order string) ([]T, error) {
	recs := []T{}
	q := s.db.WithContext(ctx)
	if order != "" {
		q = q.Order(order)
	}
	err := q.Find(&recs).Error
	return recs, err
}

// Where returns all records of a collection matching the condition.
func Where[T any](ctx context.Context, s *Store, order string, query any, args ...any) ([]T, error) {
	recs := []T{}
	q := s.db.WithContext(ctx).Where(query, args...)
	if order != "" {
		q = q.Order(order)
	}
	err := q.Find(&recs).Error
	return recs, err
}

// BulkPut upserts all records in one statement batch.
func BulkPut[T any](ctx context.Context, s *Store, recs []T) error {
	if len(recs) == 0 {
		return nil
	}

	now := s.now()
	batch := make([]T, len(recs))
	copy(batch, recs)
	for i := range batch {
		if t, ok := any(&batch[i]).(toucher); ok {
			t.Touch(now)
		}
	}

	return s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).CreateInBatches(&batch, 100).Error
}

// Count returns the number of records in a collection.
func Count[T any](ctx context.Context, s *Store) (int64, error) {
	var (
		rec   T
		count int64
	)
	err := s.db.WithContext(ctx).Model(&rec).Count(&count).Error
	return count, err
}
