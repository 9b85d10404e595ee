package store

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"
	"github.com/violet-vault/backend/internal/models"
	"gorm.io/gorm"
)

// MaxAuditLogEntries is the number of audit log entries kept by Optimize.
const MaxAuditLogEntries = 1000

// Audit appends an entry to the audit log. details is encoded as JSON.
func (s *Store) Audit(ctx context.Context, action, entityType, entityID string, details any) error {
	encoded, err := json.Marshal(details)
	if err != nil {
		encoded = []byte("null")
	}

	return s.db.WithContext(ctx).Create(&models.AuditLogEntry{
		Timestamp:  s.now(),
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    string(encoded),
	}).Error
}

// AuditLog returns the newest audit log entries, newest first. If entityID is
// not empty, only entries for that entity are returned.
func (s *Store) AuditLog(ctx context.Context, entityID string, limit int) ([]models.AuditLogEntry, error) {
	entries := []models.AuditLogEntry{}
	q := s.db.WithContext(ctx).Order("timestamp DESC, id DESC").Limit(limit)
	if entityID != "" {
		q = q.Where("entity_id = ?", entityID)
	}
	err := q.Find(&entries).Error
	return entries, err
}

// CreateBudgetCommit records a commit in the budget history.
func (s *Store) CreateBudgetCommit(ctx context.Context, commit models.BudgetCommit) error {
	if commit.Hash == "" {
		commit.Hash = models.NewID()
	}
	if commit.Timestamp.IsZero() {
		commit.Timestamp = s.now()
	}
	commit.Timestamp = commit.Timestamp.UTC()
	return s.db.WithContext(ctx).Create(&commit).Error
}

// BudgetCommit returns the commit with the given hash.
func (s *Store) BudgetCommit(ctx context.Context, hash string) (models.BudgetCommit, error) {
	var commit models.BudgetCommit
	err := s.db.WithContext(ctx).Where("hash = ?", hash).First(&commit).Error
	return commit, err
}

// BudgetCommits returns the newest commits, newest first.
func (s *Store) BudgetCommits(ctx context.Context, limit int) ([]models.BudgetCommit, error) {
	commits := []models.BudgetCommit{}
	err := s.db.WithContext(ctx).Order("timestamp DESC").Limit(limit).Find(&commits).Error
	return commits, err
}

// OptimizeResult reports what Optimize removed.
type OptimizeResult struct {
	ExpiredCacheEntries int64 `json:"expiredCacheEntries"`
	AuditLogEntries     int64 `json:"auditLogEntries"`
}

// Optimize removes expired cache entries and trims the audit log to the
// newest MaxAuditLogEntries entries.
func (s *Store) Optimize(ctx context.Context) (OptimizeResult, error) {
	var result OptimizeResult

	err := s.Transaction(ctx, func(tx *Store) error {
		expired, err := tx.CleanupCache(ctx, "")
		if err != nil {
			return err
		}
		result.ExpiredCacheEntries = expired

		keep := tx.db.Model(&models.AuditLogEntry{}).Select("id").Order("timestamp DESC, id DESC").Limit(MaxAuditLogEntries)
		q := tx.db.WithContext(ctx).Where("id NOT IN (?)", keep).Delete(&models.AuditLogEntry{})
		if q.Error != nil {
			return q.Error
		}
		result.AuditLogEntries = q.RowsAffected

		return nil
	})
	if err != nil {
		return OptimizeResult{}, err
	}

	log.Info().Str("source", "store").Int64("cache", result.ExpiredCacheEntries).Int64("auditLog", result.AuditLogEntries).Msg("optimized database")
	return result, nil
}

// Stats holds the number of records per collection.
type Stats struct {
	Envelopes       int64 `json:"envelopes"`
	Transactions    int64 `json:"transactions"`
	Bills           int64 `json:"bills"`
	SavingsGoals    int64 `json:"savingsGoals"`
	PaycheckHistory int64 `json:"paycheckHistory"`
	Debts           int64 `json:"debts"`
	AuditLog        int64 `json:"auditLog"`
	Cache           int64 `json:"cache"`
	BudgetCommits   int64 `json:"budgetCommits"`
}

// Stats counts the records of every collection.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var stats Stats

	counts := []struct {
		model any
		dest  *int64
	}{
		{&models.Envelope{}, &stats.Envelopes},
		{&models.Transaction{}, &stats.Transactions},
		{&models.Bill{}, &stats.Bills},
		{&models.SavingsGoal{}, &stats.SavingsGoals},
		{&models.PaycheckHistory{}, &stats.PaycheckHistory},
		{&models.Debt{}, &stats.Debts},
		{&models.AuditLogEntry{}, &stats.AuditLog},
		{&models.CacheEntry{}, &stats.Cache},
		{&models.BudgetCommit{}, &stats.BudgetCommits},
	}

	for _, c := range counts {
		err := s.db.WithContext(ctx).Model(c.model).Count(c.dest).Error
		if err != nil {
			return Stats{}, err
		}
	}

	return stats, nil
}

// ClearData deletes all records of all collections.
func (s *Store) ClearData(ctx context.Context) error {
	return s.Transaction(ctx, func(tx *Store) error {
		for _, model := range models.Registry {
			err := tx.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}
