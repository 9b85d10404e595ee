package models

import "time"

// CacheEntry is a cached, JSON encoded value with an expiry.
type CacheEntry struct {
	Key       string    `gorm:"primaryKey"`
	Value     string    // JSON
	ExpiresAt time.Time `gorm:"index;index:idx_cache_category_expires,priority:2"`
	Category  string    `gorm:"index;index:idx_cache_category_expires,priority:1"`
}

// TableName keeps the collection name of the local database.
func (CacheEntry) TableName() string {
	return "cache"
}
