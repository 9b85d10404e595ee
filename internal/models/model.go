// Package models contains the records persisted in the local store.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Timestamps are stamped by the store on every write.
type Timestamps struct {
	CreatedAt    time.Time `json:"createdAt" gorm:"autoCreateTime" example:"2022-04-02T19:28:44.491514Z"`          // Time the record was created
	LastModified time.Time `json:"lastModified" gorm:"autoUpdateTime;index" example:"2022-04-17T20:14:01.048145Z"` // Last time the record was written
}

// UTC normalizes the timestamps to UTC.
//
// sqlite returns them as +0000, which is not the same location
// as time.UTC.
func (t *Timestamps) UTC() {
	t.CreatedAt = t.CreatedAt.In(time.UTC)
	t.LastModified = t.LastModified.In(time.UTC)
}

// NewID returns a new, time-sortable identifier.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Touch stamps the record as written at now.
func (t *Timestamps) Touch(now time.Time) {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.LastModified = now
}
