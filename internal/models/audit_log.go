package models

import "time"

// AuditLogEntry records one committed change.
type AuditLogEntry struct {
	ID         uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Timestamp  time.Time `json:"timestamp" gorm:"index;index:idx_audit_entity_type_time,priority:2;index:idx_audit_entity_id_time,priority:2"`
	Action     string    `json:"action"`
	EntityType string    `json:"entityType" gorm:"index:idx_audit_entity_type_time,priority:1"`
	EntityID   string    `json:"entityId" gorm:"index:idx_audit_entity_id_time,priority:1"`
	Details    string    `json:"details"`
}

// TableName keeps the collection name of the local database.
func (AuditLogEntry) TableName() string {
	return "audit_log"
}
