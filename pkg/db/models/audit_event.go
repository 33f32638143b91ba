package models

import "time"

// AuditEvent is an append-only record of a security or business action.
// Timestamp is supplied by the caller at the moment the action happened.
type AuditEvent struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	Event     string    `gorm:"column:event;type:text;not null"`
	Timestamp time.Time `gorm:"column:timestamp;not null;index:idx_log_event_timestamp"`
}

func (AuditEvent) TableName() string {
	return "log_event"
}
