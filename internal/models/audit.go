package models

import "time"

// AuditEntry records one field-level change. Entries are write-once: nothing
// in the codebase updates or deletes them.
type AuditEntry struct {
	ID         int        `db:"id"`
	TargetType string     `db:"target_type"`
	SubjectID  int        `db:"subject_id"`
	ActorID    *int       `db:"actor_id"` // nil means the system acted
	Action     ActionType `db:"action_type"`
	Field      string     `db:"field_changed"`
	OldValue   string     `db:"old_value"`
	NewValue   string     `db:"new_value"`
	CreatedAt  time.Time  `db:"created_at"`
}

// AuditFilter narrows audit reads. Zero-valued fields match everything.
type AuditFilter struct {
	ActorID    *int
	Action     ActionType
	TargetType string
	Since      *time.Time
	Until      *time.Time
	Limit      int
	Offset     int
}
