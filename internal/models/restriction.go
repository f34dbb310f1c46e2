package models

import "time"

// ContentRestriction is one immutable entry in the per-content moderation
// history, written on every status transition.
type ContentRestriction struct {
	ID              int             `db:"id"`
	ContentType     ContentType     `db:"content_type"`
	ContentID       int             `db:"content_id"`
	RestrictionType RestrictionType `db:"restriction_type"`
	ModeratorID     int             `db:"moderator_id"`
	Reason          *string         `db:"reason"`
	CreatedAt       time.Time       `db:"created_at"`
}
