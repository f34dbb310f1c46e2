package models

import "time"

// ContentType identifies which table a moderatable item lives in.
type ContentType string

const (
	ContentDiscussion ContentType = "discussion"
	ContentComment    ContentType = "comment"
	ContentDebate     ContentType = "debate"
)

func (t ContentType) Valid() bool {
	switch t {
	case ContentDiscussion, ContentComment, ContentDebate:
		return true
	}
	return false
}

// ContentRef points at one moderatable item.
type ContentRef struct {
	Type ContentType `json:"content_type"`
	ID   int         `json:"content_id"`
}

// Content is the moderation projection of a content row, shared by all three
// content tables. The status field here is denormalized; the restriction
// ledger holds the canonical history.
type Content struct {
	ID                   int              `db:"id"`
	AuthorID             int              `db:"author_id"`
	ModerationStatus     ModerationStatus `db:"moderation_status"`
	ReportCount          int              `db:"report_count"`
	IsFeatured           bool             `db:"is_featured"`
	IsPinned             bool             `db:"is_pinned"`
	ModeratedBy          *int             `db:"moderated_by"`
	LastModerationAction *time.Time       `db:"last_moderation_action"`
	CreatedAt            time.Time        `db:"created_at"`
}

type Discussion struct {
	ID        int       `db:"id"`
	AuthorID  int       `db:"author_id"`
	Title     string    `db:"title"`
	Body      string    `db:"body"`
	CreatedAt time.Time `db:"created_at"`
}

type Comment struct {
	ID           int       `db:"id"`
	AuthorID     int       `db:"author_id"`
	DiscussionID int       `db:"discussion_id"`
	Body         string    `db:"body"`
	CreatedAt    time.Time `db:"created_at"`
}

// Debate is a structured two-sided discussion; moderation treats it exactly
// like the other content types.
type Debate struct {
	ID        int       `db:"id"`
	AuthorID  int       `db:"author_id"`
	Title     string    `db:"title"`
	Position  string    `db:"position"`
	CreatedAt time.Time `db:"created_at"`
}
