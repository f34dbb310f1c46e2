package models

import "time"

type ReportReason string

const (
	ReasonSpam           ReportReason = "spam"
	ReasonHarassment     ReportReason = "harassment"
	ReasonMisinformation ReportReason = "misinformation"
	ReasonInappropriate  ReportReason = "inappropriate"
	ReasonOffTopic       ReportReason = "off_topic"
	ReasonOther          ReportReason = "other"
)

func (r ReportReason) Valid() bool {
	switch r {
	case ReasonSpam, ReasonHarassment, ReasonMisinformation,
		ReasonInappropriate, ReasonOffTopic, ReasonOther:
		return true
	}
	return false
}

type ReportStatus string

const (
	ReportUnresolved ReportStatus = "unresolved"
	ReportInProgress ReportStatus = "in_progress"
	ReportResolved   ReportStatus = "resolved"
	ReportDismissed  ReportStatus = "dismissed"
)

func (s ReportStatus) Valid() bool {
	switch s {
	case ReportUnresolved, ReportInProgress, ReportResolved, ReportDismissed:
		return true
	}
	return false
}

// Closed reports whether the status terminates triage.
func (s ReportStatus) Closed() bool {
	return s == ReportResolved || s == ReportDismissed
}

type Report struct {
	ID          int          `db:"id"`
	ReporterID  int          `db:"reporter_id"`
	ContentType ContentType  `db:"content_type"`
	ContentID   int          `db:"content_id"`
	Reason      ReportReason `db:"reason"`
	Description *string      `db:"description"`
	Status      ReportStatus `db:"status"`
	// ResolvedBy/ResolvedAt record the last moderator who closed the report.
	// Reopening a report does not clear them.
	ResolvedBy *int       `db:"resolved_by"`
	ResolvedAt *time.Time `db:"resolved_at"`
	CreatedAt  time.Time  `db:"created_at"`
}

// ReasonCount is one row of the triage dashboard: how many unresolved
// reports cite a given reason.
type ReasonCount struct {
	Reason ReportReason `db:"reason"`
	Count  int          `db:"count"`
}
