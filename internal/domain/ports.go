package domain

import (
	"context"
	"time"

	"gitlab.com/contesa/contesa/internal/models"
)

// ContentRepo is the store collaborator for the three content tables.
// Implementations must return ErrNotFound when a ref doesn't resolve.
type ContentRepo interface {
	Content(ctx context.Context, ref models.ContentRef) (*models.Content, error)
	UpdateModeration(ctx context.Context, ref models.ContentRef, status models.ModerationStatus, moderatedBy int, at time.Time) error
	// SetFeatured and SetPinned flip the flag on every id in one statement,
	// returning the ids of rows whose value actually changed. Missing ids and
	// rows already at the target value are simply unmatched.
	SetFeatured(ctx context.Context, ctype models.ContentType, ids []int, featured bool) ([]int, error)
	SetPinned(ctx context.Context, ctype models.ContentType, ids []int, pinned bool) ([]int, error)
	IncrementReportCount(ctx context.Context, ref models.ContentRef) error

	CreateDiscussion(ctx context.Context, d *models.Discussion) error
	CreateComment(ctx context.Context, c *models.Comment) error
	CreateDebate(ctx context.Context, d *models.Debate) error
}

type RestrictionRepo interface {
	InsertRestriction(ctx context.Context, r *models.ContentRestriction) error
	RestrictionsFor(ctx context.Context, ref models.ContentRef, limit, offset int) ([]models.ContentRestriction, error)
}

// AuditRepo deliberately has no update or delete: entries are append-only.
type AuditRepo interface {
	InsertAudit(ctx context.Context, e *models.AuditEntry) error
	AuditBySubject(ctx context.Context, targetType string, subjectID, limit, offset int) ([]models.AuditEntry, error)
	SearchAudit(ctx context.Context, f models.AuditFilter) ([]models.AuditEntry, error)
}

type ReportRepo interface {
	InsertReport(ctx context.Context, r *models.Report) error
	Report(ctx context.Context, id int) (*models.Report, error)
	UpdateReport(ctx context.Context, r *models.Report) error
	ListReports(ctx context.Context, status *models.ReportStatus, limit, offset int) ([]models.Report, error)
	UnresolvedByReason(ctx context.Context) ([]models.ReasonCount, error)
}

type UserRepo interface {
	User(ctx context.Context, id int) (*models.User, error)
	UpdateUserRole(ctx context.Context, id int, role models.Role) error
}

// Notifier delivers one notification. Callers treat it as fire-and-forget;
// retries live in the outbox, not here.
type Notifier interface {
	Notify(ctx context.Context, userID int, n models.Notification) error
}
