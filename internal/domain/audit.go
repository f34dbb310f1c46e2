package domain

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"gitlab.com/contesa/contesa/internal/models"
)

// AuditRecorder appends immutable entries describing field-level changes.
// Append is the only mutation it exposes; there is no update or delete.
type AuditRecorder struct {
	gate   *Gate
	repo   AuditRepo
	logger zerolog.Logger
	now    func() time.Time
}

func NewAuditRecorder(gate *Gate, repo AuditRepo, logger zerolog.Logger) *AuditRecorder {
	return &AuditRecorder{gate: gate, repo: repo, logger: logger, now: time.Now}
}

func (a *AuditRecorder) Append(ctx context.Context, e *models.AuditEntry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = a.now()
	}
	return storageErr("insert audit entry", a.repo.InsertAudit(ctx, e))
}

// AppendBestEffort is for secondary writes after a successful primary write:
// a failure is logged and swallowed so the caller still reports success.
func (a *AuditRecorder) AppendBestEffort(ctx context.Context, e *models.AuditEntry) {
	if err := a.Append(ctx, e); err != nil {
		a.logger.Warn().
			Err(err).
			Str("action", string(e.Action)).
			Str("target_type", e.TargetType).
			Int("subject_id", e.SubjectID).
			Msg("audit entry lost")
	}
}

// EntriesForSubject lists all audit entries for one subject, newest first.
func (a *AuditRecorder) EntriesForSubject(ctx context.Context, actor *models.User, targetType string, subjectID, limit, offset int) ([]models.AuditEntry, error) {
	if err := a.gate.Allow(actor.Role, OpViewAuditLog); err != nil {
		return nil, err
	}
	entries, err := a.repo.AuditBySubject(ctx, targetType, subjectID, limit, offset)
	return entries, storageErr("list audit entries", err)
}

func (a *AuditRecorder) Search(ctx context.Context, actor *models.User, f models.AuditFilter) ([]models.AuditEntry, error) {
	if err := a.gate.Allow(actor.Role, OpViewAuditLog); err != nil {
		return nil, err
	}
	entries, err := a.repo.SearchAudit(ctx, f)
	return entries, storageErr("search audit entries", err)
}
