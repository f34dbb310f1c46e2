package adapters

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/pgxscan"

	"gitlab.com/contesa/contesa/internal/domain"
	"gitlab.com/contesa/contesa/internal/models"
)

// auditRepo only knows how to insert and read. The audit_log table has no
// UPDATE or DELETE path anywhere in the codebase.
type auditRepo struct {
	db DBTX
}

func NewAuditRepo(db DBTX) domain.AuditRepo {
	return &auditRepo{db}
}

const auditColumns = "id, target_type, subject_id, actor_id, action_type, field_changed, old_value, new_value, created_at"

func (r *auditRepo) InsertAudit(ctx context.Context, e *models.AuditEntry) error {
	sql, args, _ := psql.
		Insert("audit_log").
		Columns("target_type", "subject_id", "actor_id", "action_type", "field_changed", "old_value", "new_value", "created_at").
		Values(e.TargetType, e.SubjectID, e.ActorID, e.Action, e.Field, e.OldValue, e.NewValue, e.CreatedAt).
		Suffix("RETURNING id").
		ToSql()

	row := r.db.QueryRow(ctx, sql, args...)
	return row.Scan(&e.ID)
}

func (r *auditRepo) AuditBySubject(ctx context.Context, targetType string, subjectID, limit, offset int) ([]models.AuditEntry, error) {
	q := psql.
		Select(auditColumns).
		From("audit_log").
		Where(sq.Eq{"target_type": targetType, "subject_id": subjectID}).
		OrderBy("created_at DESC", "id DESC").
		Offset(uint64(offset))
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	sql, args, _ := q.ToSql()

	entries := []models.AuditEntry{}
	err := pgxscan.Select(ctx, r.db, &entries, sql, args...)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *auditRepo) SearchAudit(ctx context.Context, f models.AuditFilter) ([]models.AuditEntry, error) {
	q := psql.
		Select(auditColumns).
		From("audit_log").
		OrderBy("created_at DESC", "id DESC").
		Offset(uint64(f.Offset))
	if f.ActorID != nil {
		q = q.Where(sq.Eq{"actor_id": *f.ActorID})
	}
	if f.Action != "" {
		q = q.Where(sq.Eq{"action_type": f.Action})
	}
	if f.TargetType != "" {
		q = q.Where(sq.Eq{"target_type": f.TargetType})
	}
	if f.Since != nil {
		q = q.Where(sq.GtOrEq{"created_at": *f.Since})
	}
	if f.Until != nil {
		q = q.Where(sq.Lt{"created_at": *f.Until})
	}
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	sql, args, _ := q.ToSql()

	entries := []models.AuditEntry{}
	err := pgxscan.Select(ctx, r.db, &entries, sql, args...)
	if err != nil {
		return nil, err
	}
	return entries, nil
}
