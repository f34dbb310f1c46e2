package adapters

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/pgxscan"
	"github.com/jackc/pgx/v4"

	"gitlab.com/contesa/contesa/internal/domain"
	"gitlab.com/contesa/contesa/internal/models"
)

type reportRepo struct {
	db DBTX
}

func NewReportRepo(db DBTX) domain.ReportRepo {
	return &reportRepo{db}
}

const reportColumns = "id, reporter_id, content_type, content_id, reason, description, status, resolved_by, resolved_at, created_at"

func (r *reportRepo) InsertReport(ctx context.Context, report *models.Report) error {
	sql, args, _ := psql.
		Insert("reports").
		Columns("reporter_id", "content_type", "content_id", "reason", "description", "status", "created_at").
		Values(report.ReporterID, report.ContentType, report.ContentID, report.Reason, report.Description, report.Status, report.CreatedAt).
		Suffix("RETURNING id").
		ToSql()

	row := r.db.QueryRow(ctx, sql, args...)
	return row.Scan(&report.ID)
}

func (r *reportRepo) Report(ctx context.Context, id int) (*models.Report, error) {
	sql, args, _ := psql.
		Select(reportColumns).
		From("reports").
		Where(sq.Eq{"id": id}).
		ToSql()

	report := &models.Report{}
	err := pgxscan.Get(ctx, r.db, report, sql, args...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (r *reportRepo) UpdateReport(ctx context.Context, report *models.Report) error {
	sql, args, _ := psql.
		Update("reports").
		Set("status", report.Status).
		Set("resolved_by", report.ResolvedBy).
		Set("resolved_at", report.ResolvedAt).
		Where(sq.Eq{"id": report.ID}).
		ToSql()

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *reportRepo) ListReports(ctx context.Context, status *models.ReportStatus, limit, offset int) ([]models.Report, error) {
	q := psql.
		Select(reportColumns).
		From("reports").
		OrderBy("created_at DESC", "id DESC").
		Offset(uint64(offset))
	if status != nil {
		q = q.Where(sq.Eq{"status": *status})
	}
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	sql, args, _ := q.ToSql()

	reports := []models.Report{}
	err := pgxscan.Select(ctx, r.db, &reports, sql, args...)
	if err != nil {
		return nil, err
	}
	return reports, nil
}

func (r *reportRepo) UnresolvedByReason(ctx context.Context) ([]models.ReasonCount, error) {
	sql, args, _ := psql.
		Select("reason", "COUNT(*) AS count").
		From("reports").
		Where(sq.Eq{"status": models.ReportUnresolved}).
		GroupBy("reason").
		OrderBy("count DESC").
		ToSql()

	counts := []models.ReasonCount{}
	err := pgxscan.Select(ctx, r.db, &counts, sql, args...)
	if err != nil {
		return nil, err
	}
	return counts, nil
}
