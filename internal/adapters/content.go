package adapters

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/pgxscan"
	"github.com/jackc/pgx/v4"

	"gitlab.com/contesa/contesa/internal/domain"
	"gitlab.com/contesa/contesa/internal/models"
)

var contentTables = map[models.ContentType]string{
	models.ContentDiscussion: "discussions",
	models.ContentComment:    "comments",
	models.ContentDebate:     "debates",
}

type contentRepo struct {
	db DBTX
}

func NewContentRepo(db DBTX) domain.ContentRepo {
	return &contentRepo{db}
}

func (r *contentRepo) Content(ctx context.Context, ref models.ContentRef) (*models.Content, error) {
	sql, args, _ := psql.
		Select("id", "author_id", "moderation_status", "report_count",
			"is_featured", "is_pinned", "moderated_by", "last_moderation_action", "created_at").
		From(contentTables[ref.Type]).
		Where(sq.Eq{"id": ref.ID}).
		ToSql()

	item := &models.Content{}
	err := pgxscan.Get(ctx, r.db, item, sql, args...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *contentRepo) UpdateModeration(ctx context.Context, ref models.ContentRef, status models.ModerationStatus, moderatedBy int, at time.Time) error {
	sql, args, _ := psql.
		Update(contentTables[ref.Type]).
		Set("moderation_status", status).
		Set("moderated_by", moderatedBy).
		Set("last_moderation_action", at).
		Where(sq.Eq{"id": ref.ID}).
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

func (r *contentRepo) SetFeatured(ctx context.Context, ctype models.ContentType, ids []int, featured bool) ([]int, error) {
	return r.setFlag(ctx, ctype, ids, "is_featured", featured)
}

func (r *contentRepo) SetPinned(ctx context.Context, ctype models.ContentType, ids []int, pinned bool) ([]int, error) {
	return r.setFlag(ctx, ctype, ids, "is_pinned", pinned)
}

// setFlag skips rows already at the target value so the returned ids describe
// flips that really happened.
func (r *contentRepo) setFlag(ctx context.Context, ctype models.ContentType, ids []int, col string, value bool) ([]int, error) {
	sql, args, _ := psql.
		Update(contentTables[ctype]).
		Set(col, value).
		Where(sq.Eq{"id": ids}).
		Where(sq.NotEq{col: value}).
		Suffix("RETURNING id").
		ToSql()

	changed := []int{}
	if err := pgxscan.Select(ctx, r.db, &changed, sql, args...); err != nil {
		return nil, err
	}
	return changed, nil
}

func (r *contentRepo) IncrementReportCount(ctx context.Context, ref models.ContentRef) error {
	sql, args, _ := psql.
		Update(contentTables[ref.Type]).
		Set("report_count", sq.Expr("report_count + 1")).
		Where(sq.Eq{"id": ref.ID}).
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

func (r *contentRepo) CreateDiscussion(ctx context.Context, d *models.Discussion) error {
	sql, args, _ := psql.
		Insert("discussions").
		Columns("author_id", "title", "body").
		Values(d.AuthorID, d.Title, d.Body).
		Suffix("RETURNING id, created_at").
		ToSql()

	row := r.db.QueryRow(ctx, sql, args...)
	return row.Scan(&d.ID, &d.CreatedAt)
}

func (r *contentRepo) CreateComment(ctx context.Context, c *models.Comment) error {
	sql, args, _ := psql.
		Insert("comments").
		Columns("author_id", "discussion_id", "body").
		Values(c.AuthorID, c.DiscussionID, c.Body).
		Suffix("RETURNING id, created_at").
		ToSql()

	row := r.db.QueryRow(ctx, sql, args...)
	return row.Scan(&c.ID, &c.CreatedAt)
}

func (r *contentRepo) CreateDebate(ctx context.Context, d *models.Debate) error {
	sql, args, _ := psql.
		Insert("debates").
		Columns("author_id", "title", "position").
		Values(d.AuthorID, d.Title, d.Position).
		Suffix("RETURNING id, created_at").
		ToSql()

	row := r.db.QueryRow(ctx, sql, args...)
	return row.Scan(&d.ID, &d.CreatedAt)
}
