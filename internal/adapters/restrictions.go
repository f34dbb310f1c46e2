package adapters

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/pgxscan"

	"gitlab.com/contesa/contesa/internal/domain"
	"gitlab.com/contesa/contesa/internal/models"
)

type restrictionRepo struct {
	db DBTX
}

func NewRestrictionRepo(db DBTX) domain.RestrictionRepo {
	return &restrictionRepo{db}
}

func (r *restrictionRepo) InsertRestriction(ctx context.Context, rec *models.ContentRestriction) error {
	sql, args, _ := psql.
		Insert("content_restrictions").
		Columns("content_type", "content_id", "restriction_type", "moderator_id", "reason", "created_at").
		Values(rec.ContentType, rec.ContentID, rec.RestrictionType, rec.ModeratorID, rec.Reason, rec.CreatedAt).
		Suffix("RETURNING id").
		ToSql()

	row := r.db.QueryRow(ctx, sql, args...)
	return row.Scan(&rec.ID)
}

func (r *restrictionRepo) RestrictionsFor(ctx context.Context, ref models.ContentRef, limit, offset int) ([]models.ContentRestriction, error) {
	q := psql.
		Select("id", "content_type", "content_id", "restriction_type", "moderator_id", "reason", "created_at").
		From("content_restrictions").
		Where(sq.Eq{"content_type": ref.Type, "content_id": ref.ID}).
		OrderBy("created_at DESC", "id DESC").
		Offset(uint64(offset))
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	sql, args, _ := q.ToSql()

	recs := []models.ContentRestriction{}
	err := pgxscan.Select(ctx, r.db, &recs, sql, args...)
	if err != nil {
		return nil, err
	}
	return recs, nil
}
