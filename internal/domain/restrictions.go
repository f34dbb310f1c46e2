package domain

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"gitlab.com/contesa/contesa/internal/models"
)

// RestrictionLedger keeps the canonical history of status transitions,
// one immutable record per transition.
type RestrictionLedger struct {
	gate   *Gate
	repo   RestrictionRepo
	logger zerolog.Logger
	now    func() time.Time
}

func NewRestrictionLedger(gate *Gate, repo RestrictionRepo, logger zerolog.Logger) *RestrictionLedger {
	return &RestrictionLedger{gate: gate, repo: repo, logger: logger, now: time.Now}
}

func (l *RestrictionLedger) Append(ctx context.Context, r *models.ContentRestriction) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = l.now()
	}
	return storageErr("insert restriction", l.repo.InsertRestriction(ctx, r))
}

func (l *RestrictionLedger) AppendBestEffort(ctx context.Context, r *models.ContentRestriction) {
	if err := l.Append(ctx, r); err != nil {
		l.logger.Warn().
			Err(err).
			Str("content_type", string(r.ContentType)).
			Int("content_id", r.ContentID).
			Msg("restriction record lost")
	}
}

func (l *RestrictionLedger) History(ctx context.Context, actor *models.User, ref models.ContentRef, limit, offset int) ([]models.ContentRestriction, error) {
	if err := l.gate.Allow(actor.Role, OpModerateContent); err != nil {
		return nil, err
	}
	recs, err := l.repo.RestrictionsFor(ctx, ref, limit, offset)
	return recs, storageErr("list restrictions", err)
}
