package domain

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"gitlab.com/contesa/contesa/internal/models"
)

type BulkFailure struct {
	ID  int    `json:"id"`
	Err string `json:"error"`
}

// BulkResult aggregates a fan-out: per-item outcomes are independent, the
// batch never aborts on one failure.
type BulkResult struct {
	Processed int           `json:"processed"`
	Failed    []BulkFailure `json:"failed"`
}

func (r *BulkResult) fail(id int, err error) {
	r.Failed = append(r.Failed, BulkFailure{ID: id, Err: err.Error()})
}

// BulkCoordinator applies one operation across many ids. Items are processed
// independently; order is unspecified.
type BulkCoordinator struct {
	engine  *Engine
	users   *UserService
	content ContentRepo
	audit   *AuditRecorder
	logger  zerolog.Logger
	now     func() time.Time
}

func NewBulkCoordinator(engine *Engine, users *UserService, content ContentRepo, audit *AuditRecorder, logger zerolog.Logger) *BulkCoordinator {
	return &BulkCoordinator{
		engine:  engine,
		users:   users,
		content: content,
		audit:   audit,
		logger:  logger,
		now:     time.Now,
	}
}

func (c *BulkCoordinator) SetStatus(ctx context.Context, actor *models.User, ctype models.ContentType, ids []int, target models.ModerationStatus, reason string) BulkResult {
	var res BulkResult
	for _, id := range ids {
		ref := models.ContentRef{Type: ctype, ID: id}
		if err := c.engine.SetStatus(ctx, actor, ref, target, reason); err != nil {
			res.fail(id, err)
			continue
		}
		res.Processed++
	}
	return res
}

func (c *BulkCoordinator) ChangeRole(ctx context.Context, actor *models.User, userIDs []int, newRole models.Role, reason string) BulkResult {
	var res BulkResult
	for _, id := range userIDs {
		if err := c.users.ChangeRole(ctx, actor, id, newRole, reason); err != nil {
			res.fail(id, err)
			continue
		}
		res.Processed++
	}
	return res
}

// SetFeatured flips the flag across all ids in a single multi-row update, so
// that part is all-or-nothing. Audit entries are then written concurrently
// and best-effort, one per row the update actually changed; ids that matched
// no row or were already at the target value leave no trace.
func (c *BulkCoordinator) SetFeatured(ctx context.Context, actor *models.User, ctype models.ContentType, ids []int, featured bool) (BulkResult, error) {
	action := models.ActionFeature
	if !featured {
		action = models.ActionUnfeature
	}
	return c.setFlag(ctx, actor, ctype, ids, string(flagFeatured), featured, action, c.content.SetFeatured)
}

func (c *BulkCoordinator) SetPinned(ctx context.Context, actor *models.User, ctype models.ContentType, ids []int, pinned bool) (BulkResult, error) {
	action := models.ActionPin
	if !pinned {
		action = models.ActionUnpin
	}
	return c.setFlag(ctx, actor, ctype, ids, string(flagPinned), pinned, action, c.content.SetPinned)
}

func (c *BulkCoordinator) setFlag(ctx context.Context, actor *models.User, ctype models.ContentType, ids []int, field string, value bool, action models.ActionType, set func(context.Context, models.ContentType, []int, bool) ([]int, error)) (BulkResult, error) {
	var res BulkResult
	if !ctype.Valid() {
		return res, ValidationError{Field: "content_type", Msg: "unknown content type"}
	}
	if err := c.engine.gate.Allow(actor.Role, OpModerateContent); err != nil {
		return res, err
	}
	if len(ids) == 0 {
		return res, nil
	}
	changed, err := set(ctx, ctype, ids, value)
	if err != nil {
		return res, storageErr("bulk update "+field, err)
	}
	res.Processed = len(ids)

	at := c.now()
	var wg sync.WaitGroup
	for _, id := range changed {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			c.audit.AppendBestEffort(ctx, &models.AuditEntry{
				TargetType: string(ctype),
				SubjectID:  id,
				ActorID:    &actor.ID,
				Action:     action,
				Field:      field,
				OldValue:   strconv.FormatBool(!value),
				NewValue:   strconv.FormatBool(value),
				CreatedAt:  at,
			})
		}(id)
	}
	wg.Wait()
	return res, nil
}
