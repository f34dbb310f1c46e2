package domain

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"gitlab.com/contesa/contesa/internal/models"
)

// Engine owns the moderation_status of every content item. It is the only
// sanctioned writer of that field: writing it directly through the store
// would break the restriction/audit history this engine maintains.
type Engine struct {
	gate         *Gate
	content      ContentRepo
	restrictions *RestrictionLedger
	audit        *AuditRecorder
	outbox       *Outbox
	logger       zerolog.Logger
	now          func() time.Time
}

func NewEngine(gate *Gate, content ContentRepo, restrictions *RestrictionLedger, audit *AuditRecorder, outbox *Outbox, logger zerolog.Logger) *Engine {
	return &Engine{
		gate:         gate,
		content:      content,
		restrictions: restrictions,
		audit:        audit,
		outbox:       outbox,
		logger:       logger,
		now:          time.Now,
	}
}

// SetStatus transitions a content item to the target status.
//
// The transition topology is unrestricted; what is constrained is who may
// transition (moderator and above) and that hiding content (quarantine,
// removal) carries a reason. Requesting the current status is a no-op and
// reports success without writing anything.
//
// The status row update is the primary write: if it fails, nothing else is
// attempted. The restriction record and audit entry that follow are best
// effort: a failure there is logged and swallowed, so the audit trail is not
// guaranteed complete.
func (e *Engine) SetStatus(ctx context.Context, actor *models.User, ref models.ContentRef, target models.ModerationStatus, reason string) error {
	if !ref.Type.Valid() {
		return ValidationError{Field: "content_type", Msg: "unknown content type"}
	}
	if !target.Valid() {
		return ValidationError{Field: "status", Msg: "unknown moderation status"}
	}
	if err := e.gate.Allow(actor.Role, OpModerateContent); err != nil {
		return err
	}

	item, err := e.content.Content(ctx, ref)
	if err != nil {
		return storageErr("read content", err)
	}
	if item.ModerationStatus == target {
		return nil
	}
	// The reason requirement only applies to transitions that change the
	// status; re-requesting the current status is a no-op either way.
	if target.Restricted() && strings.TrimSpace(reason) == "" {
		return ValidationError{Field: "reason", Msg: fmt.Sprintf("a reason is required to set status %q", target)}
	}

	at := e.now()
	if err := e.content.UpdateModeration(ctx, ref, target, actor.ID, at); err != nil {
		return storageErr("update moderation status", err)
	}

	var reasonPtr *string
	if r := strings.TrimSpace(reason); r != "" {
		reasonPtr = &r
	}
	e.restrictions.AppendBestEffort(ctx, &models.ContentRestriction{
		ContentType:     ref.Type,
		ContentID:       ref.ID,
		RestrictionType: models.RestrictionForStatus(target),
		ModeratorID:     actor.ID,
		Reason:          reasonPtr,
		CreatedAt:       at,
	})
	e.audit.AppendBestEffort(ctx, &models.AuditEntry{
		TargetType: string(ref.Type),
		SubjectID:  ref.ID,
		ActorID:    &actor.ID,
		Action:     models.ActionForTransition(item.ModerationStatus, target),
		Field:      "moderation_status",
		OldValue:   string(item.ModerationStatus),
		NewValue:   string(target),
		CreatedAt:  at,
	})
	return nil
}

// SetFeatured flips the is_featured flag. Featuring is orthogonal to the
// status machine; it notifies the author through the outbox.
func (e *Engine) SetFeatured(ctx context.Context, actor *models.User, ref models.ContentRef, featured bool) error {
	return e.setFlag(ctx, actor, ref, flagFeatured, featured)
}

func (e *Engine) SetPinned(ctx context.Context, actor *models.User, ref models.ContentRef, pinned bool) error {
	return e.setFlag(ctx, actor, ref, flagPinned, pinned)
}

type contentFlag string

const (
	flagFeatured contentFlag = "is_featured"
	flagPinned   contentFlag = "is_pinned"
)

func (e *Engine) setFlag(ctx context.Context, actor *models.User, ref models.ContentRef, flag contentFlag, value bool) error {
	if !ref.Type.Valid() {
		return ValidationError{Field: "content_type", Msg: "unknown content type"}
	}
	if err := e.gate.Allow(actor.Role, OpModerateContent); err != nil {
		return err
	}
	item, err := e.content.Content(ctx, ref)
	if err != nil {
		return storageErr("read content", err)
	}

	old := item.IsPinned
	set := e.content.SetPinned
	action := models.ActionPin
	if !value {
		action = models.ActionUnpin
	}
	if flag == flagFeatured {
		old = item.IsFeatured
		set = e.content.SetFeatured
		action = models.ActionFeature
		if !value {
			action = models.ActionUnfeature
		}
	}
	if old == value {
		return nil
	}
	if _, err := set(ctx, ref.Type, []int{ref.ID}, value); err != nil {
		return storageErr("update "+string(flag), err)
	}

	e.audit.AppendBestEffort(ctx, &models.AuditEntry{
		TargetType: string(ref.Type),
		SubjectID:  ref.ID,
		ActorID:    &actor.ID,
		Action:     action,
		Field:      string(flag),
		OldValue:   strconv.FormatBool(old),
		NewValue:   strconv.FormatBool(value),
		CreatedAt:  e.now(),
	})
	if flag == flagFeatured && value {
		e.outbox.Enqueue(item.AuthorID, models.Notification{
			UserID:    item.AuthorID,
			NotifType: models.NotifTypeFeatured,
			Title:     "Your post was featured",
			Text:      fmt.Sprintf("A moderator featured your %s.", ref.Type),
			ActionURL: fmt.Sprintf("/%ss/%d", ref.Type, ref.ID),
		})
	}
	return nil
}
