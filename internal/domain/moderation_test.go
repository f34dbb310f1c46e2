package domain_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"gitlab.com/contesa/contesa/internal/domain"
	"gitlab.com/contesa/contesa/internal/models"
)

func TestSetStatusQuarantine(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	s := newStack(t)
	mod := userWith(1, models.RoleModerator)
	ref := s.seedContent(models.ContentDiscussion, 10, 2, models.StatusApproved)

	err := s.engine.SetStatus(ctx, mod, ref, models.StatusQuarantined, "spam wave")
	require.NoError(err)

	item, err := s.mem.Content(ctx, ref)
	require.NoError(err)
	require.Equal(models.StatusQuarantined, item.ModerationStatus)
	require.NotNil(item.ModeratedBy)
	require.Equal(mod.ID, *item.ModeratedBy)
	require.NotNil(item.LastModerationAction)

	recs, err := s.mem.RestrictionsFor(ctx, ref, 0, 0)
	require.NoError(err)
	require.Len(recs, 1)
	require.Equal(models.RestrictionQuarantined, recs[0].RestrictionType)
	require.NotNil(recs[0].Reason)
	require.Equal("spam wave", *recs[0].Reason)

	entries, err := s.mem.AuditBySubject(ctx, string(ref.Type), ref.ID, 0, 0)
	require.NoError(err)
	require.Len(entries, 1)
	require.Equal(models.ActionQuarantine, entries[0].Action)
	require.Equal("moderation_status", entries[0].Field)
	require.Equal(string(models.StatusApproved), entries[0].OldValue)
	require.Equal(string(models.StatusQuarantined), entries[0].NewValue)
}

func TestSetStatusIdempotent(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	s := newStack(t)
	mod := userWith(1, models.RoleModerator)
	ref := s.seedContent(models.ContentComment, 10, 2, models.StatusApproved)

	err := s.engine.SetStatus(ctx, mod, ref, models.StatusApproved, "")
	require.NoError(err)

	// Nothing was written: no restriction, no audit entry.
	recs, err := s.mem.RestrictionsFor(ctx, ref, 0, 0)
	require.NoError(err)
	require.Empty(recs)
	entries, err := s.mem.AuditBySubject(ctx, string(ref.Type), ref.ID, 0, 0)
	require.NoError(err)
	require.Empty(entries)
}

func TestSetStatusIdempotentWithoutReason(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	s := newStack(t)
	mod := userWith(1, models.RoleModerator)
	ref := s.seedContent(models.ContentDiscussion, 10, 2, models.StatusQuarantined)

	// Re-requesting the current restricted status is a no-op and succeeds
	// even with no reason given.
	err := s.engine.SetStatus(ctx, mod, ref, models.StatusQuarantined, "")
	require.NoError(err)

	recs, err := s.mem.RestrictionsFor(ctx, ref, 0, 0)
	require.NoError(err)
	require.Empty(recs)
	entries, err := s.mem.AuditBySubject(ctx, string(ref.Type), ref.ID, 0, 0)
	require.NoError(err)
	require.Empty(entries)
}

func TestSetStatusReasonRequired(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	s := newStack(t)
	mod := userWith(1, models.RoleModerator)
	ref := s.seedContent(models.ContentDiscussion, 10, 2, models.StatusApproved)

	for _, reason := range []string{"", "   ", "\t\n"} {
		err := s.engine.SetStatus(ctx, mod, ref, models.StatusRemoved, reason)
		require.True(domain.IsValidation(err))
	}

	// Rejected before anything touched the store.
	item, err := s.mem.Content(ctx, ref)
	require.NoError(err)
	require.Equal(models.StatusApproved, item.ModerationStatus)
	entries, err := s.mem.AuditBySubject(ctx, string(ref.Type), ref.ID, 0, 0)
	require.NoError(err)
	require.Empty(entries)

	// Restoring needs no reason.
	require.NoError(s.engine.SetStatus(ctx, mod, ref, models.StatusRemoved, "abuse"))
	require.NoError(s.engine.SetStatus(ctx, mod, ref, models.StatusApproved, ""))
}

func TestSetStatusRestoreAction(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	s := newStack(t)
	mod := userWith(1, models.RoleModerator)
	ref := s.seedContent(models.ContentDebate, 10, 2, models.StatusQuarantined)

	require.NoError(s.engine.SetStatus(ctx, mod, ref, models.StatusApproved, ""))

	recs, err := s.mem.RestrictionsFor(ctx, ref, 0, 0)
	require.NoError(err)
	require.Len(recs, 1)
	require.Equal(models.RestrictionRestored, recs[0].RestrictionType)
	require.Nil(recs[0].Reason)

	entries, err := s.mem.AuditBySubject(ctx, string(ref.Type), ref.ID, 0, 0)
	require.NoError(err)
	require.Len(entries, 1)
	require.Equal(models.ActionRestore, entries[0].Action)
}

func TestSetStatusDenied(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	s := newStack(t)
	ref := s.seedContent(models.ContentDiscussion, 10, 2, models.StatusApproved)

	err := s.engine.SetStatus(ctx, userWith(1, models.RoleUser), ref, models.StatusRemoved, "nope")
	require.ErrorIs(err, domain.ErrPermDenied)

	item, err := s.mem.Content(ctx, ref)
	require.NoError(err)
	require.Equal(models.StatusApproved, item.ModerationStatus)
}

func TestSetStatusNotFound(t *testing.T) {
	s := newStack(t)
	ref := models.ContentRef{Type: models.ContentComment, ID: 999}
	err := s.engine.SetStatus(context.Background(), userWith(1, models.RoleAdmin), ref, models.StatusRemoved, "gone")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSetStatusInvalidInput(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	s := newStack(t)
	mod := userWith(1, models.RoleModerator)

	err := s.engine.SetStatus(ctx, mod, models.ContentRef{Type: "poll", ID: 1}, models.StatusRemoved, "x")
	require.True(domain.IsValidation(err))

	ref := s.seedContent(models.ContentDiscussion, 10, 2, models.StatusApproved)
	err = s.engine.SetStatus(ctx, mod, ref, models.ModerationStatus("shadowbanned"), "x")
	require.True(domain.IsValidation(err))
}

// failingAuditRepo rejects every insert, standing in for a dead audit table.
type failingAuditRepo struct{}

func (failingAuditRepo) InsertAudit(context.Context, *models.AuditEntry) error {
	return errors.New("audit table unavailable")
}
func (failingAuditRepo) AuditBySubject(context.Context, string, int, int, int) ([]models.AuditEntry, error) {
	return nil, nil
}
func (failingAuditRepo) SearchAudit(context.Context, models.AuditFilter) ([]models.AuditEntry, error) {
	return nil, nil
}

func TestSetStatusSurvivesAuditFailure(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	s := newStack(t)
	logger := zerolog.Nop()
	audit := domain.NewAuditRecorder(s.gate, failingAuditRepo{}, logger)
	engine := domain.NewEngine(s.gate, s.mem, s.ledger, audit, s.outbox, logger)

	mod := userWith(1, models.RoleModerator)
	ref := s.seedContent(models.ContentDiscussion, 10, 2, models.StatusApproved)

	// The primary write succeeds even though the audit entry is lost.
	err := engine.SetStatus(ctx, mod, ref, models.StatusRemoved, "abuse")
	require.NoError(err)
	item, err := s.mem.Content(ctx, ref)
	require.NoError(err)
	require.Equal(models.StatusRemoved, item.ModerationStatus)
	recs, err := s.mem.RestrictionsFor(ctx, ref, 0, 0)
	require.NoError(err)
	require.Len(recs, 1)
}

func TestSetFeaturedNotifiesAuthor(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	s := newStack(t)
	mod := userWith(1, models.RoleModerator)
	ref := s.seedContent(models.ContentDiscussion, 10, 42, models.StatusApproved)

	require.NoError(s.engine.SetFeatured(ctx, mod, ref, true))

	item, err := s.mem.Content(ctx, ref)
	require.NoError(err)
	require.True(item.IsFeatured)

	entries, err := s.mem.AuditBySubject(ctx, string(ref.Type), ref.ID, 0, 0)
	require.NoError(err)
	require.Len(entries, 1)
	require.Equal(models.ActionFeature, entries[0].Action)

	// Delivery is asynchronous; Close drains the queue.
	s.outbox.Close()
	notifs := s.mem.Notifications()
	require.Len(notifs, 1)
	require.Equal(42, notifs[0].UserID)
	require.Equal(models.NotifTypeFeatured, notifs[0].NotifType)
	require.Equal("/discussions/10", notifs[0].ActionURL)
}

func TestSetFeaturedIdempotent(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	s := newStack(t)
	mod := userWith(1, models.RoleModerator)
	ref := s.seedContent(models.ContentDiscussion, 10, 42, models.StatusApproved)

	require.NoError(s.engine.SetFeatured(ctx, mod, ref, true))
	require.NoError(s.engine.SetFeatured(ctx, mod, ref, true))

	entries, err := s.mem.AuditBySubject(ctx, string(ref.Type), ref.ID, 0, 0)
	require.NoError(err)
	require.Len(entries, 1)
	s.outbox.Close()
	require.Len(s.mem.Notifications(), 1)
}

func TestSetPinned(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	s := newStack(t)
	mod := userWith(1, models.RoleModerator)
	ref := s.seedContent(models.ContentComment, 10, 42, models.StatusApproved)

	require.NoError(s.engine.SetPinned(ctx, mod, ref, true))
	item, err := s.mem.Content(ctx, ref)
	require.NoError(err)
	require.True(item.IsPinned)

	require.NoError(s.engine.SetPinned(ctx, mod, ref, false))
	item, err = s.mem.Content(ctx, ref)
	require.NoError(err)
	require.False(item.IsPinned)

	entries, err := s.mem.AuditBySubject(ctx, string(ref.Type), ref.ID, 0, 0)
	require.NoError(err)
	require.Len(entries, 2)
	require.Equal(models.ActionUnpin, entries[0].Action)
	require.Equal(models.ActionPin, entries[1].Action)

	// Pinning never notifies anyone.
	s.outbox.Close()
	require.Empty(s.mem.Notifications())
}

func TestRestrictionHistoryGated(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	s := newStack(t)
	ref := s.seedContent(models.ContentDiscussion, 10, 2, models.StatusApproved)

	_, err := s.ledger.History(ctx, userWith(1, models.RoleUser), ref, 0, 0)
	require.ErrorIs(err, domain.ErrPermDenied)

	_, err = s.ledger.History(ctx, userWith(1, models.RoleModerator), ref, 0, 0)
	require.NoError(err)
}
