package domain_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"gitlab.com/contesa/contesa/internal/domain"
	"gitlab.com/contesa/contesa/internal/models"
)

func TestCreateReportBumpsCount(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	s := newStack(t)
	ref := s.seedContent(models.ContentDiscussion, 10, 2, models.StatusApproved)
	reporter := userWith(1, models.RoleUser)

	r1, err := s.reports.Create(ctx, reporter, ref, models.ReasonSpam, nil)
	require.NoError(err)
	require.NotZero(r1.ID)
	require.Equal(models.ReportUnresolved, r1.Status)
	require.Nil(r1.ResolvedBy)

	// Repeat reports are not deduplicated; each one counts.
	desc := "same link again"
	r2, err := s.reports.Create(ctx, reporter, ref, models.ReasonSpam, &desc)
	require.NoError(err)
	require.NotEqual(r1.ID, r2.ID)

	item, err := s.mem.Content(ctx, ref)
	require.NoError(err)
	require.Equal(2, item.ReportCount)
}

func TestCreateReportValidation(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	s := newStack(t)
	reporter := userWith(1, models.RoleUser)

	_, err := s.reports.Create(ctx, reporter, models.ContentRef{Type: "poll", ID: 1}, models.ReasonSpam, nil)
	require.True(domain.IsValidation(err))

	ref := s.seedContent(models.ContentComment, 10, 2, models.StatusApproved)
	_, err = s.reports.Create(ctx, reporter, ref, models.ReportReason("ugly"), nil)
	require.True(domain.IsValidation(err))

	_, err = s.reports.Create(ctx, reporter, models.ContentRef{Type: models.ContentComment, ID: 999}, models.ReasonSpam, nil)
	require.ErrorIs(err, domain.ErrNotFound)
}

func TestUpdateReportStatusClose(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	s := newStack(t)
	ref := s.seedContent(models.ContentDiscussion, 10, 2, models.StatusApproved)
	report, err := s.reports.Create(ctx, userWith(1, models.RoleUser), ref, models.ReasonHarassment, nil)
	require.NoError(err)

	mod := userWith(5, models.RoleModerator)
	resolved, err := s.reports.UpdateStatus(ctx, mod, report.ID, models.ReportResolved)
	require.NoError(err)
	require.Equal(models.ReportResolved, resolved.Status)
	require.NotNil(resolved.ResolvedBy)
	require.Equal(mod.ID, *resolved.ResolvedBy)
	require.NotNil(resolved.ResolvedAt)
	require.False(resolved.ResolvedAt.Before(report.CreatedAt))

	entries, err := s.mem.AuditBySubject(ctx, "report", report.ID, 0, 0)
	require.NoError(err)
	require.Len(entries, 1)
	require.Equal(models.ActionResolveReport, entries[0].Action)
}

func TestUpdateReportStatusReopen(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	s := newStack(t)
	ref := s.seedContent(models.ContentDiscussion, 10, 2, models.StatusApproved)
	report, err := s.reports.Create(ctx, userWith(1, models.RoleUser), ref, models.ReasonOther, nil)
	require.NoError(err)

	mod := userWith(5, models.RoleModerator)
	_, err = s.reports.UpdateStatus(ctx, mod, report.ID, models.ReportDismissed)
	require.NoError(err)

	// Reopening keeps the record of who last closed it.
	reopened, err := s.reports.UpdateStatus(ctx, mod, report.ID, models.ReportUnresolved)
	require.NoError(err)
	require.Equal(models.ReportUnresolved, reopened.Status)
	require.NotNil(reopened.ResolvedBy)
	require.NotNil(reopened.ResolvedAt)
}

func TestUpdateReportStatusIdempotent(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	s := newStack(t)
	ref := s.seedContent(models.ContentDiscussion, 10, 2, models.StatusApproved)
	report, err := s.reports.Create(ctx, userWith(1, models.RoleUser), ref, models.ReasonSpam, nil)
	require.NoError(err)

	mod := userWith(5, models.RoleModerator)
	same, err := s.reports.UpdateStatus(ctx, mod, report.ID, models.ReportUnresolved)
	require.NoError(err)
	require.Nil(same.ResolvedBy)
	entries, err := s.mem.AuditBySubject(ctx, "report", report.ID, 0, 0)
	require.NoError(err)
	require.Empty(entries)
}

func TestUpdateReportStatusDenied(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	s := newStack(t)
	ref := s.seedContent(models.ContentDiscussion, 10, 2, models.StatusApproved)
	report, err := s.reports.Create(ctx, userWith(1, models.RoleUser), ref, models.ReasonSpam, nil)
	require.NoError(err)

	_, err = s.reports.UpdateStatus(ctx, userWith(1, models.RoleUser), report.ID, models.ReportResolved)
	require.ErrorIs(err, domain.ErrPermDenied)
}

func TestListAndTriage(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	s := newStack(t)
	reporter := userWith(1, models.RoleUser)
	mod := userWith(5, models.RoleModerator)

	for i := 0; i < 3; i++ {
		ref := s.seedContent(models.ContentDiscussion, 100+i, 2, models.StatusApproved)
		_, err := s.reports.Create(ctx, reporter, ref, models.ReasonSpam, nil)
		require.NoError(err)
	}
	ref := s.seedContent(models.ContentComment, 200, 2, models.StatusApproved)
	report, err := s.reports.Create(ctx, reporter, ref, models.ReasonHarassment, nil)
	require.NoError(err)
	_, err = s.reports.UpdateStatus(ctx, mod, report.ID, models.ReportResolved)
	require.NoError(err)

	_, err = s.reports.List(ctx, reporter, nil, 0, 0)
	require.ErrorIs(err, domain.ErrPermDenied)

	all, err := s.reports.List(ctx, mod, nil, 0, 0)
	require.NoError(err)
	require.Len(all, 4)

	unresolved := models.ReportUnresolved
	open, err := s.reports.List(ctx, mod, &unresolved, 0, 0)
	require.NoError(err)
	require.Len(open, 3)

	counts, err := s.reports.Triage(ctx, mod)
	require.NoError(err)
	require.Len(counts, 1)
	require.Equal(models.ReasonSpam, counts[0].Reason)
	require.Equal(3, counts[0].Count)
}
