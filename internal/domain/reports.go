package domain

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"gitlab.com/contesa/contesa/internal/models"
)

// ReportManager owns the report lifecycle: creation by any authenticated
// user, triage reads, and resolution by moderators.
type ReportManager struct {
	gate    *Gate
	reports ReportRepo
	content ContentRepo
	audit   *AuditRecorder
	logger  zerolog.Logger
	now     func() time.Time
}

func NewReportManager(gate *Gate, reports ReportRepo, content ContentRepo, audit *AuditRecorder, logger zerolog.Logger) *ReportManager {
	return &ReportManager{
		gate:    gate,
		reports: reports,
		content: content,
		audit:   audit,
		logger:  logger,
		now:     time.Now,
	}
}

// Create files a report against a content item. Repeat reports against the
// same item are allowed, each bumping the item's report_count. The count
// bump is a separate write from the report row; if it fails the report still
// stands and the miss is logged.
func (m *ReportManager) Create(ctx context.Context, reporter *models.User, ref models.ContentRef, reason models.ReportReason, description *string) (*models.Report, error) {
	if !ref.Type.Valid() {
		return nil, ValidationError{Field: "content_type", Msg: "unknown content type"}
	}
	if !reason.Valid() {
		return nil, ValidationError{Field: "reason", Msg: "unknown report reason"}
	}
	if _, err := m.content.Content(ctx, ref); err != nil {
		return nil, storageErr("read content", err)
	}

	report := &models.Report{
		ReporterID:  reporter.ID,
		ContentType: ref.Type,
		ContentID:   ref.ID,
		Reason:      reason,
		Description: description,
		Status:      models.ReportUnresolved,
		CreatedAt:   m.now(),
	}
	if err := m.reports.InsertReport(ctx, report); err != nil {
		return nil, storageErr("insert report", err)
	}
	if err := m.content.IncrementReportCount(ctx, ref); err != nil {
		m.logger.Warn().
			Err(err).
			Str("content_type", string(ref.Type)).
			Int("content_id", ref.ID).
			Msg("report_count increment lost")
	}
	return report, nil
}

// UpdateStatus moves a report through its lifecycle. Closing a report
// (resolved or dismissed) stamps resolved_by/resolved_at; reopening clears
// neither, preserving who last closed it.
func (m *ReportManager) UpdateStatus(ctx context.Context, actor *models.User, reportID int, newStatus models.ReportStatus) (*models.Report, error) {
	if !newStatus.Valid() {
		return nil, ValidationError{Field: "status", Msg: "unknown report status"}
	}
	if err := m.gate.Allow(actor.Role, OpResolveReports); err != nil {
		return nil, err
	}
	report, err := m.reports.Report(ctx, reportID)
	if err != nil {
		return nil, storageErr("read report", err)
	}
	if report.Status == newStatus {
		return report, nil
	}

	old := report.Status
	report.Status = newStatus
	if newStatus.Closed() {
		at := m.now()
		report.ResolvedBy = &actor.ID
		report.ResolvedAt = &at
	}
	if err := m.reports.UpdateReport(ctx, report); err != nil {
		return nil, storageErr("update report", err)
	}

	if newStatus.Closed() {
		action := models.ActionResolveReport
		if newStatus == models.ReportDismissed {
			action = models.ActionDismissReport
		}
		m.audit.AppendBestEffort(ctx, &models.AuditEntry{
			TargetType: "report",
			SubjectID:  report.ID,
			ActorID:    &actor.ID,
			Action:     action,
			Field:      "status",
			OldValue:   string(old),
			NewValue:   string(newStatus),
			CreatedAt:  m.now(),
		})
	}
	return report, nil
}

func (m *ReportManager) List(ctx context.Context, actor *models.User, status *models.ReportStatus, limit, offset int) ([]models.Report, error) {
	if err := m.gate.Allow(actor.Role, OpViewReports); err != nil {
		return nil, err
	}
	if status != nil && !status.Valid() {
		return nil, ValidationError{Field: "status", Msg: "unknown report status"}
	}
	reports, err := m.reports.ListReports(ctx, status, limit, offset)
	return reports, storageErr("list reports", err)
}

// Triage counts unresolved reports grouped by reason.
func (m *ReportManager) Triage(ctx context.Context, actor *models.User) ([]models.ReasonCount, error) {
	if err := m.gate.Allow(actor.Role, OpViewReports); err != nil {
		return nil, err
	}
	counts, err := m.reports.UnresolvedByReason(ctx)
	return counts, storageErr("count reports", err)
}
