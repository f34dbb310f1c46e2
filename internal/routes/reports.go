package routes

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"gitlab.com/contesa/contesa/internal/models"
)

func (routes *Routes) PostReport(w http.ResponseWriter, r *http.Request) AppError {
	reporter := GetUserCtx(r)
	ref, err := contentRefParam(r)
	if err != nil {
		return &ErrBadRequest{Cause: err}
	}
	var body struct {
		Reason      models.ReportReason `json:"reason"`
		Description *string             `json:"description"`
	}
	if err := decodeJSON(r, &body); err != nil {
		return &ErrBadRequest{Cause: err}
	}
	report, err := routes.reports.Create(r.Context(), reporter, ref, body.Reason, body.Description)
	if err != nil {
		return appErr(err, "content")
	}
	respondJSON(w, http.StatusCreated, report)
	return nil
}

func (routes *Routes) GetReports(w http.ResponseWriter, r *http.Request) AppError {
	actor := GetUserCtx(r)
	var status *models.ReportStatus
	if s := r.URL.Query().Get("status"); s != "" {
		st := models.ReportStatus(s)
		status = &st
	}
	limit, offset := pageParams(r)
	reports, err := routes.reports.List(r.Context(), actor, status, limit, offset)
	if err != nil {
		return appErr(err, "reports")
	}
	respondJSON(w, http.StatusOK, reports)
	return nil
}

func (routes *Routes) GetTriage(w http.ResponseWriter, r *http.Request) AppError {
	actor := GetUserCtx(r)
	counts, err := routes.reports.Triage(r.Context(), actor)
	if err != nil {
		return appErr(err, "reports")
	}
	respondJSON(w, http.StatusOK, counts)
	return nil
}

func (routes *Routes) PutReportStatus(w http.ResponseWriter, r *http.Request) AppError {
	actor := GetUserCtx(r)
	reportID, err := strconv.Atoi(chi.URLParam(r, "reportID"))
	if err != nil {
		return &ErrBadRequest{Cause: err}
	}
	var body struct {
		Status models.ReportStatus `json:"status"`
	}
	if err := decodeJSON(r, &body); err != nil {
		return &ErrBadRequest{Cause: err}
	}
	report, err := routes.reports.UpdateStatus(r.Context(), actor, reportID, body.Status)
	if err != nil {
		return appErr(err, "report")
	}
	respondJSON(w, http.StatusOK, report)
	return nil
}
