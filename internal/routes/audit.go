package routes

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"gitlab.com/contesa/contesa/internal/models"
)

func (routes *Routes) GetAuditLog(w http.ResponseWriter, r *http.Request) AppError {
	actor := GetUserCtx(r)
	q := r.URL.Query()

	f := models.AuditFilter{
		Action:     models.ActionType(q.Get("action")),
		TargetType: q.Get("target_type"),
	}
	if s := q.Get("actor_id"); s != "" {
		id, err := strconv.Atoi(s)
		if err != nil {
			return &ErrBadRequest{Cause: err}
		}
		f.ActorID = &id
	}
	if s := q.Get("since"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return &ErrBadRequest{Cause: err}
		}
		f.Since = &t
	}
	if s := q.Get("until"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return &ErrBadRequest{Cause: err}
		}
		f.Until = &t
	}
	f.Limit, f.Offset = pageParams(r)

	entries, err := routes.audit.Search(r.Context(), actor, f)
	if err != nil {
		return appErr(err, "audit log")
	}
	respondJSON(w, http.StatusOK, entries)
	return nil
}

func (routes *Routes) GetAuditSubject(w http.ResponseWriter, r *http.Request) AppError {
	actor := GetUserCtx(r)
	subjectID, err := strconv.Atoi(chi.URLParam(r, "subjectID"))
	if err != nil {
		return &ErrBadRequest{Cause: err}
	}
	limit, offset := pageParams(r)
	entries, err := routes.audit.EntriesForSubject(r.Context(), actor, chi.URLParam(r, "targetType"), subjectID, limit, offset)
	if err != nil {
		return appErr(err, "audit log")
	}
	respondJSON(w, http.StatusOK, entries)
	return nil
}
