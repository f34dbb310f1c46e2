package routes

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"gitlab.com/contesa/contesa/internal/models"
)

func contentRefParam(r *http.Request) (models.ContentRef, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "contentID"))
	if err != nil {
		return models.ContentRef{}, err
	}
	return models.ContentRef{
		Type: models.ContentType(chi.URLParam(r, "contentType")),
		ID:   id,
	}, nil
}

func (routes *Routes) PostStatus(w http.ResponseWriter, r *http.Request) AppError {
	actor := GetUserCtx(r)
	ref, err := contentRefParam(r)
	if err != nil {
		return &ErrBadRequest{Cause: err}
	}
	var body struct {
		Status models.ModerationStatus `json:"status"`
		Reason string                  `json:"reason"`
	}
	if err := decodeJSON(r, &body); err != nil {
		return &ErrBadRequest{Cause: err}
	}
	if err := routes.engine.SetStatus(r.Context(), actor, ref, body.Status, body.Reason); err != nil {
		return appErr(err, "content")
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (routes *Routes) PostFeature(w http.ResponseWriter, r *http.Request) AppError {
	actor := GetUserCtx(r)
	ref, err := contentRefParam(r)
	if err != nil {
		return &ErrBadRequest{Cause: err}
	}
	var body struct {
		Featured bool `json:"featured"`
	}
	if err := decodeJSON(r, &body); err != nil {
		return &ErrBadRequest{Cause: err}
	}
	if err := routes.engine.SetFeatured(r.Context(), actor, ref, body.Featured); err != nil {
		return appErr(err, "content")
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (routes *Routes) PostPin(w http.ResponseWriter, r *http.Request) AppError {
	actor := GetUserCtx(r)
	ref, err := contentRefParam(r)
	if err != nil {
		return &ErrBadRequest{Cause: err}
	}
	var body struct {
		Pinned bool `json:"pinned"`
	}
	if err := decodeJSON(r, &body); err != nil {
		return &ErrBadRequest{Cause: err}
	}
	if err := routes.engine.SetPinned(r.Context(), actor, ref, body.Pinned); err != nil {
		return appErr(err, "content")
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (routes *Routes) GetRestrictions(w http.ResponseWriter, r *http.Request) AppError {
	actor := GetUserCtx(r)
	ref, err := contentRefParam(r)
	if err != nil {
		return &ErrBadRequest{Cause: err}
	}
	limit, offset := pageParams(r)
	recs, err := routes.restrictions.History(r.Context(), actor, ref, limit, offset)
	if err != nil {
		return appErr(err, "content")
	}
	respondJSON(w, http.StatusOK, recs)
	return nil
}

func (routes *Routes) PostBulkStatus(w http.ResponseWriter, r *http.Request) AppError {
	actor := GetUserCtx(r)
	var body struct {
		ContentType models.ContentType      `json:"content_type"`
		IDs         []int                   `json:"ids"`
		Status      models.ModerationStatus `json:"status"`
		Reason      string                  `json:"reason"`
	}
	if err := decodeJSON(r, &body); err != nil {
		return &ErrBadRequest{Cause: err}
	}
	res := routes.bulk.SetStatus(r.Context(), actor, body.ContentType, body.IDs, body.Status, body.Reason)
	respondJSON(w, http.StatusOK, res)
	return nil
}

func (routes *Routes) PostBulkFeature(w http.ResponseWriter, r *http.Request) AppError {
	return routes.postBulkFlag(w, r, true)
}

func (routes *Routes) PostBulkPin(w http.ResponseWriter, r *http.Request) AppError {
	return routes.postBulkFlag(w, r, false)
}

func (routes *Routes) postBulkFlag(w http.ResponseWriter, r *http.Request, featured bool) AppError {
	actor := GetUserCtx(r)
	var body struct {
		ContentType models.ContentType `json:"content_type"`
		IDs         []int              `json:"ids"`
		Value       bool               `json:"value"`
	}
	if err := decodeJSON(r, &body); err != nil {
		return &ErrBadRequest{Cause: err}
	}
	var res interface{}
	var err error
	if featured {
		res, err = routes.bulk.SetFeatured(r.Context(), actor, body.ContentType, body.IDs, body.Value)
	} else {
		res, err = routes.bulk.SetPinned(r.Context(), actor, body.ContentType, body.IDs, body.Value)
	}
	if err != nil {
		return appErr(err, "content")
	}
	respondJSON(w, http.StatusOK, res)
	return nil
}

func (routes *Routes) PostBulkRole(w http.ResponseWriter, r *http.Request) AppError {
	actor := GetUserCtx(r)
	var body struct {
		IDs    []int       `json:"ids"`
		Role   models.Role `json:"role"`
		Reason string      `json:"reason"`
	}
	if err := decodeJSON(r, &body); err != nil {
		return &ErrBadRequest{Cause: err}
	}
	res := routes.bulk.ChangeRole(r.Context(), actor, body.IDs, body.Role, body.Reason)
	respondJSON(w, http.StatusOK, res)
	return nil
}

func pageParams(r *http.Request) (limit, offset int) {
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
