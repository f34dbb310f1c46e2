package routes

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"gitlab.com/contesa/contesa/internal/models"
	"gitlab.com/contesa/contesa/internal/utils"
)

// Content creation is deliberately minimal: just enough surface for the
// moderation engine to have something to act on.

func (routes *Routes) PostDiscussion(w http.ResponseWriter, r *http.Request) AppError {
	author := GetUserCtx(r)
	var body struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	}
	if err := decodeJSON(r, &body); err != nil {
		return &ErrBadRequest{Cause: err}
	}
	if utils.Blank(body.Title) || utils.Blank(body.Body) {
		return &ErrBadRequest{Msg: "title and body are required"}
	}
	d := &models.Discussion{AuthorID: author.ID, Title: body.Title, Body: body.Body}
	if err := routes.content.CreateDiscussion(r.Context(), d); err != nil {
		return &ErrInternal{Cause: err}
	}
	respondJSON(w, http.StatusCreated, d)
	return nil
}

func (routes *Routes) PostComment(w http.ResponseWriter, r *http.Request) AppError {
	author := GetUserCtx(r)
	discussionID, err := strconv.Atoi(chi.URLParam(r, "discussionID"))
	if err != nil {
		return &ErrBadRequest{Cause: err}
	}
	var body struct {
		Body string `json:"body"`
	}
	if err := decodeJSON(r, &body); err != nil {
		return &ErrBadRequest{Cause: err}
	}
	if utils.Blank(body.Body) {
		return &ErrBadRequest{Msg: "body is required"}
	}
	c := &models.Comment{AuthorID: author.ID, DiscussionID: discussionID, Body: body.Body}
	if err := routes.content.CreateComment(r.Context(), c); err != nil {
		return &ErrInternal{Cause: err}
	}
	respondJSON(w, http.StatusCreated, c)
	return nil
}

func (routes *Routes) PostDebate(w http.ResponseWriter, r *http.Request) AppError {
	author := GetUserCtx(r)
	var body struct {
		Title    string `json:"title"`
		Position string `json:"position"`
	}
	if err := decodeJSON(r, &body); err != nil {
		return &ErrBadRequest{Cause: err}
	}
	if utils.Blank(body.Title) || utils.Blank(body.Position) {
		return &ErrBadRequest{Msg: "title and position are required"}
	}
	d := &models.Debate{AuthorID: author.ID, Title: body.Title, Position: body.Position}
	if err := routes.content.CreateDebate(r.Context(), d); err != nil {
		return &ErrInternal{Cause: err}
	}
	respondJSON(w, http.StatusCreated, d)
	return nil
}
