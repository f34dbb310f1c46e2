package routes

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"gitlab.com/contesa/contesa/internal/models"
)

func (routes *Routes) PostSignup(w http.ResponseWriter, r *http.Request) AppError {
	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &body); err != nil {
		return &ErrBadRequest{Cause: err}
	}
	user := &models.User{Name: body.Name, Email: body.Email}
	err := routes.auth.CreateUser(r.Context(), user, body.Password)
	switch {
	case errors.Is(err, models.ErrInvalidFormat):
		return &ErrBadRequest{Msg: "bad email syntax", Cause: err}
	case errors.Is(err, models.ErrWeakPasswd):
		return &ErrBadRequest{Msg: "password too weak", Cause: err}
	case errors.Is(err, models.ErrEmailAlreadyUsed):
		return &ErrBadRequest{Msg: "email already used", Cause: err}
	case err != nil:
		return &ErrInternal{Cause: err}
	}
	respondJSON(w, http.StatusCreated, user)
	return nil
}

func (routes *Routes) PostLogin(w http.ResponseWriter, r *http.Request) AppError {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &body); err != nil {
		return &ErrBadRequest{Cause: err}
	}
	token, err := routes.auth.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		// Don't leak whether the email exists.
		return &ErrBadRequest{Msg: "invalid credentials", Cause: err}
	}
	respondJSON(w, http.StatusOK, map[string]string{"token": token})
	return nil
}

func (routes *Routes) PostSignout(w http.ResponseWriter, r *http.Request) AppError {
	token := bearerToken(r)
	if token == "" {
		return &ErrBadRequest{Msg: "missing token"}
	}
	if err := routes.auth.Signout(r.Context(), token); err != nil {
		return &ErrInternal{Cause: err}
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (routes *Routes) GetUser(w http.ResponseWriter, r *http.Request) AppError {
	actor := GetUserCtx(r)
	userID, err := strconv.Atoi(chi.URLParam(r, "userID"))
	if err != nil {
		return &ErrBadRequest{Cause: err}
	}
	user, err := routes.users.Get(r.Context(), actor, userID)
	if err != nil {
		return appErr(err, "user")
	}
	respondJSON(w, http.StatusOK, user)
	return nil
}

func (routes *Routes) PostChangeRole(w http.ResponseWriter, r *http.Request) AppError {
	actor := GetUserCtx(r)
	userID, err := strconv.Atoi(chi.URLParam(r, "userID"))
	if err != nil {
		return &ErrBadRequest{Cause: err}
	}
	var body struct {
		Role   models.Role `json:"role"`
		Reason string      `json:"reason"`
	}
	if err := decodeJSON(r, &body); err != nil {
		return &ErrBadRequest{Cause: err}
	}
	if err := routes.users.ChangeRole(r.Context(), actor, userID, body.Role, body.Reason); err != nil {
		return appErr(err, "user")
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}
