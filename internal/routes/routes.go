package routes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"gitlab.com/contesa/contesa/internal/domain"
	"gitlab.com/contesa/contesa/internal/models"
)

// Auth resolves and manages sessions. Both the pg and the in-memory user
// stores satisfy it.
type Auth interface {
	CreateUser(ctx context.Context, user *models.User, passwd string) error
	Login(ctx context.Context, email, passwd string) (string, error)
	Signout(ctx context.Context, token string) error
	UserByToken(ctx context.Context, token string) (*models.User, error)
}

type Routes struct {
	logger       zerolog.Logger
	auth         Auth
	engine       *domain.Engine
	bulk         *domain.BulkCoordinator
	reports      *domain.ReportManager
	users        *domain.UserService
	audit        *domain.AuditRecorder
	restrictions *domain.RestrictionLedger
	content      domain.ContentRepo
}

func New(
	logger zerolog.Logger,
	auth Auth,
	engine *domain.Engine,
	bulk *domain.BulkCoordinator,
	reports *domain.ReportManager,
	users *domain.UserService,
	audit *domain.AuditRecorder,
	restrictions *domain.RestrictionLedger,
	content domain.ContentRepo,
) *Routes {
	return &Routes{
		logger:       logger,
		auth:         auth,
		engine:       engine,
		bulk:         bulk,
		reports:      reports,
		users:        users,
		audit:        audit,
		restrictions: restrictions,
		content:      content,
	}
}

func NewRouter(logger zerolog.Logger, routes *Routes) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(1 * time.Minute))
	r.Use(hlog.NewHandler(logger))
	r.Use(routes.UserCtx)

	r.Post("/signup", routes.AppHandler(routes.PostSignup))
	r.Post("/login", routes.AppHandler(routes.PostLogin))
	r.Post("/signout", routes.AppHandler(routes.PostSignout))

	r.Route("/content", func(r chi.Router) {
		r.Use(routes.EnforceUser)
		r.Post("/discussions", routes.AppHandler(routes.PostDiscussion))
		r.Post("/discussions/{discussionID}/comments", routes.AppHandler(routes.PostComment))
		r.Post("/debates", routes.AppHandler(routes.PostDebate))

		r.Post("/{contentType}/{contentID}/report", routes.AppHandler(routes.PostReport))
		r.Post("/{contentType}/{contentID}/status", routes.AppHandler(routes.PostStatus))
		r.Post("/{contentType}/{contentID}/feature", routes.AppHandler(routes.PostFeature))
		r.Post("/{contentType}/{contentID}/pin", routes.AppHandler(routes.PostPin))
		r.Get("/{contentType}/{contentID}/restrictions", routes.AppHandler(routes.GetRestrictions))
	})

	r.Route("/moderation", func(r chi.Router) {
		r.Use(routes.EnforceUser)
		r.Get("/reports", routes.AppHandler(routes.GetReports))
		r.Get("/reports/triage", routes.AppHandler(routes.GetTriage))
		r.Put("/reports/{reportID}/status", routes.AppHandler(routes.PutReportStatus))

		r.Post("/bulk/status", routes.AppHandler(routes.PostBulkStatus))
		r.Post("/bulk/feature", routes.AppHandler(routes.PostBulkFeature))
		r.Post("/bulk/pin", routes.AppHandler(routes.PostBulkPin))
		r.Post("/bulk/role", routes.AppHandler(routes.PostBulkRole))
	})

	r.Route("/users", func(r chi.Router) {
		r.Use(routes.EnforceUser)
		r.Get("/{userID}", routes.AppHandler(routes.GetUser))
		r.Post("/{userID}/role", routes.AppHandler(routes.PostChangeRole))
	})

	r.Route("/audit", func(r chi.Router) {
		r.Use(routes.EnforceUser)
		r.Get("/", routes.AppHandler(routes.GetAuditLog))
		r.Get("/{targetType}/{subjectID}", routes.AppHandler(routes.GetAuditSubject))
	})

	return r
}

type ctxKey int

const UserCtxKey ctxKey = iota

// UserCtx resolves the bearer token into a user, when one is present.
// Handlers that need a user enforce it with EnforceUser.
func (routes *Routes) UserCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}
		user, err := routes.auth.UserByToken(r.Context(), token)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		ctx := context.WithValue(r.Context(), UserCtxKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (routes *Routes) EnforceUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.Context().Value(UserCtxKey).(*models.User); !ok {
			respondError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func GetUserCtx(r *http.Request) *models.User {
	user, _ := r.Context().Value(UserCtxKey).(*models.User)
	return user
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

// AppError is what handlers return instead of writing error responses
// themselves; AppHandler maps it to a status code and logs the cause.
type AppError interface {
	error
	Code() int
	Message() string
}

type ErrInternal struct{ Cause error }

func (e *ErrInternal) Error() string   { return e.Cause.Error() }
func (e *ErrInternal) Code() int       { return http.StatusInternalServerError }
func (e *ErrInternal) Message() string { return "internal server error" }

type ErrBadRequest struct {
	Msg   string
	Cause error
}

func (e *ErrBadRequest) Error() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return e.Msg
}
func (e *ErrBadRequest) Code() int { return http.StatusBadRequest }
func (e *ErrBadRequest) Message() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "bad request"
}

type ErrForbidden struct{ Cause error }

func (e *ErrForbidden) Error() string   { return e.Cause.Error() }
func (e *ErrForbidden) Code() int       { return http.StatusForbidden }
func (e *ErrForbidden) Message() string { return "forbidden" }

type ErrNotFound struct{ Thing string }

func (e *ErrNotFound) Error() string   { return e.Thing + " not found" }
func (e *ErrNotFound) Code() int       { return http.StatusNotFound }
func (e *ErrNotFound) Message() string { return e.Thing + " not found" }

func (routes *Routes) AppHandler(handler func(w http.ResponseWriter, r *http.Request) AppError) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := handler(w, r)
		if err == nil {
			return
		}
		respondError(w, err.Code(), err.Message())
		hlog.FromRequest(r).
			Error().
			Str("request_id", middleware.GetReqID(r.Context())).
			Err(err).
			Msg(err.Message())
	}
}

// appErr maps domain errors onto HTTP responses.
func appErr(err error, thing string) AppError {
	switch {
	case errors.Is(err, domain.ErrPermDenied):
		return &ErrForbidden{Cause: err}
	case errors.Is(err, domain.ErrNotFound):
		return &ErrNotFound{Thing: thing}
	case domain.IsValidation(err):
		return &ErrBadRequest{Msg: err.Error(), Cause: err}
	default:
		return &ErrInternal{Cause: err}
	}
}

func respondJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, code int, msg string) {
	respondJSON(w, code, map[string]string{"error": msg})
}

func decodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
