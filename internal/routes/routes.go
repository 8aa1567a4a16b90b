package routes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/civitashq/trustengine/internal/db"
	"github.com/civitashq/trustengine/internal/models"
)

type Routes struct {
	envConfig *models.EnvConfig
	db        *db.SharedDB
	logger    zerolog.Logger
}

func NewRouter(envConfig *models.EnvConfig, database *db.SharedDB, logger zerolog.Logger) chi.Router {
	routes := &Routes{
		envConfig: envConfig,
		db:        database,
		logger:    logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(hlog.NewHandler(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	r.Post("/signup", routes.AppHandler(routes.PostSignup))
	r.Post("/login", routes.AppHandler(routes.PostLogin))
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(routes.withUserH)
		r.Post("/signout", routes.AppHandler(routes.PostSignout))

		r.Post("/ideas", routes.AppHandler(routes.PostIdea))
		r.Get("/ideas/{ideaID}", routes.AppHandler(routes.GetIdea))
		r.Post("/ideas/{ideaID}/comments", routes.AppHandler(routes.PostComment))

		r.Post("/flags", routes.AppHandler(routes.PostFlag))
		r.Delete("/flags/{flagID}", routes.AppHandler(routes.DeleteFlag))

		r.Post("/appeals", routes.AppHandler(routes.PostAppeal))
		r.Get("/appeals", routes.AppHandler(routes.GetMyAppeals))
		r.Get("/penalties", routes.AppHandler(routes.GetMyPenalties))

		r.Route("/moderation", func(r chi.Router) {
			r.Get("/queue", routes.AppHandler(routes.GetModerationQueue))
			r.Post("/review", routes.AppHandler(routes.PostReview))

			r.Get("/appeals", routes.AppHandler(routes.GetPendingAppeals))
			r.Post("/appeals/{appealID}/review", routes.AppHandler(routes.PostAppealReview))

			r.Post("/penalties", routes.AppHandler(routes.PostPenalty))
			r.Post("/penalties/{penaltyID}/revoke", routes.AppHandler(routes.PostPenaltyRevoke))
			r.Get("/users/{userID}/next-penalty", routes.AppHandler(routes.GetNextPenalty))

			r.Get("/watchlist", routes.AppHandler(routes.GetWatchlist))
			r.Post("/watchlist", routes.AppHandler(routes.PostWatchlistEntry))
			r.Put("/watchlist/{entryID}", routes.AppHandler(routes.PutWatchlistEntry))
			r.Delete("/watchlist/{entryID}", routes.AppHandler(routes.DeleteWatchlistEntry))
			r.Post("/watchlist/test", routes.AppHandler(routes.PostWatchlistTest))
		})
	})
	return r
}

type AppError interface {
	error
	Status() int
}

type ErrBadRequest struct{ Cause error }

func (e *ErrBadRequest) Error() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "bad request"
}
func (e *ErrBadRequest) Status() int { return http.StatusBadRequest }

type ErrForbidden struct{ Cause error }

func (e *ErrForbidden) Error() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "forbidden"
}
func (e *ErrForbidden) Status() int { return http.StatusForbidden }

type ErrNotFound struct{}

func (e *ErrNotFound) Error() string { return "not found" }
func (e *ErrNotFound) Status() int   { return http.StatusNotFound }

type ErrConflict struct{ Cause error }

func (e *ErrConflict) Error() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "conflict"
}
func (e *ErrConflict) Status() int { return http.StatusConflict }

type ErrInternal struct{ Cause error }

func (e *ErrInternal) Error() string { return "internal server error" }
func (e *ErrInternal) Status() int   { return http.StatusInternalServerError }

func (routes *Routes) AppHandler(handler func(w http.ResponseWriter, r *http.Request) AppError) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := handler(w, r)
		if err == nil {
			return
		}
		logEvent := hlog.FromRequest(r).Error()
		if internal, ok := err.(*ErrInternal); ok {
			logEvent = logEvent.AnErr("cause", internal.Cause)
		}
		logEvent.
			Str("request_id", middleware.GetReqID(r.Context())).
			Int("status", err.Status()).
			Msg(err.Error())
		writeJSON(w, err.Status(), map[string]string{"error": err.Error()})
	}
}

// mapError translates engine sentinels into HTTP failures. Everything
// unrecognized is an internal error.
func mapError(err error) AppError {
	var banned *models.BannedError
	switch {
	case errors.As(err, &banned):
		return &ErrForbidden{Cause: err}
	case errors.Is(err, models.ErrNotFound):
		return &ErrNotFound{}
	case errors.Is(err, models.ErrPermDenied):
		return &ErrForbidden{Cause: err}
	case errors.Is(err, models.ErrDuplicateFlag),
		errors.Is(err, models.ErrSelfFlag),
		errors.Is(err, models.ErrAlreadyReviewed),
		errors.Is(err, models.ErrUserAlreadyPenalized),
		errors.Is(err, models.ErrCannotAppeal),
		errors.Is(err, models.ErrAppealAlreadyExists),
		errors.Is(err, models.ErrCannotRevokePenalty),
		errors.Is(err, models.ErrEmailAlreadyUsed):
		return &ErrConflict{Cause: err}
	case errors.Is(err, models.ErrInvalidFormat),
		errors.Is(err, models.ErrInvalidRegex),
		errors.Is(err, models.ErrDuplicateKeyword),
		errors.Is(err, models.ErrMixedReviewBatch):
		return &ErrBadRequest{Cause: err}
	default:
		return &ErrInternal{Cause: err}
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

type ctxKey int

const userHKey ctxKey = iota

func (routes *Routes) withUserH(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
			return
		}
		uH, err := routes.db.GetUserH(r.Context(), token)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			return
		}
		ctx := context.WithValue(r.Context(), userHKey, uH)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

func getUserH(r *http.Request) db.UserH {
	return r.Context().Value(userHKey).(db.UserH)
}

func (routes *Routes) moderationH(r *http.Request) (*db.ModerationH, AppError) {
	mH, err := routes.db.GetModerationH(r.Context(), getUserH(r))
	if err != nil {
		return nil, mapError(err)
	}
	return mH, nil
}
