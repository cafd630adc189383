// Package api exposes HTTP handlers for the exercise tracker.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/samthatcode/boilerplate-project-exercisetracker/internal/domain"
	"github.com/samthatcode/boilerplate-project-exercisetracker/web"
)

// Pinger reports whether the record store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler coordinates HTTP requests with the domain service.
type Handler struct {
	service *domain.Service
	store   Pinger
	logger  *zap.Logger
}

// NewHandler builds a Handler. store may be nil, in which case /readyz always succeeds.
func NewHandler(service *domain.Service, store Pinger, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, store: store, logger: logger}
}

// RegisterRoutes wires endpoints to the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", web.Index)
	r.Get("/healthz", healthz)
	r.Get("/readyz", h.readyz)
	r.Handle("/*", web.Assets())

	r.Route("/api/users", func(r chi.Router) {
		r.Post("/", h.createUser)
		r.Get("/", h.listUsers)
		r.Post("/{_id}/exercises", h.addExercise)
		r.Get("/{_id}/logs", h.getLogs)
	})
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	if h.store != nil {
		if err := h.store.Ping(r.Context()); err != nil {
			h.logger.Warn("store not ready", zap.Error(err))
			writeError(w, http.StatusServiceUnavailable, "store_unavailable", "record store is not reachable")
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	user, err := h.service.CreateUser(r.Context(), req.Username)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserView(user))
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	views := make([]UserView, 0, len(users))
	for _, user := range users {
		views = append(views, toUserView(user))
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *Handler) addExercise(w http.ResponseWriter, r *http.Request) {
	var req AddExerciseRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	entry, err := h.service.AddExercise(r.Context(), domain.AddExerciseInput{
		UserID:      chi.URLParam(r, "_id"),
		Description: req.Description,
		Duration:    req.Duration.String(),
		Date:        req.Date,
	})
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ExerciseView{
		UserID:      entry.UserID,
		Username:    entry.Username,
		Date:        domain.FormatDisplayDate(entry.Date),
		Duration:    entry.DurationMin,
		Description: entry.Description,
	})
}

func (h *Handler) getLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query, err := domain.ParseLogQuery(q.Get("from"), q.Get("to"), q.Get("limit"))
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	result, err := h.service.GetLogs(r.Context(), chi.URLParam(r, "_id"), query)
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	resp := LogView{
		UserID:   result.UserID,
		Username: result.Username,
		Count:    result.Count,
		Log:      make([]LogItemView, 0, len(result.Log)),
	}
	for _, item := range result.Log {
		resp.Log = append(resp.Log, LogItemView{
			Description: item.Description,
			Duration:    item.DurationMin,
			Date:        domain.FormatDisplayDate(item.Date),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) domainError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, "validation_failed", verr.Error())
	case errors.Is(err, domain.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "not_found", "user not found")
	default:
		h.serverError(w, r, err)
	}
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err))
	writeError(w, http.StatusInternalServerError, "server_error", err.Error())
}

// UserView is the JSON shape of a user.
type UserView struct {
	Username string `json:"username"`
	ID       string `json:"_id"`
}

// ExerciseView is the response body for POST /api/users/{_id}/exercises.
type ExerciseView struct {
	UserID      string `json:"_id"`
	Username    string `json:"username"`
	Date        string `json:"date"`
	Duration    int    `json:"duration"`
	Description string `json:"description"`
}

// LogItemView is one entry of a LogView.
type LogItemView struct {
	Description string `json:"description"`
	Duration    int    `json:"duration"`
	Date        string `json:"date"`
}

// LogView is the response body for GET /api/users/{_id}/logs.
type LogView struct {
	UserID   string        `json:"_id"`
	Username string        `json:"username"`
	Count    int           `json:"count"`
	Log      []LogItemView `json:"log"`
}

func toUserView(user domain.User) UserView {
	return UserView{Username: user.Username, ID: user.ID}
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
