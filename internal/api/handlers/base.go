package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/eshaffer321/ledger-reconcile/internal/adapters/insight"
	"github.com/eshaffer321/ledger-reconcile/internal/api/dto"
	"github.com/eshaffer321/ledger-reconcile/internal/application/reconcile"
	"github.com/eshaffer321/ledger-reconcile/internal/infrastructure/storage"
)

// Base provides shared functionality for all handlers.
type Base struct {
	repo   storage.Repository
	logger *slog.Logger
}

// NewBase creates a new base handler with the given repository and logger.
func NewBase(repo storage.Repository, logger *slog.Logger) *Base {
	if logger == nil {
		logger = slog.Default()
	}
	return &Base{repo: repo, logger: logger}
}

// WriteJSON writes a JSON response with the given status code.
func (b *Base) WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError writes an error response with the given status code.
func (b *Base) WriteError(w http.ResponseWriter, status int, err dto.APIError) {
	b.WriteJSON(w, status, err)
}

// WriteInternalError logs err with the request and writes a generic 500.
func (b *Base) WriteInternalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	b.logRequestError(r, slog.LevelError, msg, err)
	b.WriteError(w, http.StatusInternalServerError, dto.InternalError())
}

func (b *Base) logRequestError(r *http.Request, level slog.Level, msg string, err error) {
	b.logger.Log(r.Context(), level, msg,
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
}

// ParseIntParam parses an integer query parameter with a default value.
func ParseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return parsed
}

// WriteServiceError maps a reconcile service error onto an HTTP response.
func (b *Base) WriteServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, reconcile.ErrRunNotFound):
		b.WriteError(w, http.StatusNotFound, dto.NotFoundError("run"))
	case errors.Is(err, reconcile.ErrReportNotFound):
		b.WriteError(w, http.StatusNotFound, dto.NotFoundError("report"))
	case errors.Is(err, reconcile.ErrInvalidFeed):
		b.WriteError(w, http.StatusBadRequest, dto.ValidationError(err.Error()))
	case errors.Is(err, insight.ErrUnknownReportKind):
		b.WriteError(w, http.StatusBadRequest, dto.BadRequestError(err.Error()))
	case errors.Is(err, reconcile.ErrReportsDisabled), errors.Is(err, reconcile.ErrNoRepository):
		b.logRequestError(r, slog.LevelWarn, "service unavailable", err)
		b.WriteError(w, http.StatusServiceUnavailable, dto.UnavailableError(err.Error()))
	default:
		b.WriteInternalError(w, r, "request failed", err)
	}
}

// ParseBoolParam parses a boolean query parameter with a default value.
func ParseBoolParam(r *http.Request, name string, defaultVal bool) bool {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	return val == "true" || val == "1"
}
