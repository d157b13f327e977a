package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eshaffer321/ledger-reconcile/internal/api/dto"
	"github.com/eshaffer321/ledger-reconcile/internal/domain/ledger"
	"github.com/eshaffer321/ledger-reconcile/internal/infrastructure/storage"
)

// RunsHandler handles reconciliation run-related HTTP requests.
type RunsHandler struct {
	*Base
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(repo storage.Repository, logger *slog.Logger) *RunsHandler {
	return &RunsHandler{
		Base: NewBase(repo, logger),
	}
}

// List handles GET /api/runs - returns recent runs, newest first.
func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := ParseIntParam(r, "limit", 20)

	runs, err := h.repo.ListRuns(limit)
	if err != nil {
		h.WriteInternalError(w, r, "failed to list runs", err)
		return
	}

	response := dto.RunListResponse{
		Runs:  make([]dto.RunResponse, 0, len(runs)),
		Count: len(runs),
	}

	for _, run := range runs {
		response.Runs = append(response.Runs, dto.NewRunResponse(run))
	}

	h.WriteJSON(w, http.StatusOK, response)
}

// Get handles GET /api/runs/{id} - returns a single run by ID.
func (h *RunsHandler) Get(w http.ResponseWriter, r *http.Request) {
	run, ok := h.loadRun(w, r)
	if !ok {
		return
	}

	h.WriteJSON(w, http.StatusOK, dto.NewRunResponse(*run))
}

// Results handles GET /api/runs/{id}/results - returns a run's results,
// optionally filtered by ?status=.
func (h *RunsHandler) Results(w http.ResponseWriter, r *http.Request) {
	status := ledger.MatchStatus(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		h.WriteError(w, http.StatusBadRequest, dto.ValidationError("unknown status: "+string(status)))
		return
	}

	run, ok := h.loadRun(w, r)
	if !ok {
		return
	}

	filter := storage.ResultFilter{
		Status: status,
		Limit:  ParseIntParam(r, "limit", 0),
		Offset: ParseIntParam(r, "offset", 0),
	}

	results, err := h.repo.GetResults(run.ID, filter)
	if err != nil {
		h.WriteInternalError(w, r, "failed to load results", err)
		return
	}

	h.WriteJSON(w, http.StatusOK, dto.ResultListResponse{
		RunID:   run.ID,
		Status:  string(status),
		Results: results,
		Count:   len(results),
	})
}

// loadRun resolves the {id} URL parameter, writing the error response on failure.
func (h *RunsHandler) loadRun(w http.ResponseWriter, r *http.Request) (*storage.Run, bool) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("run ID is required"))
		return nil, false
	}

	run, err := h.repo.GetRun(id)
	if errors.Is(err, storage.ErrNotFound) {
		h.WriteError(w, http.StatusNotFound, dto.NotFoundError("run"))
		return nil, false
	}
	if err != nil {
		h.WriteInternalError(w, r, "failed to load run", err)
		return nil, false
	}

	return run, true
}
