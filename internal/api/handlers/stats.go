package handlers

import (
	"log/slog"
	"net/http"

	"github.com/eshaffer321/ledger-reconcile/internal/api/dto"
	"github.com/eshaffer321/ledger-reconcile/internal/infrastructure/storage"
)

// StatsHandler handles stats-related HTTP requests.
type StatsHandler struct {
	*Base
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(repo storage.Repository, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{
		Base: NewBase(repo, logger),
	}
}

// Get handles GET /api/stats - returns statistics aggregated over all runs.
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	overview, err := h.repo.GetOverview()
	if err != nil {
		h.WriteInternalError(w, r, "failed to load overview", err)
		return
	}

	h.WriteJSON(w, http.StatusOK, dto.NewStatsResponse(overview))
}
