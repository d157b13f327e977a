package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eshaffer321/ledger-reconcile/internal/adapters/insight"
	"github.com/eshaffer321/ledger-reconcile/internal/api/dto"
	"github.com/eshaffer321/ledger-reconcile/internal/application/reconcile"
	"github.com/eshaffer321/ledger-reconcile/internal/infrastructure/storage"
)

// ReportService generates and loads run reports. *reconcile.Service satisfies it.
type ReportService interface {
	Report(ctx context.Context, runID string, kind insight.ReportKind) (*storage.Report, error)
	GetReport(runID string, kind insight.ReportKind) (*storage.Report, error)
}

// ReportsHandler handles narrative report requests.
type ReportsHandler struct {
	*Base
	reports ReportService
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(repo storage.Repository, reports ReportService, logger *slog.Logger) *ReportsHandler {
	return &ReportsHandler{
		Base:    NewBase(repo, logger),
		reports: reports,
	}
}

// Generate handles POST /api/runs/{id}/reports/{kind} - generates (or
// regenerates) a report.
func (h *ReportsHandler) Generate(w http.ResponseWriter, r *http.Request) {
	runID, kind, ok := h.params(w, r)
	if !ok {
		return
	}

	report, err := h.reports.Report(r.Context(), runID, kind)
	if err != nil {
		if isServiceError(err) {
			h.WriteServiceError(w, r, err)
			return
		}
		h.logRequestError(r, slog.LevelError, "report generation failed", err)
		h.WriteError(w, http.StatusBadGateway, dto.UpstreamError("report generation failed"))
		return
	}

	h.WriteJSON(w, http.StatusCreated, dto.NewReportResponse(report))
}

// Get handles GET /api/runs/{id}/reports/{kind} - returns a stored report.
func (h *ReportsHandler) Get(w http.ResponseWriter, r *http.Request) {
	runID, kind, ok := h.params(w, r)
	if !ok {
		return
	}

	report, err := h.reports.GetReport(runID, kind)
	if err != nil {
		h.WriteServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, dto.NewReportResponse(report))
}

func (h *ReportsHandler) params(w http.ResponseWriter, r *http.Request) (string, insight.ReportKind, bool) {
	runID := chi.URLParam(r, "id")
	if runID == "" {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("run ID is required"))
		return "", "", false
	}

	kind, err := insight.ParseReportKind(chi.URLParam(r, "kind"))
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError(err.Error()))
		return "", "", false
	}

	return runID, kind, true
}

// isServiceError reports whether err is one of the service's own sentinel
// errors rather than a failure of the model call.
func isServiceError(err error) bool {
	for _, target := range []error{
		reconcile.ErrRunNotFound,
		reconcile.ErrReportsDisabled,
		reconcile.ErrNoRepository,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
