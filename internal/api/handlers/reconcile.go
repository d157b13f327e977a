package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/eshaffer321/ledger-reconcile/internal/api/dto"
	"github.com/eshaffer321/ledger-reconcile/internal/application/reconcile"
	"github.com/eshaffer321/ledger-reconcile/internal/infrastructure/storage"
)

// Runner executes reconciliations. *reconcile.Service satisfies it.
type Runner interface {
	Run(ctx context.Context, req reconcile.Request) (*reconcile.Outcome, error)
}

// ReconcileHandler accepts feed uploads and runs a reconciliation.
type ReconcileHandler struct {
	*Base
	runner      Runner
	maxUploadMB int
}

// NewReconcileHandler creates a new reconcile handler. Uploads larger than
// maxUploadMB are rejected.
func NewReconcileHandler(repo storage.Repository, runner Runner, maxUploadMB int, logger *slog.Logger) *ReconcileHandler {
	if maxUploadMB <= 0 {
		maxUploadMB = 20
	}
	return &ReconcileHandler{
		Base:        NewBase(repo, logger),
		runner:      runner,
		maxUploadMB: maxUploadMB,
	}
}

// Create handles POST /api/reconciliations - multipart upload with "bank"
// and "book" file fields. ?save=false skips persistence.
func (h *ReconcileHandler) Create(w http.ResponseWriter, r *http.Request) {
	limit := int64(h.maxUploadMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.WriteError(w, http.StatusRequestEntityTooLarge, dto.TooLargeError(h.maxUploadMB))
			return
		}
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("expected multipart form with bank and book files"))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	bankName, bank, err := readFormFile(r, "bank")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.ValidationError(err.Error()))
		return
	}
	bookName, book, err := readFormFile(r, "book")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.ValidationError(err.Error()))
		return
	}

	outcome, err := h.runner.Run(r.Context(), reconcile.Request{
		BankName: bankName,
		Bank:     bank,
		BookName: bookName,
		Book:     book,
		Persist:  ParseBoolParam(r, "save", true),
	})
	if err != nil {
		h.WriteServiceError(w, r, err)
		return
	}

	status := http.StatusOK
	if outcome.Persisted {
		status = http.StatusCreated
	}
	h.WriteJSON(w, status, dto.NewReconcileResponse(outcome, bankName, bookName))
}

func readFormFile(r *http.Request, field string) (string, []byte, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil, fmt.Errorf("%s file is required", field)
	}
	if err != nil {
		return "", nil, err
	}
	defer func(f multipart.File) { _ = f.Close() }(file)

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read %s file: %w", field, err)
	}
	return header.Filename, data, nil
}
