package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/ledger-reconcile/internal/adapters/insight"
	"github.com/eshaffer321/ledger-reconcile/internal/api"
	"github.com/eshaffer321/ledger-reconcile/internal/api/dto"
	"github.com/eshaffer321/ledger-reconcile/internal/application/reconcile"
	"github.com/eshaffer321/ledger-reconcile/internal/domain/ledger"
	"github.com/eshaffer321/ledger-reconcile/internal/infrastructure/storage"
)

const bankFeed = `account_no,settlement_date,transaction_date,time,invoice_number,product,qty,price,amount,vat,total_amount
A-1,2025-03-02,2025-03-01,08:00:00,INV1,DIESEL,1,1,1,0,100.00
A-1,2025-03-02,2025-03-01,09:00:00,INV2,DIESEL,1,1,1,0,"5,400.00"
A-1,2025-03-03,2025-03-02,10:00:00,INV3,GAS95,1,1,1,0,77.00
`

const bookFeed = `document_no,posting_date,description,amount
JV-1,2025-03-01,INV1,100.00
JV-2,2025-03-01,INV2,"4,500.00"
JV-3,2025-03-04,JV-99,12.00
`

type stubReporter struct{}

func (stubReporter) Report(_ context.Context, kind insight.ReportKind, results []ledger.Result, _ ledger.Stats) (string, error) {
	return fmt.Sprintf("%s report over %d results", kind, len(results)), nil
}

func (stubReporter) Model() string { return "stub" }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestServer(t *testing.T, reporter reconcile.Reporter) *api.Server {
	t.Helper()
	repo, err := storage.NewStorage(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	svc := reconcile.NewService(repo, nil, reporter, testLogger())
	return api.NewServer(api.DefaultConfig(), repo, svc, testLogger())
}

func do(t *testing.T, server *api.Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)
	return rec
}

func uploadRequest(t *testing.T) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for field, content := range map[string]string{"bank": bankFeed, "book": bookFeed} {
		part, err := writer.CreateFormFile(field, field+"-march.csv")
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/reconciliations", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestServer_HealthEndpoint(t *testing.T) {
	server := newTestServer(t, nil)

	rec := do(t, server, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var response dto.HealthResponse
	err := json.NewDecoder(rec.Body).Decode(&response)
	require.NoError(t, err)
	assert.Equal(t, "ok", response.Status)
}

func TestServer_ReconcileFlow(t *testing.T) {
	server := newTestServer(t, stubReporter{})

	// Upload
	rec := do(t, server, uploadRequest(t))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created dto.ReconcileResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	runID := created.Run.ID
	require.NotEmpty(t, runID)
	assert.Equal(t, "bank-march.csv", created.Run.BankFile)

	// List
	rec = do(t, server, httptest.NewRequest(http.MethodGet, "/api/runs", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var list dto.RunListResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	require.Equal(t, 1, list.Count)
	assert.Equal(t, runID, list.Runs[0].ID)
	assert.Equal(t, "865.00", list.Runs[0].Stats.DiffAmount)

	// Filtered results
	rec = do(t, server, httptest.NewRequest(http.MethodGet, "/api/runs/"+runID+"/results?status=UNMATCHED_BOOK", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var results dto.ResultListResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&results))
	require.Equal(t, 1, results.Count)
	assert.Equal(t, "JV-99", results.Results[0].Book.Description)

	// Report before generation
	rec = do(t, server, httptest.NewRequest(http.MethodGet, "/api/runs/"+runID+"/reports/executive", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Generate and fetch report
	rec = do(t, server, httptest.NewRequest(http.MethodPost, "/api/runs/"+runID+"/reports/executive", nil))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, server, httptest.NewRequest(http.MethodGet, "/api/runs/"+runID+"/reports/executive", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var report dto.ReportResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&report))
	assert.Equal(t, "executive report over 4 results", report.Content)
	assert.Equal(t, "stub", report.Model)

	// Stats
	rec = do(t, server, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var stats dto.StatsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&stats))
	assert.Equal(t, 1, stats.RunCount)
	assert.Equal(t, 1, stats.PotentialCount)
}

func TestServer_ReportsDisabled(t *testing.T) {
	server := newTestServer(t, nil)

	rec := do(t, server, uploadRequest(t))
	require.Equal(t, http.StatusCreated, rec.Code)
	var created dto.ReconcileResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))

	rec = do(t, server, httptest.NewRequest(http.MethodPost, "/api/runs/"+created.Run.ID+"/reports/discrepancies", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestServer_UnknownRun(t *testing.T) {
	server := newTestServer(t, stubReporter{})

	for _, path := range []string{"/api/runs/missing", "/api/runs/missing/results"} {
		rec := do(t, server, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}

	rec := do(t, server, httptest.NewRequest(http.MethodPost, "/api/runs/missing/reports/executive", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_ReadOnlyWithoutService(t *testing.T) {
	repo := storage.NewMockRepository()
	server := api.NewServer(api.DefaultConfig(), repo, nil, testLogger())

	rec := do(t, server, httptest.NewRequest(http.MethodGet, "/api/runs", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, server, httptest.NewRequest(http.MethodPost, "/api/reconciliations", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_CORS(t *testing.T) {
	server := newTestServer(t, nil)

	t.Run("sets CORS headers for allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "http://localhost:3000")

		rec := do(t, server, req)

		assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("handles OPTIONS preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/reconciliations", nil)
		req.Header.Set("Origin", "http://localhost:3000")

		rec := do(t, server, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}
