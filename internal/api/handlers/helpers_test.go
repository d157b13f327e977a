package handlers_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/ledger-reconcile/internal/domain/ledger"
	"github.com/eshaffer321/ledger-reconcile/internal/domain/summary"
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

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// bufferLogger returns a logger writing text records into buf.
func bufferLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, nil))
}

func setChiURLParams(ctx context.Context, kv ...string) context.Context {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return context.WithValue(ctx, chi.RouteCtxKey, rctx)
}

// multipartRequest builds an upload request. Empty contents omit the field.
func multipartRequest(t *testing.T, target string, files map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for field, content := range files {
		if content == "" {
			continue
		}
		part, err := writer.CreateFormFile(field, field+".csv")
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

// seedRun stores one run with a matched, a potential and an orphan result.
func seedRun(t *testing.T, repo *storage.MockRepository, id string, createdAt time.Time) {
	t.Helper()

	results := []ledger.Result{
		{
			ID:     "match-0-INV1",
			Bank:   &ledger.BankRecord{InvoiceNumber: "INV1", TotalAmount: decimal.NewFromInt(100)},
			Book:   &ledger.BookRecord{Description: "INV1", Amount: decimal.NewFromInt(100)},
			Status: ledger.StatusMatched,
			Score:  100,
		},
		{
			ID:     "smart-fix-1",
			Bank:   &ledger.BankRecord{InvoiceNumber: "INV2", TotalAmount: decimal.NewFromInt(5400)},
			Book:   &ledger.BookRecord{Description: "INV2", Amount: decimal.NewFromInt(4500)},
			Status: ledger.StatusPotentialMatch,
			Score:  90,
		},
		{
			ID:     "un-bank-2",
			Bank:   &ledger.BankRecord{InvoiceNumber: "INV3", TotalAmount: decimal.NewFromInt(77)},
			Status: ledger.StatusUnmatchedBank,
		},
	}

	run := &storage.Run{
		ID:        id,
		CreatedAt: createdAt,
		BankFile:  "bank.csv",
		BookFile:  "book.csv",
		Stats: ledger.Stats{
			BankCount:          3,
			BookCount:          2,
			MatchedCount:       1,
			UnmatchedBankCount: 1,
			TotalBankAmount:    decimal.NewFromInt(5577),
			TotalBookAmount:    decimal.NewFromInt(4600),
			DiffAmount:         decimal.NewFromInt(977),
		},
		Breakdown: summary.ErrorBreakdown{PotentialCount: 1, Transpositions: 1},
	}
	require.NoError(t, repo.SaveRun(run, results))
}
