package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/ledger-reconcile/internal/adapters/insight"
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

type mockReporter struct {
	mock.Mock
}

func (m *mockReporter) Report(ctx context.Context, kind insight.ReportKind, results []ledger.Result, stats ledger.Stats) (string, error) {
	args := m.Called(ctx, kind, results, stats)
	return args.String(0), args.Error(1)
}

func (m *mockReporter) Model() string {
	return "test-model"
}

type fakeArchiver struct {
	names []string
	err   error
}

func (f *fakeArchiver) Archive(_ context.Context, runID, name string, _ []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.names = append(f.names, name)
	return "gs://bucket/" + runID + "/" + name, nil
}

func newTestService(repo storage.Repository, archiver *fakeArchiver, reporter Reporter) *Service {
	svc := NewService(repo, archiver, reporter, nil)
	svc.newID = func() string { return "run-1" }
	svc.now = func() time.Time { return time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC) }
	return svc
}

func validRequest(persist bool) Request {
	return Request{
		BankName: "bank.csv",
		Bank:     []byte(bankFeed),
		BookName: "book.csv",
		Book:     []byte(bookFeed),
		Persist:  persist,
	}
}

func TestService_Run_PersistsOutcome(t *testing.T) {
	// Arrange
	repo := storage.NewMockRepository()
	archiver := &fakeArchiver{}
	svc := newTestService(repo, archiver, nil)

	// Act
	outcome, err := svc.Run(context.Background(), validRequest(true))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "run-1", outcome.RunID)
	assert.True(t, outcome.Persisted)
	require.Len(t, outcome.Results, 4)
	assert.Equal(t, 1, outcome.Stats.MatchedCount)
	assert.Equal(t, 1, outcome.Stats.UnmatchedBankCount)
	assert.Equal(t, 1, outcome.Stats.UnmatchedBookCount)
	assert.Equal(t, 1, outcome.Breakdown.Transpositions)
	assert.Equal(t, "5477", outcome.Stats.TotalBankAmount.String())
	assert.Equal(t, "865", outcome.Stats.DiffAmount.String())

	assert.Equal(t, []string{"bank.csv", "book.csv"}, archiver.names)
	assert.Equal(t, "gs://bucket/run-1/bank.csv", outcome.BankArchiveURI)

	require.True(t, repo.SaveRunCalled)
	assert.Equal(t, "bank.csv", repo.LastSavedRun.BankFile)
	assert.Equal(t, "gs://bucket/run-1/book.csv", repo.LastSavedRun.BookArchiveURI)

	stored, err := repo.GetResults("run-1", storage.ResultFilter{})
	require.NoError(t, err)
	assert.Equal(t, outcome.Results, stored)
}

func TestService_Run_WithoutPersist(t *testing.T) {
	repo := storage.NewMockRepository()
	svc := newTestService(repo, &fakeArchiver{}, nil)

	outcome, err := svc.Run(context.Background(), validRequest(false))

	require.NoError(t, err)
	assert.False(t, outcome.Persisted)
	assert.False(t, repo.SaveRunCalled)
}

func TestService_Run_PersistWithoutRepository(t *testing.T) {
	svc := newTestService(nil, &fakeArchiver{}, nil)

	outcome, err := svc.Run(context.Background(), validRequest(true))

	require.NoError(t, err)
	assert.False(t, outcome.Persisted)
}

func TestService_Run_ArchiveFailureDoesNotFailRun(t *testing.T) {
	svc := newTestService(nil, &fakeArchiver{err: errors.New("bucket gone")}, nil)

	outcome, err := svc.Run(context.Background(), validRequest(false))

	require.NoError(t, err)
	assert.Empty(t, outcome.BankArchiveURI)
	assert.Empty(t, outcome.BookArchiveURI)
	assert.Len(t, outcome.Results, 4)
}

func TestService_Run_InvalidFeed(t *testing.T) {
	svc := newTestService(nil, &fakeArchiver{}, nil)
	req := validRequest(false)
	req.Book = []byte("document_no,posting_date,description,amount\nJV-1,2025-03-01,INV1,abc\n")

	_, err := svc.Run(context.Background(), req)

	assert.ErrorIs(t, err, ErrInvalidFeed)
}

func TestService_Run_SaveFailure(t *testing.T) {
	repo := storage.NewMockRepository()
	repo.SaveRunErr = errors.New("disk full")
	svc := newTestService(repo, &fakeArchiver{}, nil)

	_, err := svc.Run(context.Background(), validRequest(true))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestService_Report(t *testing.T) {
	// Arrange
	repo := storage.NewMockRepository()
	reporter := &mockReporter{}
	svc := newTestService(repo, &fakeArchiver{}, reporter)

	outcome, err := svc.Run(context.Background(), validRequest(true))
	require.NoError(t, err)

	reporter.On("Report", mock.Anything, insight.KindExecutive, outcome.Results, outcome.Stats).
		Return("## Summary", nil).Once()

	// Act
	report, err := svc.Report(context.Background(), "run-1", insight.KindExecutive)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "## Summary", report.Content)
	assert.Equal(t, "test-model", report.Model)
	assert.Equal(t, "executive", report.Kind)
	reporter.AssertExpectations(t)

	saved, err := svc.GetReport("run-1", insight.KindExecutive)
	require.NoError(t, err)
	assert.Equal(t, "## Summary", saved.Content)
}

func TestService_Report_Errors(t *testing.T) {
	t.Run("reports disabled", func(t *testing.T) {
		svc := newTestService(storage.NewMockRepository(), &fakeArchiver{}, nil)
		_, err := svc.Report(context.Background(), "run-1", insight.KindExecutive)
		assert.ErrorIs(t, err, ErrReportsDisabled)
	})

	t.Run("no repository", func(t *testing.T) {
		svc := newTestService(nil, &fakeArchiver{}, &mockReporter{})
		_, err := svc.Report(context.Background(), "run-1", insight.KindExecutive)
		assert.ErrorIs(t, err, ErrNoRepository)
	})

	t.Run("unknown run", func(t *testing.T) {
		svc := newTestService(storage.NewMockRepository(), &fakeArchiver{}, &mockReporter{})
		_, err := svc.Report(context.Background(), "missing", insight.KindExecutive)
		assert.ErrorIs(t, err, ErrRunNotFound)
	})

	t.Run("model failure is not saved", func(t *testing.T) {
		repo := storage.NewMockRepository()
		reporter := &mockReporter{}
		svc := newTestService(repo, &fakeArchiver{}, reporter)
		_, err := svc.Run(context.Background(), validRequest(true))
		require.NoError(t, err)

		reporter.On("Report", mock.Anything, insight.KindDiscrepancies, mock.Anything, mock.Anything).
			Return("", errors.New("quota exceeded"))

		_, err = svc.Report(context.Background(), "run-1", insight.KindDiscrepancies)
		assert.Error(t, err)
		assert.False(t, repo.SaveReportCalled)
	})

	t.Run("report not generated yet", func(t *testing.T) {
		svc := newTestService(storage.NewMockRepository(), &fakeArchiver{}, nil)
		_, err := svc.GetReport("run-1", insight.KindExecutive)
		assert.ErrorIs(t, err, ErrReportNotFound)
	})
}

func TestService_Analyze(t *testing.T) {
	reporter := &mockReporter{}
	svc := newTestService(nil, &fakeArchiver{}, reporter)

	outcome, err := svc.Run(context.Background(), validRequest(false))
	require.NoError(t, err)

	reporter.On("Report", mock.Anything, insight.KindDiscrepancies, outcome.Results, outcome.Stats).
		Return("INV3 is missing from the book", nil)

	text, err := svc.Analyze(context.Background(), outcome, insight.KindDiscrepancies)
	require.NoError(t, err)
	assert.Equal(t, "INV3 is missing from the book", text)

	_, err = newTestService(nil, &fakeArchiver{}, nil).Analyze(context.Background(), outcome, insight.KindExecutive)
	assert.ErrorIs(t, err, ErrReportsDisabled)
}
