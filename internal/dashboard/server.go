// Package dashboard serves the read-only JSON API behind the reconciliation
// dashboard UI.
package dashboard

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/eshaffer321/ledger-reconcile/internal/domain/ledger"
	"github.com/eshaffer321/ledger-reconcile/internal/infrastructure/storage"
)

// Server exposes stored runs to the dashboard
type Server struct {
	repo   storage.Repository
	logger *slog.Logger
	router *gin.Engine
}

// OverviewResponse is the dashboard landing payload
type OverviewResponse struct {
	RunCount        int     `json:"run_count"`
	BankRecords     int     `json:"bank_records"`
	BookRecords     int     `json:"book_records"`
	MatchedCount    int     `json:"matched_count"`
	PotentialCount  int     `json:"potential_count"`
	UnmatchedCount  int     `json:"unmatched_count"`
	MatchRate       float64 `json:"match_rate"`
	TotalDiffAmount string  `json:"total_diff_amount"`
	LastRunAt       string  `json:"last_run_at,omitempty"`
}

// RunSummary is one row of the recent-runs table
type RunSummary struct {
	ID             string `json:"id"`
	CreatedAt      string `json:"created_at"`
	BankFile       string `json:"bank_file"`
	BookFile       string `json:"book_file"`
	MatchedCount   int    `json:"matched_count"`
	PotentialCount int    `json:"potential_count"`
	UnmatchedCount int    `json:"unmatched_count"`
	HighConfidence int    `json:"high_confidence"`
	DiffAmount     string `json:"diff_amount"`
}

// RunDetail is a run with its outstanding items
type RunDetail struct {
	RunSummary
	TotalBankAmount string          `json:"total_bank_amount"`
	TotalBookAmount string          `json:"total_book_amount"`
	Outstanding     []ledger.Result `json:"outstanding"` // Everything not fully matched
}

// DefaultOrigins are the local dashboard dev servers
var DefaultOrigins = []string{"http://localhost:3000", "http://localhost:5173"}

// NewServer creates the dashboard server. allowedOrigins feeds the CORS
// policy; an empty list means DefaultOrigins.
func NewServer(repo storage.Repository, allowedOrigins []string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if len(allowedOrigins) == 0 {
		allowedOrigins = DefaultOrigins
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	s := &Server{repo: repo, logger: logger, router: router}

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "healthy"})
		})
		api.GET("/overview", s.getOverview)
		api.GET("/runs/recent", s.getRecentRuns)
		api.GET("/runs/:runId", s.getRunDetail)
	}

	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) getOverview(c *gin.Context) {
	overview, err := s.repo.GetOverview()
	if err != nil {
		s.logger.Error("failed to load overview", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch overview"})
		return
	}

	response := OverviewResponse{
		RunCount:        overview.RunCount,
		BankRecords:     overview.BankRecords,
		BookRecords:     overview.BookRecords,
		MatchedCount:    overview.MatchedCount,
		PotentialCount:  overview.PotentialCount,
		UnmatchedCount:  overview.UnmatchedBankCount + overview.UnmatchedBookCount,
		MatchRate:       overview.MatchRate,
		TotalDiffAmount: overview.TotalDiffAmount.StringFixed(2),
	}
	if overview.LastRunAt != nil {
		response.LastRunAt = overview.LastRunAt.UTC().Format(time.RFC3339)
	}

	c.JSON(http.StatusOK, response)
}

func (s *Server) getRecentRuns(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit <= 0 {
		limit = 10
	}

	runs, err := s.repo.ListRuns(limit)
	if err != nil {
		s.logger.Error("failed to list runs", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recent runs"})
		return
	}

	summaries := make([]RunSummary, 0, len(runs))
	for _, run := range runs {
		summaries = append(summaries, toRunSummary(run))
	}

	c.JSON(http.StatusOK, summaries)
}

func (s *Server) getRunDetail(c *gin.Context) {
	runID := c.Param("runId")

	run, err := s.repo.GetRun(runID)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Run not found"})
		return
	}
	if err != nil {
		s.logger.Error("failed to load run", "run_id", runID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch run"})
		return
	}

	results, err := s.repo.GetResults(runID, storage.ResultFilter{})
	if err != nil {
		s.logger.Error("failed to load results", "run_id", runID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch results"})
		return
	}

	outstanding := make([]ledger.Result, 0, len(results))
	for _, r := range results {
		if r.Status != ledger.StatusMatched {
			outstanding = append(outstanding, r)
		}
	}

	c.JSON(http.StatusOK, RunDetail{
		RunSummary:      toRunSummary(*run),
		TotalBankAmount: run.Stats.TotalBankAmount.StringFixed(2),
		TotalBookAmount: run.Stats.TotalBookAmount.StringFixed(2),
		Outstanding:     outstanding,
	})
}

func toRunSummary(run storage.Run) RunSummary {
	return RunSummary{
		ID:             run.ID,
		CreatedAt:      run.CreatedAt.UTC().Format(time.RFC3339),
		BankFile:       run.BankFile,
		BookFile:       run.BookFile,
		MatchedCount:   run.Stats.MatchedCount,
		PotentialCount: run.Breakdown.PotentialCount,
		UnmatchedCount: run.Stats.UnmatchedBankCount + run.Stats.UnmatchedBookCount,
		HighConfidence: run.Breakdown.HighConfidence,
		DiffAmount:     run.Stats.DiffAmount.StringFixed(2),
	}
}

// requestLogger logs each request through slog, skipping health checks
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if c.FullPath() == "/api/health" {
			return
		}
		logger.Debug("dashboard request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
