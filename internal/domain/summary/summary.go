// Package summary reduces reconciliation results to aggregate figures.
package summary

import (
	"github.com/shopspring/decimal"

	"github.com/eshaffer321/ledger-reconcile/internal/domain/ledger"
)

// Summarize computes run statistics from the results and the raw inputs.
// Totals are summed from the inputs, not the results, so DiffAmount is
// exactly sum(bank) - sum(book).
func Summarize(results []ledger.Result, bank []ledger.BankRecord, book []ledger.BookRecord) ledger.Stats {
	stats := ledger.Stats{
		BankCount:       len(bank),
		BookCount:       len(book),
		TotalBankAmount: decimal.Zero,
		TotalBookAmount: decimal.Zero,
	}

	for _, r := range results {
		switch r.Status {
		case ledger.StatusMatched:
			stats.MatchedCount++
		case ledger.StatusUnmatchedBank:
			stats.UnmatchedBankCount++
		case ledger.StatusUnmatchedBook:
			stats.UnmatchedBookCount++
		}
	}

	for _, b := range bank {
		stats.TotalBankAmount = stats.TotalBankAmount.Add(b.TotalAmount)
	}
	for _, b := range book {
		stats.TotalBookAmount = stats.TotalBookAmount.Add(b.Amount)
	}
	stats.DiffAmount = stats.TotalBankAmount.Sub(stats.TotalBookAmount)

	return stats
}

// PotentialCount derives the number of potential matches, which Stats does
// not track.
func PotentialCount(stats ledger.Stats, resultCount int) int {
	return resultCount - stats.MatchedCount - stats.UnmatchedBankCount - stats.UnmatchedBookCount
}

// ErrorBreakdown counts suggested fixes by kind.
type ErrorBreakdown struct {
	PotentialCount       int `json:"potential_count"`
	Transpositions       int `json:"transpositions"`
	DigitErrors          int `json:"digit_errors"`
	DateMismatches       int `json:"date_mismatches"`
	SmallDiffs           int `json:"small_diffs"`
	Others               int `json:"others"`
	HighConfidence       int `json:"high_confidence"`
	PotentialsWithoutFix int `json:"potentials_without_fix"`
}

// Breakdown tallies the fixes attached to potential matches.
func Breakdown(results []ledger.Result) ErrorBreakdown {
	var b ErrorBreakdown

	for _, r := range results {
		if r.Status != ledger.StatusPotentialMatch {
			continue
		}
		b.PotentialCount++

		if r.Fix == nil {
			b.PotentialsWithoutFix++
			continue
		}

		switch r.Fix.Kind {
		case ledger.FixTransposition:
			b.Transpositions++
		case ledger.FixDigitError:
			b.DigitErrors++
		case ledger.FixDateMismatch:
			b.DateMismatches++
		case ledger.FixSmallDiff:
			b.SmallDiffs++
		default:
			b.Others++
		}

		if r.Fix.Confidence == ledger.ConfidenceHigh {
			b.HighConfidence++
		}
	}

	return b
}
