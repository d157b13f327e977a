package summary

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/eshaffer321/ledger-reconcile/internal/domain/ledger"
)

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestSummarize(t *testing.T) {
	bank := []ledger.BankRecord{
		{InvoiceNumber: "INV1", TotalAmount: amount("1000.10")},
		{InvoiceNumber: "INV2", TotalAmount: amount("0.20")},
		{InvoiceNumber: "INV3", TotalAmount: amount("55.55")},
	}
	book := []ledger.BookRecord{
		{Description: "INV1", Amount: amount("1000.10")},
		{Description: "X", Amount: amount("0.10")},
	}
	results := []ledger.Result{
		{Status: ledger.StatusMatched, Bank: &bank[0], Book: &book[0]},
		{Status: ledger.StatusPotentialMatch, Bank: &bank[1], Book: &book[1]},
		{Status: ledger.StatusUnmatchedBank, Bank: &bank[2]},
	}

	stats := Summarize(results, bank, book)

	assert.Equal(t, 3, stats.BankCount)
	assert.Equal(t, 2, stats.BookCount)
	assert.Equal(t, 1, stats.MatchedCount)
	assert.Equal(t, 1, stats.UnmatchedBankCount)
	assert.Equal(t, 0, stats.UnmatchedBookCount)
	assert.True(t, amount("1055.85").Equal(stats.TotalBankAmount), "bank total %s", stats.TotalBankAmount)
	assert.True(t, amount("1000.20").Equal(stats.TotalBookAmount), "book total %s", stats.TotalBookAmount)
	assert.True(t, amount("55.65").Equal(stats.DiffAmount), "diff %s", stats.DiffAmount)
	assert.Equal(t, 1, PotentialCount(stats, len(results)))
}

func TestSummarize_Empty(t *testing.T) {
	stats := Summarize(nil, nil, nil)

	assert.Equal(t, 0, stats.BankCount)
	assert.True(t, stats.TotalBankAmount.IsZero())
	assert.True(t, stats.TotalBookAmount.IsZero())
	assert.True(t, stats.DiffAmount.IsZero())
}

func TestBreakdown(t *testing.T) {
	fix := func(kind ledger.FixKind, c ledger.Confidence) *ledger.SuggestedFix {
		return &ledger.SuggestedFix{Kind: kind, Confidence: c}
	}
	results := []ledger.Result{
		{Status: ledger.StatusMatched},
		{Status: ledger.StatusPotentialMatch, Fix: fix(ledger.FixTransposition, ledger.ConfidenceHigh)},
		{Status: ledger.StatusPotentialMatch, Fix: fix(ledger.FixDigitError, ledger.ConfidenceHigh)},
		{Status: ledger.StatusPotentialMatch, Fix: fix(ledger.FixSmallDiff, ledger.ConfidenceMedium)},
		{Status: ledger.StatusPotentialMatch, Fix: fix(ledger.FixOther, ledger.ConfidenceLow)},
		{Status: ledger.StatusPotentialMatch},
		{Status: ledger.StatusUnmatchedBook},
	}

	b := Breakdown(results)

	assert.Equal(t, ErrorBreakdown{
		PotentialCount:       5,
		Transpositions:       1,
		DigitErrors:          1,
		SmallDiffs:           1,
		Others:               1,
		HighConfidence:       2,
		PotentialsWithoutFix: 1,
	}, b)
}
