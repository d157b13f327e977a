package insight

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/eshaffer321/ledger-reconcile/internal/domain/ledger"
	"github.com/eshaffer321/ledger-reconcile/internal/domain/summary"
)

// Sample limits for the discrepancy prompt.
const (
	maxOrphanSamples    = 10
	maxPotentialSamples = 5
)

type potentialSample struct {
	Invoice string          `json:"invoice"`
	Diff    decimal.Decimal `json:"diff"`
	Kind    ledger.FixKind  `json:"type"`
}

type orphanSample struct {
	Date   string          `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

// discrepancySamples picks what the discrepancy prompt shows: the first
// orphans on each side and the first high-confidence potential matches.
func discrepancySamples(results []ledger.Result) (potentials []potentialSample, bank, book []orphanSample) {
	for _, r := range results {
		switch r.Status {
		case ledger.StatusPotentialMatch:
			if r.Fix == nil || r.Fix.Confidence != ledger.ConfidenceHigh || len(potentials) >= maxPotentialSamples {
				continue
			}
			potentials = append(potentials, potentialSample{
				Invoice: r.Bank.InvoiceNumber,
				Diff:    r.AmountDiff(),
				Kind:    r.Fix.Kind,
			})
		case ledger.StatusUnmatchedBank:
			if len(bank) < maxOrphanSamples {
				bank = append(bank, orphanSample{Date: r.Bank.TransactionDate, Amount: r.Bank.TotalAmount})
			}
		case ledger.StatusUnmatchedBook:
			if len(book) < maxOrphanSamples {
				book = append(book, orphanSample{Date: r.Book.PostingDate, Amount: r.Book.Amount})
			}
		}
	}
	return potentials, bank, book
}

func buildDiscrepancyPrompt(potentials []potentialSample, bank, book []orphanSample) string {
	var b strings.Builder

	b.WriteString("You are an AI financial auditor specialised in spotting data-entry errors.\n\n")
	b.WriteString("Tasks:\n")
	b.WriteString("1. Review the suspected human errors the matcher flagged.\n")
	b.WriteString("2. Review the unmatched records and point out pairs that may have been missed.\n")
	b.WriteString("3. Give a short, actionable fix for each finding.\n\n")
	b.WriteString("Data:\n")
	fmt.Fprintf(&b, "Potential errors: %s\n", mustJSON(potentials))
	fmt.Fprintf(&b, "Unmatched bank: %s\n", mustJSON(bank))
	fmt.Fprintf(&b, "Unmatched book: %s\n\n", mustJSON(book))
	b.WriteString("Answer briefly.\n")

	return b.String()
}

func buildExecutivePrompt(stats ledger.Stats, breakdown summary.ErrorBreakdown) string {
	total := stats.BankCount + stats.BookCount
	matchRate := 0.0
	if total > 0 {
		matchRate = float64(stats.MatchedCount) / float64(total) * 100
	}

	var b strings.Builder

	b.WriteString("You are a senior financial consultant specialised in process improvement.\n\n")
	b.WriteString("Write an executive summary of this bank-to-book reconciliation.\n\n")

	b.WriteString("**Overall statistics:**\n")
	fmt.Fprintf(&b, "- Records: %d (bank %d, book %d)\n", total, stats.BankCount, stats.BookCount)
	fmt.Fprintf(&b, "- Matched: %d (%.1f%%)\n", stats.MatchedCount, matchRate)
	fmt.Fprintf(&b, "- Potential matches: %d\n", breakdown.PotentialCount)
	fmt.Fprintf(&b, "- Unmatched: %d\n", stats.UnmatchedBankCount+stats.UnmatchedBookCount)
	fmt.Fprintf(&b, "- Net difference (bank - book): %s\n\n", stats.DiffAmount.StringFixed(2))

	b.WriteString("**Error patterns:**\n")
	fmt.Fprintf(&b, "- Digit transpositions: %d (points to manual keying)\n", breakdown.Transpositions)
	fmt.Fprintf(&b, "- Digit-count errors: %d\n", breakdown.DigitErrors)
	fmt.Fprintf(&b, "- Small differences (fees, rounding): %d\n", breakdown.SmallDiffs)
	fmt.Fprintf(&b, "- Other mismatches or date drift: %d\n\n", breakdown.Others+breakdown.DateMismatches+breakdown.PotentialsWithoutFix)

	b.WriteString("**Instructions:**\n")
	b.WriteString("Produce a Markdown report with these sections:\n\n")
	b.WriteString("1. **Executive Summary**: overall accuracy of the books and the risk level of the errors found.\n")
	b.WriteString("2. **Root Cause Analysis**: main causes (people, systems, cut-off timing), citing the transposition and digit-count figures.\n")
	b.WriteString("3. **Process Recommendations**: changes that reduce errors long term, such as barcode capture, double-checking large amounts, or moving the cut-off time.\n")
	b.WriteString("4. **Pattern Summary**: the recurring patterns seen in this run.\n")

	return b.String()
}

func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	if string(data) == "null" {
		return "[]"
	}
	return string(data)
}
