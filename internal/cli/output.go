package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/eshaffer321/ledger-reconcile/internal/application/reconcile"
	"github.com/eshaffer321/ledger-reconcile/internal/domain/ledger"
	"github.com/eshaffer321/ledger-reconcile/internal/domain/summary"
)

// PrintHeader prints the application header
func PrintHeader(w io.Writer, bankName, bookName string, save bool) {
	mode := "PREVIEW"
	if save {
		mode = "SAVE"
	}
	fmt.Fprintf(w, "ledger-reconcile: %s vs %s (%s mode)\n\n", bankName, bookName, mode)
}

// PrintSummary prints the run totals
func PrintSummary(w io.Writer, outcome *reconcile.Outcome) {
	stats := outcome.Stats
	potential := summary.PotentialCount(stats, len(outcome.Results))

	fmt.Fprintln(w, strings.Repeat("-", 60))
	fmt.Fprintf(w, "Bank: %d records, %s\n", stats.BankCount, stats.TotalBankAmount.StringFixed(2))
	fmt.Fprintf(w, "Book: %d records, %s\n", stats.BookCount, stats.TotalBookAmount.StringFixed(2))
	fmt.Fprintf(w, "Difference: %s\n", stats.DiffAmount.StringFixed(2))
	fmt.Fprintf(w, "Matched=%d Potential=%d UnmatchedBank=%d UnmatchedBook=%d\n",
		stats.MatchedCount, potential, stats.UnmatchedBankCount, stats.UnmatchedBookCount)

	if outcome.Persisted {
		fmt.Fprintf(w, "Saved as run %s\n", outcome.RunID)
	}
	if outcome.BankArchiveURI != "" {
		fmt.Fprintf(w, "Archived: %s, %s\n", outcome.BankArchiveURI, outcome.BookArchiveURI)
	}
}

// PrintBreakdown prints the fix categories of potential matches. Nothing is
// printed when there are none.
func PrintBreakdown(w io.Writer, b summary.ErrorBreakdown) {
	if b.PotentialCount == 0 {
		return
	}

	fmt.Fprintf(w, "\nSuggested fixes (%d potential, %d high confidence):\n", b.PotentialCount, b.HighConfidence)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  Transpositions\t%d\n", b.Transpositions)
	fmt.Fprintf(tw, "  Digit errors\t%d\n", b.DigitErrors)
	fmt.Fprintf(tw, "  Date mismatches\t%d\n", b.DateMismatches)
	fmt.Fprintf(tw, "  Small differences\t%d\n", b.SmallDiffs)
	fmt.Fprintf(tw, "  Other\t%d\n", b.Others)
	if b.PotentialsWithoutFix > 0 {
		fmt.Fprintf(tw, "  Without fix\t%d\n", b.PotentialsWithoutFix)
	}
	_ = tw.Flush()
}

// PrintResults prints non-matched results as a table. A limit of 0 prints
// all of them.
func PrintResults(w io.Writer, results []ledger.Result, limit int) {
	var outstanding []ledger.Result
	for _, r := range results {
		if r.Status != ledger.StatusMatched {
			outstanding = append(outstanding, r)
		}
	}

	if len(outstanding) == 0 {
		fmt.Fprintln(w, "\nAll records matched.")
		return
	}

	shown := outstanding
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}

	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STATUS\tSCORE\tINVOICE\tBANK\tBOOK\tFIX\tNOTE")
	for _, r := range shown {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\n",
			r.Status, r.Score, invoiceOf(r), bankAmount(r), bookAmount(r), fixOf(r), r.Note)
	}
	_ = tw.Flush()

	if hidden := len(outstanding) - len(shown); hidden > 0 {
		fmt.Fprintf(w, "... %d more (use -limit 0 to show all)\n", hidden)
	}
}

// PrintReport prints a generated report under a heading
func PrintReport(w io.Writer, kind, model, content string) {
	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 60))
	fmt.Fprintf(w, "Report: %s (%s)\n", kind, model)
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintln(w, strings.TrimSpace(content))
}

func invoiceOf(r ledger.Result) string {
	if r.Bank != nil {
		return r.Bank.InvoiceNumber
	}
	if r.Book != nil {
		return r.Book.Description
	}
	return "-"
}

func bankAmount(r ledger.Result) string {
	if r.Bank == nil {
		return "-"
	}
	return r.Bank.TotalAmount.StringFixed(2)
}

func bookAmount(r ledger.Result) string {
	if r.Book == nil {
		return "-"
	}
	return r.Book.Amount.StringFixed(2)
}

func fixOf(r ledger.Result) string {
	if r.Fix == nil {
		return "-"
	}
	return fmt.Sprintf("%s (%s)", r.Fix.Kind, r.Fix.Confidence)
}
