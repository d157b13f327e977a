package matcher

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/eshaffer321/ledger-reconcile/internal/domain/detector"
	"github.com/eshaffer321/ledger-reconcile/internal/domain/ledger"
)

// pass pairs bank records with book records.
type pass struct {
	accepts  func(bank ledger.BankRecord, book ledger.BookRecord) bool
	classify func(bank bankHandle, book bookHandle) ledger.Result
}

// apply consumes the available pool and returns the results it claimed plus
// the records it left behind. The returned pool keeps input order.
func (p pass) apply(in pool) ([]ledger.Result, pool) {
	var claimed []ledger.Result
	out := pool{books: slices.Clone(in.books)}

	for _, b := range in.banks {
		i := slices.IndexFunc(out.books, func(k bookHandle) bool {
			return p.accepts(b.record, k.record)
		})
		if i < 0 {
			out.banks = append(out.banks, b)
			continue
		}

		claimed = append(claimed, p.classify(b, out.books[i]))
		out.books = slices.Delete(out.books, i, i+1)
	}

	return claimed, out
}

var exactPass = pass{
	accepts: func(bank ledger.BankRecord, book ledger.BookRecord) bool {
		return amountsAgree(bank.TotalAmount, book.Amount) && book.Description == bank.InvoiceNumber
	},
	classify: func(b bankHandle, k bookHandle) ledger.Result {
		return paired(fmt.Sprintf("match-%d-%s", b.pos, b.record.InvoiceNumber), b, k,
			ledger.StatusMatched, ScoreExact, NoteExact, nil)
	},
}

var identifierPass = pass{
	accepts: func(bank ledger.BankRecord, book ledger.BookRecord) bool {
		return book.Description == bank.InvoiceNumber
	},
	classify: func(b bankHandle, k bookHandle) ledger.Result {
		fix, score, note := classifyAmountError(b.record.TotalAmount, k.record.Amount)
		return paired(fmt.Sprintf("smart-fix-%d", b.pos), b, k,
			ledger.StatusPotentialMatch, score, note, fix)
	},
}

var fuzzyPass = pass{
	accepts: func(bank ledger.BankRecord, book ledger.BookRecord) bool {
		return amountsAgree(bank.TotalAmount, book.Amount)
	},
	classify: func(b bankHandle, k bookHandle) ledger.Result {
		fix := &ledger.SuggestedFix{
			Kind:        ledger.FixOther,
			Description: "book description may have been keyed incorrectly",
			Correction:  fmt.Sprintf("change book description to %s", b.record.InvoiceNumber),
			Confidence:  ledger.ConfidenceLow,
		}
		return paired(fmt.Sprintf("fuzzy-%d-%d", b.pos, k.pos), b, k,
			ledger.StatusPotentialMatch, ScoreFuzzy, NoteFuzzy, fix)
	},
}

func paired(id string, b bankHandle, k bookHandle, status ledger.MatchStatus, score int, note string, fix *ledger.SuggestedFix) ledger.Result {
	bank := b.record
	book := k.record
	return ledger.Result{
		ID:     id,
		Bank:   &bank,
		Book:   &book,
		Status: status,
		Score:  score,
		Note:   note,
		Fix:    fix,
	}
}

// collectOrphans turns whatever is left in the pool into unmatched results:
// all bank orphans first, then all book orphans, each in input order.
func collectOrphans(left pool) []ledger.Result {
	results := make([]ledger.Result, 0, len(left.banks)+len(left.books))

	for _, b := range left.banks {
		bank := b.record
		results = append(results, ledger.Result{
			ID:     fmt.Sprintf("un-bank-%d", b.pos),
			Bank:   &bank,
			Status: ledger.StatusUnmatchedBank,
			Score:  ScoreUnmatched,
			Note:   NoteUnmatchedBank,
		})
	}

	for _, k := range left.books {
		book := k.record
		results = append(results, ledger.Result{
			ID:     fmt.Sprintf("un-book-%d", k.pos),
			Book:   &book,
			Status: ledger.StatusUnmatchedBook,
			Score:  ScoreUnmatched,
			Note:   NoteUnmatchedBook,
		})
	}

	return results
}

// classifyAmountError explains an amount disagreement between records whose
// identifiers agree. Checks run in priority order: transposition, digit
// shift, small difference, anything else.
func classifyAmountError(bank, book decimal.Decimal) (*ledger.SuggestedFix, int, string) {
	replace := fmt.Sprintf("change book amount from %s to %s", book.StringFixed(2), bank.StringFixed(2))

	switch {
	case detector.IsTransposition(bank, book):
		return &ledger.SuggestedFix{
			Kind:        ledger.FixTransposition,
			Description: "two digits appear to be swapped",
			Correction:  replace,
			Confidence:  ledger.ConfidenceHigh,
		}, ScoreHighFix, NoteTransposition

	case detector.IsDigitShift(bank, book):
		return &ledger.SuggestedFix{
			Kind:        ledger.FixDigitError,
			Description: "amount is off by one decimal place",
			Correction:  replace,
			Confidence:  ledger.ConfidenceHigh,
		}, ScoreHighFix, NoteDigitShift

	case bank.Sub(book).Abs().LessThan(smallDiffLimit):
		return &ledger.SuggestedFix{
			Kind:        ledger.FixSmallDiff,
			Description: "small amount difference, likely a fee or rounding",
			Correction:  fmt.Sprintf("post an adjustment of %s", bank.Sub(book).Abs().StringFixed(2)),
			Confidence:  ledger.ConfidenceMedium,
		}, ScoreMediumFix, NoteSmallDiff

	default:
		return &ledger.SuggestedFix{
			Kind:        ledger.FixOther,
			Description: "amount keyed incorrectly",
			Correction:  fmt.Sprintf("change book amount to match bank (%s)", bank.StringFixed(2)),
			Confidence:  ledger.ConfidenceMedium,
		}, ScoreMediumFix, NoteAmountMismatch
	}
}
