package matcher

import (
	"github.com/shopspring/decimal"

	"github.com/eshaffer321/ledger-reconcile/internal/domain/ledger"
)

var (
	// amountTolerance is the largest difference (exclusive) at which two
	// amounts are considered equal: one cent.
	amountTolerance = decimal.New(1, -2)

	// smallDiffLimit is the largest difference (exclusive) still classified
	// as a minor amount difference, in whole currency units.
	smallDiffLimit = decimal.NewFromInt(10)
)

// Scores assigned per outcome.
const (
	ScoreExact     = 100
	ScoreHighFix   = 90
	ScoreMediumFix = 70
	ScoreFuzzy     = 60
	ScoreUnmatched = 0
)

// Notes attached to results.
const (
	NoteExact          = "data fully consistent"
	NoteTransposition  = "possible digit transposition"
	NoteDigitShift     = "possible digit-count error"
	NoteSmallDiff      = "minor amount difference"
	NoteAmountMismatch = "invoice number agrees but amount differs"
	NoteFuzzy          = "amounts agree, identifiers do not"
	NoteUnmatchedBank  = "not found in book feed"
	NoteUnmatchedBook  = "not found in bank feed"
)

// bankHandle is a bank record still available to the passes, tagged with its
// position in the caller's slice.
type bankHandle struct {
	pos    int
	record ledger.BankRecord
}

// bookHandle is the book-side counterpart of bankHandle.
type bookHandle struct {
	pos    int
	record ledger.BookRecord
}

// pool holds the records not yet claimed by any pass, in input order.
type pool struct {
	banks []bankHandle
	books []bookHandle
}

func newPool(bank []ledger.BankRecord, book []ledger.BookRecord) pool {
	p := pool{
		banks: make([]bankHandle, len(bank)),
		books: make([]bookHandle, len(book)),
	}
	for i, r := range bank {
		p.banks[i] = bankHandle{pos: i, record: r}
	}
	for i, r := range book {
		p.books[i] = bookHandle{pos: i, record: r}
	}
	return p
}

func amountsAgree(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(amountTolerance)
}
