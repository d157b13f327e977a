// Package ledger defines the record and result types shared by the
// reconciliation engine and everything built around it.
//
// Amounts are decimal.Decimal so totals and differences are exact and no
// record can carry NaN or an infinity into a comparison.
package ledger

import (
	"github.com/shopspring/decimal"
)

// BankRecord is one row of a bank-issued statement feed.
type BankRecord struct {
	AccountNo       string          `json:"account_no"`
	TransactionDate string          `json:"transaction_date"`
	Time            string          `json:"time"`
	InvoiceNumber   string          `json:"invoice_number"`
	Product         string          `json:"product"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	MerchantID      string          `json:"merchant_id"`
	FuelBrand       string          `json:"fuel_brand"`
	Line            int             `json:"line"` // Row index in the source feed, header is 0
}

// BookRecord is one row of the internal accounting feed.
type BookRecord struct {
	DocumentNo  string          `json:"document_no"`
	PostingDate string          `json:"posting_date"`
	Description string          `json:"description"` // Conventionally the bank invoice number
	Amount      decimal.Decimal `json:"amount"`
	Line        int             `json:"line"`
}

// MatchStatus classifies a Result.
type MatchStatus string

const (
	StatusMatched        MatchStatus = "MATCHED"
	StatusPotentialMatch MatchStatus = "POTENTIAL_MATCH"
	StatusUnmatchedBank  MatchStatus = "UNMATCHED_BANK" // Present only in the bank feed
	StatusUnmatchedBook  MatchStatus = "UNMATCHED_BOOK" // Present only in the book feed
)

// Valid reports whether s is one of the known statuses.
func (s MatchStatus) Valid() bool {
	switch s {
	case StatusMatched, StatusPotentialMatch, StatusUnmatchedBank, StatusUnmatchedBook:
		return true
	}
	return false
}

// FixKind names the suspected cause of a discrepancy.
type FixKind string

const (
	FixTransposition FixKind = "TRANSPOSITION"
	FixDigitError    FixKind = "DIGIT_ERROR"
	FixDateMismatch  FixKind = "DATE_MISMATCH"
	FixSmallDiff     FixKind = "SMALL_DIFF"
	FixOther         FixKind = "OTHER"
)

// Confidence grades a SuggestedFix.
type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

// SuggestedFix is a proposed correction attached to a potential match.
type SuggestedFix struct {
	Kind        FixKind    `json:"type"`
	Description string     `json:"description"`
	Correction  string     `json:"correction"`
	Confidence  Confidence `json:"confidence"`
}

// Result is one classified outcome of a reconciliation run.
//
// Matched and potential results carry both records; orphans carry exactly
// one. Records are copies owned by the result.
type Result struct {
	ID     string        `json:"id"`
	Bank   *BankRecord   `json:"bank_record,omitempty"`
	Book   *BookRecord   `json:"book_record,omitempty"`
	Status MatchStatus   `json:"status"`
	Score  int           `json:"score"` // 0-100
	Note   string        `json:"note,omitempty"`
	Fix    *SuggestedFix `json:"suggested_fix,omitempty"`
}

// AmountDiff returns bank minus book for results that carry both records,
// and zero otherwise.
func (r Result) AmountDiff() decimal.Decimal {
	if r.Bank == nil || r.Book == nil {
		return decimal.Zero
	}
	return r.Bank.TotalAmount.Sub(r.Book.Amount)
}

// Stats aggregates a run.
type Stats struct {
	BankCount          int             `json:"total_bank"`
	BookCount          int             `json:"total_book"`
	MatchedCount       int             `json:"matched_count"`
	UnmatchedBankCount int             `json:"unmatched_bank_count"`
	UnmatchedBookCount int             `json:"unmatched_book_count"`
	TotalBankAmount    decimal.Decimal `json:"total_bank_amount"`
	TotalBookAmount    decimal.Decimal `json:"total_book_amount"`
	DiffAmount         decimal.Decimal `json:"diff_amount"` // TotalBankAmount - TotalBookAmount
}
