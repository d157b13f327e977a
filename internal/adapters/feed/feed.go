// Package feed decodes bank statement and book ledger CSV exports into
// ledger records.
//
// Both formats carry a header row, which is skipped. Rows with too few
// columns are ignored, matching how the exports pad trailing summary lines.
//
// Rows are numbered by their line index in the file: the header is row 0 and
// the first data row is row 1. Blank lines still take up an index.
package feed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/eshaffer321/ledger-reconcile/internal/domain/ledger"
)

// Bank statement column layout.
const (
	bankColAccount     = 0
	bankColTxDate      = 2 // Column 1 is the settlement date, unused
	bankColTime        = 3
	bankColInvoice     = 4
	bankColProduct     = 5
	bankColTotalAmount = 10
	bankColMerchantID  = 13
	bankColFuelBrand   = 14
	bankMinColumns     = 11
)

// Book ledger column layout.
const (
	bookColDocumentNo  = 0
	bookColPostingDate = 1
	bookColDescription = 2
	bookColAmount      = 3
	bookMinColumns     = 4
)

// ParseError reports a row that could not be decoded.
type ParseError struct {
	Line  int // Row index, header is 0
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("row %d: %s: %v", e.Line, e.Field, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseBankCSV decodes a bank statement export.
func ParseBankCSV(r io.Reader) ([]ledger.BankRecord, error) {
	var records []ledger.BankRecord

	err := eachRow(r, bankMinColumns, func(line int, cols []string) error {
		amount, err := ParseAmount(cols[bankColTotalAmount])
		if err != nil {
			return &ParseError{Line: line, Field: "total_amount", Err: err}
		}

		records = append(records, ledger.BankRecord{
			AccountNo:       clean(cols[bankColAccount]),
			TransactionDate: clean(cols[bankColTxDate]),
			Time:            clean(cols[bankColTime]),
			InvoiceNumber:   clean(cols[bankColInvoice]),
			Product:         clean(cols[bankColProduct]),
			TotalAmount:     amount,
			MerchantID:      column(cols, bankColMerchantID),
			FuelBrand:       column(cols, bankColFuelBrand),
			Line:            line,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse bank feed: %w", err)
	}

	return records, nil
}

// ParseBookCSV decodes a book ledger export.
func ParseBookCSV(r io.Reader) ([]ledger.BookRecord, error) {
	var records []ledger.BookRecord

	err := eachRow(r, bookMinColumns, func(line int, cols []string) error {
		amount, err := ParseAmount(cols[bookColAmount])
		if err != nil {
			return &ParseError{Line: line, Field: "amount", Err: err}
		}

		records = append(records, ledger.BookRecord{
			DocumentNo:  clean(cols[bookColDocumentNo]),
			PostingDate: clean(cols[bookColPostingDate]),
			Description: clean(cols[bookColDescription]),
			Amount:      amount,
			Line:        line,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse book feed: %w", err)
	}

	return records, nil
}

// ParseAmount reads a currency string such as "2,080.00". Thousands
// separators and stray quotes are dropped; an empty string is zero.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.NewReplacer(",", "", `"`, "").Replace(strings.TrimSpace(s))
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

// eachRow calls fn for every data row (header excluded) that has at least
// minCols columns. line is the row index, with the header at 0.
func eachRow(r io.Reader, minCols int, fn func(line int, cols []string) error) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header := true
	for {
		cols, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if header {
			header = false
			continue
		}

		if len(cols) < minCols {
			continue
		}

		// FieldPos is 1-based
		line, _ := reader.FieldPos(0)
		if err := fn(line-1, cols); err != nil {
			return err
		}
	}
}

func clean(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, `"`, ""))
}

func column(cols []string, i int) string {
	if i >= len(cols) {
		return ""
	}
	return clean(cols[i])
}
