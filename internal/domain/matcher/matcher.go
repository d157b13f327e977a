// Package matcher reconciles a bank statement feed against an internal book
// feed.
//
// Reconcile runs four passes in fixed priority order:
//  1. exact: amount within one cent and book description equals bank invoice
//  2. identifier: description equals invoice, amount disagrees (suggests a fix)
//  3. fuzzy: amount within one cent, identifiers ignored
//  4. orphans: whatever is left on either side
//
// Each pass takes the pool of still-available records and hands the
// remainder to the next, so a record claimed by an earlier pass can never be
// claimed again. Within a pass, bank records are visited in input order and
// each takes the first available book record that qualifies. There is no
// scoring among ties.
//
// Example usage:
//
//	results, stats := matcher.Reconcile(bankRecords, bookRecords)
//	for _, r := range results {
//		if r.Status == ledger.StatusPotentialMatch {
//			fmt.Println(r.Fix.Correction)
//		}
//	}
package matcher

import (
	"github.com/eshaffer321/ledger-reconcile/internal/domain/ledger"
	"github.com/eshaffer321/ledger-reconcile/internal/domain/summary"
)

// passes is the fixed priority order of the pairing passes.
var passes = []pass{exactPass, identifierPass, fuzzyPass}

// Reconcile partitions bank and book into classified results and computes the
// summary statistics. Inputs are not modified. Every input record appears in
// exactly one result.
func Reconcile(bank []ledger.BankRecord, book []ledger.BookRecord) ([]ledger.Result, ledger.Stats) {
	results := Match(bank, book)
	return results, summary.Summarize(results, bank, book)
}

// Match runs all passes and returns the results in emission order: each
// pairing pass in bank-input order, then bank orphans, then book orphans.
func Match(bank []ledger.BankRecord, book []ledger.BookRecord) []ledger.Result {
	results := make([]ledger.Result, 0, max(len(bank), len(book)))
	available := newPool(bank, book)

	for _, p := range passes {
		var claimed []ledger.Result
		claimed, available = p.apply(available)
		results = append(results, claimed...)
	}

	return append(results, collectOrphans(available)...)
}
