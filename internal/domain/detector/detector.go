// Package detector holds the numeric heuristics used to explain why two
// amounts that should agree do not.
//
// Both predicates are pure and total: they never panic and never divide by
// zero.
package detector

import (
	"github.com/shopspring/decimal"
)

var (
	shiftUp      = decimal.NewFromInt(10)
	shiftDown    = decimal.New(1, -1) // 0.1
	shiftEpsilon = decimal.New(1, -2) // 0.01, absolute on the ratio
)

// IsTransposition reports whether bank and book differ by exactly one swap of
// two digits in their minor-unit (cent) representation.
//
// The swapped positions need not be adjacent: 5400.00 vs 4500.00 and
// 1203.00 vs 3201.00 both qualify.
func IsTransposition(bank, book decimal.Decimal) bool {
	a := minorUnits(bank)
	b := minorUnits(book)

	if len(a) != len(b) {
		return false
	}

	var diff []int
	for i := 0; i < len(a); i++ {
		if a[i] != b[i] {
			diff = append(diff, i)
			if len(diff) > 2 {
				return false
			}
		}
	}

	if len(diff) != 2 {
		return false
	}

	i, j := diff[0], diff[1]
	return a[i] == b[j] && a[j] == b[i]
}

// IsDigitShift reports whether bank is book shifted by exactly one decimal
// order of magnitude in either direction (ratio 10 or 0.1).
// A zero book amount is never a shift.
func IsDigitShift(bank, book decimal.Decimal) bool {
	if book.IsZero() {
		return false
	}

	ratio := bank.Div(book)
	return ratio.Sub(shiftUp).Abs().LessThan(shiftEpsilon) ||
		ratio.Sub(shiftDown).Abs().LessThan(shiftEpsilon)
}

// minorUnits renders round(amount * 100) as a digit string.
func minorUnits(amount decimal.Decimal) string {
	return amount.Shift(2).Round(0).String()
}
