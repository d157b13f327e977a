package detector

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestIsTransposition(t *testing.T) {
	tests := []struct {
		name string
		bank string
		book string
		want bool
	}{
		{"adjacent swap", "5400.00", "4500.00", true},
		{"non-adjacent swap", "1203.00", "3201.00", true},
		{"swap in cents", "10.12", "10.21", true},
		{"identical amounts", "100.00", "100.00", false},
		{"single digit differs", "100.00", "900.00", false},
		{"two digits differ without swap", "1200.00", "3400.00", false},
		{"three digits differ", "123.00", "321.50", false},
		{"different lengths", "5000.00", "500.00", false},
		{"sub-cent noise rounds away", "5400.004", "4500.00", true},
		{"negative amounts", "-5400.00", "-4500.00", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransposition(d(tt.bank), d(tt.book)))
		})
	}
}

func TestIsDigitShift(t *testing.T) {
	tests := []struct {
		name string
		bank string
		book string
		want bool
	}{
		{"bank ten times book", "5000.00", "500.00", true},
		{"bank a tenth of book", "500.00", "5000.00", true},
		{"within ratio epsilon", "1000.05", "100.00", true},
		{"outside ratio epsilon", "1002.00", "100.00", false},
		{"hundredfold is not a single shift", "50000.00", "500.00", false},
		{"equal amounts", "500.00", "500.00", false},
		{"zero book amount", "500.00", "0", false},
		{"zero bank amount", "0", "500.00", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDigitShift(d(tt.bank), d(tt.book)))
		})
	}
}
