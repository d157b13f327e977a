package feed

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bankCSV = `account_no,settlement_date,transaction_date,time,invoice_number,product,qty,price,amount,vat,total_amount,card,approval,merchant_id,fuel_brand
"1234-5678",2025-03-02,2025-03-01,08:15:00,INV-001,DIESEL,40,30.00,1200.00,0,"1,200.00",VISA,A1,M-01,PTT
1234-5678,2025-03-02,2025-03-01,09:40:10,INV-002,GAS95,10,45.00,450.00,0,450.00,VISA,A2

short,row
1234-5678,2025-03-03,2025-03-02,11:00:00,INV-003,DIESEL,1,1.00,1.00,0,"2,080.50",MC,A3,M-02,Shell
`

const bookCSV = `document_no,posting_date,description,amount
JV-1,2025-03-01,INV-001,"1,200.00"
JV-2,2025-03-01,INV-002,450
JV-3,2025-03-02,"INV-003",
`

func TestParseBankCSV(t *testing.T) {
	records, err := ParseBankCSV(strings.NewReader(bankCSV))
	require.NoError(t, err)
	require.Len(t, records, 3)

	first := records[0]
	assert.Equal(t, "1234-5678", first.AccountNo)
	assert.Equal(t, "2025-03-01", first.TransactionDate)
	assert.Equal(t, "08:15:00", first.Time)
	assert.Equal(t, "INV-001", first.InvoiceNumber)
	assert.Equal(t, "DIESEL", first.Product)
	assert.True(t, decimal.RequireFromString("1200").Equal(first.TotalAmount))
	assert.Equal(t, "M-01", first.MerchantID)
	assert.Equal(t, "PTT", first.FuelBrand)
	assert.Equal(t, 1, first.Line, "header is row 0")

	// Missing trailing merchant columns are tolerated.
	assert.Equal(t, "", records[1].MerchantID)
	assert.Equal(t, "", records[1].FuelBrand)
	assert.Equal(t, 2, records[1].Line)

	assert.True(t, decimal.RequireFromString("2080.50").Equal(records[2].TotalAmount))
	assert.Equal(t, 5, records[2].Line, "blank and short lines keep their index")
}

func TestParseBookCSV(t *testing.T) {
	records, err := ParseBookCSV(strings.NewReader(bookCSV))
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "JV-1", records[0].DocumentNo)
	assert.Equal(t, "2025-03-01", records[0].PostingDate)
	assert.Equal(t, "INV-001", records[0].Description)
	assert.True(t, decimal.RequireFromString("1200").Equal(records[0].Amount))
	assert.Equal(t, "INV-003", records[2].Description)
	assert.True(t, records[2].Amount.IsZero(), "empty amount reads as zero")
}

func TestParseBookCSV_RowIndex(t *testing.T) {
	input := "document_no,posting_date,description,amount\nJV-1,2025-03-01,INV-001,10\n\nJV-2,2025-03-01,INV-002,20\n"

	records, err := ParseBookCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, 1, records[0].Line)
	assert.Equal(t, 3, records[1].Line)
}

func TestParseBookCSV_HeaderOnly(t *testing.T) {
	records, err := ParseBookCSV(strings.NewReader("document_no,posting_date,description,amount\n"))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestParseBookCSV_InvalidAmount(t *testing.T) {
	input := "document_no,posting_date,description,amount\nJV-1,2025-03-01,INV-001,12x.00\n"

	_, err := ParseBookCSV(strings.NewReader(input))
	require.Error(t, err)

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, 1, parseErr.Line)
	assert.Equal(t, "amount", parseErr.Field)
	assert.Contains(t, err.Error(), "row 1: amount")
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2,080.00", "2080"},
		{`"1,234,567.89"`, "1234567.89"},
		{" 15.5 ", "15.5"},
		{"", "0"},
		{"-42.10", "-42.1"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}

	_, err := ParseAmount("NaN")
	assert.Error(t, err)
}
