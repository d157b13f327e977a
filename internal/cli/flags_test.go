package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReconcileFlags(t *testing.T) {
	flags, err := ParseReconcileFlags([]string{"-bank", "bank.csv", "-book", "book.csv", "-save", "-report", "executive", "-limit", "5"})
	require.NoError(t, err)

	assert.Equal(t, "bank.csv", flags.BankPath)
	assert.Equal(t, "book.csv", flags.BookPath)
	assert.Equal(t, "config.yaml", flags.ConfigPath)
	assert.True(t, flags.Save)
	assert.Equal(t, "executive", flags.Report)
	assert.Equal(t, 5, flags.Limit)
	assert.False(t, flags.Verbose)
}

func TestParseReconcileFlags_Defaults(t *testing.T) {
	flags, err := ParseReconcileFlags([]string{"-bank", "b.csv", "-book", "l.csv"})
	require.NoError(t, err)

	assert.False(t, flags.Save)
	assert.Empty(t, flags.Report)
	assert.Equal(t, 50, flags.Limit)
}

func TestParseReconcileFlags_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing book", []string{"-bank", "b.csv"}},
		{"missing both", nil},
		{"unknown report", []string{"-bank", "b.csv", "-book", "l.csv", "-report", "weekly"}},
		{"unknown flag", []string{"-bank", "b.csv", "-book", "l.csv", "-dry-run"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseReconcileFlags(tt.args)
			assert.Error(t, err)
		})
	}
}
