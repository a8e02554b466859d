package csvledger_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendbook/internal/importer/csvledger"
	"spendbook/internal/ledger"
)

func TestParser_CommaSeparated(t *testing.T) {
	input := "title,amount,category,date\n" +
		"Coffee,4.50,Food,2024-01-15\n" +
		"Bus,2.00,Travel,2024-01-16\n"

	params, err := csvledger.NewParser().Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, params, 2)

	assert.Equal(t, "Coffee", params[0].Title)
	assert.Equal(t, int64(450), params[0].Amount)
	assert.Equal(t, ledger.CategoryFood, params[0].Category)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), params[0].CreatedAt)

	assert.Equal(t, int64(200), params[1].Amount)
	assert.Equal(t, ledger.CategoryTravel, params[1].Category)
}

func TestParser_SemicolonAndEuropeanAmounts(t *testing.T) {
	input := "Title;Amount;Category;Date\n" +
		"Hotel;1.234,56;Bills;15/01/2024\n"

	params, err := csvledger.NewParser().Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, params, 1)

	assert.Equal(t, "Hotel", params[0].Title)
	assert.Equal(t, int64(123456), params[0].Amount)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), params[0].CreatedAt)
}

func TestParser_PreambleBeforeHeader(t *testing.T) {
	input := "Exported by Spendbook\n\n" +
		"title,amount,category,date\n" +
		"Coffee,4.50,Food,2024-01-15\n"

	params, err := csvledger.NewParser().Parse(strings.NewReader(input))
	require.NoError(t, err)
	assert.Len(t, params, 1)
}

func TestParser_OptionalColumns(t *testing.T) {
	input := "title,amount\nCoffee,4.50\n"

	params, err := csvledger.NewParser().Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, params, 1)

	assert.Empty(t, params[0].Category)
	assert.True(t, params[0].CreatedAt.IsZero())
}

func TestParser_SkipsBlankRows(t *testing.T) {
	input := "title,amount,category,date\n" +
		"Coffee,4.50,Food,2024-01-15\n" +
		"\n" +
		"Bus,2.00,Travel,2024-01-16\n"

	params, err := csvledger.NewParser().Parse(strings.NewReader(input))
	require.NoError(t, err)
	assert.Len(t, params, 2)
}

func TestParser_Errors(t *testing.T) {
	type testCase struct {
		name    string
		input   string
		wantErr string
	}

	tests := []testCase{
		{
			name:    "NoHeader",
			input:   "just,some,cells\n1,2,3\n",
			wantErr: "no header row",
		},
		{
			name:    "BadAmount",
			input:   "title,amount\nCoffee,abc\n",
			wantErr: "invalid amount",
		},
		{
			name:    "NegativeAmount",
			input:   "title,amount\nCoffee,-4.50\n",
			wantErr: "must be positive",
		},
		{
			name:    "EmptyTitle",
			input:   "title,amount\n,4.50\n",
			wantErr: "empty title",
		},
		{
			name:    "BadDate",
			input:   "title,amount,date\nCoffee,4.50,someday\n",
			wantErr: "invalid date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := csvledger.NewParser().Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
