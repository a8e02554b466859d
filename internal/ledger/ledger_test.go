package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"spendbook/internal/ledger"
)

func TestCategory_Display(t *testing.T) {
	food := ledger.CategoryFood.Display()
	assert.NotEmpty(t, food.Icon)
	assert.NotEmpty(t, food.Color)

	// Free-form categories share the Others presentation.
	freeform := ledger.Category("Pet supplies").Display()
	assert.Equal(t, ledger.CategoryOthers.Display(), freeform)

	assert.NotEqual(t, food, ledger.CategoryTravel.Display())
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "4.50", ledger.FormatCents(450))
	assert.Equal(t, "0.05", ledger.FormatCents(5))
	assert.Equal(t, "100.00", ledger.FormatCents(10000))
	assert.Equal(t, "0.00", ledger.FormatCents(0))
}

func TestExpense_AmountString(t *testing.T) {
	e := &ledger.Expense{Amount: 650}
	assert.Equal(t, "6.50", e.AmountString())
}
