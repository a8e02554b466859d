package ledger

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultAccount always exists and can never be deleted.
const DefaultAccount = "Default"

var (
	// ErrNotFound is returned when an expense id does not resolve.
	ErrNotFound = errors.New("expense not found")

	// ErrInvalidArgument is returned for empty account names and malformed
	// expense input, before any write happens.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrStorageUnavailable wraps any failure of the persistence collaborator.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// Category groups expenses for summaries. The canonical set is below, but a
// category is only a grouping key; free-form values are carried as-is.
type Category string

const (
	CategoryFood     Category = "Food"
	CategoryTravel   Category = "Travel"
	CategoryShopping Category = "Shopping"
	CategoryBills    Category = "Bills"
	CategoryOthers   Category = "Others"
)

// Display holds the presentation attributes of a category. They are derived
// at read time via a static table and never persisted, so they cannot drift
// from the category itself.
type Display struct {
	Icon  string
	Color string
}

var categoryDisplay = map[Category]Display{
	CategoryFood:     {Icon: "🍔", Color: "#FF9800"},
	CategoryTravel:   {Icon: "✈️", Color: "#2196F3"},
	CategoryShopping: {Icon: "🛍️", Color: "#9C27B0"},
	CategoryBills:    {Icon: "🧾", Color: "#F44336"},
	CategoryOthers:   {Icon: "💰", Color: "#607D8B"},
}

// Display returns the icon and color for the category. Free-form categories
// fall back to the Others presentation.
func (c Category) Display() Display {
	if d, ok := categoryDisplay[c]; ok {
		return d
	}

	return categoryDisplay[CategoryOthers]
}

// Expense represents one logged spending event.
type Expense struct {
	ID        string
	Title     string
	Amount    int64 // Amount in cents
	Category  Category
	CreatedAt time.Time
}

// AmountString renders the amount with two decimal places, e.g. "4.50".
func (e *Expense) AmountString() string {
	return FormatCents(e.Amount)
}

// FormatCents renders a cent amount as a two-decimal string.
func FormatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
