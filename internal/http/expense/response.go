package expense

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"spendbook/internal/ledger"
)

type expenseResponse struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	AmountCents int64           `json:"amount_cents"`
	Amount      string          `json:"amount"`
	Category    ledger.Category `json:"category"`
	Icon        string          `json:"icon"`
	Color       string          `json:"color"`
	CreatedAt   time.Time       `json:"created_at"`
}

func toResponse(e *ledger.Expense) expenseResponse {
	// Icon and color are derived from the category here, at the edge; they
	// are never part of the stored record.
	display := e.Category.Display()

	return expenseResponse{
		ID:          e.ID,
		Title:       e.Title,
		AmountCents: e.Amount,
		Amount:      e.AmountString(),
		Category:    e.Category,
		Icon:        display.Icon,
		Color:       display.Color,
		CreatedAt:   e.CreatedAt,
	}
}

func toResponseList(expenses []*ledger.Expense) []expenseResponse {
	resp := make([]expenseResponse, len(expenses))
	for i, e := range expenses {
		resp[i] = toResponse(e)
	}

	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
