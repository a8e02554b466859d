package summary

import (
	"cmp"
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"strconv"

	"github.com/go-chi/chi/v5"

	"spendbook/internal/ledger"
)

type Handler struct {
	svc *ledger.Service
}

func NewHandler(svc *ledger.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/total", h.total)
	r.Get("/categories", h.categories)
}

// accountName resolves the target account: the account query parameter if
// present, the current account otherwise.
func (h *Handler) accountName(r *http.Request) (string, error) {
	if name := r.URL.Query().Get("account"); name != "" {
		return name, nil
	}

	return h.svc.CurrentAccount(r.Context())
}

type totalResponse struct {
	Account    string `json:"account"`
	TotalCents int64  `json:"total_cents"`
	Total      string `json:"total"`
}

func (h *Handler) total(w http.ResponseWriter, r *http.Request) {
	name, err := h.accountName(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	total, err := h.svc.TotalFor(r.Context(), name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, totalResponse{
		Account:    name,
		TotalCents: total,
		Total:      ledger.FormatCents(total),
	})
}

type categoryTotal struct {
	Category   ledger.Category `json:"category"`
	TotalCents int64           `json:"total_cents"`
	Total      string          `json:"total"`
	Icon       string          `json:"icon"`
	Color      string          `json:"color"`
}

type categoriesResponse struct {
	Account    string          `json:"account"`
	Categories []categoryTotal `json:"categories"`
}

func (h *Handler) categories(w http.ResponseWriter, r *http.Request) {
	name, err := h.accountName(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	totals, err := h.svc.CategoryTotals(r.Context(), name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	categories := make([]categoryTotal, 0, len(totals))

	for c, total := range totals {
		display := c.Display()
		categories = append(categories, categoryTotal{
			Category:   c,
			TotalCents: total,
			Total:      ledger.FormatCents(total),
			Icon:       display.Icon,
			Color:      display.Color,
		})
	}

	// Descending by total, then ascending by name, for a deterministic
	// display order.
	slices.SortFunc(categories, func(a, b categoryTotal) int {
		if c := cmp.Compare(b.TotalCents, a.TotalCents); c != 0 {
			return c
		}

		return cmp.Compare(a.Category, b.Category)
	})

	if s := r.URL.Query().Get("top"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 0 && n < len(categories) {
			categories = categories[:n]
		}
	}

	writeJSON(w, http.StatusOK, categoriesResponse{Account: name, Categories: categories})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
