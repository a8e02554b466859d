package importcsv

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"spendbook/internal/importer"
	"spendbook/internal/ledger"
	"spendbook/internal/suggest"
)

type Handler struct {
	importSvc  *importer.Service
	ledgerSvc  *ledger.Service
	suggestSvc *suggest.Service
}

func NewHandler(importSvc *importer.Service, ledgerSvc *ledger.Service, suggestSvc *suggest.Service) *Handler {
	return &Handler{
		importSvc:  importSvc,
		ledgerSvc:  ledgerSvc,
		suggestSvc: suggestSvc,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importCSV)
	r.Post("/confirm", h.confirmImport)
}

type expenseDTO struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	AmountCents int64           `json:"amount_cents"`
	Category    ledger.Category `json:"category"`
	CreatedAt   time.Time       `json:"created_at"`
}

type importSuccessResponse struct {
	Imported int          `json:"imported"`
	Expenses []expenseDTO `json:"expenses"`
}

type createParamsDTO struct {
	Title       string          `json:"title"`
	AmountCents int64           `json:"amount_cents"`
	Category    ledger.Category `json:"category"`
	CreatedAt   time.Time       `json:"created_at"`
}

type conflictDTO struct {
	Incoming createParamsDTO `json:"incoming"`
	Existing expenseDTO      `json:"existing"`
}

type importConflictResponse struct {
	New       []createParamsDTO `json:"new"`
	Conflicts []conflictDTO     `json:"conflicts"`
}

type confirmRequest struct {
	Params []createParamsDTO `json:"params"`
}

func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	source := importer.Source(r.FormValue("source"))
	if source == "" {
		source = importer.SourceCSV
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	params, err := h.importSvc.Import(source, file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Fill missing categories from learned mappings before the duplicate
	// check, so suggested rows compare like stored ones.
	for i, p := range params {
		if p.Category != "" {
			continue
		}

		suggested, err := h.suggestSvc.Suggest(r.Context(), p.Title)
		if err != nil || suggested == "" {
			params[i].Category = ledger.CategoryOthers
			continue
		}

		params[i].Category = suggested
	}

	result, err := h.ledgerSvc.ImportBatch(r.Context(), params)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if len(result.Conflicts) > 0 {
		resp := importConflictResponse{
			New:       make([]createParamsDTO, 0, len(result.New)),
			Conflicts: make([]conflictDTO, 0, len(result.Conflicts)),
		}
		for _, p := range result.New {
			resp.New = append(resp.New, toParamsDTO(p))
		}

		for _, c := range result.Conflicts {
			resp.Conflicts = append(resp.Conflicts, conflictDTO{
				Incoming: toParamsDTO(c.Incoming),
				Existing: toExpenseDTO(c.Existing),
			})
		}

		writeJSON(w, http.StatusConflict, resp)

		return
	}

	writeJSON(w, http.StatusCreated, toSuccessResponse(result.Imported))
}

func (h *Handler) confirmImport(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	params := make([]ledger.CreateParams, 0, len(req.Params))
	for _, p := range req.Params {
		params = append(params, ledger.CreateParams{
			Title:     p.Title,
			Amount:    p.AmountCents,
			Category:  p.Category,
			CreatedAt: p.CreatedAt,
		})
	}

	expenses, err := h.ledgerSvc.CreateBatch(r.Context(), params)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, toSuccessResponse(expenses))
}

func toSuccessResponse(expenses []*ledger.Expense) importSuccessResponse {
	dtos := make([]expenseDTO, 0, len(expenses))
	for _, e := range expenses {
		dtos = append(dtos, toExpenseDTO(e))
	}

	return importSuccessResponse{
		Imported: len(expenses),
		Expenses: dtos,
	}
}

func toExpenseDTO(e *ledger.Expense) expenseDTO {
	return expenseDTO{
		ID:          e.ID,
		Title:       e.Title,
		AmountCents: e.Amount,
		Category:    e.Category,
		CreatedAt:   e.CreatedAt,
	}
}

func toParamsDTO(p ledger.CreateParams) createParamsDTO {
	return createParamsDTO{
		Title:       p.Title,
		AmountCents: p.Amount,
		Category:    p.Category,
		CreatedAt:   p.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
