package account

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

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
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/current", h.current)
	r.Put("/current", h.switchAccount)
	r.Delete("/{name}", h.delete)
	r.Delete("/{name}/expenses", h.deleteAllExpenses)
}

type listResponse struct {
	Accounts []string `json:"accounts"`
	Current  string   `json:"current"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	names, err := h.svc.ListAccountNames(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	current, err := h.svc.CurrentAccount(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listResponse{Accounts: names, Current: current})
}

type nameRequest struct {
	Name string `json:"name"`
}

type createResponse struct {
	Name    string `json:"name"`
	Created bool   `json:"created"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	created, err := h.svc.CreateAccount(r.Context(), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}

	writeJSON(w, status, createResponse{Name: req.Name, Created: created})
}

type currentResponse struct {
	Current string `json:"current"`
}

func (h *Handler) current(w http.ResponseWriter, r *http.Request) {
	current, err := h.svc.CurrentAccount(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, currentResponse{Current: current})
}

func (h *Handler) switchAccount(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.svc.SwitchAccount(r.Context(), req.Name); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, currentResponse{Current: req.Name})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteAccount(r.Context(), chi.URLParam(r, "name")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteAllExpenses(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteAllExpenses(r.Context(), chi.URLParam(r, "name")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, ledger.ErrInvalidArgument) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
