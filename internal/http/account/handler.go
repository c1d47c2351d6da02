package account

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/compta/internal/account"
)

type Handler struct {
	svc *account.Service
}

func NewHandler(svc *account.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/suggest", h.suggest)
	r.Get("/lookup", h.lookup)
}

type suggestionResponse struct {
	AccountID int64  `json:"account_id"`
	AccNum    string `json:"accnum"`
	AccLib    string `json:"acclib"`
}

type lookupResponse struct {
	Exists    bool   `json:"exists"`
	AccountID int64  `json:"account_id,omitempty"`
	AccLib    string `json:"acclib,omitempty"`
}

func (h *Handler) suggest(w http.ResponseWriter, r *http.Request) {
	clientID, err := strconv.ParseInt(r.URL.Query().Get("client_id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid client_id", http.StatusBadRequest)
		return
	}

	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		if limit, err = strconv.Atoi(s); err != nil {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
	}

	items, err := h.svc.Suggest(r.Context(), clientID, r.URL.Query().Get("q"), limit)
	if err != nil {
		slog.Error("failed to suggest accounts", "client_id", clientID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	resp := make([]suggestionResponse, 0, len(items))
	for _, it := range items {
		resp = append(resp, suggestionResponse{AccountID: it.AccountID, AccNum: it.AccNum, AccLib: it.AccLib})
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) {
	clientID, err := strconv.ParseInt(r.URL.Query().Get("client_id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid client_id", http.StatusBadRequest)
		return
	}

	res, err := h.svc.Lookup(r.Context(), clientID, r.URL.Query().Get("accnum"))
	if err != nil {
		slog.Error("failed to look up account", "client_id", clientID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(lookupResponse{
		Exists:    res.Exists,
		AccountID: res.AccountID,
		AccLib:    res.AccLib,
	}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
