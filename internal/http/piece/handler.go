package piece

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrJamesThe3rd/compta/internal/export"
	"github.com/MrJamesThe3rd/compta/internal/piece"
)

type Handler struct {
	svc      *piece.Service
	exporter *export.Service
}

func NewHandler(svc *piece.Service, exporter *export.Service) *Handler {
	return &Handler{svc: svc, exporter: exporter}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.get)
	r.Get("/export", h.export)
	r.With(middleware.AllowContentType("application/json")).Post("/commit", h.commit)
}

type commitRequest struct {
	ClientID    int64         `json:"client_id"`
	ExerciceID  int64         `json:"exercice_id"`
	Journal     string        `json:"jnl"`
	PieceRef    string        `json:"piece_ref"`
	Description string        `json:"description"`
	Changes     piece.Changes `json:"changes"`
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	key, err := keyFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	entries, err := h.svc.Fetch(r.Context(), key)
	if err != nil {
		slog.Error("failed to fetch piece", "journal", key.Journal, "piece_ref", key.PieceRef, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toEntryResponseList(entries)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) commit(w http.ResponseWriter, r *http.Request) {
	var req commitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if req.ClientID == 0 || req.ExerciceID == 0 || req.Journal == "" || req.PieceRef == "" {
		http.Error(w, "client_id, exercice_id, jnl and piece_ref are required", http.StatusBadRequest)
		return
	}

	res, err := h.svc.Apply(r.Context(), piece.CommitRequest{
		Key: piece.Key{
			ClientID:   req.ClientID,
			ExerciceID: req.ExerciceID,
			Journal:    req.Journal,
			PieceRef:   req.PieceRef,
		},
		Description: req.Description,
		Changes:     req.Changes,
	})
	if err != nil {
		if errors.Is(err, piece.ErrEntryNotFound) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}

		if errors.Is(err, piece.ErrInvalidChange) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		slog.Error("failed to commit piece", "journal", req.Journal, "piece_ref", req.PieceRef, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(commitResponse{
		Added:    res.Added,
		Modified: res.Modified,
		Deleted:  res.Deleted,
	}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// export streams the piece as a ledger CSV attachment.
func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	key, err := keyFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	if _, err := h.exporter.WritePiece(r.Context(), key, &buf); err != nil {
		slog.Error("failed to export piece", "journal", key.Journal, "piece_ref", key.PieceRef, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(key, time.Now())))

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to write export", "error", err)
	}
}

type badQueryError string

func (e badQueryError) Error() string { return string(e) }

func keyFromQuery(r *http.Request) (piece.Key, error) {
	q := r.URL.Query()

	clientID, err := strconv.ParseInt(q.Get("client_id"), 10, 64)
	if err != nil {
		return piece.Key{}, badQueryError("invalid client_id")
	}

	exerciceID, err := strconv.ParseInt(q.Get("exercice_id"), 10, 64)
	if err != nil {
		return piece.Key{}, badQueryError("invalid exercice_id")
	}

	key := piece.Key{
		ClientID:   clientID,
		ExerciceID: exerciceID,
		Journal:    q.Get("jnl"),
		PieceRef:   q.Get("piece_ref"),
	}

	if key.Journal == "" || key.PieceRef == "" {
		return piece.Key{}, badQueryError("jnl and piece_ref are required")
	}

	return key, nil
}
