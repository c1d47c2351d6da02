package importcsv

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/compta/internal/importer"
)

type Handler struct {
	parser *importer.Parser
}

func NewHandler(parser *importer.Parser) *Handler {
	return &Handler{parser: parser}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.preview)
}

type lineResponse struct {
	Line     int    `json:"line"`
	Journal  string `json:"jnl"`
	PieceRef string `json:"piece_ref"`
	Date     string `json:"date"`
	AccNum   string `json:"accnum"`
	AccLib   string `json:"acclib"`
	Lib      string `json:"lib"`
	Debit    string `json:"debit"`
	Credit   string `json:"credit"`
}

type previewResponse struct {
	Count int            `json:"count"`
	Lines []lineResponse `json:"lines"`
}

// preview parses an uploaded ledger CSV and returns its lines without
// persisting anything; clients append them to a piece and commit.
func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	lines, err := h.parser.Parse(file)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, importer.ErrMissingColumns) {
			status = http.StatusUnprocessableEntity
		}

		http.Error(w, err.Error(), status)

		return
	}

	resp := previewResponse{Count: len(lines), Lines: make([]lineResponse, 0, len(lines))}
	for _, l := range lines {
		resp.Lines = append(resp.Lines, lineResponse{
			Line:     l.Number,
			Journal:  l.Journal,
			PieceRef: l.PieceRef,
			Date:     l.Date,
			AccNum:   l.AccNum,
			AccLib:   l.AccLib,
			Lib:      l.Lib,
			Debit:    l.Debit,
			Credit:   l.Credit,
		})
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
