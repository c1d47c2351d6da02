package piece

import (
	"time"

	"github.com/MrJamesThe3rd/compta/internal/piece"
)

type entryResponse struct {
	ID          int64  `json:"id"`
	Date        string `json:"date"`
	Journal     string `json:"jnl"`
	PieceRef    string `json:"piece_ref"`
	AccNum      string `json:"accnum"`
	AccLib      string `json:"acclib"`
	Lib         string `json:"lib"`
	DebitCents  int64  `json:"debit_cents"`
	CreditCents int64  `json:"credit_cents"`
}

type commitResponse struct {
	Added    int `json:"added"`
	Modified int `json:"modified"`
	Deleted  int `json:"deleted"`
}

func toEntryResponse(e *piece.Entry) entryResponse {
	return entryResponse{
		ID:          e.ID,
		Date:        e.Date.Format(time.DateOnly),
		Journal:     e.Journal,
		PieceRef:    e.PieceRef,
		AccNum:      e.AccNum,
		AccLib:      e.AccLib,
		Lib:         e.Lib,
		DebitCents:  e.DebitCents,
		CreditCents: e.CreditCents,
	}
}

func toEntryResponseList(entries []*piece.Entry) []entryResponse {
	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toEntryResponse(e))
	}

	return out
}
