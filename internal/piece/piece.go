package piece

import (
	"errors"
	"time"
)

var (
	ErrEntryNotFound  = errors.New("entry not found in piece")
	ErrNotSubmittable = errors.New("piece is not submittable")
	ErrInvalidChange  = errors.New("invalid change")
)

// Key identifies a piece: all lines sharing a journal and a reference within
// one client's fiscal period.
type Key struct {
	ClientID   int64
	ExerciceID int64
	Journal    string
	PieceRef   string
}

// Entry is a persisted ledger line as returned by the snapshot fetch.
type Entry struct {
	ID          int64
	Date        time.Time
	Journal     string
	PieceRef    string
	AccNum      string
	AccLib      string
	Lib         string
	DebitCents  int64
	CreditCents int64
}
