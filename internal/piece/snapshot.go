package piece

import (
	"slices"
	"time"

	"github.com/MrJamesThe3rd/compta/internal/amount"
)

// Snapshot is the immutable baseline of a piece taken when editing starts.
type Snapshot struct {
	rows []Row
}

func NewSnapshot(rows []Row) Snapshot {
	return Snapshot{rows: slices.Clone(rows)}
}

// Rows returns a copy of the baseline rows in fetch order.
func (s Snapshot) Rows() []Row {
	return slices.Clone(s.rows)
}

func (s Snapshot) Len() int {
	return len(s.rows)
}

// SeedRows turns fetched entries into editable rows. Rows whose account
// number is set start with their label locked.
func SeedRows(entries []*Entry) []Row {
	rows := make([]Row, 0, len(entries))

	for _, e := range entries {
		id := e.ID
		r := NewRow(Patch{})

		r.ID = &id
		r.Date = e.Date.Format(time.DateOnly)
		r.Journal = e.Journal
		r.PieceRef = e.PieceRef
		r.AccNum = e.AccNum
		r.AccLib = e.AccLib
		r.Lib = e.Lib
		r.Debit = amount.ToInput(e.DebitCents)
		r.Credit = amount.ToInput(e.CreditCents)
		r.AccountExists = e.AccNum != ""

		rows = append(rows, r)
	}

	return rows
}
