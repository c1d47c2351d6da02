// Package importer reads ledger lines from CSV exports so they can be
// appended to a piece being edited.
package importer

import (
	"errors"

	"github.com/MrJamesThe3rd/compta/internal/piece"
)

var ErrMissingColumns = errors.New("missing required columns")

// Line is one imported ledger line. Amounts keep the text found in the file.
type Line struct {
	Number   int // 1-based line in the file
	Journal  string
	PieceRef string
	Date     string // YYYY-MM-DD
	AccNum   string
	AccLib   string
	Lib      string
	Debit    string
	Credit   string
}

// Patch turns the line into the partial of a new editor row.
func (l Line) Patch() piece.Patch {
	return piece.Patch{
		Date:     new(l.Date),
		Journal:  new(l.Journal),
		PieceRef: new(l.PieceRef),
		AccNum:   new(l.AccNum),
		AccLib:   new(l.AccLib),
		Lib:      new(l.Lib),
		Debit:    new(l.Debit),
		Credit:   new(l.Credit),
	}
}

// ForPiece keeps the lines that belong to the piece identified by key.
func ForPiece(lines []Line, key piece.Key) []Line {
	var out []Line

	for _, l := range lines {
		if l.Journal == key.Journal && l.PieceRef == key.PieceRef {
			out = append(out, l)
		}
	}

	return out
}

// Append adds each line to the session as a new row and returns the number
// of rows added.
func Append(sess *piece.Session, lines []Line) int {
	for _, l := range lines {
		sess.Dispatch(piece.AddRow{Partial: l.Patch()})
	}

	return len(lines)
}
