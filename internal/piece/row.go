package piece

import (
	"time"

	"github.com/google/uuid"
)

// Row is one editable line. Debit and Credit hold the raw text as typed.
type Row struct {
	UID      string
	ID       *int64 // server identity; nil while the line is unsaved
	Date     string
	Journal  string
	PieceRef string
	AccNum   string
	AccLib   string
	Lib      string
	Debit    string
	Credit   string

	// AccountExists caches the last account lookup; the label is only
	// editable while it is false.
	AccountExists bool
	MarkedDeleted bool
}

// IsNew reports whether the row has never been persisted.
func (r Row) IsNew() bool {
	return r.ID == nil
}

// Patch is a partial update of a Row. Nil fields are left untouched.
type Patch struct {
	Date          *string
	Journal       *string
	PieceRef      *string
	AccNum        *string
	AccLib        *string
	Lib           *string
	Debit         *string
	Credit        *string
	AccountExists *bool
}

func (p Patch) applyTo(r Row) Row {
	if p.Date != nil {
		r.Date = *p.Date
	}

	if p.Journal != nil {
		r.Journal = *p.Journal
	}

	if p.PieceRef != nil {
		r.PieceRef = *p.PieceRef
	}

	if p.AccNum != nil {
		r.AccNum = *p.AccNum
	}

	if p.AccLib != nil {
		r.AccLib = *p.AccLib
	}

	if p.Lib != nil {
		r.Lib = *p.Lib
	}

	if p.Debit != nil {
		r.Debit = *p.Debit
	}

	if p.Credit != nil {
		r.Credit = *p.Credit
	}

	if p.AccountExists != nil {
		r.AccountExists = *p.AccountExists
	}

	return r
}

// NewRow builds an unsaved row dated today with a fresh uid, then applies
// the optional partial.
func NewRow(partial Patch) Row {
	r := Row{
		UID:  uuid.NewString(),
		Date: time.Now().Format(time.DateOnly),
	}

	return partial.applyTo(r)
}
