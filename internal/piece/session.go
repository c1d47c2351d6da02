package piece

import (
	"slices"

	"github.com/MrJamesThe3rd/compta/internal/account"
)

// Session is the editing state of one piece: the editable rows, the
// baseline they are diffed against, and the account suggestions per row.
// It is owned by a single goroutine; only AccountLookups works in the
// background and it never touches the Session directly.
type Session struct {
	key         Key
	rows        []Row
	baseline    Snapshot
	suggestions map[string][]account.Suggestion
	lookups     *AccountLookups
}

// NewSession seeds the rows and the baseline from fetched entries.
func NewSession(key Key, entries []*Entry) *Session {
	s := &Session{key: key}
	s.Reset(entries)

	return s
}

// AttachLookups wires debounced account lookups into the session. Close
// releases them.
func (s *Session) AttachLookups(l *AccountLookups) {
	s.lookups = l
}

func (s *Session) Key() Key {
	return s.key
}

// SetKey changes the journal or piece reference of a piece being created.
func (s *Session) SetKey(key Key) {
	s.key = key
}

// Reset replaces both the baseline and the editable rows with entries,
// as after a successful commit round-trip. Lookups still pending for the
// replaced rows are cancelled.
func (s *Session) Reset(entries []*Entry) {
	if s.lookups != nil {
		for _, r := range s.rows {
			s.lookups.Cancel(r.UID)
		}
	}

	rows := SeedRows(entries)

	s.baseline = NewSnapshot(rows)
	s.rows = Reduce(nil, SetRows{Rows: rows})
	s.suggestions = make(map[string][]account.Suggestion)
}

// Dispatch applies a row transition.
func (s *Session) Dispatch(a Action) {
	s.rows = Reduce(s.rows, a)

	if d, ok := a.(DeleteRow); ok && s.Row(d.UID) == nil {
		s.forget(d.UID)
	}
}

// Rows returns a copy of the editable rows.
func (s *Session) Rows() []Row {
	return slices.Clone(s.rows)
}

// Row returns the row with the given uid, or nil.
func (s *Session) Row(uid string) *Row {
	i := slices.IndexFunc(s.rows, func(r Row) bool { return r.UID == uid })
	if i < 0 {
		return nil
	}

	r := s.rows[i]

	return &r
}

func (s *Session) Baseline() Snapshot {
	return s.baseline
}

func (s *Session) Totals() Totals {
	return ComputeTotals(s.rows)
}

// Changes is the minimal change list from the baseline to the current rows.
func (s *Session) Changes() []Change {
	return Diff(s.baseline, s.rows)
}

// CanSubmit gates submission: at least one row, a journal and a reference,
// and valid balanced amounts.
func (s *Session) CanSubmit() bool {
	return len(s.rows) > 0 &&
		s.key.Journal != "" &&
		s.key.PieceRef != "" &&
		s.Totals().Valid()
}

// CommitRequest builds the payload sent to the commit collaborator.
func (s *Session) CommitRequest(description string) CommitRequest {
	return CommitRequest{
		Key:         s.key,
		Description: description,
		Changes:     s.Changes(),
	}
}

// AccountInput records a keystroke in the account field of row uid and
// schedules a lookup for it.
func (s *Session) AccountInput(uid, value string) {
	s.Dispatch(UpdateRow{UID: uid, Patch: Patch{AccNum: &value}})

	if s.lookups != nil {
		s.lookups.Input(uid, value)
	}
}

// ApplyAccountResult applies a delivered lookup to the row that currently
// owns the uid. Results for rows that are gone, or whose account field has
// moved on, are dropped.
func (s *Session) ApplyAccountResult(res AccountResult) {
	row := s.Row(res.UID)
	if row == nil || row.AccNum != res.Query {
		return
	}

	s.suggestions[res.UID] = res.Suggestions

	if !res.Resolved {
		return
	}

	patch := Patch{AccountExists: &res.Lookup.Exists}
	if res.Lookup.Exists {
		patch.AccLib = &res.Lookup.AccLib
	}

	s.Dispatch(UpdateRow{UID: res.UID, Patch: patch})
}

// Suggestions returns the account candidates last delivered for row uid.
func (s *Session) Suggestions(uid string) []account.Suggestion {
	return s.suggestions[uid]
}

// PickSuggestion fills row uid from a chosen candidate.
func (s *Session) PickSuggestion(uid string, sg account.Suggestion) {
	exists := true

	if s.lookups != nil {
		s.lookups.Cancel(uid)
	}

	s.Dispatch(UpdateRow{UID: uid, Patch: Patch{AccNum: &sg.AccNum, AccLib: &sg.AccLib, AccountExists: &exists}})
	s.ClearSuggestions(uid)
}

func (s *Session) ClearSuggestions(uid string) {
	delete(s.suggestions, uid)
}

// Close cancels in-flight lookups so nothing is delivered into a discarded
// session.
func (s *Session) Close() {
	if s.lookups != nil {
		s.lookups.Close()
	}
}

func (s *Session) forget(uid string) {
	s.ClearSuggestions(uid)

	if s.lookups != nil {
		s.lookups.Cancel(uid)
	}
}
