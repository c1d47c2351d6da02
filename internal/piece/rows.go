package piece

import "slices"

// Action is a transition of the editable row collection.
type Action interface {
	reduce(rows []Row) []Row
}

// SetRows replaces the whole collection, typically with a fresh snapshot.
type SetRows struct {
	Rows []Row
}

// AddRow appends a new unsaved row built from Partial.
type AddRow struct {
	Partial Patch
}

// UpdateRow merges Patch into the row with the given uid.
type UpdateRow struct {
	UID   string
	Patch Patch
}

// DeleteRow removes an unsaved row outright and soft-deletes a persisted one.
// IsNew forces removal regardless of the row's identity.
type DeleteRow struct {
	UID   string
	IsNew bool
}

// UndoDelete clears the soft-delete flag of the row with the given uid.
type UndoDelete struct {
	UID string
}

// Reduce applies action to rows and returns the resulting collection. The
// input slice is never modified.
func Reduce(rows []Row, action Action) []Row {
	return action.reduce(rows)
}

func (a SetRows) reduce([]Row) []Row {
	return slices.Clone(a.Rows)
}

func (a AddRow) reduce(rows []Row) []Row {
	out := make([]Row, 0, len(rows)+1)
	out = append(out, rows...)

	return append(out, NewRow(a.Partial))
}

func (a UpdateRow) reduce(rows []Row) []Row {
	return mapRow(rows, a.UID, a.Patch.applyTo)
}

func (a DeleteRow) reduce(rows []Row) []Row {
	i := slices.IndexFunc(rows, func(r Row) bool { return r.UID == a.UID })
	if i < 0 {
		return slices.Clone(rows)
	}

	if a.IsNew || rows[i].IsNew() {
		return slices.Delete(slices.Clone(rows), i, i+1)
	}

	return mapRow(rows, a.UID, func(r Row) Row {
		r.MarkedDeleted = true
		return r
	})
}

func (a UndoDelete) reduce(rows []Row) []Row {
	return mapRow(rows, a.UID, func(r Row) Row {
		r.MarkedDeleted = false
		return r
	})
}

func mapRow(rows []Row, uid string, fn func(Row) Row) []Row {
	out := make([]Row, len(rows))
	for i, r := range rows {
		if r.UID == uid {
			r = fn(r)
		}

		out[i] = r
	}

	return out
}
