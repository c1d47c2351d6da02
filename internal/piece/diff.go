package piece

import "github.com/MrJamesThe3rd/compta/internal/amount"

// Diff computes the changes that turn initial into current.
//
// Adds and modifies come first, in current order; deletes follow, in
// initial order. A persisted row equal to its baseline once amounts are
// normalized yields nothing. A row carrying an id unknown to the baseline
// is sent as an add rather than dropped.
func Diff(initial Snapshot, current []Row) []Change {
	baseline := make(map[int64]Row, initial.Len())
	for _, r := range initial.rows {
		if r.ID != nil {
			baseline[*r.ID] = r
		}
	}

	var changes []Change

	live := make(map[int64]bool, len(current))

	for _, r := range current {
		if r.ID != nil {
			live[*r.ID] = !r.MarkedDeleted
		}

		if r.MarkedDeleted {
			continue
		}

		if r.ID == nil {
			changes = append(changes, AddChange{Values: valuesOf(r)})
			continue
		}

		init, ok := baseline[*r.ID]
		if !ok {
			changes = append(changes, AddChange{Values: valuesOf(r)})
			continue
		}

		if valuesOf(init) != valuesOf(r) {
			changes = append(changes, ModifyChange{EntryID: *r.ID, Values: valuesOf(r)})
		}
	}

	for _, r := range initial.rows {
		if r.ID == nil {
			continue
		}

		if !live[*r.ID] {
			changes = append(changes, DeleteChange{EntryID: *r.ID})
		}
	}

	return changes
}

func valuesOf(r Row) Values {
	return Values{
		Date:        r.Date,
		AccNum:      r.AccNum,
		AccLib:      r.AccLib,
		Lib:         r.Lib,
		DebitCents:  amount.ToCents(r.Debit),
		CreditCents: amount.ToCents(r.Credit),
	}
}
