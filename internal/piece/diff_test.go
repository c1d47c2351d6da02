package piece_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/compta/internal/piece"
)

func line(uid string, entryID *int64, debit, credit string) piece.Row {
	return piece.Row{
		UID:    uid,
		ID:     entryID,
		Date:   "2025-03-14",
		AccNum: "606000",
		AccLib: "Achats",
		Lib:    "Fournitures",
		Debit:  debit,
		Credit: credit,
	}
}

func TestDiff_Scenarios(t *testing.T) {
	type testCase struct {
		name    string
		initial []piece.Row
		current []piece.Row
		want    []piece.Change
	}

	values := func(debit, credit int64) piece.Values {
		return piece.Values{
			Date:        "2025-03-14",
			AccNum:      "606000",
			AccLib:      "Achats",
			Lib:         "Fournitures",
			DebitCents:  debit,
			CreditCents: credit,
		}
	}

	tests := []testCase{
		{
			name:    "NewRowAdded",
			initial: nil,
			current: []piece.Row{line("a", nil, "100", "")},
			want:    []piece.Change{piece.AddChange{Values: values(10000, 0)}},
		},
		{
			name:    "AmountModified",
			initial: []piece.Row{line("a", id(1), "50", "")},
			current: []piece.Row{line("a", id(1), "75", "")},
			want:    []piece.Change{piece.ModifyChange{EntryID: 1, Values: values(7500, 0)}},
		},
		{
			name:    "RowGoneIsDeleted",
			initial: []piece.Row{line("a", id(1), "50", "")},
			current: nil,
			want:    []piece.Change{piece.DeleteChange{EntryID: 1}},
		},
		{
			name:    "NormalizedAmountsAreEqual",
			initial: []piece.Row{line("a", id(1), "10,00", "")},
			current: []piece.Row{line("a", id(1), "10.00", "")},
			want:    nil,
		},
		{
			name:    "SubCentEditRoundsToNewCent",
			initial: []piece.Row{line("a", id(1), "1.005", "")},
			current: []piece.Row{line("a", id(1), "1.01", "")},
			want:    []piece.Change{piece.ModifyChange{EntryID: 1, Values: values(101, 0)}},
		},
		{
			name:    "SoftDeletedRowIsDeleted",
			initial: []piece.Row{line("a", id(1), "50", "")},
			current: []piece.Row{func() piece.Row {
				r := line("a", id(1), "999", "")
				r.MarkedDeleted = true
				return r
			}()},
			want: []piece.Change{piece.DeleteChange{EntryID: 1}},
		},
		{
			name:    "UnknownIDFallsBackToAdd",
			initial: []piece.Row{line("a", id(1), "50", "")},
			current: []piece.Row{line("a", id(1), "50", ""), line("b", id(9), "", "50")},
			want:    []piece.Change{piece.AddChange{Values: values(0, 5000)}},
		},
		{
			name:    "TextFieldChange",
			initial: []piece.Row{line("a", id(1), "50", "")},
			current: []piece.Row{func() piece.Row {
				r := line("a", id(1), "50", "")
				r.Lib = "Papeterie"
				return r
			}()},
			want: []piece.Change{piece.ModifyChange{EntryID: 1, Values: func() piece.Values {
				v := values(5000, 0)
				v.Lib = "Papeterie"
				return v
			}()}},
		},
		{
			name:    "AccountExistsFlagIsNotAField",
			initial: []piece.Row{line("a", id(1), "50", "")},
			current: []piece.Row{func() piece.Row {
				r := line("a", id(1), "50", "")
				r.AccountExists = true
				return r
			}()},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := piece.Diff(piece.NewSnapshot(tt.initial), tt.current)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDiff_Ordering(t *testing.T) {
	initial := []piece.Row{
		line("a", id(1), "10", ""),
		line("b", id(2), "20", ""),
		line("c", id(3), "", "30"),
		line("d", id(4), "", "5"),
	}

	deleted := line("c", id(3), "", "30")
	deleted.MarkedDeleted = true

	current := []piece.Row{
		line("n1", nil, "1", ""),
		line("b", id(2), "21", ""),
		deleted,
		line("a", id(1), "10", ""),
		line("n2", nil, "", "2"),
	}

	got := piece.Diff(piece.NewSnapshot(initial), current)
	require.Len(t, got, 5)

	ops := make([]piece.Op, len(got))
	for i, c := range got {
		ops[i] = c.Op()
	}

	assert.Equal(t, []piece.Op{piece.OpAdd, piece.OpModify, piece.OpAdd, piece.OpDelete, piece.OpDelete}, ops)
	assert.Equal(t, int64(100), got[0].(piece.AddChange).DebitCents)
	assert.Equal(t, int64(2), got[1].(piece.ModifyChange).EntryID)
	assert.Equal(t, int64(200), got[2].(piece.AddChange).CreditCents)
	assert.Equal(t, int64(3), got[3].(piece.DeleteChange).EntryID)
	assert.Equal(t, int64(4), got[4].(piece.DeleteChange).EntryID)
}

func TestDiff_SeededSessionIsClean(t *testing.T) {
	entries := []*piece.Entry{
		{ID: 1, AccNum: "401000", Lib: "Facture", CreditCents: 12000},
		{ID: 2, AccNum: "606000", Lib: "Facture", DebitCents: 10000},
		{ID: 3, AccNum: "445660", Lib: "TVA", DebitCents: 2000},
	}

	rows := piece.SeedRows(entries)
	got := piece.Diff(piece.NewSnapshot(rows), rows)

	assert.Empty(t, got)
}

func TestDiff_DoesNotMutateInputs(t *testing.T) {
	initial := []piece.Row{line("a", id(1), "10", "")}
	current := []piece.Row{line("a", id(1), "11", "")}

	snap := piece.NewSnapshot(initial)
	_ = piece.Diff(snap, current)

	assert.Equal(t, initial, snap.Rows())
	assert.Equal(t, "11", current[0].Debit)
}
