package piece_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/compta/internal/piece"
)

func TestComputeTotals(t *testing.T) {
	type testCase struct {
		name string
		rows []piece.Row
		want piece.Totals
	}

	tests := []testCase{
		{
			name: "Empty",
			rows: nil,
			want: piece.Totals{IsBalanced: true},
		},
		{
			name: "BalancedAcrossRows",
			rows: []piece.Row{{Debit: "40"}, {Debit: "", Credit: "40"}},
			want: piece.Totals{DebitCents: 4000, CreditCents: 4000, IsBalanced: true},
		},
		{
			name: "Unbalanced",
			rows: []piece.Row{{Debit: "100,10"}, {Credit: "100"}},
			want: piece.Totals{DebitCents: 10010, CreditCents: 10000, DiffCents: 10},
		},
		{
			name: "FormattingDoesNotMatter",
			rows: []piece.Row{{Debit: "1 000,50"}, {Credit: "1000.5"}},
			want: piece.Totals{DebitCents: 100050, CreditCents: 100050, IsBalanced: true},
		},
		{
			name: "MalformedAmountFlagged",
			rows: []piece.Row{{Debit: "12,5,3"}, {Credit: "12.5"}},
			want: piece.Totals{CreditCents: 1250, DiffCents: -1250, HasAmountErrors: true},
		},
		{
			name: "OverflowingAmountFlagged",
			rows: []piece.Row{{Debit: "99999999999999999999"}},
			want: piece.Totals{IsBalanced: true, HasAmountErrors: true},
		},
		{
			name: "GarbageWithoutNumberIgnored",
			rows: []piece.Row{{Debit: "abc"}},
			want: piece.Totals{IsBalanced: true},
		},
		{
			name: "BothSides",
			rows: []piece.Row{{Debit: "10", Credit: "10"}},
			want: piece.Totals{DebitCents: 1000, CreditCents: 1000, IsBalanced: true, BothSidesFilled: true},
		},
		{
			name: "ZeroOnOtherSideIsNotFilled",
			rows: []piece.Row{{Debit: "10", Credit: "0"}, {Debit: "0,00", Credit: "10"}},
			want: piece.Totals{DebitCents: 1000, CreditCents: 1000, IsBalanced: true},
		},
		{
			name: "DeletedRowsSkipped",
			rows: []piece.Row{
				{Debit: "40"},
				{Credit: "40"},
				{ID: id(1), Debit: "999", MarkedDeleted: true},
				{ID: id(2), Debit: "x1", MarkedDeleted: true},
			},
			want: piece.Totals{DebitCents: 4000, CreditCents: 4000, IsBalanced: true},
		},
		{
			name: "NegativeAmountsAccepted",
			rows: []piece.Row{{Debit: "-10"}, {Credit: "-10"}},
			want: piece.Totals{DebitCents: -1000, CreditCents: -1000, IsBalanced: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, piece.ComputeTotals(tt.rows))
		})
	}
}

func TestComputeTotals_BalancedIffSumsEqual(t *testing.T) {
	sides := []string{"0.01", "0.1", "0.2", "0.3", "1", "33.33", "66.67", "100"}

	for _, d := range sides {
		for _, c := range sides {
			totals := piece.ComputeTotals([]piece.Row{{Debit: d}, {Credit: c}})
			assert.Equal(t, totals.DebitCents == totals.CreditCents, totals.IsBalanced, "%s vs %s", d, c)
		}
	}

	// 0.1 + 0.2 == 0.3 exactly in cents.
	totals := piece.ComputeTotals([]piece.Row{{Debit: "0.1"}, {Debit: "0.2"}, {Credit: "0.3"}})
	assert.True(t, totals.IsBalanced)
}

func TestTotals_Valid(t *testing.T) {
	assert.True(t, piece.Totals{IsBalanced: true}.Valid())
	assert.False(t, piece.Totals{IsBalanced: false}.Valid())
	assert.False(t, piece.Totals{IsBalanced: true, HasAmountErrors: true}.Valid())
	assert.False(t, piece.Totals{IsBalanced: true, BothSidesFilled: true}.Valid())
}
