package piece

import "github.com/MrJamesThe3rd/compta/internal/amount"

// Totals aggregates the non-deleted rows of a piece. All sums are in cents.
type Totals struct {
	DebitCents  int64
	CreditCents int64
	DiffCents   int64

	IsBalanced      bool
	HasAmountErrors bool // a side reads as nonzero but is not a valid amount
	BothSidesFilled bool // some row carries both a debit and a credit
}

// Valid reports whether the amounts allow the piece to be submitted.
func (t Totals) Valid() bool {
	return t.IsBalanced && !t.HasAmountErrors && !t.BothSidesFilled
}

// ComputeTotals derives the balance of rows, skipping soft-deleted ones.
// Only valid nonzero amounts contribute to the sums.
func ComputeTotals(rows []Row) Totals {
	var t Totals

	for _, r := range rows {
		if r.MarkedDeleted {
			continue
		}

		debit := amount.ToCents(r.Debit)
		credit := amount.ToCents(r.Credit)

		hasDebit := debit != 0 && amount.IsValid(r.Debit)
		hasCredit := credit != 0 && amount.IsValid(r.Credit)

		if (debit != 0 && !hasDebit) || (credit != 0 && !hasCredit) {
			t.HasAmountErrors = true
		}

		if hasDebit && hasCredit {
			t.BothSidesFilled = true
		}

		if hasDebit {
			t.DebitCents += debit
		}

		if hasCredit {
			t.CreditCents += credit
		}
	}

	t.DiffCents = t.DebitCents - t.CreditCents
	t.IsBalanced = t.DiffCents == 0

	return t
}
