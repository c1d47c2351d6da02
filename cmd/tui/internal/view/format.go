package view

import (
	"context"
	"time"

	"github.com/MrJamesThe3rd/compta/internal/amount"
)

const dbTimeout = 5 * time.Second

// FormatCents renders minor units in the editor currency.
func FormatCents(cents int64, currency string) string {
	return amount.Format(cents, currency)
}

// DbCtx returns a context with a standard timeout for database operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}
