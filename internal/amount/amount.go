// Package amount normalizes user-typed monetary text into integer cents.
//
// Parsing never fails: malformed text yields 0 cents, and callers that need to
// tell "zero" from "invalid" check IsValid first.
package amount

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

var (
	// validAmount accepts an optional minus sign, digits, and an optional
	// fractional part. Thousands separators are rejected.
	validAmount = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

	// numericPrefix is the longest leading run that reads as a number,
	// mirroring how a lenient float parser consumes "12.5,3" as 12.5.
	numericPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

	maxCents = float64(math.MaxInt64)
	minCents = float64(math.MinInt64)
)

// Clean turns non-breaking spaces into spaces, strips all whitespace and
// replaces the first comma with a decimal point.
func Clean(raw string) string {
	s := strings.ReplaceAll(raw, "\u00a0", " ")
	s = strings.Join(strings.Fields(s), "")

	return strings.Replace(s, ",", ".", 1)
}

// IsValid reports whether raw is a plain decimal number once cleaned whose
// cents fit in an int64.
func IsValid(raw string) bool {
	if raw == "" {
		return false
	}

	s := Clean(raw)
	if !validAmount.MatchString(s) {
		return false
	}

	_, ok := parseCents(s)

	return ok
}

// ToCents parses raw into minor units, rounding half up at the cent like a
// float-based round(value*100). Text without a numeric prefix yields 0;
// values beyond the int64 range saturate.
func ToCents(raw string) int64 {
	s := numericPrefix.FindString(Clean(raw))
	if s == "" {
		return 0
	}

	cents, _ := parseCents(s)

	return cents
}

// parseCents reports false when the value does not fit in int64 cents, in
// which case cents is clamped to the nearest bound.
func parseCents(s string) (int64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, true
	}

	if math.IsNaN(f) {
		return 0, true
	}

	c := math.Floor(f*100 + 0.5)

	switch {
	case c >= maxCents:
		return math.MaxInt64, false
	case c < minCents:
		return math.MinInt64, false
	}

	return int64(c), true
}

// ToInput renders cents as editable text ("1234.50"). Zero renders as an
// empty field so untouched sides stay blank in the editor.
func ToInput(cents int64) string {
	if cents == 0 {
		return ""
	}

	return decimal.New(cents, -2).StringFixed(2)
}

// Format renders cents for display in the given ISO currency.
func Format(cents int64, currency string) string {
	return money.New(cents, currency).Display()
}
