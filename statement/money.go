/*
Package statement extracts financial facts from the text of a billing statement.

PURPOSE:
  A statement arrives as unstructured text pulled out of a document. This
  package turns that text into a handful of facts: which month the statement
  belongs to, the current balance in pesos and dollars, and the schedule of
  installments still to be billed. Nothing here touches storage.

KEY CONCEPTS:
  - Money: an exact two-place decimal that may be absent ("not found")
  - MonthCode: "ENE-24" style key for a billing month
  - YearMonth: a resolved, totally ordered calendar month
  - Facts: everything pulled out of one statement

NUMBER FORMAT:
  Statements use "." for thousands and "," for decimals: "1.234,56".
  Normalize strips the dots, swaps the comma and parses with
  shopspring/decimal, so no binary float ever touches an amount.

SEE ALSO:
  - extract.go: the extraction rules
  - monthcode.go: month code resolution and ordering
*/
package statement

import (
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Exact amount that may be absent
// =============================================================================

// Money is a two-place decimal amount. An invalid Money is the "not found"
// marker: it is distinct from zero and is persisted as NULL.
//
// The embedded NullDecimal provides database/sql Scan/Value and JSON
// marshalling (null when not found).
type Money struct {
	decimal.NullDecimal
}

// NotFound returns the absent amount.
func NotFound() Money { return Money{} }

// NewMoney wraps an exact value, rounded half-to-even to two places.
func NewMoney(d decimal.Decimal) Money {
	return Money{decimal.NullDecimal{Decimal: d.RoundBank(2), Valid: true}}
}

// MustMoney parses a plain decimal string ("1234.56"). It panics on bad
// input and is meant for tests and constants.
func MustMoney(s string) Money {
	return NewMoney(decimal.RequireFromString(s))
}

func (m Money) Found() bool { return m.Valid }

// IsZero reports whether the amount is present and equal to zero.
func (m Money) IsZero() bool { return m.Valid && m.Decimal.IsZero() }

// Equal compares presence and value.
func (m Money) Equal(other Money) bool {
	if m.Valid != other.Valid {
		return false
	}
	return !m.Valid || m.Decimal.Equal(other.Decimal)
}

func (m Money) String() string {
	if !m.Valid {
		return "not found"
	}
	return m.Decimal.StringFixed(2)
}

// =============================================================================
// NUMERIC NORMALIZER
// =============================================================================

// Normalize converts a locale formatted number ("1.234,56") into Money.
// Any string that is not a valid decimal once cleaned yields NotFound.
func Normalize(s string) Money {
	cleaned := strings.ReplaceAll(strings.TrimSpace(s), ".", "")
	cleaned = strings.Replace(cleaned, ",", ".", -1)
	if cleaned == "" {
		return NotFound()
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return NotFound()
	}
	return NewMoney(d)
}
