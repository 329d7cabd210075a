package statement

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// MONTH CODE - "ENE-24" style billing month key
// =============================================================================

// MonthCode identifies a billing month: a three letter Spanish month
// abbreviation, a dash and a two digit year. Case is not significant when
// resolving, but the stored text is kept exactly as written.
type MonthCode string

// Capitalize returns the code with only its first letter upper-cased
// ("FEB-24" -> "Feb-24"). Installment due months are stored this way.
func (c MonthCode) Capitalize() MonthCode {
	s := strings.ToLower(string(c))
	if s == "" {
		return c
	}
	return MonthCode(strings.ToUpper(s[:1]) + s[1:])
}

// Resolve maps the code to a calendar month.
func (c MonthCode) Resolve() (YearMonth, error) {
	return ParseMonthCode(string(c))
}

var spanishMonths = map[string]time.Month{
	"ENE": time.January,
	"FEB": time.February,
	"MAR": time.March,
	"ABR": time.April,
	"MAY": time.May,
	"JUN": time.June,
	"JUL": time.July,
	"AGO": time.August,
	"SEP": time.September,
	"OCT": time.October,
	"NOV": time.November,
	"DIC": time.December,
}

// ParseMonthCode resolves "ENE-24" into January 2024. Two digit years follow
// the POSIX %y pivot: 69-99 are 19xx, 00-68 are 20xx.
func ParseMonthCode(s string) (YearMonth, error) {
	abbrev, year, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok || !isTwoDigits(year) {
		return YearMonth{}, &MonthCodeError{Code: s, Err: ErrMalformedMonthCode}
	}

	month, ok := spanishMonths[strings.ToUpper(abbrev)]
	if !ok {
		return YearMonth{}, &MonthCodeError{Code: s, Err: ErrUnknownMonth}
	}

	yy, _ := strconv.Atoi(year)
	if yy >= 69 {
		yy += 1900
	} else {
		yy += 2000
	}

	return YearMonth{Year: yy, Month: month}, nil
}

func isTwoDigits(s string) bool {
	return len(s) == 2 && s[0] >= '0' && s[0] <= '9' && s[1] >= '0' && s[1] <= '9'
}

// CompareMonthCodes orders two codes chronologically for display. Codes that
// cannot be resolved sort after every resolvable one, and ties fall back to
// the code text so the order is total.
func CompareMonthCodes(a, b MonthCode) int {
	ya, errA := a.Resolve()
	yb, errB := b.Resolve()
	switch {
	case errA == nil && errB == nil:
		if c := ya.Compare(yb); c != 0 {
			return c
		}
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	}
	return strings.Compare(string(a), string(b))
}

// =============================================================================
// YEAR MONTH - Resolved calendar point
// =============================================================================

type YearMonth struct {
	Year  int
	Month time.Month
}

// Compare returns -1, 0 or +1.
func (ym YearMonth) Compare(other YearMonth) int {
	switch {
	case ym.Year != other.Year:
		if ym.Year < other.Year {
			return -1
		}
		return 1
	case ym.Month < other.Month:
		return -1
	case ym.Month > other.Month:
		return 1
	}
	return 0
}

func (ym YearMonth) Before(other YearMonth) bool { return ym.Compare(other) < 0 }
func (ym YearMonth) After(other YearMonth) bool  { return ym.Compare(other) > 0 }
func (ym YearMonth) IsZero() bool                { return ym.Year == 0 && ym.Month == 0 }

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}
