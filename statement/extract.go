package statement

import (
	"fmt"
	"regexp"
)

// =============================================================================
// FACTS - What one statement tells us
// =============================================================================

// Balance is the "SALDO ACTUAL" line: pesos first, dollars second.
type Balance struct {
	Primary   Money
	Secondary Money
}

// Installment is one future amount listed under "Total de cuotas a vencer".
type Installment struct {
	Due    MonthCode
	Amount Money
}

// Facts is the result of extracting one statement.
//
// Month is empty when the text holds no month code; such a statement cannot
// be attributed and callers must not store its facts under any key.
type Facts struct {
	Month        MonthCode
	Balance      Balance
	Installments []Installment
	Warnings     []string
}

// Attributed reports whether the statement's own month was found.
func (f Facts) Attributed() bool { return f.Month != "" }

// =============================================================================
// EXTRACTION RULES
// =============================================================================

var (
	ownMonthPattern     = regexp.MustCompile(`(?:^|[^\p{L}\p{N}_])([A-Z]+-\d{2})(?:$|[^\p{L}\p{N}_])`)
	balancePattern      = regexp.MustCompile(`SALDO ACTUAL\s+([\d.,]+)\s+([\d.,]+)`)
	installmentsSection = regexp.MustCompile(`Total de cuotas a vencer\s+(.+)\n(.+)`)
	monthTokenPattern   = regexp.MustCompile(`[A-Z]+-\d{2}`)
	amountTokenPattern  = regexp.MustCompile(`\$\s*([\d.,]+)`)
)

// rule fills in one fact. Rules never fail: a miss leaves the fact absent.
type rule func(text string, f *Facts)

var rules = []rule{
	ownMonthRule,
	balanceRule,
	installmentsRule,
}

// Extract runs every rule over the statement text. It has no side effects.
func Extract(text string) Facts {
	f := Facts{
		Balance: Balance{Primary: NotFound(), Secondary: NotFound()},
	}
	for _, r := range rules {
		r(text, &f)
	}
	return f
}

// ownMonthRule takes the first month shaped token anywhere in the text. The
// token must stand alone: a letter, digit or underscore on either side, in
// any script, disqualifies it ("CUOTAÑENE-24" is not a month).
func ownMonthRule(text string, f *Facts) {
	if m := ownMonthPattern.FindStringSubmatch(text); m != nil {
		f.Month = MonthCode(m[1])
	}
}

func balanceRule(text string, f *Facts) {
	m := balancePattern.FindStringSubmatch(text)
	if m == nil {
		return
	}
	f.Balance = Balance{
		Primary:   Normalize(m[1]),
		Secondary: Normalize(m[2]),
	}
}

// installmentsRule pairs the month header line with the "$" amount line
// below it by position. When the two lines disagree in length the extra
// tokens are dropped and a warning is recorded.
func installmentsRule(text string, f *Facts) {
	m := installmentsSection.FindStringSubmatch(text)
	if m == nil {
		return
	}

	months := monthTokenPattern.FindAllString(m[1], -1)
	amounts := amountTokenPattern.FindAllStringSubmatch(m[2], -1)

	n := len(months)
	if len(amounts) < n {
		n = len(amounts)
	}
	if len(months) != len(amounts) {
		f.Warnings = append(f.Warnings, fmt.Sprintf(
			"installment schedule has %d months but %d amounts; kept %d pairs",
			len(months), len(amounts), n))
	}

	for i := 0; i < n; i++ {
		f.Installments = append(f.Installments, Installment{
			Due:    MonthCode(months[i]).Capitalize(),
			Amount: Normalize(amounts[i][1]),
		})
	}
}
