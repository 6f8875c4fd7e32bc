package value

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// calendarUnitToUCUM maps the unquoted calendar-duration literal keywords
// (spec §4.1) to their canonical UCUM unit codes, so that comparisons
// between a quantity literal like `1 year` and one spelled `1 'a'` agree.
var calendarUnitToUCUM = map[string]string{
	"year": "a", "years": "a",
	"month": "mo", "months": "mo",
	"week": "wk", "weeks": "wk",
	"day": "d", "days": "d",
	"hour": "h", "hours": "h",
	"minute": "min", "minutes": "min",
	"second": "s", "seconds": "s",
	"millisecond": "ms", "milliseconds": "ms",
}

// NormalizeUnit converts a calendar-duration keyword to its UCUM code, or
// returns unit unchanged if it is already a UCUM code (e.g. from a
// single-quoted literal).
func NormalizeUnit(unit string) string {
	if ucum, ok := calendarUnitToUCUM[unit]; ok {
		return ucum
	}
	return unit
}

// Quantity is a decimal magnitude with a unit (spec §4.1: quantity
// literal). Unit is always stored normalized to UCUM via NormalizeUnit.
type Quantity struct {
	Value Decimal
	Unit  string
}

func NewQuantity(v decimal.Decimal, unit string) Quantity {
	return Quantity{Value: Decimal{D: v}, Unit: NormalizeUnit(unit)}
}

func (Quantity) Kind() Kind { return KindQuantity }
func (q Quantity) String() string {
	return fmt.Sprintf("%s '%s'", q.Value.String(), q.Unit)
}

// ucumSecondsFactor expresses each time-valued UCUM unit this engine
// understands for calendar arithmetic (spec §4.5 rule 9) in seconds, so
// that e.g. `1 'min'` and `60 'seconds'` normalize to a comparable scale.
// Calendar units above days (month, year) are not fixed-length and are
// handled separately by calendar-aware date arithmetic rather than this
// table.
var ucumSecondsFactor = map[string]decimal.Decimal{
	"ms":  decimal.NewFromFloat(0.001),
	"s":   decimal.NewFromInt(1),
	"min": decimal.NewFromInt(60),
	"h":   decimal.NewFromInt(3600),
	"d":   decimal.NewFromInt(86400),
	"wk":  decimal.NewFromInt(604800),
}

// IsCalendarDuration reports whether unit is one of the fixed month/year
// calendar units that require calendar-aware (not fixed-seconds) handling.
func IsCalendarDuration(unit string) bool {
	return unit == "mo" || unit == "a"
}

// ComparableSeconds converts a fixed-length (non-calendar) quantity to a
// common seconds scale for ordering/equality, or ok=false if unit isn't a
// recognized fixed-length time unit.
func ComparableSeconds(q Quantity) (decimal.Decimal, bool) {
	factor, ok := ucumSecondsFactor[q.Unit]
	if !ok {
		return decimal.Decimal{}, false
	}
	return q.Value.D.Mul(factor), true
}
