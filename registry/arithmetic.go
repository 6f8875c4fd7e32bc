package registry

import (
	"github.com/shopspring/decimal"

	"github.com/fhirgo/fhirpath/value"
)

// opAdd, opSub, ... implement spec §4.5 rule 9's arithmetic operators over
// Integer/Decimal (promoted per numericResult) and Quantity, String +
// String concatenation, plus the Date/DateTime + Quantity and - Quantity
// calendar-arithmetic forms (spec §4.1 "Quantity arithmetic"). Time
// operands are not shifted.

func opAdd(a, b value.Value) (value.Value, error) {
	if sa, ok := a.(value.String); ok {
		if sb, ok := b.(value.String); ok {
			return sa + sb, nil
		}
	}
	if qa, okA := a.(value.Quantity); okA {
		if qb, okB := b.(value.Quantity); okB {
			return addQuantities(qa, qb, 1)
		}
	}
	if d, ok := shiftDateLike(a, b, 1); ok {
		return d, nil
	}
	if da, ok := toDecimal(a); ok {
		if db, ok := toDecimal(b); ok {
			return numericResult(a, b, da.Add(db)), nil
		}
	}
	return nil, evalErr("+", "incompatible operand types")
}

func opSub(a, b value.Value) (value.Value, error) {
	if qa, okA := a.(value.Quantity); okA {
		if qb, okB := b.(value.Quantity); okB {
			return addQuantities(qa, qb, -1)
		}
	}
	if d, ok := shiftDateLike(a, b, -1); ok {
		return d, nil
	}
	if da, ok := toDecimal(a); ok {
		if db, ok := toDecimal(b); ok {
			return numericResult(a, b, da.Sub(db)), nil
		}
	}
	return nil, evalErr("-", "incompatible operand types")
}

func addQuantities(a, b value.Quantity, sign int64) (value.Value, error) {
	as, aok := value.ComparableSeconds(a)
	bs, bok := value.ComparableSeconds(b)
	if a.Unit == b.Unit {
		if sign < 0 {
			return value.Quantity{Value: value.NewDecimal(a.Value.D.Sub(b.Value.D)), Unit: a.Unit}, nil
		}
		return value.Quantity{Value: value.NewDecimal(a.Value.D.Add(b.Value.D)), Unit: a.Unit}, nil
	}
	if aok && bok {
		var res decimal.Decimal
		if sign < 0 {
			res = as.Sub(bs)
		} else {
			res = as.Add(bs)
		}
		return value.Quantity{Value: value.NewDecimal(res), Unit: "s"}, nil
	}
	return nil, evalErr("+/-", "quantities have incompatible units")
}

// shiftDateLike implements Date/DateTime +/- Quantity (calendar shift);
// ok=false when a/b are not a Date/DateTime + quantity pair (a Time
// operand included), so the caller falls through to numeric handling.
func shiftDateLike(a, b value.Value, sign int64) (value.Value, bool) {
	q, ok := b.(value.Quantity)
	if !ok {
		return nil, false
	}
	amount := q.Value.D.IntPart() * sign
	switch d := a.(type) {
	case value.Date:
		return shiftDate(d, q.Unit, amount), true
	case value.DateTime:
		return shiftDateTime(d, q.Unit, amount), true
	default:
		return nil, false
	}
}

func shiftDate(d value.Date, unit string, amount int64) value.Date {
	switch unit {
	case "a":
		d.Year += int(amount)
	case "mo":
		total := d.Month - 1 + int(amount)
		d.Year += total / 12
		d.Month = total%12 + 1
		if d.Month <= 0 {
			d.Month += 12
			d.Year--
		}
	case "d", "wk":
		days := amount
		if unit == "wk" {
			days *= 7
		}
		d = addDaysToDate(d, int(days))
	}
	return d
}

func shiftDateTime(dt value.DateTime, unit string, amount int64) value.DateTime {
	if unit == "a" || unit == "mo" {
		dt.Date = shiftDate(dt.Date, unit, amount)
		return dt
	}
	// Fixed-length units shift via a naive day/seconds accumulation; the
	// model is partial-precision calendar math, not a full timezone-aware
	// calendar (no model provider implements true calendar rules here).
	totalSeconds := int64(dt.Time.Hour)*3600 + int64(dt.Time.Minute)*60 + int64(dt.Time.Second)
	switch unit {
	case "h":
		totalSeconds += amount * 3600
	case "min":
		totalSeconds += amount * 60
	case "s":
		totalSeconds += amount
	case "d":
		totalSeconds += amount * 86400
	case "wk":
		totalSeconds += amount * 7 * 86400
	}
	dayShift := totalSeconds / 86400
	rem := totalSeconds % 86400
	if rem < 0 {
		rem += 86400
		dayShift--
	}
	dt.Date = addDaysToDate(dt.Date, int(dayShift))
	dt.Time.Hour = int(rem / 3600)
	dt.Time.Minute = int((rem % 3600) / 60)
	dt.Time.Second = int(rem % 60)
	return dt
}

var daysInMonthTable = [...]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

func daysInMonth(year, month int) int {
	if month == 2 && isLeap(year) {
		return 29
	}
	return daysInMonthTable[month-1]
}

func addDaysToDate(d value.Date, days int) value.Date {
	for days > 0 {
		dim := daysInMonth(d.Year, d.Month)
		if d.Day+days <= dim {
			d.Day += days
			return d
		}
		days -= dim - d.Day + 1
		d.Day = 1
		d.Month++
		if d.Month > 12 {
			d.Month = 1
			d.Year++
		}
	}
	for days < 0 {
		if d.Day+days >= 1 {
			d.Day += days
			return d
		}
		days += d.Day
		d.Month--
		if d.Month < 1 {
			d.Month = 12
			d.Year--
		}
		d.Day = daysInMonth(d.Year, d.Month)
	}
	return d
}

func opMul(a, b value.Value) (value.Value, error) {
	if qa, okA := a.(value.Quantity); okA {
		if da, ok := toDecimal(b); ok {
			return value.Quantity{Value: value.NewDecimal(qa.Value.D.Mul(da)), Unit: qa.Unit}, nil
		}
	}
	if qb, okB := b.(value.Quantity); okB {
		if db, ok := toDecimal(a); ok {
			return value.Quantity{Value: value.NewDecimal(qb.Value.D.Mul(db)), Unit: qb.Unit}, nil
		}
	}
	da, ok1 := toDecimal(a)
	db, ok2 := toDecimal(b)
	if !ok1 || !ok2 {
		return nil, evalErr("*", "incompatible operand types")
	}
	return numericResult(a, b, da.Mul(db)), nil
}

func opDiv(a, b value.Value) (value.Value, error) {
	da, ok1 := toDecimal(a)
	db, ok2 := toDecimal(b)
	if !ok1 || !ok2 {
		return nil, evalErr("/", "incompatible operand types")
	}
	if db.IsZero() {
		return nil, nil
	}
	return value.NewDecimal(da.DivRound(db, 16)), nil
}

func opIntDiv(a, b value.Value) (value.Value, error) {
	da, ok1 := toDecimal(a)
	db, ok2 := toDecimal(b)
	if !ok1 || !ok2 {
		return nil, evalErr("div", "incompatible operand types")
	}
	if db.IsZero() {
		return nil, nil
	}
	q := da.Div(db)
	return value.Integer(q.IntPart()), nil
}

func opMod(a, b value.Value) (value.Value, error) {
	da, ok1 := toDecimal(a)
	db, ok2 := toDecimal(b)
	if !ok1 || !ok2 {
		return nil, evalErr("mod", "incompatible operand types")
	}
	if db.IsZero() {
		return nil, nil
	}
	m := da.Mod(db)
	return numericResult(a, b, m), nil
}

func opNegate(v value.Value) (value.Value, error) {
	d, ok := toDecimal(v)
	if !ok {
		return nil, evalErr("unary-", "operand is not numeric")
	}
	return numericResult(v, v, d.Neg()), nil
}
