package value

import "strings"

// Equal implements spec §4.5 rule 12: element-wise, order-sensitive,
// exact-type equality between two scalar Values. Cross-kind numeric
// comparison (Integer vs Decimal) is allowed, matching FHIRPath's "=" for
// numerics; other cross-kind comparisons are unequal.
func Equal(a, b Value) bool {
	if na, nb, ok := asNumeric(a, b); ok {
		return na.Equal(nb)
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case Boolean:
		return av == b.(Boolean)
	case String:
		return av == b.(String)
	case Date:
		return av == b.(Date)
	case Time:
		return av == b.(Time)
	case DateTime:
		return equalDateTime(av, b.(DateTime))
	case Quantity:
		return equalQuantity(av, b.(Quantity))
	case Object:
		return a.String() == b.String()
	default:
		return false
	}
}

// CollectionEqual implements spec §4.5 rule 12 at the collection level:
// different lengths are unequal, and items compare pairwise in order.
func CollectionEqual(a, b Collection) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// Equivalent implements spec §4.5 rule 13: like Equal but order-insensitive
// at the collection level, case-insensitive for strings, and numeric-equal
// across Integer/Decimal regardless of declared precision.
func Equivalent(a, b Value) bool {
	if na, nb, ok := asNumeric(a, b); ok {
		return na.Equal(nb)
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case String:
		return strings.EqualFold(string(av), string(b.(String)))
	default:
		return Equal(a, b)
	}
}

// CollectionEquivalent implements spec §4.5 rule 13 at the collection
// level: order-insensitive multiset comparison.
func CollectionEquivalent(a, b Collection) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
	for _, av := range a {
		found := false
		for j, bv := range b {
			if used[j] {
				continue
			}
			if Equivalent(av, bv) {
				used[j] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func asNumeric(a, b Value) (na, nb decimalLike, ok bool) {
	ad, aok := toDecimalLike(a)
	bd, bok := toDecimalLike(b)
	if aok && bok {
		return ad, bd, true
	}
	return decimalLike{}, decimalLike{}, false
}

type decimalLike struct{ v Decimal }

func (d decimalLike) Equal(o decimalLike) bool { return d.v.D.Equal(o.v.D) }
func (d decimalLike) Cmp(o decimalLike) int    { return d.v.D.Cmp(o.v.D) }

func toDecimalLike(v Value) (decimalLike, bool) {
	switch t := v.(type) {
	case Integer:
		return decimalLike{v: DecimalFromInt(int64(t))}, true
	case Decimal:
		return decimalLike{v: t}, true
	default:
		return decimalLike{}, false
	}
}

func equalDateTime(a, b DateTime) bool {
	if a.HasTime != b.HasTime {
		return false
	}
	if a.Date != b.Date {
		return false
	}
	if !a.HasTime {
		return true
	}
	return a.Time == b.Time
}

func equalQuantity(a, b Quantity) bool {
	if a.Unit == b.Unit {
		return a.Value.D.Equal(b.Value.D)
	}
	as, aok := ComparableSeconds(a)
	bs, bok := ComparableSeconds(b)
	if aok && bok {
		return as.Equal(bs)
	}
	return false
}

// Compare implements spec §4.5 rule 11's ordering for numeric, string,
// date/time, and quantity singletons. ok is false when a and b are not
// comparable (different incompatible kinds, or quantities with
// incompatible units).
func Compare(a, b Value) (cmp int, ok bool) {
	if na, nb, numOK := asNumeric(a, b); numOK {
		return na.Cmp(nb), true
	}
	if a.Kind() != b.Kind() {
		return 0, false
	}
	switch av := a.(type) {
	case String:
		bv := b.(String)
		return strings.Compare(string(av), string(bv)), true
	case Date:
		return compareDate(av, b.(Date)), true
	case Time:
		return compareTime(av, b.(Time)), true
	case DateTime:
		return compareDateTime(av, b.(DateTime))
	case Quantity:
		return compareQuantity(av, b.(Quantity))
	default:
		return 0, false
	}
}

func compareDate(a, b Date) int {
	switch {
	case a.Year != b.Year:
		return sign(a.Year - b.Year)
	case a.Month != b.Month:
		return sign(a.Month - b.Month)
	default:
		return sign(a.Day - b.Day)
	}
}

func compareTime(a, b Time) int {
	switch {
	case a.Hour != b.Hour:
		return sign(a.Hour - b.Hour)
	case a.Minute != b.Minute:
		return sign(a.Minute - b.Minute)
	case a.Second != b.Second:
		return sign(a.Second - b.Second)
	default:
		return sign(a.Millis - b.Millis)
	}
}

func compareDateTime(a, b DateTime) (int, bool) {
	if c := compareDate(a.Date, b.Date); c != 0 {
		return c, true
	}
	if !a.HasTime && !b.HasTime {
		return 0, true
	}
	if a.HasTime != b.HasTime {
		return 0, false
	}
	return compareTime(a.Time, b.Time), true
}

func compareQuantity(a, b Quantity) (int, bool) {
	if a.Unit == b.Unit {
		return a.Value.D.Cmp(b.Value.D), true
	}
	as, aok := ComparableSeconds(a)
	bs, bok := ComparableSeconds(b)
	if aok && bok {
		return as.Cmp(bs), true
	}
	return 0, false
}

func sign(i int) int {
	switch {
	case i < 0:
		return -1
	case i > 0:
		return 1
	default:
		return 0
	}
}
