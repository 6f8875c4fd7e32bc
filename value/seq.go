package value

import "github.com/samber/lo"

// Union implements spec §4.5 rule 7: concatenate a then b, preserving
// order, then deduplicate by equivalence (not plain equality — spec §8's
// "union deduplicates by equivalence").
func Union(a, b Collection) Collection {
	return Combine(Combine(a, nil), b).distinctByEquivalence()
}

// Combine implements spec §4.5 rule 8: concatenate without deduplication.
func Combine(a, b Collection) Collection {
	out := make(Collection, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}

// distinctByEquivalence removes duplicate items using FHIRPath equivalence
// (~), keeping the first occurrence: samber/lo's Filter with an O(n^2)
// pairwise Equivalent scan against the items already kept, for every kind.
func (c Collection) distinctByEquivalence() Collection {
	seen := make([]Value, 0, len(c))
	return lo.Filter(c, func(v Value, _ int) bool {
		for _, s := range seen {
			if Equivalent(v, s) {
				return false
			}
		}
		seen = append(seen, v)
		return true
	})
}

// Distinct is the public form of distinctByEquivalence, backing the
// `distinct()` registry function.
func Distinct(c Collection) Collection { return c.distinctByEquivalence() }

// IsDistinct reports whether every pair of items in c is non-equivalent.
func IsDistinct(c Collection) bool { return len(Distinct(c)) == len(c) }

// SubsetOf reports whether every item of a is equivalent to some item of b.
func SubsetOf(a, b Collection) bool {
	return lo.EveryBy(a, func(av Value) bool {
		return lo.SomeBy(b, func(bv Value) bool { return Equivalent(av, bv) })
	})
}
