package value

// Tri is FHIRPath's internal three-valued-logic state (spec Design Notes:
// "model boolean operator results as a three-state enum internally,
// converted back to the empty-sequence convention at the boundary").
type Tri int

const (
	TriFalse Tri = iota
	TriTrue
	TriUnknown
)

// ToTri converts a Collection to three-valued logic per spec §4.5 rule 22
// ("Truthiness"): empty -> unknown, a single boolean -> its value, any
// other single non-empty value -> true, multi-element -> false (this
// engine's chosen resolution of the open question in spec §9's last
// bullet — see DESIGN.md).
func ToTri(c Collection) Tri {
	switch len(c) {
	case 0:
		return TriUnknown
	case 1:
		if b, ok := c[0].(Boolean); ok {
			if bool(b) {
				return TriTrue
			}
			return TriFalse
		}
		return TriTrue
	default:
		return TriFalse
	}
}

// FromTri converts three-valued logic back to the empty-sequence
// convention at the boundary.
func FromTri(t Tri) Collection {
	switch t {
	case TriTrue:
		return Of(Boolean(true))
	case TriFalse:
		return Of(Boolean(false))
	default:
		return nil
	}
}

// IsTruthy reports whether c is truthy per spec §4.5 rule 22, used by
// iterator criteria (`where`, `all`, etc.) which need a plain bool rather
// than three-valued logic — empty and non-true collections are simply not
// truthy.
func IsTruthy(c Collection) bool { return ToTri(c) == TriTrue }
