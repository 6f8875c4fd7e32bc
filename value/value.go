// Package value implements the FHIRPath value model: every expression
// evaluates to an ordered Collection of scalar Values (spec §3 — "every
// expression evaluates to an ordered sequence of items"). An empty
// Collection stands for "unknown/absent".
package value

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Kind tags a Value's concrete type.
type Kind int

const (
	KindBoolean Kind = iota
	KindInteger
	KindDecimal
	KindString
	KindDate
	KindDateTime
	KindTime
	KindQuantity
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindBoolean:
		return "Boolean"
	case KindInteger:
		return "Integer"
	case KindDecimal:
		return "Decimal"
	case KindString:
		return "String"
	case KindDate:
		return "Date"
	case KindDateTime:
		return "DateTime"
	case KindTime:
		return "Time"
	case KindQuantity:
		return "Quantity"
	case KindObject:
		return "Object"
	default:
		return "Unknown"
	}
}

// Value is a single scalar item. Concrete kinds implement it; Object also
// carries an Accessor for field navigation (spec §3: "opaque object/array
// structures navigated through field access").
type Value interface {
	Kind() Kind
	String() string
}

// Collection is the universal FHIRPath value: an ordered sequence of
// items. A nil/empty Collection represents "unknown/absent" (spec §3).
type Collection []Value

// Of is a convenience constructor for a singleton collection.
func Of(v Value) Collection { return Collection{v} }

// IsEmpty reports whether c has no items.
func (c Collection) IsEmpty() bool { return len(c) == 0 }

// IsSingleton reports whether c has exactly one item.
func (c Collection) IsSingleton() bool { return len(c) == 1 }

// Single returns c's sole item and true, or (nil, false) if c is not a
// singleton. Callers implementing spec §4.5 rule 2's "singleton coercion"
// use this; a 2+ element collection is the caller's responsibility to
// reject or special-case.
func (c Collection) Single() (Value, bool) {
	if len(c) == 1 {
		return c[0], true
	}
	return nil, false
}

// --- concrete scalar kinds -------------------------------------------------

type Boolean bool

func (Boolean) Kind() Kind       { return KindBoolean }
func (b Boolean) String() string { return fmt.Sprintf("%t", bool(b)) }

type Integer int64

func (Integer) Kind() Kind       { return KindInteger }
func (i Integer) String() string { return fmt.Sprintf("%d", int64(i)) }

// Decimal wraps github.com/shopspring/decimal.Decimal for arbitrary-
// precision arithmetic and comparison, since FHIRPath decimal literals do
// not carry IEEE-754 rounding error (spec §3, §4.5 rule 9).
type Decimal struct {
	D decimal.Decimal
}

func NewDecimal(d decimal.Decimal) Decimal { return Decimal{D: d} }

func DecimalFromString(s string) (Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Decimal{}, err
	}
	return Decimal{D: d}, nil
}

func DecimalFromInt(i int64) Decimal { return Decimal{D: decimal.NewFromInt(i)} }

func (Decimal) Kind() Kind        { return KindDecimal }
func (d Decimal) String() string  { return d.D.String() }

type String string

func (String) Kind() Kind       { return KindString }
func (s String) String() string { return string(s) }

// Object is an opaque navigable structure (a FHIR-resource-shaped node, or
// any hierarchical value supplied by the embedding application). Field
// access is delegated to an Accessor rather than baked into this package,
// since concrete resource shapes are explicitly out of scope (spec §1).
type Object struct {
	Accessor Accessor
}

func (Object) Kind() Kind       { return KindObject }
func (o Object) String() string { return o.Accessor.String() }

// Accessor lets the interpreter navigate into an opaque Object without the
// core knowing its concrete shape.
type Accessor interface {
	// Property returns the named field's value as a Collection (possibly
	// empty if absent, possibly multi-element if the field is repeating),
	// per spec §4.5 rule 5.
	Property(name string) (Collection, bool)
	// TypeName reports the dynamic type name used by `is`/`as`/`ofType`.
	TypeName() string
	// String renders a debug representation.
	String() string
}

// MapAccessor is a minimal, dependency-free Accessor over plain Go maps
// and slices — useful for tests and for embedders who don't have a richer
// model-backed resource representation. Map values may be: a Value, a
// Collection, a []any (treated as a nested Collection of Objects/Values),
// a map[string]any (treated as a nested Object), or a primitive Go type
// (bool/int/float64/string) auto-converted to the matching Value kind.
type MapAccessor struct {
	Type string
	Data map[string]any
}

func (m MapAccessor) TypeName() string { return m.Type }
func (m MapAccessor) String() string   { return fmt.Sprintf("%s%v", m.Type, m.Data) }

// Fields lists MapAccessor's property names, letting tree-navigation
// functions (children/descendants) enumerate an object's children without
// a richer model-backed Accessor.
func (m MapAccessor) Fields() []string {
	names := make([]string, 0, len(m.Data))
	for k := range m.Data {
		names = append(names, k)
	}
	return names
}

func (m MapAccessor) Property(name string) (Collection, bool) {
	raw, ok := m.Data[name]
	if !ok {
		return nil, false
	}
	return FromAny(raw), true
}

// FromAny converts an arbitrary Go value (as produced by encoding/json
// unmarshalling into map[string]any, for instance) into a Collection. This
// is a convenience for embedders, not a general JSON I/O layer (which is
// explicitly out of scope, spec §1).
func FromAny(raw any) Collection {
	switch v := raw.(type) {
	case nil:
		return nil
	case Collection:
		return v
	case Value:
		return Collection{v}
	case bool:
		return Of(Boolean(v))
	case int:
		return Of(Integer(v))
	case int64:
		return Of(Integer(v))
	case float64:
		return Of(Decimal{D: decimal.NewFromFloat(v)})
	case string:
		return Of(String(v))
	case map[string]any:
		return Of(Object{Accessor: MapAccessor{Type: inferType(v), Data: v}})
	case []any:
		var out Collection
		for _, e := range v {
			out = append(out, FromAny(e)...)
		}
		return out
	default:
		return nil
	}
}

func inferType(m map[string]any) string {
	if t, ok := m["resourceType"]; ok {
		if s, ok := t.(string); ok {
			return s
		}
	}
	return "Object"
}
