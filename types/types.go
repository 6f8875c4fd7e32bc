// Package types defines the static type model consulted by the analyzer:
// the opaque TypeRef the core passes around, the built-in primitive types
// that exist without any model provider, and the ModelProvider interface
// through which domain schemas (e.g. concrete FHIR resource definitions)
// enter the core (spec §6 — model providers are an external collaborator;
// this package only specifies their interface).
package types

import "fmt"

// Ref is the core's opaque type reference (spec §6: "TypeRef is opaque to
// the core"). The analyzer never inspects a Ref beyond TypeName and the
// ModelProvider methods below.
type Ref interface {
	TypeName() string
}

// primitive is the Ref implementation for the built-in scalar kinds the
// analyzer understands without any model provider.
type primitive string

func (p primitive) TypeName() string { return string(p) }

// Built-in primitive type references.
var (
	Any      Ref = primitive("Any")
	Boolean  Ref = primitive("Boolean")
	Integer  Ref = primitive("Integer")
	Decimal  Ref = primitive("Decimal")
	String   Ref = primitive("String")
	Date     Ref = primitive("Date")
	DateTime Ref = primitive("DateTime")
	Time     Ref = primitive("Time")
	Quantity Ref = primitive("Quantity")
)

// IsPrimitive reports whether name spells one of the built-in primitive
// type names above, and returns the matching Ref.
func IsPrimitive(name string) (Ref, bool) {
	switch name {
	case "Any":
		return Any, true
	case "Boolean":
		return Boolean, true
	case "Integer":
		return Integer, true
	case "Decimal":
		return Decimal, true
	case "String":
		return String, true
	case "Date":
		return Date, true
	case "DateTime":
		return DateTime, true
	case "Time":
		return Time, true
	case "Quantity":
		return Quantity, true
	default:
		return nil, false
	}
}

// IsNumeric reports whether t is Integer or Decimal — the pair that
// participates in spec §4.5 rule 9's numeric-promotion arithmetic.
func IsNumeric(t Ref) bool {
	return t == Integer || t == Decimal
}

// Promote implements the registry's "promote-numeric" output-type rule:
// Integer+Integer -> Integer, anything else numeric -> Decimal.
func Promote(a, b Ref) Ref {
	if a == Integer && b == Integer {
		return Integer
	}
	return Decimal
}

// Provider supplies domain-specific type information to the analyzer. A
// concrete FHIR resource schema is the expected implementation; the core
// itself ships none (spec §1 Non-goals: "providing a standard library of
// FHIR profiles" is out of scope).
type Provider interface {
	// ResolveType looks up a (possibly dotted/qualified) type name, e.g.
	// "Patient" or "FHIR.Patient". Returns ok=false if unknown.
	ResolveType(name string) (Ref, bool)

	// PropertyType returns the declared type and singleton-ness of a named
	// property on t, or ok=false if t has no such property.
	PropertyType(t Ref, name string) (propType Ref, isSingleton bool, ok bool)

	// IsAssignable reports whether a value of type `from` may be used
	// where `to` is declared (e.g. a subtype relationship).
	IsAssignable(from, to Ref) bool

	// TypeName returns the display name for t.
	TypeName(t Ref) string
}

// CommonTyper is an optional Provider capability: computing a common
// supertype across a set of types (spec §6 "optionally: common_type").
type CommonTyper interface {
	CommonType(types []Ref) (Ref, bool)
}

// CollectionTyper is an optional Provider capability: reporting whether t
// itself denotes a collection type rather than a scalar.
type CollectionTyper interface {
	IsCollection(t Ref) bool
}

// NoProvider is the zero-value Provider used when analysis runs with no
// domain schema at all: every property lookup resolves to Any rather than
// failing, so analysis can still proceed in lenient spirit over untyped
// data. ResolveType knows only the built-in primitive type names.
type NoProvider struct{}

func (NoProvider) ResolveType(name string) (Ref, bool) {
	if r, ok := IsPrimitive(name); ok {
		return r, true
	}
	return nil, false
}

func (NoProvider) PropertyType(Ref, string) (Ref, bool, bool) { return Any, false, true }
func (NoProvider) IsAssignable(from, to Ref) bool             { return from == to || to == Any }
func (NoProvider) TypeName(t Ref) string {
	if t == nil {
		return "Any"
	}
	return t.TypeName()
}

var _ Provider = NoProvider{}

// RefName renders a Ref for error messages when no Provider is in scope.
// Named apart from the String primitive Ref above since Go forbids a
// package-level func and var sharing one identifier.
func RefName(t Ref) string {
	if t == nil {
		return "<nil>"
	}
	return t.TypeName()
}

// MismatchError is a convenience formatter for TYPE_MISMATCH diagnostic
// messages.
func MismatchError(op string, want, got Ref) string {
	return fmt.Sprintf("%s: expected %s, got %s", op, RefName(want), RefName(got))
}
