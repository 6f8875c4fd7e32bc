package registry

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/fhirgo/fhirpath/ast"
	"github.com/fhirgo/fhirpath/value"
)

// EvalError wraps a runtime evaluation failure with the offending
// operator/function name, grounded on the teacher's eval package's use of
// typed, wrapped errors (akashmaji946-go-mix/eval/eval.go) via
// github.com/pkg/errors rather than bare fmt.Errorf. Range is the zero
// value when the failure isn't tied to a specific source node.
type EvalError struct {
	Op    string
	Range ast.Range
	Err   error
}

func (e *EvalError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *EvalError) Unwrap() error { return e.Err }

func evalErr(op string, format string, args ...any) error {
	return &EvalError{Op: op, Err: errors.Errorf(format, args...)}
}

// evalErrAt is evalErr with the offending node's source range attached, for
// failures spec §7.3 requires to "raise a typed evaluation error" rather
// than degrade to an empty result.
func evalErrAt(op string, rng ast.Range, format string, args ...any) error {
	return &EvalError{Op: op, Range: rng, Err: errors.Errorf(format, args...)}
}

// singleton returns c's sole item, or ok=false if c is empty or multi-
// element — spec §4.5 rule 2's "singleton coercion" for operators that
// require scalar operands.
func singleton(c value.Collection) (value.Value, bool) {
	return c.Single()
}

func asBool(v value.Value) (bool, bool) {
	b, ok := v.(value.Boolean)
	return bool(b), ok
}

func asInt(v value.Value) (int64, bool) {
	i, ok := v.(value.Integer)
	return int64(i), ok
}

func asString(v value.Value) (string, bool) {
	s, ok := v.(value.String)
	return string(s), ok
}

func toDecimal(v value.Value) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case value.Integer:
		return decimal.NewFromInt(int64(t)), true
	case value.Decimal:
		return t.D, true
	default:
		return decimal.Decimal{}, false
	}
}

// numericResult re-wraps a decimal.Decimal result as Integer when both
// operands were Integer (spec §4.5 rule 9 "promote-numeric": Integer op
// Integer stays Integer unless the operator inherently produces Decimal,
// e.g. division).
func numericResult(a, b value.Value, d decimal.Decimal) value.Value {
	_, aInt := a.(value.Integer)
	_, bInt := b.(value.Integer)
	if aInt && bInt && d.IsInteger() {
		return value.Integer(d.IntPart())
	}
	return value.NewDecimal(d)
}

// one wraps a single Value as a singleton Collection.
func one(v value.Value) value.Collection { return value.Of(v) }

var empty value.Collection
