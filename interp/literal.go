package interp

import (
	"strconv"

	"github.com/pkg/errors"

	"github.com/fhirgo/fhirpath/ast"
	"github.com/fhirgo/fhirpath/value"
)

// literalValue parses a Literal node's Raw lexeme into its runtime value.Value,
// deferring the actual parsing the lexer already validated syntactically
// (spec §4.1's literal grammar) to value's Parse* helpers.
func literalValue(n *ast.Literal) (value.Value, error) {
	switch n.ValueKind {
	case ast.BooleanValue:
		return value.Boolean(n.Raw == "true"), nil
	case ast.IntegerValue:
		i, err := strconv.ParseInt(n.Raw, 10, 64)
		if err != nil {
			return nil, err
		}
		return value.Integer(i), nil
	case ast.DecimalValue:
		d, err := value.DecimalFromString(n.Raw)
		if err != nil {
			return nil, err
		}
		return d, nil
	case ast.StringValue:
		return value.String(n.Raw), nil
	case ast.DateValue:
		d, err := value.ParseDate(n.Raw)
		if err != nil {
			return nil, err
		}
		return d, nil
	case ast.DateTimeValue:
		dt, err := value.ParseDateTime(n.Raw)
		if err != nil {
			return nil, err
		}
		return dt, nil
	case ast.TimeValue:
		t, err := value.ParseTime(n.Raw)
		if err != nil {
			return nil, err
		}
		return t, nil
	case ast.QuantityValue:
		d, err := value.DecimalFromString(n.Raw)
		if err != nil {
			return nil, err
		}
		return value.NewQuantity(d.D, n.Unit), nil
	case ast.NullValue:
		return nil, nil
	default:
		return nil, errors.Errorf("unhandled literal kind %d", n.ValueKind)
	}
}
