package interp

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fhirgo/fhirpath/fpcontext"
	"github.com/fhirgo/fhirpath/parser"
	"github.com/fhirgo/fhirpath/value"
)

func evalSrc(t *testing.T, src string, input value.Collection) value.Collection {
	t.Helper()
	n, err := parser.Parse(src)
	require.NoError(t, err)
	it := New()
	out, _, err := it.Eval(n, input, fpcontext.New(input))
	require.NoError(t, err)
	return out
}

func TestEval_QuantityArithmetic(t *testing.T) {
	out := evalSrc(t, "4 'd' + 1 'd'", nil)
	v, ok := out.Single()
	require.True(t, ok)
	q, ok := v.(value.Quantity)
	require.True(t, ok)
	require.Equal(t, "d", q.Unit)
	require.True(t, q.Value.D.Equal(value.DecimalFromInt(5).D))
}

func TestEval_DatePlusCalendarDuration(t *testing.T) {
	out := evalSrc(t, "@2020-01-15 + 1 month", nil)
	v, ok := out.Single()
	require.True(t, ok)
	d, ok := v.(value.Date)
	require.True(t, ok)
	require.Equal(t, 2020, d.Year)
	require.Equal(t, 2, d.Month)
	require.Equal(t, 15, d.Day)
}

func TestEval_IsAsInfixAndCallForm(t *testing.T) {
	out := evalSrc(t, "5 is Integer", nil)
	v, _ := out.Single()
	require.Equal(t, value.Boolean(true), v)

	out2 := evalSrc(t, "5.is(Integer)", nil)
	v2, _ := out2.Single()
	require.Equal(t, value.Boolean(true), v2)

	out3 := evalSrc(t, "5.as(Integer)", nil)
	v3, _ := out3.Single()
	require.Equal(t, value.Integer(5), v3)
}

func TestEval_DivisionByZeroYieldsEmpty(t *testing.T) {
	out := evalSrc(t, "1 / 0", nil)
	require.True(t, out.IsEmpty())
}

func TestEval_DefineVariableAndLookup(t *testing.T) {
	out := evalSrc(t, "true.defineVariable('x', 42).select(%x + 1)", nil)
	v, ok := out.Single()
	require.True(t, ok)
	require.Equal(t, value.Integer(43), v)
}

func TestEval_UnionDeduplicates(t *testing.T) {
	out := evalSrc(t, "(1 | 2 | 2 | 3)", nil)
	require.Len(t, out, 3)
}

func TestEval_AggregateSum(t *testing.T) {
	out := evalSrc(t, "(1 | 2 | 3).aggregate($this + $total, 0)", nil)
	v, ok := out.Single()
	require.True(t, ok)
	require.Equal(t, value.Integer(6), v)
}
