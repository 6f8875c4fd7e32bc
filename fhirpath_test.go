package fhirpath

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fhirgo/fhirpath/value"
)

func patient(name []any, active bool, age int64) value.Collection {
	return value.FromAny(map[string]any{
		"resourceType": "Patient",
		"name":         name,
		"active":       active,
		"age":          age,
	})
}

func TestEvaluateString_Arithmetic(t *testing.T) {
	out, err := EvaluateString("1 + 2 * 3", nil)
	require.NoError(t, err)
	require.True(t, out.IsSingleton())
	v, _ := out.Single()
	require.Equal(t, value.Integer(7), v)
}

func TestEvaluateString_PropertyNavigation(t *testing.T) {
	input := patient([]any{map[string]any{"given": []any{"Alice"}, "family": "Smith"}}, true, 30)

	out, err := EvaluateString("name.family", input)
	require.NoError(t, err)
	v, ok := out.Single()
	require.True(t, ok)
	require.Equal(t, value.String("Smith"), v)
}

func TestEvaluateString_WhereAndExists(t *testing.T) {
	input := patient([]any{map[string]any{"given": []any{"Alice"}, "family": "Smith"}}, true, 30)

	out, err := EvaluateString("name.where(family = 'Smith').exists()", input)
	require.NoError(t, err)
	v, _ := out.Single()
	require.Equal(t, value.Boolean(true), v)
}

func TestEvaluateString_BooleanLogic(t *testing.T) {
	input := patient(nil, true, 30)

	out, err := EvaluateString("active and age > 18", input)
	require.NoError(t, err)
	v, _ := out.Single()
	require.Equal(t, value.Boolean(true), v)
}

func TestEvaluateString_StringFunctions(t *testing.T) {
	out, err := EvaluateString("'Hello World'.upper().contains('WORLD')", nil)
	require.NoError(t, err)
	v, _ := out.Single()
	require.Equal(t, value.Boolean(true), v)
}

func TestEvaluateString_EmptyPropagation(t *testing.T) {
	out, err := EvaluateString("{}.exists()", nil)
	require.NoError(t, err)
	v, _ := out.Single()
	require.Equal(t, value.Boolean(false), v)
}

func TestParse_SyntaxError(t *testing.T) {
	_, err := Parse("1 + ")
	require.Error(t, err)
}

func TestExpression_ReuseAcrossInputs(t *testing.T) {
	e, err := Parse("age > 18")
	require.NoError(t, err)

	young := patient(nil, true, 10)
	old := patient(nil, true, 40)

	out1, err := e.Evaluate(young, EvalOptions{})
	require.NoError(t, err)
	v1, _ := out1.Single()
	require.Equal(t, value.Boolean(false), v1)

	out2, err := e.Evaluate(old, EvalOptions{})
	require.NoError(t, err)
	v2, _ := out2.Single()
	require.Equal(t, value.Boolean(true), v2)
}
