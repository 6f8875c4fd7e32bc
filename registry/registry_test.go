package registry_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fhirgo/fhirpath/fpcontext"
	"github.com/fhirgo/fhirpath/interp"
	"github.com/fhirgo/fhirpath/parser"
	"github.com/fhirgo/fhirpath/value"
)

// evalSrc parses and evaluates src against input, mirroring interp_test.go's
// helper so the registry's function families get end-to-end coverage
// through the real parse-then-eval pipeline rather than unit-testing each
// Entry.Evaluate hook in isolation.
func evalSrc(t *testing.T, src string, input value.Collection) value.Collection {
	t.Helper()
	n, err := parser.Parse(src)
	require.NoError(t, err)
	out, _, err := interp.New().Eval(n, input, fpcontext.New(input))
	require.NoError(t, err)
	return out
}

// parseAndEval is evalSrc without the no-error assertion, for cases
// exercising a function that must raise rather than degrade to empty.
func parseAndEval(t *testing.T, src string, input value.Collection) (value.Collection, error) {
	t.Helper()
	n, err := parser.Parse(src)
	require.NoError(t, err)
	out, _, err := interp.New().Eval(n, input, fpcontext.New(input))
	return out, err
}

func TestString_UpperLowerTrimLength(t *testing.T) {
	out := evalSrc(t, "' Abc '.trim().upper() + '-' + 'Abc'.lower()", nil)
	require.Equal(t, value.Of(value.String("ABC-abc")), out)

	out = evalSrc(t, "'hello'.length()", nil)
	require.Equal(t, value.Of(value.Integer(5)), out)
}

func TestString_IndexOfAndSubstring(t *testing.T) {
	out := evalSrc(t, "'abcdef'.indexOf('cd')", nil)
	require.Equal(t, value.Of(value.Integer(2)), out)

	out = evalSrc(t, "'abcdef'.substring(2, 3)", nil)
	require.Equal(t, value.Of(value.String("cde")), out)
}

func TestString_StartsWithEndsWithContainsMatches(t *testing.T) {
	require.Equal(t, value.Of(value.Boolean(true)), evalSrc(t, "'abcdef'.startsWith('abc')", nil))
	require.Equal(t, value.Of(value.Boolean(true)), evalSrc(t, "'abcdef'.endsWith('def')", nil))
	require.Equal(t, value.Of(value.Boolean(true)), evalSrc(t, "'abcdef'.contains('cd')", nil))
	require.Equal(t, value.Of(value.Boolean(true)), evalSrc(t, "'abc123'.matches('[a-z]+[0-9]+')", nil))
}

func TestString_ReplaceSplitJoin(t *testing.T) {
	out := evalSrc(t, "'a,b,c'.replace(',', ';')", nil)
	require.Equal(t, value.Of(value.String("a;b;c")), out)

	out = evalSrc(t, "'a,b,c'.split(',').join('-')", nil)
	require.Equal(t, value.Of(value.String("a-b-c")), out)
}

func requireSingleEqual(t *testing.T, c value.Collection, want value.Value) {
	t.Helper()
	v, ok := c.Single()
	require.True(t, ok)
	require.True(t, value.Equal(v, want), "got %v, want %v", v, want)
}

func TestMath_AbsCeilingFloorTruncate(t *testing.T) {
	requireSingleEqual(t, evalSrc(t, "(-3).abs()", nil), value.DecimalFromInt(3))
	requireSingleEqual(t, evalSrc(t, "1.2.ceiling()", nil), value.Integer(2))
	requireSingleEqual(t, evalSrc(t, "1.8.floor()", nil), value.Integer(1))
	requireSingleEqual(t, evalSrc(t, "1.8.truncate()", nil), value.Integer(1))
}

func TestMath_SqrtPower(t *testing.T) {
	requireSingleEqual(t, evalSrc(t, "4.sqrt()", nil), value.DecimalFromInt(2))
	requireSingleEqual(t, evalSrc(t, "2.power(3)", nil), value.Integer(8))
}

func TestConvert_ToIntegerToDecimalToStringToBoolean(t *testing.T) {
	require.Equal(t, value.Of(value.Integer(42)), evalSrc(t, "'42'.toInteger()", nil))
	require.Equal(t, value.Of(value.Boolean(true)), evalSrc(t, "'42'.convertsToInteger()", nil))
	require.Equal(t, value.Of(value.String("42")), evalSrc(t, "42.toString()", nil))
	require.Equal(t, value.Of(value.Boolean(true)), evalSrc(t, "'true'.toBoolean()", nil))
}

func TestConvert_ToQuantity(t *testing.T) {
	out := evalSrc(t, "'4 \\'d\\''.toQuantity()", nil)
	q, ok := out.Single()
	require.True(t, ok)
	qty, ok := q.(value.Quantity)
	require.True(t, ok)
	require.Equal(t, "d", qty.Unit)
}

func TestCollection_EmptyCountFirstLastTail(t *testing.T) {
	input := value.Collection{value.Integer(1), value.Integer(2), value.Integer(3)}
	require.Equal(t, value.Of(value.Boolean(false)), evalSrc(t, "empty()", input))
	require.Equal(t, value.Of(value.Integer(3)), evalSrc(t, "count()", input))
	require.Equal(t, value.Of(value.Integer(1)), evalSrc(t, "first()", input))
	require.Equal(t, value.Of(value.Integer(3)), evalSrc(t, "last()", input))
	require.Equal(t, value.Collection{value.Integer(2), value.Integer(3)}, evalSrc(t, "tail()", input))
}

func TestCollection_DistinctIsDistinctSkipTake(t *testing.T) {
	input := value.Collection{value.Integer(1), value.Integer(1), value.Integer(2)}
	require.Len(t, evalSrc(t, "distinct()", input), 2)
	require.Equal(t, value.Of(value.Boolean(false)), evalSrc(t, "isDistinct()", input))
	require.Equal(t, value.Collection{value.Integer(2)}, evalSrc(t, "skip(2)", input))
	require.Equal(t, value.Collection{value.Integer(1), value.Integer(1)}, evalSrc(t, "take(2)", input))
}

func TestCollection_SubsetSupersetUnionCombineIntersectExclude(t *testing.T) {
	require.Equal(t, value.Of(value.Boolean(true)), evalSrc(t, "(1 | 2).subsetOf(1 | 2 | 3)", nil))
	require.Equal(t, value.Of(value.Boolean(true)), evalSrc(t, "(1 | 2 | 3).supersetOf(1 | 2)", nil))
	require.Len(t, evalSrc(t, "(1 | 2).union(2 | 3)", nil), 3)
	require.Len(t, evalSrc(t, "(1 | 2).combine(2 | 3)", nil), 4)
	require.Len(t, evalSrc(t, "(1 | 2 | 3).intersect(2 | 3 | 4)", nil), 2)
	require.Len(t, evalSrc(t, "(1 | 2 | 3).exclude(2)", nil), 2)
}

func TestType_TypeNameAndOfType(t *testing.T) {
	require.Equal(t, value.Of(value.String("Integer")), evalSrc(t, "5.type()", nil))
	input := value.Collection{value.Integer(1), value.String("a")}
	require.Equal(t, value.Collection{value.Integer(1)}, evalSrc(t, "ofType(Integer)", input))
}

func TestType_Not(t *testing.T) {
	require.Equal(t, value.Of(value.Boolean(false)), evalSrc(t, "true.not()", nil))
	require.Equal(t, value.Of(value.Boolean(true)), evalSrc(t, "false.not()", nil))
}

func TestType_Not_EmptyIsTrueMultiElementIsEmpty(t *testing.T) {
	out := evalSrc(t, "{}.not()", nil)
	require.Equal(t, value.Of(value.Boolean(true)), out)

	input := value.Collection{value.Boolean(true), value.Boolean(false)}
	out = evalSrc(t, "not()", input)
	require.True(t, out.IsEmpty())
}

func TestFunctions_IifRequiresRealBooleanCondition(t *testing.T) {
	require.Equal(t, value.Of(value.Integer(1)), evalSrc(t, "iif(true, 1, 2)", nil))
	require.Equal(t, value.Of(value.Integer(2)), evalSrc(t, "iif(false, 1, 2)", nil))
	// A non-boolean singleton condition takes the else branch, not the then.
	require.Equal(t, value.Of(value.Integer(2)), evalSrc(t, "iif('x', 1, 2)", nil))
	// An empty condition also takes the else branch.
	require.Equal(t, value.Of(value.Integer(2)), evalSrc(t, "iif({}, 1, 2)", nil))
}

func TestFunctions_IifOnMultiElementInputIsEmpty(t *testing.T) {
	input := value.Collection{value.Integer(1), value.Integer(2)}
	out := evalSrc(t, "iif(true, 1, 2)", input)
	require.True(t, out.IsEmpty())
}

func TestCollection_SingleRaisesOnMultiElement(t *testing.T) {
	input := value.Collection{value.Integer(1), value.Integer(2)}
	_, err := parseAndEval(t, "single()", input)
	require.Error(t, err)
}

func TestFunctions_DefineVariableRedefinitionYieldsEmpty(t *testing.T) {
	out := evalSrc(t, "true.defineVariable('x', 1).defineVariable('x', 2)", nil)
	require.True(t, out.IsEmpty())

	out = evalSrc(t, "true.defineVariable('context', 1)", nil)
	require.True(t, out.IsEmpty())
}

func TestOperators_IsOverMultiElementRequiresEveryMatch(t *testing.T) {
	require.Equal(t, value.Of(value.Boolean(true)), evalSrc(t, "(1 | 2).is(Integer)", nil))
	require.Equal(t, value.Of(value.Boolean(false)), evalSrc(t, "(1 | 'a').is(Integer)", nil))
}

func TestOperators_AsOverMultiElementFiltersByType(t *testing.T) {
	out := evalSrc(t, "(1 | 'a' | 2).as(Integer)", nil)
	require.Equal(t, value.Collection{value.Integer(1), value.Integer(2)}, out)
}
