package fpcontext

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fhirgo/fhirpath/value"
)

func TestDefineVariable_IsolatesSiblingBranches(t *testing.T) {
	root := New(nil)
	left, ok := root.DefineVariable("x", value.Of(value.Integer(1)))
	require.True(t, ok)
	right, ok := root.DefineVariable("x", value.Of(value.Integer(2)))
	require.True(t, ok)

	lv, ok := left.LookupVariable("x")
	require.True(t, ok)
	require.Equal(t, value.Of(value.Integer(1)), lv)

	rv, ok := right.LookupVariable("x")
	require.True(t, ok)
	require.Equal(t, value.Of(value.Integer(2)), rv)

	_, rootHasX := root.LookupVariable("x")
	require.False(t, rootHasX)
}

func TestDefineVariable_RejectsReservedName(t *testing.T) {
	root := New(nil)
	_, ok := root.DefineVariable("context", value.Of(value.Integer(1)))
	require.False(t, ok)
}

func TestDefineVariable_RejectsRedefinitionInSameChain(t *testing.T) {
	root := New(nil)
	ctx, ok := root.DefineVariable("x", value.Of(value.Integer(1)))
	require.True(t, ok)
	_, ok = ctx.DefineVariable("x", value.Of(value.Integer(2)))
	require.False(t, ok)
}

func TestWithIterFrame_NestedIterationReplacesFrame(t *testing.T) {
	root := New(nil)
	outer := root.WithIterFrame(IterFrame{This: value.Of(value.Integer(1)), HasThis: true, Index: 0, HasIndex: true})
	inner := outer.WithIterFrame(IterFrame{This: value.Of(value.Integer(2)), HasThis: true, Index: 1, HasIndex: true})

	require.Equal(t, value.Of(value.Integer(2)), inner.Iter.This)
	require.Equal(t, value.Of(value.Integer(1)), outer.Iter.This)
}

func TestLookupVariable_EnvVarsTakePrecedenceOverNothing(t *testing.T) {
	root := New(nil).WithEnv(map[string]value.Collection{"ucum": value.Of(value.String("http://unitsofmeasure.org"))})
	v, ok := root.LookupVariable("ucum")
	require.True(t, ok)
	require.Equal(t, value.Of(value.String("http://unitsofmeasure.org")), v)
}

func TestLookupVariable_ContextResolvesToInput(t *testing.T) {
	input := value.Of(value.Integer(42))
	root := New(input)
	v, ok := root.LookupVariable("context")
	require.True(t, ok)
	require.Equal(t, input, v)
}

func TestWithFocus_DoesNotMutateParent(t *testing.T) {
	root := New(value.Of(value.Integer(1)))
	child := root.WithFocus(value.Of(value.Integer(2)))
	require.Equal(t, value.Of(value.Integer(1)), root.Focus)
	require.Equal(t, value.Of(value.Integer(2)), child.Focus)
}
