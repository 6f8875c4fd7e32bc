package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsPrimitive_RecognizesBuiltins(t *testing.T) {
	r, ok := IsPrimitive("Integer")
	require.True(t, ok)
	require.Equal(t, Integer, r)

	_, ok = IsPrimitive("Patient")
	require.False(t, ok)
}

func TestIsNumeric(t *testing.T) {
	require.True(t, IsNumeric(Integer))
	require.True(t, IsNumeric(Decimal))
	require.False(t, IsNumeric(String))
	require.False(t, IsNumeric(Boolean))
}

func TestPromote(t *testing.T) {
	require.Equal(t, Integer, Promote(Integer, Integer))
	require.Equal(t, Decimal, Promote(Integer, Decimal))
	require.Equal(t, Decimal, Promote(Decimal, Decimal))
}

func TestNoProvider_ResolveType(t *testing.T) {
	p := NoProvider{}
	r, ok := p.ResolveType("String")
	require.True(t, ok)
	require.Equal(t, String, r)

	_, ok = p.ResolveType("Patient")
	require.False(t, ok)
}

func TestNoProvider_PropertyTypeAlwaysAny(t *testing.T) {
	p := NoProvider{}
	r, singleton, ok := p.PropertyType(String, "anything")
	require.Equal(t, Any, r)
	require.False(t, singleton)
	require.True(t, ok)
}

func TestNoProvider_IsAssignable(t *testing.T) {
	p := NoProvider{}
	require.True(t, p.IsAssignable(Integer, Integer))
	require.True(t, p.IsAssignable(Integer, Any))
	require.False(t, p.IsAssignable(Integer, String))
}

func TestRefName_NilIsPlaceholder(t *testing.T) {
	require.Equal(t, "<nil>", RefName(nil))
	require.Equal(t, "Integer", RefName(Integer))
}

func TestMismatchError_FormatsBothSides(t *testing.T) {
	msg := MismatchError("+", Integer, String)
	require.Contains(t, msg, "Integer")
	require.Contains(t, msg, "String")
	require.Contains(t, msg, "+")
}
