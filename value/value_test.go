package value

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEqual_CrossNumericKind(t *testing.T) {
	require.True(t, Equal(Integer(5), DecimalFromInt(5)))
	require.False(t, Equal(Integer(5), DecimalFromInt(6)))
}

func TestEqual_StringIsCaseSensitive(t *testing.T) {
	require.False(t, Equal(String("Abc"), String("abc")))
}

func TestEquivalent_StringIsCaseInsensitive(t *testing.T) {
	require.True(t, Equivalent(String("Abc"), String("abc")))
}

func TestCollectionEquivalent_OrderInsensitiveMultiset(t *testing.T) {
	a := Collection{Integer(1), Integer(2), Integer(2)}
	b := Collection{Integer(2), Integer(1), Integer(2)}
	require.True(t, CollectionEquivalent(a, b))

	c := Collection{Integer(1), Integer(2), Integer(3)}
	require.False(t, CollectionEquivalent(a, c))
}

func TestCollectionEqual_OrderSensitive(t *testing.T) {
	a := Collection{Integer(1), Integer(2)}
	b := Collection{Integer(2), Integer(1)}
	require.False(t, CollectionEqual(a, b))
	require.True(t, CollectionEqual(a, a))
}

func TestCompare_NumericCrossKind(t *testing.T) {
	c, ok := Compare(Integer(3), DecimalFromInt(5))
	require.True(t, ok)
	require.Equal(t, -1, c)
}

func TestCompare_IncompatibleKindsNotOk(t *testing.T) {
	_, ok := Compare(String("a"), Integer(1))
	require.False(t, ok)
}

func TestCompare_QuantityIncompatibleUnits(t *testing.T) {
	a := NewQuantity(DecimalFromInt(1).D, "d")
	b := NewQuantity(DecimalFromInt(1).D, "kg")
	_, ok := Compare(a, b)
	require.False(t, ok)
}

func TestCompare_QuantityComparableUnits(t *testing.T) {
	a := NewQuantity(DecimalFromInt(60).D, "min")
	b := NewQuantity(DecimalFromInt(1).D, "h")
	c, ok := Compare(a, b)
	require.True(t, ok)
	require.Equal(t, 0, c)
}

func TestUnion_Deduplicates(t *testing.T) {
	a := Collection{Integer(1), Integer(2)}
	b := Collection{Integer(2), Integer(3)}
	out := Union(a, b)
	require.Len(t, out, 3)
}

func TestCombine_KeepsDuplicates(t *testing.T) {
	a := Collection{Integer(1)}
	b := Collection{Integer(1)}
	out := Combine(a, b)
	require.Len(t, out, 2)
}

func TestDistinct_UsesEquivalence(t *testing.T) {
	c := Collection{String("Abc"), String("abc"), String("xyz")}
	out := Distinct(c)
	require.Len(t, out, 2)
}

func TestSubsetOf(t *testing.T) {
	a := Collection{Integer(1), Integer(2)}
	b := Collection{Integer(1), Integer(2), Integer(3)}
	require.True(t, SubsetOf(a, b))
	require.False(t, SubsetOf(b, a))
}

func TestFromAny_NestedMapAndSlice(t *testing.T) {
	raw := map[string]any{
		"resourceType": "Patient",
		"name": []any{
			map[string]any{"family": "Smith", "given": []any{"Alice", "B"}},
		},
		"active": true,
	}
	out := FromAny(raw)
	v, ok := out.Single()
	require.True(t, ok)
	obj, ok := v.(Object)
	require.True(t, ok)
	require.Equal(t, "Patient", obj.Accessor.TypeName())

	names, ok := obj.Accessor.Property("name")
	require.True(t, ok)
	require.Len(t, names, 1)

	nameObj, ok := names[0].(Object)
	require.True(t, ok)
	family, ok := nameObj.Accessor.Property("family")
	require.True(t, ok)
	v2, _ := family.Single()
	require.Equal(t, String("Smith"), v2)
}

func TestFromAny_NilIsEmptyCollection(t *testing.T) {
	out := FromAny(nil)
	require.True(t, out.IsEmpty())
}
