package diag

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestCollector_AllInEmissionOrder(t *testing.T) {
	c := NewCollector()
	c.Add(Diagnostic{Severity: Error, Code: UnknownFunction, Message: "first"})
	c.Add(Diagnostic{Severity: Warning, Code: TypeMismatch, Message: "second"})
	all := c.All()
	require.Len(t, all, 2)
	require.Equal(t, "first", all[0].Message)
	require.Equal(t, "second", all[1].Message)
}

func TestCollector_HasErrors(t *testing.T) {
	c := NewCollector()
	require.False(t, c.HasErrors())
	c.Add(Diagnostic{Severity: Warning, Code: TypeMismatch})
	require.False(t, c.HasErrors())
	c.Add(Diagnostic{Severity: Error, Code: UnknownOperator})
	require.True(t, c.HasErrors())
}

func TestCollector_RespectsMax(t *testing.T) {
	c := NewCollectorWithLimit(2)
	c.Add(Diagnostic{Severity: Error, Code: UnknownFunction})
	c.Add(Diagnostic{Severity: Error, Code: UnknownFunction})
	c.Add(Diagnostic{Severity: Error, Code: UnknownFunction})
	require.Len(t, c.All(), 2)
}

func TestCollector_ErrUnwrapsToConstituents(t *testing.T) {
	c := NewCollector()
	c.Add(Diagnostic{Severity: Error, Code: UnknownFunction, Message: "boom"})
	c.Add(Diagnostic{Severity: Error, Code: UnknownVariable, Message: "bang"})
	err := c.Err()
	require.Error(t, err)
	require.Len(t, multierr.Errors(err), 2)
}

func TestCollector_ErrNilWhenEmpty(t *testing.T) {
	c := NewCollector()
	require.NoError(t, c.Err())
}

func TestDiagnostic_ErrorStringIncludesCodeAndRange(t *testing.T) {
	d := Diagnostic{Severity: Error, Code: UnknownProperty, Range: Range{Start: 3, End: 7}, Message: "bad"}
	require.Contains(t, d.Error(), "UNKNOWN_PROPERTY")
	require.Contains(t, d.Error(), "3-7")
}
