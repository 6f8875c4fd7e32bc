package analyzer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fhirgo/fhirpath/ast"
	"github.com/fhirgo/fhirpath/diag"
	"github.com/fhirgo/fhirpath/parser"
	"github.com/fhirgo/fhirpath/registry"
	"github.com/fhirgo/fhirpath/types"
)

func analyzeSrc(t *testing.T, src string, input registry.TypeInfo) (registry.TypeInfo, []diag.Diagnostic) {
	t.Helper()
	n, err := parser.Parse(src)
	require.NoError(t, err)
	a := New()
	return a.Analyze(n, input)
}

func TestAnalyze_ArithmeticPromotesToDecimal(t *testing.T) {
	out, diags := analyzeSrc(t, "1 + 2.5", registry.TypeInfo{Type: types.Any, Singleton: true})
	require.Empty(t, diags)
	require.Equal(t, types.Decimal, out.Type)
	require.True(t, out.Singleton)
}

func TestAnalyze_ComparisonIsBoolean(t *testing.T) {
	out, diags := analyzeSrc(t, "1 < 2", registry.TypeInfo{Type: types.Any, Singleton: true})
	require.Empty(t, diags)
	require.Equal(t, types.Boolean, out.Type)
	require.True(t, out.Singleton)
}

func TestAnalyze_ExistsIsBooleanSingleton(t *testing.T) {
	out, diags := analyzeSrc(t, "name.exists()", registry.TypeInfo{Type: types.Any, Singleton: false})
	require.Empty(t, diags)
	require.Equal(t, types.Boolean, out.Type)
	require.True(t, out.Singleton)
}

func TestAnalyze_WhereNarrowsButStaysNonSingleton(t *testing.T) {
	out, diags := analyzeSrc(t, "name.where(use = 'official')", registry.TypeInfo{Type: types.Any, Singleton: false})
	require.Empty(t, diags)
	require.False(t, out.Singleton)
}

func TestAnalyze_IsCallYieldsBoolean(t *testing.T) {
	out, diags := analyzeSrc(t, "value.is(Quantity)", registry.TypeInfo{Type: types.Any, Singleton: true})
	require.Empty(t, diags)
	require.Equal(t, types.Boolean, out.Type)
}

func TestAnalyze_UnknownPropertyStrictModeDiagnoses(t *testing.T) {
	n, err := parser.Parse("bogusField")
	require.NoError(t, err)
	a := NewWithOptions(registry.Default(), stubProvider{}, registry.Strict)
	_, diags := a.Analyze(n, registry.TypeInfo{Type: patientRef{}, Singleton: true})
	require.NotEmpty(t, diags)
	require.Equal(t, diag.UnknownProperty, diags[0].Code)
}

func TestAnalyze_AnnotatesEveryNode(t *testing.T) {
	n, err := parser.Parse("name.given")
	require.NoError(t, err)
	a := New()
	_, diags := a.Analyze(n, registry.TypeInfo{Type: types.Any, Singleton: true})
	require.Empty(t, diags)
	bin, ok := n.(*ast.Binary)
	require.True(t, ok)
	require.NotNil(t, ast.Annotation(bin))
	require.NotNil(t, ast.Annotation(bin.Left))
	require.NotNil(t, ast.Annotation(bin.Right))
}

// patientRef is a minimal types.Ref implementation standing in for a
// model-provider-resolved "Patient" type.
type patientRef struct{}

func (patientRef) TypeName() string { return "Patient" }

// stubProvider recognizes only the "Patient.name" property, so navigating to
// any other field in Strict mode reports diag.UnknownProperty.
type stubProvider struct {
	types.NoProvider
}

func (stubProvider) PropertyType(t types.Ref, name string) (types.Ref, bool, bool) {
	if _, ok := t.(patientRef); ok && name == "name" {
		return types.String, false, true
	}
	return types.Any, false, false
}
