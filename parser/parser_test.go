package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fhirgo/fhirpath/ast"
	"github.com/fhirgo/fhirpath/token"
)

func TestParse_PrecedenceClimbing(t *testing.T) {
	n, err := Parse("1 + 2 * 3")
	require.NoError(t, err)
	bin, ok := n.(*ast.Binary)
	require.True(t, ok)
	require.Equal(t, token.PLUS, bin.Op)
	_, leftIsLit := bin.Left.(*ast.Literal)
	require.True(t, leftIsLit)
	rightBin, ok := bin.Right.(*ast.Binary)
	require.True(t, ok)
	require.Equal(t, token.STAR, rightBin.Op)
}

func TestParse_DotChain(t *testing.T) {
	n, err := Parse("Patient.name.given")
	require.NoError(t, err)
	outer, ok := n.(*ast.Binary)
	require.True(t, ok)
	require.Equal(t, token.DOT, outer.Op)
	_, rightIsIdent := outer.Right.(*ast.Identifier)
	require.True(t, rightIsIdent)
}

func TestParse_FunctionCallWithArgs(t *testing.T) {
	n, err := Parse("name.where(use = 'official')")
	require.NoError(t, err)
	bin, ok := n.(*ast.Binary)
	require.True(t, ok)
	fn, ok := bin.Right.(*ast.Function)
	require.True(t, ok)
	require.Equal(t, "where", fn.Name)
	require.Len(t, fn.Arguments, 1)
}

func TestParse_IsAs(t *testing.T) {
	n, err := Parse("value is Quantity")
	require.NoError(t, err)
	bin, ok := n.(*ast.Binary)
	require.True(t, ok)
	require.Equal(t, token.IS, bin.Op)
	typ, ok := bin.Right.(*ast.TypeOrIdentifier)
	require.True(t, ok)
	require.Equal(t, "Quantity", typ.Name)
}

func TestParse_IndexAndUnion(t *testing.T) {
	n, err := Parse("name[0] | telecom[0]")
	require.NoError(t, err)
	bin, ok := n.(*ast.Binary)
	require.True(t, ok)
	require.Equal(t, token.PIPE, bin.Op)
	_, leftIsIndex := bin.Left.(*ast.Index)
	require.True(t, leftIsIndex)
}

func TestParse_SyntaxErrorFailFast(t *testing.T) {
	_, err := Parse("1 +")
	require.Error(t, err)
}

func TestParseDiagnostic_RecoversWithErrorNode(t *testing.T) {
	n, diags := ParseDiagnostic("1 + ")
	require.NotEmpty(t, diags)
	require.NotNil(t, n)
}

func TestParse_CollectionLiteral(t *testing.T) {
	n, err := Parse("{1, 2, 3}")
	require.NoError(t, err)
	coll, ok := n.(*ast.Collection)
	require.True(t, ok)
	require.Len(t, coll.Elements, 3)
}
