package ast

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fhirgo/fhirpath/token"
)

type stubTypeRef string

func (s stubTypeRef) TypeName() string { return string(s) }

func TestSetAnnotationAndAnnotation_RoundTripPerVariant(t *testing.T) {
	ann := &TypeAnnotation{Type: stubTypeRef("Integer"), IsSingleton: true}

	nodes := []Node{
		&Literal{Rng: Range{0, 1}, ValueKind: IntegerValue},
		&Identifier{Rng: Range{0, 1}, Name: "foo"},
		&TypeOrIdentifier{Rng: Range{0, 1}, Name: "Patient"},
		&Variable{Rng: Range{0, 1}, Kind: VarThis},
		&Binary{Rng: Range{0, 1}, Op: token.PLUS},
		&Unary{Rng: Range{0, 1}, Op: token.MINUS},
		&Function{Rng: Range{0, 1}, Name: "where"},
		&Index{Rng: Range{0, 1}},
		&Collection{Rng: Range{0, 1}},
	}

	for _, n := range nodes {
		require.Nil(t, Annotation(n))
		SetAnnotation(n, ann)
		require.Same(t, ann, Annotation(n))
	}
}

func TestAnnotation_ErrorAndIncompleteAreAlwaysUnannotated(t *testing.T) {
	errNode := &ErrorNode{Rng: Range{0, 1}, DiagnosticCode: "UNEXPECTED_TOKEN"}
	incomplete := &Incomplete{Rng: Range{0, 1}}

	require.Nil(t, Annotation(errNode))
	require.Nil(t, Annotation(incomplete))

	// SetAnnotation is documented as a no-op for these variants.
	SetAnnotation(errNode, &TypeAnnotation{Type: stubTypeRef("Boolean")})
	SetAnnotation(incomplete, &TypeAnnotation{Type: stubTypeRef("Boolean")})
	require.Nil(t, Annotation(errNode))
	require.Nil(t, Annotation(incomplete))
}

func TestRange_Valid(t *testing.T) {
	require.True(t, Range{Start: 0, End: 5}.Valid(5))
	require.True(t, Range{Start: 2, End: 2}.Valid(5))
	require.False(t, Range{Start: 3, End: 1}.Valid(5))
	require.False(t, Range{Start: 0, End: 6}.Valid(5))
	require.False(t, Range{Start: -1, End: 2}.Valid(5))
}

func TestNodeVariants_ImplementNodeInterface(t *testing.T) {
	var nodes = []Node{
		&Literal{Rng: Range{0, 1}},
		&Identifier{Rng: Range{1, 2}},
		&TypeOrIdentifier{Rng: Range{2, 3}},
		&Variable{Rng: Range{3, 4}},
		&Binary{Rng: Range{4, 5}},
		&Unary{Rng: Range{5, 6}},
		&Function{Rng: Range{6, 7}},
		&Index{Rng: Range{7, 8}},
		&Collection{Rng: Range{8, 9}},
		&ErrorNode{Rng: Range{9, 10}},
		&Incomplete{Rng: Range{10, 11}},
	}
	for i, n := range nodes {
		require.Equal(t, i, n.Range().Start)
	}
}
