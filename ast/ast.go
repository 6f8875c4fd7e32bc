// Package ast defines the FHIRPath abstract syntax tree: a small tagged-
// variant node set shared by the parser, analyzer, and interpreter. Every
// node carries a source Range; the analyzer attaches an optional
// TypeAnnotation in place rather than via a side table, since each node
// type already has a dedicated struct field for it.
package ast

import "github.com/fhirgo/fhirpath/token"

// Range is an inclusive-start, exclusive-end byte-offset span.
type Range struct {
	Start int
	End   int
}

// TypeAnnotation is attached to a node by the analyzer (spec §3 invariant:
// "after analysis, every non-error node carries a type_annotation").
type TypeAnnotation struct {
	Type       TypeRef
	IsSingleton bool
}

// TypeRef is opaque to the AST package; the analyzer and model provider
// define its concrete shape (spec §6: "TypeRef is opaque to the core").
type TypeRef interface {
	TypeName() string
}

// Node is implemented by every concrete AST variant.
type Node interface {
	Range() Range
	node()
}

// ValueKind classifies a Literal node's payload (spec §3).
type ValueKind int

const (
	NullValue ValueKind = iota
	BooleanValue
	IntegerValue
	DecimalValue
	StringValue
	DateValue
	DateTimeValue
	TimeValue
	QuantityValue
)

// Literal is a scalar literal: number, string, boolean, date/time, or
// quantity (number + unit).
type Literal struct {
	Rng        Range
	ValueKind  ValueKind
	Raw        string // original lexeme(s), for the evaluator to parse
	Unit       string // quantity unit text, UCUM or calendar-duration keyword; empty otherwise
	Annotation *TypeAnnotation
}

func (n *Literal) Range() Range { return n.Rng }
func (*Literal) node()          {}

// Identifier is a lowercase-leading name: a property navigation step, or
// (only at the very start of an expression, with no input type) possibly a
// type name the analyzer resolves instead.
type Identifier struct {
	Rng        Range
	Name       string
	Annotation *TypeAnnotation
}

func (n *Identifier) Range() Range { return n.Rng }
func (*Identifier) node()          {}

// TypeOrIdentifier is an uppercase-leading name: a candidate type reference
// in `is`/`as`/`ofType` position, or a property name otherwise.
type TypeOrIdentifier struct {
	Rng        Range
	Name       string
	Qualifier  string // optional dotted namespace prefix, e.g. "FHIR" in FHIR.Patient
	Annotation *TypeAnnotation
}

func (n *TypeOrIdentifier) Range() Range { return n.Rng }
func (*TypeOrIdentifier) node()          {}

// VariableKind distinguishes the four spellings of Variable.
type VariableKind int

const (
	VarThis VariableKind = iota
	VarIndex
	VarTotal
	VarEnv
)

// Variable covers $this, $index, $total, and %name.
type Variable struct {
	Rng        Range
	Kind       VariableKind
	Name       string // populated for VarEnv; empty otherwise
	Annotation *TypeAnnotation
}

func (n *Variable) Range() Range { return n.Rng }
func (*Variable) node()          {}

// Binary is a binary operator application. OpRef is the registry entry
// resolved during parsing (opaque here; see registry.Entry).
type Binary struct {
	Rng        Range
	Op         token.Kind
	Left       Node
	Right      Node
	OpRef      any
	Annotation *TypeAnnotation
}

func (n *Binary) Range() Range { return n.Rng }
func (*Binary) node()          {}

// Unary is a prefix operator application (+ or -). There is no prefix
// `not`; `not()` is parsed as a function call.
type Unary struct {
	Rng        Range
	Op         token.Kind
	Operand    Node
	OpRef      any
	Annotation *TypeAnnotation
}

func (n *Unary) Range() Range { return n.Rng }
func (*Unary) node()          {}

// Function is a call `callee(args...)`. Callee is typically an Identifier;
// the parser also admits keyword tokens re-interpreted as method names
// after a dot. OpRef is the resolved registry.Entry for the function name,
// when known at parse time.
type Function struct {
	Rng        Range
	Callee     Node
	Name       string
	Arguments  []Node
	OpRef      any
	Annotation *TypeAnnotation
}

func (n *Function) Range() Range { return n.Rng }
func (*Function) node()          {}

// Index is `collection[index_expr]`.
type Index struct {
	Rng        Range
	Collection Node
	IndexExpr  Node
	Annotation *TypeAnnotation
}

func (n *Index) Range() Range { return n.Rng }
func (*Index) node()          {}

// Collection is a literal `{}` or `{e1, e2, ...}`.
type Collection struct {
	Rng        Range
	Elements   []Node
	Annotation *TypeAnnotation
}

func (n *Collection) Range() Range { return n.Rng }
func (*Collection) node()          {}

// ErrorNode marks a syntax fault encountered during error-recovery parsing.
// Only ever produced when recovery mode is active; after a successful
// parse (no diagnostics) no ErrorNode appears (spec §3 invariant).
type ErrorNode struct {
	Rng            Range
	ExpectedKinds  []token.Kind
	DiagnosticCode string
}

func (n *ErrorNode) Range() Range { return n.Rng }
func (*ErrorNode) node()          {}

// Incomplete wraps a partially-parsed node together with the names of the
// syntactic parts that could not be recovered (e.g. a function call missing
// its closing paren).
type Incomplete struct {
	Rng          Range
	Partial      Node
	MissingParts []string
}

func (n *Incomplete) Range() Range { return n.Rng }
func (*Incomplete) node()          {}

// SetAnnotation stores a type annotation into whichever node variant n is.
// It is a no-op for ErrorNode/Incomplete, which the analyzer never
// annotates (spec §3: "after a successful parse ... after analysis, every
// non-error node carries a type_annotation").
func SetAnnotation(n Node, ann *TypeAnnotation) {
	switch v := n.(type) {
	case *Literal:
		v.Annotation = ann
	case *Identifier:
		v.Annotation = ann
	case *TypeOrIdentifier:
		v.Annotation = ann
	case *Variable:
		v.Annotation = ann
	case *Binary:
		v.Annotation = ann
	case *Unary:
		v.Annotation = ann
	case *Function:
		v.Annotation = ann
	case *Index:
		v.Annotation = ann
	case *Collection:
		v.Annotation = ann
	}
}

// Annotation retrieves whatever type annotation the analyzer stored on n,
// or nil if n is unannotated (or is an ErrorNode/Incomplete).
func Annotation(n Node) *TypeAnnotation {
	switch v := n.(type) {
	case *Literal:
		return v.Annotation
	case *Identifier:
		return v.Annotation
	case *TypeOrIdentifier:
		return v.Annotation
	case *Variable:
		return v.Annotation
	case *Binary:
		return v.Annotation
	case *Unary:
		return v.Annotation
	case *Function:
		return v.Annotation
	case *Index:
		return v.Annotation
	case *Collection:
		return v.Annotation
	default:
		return nil
	}
}

// Valid reports whether start <= end and the range fits within srcLen,
// per spec §3's range invariant.
func (r Range) Valid(srcLen int) bool {
	return r.Start >= 0 && r.Start <= r.End && r.End <= srcLen
}
