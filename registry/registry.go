// Package registry is the single source of truth for every FHIRPath
// operator, function, and literal kind: syntax metadata (token,
// precedence, associativity, form), type signature, analyzer hook, and
// evaluator hook (spec §4.3). The parser asks it for precedence and form;
// the analyzer asks it for signatures and invokes Analyze; the interpreter
// invokes Evaluate. New operations are added in exactly one place.
package registry

import (
	"sync"

	"github.com/fhirgo/fhirpath/ast"
	"github.com/fhirgo/fhirpath/diag"
	"github.com/fhirgo/fhirpath/fpcontext"
	"github.com/fhirgo/fhirpath/token"
	"github.com/fhirgo/fhirpath/types"
	"github.com/fhirgo/fhirpath/value"
)

// Form discriminates how an operator entry is invoked syntactically,
// mirroring the teacher's UnaryFuncs/BinaryFuncs split
// (akashmaji946-go-mix/parser/parser_precedence.go) generalized with a
// Call form for functions and a Literal form for literal kinds.
type Form int

const (
	Prefix Form = iota
	Infix
	Postfix
	Call
	LiteralForm
)

// Associativity for infix operators. Every built-in infix entry is
// registered LeftAssoc, and the parser always parses the right operand at
// precedence+1 without consulting this field.
type Associativity int

const (
	LeftAssoc Associativity = iota
	RightAssoc
)

// Precedence levels, low to high, grounded on the teacher's named-constant
// precedence table (parser_precedence.go) but following spec §4.2's table
// exactly rather than a C-family language's.
const (
	PrecImplies = 10
	PrecOrXor   = 20
	PrecAnd     = 30
	PrecInContains = 40
	PrecEquality   = 50 // = != ~ !~
	PrecRelational = 60 // < > <= >=
	PrecUnion      = 70 // |
	PrecIsAs       = 80
	PrecAdditive   = 90  // + - &
	PrecMultiplicative = 100 // * / div mod
	PrecUnary          = 110 // unary +/-
	PrecDotIndexCall   = 120 // . [ ] f(...)
)

// Kind classifies a registry entry.
type Kind int

const (
	OperatorKind Kind = iota
	FunctionKind
	LiteralKind
)

// ParamKind distinguishes eager (`value`) from deferred (`expression`)
// function parameters (spec §4.2 "Function calls"; §4.3 Signature).
type ParamKind int

const (
	ValueParam ParamKind = iota
	ExpressionParam
)

// Cardinality constrains how many items a parameter or the input accepts.
type Cardinality int

const (
	CardSingleton Cardinality = iota
	CardCollection
	CardAny
)

// Param describes one function/operator parameter.
type Param struct {
	Name        string
	Type        types.Ref
	Cardinality Cardinality
	Kind        ParamKind
	Optional    bool
}

// OutputRule selects how an entry's output type is derived (spec §4.3
// "Output type may be ... preserve-input ... promote-numeric ... Any").
type OutputRule int

const (
	OutputConcrete OutputRule = iota
	OutputPreserveInput
	OutputPromoteNumeric
	OutputAny
)

// Signature is an entry's type contract.
type Signature struct {
	InputType        types.Ref
	InputCardinality Cardinality
	Parameters       []Param
	Output           types.Ref
	OutputRule       OutputRule
	PropagatesEmpty  bool
	Deterministic    bool
}

// Syntax is an entry's parser-facing metadata.
type Syntax struct {
	Form       Form
	Token      token.Kind
	Precedence int
	Assoc      Associativity
}

// TypeInfo pairs a type with its singleton-ness, the unit the analyzer
// threads through a walk (spec §4.4).
type TypeInfo struct {
	Type      types.Ref
	Singleton bool
}

// AnalyzeMode selects strict vs lenient type-mismatch handling (spec
// §4.4).
type AnalyzeMode int

const (
	Lenient AnalyzeMode = iota
	Strict
)

// AnalyzeArgs is passed to an entry's Analyze hook.
type AnalyzeArgs struct {
	Entry    *Entry
	Input    TypeInfo
	Operands []TypeInfo
	Mode     AnalyzeMode
	Provider types.Provider
	Node     ast.Node
}

// AnalyzeResult is an Analyze hook's return value.
type AnalyzeResult struct {
	Output      TypeInfo
	Diagnostics []diag.Diagnostic
}

// AnalyzeHook implements spec §4.4's "analyze_hook": operand-count/type/
// cardinality checking plus output-type derivation for one entry.
type AnalyzeHook func(AnalyzeArgs) AnalyzeResult

// EvalFunc lets an Evaluate hook recursively evaluate a deferred
// (expression-kind) argument or sub-node; supplied by the interpreter at
// call time so the registry package never needs to import interp.
type EvalFunc func(node ast.Node, input value.Collection, ctx *fpcontext.Context) (value.Collection, *fpcontext.Context, error)

// EvalArgs is passed to an entry's Evaluate hook.
type EvalArgs struct {
	Input value.Collection
	// Left/Right are populated for operator (Infix/Prefix) entries.
	Left, Right ast.Node
	// Args holds the raw argument AST nodes for Call-form entries; Kind
	// (Param.Kind) on the matching Signature.Parameters entry says whether
	// the interpreter has already evaluated args[i] into EvaluatedArgs[i]
	// (ValueParam) or whether the hook must call Eval itself
	// (ExpressionParam).
	Args          []ast.Node
	EvaluatedArgs []value.Collection // nil entries correspond to ExpressionParam args
	Ctx           *fpcontext.Context
	Eval          EvalFunc
	Node          ast.Node
}

// EvalResult is an Evaluate hook's return value.
type EvalResult struct {
	Output value.Collection
	Ctx    *fpcontext.Context // nil if unchanged from EvalArgs.Ctx
}

// EvaluateHook implements spec §4.5's per-entry "evaluate_hook".
type EvaluateHook func(EvalArgs) (EvalResult, error)

// Entry is one registry record (spec §3 "Registry entry").
type Entry struct {
	Name      string
	Kind      Kind
	Syntax    Syntax
	Signature Signature
	Analyze   AnalyzeHook
	Evaluate  EvaluateHook
}

type tokenFormKey struct {
	tok  token.Kind
	form Form
}

// Registry is the process-wide, initialize-once table (spec §4.3,
// §5 "the registry is process-wide and written once during
// initialization; after init it is read-only and lock-free to consult").
type Registry struct {
	byName  map[string]*Entry
	byToken map[tokenFormKey]*Entry
}

func newRegistry() *Registry {
	return &Registry{
		byName:  make(map[string]*Entry),
		byToken: make(map[tokenFormKey]*Entry),
	}
}

func (r *Registry) register(e *Entry) {
	r.byName[e.Name] = e
	if e.Kind == OperatorKind {
		r.byToken[tokenFormKey{tok: e.Syntax.Token, form: e.Syntax.Form}] = e
	}
}

// GetByName looks up an operator or function entry by its registered name.
func (r *Registry) GetByName(name string) (*Entry, bool) {
	e, ok := r.byName[name]
	return e, ok
}

// GetByToken looks up an operator entry by its token and syntactic form.
func (r *Registry) GetByToken(tok token.Kind, form Form) (*Entry, bool) {
	e, ok := r.byToken[tokenFormKey{tok: tok, form: form}]
	return e, ok
}

// GetPrecedence returns the infix precedence for tok, or -1 if tok is not
// a registered infix operator token.
func (r *Registry) GetPrecedence(tok token.Kind) int {
	if e, ok := r.GetByToken(tok, Infix); ok {
		return e.Syntax.Precedence
	}
	return -1
}

// IsKeyword reports whether tok is a registered keyword-operator token
// (and/or/xor/implies/not/in/contains/is/as/div/mod).
func (r *Registry) IsKeyword(tok token.Kind) bool {
	return token.IsKeywordOperator(tok)
}

// OperatorsByForm returns every registered operator entry of the given
// form.
func (r *Registry) OperatorsByForm(form Form) []*Entry {
	var out []*Entry
	for k, e := range r.byToken {
		if k.form == form {
			out = append(out, e)
		}
	}
	return out
}

// AllFunctions returns every registered function entry.
func (r *Registry) AllFunctions() []*Entry {
	var out []*Entry
	for _, e := range r.byName {
		if e.Kind == FunctionKind {
			out = append(out, e)
		}
	}
	return out
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns the process-wide registry, building it exactly once
// (spec §5: "populated once at module initialization and is read-only
// thereafter").
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultReg = newRegistry()
		registerOperators(defaultReg)
		registerIterationFunctions(defaultReg)
		registerCollectionFunctions(defaultReg)
		registerStringFunctions(defaultReg)
		registerMathFunctions(defaultReg)
		registerConvertFunctions(defaultReg)
		registerTreeFunctions(defaultReg)
		registerTypeFunctions(defaultReg)
	})
	return defaultReg
}

// New builds a fresh, independently-populated Registry — mainly useful for
// tests that want to register a custom entry without mutating the shared
// process-wide singleton.
func New() *Registry {
	r := newRegistry()
	registerOperators(r)
	registerIterationFunctions(r)
	registerCollectionFunctions(r)
	registerStringFunctions(r)
	registerMathFunctions(r)
	registerConvertFunctions(r)
	registerTreeFunctions(r)
	registerTypeFunctions(r)
	return r
}
