// Package fhirpath is the public entry point: Parse/Analyze/Evaluate a
// FHIRPath expression against an input collection, wiring the lexer,
// parser, analyzer, and interpreter pipeline together (spec §2, §6).
//
// Grounded on the teacher's main.go top-level lex→parse→eval wiring
// (akashmaji946-go-mix/main/main.go), trimmed of its REPL/file/CLI
// concerns, which spec.md §1 places out of scope.
package fhirpath

import (
	"github.com/pkg/errors"

	"github.com/fhirgo/fhirpath/analyzer"
	"github.com/fhirgo/fhirpath/ast"
	"github.com/fhirgo/fhirpath/diag"
	"github.com/fhirgo/fhirpath/fpcontext"
	"github.com/fhirgo/fhirpath/interp"
	"github.com/fhirgo/fhirpath/parser"
	"github.com/fhirgo/fhirpath/registry"
	"github.com/fhirgo/fhirpath/types"
	"github.com/fhirgo/fhirpath/value"
)

// Expression is a parsed (and optionally analyzed) FHIRPath expression,
// ready to evaluate repeatedly against different inputs/contexts without
// re-parsing.
type Expression struct {
	Root ast.Node
	reg  *registry.Registry
}

// Parse parses src in fail-fast mode, returning the first syntax error
// encountered. Use ParseDiagnostic for best-effort recovery.
func Parse(src string) (*Expression, error) {
	n, err := parser.Parse(src)
	if err != nil {
		return nil, err
	}
	return &Expression{Root: n, reg: registry.Default()}, nil
}

// ParseDiagnostic parses src in recovery mode, always returning an
// Expression (possibly embedding error nodes) alongside every diagnostic
// collected.
func ParseDiagnostic(src string) (*Expression, []diag.Diagnostic) {
	n, diags := parser.ParseDiagnostic(src)
	return &Expression{Root: n, reg: registry.Default()}, diags
}

// MustParse parses src and panics on syntax error; for tests and
// expressions known at compile time.
func MustParse(src string) *Expression {
	e, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return e
}

// AnalyzeOptions configures a type-inference pass over an Expression.
type AnalyzeOptions struct {
	Provider types.Provider
	Mode     registry.AnalyzeMode
	Input    types.Ref
}

// Analyze runs static type inference over e, annotating its AST in place
// and returning the expression's overall inferred type plus any type
// diagnostics (spec §4.4).
func (e *Expression) Analyze(opts AnalyzeOptions) (registry.TypeInfo, []diag.Diagnostic) {
	provider := opts.Provider
	if provider == nil {
		provider = types.NoProvider{}
	}
	inputType := opts.Input
	if inputType == nil {
		inputType = types.Any
	}
	a := analyzer.NewWithOptions(e.reg, provider, opts.Mode)
	return a.Analyze(e.Root, registry.TypeInfo{Type: inputType, Singleton: true})
}

// EvalOptions configures one evaluation of an Expression.
type EvalOptions struct {
	// Vars supplies %-prefixed environment variable bindings (e.g. %ucum,
	// a caller-defined %context override).
	Vars map[string]value.Collection
	// Trace receives trace() calls; defaults to fpcontext.SlogTraceSink{}.
	Trace fpcontext.TraceSink
}

// Evaluate evaluates e against input, returning the resulting collection.
func (e *Expression) Evaluate(input value.Collection, opts EvalOptions) (value.Collection, error) {
	ctx := fpcontext.New(input)
	if opts.Vars != nil {
		ctx = ctx.WithEnv(opts.Vars)
	}
	if opts.Trace != nil {
		ctx.Trace = opts.Trace
	}
	it := interp.NewWithRegistry(e.reg)
	out, _, err := it.Eval(e.Root, input, ctx)
	if err != nil {
		return nil, errors.Wrap(err, "evaluate")
	}
	return out, nil
}

// EvaluateString is a convenience wrapper: parse src and evaluate it
// against input in one call, for callers that don't need to reuse a
// parsed Expression across multiple inputs.
func EvaluateString(src string, input value.Collection) (value.Collection, error) {
	e, err := Parse(src)
	if err != nil {
		return nil, err
	}
	return e.Evaluate(input, EvalOptions{})
}
