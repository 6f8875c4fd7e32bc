// Package analyzer implements FHIRPath's static type-inference pass: a
// single post-order walk over the AST that annotates every node with its
// inferred TypeInfo (type + singleton-ness), consulting the registry's
// Signature for each operator/function and a types.Provider for property
// and type-name resolution (spec §4.4).
//
// Grounded on the teacher's single-pass type-checking walk pattern (akashmaji946-go-mix
// has no separate analyzer — type errors surface only at eval time — so this
// package's post-order-visitor shape follows the teacher's eval.go recursion
// structure instead, generalized from "evaluate" to "infer a type").
package analyzer

import (
	"github.com/fhirgo/fhirpath/ast"
	"github.com/fhirgo/fhirpath/diag"
	"github.com/fhirgo/fhirpath/registry"
	"github.com/fhirgo/fhirpath/types"
)

// Analyzer walks an AST computing (and annotating, via ast.SetAnnotation)
// each node's static type.
type Analyzer struct {
	Reg      *registry.Registry
	Provider types.Provider
	Mode     registry.AnalyzeMode
}

// New creates an Analyzer over the default registry with no model provider
// (types.NoProvider), running in Lenient mode.
func New() *Analyzer {
	return &Analyzer{Reg: registry.Default(), Provider: types.NoProvider{}, Mode: registry.Lenient}
}

// NewWithOptions creates a fully-configured Analyzer.
func NewWithOptions(reg *registry.Registry, provider types.Provider, mode registry.AnalyzeMode) *Analyzer {
	if provider == nil {
		provider = types.NoProvider{}
	}
	return &Analyzer{Reg: reg, Provider: provider, Mode: mode}
}

// Analyze infers node's type given the surrounding input type (the type of
// the collection the top-level expression navigates from), annotating every
// non-error node along the way (spec §3 invariant: "after analysis, every
// non-error node carries a type_annotation").
func (a *Analyzer) Analyze(node ast.Node, input registry.TypeInfo) (registry.TypeInfo, []diag.Diagnostic) {
	col := diag.NewCollector()
	out := a.analyze(node, input, col)
	return out, col.All()
}

func (a *Analyzer) analyze(node ast.Node, input registry.TypeInfo, col *diag.Collector) registry.TypeInfo {
	if node == nil {
		return registry.TypeInfo{Type: types.Any, Singleton: true}
	}
	switch n := node.(type) {
	case *ast.Literal:
		out := a.analyzeLiteral(n)
		ast.SetAnnotation(n, &ast.TypeAnnotation{Type: out.Type, IsSingleton: out.Singleton})
		return out

	case *ast.Identifier:
		out := a.analyzeProperty(input, n.Name, n, col)
		ast.SetAnnotation(n, &ast.TypeAnnotation{Type: out.Type, IsSingleton: out.Singleton})
		return out

	case *ast.TypeOrIdentifier:
		out := a.analyzeProperty(input, n.Name, n, col)
		ast.SetAnnotation(n, &ast.TypeAnnotation{Type: out.Type, IsSingleton: out.Singleton})
		return out

	case *ast.Variable:
		out := a.analyzeVariable(n, input)
		ast.SetAnnotation(n, &ast.TypeAnnotation{Type: out.Type, IsSingleton: out.Singleton})
		return out

	case *ast.Binary:
		return a.analyzeBinary(n, input, col)

	case *ast.Unary:
		return a.analyzeUnary(n, input, col)

	case *ast.Function:
		return a.analyzeFunction(n, input, col)

	case *ast.Index:
		a.analyze(n.Collection, input, col)
		a.analyze(n.IndexExpr, input, col)
		out := registry.TypeInfo{Type: types.Any, Singleton: true}
		if ann := ast.Annotation(n.Collection); ann != nil {
			out.Type = ann.Type
		}
		ast.SetAnnotation(n, &ast.TypeAnnotation{Type: out.Type, IsSingleton: out.Singleton})
		return out

	case *ast.Collection:
		var elemType types.Ref = types.Any
		for i, el := range n.Elements {
			t := a.analyze(el, input, col)
			if i == 0 {
				elemType = t.Type
			} else if elemType != t.Type {
				elemType = types.Any
			}
		}
		out := registry.TypeInfo{Type: elemType, Singleton: len(n.Elements) == 1}
		ast.SetAnnotation(n, &ast.TypeAnnotation{Type: out.Type, IsSingleton: out.Singleton})
		return out

	case *ast.ErrorNode, *ast.Incomplete:
		return registry.TypeInfo{Type: types.Any, Singleton: false}

	default:
		return registry.TypeInfo{Type: types.Any, Singleton: true}
	}
}

func (a *Analyzer) analyzeLiteral(n *ast.Literal) registry.TypeInfo {
	switch n.ValueKind {
	case ast.BooleanValue:
		return registry.TypeInfo{Type: types.Boolean, Singleton: true}
	case ast.IntegerValue:
		return registry.TypeInfo{Type: types.Integer, Singleton: true}
	case ast.DecimalValue:
		return registry.TypeInfo{Type: types.Decimal, Singleton: true}
	case ast.StringValue:
		return registry.TypeInfo{Type: types.String, Singleton: true}
	case ast.DateValue:
		return registry.TypeInfo{Type: types.Date, Singleton: true}
	case ast.DateTimeValue:
		return registry.TypeInfo{Type: types.DateTime, Singleton: true}
	case ast.TimeValue:
		return registry.TypeInfo{Type: types.Time, Singleton: true}
	case ast.QuantityValue:
		return registry.TypeInfo{Type: types.Quantity, Singleton: true}
	default:
		return registry.TypeInfo{Type: types.Any, Singleton: false}
	}
}

// analyzeProperty resolves a property-navigation step's type through the
// Provider, falling back to Any/non-singleton (an unconstrained guess) when
// no Provider schema covers it — spec §4.4's lenient-mode default for
// unknown properties over untyped data.
func (a *Analyzer) analyzeProperty(input registry.TypeInfo, name string, node ast.Node, col *diag.Collector) registry.TypeInfo {
	if input.Type == nil {
		return registry.TypeInfo{Type: types.Any, Singleton: false}
	}
	propType, singleton, ok := a.Provider.PropertyType(input.Type, name)
	if !ok {
		if a.Mode == registry.Strict {
			col.Add(diag.Diagnostic{Severity: diag.Error, Code: diag.UnknownProperty, Range: toRange(node), Message: "unknown property " + name})
		}
		return registry.TypeInfo{Type: types.Any, Singleton: false}
	}
	return registry.TypeInfo{Type: propType, Singleton: singleton}
}

func (a *Analyzer) analyzeVariable(n *ast.Variable, input registry.TypeInfo) registry.TypeInfo {
	switch n.Kind {
	case ast.VarThis:
		return input
	case ast.VarIndex:
		return registry.TypeInfo{Type: types.Integer, Singleton: true}
	case ast.VarTotal:
		return registry.TypeInfo{Type: types.Any, Singleton: false}
	case ast.VarEnv:
		switch n.Name {
		case "context", "resource", "rootResource":
			return input
		default:
			return registry.TypeInfo{Type: types.Any, Singleton: true}
		}
	default:
		return registry.TypeInfo{Type: types.Any, Singleton: true}
	}
}

func toRange(n ast.Node) diag.Range {
	r := n.Range()
	return diag.Range{Start: r.Start, End: r.End}
}
