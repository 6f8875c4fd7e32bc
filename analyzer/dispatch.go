package analyzer

import (
	"github.com/fhirgo/fhirpath/ast"
	"github.com/fhirgo/fhirpath/diag"
	"github.com/fhirgo/fhirpath/registry"
	"github.com/fhirgo/fhirpath/token"
	"github.com/fhirgo/fhirpath/types"
)

// analyzeBinary infers a Binary node's type. The dot operator is special:
// its right side is analyzed with the left side's output as input, rather
// than through the owning registry entry (dot has no registry.Entry — the
// parser never sets one for it, spec §4.2).
func (a *Analyzer) analyzeBinary(n *ast.Binary, input registry.TypeInfo, col *diag.Collector) registry.TypeInfo {
	if n.Op == token.DOT {
		left := a.analyze(n.Left, input, col)
		right := a.analyze(n.Right, left, col)
		ast.SetAnnotation(n, &ast.TypeAnnotation{Type: right.Type, IsSingleton: right.Singleton})
		return right
	}

	left := a.analyze(n.Left, input, col)
	right := a.analyze(n.Right, input, col)

	entry, _ := n.OpRef.(*registry.Entry)
	out := a.runEntry(entry, input, []registry.TypeInfo{left, right}, n, col)
	ast.SetAnnotation(n, &ast.TypeAnnotation{Type: out.Type, IsSingleton: out.Singleton})
	return out
}

func (a *Analyzer) analyzeUnary(n *ast.Unary, input registry.TypeInfo, col *diag.Collector) registry.TypeInfo {
	operand := a.analyze(n.Operand, input, col)
	entry, _ := n.OpRef.(*registry.Entry)
	out := a.runEntry(entry, input, []registry.TypeInfo{operand}, n, col)
	ast.SetAnnotation(n, &ast.TypeAnnotation{Type: out.Type, IsSingleton: out.Singleton})
	return out
}

// analyzeFunction infers a Function call's type. A handful of functions
// have output types that depend on their deferred (lambda) argument rather
// than on a fixed Signature.Output, and are special-cased below; everything
// else goes through the generic Signature-driven path (runEntry).
func (a *Analyzer) analyzeFunction(n *ast.Function, input registry.TypeInfo, col *diag.Collector) registry.TypeInfo {
	entry, ok := n.OpRef.(*registry.Entry)
	if !ok || entry == nil {
		entry, ok = a.Reg.GetByName(n.Name)
	}
	if !ok || entry == nil {
		col.Add(diag.Diagnostic{Severity: diag.Error, Code: diag.UnknownFunction, Range: toRange(n), Message: "unknown function " + n.Name})
		out := registry.TypeInfo{Type: types.Any, Singleton: false}
		ast.SetAnnotation(n, &ast.TypeAnnotation{Type: out.Type, IsSingleton: out.Singleton})
		return out
	}

	// is/as/ofType's argument names a type rather than evaluating to one;
	// skip the ordinary per-argument type-check entirely and resolve it
	// through the Provider instead.
	if n.Name == "is" || n.Name == "as" || n.Name == "ofType" {
		out := a.analyzeTypeSpecifierCall(n, input, col)
		ast.SetAnnotation(n, &ast.TypeAnnotation{Type: out.Type, IsSingleton: out.Singleton})
		return out
	}

	// Analyze every argument so every sub-node gets annotated, even when its
	// result doesn't directly drive the call's own output type. Lambda
	// (ExpressionParam) arguments are analyzed against $this's type (the
	// element type of input) rather than the outer input, mirroring the
	// per-item iteration the interpreter performs at runtime.
	elemType := registry.TypeInfo{Type: input.Type, Singleton: true}
	argTypes := make([]registry.TypeInfo, len(n.Arguments))
	for i, argNode := range n.Arguments {
		argInput := input
		if i < len(entry.Signature.Parameters) && entry.Signature.Parameters[i].Kind == registry.ExpressionParam {
			argInput = elemType
		}
		argTypes[i] = a.analyze(argNode, argInput, col)
	}

	var out registry.TypeInfo
	switch n.Name {
	case "where", "select", "all", "exists", "repeat":
		out = a.analyzeLambdaOutput(n.Name, input, argTypes)
	case "iif":
		out = a.analyzeIif(argTypes, input)
	case "aggregate":
		out = registry.TypeInfo{Type: types.Any, Singleton: false}
	default:
		out = a.runEntry(entry, input, argTypes, n, col)
	}
	ast.SetAnnotation(n, &ast.TypeAnnotation{Type: out.Type, IsSingleton: out.Singleton})
	return out
}

// analyzeLambdaOutput derives where/select/all/exists/repeat's output type:
// where produces a filtered view of input (same element type, never a
// guaranteed singleton); select/repeat's output type is whatever its
// projection expression evaluates to; all/exists produce a singleton
// Boolean.
func (a *Analyzer) analyzeLambdaOutput(name string, input registry.TypeInfo, argTypes []registry.TypeInfo) registry.TypeInfo {
	switch name {
	case "where", "repeat":
		if name == "repeat" && len(argTypes) > 0 {
			return registry.TypeInfo{Type: argTypes[0].Type, Singleton: false}
		}
		return registry.TypeInfo{Type: input.Type, Singleton: false}
	case "select":
		if len(argTypes) > 0 {
			return registry.TypeInfo{Type: argTypes[0].Type, Singleton: false}
		}
		return registry.TypeInfo{Type: types.Any, Singleton: false}
	case "all", "exists":
		return registry.TypeInfo{Type: types.Boolean, Singleton: true}
	default:
		return registry.TypeInfo{Type: types.Any, Singleton: false}
	}
}

// analyzeTypeSpecifierCall handles `.is(Type)`/`.as(Type)`/`.ofType(Type)`
// called in method-call position: the argument names a type rather than
// evaluating to one, so it is resolved through the Provider instead of
// being type-checked as an ordinary expression.
func (a *Analyzer) analyzeTypeSpecifierCall(n *ast.Function, input registry.TypeInfo, col *diag.Collector) registry.TypeInfo {
	var typeName string
	if len(n.Arguments) > 0 {
		switch t := n.Arguments[0].(type) {
		case *ast.TypeOrIdentifier:
			typeName = t.Name
		case *ast.Identifier:
			typeName = t.Name
		}
	}
	switch n.Name {
	case "is":
		return registry.TypeInfo{Type: types.Boolean, Singleton: true}
	case "as":
		if ref, ok := a.Provider.ResolveType(typeName); ok {
			return registry.TypeInfo{Type: ref, Singleton: true}
		}
		return registry.TypeInfo{Type: types.Any, Singleton: true}
	case "ofType":
		if ref, ok := a.Provider.ResolveType(typeName); ok {
			return registry.TypeInfo{Type: ref, Singleton: false}
		}
		return registry.TypeInfo{Type: types.Any, Singleton: false}
	default:
		return registry.TypeInfo{Type: types.Any, Singleton: false}
	}
}

// analyzeIif's output type is the common type of its then/else branches
// (spec §4.4's "output type may be ... a join of operand types").
func (a *Analyzer) analyzeIif(argTypes []registry.TypeInfo, input registry.TypeInfo) registry.TypeInfo {
	if len(argTypes) < 2 {
		return registry.TypeInfo{Type: types.Any, Singleton: false}
	}
	thenT := argTypes[1]
	if len(argTypes) < 3 {
		return registry.TypeInfo{Type: thenT.Type, Singleton: false}
	}
	elseT := argTypes[2]
	if thenT.Type == elseT.Type {
		return registry.TypeInfo{Type: thenT.Type, Singleton: thenT.Singleton && elseT.Singleton}
	}
	if ct, ok := a.Provider.(types.CommonTyper); ok {
		if common, ok := ct.CommonType([]types.Ref{thenT.Type, elseT.Type}); ok {
			return registry.TypeInfo{Type: common, Singleton: false}
		}
	}
	return registry.TypeInfo{Type: types.Any, Singleton: false}
}

// runEntry implements the generic default-analyze behavior every entry
// without a custom Analyze hook gets (spec §4.4): derive the output type
// from Signature.OutputRule, optionally flagging a type mismatch against
// Signature.Parameters in Strict mode.
func (a *Analyzer) runEntry(entry *registry.Entry, input registry.TypeInfo, operands []registry.TypeInfo, node ast.Node, col *diag.Collector) registry.TypeInfo {
	if entry == nil {
		return registry.TypeInfo{Type: types.Any, Singleton: false}
	}
	if entry.Analyze != nil {
		res := entry.Analyze(registry.AnalyzeArgs{Entry: entry, Input: input, Operands: operands, Mode: a.Mode, Provider: a.Provider, Node: node})
		for _, d := range res.Diagnostics {
			col.Add(d)
		}
		return res.Output
	}
	return a.defaultAnalyze(entry, operands)
}

func (a *Analyzer) defaultAnalyze(entry *registry.Entry, operands []registry.TypeInfo) registry.TypeInfo {
	sig := entry.Signature
	switch sig.OutputRule {
	case registry.OutputConcrete:
		return registry.TypeInfo{Type: sig.Output, Singleton: sig.InputCardinality == registry.CardSingleton}
	case registry.OutputPreserveInput:
		if len(operands) > 0 {
			return registry.TypeInfo{Type: operands[0].Type, Singleton: operands[0].Singleton}
		}
		return registry.TypeInfo{Type: types.Any, Singleton: false}
	case registry.OutputPromoteNumeric:
		if len(operands) >= 2 {
			return registry.TypeInfo{Type: types.Promote(operands[0].Type, operands[1].Type), Singleton: true}
		}
		if len(operands) == 1 {
			return registry.TypeInfo{Type: operands[0].Type, Singleton: true}
		}
		return registry.TypeInfo{Type: types.Decimal, Singleton: true}
	case registry.OutputAny:
		return registry.TypeInfo{Type: types.Any, Singleton: false}
	default:
		return registry.TypeInfo{Type: types.Any, Singleton: false}
	}
}
