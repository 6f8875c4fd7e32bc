// Package interp implements the FHIRPath tree-walking evaluator: a single
// recursive Eval function that dispatches each AST node to its registry
// entry's Evaluate hook, threading the persistent fpcontext.Context through
// every step (spec §4.5's per-rule evaluation semantics; spec §3's
// "interpreter — tree-walking evaluator consulting the registry per node").
//
// Grounded on the teacher's eval package's single recursive `eval(node,
// env)` dispatcher (akashmaji946-go-mix/eval/eval.go), generalized from a
// statement/expression-node switch to the registry-driven operator/
// function dispatch the rest of this module is built around.
package interp

import (
	"github.com/pkg/errors"

	"github.com/fhirgo/fhirpath/ast"
	"github.com/fhirgo/fhirpath/fpcontext"
	"github.com/fhirgo/fhirpath/registry"
	"github.com/fhirgo/fhirpath/token"
	"github.com/fhirgo/fhirpath/value"
)

// Interpreter holds the registry consulted for every node's semantics.
// Stateless beyond that — all per-evaluation state lives in
// fpcontext.Context, which Eval threads through and returns an updated
// copy of rather than mutating (spec §4.6).
type Interpreter struct {
	Reg *registry.Registry
}

// New creates an Interpreter over the process-wide default registry.
func New() *Interpreter { return &Interpreter{Reg: registry.Default()} }

// NewWithRegistry creates an Interpreter consulting reg instead of the
// default registry.
func NewWithRegistry(reg *registry.Registry) *Interpreter { return &Interpreter{Reg: reg} }

// Eval evaluates node against input (the collection node should navigate
// from) under ctx, returning the resulting collection, the context as it
// stood after evaluating node (reflecting any defineVariable calls along
// the way), and an error for malformed input the registry hooks detect.
func (in *Interpreter) Eval(node ast.Node, input value.Collection, ctx *fpcontext.Context) (value.Collection, *fpcontext.Context, error) {
	if node == nil {
		return nil, ctx, nil
	}
	switch n := node.(type) {
	case *ast.Literal:
		v, err := literalValue(n)
		if err != nil {
			return nil, ctx, errors.Wrap(err, "literal")
		}
		if v == nil {
			return nil, ctx, nil
		}
		return value.Of(v), ctx, nil

	case *ast.Identifier:
		return navigateProperty(input, n.Name), ctx, nil

	case *ast.TypeOrIdentifier:
		return navigateProperty(input, n.Name), ctx, nil

	case *ast.Variable:
		return in.evalVariable(n, ctx)

	case *ast.Binary:
		return in.evalBinary(n, input, ctx)

	case *ast.Unary:
		entry, ok := n.OpRef.(*registry.Entry)
		if !ok {
			return nil, ctx, errors.Errorf("unary operator %s has no resolved registry entry", n.Op)
		}
		res, err := entry.Evaluate(registry.EvalArgs{Input: input, Right: n.Operand, Ctx: ctx, Eval: in.Eval, Node: n})
		if err != nil {
			return nil, ctx, err
		}
		return res.Output, coalesceCtx(res.Ctx, ctx), nil

	case *ast.Function:
		return in.evalFunction(n, input, ctx)

	case *ast.Index:
		return in.evalIndex(n, input, ctx)

	case *ast.Collection:
		var out value.Collection
		cur := ctx
		for _, el := range n.Elements {
			v, c, err := in.Eval(el, input, cur)
			if err != nil {
				return nil, ctx, err
			}
			out = value.Combine(out, v)
			cur = c
		}
		return out, cur, nil

	case *ast.ErrorNode:
		return nil, ctx, errors.Errorf("syntax error at %d-%d", n.Rng.Start, n.Rng.End)

	case *ast.Incomplete:
		return in.Eval(n.Partial, input, ctx)

	default:
		return nil, ctx, errors.Errorf("unhandled node type %T", node)
	}
}

func coalesceCtx(c, fallback *fpcontext.Context) *fpcontext.Context {
	if c != nil {
		return c
	}
	return fallback
}

func (in *Interpreter) evalVariable(n *ast.Variable, ctx *fpcontext.Context) (value.Collection, *fpcontext.Context, error) {
	switch n.Kind {
	case ast.VarThis:
		if ctx.Iter.HasThis {
			return ctx.Iter.This, ctx, nil
		}
		return ctx.Focus, ctx, nil
	case ast.VarIndex:
		if ctx.Iter.HasIndex {
			return value.Of(value.Integer(ctx.Iter.Index)), ctx, nil
		}
		return nil, ctx, nil
	case ast.VarTotal:
		if ctx.Iter.HasTotal {
			return ctx.Iter.Total, ctx, nil
		}
		return nil, ctx, nil
	case ast.VarEnv:
		if v, ok := ctx.LookupVariable(n.Name); ok {
			return v, ctx, nil
		}
		return nil, ctx, errors.Errorf("unknown variable %%%s", n.Name)
	default:
		return nil, ctx, errors.Errorf("unhandled variable kind %d", n.Kind)
	}
}

func (in *Interpreter) evalBinary(n *ast.Binary, input value.Collection, ctx *fpcontext.Context) (value.Collection, *fpcontext.Context, error) {
	if n.Op == token.DOT {
		left, ctx2, err := in.Eval(n.Left, input, ctx)
		if err != nil {
			return nil, ctx, err
		}
		focusCtx := ctx2.WithFocus(left)
		right, ctx3, err := in.Eval(n.Right, left, focusCtx)
		if err != nil {
			return nil, ctx, err
		}
		return right, ctx3, nil
	}
	entry, ok := n.OpRef.(*registry.Entry)
	if !ok {
		return nil, ctx, errors.Errorf("operator %s has no resolved registry entry", n.Op)
	}
	res, err := entry.Evaluate(registry.EvalArgs{Input: input, Left: n.Left, Right: n.Right, Ctx: ctx, Eval: in.Eval, Node: n})
	if err != nil {
		return nil, ctx, err
	}
	return res.Output, coalesceCtx(res.Ctx, ctx), nil
}

func (in *Interpreter) evalIndex(n *ast.Index, input value.Collection, ctx *fpcontext.Context) (value.Collection, *fpcontext.Context, error) {
	coll, ctx2, err := in.Eval(n.Collection, input, ctx)
	if err != nil {
		return nil, ctx, err
	}
	idxColl, ctx3, err := in.Eval(n.IndexExpr, input, ctx2)
	if err != nil {
		return nil, ctx, err
	}
	idxVal, ok := idxColl.Single()
	if !ok {
		return nil, ctx3, nil
	}
	idx, ok := idxVal.(value.Integer)
	if !ok {
		return nil, ctx3, errors.New("index expression is not an integer")
	}
	if idx < 0 || int(idx) >= len(coll) {
		return nil, ctx3, nil
	}
	return value.Of(coll[idx]), ctx3, nil
}

func (in *Interpreter) evalFunction(n *ast.Function, input value.Collection, ctx *fpcontext.Context) (value.Collection, *fpcontext.Context, error) {
	entry, ok := n.OpRef.(*registry.Entry)
	if !ok || entry == nil {
		entry, ok = in.Reg.GetByName(n.Name)
		if !ok {
			return nil, ctx, errors.Errorf("unknown function %q", n.Name)
		}
	}

	evaluated := make([]value.Collection, len(n.Arguments))
	cur := ctx
	for i, param := range entry.Signature.Parameters {
		if i >= len(n.Arguments) {
			break
		}
		if param.Kind == registry.ValueParam {
			v, c, err := in.Eval(n.Arguments[i], input, cur)
			if err != nil {
				return nil, ctx, err
			}
			evaluated[i] = v
			cur = c
		}
	}

	res, err := entry.Evaluate(registry.EvalArgs{
		Input: input, Args: n.Arguments, EvaluatedArgs: evaluated, Ctx: cur, Eval: in.Eval, Node: n,
	})
	if err != nil {
		return nil, ctx, err
	}
	return res.Output, coalesceCtx(res.Ctx, cur), nil
}

// navigateProperty implements spec §4.5 rule 5's implicit per-item
// iteration: a property step applies to every item of input, and the
// results concatenate (a repeating field naturally fans out).
func navigateProperty(input value.Collection, name string) value.Collection {
	var out value.Collection
	for _, item := range input {
		obj, ok := item.(value.Object)
		if !ok {
			continue
		}
		if props, ok := obj.Accessor.Property(name); ok {
			out = append(out, props...)
		}
	}
	return out
}
