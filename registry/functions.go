package registry

import (
	"github.com/fhirgo/fhirpath/fpcontext"
	"github.com/fhirgo/fhirpath/types"
	"github.com/fhirgo/fhirpath/value"
)

// registerIterationFunctions populates the functions whose argument is a
// deferred expression evaluated once per input item with $this/$index
// bound (spec §4.5 rule 18 "Iteration functions"), grounded on the
// teacher's eval package's environment-extension pattern for block
// evaluation (akashmaji946-go-mix/eval/eval.go), generalized from
// statement blocks to a per-item criteria expression.
func registerIterationFunctions(r *Registry) {
	iterParam := func(name string) Param {
		return Param{Name: name, Kind: ExpressionParam, Cardinality: CardCollection, Optional: false}
	}

	r.register(&Entry{
		Name: "where", Kind: FunctionKind,
		Syntax:    Syntax{Form: Call},
		Signature: Signature{InputCardinality: CardCollection, Parameters: []Param{iterParam("criteria")}, OutputRule: OutputPreserveInput},
		Evaluate:  whereEval,
	})
	r.register(&Entry{
		Name: "select", Kind: FunctionKind,
		Syntax:    Syntax{Form: Call},
		Signature: Signature{InputCardinality: CardCollection, Parameters: []Param{iterParam("projection")}, Output: types.Any, OutputRule: OutputAny},
		Evaluate:  selectEval,
	})
	r.register(&Entry{
		Name: "all", Kind: FunctionKind,
		Syntax:    Syntax{Form: Call},
		Signature: Signature{InputCardinality: CardCollection, Parameters: []Param{iterParam("criteria")}, Output: types.Boolean},
		Evaluate:  allEval,
	})
	r.register(&Entry{
		Name: "repeat", Kind: FunctionKind,
		Syntax:    Syntax{Form: Call},
		Signature: Signature{InputCardinality: CardCollection, Parameters: []Param{iterParam("projection")}, Output: types.Any, OutputRule: OutputAny},
		Evaluate:  repeatEval,
	})
	r.register(&Entry{
		Name: "aggregate", Kind: FunctionKind,
		Syntax: Syntax{Form: Call},
		Signature: Signature{InputCardinality: CardCollection, Output: types.Any, OutputRule: OutputAny, Parameters: []Param{
			iterParam("aggregator"),
			{Name: "init", Kind: ValueParam, Cardinality: CardAny, Optional: true},
		}},
		Evaluate: aggregateEval,
	})
	r.register(&Entry{
		Name: "iif", Kind: FunctionKind,
		Syntax: Syntax{Form: Call},
		Signature: Signature{InputCardinality: CardAny, Output: types.Any, OutputRule: OutputAny, Parameters: []Param{
			{Name: "criterion", Kind: ExpressionParam, Cardinality: CardAny},
			{Name: "true-result", Kind: ExpressionParam, Cardinality: CardAny},
			{Name: "otherwise-result", Kind: ExpressionParam, Cardinality: CardAny, Optional: true},
		}},
		Evaluate: iifEval,
	})
	r.register(&Entry{
		Name: "defineVariable", Kind: FunctionKind,
		Syntax: Syntax{Form: Call},
		Signature: Signature{InputCardinality: CardAny, OutputRule: OutputPreserveInput, Parameters: []Param{
			{Name: "name", Kind: ValueParam, Cardinality: CardSingleton},
			{Name: "expr", Kind: ExpressionParam, Cardinality: CardAny, Optional: true},
		}},
		Evaluate: defineVariableEval,
	})
	r.register(&Entry{
		Name: "trace", Kind: FunctionKind,
		Syntax: Syntax{Form: Call},
		Signature: Signature{InputCardinality: CardAny, OutputRule: OutputPreserveInput, Parameters: []Param{
			{Name: "name", Kind: ValueParam, Cardinality: CardSingleton},
			{Name: "projection", Kind: ExpressionParam, Cardinality: CardAny, Optional: true},
		}},
		Evaluate: traceEval,
	})
	r.register(&Entry{
		Name: "exists", Kind: FunctionKind,
		Syntax: Syntax{Form: Call},
		Signature: Signature{InputCardinality: CardCollection, Output: types.Boolean, Parameters: []Param{
			{Name: "criteria", Kind: ExpressionParam, Cardinality: CardCollection, Optional: true},
		}},
		Evaluate: existsEval,
	})
}

func itemCtx(ctx *fpcontext.Context, item value.Value, index int) *fpcontext.Context {
	this := value.Of(item)
	return ctx.WithFocus(this).WithIterFrame(fpcontext.IterFrame{This: this, HasThis: true, Index: index, HasIndex: true})
}

func whereEval(args EvalArgs) (EvalResult, error) {
	var out value.Collection
	ctx := args.Ctx
	for i, item := range args.Input {
		res, _, err := args.Eval(args.Args[0], value.Of(item), itemCtx(ctx, item, i))
		if err != nil {
			return EvalResult{}, err
		}
		if value.IsTruthy(res) {
			out = append(out, item)
		}
	}
	return EvalResult{Output: out, Ctx: ctx}, nil
}

func selectEval(args EvalArgs) (EvalResult, error) {
	var out value.Collection
	ctx := args.Ctx
	for i, item := range args.Input {
		res, _, err := args.Eval(args.Args[0], value.Of(item), itemCtx(ctx, item, i))
		if err != nil {
			return EvalResult{}, err
		}
		out = append(out, res...)
	}
	return EvalResult{Output: out, Ctx: ctx}, nil
}

func allEval(args EvalArgs) (EvalResult, error) {
	ctx := args.Ctx
	for i, item := range args.Input {
		res, _, err := args.Eval(args.Args[0], value.Of(item), itemCtx(ctx, item, i))
		if err != nil {
			return EvalResult{}, err
		}
		if !value.IsTruthy(res) {
			return EvalResult{Output: one(value.Boolean(false)), Ctx: ctx}, nil
		}
	}
	return EvalResult{Output: one(value.Boolean(true)), Ctx: ctx}, nil
}

func existsEval(args EvalArgs) (EvalResult, error) {
	ctx := args.Ctx
	if len(args.Args) == 0 {
		return EvalResult{Output: one(value.Boolean(!args.Input.IsEmpty())), Ctx: ctx}, nil
	}
	for i, item := range args.Input {
		res, _, err := args.Eval(args.Args[0], value.Of(item), itemCtx(ctx, item, i))
		if err != nil {
			return EvalResult{}, err
		}
		if value.IsTruthy(res) {
			return EvalResult{Output: one(value.Boolean(true)), Ctx: ctx}, nil
		}
	}
	return EvalResult{Output: one(value.Boolean(false)), Ctx: ctx}, nil
}

// repeatEval implements spec §4.5 rule 18's fixed-point variant: repeatedly
// select(projection) over the frontier, deduplicating against everything
// already seen, until a pass yields nothing new.
func repeatEval(args EvalArgs) (EvalResult, error) {
	ctx := args.Ctx
	seen := map[string]bool{}
	var all value.Collection
	frontier := args.Input
	for _, v := range frontier {
		seen[v.String()] = true
	}
	for len(frontier) > 0 {
		var next value.Collection
		for i, item := range frontier {
			res, _, err := args.Eval(args.Args[0], value.Of(item), itemCtx(ctx, item, i))
			if err != nil {
				return EvalResult{}, err
			}
			for _, v := range res {
				key := v.String()
				if !seen[key] {
					seen[key] = true
					next = append(next, v)
					all = append(all, v)
				}
			}
		}
		frontier = next
	}
	return EvalResult{Output: all, Ctx: ctx}, nil
}

func aggregateEval(args EvalArgs) (EvalResult, error) {
	ctx := args.Ctx
	var total value.Collection
	if len(args.Args) > 1 {
		v, c, err := args.Eval(args.Args[1], args.Input, ctx)
		if err != nil {
			return EvalResult{}, err
		}
		total, ctx = v, c
	}
	for i, item := range args.Input {
		frame := fpcontext.IterFrame{This: value.Of(item), HasThis: true, Index: i, HasIndex: true, Total: total, HasTotal: true}
		ictx := ctx.WithFocus(value.Of(item)).WithIterFrame(frame)
		res, _, err := args.Eval(args.Args[0], value.Of(item), ictx)
		if err != nil {
			return EvalResult{}, err
		}
		total = res
	}
	return EvalResult{Output: total, Ctx: ctx}, nil
}

func iifEval(args EvalArgs) (EvalResult, error) {
	ctx := args.Ctx
	// Rule 19: an input collection of more than one item is always empty,
	// regardless of the condition.
	if len(args.Input) > 1 {
		return EvalResult{Output: nil, Ctx: ctx}, nil
	}
	cond, ctx2, err := args.Eval(args.Args[0], args.Input, ctx)
	if err != nil {
		return EvalResult{}, err
	}
	// Only a singleton `true` boolean takes the then-branch; empty, a
	// non-boolean singleton, or a multi-element condition take else.
	b, ok := singleton(cond)
	isTrue := false
	if ok {
		if bv, boolOK := b.(value.Boolean); boolOK {
			isTrue = bool(bv)
		}
	}
	if isTrue {
		res, ctx3, err := args.Eval(args.Args[1], args.Input, ctx2)
		if err != nil {
			return EvalResult{}, err
		}
		return EvalResult{Output: res, Ctx: ctx3}, nil
	}
	if len(args.Args) > 2 {
		res, ctx3, err := args.Eval(args.Args[2], args.Input, ctx2)
		if err != nil {
			return EvalResult{}, err
		}
		return EvalResult{Output: res, Ctx: ctx3}, nil
	}
	return EvalResult{Output: nil, Ctx: ctx2}, nil
}

func defineVariableEval(args EvalArgs) (EvalResult, error) {
	ctx := args.Ctx
	nameColl := args.EvaluatedArgs[0]
	name, ok := singleton(nameColl)
	if !ok {
		return EvalResult{}, evalErr("defineVariable", "name argument is not a singleton string")
	}
	nameStr, ok := asString(name)
	if !ok {
		return EvalResult{}, evalErr("defineVariable", "name argument is not a string")
	}
	var bound value.Collection = args.Input
	if len(args.Args) > 1 {
		v, c, err := args.Eval(args.Args[1], args.Input, ctx)
		if err != nil {
			return EvalResult{}, err
		}
		bound, ctx = v, c
	}
	newCtx, ok := ctx.DefineVariable(nameStr, bound)
	if !ok {
		// Rule 20: redefining an already-bound name, or a reserved name,
		// yields empty and leaves the context unchanged.
		return EvalResult{Output: nil, Ctx: ctx}, nil
	}
	return EvalResult{Output: args.Input, Ctx: newCtx}, nil
}

func traceEval(args EvalArgs) (EvalResult, error) {
	ctx := args.Ctx
	name, _ := singleton(args.EvaluatedArgs[0])
	nameStr := ""
	if name != nil {
		nameStr = name.String()
	}
	traced := args.Input
	if len(args.Args) > 1 {
		v, c, err := args.Eval(args.Args[1], args.Input, ctx)
		if err != nil {
			return EvalResult{}, err
		}
		traced, ctx = v, c
	}
	if ctx.Trace != nil {
		ctx.Trace.Trace(nameStr, traced)
	}
	return EvalResult{Output: args.Input, Ctx: ctx}, nil
}
