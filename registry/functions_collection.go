package registry

import (
	"github.com/samber/lo"

	"github.com/fhirgo/fhirpath/types"
	"github.com/fhirgo/fhirpath/value"
)

// registerCollectionFunctions populates spec §4.5 rules 14-15's existence-
// testing, filtering/subsetting, and combining functions, grounded on
// samber/lo's generic collection helpers the way the teacher's sibling
// repos in the pack use them for slice processing (there is no single
// teacher file for this area; these are adapted from first principles in
// the registry's Evaluate-hook shape).
func registerCollectionFunctions(r *Registry) {
	noArgFn := func(name string, outputType types.Ref, fn func(value.Collection) value.Collection) {
		r.register(&Entry{
			Name: name, Kind: FunctionKind,
			Syntax:    Syntax{Form: Call},
			Signature: Signature{InputCardinality: CardCollection, Output: outputType},
			Evaluate: func(args EvalArgs) (EvalResult, error) {
				return EvalResult{Output: fn(args.Input)}, nil
			},
		})
	}

	noArgFn("empty", types.Boolean, func(c value.Collection) value.Collection {
		return one(value.Boolean(c.IsEmpty()))
	})
	noArgFn("count", types.Integer, func(c value.Collection) value.Collection {
		return one(value.Integer(len(c)))
	})
	noArgFn("first", types.Any, func(c value.Collection) value.Collection {
		if len(c) == 0 {
			return nil
		}
		return value.Of(c[0])
	})
	noArgFn("last", types.Any, func(c value.Collection) value.Collection {
		if len(c) == 0 {
			return nil
		}
		return value.Of(c[len(c)-1])
	})
	noArgFn("tail", types.Any, func(c value.Collection) value.Collection {
		if len(c) <= 1 {
			return nil
		}
		return append(value.Collection{}, c[1:]...)
	})
	r.register(&Entry{
		Name: "single", Kind: FunctionKind,
		Syntax:    Syntax{Form: Call},
		Signature: Signature{InputCardinality: CardCollection, Output: types.Any},
		Evaluate: func(args EvalArgs) (EvalResult, error) {
			if len(args.Input) == 0 {
				return EvalResult{Output: nil}, nil
			}
			if len(args.Input) > 1 {
				return EvalResult{}, evalErrAt("single", args.Node.Range(), "input has %d items, expected at most one", len(args.Input))
			}
			return EvalResult{Output: args.Input}, nil
		},
	})
	noArgFn("distinct", types.Any, value.Distinct)
	noArgFn("isDistinct", types.Boolean, func(c value.Collection) value.Collection {
		return one(value.Boolean(value.IsDistinct(c)))
	})
	noArgFn("allTrue", types.Boolean, func(c value.Collection) value.Collection {
		return one(value.Boolean(lo.EveryBy(c, isTrueValue)))
	})
	noArgFn("anyTrue", types.Boolean, func(c value.Collection) value.Collection {
		return one(value.Boolean(lo.SomeBy(c, isTrueValue)))
	})
	noArgFn("allFalse", types.Boolean, func(c value.Collection) value.Collection {
		return one(value.Boolean(lo.EveryBy(c, isFalseValue)))
	})
	noArgFn("anyFalse", types.Boolean, func(c value.Collection) value.Collection {
		return one(value.Boolean(lo.SomeBy(c, isFalseValue)))
	})

	r.register(&Entry{
		Name: "skip", Kind: FunctionKind,
		Syntax:    Syntax{Form: Call},
		Signature: Signature{InputCardinality: CardCollection, Output: types.Any, Parameters: []Param{{Name: "num", Kind: ValueParam, Cardinality: CardSingleton}}},
		Evaluate: func(args EvalArgs) (EvalResult, error) {
			n, ok := singleInt(args.EvaluatedArgs[0])
			if !ok {
				return EvalResult{}, evalErr("skip", "argument is not a singleton integer")
			}
			if n < 0 {
				n = 0
			}
			if int(n) >= len(args.Input) {
				return EvalResult{Output: nil}, nil
			}
			return EvalResult{Output: append(value.Collection{}, args.Input[n:]...)}, nil
		},
	})
	r.register(&Entry{
		Name: "take", Kind: FunctionKind,
		Syntax:    Syntax{Form: Call},
		Signature: Signature{InputCardinality: CardCollection, Output: types.Any, Parameters: []Param{{Name: "num", Kind: ValueParam, Cardinality: CardSingleton}}},
		Evaluate: func(args EvalArgs) (EvalResult, error) {
			n, ok := singleInt(args.EvaluatedArgs[0])
			if !ok {
				return EvalResult{}, evalErr("take", "argument is not a singleton integer")
			}
			if n < 0 {
				n = 0
			}
			if int(n) > len(args.Input) {
				n = int64(len(args.Input))
			}
			return EvalResult{Output: append(value.Collection{}, args.Input[:n]...)}, nil
		},
	})
	r.register(&Entry{
		Name: "subsetOf", Kind: FunctionKind,
		Syntax:    Syntax{Form: Call},
		Signature: Signature{InputCardinality: CardCollection, Output: types.Boolean, Parameters: []Param{{Name: "other", Kind: ValueParam, Cardinality: CardCollection}}},
		Evaluate: func(args EvalArgs) (EvalResult, error) {
			return EvalResult{Output: one(value.Boolean(value.SubsetOf(args.Input, args.EvaluatedArgs[0])))}, nil
		},
	})
	r.register(&Entry{
		Name: "supersetOf", Kind: FunctionKind,
		Syntax:    Syntax{Form: Call},
		Signature: Signature{InputCardinality: CardCollection, Output: types.Boolean, Parameters: []Param{{Name: "other", Kind: ValueParam, Cardinality: CardCollection}}},
		Evaluate: func(args EvalArgs) (EvalResult, error) {
			return EvalResult{Output: one(value.Boolean(value.SubsetOf(args.EvaluatedArgs[0], args.Input)))}, nil
		},
	})
	r.register(&Entry{
		Name: "combine", Kind: FunctionKind,
		Syntax:    Syntax{Form: Call},
		Signature: Signature{InputCardinality: CardCollection, Output: types.Any, Parameters: []Param{{Name: "other", Kind: ValueParam, Cardinality: CardCollection}}},
		Evaluate: func(args EvalArgs) (EvalResult, error) {
			return EvalResult{Output: value.Combine(args.Input, args.EvaluatedArgs[0])}, nil
		},
	})
	r.register(&Entry{
		Name: "union", Kind: FunctionKind,
		Syntax:    Syntax{Form: Call},
		Signature: Signature{InputCardinality: CardCollection, Output: types.Any, Parameters: []Param{{Name: "other", Kind: ValueParam, Cardinality: CardCollection}}},
		Evaluate: func(args EvalArgs) (EvalResult, error) {
			return EvalResult{Output: value.Union(args.Input, args.EvaluatedArgs[0])}, nil
		},
	})
	r.register(&Entry{
		Name: "intersect", Kind: FunctionKind,
		Syntax:    Syntax{Form: Call},
		Signature: Signature{InputCardinality: CardCollection, Output: types.Any, Parameters: []Param{{Name: "other", Kind: ValueParam, Cardinality: CardCollection}}},
		Evaluate: func(args EvalArgs) (EvalResult, error) {
			other := args.EvaluatedArgs[0]
			out := lo.Filter(value.Distinct(args.Input), func(v value.Value, _ int) bool {
				return lo.SomeBy(other, func(o value.Value) bool { return value.Equivalent(v, o) })
			})
			return EvalResult{Output: out}, nil
		},
	})
	r.register(&Entry{
		Name: "exclude", Kind: FunctionKind,
		Syntax:    Syntax{Form: Call},
		Signature: Signature{InputCardinality: CardCollection, Output: types.Any, Parameters: []Param{{Name: "other", Kind: ValueParam, Cardinality: CardCollection}}},
		Evaluate: func(args EvalArgs) (EvalResult, error) {
			other := args.EvaluatedArgs[0]
			out := lo.Filter(args.Input, func(v value.Value, _ int) bool {
				return !lo.SomeBy(other, func(o value.Value) bool { return value.Equivalent(v, o) })
			})
			return EvalResult{Output: out}, nil
		},
	})
}

func isTrueValue(v value.Value) bool {
	b, ok := v.(value.Boolean)
	return ok && bool(b)
}

func isFalseValue(v value.Value) bool {
	b, ok := v.(value.Boolean)
	return ok && !bool(b)
}

func singleInt(c value.Collection) (int64, bool) {
	v, ok := singleton(c)
	if !ok {
		return 0, false
	}
	return asInt(v)
}
