package registry

import (
	"github.com/samber/lo"

	"github.com/fhirgo/fhirpath/types"
	"github.com/fhirgo/fhirpath/value"
)

// registerTypeFunctions populates spec §4.5 rules 16-17's reflection and
// filtering-by-type operations. `ofType` reuses the is/as operators'
// typeRefName/typeNameOf helpers (operators.go) since its argument is the
// same kind of type specifier, not an ordinary expression.
func registerTypeFunctions(r *Registry) {
	r.register(&Entry{
		Name: "ofType", Kind: FunctionKind,
		Syntax:    Syntax{Form: Call},
		Signature: Signature{InputCardinality: CardCollection, Output: types.Any, OutputRule: OutputAny, Parameters: []Param{{Name: "type", Kind: ExpressionParam, Cardinality: CardSingleton}}},
		Evaluate: func(args EvalArgs) (EvalResult, error) {
			typeName, ok := typeRefName(args.Args[0])
			if !ok {
				return EvalResult{}, evalErr("ofType", "argument is not a type specifier")
			}
			out := lo.Filter(args.Input, func(v value.Value, _ int) bool {
				return typeNameOf(v) == typeName
			})
			return EvalResult{Output: out}, nil
		},
	})
	// Note: `.is(Type)` and `.as(Type)` written in call position are parsed
	// as sugar for the `is`/`as` infix operators (see parser), reusing the
	// operator entries registered in operators.go rather than duplicating
	// them here under the same registry name.
	r.register(&Entry{
		Name: "type", Kind: FunctionKind,
		Syntax:    Syntax{Form: Call},
		Signature: Signature{InputCardinality: CardSingleton, Output: types.String},
		Evaluate: func(args EvalArgs) (EvalResult, error) {
			v, ok := singleton(args.Input)
			if !ok {
				return EvalResult{Output: nil}, nil
			}
			return EvalResult{Output: one(value.String(typeNameOf(v)))}, nil
		},
	})
	r.register(&Entry{
		Name: "not", Kind: FunctionKind,
		Syntax:    Syntax{Form: Call},
		Signature: Signature{InputCardinality: CardSingleton, Output: types.Boolean},
		Evaluate: func(args EvalArgs) (EvalResult, error) {
			// not(empty) = true and not() on a multi-element collection is
			// empty (spec §8 invariant); neither matches ToTri's truthiness
			// coercion, so the boolean case is handled directly instead.
			switch len(args.Input) {
			case 0:
				return EvalResult{Output: one(value.Boolean(true))}, nil
			case 1:
				b, ok := args.Input[0].(value.Boolean)
				if !ok {
					return EvalResult{Output: nil}, nil
				}
				return EvalResult{Output: one(value.Boolean(!bool(b)))}, nil
			default:
				return EvalResult{Output: nil}, nil
			}
		},
	})
}
