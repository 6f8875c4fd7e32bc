package registry

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/fhirgo/fhirpath/types"
	"github.com/fhirgo/fhirpath/value"
)

// registerMathFunctions populates spec §4.5's numeric functions. Anything
// expressible as exact decimal arithmetic goes through
// github.com/shopspring/decimal directly; transcendental functions
// (sqrt/ln/log/exp) and power, for every exponent, go through float64 and
// the math package since decimal carries no transcendental-function support
// and none of the pack's dependencies provide one either (see DESIGN.md).
func registerMathFunctions(r *Registry) {
	unary := func(name string, fn func(decimal.Decimal) (value.Value, bool)) {
		r.register(&Entry{
			Name: name, Kind: FunctionKind,
			Syntax:    Syntax{Form: Call},
			Signature: Signature{InputCardinality: CardSingleton, Output: types.Decimal, PropagatesEmpty: true},
			Evaluate: func(args EvalArgs) (EvalResult, error) {
				v, ok := singleton(args.Input)
				if !ok {
					return EvalResult{Output: nil}, nil
				}
				d, ok := toDecimal(v)
				if !ok {
					return EvalResult{}, evalErr(name, "operand is not numeric")
				}
				out, ok := fn(d)
				if !ok {
					return EvalResult{Output: nil}, nil
				}
				return EvalResult{Output: one(out)}, nil
			},
		})
	}

	unary("abs", func(d decimal.Decimal) (value.Value, bool) { return value.NewDecimal(d.Abs()), true })
	unary("ceiling", func(d decimal.Decimal) (value.Value, bool) { return value.Integer(d.Ceil().IntPart()), true })
	unary("floor", func(d decimal.Decimal) (value.Value, bool) { return value.Integer(d.Floor().IntPart()), true })
	unary("truncate", func(d decimal.Decimal) (value.Value, bool) { return value.Integer(d.Truncate(0).IntPart()), true })
	unary("sqrt", func(d decimal.Decimal) (value.Value, bool) {
		f, _ := d.Float64()
		if f < 0 {
			return nil, false
		}
		return value.NewDecimal(decimal.NewFromFloat(math.Sqrt(f))), true
	})
	unary("ln", func(d decimal.Decimal) (value.Value, bool) {
		f, _ := d.Float64()
		if f <= 0 {
			return nil, false
		}
		return value.NewDecimal(decimal.NewFromFloat(math.Log(f))), true
	})
	unary("exp", func(d decimal.Decimal) (value.Value, bool) {
		f, _ := d.Float64()
		return value.NewDecimal(decimal.NewFromFloat(math.Exp(f))), true
	})

	r.register(&Entry{
		Name: "round", Kind: FunctionKind,
		Syntax:    Syntax{Form: Call},
		Signature: Signature{InputCardinality: CardSingleton, Output: types.Decimal, Parameters: []Param{{Name: "precision", Kind: ValueParam, Cardinality: CardSingleton, Optional: true}}},
		Evaluate: func(args EvalArgs) (EvalResult, error) {
			v, ok := singleton(args.Input)
			if !ok {
				return EvalResult{Output: nil}, nil
			}
			d, ok := toDecimal(v)
			if !ok {
				return EvalResult{}, evalErr("round", "operand is not numeric")
			}
			prec := int32(0)
			if len(args.Args) > 0 {
				if p, ok := singleInt(args.EvaluatedArgs[0]); ok {
					prec = int32(p)
				}
			}
			return EvalResult{Output: one(value.NewDecimal(d.Round(prec)))}, nil
		},
	})
	r.register(&Entry{
		Name: "log", Kind: FunctionKind,
		Syntax:    Syntax{Form: Call},
		Signature: Signature{InputCardinality: CardSingleton, Output: types.Decimal, Parameters: []Param{{Name: "base", Kind: ValueParam, Cardinality: CardSingleton}}},
		Evaluate: func(args EvalArgs) (EvalResult, error) {
			v, ok := singleton(args.Input)
			if !ok {
				return EvalResult{Output: nil}, nil
			}
			d, ok := toDecimal(v)
			if !ok {
				return EvalResult{}, evalErr("log", "operand is not numeric")
			}
			base, ok := singleton(args.EvaluatedArgs[0])
			if !ok {
				return EvalResult{}, evalErr("log", "base argument is not a singleton")
			}
			bd, ok := toDecimal(base)
			if !ok {
				return EvalResult{}, evalErr("log", "base argument is not numeric")
			}
			fv, _ := d.Float64()
			fb, _ := bd.Float64()
			if fv <= 0 || fb <= 0 || fb == 1 {
				return EvalResult{Output: nil}, nil
			}
			return EvalResult{Output: one(value.NewDecimal(decimal.NewFromFloat(math.Log(fv) / math.Log(fb))))}, nil
		},
	})
	r.register(&Entry{
		Name: "power", Kind: FunctionKind,
		Syntax:    Syntax{Form: Call},
		Signature: Signature{InputCardinality: CardSingleton, Output: types.Decimal, Parameters: []Param{{Name: "exponent", Kind: ValueParam, Cardinality: CardSingleton}}},
		Evaluate: func(args EvalArgs) (EvalResult, error) {
			v, ok := singleton(args.Input)
			if !ok {
				return EvalResult{Output: nil}, nil
			}
			base, ok := toDecimal(v)
			if !ok {
				return EvalResult{}, evalErr("power", "operand is not numeric")
			}
			exp, ok := singleton(args.EvaluatedArgs[0])
			if !ok {
				return EvalResult{}, evalErr("power", "exponent argument is not a singleton")
			}
			ed, ok := toDecimal(exp)
			if !ok {
				return EvalResult{}, evalErr("power", "exponent argument is not numeric")
			}
			fb, _ := base.Float64()
			fe, _ := ed.Float64()
			result := math.Pow(fb, fe)
			if math.IsNaN(result) {
				return EvalResult{Output: nil}, nil
			}
			out := numericResult(v, exp, decimal.NewFromFloat(result))
			return EvalResult{Output: one(out)}, nil
		},
	})
}
