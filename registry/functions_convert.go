package registry

import (
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/fhirgo/fhirpath/types"
	"github.com/fhirgo/fhirpath/value"
)

// registerConvertFunctions populates spec §4.5's to*/convertsTo* family.
// Boolean/Integer/String inputs are handled by type switches: strings
// convert to Boolean through a fixed table of accepted spellings and to
// Integer through strconv. Other kinds fall back to github.com/spf13/cast
// over their String() form.
func registerConvertFunctions(r *Registry) {
	convPair := func(toName, checkName string, outputType types.Ref, convert func(value.Value) (value.Value, bool)) {
		r.register(&Entry{
			Name: toName, Kind: FunctionKind,
			Syntax:    Syntax{Form: Call},
			Signature: Signature{InputCardinality: CardSingleton, Output: outputType},
			Evaluate: func(args EvalArgs) (EvalResult, error) {
				v, ok := singleton(args.Input)
				if !ok {
					return EvalResult{Output: nil}, nil
				}
				out, ok := convert(v)
				if !ok {
					return EvalResult{Output: nil}, nil
				}
				return EvalResult{Output: one(out)}, nil
			},
		})
		r.register(&Entry{
			Name: checkName, Kind: FunctionKind,
			Syntax:    Syntax{Form: Call},
			Signature: Signature{InputCardinality: CardSingleton, Output: types.Boolean},
			Evaluate: func(args EvalArgs) (EvalResult, error) {
				v, ok := singleton(args.Input)
				if !ok {
					return EvalResult{Output: nil}, nil
				}
				_, ok = convert(v)
				return EvalResult{Output: one(value.Boolean(ok))}, nil
			},
		})
	}

	convPair("toBoolean", "convertsToBoolean", types.Boolean, func(v value.Value) (value.Value, bool) {
		switch t := v.(type) {
		case value.Boolean:
			return t, true
		case value.Integer:
			if t == 0 || t == 1 {
				return value.Boolean(t == 1), true
			}
			return nil, false
		case value.String:
			switch strings.ToLower(string(t)) {
			case "true", "t", "yes", "y", "1", "1.0":
				return value.Boolean(true), true
			case "false", "f", "no", "n", "0", "0.0":
				return value.Boolean(false), true
			}
			return nil, false
		default:
			b, err := cast.ToBoolE(v.String())
			if err != nil {
				return nil, false
			}
			return value.Boolean(b), true
		}
	})

	convPair("toInteger", "convertsToInteger", types.Integer, func(v value.Value) (value.Value, bool) {
		switch t := v.(type) {
		case value.Integer:
			return t, true
		case value.Boolean:
			if t {
				return value.Integer(1), true
			}
			return value.Integer(0), true
		case value.String:
			i, err := strconv.ParseInt(string(t), 10, 64)
			if err != nil {
				return nil, false
			}
			return value.Integer(i), true
		default:
			i, err := cast.ToInt64E(v.String())
			if err != nil {
				return nil, false
			}
			return value.Integer(i), true
		}
	})

	convPair("toDecimal", "convertsToDecimal", types.Decimal, func(v value.Value) (value.Value, bool) {
		switch t := v.(type) {
		case value.Decimal:
			return t, true
		case value.Integer:
			return value.DecimalFromInt(int64(t)), true
		case value.Boolean:
			if t {
				return value.DecimalFromInt(1), true
			}
			return value.DecimalFromInt(0), true
		case value.String:
			d, err := value.DecimalFromString(string(t))
			if err != nil {
				return nil, false
			}
			return d, true
		default:
			return nil, false
		}
	})

	convPair("toString", "convertsToString", types.String, func(v value.Value) (value.Value, bool) {
		switch v.(type) {
		case value.Quantity:
			return value.String(v.String()), true
		default:
			return value.String(v.String()), true
		}
	})

	convPair("toDate", "convertsToDate", types.Date, func(v value.Value) (value.Value, bool) {
		switch t := v.(type) {
		case value.Date:
			return t, true
		case value.DateTime:
			return t.Date, true
		case value.String:
			d, err := value.ParseDate("@" + string(t))
			if err != nil {
				return nil, false
			}
			return d, true
		default:
			return nil, false
		}
	})

	convPair("toDateTime", "convertsToDateTime", types.DateTime, func(v value.Value) (value.Value, bool) {
		switch t := v.(type) {
		case value.DateTime:
			return t, true
		case value.Date:
			return value.DateTime{Date: t}, true
		case value.String:
			dt, err := value.ParseDateTime("@" + string(t))
			if err != nil {
				return nil, false
			}
			return dt, true
		default:
			return nil, false
		}
	})

	convPair("toTime", "convertsToTime", types.Time, func(v value.Value) (value.Value, bool) {
		switch t := v.(type) {
		case value.Time:
			return t, true
		case value.String:
			tm, err := value.ParseTime("@T" + string(t))
			if err != nil {
				return nil, false
			}
			return tm, true
		default:
			return nil, false
		}
	})

	convPair("toQuantity", "convertsToQuantity", types.Quantity, func(v value.Value) (value.Value, bool) {
		switch t := v.(type) {
		case value.Quantity:
			return t, true
		case value.Integer:
			return value.NewQuantity(value.DecimalFromInt(int64(t)).D, "1"), true
		case value.Decimal:
			return value.NewQuantity(t.D, "1"), true
		case value.String:
			parts := strings.SplitN(strings.TrimSpace(string(t)), " ", 2)
			d, err := value.DecimalFromString(parts[0])
			if err != nil {
				return nil, false
			}
			unit := "1"
			if len(parts) > 1 {
				unit = strings.Trim(parts[1], "'")
			}
			return value.NewQuantity(d.D, unit), true
		default:
			return nil, false
		}
	})
}
