package registry

import (
	"regexp"
	"strings"

	"github.com/fhirgo/fhirpath/types"
	"github.com/fhirgo/fhirpath/value"
)

// registerStringFunctions populates spec §4.5's string manipulation
// functions, grounded on the standard library's strings/regexp package the
// way the pack's CLI-and-text-tool repos use it directly (there is no
// third-party string-manipulation dependency anywhere in the example pack
// to ground these on instead — see DESIGN.md).
func registerStringFunctions(r *Registry) {
	strUnary := func(name string, output types.Ref, fn func(string) value.Value) {
		r.register(&Entry{
			Name: name, Kind: FunctionKind,
			Syntax:    Syntax{Form: Call},
			Signature: Signature{InputType: types.String, InputCardinality: CardSingleton, Output: output, PropagatesEmpty: true},
			Evaluate: func(args EvalArgs) (EvalResult, error) {
				s, ok := inputString(args.Input)
				if !ok {
					return EvalResult{Output: nil}, nil
				}
				return EvalResult{Output: one(fn(s))}, nil
			},
		})
	}

	strUnary("upper", types.String, func(s string) value.Value { return value.String(strings.ToUpper(s)) })
	strUnary("lower", types.String, func(s string) value.Value { return value.String(strings.ToLower(s)) })
	strUnary("trim", types.String, func(s string) value.Value { return value.String(strings.TrimSpace(s)) })
	strUnary("length", types.Integer, func(s string) value.Value { return value.Integer(len([]rune(s))) })

	r.register(&Entry{
		Name: "toChars", Kind: FunctionKind,
		Syntax:    Syntax{Form: Call},
		Signature: Signature{InputType: types.String, InputCardinality: CardSingleton, Output: types.String},
		Evaluate: func(args EvalArgs) (EvalResult, error) {
			s, ok := inputString(args.Input)
			if !ok {
				return EvalResult{Output: nil}, nil
			}
			var out value.Collection
			for _, r := range s {
				out = append(out, value.String(string(r)))
			}
			return EvalResult{Output: out}, nil
		},
	})

	r.register(&Entry{
		Name: "indexOf", Kind: FunctionKind,
		Syntax:    Syntax{Form: Call},
		Signature: Signature{InputType: types.String, InputCardinality: CardSingleton, Output: types.Integer, Parameters: []Param{{Name: "substring", Kind: ValueParam, Cardinality: CardSingleton}}},
		Evaluate: func(args EvalArgs) (EvalResult, error) {
			s, ok := inputString(args.Input)
			if !ok {
				return EvalResult{Output: nil}, nil
			}
			sub, _ := singleString(args.EvaluatedArgs[0])
			return EvalResult{Output: one(value.Integer(runeIndex(s, sub)))}, nil
		},
	})
	r.register(&Entry{
		Name: "substring", Kind: FunctionKind,
		Syntax: Syntax{Form: Call},
		Signature: Signature{InputType: types.String, InputCardinality: CardSingleton, Output: types.String, Parameters: []Param{
			{Name: "start", Kind: ValueParam, Cardinality: CardSingleton},
			{Name: "length", Kind: ValueParam, Cardinality: CardSingleton, Optional: true},
		}},
		Evaluate: func(args EvalArgs) (EvalResult, error) {
			s, ok := inputString(args.Input)
			if !ok {
				return EvalResult{Output: nil}, nil
			}
			runes := []rune(s)
			start, ok := singleInt(args.EvaluatedArgs[0])
			if !ok || start < 0 || int(start) >= len(runes) {
				return EvalResult{Output: nil}, nil
			}
			end := len(runes)
			if len(args.Args) > 1 {
				if n, ok := singleInt(args.EvaluatedArgs[1]); ok {
					if int(start)+int(n) < end {
						end = int(start) + int(n)
					}
				}
			}
			return EvalResult{Output: one(value.String(string(runes[start:end])))}, nil
		},
	})
	strBoolArg := func(name string, fn func(s, arg string) bool) {
		r.register(&Entry{
			Name: name, Kind: FunctionKind,
			Syntax:    Syntax{Form: Call},
			Signature: Signature{InputType: types.String, InputCardinality: CardSingleton, Output: types.Boolean, Parameters: []Param{{Name: "arg", Kind: ValueParam, Cardinality: CardSingleton}}},
			Evaluate: func(args EvalArgs) (EvalResult, error) {
				s, ok := inputString(args.Input)
				if !ok {
					return EvalResult{Output: nil}, nil
				}
				arg, _ := singleString(args.EvaluatedArgs[0])
				return EvalResult{Output: one(value.Boolean(fn(s, arg)))}, nil
			},
		})
	}
	strBoolArg("startsWith", strings.HasPrefix)
	strBoolArg("endsWith", strings.HasSuffix)
	strBoolArg("contains", strings.Contains)
	strBoolArg("matches", func(s, pattern string) bool {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return false
		}
		return re.MatchString(s)
	})

	r.register(&Entry{
		Name: "replace", Kind: FunctionKind,
		Syntax: Syntax{Form: Call},
		Signature: Signature{InputType: types.String, InputCardinality: CardSingleton, Output: types.String, Parameters: []Param{
			{Name: "pattern", Kind: ValueParam, Cardinality: CardSingleton},
			{Name: "substitution", Kind: ValueParam, Cardinality: CardSingleton},
		}},
		Evaluate: func(args EvalArgs) (EvalResult, error) {
			s, ok := inputString(args.Input)
			if !ok {
				return EvalResult{Output: nil}, nil
			}
			pattern, _ := singleString(args.EvaluatedArgs[0])
			sub, _ := singleString(args.EvaluatedArgs[1])
			return EvalResult{Output: one(value.String(strings.ReplaceAll(s, pattern, sub)))}, nil
		},
	})
	r.register(&Entry{
		Name: "replaceMatches", Kind: FunctionKind,
		Syntax: Syntax{Form: Call},
		Signature: Signature{InputType: types.String, InputCardinality: CardSingleton, Output: types.String, Parameters: []Param{
			{Name: "regex", Kind: ValueParam, Cardinality: CardSingleton},
			{Name: "substitution", Kind: ValueParam, Cardinality: CardSingleton},
		}},
		Evaluate: func(args EvalArgs) (EvalResult, error) {
			s, ok := inputString(args.Input)
			if !ok {
				return EvalResult{Output: nil}, nil
			}
			pattern, _ := singleString(args.EvaluatedArgs[0])
			sub, _ := singleString(args.EvaluatedArgs[1])
			re, err := regexp.Compile(pattern)
			if err != nil {
				return EvalResult{}, evalErr("replaceMatches", "invalid regular expression: %s", pattern)
			}
			return EvalResult{Output: one(value.String(re.ReplaceAllString(s, sub)))}, nil
		},
	})
	r.register(&Entry{
		Name: "split", Kind: FunctionKind,
		Syntax:    Syntax{Form: Call},
		Signature: Signature{InputType: types.String, InputCardinality: CardSingleton, Output: types.String, Parameters: []Param{{Name: "separator", Kind: ValueParam, Cardinality: CardSingleton}}},
		Evaluate: func(args EvalArgs) (EvalResult, error) {
			s, ok := inputString(args.Input)
			if !ok {
				return EvalResult{Output: nil}, nil
			}
			sep, _ := singleString(args.EvaluatedArgs[0])
			var out value.Collection
			for _, part := range strings.Split(s, sep) {
				out = append(out, value.String(part))
			}
			return EvalResult{Output: out}, nil
		},
	})
	r.register(&Entry{
		Name: "join", Kind: FunctionKind,
		Syntax:    Syntax{Form: Call},
		Signature: Signature{InputType: types.String, InputCardinality: CardCollection, Output: types.String, Parameters: []Param{{Name: "separator", Kind: ValueParam, Cardinality: CardSingleton, Optional: true}}},
		Evaluate: func(args EvalArgs) (EvalResult, error) {
			sep := ""
			if len(args.Args) > 0 {
				sep, _ = singleString(args.EvaluatedArgs[0])
			}
			parts := make([]string, 0, len(args.Input))
			for _, v := range args.Input {
				parts = append(parts, v.String())
			}
			return EvalResult{Output: one(value.String(strings.Join(parts, sep)))}, nil
		},
	})
}

func inputString(c value.Collection) (string, bool) {
	v, ok := singleton(c)
	if !ok {
		return "", false
	}
	return asString(v)
}

func singleString(c value.Collection) (string, bool) {
	v, ok := singleton(c)
	if !ok {
		return "", false
	}
	return asString(v)
}

func runeIndex(s, substr string) int {
	byteIdx := strings.Index(s, substr)
	if byteIdx < 0 {
		return -1
	}
	return len([]rune(s[:byteIdx]))
}
