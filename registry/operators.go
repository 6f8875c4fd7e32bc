package registry

import (
	"github.com/fhirgo/fhirpath/ast"
	"github.com/fhirgo/fhirpath/fpcontext"
	"github.com/fhirgo/fhirpath/token"
	"github.com/fhirgo/fhirpath/types"
	"github.com/fhirgo/fhirpath/value"
)

// registerOperators populates every symbolic and keyword operator entry
// (spec §4.2's operator table), grounded on the teacher's split precedence
// tables in akashmaji946-go-mix/parser/parser_precedence.go, generalized
// from that language's fixed operator set to FHIRPath's.
func registerOperators(r *Registry) {
	arith := func(name string, tok token.Kind, prec int, fn func(a, b value.Value) (value.Value, error), rule OutputRule, output types.Ref) {
		r.register(&Entry{
			Name: name, Kind: OperatorKind,
			Syntax:    Syntax{Form: Infix, Token: tok, Precedence: prec, Assoc: LeftAssoc},
			Signature: Signature{InputCardinality: CardSingleton, PropagatesEmpty: true, Deterministic: true, OutputRule: rule, Output: output},
			Evaluate:  binaryNumericEval(name, fn),
		})
	}

	arith("+", token.PLUS, PrecAdditive, opAdd, OutputPromoteNumeric, nil)
	arith("-", token.MINUS, PrecAdditive, opSub, OutputPromoteNumeric, nil)
	arith("*", token.STAR, PrecMultiplicative, opMul, OutputPromoteNumeric, nil)
	arith("/", token.SLASH, PrecMultiplicative, opDiv, OutputConcrete, types.Decimal)
	arith("div", token.DIV, PrecMultiplicative, opIntDiv, OutputConcrete, types.Integer)
	arith("mod", token.MOD, PrecMultiplicative, opMod, OutputPromoteNumeric, nil)

	r.register(&Entry{
		Name: "&", Kind: OperatorKind,
		Syntax:    Syntax{Form: Infix, Token: token.AMP, Precedence: PrecAdditive, Assoc: LeftAssoc},
		Signature: Signature{InputCardinality: CardSingleton, PropagatesEmpty: false, Deterministic: true, OutputRule: OutputConcrete, Output: types.String},
		Evaluate:  binaryStringConcatEval,
	})

	cmp := func(name string, tok token.Kind, ok func(c int) bool) {
		r.register(&Entry{
			Name: name, Kind: OperatorKind,
			Syntax:    Syntax{Form: Infix, Token: tok, Precedence: PrecRelational, Assoc: LeftAssoc},
			Signature: Signature{InputCardinality: CardSingleton, PropagatesEmpty: true, Deterministic: true, OutputRule: OutputConcrete, Output: types.Boolean},
			Evaluate:  binaryCompareEval(name, ok),
		})
	}
	cmp("<", token.LT, func(c int) bool { return c < 0 })
	cmp("<=", token.LE, func(c int) bool { return c <= 0 })
	cmp(">", token.GT, func(c int) bool { return c > 0 })
	cmp(">=", token.GE, func(c int) bool { return c >= 0 })

	r.register(&Entry{
		Name: "=", Kind: OperatorKind,
		Syntax:    Syntax{Form: Infix, Token: token.EQ, Precedence: PrecEquality, Assoc: LeftAssoc},
		Signature: Signature{InputCardinality: CardAny, PropagatesEmpty: true, Deterministic: true, OutputRule: OutputConcrete, Output: types.Boolean},
		Evaluate:  binaryEqualityEval(false, false),
	})
	r.register(&Entry{
		Name: "!=", Kind: OperatorKind,
		Syntax:    Syntax{Form: Infix, Token: token.NEQ, Precedence: PrecEquality, Assoc: LeftAssoc},
		Signature: Signature{InputCardinality: CardAny, PropagatesEmpty: true, Deterministic: true, OutputRule: OutputConcrete, Output: types.Boolean},
		Evaluate:  binaryEqualityEval(false, true),
	})
	r.register(&Entry{
		Name: "~", Kind: OperatorKind,
		Syntax:    Syntax{Form: Infix, Token: token.EQUIV, Precedence: PrecEquality, Assoc: LeftAssoc},
		Signature: Signature{InputCardinality: CardSingleton, PropagatesEmpty: false, Deterministic: true, OutputRule: OutputConcrete, Output: types.Boolean},
		Evaluate:  binaryEqualityEval(true, false),
	})
	r.register(&Entry{
		Name: "!~", Kind: OperatorKind,
		Syntax:    Syntax{Form: Infix, Token: token.NEQUIV, Precedence: PrecEquality, Assoc: LeftAssoc},
		Signature: Signature{InputCardinality: CardSingleton, PropagatesEmpty: false, Deterministic: true, OutputRule: OutputConcrete, Output: types.Boolean},
		Evaluate:  binaryEqualityEval(true, true),
	})

	r.register(&Entry{
		Name: "|", Kind: OperatorKind,
		Syntax:    Syntax{Form: Infix, Token: token.PIPE, Precedence: PrecUnion, Assoc: LeftAssoc},
		Signature: Signature{InputCardinality: CardCollection, PropagatesEmpty: false, Deterministic: true, OutputRule: OutputAny, Output: types.Any},
		Evaluate:  binaryUnionEval,
	})

	r.register(&Entry{
		Name: "and", Kind: OperatorKind,
		Syntax:    Syntax{Form: Infix, Token: token.AND, Precedence: PrecAnd, Assoc: LeftAssoc},
		Signature: Signature{InputCardinality: CardSingleton, PropagatesEmpty: false, Deterministic: true, OutputRule: OutputConcrete, Output: types.Boolean},
		Evaluate:  booleanOpEval(triAnd),
	})
	r.register(&Entry{
		Name: "or", Kind: OperatorKind,
		Syntax:    Syntax{Form: Infix, Token: token.OR, Precedence: PrecOrXor, Assoc: LeftAssoc},
		Signature: Signature{InputCardinality: CardSingleton, PropagatesEmpty: false, Deterministic: true, OutputRule: OutputConcrete, Output: types.Boolean},
		Evaluate:  booleanOpEval(triOr),
	})
	r.register(&Entry{
		Name: "xor", Kind: OperatorKind,
		Syntax:    Syntax{Form: Infix, Token: token.XOR, Precedence: PrecOrXor, Assoc: LeftAssoc},
		Signature: Signature{InputCardinality: CardSingleton, PropagatesEmpty: false, Deterministic: true, OutputRule: OutputConcrete, Output: types.Boolean},
		Evaluate:  booleanOpEval(triXor),
	})
	r.register(&Entry{
		Name: "implies", Kind: OperatorKind,
		Syntax:    Syntax{Form: Infix, Token: token.IMPLIES, Precedence: PrecImplies, Assoc: LeftAssoc},
		Signature: Signature{InputCardinality: CardSingleton, PropagatesEmpty: false, Deterministic: true, OutputRule: OutputConcrete, Output: types.Boolean},
		Evaluate:  booleanOpEval(triImplies),
	})

	r.register(&Entry{
		Name: "in", Kind: OperatorKind,
		Syntax:    Syntax{Form: Infix, Token: token.IN, Precedence: PrecInContains, Assoc: LeftAssoc},
		Signature: Signature{InputCardinality: CardCollection, PropagatesEmpty: false, Deterministic: true, OutputRule: OutputConcrete, Output: types.Boolean},
		Evaluate:  membershipEval(false),
	})
	r.register(&Entry{
		Name: "contains", Kind: OperatorKind,
		Syntax:    Syntax{Form: Infix, Token: token.CONTAINS, Precedence: PrecInContains, Assoc: LeftAssoc},
		Signature: Signature{InputCardinality: CardCollection, PropagatesEmpty: false, Deterministic: true, OutputRule: OutputConcrete, Output: types.Boolean},
		Evaluate:  membershipEval(true),
	})

	r.register(&Entry{
		Name: "is", Kind: OperatorKind,
		Syntax:    Syntax{Form: Infix, Token: token.IS, Precedence: PrecIsAs, Assoc: LeftAssoc},
		Signature: Signature{InputCardinality: CardSingleton, PropagatesEmpty: false, Deterministic: true, OutputRule: OutputConcrete, Output: types.Boolean},
		Evaluate:  isOperatorEval,
	})
	r.register(&Entry{
		Name: "as", Kind: OperatorKind,
		Syntax:    Syntax{Form: Infix, Token: token.AS, Precedence: PrecIsAs, Assoc: LeftAssoc},
		Signature: Signature{InputCardinality: CardSingleton, PropagatesEmpty: false, Deterministic: true, OutputRule: OutputAny, Output: types.Any},
		Evaluate:  asOperatorEval,
	})

	r.register(&Entry{
		Name: "unary+", Kind: OperatorKind,
		Syntax:    Syntax{Form: Prefix, Token: token.PLUS, Precedence: PrecUnary},
		Signature: Signature{InputCardinality: CardSingleton, PropagatesEmpty: true, Deterministic: true, OutputRule: OutputPreserveInput},
		Evaluate:  unaryNumericEval("unary+", func(d value.Value) (value.Value, error) { return d, nil }),
	})
	r.register(&Entry{
		Name: "unary-", Kind: OperatorKind,
		Syntax:    Syntax{Form: Prefix, Token: token.MINUS, Precedence: PrecUnary},
		Signature: Signature{InputCardinality: CardSingleton, PropagatesEmpty: true, Deterministic: true, OutputRule: OutputPreserveInput},
		Evaluate:  unaryNumericEval("unary-", opNegate),
	})
}

func binaryNumericEval(name string, fn func(a, b value.Value) (value.Value, error)) EvaluateHook {
	return func(args EvalArgs) (EvalResult, error) {
		l, ctx, err := args.Eval(args.Left, args.Input, args.Ctx)
		if err != nil {
			return EvalResult{}, err
		}
		r, ctx2, err := args.Eval(args.Right, args.Input, ctx)
		if err != nil {
			return EvalResult{}, err
		}
		if l.IsEmpty() || r.IsEmpty() {
			return EvalResult{Output: nil, Ctx: ctx2}, nil
		}
		lv, ok1 := singleton(l)
		rv, ok2 := singleton(r)
		if !ok1 || !ok2 {
			return EvalResult{}, evalErr(name, "operand is not a singleton")
		}
		out, err := fn(lv, rv)
		if err != nil {
			return EvalResult{}, &EvalError{Op: name, Err: err}
		}
		if out == nil {
			return EvalResult{Output: nil, Ctx: ctx2}, nil
		}
		return EvalResult{Output: one(out), Ctx: ctx2}, nil
	}
}

func unaryNumericEval(name string, fn func(v value.Value) (value.Value, error)) EvaluateHook {
	return func(args EvalArgs) (EvalResult, error) {
		v, ctx, err := args.Eval(args.Right, args.Input, args.Ctx)
		if err != nil {
			return EvalResult{}, err
		}
		if v.IsEmpty() {
			return EvalResult{Output: nil, Ctx: ctx}, nil
		}
		sv, ok := singleton(v)
		if !ok {
			return EvalResult{}, evalErr(name, "operand is not a singleton")
		}
		out, err := fn(sv)
		if err != nil {
			return EvalResult{}, &EvalError{Op: name, Err: err}
		}
		return EvalResult{Output: one(out), Ctx: ctx}, nil
	}
}

func binaryStringConcatEval(args EvalArgs) (EvalResult, error) {
	l, ctx, err := args.Eval(args.Left, args.Input, args.Ctx)
	if err != nil {
		return EvalResult{}, err
	}
	r, ctx2, err := args.Eval(args.Right, args.Input, ctx)
	if err != nil {
		return EvalResult{}, err
	}
	ls, rs := "", ""
	if v, ok := singleton(l); ok {
		ls = v.String()
	}
	if v, ok := singleton(r); ok {
		rs = v.String()
	}
	return EvalResult{Output: one(value.String(ls + rs)), Ctx: ctx2}, nil
}

func binaryCompareEval(name string, ok func(int) bool) EvaluateHook {
	return func(args EvalArgs) (EvalResult, error) {
		l, ctx, err := args.Eval(args.Left, args.Input, args.Ctx)
		if err != nil {
			return EvalResult{}, err
		}
		r, ctx2, err := args.Eval(args.Right, args.Input, ctx)
		if err != nil {
			return EvalResult{}, err
		}
		if l.IsEmpty() || r.IsEmpty() {
			return EvalResult{Output: nil, Ctx: ctx2}, nil
		}
		lv, ok1 := singleton(l)
		rv, ok2 := singleton(r)
		if !ok1 || !ok2 {
			return EvalResult{}, evalErr(name, "operand is not a singleton")
		}
		c, comparable := value.Compare(lv, rv)
		if !comparable {
			return EvalResult{}, evalErr(name, "operands are not comparable")
		}
		return EvalResult{Output: one(value.Boolean(ok(c))), Ctx: ctx2}, nil
	}
}

func binaryEqualityEval(equivalence, negate bool) EvaluateHook {
	return func(args EvalArgs) (EvalResult, error) {
		l, ctx, err := args.Eval(args.Left, args.Input, args.Ctx)
		if err != nil {
			return EvalResult{}, err
		}
		r, ctx2, err := args.Eval(args.Right, args.Input, ctx)
		if err != nil {
			return EvalResult{}, err
		}
		if !equivalence && (l.IsEmpty() || r.IsEmpty()) {
			return EvalResult{Output: nil, Ctx: ctx2}, nil
		}
		var result bool
		if equivalence {
			result = value.CollectionEquivalent(l, r)
		} else {
			result = value.CollectionEqual(l, r)
		}
		if negate {
			result = !result
		}
		return EvalResult{Output: one(value.Boolean(result)), Ctx: ctx2}, nil
	}
}

func binaryUnionEval(args EvalArgs) (EvalResult, error) {
	l, _, err := args.Eval(args.Left, args.Input, args.Ctx)
	if err != nil {
		return EvalResult{}, err
	}
	r, _, err := args.Eval(args.Right, args.Input, args.Ctx)
	if err != nil {
		return EvalResult{}, err
	}
	return EvalResult{Output: value.Union(l, r), Ctx: args.Ctx}, nil
}

type triFn func(a, b value.Tri) value.Tri

func booleanOpEval(fn triFn) EvaluateHook {
	return func(args EvalArgs) (EvalResult, error) {
		l, ctx, err := args.Eval(args.Left, args.Input, args.Ctx)
		if err != nil {
			return EvalResult{}, err
		}
		r, ctx2, err := args.Eval(args.Right, args.Input, ctx)
		if err != nil {
			return EvalResult{}, err
		}
		result := fn(value.ToTri(l), value.ToTri(r))
		return EvalResult{Output: value.FromTri(result), Ctx: ctx2}, nil
	}
}

func triAnd(a, b value.Tri) value.Tri {
	if a == value.TriFalse || b == value.TriFalse {
		return value.TriFalse
	}
	if a == value.TriUnknown || b == value.TriUnknown {
		return value.TriUnknown
	}
	return value.TriTrue
}

func triOr(a, b value.Tri) value.Tri {
	if a == value.TriTrue || b == value.TriTrue {
		return value.TriTrue
	}
	if a == value.TriUnknown || b == value.TriUnknown {
		return value.TriUnknown
	}
	return value.TriFalse
}

func triXor(a, b value.Tri) value.Tri {
	if a == value.TriUnknown || b == value.TriUnknown {
		return value.TriUnknown
	}
	if a == b {
		return value.TriFalse
	}
	return value.TriTrue
}

func triImplies(a, b value.Tri) value.Tri {
	if a == value.TriFalse {
		return value.TriTrue
	}
	if b == value.TriTrue {
		return value.TriTrue
	}
	if a == value.TriTrue && b == value.TriFalse {
		return value.TriFalse
	}
	return value.TriUnknown
}

func membershipEval(contains bool) EvaluateHook {
	return func(args EvalArgs) (EvalResult, error) {
		l, ctx, err := args.Eval(args.Left, args.Input, args.Ctx)
		if err != nil {
			return EvalResult{}, err
		}
		r, ctx2, err := args.Eval(args.Right, args.Input, ctx)
		if err != nil {
			return EvalResult{}, err
		}
		elem, set := l, r
		if contains {
			elem, set = r, l
		}
		if elem.IsEmpty() {
			return EvalResult{Output: nil, Ctx: ctx2}, nil
		}
		item, ok := singleton(elem)
		if !ok {
			return EvalResult{}, evalErr("in/contains", "left-hand side is not a singleton")
		}
		found := false
		for _, s := range set {
			if value.Equivalent(item, s) {
				found = true
				break
			}
		}
		return EvalResult{Output: one(value.Boolean(found)), Ctx: ctx2}, nil
	}
}

// typeNameOf reports the dynamic FHIRPath type name of a single value, used
// by is/as/ofType (spec §4.5 rules 16-17).
func typeNameOf(v value.Value) string {
	switch t := v.(type) {
	case value.Boolean:
		return types.Boolean.TypeName()
	case value.Integer:
		return types.Integer.TypeName()
	case value.Decimal:
		return types.Decimal.TypeName()
	case value.String:
		return types.String.TypeName()
	case value.Date:
		return types.Date.TypeName()
	case value.DateTime:
		return types.DateTime.TypeName()
	case value.Time:
		return types.Time.TypeName()
	case value.Quantity:
		return types.Quantity.TypeName()
	case value.Object:
		return t.Accessor.TypeName()
	default:
		return "Any"
	}
}

// typeRefName extracts the type name referenced by the right-hand operand
// of is/as/ofType, which the parser always produces as a
// TypeOrIdentifier rather than evaluating as a normal expression.
func typeRefName(n ast.Node) (string, bool) {
	switch t := n.(type) {
	case *ast.TypeOrIdentifier:
		if t.Qualifier != "" {
			return t.Qualifier + "." + t.Name, true
		}
		return t.Name, true
	case *ast.Identifier:
		return t.Name, true
	default:
		return "", false
	}
}

// isAsOperand evaluates the left-hand side of is/as whether it arrived as
// an infix operator (args.Left set) or as the `.is(Type)`/`.as(Type)` call
// sugar the parser desugars onto this same entry (args.Left nil, args.Input
// already holding the focus the call was made against).
func isAsOperand(args EvalArgs) (value.Collection, *fpcontext.Context, error) {
	if args.Left != nil {
		return args.Eval(args.Left, args.Input, args.Ctx)
	}
	return args.Input, args.Ctx, nil
}

// isAsTypeSpecifier resolves the type name from whichever slot the parser
// put it in: Right for the infix form, Args[0] for the call form.
func isAsTypeSpecifier(args EvalArgs) (string, bool) {
	if args.Right != nil {
		return typeRefName(args.Right)
	}
	if len(args.Args) > 0 {
		return typeRefName(args.Args[0])
	}
	return "", false
}

func isOperatorEval(args EvalArgs) (EvalResult, error) {
	l, ctx, err := isAsOperand(args)
	if err != nil {
		return EvalResult{}, err
	}
	typeName, ok := isAsTypeSpecifier(args)
	if !ok {
		return EvalResult{}, evalErr("is", "right-hand side is not a type specifier")
	}
	if l.IsEmpty() {
		return EvalResult{Output: nil, Ctx: ctx}, nil
	}
	// Rule 16: over a multi-element collection, `is` is true iff every
	// element matches the named type.
	for _, v := range l {
		if typeNameOf(v) != typeName {
			return EvalResult{Output: one(value.Boolean(false)), Ctx: ctx}, nil
		}
	}
	return EvalResult{Output: one(value.Boolean(true)), Ctx: ctx}, nil
}

func asOperatorEval(args EvalArgs) (EvalResult, error) {
	l, ctx, err := isAsOperand(args)
	if err != nil {
		return EvalResult{}, err
	}
	typeName, ok := isAsTypeSpecifier(args)
	if !ok {
		return EvalResult{}, evalErr("as", "right-hand side is not a type specifier")
	}
	if l.IsEmpty() {
		return EvalResult{Output: nil, Ctx: ctx}, nil
	}
	// Rule 17: `as` filters the collection down to the elements matching
	// the named type, rather than rejecting multi-element input.
	var out value.Collection
	for _, v := range l {
		if typeNameOf(v) == typeName {
			out = append(out, v)
		}
	}
	return EvalResult{Output: out, Ctx: ctx}, nil
}
