package registry

import (
	"github.com/fhirgo/fhirpath/types"
	"github.com/fhirgo/fhirpath/value"
)

// registerTreeFunctions populates spec §4.5's structural navigation
// functions, grounded on the Accessor interface's Property-enumeration
// contract (value/value.go) the way the teacher's scope package walks a
// parent-pointer structure node by node.
func registerTreeFunctions(r *Registry) {
	r.register(&Entry{
		Name: "children", Kind: FunctionKind,
		Syntax:    Syntax{Form: Call},
		Signature: Signature{InputCardinality: CardCollection, Output: types.Any, OutputRule: OutputAny},
		Evaluate: func(args EvalArgs) (EvalResult, error) {
			var out value.Collection
			for _, item := range args.Input {
				out = append(out, directChildren(item)...)
			}
			return EvalResult{Output: out}, nil
		},
	})
	r.register(&Entry{
		Name: "descendants", Kind: FunctionKind,
		Syntax:    Syntax{Form: Call},
		Signature: Signature{InputCardinality: CardCollection, Output: types.Any, OutputRule: OutputAny},
		Evaluate: func(args EvalArgs) (EvalResult, error) {
			var out value.Collection
			frontier := args.Input
			for len(frontier) > 0 {
				var next value.Collection
				for _, item := range frontier {
					kids := directChildren(item)
					next = append(next, kids...)
				}
				out = append(out, next...)
				frontier = next
			}
			return EvalResult{Output: out}, nil
		},
	})
}

// directChildren enumerates an Object's navigable properties. Obtaining
// the full field-name list requires an Accessor capability beyond the
// core Property(name) lookup; MapAccessor (value package) additionally
// implements it so `children()`/`descendants()` work over test fixtures
// without a full model provider.
func directChildren(v value.Value) value.Collection {
	obj, ok := v.(value.Object)
	if !ok {
		return nil
	}
	lister, ok := obj.Accessor.(interface{ Fields() []string })
	if !ok {
		return nil
	}
	var out value.Collection
	for _, name := range lister.Fields() {
		if c, ok := obj.Accessor.Property(name); ok {
			out = append(out, c...)
		}
	}
	return out
}
