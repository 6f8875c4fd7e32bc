// Package fpcontext implements the FHIRPath evaluation context: a
// persistent, copy-on-write scope chain carrying the current input/focus
// collections, user variable bindings, and iterator variables (spec §4.6).
package fpcontext

import (
	"log/slog"

	"github.com/fhirgo/fhirpath/value"
)

// varScope is one link in the persistent scope chain (cons-list), grounded
// on akashmaji946-go-mix/scope/scope.go's Parent-pointer Scope, adapted
// from a mutable map to copy-on-write: Bind never mutates an existing
// scope, it allocates a new child link instead, so that sibling branches
// of a `|` expression — which all start from the same parent scope — never
// observe each other's defineVariable bindings (spec §4.6).
type varScope struct {
	name   string
	value  value.Collection
	parent *varScope
}

func (s *varScope) lookup(name string) (value.Collection, bool) {
	for n := s; n != nil; n = n.parent {
		if n.name == name {
			return n.value, true
		}
	}
	return nil, false
}

// IterFrame holds the iterator variables bound by an enclosing iteration
// (`where`, `select`, `repeat`, `aggregate`, ...): $this, $index, and,
// inside aggregate, $total.
type IterFrame struct {
	This     value.Collection
	HasThis  bool
	Index    int
	HasIndex bool
	Total    value.Collection
	HasTotal bool
}

// TraceSink receives trace() calls (spec §4.5 rule 21). The default
// implementation logs via log/slog; embedders may supply their own to
// route trace output elsewhere.
type TraceSink interface {
	Trace(name string, values value.Collection)
}

// SlogTraceSink is the default TraceSink, logging through log/slog — the
// one place this engine touches a logging library, since the spec
// excludes a logging *setup* layer but still requires a working sink
// (SPEC_FULL.md AMBIENT STACK).
type SlogTraceSink struct {
	Logger *slog.Logger
}

func (s SlogTraceSink) Trace(name string, values value.Collection) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	items := make([]string, 0, len(values))
	for _, v := range values {
		items = append(items, v.String())
	}
	logger.Debug("fhirpath trace", "name", name, "values", items)
}

// reservedNames cannot be redefined by defineVariable (spec §4.6).
var reservedNames = map[string]bool{
	"context": true, "resource": true, "rootResource": true,
	"ucum": true, "sct": true, "loinc": true,
	"this": true, "index": true, "total": true,
}

// IsReserved reports whether name (without its %/$ sigil) is one of the
// reserved variables spec §4.6 forbids redefining.
func IsReserved(name string) bool { return reservedNames[name] }

// Context is the per-evaluation state threaded through the interpreter.
// It is immutable from the caller's point of view: every context-
// transforming operation (defineVariable, iterator scope entry, dot
// navigation's focus change) returns a *new* Context sharing the old one's
// variable chain rather than mutating it in place.
type Context struct {
	Input     value.Collection
	Focus     value.Collection
	vars      *varScope
	Iter      IterFrame
	Trace     TraceSink
	envVars   map[string]value.Collection // %name bindings supplied by the caller, read-only
}

// New creates a root Context for evaluating against the given input.
func New(input value.Collection) *Context {
	return &Context{Input: input, Focus: input, Trace: SlogTraceSink{}}
}

// WithEnv returns a copy of c with its %-prefixed environment variable
// bindings set to env (read-only for the lifetime of the evaluation).
func (c *Context) WithEnv(env map[string]value.Collection) *Context {
	cp := *c
	cp.envVars = env
	return &cp
}

// WithFocus returns a child context with Focus (and, implicitly, $this via
// the caller) changed to focus, used by dot navigation (spec §4.5 rule 4).
func (c *Context) WithFocus(focus value.Collection) *Context {
	cp := *c
	cp.Focus = focus
	return &cp
}

// WithIterFrame returns a child context with its iterator variables
// replaced — used when entering where/select/all/exists/repeat/aggregate
// (spec §4.5 rule 18). The new frame fully replaces the old one: nested
// iterations see only their own $this/$index ($total is additionally
// scoped to aggregate's own call).
func (c *Context) WithIterFrame(frame IterFrame) *Context {
	cp := *c
	cp.Iter = frame
	return &cp
}

// LookupVariable resolves a user/%env variable name against the scope
// chain first, then the environment variables, then the reserved
// read-only bindings. $this/$index/$total are not resolved here: they are
// parsed as distinct AST variants.
func (c *Context) LookupVariable(name string) (value.Collection, bool) {
	if v, ok := c.vars.lookup(name); ok {
		return v, true
	}
	if c.envVars != nil {
		if v, ok := c.envVars[name]; ok {
			return v, true
		}
	}
	switch name {
	case "context":
		return c.Input, true
	case "resource", "rootResource":
		return c.Input, true
	default:
		return nil, false
	}
}

// DefineVariable implements spec §4.5 rule 20 / §4.6: binds name to val in
// a *new* child scope and returns the resulting context, along with ok=
// false if the definition silently failed (reserved name, or redefinition
// of a name already bound in the current chain — spec: "redefining an
// already-bound variable in the same scope yields empty and no change").
func (c *Context) DefineVariable(name string, val value.Collection) (*Context, bool) {
	if IsReserved(name) {
		return c, false
	}
	if _, already := c.vars.lookup(name); already {
		return c, false
	}
	cp := *c
	cp.vars = &varScope{name: name, value: val, parent: c.vars}
	return &cp, true
}
