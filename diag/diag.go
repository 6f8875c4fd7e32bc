// Package diag defines the diagnostic model shared by the lexer, parser,
// and analyzer: severities, stable codes, source ranges, and a collector
// that aggregates diagnostics across a parse/analyze pass.
package diag

import (
	"fmt"

	"go.uber.org/multierr"
)

// Severity classifies how serious a diagnostic is.
type Severity int

const (
	Error Severity = iota
	Warning
	Info
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Info:
		return "info"
	default:
		return "unknown"
	}
}

// Code is a stable, machine-readable diagnostic identifier (spec §6).
type Code string

const (
	UnknownFunction  Code = "UNKNOWN_FUNCTION"
	UnknownOperator  Code = "UNKNOWN_OPERATOR"
	UnknownVariable  Code = "UNKNOWN_VARIABLE"
	UnknownProperty  Code = "UNKNOWN_PROPERTY"
	TypeMismatch     Code = "TYPE_MISMATCH"
	InvalidArgCount  Code = "INVALID_ARG_COUNT"
	InvalidOperator  Code = "INVALID_OPERATOR"
	UnclosedBracket  Code = "UNCLOSED_BRACKET"
	UnclosedString   Code = "UNCLOSED_STRING"
	UnclosedComment  Code = "UNCLOSED_COMMENT"
	UnexpectedToken  Code = "UNEXPECTED_TOKEN"
)

// Range is an inclusive-start, exclusive-end byte-offset span within the
// original source text.
type Range struct {
	Start int
	End   int
}

// Diagnostic is a single non-fatal finding produced by the lexer, parser,
// or analyzer.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Range    Range
	Message  string
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s [%s] (%d-%d)", d.Severity, d.Message, d.Code, d.Range.Start, d.Range.End)
}

// Collector aggregates diagnostics produced during a single parse or
// analyze pass. It is not safe for concurrent use from multiple
// goroutines — parsing and analysis are single-threaded per spec §5.
type Collector struct {
	items []Diagnostic
	max   int
}

// NewCollector creates an empty Collector with no maximum.
func NewCollector() *Collector { return &Collector{} }

// NewCollectorWithLimit creates a Collector that stops recording new
// diagnostics (silently, Add becomes a no-op) once max have been added.
// max <= 0 means unlimited.
func NewCollectorWithLimit(max int) *Collector { return &Collector{max: max} }

// Add records a diagnostic, subject to the collector's max.
func (c *Collector) Add(d Diagnostic) {
	if c.max > 0 && len(c.items) >= c.max {
		return
	}
	c.items = append(c.items, d)
}

// All returns every diagnostic recorded so far, in emission order.
func (c *Collector) All() []Diagnostic { return c.items }

// HasErrors reports whether any recorded diagnostic has Error severity.
func (c *Collector) HasErrors() bool {
	for _, d := range c.items {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Err folds every recorded diagnostic into a single error via
// go.uber.org/multierr, or returns nil if nothing was recorded. This lets a
// fail-fast-compatible caller treat a diagnostic batch as one Go error
// without losing any individual diagnostic (multierr.Errors unwraps it
// back into the constituent errors).
func (c *Collector) Err() error {
	var err error
	for _, d := range c.items {
		err = multierr.Append(err, d)
	}
	return err
}
