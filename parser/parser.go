// Package parser implements a Pratt (precedence-climbing) parser for
// FHIRPath expressions over the shared registry's operator table, grounded
// on akashmaji946-go-mix/parser's CurrToken/NextToken two-token lookahead
// and UnaryFuncs/BinaryFuncs dispatch maps (parser.go, parser_precedence.go),
// generalized from that language's fixed grammar to a registry-driven one.
package parser

import (
	"fmt"

	"github.com/fhirgo/fhirpath/ast"
	"github.com/fhirgo/fhirpath/diag"
	"github.com/fhirgo/fhirpath/lexer"
	"github.com/fhirgo/fhirpath/registry"
	"github.com/fhirgo/fhirpath/token"
)

// Mode selects fail-fast (first syntax error aborts with an error) vs
// diagnostic (best-effort recovery, producing Incomplete/ErrorNode nodes
// and continuing) parsing, mirroring lexer.Mode (spec §3, §6).
type Mode int

const (
	FailFast Mode = iota
	Diagnostic
)

// Parser holds all state for one parse of one source string.
type Parser struct {
	lx   *lexer.Lexer
	reg  *registry.Registry
	mode Mode
	diag *diag.Collector

	cur  token.Token
	peek token.Token

	src string
}

// New creates a Parser over src using the process-wide default registry.
func New(src string, mode Mode) *Parser {
	return NewWithRegistry(src, mode, registry.Default())
}

// NewWithRegistry creates a Parser over src consulting reg instead of the
// default registry — mainly for tests exercising a custom-registered
// operator/function.
func NewWithRegistry(src string, mode Mode, reg *registry.Registry) *Parser {
	lxMode := lexer.FailFast
	if mode == Diagnostic {
		lxMode = lexer.Diagnostic
	}
	p := &Parser{lx: lexer.New(src, lxMode), reg: reg, mode: mode, diag: diag.NewCollector(), src: src}
	p.advance()
	p.advance()
	return p
}

// Diagnostics returns every diagnostic recorded during the parse, lexical
// and syntactic alike.
func (p *Parser) Diagnostics() []diag.Diagnostic {
	all := append([]diag.Diagnostic{}, p.lx.Diagnostics()...)
	return append(all, p.diag.All()...)
}

// Parse parses a complete expression and returns its root node. In
// FailFast mode a syntax error returns (nil, error); in Diagnostic mode
// parsing always returns a best-effort tree plus recorded diagnostics
// (spec §3: "dual fail-fast / diagnostic-recovery parse modes").
func Parse(src string) (ast.Node, error) {
	p := New(src, FailFast)
	n := p.ParseProgram()
	if p.diag.HasErrors() || len(p.lx.Diagnostics()) > 0 {
		col := diag.NewCollector()
		for _, d := range p.Diagnostics() {
			col.Add(d)
		}
		return nil, col.Err()
	}
	return n, nil
}

// ParseDiagnostic parses in recovery mode, always returning a tree (which
// may embed ErrorNode/Incomplete) alongside every diagnostic collected.
func ParseDiagnostic(src string) (ast.Node, []diag.Diagnostic) {
	p := New(src, Diagnostic)
	n := p.ParseProgram()
	return n, p.Diagnostics()
}

// ParseProgram parses one top-level expression through end of input.
func (p *Parser) ParseProgram() ast.Node {
	n := p.parseExpression(0)
	if p.cur.Kind != token.EOF {
		p.errorf(diag.UnexpectedToken, "unexpected trailing input %q", p.cur.Lexeme)
		if p.mode == Diagnostic {
			return &ast.Incomplete{Rng: p.rangeFrom(n), Partial: n, MissingParts: []string{"end of input"}}
		}
	}
	return n
}

func (p *Parser) advance() {
	p.cur = p.peek
	beforeDot := p.cur.Kind == token.DOT
	p.lx.SetAfterDot(beforeDot)
	p.peek = p.lx.Next()
	for p.peek.Channel == token.ChannelTrivia {
		p.peek = p.lx.Next()
	}
}

func (p *Parser) rangeFrom(n ast.Node) ast.Range {
	if n == nil {
		return ast.Range{Start: p.cur.Start, End: p.cur.Start}
	}
	return n.Range()
}

func (p *Parser) errorf(code diag.Code, format string, args ...any) {
	p.diag.Add(diag.Diagnostic{
		Severity: diag.Error,
		Code:     code,
		Range:    diag.Range{Start: p.cur.Start, End: p.cur.End},
		Message:  fmt.Sprintf(format, args...),
	})
}

func (p *Parser) expect(kind token.Kind) bool {
	if p.cur.Kind == kind {
		p.advance()
		return true
	}
	p.errorf(diag.UnexpectedToken, "expected %s, got %s", kind, p.cur.Kind)
	return false
}
