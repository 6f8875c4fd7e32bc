package parser

import (
	"github.com/fhirgo/fhirpath/ast"
	"github.com/fhirgo/fhirpath/diag"
	"github.com/fhirgo/fhirpath/registry"
	"github.com/fhirgo/fhirpath/token"
)

// parseExpression is the Pratt loop's entry point at a given minimum
// binding power, grounded on akashmaji946-go-mix/parser's parseInternal
// (parser_expressions.go) generalized from a fixed switch-on-TokenType
// dispatch to a registry.GetByToken lookup.
func (p *Parser) parseExpression(minPrec int) ast.Node {
	left := p.parseUnary()
	for left != nil {
		switch p.cur.Kind {
		case token.DOT:
			left = p.parseDotStep(left)
			continue
		case token.LBRACKET:
			left = p.parseIndex(left)
			continue
		}

		if p.cur.Kind == token.IS || p.cur.Kind == token.AS {
			entry, _ := p.reg.GetByName(p.cur.Kind.String())
			if entry.Syntax.Precedence < minPrec {
				return left
			}
			left = p.parseIsAs(left, entry)
			continue
		}

		entry, ok := p.reg.GetByToken(p.cur.Kind, registry.Infix)
		if !ok || entry.Syntax.Precedence < minPrec {
			return left
		}
		opTok := p.cur.Kind
		start := left.Range().Start
		p.advance()
		nextMin := entry.Syntax.Precedence + 1
		right := p.parseExpression(nextMin)
		left = &ast.Binary{Rng: ast.Range{Start: start, End: p.rangeFrom(right).End}, Op: opTok, Left: left, Right: right, OpRef: entry}
	}
	return left
}

// parseUnary handles the prefix +/- operators; everything else falls
// through to parsePrimary. Unary binds tighter than any infix operator but
// looser than postfix dot/index/call, which parsePrimary's caller applies
// afterward via the main parseExpression loop.
func (p *Parser) parseUnary() ast.Node {
	switch p.cur.Kind {
	case token.PLUS, token.MINUS:
		entry, _ := p.reg.GetByToken(p.cur.Kind, registry.Prefix)
		opTok := p.cur.Kind
		start := p.cur.Start
		p.advance()
		operand := p.parseUnary()
		return &ast.Unary{Rng: ast.Range{Start: start, End: p.rangeFrom(operand).End}, Op: opTok, Operand: operand, OpRef: entry}
	default:
		return p.parsePostfix(p.parsePrimary())
	}
}

// parsePostfix applies any immediate dot/index/call chain directly
// following a primary, before the primary is handed to the binary-operator
// loop — dot/index/call all bind tighter than every infix operator (spec
// §4.2's precedence table, PrecDotIndexCall).
func (p *Parser) parsePostfix(left ast.Node) ast.Node {
	for left != nil {
		switch p.cur.Kind {
		case token.DOT:
			left = p.parseDotStep(left)
		case token.LBRACKET:
			left = p.parseIndex(left)
		default:
			return left
		}
	}
	return left
}

func (p *Parser) parseDotStep(left ast.Node) ast.Node {
	start := left.Range().Start
	p.advance() // consume '.'
	step := p.parseDotTarget()
	return &ast.Binary{Rng: ast.Range{Start: start, End: p.rangeFrom(step).End}, Op: token.DOT, Left: left, Right: step}
}

// parseDotTarget parses the single step following a '.': a property name
// or a function call. Any other token, a variable included, is a syntax
// error.
func (p *Parser) parseDotTarget() ast.Node {
	switch p.cur.Kind {
	case token.IDENT, token.TYPE_IDENT, token.DELIM_IDENT:
		name := p.cur.Lexeme
		start := p.cur.Start
		end := p.cur.End
		p.advance()
		if p.cur.Kind == token.LPAREN {
			return p.parseCall(name, start)
		}
		return &ast.Identifier{Rng: ast.Range{Start: start, End: end}, Name: name}
	default:
		p.errorf(diag.UnexpectedToken, "expected a property or function name after '.', got %s", p.cur.Kind)
		rng := ast.Range{Start: p.cur.Start, End: p.cur.End}
		return &ast.ErrorNode{Rng: rng, DiagnosticCode: string(diag.UnexpectedToken)}
	}
}

func (p *Parser) parseIndex(left ast.Node) ast.Node {
	start := left.Range().Start
	p.advance() // consume '['
	idx := p.parseExpression(0)
	end := p.cur.End
	p.expect(token.RBRACKET)
	return &ast.Index{Rng: ast.Range{Start: start, End: end}, Collection: left, IndexExpr: idx}
}

// parseIsAs parses `expr is Type` / `expr as Type`, where the right-hand
// side is a type specifier rather than an ordinary expression (spec §4.2).
func (p *Parser) parseIsAs(left ast.Node, entry *registry.Entry) ast.Node {
	start := left.Range().Start
	opTok := p.cur.Kind
	p.advance()
	right := p.parseTypeSpecifier()
	return &ast.Binary{Rng: ast.Range{Start: start, End: p.rangeFrom(right).End}, Op: opTok, Left: left, Right: right, OpRef: entry}
}

// parseTypeSpecifier parses a (possibly dotted) type name, e.g. `Patient`
// or `FHIR.Patient`, used by is/as/ofType.
func (p *Parser) parseTypeSpecifier() ast.Node {
	if p.cur.Kind != token.TYPE_IDENT && p.cur.Kind != token.IDENT {
		p.errorf(diag.UnexpectedToken, "expected a type name, got %s", p.cur.Kind)
		rng := ast.Range{Start: p.cur.Start, End: p.cur.End}
		return &ast.ErrorNode{Rng: rng, DiagnosticCode: string(diag.UnexpectedToken)}
	}
	start := p.cur.Start
	name := p.cur.Lexeme
	end := p.cur.End
	p.advance()
	qualifier := ""
	if p.cur.Kind == token.DOT {
		p.advance()
		if p.cur.Kind == token.TYPE_IDENT || p.cur.Kind == token.IDENT {
			qualifier = name
			name = p.cur.Lexeme
			end = p.cur.End
			p.advance()
		} else {
			p.errorf(diag.UnexpectedToken, "expected a type name after '.', got %s", p.cur.Kind)
		}
	}
	return &ast.TypeOrIdentifier{Rng: ast.Range{Start: start, End: end}, Name: name, Qualifier: qualifier}
}
