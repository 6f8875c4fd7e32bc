package parser

import (
	"github.com/fhirgo/fhirpath/ast"
	"github.com/fhirgo/fhirpath/diag"
	"github.com/fhirgo/fhirpath/token"
)

// calendarUnitKeywords are the bare (unquoted) duration words a NUMBER
// literal may be suffixed with to form a quantity literal (spec §4.1:
// `4 days`, as opposed to `4 'd'`).
var calendarUnitKeywords = map[string]bool{
	"year": true, "years": true, "month": true, "months": true,
	"week": true, "weeks": true, "day": true, "days": true,
	"hour": true, "hours": true, "minute": true, "minutes": true,
	"second": true, "seconds": true, "millisecond": true, "milliseconds": true,
}

// parsePrimary parses one atomic expression: a literal, identifier,
// variable, parenthesized group, or collection literal.
func (p *Parser) parsePrimary() ast.Node {
	start := p.cur.Start
	switch p.cur.Kind {
	case token.NUMBER:
		return p.parseNumberOrQuantity()
	case token.STRING:
		n := &ast.Literal{Rng: ast.Range{Start: start, End: p.cur.End}, ValueKind: ast.StringValue, Raw: p.cur.Lexeme}
		p.advance()
		return n
	case token.DATE:
		n := &ast.Literal{Rng: ast.Range{Start: start, End: p.cur.End}, ValueKind: ast.DateValue, Raw: p.cur.Lexeme}
		p.advance()
		return n
	case token.DATETIME:
		n := &ast.Literal{Rng: ast.Range{Start: start, End: p.cur.End}, ValueKind: ast.DateTimeValue, Raw: p.cur.Lexeme}
		p.advance()
		return n
	case token.TIME:
		n := &ast.Literal{Rng: ast.Range{Start: start, End: p.cur.End}, ValueKind: ast.TimeValue, Raw: p.cur.Lexeme}
		p.advance()
		return n
	case token.TRUE, token.FALSE:
		raw := p.cur.Lexeme
		n := &ast.Literal{Rng: ast.Range{Start: start, End: p.cur.End}, ValueKind: ast.BooleanValue, Raw: raw}
		p.advance()
		return n
	case token.THIS:
		n := &ast.Variable{Rng: ast.Range{Start: start, End: p.cur.End}, Kind: ast.VarThis}
		p.advance()
		return n
	case token.INDEX:
		n := &ast.Variable{Rng: ast.Range{Start: start, End: p.cur.End}, Kind: ast.VarIndex}
		p.advance()
		return n
	case token.TOTAL:
		n := &ast.Variable{Rng: ast.Range{Start: start, End: p.cur.End}, Kind: ast.VarTotal}
		p.advance()
		return n
	case token.ENV:
		name := p.cur.Lexeme
		n := &ast.Variable{Rng: ast.Range{Start: start, End: p.cur.End}, Kind: ast.VarEnv, Name: name}
		p.advance()
		return n
	case token.LPAREN:
		p.advance()
		inner := p.parseExpression(0)
		end := p.cur.End
		p.expect(token.RPAREN)
		if inner != nil {
			inner = rewriteRange(inner, ast.Range{Start: start, End: end})
		}
		return inner
	case token.LBRACE:
		return p.parseCollectionLiteral()
	case token.IDENT, token.TYPE_IDENT, token.DELIM_IDENT:
		name := p.cur.Lexeme
		end := p.cur.End
		isType := p.cur.Kind == token.TYPE_IDENT
		p.advance()
		if p.cur.Kind == token.LPAREN {
			return p.parseCall(name, start)
		}
		if isType {
			return &ast.TypeOrIdentifier{Rng: ast.Range{Start: start, End: end}, Name: name}
		}
		return &ast.Identifier{Rng: ast.Range{Start: start, End: end}, Name: name}
	case token.NOT:
		if p.peek.Kind == token.LPAREN {
			name := p.cur.Lexeme
			p.advance()
			return p.parseCall(name, start)
		}
		fallthrough
	default:
		p.errorf(diag.UnexpectedToken, "unexpected token %s", p.cur.Kind)
		rng := ast.Range{Start: start, End: p.cur.End}
		if p.mode == Diagnostic {
			p.advance()
		}
		return &ast.ErrorNode{Rng: rng, DiagnosticCode: string(diag.UnexpectedToken)}
	}
}

// parseNumberOrQuantity parses a NUMBER token, then checks whether it is
// immediately followed by a unit (a STRING literal, as in `4 'mg'`, or a
// bare calendar-duration keyword, as in `4 days`) to form a Quantity
// literal instead of a plain Integer/Decimal (spec §4.1).
func (p *Parser) parseNumberOrQuantity() ast.Node {
	start := p.cur.Start
	raw := p.cur.Lexeme
	end := p.cur.End
	kind := ast.IntegerValue
	for _, c := range raw {
		if c == '.' {
			kind = ast.DecimalValue
			break
		}
	}
	p.advance()

	unit := ""
	switch {
	case p.cur.Kind == token.STRING:
		unit = p.cur.Lexeme
		end = p.cur.End
		p.advance()
	case p.cur.Kind == token.IDENT && calendarUnitKeywords[p.cur.Lexeme]:
		unit = p.cur.Lexeme
		end = p.cur.End
		p.advance()
	}
	if unit != "" {
		return &ast.Literal{Rng: ast.Range{Start: start, End: end}, ValueKind: ast.QuantityValue, Raw: raw, Unit: unit}
	}
	return &ast.Literal{Rng: ast.Range{Start: start, End: end}, ValueKind: kind, Raw: raw}
}

// parseCall parses a function call's argument list once the callee name
// and an immediately-following '(' have been recognized.
func (p *Parser) parseCall(name string, start int) ast.Node {
	p.expect(token.LPAREN)
	var args []ast.Node
	for p.cur.Kind != token.RPAREN && p.cur.Kind != token.EOF {
		args = append(args, p.parseExpression(0))
		if p.cur.Kind == token.COMMA {
			p.advance()
			continue
		}
		break
	}
	end := p.cur.End
	p.expect(token.RPAREN)
	entry, _ := p.reg.GetByName(name)
	return &ast.Function{Rng: ast.Range{Start: start, End: end}, Name: name, Arguments: args, OpRef: entry}
}

// parseCollectionLiteral parses `{}` or `{e1, e2, ...}` (spec §4.1).
func (p *Parser) parseCollectionLiteral() ast.Node {
	start := p.cur.Start
	p.advance() // consume '{'
	var elems []ast.Node
	for p.cur.Kind != token.RBRACE && p.cur.Kind != token.EOF {
		elems = append(elems, p.parseExpression(0))
		if p.cur.Kind == token.COMMA {
			p.advance()
			continue
		}
		break
	}
	end := p.cur.End
	p.expect(token.RBRACE)
	return &ast.Collection{Rng: ast.Range{Start: start, End: end}, Elements: elems}
}

// rewriteRange returns n with its Range widened to rng (used for
// parenthesized groups, whose visible span includes the parens
// themselves).
func rewriteRange(n ast.Node, rng ast.Range) ast.Node {
	switch v := n.(type) {
	case *ast.Literal:
		v.Rng = rng
	case *ast.Identifier:
		v.Rng = rng
	case *ast.TypeOrIdentifier:
		v.Rng = rng
	case *ast.Variable:
		v.Rng = rng
	case *ast.Binary:
		v.Rng = rng
	case *ast.Unary:
		v.Rng = rng
	case *ast.Function:
		v.Rng = rng
	case *ast.Index:
		v.Rng = rng
	case *ast.Collection:
		v.Rng = rng
	}
	return n
}
