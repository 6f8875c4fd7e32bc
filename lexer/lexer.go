// Package lexer converts FHIRPath source text into a positioned token
// stream. A single forward pass, O(n) in source length; never panics in
// diagnostic mode, instead emitting an ILLEGAL token carrying a diagnostic.
package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/fhirgo/fhirpath/diag"
	"github.com/fhirgo/fhirpath/token"
)

// ASCII character classification tables, following the teacher's 128-entry
// bit-table pattern (akashmaji946-go-mix/lexer/lexer.go init()).
var (
	isWhitespace [128]bool
	isIdentStart [128]bool
	isIdentPart  [128]bool
)

func init() {
	for i := 0; i < 128; i++ {
		ch := byte(i)
		isWhitespace[i] = ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
		isIdentStart[i] = ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ch == '_'
		isIdentPart[i] = isIdentStart[i] || ('0' <= ch && ch <= '9')
	}
}

// Mode selects fail-fast vs diagnostic-with-trivia lexing.
type Mode int

const (
	FailFast Mode = iota
	Diagnostic
)

// Lexer scans FHIRPath source text into tokens.
type Lexer struct {
	src      string
	pos      int
	line     int
	column   int
	mode     Mode
	diags    *diag.Collector
	afterDot bool
}

// New creates a Lexer over src in the given mode.
func New(src string, mode Mode) *Lexer {
	return &Lexer{src: src, pos: 0, line: 1, column: 1, mode: mode, diags: diag.NewCollector()}
}

// Lex tokenizes the entire source in one pass, returning the token stream
// (always terminated by a single EOF token) and any diagnostics collected.
// In FailFast mode, Lex stops at (and includes) the first ILLEGAL token.
func Lex(src string, mode Mode) ([]token.Token, []diag.Diagnostic) {
	lx := New(src, mode)
	var toks []token.Token
	for {
		t := lx.Next()
		toks = append(toks, t)
		if t.Kind == token.EOF {
			break
		}
		if t.Kind == token.ILLEGAL && mode == FailFast {
			break
		}
	}
	return toks, lx.diags.All()
}

func (l *Lexer) peekByte(offset int) byte {
	if l.pos+offset >= len(l.src) {
		return 0
	}
	return l.src[l.pos+offset]
}

func (l *Lexer) cur() byte { return l.peekByte(0) }

func (l *Lexer) advance() byte {
	ch := l.cur()
	l.pos++
	if ch == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return ch
}

func (l *Lexer) eof() bool { return l.pos >= len(l.src) }

// Next scans and returns the next token, skipping (or, in Diagnostic mode,
// returning as trivia) whitespace and comments first.
func (l *Lexer) Next() token.Token {
	if trivia, had := l.skipTrivia(); had && l.mode == Diagnostic {
		return trivia
	}

	start := l.pos
	line, col := l.line, l.column

	if l.eof() {
		return l.make(token.EOF, "", start, line, col)
	}

	ch := l.cur()
	wasAfterDot := l.afterDot
	l.afterDot = false

	switch {
	case ch == '`':
		return l.lexBacktickIdent(start, line, col)
	case ch == '\'':
		return l.lexString(start, line, col)
	case ch == '@':
		return l.lexDateTime(start, line, col)
	case ch == '%':
		return l.lexEnvVar(start, line, col)
	case ch == '$':
		return l.lexSpecialVar(start, line, col)
	case isAsciiDigit(ch):
		return l.lexNumber(start, line, col)
	case isIdentStart[ch] || ch >= 128:
		return l.lexIdentOrKeyword(start, line, col, wasAfterDot)
	}

	return l.lexSymbol(start, line, col)
}

func (l *Lexer) make(kind token.Kind, lexeme string, start, line, col int) token.Token {
	return token.Token{Kind: kind, Lexeme: lexeme, Start: start, End: l.pos, Line: line, Column: col}
}

func (l *Lexer) illegal(code diag.Code, msg string, start, line, col int) token.Token {
	l.diags.Add(diag.Diagnostic{
		Severity: diag.Error, Code: code,
		Range:   diag.Range{Start: start, End: l.pos},
		Message: msg,
	})
	return l.make(token.ILLEGAL, l.src[start:l.pos], start, line, col)
}

// skipTrivia consumes whitespace and comments, returning the consumed span
// as a hidden-channel token when running in Diagnostic mode.
func (l *Lexer) skipTrivia() (token.Token, bool) {
	start := l.pos
	line, col := l.line, l.column
	found := false
	for !l.eof() {
		ch := l.cur()
		if ch < 128 && isWhitespace[ch] {
			l.advance()
			found = true
			continue
		}
		if ch == '/' && l.peekByte(1) == '/' {
			for !l.eof() && l.cur() != '\n' {
				l.advance()
			}
			found = true
			continue
		}
		if ch == '/' && l.peekByte(1) == '*' {
			l.advance()
			l.advance()
			closed := false
			for !l.eof() {
				if l.cur() == '*' && l.peekByte(1) == '/' {
					l.advance()
					l.advance()
					closed = true
					break
				}
				l.advance()
			}
			if !closed {
				l.diags.Add(diag.Diagnostic{
					Severity: diag.Error, Code: diag.UnclosedComment,
					Range: diag.Range{Start: start, End: l.pos}, Message: "unterminated block comment",
				})
			}
			found = true
			continue
		}
		break
	}
	if !found {
		return token.Token{}, false
	}
	return token.Token{
		Kind: token.WHITESPACE, Lexeme: l.src[start:l.pos], Start: start, End: l.pos,
		Line: line, Column: col, Channel: token.ChannelTrivia,
	}, true
}

func (l *Lexer) lexBacktickIdent(start, line, col int) token.Token {
	l.advance()
	for !l.eof() && l.cur() != '`' {
		l.advance()
	}
	if l.eof() {
		return l.illegal(diag.UnclosedString, "unterminated back-tick identifier", start, line, col)
	}
	l.advance()
	lexeme := l.src[start+1 : l.pos-1]
	return l.make(token.DELIM_IDENT, lexeme, start, line, col)
}

func (l *Lexer) lexString(start, line, col int) token.Token {
	l.advance()
	var sb strings.Builder
	for {
		if l.eof() {
			return l.illegal(diag.UnclosedString, "unterminated string literal", start, line, col)
		}
		ch := l.cur()
		if ch == '\'' {
			l.advance()
			break
		}
		if ch == '\\' {
			l.advance()
			if l.eof() {
				return l.illegal(diag.UnclosedString, "unterminated string escape", start, line, col)
			}
			esc := l.advance()
			switch esc {
			case '\'':
				sb.WriteByte('\'')
			case '"':
				sb.WriteByte('"')
			case '\\':
				sb.WriteByte('\\')
			case '`':
				sb.WriteByte('`')
			case '/':
				sb.WriteByte('/')
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			case 'f':
				sb.WriteByte('\f')
			case 'u':
				if l.pos+4 <= len(l.src) {
					if r, ok := parseHex4(l.src[l.pos : l.pos+4]); ok {
						sb.WriteRune(r)
						for i := 0; i < 4; i++ {
							l.advance()
						}
						continue
					}
				}
				sb.WriteByte('u')
			default:
				sb.WriteByte(esc)
			}
			continue
		}
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		if r == utf8.RuneError && size <= 1 {
			l.advance()
			sb.WriteByte(ch)
			continue
		}
		for i := 0; i < size; i++ {
			l.advance()
		}
		sb.WriteRune(r)
	}
	return token.Token{Kind: token.STRING, Lexeme: sb.String(), Start: start, End: l.pos, Line: line, Column: col}
}

func parseHex4(s string) (rune, bool) {
	var v rune
	for _, c := range s {
		v <<= 4
		switch {
		case c >= '0' && c <= '9':
			v |= rune(c - '0')
		case c >= 'a' && c <= 'f':
			v |= rune(c-'a') + 10
		case c >= 'A' && c <= 'F':
			v |= rune(c-'A') + 10
		default:
			return 0, false
		}
	}
	return v, true
}

func isAsciiDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

var calendarDurationWords = map[string]bool{
	"year": true, "years": true, "month": true, "months": true,
	"week": true, "weeks": true, "day": true, "days": true,
	"hour": true, "hours": true, "minute": true, "minutes": true,
	"second": true, "seconds": true, "millisecond": true, "milliseconds": true,
}

// IsCalendarDurationWord reports whether word is a recognized unquoted
// calendar-duration unit keyword usable as a quantity literal suffix.
func IsCalendarDurationWord(word string) bool { return calendarDurationWords[word] }

// lexNumber scans decimal digits with an optional fractional part. A
// trailing calendar-duration word or quoted UCUM unit, if present, is left
// for the parser to consume as a quantity literal suffix (spec §4.1): the
// lexer only promises maximal-munch on the numeric part itself.
func (l *Lexer) lexNumber(start, line, col int) token.Token {
	for !l.eof() && isAsciiDigit(l.cur()) {
		l.advance()
	}
	if !l.eof() && l.cur() == '.' && isAsciiDigit(l.peekByte(1)) {
		l.advance()
		for !l.eof() && isAsciiDigit(l.cur()) {
			l.advance()
		}
	}
	return l.make(token.NUMBER, l.src[start:l.pos], start, line, col)
}

func (l *Lexer) lexDateTime(start, line, col int) token.Token {
	l.advance() // '@'
	if !l.eof() && l.cur() == 'T' {
		l.advance()
		l.scanTimeBody()
		return l.make(token.TIME, l.src[start:l.pos], start, line, col)
	}
	digits := 0
	for !l.eof() && isAsciiDigit(l.cur()) {
		l.advance()
		digits++
	}
	if digits != 4 {
		return l.illegal(diag.UnexpectedToken, "expected 4-digit year in date/time literal", start, line, col)
	}
	isDateTime := false
	if !l.eof() && l.cur() == '-' {
		l.advance()
		l.scanTwoDigits()
		if !l.eof() && l.cur() == '-' {
			l.advance()
			l.scanTwoDigits()
		}
	}
	if !l.eof() && l.cur() == 'T' {
		isDateTime = true
		l.advance()
		l.scanTimeBody()
	}
	if isDateTime {
		return l.make(token.DATETIME, l.src[start:l.pos], start, line, col)
	}
	return l.make(token.DATE, l.src[start:l.pos], start, line, col)
}

func (l *Lexer) scanTwoDigits() {
	for i := 0; i < 2 && !l.eof() && isAsciiDigit(l.cur()); i++ {
		l.advance()
	}
}

func (l *Lexer) scanTimeBody() {
	l.scanTwoDigits()
	if !l.eof() && l.cur() == ':' {
		l.advance()
		l.scanTwoDigits()
		if !l.eof() && l.cur() == ':' {
			l.advance()
			l.scanTwoDigits()
			if !l.eof() && l.cur() == '.' {
				l.advance()
				for !l.eof() && isAsciiDigit(l.cur()) {
					l.advance()
				}
			}
		}
	}
	if !l.eof() && l.cur() == 'Z' {
		l.advance()
		return
	}
	if !l.eof() && (l.cur() == '+' || l.cur() == '-') {
		l.advance()
		l.scanTwoDigits()
		if !l.eof() && l.cur() == ':' {
			l.advance()
			l.scanTwoDigits()
		}
	}
}

func (l *Lexer) lexEnvVar(start, line, col int) token.Token {
	l.advance() // '%'
	if !l.eof() && l.cur() == '\'' {
		strTok := l.lexString(l.pos, l.line, l.column)
		if strTok.Kind == token.ILLEGAL {
			return strTok
		}
		return token.Token{Kind: token.ENV, Lexeme: strTok.Lexeme, Start: start, End: l.pos, Line: line, Column: col}
	}
	nameStart := l.pos
	for !l.eof() && isIdentPartByte(l.cur()) {
		l.advance()
	}
	if l.pos == nameStart {
		return l.illegal(diag.UnexpectedToken, "expected name after '%'", start, line, col)
	}
	return l.make(token.ENV, l.src[nameStart:l.pos], start, line, col)
}

func (l *Lexer) lexSpecialVar(start, line, col int) token.Token {
	l.advance() // '$'
	nameStart := l.pos
	for !l.eof() && isIdentPartByte(l.cur()) {
		l.advance()
	}
	switch l.src[nameStart:l.pos] {
	case "this":
		return l.make(token.THIS, "$this", start, line, col)
	case "index":
		return l.make(token.INDEX, "$index", start, line, col)
	case "total":
		return l.make(token.TOTAL, "$total", start, line, col)
	default:
		return l.illegal(diag.UnknownVariable, "unknown special variable", start, line, col)
	}
}

func isIdentPartByte(ch byte) bool {
	if ch < 128 {
		return isIdentPart[ch]
	}
	return true
}

func (l *Lexer) lexIdentOrKeyword(start, line, col int, afterDot bool) token.Token {
	for !l.eof() {
		ch := l.cur()
		if ch < 128 {
			if !isIdentPart[ch] {
				break
			}
			l.advance()
			continue
		}
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		for i := 0; i < size; i++ {
			l.advance()
		}
	}
	lexeme := l.src[start:l.pos]
	if kw, ok := token.Keywords[lexeme]; ok && !afterDot {
		return l.make(kw, lexeme, start, line, col)
	}
	r, _ := utf8.DecodeRuneInString(lexeme)
	if unicode.IsUpper(r) {
		return l.make(token.TYPE_IDENT, lexeme, start, line, col)
	}
	return l.make(token.IDENT, lexeme, start, line, col)
}

func (l *Lexer) lexSymbol(start, line, col int) token.Token {
	ch := l.advance()
	two := func(next byte, kind token.Kind, lexeme string) (token.Token, bool) {
		if !l.eof() && l.cur() == next {
			l.advance()
			return l.make(kind, lexeme, start, line, col), true
		}
		return token.Token{}, false
	}

	switch ch {
	case '.':
		return l.make(token.DOT, ".", start, line, col)
	case '+':
		return l.make(token.PLUS, "+", start, line, col)
	case '-':
		return l.make(token.MINUS, "-", start, line, col)
	case '*':
		return l.make(token.STAR, "*", start, line, col)
	case '/':
		return l.make(token.SLASH, "/", start, line, col)
	case '&':
		return l.make(token.AMP, "&", start, line, col)
	case '|':
		return l.make(token.PIPE, "|", start, line, col)
	case ',':
		return l.make(token.COMMA, ",", start, line, col)
	case '(':
		return l.make(token.LPAREN, "(", start, line, col)
	case ')':
		return l.make(token.RPAREN, ")", start, line, col)
	case '[':
		return l.make(token.LBRACKET, "[", start, line, col)
	case ']':
		return l.make(token.RBRACKET, "]", start, line, col)
	case '{':
		return l.make(token.LBRACE, "{", start, line, col)
	case '}':
		return l.make(token.RBRACE, "}", start, line, col)
	case '=':
		return l.make(token.EQ, "=", start, line, col)
	case '~':
		return l.make(token.EQUIV, "~", start, line, col)
	case '!':
		if tok, ok := two('=', token.NEQ, "!="); ok {
			return tok
		}
		if tok, ok := two('~', token.NEQUIV, "!~"); ok {
			return tok
		}
	case '<':
		if tok, ok := two('=', token.LE, "<="); ok {
			return tok
		}
		return l.make(token.LT, "<", start, line, col)
	case '>':
		if tok, ok := two('=', token.GE, ">="); ok {
			return tok
		}
		return l.make(token.GT, ">", start, line, col)
	}

	return l.illegal(diag.UnexpectedToken, "unexpected character", start, line, col)
}

// SetAfterDot tells the lexer that the next identifier-shaped token should
// be treated as a plain name even if it spells a keyword, per spec §4.1's
// "after a . they are treated as identifiers" rule. The parser calls this
// immediately before requesting the token following a DOT.
func (l *Lexer) SetAfterDot(v bool) { l.afterDot = v }

// Diagnostics returns every diagnostic collected so far (illegal-token
// errors). Used by the parser to fold lexical errors into its own
// diagnostic collector when consuming tokens incrementally via Next.
func (l *Lexer) Diagnostics() []diag.Diagnostic { return l.diags.All() }
