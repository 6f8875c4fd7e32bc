package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fhirgo/fhirpath/token"
)

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, 0, len(toks))
	for _, t := range toks {
		out = append(out, t.Kind)
	}
	return out
}

func TestLex_SimpleExpression(t *testing.T) {
	toks, diags := Lex("Patient.name.given", FailFast)
	require.Empty(t, diags)
	require.Equal(t, []token.Kind{
		token.TYPE_IDENT, token.DOT, token.IDENT, token.DOT, token.IDENT, token.EOF,
	}, kinds(toks))
}

func TestLex_TypeIdentStartsUppercase(t *testing.T) {
	toks, _ := Lex("Patient", FailFast)
	require.Equal(t, token.TYPE_IDENT, toks[0].Kind)
}

func TestLex_KeywordOperators(t *testing.T) {
	toks, diags := Lex("true and false", FailFast)
	require.Empty(t, diags)
	require.Equal(t, []token.Kind{token.TRUE, token.AND, token.FALSE, token.EOF}, kinds(toks))
}

func TestLex_StringEscapes(t *testing.T) {
	toks, diags := Lex(`'a\'b\nc'`, FailFast)
	require.Empty(t, diags)
	require.Equal(t, token.STRING, toks[0].Kind)
	require.Equal(t, "a'b\nc", toks[0].Lexeme)
}

func TestLex_DateDateTimeTime(t *testing.T) {
	toks, diags := Lex("@2020-01-01 @2020-01-01T10:30:00Z @T10:30", FailFast)
	require.Empty(t, diags)
	require.Equal(t, token.DATE, toks[0].Kind)
	require.Equal(t, token.DATETIME, toks[1].Kind)
	require.Equal(t, token.TIME, toks[2].Kind)
}

func TestLex_SpecialAndEnvVariables(t *testing.T) {
	toks, diags := Lex("$this $index $total %resource", FailFast)
	require.Empty(t, diags)
	require.Equal(t, []token.Kind{token.THIS, token.INDEX, token.TOTAL, token.ENV, token.EOF}, kinds(toks))
}

func TestLex_TwoCharOperators(t *testing.T) {
	toks, diags := Lex("<= >= != !~", FailFast)
	require.Empty(t, diags)
	require.Equal(t, []token.Kind{token.LE, token.GE, token.NEQ, token.NEQUIV, token.EOF}, kinds(toks))
}

func TestLex_UnterminatedStringIsIllegalInFailFast(t *testing.T) {
	toks, diags := Lex(`'unterminated`, FailFast)
	require.NotEmpty(t, diags)
	require.Equal(t, token.ILLEGAL, toks[len(toks)-1].Kind)
}

func TestLex_KeywordAfterDotIsPlainIdentifier(t *testing.T) {
	lx := New("foo.is", FailFast)
	first := lx.Next() // foo
	require.Equal(t, token.IDENT, first.Kind)
	dot := lx.Next()
	require.Equal(t, token.DOT, dot.Kind)
	lx.SetAfterDot(true)
	ident := lx.Next()
	require.Equal(t, token.IDENT, ident.Kind)
	require.Equal(t, "is", ident.Lexeme)
}

func TestLex_CommentsAreSkippedInFailFastMode(t *testing.T) {
	toks, diags := Lex("1 // a comment\n+ 2", FailFast)
	require.Empty(t, diags)
	require.Equal(t, []token.Kind{token.NUMBER, token.PLUS, token.NUMBER, token.EOF}, kinds(toks))
}
