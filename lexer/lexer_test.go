package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func tokens(s string) []string {
	line := []rune(s)
	var out []string
	pos := 0
	for {
		tok, end := NextToken(line, pos)
		if tok == "" {
			break
		}
		out = append(out, tok)
		pos = end
	}
	return out
}

func TestSingleCharTokens(t *testing.T) {
	assert.Equal(t, []string{"(", ")", "{", "}", "[", "]", ",", ";", "*", "/", "+", "-", "="},
		tokens("( ) { } [ ] , ; * / + - ="))
}

func TestIdentifierRun(t *testing.T) {
	assert.Equal(t, []string{"func", "global", "void", "add_vec"}, tokens("func global void add_vec"))
}

func TestCommentEndsLine(t *testing.T) {
	assert.Equal(t, []string{"c", "=", "a"}, tokens("c = a # + b;"))
}

func TestFloatLiteralIsOneToken(t *testing.T) {
	assert.Equal(t, []string{"1.5"}, tokens("1.5"))
}

func TestAdjacentPunctuationSplitsTokens(t *testing.T) {
	assert.Equal(t, []string{"c", "=", "a", "+", "b", ";"}, tokens("c=a+b;"))
}

func TestEmptyLineYieldsNoTokens(t *testing.T) {
	assert.Empty(t, tokens("   "))
	assert.Empty(t, tokens(""))
}

func TestStartPastLineEndYieldsEmpty(t *testing.T) {
	line := []rune("abc")
	tok, end := NextToken(line, 10)
	assert.Equal(t, "", tok)
	assert.Equal(t, 10, end)
}

func TestCommentOnlyLine(t *testing.T) {
	line := []rune("# just a comment")
	tok, end := NextToken(line, 0)
	assert.Equal(t, "", tok)
	assert.Equal(t, 0, end)
}

func TestParenBalanceTokensForCallSyntax(t *testing.T) {
	assert.Equal(t, []string{"muladd", "(", "a", ",", "b", ",", "c", ")", ";"},
		tokens("muladd(a, b, c);"))
}
