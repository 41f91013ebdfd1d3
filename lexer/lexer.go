// Package lexer implements the on-demand, per-line TGL tokenizer of
// spec.md §4.2. Unlike a conventional lexer that tokenizes an entire
// source file up front, NextToken operates on one line at a time and is
// driven by the parser's own line/column cursor — there is no lexer
// object holding position state between calls.
package lexer

import "unicode"

// singleCharTokens are the brackets, separators, and operators that are
// always exactly one character wide, regardless of what follows them.
var singleCharTokens = map[rune]bool{
	'(': true, ')': true, '[': true, ']': true, '{': true, '}': true,
	',': true, ';': true,
	'*': true, '/': true, '+': true, '-': true, '=': true,
}

// NextToken implements the contract of spec.md §4.2:
//
//	next_token(line, start) -> (token_text, end_pos)
//
// It skips leading whitespace, recognizes '#' as a to-end-of-line
// comment (returning an empty token positioned at the '#'), recognizes
// single-character tokens, and otherwise returns the longest run of
// characters that are neither whitespace nor punctuation (identifiers,
// keywords, and numeric literals are lexically identical at this
// layer — the parser tells them apart).
//
// An empty returned token means "no more tokens on this line"; callers
// advance to the next line and reset the column themselves.
func NextToken(line []rune, start int) (text string, end int) {
	pos := start
	for pos < len(line) && isSpace(line[pos]) {
		pos++
	}

	if pos >= len(line) {
		return "", pos
	}

	if line[pos] == '#' {
		return "", pos
	}

	if singleCharTokens[line[pos]] {
		return string(line[pos]), pos + 1
	}

	runStart := pos
	for pos < len(line) && !isSpace(line[pos]) && !singleCharTokens[line[pos]] && line[pos] != '#' {
		pos++
	}
	return string(line[runStart:pos]), pos
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || unicode.IsSpace(r)
}
