package templet

// The lexer splits template source into tokens for literal text and the
// three delimiter forms: expressions {{ }}, action tags {% %}, and comments
// {# #}. Delimiter contents are trimmed before classification; the raw
// source slice is kept so that error messages can quote tags verbatim.

import "strings"

type tokenKind int

const (
	tokText tokenKind = iota
	tokComment
	tokExpr
	tokAction
)

type token struct {
	kind    tokenKind
	content string // trimmed contents of a delimited token; same as raw for text
	raw     string // the full source slice, delimiters included
}

type lexer struct {
	src string
	i   int
}

func newLexer(src string) *lexer { return &lexer{src: src} }

// next returns the next token, and false once the input is exhausted.
// An opening delimiter with no matching closing delimiter is not an error
// here: the remaining source passes through as literal text, and the
// structure compiler reports any tag imbalance that results.
func (l *lexer) next() (token, bool) {
	if l.i >= len(l.src) {
		return token{}, false
	}
	start := l.i
	for j := l.i; j+1 < len(l.src); j++ {
		if l.src[j] != '{' {
			continue
		}
		var kind tokenKind
		var close string
		switch l.src[j+1] {
		case '{':
			kind, close = tokExpr, "}}"
		case '%':
			kind, close = tokAction, "%}"
		case '#':
			kind, close = tokComment, "#}"
		default:
			continue
		}
		end := strings.Index(l.src[j+2:], close)
		if end < 0 {
			break
		}
		if j > start {
			// Emit the text before the delimiter; the delimiter itself
			// is picked up on the next call.
			l.i = j
			return token{kind: tokText, content: l.src[start:j], raw: l.src[start:j]}, true
		}
		raw := l.src[j : j+2+end+2]
		l.i = j + 2 + end + 2
		return token{kind: kind, content: strings.TrimSpace(l.src[j+2 : j+2+end]), raw: raw}, true
	}
	l.i = len(l.src)
	return token{kind: tokText, content: l.src[start:], raw: l.src[start:]}, true
}
