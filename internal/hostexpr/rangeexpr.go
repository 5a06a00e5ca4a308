package hostexpr

import (
	"go/ast"
	"go/parser"
	"strings"

	"github.com/tigerx8/gotpl/internal/compileerr"
)

// RangeExpr is the parsed form of a `lo..hi` each-target. Go has no
// range-literal expression syntax, so `{{#each 0..10}}` needs its own
// tiny sub-grammar rather than go/parser; this lexer is adapted from the
// teacher's engine/expr.Lexer (a rune cursor emitting typed tokens),
// repurposed from Blade's `$var` token stream to a two-endpoint range
// token stream.
type RangeExpr struct {
	Lo, Hi ast.Expr
}

type rangeTokKind int

const (
	rtEOF rangeTokKind = iota
	rtDotDot
	rtOther
)

type rangeLexer struct {
	input []rune
	pos   int
}

func newRangeLexer(s string) *rangeLexer { return &rangeLexer{input: []rune(s)} }

func (l *rangeLexer) peek() rune {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

// findDotDot scans for the first top-level ".." not nested inside
// parens, brackets, or a string literal — mirroring the bracket-aware
// scanning the teacher's Lexer.NextToken does for '(' ')' '[' ']'.
func (l *rangeLexer) findDotDot() (int, bool) {
	depth := 0
	inStr := rune(0)
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if inStr != 0 {
			if ch == '\\' {
				l.pos += 2
				continue
			}
			if ch == inStr {
				inStr = 0
			}
			l.pos++
			continue
		}
		switch ch {
		case '"', '\'', '`':
			inStr = ch
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case '.':
			if depth == 0 && l.peekAt(1) == '.' {
				return l.pos, true
			}
		}
		l.pos++
	}
	return -1, false
}

func (l *rangeLexer) peekAt(n int) rune {
	if l.pos+n >= len(l.input) {
		return 0
	}
	return l.input[l.pos+n]
}

// ParseRange parses "lo..hi", returning ok=false when the fragment
// contains no top-level "..", meaning the caller should fall back to
// treating it as a plain iterable expression rather than a range.
func ParseRange(path string, at compileerr.Pos, src string) (*RangeExpr, bool, error) {
	trimmed := strings.TrimSpace(src)
	if !looksLikeRange(trimmed) {
		return nil, false, nil
	}
	l := newRangeLexer(trimmed)
	idx, found := l.findDotDot()
	if !found {
		return nil, false, nil
	}
	loSrc := strings.TrimSpace(string(l.input[:idx]))
	hiSrc := strings.TrimSpace(string(l.input[idx+2:]))
	if loSrc == "" || hiSrc == "" {
		return nil, false, nil
	}
	lo, err := parser.ParseExpr(loSrc)
	if err != nil {
		return nil, true, &compileerr.HostParseError{Path: path, At: at, Fragment: src, Detail: err.Error()}
	}
	hi, err := parser.ParseExpr(hiSrc)
	if err != nil {
		return nil, true, &compileerr.HostParseError{Path: path, At: at, Fragment: src, Detail: err.Error()}
	}
	return &RangeExpr{Lo: lo, Hi: hi}, true, nil
}

// looksLikeRange is a cheap pre-check: a real Go expression can legally
// contain ".." nowhere (it isn't valid Go), so any occurrence outside a
// string literal is a strong signal this is range syntax, not a float
// followed by a selector.
func looksLikeRange(s string) bool {
	for i := 0; i+1 < len(s); i++ {
		if s[i] == '.' && s[i+1] == '.' {
			return true
		}
	}
	return false
}
