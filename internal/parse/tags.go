package parse

import (
	"strings"

	"github.com/tigerx8/gotpl/internal/compileerr"
)

type tagKind int

const (
	kindExprOrLet tagKind = iota
	kindSafe
	kindComment
	kindHelperOpen
	kindHelperClose
	kindPartial
	kindElse
	kindElseIf
)

type rawTag struct {
	kind    tagKind
	name    string // helper/close name, when applicable
	content string // raw inner text, markers already stripped
	lws     bool
	rws     bool
}

// findNextTagStart scans forward from p.pos for the start of the next
// recognizable tag, skipping over any "{{" that does not form a valid,
// closed tag (spec.md §4.2: "literal braces that do not form a valid
// tag are preserved verbatim"). Returns false when no tag remains.
func (p *parser) findNextTagStart() (int, bool) {
	i := p.pos
	for {
		rel := strings.Index(p.src[i:], "{{")
		if rel < 0 {
			return 0, false
		}
		start := i + rel
		if _, _, ok := p.tryParseTagAt(start); ok {
			return start, true
		}
		i = start + 2
	}
}

// parseTag parses the tag known to start at p.pos (already validated by
// findNextTagStart) and returns it plus the offset just past its closing
// delimiter.
func (p *parser) parseTag() (rawTag, int, error) {
	tag, newPos, ok := p.tryParseTagAt(p.pos)
	if !ok {
		return rawTag{}, 0, &compileerr.ParseError{Path: p.path, At: p.posAt(p.pos), Detail: "malformed tag"}
	}
	return tag, newPos, nil
}

// tryParseTagAt attempts to parse one tag starting exactly at start. It
// never returns a parse error for a structurally absent closing
// delimiter — that case yields ok=false so the caller falls back to
// treating the braces as literal text. Errors are only raised once a tag
// is committed to (see parseTag / parseHelperOpen).
func (p *parser) tryParseTagAt(start int) (rawTag, int, bool) {
	if !strings.HasPrefix(p.src[start:], "{{") {
		return rawTag{}, 0, false
	}
	j := start + 2
	lws := false
	if j < len(p.src) && p.src[j] == '-' {
		lws = true
		j++
	}
	if j >= len(p.src) {
		return rawTag{}, 0, false
	}

	switch {
	case p.src[j] == '{':
		return p.closeWith(start, j+1, "}}}", kindSafe, "", lws)
	case strings.HasPrefix(p.src[j:], "!--"):
		return p.closeWith(start, j+3, "--!}}", kindComment, "", lws)
	case p.src[j] == '!':
		return p.closeWith(start, j+1, "!}}", kindComment, "", lws)
	case p.src[j] == '#':
		return p.closeHelperOpen(start, j+1, lws)
	case p.src[j] == '/':
		return p.closeHelperClose(start, j+1, lws)
	case p.src[j] == '>':
		return p.closeWith(start, j+1, "}}", kindPartial, "", lws)
	default:
		return p.closeExprLike(start, j, lws)
	}
}

func (p *parser) closeWith(start, contentStart int, delim string, kind tagKind, name string, lws bool) (rawTag, int, bool) {
	rel := strings.Index(p.src[contentStart:], delim)
	if rel < 0 {
		return rawTag{}, 0, false
	}
	closeAt := contentStart + rel
	content := p.src[contentStart:closeAt]
	rws := false
	if strings.HasSuffix(content, "-") {
		rws = true
		content = content[:len(content)-1]
	}
	return rawTag{kind: kind, name: name, content: content, lws: lws, rws: rws}, closeAt + len(delim), true
}

func (p *parser) closeHelperOpen(start, contentStart int, lws bool) (rawTag, int, bool) {
	rel := strings.Index(p.src[contentStart:], "}}")
	if rel < 0 {
		return rawTag{}, 0, false
	}
	closeAt := contentStart + rel
	raw := p.src[contentStart:closeAt]
	rws := false
	if strings.HasSuffix(raw, "-") {
		rws = true
		raw = raw[:len(raw)-1]
	}
	raw = strings.TrimSpace(raw)
	fields := strings.SplitN(raw, " ", 2)
	name := fields[0]
	rest := ""
	if len(fields) == 2 {
		rest = strings.TrimSpace(fields[1])
	}
	return rawTag{kind: kindHelperOpen, name: name, content: rest, lws: lws, rws: rws}, closeAt + 2, true
}

func (p *parser) closeHelperClose(start, contentStart int, lws bool) (rawTag, int, bool) {
	rel := strings.Index(p.src[contentStart:], "}}")
	if rel < 0 {
		return rawTag{}, 0, false
	}
	closeAt := contentStart + rel
	raw := p.src[contentStart:closeAt]
	rws := false
	if strings.HasSuffix(raw, "-") {
		rws = true
		raw = raw[:len(raw)-1]
	}
	name := strings.TrimSpace(raw)
	return rawTag{kind: kindHelperClose, name: name, lws: lws, rws: rws}, closeAt + 2, true
}

// closeExprLike handles the plain `{{ ... }}` delimiter, further
// classifying it as an else/else-if token when its content starts with
// the `else` keyword (spec.md §4.2: inline else tokens share the plain
// expression delimiter, not the `#`/`/` block syntax).
func (p *parser) closeExprLike(start, contentStart int, lws bool) (rawTag, int, bool) {
	rel := strings.Index(p.src[contentStart:], "}}")
	if rel < 0 {
		return rawTag{}, 0, false
	}
	closeAt := contentStart + rel
	content := p.src[contentStart:closeAt]
	rws := false
	trimmedForCheck := strings.TrimRight(content, " \t\r\n")
	if strings.HasSuffix(trimmedForCheck, "-") {
		rws = true
		content = trimmedForCheck[:len(trimmedForCheck)-1]
	}
	trimmed := strings.TrimSpace(content)
	switch {
	case trimmed == "else":
		return rawTag{kind: kindElse, lws: lws, rws: rws}, closeAt + 2, true
	case strings.HasPrefix(trimmed, "else if "):
		cond := strings.TrimSpace(strings.TrimPrefix(trimmed, "else if "))
		return rawTag{kind: kindElseIf, content: cond, lws: lws, rws: rws}, closeAt + 2, true
	default:
		return rawTag{kind: kindExprOrLet, content: content, lws: lws, rws: rws}, closeAt + 2, true
	}
}
