package parse

import (
	"go/ast"
	"strings"

	"github.com/tigerx8/gotpl/internal/compileerr"
	"github.com/tigerx8/gotpl/internal/hostexpr"
)

// Parse turns template source text into a Tree. path is used only for
// diagnostics and as the basis for resolving any partials referenced
// from the returned tree's PartialNodes (resolution itself happens in
// internal/analyze / internal/generate, which own a TemplateSet).
func Parse(path, src string) (*Tree, error) {
	p := &parser{path: path, src: src}
	nodes, _, _, _, err := p.parseBody("", false)
	if err != nil {
		return nil, err
	}
	return &Tree{Path: path, Nodes: nodes}, nil
}

type parser struct {
	path string
	src  string
	pos  int
}

func (p *parser) posAt(offset int) compileerr.Pos {
	line, col := 1, 1
	for i := 0; i < offset && i < len(p.src); i++ {
		if p.src[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return compileerr.Pos{Offset: offset, Line: line, Col: col}
}

type termKind int

const (
	termEOF termKind = iota
	termClose
	termElse
	termElseIf
)

// parseBody consumes nodes until it finds the closing tag for closeName
// ("" means top level, terminates cleanly at EOF), or — when allowElse is
// set — an `{{else}}`/`{{else if cond}}` tag at this nesting level. It
// recurses fully into nested helper opens, so by the time control returns
// here any deeper block's own close has already been consumed: balancing
// falls out of the recursion rather than an explicit stack.
func (p *parser) parseBody(closeName string, allowElse bool) (nodes []Node, term termKind, elseCond ast.Expr, elseWs Ws, err error) {
	for {
		tagStart, found := p.findNextTagStart()
		if !found {
			if closeName != "" {
				return nil, 0, nil, Ws{}, &compileerr.UnbalancedBlockError{Path: p.path, Name: closeName}
			}
			if p.pos < len(p.src) {
				nodes = append(nodes, litNode(p.src[p.pos:]))
			}
			p.pos = len(p.src)
			return nodes, termEOF, nil, Ws{}, nil
		}
		if tagStart > p.pos {
			nodes = append(nodes, litNode(p.src[p.pos:tagStart]))
		}
		p.pos = tagStart

		tag, newPos, terr := p.parseTag()
		if terr != nil {
			return nil, 0, nil, Ws{}, terr
		}

		switch tag.kind {
		case kindComment:
			nodes = append(nodes, &CommentNode{Text: tag.content})
			p.pos = newPos
			continue
		case kindHelperClose:
			if closeName == "" || tag.name != closeName {
				return nil, 0, nil, Ws{}, &compileerr.MismatchedCloseError{Path: p.path, Expected: closeName, Got: tag.name}
			}
			p.pos = newPos
			return nodes, termClose, nil, Ws{LWS: tag.lws, RWS: tag.rws}, nil
		case kindElse:
			if !allowElse {
				return nil, 0, nil, Ws{}, &compileerr.ParseError{Path: p.path, At: p.posAt(tagStart), Detail: "malformed if chain: {{else}} outside {{#if}}"}
			}
			p.pos = newPos
			return nodes, termElse, nil, Ws{LWS: tag.lws, RWS: tag.rws}, nil
		case kindElseIf:
			if !allowElse {
				return nil, 0, nil, Ws{}, &compileerr.ParseError{Path: p.path, At: p.posAt(tagStart), Detail: "malformed if chain: {{else if}} outside {{#if}}"}
			}
			cond, perr := hostexpr.ParseExpr(p.path, p.posAt(tagStart), tag.content)
			if perr != nil {
				return nil, 0, nil, Ws{}, perr
			}
			p.pos = newPos
			return nodes, termElseIf, cond, Ws{LWS: tag.lws, RWS: tag.rws}, nil
		case kindHelperOpen:
			node, np, herr := p.parseHelperOpen(tag, newPos)
			if herr != nil {
				return nil, 0, nil, Ws{}, herr
			}
			nodes = append(nodes, node)
			p.pos = np
			continue
		case kindSafe:
			n, perr := p.buildExprLike(tag, true)
			if perr != nil {
				return nil, 0, nil, Ws{}, perr
			}
			nodes = append(nodes, n)
			p.pos = newPos
			continue
		case kindPartial:
			n, perr := p.buildPartial(tag, tagStart)
			if perr != nil {
				return nil, 0, nil, Ws{}, perr
			}
			nodes = append(nodes, n)
			p.pos = newPos
			continue
		case kindExprOrLet:
			trimmed := strings.TrimSpace(tag.content)
			if strings.HasPrefix(trimmed, "let ") {
				stmt, perr := hostexpr.ParseStatement(p.path, p.posAt(tagStart), trimmed)
				if perr != nil {
					return nil, 0, nil, Ws{}, perr
				}
				nodes = append(nodes, &LocalNode{Ws: Ws{LWS: tag.lws, RWS: tag.rws}, Stmt: stmt})
				p.pos = newPos
				continue
			}
			n, perr := p.buildExprLike(tag, false)
			if perr != nil {
				return nil, 0, nil, Ws{}, perr
			}
			nodes = append(nodes, n)
			p.pos = newPos
			continue
		default:
			return nil, 0, nil, Ws{}, &compileerr.ParseError{Path: p.path, At: p.posAt(tagStart), Detail: "unrecognized tag"}
		}
	}
}

func (p *parser) buildExprLike(tag rawTag, safe bool) (Node, error) {
	content := strings.TrimSpace(tag.content)
	try := false
	if strings.HasSuffix(content, "?") {
		try = true
		content = strings.TrimSpace(strings.TrimSuffix(content, "?"))
	}
	at := p.posAt(p.pos)
	expr, err := hostexpr.ParseExpr(p.path, at, content)
	if err != nil {
		return nil, err
	}
	if verr := hostexpr.Validate(p.path, at, expr); verr != nil {
		return nil, verr
	}
	ws := Ws{LWS: tag.lws, RWS: tag.rws}
	if safe {
		return &SafeNode{Ws: ws, AST: expr, Try: try}, nil
	}
	return &ExprNode{Ws: ws, AST: expr, PreWrapped: hostexpr.IsLiteralWrapped(expr), Try: try}, nil
}

func (p *parser) buildPartial(tag rawTag, tagStart int) (Node, error) {
	content := strings.TrimSpace(tag.content)
	if content == "" {
		return nil, &compileerr.ParseError{Path: p.path, At: p.posAt(tagStart), Detail: "empty partial reference"}
	}
	var name, rest string
	if content[0] == '"' {
		end := strings.IndexByte(content[1:], '"')
		if end < 0 {
			return nil, &compileerr.ParseError{Path: p.path, At: p.posAt(tagStart), Detail: "unterminated partial path string"}
		}
		name = content[1 : 1+end]
		rest = strings.TrimSpace(content[1+end+1:])
	} else {
		fields := strings.SplitN(content, " ", 2)
		name = fields[0]
		if len(fields) == 2 {
			rest = strings.TrimSpace(fields[1])
		}
	}
	var args []ast.Expr
	if rest != "" {
		arg, err := hostexpr.ParseExpr(p.path, p.posAt(tagStart), rest)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	return &PartialNode{Ws: Ws{LWS: tag.lws, RWS: tag.rws}, Path: name, Args: args}, nil
}

// litNode splits raw literal text into left/body/right whitespace
// fringes (spec.md §3). When the text is entirely whitespace, it is
// attributed to LeftWS and Body/RightWS are left empty.
func litNode(s string) *LitNode {
	trimmedLeft := strings.TrimLeft(s, " \t\r\n")
	leftWS := s[:len(s)-len(trimmedLeft)]
	trimmedRight := strings.TrimRight(trimmedLeft, " \t\r\n")
	rightWS := trimmedLeft[len(trimmedRight):]
	return &LitNode{LeftWS: leftWS, Body: trimmedRight, RightWS: rightWS}
}
