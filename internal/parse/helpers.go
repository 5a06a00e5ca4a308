package parse

import (
	"strings"

	"github.com/tigerx8/gotpl/internal/compileerr"
	"github.com/tigerx8/gotpl/internal/hostexpr"
)

// parseHelperOpen dispatches on the helper name found in an
// `{{# name args }}` tag and parses its body (and, for `if`, its full
// elseif/else chain) up to the matching `{{/ name }}`.
func (p *parser) parseHelperOpen(tag rawTag, afterOpen int) (Node, int, error) {
	openPos := p.pos
	openWs := Ws{LWS: tag.lws, RWS: tag.rws}
	p.pos = afterOpen

	switch tag.name {
	case "each":
		return p.parseEach(tag, openWs, openPos)
	case "if":
		return p.parseIf(tag, openWs, openPos)
	case "with":
		return p.parseWith(tag, openWs, openPos)
	case "unless":
		return p.parseUnless(tag, openWs, openPos)
	case "defined":
		return p.parseDefined(tag, openWs, openPos)
	default:
		return nil, 0, &compileerr.ParseError{Path: p.path, At: p.posAt(openPos), Detail: "unknown block helper " + tag.name}
	}
}

func (p *parser) parseEach(tag rawTag, openWs Ws, openPos int) (Node, int, error) {
	at := p.posAt(openPos)
	each := &EachHelper{Ws: [2]Ws{openWs, {}}}
	if rangeSpec, ok, err := hostexpr.ParseRange(p.path, at, tag.content); err != nil {
		return nil, 0, err
	} else if ok {
		each.Range = &RangeSpec{Lo: rangeSpec.Lo, Hi: rangeSpec.Hi}
	} else {
		iter, err := hostexpr.ParseExpr(p.path, at, tag.content)
		if err != nil {
			return nil, 0, err
		}
		each.Iter = iter
	}
	body, term, _, closeWs, err := p.parseBody("each", false)
	if err != nil {
		return nil, 0, err
	}
	if term != termClose {
		return nil, 0, &compileerr.UnbalancedBlockError{Path: p.path, Name: "each"}
	}
	each.Body = body
	each.Ws[1] = closeWs
	return &HelperNode{Helper: each}, p.pos, nil
}

func (p *parser) parseWith(tag rawTag, openWs Ws, openPos int) (Node, int, error) {
	value, err := hostexpr.ParseExpr(p.path, p.posAt(openPos), tag.content)
	if err != nil {
		return nil, 0, err
	}
	body, term, _, closeWs, err := p.parseBody("with", false)
	if err != nil {
		return nil, 0, err
	}
	if term != termClose {
		return nil, 0, &compileerr.UnbalancedBlockError{Path: p.path, Name: "with"}
	}
	w := &WithHelper{Ws: [2]Ws{openWs, closeWs}, Value: value, Body: body}
	return &HelperNode{Helper: w}, p.pos, nil
}

func (p *parser) parseUnless(tag rawTag, openWs Ws, openPos int) (Node, int, error) {
	cond, err := hostexpr.ParseExpr(p.path, p.posAt(openPos), tag.content)
	if err != nil {
		return nil, 0, err
	}
	body, term, _, closeWs, err := p.parseBody("unless", false)
	if err != nil {
		return nil, 0, err
	}
	if term != termClose {
		return nil, 0, &compileerr.UnbalancedBlockError{Path: p.path, Name: "unless"}
	}
	u := &UnlessHelper{Ws: [2]Ws{openWs, closeWs}, Cond: cond, Body: body}
	return &HelperNode{Helper: u}, p.pos, nil
}

func (p *parser) parseDefined(tag rawTag, openWs Ws, openPos int) (Node, int, error) {
	fields := strings.SplitN(tag.content, " ", 2)
	if len(fields) != 2 || fields[0] == "" {
		return nil, 0, &compileerr.ParseError{Path: p.path, At: p.posAt(openPos), Detail: "defined requires a name and an expression"}
	}
	name := fields[0]
	cond, err := hostexpr.ParseExpr(p.path, p.posAt(openPos), strings.TrimSpace(fields[1]))
	if err != nil {
		return nil, 0, err
	}
	body, term, _, closeWs, err := p.parseBody("defined", false)
	if err != nil {
		return nil, 0, err
	}
	if term != termClose {
		return nil, 0, &compileerr.UnbalancedBlockError{Path: p.path, Name: "defined"}
	}
	d := &DefinedHelper{Ws: [2]Ws{openWs, closeWs}, Name: name, Cond: cond, Body: body}
	return &HelperNode{Helper: d}, p.pos, nil
}

// parseIf implements spec.md §4.2's "else-aware eater": it scans the
// body with allowElse set, and loops re-entering parseBody for each
// subsequent elseif branch, ending on the else body (if present) or the
// block's own close.
func (p *parser) parseIf(tag rawTag, openWs Ws, openPos int) (Node, int, error) {
	cond, err := hostexpr.ParseExpr(p.path, p.posAt(openPos), tag.content)
	if err != nil {
		return nil, 0, err
	}
	helper := &IfHelper{Branches: []IfBranch{{Ws: openWs, Cond: cond}}}

	for {
		body, term, nextCond, termWs, berr := p.parseBody("if", true)
		if berr != nil {
			return nil, 0, berr
		}
		helper.Branches[len(helper.Branches)-1].Body = body
		switch term {
		case termClose:
			helper.CloseWs = termWs
			return &HelperNode{Helper: helper}, p.pos, nil
		case termElseIf:
			helper.Branches = append(helper.Branches, IfBranch{Ws: termWs, Cond: nextCond})
			continue
		case termElse:
			elseBody, elseTerm, _, elseCloseWs, eerr := p.parseBody("if", false)
			if eerr != nil {
				return nil, 0, eerr
			}
			if elseTerm != termClose {
				return nil, 0, &compileerr.UnbalancedBlockError{Path: p.path, Name: "if"}
			}
			helper.Else = &ElseBranch{Ws: termWs, Body: elseBody}
			helper.CloseWs = elseCloseWs
			return &HelperNode{Helper: helper}, p.pos, nil
		default:
			return nil, 0, &compileerr.UnbalancedBlockError{Path: p.path, Name: "if"}
		}
	}
}
