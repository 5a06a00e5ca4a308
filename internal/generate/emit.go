package generate

import (
	"fmt"
	"go/ast"
	"go/token"
	"strconv"

	"github.com/tigerx8/gotpl/internal/hostexpr"
	"github.com/tigerx8/gotpl/internal/parse"
)

// applyOpenWS resolves any literal right-fringe left pending from the
// node just before this tag against the tag's own lws flag (spec.md
// §4.6): lws=true drops the fringe, otherwise it is kept.
func (g *Generator) applyOpenWS(ws parse.Ws) {
	if g.state.pendingRightWS != "" {
		if !ws.LWS {
			g.state.litBuf.WriteString(g.state.pendingRightWS)
		}
		g.state.pendingRightWS = ""
	}
}

// applyCloseWS records this tag's rws flag for the next literal's left
// fringe to consult.
func (g *Generator) applyCloseWS(ws parse.Ws) {
	g.state.skipNextLeftWS = ws.RWS
}

// drainPendingRightWS appends any literal right-fringe left pending
// from the final node of the template into litBuf. It exists for the
// end-of-template case applyOpenWS normally handles: there is no next
// tag to consult a lws flag on, so the fringe is never trimmed, only
// carried into the final flushLiteral.
func (g *Generator) drainPendingRightWS() {
	if g.state.pendingRightWS != "" {
		g.state.litBuf.WriteString(g.state.pendingRightWS)
		g.state.pendingRightWS = ""
	}
}

// flushLiteral turns any buffered literal text into a single
// io.WriteString statement (spec.md §4.4's "coalesce into a single
// sink.write_str call"), accumulating its byte length into sizeHint.
func (g *Generator) flushLiteral() {
	if g.state.litBuf.Len() == 0 {
		return
	}
	text := g.state.litBuf.String()
	g.state.litBuf.Reset()
	g.state.sizeHint += len(text)
	fmt.Fprintf(&g.state.body, "if _, err := io.WriteString(w, %s); err != nil {\nreturn err\n}\n", strconv.Quote(text))
}

func (g *Generator) emitNodes(nodes []parse.Node) error {
	for _, n := range nodes {
		if err := g.emitNode(n); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) emitNode(n parse.Node) error {
	switch v := n.(type) {
	case *parse.LitNode:
		g.emitLit(v)
		return nil
	case *parse.CommentNode:
		// Comments unconditionally suppress surrounding whitespace
		// (spec.md §4.6).
		g.applyOpenWS(parse.Ws{LWS: true, RWS: true})
		g.applyCloseWS(parse.Ws{LWS: true, RWS: true})
		return nil
	case *parse.ExprNode:
		return g.emitExpr(v)
	case *parse.SafeNode:
		return g.emitSafe(v)
	case *parse.LocalNode:
		return g.emitLocal(v)
	case *parse.PartialNode:
		return g.emitPartial(v)
	case *parse.HelperNode:
		return g.emitHelper(v)
	default:
		return fmt.Errorf("gotpl: unhandled node type %T", n)
	}
}

func (g *Generator) emitLit(lit *parse.LitNode) {
	if !g.state.skipNextLeftWS {
		g.state.litBuf.WriteString(lit.LeftWS)
	}
	g.state.skipNextLeftWS = false
	g.state.litBuf.WriteString(lit.Body)
	g.state.pendingRightWS = lit.RightWS
}

// emitExpr writes an Expr node's value: through runtime.Escape when the
// template escapes HTML and the node is not PreWrapped, otherwise
// verbatim via fmt.Fprint. With try-sugar the value and its error are
// first bound to a temp, and a non-nil error is returned.
func (g *Generator) emitExpr(e *parse.ExprNode) error {
	g.applyOpenWS(e.Ws)
	g.flushLiteral()

	rewritten, err := g.rewriteExpr(e.AST)
	if err != nil {
		return err
	}
	text, err := g.printExpr(rewritten)
	if err != nil {
		return err
	}

	valueExpr := text
	if e.Try {
		tmp := g.nextTemp()
		fmt.Fprintf(&g.state.body, "%s, err := %s\n", tmp, text)
		g.state.body.WriteString("if err != nil {\nreturn err\n}\n")
		valueExpr = tmp
	}

	if g.opts.EscapeHTML && !e.PreWrapped {
		fmt.Fprintf(&g.state.body, "if err := runtime.Escape(w, %s); err != nil {\nreturn err\n}\n", valueExpr)
	} else {
		g.state.needsFmt = true
		fmt.Fprintf(&g.state.body, "if _, err := fmt.Fprint(w, %s); err != nil {\nreturn err\n}\n", valueExpr)
	}

	g.applyCloseWS(e.Ws)
	return nil
}

// emitSafe is emitExpr without the escape-adapter branch: `{{{ expr }}}`
// always writes its value verbatim, regardless of template escape mode.
func (g *Generator) emitSafe(s *parse.SafeNode) error {
	g.applyOpenWS(s.Ws)
	g.flushLiteral()

	rewritten, err := g.rewriteExpr(s.AST)
	if err != nil {
		return err
	}
	text, err := g.printExpr(rewritten)
	if err != nil {
		return err
	}

	valueExpr := text
	if s.Try {
		tmp := g.nextTemp()
		fmt.Fprintf(&g.state.body, "%s, err := %s\n", tmp, text)
		g.state.body.WriteString("if err != nil {\nreturn err\n}\n")
		valueExpr = tmp
	}

	g.state.needsFmt = true
	fmt.Fprintf(&g.state.body, "if _, err := fmt.Fprint(w, %s); err != nil {\nreturn err\n}\n", valueExpr)

	g.applyCloseWS(s.Ws)
	return nil
}

func (g *Generator) emitLocal(l *parse.LocalNode) error {
	g.applyOpenWS(l.Ws)
	g.flushLiteral()

	rewrittenStmt, err := g.rewriteAssign(l.Stmt)
	if err != nil {
		return err
	}
	text, err := g.printExpr(rewrittenStmt)
	if err != nil {
		return err
	}
	g.state.body.WriteString(text)
	g.state.body.WriteString("\n")

	for _, name := range hostexpr.BoundNames(l.Stmt) {
		g.bindLocal(name)
	}

	g.applyCloseWS(l.Ws)
	return nil
}

func (g *Generator) emitPartial(p *parse.PartialNode) error {
	g.applyOpenWS(p.Ws)
	g.flushLiteral()

	tree, abs, nextChain, err := g.ts.Partial(g.state.onPath, p.Path, g.state.chain)
	if err != nil {
		return err
	}

	savedOnPath, savedChain := g.state.onPath, g.state.chain
	g.state.onPath, g.state.chain = abs, nextChain
	g.pushScope()

	pushedContext := false
	if len(p.Args) == 1 {
		rewritten, err := g.rewriteExpr(p.Args[0])
		if err != nil {
			g.popScope()
			g.state.onPath, g.state.chain = savedOnPath, savedChain
			return err
		}
		text, err := g.printExpr(rewritten)
		if err != nil {
			g.popScope()
			g.state.onPath, g.state.chain = savedOnPath, savedChain
			return err
		}
		varName := g.nextTemp()
		fmt.Fprintf(&g.state.body, "%s := %s\n", varName, text)
		g.pushContext(contextFrame{kind: contextWith, base: varName})
		pushedContext = true
	}

	if err := g.emitNodes(tree.Nodes); err != nil {
		if pushedContext {
			g.popContext()
		}
		g.popScope()
		g.state.onPath, g.state.chain = savedOnPath, savedChain
		return err
	}

	if pushedContext {
		g.popContext()
	}
	g.popScope()
	g.state.onPath, g.state.chain = savedOnPath, savedChain

	g.applyCloseWS(p.Ws)
	return nil
}

func (g *Generator) emitHelper(hn *parse.HelperNode) error {
	switch h := hn.Helper.(type) {
	case *parse.EachHelper:
		return g.emitEach(h)
	case *parse.IfHelper:
		return g.emitIf(h)
	case *parse.WithHelper:
		return g.emitWith(h)
	case *parse.UnlessHelper:
		return g.emitUnless(h)
	case *parse.DefinedHelper:
		return g.validationErr("defined is a reserved block helper with no generation-time semantics")
	default:
		return fmt.Errorf("gotpl: unhandled helper type %T", hn.Helper)
	}
}

func (g *Generator) emitEach(h *parse.EachHelper) error {
	g.applyOpenWS(h.Ws[0])
	g.flushLiteral()

	frameIdx := g.nextFrame()
	indexVar := fmt.Sprintf("_index_%d", frameIdx)
	keyVar := fmt.Sprintf("_key_%d", frameIdx)
	usesIndex := g.analysis.UsesIndex[h]
	usesLast := g.analysis.UsesLast[h]

	cf := contextFrame{kind: contextEach, base: keyVar, keyVar: keyVar}

	if h.Range != nil {
		if usesLast {
			return g.validationErr("last is not valid on a range each-target")
		}
		lo, err := g.rewriteExpr(h.Range.Lo)
		if err != nil {
			return err
		}
		hi, err := g.rewriteExpr(h.Range.Hi)
		if err != nil {
			return err
		}
		loText, err := g.printExpr(lo)
		if err != nil {
			return err
		}
		hiText, err := g.printExpr(hi)
		if err != nil {
			return err
		}
		cf.indexVar = indexVar
		cf.isRange = true
		fmt.Fprintf(&g.state.body, "for %s := %s; %s < %s; %s++ {\n", indexVar, loText, indexVar, hiText, indexVar)
		fmt.Fprintf(&g.state.body, "%s := %s\n", keyVar, indexVar)
	} else {
		iter, err := g.rewriteExpr(h.Iter)
		if err != nil {
			return err
		}
		iterText, err := g.printExpr(iter)
		if err != nil {
			return err
		}
		if usesLast {
			cf.lenVar = fmt.Sprintf("_len_%d", frameIdx)
			fmt.Fprintf(&g.state.body, "%s := len(%s)\n", cf.lenVar, iterText)
		}
		if usesIndex {
			cf.indexVar = indexVar
			fmt.Fprintf(&g.state.body, "for %s, %s := range %s {\n", indexVar, keyVar, iterText)
		} else {
			fmt.Fprintf(&g.state.body, "for _, %s := range %s {\n", keyVar, iterText)
		}
	}
	// key is bound by every form above whether or not the body actually
	// references it (a plain field access inside the loop resolves
	// through it too); this silences "declared and not used" for the
	// common case of a body with no field/pseudo-variable reference at
	// all (e.g. a loop that only emits static literal text).
	fmt.Fprintf(&g.state.body, "_ = %s\n", keyVar)

	// The open tag's own rws flag controls the body's first literal,
	// the same way applyCloseWS controls the literal following any
	// other tag.
	g.applyCloseWS(h.Ws[0])

	g.pushContext(cf)
	g.pushScope()
	if err := g.emitNodes(h.Body); err != nil {
		g.popScope()
		g.popContext()
		return err
	}
	// Resolve the body's trailing right-fringe against the close tag's
	// lws flag before it is lost to flushLiteral.
	g.applyOpenWS(h.Ws[1])
	g.flushLiteral()
	g.popScope()
	g.popContext()

	g.state.body.WriteString("}\n")
	g.applyCloseWS(h.Ws[1])
	return nil
}

func (g *Generator) emitIf(h *parse.IfHelper) error {
	for i, branch := range h.Branches {
		g.applyOpenWS(branch.Ws)
		g.flushLiteral()

		cond, err := g.rewriteExpr(branch.Cond)
		if err != nil {
			return err
		}
		condText, err := g.printExpr(cond)
		if err != nil {
			return err
		}
		if i == 0 {
			fmt.Fprintf(&g.state.body, "if %s {\n", condText)
		} else {
			fmt.Fprintf(&g.state.body, "} else if %s {\n", condText)
		}
		g.applyCloseWS(branch.Ws)

		g.pushScope()
		if err := g.emitNodes(branch.Body); err != nil {
			g.popScope()
			return err
		}
		g.flushLiteral()
		g.popScope()
	}

	if h.Else != nil {
		g.applyOpenWS(h.Else.Ws)
		g.flushLiteral()
		g.state.body.WriteString("} else {\n")
		g.applyCloseWS(h.Else.Ws)

		g.pushScope()
		if err := g.emitNodes(h.Else.Body); err != nil {
			g.popScope()
			return err
		}
		g.flushLiteral()
		g.popScope()
	}

	g.state.body.WriteString("}\n")
	g.applyCloseWS(h.CloseWs)
	return nil
}

func (g *Generator) emitWith(h *parse.WithHelper) error {
	g.applyOpenWS(h.Ws[0])
	g.flushLiteral()

	value, err := g.rewriteExpr(h.Value)
	if err != nil {
		return err
	}
	text, err := g.printExpr(value)
	if err != nil {
		return err
	}
	varName := g.nextTemp()
	fmt.Fprintf(&g.state.body, "%s := %s\n", varName, text)

	g.applyCloseWS(h.Ws[0])

	g.pushContext(contextFrame{kind: contextWith, base: varName})
	g.pushScope()
	if err := g.emitNodes(h.Body); err != nil {
		g.popScope()
		g.popContext()
		return err
	}
	g.applyOpenWS(h.Ws[1])
	g.flushLiteral()
	g.popScope()
	g.popContext()

	g.applyCloseWS(h.Ws[1])
	return nil
}

func (g *Generator) emitUnless(h *parse.UnlessHelper) error {
	g.applyOpenWS(h.Ws[0])
	g.flushLiteral()

	cond, err := g.rewriteExpr(h.Cond)
	if err != nil {
		return err
	}
	condText, err := g.printExpr(cond)
	if err != nil {
		return err
	}
	fmt.Fprintf(&g.state.body, "if !(%s) {\n", condText)

	g.applyCloseWS(h.Ws[0])

	g.pushScope()
	if err := g.emitNodes(h.Body); err != nil {
		g.popScope()
		return err
	}
	g.applyOpenWS(h.Ws[1])
	g.flushLiteral()
	g.popScope()

	g.state.body.WriteString("}\n")
	g.applyCloseWS(h.Ws[1])
	return nil
}

// rewriteAssign rewrites the right-hand side expressions of a `let`
// binding's assignment statement; the left-hand side identifiers are a
// declaration, not a reference, and are left untouched.
func (g *Generator) rewriteAssign(s ast.Stmt) (ast.Stmt, error) {
	assign, ok := s.(*ast.AssignStmt)
	if !ok {
		return nil, g.validationErr("let-statement must be a simple assignment")
	}
	newRhs := make([]ast.Expr, len(assign.Rhs))
	for i, r := range assign.Rhs {
		rw, err := g.rewriteExpr(r)
		if err != nil {
			return nil, err
		}
		newRhs[i] = rw
	}
	return &ast.AssignStmt{Lhs: assign.Lhs, Tok: token.DEFINE, Rhs: newRhs}, nil
}
