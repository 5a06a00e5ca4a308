package generate

import (
	"fmt"
	"go/ast"
	"go/token"

	"golang.org/x/tools/go/ast/astutil"

	"github.com/tigerx8/gotpl/internal/hostexpr"
)

// knownGlobals are identifiers that must never be rewritten into a
// context/field access even though they are bare, single-segment names:
// Go's predeclared identifiers and the small set of standard-library
// package names the embedded host expressions are allowed to call into.
// rewriteBareIdent consults it for every bare identifier outside callee
// position (callees are already skipped via isCallCalleeIdent), which is
// what keeps `fmt` in `fmt.Sprintf(...)` from becoming a field access.
var knownGlobals = map[string]bool{
	"len": true, "cap": true, "append": true, "copy": true, "delete": true,
	"make": true, "new": true, "panic": true, "recover": true,
	"print": true, "println": true, "complex": true, "real": true, "imag": true,
	"min": true, "max": true, "clear": true,
	"fmt": true, "strconv": true, "strings": true,
}

var loopPseudoNames = map[string]bool{
	"index0": true, "index": true, "first": true, "last": true, "key": true,
}

// rewriteExpr re-serializes e with every bare identifier rewritten per
// spec.md §4.5. A `super`-style caret-prefixed path (recognized via
// hostexpr.SuperDepth) only ever appears wrapping the whole expression
// — internal/hostexpr.ParseExpr strips the caret run from the full tag
// text before handing it to go/parser, so the marker call can't occur
// nested inside a larger parsed expression — so it is handled once, up
// front, rather than re-checked at every node during the walk.
//
// astutil.Apply drives the generic walk; two node positions are
// skipped rather than rewritten like an ordinary value reference:
// a *ast.CallExpr's Fun when it is a bare *ast.Ident (`len` in
// `len(x)`, `Sprintf` in `fmt.Sprintf(...)`), and a *ast.SelectorExpr's
// Sel (the field name in `x.Field` is never itself a value binding).
func (g *Generator) rewriteExpr(e ast.Expr) (ast.Expr, error) {
	if depth, inner, ok := hostexpr.SuperDepth(e); ok {
		expr, err := g.rewriteSuper(depth, inner)
		if err != nil {
			return nil, g.validationErr(err.Error())
		}
		return expr, nil
	}

	var rewriteErr error
	result := astutil.Apply(e, func(c *astutil.Cursor) bool {
		if rewriteErr != nil {
			return false
		}
		id, ok := c.Node().(*ast.Ident)
		if !ok {
			return true
		}
		if isCallCalleeIdent(c) || isSelectorFieldIdent(c) {
			return true
		}
		rewritten, err := g.rewriteBareIdent(id.Name)
		if err != nil {
			rewriteErr = err
			return false
		}
		if rewritten != nil {
			c.Replace(rewritten)
		}
		return true
	}, nil)

	if rewriteErr != nil {
		return nil, rewriteErr
	}
	return result.(ast.Expr), nil
}

// isCallCalleeIdent reports whether c's current node sits in the `Fun`
// position of its parent *ast.CallExpr.
func isCallCalleeIdent(c *astutil.Cursor) bool {
	call, ok := c.Parent().(*ast.CallExpr)
	return ok && call.Fun == c.Node()
}

// isSelectorFieldIdent reports whether c's current node sits in the
// `Sel` position of its parent *ast.SelectorExpr.
func isSelectorFieldIdent(c *astutil.Cursor) bool {
	sel, ok := c.Parent().(*ast.SelectorExpr)
	return ok && sel.Sel == c.Node()
}

// rewriteBareIdent implements spec.md §4.5 rules 1-5 for a single bare
// identifier name. It returns (nil, nil) when the identifier should be
// emitted verbatim (rules 1-3), or the replacement expression otherwise.
func (g *Generator) rewriteBareIdent(name string) (ast.Expr, error) {
	if isScreamingSnake(name) {
		return nil, nil
	}
	if name == "self" {
		return ast.NewIdent(g.opts.ReceiverVar), nil
	}
	if g.isScopeBound(name) {
		return nil, nil
	}
	if knownGlobals[name] {
		return nil, nil
	}
	if len(g.state.contextStack) == 0 {
		return selectorOn(g.opts.ReceiverVar, name), nil
	}
	if loopPseudoNames[name] {
		for i := len(g.state.contextStack) - 1; i >= 0; i-- {
			if cf := g.state.contextStack[i]; cf.kind == contextEach {
				expr, err := g.rewriteLoopPseudo(cf, name)
				if err != nil {
					return nil, g.validationErr(err.Error())
				}
				return expr, nil
			}
		}
	}
	top := g.state.contextStack[len(g.state.contextStack)-1]
	return selectorOn(top.base, name), nil
}

// rewriteLoopPseudo implements the loop pseudo-variable rewrites named
// in spec.md §4.4: index0 -> _index_n, index -> (_index_n + 1),
// first -> (_index_n == 0), last -> (_index_n == _len_n - 1), key -> _key_n.
func (g *Generator) rewriteLoopPseudo(cf contextFrame, name string) (ast.Expr, error) {
	switch name {
	case "index0":
		return ast.NewIdent(cf.indexVar), nil
	case "index":
		return &ast.BinaryExpr{X: ast.NewIdent(cf.indexVar), Op: token.ADD, Y: intLit(1)}, nil
	case "first":
		return &ast.BinaryExpr{X: ast.NewIdent(cf.indexVar), Op: token.EQL, Y: intLit(0)}, nil
	case "last":
		if cf.lenVar == "" {
			return nil, fmt.Errorf("last is not available on this each-block (no reachable length)")
		}
		return &ast.BinaryExpr{
			X:  ast.NewIdent(cf.indexVar),
			Op: token.EQL,
			Y: &ast.BinaryExpr{
				X:  ast.NewIdent(cf.lenVar),
				Op: token.SUB,
				Y:  intLit(1),
			},
		}, nil
	case "key":
		return ast.NewIdent(cf.keyVar), nil
	}
	return nil, fmt.Errorf("gotpl: unreachable loop pseudo-variable %q", name)
}

// rewriteSuper implements the multi-segment super-prefix rule: walk
// back depth context frames from the current (topmost) one and resolve
// inner's leading identifier against the base of the frame found there.
// A single `super` targets the frame just below the top, so depth must
// be strictly less than the number of open frames — equal or greater
// both fall outside the stack (this is also why `super` at the
// outermost single-frame level is always rejected: with exactly one
// frame open, even depth 1 has nothing below it to land on). inner is
// always a single identifier or a selector chain rooted in one, since
// that is the only shape `{{ ^^path }}` payloads take.
func (g *Generator) rewriteSuper(depth int, inner ast.Expr) (ast.Expr, error) {
	if depth <= 0 {
		return nil, fmt.Errorf("super prefix depth must be at least 1")
	}
	if len(g.state.contextStack) == 0 {
		return nil, fmt.Errorf("super used with an empty context stack")
	}
	if depth >= len(g.state.contextStack) {
		return nil, fmt.Errorf("super walks back further than the number of open context frames")
	}
	frame := g.state.contextStack[len(g.state.contextStack)-1-depth]

	switch v := inner.(type) {
	case *ast.Ident:
		return selectorOn(frame.base, v.Name), nil
	case *ast.SelectorExpr:
		root, field, err := splitLeadingIdent(v)
		if err != nil {
			return nil, err
		}
		return &ast.SelectorExpr{X: selectorOn(frame.base, root), Sel: ast.NewIdent(field)}, nil
	default:
		return nil, fmt.Errorf("super path must be a dotted identifier chain")
	}
}

// splitLeadingIdent splits a two-segment selector chain (`a.b`) into its
// leading identifier and field name for rewriteSuper's single rewrite
// (spec.md §4.5: "emit `<frame j position 0>.<last_segment>`"). Chains
// longer than two segments are rejected with an error.
func splitLeadingIdent(sel *ast.SelectorExpr) (root, field string, err error) {
	switch x := sel.X.(type) {
	case *ast.Ident:
		return x.Name, sel.Sel.Name, nil
	case *ast.SelectorExpr:
		return "", "", fmt.Errorf("super with a selector chain longer than two segments is not supported")
	default:
		return "", "", fmt.Errorf("super path must be a dotted identifier chain")
	}
}

func isScreamingSnake(name string) bool {
	hasLetter := false
	for _, r := range name {
		switch {
		case r >= 'A' && r <= 'Z', r == '_', r >= '0' && r <= '9':
			// ok
		default:
			return false
		}
		if r >= 'A' && r <= 'Z' {
			hasLetter = true
		}
	}
	return hasLetter
}

func selectorOn(base, field string) ast.Expr {
	if field == "" {
		return ast.NewIdent(base)
	}
	return &ast.SelectorExpr{X: ast.NewIdent(base), Sel: ast.NewIdent(field)}
}

func intLit(n int) ast.Expr {
	return &ast.BasicLit{Kind: token.INT, Value: fmt.Sprintf("%d", n)}
}
