// Package analyze implements the scope & loop-variable analysis stage of
// the pipeline: for every each-block reachable from a parsed tree,
// determine whether its body ever references a loop pseudo-variable, so
// internal/generate can choose the indexed or plain range-emission shape
// without paying for an index/key pair it never uses, and separately
// whether it references `last` specifically, since that pseudo-variable
// additionally needs a cached length binding generated once per loop.
package analyze

import (
	"go/ast"
	"regexp"

	"github.com/tigerx8/gotpl/internal/parse"
	"github.com/tigerx8/gotpl/internal/resolve"
)

var indexPseudoRe = regexp.MustCompile(`^_index_\d+$`)

// indexRequiringPseudoNames are the loop pseudo-variables that need the
// generated index counter to resolve. `key` is deliberately excluded:
// every each-emission form (plain or indexed) already binds a per-item
// key variable, so referencing `key` never by itself forces the
// indexed-loop shape the way index0/index/first/last do.
var indexRequiringPseudoNames = map[string]bool{
	"index0": true,
	"index":  true,
	"first":  true,
	"last":   true,
}

func isAnyLoopPseudoName(name string) bool {
	return indexRequiringPseudoNames[name] || indexPseudoRe.MatchString(name)
}

func isLastPseudoName(name string) bool { return name == "last" }

// Result records, for every EachHelper discovered while walking a tree,
// whether its own body (including bodies reached through a Partial)
// references a loop pseudo-variable, and separately whether it
// references `last`.
type Result struct {
	UsesIndex map[*parse.EachHelper]bool
	UsesLast  map[*parse.EachHelper]bool
}

// Analyze walks tree, following Partial nodes through ts (extending chain
// exactly as resolution does elsewhere in the pipeline so a cyclic
// partial graph is rejected here too), and returns a Result covering
// every EachHelper reachable from it.
func Analyze(tree *parse.Tree, ts *parse.TemplateSet, chain *resolve.Chain) (*Result, error) {
	res := &Result{UsesIndex: make(map[*parse.EachHelper]bool), UsesLast: make(map[*parse.EachHelper]bool)}
	if err := walkEaches(tree.Nodes, ts, tree.Path, chain, res); err != nil {
		return nil, err
	}
	return res, nil
}

func walkEaches(nodes []parse.Node, ts *parse.TemplateSet, onPath string, chain *resolve.Chain, res *Result) error {
	for _, n := range nodes {
		switch v := n.(type) {
		case *parse.PartialNode:
			if err := descendPartial(v, ts, onPath, chain, res); err != nil {
				return err
			}
		case *parse.HelperNode:
			switch h := v.Helper.(type) {
			case *parse.EachHelper:
				used, err := FindLoopVar(h.Body, ts, onPath, chain)
				if err != nil {
					return err
				}
				res.UsesIndex[h] = used
				last, err := FindNamed(h.Body, ts, onPath, chain, isLastPseudoName)
				if err != nil {
					return err
				}
				res.UsesLast[h] = last
				if err := walkEaches(h.Body, ts, onPath, chain, res); err != nil {
					return err
				}
			case *parse.IfHelper:
				for _, b := range h.Branches {
					if err := walkEaches(b.Body, ts, onPath, chain, res); err != nil {
						return err
					}
				}
				if h.Else != nil {
					if err := walkEaches(h.Else.Body, ts, onPath, chain, res); err != nil {
						return err
					}
				}
			case *parse.WithHelper:
				if err := walkEaches(h.Body, ts, onPath, chain, res); err != nil {
					return err
				}
			case *parse.UnlessHelper:
				if err := walkEaches(h.Body, ts, onPath, chain, res); err != nil {
					return err
				}
			case *parse.DefinedHelper:
				if err := walkEaches(h.Body, ts, onPath, chain, res); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func descendPartial(p *parse.PartialNode, ts *parse.TemplateSet, onPath string, chain *resolve.Chain, res *Result) error {
	tree, abs, nextChain, err := ts.Partial(onPath, p.Path, chain)
	if err != nil {
		return err
	}
	return walkEaches(tree.Nodes, ts, abs, nextChain, res)
}

// FindLoopVar reports whether body, or anything body reaches through a
// Partial, ever references one of the index-requiring loop
// pseudo-variables (index0, index, first, last; key alone does not
// count) or an already-rewritten _index_N name,
// short-circuiting on the first hit. A nested each-block's own body is
// not descended into for this purpose — its pseudo-variables belong to
// its own fresh loop scope, not the one being analyzed — only its
// iterable/range-bound expressions, which evaluate in the outer scope,
// are checked.
func FindLoopVar(body []parse.Node, ts *parse.TemplateSet, onPath string, chain *resolve.Chain) (bool, error) {
	return FindNamed(body, ts, onPath, chain, isAnyLoopPseudoName)
}

// FindNamed is FindLoopVar generalized over which pseudo-variable names
// count as a match, so callers can ask a narrower question (e.g. "is
// `last` referenced") with the same traversal and nested-each exclusion
// rules.
func FindNamed(body []parse.Node, ts *parse.TemplateSet, onPath string, chain *resolve.Chain, match func(string) bool) (bool, error) {
	for _, n := range body {
		used, err := nodeUsesNamed(n, ts, onPath, chain, match)
		if err != nil {
			return false, err
		}
		if used {
			return true, nil
		}
	}
	return false, nil
}

func nodeUsesNamed(n parse.Node, ts *parse.TemplateSet, onPath string, chain *resolve.Chain, match func(string) bool) (bool, error) {
	switch v := n.(type) {
	case *parse.ExprNode:
		return exprUsesNamed(v.AST, match), nil
	case *parse.SafeNode:
		return exprUsesNamed(v.AST, match), nil
	case *parse.LocalNode:
		return stmtUsesNamed(v.Stmt, match), nil
	case *parse.PartialNode:
		for _, a := range v.Args {
			if exprUsesNamed(a, match) {
				return true, nil
			}
		}
		tree, abs, nextChain, err := ts.Partial(onPath, v.Path, chain)
		if err != nil {
			return false, err
		}
		return FindNamed(tree.Nodes, ts, abs, nextChain, match)
	case *parse.HelperNode:
		return helperUsesNamed(v.Helper, ts, onPath, chain, match)
	default:
		return false, nil
	}
}

func helperUsesNamed(h parse.Helper, ts *parse.TemplateSet, onPath string, chain *resolve.Chain, match func(string) bool) (bool, error) {
	switch v := h.(type) {
	case *parse.EachHelper:
		if v.Range != nil {
			return exprUsesNamed(v.Range.Lo, match) || exprUsesNamed(v.Range.Hi, match), nil
		}
		return exprUsesNamed(v.Iter, match), nil
	case *parse.IfHelper:
		for _, b := range v.Branches {
			if exprUsesNamed(b.Cond, match) {
				return true, nil
			}
			if used, err := FindNamed(b.Body, ts, onPath, chain, match); used || err != nil {
				return used, err
			}
		}
		if v.Else != nil {
			return FindNamed(v.Else.Body, ts, onPath, chain, match)
		}
		return false, nil
	case *parse.WithHelper:
		if exprUsesNamed(v.Value, match) {
			return true, nil
		}
		return FindNamed(v.Body, ts, onPath, chain, match)
	case *parse.UnlessHelper:
		if exprUsesNamed(v.Cond, match) {
			return true, nil
		}
		return FindNamed(v.Body, ts, onPath, chain, match)
	case *parse.DefinedHelper:
		if exprUsesNamed(v.Cond, match) {
			return true, nil
		}
		return FindNamed(v.Body, ts, onPath, chain, match)
	default:
		return false, nil
	}
}

func exprUsesNamed(e ast.Expr, match func(string) bool) bool {
	if e == nil {
		return false
	}
	found := false
	ast.Inspect(e, func(n ast.Node) bool {
		if found {
			return false
		}
		if id, ok := n.(*ast.Ident); ok && match(id.Name) {
			found = true
			return false
		}
		return true
	})
	return found
}

func stmtUsesNamed(s ast.Stmt, match func(string) bool) bool {
	if s == nil {
		return false
	}
	found := false
	ast.Inspect(s, func(n ast.Node) bool {
		if found {
			return false
		}
		if id, ok := n.(*ast.Ident); ok && match(id.Name) {
			found = true
			return false
		}
		return true
	})
	return found
}
