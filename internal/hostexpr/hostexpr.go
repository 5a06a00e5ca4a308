// Package hostexpr is the embedded host-language expression/statement
// parser spec.md §4.2 calls out as an external collaborator. The host
// language here is Go itself, so fragments are parsed with go/parser and
// walked with go/ast — this package is the seam between template tag
// text and a real Go AST.
package hostexpr

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"regexp"
	"strconv"
	"strings"

	"github.com/tigerx8/gotpl/internal/compileerr"
)

// superMarkerPrefix names the synthetic call wrapping a caret-prefixed
// path so it parses as valid Go: `^^user.Name` becomes
// `__gotplSuper2(user.Name)` before being handed to go/parser, since Go's
// expression grammar has no surface syntax for a parent-frame walk-back
// (the role spec.md's `super` keyword plays) to repurpose. SuperDepth
// recovers the original depth and inner path from the resulting AST.
const superMarkerPrefix = "__gotplSuper"

var superCallRe = regexp.MustCompile(`^` + superMarkerPrefix + `(\d+)$`)

// ParseExpr parses a single Go expression fragment, the payload of
// `{{ expr }}`, `{{{ expr }}}`, and `{{# helper args }}` tags. A leading
// run of `^` characters is treated as a parent-frame walk-back count
// (spec.md §4.5's `super`, re-targeted since Go has no such keyword) and
// stripped before parsing; use SuperDepth to recover it from the result.
func ParseExpr(path string, at compileerr.Pos, src string) (ast.Expr, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, &compileerr.HostParseError{Path: path, At: at, Fragment: src, Detail: "empty expression"}
	}
	depth, rest := stripSuperPrefix(src)
	parseSrc := rest
	if depth > 0 {
		if rest == "" {
			return nil, &compileerr.HostParseError{Path: path, At: at, Fragment: src, Detail: "super prefix with no path"}
		}
		parseSrc = fmt.Sprintf("%s%d(%s)", superMarkerPrefix, depth, rest)
	}
	expr, err := parser.ParseExpr(parseSrc)
	if err != nil {
		return nil, &compileerr.HostParseError{Path: path, At: at, Fragment: src, Detail: err.Error()}
	}
	return expr, nil
}

func stripSuperPrefix(src string) (int, string) {
	depth := 0
	i := 0
	for i < len(src) && src[i] == '^' {
		depth++
		i++
	}
	return depth, src[i:]
}

// SuperDepth reports whether e is a caret-prefixed path recognized by
// ParseExpr, returning the walk-back depth and the inner path expression
// (with the synthetic wrapper removed) when so.
func SuperDepth(e ast.Expr) (int, ast.Expr, bool) {
	call, ok := e.(*ast.CallExpr)
	if !ok || len(call.Args) != 1 {
		return 0, nil, false
	}
	id, ok := call.Fun.(*ast.Ident)
	if !ok {
		return 0, nil, false
	}
	m := superCallRe.FindStringSubmatch(id.Name)
	if m == nil {
		return 0, nil, false
	}
	depth, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, nil, false
	}
	return depth, call.Args[0], true
}

// ParseStatement parses a single Go statement fragment — currently only
// `let name = expr` (spec.md §4.2: "{{ let ... }}" payloads are parsed as
// statements, a trailing ';' appended if absent"). Go's grammar has no
// bare-statement entry point, so the fragment is synthesized into a
// throwaway function body and unwrapped.
func ParseStatement(path string, at compileerr.Pos, src string) (ast.Stmt, error) {
	trimmed := strings.TrimSpace(src)
	if !strings.HasPrefix(trimmed, "let ") {
		return nil, &compileerr.HostParseError{Path: path, At: at, Fragment: src, Detail: "statement must start with 'let '"}
	}
	body := strings.TrimSpace(strings.TrimPrefix(trimmed, "let "))
	assign := strings.Replace(body, "=", ":=", 1)
	if !strings.Contains(assign, ":=") {
		return nil, &compileerr.HostParseError{Path: path, At: at, Fragment: src, Detail: "let binding requires '='"}
	}
	if !strings.HasSuffix(assign, ";") {
		assign += ";"
	}

	synth := "package p\nfunc _() {\n" + assign + "\n}\n"
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, synth, 0)
	if err != nil {
		return nil, &compileerr.HostParseError{Path: path, At: at, Fragment: src, Detail: err.Error()}
	}
	fn, ok := file.Decls[0].(*ast.FuncDecl)
	if !ok || len(fn.Body.List) == 0 {
		return nil, &compileerr.HostParseError{Path: path, At: at, Fragment: src, Detail: "could not extract let binding"}
	}
	stmt := fn.Body.List[0]
	assignStmt, ok := stmt.(*ast.AssignStmt)
	if !ok || assignStmt.Tok != token.DEFINE {
		return nil, &compileerr.HostParseError{Path: path, At: at, Fragment: src, Detail: "let binding must be a simple assignment"}
	}
	if len(assignStmt.Lhs) != 1 {
		return nil, &compileerr.ValidationError{Path: path, At: at, Reason: "let-statements disallow subpatterns"}
	}
	for _, lhs := range assignStmt.Lhs {
		if _, ok := lhs.(*ast.Ident); !ok {
			return nil, &compileerr.ValidationError{Path: path, At: at, Reason: "let-statements disallow subpatterns"}
		}
	}
	return assignStmt, nil
}

// BoundNames returns the identifiers a Local (let) statement binds, in
// left-to-right order, for use by the generator's scope-frame bookkeeping.
func BoundNames(stmt ast.Stmt) []string {
	assign, ok := stmt.(*ast.AssignStmt)
	if !ok {
		return nil
	}
	var names []string
	for _, lhs := range assign.Lhs {
		if id, ok := lhs.(*ast.Ident); ok && id.Name != "_" {
			names = append(names, id.Name)
		}
	}
	return names
}

// Validate implements the restricted-subset check of spec.md §4.2: no
// goroutine launches, defer, channel sends or select statements,
// including inside nested function literals (channel receives are not
// rejected). Go's expression grammar already forbids
// most of the Rust-specific constructs spec.md names (attribute macros,
// async/await, qualified-self paths have no Go surface syntax at all),
// so only the constructs that *are* representable in a Go expression get
// an explicit check.
func Validate(path string, at compileerr.Pos, node ast.Node) error {
	var reason string
	ast.Inspect(node, func(n ast.Node) bool {
		if reason != "" {
			return false
		}
		switch v := n.(type) {
		case *ast.GoStmt:
			reason = "goroutine launch is not allowed in a template expression"
		case *ast.DeferStmt:
			reason = "defer is not allowed in a template expression"
		case *ast.SendStmt:
			reason = "channel send is not allowed in a template expression"
		case *ast.SelectStmt:
			reason = "select is not allowed in a template expression"
		case *ast.FuncLit:
			// closures are allowed (spec.md explicitly permits them);
			// only their body's use of goroutines/defer/send is checked,
			// which ast.Inspect already recurses into.
			_ = v
		}
		return reason == ""
	})
	if reason != "" {
		return &compileerr.ValidationError{Path: path, At: at, Reason: reason}
	}
	return nil
}

// IsLiteralWrapped reports whether an expression's root is a literal
// that is natively string-convertible without HTML escaping: integer,
// float, or boolean literals (spec.md §3 invariant 3, §4.5 "literal
// markers"). Known string-producing calls are also treated as
// pre-wrapped per spec.md's invariant — this module recognizes calls to
// fmt.Sprintf, strconv.Quote and strconv.Itoa as the common "known
// string-typed call" case, since all three already emit text, not markup, and re-escaping their
// output would double-escape user-supplied formatting verbs.
func IsLiteralWrapped(e ast.Expr) bool {
	switch v := e.(type) {
	case *ast.BasicLit:
		return v.Kind == token.INT || v.Kind == token.FLOAT
	case *ast.Ident:
		return v.Name == "true" || v.Name == "false"
	case *ast.CallExpr:
		return isKnownStringCall(v)
	}
	return false
}

func isKnownStringCall(c *ast.CallExpr) bool {
	sel, ok := c.Fun.(*ast.SelectorExpr)
	if !ok {
		return false
	}
	pkg, ok := sel.X.(*ast.Ident)
	if !ok {
		return false
	}
	switch pkg.Name + "." + sel.Sel.Name {
	case "fmt.Sprintf", "strconv.Quote", "strconv.Itoa":
		return true
	}
	return false
}

// String re-renders an AST node back to Go source text via go/printer,
// used by the generator once bare identifiers have been rewritten.
func String(fset *token.FileSet, node ast.Node) (string, error) {
	var sb strings.Builder
	if err := printNode(&sb, fset, node); err != nil {
		return "", fmt.Errorf("hostexpr: print: %w", err)
	}
	return sb.String(), nil
}
