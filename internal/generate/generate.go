// Package generate implements the code generator: it walks a parsed
// root parse.Tree and emits Go source implementing the rendering
// contract (internal/runtime.Template) on an annotated struct.
package generate

import (
	"fmt"
	"go/ast"
	"go/format"
	"go/token"
	"strconv"
	"strings"

	"github.com/tigerx8/gotpl/internal/analyze"
	"github.com/tigerx8/gotpl/internal/compileerr"
	"github.com/tigerx8/gotpl/internal/hostexpr"
	"github.com/tigerx8/gotpl/internal/parse"
	"github.com/tigerx8/gotpl/internal/resolve"
)

// Options configures one generation run for a single annotated type.
type Options struct {
	Package     string // destination package name
	ReceiverVar string // e.g. "recv"; defaults to "recv"
	TypeName    string // the annotated Go type's name, e.g. "PageView"
	RootPath    string // absolute path to the root template file
	EscapeHTML  bool   // derived from extension / escape= / assured=
	MIME        string // derived from extension
	RunID       string // embedded in the header comment for traceability
}

// scopeFrame is one `let`-binding scope. Frame 0 is special: New seeds
// it with the receiver variable name, standing in for spec.md §4.5's
// "self" frame, and top-level `let` bindings are added to it as well.
type scopeFrame struct {
	names map[string]bool
}

// contextFrame is one pushed On::Each / On::With entry (spec.md §4.5
// rule 5). base is the Go expression text bare identifiers resolve
// against; each additionally carries the loop bookkeeping variable
// names so pseudo-variable rewrites can target them.
type contextFrame struct {
	kind      contextKind
	base      string
	indexVar  string // each only; "" when the each is in plain (unindexed) form
	keyVar    string // each only
	lenVar    string // each only; "" unless the each-block uses `last`
	isRange   bool   // each only; true for lo..hi each-targets
}

type contextKind int

const (
	contextEach contextKind = iota
	contextWith
)

// scopeState is the generator's lifetime-of-one-root-template state
// (spec.md §3's "Generator scope state"), threaded through the
// recursive node-tree walk.
type scopeState struct {
	scopeStack   []scopeFrame
	contextStack []contextFrame

	// literal-coalescing buffer (spec.md §4.4's writable_buffer): raw
	// template text accumulated across consecutive Lit nodes, flushed
	// into a single io.WriteString call whenever a non-literal node is
	// about to be emitted.
	litBuf strings.Builder

	// pendingRightWS holds a just-emitted literal's trimmed right fringe
	// until the next tag resolves whether to keep or drop it (its lws).
	pendingRightWS string
	// skipNextLeftWS is set by a tag's rws and consumed by the next
	// literal's left fringe.
	skipNextLeftWS bool

	body strings.Builder // accumulated Go statements for RenderInto's body

	frameCounter int
	tempCounter  int
	sizeHint     int

	onPath string
	chain  *resolve.Chain

	needsFmt bool

	fset *token.FileSet
}

// Generator drives one root template's code generation.
type Generator struct {
	opts     Options
	ts       *parse.TemplateSet
	analysis *analyze.Result
	state    *scopeState
}

// New builds a Generator for opts.RootPath, running the scope/loop
// analysis pass (internal/analyze) up front so the Each emission rule
// can consult it while walking the tree.
func New(opts Options, ts *parse.TemplateSet) (*Generator, error) {
	if opts.ReceiverVar == "" {
		opts.ReceiverVar = "recv"
	}
	tree, chain, err := ts.Root(opts.RootPath)
	if err != nil {
		return nil, err
	}
	analysis, err := analyze.Analyze(tree, ts, chain)
	if err != nil {
		return nil, err
	}
	g := &Generator{
		opts:     opts,
		ts:       ts,
		analysis: analysis,
		state: &scopeState{
			onPath: opts.RootPath,
			chain:  chain,
			fset:   token.NewFileSet(),
			scopeStack: []scopeFrame{
				{names: map[string]bool{opts.ReceiverVar: true}},
			},
		},
	}
	return g, nil
}

// Generate emits the complete Go source file for opts.TypeName,
// returning it gofmt-formatted.
func (g *Generator) Generate() ([]byte, error) {
	tree, _, err := g.ts.Root(g.opts.RootPath)
	if err != nil {
		return nil, err
	}
	if err := g.emitNodes(tree.Nodes); err != nil {
		return nil, err
	}
	g.drainPendingRightWS()
	g.flushLiteral()

	src := g.assemble()
	formatted, err := format.Source([]byte(src))
	if err != nil {
		// Surface the unformatted source in the error so a human can see
		// what the generator produced; the caller never executes this
		// output, only writes confidently-correct bytes to disk.
		return nil, fmt.Errorf("gotpl: generated source for %s does not gofmt: %w\n--- unformatted source ---\n%s", g.opts.TypeName, err, src)
	}
	return formatted, nil
}

func (g *Generator) assemble() string {
	var b strings.Builder
	fmt.Fprintf(&b, "// Code generated by gotpl. DO NOT EDIT.\n")
	fmt.Fprintf(&b, "// source: %s\n", g.opts.RootPath)
	if g.opts.RunID != "" {
		fmt.Fprintf(&b, "// run: %s\n", g.opts.RunID)
	}
	fmt.Fprintf(&b, "\npackage %s\n\n", g.opts.Package)

	b.WriteString("import (\n")
	b.WriteString("\t\"io\"\n")
	if g.state.needsFmt {
		b.WriteString("\t\"fmt\"\n")
	}
	b.WriteString("\n\t\"github.com/tigerx8/gotpl/internal/runtime\"\n")
	b.WriteString(")\n\n")

	recv := g.opts.ReceiverVar
	typ := g.opts.TypeName

	fmt.Fprintf(&b, "func (%s *%s) RenderInto(w io.Writer) error {\n", recv, typ)
	b.WriteString(g.state.body.String())
	b.WriteString("\treturn nil\n}\n\n")

	fmt.Fprintf(&b, "func (%s *%s) Render() (string, error) {\n", recv, typ)
	fmt.Fprintf(&b, "\treturn runtime.RenderToString(%s)\n}\n\n", recv)

	fmt.Fprintf(&b, "func (%s *%s) MIME() string {\n", recv, typ)
	fmt.Fprintf(&b, "\treturn %s\n}\n\n", strconv.Quote(g.opts.MIME))

	fmt.Fprintf(&b, "func (%s *%s) SizeHint() int {\n", recv, typ)
	fmt.Fprintf(&b, "\treturn %d\n}\n\n", g.state.sizeHint)

	fmt.Fprintf(&b, "func (%s *%s) WriteTo(w io.Writer) (int64, error) {\n", recv, typ)
	fmt.Fprintf(&b, "\treturn runtime.WriteTo(%s, w)\n}\n", recv)

	return b.String()
}

func (g *Generator) nextFrame() int {
	g.state.frameCounter++
	return g.state.frameCounter
}

func (g *Generator) nextTemp() string {
	g.state.tempCounter++
	return fmt.Sprintf("_tmp%d", g.state.tempCounter)
}

func (g *Generator) pushScope() {
	g.state.scopeStack = append(g.state.scopeStack, scopeFrame{names: map[string]bool{}})
}

func (g *Generator) popScope() {
	g.state.scopeStack = g.state.scopeStack[:len(g.state.scopeStack)-1]
}

func (g *Generator) bindLocal(name string) {
	top := &g.state.scopeStack[len(g.state.scopeStack)-1]
	top.names[name] = true
}

func (g *Generator) isScopeBound(name string) bool {
	for _, f := range g.state.scopeStack {
		if f.names[name] {
			return true
		}
	}
	return false
}

func (g *Generator) pushContext(c contextFrame) {
	g.state.contextStack = append(g.state.contextStack, c)
}

func (g *Generator) popContext() {
	g.state.contextStack = g.state.contextStack[:len(g.state.contextStack)-1]
}

func (g *Generator) printExpr(n ast.Node) (string, error) {
	return hostexpr.String(g.state.fset, n)
}

func (g *Generator) validationErr(reason string) error {
	return &compileerr.ValidationError{Path: g.state.onPath, At: compileerr.Pos{}, Reason: reason}
}
