package generate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tigerx8/gotpl/internal/parse"
	"github.com/tigerx8/gotpl/internal/resolve"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func baseOpts(rootPath string) Options {
	return Options{
		Package:    "views",
		TypeName:   "PageView",
		RootPath:   rootPath,
		EscapeHTML: true,
		MIME:       "text/html; charset=utf-8",
	}
}

func generateSource(t *testing.T, dir, rootName, rootBody string, configure func(*Options)) string {
	t.Helper()
	rootPath := filepath.Join(dir, rootName)
	writeFile(t, rootPath, rootBody)
	ts := parse.NewTemplateSet(resolve.New([]string{dir}))

	opts := baseOpts(rootPath)
	if configure != nil {
		configure(&opts)
	}
	g, err := New(opts, ts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	src, err := g.Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return string(src)
}

func TestGenerateLiteralOnly(t *testing.T) {
	dir := t.TempDir()
	src := generateSource(t, dir, "index.html", "<p>hello</p>", nil)

	for _, want := range []string{
		"func (recv *PageView) RenderInto(w io.Writer) error {",
		`io.WriteString(w, "<p>hello</p>")`,
		"func (recv *PageView) Render() (string, error) {",
		"func (recv *PageView) MIME() string {",
		`"text/html; charset=utf-8"`,
		"func (recv *PageView) SizeHint() int {",
		"func (recv *PageView) WriteTo(w io.Writer) (int64, error) {",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("expected generated source to contain %q\n--- source ---\n%s", want, src)
		}
	}
}

func TestGenerateExprEscapesByDefault(t *testing.T) {
	dir := t.TempDir()
	src := generateSource(t, dir, "index.html", "{{ Name }}", nil)

	if !strings.Contains(src, "runtime.Escape(w, recv.Name)") {
		t.Errorf("expected escaped field access, got:\n%s", src)
	}
}

func TestGenerateExprSkipsEscapeWhenTemplateIsNotHTML(t *testing.T) {
	dir := t.TempDir()
	src := generateSource(t, dir, "report.txt", "{{ Name }}", func(o *Options) {
		o.EscapeHTML = false
		o.MIME = "text/plain; charset=utf-8"
	})

	if strings.Contains(src, "runtime.Escape") {
		t.Errorf("expected no escape call for a non-HTML template, got:\n%s", src)
	}
	if !strings.Contains(src, "fmt.Fprint(w, recv.Name)") {
		t.Errorf("expected plain fmt.Fprint for a non-HTML template, got:\n%s", src)
	}
}

func TestGenerateSafeNodeNeverEscapes(t *testing.T) {
	dir := t.TempDir()
	src := generateSource(t, dir, "index.html", "{{{ RawHTML }}}", nil)

	if strings.Contains(src, "runtime.Escape") {
		t.Errorf("expected a safe node never to route through runtime.Escape, got:\n%s", src)
	}
	if !strings.Contains(src, "fmt.Fprint(w, recv.RawHTML)") {
		t.Errorf("expected the safe node's value written verbatim, got:\n%s", src)
	}
}

func TestGenerateScreamingSnakeIsLeftGlobal(t *testing.T) {
	dir := t.TempDir()
	src := generateSource(t, dir, "index.html", "{{ MAX_ITEMS }}", nil)

	if strings.Contains(src, "recv.MAX_ITEMS") {
		t.Errorf("expected a screaming-snake identifier not to be receiver-prefixed, got:\n%s", src)
	}
	if !strings.Contains(src, "runtime.Escape(w, MAX_ITEMS)") {
		t.Errorf("expected the bare global constant to be emitted verbatim, got:\n%s", src)
	}
}

func TestGenerateEachPlainFormWhenNoIndexReference(t *testing.T) {
	dir := t.TempDir()
	src := generateSource(t, dir, "index.html", "{{#each Items}}{{ Name }}{{/each}}", nil)

	if !strings.Contains(src, "for _, _key_1 := range recv.Items {") {
		t.Errorf("expected the plain (unindexed) range form, got:\n%s", src)
	}
	if strings.Contains(src, "_index_1") {
		t.Errorf("expected no index variable when the body never references index0/index/first/last, got:\n%s", src)
	}
	if !strings.Contains(src, "runtime.Escape(w, _key_1.Name)") {
		t.Errorf("expected the field access to resolve against the per-item key variable, got:\n%s", src)
	}
}

func TestGenerateEachIndexedFormWhenIndex0Referenced(t *testing.T) {
	dir := t.TempDir()
	src := generateSource(t, dir, "index.html", "{{#each Items}}{{ index0 }}{{/each}}", nil)

	if !strings.Contains(src, "for _index_1, _key_1 := range recv.Items {") {
		t.Errorf("expected the indexed range form, got:\n%s", src)
	}
	if !strings.Contains(src, "runtime.Escape(w, _index_1)") {
		t.Errorf("expected index0 to rewrite to the raw index variable, got:\n%s", src)
	}
}

func TestGenerateEachKeyOnlyDoesNotForceIndexedForm(t *testing.T) {
	dir := t.TempDir()
	src := generateSource(t, dir, "index.html", "{{#each Items}}{{ key }}{{/each}}", nil)

	if !strings.Contains(src, "for _, _key_1 := range recv.Items {") {
		t.Errorf("expected a `key`-only body to keep the plain range form, got:\n%s", src)
	}
	if !strings.Contains(src, "_ = _key_1") {
		t.Errorf("expected the unconditional key-use safety statement, got:\n%s", src)
	}
}

func TestGenerateEachLastAddsLengthPrelude(t *testing.T) {
	dir := t.TempDir()
	src := generateSource(t, dir, "index.html", "{{#each Items}}{{ last }}{{/each}}", nil)

	if !strings.Contains(src, "_len_1 := len(recv.Items)") {
		t.Errorf("expected a cached length prelude when the body references last, got:\n%s", src)
	}
	if !strings.Contains(src, "_index_1 ==") || !strings.Contains(src, "_len_1") {
		t.Errorf("expected last to rewrite to an index/length comparison, got:\n%s", src)
	}
}

func TestGenerateEachIndexPseudoIsOneBased(t *testing.T) {
	dir := t.TempDir()
	src := generateSource(t, dir, "index.html", "{{#each Items}}{{ index }}{{/each}}", nil)

	if !strings.Contains(src, "_index_1+1") {
		t.Errorf("expected index to rewrite to indexVar+1, got:\n%s", src)
	}
}

func TestGenerateNestedEachFramesDoNotCollide(t *testing.T) {
	dir := t.TempDir()
	src := generateSource(t, dir, "index.html",
		"{{#each Outer}}{{#each Inner}}{{ index0 }}{{/each}}{{/each}}", nil)

	if !strings.Contains(src, "for _, _key_1 := range recv.Outer {") {
		t.Errorf("expected outer loop in plain form (it never references index0 itself), got:\n%s", src)
	}
	if !strings.Contains(src, "for _index_2, _key_2 := range _key_1.Inner {") {
		t.Errorf("expected inner loop to resolve Inner against the outer per-item variable, got:\n%s", src)
	}
}

func TestGenerateIfElseIfElseChain(t *testing.T) {
	dir := t.TempDir()
	src := generateSource(t, dir, "index.html",
		`{{#if Loading}}wait{{else if Failed}}oops{{else}}ok{{/if}}`, nil)

	for _, want := range []string{
		"if recv.Loading {",
		"} else if recv.Failed {",
		"} else {",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("expected %q in the generated if-chain, got:\n%s", want, src)
		}
	}
}

func TestGenerateIfCloseWhitespaceIsApplied(t *testing.T) {
	dir := t.TempDir()
	src := generateSource(t, dir, "index.html", "{{#if Loading}}x{{/if-}}\n  next", nil)

	if !strings.Contains(src, `io.WriteString(w, "next")`) {
		t.Errorf("expected the {{/if-}} trailing whitespace-control to drop the newline and leading spaces, got:\n%s", src)
	}
	if strings.Contains(src, "\\n  next") {
		t.Errorf("expected the literal fringe after {{/if-}} to be trimmed, got:\n%s", src)
	}
}

func TestGenerateWithPushesSingleValueContext(t *testing.T) {
	dir := t.TempDir()
	src := generateSource(t, dir, "index.html", "{{#with Author}}{{ Name }}{{/with}}", nil)

	if !strings.Contains(src, "_tmp1 := recv.Author") {
		t.Errorf("expected with to bind a temp variable to the pushed value, got:\n%s", src)
	}
	if !strings.Contains(src, "runtime.Escape(w, _tmp1.Name)") {
		t.Errorf("expected the body to resolve bare identifiers against the with-value, got:\n%s", src)
	}
}

func TestGenerateUnlessNegatesCondition(t *testing.T) {
	dir := t.TempDir()
	src := generateSource(t, dir, "index.html", "{{#unless LoggedIn}}guest{{/unless}}", nil)

	if !strings.Contains(src, "if !(recv.LoggedIn) {") {
		t.Errorf("expected unless to negate its condition, got:\n%s", src)
	}
}

func TestGenerateDefinedHelperIsRejected(t *testing.T) {
	dir := t.TempDir()
	rootPath := filepath.Join(dir, "index.html")
	writeFile(t, rootPath, "{{#defined Flag true}}x{{/defined}}")
	ts := parse.NewTemplateSet(resolve.New([]string{dir}))
	g, err := New(baseOpts(rootPath), ts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := g.Generate(); err == nil {
		t.Fatal("expected the reserved defined helper to be rejected at generation time")
	}
}

func TestGenerateLocalBindingShadowsFieldAccess(t *testing.T) {
	dir := t.TempDir()
	src := generateSource(t, dir, "index.html", "{{ let total = Price }}{{ total }}", nil)

	if !strings.Contains(src, "total := recv.Price") {
		t.Errorf("expected the let-binding's right-hand side to resolve against the receiver, got:\n%s", src)
	}
	if !strings.Contains(src, "runtime.Escape(w, total)") {
		t.Errorf("expected a later reference to the bound name to stay unrewritten, got:\n%s", src)
	}
}

func TestGenerateTrySugarChecksError(t *testing.T) {
	dir := t.TempDir()
	src := generateSource(t, dir, "index.html", "{{ Fetch()? }}", nil)

	if !strings.Contains(src, "if err != nil {\n\t\treturn err\n\t}") {
		t.Errorf("expected try-sugar to generate an error check, got:\n%s", src)
	}
}

func TestGenerateSuperWalksBackOneContextFrame(t *testing.T) {
	dir := t.TempDir()
	src := generateSource(t, dir, "index.html",
		"{{#with Author}}{{#with Bio}}{{ ^Name }}{{/with}}{{/with}}", nil)

	if !strings.Contains(src, "_tmp1.Name") {
		t.Errorf("expected ^Name to resolve one context frame up against the outer with-value, got:\n%s", src)
	}
}

func TestGeneratePartialInheritsArgAsContext(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "card.html"), "{{ Name }}")
	src := generateSource(t, dir, "index.html", `{{> "card.html" Author }}`, nil)

	if !strings.Contains(src, "_tmp1 := recv.Author") {
		t.Errorf("expected the partial's arg expression to be bound to a temp, got:\n%s", src)
	}
	if !strings.Contains(src, "runtime.Escape(w, _tmp1.Name)") {
		t.Errorf("expected the partial body to resolve bare identifiers against the passed-in context, got:\n%s", src)
	}
}

func TestGeneratePartialWithoutArgInheritsEnclosingScope(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "card.html"), "{{ Name }}")
	src := generateSource(t, dir, "index.html", `{{> "card.html" }}`, nil)

	if !strings.Contains(src, "runtime.Escape(w, recv.Name)") {
		t.Errorf("expected a partial with no arg to resolve bare identifiers against the enclosing scope, got:\n%s", src)
	}
}
