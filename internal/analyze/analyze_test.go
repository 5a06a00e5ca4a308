package analyze

import (
	"os"
	"path/filepath"
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

func rootAndSet(t *testing.T, dir, rootName, rootBody string) (*parse.TemplateSet, string) {
	t.Helper()
	rootPath := filepath.Join(dir, rootName)
	writeFile(t, rootPath, rootBody)
	ts := parse.NewTemplateSet(resolve.New([]string{dir}))
	return ts, rootPath
}

func TestFindLoopVarDetectsIndex0(t *testing.T) {
	dir := t.TempDir()
	ts, rootPath := rootAndSet(t, dir, "list.html", "{{#each items}}{{index0}}{{/each}}")

	tree, chain, err := ts.Root(rootPath)
	if err != nil {
		t.Fatalf("Root: %v", err)
	}
	res, err := Analyze(tree, ts, chain)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(res.UsesIndex) != 1 {
		t.Fatalf("expected exactly one each-block analyzed, got %d", len(res.UsesIndex))
	}
	for _, used := range res.UsesIndex {
		if !used {
			t.Fatal("expected each-block referencing index0 to be marked as using the index")
		}
	}
}

func TestFindLoopVarPlainBodyIsFalse(t *testing.T) {
	dir := t.TempDir()
	ts, rootPath := rootAndSet(t, dir, "list.html", "{{#each items}}{{name}}{{/each}}")

	tree, chain, err := ts.Root(rootPath)
	if err != nil {
		t.Fatalf("Root: %v", err)
	}
	res, err := Analyze(tree, ts, chain)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	for _, used := range res.UsesIndex {
		if used {
			t.Fatal("expected plain each-body with no pseudo-variable reference to be marked false")
		}
	}
}

func TestFindLoopVarNestedEachDoesNotLeakIntoOuter(t *testing.T) {
	dir := t.TempDir()
	ts, rootPath := rootAndSet(t, dir, "list.html",
		"{{#each outer}}{{#each inner}}{{index0}}{{/each}}{{/each}}")

	tree, chain, err := ts.Root(rootPath)
	if err != nil {
		t.Fatalf("Root: %v", err)
	}
	res, err := Analyze(tree, ts, chain)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	outer := tree.Nodes[0].(*parse.HelperNode).Helper.(*parse.EachHelper)
	inner := outer.Body[0].(*parse.HelperNode).Helper.(*parse.EachHelper)
	if res.UsesIndex[outer] {
		t.Fatal("expected outer each not to see the inner each's own index0 reference")
	}
	if !res.UsesIndex[inner] {
		t.Fatal("expected inner each to be marked as using its own index0")
	}
}

func TestFindLoopVarDescendsIntoPartial(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "row.html"), "{{index0}}")
	ts, rootPath := rootAndSet(t, dir, "list.html", `{{#each items}}{{> "row.html" }}{{/each}}`)

	tree, chain, err := ts.Root(rootPath)
	if err != nil {
		t.Fatalf("Root: %v", err)
	}
	res, err := Analyze(tree, ts, chain)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	each := tree.Nodes[0].(*parse.HelperNode).Helper.(*parse.EachHelper)
	if !res.UsesIndex[each] {
		t.Fatal("expected each referencing index0 only through an included partial to be marked true")
	}
}

func TestFindLoopVarKeyAloneDoesNotForceIndex(t *testing.T) {
	dir := t.TempDir()
	ts, rootPath := rootAndSet(t, dir, "list.html", "{{#each items}}{{key}}{{/each}}")

	tree, chain, err := ts.Root(rootPath)
	if err != nil {
		t.Fatalf("Root: %v", err)
	}
	res, err := Analyze(tree, ts, chain)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	each := tree.Nodes[0].(*parse.HelperNode).Helper.(*parse.EachHelper)
	if res.UsesIndex[each] {
		t.Fatal("expected a body referencing only `key` not to require the indexed loop form")
	}
}

func TestFindLoopVarPropagatesUnresolvedPartial(t *testing.T) {
	dir := t.TempDir()
	ts, rootPath := rootAndSet(t, dir, "list.html", `{{#each items}}{{> "missing.html" }}{{/each}}`)

	tree, chain, err := ts.Root(rootPath)
	if err != nil {
		t.Fatalf("Root: %v", err)
	}
	if _, err := Analyze(tree, ts, chain); err == nil {
		t.Fatal("expected an unresolved partial reference to surface as an error during analysis")
	}
}

func TestAnalyzeTracksLastSeparatelyFromIndex(t *testing.T) {
	dir := t.TempDir()
	ts, rootPath := rootAndSet(t, dir, "list.html",
		"{{#each a}}{{index0}}{{/each}}{{#each b}}{{last}}{{/each}}")

	tree, chain, err := ts.Root(rootPath)
	if err != nil {
		t.Fatalf("Root: %v", err)
	}
	res, err := Analyze(tree, ts, chain)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	aEach := tree.Nodes[0].(*parse.HelperNode).Helper.(*parse.EachHelper)
	bEach := tree.Nodes[1].(*parse.HelperNode).Helper.(*parse.EachHelper)
	if !res.UsesIndex[aEach] || res.UsesLast[aEach] {
		t.Fatalf("expected first each to use index0 only, got UsesIndex=%v UsesLast=%v", res.UsesIndex[aEach], res.UsesLast[aEach])
	}
	if !res.UsesIndex[bEach] || !res.UsesLast[bEach] {
		t.Fatalf("expected second each to use last (which implies index), got UsesIndex=%v UsesLast=%v", res.UsesIndex[bEach], res.UsesLast[bEach])
	}
}

func TestFindLoopVarRangeBoundsCountInOuterScope(t *testing.T) {
	dir := t.TempDir()
	ts, rootPath := rootAndSet(t, dir, "list.html",
		"{{#each outer}}{{#each 0..index}}{{name}}{{/each}}{{/each}}")

	tree, chain, err := ts.Root(rootPath)
	if err != nil {
		t.Fatalf("Root: %v", err)
	}
	res, err := Analyze(tree, ts, chain)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	outer := tree.Nodes[0].(*parse.HelperNode).Helper.(*parse.EachHelper)
	inner := outer.Body[0].(*parse.HelperNode).Helper.(*parse.EachHelper)
	if !res.UsesIndex[outer] {
		t.Fatal("expected the nested each's range bound referencing the outer index to mark the outer each as using the index")
	}
	if res.UsesIndex[inner] {
		t.Fatal("expected the inner each's own plain body not to be marked as using the index")
	}
}
