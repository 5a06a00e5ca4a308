package printer

import (
	"bytes"
	"strings"
	"testing"
)

func TestSectionCentersTitleWithinBannerWidth(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf)
	p.Section("RESOLVE")

	line := strings.TrimRight(buf.String(), "\n")
	if !strings.Contains(line, " RESOLVE ") {
		t.Fatalf("expected banner to contain the padded title, got %q", line)
	}
	if len(line) != bannerWidth {
		t.Fatalf("expected banner width %d, got %d (%q)", bannerWidth, len(line), line)
	}
	if !strings.HasPrefix(line, "=") || !strings.HasSuffix(line, "=") {
		t.Fatalf("expected banner to be framed with '=', got %q", line)
	}
}

func TestSectionPlainWriterEmitsNoEscapeCodes(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf)
	p.Section("ANALYZE")
	if strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("expected a non-terminal writer to produce plain output, got %q", buf.String())
	}
}

func TestDumpIndentsEveryLine(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf)
	p.Dump("ast", "Tree{\n  Nodes: []\n}")

	out := buf.String()
	if !strings.Contains(out, "ast:") {
		t.Fatalf("expected a label line, got %q", out)
	}
	if !strings.Contains(out, "  Tree{") || !strings.Contains(out, "    Nodes: []") {
		t.Fatalf("expected every body line to carry the two-space indent, got %q", out)
	}
}

func TestParseModeRecognizesKnownValues(t *testing.T) {
	cases := map[string]Mode{
		"ast":     ModeAST,
		"code":    ModeCode,
		"all":     ModeAll,
		"none":    ModeNone,
		"":        ModeNone,
		"bogus":   ModeNone,
		"AST ":    ModeNone,
	}
	for in, want := range cases {
		if got := ParseMode(in); got != want {
			t.Errorf("ParseMode(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestModeShowsASTAndCode(t *testing.T) {
	if !ModeAST.ShowsAST() || ModeAST.ShowsCode() {
		t.Fatal("ModeAST should show AST only")
	}
	if !ModeCode.ShowsCode() || ModeCode.ShowsAST() {
		t.Fatal("ModeCode should show code only")
	}
	if !ModeAll.ShowsAST() || !ModeAll.ShowsCode() {
		t.Fatal("ModeAll should show both")
	}
	if ModeNone.ShowsAST() || ModeNone.ShowsCode() {
		t.Fatal("ModeNone should show neither")
	}
}

func TestLinefAppendsNewline(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf)
	p.Linef("generated %d files", 3)
	if buf.String() != "generated 3 files\n" {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}
