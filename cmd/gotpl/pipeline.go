package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tigerx8/gotpl/internal/compileerr"
	"github.com/tigerx8/gotpl/internal/generate"
	"github.com/tigerx8/gotpl/internal/parse"
	"github.com/tigerx8/gotpl/internal/printer"
	"github.com/tigerx8/gotpl/internal/resolve"
	gotplruntime "github.com/tigerx8/gotpl/internal/runtime"
	"github.com/tigerx8/gotpl/internal/scanner"
)

// target is one annotated type resolved down to an absolute root
// template path, ready for the resolve/parse/analyze/generate pipeline.
type target struct {
	ann      scanner.Annotation
	rootPath string
	cleanup  func()
}

// resolveTarget turns an Annotation's path= or source= into an absolute
// file the pipeline can read. source= annotations have no file on disk
// by definition, so their inline text is spilled to a throwaway temp
// file named with ann.Ext — the pipeline has no in-memory-source mode,
// and one isn't worth building solely for this call site.
func resolveTarget(resolver *resolve.Resolver, ann scanner.Annotation) (target, error) {
	if ann.Source != "" {
		tmp, err := os.CreateTemp("", "gotpl-inline-*"+ann.Ext)
		if err != nil {
			return target{}, err
		}
		if _, err := tmp.WriteString(ann.Source); err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
			return target{}, err
		}
		tmp.Close()
		return target{ann: ann, rootPath: tmp.Name(), cleanup: func() { os.Remove(tmp.Name()) }}, nil
	}
	abs, err := resolver.Resolve("", ann.Path)
	if err != nil {
		return target{}, err
	}
	return target{ann: ann, rootPath: abs}, nil
}

// buildOptions derives generate.Options from a resolved target,
// applying the escape= override or falling back to the
// extension-derived default (spec.md §4.7); assured=true turns HTML
// escaping off regardless of either.
func buildOptions(t target, runID string) generate.Options {
	escape := gotplruntime.EscapesByDefault(t.rootPath)
	if t.ann.Escape != "" {
		escape = t.ann.Escape == "html"
	}
	if t.ann.Assured {
		escape = false
	}
	return generate.Options{
		Package:    t.ann.Package,
		TypeName:   t.ann.TypeName,
		RootPath:   t.rootPath,
		EscapeHTML: escape,
		MIME:       gotplruntime.MIMEFor(t.rootPath),
		RunID:      runID,
	}
}

// outputPath is where generated source for ann is written: a
// `_gotpl.go` sibling of the source file declaring the annotated type.
func outputPath(ann scanner.Annotation) string {
	base := strings.TrimSuffix(filepath.Base(ann.File), ".go")
	return filepath.Join(filepath.Dir(ann.File), base+"_gotpl.go")
}

// generateOne resolves, parses, analyzes, and generates source for one
// annotated type, dumping AST/code per its print= setting (both dumps
// when -v is set), and writes the result to its companion file when
// write is true.
func generateOne(log zerolog.Logger, pr *printer.Printer, resolver *resolve.Resolver, runID string, ann scanner.Annotation, write bool) ([]byte, error) {
	t, err := resolveTarget(resolver, ann)
	if err != nil {
		return nil, err
	}
	if t.cleanup != nil {
		defer t.cleanup()
	}

	ts := parse.NewTemplateSet(resolver)
	mode := printer.ParseMode(ann.Print)
	if verbose {
		mode = printer.ModeAll
	}

	if mode.ShowsAST() {
		tree, _, err := ts.Root(t.rootPath)
		if err != nil {
			return nil, err
		}
		pr.Section(ann.TypeName + " ast")
		pr.Dump("ast", fmt.Sprintf("%#v", tree))
	}

	opts := buildOptions(t, runID)
	gen, err := generate.New(opts, ts)
	if err != nil {
		return nil, err
	}
	src, err := gen.Generate()
	if err != nil {
		return nil, err
	}

	if mode.ShowsCode() {
		pr.Section(ann.TypeName + " code")
		pr.Dump("code", string(src))
	}

	if !write {
		return src, nil
	}

	out := outputPath(ann)
	if err := os.WriteFile(out, src, 0o644); err != nil {
		return nil, &compileerr.IOError{Path: out, Err: err}
	}
	log.Info().Str("type", ann.TypeName).Str("out", out).Msg("generated")
	return src, nil
}
