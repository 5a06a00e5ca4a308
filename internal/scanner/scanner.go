// Package scanner discovers annotated types: Go structs whose first
// field is `_ struct{}` carrying a `gotpl:"..."` tag (spec.md §6's
// template metadata surface). cmd/gotpl reads source files directly
// with go/parser rather than importing the target package and using
// reflection — generation runs *before* the annotated package is known
// to compile (it may not even type-check yet, since its render methods
// don't exist until generation produces them), so reflect.StructTag can
// only be consulted once go/ast has already found the tag literal.
package scanner

import (
	"go/ast"
	"go/parser"
	"go/token"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/tigerx8/gotpl/internal/compileerr"
)

// Annotation is one decoded `gotpl:"..."` tag, plus the enclosing
// package/type it was found on.
type Annotation struct {
	Package  string // the Go package name declared in the source file
	TypeName string
	File     string // absolute path to the .go source file

	Path    string // relative to a configured template directory
	Source  string // inline source text, mutually exclusive with Path
	Ext     string // required alongside Source
	Escape  string // "html" | "none"; "" means derive from extension
	Print   string // "all" | "ast" | "code" | "none"; "" means "none"
	Assured bool

	assuredSet bool
}

// AssuredSet reports whether the tag explicitly set assured=, as
// opposed to defaulting to false.
func (a Annotation) AssuredSet() bool { return a.assuredSet }

// Scan walks every non-test .go file directly under dir (it does not
// recurse into subdirectories — one scan per package, mirroring how
// `go build` scopes a single directory to one package) and returns every
// annotated type found, in file then declaration order.
func Scan(dir string) ([]Annotation, error) {
	entries, err := filepath.Glob(filepath.Join(dir, "*.go"))
	if err != nil {
		return nil, err
	}
	fset := token.NewFileSet()
	var out []Annotation
	for _, path := range entries {
		if strings.HasSuffix(path, "_test.go") {
			continue
		}
		file, err := parser.ParseFile(fset, path, nil, parser.ParseComments)
		if err != nil {
			return nil, &compileerr.IOError{Path: path, Err: err}
		}
		anns, err := scanFile(file, path)
		if err != nil {
			return nil, err
		}
		out = append(out, anns...)
	}
	return out, nil
}

func scanFile(file *ast.File, path string) ([]Annotation, error) {
	var out []Annotation
	pkgName := file.Name.Name
	for _, decl := range file.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE {
			continue
		}
		for _, spec := range gd.Specs {
			ts, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}
			st, ok := ts.Type.(*ast.StructType)
			if !ok || st.Fields == nil || len(st.Fields.List) == 0 {
				continue
			}
			tag := findGotplTag(st.Fields.List[0])
			if tag == "" {
				continue
			}
			ann, err := parseTag(tag)
			if err != nil {
				return nil, &compileerr.BadAttributeError{Type: ts.Name.Name, Detail: err.Error()}
			}
			ann.Package = pkgName
			ann.TypeName = ts.Name.Name
			ann.File = path
			out = append(out, ann)
		}
	}
	return out, nil
}

// findGotplTag returns field's struct tag value for the `gotpl` key,
// only when the field is the blank identifier (the convention spec.md
// §6 fixes: the annotation lives on `_ struct{}`, never on a named,
// otherwise-meaningful field).
func findGotplTag(field *ast.Field) string {
	if field.Tag == nil || len(field.Names) != 1 || field.Names[0].Name != "_" {
		return ""
	}
	raw, err := strconv.Unquote(field.Tag.Value)
	if err != nil {
		return ""
	}
	return reflect.StructTag(raw).Get("gotpl")
}

func parseTag(tag string) (Annotation, error) {
	ann := Annotation{}
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			return ann, &tagError{"malformed key=value pair: " + part}
		}
		key, val := strings.TrimSpace(kv[0]), strings.TrimSpace(kv[1])
		switch key {
		case "path":
			ann.Path = val
		case "source":
			ann.Source = val
		case "ext":
			ann.Ext = val
		case "escape":
			if val != "html" && val != "none" {
				return ann, &tagError{"escape must be \"html\" or \"none\", got " + val}
			}
			ann.Escape = val
		case "print":
			switch val {
			case "all", "ast", "code", "none":
				ann.Print = val
			default:
				return ann, &tagError{"print must be one of all|ast|code|none, got " + val}
			}
		case "assured":
			switch val {
			case "true":
				ann.Assured, ann.assuredSet = true, true
			case "false":
				ann.Assured, ann.assuredSet = false, true
			default:
				return ann, &tagError{"assured must be \"true\" or \"false\", got " + val}
			}
		default:
			return ann, &tagError{"unrecognized gotpl tag key: " + key}
		}
	}
	if ann.Path != "" && ann.Source != "" {
		return ann, &tagError{"path and source are mutually exclusive"}
	}
	if ann.Path == "" && ann.Source == "" {
		return ann, &tagError{"one of path or source is required"}
	}
	if ann.Source != "" && ann.Ext == "" {
		return ann, &tagError{"ext is required alongside source"}
	}
	return ann, nil
}

type tagError struct{ msg string }

func (e *tagError) Error() string { return e.msg }
