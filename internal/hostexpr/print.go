package hostexpr

import (
	"go/ast"
	"go/printer"
	"go/token"
	"io"
)

func printNode(w io.Writer, fset *token.FileSet, node ast.Node) error {
	if fset == nil {
		fset = token.NewFileSet()
	}
	cfg := &printer.Config{Mode: printer.UseSpaces, Tabwidth: 8}
	return cfg.Fprint(w, fset, node)
}
