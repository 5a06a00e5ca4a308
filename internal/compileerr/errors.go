// Package compileerr defines the fatal error taxonomy produced by the
// gotpl compiler pipeline (resolve -> parse -> analyze -> generate).
// Most errors returned by the exported pipeline functions can be matched
// with errors.As against one of the types below; partial-inclusion
// cycles are reported as *resolve.ErrCycle, and a few generator failures
// (generated source that does not gofmt, an unhandled node type) are
// plain wrapped errors.
package compileerr

import "fmt"

// ConfigError wraps a malformed gotpl.toml.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("gotpl: config error in %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// TemplateNotFoundError is returned by the resolver when every candidate
// directory has been exhausted.
type TemplateNotFoundError struct {
	Name string
	Dirs []string
}

func (e *TemplateNotFoundError) Error() string {
	return fmt.Sprintf("gotpl: template %q not found in %v", e.Name, e.Dirs)
}

// IOError wraps a failed file read of a resolved template path.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("gotpl: io error reading %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Pos is an approximate source position: byte offset plus a derived
// line/column, good enough for "file and approximate position"
// diagnostics (spec §7 does not require exact columns).
type Pos struct {
	Offset int
	Line   int
	Col    int
}

func (p Pos) String() string { return fmt.Sprintf("%d:%d", p.Line, p.Col) }

// ParseError is a template-syntax parser failure.
type ParseError struct {
	Path   string
	At     Pos
	Detail string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("gotpl: parse error in %s at %s: %s", e.Path, e.At, e.Detail)
}

// HostParseError wraps a failure from the embedded host (Go) expression
// or statement parser.
type HostParseError struct {
	Path     string
	At       Pos
	Fragment string
	Detail   string
}

func (e *HostParseError) Error() string {
	return fmt.Sprintf("gotpl: invalid host expression %q in %s at %s: %s", e.Fragment, e.Path, e.At, e.Detail)
}

// ValidationError is raised when an embedded host AST node uses a
// construct outside the restricted subset the generator accepts.
type ValidationError struct {
	Path   string
	At     Pos
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("gotpl: disallowed construct in %s at %s: %s", e.Path, e.At, e.Reason)
}

// UnbalancedBlockError is returned when a block helper's opener has no
// matching closer, or the closer reached EOF before finding one.
type UnbalancedBlockError struct {
	Path string
	Name string
}

func (e *UnbalancedBlockError) Error() string {
	return fmt.Sprintf("gotpl: unbalanced block %q in %s", e.Name, e.Path)
}

// MismatchedCloseError is returned when a closing tag's name does not
// match the name of the block it is meant to close.
type MismatchedCloseError struct {
	Path     string
	Expected string
	Got      string
}

func (e *MismatchedCloseError) Error() string {
	return fmt.Sprintf("gotpl: mismatched close in %s: expected {{/%s}}, got {{/%s}}", e.Path, e.Expected, e.Got)
}

// UnresolvedPartialError is returned when a {{> name}} tag's target
// cannot be found by the resolver at generation time.
type UnresolvedPartialError struct {
	Path string
	Name string
}

func (e *UnresolvedPartialError) Error() string {
	return fmt.Sprintf("gotpl: unresolved partial %q referenced from %s", e.Name, e.Path)
}

// BadAttributeError is returned when a struct's `gotpl:"..."` tag is
// malformed or combines mutually exclusive options.
type BadAttributeError struct {
	Type   string
	Detail string
}

func (e *BadAttributeError) Error() string {
	return fmt.Sprintf("gotpl: bad template metadata on %s: %s", e.Type, e.Detail)
}
