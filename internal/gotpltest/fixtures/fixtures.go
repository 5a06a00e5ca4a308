// Package fixtures holds hand-written stand-ins for `gotpl generate`'s
// output: the shape a real `_gotpl.go` companion file takes for each of
// spec.md §8's six end-to-end scenarios, compiled as ordinary Go source
// (not produced by the generator at test time) so internal/gotpltest can
// assert their exact rendered byte output the way spec.md's concrete
// scenarios specify, without needing to dynamically compile
// generator-produced source inside a test binary.
package fixtures

import (
	"io"

	"github.com/tigerx8/gotpl/internal/runtime"
)

// HelloView is scenario 1/2: `Hello, {{ Name }}!` in HTML mode.
type HelloView struct {
	Name string
}

func (r *HelloView) RenderInto(w io.Writer) error {
	if _, err := io.WriteString(w, "Hello, "); err != nil {
		return err
	}
	if err := runtime.Escape(w, r.Name); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "!"); err != nil {
		return err
	}
	return nil
}
func (r *HelloView) Render() (string, error)      { return runtime.RenderToString(r) }
func (r *HelloView) MIME() string                 { return "text/html; charset=utf-8" }
func (r *HelloView) SizeHint() int                { return len("Hello, ") + len("!") }
func (r *HelloView) WriteTo(w io.Writer) (int64, error) { return runtime.WriteTo(r, w) }

// EachView is scenario 3:
// `{{#each Items}}{{index0}}:{{key}} {{/each}}`.
type EachView struct {
	Items []string
}

func (r *EachView) RenderInto(w io.Writer) error {
	for _index_1, _key_1 := range r.Items {
		_ = _key_1
		if err := runtime.Escape(w, _index_1); err != nil {
			return err
		}
		if _, err := io.WriteString(w, ":"); err != nil {
			return err
		}
		if err := runtime.Escape(w, _key_1); err != nil {
			return err
		}
		if _, err := io.WriteString(w, " "); err != nil {
			return err
		}
	}
	return nil
}
func (r *EachView) Render() (string, error)      { return runtime.RenderToString(r) }
func (r *EachView) MIME() string                 { return "text/html; charset=utf-8" }
func (r *EachView) SizeHint() int                { return 2 }
func (r *EachView) WriteTo(w io.Writer) (int64, error) { return runtime.WriteTo(r, w) }

// IfElseView is scenario 4:
// `{{#if Cond}}y{{else if Other}}e{{else}}n{{/if}}`.
type IfElseView struct {
	Cond  bool
	Other bool
}

func (r *IfElseView) RenderInto(w io.Writer) error {
	if r.Cond {
		if _, err := io.WriteString(w, "y"); err != nil {
			return err
		}
	} else if r.Other {
		if _, err := io.WriteString(w, "e"); err != nil {
			return err
		}
	} else {
		if _, err := io.WriteString(w, "n"); err != nil {
			return err
		}
	}
	return nil
}
func (r *IfElseView) Render() (string, error)      { return runtime.RenderToString(r) }
func (r *IfElseView) MIME() string                 { return "text/html; charset=utf-8" }
func (r *IfElseView) SizeHint() int                { return 3 }
func (r *IfElseView) WriteTo(w io.Writer) (int64, error) { return runtime.WriteTo(r, w) }

// LetView is scenario 5: `{{ let v = S }}{{ v }}`.
type LetView struct {
	S string
}

func (r *LetView) RenderInto(w io.Writer) error {
	v := r.S
	if err := runtime.Escape(w, v); err != nil {
		return err
	}
	return nil
}
func (r *LetView) Render() (string, error)      { return runtime.RenderToString(r) }
func (r *LetView) MIME() string                 { return "text/html; charset=utf-8" }
func (r *LetView) SizeHint() int                { return 0 }
func (r *LetView) WriteTo(w io.Writer) (int64, error) { return runtime.WriteTo(r, w) }

// NestedItem is the per-element shape for NestedView's each/with body.
type NestedItem struct {
	Inner struct {
		Foo int
		Bar int
	}
}

// NestedView is scenario 6:
// `{{#each Xs}}{{#with Inner}}{{Foo}} {{Bar}}{{/with}}{{/each}}`.
type NestedView struct {
	Xs []NestedItem
}

func (r *NestedView) RenderInto(w io.Writer) error {
	for _, _key_1 := range r.Xs {
		_ = _key_1
		_tmp1 := _key_1.Inner
		if err := runtime.Escape(w, _tmp1.Foo); err != nil {
			return err
		}
		if _, err := io.WriteString(w, " "); err != nil {
			return err
		}
		if err := runtime.Escape(w, _tmp1.Bar); err != nil {
			return err
		}
	}
	return nil
}
func (r *NestedView) Render() (string, error)      { return runtime.RenderToString(r) }
func (r *NestedView) MIME() string                 { return "text/html; charset=utf-8" }
func (r *NestedView) SizeHint() int                { return 1 }
func (r *NestedView) WriteTo(w io.Writer) (int64, error) { return runtime.WriteTo(r, w) }
