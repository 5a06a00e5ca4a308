// Package runtime is the one small package generated code imports: the
// HTML-escape dispatch and the Template rendering contract every
// annotated type's generated methods implement.
package runtime

import (
	"fmt"
	"html"
	"io"
	"strconv"
	"strings"
)

// Markup is the sealed interface a value implements to opt out of
// escaping on output — the typed-dispatch discipline, since Go has no
// specialization to pick an unescaped Display impl by type shape alone.
type Markup interface{ markup() }

// UnsafeMarkup is pre-rendered HTML that must pass through Escape
// unmodified. Callers are responsible for having produced it safely;
// wrapping arbitrary user input in UnsafeMarkup defeats escaping
// entirely, same as spec.md's safe-string wrapper.
type UnsafeMarkup string

func (UnsafeMarkup) markup() {}

// SafeNumeric wraps an int/uint/float/bool value that the generator
// already knows never needs HTML escaping (spec.md §4.5's "literal
// markers"), so Escape can skip the type switch for values it has
// already classified at generation time.
type SafeNumeric struct{ V any }

func (SafeNumeric) markup() {}

// Escape writes v to w, HTML-escaping it unless v is already flagged
// safe (Markup) or is a native numeric/bool kind. Strings and
// fmt.Stringer values are escaped with the standard five-entity table
// plus forward-slash, matching the teacher's own
// template.HTMLEscapeString usage in compiler.go.
func Escape(w io.Writer, v any) error {
	switch t := v.(type) {
	case nil:
		return nil
	case UnsafeMarkup:
		_, err := io.WriteString(w, string(t))
		return err
	case SafeNumeric:
		return writeNumeric(w, t.V)
	case string:
		_, err := io.WriteString(w, escapeString(t))
		return err
	case bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, float32, float64:
		return writeNumeric(w, t)
	case fmt.Stringer:
		_, err := io.WriteString(w, escapeString(t.String()))
		return err
	default:
		_, err := io.WriteString(w, escapeString(fmt.Sprint(t)))
		return err
	}
}

func writeNumeric(w io.Writer, v any) error {
	var err error
	switch n := v.(type) {
	case bool:
		_, err = io.WriteString(w, strconv.FormatBool(n))
	case int:
		_, err = io.WriteString(w, strconv.Itoa(n))
	case int8, int16, int32, int64:
		_, err = io.WriteString(w, fmt.Sprintf("%d", n))
	case uint, uint8, uint16, uint32, uint64:
		_, err = io.WriteString(w, fmt.Sprintf("%d", n))
	case float32:
		_, err = io.WriteString(w, strconv.FormatFloat(float64(n), 'g', -1, 32))
	case float64:
		_, err = io.WriteString(w, strconv.FormatFloat(n, 'g', -1, 64))
	default:
		_, err = io.WriteString(w, fmt.Sprint(n))
	}
	return err
}

var escapeReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
	"/", "&#x2f;",
)

func escapeString(s string) string {
	return escapeReplacer.Replace(s)
}

// UnescapeString undoes escapeString, exposed only for tests comparing
// round-tripped golden output; html.UnescapeString is a superset (it
// also decodes numeric and named entities Escape never produces), which
// is fine for assertions.
func UnescapeString(s string) string {
	return html.UnescapeString(s)
}
