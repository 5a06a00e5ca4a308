package runtime

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/valyala/bytebufferpool"
)

// Template is the rendering contract every generated type implements.
// RenderInto is the primitive; Render and WriteTo are both derived from
// it, mirroring the teacher's own "render into a buffer, then adapt"
// shape in engine/blade.go.
type Template interface {
	Render() (string, error)
	RenderInto(w io.Writer) error
	MIME() string
	SizeHint() int
}

// RenderToString is the helper every generated Render() body calls: pull
// a pooled buffer, pre-grow it to SizeHint so a single render rarely
// needs to reallocate, delegate to RenderInto, and copy out the result.
// Pooling here is the same trade the teacher's fasthttp-adjacent stack
// makes throughout gofiber (bytebufferpool ships transitively via it) —
// generation runs Render() once per request-equivalent call, so reusing
// the backing array across calls avoids a fresh allocation each time.
func RenderToString(t Template) (string, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if cap(buf.B) < t.SizeHint() {
		buf.B = make([]byte, 0, t.SizeHint())
	}
	if err := t.RenderInto(buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteTo adapts RenderInto to io.WriterTo (spec.md's Display::fmt
// analogue) for any generated type that embeds it.
func WriteTo(t Template, w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	if err := t.RenderInto(cw); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// htmlLikeExtensions is spec.md §4.7's escape-eligible extension set,
// extended with this module's own native tmpl/gotpl extensions.
var htmlLikeExtensions = map[string]bool{
	".html":       true,
	".htm":        true,
	".xml":        true,
	".hbs":        true,
	".handlebars": true,
	".mustache":   true,
	".tmpl":       true,
	".gotpl":      true,
}

// EscapesByDefault reports whether a template source path's extension
// falls in the escape-eligible set.
func EscapesByDefault(path string) bool {
	return htmlLikeExtensions[strings.ToLower(filepath.Ext(path))]
}

// MIMEFor returns the Content-Type a generated type's MIME() method
// should return, keyed off its source extension; unrecognized
// extensions fall back to the text/plain catch-all, matching the
// teacher's own default response content type when no explicit MIME is
// configured.
func MIMEFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm", ".hbs", ".handlebars", ".mustache", ".gotpl", ".tmpl":
		return "text/html; charset=utf-8"
	case ".xml":
		return "application/xml; charset=utf-8"
	case ".json":
		return "application/json; charset=utf-8"
	case ".css":
		return "text/css; charset=utf-8"
	case ".js":
		return "text/javascript; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}
