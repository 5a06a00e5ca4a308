package runtime

import (
	"bytes"
	"io"
	"testing"
)

type fakeTemplate struct {
	body string
}

func (f *fakeTemplate) Render() (string, error) { return RenderToString(f) }
func (f *fakeTemplate) RenderInto(w io.Writer) error {
	_, err := io.WriteString(w, f.body)
	return err
}
func (f *fakeTemplate) MIME() string  { return "text/html; charset=utf-8" }
func (f *fakeTemplate) SizeHint() int { return len(f.body) }

func TestRenderToString(t *testing.T) {
	ft := &fakeTemplate{body: "hello"}
	got, err := ft.Render()
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "hello" {
		t.Fatalf("got %q, want %q", got, "hello")
	}
}

func TestWriteToCountsBytes(t *testing.T) {
	ft := &fakeTemplate{body: "hello world"}
	var buf bytes.Buffer
	n, err := WriteTo(ft, &buf)
	if err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if n != int64(len("hello world")) {
		t.Fatalf("got n=%d, want %d", n, len("hello world"))
	}
	if buf.String() != "hello world" {
		t.Fatalf("unexpected buffer contents: %q", buf.String())
	}
}
