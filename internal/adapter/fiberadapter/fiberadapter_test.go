package fiberadapter

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

type fakeTemplate struct {
	body string
	mime string
}

func (f *fakeTemplate) Render() (string, error) { return f.body, nil }
func (f *fakeTemplate) RenderInto(w io.Writer) error {
	_, err := io.WriteString(w, f.body)
	return err
}
func (f *fakeTemplate) MIME() string  { return f.mime }
func (f *fakeTemplate) SizeHint() int { return len(f.body) }

func TestSafeFiberCtxNilReceiverIsSafe(t *testing.T) {
	var s *SafeFiberCtx
	if s.Header("X") != "" || s.Param("id") != "" || s.Local("x") != nil || s.Query("q") != "" {
		t.Fatal("expected a nil *SafeFiberCtx to return zero values for every accessor")
	}
}

func TestSafeFiberCtxDelegatesToFiberCtx(t *testing.T) {
	app := fiber.New()
	var header, param, query string
	var local interface{}

	app.Get("/items/:id", func(c *fiber.Ctx) error {
		c.Request().Header.Set("X-Trace", "abc")
		c.Locals("role", "admin")
		s := NewSafeFiberCtx(c)
		header = s.Header("X-Trace")
		param = s.Param("id")
		query = s.Query("sort")
		local = s.Local("role")
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/items/42?sort=desc", nil)
	req.Header.Set("X-Trace", "abc")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if header != "abc" {
		t.Errorf("Header: got %q, want %q", header, "abc")
	}
	if param != "42" {
		t.Errorf("Param: got %q, want %q", param, "42")
	}
	if query != "desc" {
		t.Errorf("Query: got %q, want %q", query, "desc")
	}
	if local != "admin" {
		t.Errorf("Local: got %v, want %q", local, "admin")
	}
}

func TestRenderWithCtxWritesBodyAndContentType(t *testing.T) {
	app := fiber.New()
	tmpl := &fakeTemplate{body: "<p>hi</p>", mime: "text/html; charset=utf-8"}

	app.Get("/page", func(c *fiber.Ctx) error {
		return RenderWithCtx(c, tmpl)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/page", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("Content-Type"); got != tmpl.mime {
		t.Errorf("Content-Type: got %q, want %q", got, tmpl.mime)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(body) != tmpl.body {
		t.Errorf("body: got %q, want %q", body, tmpl.body)
	}
}

func TestTemplateViewsRendersBoundTemplate(t *testing.T) {
	app := fiber.New(fiber.Config{Views: TemplateViews{}})
	tmpl := &fakeTemplate{body: "<p>hi</p>", mime: "text/html; charset=utf-8"}

	app.Get("/page", func(c *fiber.Ctx) error {
		return c.Render("page", tmpl)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/page", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(body) != tmpl.body {
		t.Errorf("body: got %q, want %q", body, tmpl.body)
	}
}

func TestTemplateViewsRejectsNonTemplateBinding(t *testing.T) {
	var v TemplateViews
	err := v.Render(io.Discard, "page", "not a template")
	if err == nil {
		t.Fatal("expected an error for a binding that does not implement runtime.Template")
	}
}
