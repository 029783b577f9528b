package hxmountecho

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/pthm/hxmount"
)

func greeting() hxmount.Component {
	return hxmount.ComponentFunc(func(ctx context.Context, props hxmount.Props) templ.Component {
		return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			_, err := fmt.Fprintf(w, "<p>Hello %v</p>", props["name"])
			return err
		})
	})
}

func newTestRegistry() *hxmount.Registry {
	reg := hxmount.NewRegistry(hxmount.NewRootFactory(), hxmount.WithIDGenerator(&hxmount.Sequence{}))
	reg.MustRegister("greeting", greeting())
	return reg
}

const page = `<html><body><div data-rr="greeting" data-prop-name="Echo"></div></body></html>`

func TestMount(t *testing.T) {
	e := echo.New()
	islands := Mount(e, newTestRegistry())

	if islands.Registry == nil || islands.Encoder == nil {
		t.Fatal("Mount returned incomplete Islands")
	}
}

func TestMountWithKey(t *testing.T) {
	key := make([]byte, 32)
	a := Mount(echo.New(), newTestRegistry(), WithKey(key))
	b := Mount(echo.New(), newTestRegistry(), WithKey(key))

	p, err := a.Encoder.Encode(map[string]any{"name": "x"}, false)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if _, err := b.Encoder.Decode(p, false); err != nil {
		t.Errorf("islands sharing a key should decode each other's props: %v", err)
	}
}

func TestMiddlewareAndRefresh(t *testing.T) {
	e := echo.New()
	islands := Mount(e, newTestRegistry(), WithPath("/islands/"))
	e.Use(islands.Middleware())
	e.GET("/", func(c echo.Context) error {
		return c.HTML(http.StatusOK, page)
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	body := rec.Body.String()
	if !strings.Contains(body, "<p>Hello Echo</p>") {
		t.Fatalf("page = %s", body)
	}

	const marker = `data-rr-src="`
	i := strings.Index(body, marker)
	if i < 0 {
		t.Fatalf("no refresh URL in %s", body)
	}
	src := body[i+len(marker):]
	src = html.UnescapeString(src[:strings.Index(src, `"`)])
	if !strings.HasPrefix(src, "/islands/greeting?p=") {
		t.Fatalf("refresh URL = %s", src)
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, src, nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "<p>Hello Echo</p>" {
		t.Errorf("refresh: status = %d, body = %q", rec.Code, rec.Body.String())
	}
}

func TestMountGroup(t *testing.T) {
	e := echo.New()
	g := e.Group("/app")
	islands := MountGroup(g, newTestRegistry(), WithPublicPath("/app/_rr/"))
	g.Use(islands.Middleware())
	g.GET("/page", func(c echo.Context) error {
		return Render(c, templ.Raw(page))
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/app/page", nil))
	if !strings.Contains(rec.Body.String(), `data-rr-src="/app/_rr/greeting?p=`) {
		t.Errorf("page = %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/app/_rr/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown component status = %d, want 404", rec.Code)
	}
}

func TestRender(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := RenderStatus(c, http.StatusCreated, templ.Raw("<b>ok</b>")); err != nil {
		t.Fatalf("RenderStatus() error = %v", err)
	}
	if rec.Code != http.StatusCreated || rec.Body.String() != "<b>ok</b>" {
		t.Errorf("status = %d, body = %q", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestSensitiveProps(t *testing.T) {
	e := echo.New()
	islands := Mount(e, newTestRegistry(), WithSensitiveProps())
	e.Use(islands.Middleware())
	e.GET("/", func(c echo.Context) error {
		return c.HTML(http.StatusOK, page)
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	body := rec.Body.String()

	const marker = `data-rr-src="`
	i := strings.Index(body, marker)
	if i < 0 {
		t.Fatalf("no refresh URL in %s", body)
	}
	src := body[i+len(marker):]
	src = html.UnescapeString(src[:strings.Index(src, `"`)])
	p := src[strings.Index(src, "p=")+2:]
	if _, err := islands.Encoder.Decode(p, false); err == nil {
		t.Errorf("props in %s decode as signed, want encrypted", src)
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, src, nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "<p>Hello Echo</p>" {
		t.Errorf("refresh: status = %d, body = %q", rec.Code, rec.Body.String())
	}
}
