package hxmount

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func newMiddlewareServer(reg *Registry, opts ...RendererOption) http.Handler {
	r := chi.NewRouter()
	r.Use(Middleware(reg, opts...))
	r.Get("/page", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<!DOCTYPE html><html><head></head><body><div data-rr="greeting" data-prop-name="page"></div></body></html>`))
	})
	r.Get("/nested", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<!DOCTYPE html><html><head></head><body><div data-rr="greeting" data-prop-name="outer"><span data-rr="greeting" data-prop-name="inner"></span></div></body></html>`))
	})
	r.Get("/fragment", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<li data-rr="greeting" data-prop-name="frag"></li>`))
	})
	r.Get("/json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"html":"<div data-rr=\"greeting\"></div>"}`))
	})
	r.Get("/gone", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusGone)
		_, _ = w.Write([]byte(`<div data-rr="greeting"></div>`))
	})
	return r
}

func TestMiddleware(t *testing.T) {
	reg := newTestRegistry()
	reg.MustRegister("greeting", greeting())
	srv := newMiddlewareServer(reg)

	tests := []struct {
		name       string
		path       string
		htmx       bool
		wantStatus int
		contains   []string
		excludes   []string
	}{
		{
			name:       "full document",
			path:       "/page",
			wantStatus: http.StatusOK,
			contains:   []string{"<!DOCTYPE html>", `<div data-rr-cid="1"><p>Hello page</p></div>`},
			excludes:   []string{`data-rr="greeting"`},
		},
		{
			name:       "htmx fragment",
			path:       "/fragment",
			htmx:       true,
			wantStatus: http.StatusOK,
			contains:   []string{`<div data-rr-cid="1"><p>Hello frag</p></div>`},
			excludes:   []string{"<html>", "<body>"},
		},
		{
			name:       "non-html passes through",
			path:       "/json",
			wantStatus: http.StatusOK,
			contains:   []string{`data-rr=\"greeting\"`},
		},
		{
			name:       "error status passes through",
			path:       "/gone",
			wantStatus: http.StatusGone,
			contains:   []string{`<div data-rr="greeting"></div>`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.htmx {
				req.Header.Set("HX-Request", "true")
			}
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			body := rec.Body.String()
			for _, s := range tt.contains {
				if !strings.Contains(body, s) {
					t.Errorf("body missing %q\n%s", s, body)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(body, s) {
					t.Errorf("body should not contain %q\n%s", s, body)
				}
			}
		})
	}
}

func TestMiddlewareReleasesRoots(t *testing.T) {
	reg := newTestRegistry()
	reg.MustRegister("greeting", greeting())
	factory := reg.Factory().(*RootFactory)
	srv := newMiddlewareServer(reg)

	for i := 0; i < 3; i++ {
		for _, path := range []string{"/page", "/nested"} {
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			if rec.Code != http.StatusOK {
				t.Fatalf("GET %s status = %d", path, rec.Code)
			}
		}
	}

	reg.rootsMu.Lock()
	tracked := len(reg.roots)
	reg.rootsMu.Unlock()
	if tracked != 0 {
		t.Errorf("registry still tracks %d placeholders", tracked)
	}
	if factory.Len() != 0 {
		t.Errorf("factory still holds %d render roots", factory.Len())
	}
}

func TestMiddlewareLeavesPlainHTMLAlone(t *testing.T) {
	reg := newTestRegistry()
	const plain = "<p>no islands</p>"
	h := Middleware(reg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(plain))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Body.String() != plain {
		t.Errorf("body = %q, want it unchanged", rec.Body.String())
	}
}
