package hxmount

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"github.com/pthm/hxmount/lib/dom"
)

func newTestHandler(t *testing.T, opts ...HandlerOption) (*Handler, *Encoder, *Registry) {
	t.Helper()
	enc, err := NewEncoder([]byte("handler-test-key"))
	if err != nil {
		t.Fatalf("NewEncoder() error = %v", err)
	}
	reg := newTestRegistry()
	reg.MustRegister("greeting", greeting()).WithDefaultProps(Props{"name": "default"})
	return NewHandler(reg, enc, opts...), enc, reg
}

func TestHandlerServe(t *testing.T) {
	h, enc, _ := newTestHandler(t)

	p, err := enc.Encode(map[string]any{"name": "Ada"}, false)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
	}{
		{"encoded props", "/greeting?p=" + url.QueryEscape(p), http.StatusOK, "<p>Hello Ada</p>"},
		{"defaults without props", "/greeting", http.StatusOK, "<p>Hello default</p>"},
		{"unknown component", "/missing", http.StatusNotFound, ""},
		{"tampered props", "/greeting?p=" + url.QueryEscape(p[:len(p)-2]+"xx"), http.StatusBadRequest, ""},
		{"garbage props", "/greeting?p=not-valid", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %q)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantBody != "" && rec.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestHandlerCustomOnError(t *testing.T) {
	h, _, _ := newTestHandler(t)
	var got error
	h.OnError = func(w http.ResponseWriter, r *http.Request, err error) {
		got = err
		w.WriteHeader(http.StatusTeapot)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	if rec.Code != http.StatusTeapot || !IsNotFound(got) {
		t.Errorf("status = %d, err = %v", rec.Code, got)
	}
}

func TestHandlerElementFactory(t *testing.T) {
	h, _, _ := newTestHandler(t, WithHandlerElementFactory(func(ctx context.Context, c Component, props Props) templ.Component {
		return c.Render(ctx, props.Merge(Props{"name": "wrapped"}))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/greeting", nil))
	if rec.Body.String() != "<p>Hello wrapped</p>" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestRefreshRoundTrip(t *testing.T) {
	h, enc, reg := newTestHandler(t)

	result, err := TestMount(reg, `<div data-rr="greeting" data-prop-name="Grace"></div>`, WithRefresh(enc, "/"))
	if err != nil {
		t.Fatalf("TestMount() error = %v", err)
	}
	roots := dom.QueryAttrValue(result.Renderer.Body(), AttrGroup, reg.ID())
	if len(roots) != 1 {
		t.Fatalf("roots = %d, want 1", len(roots))
	}
	src := attr(roots[0], AttrSource)
	if src == "" {
		t.Fatal("root element has no data-rr-src")
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, src, nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "<p>Hello Grace</p>" {
		t.Errorf("refresh: status = %d, body = %q", rec.Code, rec.Body.String())
	}
}

func TestRefreshKeepsPropTypes(t *testing.T) {
	h, enc, reg := newTestHandler(t)
	c := &capture{}
	reg.MustRegister("counter", c).WithDefaultProps(Props{"start": 0, "step": 250})

	result, err := TestMount(reg, `<div data-rr="counter" data-prop-count="3"></div>`, WithRefresh(enc, "/"))
	if err != nil {
		t.Fatalf("TestMount() error = %v", err)
	}
	mounted := c.props

	roots := dom.QueryAttrValue(result.Renderer.Body(), AttrGroup, reg.ID())
	if len(roots) != 1 {
		t.Fatalf("roots = %d, want 1", len(roots))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, attr(roots[0], AttrSource), nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh status = %d, body = %q", rec.Code, rec.Body.String())
	}
	refreshed := c.props

	for _, key := range []string{"start", "step", "count"} {
		if fmt.Sprintf("%T", mounted[key]) != fmt.Sprintf("%T", refreshed[key]) {
			t.Errorf("%s: mounted %T, refreshed %T", key, mounted[key], refreshed[key])
		}
	}
	if start, ok := refreshed["start"].(int); !ok || start != 0 {
		t.Errorf("refreshed start = %#v, want int 0", refreshed["start"])
	}
	if !reflect.DeepEqual(mounted, refreshed) {
		t.Errorf("props differ:\nmounted   %#v\nrefreshed %#v", mounted, refreshed)
	}
}

func TestRefreshSensitiveProps(t *testing.T) {
	h, enc, reg := newTestHandler(t, WithHandlerSensitiveProps())

	result, err := TestMount(reg, `<div data-rr="greeting" data-prop-name="Secret"></div>`,
		WithRefresh(enc, "/"), WithSensitiveProps())
	if err != nil {
		t.Fatalf("TestMount() error = %v", err)
	}
	roots := dom.QueryAttrValue(result.Renderer.Body(), AttrGroup, reg.ID())
	if len(roots) != 1 {
		t.Fatalf("roots = %d, want 1", len(roots))
	}
	src := attr(roots[0], AttrSource)
	if strings.Contains(src, "Secret") {
		t.Errorf("src %q leaks props", src)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, src, nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "<p>Hello Secret</p>" {
		t.Errorf("refresh: status = %d, body = %q", rec.Code, rec.Body.String())
	}

	// A handler expecting signed props rejects encrypted ones.
	signed := NewHandler(reg, enc)
	rec = httptest.NewRecorder()
	signed.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, src, nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("signed handler status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
