package hxmount

import (
	"bytes"
	"net/http"
	"strings"

	"golang.org/x/net/html"

	"github.com/pthm/hxmount/lib/dom"
)

// Middleware mounts islands into HTML responses before they are sent.
//
// Successful text/html responses are buffered, parsed, mounted with a
// renderer over reg (configured with opts) and re-serialized. HTMX
// requests are treated as fragments: no document shell is added. Other
// responses, and HTML without placeholders, pass through unchanged.
// Streaming is not supported; the wrapped handler's writes are buffered in
// full.
//
//	r := chi.NewRouter()
//	r.Use(hxmount.Middleware(reg))
func Middleware(reg *Registry, opts ...RendererOption) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			bw := &bufferedWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(bw, r)

			body := bw.buf.Bytes()
			if isMountable(w.Header(), bw.status) {
				if out, err := mountResponse(r, reg, body, opts); err == nil {
					body = out
				} else {
					reg.logger.Error("hxmount: middleware mount failed", "path", r.URL.Path, "error", err)
				}
			}

			w.Header().Del("Content-Length")
			w.WriteHeader(bw.status)
			_, _ = w.Write(body)
		})
	}
}

func isMountable(h http.Header, status int) bool {
	if status < 200 || status >= 300 || status == http.StatusNoContent {
		return false
	}
	ct := h.Get("Content-Type")
	return ct == "" || strings.HasPrefix(ct, "text/html")
}

func mountResponse(r *http.Request, reg *Registry, body []byte, opts []RendererOption) ([]byte, error) {
	fragment := IsHTMX(r)

	var doc *html.Node
	var err error
	if fragment {
		doc, err = dom.Parse("<html><body></body></html>")
		if err != nil {
			return nil, err
		}
		shell := dom.FindBody(doc)
		nodes, err := dom.ParseFragment(string(body), shell)
		if err != nil {
			return nil, err
		}
		for _, n := range nodes {
			shell.AppendChild(n)
		}
	} else {
		doc, err = html.Parse(bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
	}

	renderer, err := NewRenderer(reg, doc, opts...)
	if err != nil {
		return nil, err
	}
	// Pages without islands are sent as written, not re-serialized.
	if len(dom.QueryAttr(renderer.Body(), renderer.selector)) == 0 {
		return body, nil
	}
	// The document is discarded after serialization; unmounting frees the
	// registry and factory bookkeeping for its root elements.
	defer renderer.Unmount(r.Context(), nil, nil)

	if err := renderer.Mount(r.Context(), nil, nil); err != nil {
		return nil, err
	}

	var out string
	if fragment {
		out, err = dom.InnerHTML(renderer.Body())
	} else {
		out, err = dom.Render(doc)
	}
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

// bufferedWriter holds the status and body until the middleware decides
// whether to rewrite them. Headers go straight to the wrapped writer.
type bufferedWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	buf         bytes.Buffer
}

func (w *bufferedWriter) WriteHeader(status int) {
	if w.wroteHeader {
		return
	}
	w.status = status
	w.wroteHeader = true
}

func (w *bufferedWriter) Write(p []byte) (int, error) {
	w.wroteHeader = true
	return w.buf.Write(p)
}
