package hxmount

import (
	"net/http"

	"github.com/a-h/templ"
	"golang.org/x/net/html"
)

// Render writes a templ component to the HTTP response.
//
// Sets Content-Type to text/html and renders the component using the
// request's context.
func Render(w http.ResponseWriter, r *http.Request, component templ.Component) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return component.Render(r.Context(), w)
}

// RenderDocument writes a parsed (and usually mounted) document.
func RenderDocument(w http.ResponseWriter, doc *html.Node) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return html.Render(w, doc)
}

// IsHTMX returns true if the request originated from HTMX.
//
// HTMX requests receive fragments rather than full documents; Middleware
// uses this to mount fragment responses without adding a document shell.
func IsHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
