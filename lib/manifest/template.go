package manifest

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"

	"github.com/a-h/templ"

	"github.com/pthm/hxmount"
)

// Template is a component rendering an html/template with the props as
// its data.
//
// Besides the html/template builtins, templates can call:
//   - safe: emit a string as trusted HTML (for the children prop)
//   - json: encode a value as JSON
type Template struct {
	name string
	tmpl *template.Template
}

// NewTemplate parses text as the template for the component name.
func NewTemplate(name, text string) (*Template, error) {
	tmpl, err := template.New(name).Funcs(funcs).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %q: %w", name, err)
	}
	return &Template{name: name, tmpl: tmpl}, nil
}

// Render implements hxmount.Component.
func (t *Template) Render(ctx context.Context, props hxmount.Props) templ.Component {
	data := map[string]any(props)
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return t.tmpl.Execute(w, data)
	})
}

var funcs = template.FuncMap{
	"safe": func(v any) template.HTML {
		if v == nil {
			return ""
		}
		return template.HTML(fmt.Sprint(v))
	},
	"json": func(v any) (string, error) {
		b, err := json.Marshal(v)
		return string(b), err
	},
}
