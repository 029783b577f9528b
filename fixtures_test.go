package hxmount

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/a-h/templ"
	"golang.org/x/net/html"

	"github.com/pthm/hxmount/lib/dom"
)

// greeting renders <p>Hello {name}</p>.
func greeting() Component {
	return ComponentFunc(func(ctx context.Context, props Props) templ.Component {
		return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			_, err := fmt.Fprintf(w, "<p>Hello %v</p>", props["name"])
			return err
		})
	})
}

// raw renders markup verbatim.
func raw(markup string) Component {
	return ComponentFunc(func(ctx context.Context, props Props) templ.Component {
		return templ.Raw(markup)
	})
}

// capture records the props it was rendered with.
type capture struct {
	props Props
}

func (c *capture) Render(ctx context.Context, props Props) templ.Component {
	c.props = props
	return templ.Raw("<span>captured</span>")
}

// testModule is a Module whose default export is a fixed component.
type testModule struct {
	component Component
}

func (m testModule) Default() Component {
	return m.component
}

func newTestRegistry(opts ...RegistryOption) *Registry {
	opts = append([]RegistryOption{WithIDGenerator(&Sequence{})}, opts...)
	return NewRegistry(NewRootFactory(), opts...)
}

func mustParse(t *testing.T, src string) *html.Node {
	t.Helper()
	doc, err := dom.Parse(src)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return doc
}

func mustRender(t *testing.T, n *html.Node) string {
	t.Helper()
	out, err := dom.Render(n)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return out
}

// firstPlaceholder returns the first element carrying data-rr.
func firstPlaceholder(t *testing.T, doc *html.Node) *html.Node {
	t.Helper()
	found := dom.QueryAttr(doc, AttrComponent)
	if len(found) == 0 {
		t.Fatal("no placeholder in document")
	}
	return found[0]
}
