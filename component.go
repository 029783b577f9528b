package hxmount

import (
	"context"
	"maps"

	"github.com/a-h/templ"
)

// Props is the attribute-derived input passed to a component.
type Props map[string]any

// Clone returns a shallow copy of p. The copy is never nil.
func (p Props) Clone() Props {
	out := make(Props, len(p))
	maps.Copy(out, p)
	return out
}

// Merge returns a copy of p overlaid with other; other wins on collisions.
func (p Props) Merge(other Props) Props {
	out := p.Clone()
	maps.Copy(out, other)
	return out
}

// Component is implemented by anything that can be mounted into a
// placeholder. Render receives the fully merged props and should be pure.
//
//	func (c *Counter) Render(ctx context.Context, props hxmount.Props) templ.Component {
//	    return counterTemplate(props["start"])
//	}
type Component interface {
	Render(ctx context.Context, props Props) templ.Component
}

// ComponentFunc adapts a function to Component.
type ComponentFunc func(ctx context.Context, props Props) templ.Component

// Render calls f(ctx, props).
func (f ComponentFunc) Render(ctx context.Context, props Props) templ.Component {
	return f(ctx, props)
}
