package hxmount

import (
	"bytes"
	"context"
	"errors"
	"log/slog"

	"github.com/a-h/templ"
	"golang.org/x/net/html"

	"github.com/pthm/hxmount/lib/dom"
)

// Factory creates and tears down rendered component instances at a target
// element. Renderers reach it through their Registry.
type Factory interface {
	// Inject renders component with props into target, creating or reusing
	// the render state associated with target. Only target's subtree changes.
	Inject(ctx context.Context, component Component, props Props, target *html.Node) error

	// Dispose tears down whatever Inject created at target. Calling it on a
	// target that was never injected is a no-op.
	Dispose(target *html.Node) error

	// UseElementFactory overrides how a component and its props become
	// renderable output, for example to wrap every island in a provider.
	UseElementFactory(fn ElementFactory)
}

// ElementFactory turns a component and props into templ output.
type ElementFactory func(ctx context.Context, component Component, props Props) templ.Component

// DefaultElementFactory renders the component with its props as-is.
func DefaultElementFactory(ctx context.Context, component Component, props Props) templ.Component {
	return component.Render(ctx, props)
}

// FactoryOption configures RootFactory and LegacyFactory.
type FactoryOption func(*factoryConfig)

type factoryConfig struct {
	logger         *slog.Logger
	rejectMultiple bool
}

// WithFactoryLogger sets the logger used for factory diagnostics.
func WithFactoryLogger(logger *slog.Logger) FactoryOption {
	return func(c *factoryConfig) {
		c.logger = logger
	}
}

// RejectMultipleChildren makes LegacyFactory refuse output with more than
// one top-level element. RootFactory ignores it.
func RejectMultipleChildren() FactoryOption {
	return func(c *factoryConfig) {
		c.rejectMultiple = true
	}
}

func newFactoryConfig(opts []FactoryOption) factoryConfig {
	c := factoryConfig{}
	for _, opt := range opts {
		opt(&c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// renderNodes renders el and parses the output in the context of target.
func renderNodes(ctx context.Context, el templ.Component, target *html.Node) ([]*html.Node, error) {
	if el == nil {
		return nil, errors.New("hxmount: component rendered nil output")
	}
	var buf bytes.Buffer
	if err := el.Render(ctx, &buf); err != nil {
		return nil, err
	}
	return dom.ParseFragment(buf.String(), target)
}
