package hxmount

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/net/html"

	"github.com/pthm/hxmount/lib/dom"
)

// LegacyFactory renders straight into the target's children without a
// render root. The target's previous children are replaced on every Inject.
//
// With RejectMultipleChildren, output holding more than one top-level
// element is logged, the target is disposed and ErrMultipleChildren is
// returned.
type LegacyFactory struct {
	config factoryConfig

	mu             sync.Mutex
	elementFactory ElementFactory
	injected       map[*html.Node]struct{}
}

// NewLegacyFactory creates a factory without explicit render roots.
func NewLegacyFactory(opts ...FactoryOption) *LegacyFactory {
	return &LegacyFactory{
		config:         newFactoryConfig(opts),
		elementFactory: DefaultElementFactory,
		injected:       make(map[*html.Node]struct{}),
	}
}

// UseElementFactory implements Factory.
func (f *LegacyFactory) UseElementFactory(fn ElementFactory) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if fn == nil {
		fn = DefaultElementFactory
	}
	f.elementFactory = fn
}

// Inject implements Factory.
func (f *LegacyFactory) Inject(ctx context.Context, component Component, props Props, target *html.Node) error {
	f.mu.Lock()
	elementFactory := f.elementFactory
	f.mu.Unlock()

	nodes, err := renderNodes(ctx, elementFactory(ctx, component, props), target)
	if err != nil {
		return err
	}

	if n := dom.CountElements(nodes); f.config.rejectMultiple && n > 1 {
		f.config.logger.Warn("hxmount: component must render a single root element",
			"elements", n, "target", target.Data)
		if err := f.Dispose(target); err != nil {
			return err
		}
		return fmt.Errorf("%w: got %d elements", ErrMultipleChildren, n)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	dom.RemoveChildren(target)
	for _, n := range nodes {
		target.AppendChild(n)
	}
	f.injected[target] = struct{}{}
	return nil
}

// Dispose implements Factory.
func (f *LegacyFactory) Dispose(target *html.Node) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.injected[target]; !ok {
		return nil
	}
	dom.RemoveChildren(target)
	delete(f.injected, target)
	return nil
}
