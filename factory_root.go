package hxmount

import (
	"context"
	"sync"

	"golang.org/x/net/html"
)

// RootFactory keeps an explicit render root for every target it injects
// into. Re-injecting into a target replaces the previous output; output may
// contain any number of top-level nodes.
type RootFactory struct {
	config factoryConfig

	mu             sync.Mutex
	elementFactory ElementFactory
	roots          map[*html.Node]*renderRoot
}

type renderRoot struct {
	target *html.Node
	nodes  []*html.Node
}

func (r *renderRoot) render(nodes []*html.Node) {
	r.clear()
	for _, n := range nodes {
		r.target.AppendChild(n)
	}
	r.nodes = nodes
}

func (r *renderRoot) clear() {
	for _, n := range r.nodes {
		if n.Parent == r.target {
			r.target.RemoveChild(n)
		}
	}
	r.nodes = nil
}

// NewRootFactory creates a root-based factory.
func NewRootFactory(opts ...FactoryOption) *RootFactory {
	return &RootFactory{
		config:         newFactoryConfig(opts),
		elementFactory: DefaultElementFactory,
		roots:          make(map[*html.Node]*renderRoot),
	}
}

// UseElementFactory implements Factory.
func (f *RootFactory) UseElementFactory(fn ElementFactory) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if fn == nil {
		fn = DefaultElementFactory
	}
	f.elementFactory = fn
}

// Inject implements Factory.
func (f *RootFactory) Inject(ctx context.Context, component Component, props Props, target *html.Node) error {
	f.mu.Lock()
	elementFactory := f.elementFactory
	f.mu.Unlock()

	nodes, err := renderNodes(ctx, elementFactory(ctx, component, props), target)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	root, ok := f.roots[target]
	if !ok {
		root = &renderRoot{target: target}
		f.roots[target] = root
	}
	root.render(nodes)
	return nil
}

// Dispose implements Factory.
func (f *RootFactory) Dispose(target *html.Node) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	root, ok := f.roots[target]
	if !ok {
		return nil
	}
	root.clear()
	delete(f.roots, target)
	return nil
}

// Len returns the number of live render roots.
func (f *RootFactory) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.roots)
}
