package hxmount

import "context"

// LoadKind tags how a resolver delivered its component.
type LoadKind int

const (
	// KindDirect means the resolver returned the component itself.
	KindDirect LoadKind = iota
	// KindDefaultExport means the resolver returned a module whose default
	// export is the component.
	KindDefaultExport
)

// Module is a lazily loaded unit exposing a default component.
type Module interface {
	Default() Component
}

// Loaded is the tagged result a Resolver produces. Build it with Direct or
// DefaultExport rather than by hand.
type Loaded struct {
	Kind      LoadKind
	Component Component
	Module    Module
}

// Direct wraps a ready component.
func Direct(c Component) Loaded {
	return Loaded{Kind: KindDirect, Component: c}
}

// DefaultExport wraps a module whose Default() is the component.
func DefaultExport(m Module) Loaded {
	return Loaded{Kind: KindDefaultExport, Module: m}
}

// unwrap returns the component a Loaded refers to, or nil.
func (l Loaded) unwrap() Component {
	switch l.Kind {
	case KindDefaultExport:
		if l.Module == nil {
			return nil
		}
		return l.Module.Default()
	default:
		return l.Component
	}
}

// Resolver loads a component on demand. It is invoked on every Get and is
// never called at registration time.
type Resolver func(ctx context.Context) (Loaded, error)

// Ready returns a Resolver that immediately yields c.
func Ready(c Component) Resolver {
	return func(context.Context) (Loaded, error) {
		return Direct(c), nil
	}
}
