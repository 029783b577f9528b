package manifest

import (
	"context"
	"sync"

	"github.com/pthm/hxmount"
	"github.com/pthm/hxmount/lib/ctxlog"
)

// Apply registers every component of m with reg. Templates are resolved
// lazily through l. Default props and root element options are applied to
// the new definitions.
//
// Registration follows Registry.RegisterBulkAsync: it stops at the first
// failure (typically a name already registered) and keeps the entries
// registered before it.
func Apply(reg *hxmount.Registry, m *Manifest, l *Loader) error {
	existing := make(map[string]bool)
	for _, name := range reg.Names() {
		existing[name] = true
	}

	resolvers := make(map[string]hxmount.Resolver, len(m.Components))
	for _, c := range m.Components {
		resolvers[c.Name] = l.Resolver(c)
	}
	err := reg.RegisterBulkAsync(resolvers)

	for _, c := range m.Components {
		if existing[c.Name] {
			continue
		}
		def, ok := reg.Definition(c.Name)
		if !ok {
			continue
		}
		def.WithDefaultProps(c.Props).
			WithOptions(hxmount.Options{Tag: c.Tag, ClassName: c.Class})
	}
	return err
}

// Resolver returns a resolver that fetches and parses c's template.
// The parsed template is kept after the first success unless the loader
// was created WithReload.
func (l *Loader) Resolver(c Component) hxmount.Resolver {
	var (
		mu     sync.Mutex
		cached *Template
	)
	return func(ctx context.Context) (hxmount.Loaded, error) {
		mu.Lock()
		defer mu.Unlock()
		if cached != nil {
			return hxmount.Direct(cached), nil
		}

		text, err := l.Fetch(ctx, c.Template)
		if err != nil {
			return hxmount.Loaded{}, err
		}
		tmpl, err := NewTemplate(c.Name, text)
		if err != nil {
			return hxmount.Loaded{}, err
		}
		ctxlog.FromContext(ctx).Debug("manifest: component resolved", "component", c.Name)

		if !l.reload {
			cached = tmpl
		}
		return hxmount.Direct(tmpl), nil
	}
}
