// Package hxmount mounts server-rendered components ("islands") into
// placeholder elements of parsed HTML documents, and restores the
// placeholders on unmount.
//
// A page marks where a component goes with a data-rr attribute naming a
// registered component. Everything else about the island travels in
// attributes on the same element:
//
//	<div data-rr="counter"
//	     data-prop-start="3"
//	     data-props='{"step": 2}'
//	     data-g-prop-user="session.user"
//	     data-rr-tag="section"
//	     data-rr-class="card">fallback markup</div>
//
// # Core Concepts
//
// Components implement Component and return templ output for a set of
// Props:
//
//	type Counter struct{}
//
//	func (Counter) Render(ctx context.Context, props hxmount.Props) templ.Component {
//	    return counterView(props["start"])
//	}
//
// A Registry maps unique names to Definitions. Components are registered
// either ready-made or through a Resolver that is invoked lazily on every
// lookup:
//
//	reg := hxmount.NewRegistry(hxmount.NewRootFactory())
//	reg.MustRegister("counter", Counter{})
//	reg.RegisterAsync("chart", func(ctx context.Context) (hxmount.Loaded, error) {
//	    m, err := loadChartModule(ctx)
//	    if err != nil {
//	        return hxmount.Loaded{}, err
//	    }
//	    return hxmount.DefaultExport(m), nil
//	})
//
// Each registry owns a group id. Root elements it creates carry the id in
// data-rr-cid, which is how unmount passes find exactly the elements one
// registry mounted.
//
// # Mounting
//
// A Renderer binds a registry to a parsed document:
//
//	doc, _ := html.Parse(page)
//	r, err := hxmount.NewRenderer(reg, doc)
//	if err != nil {
//	    return err
//	}
//	r.Mount(ctx, nil, nil)
//	defer r.Unmount(ctx, nil, nil)
//	html.Render(w, doc)
//
// Mount resolves every placeholder concurrently. For each one it creates a
// root element right after the placeholder, detaches the placeholder and
// renders the component into the root through the registry's Factory.
// Unmount disposes the roots and puts the original placeholders back, so a
// mount followed by an unmount leaves the document byte-identical.
//
// Failures are per placeholder: an unregistered name, a failing resolver
// or malformed data-props is reported through WithErrorHandler and the
// placeholder stays where it was. Siblings are unaffected.
//
// # Props
//
// Props are merged from lowest to highest precedence: the definition's
// default props, the data-props JSON object, then data-prop-<key> and
// data-g-prop-<key> attributes. Prefixed keys are camel-cased. Attribute
// values that are valid JSON are decoded; anything else stays a string.
// The placeholder's inner HTML is passed as "children".
//
// # Factories
//
// RootFactory keeps a render root per target and allows any number of
// top-level nodes. LegacyFactory renders straight into the target and, with
// RejectMultipleChildren, refuses output with more than one top-level
// element. Both accept an ElementFactory to wrap every island, for example
// in a shared layout or context provider.
//
// # HTTP
//
// Middleware mounts islands into text/html responses. HTMX requests are
// treated as fragments. With WithRefresh, each root element carries a
// data-rr-src URL holding signed props, served by Handler so a single
// island can be re-rendered without the surrounding page:
//
//	enc, _ := hxmount.NewEncoder(key)
//	r := chi.NewRouter()
//	r.Use(hxmount.Middleware(reg, hxmount.WithRefresh(enc, "/_rr/")))
//	r.Mount("/_rr", hxmount.NewHandler(reg, enc))
//
// Add WithHTMXRefresh to have HTMX fetch that URL on a trigger, for
// example "every 30s". RefreshAttrs builds the same attributes for
// controls inside a component.
package hxmount
