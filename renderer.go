package hxmount

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/html"

	"github.com/pthm/hxmount/lib/ctxlog"
	"github.com/pthm/hxmount/lib/dom"
)

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithSelector changes the placeholder attribute (default: data-rr).
func WithSelector(attr string) RendererOption {
	return func(r *Renderer) {
		r.selector = attr
	}
}

// WithGlobals sets the namespace data-g-prop-* attributes are resolved against.
func WithGlobals(globals map[string]any) RendererOption {
	return func(r *Renderer) {
		r.globals = globals
	}
}

// WithLogger sets the renderer logger. It is also placed on the context
// handed to resolvers (see ctxlog.FromContext).
func WithLogger(logger *slog.Logger) RendererOption {
	return func(r *Renderer) {
		r.logger = logger
	}
}

// WithErrorHandler sets the out-of-band channel for per-placeholder mount
// failures, unmount failures and panics raised by lifecycle callbacks.
// It may be called from several goroutines at once.
func WithErrorHandler(fn func(error)) RendererOption {
	return func(r *Renderer) {
		r.onError = fn
	}
}

// WithRefresh stamps every root element with a data-rr-src URL under
// prefix carrying its encoded props, served by NewHandler.
func WithRefresh(enc *Encoder, prefix string) RendererOption {
	return func(r *Renderer) {
		r.refresh = &refreshConfig{encoder: enc, prefix: prefix}
	}
}

// WithMetrics records mounts and unmounts on m. Defaults to the registry's metrics.
func WithMetrics(m *Metrics) RendererOption {
	return func(r *Renderer) {
		r.metrics = m
	}
}

// WithSensitiveProps encrypts the props in refresh URLs instead of only
// signing them. The Handler serving them needs WithHandlerSensitiveProps.
func WithSensitiveProps() RendererOption {
	return func(r *Renderer) {
		r.sensitive = true
	}
}

type refreshConfig struct {
	encoder *Encoder
	prefix  string
}

// Renderer mounts registered components into placeholder elements of a
// parsed HTML document and restores the placeholders on unmount.
//
//	doc, _ := html.Parse(page)
//	r, err := hxmount.NewRenderer(reg, doc)
//	if err != nil {
//	    return err
//	}
//	r.Mount(ctx, nil, func() { html.Render(w, doc) })
//
// Mount and Unmount must not overlap on the same subtree; a pending mount
// is not cancelled by Unmount or Destroy.
type Renderer struct {
	selector  string
	globals   map[string]any
	logger    *slog.Logger
	onError   func(error)
	refresh   *refreshConfig
	htmx      *htmxConfig
	sensitive bool
	metrics   *Metrics
	body      *html.Node

	mu       sync.RWMutex
	registry *Registry

	// domMu serializes every mutation of the document.
	domMu sync.Mutex
}

// NewRenderer creates a renderer over doc. It fails with
// ErrRenderTargetMissing when doc has no <body>.
func NewRenderer(reg *Registry, doc *html.Node, opts ...RendererOption) (*Renderer, error) {
	if reg == nil {
		return nil, errors.New("hxmount: nil registry")
	}
	body := dom.FindBody(doc)
	if body == nil {
		return nil, fmt.Errorf("%w: document body not found", ErrRenderTargetMissing)
	}

	r := &Renderer{
		selector: AttrComponent,
		body:     body,
		registry: reg,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.metrics == nil {
		r.metrics = reg.metrics
	}
	if r.onError == nil {
		logger := r.logger
		r.onError = func(err error) {
			logger.Error("hxmount: render error", "error", err)
		}
	}
	return r, nil
}

// Registry returns the registry the renderer resolves through
// (ErrInstanceDestroyed after Destroy).
func (r *Renderer) Registry() (*Registry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.registry == nil {
		return nil, ErrInstanceDestroyed
	}
	return r.registry, nil
}

// Body returns the default mount target.
func (r *Renderer) Body() *html.Node {
	return r.body
}

// Mount mounts every placeholder below target (nil means the document
// body). Placeholders are resolved concurrently; a failing placeholder is
// reported to the error handler and never affects its siblings. onMount,
// if set, runs exactly once after every placeholder has settled, before
// Mount returns.
//
// A placeholder inside another placeholder is left alone; the outer
// component receives it as part of its children prop.
//
// Mount only fails when the renderer has been destroyed.
func (r *Renderer) Mount(ctx context.Context, target *html.Node, onMount func()) error {
	reg, err := r.Registry()
	if err != nil {
		return err
	}
	if target == nil {
		target = r.body
	}

	ctx = ctxlog.WithLogger(ctx, r.logger)
	ctx, span := tracer().Start(ctx, "hxmount.mount",
		trace.WithAttributes(attribute.String("hxmount.registry", reg.ID())),
	)
	defer span.End()

	r.domMu.Lock()
	placeholders := outermost(dom.QueryAttr(target, r.selector))
	r.domMu.Unlock()
	span.SetAttributes(attribute.Int("hxmount.placeholders", len(placeholders)))

	var wg sync.WaitGroup
	for _, ph := range placeholders {
		name, _ := dom.Attr(ph, r.selector)
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := r.mountOne(ctx, reg, ph, name)
			r.metrics.observeMount(err)
			if err != nil {
				r.report(fmt.Errorf("hxmount: mount %q: %w", name, err))
			}
		}()
	}
	wg.Wait()

	r.logger.Debug("hxmount: mount pass complete", "registry", reg.ID(), "placeholders", len(placeholders))
	r.callback(onMount)
	return nil
}

func (r *Renderer) mountOne(ctx context.Context, reg *Registry, ph *html.Node, name string) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()

	res, err := reg.Get(ctx, name)
	if err != nil {
		return err
	}

	r.domMu.Lock()
	defer r.domMu.Unlock()

	props, err := ExtractProps(ph, res.Definition, r.globals)
	if err != nil {
		return err
	}
	props = NormalizeProps(props)

	root, err := r.createRootElement(reg, ph, res.Definition)
	if err != nil {
		return err
	}
	r.stampRefresh(root, name, props)

	if err := r.inject(ctx, reg, res.Component, props, root); err != nil {
		r.rollback(reg, root)
		return err
	}

	r.logger.Debug("hxmount: component mounted", "registry", reg.ID(), "component", res.DisplayName, "tag", root.Data)
	return nil
}

// outermost drops placeholders nested inside another placeholder. The host
// receives their markup through the children prop; mounting them as well
// would put roots inside the detached host placeholder.
func outermost(placeholders []*html.Node) []*html.Node {
	kept := make([]*html.Node, 0, len(placeholders))
	for _, ph := range placeholders {
		nested := false
		for _, host := range kept {
			if dom.Contains(host, ph) {
				nested = true
				break
			}
		}
		if !nested {
			kept = append(kept, ph)
		}
	}
	return kept
}

// createRootElement inserts the root element right after the placeholder,
// then detaches the placeholder and records it for restoration.
func (r *Renderer) createRootElement(reg *Registry, ph *html.Node, def *Definition) (*html.Node, error) {
	if ph.Parent == nil {
		return nil, fmt.Errorf("%w: placeholder is not attached", ErrRenderTargetMissing)
	}
	opts := def.Options()

	tag := firstNonEmpty(attr(ph, AttrTag), opts.Tag, defaultTag)
	className := firstNonEmpty(attr(ph, AttrClass), opts.ClassName)

	el := dom.NewElement(tag)
	if className != "" {
		dom.SetAttr(el, "class", className)
	}
	dom.SetAttr(el, AttrGroup, reg.ID())

	dom.InsertAfter(ph, el)
	reg.trackRoot(el, dom.Detach(ph))
	return el, nil
}

// inject runs the factory, turning a panicking component into an error.
func (r *Renderer) inject(ctx context.Context, reg *Registry, c Component, props Props, root *html.Node) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("component panic: %v", p)
		}
	}()
	return reg.Factory().Inject(ctx, c, props, root)
}

// rollback puts the placeholder back after a failed inject.
func (r *Renderer) rollback(reg *Registry, root *html.Node) {
	if err := reg.Factory().Dispose(root); err != nil {
		r.report(fmt.Errorf("hxmount: dispose after failed mount: %w", err))
	}
	if ph, ok := reg.takePlaceholder(root); ok && root.Parent != nil {
		root.Parent.InsertBefore(ph, root)
	}
	dom.Detach(root)
}

func (r *Renderer) stampRefresh(root *html.Node, name string, props Props) {
	if r.refresh == nil || r.refresh.encoder == nil {
		return
	}
	encoded, err := r.refresh.encoder.Encode(props, r.sensitive)
	if err != nil {
		r.logger.Warn("hxmount: props not encodable, skipping refresh URL", "component", name, "error", err)
		return
	}
	src := r.refresh.prefix + url.PathEscape(name) + "?p=" + url.QueryEscape(encoded)
	dom.SetAttr(root, AttrSource, src)
	if r.htmx != nil {
		setAttrs(root, RefreshAttrs(src, r.htmx.trigger, r.htmx.swap))
	}
}

// Unmount disposes every root element below target (nil means the body)
// created through this renderer's registry and puts the original
// placeholders back. A failure on one element is reported and the pass
// continues. onUnmount, if set, runs once after all elements.
func (r *Renderer) Unmount(ctx context.Context, target *html.Node, onUnmount func()) error {
	reg, err := r.Registry()
	if err != nil {
		return err
	}
	if target == nil {
		target = r.body
	}

	_, span := tracer().Start(ctx, "hxmount.unmount",
		trace.WithAttributes(attribute.String("hxmount.registry", reg.ID())),
	)
	defer span.End()

	r.domMu.Lock()
	mounted := dom.QueryAttrValue(target, AttrGroup, reg.ID())
	// Reverse document order: roots mounted inside another root's output are
	// released before their host.
	for i := len(mounted) - 1; i >= 0; i-- {
		r.unmountOne(reg, mounted[i])
	}
	r.domMu.Unlock()

	span.SetAttributes(attribute.Int("hxmount.roots", len(mounted)))
	r.callback(onUnmount)
	return nil
}

func (r *Renderer) unmountOne(reg *Registry, root *html.Node) {
	defer func() {
		if p := recover(); p != nil {
			r.report(fmt.Errorf("hxmount: unmount panic: %v", p))
		}
	}()
	defer r.metrics.observeUnmount()

	if err := reg.Factory().Dispose(root); err != nil {
		r.report(fmt.Errorf("hxmount: dispose: %w", err))
	}

	parent := root.Parent
	defer func() {
		if parent != nil && root.Parent == parent {
			parent.RemoveChild(root)
		}
	}()

	ph, ok := reg.takePlaceholder(root)
	switch {
	case !ok:
		return
	case parent == nil:
		r.report(fmt.Errorf("%w: root element detached, placeholder not restored", ErrRenderTargetMissing))
	case ph.Parent != nil:
		r.report(fmt.Errorf("%w: placeholder already attached elsewhere", ErrRenderTargetMissing))
	default:
		parent.InsertBefore(ph, root)
	}
}

// Destroy unmounts the whole document and releases the registry. Every
// later call fails with ErrInstanceDestroyed.
func (r *Renderer) Destroy(ctx context.Context) error {
	if err := r.Unmount(ctx, nil, nil); err != nil {
		return err
	}
	r.mu.Lock()
	r.registry = nil
	r.mu.Unlock()
	return nil
}

func (r *Renderer) report(err error) {
	r.onError(err)
}

func (r *Renderer) callback(fn func()) {
	if fn == nil {
		return
	}
	defer func() {
		if p := recover(); p != nil {
			r.report(fmt.Errorf("hxmount: lifecycle callback panic: %v", p))
		}
	}()
	fn()
}

func attr(n *html.Node, key string) string {
	v, _ := dom.Attr(n, key)
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
