package hxmount

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/html"
)

const tracerName = "github.com/pthm/hxmount"

func tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// IDGenerator produces registry group ids. Ids must be unique for the
// lifetime of the process.
type IDGenerator interface {
	NextID() string
}

// Sequence is an IDGenerator yielding "1", "2", ... starting from zero.
type Sequence struct {
	n atomic.Uint64
}

// NextID returns the next id in the sequence.
func (s *Sequence) NextID() string {
	return strconv.FormatUint(s.n.Add(1), 10)
}

// processIDs backs every registry created without WithIDGenerator.
var processIDs = &Sequence{}

// Result is a resolved component together with its definition.
// DisplayName carries the registration name for diagnostics; the component
// value itself is never modified.
type Result struct {
	Component   Component
	Definition  *Definition
	DisplayName string
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithIDGenerator overrides the process-wide id sequence.
func WithIDGenerator(gen IDGenerator) RegistryOption {
	return func(reg *Registry) {
		reg.ids = gen
	}
}

// WithRegistryMetrics records resolutions on m.
func WithRegistryMetrics(m *Metrics) RegistryOption {
	return func(reg *Registry) {
		reg.metrics = m
	}
}

// WithRegistryLogger sets the logger used for registration and resolution.
func WithRegistryLogger(logger *slog.Logger) RegistryOption {
	return func(reg *Registry) {
		reg.logger = logger
	}
}

// Registry maps unique component names to definitions and resolves them.
//
// Every registry owns a group id. Root elements created by renderers bound
// to this registry carry the id in data-rr-cid, which scopes unmount passes
// to exactly the elements this registry mounted.
type Registry struct {
	id      string
	ids     IDGenerator
	factory Factory
	metrics *Metrics
	logger  *slog.Logger

	mu          sync.RWMutex
	definitions map[string]*Definition

	rootsMu sync.Mutex
	roots   map[*html.Node]*html.Node // root element -> detached placeholder
}

// NewRegistry creates a registry that renders through factory.
func NewRegistry(factory Factory, opts ...RegistryOption) *Registry {
	reg := &Registry{
		ids:         processIDs,
		factory:     factory,
		definitions: make(map[string]*Definition),
		roots:       make(map[*html.Node]*html.Node),
	}
	for _, opt := range opts {
		opt(reg)
	}
	if reg.logger == nil {
		reg.logger = slog.Default()
	}
	reg.id = reg.ids.NextID()
	return reg
}

// ID returns the registry group id.
func (reg *Registry) ID() string {
	return reg.id
}

// Factory returns the factory components are rendered through.
func (reg *Registry) Factory() Factory {
	return reg.factory
}

// Register adds a ready-made component under name.
func (reg *Registry) Register(name string, component Component) (*Definition, error) {
	return reg.RegisterAsync(name, Ready(component))
}

// RegisterAsync adds a lazily resolved component under name. The resolver
// is not invoked until the component is first requested.
// Registering a name twice fails with ErrDuplicateRegistration and leaves
// the first registration intact.
func (reg *Registry) RegisterAsync(name string, resolver Resolver) (*Definition, error) {
	if resolver == nil {
		return nil, fmt.Errorf("hxmount: nil resolver for %q", name)
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, exists := reg.definitions[name]; exists {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateRegistration, name)
	}

	def := newDefinition(resolver).As(name)
	reg.definitions[name] = def
	reg.logger.Debug("hxmount: component registered", "registry", reg.id, "component", name)
	return def, nil
}

// RegisterBulk registers every entry of components, in name order.
// It stops at the first failure; entries registered before it remain.
func (reg *Registry) RegisterBulk(components map[string]Component) error {
	for _, name := range slices.Sorted(maps.Keys(components)) {
		if _, err := reg.Register(name, components[name]); err != nil {
			return err
		}
	}
	return nil
}

// RegisterBulkAsync is RegisterBulk for resolvers.
func (reg *Registry) RegisterBulkAsync(resolvers map[string]Resolver) error {
	for _, name := range slices.Sorted(maps.Keys(resolvers)) {
		if _, err := reg.RegisterAsync(name, resolvers[name]); err != nil {
			return err
		}
	}
	return nil
}

// MustRegister is like Register but panics on error.
func (reg *Registry) MustRegister(name string, component Component) *Definition {
	def, err := reg.Register(name, component)
	if err != nil {
		panic(err)
	}
	return def
}

// Definition returns the definition registered under name.
func (reg *Registry) Definition(name string) (*Definition, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	def, ok := reg.definitions[name]
	return def, ok
}

// Get resolves the component registered under name.
//
// Unknown names fail with ErrComponentNotFound. Resolver failures are
// wrapped with ErrResolverFailed and keep the original error in the chain.
// A DefaultExport result is unwrapped to the module's default component.
func (reg *Registry) Get(ctx context.Context, name string) (*Result, error) {
	ctx, span := tracer().Start(ctx, "hxmount.resolve",
		trace.WithAttributes(
			attribute.String("hxmount.registry", reg.id),
			attribute.String("hxmount.component", name),
		),
	)
	defer span.End()

	def, ok := reg.Definition(name)
	if !ok {
		err := fmt.Errorf("%w: %q", ErrComponentNotFound, name)
		reg.metrics.observeResolution(name, statusNotFound, 0)
		span.RecordError(err)
		span.SetStatus(codes.Error, "not found")
		return nil, err
	}

	start := time.Now()
	loaded, err := def.resolver(ctx)
	var component Component
	if err == nil {
		component = loaded.unwrap()
		if component == nil {
			err = errors.New("resolver returned no component")
		}
	}
	if err != nil {
		err = fmt.Errorf("%w: %q: %w", ErrResolverFailed, name, err)
		reg.metrics.observeResolution(name, statusError, time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, "resolver failed")
		return nil, err
	}

	reg.metrics.observeResolution(name, statusOK, time.Since(start))
	return &Result{
		Component:   component,
		Definition:  def,
		DisplayName: name,
	}, nil
}

// Count returns the number of registered names.
func (reg *Registry) Count() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.definitions)
}

// Names returns the registered names in sorted order.
func (reg *Registry) Names() []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return slices.Sorted(maps.Keys(reg.definitions))
}

// trackRoot records the placeholder a root element replaced.
func (reg *Registry) trackRoot(root, placeholder *html.Node) {
	reg.rootsMu.Lock()
	defer reg.rootsMu.Unlock()
	reg.roots[root] = placeholder
}

// takePlaceholder returns and forgets the placeholder stored for root.
func (reg *Registry) takePlaceholder(root *html.Node) (*html.Node, bool) {
	reg.rootsMu.Lock()
	defer reg.rootsMu.Unlock()
	ph, ok := reg.roots[root]
	delete(reg.roots, root)
	return ph, ok
}
