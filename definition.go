package hxmount

// Options controls the root element a component is mounted into.
type Options struct {
	// Tag is the root element tag name. Defaults to "div".
	Tag string
	// ClassName is assigned to the root element's class attribute.
	ClassName string
}

// Definition is the registered metadata for a component: its resolver,
// alias, default props and root element options.
//
// A Definition is owned by the Registry that created it. The fluent setters
// are meant to be chained right after registration:
//
//	def, err := reg.Register("counter", counter)
//	if err != nil {
//	    return err
//	}
//	def.WithDefaultProps(hxmount.Props{"start": 0}).
//	    WithOptions(hxmount.Options{Tag: "section"})
type Definition struct {
	name         string
	resolver     Resolver
	defaultProps Props
	options      Options
}

func newDefinition(resolver Resolver) *Definition {
	return &Definition{
		resolver:     resolver,
		defaultProps: Props{},
	}
}

// As sets the component alias.
func (d *Definition) As(name string) *Definition {
	d.name = name
	return d
}

// WithDefaultProps sets the props applied under placeholder-derived props.
func (d *Definition) WithDefaultProps(props Props) *Definition {
	d.defaultProps = props.Clone()
	return d
}

// WithOptions sets the root element options.
func (d *Definition) WithOptions(options Options) *Definition {
	d.options = options
	return d
}

// Name returns the alias the definition was registered under.
func (d *Definition) Name() string {
	return d.name
}

// Resolver returns the component resolver.
func (d *Definition) Resolver() Resolver {
	return d.resolver
}

// DefaultProps returns a copy of the default props.
func (d *Definition) DefaultProps() Props {
	return d.defaultProps.Clone()
}

// Options returns the root element options.
func (d *Definition) Options() Options {
	return d.options
}
