// Package hxmountecho provides Echo framework integration for hxmount.
//
// Mount the refresh endpoint and the mounting middleware on an Echo
// instance:
//
//	e := echo.New()
//	islands := hxmountecho.Mount(e, reg, hxmountecho.WithKey(key))
//	e.Use(islands.Middleware())
//
// Or on a group, sharing its middleware (auth, logging, etc.):
//
//	g := e.Group("/app", authMiddleware)
//	islands := hxmountecho.MountGroup(g, reg, hxmountecho.WithPublicPath("/app/_rr/"))
//	g.Use(islands.Middleware())
package hxmountecho

import (
	"crypto/rand"
	"fmt"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/pthm/hxmount"
)

// Option configures Mount and MountGroup.
type Option func(*options)

type options struct {
	key        []byte
	path       string
	publicPath string
	sensitive  bool
	renderer   []hxmount.RendererOption
}

// WithKey sets the key refresh URL props are signed with.
// The key should be at least 32 bytes of cryptographically random data.
// If not provided, a random key is generated (suitable for development only).
func WithKey(key []byte) Option {
	return func(o *options) {
		o.key = key
	}
}

// WithPath sets the route prefix of the refresh endpoint.
// Defaults to "/_rr/".
func WithPath(path string) Option {
	return func(o *options) {
		o.path = path
	}
}

// WithPublicPath sets the prefix stamped into data-rr-src when it differs
// from the route prefix, as it does for groups. Defaults to the route prefix.
func WithPublicPath(path string) Option {
	return func(o *options) {
		o.publicPath = path
	}
}

// WithSensitiveProps encrypts refresh URL props instead of signing them.
func WithSensitiveProps() Option {
	return func(o *options) {
		o.sensitive = true
	}
}

// WithRendererOptions passes options to the renderer used by Middleware.
func WithRendererOptions(opts ...hxmount.RendererOption) Option {
	return func(o *options) {
		o.renderer = append(o.renderer, opts...)
	}
}

// Islands is a registry mounted on Echo.
type Islands struct {
	Registry *hxmount.Registry
	Encoder  *hxmount.Encoder

	opts options
}

// Mount serves the refresh endpoint for reg on an Echo instance.
//
//	e := echo.New()
//	islands := hxmountecho.Mount(e, reg)
//
//	// With options:
//	islands := hxmountecho.Mount(e, reg, hxmountecho.WithKey(key))
func Mount(e *echo.Echo, reg *hxmount.Registry, opts ...Option) *Islands {
	i := newIslands(reg, opts)
	e.GET(i.opts.path+"*", i.refreshHandler())
	return i
}

// MountGroup serves the refresh endpoint for reg on an Echo group.
// Pass WithPublicPath with the group prefix included so stamped refresh
// URLs resolve.
func MountGroup(g *echo.Group, reg *hxmount.Registry, opts ...Option) *Islands {
	i := newIslands(reg, opts)
	g.GET(i.opts.path+"*", i.refreshHandler())
	return i
}

func newIslands(reg *hxmount.Registry, opts []Option) *Islands {
	o := options{path: "/_rr/"}
	for _, opt := range opts {
		opt(&o)
	}
	if o.publicPath == "" {
		o.publicPath = o.path
	}

	key := o.key
	if key == nil {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			panic(fmt.Sprintf("hxmountecho: failed to generate random key: %v", err))
		}
	}

	enc, err := hxmount.NewEncoder(key)
	if err != nil {
		panic(fmt.Sprintf("hxmountecho: failed to create encoder: %v", err))
	}

	return &Islands{Registry: reg, Encoder: enc, opts: o}
}

// refreshHandler hands the path below the route prefix to hxmount.Handler.
func (i *Islands) refreshHandler() echo.HandlerFunc {
	var opts []hxmount.HandlerOption
	if i.opts.sensitive {
		opts = append(opts, hxmount.WithHandlerSensitiveProps())
	}
	h := hxmount.NewHandler(i.Registry, i.Encoder, opts...)
	return func(c echo.Context) error {
		req := c.Request().Clone(c.Request().Context())
		req.URL.Path = "/" + c.Param("*")
		req.URL.RawPath = ""
		h.ServeHTTP(c.Response(), req)
		return nil
	}
}

// Middleware mounts islands into HTML responses, stamping refresh URLs
// under the public path.
func (i *Islands) Middleware() echo.MiddlewareFunc {
	opts := []hxmount.RendererOption{hxmount.WithRefresh(i.Encoder, i.opts.publicPath)}
	if i.opts.sensitive {
		opts = append(opts, hxmount.WithSensitiveProps())
	}
	opts = append(opts, i.opts.renderer...)
	return echo.WrapMiddleware(hxmount.Middleware(i.Registry, opts...))
}

// Render writes a templ component to the Echo response.
//
//	func handler(c echo.Context) error {
//	    return hxmountecho.Render(c, myTemplate())
//	}
func Render(c echo.Context, component templ.Component) error {
	c.Response().Header().Set("Content-Type", "text/html; charset=utf-8")
	return component.Render(c.Request().Context(), c.Response())
}

// RenderStatus is Render with an explicit status code.
func RenderStatus(c echo.Context, status int, component templ.Component) error {
	c.Response().Header().Set("Content-Type", "text/html; charset=utf-8")
	c.Response().WriteHeader(status)
	return component.Render(c.Request().Context(), c.Response())
}
