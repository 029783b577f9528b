package hxmount

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithHandlerElementFactory sets how resolved components become output.
// Use the same function passed to Factory.UseElementFactory so refreshed
// islands match mounted ones.
func WithHandlerElementFactory(fn ElementFactory) HandlerOption {
	return func(h *Handler) {
		h.elementFactory = fn
	}
}

// WithHandlerLogger sets the handler logger.
func WithHandlerLogger(logger *slog.Logger) HandlerOption {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithHandlerSensitiveProps decodes encrypted props, matching a renderer
// configured WithSensitiveProps.
func WithHandlerSensitiveProps() HandlerOption {
	return func(h *Handler) {
		h.sensitive = true
	}
}

// Handler re-renders a single island from the data-rr-src URL stamped by a
// renderer configured WithRefresh:
//
//	GET {prefix}{name}?p=<signed props>
//
// Mount it under the same prefix:
//
//	r := chi.NewRouter()
//	r.Mount("/_rr", hxmount.NewHandler(reg, enc))
//
// The response is the component output only, without the root element, so
// it fits an hx-swap="innerHTML" on the root.
type Handler struct {
	reg            *Registry
	enc            *Encoder
	router         chi.Router
	elementFactory ElementFactory
	logger         *slog.Logger
	sensitive      bool

	// OnError is called when decoding, resolution or rendering fails.
	// Customize this to handle errors appropriately for your application.
	OnError func(http.ResponseWriter, *http.Request, error)
}

// NewHandler creates the refresh endpoint for reg.
func NewHandler(reg *Registry, enc *Encoder, opts ...HandlerOption) *Handler {
	h := &Handler{
		reg:            reg,
		enc:            enc,
		router:         chi.NewRouter(),
		elementFactory: DefaultElementFactory,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}

	h.OnError = func(w http.ResponseWriter, r *http.Request, err error) {
		h.logger.Warn("hxmount: refresh failed", "path", r.URL.Path, "error", err)
		switch {
		case IsNotFound(err):
			http.Error(w, "Not found", http.StatusNotFound)
		case IsDecryptionError(err), IsInvalidFormat(err):
			http.Error(w, "Bad request", http.StatusBadRequest)
		default:
			http.Error(w, "Internal error", http.StatusInternalServerError)
		}
	}

	h.router.Get("/{name}", h.serveComponent)
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) serveComponent(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	props := Props{}
	if p := r.URL.Query().Get("p"); p != "" && h.enc != nil {
		decoded, err := h.enc.Decode(p, h.sensitive)
		if err != nil {
			h.OnError(w, r, wrapEncodingError(err))
			return
		}
		props = decoded
	}

	res, err := h.reg.Get(r.Context(), name)
	if err != nil {
		h.OnError(w, r, err)
		return
	}

	props = NormalizeProps(res.Definition.DefaultProps().Merge(props))
	el := h.elementFactory(r.Context(), res.Component, props)
	if el == nil {
		h.OnError(w, r, ErrResolverFailed)
		return
	}
	if err := Render(w, r, el); err != nil {
		h.logger.Error("hxmount: refresh render failed", "component", name, "error", err)
	}
}
