package hxmount

import (
	"fmt"
	"maps"
	"slices"

	"github.com/a-h/templ"
	"golang.org/x/net/html"

	"github.com/pthm/hxmount/lib/dom"
)

// SwapMode defines HTMX swap strategies for how a refreshed island replaces
// the content of its root element.
//
// Each mode corresponds to an HTMX hx-swap value. The default for islands
// is SwapInner: the refresh endpoint returns the component output without
// the root element.
//
// See https://htmx.org/attributes/hx-swap/ for visual examples.
type SwapMode string

const (
	// SwapInner replaces only the element's contents, preserving the root (innerHTML).
	// This is the default swap mode.
	SwapInner SwapMode = "innerHTML"

	// SwapOuter replaces the entire element including its tag (outerHTML).
	// The data-rr-cid marker is lost, so the island is no longer unmounted.
	SwapOuter SwapMode = "outerHTML"

	// SwapBeforeEnd appends the response to the end of the root's contents.
	// Useful for feeds that grow on every refresh.
	SwapBeforeEnd SwapMode = "beforeend"

	// SwapAfterBegin prepends the response to the start of the root's contents.
	SwapAfterBegin SwapMode = "afterbegin"

	// SwapNone performs no swap - response is discarded.
	SwapNone SwapMode = "none"
)

// RefreshAttrs builds the HTMX attributes that re-render an island from its
// refresh URL (the data-rr-src value).
//
// An empty trigger leaves hx-trigger unset, so HTMX uses its default for the
// element. Typical triggers are "every 30s" or "island:refresh from:body".
//
//	<button { hxmount.RefreshAttrs(src, "click", hxmount.SwapInner)... }>Reload</button>
func RefreshAttrs(src, trigger string, swap SwapMode) templ.Attributes {
	if swap == "" {
		swap = SwapInner
	}
	attrs := templ.Attributes{
		"hx-get":  src,
		"hx-swap": string(swap),
	}
	if trigger != "" {
		attrs["hx-trigger"] = trigger
	}
	return attrs
}

type htmxConfig struct {
	trigger string
	swap    SwapMode
}

// WithHTMXRefresh stamps root elements with RefreshAttrs so islands
// re-render themselves on trigger. It needs WithRefresh for the URL.
func WithHTMXRefresh(trigger string, swap SwapMode) RendererOption {
	return func(r *Renderer) {
		r.htmx = &htmxConfig{trigger: trigger, swap: swap}
	}
}

func setAttrs(n *html.Node, attrs templ.Attributes) {
	for _, k := range slices.Sorted(maps.Keys(attrs)) {
		dom.SetAttr(n, k, fmt.Sprint(attrs[k]))
	}
}
