package hxmount

// Placeholder attribute protocol. Keys are case-sensitive and bit-exact.
const (
	// AttrComponent marks a placeholder; the value is a registered name.
	AttrComponent = "data-rr"

	// AttrTag overrides the root element tag name.
	AttrTag = "data-rr-tag"

	// AttrClass overrides the root element class name.
	AttrClass = "data-rr-class"

	// AttrGroup is set on created root elements to the owning registry id.
	AttrGroup = "data-rr-cid"

	// AttrSource is set on root elements to the island refresh URL when the
	// renderer is configured WithRefresh.
	AttrSource = "data-rr-src"

	// AttrProps holds a JSON object merged into props.
	AttrProps = "data-props"

	// AttrPropPrefix prefixes single prop attributes (data-prop-<key>).
	AttrPropPrefix = "data-prop-"

	// AttrGlobalPropPrefix prefixes props looked up by dotted path in the
	// renderer's global namespace (data-g-prop-<key>).
	AttrGlobalPropPrefix = "data-g-prop-"
)

// ChildrenProp receives the placeholder's inner HTML unless set explicitly.
const ChildrenProp = "children"

const defaultTag = "div"
