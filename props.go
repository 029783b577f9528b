package hxmount

import (
	"encoding/json"
	"fmt"
	"maps"
	"strings"

	"golang.org/x/net/html"

	"github.com/pthm/hxmount/lib/dom"
	"github.com/pthm/hxmount/lib/encoding"
	"github.com/pthm/hxmount/lib/objectpath"
)

// ExtractProps builds the props for a placeholder.
//
// Precedence, lowest to highest:
//  1. the definition's default props
//  2. the data-props JSON object
//  3. data-prop-<key> and data-g-prop-<key> attributes
//
// Prefixed keys are camel-cased (data-prop-foo-bar sets fooBar). When no
// children prop was set, children is the placeholder's inner HTML.
func ExtractProps(placeholder *html.Node, def *Definition, globals map[string]any) (Props, error) {
	props := Props{}

	if blob, ok := dom.Attr(placeholder, AttrProps); ok {
		var decoded map[string]any
		if err := json.Unmarshal([]byte(blob), &decoded); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidProps, AttrProps, err)
		}
		maps.Copy(props, decoded)
	}

	for _, a := range placeholder.Attr {
		switch {
		case strings.HasPrefix(a.Key, AttrPropPrefix):
			props[propName(AttrPropPrefix, a.Key)] = parseValue(a.Val)
		case strings.HasPrefix(a.Key, AttrGlobalPropPrefix):
			v, _ := objectpath.Get(globals, a.Val)
			props[propName(AttrGlobalPropPrefix, a.Key)] = v
		}
	}

	if _, ok := props[ChildrenProp]; !ok {
		inner, err := dom.InnerHTML(placeholder)
		if err != nil {
			return nil, fmt.Errorf("%w: children: %v", ErrInvalidProps, err)
		}
		props[ChildrenProp] = inner
	}

	var defaults Props
	if def != nil {
		defaults = def.DefaultProps()
	}
	return defaults.Merge(props), nil
}

// parseValue decodes v as JSON when it is valid JSON, else returns it as-is.
func parseValue(v string) any {
	if !json.Valid([]byte(v)) {
		return v
	}
	var out any
	if err := json.Unmarshal([]byte(v), &out); err != nil {
		return v
	}
	return out
}

// propName strips prefix from an attribute name and camel-cases the rest:
// "data-prop-foo-bar" becomes "fooBar".
func propName(prefix, attr string) string {
	name := strings.TrimPrefix(attr, prefix)
	var b strings.Builder
	b.Grow(len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c == '-' && i+1 < len(name) && name[i+1] >= 'a' && name[i+1] <= 'z' {
			b.WriteByte(name[i+1] - ('a' - 'A'))
			i++
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// NormalizeProps returns props in the shape a refresh URL delivers them:
// integers as int, floats as float64, slices as []any, maps and structs as
// map[string]any. Mount and the refresh Handler both pass props through it,
// so a component sees the same types on first render and on refresh.
func NormalizeProps(props Props) Props {
	return encoding.Normalize(props)
}
