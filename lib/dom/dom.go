// Package dom provides the small set of tree operations hxmount performs on
// parsed HTML documents: attribute access, attribute queries in document
// order, sibling insertion, detaching, and markup serialization.
package dom

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Parse parses a full HTML document.
func Parse(src string) (*html.Node, error) {
	return html.Parse(strings.NewReader(src))
}

// ParseFragment parses markup in the context of the given element.
// The returned nodes are detached.
func ParseFragment(src string, context *html.Node) ([]*html.Node, error) {
	if context == nil || context.Type != html.ElementNode {
		context = &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	}
	return html.ParseFragment(strings.NewReader(src), context)
}

// Render serializes a node and its subtree.
func Render(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// InnerHTML serializes the children of n.
func InnerHTML(n *html.Node) (string, error) {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// FindBody returns the <body> element of a document, or nil.
func FindBody(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	if n.Type == html.ElementNode && n.DataAtom == atom.Body {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if result := FindBody(c); result != nil {
			return result
		}
	}
	return nil
}

// Attr returns the value of the named attribute.
func Attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets or replaces the named attribute.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// QueryAttr returns every element below root (root excluded) carrying the
// attribute key, in document order.
func QueryAttr(root *html.Node, key string) []*html.Node {
	return query(root, func(n *html.Node) bool {
		_, ok := Attr(n, key)
		return ok
	})
}

// QueryAttrValue is QueryAttr restricted to an exact attribute value.
func QueryAttrValue(root *html.Node, key, val string) []*html.Node {
	return query(root, func(n *html.Node) bool {
		v, ok := Attr(n, key)
		return ok && v == val
	})
}

func query(root *html.Node, match func(*html.Node) bool) []*html.Node {
	var found []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && match(c) {
				found = append(found, c)
			}
			walk(c)
		}
	}
	if root != nil {
		walk(root)
	}
	return found
}

// NewElement creates a detached element node.
func NewElement(tag string) *html.Node {
	tag = strings.ToLower(tag)
	return &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
}

// InsertAfter inserts n as the next sibling of ref. ref must have a parent.
func InsertAfter(ref, n *html.Node) {
	ref.Parent.InsertBefore(n, ref.NextSibling)
}

// Detach removes n from its parent and returns it. Detaching an orphan is a no-op.
func Detach(n *html.Node) *html.Node {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
	return n
}

// RemoveChildren detaches every child of n.
func RemoveChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
	}
}

// Contains reports whether n is root or one of its descendants.
func Contains(root, n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == root {
			return true
		}
	}
	return false
}

// CountElements counts element nodes among nodes, ignoring text and comments.
func CountElements(nodes []*html.Node) int {
	count := 0
	for _, n := range nodes {
		if n.Type == html.ElementNode {
			count++
		}
	}
	return count
}
