package dom

import (
	"testing"

	"golang.org/x/net/html"
)

func mustParse(t *testing.T, src string) *html.Node {
	t.Helper()
	doc, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return doc
}

func TestFindBody(t *testing.T) {
	doc := mustParse(t, `<html><body><p>hi</p></body></html>`)
	body := FindBody(doc)
	if body == nil || body.Data != "body" {
		t.Fatalf("FindBody() = %v, want body element", body)
	}
	if FindBody(nil) != nil {
		t.Error("FindBody(nil) should be nil")
	}
}

func TestQueryAttrDocumentOrder(t *testing.T) {
	doc := mustParse(t, `<body><div data-rr="a"><span data-rr="b"></span></div><p data-rr="c"></p><i></i></body>`)
	found := QueryAttr(FindBody(doc), "data-rr")
	if len(found) != 3 {
		t.Fatalf("QueryAttr() found %d, want 3", len(found))
	}
	for i, want := range []string{"a", "b", "c"} {
		if got, _ := Attr(found[i], "data-rr"); got != want {
			t.Errorf("found[%d] = %q, want %q", i, got, want)
		}
	}
}

func TestQueryAttrValue(t *testing.T) {
	doc := mustParse(t, `<body><div data-rr-cid="1"></div><div data-rr-cid="2"></div></body>`)
	found := QueryAttrValue(doc, "data-rr-cid", "2")
	if len(found) != 1 {
		t.Fatalf("QueryAttrValue() found %d, want 1", len(found))
	}
}

func TestSetAttr(t *testing.T) {
	n := NewElement("DIV")
	if n.Data != "div" {
		t.Errorf("NewElement() tag = %q, want div", n.Data)
	}
	SetAttr(n, "class", "a")
	SetAttr(n, "class", "b")
	if len(n.Attr) != 1 {
		t.Fatalf("SetAttr() duplicated attribute: %v", n.Attr)
	}
	if v, _ := Attr(n, "class"); v != "b" {
		t.Errorf("class = %q, want b", v)
	}
}

func TestInsertAfterAndDetach(t *testing.T) {
	doc := mustParse(t, `<body><a></a><b></b></body>`)
	body := FindBody(doc)
	a := body.FirstChild
	n := NewElement("i")
	InsertAfter(a, n)
	Detach(a)

	out, err := InnerHTML(body)
	if err != nil {
		t.Fatalf("InnerHTML() error = %v", err)
	}
	if out != "<i></i><b></b>" {
		t.Errorf("InnerHTML() = %q", out)
	}
	if a.Parent != nil {
		t.Error("detached node still has a parent")
	}
	Detach(a)
}

func TestParseFragmentAndCount(t *testing.T) {
	nodes, err := ParseFragment("<p>1</p> <p>2</p>", nil)
	if err != nil {
		t.Fatalf("ParseFragment() error = %v", err)
	}
	if got := CountElements(nodes); got != 2 {
		t.Errorf("CountElements() = %d, want 2", got)
	}
}

func TestContains(t *testing.T) {
	doc := mustParse(t, `<body><div><span></span></div></body>`)
	body := FindBody(doc)
	span := body.FirstChild.FirstChild
	if !Contains(body, span) {
		t.Error("body should contain span")
	}
	if Contains(span, body) {
		t.Error("span should not contain body")
	}
}
