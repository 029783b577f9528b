package hxmount

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/pthm/hxmount/lib/dom"
)

// TestResult holds the result of mounting a page for testing.
//
// Provides convenience methods for asserting on the mounted HTML and on
// the errors reported during the mount pass.
type TestResult struct {
	// HTML is the inner HTML of <body> after mounting.
	HTML string
	// Mounted is the number of root elements created by the registry.
	Mounted int
	// Errors holds every error reported to the renderer's error handler.
	Errors []error
	// Renderer is the renderer used, for follow-up Unmount calls.
	Renderer *Renderer
}

// TestMount parses page, mounts it with reg and returns testable output.
//
//	result, err := hxmount.TestMount(reg, `<div data-rr="counter" data-prop-start="3"></div>`)
//	if !result.HTMLContains("3") {
//	    t.Fatal("missing expected content")
//	}
//
// page may be a full document or a body fragment. Errors reported during
// the pass are collected in TestResult.Errors; an error handler passed in
// opts is replaced.
func TestMount(reg *Registry, page string, opts ...RendererOption) (*TestResult, error) {
	return TestMountWithContext(context.Background(), reg, page, opts...)
}

// TestMountWithContext is TestMount with a caller-supplied context, handed
// to every resolver.
func TestMountWithContext(ctx context.Context, reg *Registry, page string, opts ...RendererOption) (*TestResult, error) {
	doc, err := dom.Parse(page)
	if err != nil {
		return nil, err
	}

	result := &TestResult{}
	var mu sync.Mutex
	opts = append(opts, WithErrorHandler(func(err error) {
		mu.Lock()
		defer mu.Unlock()
		result.Errors = append(result.Errors, err)
	}))

	r, err := NewRenderer(reg, doc, opts...)
	if err != nil {
		return nil, err
	}
	if err := r.Mount(ctx, nil, nil); err != nil {
		return nil, err
	}

	if err := result.refresh(r); err != nil {
		return nil, err
	}
	return result, nil
}

// Unmount runs an unmount pass and refreshes HTML and Mounted.
func (t *TestResult) Unmount() error {
	if err := t.Renderer.Unmount(context.Background(), nil, nil); err != nil {
		return err
	}
	return t.refresh(t.Renderer)
}

func (t *TestResult) refresh(r *Renderer) error {
	reg, err := r.Registry()
	if err != nil {
		return err
	}
	html, err := dom.InnerHTML(r.Body())
	if err != nil {
		return err
	}
	t.HTML = html
	t.Mounted = len(dom.QueryAttrValue(r.Body(), AttrGroup, reg.ID()))
	t.Renderer = r
	return nil
}

// HTMLContains checks if the HTML contains a substring.
func (t *TestResult) HTMLContains(substr string) bool {
	return strings.Contains(t.HTML, substr)
}

// HTMLContainsAll checks if the HTML contains all the given substrings.
func (t *TestResult) HTMLContainsAll(substrs ...string) bool {
	for _, s := range substrs {
		if !strings.Contains(t.HTML, s) {
			return false
		}
	}
	return true
}

// HTMLContainsAny checks if the HTML contains any of the given substrings.
func (t *TestResult) HTMLContainsAny(substrs ...string) bool {
	for _, s := range substrs {
		if strings.Contains(t.HTML, s) {
			return true
		}
	}
	return false
}

// HasError checks if an error matching target (errors.Is) was reported.
func (t *TestResult) HasError(target error) bool {
	for _, err := range t.Errors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// OK checks that no error was reported.
func (t *TestResult) OK() bool {
	return len(t.Errors) == 0
}
