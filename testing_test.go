package hxmount

import (
	"context"
	"testing"
)

func TestTestMount(t *testing.T) {
	reg := newTestRegistry()
	reg.MustRegister("greeting", greeting())

	result, err := TestMount(reg, `<div data-rr="greeting" data-prop-name="Ada"></div><div data-rr="nope"></div>`)
	if err != nil {
		t.Fatalf("TestMount() error = %v", err)
	}

	if result.Mounted != 1 {
		t.Errorf("Mounted = %d, want 1", result.Mounted)
	}
	if !result.HTMLContains("Hello Ada") {
		t.Errorf("HTML = %s", result.HTML)
	}
	if !result.HTMLContainsAll("Hello", `data-rr-cid="1"`) {
		t.Error("HTMLContainsAll() = false")
	}
	if !result.HTMLContainsAny("missing", "Ada") {
		t.Error("HTMLContainsAny() = false")
	}
	if result.HTMLContainsAny("missing", "absent") {
		t.Error("HTMLContainsAny() = true for absent strings")
	}
	if result.OK() {
		t.Error("OK() = true, want false with an unregistered placeholder")
	}
	if !result.HasError(ErrComponentNotFound) {
		t.Errorf("HasError(ErrComponentNotFound) = false, errors = %v", result.Errors)
	}
	if result.HasError(ErrInvalidProps) {
		t.Error("HasError(ErrInvalidProps) = true")
	}
}

func TestTestResultUnmount(t *testing.T) {
	reg := newTestRegistry()
	reg.MustRegister("greeting", greeting())

	result, err := TestMount(reg, `<div data-rr="greeting"></div>`)
	if err != nil {
		t.Fatalf("TestMount() error = %v", err)
	}
	if err := result.Unmount(); err != nil {
		t.Fatalf("Unmount() error = %v", err)
	}
	if result.Mounted != 0 {
		t.Errorf("Mounted = %d, want 0", result.Mounted)
	}
	if result.HTML != `<div data-rr="greeting"></div>` {
		t.Errorf("HTML = %s", result.HTML)
	}
}

func TestTestMountWithContext(t *testing.T) {
	type ctxKey struct{}
	reg := newTestRegistry()

	var seen any
	_, _ = reg.RegisterAsync("ctx", func(ctx context.Context) (Loaded, error) {
		seen = ctx.Value(ctxKey{})
		return Direct(raw("<i></i>")), nil
	})

	ctx := context.WithValue(context.Background(), ctxKey{}, "request")
	if _, err := TestMountWithContext(ctx, reg, `<div data-rr="ctx"></div>`); err != nil {
		t.Fatalf("TestMountWithContext() error = %v", err)
	}
	if seen != "request" {
		t.Errorf("resolver context value = %v", seen)
	}
}
