package geobind_test

import (
	"testing"

	"github.com/wippyai/tangara/errors"
	"github.com/wippyai/tangara/handle"
	"github.com/wippyai/tangara/registry"

	"example.com/fixture/geo"
	"example.com/fixture/geobind"
	"example.com/fixture/plugin"
)

func load(t *testing.T) (*geobind.Bindings, *handle.Table) {
	t.Helper()
	ctx := registry.NewContext()
	plugin.TgLoad(ctx)
	ctx.Seal()
	objects := handle.NewTable(nil)
	b, err := geobind.Load(ctx, objects)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return b, objects
}

func TestCalls(t *testing.T) {
	b, objects := load(t)
	geo.Drops = 0

	sq, err := b.NewShape(2)
	if err != nil {
		t.Fatal(err)
	}
	rect, err := b.NewShape1(2, 3)
	if err != nil {
		t.Fatal(err)
	}
	if a, err := sq.Area(); err != nil || a != 4 {
		t.Fatalf("sq.Area() = %v, %v", a, err)
	}
	if a, err := rect.Area(); err != nil || a != 6 {
		t.Fatalf("rect.Area() = %v, %v", a, err)
	}

	if n, err := sq.Grow(3); err != nil || n != 6 {
		t.Fatalf("Grow(3) = %v, %v", n, err)
	}
	if x, err := sq.Grow2(3); err != nil || x != 1.5 {
		t.Fatalf("Grow2(3) = %v, %v", x, err)
	}

	if err := sq.SetLabel("square"); err != nil {
		t.Fatal(err)
	}
	if l, err := sq.Label(); err != nil || l != "square" {
		t.Fatalf("Label() = %q, %v", l, err)
	}

	if err := b.SetShapeCount(7); err != nil {
		t.Fatal(err)
	}
	if n, err := b.ShapeCount(); err != nil || n != 7 || geo.ShapeCount != 7 {
		t.Fatalf("ShapeCount() = %v, %v", n, err)
	}

	created, err := b.ShapeCreate()
	if err != nil {
		t.Fatal(err)
	}
	if l, err := created.Label(); err != nil || l != "unit" {
		t.Fatalf("created.Label() = %q, %v", l, err)
	}

	for _, o := range []interface{ Close() error }{sq, rect, created} {
		if err := o.Close(); err != nil {
			t.Fatal(err)
		}
	}
	if geo.Drops != 3 {
		t.Fatalf("Drops = %d, want 3", geo.Drops)
	}
	if objects.Len() != 0 {
		t.Fatalf("%d objects left", objects.Len())
	}
	if _, err := sq.Area(); !errors.IsKind(err, errors.KindDangling) {
		t.Fatalf("call after Close: %v", err)
	}
}

func TestObjectField(t *testing.T) {
	b, objects := load(t)
	geo.Drops = 0

	outer, err := b.NewShape(1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := outer.Inner(); !errors.IsKind(err, errors.KindNullResult) {
		t.Fatalf("unset Inner() = %v", err)
	}

	inner, err := b.NewShape1(2, 5)
	if err != nil {
		t.Fatal(err)
	}
	if err := outer.SetInner(inner); err != nil {
		t.Fatal(err)
	}
	// outer stored a copy, so inner can go away
	if err := inner.Close(); err != nil {
		t.Fatal(err)
	}

	first, err := outer.Inner()
	if err != nil {
		t.Fatal(err)
	}
	second, err := outer.Inner()
	if err != nil {
		t.Fatal(err)
	}
	if first.Handle() == second.Handle() {
		t.Fatal("each read must return its own object")
	}
	if a, err := first.Area(); err != nil || a != 10 {
		t.Fatalf("first.Area() = %v, %v", a, err)
	}
	if err := first.Close(); err != nil {
		t.Fatal(err)
	}
	if err := second.Close(); err != nil {
		t.Fatal(err)
	}
	if a, err := outer.Inner(); err != nil {
		t.Fatalf("Inner() after closing copies: %v", err)
	} else if err := a.Close(); err != nil {
		t.Fatal(err)
	}

	if err := outer.Close(); err != nil {
		t.Fatal(err)
	}
	if geo.Drops != 5 {
		t.Fatalf("Drops = %d, want 5", geo.Drops)
	}
	if objects.Len() != 0 {
		t.Fatalf("%d objects left", objects.Len())
	}
}
