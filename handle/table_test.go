package handle

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wippyai/tangara"
	"github.com/wippyai/tangara/errors"
	"github.com/wippyai/tangara/registry"
)

type testObserver struct {
	events []Event
}

func (o *testObserver) OnObjectEvent(e Event) {
	o.events = append(o.events, e)
}

type fixture struct {
	ctx       *registry.Context
	funcs     *registry.FuncTable
	destroyed []tangara.Ptr
}

func newFixture() *fixture {
	f := &fixture{ctx: registry.NewContext()}
	f.funcs = f.ctx.AddPackage(1).AddType(2).SetDtor(func(this tangara.Ptr) {
		f.destroyed = append(f.destroyed, this)
	})
	return f
}

func (f *fixture) object() Object {
	return Object{Ptr: tangara.Ptr(new(int)), Funcs: f.funcs}
}

func TestTable_Basic(t *testing.T) {
	f := newFixture()
	table := NewTable(nil)
	obj := f.object()

	h, err := table.Insert(obj)
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if h == 0 {
		t.Fatal("Expected non-zero handle")
	}

	got, err := table.Get(h)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Ptr != obj.Ptr {
		t.Fatal("Get returned a different object")
	}
	if got.PackageID() != 1 || got.TypeID() != 2 {
		t.Fatalf("unexpected IDs %d/%d", got.PackageID(), got.TypeID())
	}

	if err := table.Drop(h); err != nil {
		t.Fatalf("Drop failed: %v", err)
	}
	if len(f.destroyed) != 1 || f.destroyed[0] != obj.Ptr {
		t.Fatalf("destructor calls = %v", f.destroyed)
	}
	if table.Len() != 0 {
		t.Fatal("Expected Len() == 0 after Drop")
	}
}

func TestTable_NullObject(t *testing.T) {
	table := NewTable(nil)
	_, err := table.Insert(Object{})
	if !errors.IsKind(err, errors.KindNullResult) {
		t.Fatalf("expected null result, got %v", err)
	}
}

func TestTable_StaleHandle(t *testing.T) {
	f := newFixture()
	table := NewTable(nil)

	h1, _ := table.Insert(f.object())
	if err := table.Drop(h1); err != nil {
		t.Fatal(err)
	}

	// the slot is reused with a new generation
	h2, _ := table.Insert(f.object())
	if h1.slot() != h2.slot() {
		t.Fatalf("expected slot reuse, got %s and %s", h1, h2)
	}
	if h1 == h2 {
		t.Fatal("reused slot must change generation")
	}

	if _, err := table.Get(h1); !errors.IsKind(err, errors.KindDangling) {
		t.Fatalf("expected dangling, got %v", err)
	}
	if err := table.Drop(h1); !errors.IsKind(err, errors.KindDangling) {
		t.Fatalf("second drop: expected dangling, got %v", err)
	}
	if len(f.destroyed) != 1 {
		t.Fatalf("destructor ran %d times", len(f.destroyed))
	}

	if _, err := table.Get(0); !errors.IsKind(err, errors.KindNotFound) {
		t.Fatalf("expected not found for zero handle, got %v", err)
	}
}

func TestTable_Borrow(t *testing.T) {
	f := newFixture()
	table := NewTable(nil)
	h, _ := table.Insert(f.object())

	if _, err := table.Borrow(h); err != nil {
		t.Fatal(err)
	}
	if err := table.Drop(h); !errors.IsKind(err, errors.KindBusy) {
		t.Fatalf("expected busy, got %v", err)
	}
	if err := table.Return(h); err != nil {
		t.Fatal(err)
	}
	if err := table.Return(h); !errors.IsKind(err, errors.KindOwnership) {
		t.Fatalf("expected ownership error, got %v", err)
	}
	if err := table.Drop(h); err != nil {
		t.Fatal(err)
	}
}

func TestTable_Observer(t *testing.T) {
	f := newFixture()
	table := NewTable(nil)
	obs := &testObserver{}
	table.Subscribe(obs)

	h, _ := table.Insert(f.object())
	table.Borrow(h)
	table.Return(h)
	table.Drop(h)

	want := []EventType{EventCreated, EventBorrowed, EventBorrowReturned, EventDropped}
	if len(obs.events) != len(want) {
		t.Fatalf("Expected %d events, got %d", len(want), len(obs.events))
	}
	for i, e := range obs.events {
		if e.Type != want[i] {
			t.Fatalf("event %d: expected %s, got %s", i, want[i], e.Type)
		}
		if e.Handle != h {
			t.Fatal("Wrong handle in event")
		}
	}

	table.Unsubscribe(obs)
	table.Insert(f.object())
	if len(obs.events) != len(want) {
		t.Fatal("Should not receive events after Unsubscribe")
	}
}

func TestTable_LiveInAndDropIn(t *testing.T) {
	f := newFixture()
	other := f.ctx.AddPackage(9).AddType(2).SetDtor(func(tangara.Ptr) {})
	core, logs := observer.New(zap.WarnLevel)
	table := NewTable(zap.New(core))

	table.Insert(f.object())
	h, _ := table.Insert(f.object())
	table.Insert(Object{Ptr: tangara.Ptr(new(int)), Funcs: other})
	table.Borrow(h)

	if n := table.LiveIn(1); n != 2 {
		t.Fatalf("LiveIn(1) = %d", n)
	}

	// a borrowed object survives and is reported
	if err := table.DropIn(1); !errors.IsKind(err, errors.KindBusy) {
		t.Fatalf("expected busy, got %v", err)
	}
	if n := table.LiveIn(1); n != 1 {
		t.Fatalf("LiveIn(1) after DropIn = %d", n)
	}
	if len(f.destroyed) != 1 {
		t.Fatalf("destructor ran %d times", len(f.destroyed))
	}
	if logs.FilterMessage("borrowed object kept").Len() != 1 {
		t.Fatalf("expected a warning for the borrowed object, got %v", logs.All())
	}
	if _, err := table.Get(h); err != nil {
		t.Fatalf("borrowed object must stay valid: %v", err)
	}

	if err := table.Return(h); err != nil {
		t.Fatal(err)
	}
	if err := table.DropIn(1); err != nil {
		t.Fatal(err)
	}
	if len(f.destroyed) != 2 {
		t.Fatalf("destructor ran %d times", len(f.destroyed))
	}
	if table.Len() != 1 {
		t.Fatalf("Len() = %d", table.Len())
	}
}

func TestTable_ZeroSlot(t *testing.T) {
	f := newFixture()
	table := NewTable(nil)
	table.Insert(f.object())

	for _, h := range []Handle{0, Handle(1 << 32), Handle(7 << 32)} {
		if _, err := table.Get(h); !errors.IsKind(err, errors.KindNotFound) {
			t.Fatalf("%s: expected not found, got %v", h, err)
		}
		if err := table.Drop(h); !errors.IsKind(err, errors.KindNotFound) {
			t.Fatalf("%s: drop: expected not found, got %v", h, err)
		}
	}
	if table.Len() != 1 {
		t.Fatalf("Len() = %d", table.Len())
	}
}

func TestTable_MissingDestructor(t *testing.T) {
	ctx := registry.NewContext()
	funcs := ctx.AddPackage(1).AddType(2)
	table := NewTable(nil)

	h, _ := table.Insert(Object{Ptr: tangara.Ptr(new(int)), Funcs: funcs})
	if err := table.Drop(h); !errors.IsKind(err, errors.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := table.Get(h); !errors.IsKind(err, errors.KindDangling) {
		t.Fatal("handle must be invalid after a failed destructor lookup")
	}
}

func TestTable_Close(t *testing.T) {
	f := newFixture()
	table := NewTable(nil)

	table.Insert(f.object())
	table.Insert(f.object())

	if err := table.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if len(f.destroyed) != 2 {
		t.Fatalf("destructor ran %d times", len(f.destroyed))
	}
	if _, err := table.Insert(f.object()); err == nil {
		t.Fatal("Expected Insert to fail after Close")
	}
}
