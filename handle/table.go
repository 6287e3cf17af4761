package handle

import (
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/tangara/errors"
)

// Table manages live objects with observer support. It is safe for
// concurrent use.
type Table struct {
	slots     *slots
	observers []Observer
	obsMu     sync.RWMutex
	logger    *zap.Logger
}

// NewTable creates an empty table. A nil logger disables logging.
func NewTable(logger *zap.Logger) *Table {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Table{
		slots:  newSlots(),
		logger: logger,
	}
}

// Insert adds an object and returns its handle.
func (t *Table) Insert(obj Object) (Handle, error) {
	if obj.Ptr == nil {
		return 0, errors.NullResult(nil, "")
	}
	h, err := t.slots.create(obj)
	if err != nil {
		return 0, err
	}
	t.notify(Event{Type: EventCreated, Handle: h, Object: obj})
	return h, nil
}

// Get returns the object behind h. A handle whose object was dropped
// fails with errors.KindDangling.
func (t *Table) Get(h Handle) (Object, error) {
	return t.slots.get(h)
}

// Borrow returns the object behind h and prevents it from being dropped
// until Return is called.
func (t *Table) Borrow(h Handle) (Object, error) {
	obj, err := t.slots.borrow(h)
	if err != nil {
		return Object{}, err
	}
	t.notify(Event{Type: EventBorrowed, Handle: h, Object: obj})
	return obj, nil
}

// Return ends one borrow of h.
func (t *Table) Return(h Handle) error {
	obj, err := t.slots.get(h)
	if err != nil {
		return err
	}
	if err := t.slots.returnBorrow(h); err != nil {
		return err
	}
	t.notify(Event{Type: EventBorrowReturned, Handle: h, Object: obj})
	return nil
}

// Drop removes h and runs the destructor registered for its type. The
// handle is invalid afterwards even if the destructor could not be found.
// Dropping a borrowed object fails with errors.KindBusy.
func (t *Table) Drop(h Handle) error {
	return t.drop(h, false)
}

func (t *Table) drop(h Handle, force bool) error {
	obj, err := t.slots.remove(h, force)
	if err != nil {
		return err
	}
	t.notify(Event{Type: EventDropped, Handle: h, Object: obj})

	if obj.Funcs == nil {
		return nil
	}
	dtor, err := obj.Funcs.Dtor()
	if err != nil {
		t.logger.Warn("object dropped without destructor",
			zap.Stringer("handle", h),
			zap.Uint64("type", obj.TypeID()),
			zap.Error(err))
		return err
	}
	dtor(obj.Ptr)
	return nil
}

// LiveIn returns the number of live objects whose type belongs to pkgID.
func (t *Table) LiveIn(pkgID uint64) int {
	n := 0
	t.slots.each(func(_ Handle, obj Object) bool {
		if obj.PackageID() == pkgID {
			n++
		}
		return true
	})
	return n
}

// DropIn drops every live object of pkgID and returns the first error.
// Borrowed objects are kept and reported with errors.KindBusy, since a call
// through them is still in progress.
func (t *Table) DropIn(pkgID uint64) error {
	var handles []Handle
	t.slots.each(func(h Handle, obj Object) bool {
		if obj.PackageID() == pkgID {
			handles = append(handles, h)
		}
		return true
	})
	var first error
	for _, h := range handles {
		err := t.drop(h, false)
		if err == nil {
			continue
		}
		if errors.IsKind(err, errors.KindBusy) {
			t.logger.Warn("borrowed object kept",
				zap.Stringer("handle", h),
				zap.Uint64("package", pkgID))
		}
		if first == nil {
			first = err
		}
	}
	return first
}

// Each iterates over live objects until fn returns false. fn must not call
// back into the table.
func (t *Table) Each(fn func(Handle, Object) bool) {
	t.slots.each(fn)
}

// Len returns the number of live objects.
func (t *Table) Len() int {
	return t.slots.len()
}

// Subscribe adds an observer for lifecycle events.
func (t *Table) Subscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	t.observers = append(t.observers, o)
}

// Unsubscribe removes an observer.
func (t *Table) Unsubscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	for i, obs := range t.observers {
		if obs == o {
			t.observers = append(t.observers[:i], t.observers[i+1:]...)
			return
		}
	}
}

// Close drops every live object and stops accepting inserts.
func (t *Table) Close() error {
	var handles []Handle
	t.slots.each(func(h Handle, _ Object) bool {
		handles = append(handles, h)
		return true
	})
	t.slots.close()

	var first error
	for _, h := range handles {
		if err := t.drop(h, true); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (t *Table) notify(e Event) {
	t.obsMu.RLock()
	defer t.obsMu.RUnlock()
	for _, o := range t.observers {
		o.OnObjectEvent(e)
	}
}
