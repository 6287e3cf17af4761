// Package handle tracks objects a host owns on the far side of the boundary.
//
// Every object a host constructs is inserted into a Table and referred to by
// a Handle. A Handle carries the generation of its slot, so a handle kept
// past Drop is reported as dangling instead of resolving to whatever object
// reuses the slot. Dropping an object runs the destructor registered for its
// type exactly once.
package handle

import (
	"fmt"

	"github.com/wippyai/tangara"
	"github.com/wippyai/tangara/registry"
)

// Handle is an opaque reference to an object in a table.
// Handle 0 is reserved and always invalid.
type Handle uint64

func newHandle(slot, gen uint32) Handle {
	return Handle(uint64(gen)<<32 | uint64(slot))
}

func (h Handle) slot() uint32 { return uint32(h) }
func (h Handle) gen() uint32  { return uint32(h >> 32) }

func (h Handle) String() string {
	if h == 0 {
		return "handle(nil)"
	}
	return fmt.Sprintf("handle(%d@%d)", h.slot(), h.gen())
}

// Object is a live instance together with the functions of its type.
type Object struct {
	Ptr   tangara.Ptr
	Funcs *registry.FuncTable
}

// PackageID returns the ID of the package the object's type belongs to.
func (o Object) PackageID() uint64 {
	if o.Funcs == nil {
		return 0
	}
	return o.Funcs.PackageID()
}

// TypeID returns the ID of the object's type.
func (o Object) TypeID() uint64 {
	if o.Funcs == nil {
		return 0
	}
	return o.Funcs.ID()
}

// EventType is a lifecycle notification kind.
type EventType uint8

const (
	EventCreated EventType = iota
	EventDropped
	EventBorrowed
	EventBorrowReturned
)

func (e EventType) String() string {
	switch e {
	case EventCreated:
		return "created"
	case EventDropped:
		return "dropped"
	case EventBorrowed:
		return "borrowed"
	case EventBorrowReturned:
		return "borrow_returned"
	}
	return fmt.Sprintf("event(%d)", e)
}

// Event is an object lifecycle event.
type Event struct {
	Object Object
	Handle Handle
	Type   EventType
}

// Observer receives notifications about object lifecycle events.
type Observer interface {
	OnObjectEvent(Event)
}
