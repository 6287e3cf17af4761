package abi

import (
	"sync"

	"github.com/wippyai/tangara"
	"github.com/wippyai/tangara/errors"
)

// Box moves v to a fresh allocation and returns its address. Callees use it
// for every non-object return value.
func Box[T any](v T) tangara.Ptr {
	p := new(T)
	*p = v
	return tangara.Ptr(p)
}

// Owned is a boxed return value the caller has not taken yet. It is either
// pending (holds the allocation) or taken; Take moves it out exactly once.
type Owned[T any] struct {
	mu    sync.Mutex
	p     *T
	taken bool
}

// Own wraps a returned Ptr. The caller becomes responsible for taking it.
func Own[T any](p tangara.Ptr) *Owned[T] {
	return &Owned[T]{p: (*T)(p)}
}

// Null reports whether the callee returned nil.
func (o *Owned[T]) Null() bool {
	return o.p == nil && !o.taken
}

// Take moves the value out and drops the allocation. A nil allocation is
// errors.KindNullResult; a second Take is errors.KindOwnership.
func (o *Owned[T]) Take() (T, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	var zero T
	if o.taken {
		return zero, errors.New(errors.PhaseCall, errors.KindOwnership).
			Detail("boxed value already taken").
			Build()
	}
	if o.p == nil {
		return zero, errors.NullResult(nil, "")
	}
	v := *o.p
	o.p = nil
	o.taken = true
	return v, nil
}

// Unbox takes a boxed return value.
func Unbox[T any](p tangara.Ptr) (T, error) {
	return Own[T](p).Take()
}

// MustBeNull checks the result of an operation declared to return nothing.
func MustBeNull(p tangara.Ptr) error {
	if p != nil {
		return errors.New(errors.PhaseCall, errors.KindInvalidData).
			Detail("operation declared without a result returned %p", p).
			Build()
	}
	return nil
}

// Object checks an object-valued result. Objects are returned as their own
// address, not boxed.
func Object(p tangara.Ptr) (tangara.Ptr, error) {
	if p == nil {
		return nil, errors.NullResult(nil, "")
	}
	return p, nil
}
