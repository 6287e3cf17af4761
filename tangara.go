package tangara

import "unsafe"

// Ptr is an untyped raw address crossing the boundary. nil is the null Ptr.
// A Ptr does not own what it points to unless a protocol rule says so.
type Ptr = unsafe.Pointer

// Fn is the shape of constructors and methods. args is the packed argument
// buffer; when the call has a receiver its pointer is the first slot.
// The result is nil for operations that produce nothing, otherwise the
// address of a callee allocation now owned by the caller.
type Fn func(args []byte) Ptr

// DtorFn destroys an object created by a constructor of the same type.
type DtorFn func(this Ptr)

// GetterFn reads a property or field of this. The result is owned by the
// caller.
type GetterFn func(this Ptr) Ptr

// SetterFn writes a property or field of this. value points to caller
// storage and is only read.
type SetterFn func(this, value Ptr)

// StaticGetterFn reads a static property or field.
type StaticGetterFn func() Ptr

// StaticSetterFn writes a static property or field.
type StaticSetterFn func(value Ptr)

// EntrySymbol is the name a plugin library exports its entry point under.
// The symbol must be a func(*registry.Context).
const EntrySymbol = "TgLoad"
