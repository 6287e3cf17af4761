// Package abi implements the boundary calling convention.
//
// Arguments travel in one flat buffer built with a Writer and read back with
// a Reader in the same declared order. Each slot is the argument's native
// in-memory bytes with no padding and no type tag:
//
//	w := abi.NewWriter(abi.SizeOf[tangara.Ptr]() + abi.SizeOf[uint32]())
//	w.PutThis(this)
//	abi.Put(w, uint32(5))
//	res := abi.Call(fn, w)          // releases w after fn returns
//
//	// callee
//	r := abi.NewReader(args)
//	this := (*MyStruct)(r.This())
//	times := abi.Get[uint32](r)
//
// By-reference arguments put a pointer to caller storage in the slot (PutRef)
// and the callee reads or writes through it (GetRef).
//
// Results are boxed by the callee (Box) and taken exactly once by the caller
// (Owned.Take, Unbox). A nil result for a value-producing call is reported
// as errors.KindNullResult.
//
// The Calculator gives the native size and Go representation of a TypeRef,
// which the generator and the dynamic invoker use to lay out frames.
package abi
