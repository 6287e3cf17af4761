package abi

import (
	"reflect"
	"sync"
	"unsafe"

	"github.com/wippyai/tangara"
	"github.com/wippyai/tangara/errors"
)

// SizeOf returns the native size of T in bytes.
func SizeOf[T any]() int {
	var v T
	return int(unsafe.Sizeof(v))
}

// Writer packs arguments into a buffer. Strings and pointers written to it
// are kept reachable until Release, so the callee always sees live memory.
type Writer struct {
	buf  []byte
	keep []any
}

var writerPool = sync.Pool{
	New: func() any {
		return &Writer{buf: make([]byte, 0, 64), keep: make([]any, 0, 4)}
	},
}

const maxPooledWriterCapacity = 4096

// NewWriter returns a pooled writer with room for size bytes.
func NewWriter(size int) *Writer {
	w := writerPool.Get().(*Writer)
	if cap(w.buf) < size {
		w.buf = make([]byte, 0, size)
	}
	return w
}

// Release returns the writer to the pool. The buffer returned by Bytes is
// invalid afterwards.
func (w *Writer) Release() {
	clear(w.keep)
	w.keep = w.keep[:0]
	w.buf = w.buf[:0]
	// only pool small buffers to prevent memory bloat
	if cap(w.buf) > maxPooledWriterCapacity {
		return
	}
	writerPool.Put(w)
}

// Bytes returns the packed buffer.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes written.
func (w *Writer) Len() int {
	return len(w.buf)
}

// PutThis writes the receiver slot.
func (w *Writer) PutThis(this tangara.Ptr) {
	w.PutRef(this)
}

// PutRef writes a pointer to caller storage, for Out, Ref and In arguments
// and for object references.
func (w *Writer) PutRef(p unsafe.Pointer) {
	Put(w, p)
}

// PutBytes appends size bytes read from p and keeps p reachable. It packs
// values whose type is only known at run time.
func (w *Writer) PutBytes(p unsafe.Pointer, size uintptr) {
	if size == 0 {
		return
	}
	w.buf = append(w.buf, unsafe.Slice((*byte)(p), size)...)
	w.keep = append(w.keep, p)
}

// Put appends the native bytes of v.
func Put[T any](w *Writer, v T) {
	n := unsafe.Sizeof(v)
	if n > 0 {
		w.buf = append(w.buf, unsafe.Slice((*byte)(unsafe.Pointer(&v)), n)...)
	}
	if holdsPointers(reflect.TypeFor[T]()) {
		w.keep = append(w.keep, v)
	}
}

// holdsPointers reports whether a value of t can reference memory the
// collector tracks.
func holdsPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.UnsafePointer, reflect.String, reflect.Slice,
		reflect.Map, reflect.Chan, reflect.Func, reflect.Interface:
		return true
	case reflect.Array:
		return t.Len() > 0 && holdsPointers(t.Elem())
	case reflect.Struct:
		for i := range t.NumField() {
			if holdsPointers(t.Field(i).Type) {
				return true
			}
		}
	}
	return false
}

// Call invokes fn with the packed buffer and releases w once fn returns.
func Call(fn tangara.Fn, w *Writer) tangara.Ptr {
	defer w.Release()
	return fn(w.Bytes())
}

// Reader unpacks an argument buffer in declaration order.
type Reader struct {
	buf []byte
	off int
}

// NewReader reads args from the start.
func NewReader(args []byte) *Reader {
	return &Reader{buf: args}
}

// This reads the receiver slot.
func (r *Reader) This() tangara.Ptr {
	return Get[tangara.Ptr](r)
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.off
}

// Get reads the next slot as a T. Reading past the end of the buffer means
// caller and callee disagree on the frame; it panics with an
// errors.KindOutOfBounds error since the boundary has no error channel.
func Get[T any](r *Reader) T {
	var v T
	n := int(unsafe.Sizeof(v))
	if r.off+n > len(r.buf) {
		panic(errors.New(errors.PhaseDecode, errors.KindOutOfBounds).
			Detail("slot of %d bytes at offset %d exceeds buffer of %d", n, r.off, len(r.buf)).
			Build())
	}
	if n > 0 {
		copy(unsafe.Slice((*byte)(unsafe.Pointer(&v)), n), r.buf[r.off:r.off+n])
	}
	r.off += n
	return v
}

// GetRef reads a by-reference slot as a pointer to caller storage.
func GetRef[T any](r *Reader) *T {
	return (*T)(Get[unsafe.Pointer](r))
}
