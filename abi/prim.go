package abi

import (
	"fmt"
	"unsafe"
)

// Prim is the Go representation of a slot.
type Prim uint8

const (
	PrimInvalid Prim = iota
	PrimBool
	PrimInt8
	PrimInt16
	PrimInt32
	PrimInt64
	PrimInt
	PrimUint8
	PrimUint16
	PrimUint32
	PrimUint64
	PrimUint
	PrimUintptr
	PrimFloat32
	PrimFloat64
	PrimString
	PrimPtr   // object reference or raw pointer
	PrimFunc  // Go func value
	PrimTuple // anonymous struct of its items
)

type primInfo struct {
	name   string
	goType string
	size   uintptr
	align  uintptr
}

var primTable = [...]primInfo{
	PrimInvalid: {"invalid", "", 0, 1},
	PrimBool:    {"bool", "bool", unsafe.Sizeof(false), unsafe.Alignof(false)},
	PrimInt8:    {"int8", "int8", 1, 1},
	PrimInt16:   {"int16", "int16", 2, 2},
	PrimInt32:   {"int32", "int32", 4, 4},
	PrimInt64:   {"int64", "int64", 8, unsafe.Alignof(int64(0))},
	PrimInt:     {"int", "int", unsafe.Sizeof(int(0)), unsafe.Alignof(int(0))},
	PrimUint8:   {"uint8", "uint8", 1, 1},
	PrimUint16:  {"uint16", "uint16", 2, 2},
	PrimUint32:  {"uint32", "uint32", 4, 4},
	PrimUint64:  {"uint64", "uint64", 8, unsafe.Alignof(uint64(0))},
	PrimUint:    {"uint", "uint", unsafe.Sizeof(uint(0)), unsafe.Alignof(uint(0))},
	PrimUintptr: {"uintptr", "uintptr", unsafe.Sizeof(uintptr(0)), unsafe.Alignof(uintptr(0))},
	PrimFloat32: {"float32", "float32", 4, 4},
	PrimFloat64: {"float64", "float64", 8, unsafe.Alignof(float64(0))},
	PrimString:  {"string", "string", unsafe.Sizeof(""), unsafe.Alignof("")},
	PrimPtr:     {"ptr", "tangara.Ptr", unsafe.Sizeof(unsafe.Pointer(nil)), unsafe.Alignof(unsafe.Pointer(nil))},
	PrimFunc:    {"func", "func()", unsafe.Sizeof(func() {}), unsafe.Alignof(func() {})},
	PrimTuple:   {"tuple", "struct{}", 0, 1},
}

func (p Prim) String() string {
	if int(p) < len(primTable) {
		return primTable[p].name
	}
	return fmt.Sprintf("prim(%d)", p)
}

// GoType returns the Go spelling of the slot type. Object references are
// spelled tangara.Ptr.
func (p Prim) GoType() string {
	if int(p) < len(primTable) {
		return primTable[p].goType
	}
	return ""
}

// Scalar reports whether the slot holds a plain value with no pointers.
func (p Prim) Scalar() bool {
	return p >= PrimBool && p <= PrimFloat64
}

// primitives maps metadata type names to slot representations. Both the
// language-neutral names and the Go spellings are accepted.
var primitives = map[string]Prim{
	"Bool":   PrimBool,
	"SByte":  PrimInt8,
	"Short":  PrimInt16,
	"Int":    PrimInt32,
	"Long":   PrimInt64,
	"NInt":   PrimInt,
	"Byte":   PrimUint8,
	"UShort": PrimUint16,
	"UInt":   PrimUint32,
	"ULong":  PrimUint64,
	"NUInt":  PrimUint,
	"Float":  PrimFloat32,
	"Double": PrimFloat64,
	"Char":   PrimInt32,
	"String": PrimString,
	"Ptr":    PrimPtr,

	"bool":           PrimBool,
	"int8":           PrimInt8,
	"int16":          PrimInt16,
	"int32":          PrimInt32,
	"rune":           PrimInt32,
	"int64":          PrimInt64,
	"int":            PrimInt,
	"uint8":          PrimUint8,
	"byte":           PrimUint8,
	"uint16":         PrimUint16,
	"uint32":         PrimUint32,
	"uint64":         PrimUint64,
	"uint":           PrimUint,
	"uintptr":        PrimUintptr,
	"float32":        PrimFloat32,
	"float64":        PrimFloat64,
	"string":         PrimString,
	"unsafe.Pointer": PrimPtr,
}

// Primitive looks up a primitive type name.
func Primitive(name string) (Prim, bool) {
	p, ok := primitives[name]
	return p, ok
}
