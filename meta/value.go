package meta

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"
)

// ValueKind tags a Value.
type ValueKind uint8

const (
	ValNull ValueKind = iota
	ValBool
	ValInt8
	ValInt16
	ValInt32
	ValInt64
	ValUint8
	ValUint16
	ValUint32
	ValUint64
	ValFloat32
	ValFloat64
	ValString
	ValArray
	ValTuple
	ValObject
)

var valueKindNames = [...]string{
	"null", "bool",
	"i8", "i16", "i32", "i64",
	"u8", "u16", "u32", "u64",
	"f32", "f64",
	"string", "array", "tuple", "object",
}

func (k ValueKind) String() string {
	if int(k) < len(valueKindNames) {
		return valueKindNames[k]
	}
	return fmt.Sprintf("value_kind(%d)", k)
}

// ParseValueKind parses the String form of a ValueKind.
func ParseValueKind(s string) (ValueKind, error) {
	for i, n := range valueKindNames {
		if s == n {
			return ValueKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown value kind %q", s)
}

// Value is a compile-time constant used for attribute arguments, enum
// discriminants and field defaults. It never holds live object data.
//
// Signed kinds store their payload in Int, unsigned kinds in Uint, floats in
// Float. Array and Tuple use Items; Object uses Fields.
type Value struct {
	Kind   ValueKind
	Bool   bool
	Int    int64
	Uint   uint64
	Float  float64
	Str    string
	Items  []Value
	Fields map[string]Value
}

func Null() Value { return Value{} }
func Bool(v bool) Value { return Value{Kind: ValBool, Bool: v} }
func Int8(v int8) Value { return Value{Kind: ValInt8, Int: int64(v)} }
func Int16(v int16) Value { return Value{Kind: ValInt16, Int: int64(v)} }
func Int32(v int32) Value { return Value{Kind: ValInt32, Int: int64(v)} }
func Int64(v int64) Value { return Value{Kind: ValInt64, Int: v} }
func Uint8(v uint8) Value { return Value{Kind: ValUint8, Uint: uint64(v)} }
func Uint16(v uint16) Value { return Value{Kind: ValUint16, Uint: uint64(v)} }
func Uint32(v uint32) Value { return Value{Kind: ValUint32, Uint: uint64(v)} }
func Uint64(v uint64) Value { return Value{Kind: ValUint64, Uint: v} }
func Float32(v float32) Value { return Value{Kind: ValFloat32, Float: float64(v)} }
func Float64(v float64) Value { return Value{Kind: ValFloat64, Float: v} }
func String(v string) Value { return Value{Kind: ValString, Str: v} }
func Array(items ...Value) Value { return Value{Kind: ValArray, Items: items} }
func TupleValue(items ...Value) Value {
	return Value{Kind: ValTuple, Items: items}
}

// Object returns an object-map constant. The map is not copied.
func Object(fields map[string]Value) Value {
	return Value{Kind: ValObject, Fields: fields}
}

// IsNull reports whether v is the null constant.
func (v Value) IsNull() bool { return v.Kind == ValNull }

// IsSigned reports whether v is a signed integer kind.
func (v Value) IsSigned() bool { return v.Kind >= ValInt8 && v.Kind <= ValInt64 }

// IsUnsigned reports whether v is an unsigned integer kind.
func (v Value) IsUnsigned() bool { return v.Kind >= ValUint8 && v.Kind <= ValUint64 }

// Equal reports deep equality including kind. Float NaNs compare equal to
// each other.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case ValNull:
		return true
	case ValBool:
		return v.Bool == o.Bool
	case ValInt8, ValInt16, ValInt32, ValInt64:
		return v.Int == o.Int
	case ValUint8, ValUint16, ValUint32, ValUint64:
		return v.Uint == o.Uint
	case ValFloat32, ValFloat64:
		return v.Float == o.Float || (math.IsNaN(v.Float) && math.IsNaN(o.Float))
	case ValString:
		return v.Str == o.Str
	case ValArray, ValTuple:
		return slices.EqualFunc(v.Items, o.Items, Value.Equal)
	case ValObject:
		return maps.EqualFunc(v.Fields, o.Fields, Value.Equal)
	}
	return false
}

// Go returns v as a plain Go value: nil, bool, the sized integer or float
// type, string, []any or map[string]any.
func (v Value) Go() any {
	switch v.Kind {
	case ValBool:
		return v.Bool
	case ValInt8:
		return int8(v.Int)
	case ValInt16:
		return int16(v.Int)
	case ValInt32:
		return int32(v.Int)
	case ValInt64:
		return v.Int
	case ValUint8:
		return uint8(v.Uint)
	case ValUint16:
		return uint16(v.Uint)
	case ValUint32:
		return uint32(v.Uint)
	case ValUint64:
		return v.Uint
	case ValFloat32:
		return float32(v.Float)
	case ValFloat64:
		return v.Float
	case ValString:
		return v.Str
	case ValArray, ValTuple:
		out := make([]any, len(v.Items))
		for i, it := range v.Items {
			out[i] = it.Go()
		}
		return out
	case ValObject:
		out := make(map[string]any, len(v.Fields))
		for k, f := range v.Fields {
			out[k] = f.Go()
		}
		return out
	}
	return nil
}

func (v Value) String() string {
	switch v.Kind {
	case ValNull:
		return "null"
	case ValBool:
		return strconv.FormatBool(v.Bool)
	case ValInt8, ValInt16, ValInt32, ValInt64:
		return strconv.FormatInt(v.Int, 10)
	case ValUint8, ValUint16, ValUint32, ValUint64:
		return strconv.FormatUint(v.Uint, 10)
	case ValFloat32:
		return strconv.FormatFloat(v.Float, 'g', -1, 32)
	case ValFloat64:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case ValString:
		return strconv.Quote(v.Str)
	case ValArray, ValTuple:
		open, end := "[", "]"
		if v.Kind == ValTuple {
			open, end = "(", ")"
		}
		parts := make([]string, len(v.Items))
		for i, it := range v.Items {
			parts[i] = it.String()
		}
		return open + strings.Join(parts, ", ") + end
	case ValObject:
		keys := slices.Sorted(maps.Keys(v.Fields))
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + v.Fields[k].String()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return fmt.Sprintf("value(%d)", v.Kind)
}
