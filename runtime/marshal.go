package runtime

import (
	"fmt"
	"math"
	"reflect"
	"slices"
	"unsafe"

	"fortio.org/safecast"

	"github.com/wippyai/tangara"
	"github.com/wippyai/tangara/abi"
	"github.com/wippyai/tangara/errors"
	"github.com/wippyai/tangara/meta"
)

func typeName(v any) string {
	return fmt.Sprintf("%T", v)
}

// encode stores v in a fresh allocation laid out as info.
func (m *Module) encode(path []string, info abi.Info, v any) (unsafe.Pointer, error) {
	switch info.Prim {
	case abi.PrimBool:
		b, ok := v.(bool)
		if !ok {
			return nil, mismatch(path, v, info)
		}
		return abi.Box(b), nil
	case abi.PrimInt8:
		return boxInt[int8](path, info, v)
	case abi.PrimInt16:
		return boxInt[int16](path, info, v)
	case abi.PrimInt32:
		return boxInt[int32](path, info, v)
	case abi.PrimInt64:
		return boxInt[int64](path, info, v)
	case abi.PrimInt:
		return boxInt[int](path, info, v)
	case abi.PrimUint8:
		return boxInt[uint8](path, info, v)
	case abi.PrimUint16:
		return boxInt[uint16](path, info, v)
	case abi.PrimUint32:
		return boxInt[uint32](path, info, v)
	case abi.PrimUint64:
		return boxInt[uint64](path, info, v)
	case abi.PrimUint:
		return boxInt[uint](path, info, v)
	case abi.PrimUintptr:
		return boxInt[uintptr](path, info, v)
	case abi.PrimFloat32:
		f, err := toFloat(path, info, v)
		if err != nil {
			return nil, err
		}
		if math.Abs(f) > math.MaxFloat32 && !math.IsInf(f, 0) {
			return nil, errors.Overflow(errors.PhaseEncode, path, v, info.Prim.GoType())
		}
		return abi.Box(float32(f)), nil
	case abi.PrimFloat64:
		f, err := toFloat(path, info, v)
		if err != nil {
			return nil, err
		}
		return abi.Box(f), nil
	case abi.PrimString:
		s, ok := v.(string)
		if !ok {
			return nil, mismatch(path, v, info)
		}
		return abi.Box(s), nil
	case abi.PrimPtr:
		p, err := m.pointer(path, info, v)
		if err != nil {
			return nil, err
		}
		return abi.Box(p), nil
	}
	return nil, errors.New(errors.PhaseEncode, errors.KindUnsupported).
		Path(path...).
		Detail("%s values cannot be passed dynamically", info.Prim).
		Build()
}

// put packs one argument slot.
func (m *Module) put(w *abi.Writer, path []string, slot abi.Info, indirect bool, v any) error {
	if indirect {
		p, err := reference(path, slot.Items[0], v)
		if err != nil {
			return err
		}
		w.PutRef(p)
		return nil
	}
	if slot.Prim == abi.PrimPtr {
		p, err := m.pointer(path, slot, v)
		if err != nil {
			return err
		}
		w.PutRef(p)
		return nil
	}
	p, err := m.encode(path, slot, v)
	if err != nil {
		return err
	}
	w.PutBytes(p, slot.Size)
	return nil
}

// pointer accepts an *Object for object slots, or a raw Ptr.
func (m *Module) pointer(path []string, info abi.Info, v any) (tangara.Ptr, error) {
	switch p := v.(type) {
	case nil:
		return nil, nil
	case *Object:
		if info.Object != nil && p.typ.ID != info.Object.ID && !m.implements(p.typ, info.Object) {
			return nil, errors.TypeMismatch(errors.PhaseEncode, path, p.typ.FullName(), info.Object.FullName())
		}
		return p.ptr()
	case tangara.Ptr:
		return p, nil
	}
	return nil, mismatch(path, v, info)
}

// reference accepts a Go pointer whose element has the slot's size.
func reference(path []string, info abi.Info, v any) (unsafe.Pointer, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return nil, errors.New(errors.PhaseEncode, errors.KindTypeMismatch).
			Path(path...).
			GoType(typeName(v)).
			Detail("by-reference argument needs a non-nil pointer").
			Build()
	}
	if rv.Type().Elem().Size() != info.Size {
		return nil, errors.TypeMismatch(errors.PhaseEncode, path, typeName(v), info.Prim.GoType())
	}
	return rv.UnsafePointer(), nil
}

// decode reads a value laid out as info at p.
func (m *Module) decode(p unsafe.Pointer, info abi.Info) (any, error) {
	switch info.Prim {
	case abi.PrimBool:
		return *(*bool)(p), nil
	case abi.PrimInt8:
		return *(*int8)(p), nil
	case abi.PrimInt16:
		return *(*int16)(p), nil
	case abi.PrimInt32:
		return *(*int32)(p), nil
	case abi.PrimInt64:
		return *(*int64)(p), nil
	case abi.PrimInt:
		return *(*int)(p), nil
	case abi.PrimUint8:
		return *(*uint8)(p), nil
	case abi.PrimUint16:
		return *(*uint16)(p), nil
	case abi.PrimUint32:
		return *(*uint32)(p), nil
	case abi.PrimUint64:
		return *(*uint64)(p), nil
	case abi.PrimUint:
		return *(*uint)(p), nil
	case abi.PrimUintptr:
		return *(*uintptr)(p), nil
	case abi.PrimFloat32:
		return *(*float32)(p), nil
	case abi.PrimFloat64:
		return *(*float64)(p), nil
	case abi.PrimString:
		return *(*string)(p), nil
	case abi.PrimPtr:
		return *(*tangara.Ptr)(p), nil
	case abi.PrimTuple:
		items := make([]any, len(info.Items))
		for i, it := range info.Items {
			v, err := m.decode(unsafe.Add(p, info.Offsets[i]), it)
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
		return items, nil
	}
	return nil, errors.New(errors.PhaseDecode, errors.KindUnsupported).
		Detail("%s values cannot be returned dynamically", info.Prim).
		Build()
}

func boxInt[T safecast.Integer](path []string, info abi.Info, v any) (unsafe.Pointer, error) {
	rv := reflect.ValueOf(v)
	var out T
	var err error
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		out, err = safecast.Conv[T](rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		out, err = safecast.Conv[T](rv.Uint())
	default:
		return nil, mismatch(path, v, info)
	}
	if err != nil {
		return nil, errors.Overflow(errors.PhaseEncode, path, v, info.Prim.GoType())
	}
	return abi.Box(out), nil
}

func toFloat(path []string, info abi.Info, v any) (float64, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		f, err := safecast.Convert[float64](rv.Int())
		if err != nil {
			return 0, errors.Overflow(errors.PhaseEncode, path, v, info.Prim.GoType())
		}
		return f, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		f, err := safecast.Convert[float64](rv.Uint())
		if err != nil {
			return 0, errors.Overflow(errors.PhaseEncode, path, v, info.Prim.GoType())
		}
		return f, nil
	}
	return 0, mismatch(path, v, info)
}

func mismatch(path []string, v any, info abi.Info) error {
	want := info.Prim.GoType()
	if info.Object != nil {
		want = info.Object.FullName()
	}
	return errors.TypeMismatch(errors.PhaseEncode, path, typeName(v), want)
}

// defaults fills omitted trailing arguments from their declared defaults.
func defaults(path []string, args []meta.Argument, given []any) ([]any, error) {
	if len(given) > len(args) {
		return nil, errors.New(errors.PhaseEncode, errors.KindInvalidInput).
			Path(path...).
			Detail("got %d arguments, want at most %d", len(given), len(args)).
			Build()
	}
	out := slices.Clone(given)
	for _, a := range args[len(given):] {
		if a.Kind.Mode != meta.ByDefaultValue {
			return nil, errors.New(errors.PhaseEncode, errors.KindInvalidInput).
				Path(slices.Concat(path, []string{a.Name})...).
				Detail("missing argument without default").
				Build()
		}
		out = append(out, a.Kind.Default.Go())
	}
	return out, nil
}
