package abi

import (
	"fortio.org/safecast"

	"github.com/wippyai/tangara/errors"
	"github.com/wippyai/tangara/meta"
)

// Info is the native layout of a TypeRef.
type Info struct {
	Prim  Prim
	Size  uintptr
	Align uintptr
	// Object is set when the slot references an instance of a package type.
	Object *meta.Type
	// Enum is set when the slot holds an enum discriminant.
	Enum *meta.Type
	// Items are the tuple item layouts, at their aligned offsets.
	Items   []Info
	Offsets []uintptr
}

// Resolver finds the package type a named reference points to.
// *meta.Package implements it.
type Resolver interface {
	Resolve(ref meta.TypeRef) (*meta.Type, bool)
}

// Calculator computes native layouts. It caches by structural bytes and is
// not safe for concurrent use.
type Calculator struct {
	res   Resolver
	cache map[string]Info
}

// NewCalculator returns a calculator resolving names through res, which may
// be nil when only primitives are expected.
func NewCalculator(res Resolver) *Calculator {
	return &Calculator{
		res:   res,
		cache: make(map[string]Info),
	}
}

// Calculate returns the layout of t. Generic references have no native
// layout and fail with errors.KindUnsupported; unknown names fail with
// errors.KindNotFound.
func (c *Calculator) Calculate(t meta.TypeRef) (Info, error) {
	key := string(t.AppendShape(nil))
	if cached, ok := c.cache[key]; ok {
		return cached, nil
	}
	info, err := c.calculate(t, 0)
	if err != nil {
		return Info{}, err
	}
	c.cache[key] = info
	return info, nil
}

// aliases deeper than this are treated as cycles
const maxAliasDepth = 32

func (c *Calculator) calculate(t meta.TypeRef, depth int) (Info, error) {
	switch t.Kind {
	case meta.RefName, meta.RefID:
		if t.Kind == meta.RefName {
			if p, ok := Primitive(t.Name); ok {
				return primLayout(p), nil
			}
		}
		return c.calculateNamed(t, depth)
	case meta.RefTuple:
		return c.calculateTuple(t.Args, depth)
	case meta.RefFn:
		return primLayout(PrimFunc), nil
	case meta.RefGeneric:
		return Info{}, errors.New(errors.PhaseEncode, errors.KindUnsupported).
			MetaType(t.String()).
			Detail("generic types have no native layout").
			Build()
	}
	return Info{}, errors.Unsupported(errors.PhaseEncode, "type reference kind")
}

func (c *Calculator) calculateNamed(t meta.TypeRef, depth int) (Info, error) {
	if c.res == nil {
		return Info{}, errors.NotFound(errors.PhaseEncode, "type", t.String())
	}
	typ, ok := c.res.Resolve(t)
	if !ok {
		return Info{}, errors.NotFound(errors.PhaseEncode, "type", t.String())
	}
	switch k := typ.Kind.(type) {
	case *meta.Enum:
		info := primLayout(PrimInt32)
		if len(k.Variants) > 0 {
			info = primLayout(valuePrim(k.Variants[0].Value))
		}
		info.Enum = typ
		return info, nil
	case *meta.TypeAlias:
		if depth >= maxAliasDepth {
			return Info{}, errors.New(errors.PhaseEncode, errors.KindInvalidData).
				MetaType(t.String()).
				Detail("alias chain too deep").
				Build()
		}
		return c.calculate(k.Target, depth+1)
	default:
		info := primLayout(PrimPtr)
		info.Object = typ
		return info, nil
	}
}

func (c *Calculator) calculateTuple(items []meta.TypeRef, depth int) (Info, error) {
	if len(items) == 0 {
		return Info{Prim: PrimTuple, Size: 0, Align: 1}, nil
	}

	info := Info{Prim: PrimTuple, Align: 1}
	offset := uintptr(0)
	for _, it := range items {
		item, err := c.calculate(it, depth)
		if err != nil {
			return Info{}, err
		}
		offset = alignTo(offset, item.Align)
		info.Offsets = append(info.Offsets, offset)
		info.Items = append(info.Items, item)
		if item.Align > info.Align {
			info.Align = item.Align
		}
		offset += item.Size
	}
	info.Size = alignTo(offset, info.Align)
	return info, nil
}

// Frame is the packed layout of one call's argument buffer.
type Frame struct {
	Size    int
	Offsets []int
	Slots   []Info
}

// Frame lays out a call: an optional receiver then each argument in order,
// packed without padding. By-reference arguments occupy a pointer slot.
func (c *Calculator) Frame(receiver bool, args []meta.Argument) (Frame, error) {
	var f Frame
	offset := uintptr(0)
	if receiver {
		ptr := primLayout(PrimPtr)
		f.Offsets = append(f.Offsets, 0)
		f.Slots = append(f.Slots, ptr)
		offset += ptr.Size
	}
	for _, a := range args {
		slot, err := c.Calculate(a.Type)
		if err != nil {
			return Frame{}, err
		}
		if a.Kind.Indirect() {
			slot = Info{Prim: PrimPtr, Size: primTable[PrimPtr].size, Align: primTable[PrimPtr].align, Items: []Info{slot}}
		}
		off, err := safecast.Conv[int](offset)
		if err != nil {
			return Frame{}, errors.Overflow(errors.PhaseEncode, []string{a.Name}, offset, "int")
		}
		f.Offsets = append(f.Offsets, off)
		f.Slots = append(f.Slots, slot)
		offset += slot.Size
	}
	size, err := safecast.Conv[int](offset)
	if err != nil {
		return Frame{}, errors.Overflow(errors.PhaseEncode, nil, offset, "int")
	}
	f.Size = size
	return f, nil
}

func primLayout(p Prim) Info {
	pi := primTable[p]
	return Info{Prim: p, Size: pi.size, Align: pi.align}
}

func valuePrim(v meta.Value) Prim {
	switch v.Kind {
	case meta.ValInt8:
		return PrimInt8
	case meta.ValInt16:
		return PrimInt16
	case meta.ValInt64:
		return PrimInt64
	case meta.ValUint8:
		return PrimUint8
	case meta.ValUint16:
		return PrimUint16
	case meta.ValUint32:
		return PrimUint32
	case meta.ValUint64:
		return PrimUint64
	}
	return PrimInt32
}

func alignTo(offset, align uintptr) uintptr {
	if align <= 1 {
		return offset
	}
	return (offset + align - 1) &^ (align - 1)
}
