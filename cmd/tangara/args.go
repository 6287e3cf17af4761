package main

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/wippyai/tangara/abi"
	"github.com/wippyai/tangara/meta"
)

// argParser turns command-line strings into values typed for a slot.
type argParser struct {
	calc *abi.Calculator
}

func newArgParser(pkg *meta.Package) *argParser {
	return &argParser{calc: abi.NewCalculator(pkg)}
}

// parse converts raw to arguments for params. Trailing defaulted params may
// be omitted. Indirect params are passed as pointers so out values can be
// read back after the call.
func (p *argParser) parse(params []meta.Argument, raw []string) ([]any, error) {
	if len(raw) > len(params) {
		return nil, fmt.Errorf("too many arguments: got %d, want at most %d", len(raw), len(params))
	}
	out := make([]any, 0, len(raw))
	for i, s := range raw {
		a := params[i]
		if a.Kind.Mode == meta.ByOut && s == "" {
			s = "0"
		}
		v, err := p.value(a.Type, s)
		if err != nil {
			return nil, fmt.Errorf("argument %s: %w", a.Name, err)
		}
		if a.Kind.Indirect() {
			ptr := reflect.New(reflect.TypeOf(v))
			ptr.Elem().Set(reflect.ValueOf(v))
			v = ptr.Interface()
		}
		out = append(out, v)
	}
	return out, nil
}

func (p *argParser) value(t meta.TypeRef, s string) (any, error) {
	info, err := p.calc.Calculate(t)
	if err != nil {
		return nil, err
	}
	if info.Enum != nil {
		if e, ok := info.Enum.Kind.(*meta.Enum); ok {
			for _, v := range e.Variants {
				if v.Name == s {
					s = v.Value.String()
					break
				}
			}
		}
	}
	return parsePrim(info.Prim, s)
}

func parsePrim(prim abi.Prim, s string) (any, error) {
	switch prim {
	case abi.PrimBool:
		return strconv.ParseBool(s)
	case abi.PrimInt8:
		v, err := strconv.ParseInt(s, 0, 8)
		return int8(v), err
	case abi.PrimInt16:
		v, err := strconv.ParseInt(s, 0, 16)
		return int16(v), err
	case abi.PrimInt32:
		v, err := strconv.ParseInt(s, 0, 32)
		return int32(v), err
	case abi.PrimInt64:
		return strconv.ParseInt(s, 0, 64)
	case abi.PrimInt:
		v, err := strconv.ParseInt(s, 0, strconv.IntSize)
		return int(v), err
	case abi.PrimUint8:
		v, err := strconv.ParseUint(s, 0, 8)
		return uint8(v), err
	case abi.PrimUint16:
		v, err := strconv.ParseUint(s, 0, 16)
		return uint16(v), err
	case abi.PrimUint32:
		v, err := strconv.ParseUint(s, 0, 32)
		return uint32(v), err
	case abi.PrimUint64:
		return strconv.ParseUint(s, 0, 64)
	case abi.PrimUint:
		v, err := strconv.ParseUint(s, 0, strconv.IntSize)
		return uint(v), err
	case abi.PrimFloat32:
		v, err := strconv.ParseFloat(s, 32)
		return float32(v), err
	case abi.PrimFloat64:
		return strconv.ParseFloat(s, 64)
	case abi.PrimString:
		return s, nil
	}
	return nil, fmt.Errorf("%s values cannot be given on the command line", prim)
}

// deref replaces pointers created by parse with what they point to.
func deref(args []any) []any {
	out := make([]any, len(args))
	for i, a := range args {
		rv := reflect.ValueOf(a)
		if rv.Kind() == reflect.Pointer && !rv.IsNil() {
			out[i] = rv.Elem().Interface()
			continue
		}
		out[i] = a
	}
	return out
}
