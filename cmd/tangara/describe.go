package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wippyai/tangara/meta"
)

type entryKind int

const (
	entryCtor entryKind = iota
	entryMethod
	entryStaticMethod
	entryProperty
	entryField
	entryStaticProperty
	entryStaticField
	entryVariant
)

var entryKindNames = [...]string{
	entryCtor:           "new",
	entryMethod:         "method",
	entryStaticMethod:   "static",
	entryProperty:       "property",
	entryField:          "field",
	entryStaticProperty: "static property",
	entryStaticField:    "static field",
	entryVariant:        "variant",
}

func (k entryKind) String() string { return entryKindNames[k] }

// entry is one member of a type as shown by inspect.
type entry struct {
	typ        *meta.Type
	kind       entryKind
	name       string
	id         uint64
	ctor       int
	args       []meta.Argument
	ret        *meta.TypeRef
	valueType  meta.TypeRef
	visibility meta.Visibility
	readOnly   bool
	value      string
}

// callable reports whether the entry can be invoked without an instance.
func (e entry) callable() bool {
	switch e.kind {
	case entryCtor, entryStaticMethod, entryStaticProperty, entryStaticField:
		return e.visibility == meta.Public
	}
	return false
}

func (e entry) signature() string {
	switch e.kind {
	case entryCtor:
		return "new#" + strconv.Itoa(e.ctor) + "(" + formatArgs(e.args) + ")"
	case entryMethod, entryStaticMethod:
		s := e.name + "(" + formatArgs(e.args) + ")"
		if e.ret != nil {
			s += " -> " + e.ret.String()
		}
		return s
	case entryVariant:
		return e.name + " = " + e.value
	}
	s := e.name + ": " + e.valueType.String()
	if e.readOnly {
		s += " (read-only)"
	}
	return s
}

func formatArgs(args []meta.Argument) string {
	parts := make([]string, len(args))
	for i, a := range args {
		var b strings.Builder
		if a.Kind.Indirect() {
			b.WriteString(a.Kind.Mode.String())
			b.WriteByte(' ')
		}
		b.WriteString(a.Name)
		b.WriteString(": ")
		b.WriteString(a.Type.String())
		if a.Kind.Mode == meta.ByDefaultValue {
			b.WriteString(" = ")
			b.WriteString(a.Kind.Default.String())
		}
		parts[i] = b.String()
	}
	return strings.Join(parts, ", ")
}

// entries lists the members of t in declaration order.
func entries(t *meta.Type) []entry {
	var out []entry
	for _, c := range t.Constructors() {
		out = append(out, entry{typ: t, kind: entryCtor, name: "new", ctor: c.Index, args: c.Args, visibility: c.Visibility})
	}
	for _, m := range t.Methods() {
		kind := entryMethod
		if !m.Kind.HasReceiver() {
			kind = entryStaticMethod
		}
		out = append(out, entry{typ: t, kind: kind, name: m.Name, id: m.ID, args: m.Args, ret: m.Return, visibility: m.Visibility})
	}
	for _, p := range t.Properties() {
		out = append(out, propEntry(t, entryProperty, p))
	}
	for _, f := range t.Fields() {
		out = append(out, propEntry(t, entryField, f.AsProperty()))
	}
	for _, p := range t.StaticProperties() {
		out = append(out, propEntry(t, entryStaticProperty, p))
	}
	for _, f := range t.StaticFields() {
		out = append(out, propEntry(t, entryStaticField, f.AsProperty()))
	}
	if e, ok := t.Kind.(*meta.Enum); ok {
		for _, v := range e.Variants {
			out = append(out, entry{typ: t, kind: entryVariant, name: v.Name, id: v.ID, value: v.Value.String()})
		}
	}
	return out
}

func propEntry(t *meta.Type, kind entryKind, p meta.Property) entry {
	return entry{
		typ:        t,
		kind:       kind,
		name:       p.Name,
		id:         p.ID,
		valueType:  p.Type,
		visibility: p.Getter,
		readOnly:   p.ReadOnly(),
	}
}

func typeHeader(t *meta.Type) string {
	s := t.Kind.KindName() + " " + t.FullName()
	if len(t.Generics) > 0 {
		names := make([]string, len(t.Generics))
		for i, g := range t.Generics {
			names[i] = g.Name
		}
		s += "<" + strings.Join(names, ", ") + ">"
	}
	if alias, ok := t.Kind.(*meta.TypeAlias); ok {
		s += " = " + alias.Target.String()
	}
	return s
}

func hexID(id uint64) string {
	return fmt.Sprintf("0x%016x", id)
}
