package builder

import (
	"github.com/wippyai/tangara/errors"
	"github.com/wippyai/tangara/identity"
	"github.com/wippyai/tangara/meta"
)

// parent is implemented by every builder that owns members.
type parent interface {
	fail(err error)
	path(member ...string) []string
	defaults() Defaults
}

type constructorParent interface {
	parent
	addConstructor(c meta.Constructor)
}

type methodParent interface {
	parent
	defaultMethodKind() meta.MethodKind
	addMethod(m meta.Method)
}

type propertyParent interface {
	parent
	addProperty(p meta.Property, static bool)
}

type fieldParent interface {
	parent
	addField(f meta.Field, static bool)
}

// argList accumulates arguments and checks their ordering rules.
type argList struct {
	args []meta.Argument
	err  error
}

func (l *argList) add(path []string, t meta.TypeRef, name string, kind meta.ArgumentKind, attrs []meta.Attribute) {
	if l.err != nil {
		return
	}
	for _, a := range l.args {
		if a.Name == name {
			l.err = errors.BuildInvariant(path, "duplicate argument %q", name)
			return
		}
		if a.Kind.Mode == meta.ByDefaultValue && kind.Mode != meta.ByDefaultValue {
			l.err = errors.BuildInvariant(path, "argument %q follows defaulted argument %q", name, a.Name)
			return
		}
	}
	l.args = append(l.args, meta.Argument{
		Attributes: attrs,
		Type:       t,
		Name:       name,
		Kind:       kind,
	})
}

// ConstructorBuilder builds one constructor.
type ConstructorBuilder[P constructorParent] struct {
	parent P
	c      meta.Constructor
	args   argList
}

func newConstructor[P constructorParent](p P) *ConstructorBuilder[P] {
	return &ConstructorBuilder[P]{
		parent: p,
		c:      meta.Constructor{Visibility: p.defaults().Constructor},
	}
}

// Arg appends a by-value argument.
func (b *ConstructorBuilder[P]) Arg(t meta.TypeRef, name string) *ConstructorBuilder[P] {
	return b.ArgWith(t, name, meta.ArgDefault)
}

// ArgWith appends an argument with an explicit passing mode.
func (b *ConstructorBuilder[P]) ArgWith(t meta.TypeRef, name string, kind meta.ArgumentKind, attrs ...meta.Attribute) *ConstructorBuilder[P] {
	b.args.add(b.parent.path("ctor", name), t, name, kind, attrs)
	return b
}

// Visibility overrides the package default.
func (b *ConstructorBuilder[P]) Visibility(v meta.Visibility) *ConstructorBuilder[P] {
	b.c.Visibility = v
	return b
}

// Attribute attaches a constructor attribute.
func (b *ConstructorBuilder[P]) Attribute(t meta.TypeRef, args ...meta.Value) *ConstructorBuilder[P] {
	b.c.Attributes = append(b.c.Attributes, meta.Attr(t, args...))
	return b
}

// Build appends the constructor to its parent.
func (b *ConstructorBuilder[P]) Build() P {
	if b.args.err != nil {
		b.parent.fail(b.args.err)
		return b.parent
	}
	b.c.Args = b.args.args
	b.parent.addConstructor(b.c)
	return b.parent
}

// MethodBuilder builds one method.
type MethodBuilder[P methodParent] struct {
	parent P
	m      meta.Method
	args   argList
}

func newMethod[P methodParent](p P, name string) *MethodBuilder[P] {
	b := &MethodBuilder[P]{
		parent: p,
		m: meta.Method{
			Name:       name,
			Visibility: p.defaults().Method,
			Kind:       p.defaultMethodKind(),
		},
	}
	if name == "" {
		p.fail(errors.BuildInvariant(p.path(), "method name cannot be empty"))
	}
	return b
}

// Arg appends a by-value argument.
func (b *MethodBuilder[P]) Arg(t meta.TypeRef, name string) *MethodBuilder[P] {
	return b.ArgWith(t, name, meta.ArgDefault)
}

// ArgWith appends an argument with an explicit passing mode.
func (b *MethodBuilder[P]) ArgWith(t meta.TypeRef, name string, kind meta.ArgumentKind, attrs ...meta.Attribute) *MethodBuilder[P] {
	b.args.add(b.parent.path(b.m.Name, name), t, name, kind, attrs)
	return b
}

// Returns sets the return type.
func (b *MethodBuilder[P]) Returns(t meta.TypeRef) *MethodBuilder[P] {
	b.m.Return = meta.Ref(t)
	return b
}

// Kind sets the method kind.
func (b *MethodBuilder[P]) Kind(k meta.MethodKind) *MethodBuilder[P] {
	b.m.Kind = k
	return b
}

// Static is Kind(meta.Static).
func (b *MethodBuilder[P]) Static() *MethodBuilder[P] {
	return b.Kind(meta.Static)
}

// Virtual is Kind(meta.Virtual).
func (b *MethodBuilder[P]) Virtual() *MethodBuilder[P] {
	return b.Kind(meta.Virtual)
}

// Visibility overrides the package default.
func (b *MethodBuilder[P]) Visibility(v meta.Visibility) *MethodBuilder[P] {
	b.m.Visibility = v
	return b
}

// Attribute attaches a method attribute.
func (b *MethodBuilder[P]) Attribute(t meta.TypeRef, args ...meta.Value) *MethodBuilder[P] {
	b.m.Attributes = append(b.m.Attributes, meta.Attr(t, args...))
	return b
}

// Generic declares a method-level generic parameter.
func (b *MethodBuilder[P]) Generic(name string) *MethodBuilder[P] {
	gs, err := declareGeneric(b.m.Generics, name, b.parent.path(b.m.Name))
	if err != nil {
		b.parent.fail(err)
		return b
	}
	b.m.Generics = gs
	return b
}

// Where bounds a generic declared on this method. Naming an undeclared
// parameter fails immediately.
func (b *MethodBuilder[P]) Where(name string, bounds ...meta.TypeRef) *MethodBuilder[P] {
	if err := addWhere(b.m.Generics, name, bounds, b.parent.path(b.m.Name)); err != nil {
		b.parent.fail(err)
	}
	return b
}

// Build computes the method ID and appends the method to its parent.
func (b *MethodBuilder[P]) Build() P {
	if b.args.err != nil {
		b.parent.fail(b.args.err)
		return b.parent
	}
	b.m.Args = b.args.args
	b.m.ID = identity.MethodID(b.m.Name, b.m.ArgTypes()...)
	b.parent.addMethod(b.m)
	return b.parent
}

// PropertyBuilder builds one property. Properties are read-only until a
// setter visibility is given.
type PropertyBuilder[P propertyParent] struct {
	parent P
	p      meta.Property
	static bool
}

func newProperty[P propertyParent](p P, t meta.TypeRef, name string, static bool) *PropertyBuilder[P] {
	if name == "" {
		p.fail(errors.BuildInvariant(p.path(), "property name cannot be empty"))
	}
	return &PropertyBuilder[P]{
		parent: p,
		p: meta.Property{
			Type:   t,
			Name:   name,
			Getter: p.defaults().Property,
		},
		static: static,
	}
}

// Getter sets the getter visibility.
func (b *PropertyBuilder[P]) Getter(v meta.Visibility) *PropertyBuilder[P] {
	b.p.Getter = v
	return b
}

// Setter adds a setter with the given visibility.
func (b *PropertyBuilder[P]) Setter(v meta.Visibility) *PropertyBuilder[P] {
	b.p.Setter = &v
	return b
}

// ReadWrite adds a setter with the package default property visibility.
func (b *PropertyBuilder[P]) ReadWrite() *PropertyBuilder[P] {
	return b.Setter(b.parent.defaults().Property)
}

// ReadOnly removes the setter.
func (b *PropertyBuilder[P]) ReadOnly() *PropertyBuilder[P] {
	b.p.Setter = nil
	return b
}

// Attribute attaches a property attribute.
func (b *PropertyBuilder[P]) Attribute(t meta.TypeRef, args ...meta.Value) *PropertyBuilder[P] {
	b.p.Attributes = append(b.p.Attributes, meta.Attr(t, args...))
	return b
}

// Build computes the property ID and appends it to its parent.
func (b *PropertyBuilder[P]) Build() P {
	b.p.ID = identity.MemberID(b.p.Name)
	b.parent.addProperty(b.p, b.static)
	return b.parent
}

// FieldBuilder builds one field.
type FieldBuilder[P fieldParent] struct {
	parent P
	f      meta.Field
	static bool
}

func newField[P fieldParent](p P, t meta.TypeRef, name string, static bool) *FieldBuilder[P] {
	if name == "" {
		p.fail(errors.BuildInvariant(p.path(), "field name cannot be empty"))
	}
	return &FieldBuilder[P]{
		parent: p,
		f: meta.Field{
			Type:       t,
			Name:       name,
			Visibility: p.defaults().Field,
		},
		static: static,
	}
}

// Visibility overrides the package default.
func (b *FieldBuilder[P]) Visibility(v meta.Visibility) *FieldBuilder[P] {
	b.f.Visibility = v
	return b
}

// Default sets the field's default value.
func (b *FieldBuilder[P]) Default(v meta.Value) *FieldBuilder[P] {
	b.f.Default = &v
	return b
}

// Attribute attaches a field attribute.
func (b *FieldBuilder[P]) Attribute(t meta.TypeRef, args ...meta.Value) *FieldBuilder[P] {
	b.f.Attributes = append(b.f.Attributes, meta.Attr(t, args...))
	return b
}

// Build computes the field ID and appends it to its parent.
func (b *FieldBuilder[P]) Build() P {
	b.f.ID = identity.MemberID(b.f.Name)
	b.parent.addField(b.f, b.static)
	return b.parent
}
