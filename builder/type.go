package builder

import (
	"slices"

	"github.com/wippyai/tangara/errors"
	"github.com/wippyai/tangara/identity"
	"github.com/wippyai/tangara/meta"
)

// typeBuilder holds what every kind builder shares. B is the concrete
// builder so chained calls keep their type.
type typeBuilder[B any] struct {
	self  B
	pkg   *PackageBuilder
	t     meta.Type
	ids   map[uint64]string
	err   error
	built bool
}

func (b *typeBuilder[B]) init(self B, pkg *PackageBuilder, name string) {
	b.self = self
	b.pkg = pkg
	b.t = meta.Type{
		Namespace:  pkg.pkg.Namespace,
		Name:       name,
		Visibility: pkg.defaults.Type,
	}
	b.ids = make(map[uint64]string)
	if name == "" {
		b.fail(errors.BuildInvariant([]string{pkg.pkg.Name}, "type name cannot be empty"))
	}
}

// Visibility sets the type's visibility.
func (b *typeBuilder[B]) Visibility(v meta.Visibility) B {
	if b.live("Visibility") {
		b.t.Visibility = v
	}
	return b.self
}

// Namespace overrides the package namespace for this type.
func (b *typeBuilder[B]) Namespace(ns string) B {
	if b.live("Namespace") {
		b.t.Namespace = ns
	}
	return b.self
}

// Attribute attaches a type attribute.
func (b *typeBuilder[B]) Attribute(t meta.TypeRef, args ...meta.Value) B {
	if b.live("Attribute") {
		b.t.Attributes = append(b.t.Attributes, meta.Attr(t, args...))
	}
	return b.self
}

// Generic declares a generic parameter.
func (b *typeBuilder[B]) Generic(name string) B {
	if b.live("Generic") {
		gs, err := declareGeneric(b.t.Generics, name, b.path())
		if err != nil {
			b.fail(err)
		} else {
			b.t.Generics = gs
		}
	}
	return b.self
}

// Where adds bounds to a declared generic parameter. Naming an undeclared
// parameter fails immediately.
func (b *typeBuilder[B]) Where(name string, bounds ...meta.TypeRef) B {
	if b.live("Where") {
		if err := addWhere(b.t.Generics, name, bounds, b.path()); err != nil {
			b.fail(err)
		}
	}
	return b.self
}

// Err returns the first failure recorded on this builder.
func (b *typeBuilder[B]) Err() error {
	return b.err
}

func (b *typeBuilder[B]) path(member ...string) []string {
	return append([]string{b.t.FullName()}, member...)
}

func (b *typeBuilder[B]) fail(err error) {
	if b.err == nil {
		b.err = err
	}
	b.pkg.fail(err)
}

// live reports whether op may proceed, recording a failure when the builder
// was already consumed.
func (b *typeBuilder[B]) live(op string) bool {
	if b.built {
		b.fail(errors.BuildInvariant(b.path(), "%s called after Build", op))
		return false
	}
	return true
}

// claim reserves a member ID within the type.
func (b *typeBuilder[B]) claim(id uint64, name string) bool {
	if prev, dup := b.ids[id]; dup {
		b.fail(errors.BuildInvariant(b.path(name), "member id collides with %q", prev))
		return false
	}
	b.ids[id] = name
	return true
}

func (b *typeBuilder[B]) defaults() Defaults {
	return b.pkg.defaults
}

func (b *typeBuilder[B]) finish(kind meta.TypeKind) (*meta.Type, error) {
	if b.built {
		return nil, errors.BuildInvariant(b.path(), "type already built")
	}
	b.built = true
	if b.err != nil {
		return nil, b.err
	}
	t := b.t
	t.Kind = kind
	t.ID = identity.QualifiedTypeID(t.Namespace, t.Name)
	if err := b.pkg.addType(&t); err != nil {
		b.err = err
		return nil, err
	}
	return &t, nil
}

func declareGeneric(gs []meta.Generic, name string, path []string) ([]meta.Generic, error) {
	if name == "" {
		return gs, errors.BuildInvariant(path, "generic name cannot be empty")
	}
	if slices.ContainsFunc(gs, func(g meta.Generic) bool { return g.Name == name }) {
		return gs, errors.BuildInvariant(path, "generic %q declared twice", name)
	}
	return append(gs, meta.Generic{Name: name}), nil
}

func addWhere(gs []meta.Generic, name string, bounds []meta.TypeRef, path []string) error {
	for i := range gs {
		if gs[i].Name == name {
			gs[i].Where = append(gs[i].Where, bounds...)
			return nil
		}
	}
	return errors.BuildInvariant(path, "where-bound references undeclared generic %q", name)
}
