package builder

import (
	"github.com/wippyai/tangara/errors"
	"github.com/wippyai/tangara/identity"
	"github.com/wippyai/tangara/meta"
)

// Defaults are the visibilities members get unless overridden.
type Defaults struct {
	Type        meta.Visibility
	Constructor meta.Visibility
	Property    meta.Visibility
	Field       meta.Visibility
	Method      meta.Visibility
}

// PublicDefaults makes everything Public.
var PublicDefaults = Defaults{}

// PackageBuilder accumulates types into a meta.Package.
type PackageBuilder struct {
	pkg      meta.Package
	defaults Defaults
	names    map[string]struct{}
	err      error
	built    bool
}

// NewPackage starts a package. Its namespace defaults to its name.
func NewPackage(name string) *PackageBuilder {
	b := &PackageBuilder{
		pkg: meta.Package{
			Name:      name,
			ID:        identity.PackageID(name),
			Namespace: name,
			Naming:    meta.SnakeConventions,
		},
		defaults: PublicDefaults,
		names:    make(map[string]struct{}),
	}
	if name == "" {
		b.fail(errors.BuildInvariant(nil, "package name cannot be empty"))
	}
	return b
}

// Namespace sets the namespace given to types created afterwards.
func (b *PackageBuilder) Namespace(ns string) *PackageBuilder {
	b.pkg.Namespace = ns
	return b
}

// Defaults sets default visibilities for types and members created afterwards.
func (b *PackageBuilder) Defaults(d Defaults) *PackageBuilder {
	b.defaults = d
	return b
}

// Naming sets the package's naming descriptor.
func (b *PackageBuilder) Naming(c meta.Conventions) *PackageBuilder {
	b.pkg.Naming = c
	return b
}

// Attribute attaches a package attribute.
func (b *PackageBuilder) Attribute(t meta.TypeRef, args ...meta.Value) *PackageBuilder {
	b.pkg.Attributes = append(b.pkg.Attributes, meta.Attr(t, args...))
	return b
}

// Err returns the first build failure so far.
func (b *PackageBuilder) Err() error {
	return b.err
}

// Class starts an open class.
func (b *PackageBuilder) Class(name string) *ClassBuilder {
	c := &ClassBuilder{}
	c.init(c, b, name)
	return c
}

// Struct starts a data-only struct.
func (b *PackageBuilder) Struct(name string) *StructBuilder {
	s := &StructBuilder{}
	s.init(s, b, name)
	return s
}

// Interface starts an interface.
func (b *PackageBuilder) Interface(name string) *InterfaceBuilder {
	i := &InterfaceBuilder{}
	i.init(i, b, name)
	return i
}

// Enum starts an enum with Int discriminants.
func (b *PackageBuilder) Enum(name string) *EnumBuilder {
	e := &EnumBuilder{names: make(map[string]struct{})}
	e.init(e, b, name)
	return e
}

// Bitflags starts an enum whose literals are 0, 1, 2, 4, ... as UInt and
// which carries meta.FlagsAttribute.
func (b *PackageBuilder) Bitflags(name string) *EnumBuilder {
	e := b.Enum(name)
	e.flags = true
	e.t.Attributes = append(e.t.Attributes, meta.Attr(meta.FlagsAttribute))
	return e
}

// EnumClass starts an enum of payload-carrying variants.
func (b *PackageBuilder) EnumClass(name string) *EnumClassBuilder {
	e := &EnumClassBuilder{}
	e.init(e, b, name)
	return e
}

// Alias starts a type alias for target.
func (b *PackageBuilder) Alias(name string, target meta.TypeRef) *AliasBuilder {
	a := &AliasBuilder{target: target}
	a.init(a, b, name)
	return a
}

// Build returns the finished package. It fails if any type failed.
func (b *PackageBuilder) Build() (*meta.Package, error) {
	if b.built {
		return nil, errors.BuildInvariant([]string{b.pkg.Name}, "package already built")
	}
	if b.err != nil {
		return nil, b.err
	}
	b.built = true
	pkg := b.pkg
	return &pkg, nil
}

func (b *PackageBuilder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

func (b *PackageBuilder) addType(t *meta.Type) error {
	if b.built {
		err := errors.BuildInvariant([]string{t.FullName()}, "package %q already built", b.pkg.Name)
		b.fail(err)
		return err
	}
	key := t.FullName()
	if _, dup := b.names[key]; dup {
		err := errors.BuildInvariant([]string{key}, "duplicate type")
		b.fail(err)
		return err
	}
	b.names[key] = struct{}{}
	b.pkg.Types = append(b.pkg.Types, t)
	return nil
}
