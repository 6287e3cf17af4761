package builder

import (
	"github.com/wippyai/tangara/errors"
	"github.com/wippyai/tangara/identity"
	"github.com/wippyai/tangara/meta"
)

// EnumBuilder builds an Enum of integer constants.
type EnumBuilder struct {
	typeBuilder[*EnumBuilder]
	enum  meta.Enum
	names map[string]struct{}
	flags bool
}

// Literal appends a variant with the next discriminant: the previous value
// plus one (starting at Int 0), or for bitflags 0, 1, 2, 4, ... as UInt.
func (b *EnumBuilder) Literal(name string) *EnumBuilder {
	return b.Variant(name, b.next())
}

// Variant appends a variant with an explicit integer discriminant.
func (b *EnumBuilder) Variant(name string, v meta.Value, attrs ...meta.Attribute) *EnumBuilder {
	if !b.live("Variant") {
		return b
	}
	if name == "" {
		b.fail(errors.BuildInvariant(b.path(), "variant name cannot be empty"))
		return b
	}
	if _, dup := b.names[name]; dup {
		b.fail(errors.BuildInvariant(b.path(name), "duplicate variant"))
		return b
	}
	if !v.IsSigned() && !v.IsUnsigned() {
		b.fail(errors.BuildInvariant(b.path(name), "discriminant must be an integer, got %s", v.Kind))
		return b
	}
	if len(b.enum.Variants) > 0 {
		first := b.enum.Variants[0].Value
		if first.Kind != v.Kind {
			b.fail(errors.BuildInvariant(b.path(name), "discriminant kind %s differs from %s", v.Kind, first.Kind))
			return b
		}
		for _, ev := range b.enum.Variants {
			if ev.Value.Equal(v) {
				b.fail(errors.BuildInvariant(b.path(name), "discriminant %s already used by %q", v, ev.Name))
				return b
			}
		}
	}
	b.names[name] = struct{}{}
	b.enum.Variants = append(b.enum.Variants, meta.EnumVariant{
		Attributes: attrs,
		Name:       name,
		ID:         identity.MemberID(name),
		Value:      v,
	})
	return b
}

// Build appends the enum to the package.
func (b *EnumBuilder) Build() (*meta.Type, error) {
	enum := b.enum
	return b.finish(&enum)
}

func (b *EnumBuilder) next() meta.Value {
	n := len(b.enum.Variants)
	if b.flags {
		if n == 0 {
			return meta.Uint32(0)
		}
		return meta.Uint32(1 << (n - 1))
	}
	if n == 0 {
		return meta.Int32(0)
	}
	last := b.enum.Variants[n-1].Value
	if last.IsUnsigned() {
		last.Uint++
	} else {
		last.Int++
	}
	return last
}

// EnumClassBuilder builds an EnumClass.
type EnumClassBuilder struct {
	typeBuilder[*EnumClassBuilder]
	ec meta.EnumClass
}

// Variant starts a payload-carrying variant.
func (b *EnumClassBuilder) Variant(name string) *VariantBuilder {
	if name == "" {
		b.fail(errors.BuildInvariant(b.path(), "variant name cannot be empty"))
	}
	return &VariantBuilder{
		owner: b,
		v:     meta.Variant{Name: name, ID: identity.MemberID(name)},
		names: make(map[string]struct{}),
	}
}

// Method starts a method. Its kind defaults to Default.
func (b *EnumClassBuilder) Method(name string) *MethodBuilder[*EnumClassBuilder] {
	return newMethod(b, name)
}

// Build appends the enum class to the package.
func (b *EnumClassBuilder) Build() (*meta.Type, error) {
	ec := b.ec
	return b.finish(&ec)
}

func (b *EnumClassBuilder) defaultMethodKind() meta.MethodKind {
	return meta.Default
}

func (b *EnumClassBuilder) addMethod(m meta.Method) {
	if !b.live("Method") {
		return
	}
	if m.Kind != meta.Default && m.Kind != meta.Static {
		b.fail(errors.BuildInvariant(b.path(m.Name), "enum class methods cannot be %s", m.Kind))
		return
	}
	if b.claim(m.ID, m.Name) {
		b.ec.Methods = append(b.ec.Methods, m)
	}
}

func (b *EnumClassBuilder) addVariant(v meta.Variant) {
	if !b.live("Variant") || !b.claim(v.ID, v.Name) {
		return
	}
	b.ec.Variants = append(b.ec.Variants, v)
}

// VariantBuilder builds one EnumClass variant and its fields.
type VariantBuilder struct {
	owner *EnumClassBuilder
	v     meta.Variant
	names map[string]struct{}
}

// Field starts a payload field.
func (b *VariantBuilder) Field(t meta.TypeRef, name string) *FieldBuilder[*VariantBuilder] {
	return newField(b, t, name, false)
}

// Attribute attaches a variant attribute.
func (b *VariantBuilder) Attribute(t meta.TypeRef, args ...meta.Value) *VariantBuilder {
	b.v.Attributes = append(b.v.Attributes, meta.Attr(t, args...))
	return b
}

// Build appends the variant to the enum class.
func (b *VariantBuilder) Build() *EnumClassBuilder {
	b.owner.addVariant(b.v)
	return b.owner
}

func (b *VariantBuilder) fail(err error) {
	b.owner.fail(err)
}

func (b *VariantBuilder) path(member ...string) []string {
	return b.owner.path(append([]string{b.v.Name}, member...)...)
}

func (b *VariantBuilder) defaults() Defaults {
	return b.owner.defaults()
}

func (b *VariantBuilder) addField(f meta.Field, static bool) {
	if static {
		b.fail(errors.BuildInvariant(b.path(f.Name), "variant fields cannot be static"))
		return
	}
	if _, dup := b.names[f.Name]; dup {
		b.fail(errors.BuildInvariant(b.path(f.Name), "duplicate field"))
		return
	}
	b.names[f.Name] = struct{}{}
	b.v.Fields = append(b.v.Fields, f)
}

// AliasBuilder builds a TypeAlias.
type AliasBuilder struct {
	typeBuilder[*AliasBuilder]
	target meta.TypeRef
}

// Build appends the alias to the package.
func (b *AliasBuilder) Build() (*meta.Type, error) {
	return b.finish(&meta.TypeAlias{Target: b.target})
}
