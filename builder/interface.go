package builder

import (
	"github.com/wippyai/tangara/errors"
	"github.com/wippyai/tangara/meta"
)

// InterfaceBuilder builds an Interface. Methods default to Abstract.
type InterfaceBuilder struct {
	typeBuilder[*InterfaceBuilder]
	iface meta.Interface
}

// Parent records an extended interface.
func (b *InterfaceBuilder) Parent(t meta.TypeRef) *InterfaceBuilder {
	if b.live("Parent") {
		b.iface.Parents = append(b.iface.Parents, t)
	}
	return b
}

// Method starts an abstract method.
func (b *InterfaceBuilder) Method(name string) *MethodBuilder[*InterfaceBuilder] {
	return newMethod(b, name)
}

// Property starts a property.
func (b *InterfaceBuilder) Property(t meta.TypeRef, name string) *PropertyBuilder[*InterfaceBuilder] {
	return newProperty(b, t, name, false)
}

// Build appends the interface to the package.
func (b *InterfaceBuilder) Build() (*meta.Type, error) {
	iface := b.iface
	return b.finish(&iface)
}

func (b *InterfaceBuilder) defaultMethodKind() meta.MethodKind {
	return meta.Abstract
}

func (b *InterfaceBuilder) addMethod(m meta.Method) {
	if !b.live("Method") {
		return
	}
	if m.Kind != meta.Abstract {
		b.fail(errors.BuildInvariant(b.path(m.Name), "interface methods must be abstract, got %s", m.Kind))
		return
	}
	if m.Visibility == meta.Private {
		b.fail(errors.BuildInvariant(b.path(m.Name), "interface method cannot be private"))
		return
	}
	if b.claim(m.ID, m.Name) {
		b.iface.Methods = append(b.iface.Methods, m)
	}
}

func (b *InterfaceBuilder) addProperty(p meta.Property, static bool) {
	if !b.live("Property") {
		return
	}
	if static {
		b.fail(errors.BuildInvariant(b.path(p.Name), "interfaces cannot have static properties"))
		return
	}
	setter := meta.Private
	if p.Setter != nil {
		setter = *p.Setter
	}
	if p.Getter == meta.Private && setter == meta.Private {
		b.fail(errors.BuildInvariant(b.path(p.Name), "interface property cannot be fully private"))
		return
	}
	if b.claim(p.ID, p.Name) {
		b.iface.Properties = append(b.iface.Properties, p)
	}
}
