package builder

import (
	"github.com/wippyai/tangara/errors"
	"github.com/wippyai/tangara/meta"
)

// ClassBuilder builds a Class. Classes are open unless Sealed is called.
type ClassBuilder struct {
	typeBuilder[*ClassBuilder]
	class meta.Class
}

// Sealed forbids Virtual methods.
func (b *ClassBuilder) Sealed() *ClassBuilder {
	if !b.live("Sealed") {
		return b
	}
	b.class.Sealed = true
	for _, m := range b.class.Methods {
		if m.Kind == meta.Virtual {
			b.fail(errors.BuildInvariant(b.path(m.Name), "sealed class cannot have virtual methods"))
		}
	}
	return b
}

// Parent records an implemented interface or base type.
func (b *ClassBuilder) Parent(t meta.TypeRef) *ClassBuilder {
	if b.live("Parent") {
		b.class.Parents = append(b.class.Parents, t)
	}
	return b
}

// Constructor starts a constructor. Constructors are indexed in the order
// their Build is called.
func (b *ClassBuilder) Constructor() *ConstructorBuilder[*ClassBuilder] {
	return newConstructor(b)
}

// Method starts a method. Its kind defaults to Default.
func (b *ClassBuilder) Method(name string) *MethodBuilder[*ClassBuilder] {
	return newMethod(b, name)
}

// Property starts an instance property.
func (b *ClassBuilder) Property(t meta.TypeRef, name string) *PropertyBuilder[*ClassBuilder] {
	return newProperty(b, t, name, false)
}

// StaticProperty starts a static property.
func (b *ClassBuilder) StaticProperty(t meta.TypeRef, name string) *PropertyBuilder[*ClassBuilder] {
	return newProperty(b, t, name, true)
}

// Field starts an instance field.
func (b *ClassBuilder) Field(t meta.TypeRef, name string) *FieldBuilder[*ClassBuilder] {
	return newField(b, t, name, false)
}

// StaticField starts a static field.
func (b *ClassBuilder) StaticField(t meta.TypeRef, name string) *FieldBuilder[*ClassBuilder] {
	return newField(b, t, name, true)
}

// Build appends the class to the package.
func (b *ClassBuilder) Build() (*meta.Type, error) {
	class := b.class
	return b.finish(&class)
}

func (b *ClassBuilder) addConstructor(c meta.Constructor) {
	if !b.live("Constructor") {
		return
	}
	c.Index = len(b.class.Constructors)
	b.class.Constructors = append(b.class.Constructors, c)
}

func (b *ClassBuilder) defaultMethodKind() meta.MethodKind {
	return meta.Default
}

func (b *ClassBuilder) addMethod(m meta.Method) {
	if !b.live("Method") {
		return
	}
	switch {
	case m.Kind == meta.Abstract:
		b.fail(errors.BuildInvariant(b.path(m.Name), "class methods cannot be abstract"))
		return
	case m.Kind == meta.Virtual && b.class.Sealed:
		b.fail(errors.BuildInvariant(b.path(m.Name), "sealed class cannot have virtual methods"))
		return
	}
	if b.claim(m.ID, m.Name) {
		b.class.Methods = append(b.class.Methods, m)
	}
}

func (b *ClassBuilder) addProperty(p meta.Property, static bool) {
	if !b.live("Property") || !b.claim(p.ID, p.Name) {
		return
	}
	if static {
		b.class.StaticProperties = append(b.class.StaticProperties, p)
	} else {
		b.class.Properties = append(b.class.Properties, p)
	}
}

func (b *ClassBuilder) addField(f meta.Field, static bool) {
	if !b.live("Field") || !b.claim(f.ID, f.Name) {
		return
	}
	if static {
		b.class.StaticFields = append(b.class.StaticFields, f)
	} else {
		b.class.Fields = append(b.class.Fields, f)
	}
}

// StructBuilder builds a data-only Struct.
type StructBuilder struct {
	typeBuilder[*StructBuilder]
	st meta.Struct
}

// Constructor starts a constructor.
func (b *StructBuilder) Constructor() *ConstructorBuilder[*StructBuilder] {
	return newConstructor(b)
}

// Field starts an instance field.
func (b *StructBuilder) Field(t meta.TypeRef, name string) *FieldBuilder[*StructBuilder] {
	return newField(b, t, name, false)
}

// StaticField starts a static field.
func (b *StructBuilder) StaticField(t meta.TypeRef, name string) *FieldBuilder[*StructBuilder] {
	return newField(b, t, name, true)
}

// Build appends the struct to the package.
func (b *StructBuilder) Build() (*meta.Type, error) {
	st := b.st
	return b.finish(&st)
}

func (b *StructBuilder) addConstructor(c meta.Constructor) {
	if !b.live("Constructor") {
		return
	}
	c.Index = len(b.st.Constructors)
	b.st.Constructors = append(b.st.Constructors, c)
}

func (b *StructBuilder) addField(f meta.Field, static bool) {
	if !b.live("Field") || !b.claim(f.ID, f.Name) {
		return
	}
	if static {
		b.st.StaticFields = append(b.st.StaticFields, f)
	} else {
		b.st.Fields = append(b.st.Fields, f)
	}
}
