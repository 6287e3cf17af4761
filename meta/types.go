package meta

import (
	"github.com/wippyai/tangara/identity"
)

// Attribute annotates a package, type or member. Attribute types are
// matched structurally, see Attributes.Find.
type Attribute struct {
	Type TypeRef
	Args []Value
}

// Attributes is an ordered attribute list.
type Attributes []Attribute

// Find returns the first attribute whose type is structurally equal to t.
func (as Attributes) Find(t TypeRef) (Attribute, bool) {
	for _, a := range as {
		if a.Type.Equal(t) {
			return a, true
		}
	}
	return Attribute{}, false
}

// Has reports whether an attribute of type t is present.
func (as Attributes) Has(t TypeRef) bool {
	_, ok := as.Find(t)
	return ok
}

// Generic is a declared generic parameter and its where-bounds.
type Generic struct {
	Name  string
	Where []TypeRef
}

// Argument is one parameter of a constructor or method.
type Argument struct {
	Attributes Attributes
	Type       TypeRef
	Name       string
	Kind       ArgumentKind
}

// Constructor creates an instance. Constructors are addressed by position,
// Index is their emission order within the type.
type Constructor struct {
	Attributes Attributes
	Visibility Visibility
	Index      int
	Args       []Argument
}

// Method is a callable member.
type Method struct {
	Attributes Attributes
	Visibility Visibility
	Name       string
	ID         uint64
	Kind       MethodKind
	Generics   []Generic
	Args       []Argument
	Return     *TypeRef
}

// ArgTypes returns the argument TypeRefs as identity shapes.
func (m *Method) ArgTypes() []identity.Shape {
	out := make([]identity.Shape, len(m.Args))
	for i, a := range m.Args {
		out[i] = a.Type
	}
	return out
}

// Property is an accessor pair. A nil Setter means read-only.
type Property struct {
	Attributes Attributes
	Type       TypeRef
	Name       string
	ID         uint64
	Getter     Visibility
	Setter     *Visibility
}

// ReadOnly reports whether the property has no setter.
func (p *Property) ReadOnly() bool { return p.Setter == nil }

// Field is the data-only analogue of Property.
type Field struct {
	Attributes Attributes
	Visibility Visibility
	Type       TypeRef
	Name       string
	ID         uint64
	Default    *Value
}

// Variant is one case of an EnumClass, carrying its own fields.
type Variant struct {
	Attributes Attributes
	Name       string
	ID         uint64
	Fields     []Field
}

// EnumVariant is a named constant of an Enum.
type EnumVariant struct {
	Attributes Attributes
	Name       string
	ID         uint64
	Value      Value
}

// TypeKind is the closed set of shapes a Type can have.
type TypeKind interface {
	KindName() string
	isTypeKind()
}

// Class has behavior and state.
type Class struct {
	Sealed           bool
	Constructors     []Constructor
	Properties       []Property
	Fields           []Field
	StaticProperties []Property
	StaticFields     []Field
	Methods          []Method
	Parents          []TypeRef
}

// Struct is a Class restricted to data.
type Struct struct {
	Constructors []Constructor
	Fields       []Field
	StaticFields []Field
}

// Interface declares behavior only.
type Interface struct {
	Properties []Property
	Methods    []Method
	Parents    []TypeRef
}

// Enum is a closed set of compile-time constants.
type Enum struct {
	Variants []EnumVariant
}

// EnumClass is a closed set of payload-carrying variants.
type EnumClass struct {
	Variants []Variant
	Methods  []Method
}

// TypeAlias stands for another type.
type TypeAlias struct {
	Target TypeRef
}

func (*Class) KindName() string     { return "class" }
func (*Struct) KindName() string    { return "struct" }
func (*Interface) KindName() string { return "interface" }
func (*Enum) KindName() string      { return "enum" }
func (*EnumClass) KindName() string { return "enum_class" }
func (*TypeAlias) KindName() string { return "alias" }

func (*Class) isTypeKind()     {}
func (*Struct) isTypeKind()    {}
func (*Interface) isTypeKind() {}
func (*Enum) isTypeKind()      {}
func (*EnumClass) isTypeKind() {}
func (*TypeAlias) isTypeKind() {}

// Type is a described type with exactly one Kind.
type Type struct {
	Namespace  string
	Name       string
	ID         uint64
	Generics   []Generic
	Attributes Attributes
	Visibility Visibility
	Kind       TypeKind
}

// FullName returns the namespace-qualified name hashed into ID.
func (t *Type) FullName() string {
	return identity.Qualify(t.Namespace, t.Name)
}

// IsGeneric reports whether the type declares generic parameters.
func (t *Type) IsGeneric() bool {
	return len(t.Generics) > 0
}

// Constructors returns the constructors of a Class or Struct. The variants
// of an EnumClass are its constructors, in declaration order, each taking
// the variant's fields as arguments.
func (t *Type) Constructors() []Constructor {
	switch k := t.Kind.(type) {
	case *Class:
		return k.Constructors
	case *Struct:
		return k.Constructors
	case *EnumClass:
		out := make([]Constructor, len(k.Variants))
		for i, v := range k.Variants {
			out[i] = v.Constructor(i)
		}
		return out
	}
	return nil
}

// Constructor views the variant as the constructor at index.
func (v Variant) Constructor(index int) Constructor {
	args := make([]Argument, len(v.Fields))
	for i, f := range v.Fields {
		args[i] = Argument{Attributes: f.Attributes, Type: f.Type, Name: f.Name, Kind: ArgDefault}
		if f.Default != nil {
			args[i].Kind = DefaultValue(*f.Default)
		}
	}
	return Constructor{Attributes: v.Attributes, Index: index, Args: args}
}

// Methods returns the methods of a Class, Interface or EnumClass.
func (t *Type) Methods() []Method {
	switch k := t.Kind.(type) {
	case *Class:
		return k.Methods
	case *Interface:
		return k.Methods
	case *EnumClass:
		return k.Methods
	}
	return nil
}

// Properties returns the instance properties of a Class or Interface.
func (t *Type) Properties() []Property {
	switch k := t.Kind.(type) {
	case *Class:
		return k.Properties
	case *Interface:
		return k.Properties
	}
	return nil
}

// Fields returns the instance fields of a Class or Struct.
func (t *Type) Fields() []Field {
	switch k := t.Kind.(type) {
	case *Class:
		return k.Fields
	case *Struct:
		return k.Fields
	}
	return nil
}

// StaticFields returns the static fields of a Class or Struct.
func (t *Type) StaticFields() []Field {
	switch k := t.Kind.(type) {
	case *Class:
		return k.StaticFields
	case *Struct:
		return k.StaticFields
	}
	return nil
}

// StaticProperties returns the static properties of a Class.
func (t *Type) StaticProperties() []Property {
	if k, ok := t.Kind.(*Class); ok {
		return k.StaticProperties
	}
	return nil
}

// Instantiable reports whether instances of the type cross the boundary as
// owned objects with a destructor.
func (t *Type) Instantiable() bool {
	switch t.Kind.(type) {
	case *Class, *Struct, *EnumClass:
		return true
	}
	return false
}

// Method returns the first method with the given name.
func (t *Type) Method(name string) (*Method, bool) {
	ms := t.Methods()
	for i := range ms {
		if ms[i].Name == name {
			return &ms[i], true
		}
	}
	return nil, false
}

// Property returns the instance property or field with the given name as a
// Property. Fields are reported with symmetric getter and setter visibility.
func (t *Type) Property(name string) (Property, bool) {
	for _, p := range t.Properties() {
		if p.Name == name {
			return p, true
		}
	}
	for _, f := range t.Fields() {
		if f.Name == name {
			return f.AsProperty(), true
		}
	}
	return Property{}, false
}

// AsProperty views a field as a read-write property.
func (f Field) AsProperty() Property {
	vis := f.Visibility
	return Property{
		Attributes: f.Attributes,
		Type:       f.Type,
		Name:       f.Name,
		ID:         f.ID,
		Getter:     vis,
		Setter:     &vis,
	}
}

// Package is the root of a library's metadata.
type Package struct {
	Name       string
	ID         uint64
	Namespace  string
	Attributes Attributes
	Types      []*Type
	Naming     Conventions
}

// Type returns the type with the given short or qualified name.
func (p *Package) Type(name string) (*Type, bool) {
	for _, t := range p.Types {
		if t.Name == name || t.FullName() == name {
			return t, true
		}
	}
	return nil, false
}

// TypeByID returns the type with the given ID.
func (p *Package) TypeByID(id uint64) (*Type, bool) {
	for _, t := range p.Types {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

// Resolve returns the package type a named reference points to.
func (p *Package) Resolve(ref TypeRef) (*Type, bool) {
	switch ref.Kind {
	case RefName:
		return p.Type(ref.Name)
	case RefID:
		return p.TypeByID(ref.ID)
	}
	return nil, false
}
