package metaio

import (
	"maps"
	"slices"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/tangara/errors"
	"github.com/wippyai/tangara/identity"
	"github.com/wippyai/tangara/meta"
)

// formatVersion is bumped on incompatible wire changes.
const formatVersion = 1

type wireFile struct {
	Version int         `msgpack:"version" yaml:"version"`
	Package wirePackage `msgpack:"package" yaml:"package"`
}

type wirePackage struct {
	Name       string          `msgpack:"name" yaml:"name"`
	ID         uint64          `msgpack:"id" yaml:"id"`
	Namespace  string          `msgpack:"namespace,omitempty" yaml:"namespace,omitempty"`
	Attributes []wireAttribute `msgpack:"attributes,omitempty" yaml:"attributes,omitempty"`
	Naming     wireConventions `msgpack:"naming" yaml:"naming"`
	Types      []wireType      `msgpack:"types" yaml:"types"`
}

type wireNaming struct {
	Prefix string `msgpack:"prefix,omitempty" yaml:"prefix,omitempty"`
	Suffix string `msgpack:"suffix,omitempty" yaml:"suffix,omitempty"`
	Sep    string `msgpack:"sep,omitempty" yaml:"sep,omitempty"`
	Case   string `msgpack:"case" yaml:"case"`
}

type wireConventions struct {
	Type      wireNaming `msgpack:"type" yaml:"type"`
	Method    wireNaming `msgpack:"method" yaml:"method"`
	Property  wireNaming `msgpack:"property" yaml:"property"`
	Variant   wireNaming `msgpack:"variant" yaml:"variant"`
	Parameter wireNaming `msgpack:"parameter" yaml:"parameter"`
}

type wireValue struct {
	Kind   string               `msgpack:"kind" yaml:"kind"`
	Bool   bool                 `msgpack:"bool,omitempty" yaml:"bool,omitempty"`
	Int    int64                `msgpack:"int,omitempty" yaml:"int,omitempty"`
	Uint   uint64               `msgpack:"uint,omitempty" yaml:"uint,omitempty"`
	Float  float64              `msgpack:"float,omitempty" yaml:"float,omitempty"`
	Str    string               `msgpack:"str,omitempty" yaml:"str,omitempty"`
	Items  []wireValue          `msgpack:"items,omitempty" yaml:"items,omitempty"`
	Fields map[string]wireValue `msgpack:"fields,omitempty" yaml:"fields,omitempty"`
}

// wireRef is a type reference. A reference whose text parses back to the
// same shape is written as that text; any other is written as a node tree.
type wireRef struct {
	text string
	node *wireRefNode
}

type wireRefNode struct {
	Kind string    `msgpack:"kind" yaml:"kind"`
	Name string    `msgpack:"name,omitempty" yaml:"name,omitempty"`
	ID   uint64    `msgpack:"id,omitempty" yaml:"id,omitempty"`
	Base *wireRef  `msgpack:"base,omitempty" yaml:"base,omitempty"`
	Args []wireRef `msgpack:"args,omitempty" yaml:"args,omitempty"`
}

var refKindNames = map[meta.RefKind]string{
	meta.RefName:    "name",
	meta.RefID:      "id",
	meta.RefGeneric: "generic",
	meta.RefTuple:   "tuple",
	meta.RefFn:      "fn",
}

var refNodeKeys = map[string]bool{"kind": true, "name": true, "id": true, "base": true, "args": true}

func (r wireRef) MarshalYAML() (any, error) {
	if r.node != nil {
		return r.node, nil
	}
	return r.text, nil
}

func (r *wireRef) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		return n.Decode(&r.text)
	}
	if n.Kind == yaml.MappingNode {
		for i := 0; i < len(n.Content); i += 2 {
			if key := n.Content[i].Value; !refNodeKeys[key] {
				return &yaml.TypeError{Errors: []string{"unknown type reference field " + key}}
			}
		}
	}
	r.node = &wireRefNode{}
	return n.Decode(r.node)
}

func (r wireRef) EncodeMsgpack(enc *msgpack.Encoder) error {
	if r.node != nil {
		return enc.Encode(r.node)
	}
	return enc.EncodeString(r.text)
}

func (r *wireRef) DecodeMsgpack(dec *msgpack.Decoder) error {
	c, err := dec.PeekCode()
	if err != nil {
		return err
	}
	if msgpcode.IsString(c) {
		r.text, err = dec.DecodeString()
		return err
	}
	r.node = &wireRefNode{}
	return dec.Decode(r.node)
}

type wireAttribute struct {
	Type wireRef      `msgpack:"type" yaml:"type"`
	Args []wireValue `msgpack:"args,omitempty" yaml:"args,omitempty"`
}

type wireGeneric struct {
	Name  string    `msgpack:"name" yaml:"name"`
	Where []wireRef `msgpack:"where,omitempty" yaml:"where,omitempty"`
}

type wireArgument struct {
	Name       string          `msgpack:"name" yaml:"name"`
	Type       wireRef         `msgpack:"type" yaml:"type"`
	Mode       string          `msgpack:"mode" yaml:"mode"`
	Default    *wireValue      `msgpack:"default,omitempty" yaml:"default,omitempty"`
	Attributes []wireAttribute `msgpack:"attributes,omitempty" yaml:"attributes,omitempty"`
}

type wireConstructor struct {
	Visibility string          `msgpack:"visibility" yaml:"visibility"`
	Args       []wireArgument  `msgpack:"args,omitempty" yaml:"args,omitempty"`
	Attributes []wireAttribute `msgpack:"attributes,omitempty" yaml:"attributes,omitempty"`
}

type wireMethod struct {
	Name       string          `msgpack:"name" yaml:"name"`
	ID         uint64          `msgpack:"id" yaml:"id"`
	Kind       string          `msgpack:"kind" yaml:"kind"`
	Visibility string          `msgpack:"visibility" yaml:"visibility"`
	Generics   []wireGeneric   `msgpack:"generics,omitempty" yaml:"generics,omitempty"`
	Args       []wireArgument  `msgpack:"args,omitempty" yaml:"args,omitempty"`
	Return     *wireRef        `msgpack:"return,omitempty" yaml:"return,omitempty"`
	Attributes []wireAttribute `msgpack:"attributes,omitempty" yaml:"attributes,omitempty"`
}

type wireProperty struct {
	Name       string          `msgpack:"name" yaml:"name"`
	ID         uint64          `msgpack:"id" yaml:"id"`
	Type       wireRef         `msgpack:"type" yaml:"type"`
	Getter     string          `msgpack:"getter" yaml:"getter"`
	Setter     string          `msgpack:"setter,omitempty" yaml:"setter,omitempty"`
	Attributes []wireAttribute `msgpack:"attributes,omitempty" yaml:"attributes,omitempty"`
}

type wireField struct {
	Name       string          `msgpack:"name" yaml:"name"`
	ID         uint64          `msgpack:"id" yaml:"id"`
	Type       wireRef         `msgpack:"type" yaml:"type"`
	Visibility string          `msgpack:"visibility" yaml:"visibility"`
	Default    *wireValue      `msgpack:"default,omitempty" yaml:"default,omitempty"`
	Attributes []wireAttribute `msgpack:"attributes,omitempty" yaml:"attributes,omitempty"`
}

type wireVariant struct {
	Name       string          `msgpack:"name" yaml:"name"`
	ID         uint64          `msgpack:"id" yaml:"id"`
	Value      *wireValue      `msgpack:"value,omitempty" yaml:"value,omitempty"`
	Fields     []wireField     `msgpack:"fields,omitempty" yaml:"fields,omitempty"`
	Attributes []wireAttribute `msgpack:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// wireType flattens the TypeKind sum; Kind selects which fields apply.
type wireType struct {
	Namespace        string            `msgpack:"namespace" yaml:"namespace"`
	Name             string            `msgpack:"name" yaml:"name"`
	ID               uint64            `msgpack:"id" yaml:"id"`
	Kind             string            `msgpack:"kind" yaml:"kind"`
	Visibility       string            `msgpack:"visibility" yaml:"visibility"`
	Generics         []wireGeneric     `msgpack:"generics,omitempty" yaml:"generics,omitempty"`
	Attributes       []wireAttribute   `msgpack:"attributes,omitempty" yaml:"attributes,omitempty"`
	Sealed           bool              `msgpack:"sealed,omitempty" yaml:"sealed,omitempty"`
	Parents          []wireRef         `msgpack:"parents,omitempty" yaml:"parents,omitempty"`
	Constructors     []wireConstructor `msgpack:"constructors,omitempty" yaml:"constructors,omitempty"`
	Properties       []wireProperty    `msgpack:"properties,omitempty" yaml:"properties,omitempty"`
	Fields           []wireField       `msgpack:"fields,omitempty" yaml:"fields,omitempty"`
	StaticProperties []wireProperty    `msgpack:"static_properties,omitempty" yaml:"static_properties,omitempty"`
	StaticFields     []wireField       `msgpack:"static_fields,omitempty" yaml:"static_fields,omitempty"`
	Methods          []wireMethod      `msgpack:"methods,omitempty" yaml:"methods,omitempty"`
	Variants         []wireVariant     `msgpack:"variants,omitempty" yaml:"variants,omitempty"`
	Target           *wireRef          `msgpack:"target,omitempty" yaml:"target,omitempty"`
}

// to wire

func toWire(p *meta.Package) wireFile {
	w := wirePackage{
		Name:       p.Name,
		ID:         p.ID,
		Namespace:  p.Namespace,
		Attributes: attrsToWire(p.Attributes),
		Naming: wireConventions{
			Type:      namingToWire(p.Naming.Type),
			Method:    namingToWire(p.Naming.Method),
			Property:  namingToWire(p.Naming.Property),
			Variant:   namingToWire(p.Naming.Variant),
			Parameter: namingToWire(p.Naming.Parameter),
		},
		Types: make([]wireType, 0, len(p.Types)),
	}
	for _, t := range p.Types {
		w.Types = append(w.Types, typeToWire(t))
	}
	return wireFile{Version: formatVersion, Package: w}
}

func namingToWire(n meta.Naming) wireNaming {
	return wireNaming{Prefix: n.Prefix, Suffix: n.Suffix, Sep: n.Sep, Case: n.Case.String()}
}

func valueToWire(v meta.Value) wireValue {
	w := wireValue{
		Kind:  v.Kind.String(),
		Bool:  v.Bool,
		Int:   v.Int,
		Uint:  v.Uint,
		Float: v.Float,
		Str:   v.Str,
	}
	for _, it := range v.Items {
		w.Items = append(w.Items, valueToWire(it))
	}
	if len(v.Fields) > 0 {
		w.Fields = make(map[string]wireValue, len(v.Fields))
		for k, f := range v.Fields {
			w.Fields[k] = valueToWire(f)
		}
	}
	return w
}

func optValueToWire(v *meta.Value) *wireValue {
	if v == nil {
		return nil
	}
	w := valueToWire(*v)
	return &w
}

func attrsToWire(as meta.Attributes) []wireAttribute {
	var out []wireAttribute
	for _, a := range as {
		wa := wireAttribute{Type: refToWire(a.Type)}
		for _, v := range a.Args {
			wa.Args = append(wa.Args, valueToWire(v))
		}
		out = append(out, wa)
	}
	return out
}

func refToWire(t meta.TypeRef) wireRef {
	text := t.String()
	if back, err := meta.ParseTypeRef(text); err == nil && back.Equal(t) {
		return wireRef{text: text}
	}
	n := &wireRefNode{Kind: refKindNames[t.Kind], Name: t.Name, ID: t.ID}
	if t.Base != nil {
		base := refToWire(*t.Base)
		n.Base = &base
	}
	n.Args = refsToWire(t.Args)
	return wireRef{node: n}
}

func optRefToWire(t *meta.TypeRef) *wireRef {
	if t == nil {
		return nil
	}
	w := refToWire(*t)
	return &w
}

func refsToWire(refs []meta.TypeRef) []wireRef {
	var out []wireRef
	for _, r := range refs {
		out = append(out, refToWire(r))
	}
	return out
}

func genericsToWire(gs []meta.Generic) []wireGeneric {
	var out []wireGeneric
	for _, g := range gs {
		out = append(out, wireGeneric{Name: g.Name, Where: refsToWire(g.Where)})
	}
	return out
}

func argsToWire(args []meta.Argument) []wireArgument {
	var out []wireArgument
	for _, a := range args {
		wa := wireArgument{
			Name:       a.Name,
			Type:       refToWire(a.Type),
			Mode:       a.Kind.Mode.String(),
			Attributes: attrsToWire(a.Attributes),
		}
		if a.Kind.Mode == meta.ByDefaultValue {
			wa.Default = optValueToWire(&a.Kind.Default)
		}
		out = append(out, wa)
	}
	return out
}

func ctorsToWire(cs []meta.Constructor) []wireConstructor {
	var out []wireConstructor
	for _, c := range cs {
		out = append(out, wireConstructor{
			Visibility: c.Visibility.String(),
			Args:       argsToWire(c.Args),
			Attributes: attrsToWire(c.Attributes),
		})
	}
	return out
}

func methodsToWire(ms []meta.Method) []wireMethod {
	var out []wireMethod
	for _, m := range ms {
		wm := wireMethod{
			Name:       m.Name,
			ID:         m.ID,
			Kind:       m.Kind.String(),
			Visibility: m.Visibility.String(),
			Generics:   genericsToWire(m.Generics),
			Args:       argsToWire(m.Args),
			Return:     optRefToWire(m.Return),
			Attributes: attrsToWire(m.Attributes),
		}
		out = append(out, wm)
	}
	return out
}

func propsToWire(ps []meta.Property) []wireProperty {
	var out []wireProperty
	for _, p := range ps {
		wp := wireProperty{
			Name:       p.Name,
			ID:         p.ID,
			Type:       refToWire(p.Type),
			Getter:     p.Getter.String(),
			Attributes: attrsToWire(p.Attributes),
		}
		if p.Setter != nil {
			wp.Setter = p.Setter.String()
		}
		out = append(out, wp)
	}
	return out
}

func fieldsToWire(fs []meta.Field) []wireField {
	var out []wireField
	for _, f := range fs {
		out = append(out, wireField{
			Name:       f.Name,
			ID:         f.ID,
			Type:       refToWire(f.Type),
			Visibility: f.Visibility.String(),
			Default:    optValueToWire(f.Default),
			Attributes: attrsToWire(f.Attributes),
		})
	}
	return out
}

func typeToWire(t *meta.Type) wireType {
	w := wireType{
		Namespace:  t.Namespace,
		Name:       t.Name,
		ID:         t.ID,
		Kind:       t.Kind.KindName(),
		Visibility: t.Visibility.String(),
		Generics:   genericsToWire(t.Generics),
		Attributes: attrsToWire(t.Attributes),
	}
	switch k := t.Kind.(type) {
	case *meta.Class:
		w.Sealed = k.Sealed
		w.Parents = refsToWire(k.Parents)
		w.Constructors = ctorsToWire(k.Constructors)
		w.Properties = propsToWire(k.Properties)
		w.Fields = fieldsToWire(k.Fields)
		w.StaticProperties = propsToWire(k.StaticProperties)
		w.StaticFields = fieldsToWire(k.StaticFields)
		w.Methods = methodsToWire(k.Methods)
	case *meta.Struct:
		w.Constructors = ctorsToWire(k.Constructors)
		w.Fields = fieldsToWire(k.Fields)
		w.StaticFields = fieldsToWire(k.StaticFields)
	case *meta.Interface:
		w.Parents = refsToWire(k.Parents)
		w.Properties = propsToWire(k.Properties)
		w.Methods = methodsToWire(k.Methods)
	case *meta.Enum:
		for _, v := range k.Variants {
			w.Variants = append(w.Variants, wireVariant{
				Name:       v.Name,
				ID:         v.ID,
				Value:      optValueToWire(&v.Value),
				Attributes: attrsToWire(v.Attributes),
			})
		}
	case *meta.EnumClass:
		for _, v := range k.Variants {
			w.Variants = append(w.Variants, wireVariant{
				Name:       v.Name,
				ID:         v.ID,
				Fields:     fieldsToWire(v.Fields),
				Attributes: attrsToWire(v.Attributes),
			})
		}
		w.Methods = methodsToWire(k.Methods)
	case *meta.TypeAlias:
		w.Target = optRefToWire(&k.Target)
	}
	return w
}

// from wire

// decoder converts wire structs back, keeping the first error and the path
// it happened at.
type decoder struct {
	path []string
	err  error
}

func (d *decoder) fail(detail string) {
	if d.err == nil {
		d.err = errors.InvalidData(errors.PhaseDecode, slices.Clone(d.path), detail)
	}
}

func (d *decoder) failf(cause error, detail string) {
	if d.err == nil {
		d.err = errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Path(slices.Clone(d.path)...).
			Detail("%s", detail).
			Cause(cause).
			Build()
	}
}

func (d *decoder) enter(name string) func() {
	d.path = append(d.path, name)
	return func() { d.path = d.path[:len(d.path)-1] }
}

func (d *decoder) checkID(what string, got, want uint64) {
	if got != want {
		d.fail(what + " ID does not match its name")
	}
}

func (d *decoder) ref(w wireRef) meta.TypeRef {
	if w.node == nil {
		t, err := meta.ParseTypeRef(w.text)
		if err != nil {
			d.failf(err, "bad type reference")
		}
		return t
	}
	n := w.node
	t := meta.TypeRef{Name: n.Name, ID: n.ID, Args: d.refs(n.Args)}
	kind, ok := refKindOf(n.Kind)
	if !ok {
		d.fail("unknown type reference kind " + n.Kind)
		return t
	}
	t.Kind = kind
	if n.Base != nil {
		base := d.ref(*n.Base)
		t.Base = &base
	}
	return t
}

func refKindOf(name string) (meta.RefKind, bool) {
	for k, n := range refKindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

func (d *decoder) refs(ws []wireRef) []meta.TypeRef {
	var out []meta.TypeRef
	for _, w := range ws {
		out = append(out, d.ref(w))
	}
	return out
}

func (d *decoder) visibility(s string) meta.Visibility {
	v, err := meta.ParseVisibility(s)
	if err != nil {
		d.failf(err, "bad visibility")
	}
	return v
}

func (d *decoder) naming(w wireNaming) meta.Naming {
	c, err := meta.ParseCase(w.Case)
	if err != nil {
		d.failf(err, "bad naming case")
	}
	return meta.Naming{Prefix: w.Prefix, Suffix: w.Suffix, Sep: w.Sep, Case: c}
}

func (d *decoder) value(w wireValue) meta.Value {
	k, err := meta.ParseValueKind(w.Kind)
	if err != nil {
		d.failf(err, "bad value")
		return meta.Null()
	}
	v := meta.Value{Kind: k, Bool: w.Bool, Int: w.Int, Uint: w.Uint, Float: w.Float, Str: w.Str}
	for _, it := range w.Items {
		v.Items = append(v.Items, d.value(it))
	}
	if len(w.Fields) > 0 {
		v.Fields = make(map[string]meta.Value, len(w.Fields))
		for _, name := range slices.Sorted(maps.Keys(w.Fields)) {
			v.Fields[name] = d.value(w.Fields[name])
		}
	}
	return v
}

func (d *decoder) optValue(w *wireValue) *meta.Value {
	if w == nil {
		return nil
	}
	v := d.value(*w)
	return &v
}

func (d *decoder) attrs(ws []wireAttribute) meta.Attributes {
	var out meta.Attributes
	for _, w := range ws {
		a := meta.Attribute{Type: d.ref(w.Type)}
		for _, v := range w.Args {
			a.Args = append(a.Args, d.value(v))
		}
		out = append(out, a)
	}
	return out
}

func (d *decoder) generics(ws []wireGeneric) []meta.Generic {
	var out []meta.Generic
	for _, w := range ws {
		out = append(out, meta.Generic{Name: w.Name, Where: d.refs(w.Where)})
	}
	return out
}

func (d *decoder) args(ws []wireArgument) []meta.Argument {
	var out []meta.Argument
	for _, w := range ws {
		mode, err := meta.ParsePassMode(w.Mode)
		if err != nil {
			d.failf(err, "bad argument mode")
		}
		kind := meta.ArgumentKind{Mode: mode}
		if mode == meta.ByDefaultValue {
			if w.Default == nil {
				d.fail("argument " + w.Name + " has no default value")
			} else {
				kind.Default = d.value(*w.Default)
			}
		}
		out = append(out, meta.Argument{
			Attributes: d.attrs(w.Attributes),
			Type:       d.ref(w.Type),
			Name:       w.Name,
			Kind:       kind,
		})
	}
	return out
}

func (d *decoder) ctors(ws []wireConstructor) []meta.Constructor {
	var out []meta.Constructor
	for i, w := range ws {
		out = append(out, meta.Constructor{
			Attributes: d.attrs(w.Attributes),
			Visibility: d.visibility(w.Visibility),
			Index:      i,
			Args:       d.args(w.Args),
		})
	}
	return out
}

func (d *decoder) methods(ws []wireMethod) []meta.Method {
	var out []meta.Method
	for _, w := range ws {
		done := d.enter(w.Name)
		kind, err := meta.ParseMethodKind(w.Kind)
		if err != nil {
			d.failf(err, "bad method kind")
		}
		m := meta.Method{
			Attributes: d.attrs(w.Attributes),
			Visibility: d.visibility(w.Visibility),
			Name:       w.Name,
			ID:         w.ID,
			Kind:       kind,
			Generics:   d.generics(w.Generics),
			Args:       d.args(w.Args),
		}
		if w.Return != nil {
			m.Return = meta.Ref(d.ref(*w.Return))
		}
		d.checkID("method", m.ID, identity.MethodID(m.Name, m.ArgTypes()...))
		out = append(out, m)
		done()
	}
	return out
}

func (d *decoder) props(ws []wireProperty) []meta.Property {
	var out []meta.Property
	for _, w := range ws {
		done := d.enter(w.Name)
		p := meta.Property{
			Attributes: d.attrs(w.Attributes),
			Type:       d.ref(w.Type),
			Name:       w.Name,
			ID:         w.ID,
			Getter:     d.visibility(w.Getter),
		}
		if w.Setter != "" {
			s := d.visibility(w.Setter)
			p.Setter = &s
		}
		d.checkID("property", p.ID, identity.MemberID(p.Name))
		out = append(out, p)
		done()
	}
	return out
}

func (d *decoder) fields(ws []wireField) []meta.Field {
	var out []meta.Field
	for _, w := range ws {
		done := d.enter(w.Name)
		f := meta.Field{
			Attributes: d.attrs(w.Attributes),
			Visibility: d.visibility(w.Visibility),
			Type:       d.ref(w.Type),
			Name:       w.Name,
			ID:         w.ID,
			Default:    d.optValue(w.Default),
		}
		d.checkID("field", f.ID, identity.MemberID(f.Name))
		out = append(out, f)
		done()
	}
	return out
}

func (d *decoder) typ(w wireType) *meta.Type {
	t := &meta.Type{
		Namespace:  w.Namespace,
		Name:       w.Name,
		ID:         w.ID,
		Generics:   d.generics(w.Generics),
		Attributes: d.attrs(w.Attributes),
		Visibility: d.visibility(w.Visibility),
	}
	d.checkID("type", t.ID, identity.TypeID(t.FullName()))

	switch w.Kind {
	case "class":
		t.Kind = &meta.Class{
			Sealed:           w.Sealed,
			Parents:          d.refs(w.Parents),
			Constructors:     d.ctors(w.Constructors),
			Properties:       d.props(w.Properties),
			Fields:           d.fields(w.Fields),
			StaticProperties: d.props(w.StaticProperties),
			StaticFields:     d.fields(w.StaticFields),
			Methods:          d.methods(w.Methods),
		}
	case "struct":
		t.Kind = &meta.Struct{
			Constructors: d.ctors(w.Constructors),
			Fields:       d.fields(w.Fields),
			StaticFields: d.fields(w.StaticFields),
		}
	case "interface":
		t.Kind = &meta.Interface{
			Parents:    d.refs(w.Parents),
			Properties: d.props(w.Properties),
			Methods:    d.methods(w.Methods),
		}
	case "enum":
		k := &meta.Enum{}
		for _, v := range w.Variants {
			done := d.enter(v.Name)
			ev := meta.EnumVariant{Attributes: d.attrs(v.Attributes), Name: v.Name, ID: v.ID}
			if v.Value == nil {
				d.fail("enum variant has no value")
			} else {
				ev.Value = d.value(*v.Value)
			}
			d.checkID("variant", ev.ID, identity.MemberID(ev.Name))
			k.Variants = append(k.Variants, ev)
			done()
		}
		t.Kind = k
	case "enum_class":
		k := &meta.EnumClass{Methods: d.methods(w.Methods)}
		for _, v := range w.Variants {
			done := d.enter(v.Name)
			vr := meta.Variant{Attributes: d.attrs(v.Attributes), Name: v.Name, ID: v.ID, Fields: d.fields(v.Fields)}
			d.checkID("variant", vr.ID, identity.MemberID(vr.Name))
			k.Variants = append(k.Variants, vr)
			done()
		}
		t.Kind = k
	case "alias":
		if w.Target == nil {
			d.fail("alias has no target")
			t.Kind = &meta.TypeAlias{}
		} else {
			t.Kind = &meta.TypeAlias{Target: d.ref(*w.Target)}
		}
	default:
		d.fail("unknown type kind " + w.Kind)
	}
	return t
}

func fromWire(f wireFile) (*meta.Package, error) {
	if f.Version != formatVersion {
		return nil, errors.New(errors.PhaseDecode, errors.KindUnsupported).
			Detail("metadata format version %d, want %d", f.Version, formatVersion).
			Build()
	}
	w := f.Package
	d := &decoder{}
	defer d.enter(w.Name)()

	p := &meta.Package{
		Name:       w.Name,
		ID:         w.ID,
		Namespace:  w.Namespace,
		Attributes: d.attrs(w.Attributes),
		Naming: meta.Conventions{
			Type:      d.naming(w.Naming.Type),
			Method:    d.naming(w.Naming.Method),
			Property:  d.naming(w.Naming.Property),
			Variant:   d.naming(w.Naming.Variant),
			Parameter: d.naming(w.Naming.Parameter),
		},
	}
	d.checkID("package", p.ID, identity.PackageID(p.Name))
	for _, wt := range w.Types {
		done := d.enter(wt.Name)
		p.Types = append(p.Types, d.typ(wt))
		done()
	}
	if d.err != nil {
		return nil, d.err
	}
	return p, nil
}
