package bindgen

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/tangara/abi"
	"github.com/wippyai/tangara/errors"
	"github.com/wippyai/tangara/meta"
)

const maxAliasDepth = 32

// Methods every generated wrapper type already has.
var wrapperMethods = map[string]bool{"Close": true, "Handle": true}

type shape uint8

const (
	shapePrim shape = iota
	shapeEnum
	shapeObject
	shapeTuple
)

// goType is how a metadata TypeRef appears in generated Go. wire is the
// type stored in argument buffers and boxed results.
type goType struct {
	shape shape
	wire  string
	name  string // enum or object type name
	items []goType
}

// host returns the type host code sees.
func (t goType) host() string {
	switch t.shape {
	case shapeEnum:
		return t.name
	case shapeObject:
		return "*" + t.name
	}
	return t.wire
}

// lib returns the type library code sees; q qualifies library names.
func (t goType) lib(q string) string {
	switch t.shape {
	case shapeEnum:
		return q + t.name
	case shapeObject:
		return "*" + q + t.name
	}
	return t.wire
}

type argPlan struct {
	name string
	typ  goType
	mode meta.PassMode
	def  *meta.Value
}

func (a argPlan) indirect() bool {
	return a.mode == meta.ByOut || a.mode == meta.ByRef || a.mode == meta.ByIn
}

// callPlan is a constructor or method crossing the boundary.
type callPlan struct {
	member   string
	id       uint64
	index    int
	skipped  bool // constructor slot kept only for its index
	hostName string
	libName  string
	field    string
	receiver bool
	args     []argPlan
	ret      *goType
	size     int
	doc      string
}

// propPlan is a property or field, instance or static.
type propPlan struct {
	member   string
	id       uint64
	hostName string
	libName  string
	field    string
	typ      goType
	readOnly bool
	data     bool
	doc      string
}

type typePlan struct {
	typ     *meta.Type
	name    string
	field   string
	ctors   []*callPlan
	methods []*callPlan
	props   []*propPlan
	statics []*propPlan
}

type enumConst struct {
	name  string
	value string
	doc   string
}

type enumPlan struct {
	typ    *meta.Type
	name   string
	wire   string
	consts []enumConst
}

// plan is the Go view of a package shared by both generated files, so the
// glue registers exactly what the bindings look up.
type plan struct {
	cfg    Config
	pkg    *meta.Package
	calc   *abi.Calculator
	log    *zap.Logger
	types  []*typePlan
	enums  []*enumPlan
	byID   map[uint64]*typePlan
	enumID map[uint64]*enumPlan
}

func newPlan(cfg Config, pkg *meta.Package, log *zap.Logger) (*plan, error) {
	if pkg == nil {
		return nil, errors.InvalidInput(errors.PhaseGenerate, "nil package")
	}
	p := &plan{
		cfg:    cfg,
		pkg:    pkg,
		calc:   abi.NewCalculator(pkg),
		log:    log.With(zap.String("package", pkg.Name)),
		byID:   make(map[uint64]*typePlan),
		enumID: make(map[uint64]*enumPlan),
	}

	for _, typ := range pkg.Types {
		if !p.visible(typ.Visibility) {
			continue
		}
		if typ.IsGeneric() {
			if typ.Instantiable() {
				p.log.Warn("skipping generic type", zap.String("type", typ.FullName()))
			}
			continue
		}
		switch typ.Kind.(type) {
		case *meta.Enum:
			e, err := p.planEnum(typ)
			if err != nil {
				p.log.Warn("skipping enum", zap.String("type", typ.FullName()), zap.Error(err))
				continue
			}
			p.enums = append(p.enums, e)
			p.enumID[typ.ID] = e
		case *meta.Class, *meta.Struct, *meta.EnumClass:
			name := typeName(typ)
			tp := &typePlan{typ: typ, name: name, field: lowerFirst(name)}
			p.types = append(p.types, tp)
			p.byID[typ.ID] = tp
		}
	}

	for _, tp := range p.types {
		p.fill(tp)
	}
	return p, nil
}

func (p *plan) visible(v meta.Visibility) bool {
	return v == meta.Public || (v == meta.Internal && p.cfg.EnableInternal)
}

func (p *plan) planEnum(typ *meta.Type) (*enumPlan, error) {
	info, err := p.calc.Calculate(meta.RefByID(typ.ID))
	if err != nil {
		return nil, err
	}
	e := &enumPlan{typ: typ, name: typeName(typ), wire: info.Prim.GoType()}
	for _, v := range typ.Kind.(*meta.Enum).Variants {
		e.consts = append(e.consts, enumConst{
			name:  e.name + exported(goNames.Variant, v.Name),
			value: v.Value.String(),
			doc:   v.Attributes.Doc(),
		})
	}
	return e, nil
}

func (p *plan) fill(tp *typePlan) {
	typ := tp.typ
	warn := func(member string, err error) {
		p.log.Warn("skipping member",
			zap.String("type", typ.FullName()),
			zap.String("member", member),
			zap.Error(err))
	}

	variants := variantsOf(typ)
	for _, c := range typ.Constructors() {
		cp := &callPlan{
			member: "new#" + strconv.Itoa(c.Index),
			index:  c.Index,
			field:  "new" + strconv.Itoa(c.Index),
			doc:    c.Attributes.Doc(),
		}
		switch {
		case variants != nil:
			cp.member = variants[c.Index].Name
			cp.libName = "New" + tp.name + exported(goNames.Variant, variants[c.Index].Name)
		case c.Index == 0:
			cp.libName = "New" + tp.name
		default:
			cp.libName = "New" + tp.name + strconv.Itoa(c.Index)
		}
		if s, ok := stringAttr(c.Attributes, GoConstructorFunc); ok {
			cp.libName = s
		}
		cp.hostName = cp.libName

		if !p.visible(c.Visibility) {
			cp.skipped = true
		} else if err := p.signature(cp, c.Args, nil); err != nil {
			warn(cp.member, err)
			cp.skipped = true
		}
		tp.ctors = append(tp.ctors, cp)
	}

	seen := make(map[string]int)
	methods := typ.Methods()
	for i := range methods {
		m := &methods[i]
		if m.Kind == meta.Abstract || !p.visible(m.Visibility) {
			continue
		}
		if len(m.Generics) > 0 {
			warn(m.Name, errors.Unsupported(errors.PhaseGenerate, "generic method"))
			continue
		}

		base := exported(goNames.Method, m.Name)
		seen[m.Name]++
		if s, ok := stringAttr(m.Attributes, GoName); ok {
			base = s
		} else if n := seen[m.Name]; n > 1 {
			base += strconv.Itoa(n)
		}
		cp := &callPlan{
			member:   m.Name,
			id:       m.ID,
			hostName: base,
			libName:  base,
			field:    "fn" + base,
			receiver: m.Kind.HasReceiver(),
			doc:      m.Attributes.Doc(),
		}
		if !cp.receiver {
			cp.hostName = tp.name + base
			cp.libName = tp.name + base
		}
		if s, ok := stringAttr(m.Attributes, GoMethod); ok {
			cp.libName = s
		}
		if cp.receiver && wrapperMethods[cp.hostName] {
			cp.hostName += "_"
		}
		if err := p.signature(cp, m.Args, m.Return); err != nil {
			warn(m.Name, err)
			continue
		}
		tp.methods = append(tp.methods, cp)
	}

	for _, prop := range typ.Properties() {
		if pp, err := p.property(tp, prop, false, false); err != nil {
			warn(prop.Name, err)
		} else if pp != nil {
			tp.props = append(tp.props, pp)
		}
	}
	for _, f := range typ.Fields() {
		if pp, err := p.property(tp, f.AsProperty(), true, false); err != nil {
			warn(f.Name, err)
		} else if pp != nil {
			tp.props = append(tp.props, pp)
		}
	}
	for _, prop := range typ.StaticProperties() {
		if pp, err := p.property(tp, prop, false, true); err != nil {
			warn(prop.Name, err)
		} else if pp != nil {
			tp.statics = append(tp.statics, pp)
		}
	}
	for _, f := range typ.StaticFields() {
		if pp, err := p.property(tp, f.AsProperty(), true, true); err != nil {
			warn(f.Name, err)
		} else if pp != nil {
			tp.statics = append(tp.statics, pp)
		}
	}
}

func variantsOf(typ *meta.Type) []meta.Variant {
	if ec, ok := typ.Kind.(*meta.EnumClass); ok {
		return ec.Variants
	}
	return nil
}

// signature resolves arguments and result and sizes the argument frame.
func (p *plan) signature(cp *callPlan, args []meta.Argument, ret *meta.TypeRef) error {
	for i, a := range args {
		t, err := p.resolve(a.Type)
		if err != nil {
			return fmt.Errorf("argument %q: %w", a.Name, err)
		}
		ap := argPlan{name: paramName(a.Name, i), typ: t, mode: a.Kind.Mode}
		if ap.indirect() && t.shape == shapeObject {
			return fmt.Errorf("argument %q: %w", a.Name,
				errors.Unsupported(errors.PhaseGenerate, "objects cannot be passed by reference"))
		}
		if a.Kind.Mode == meta.ByDefaultValue {
			def := a.Kind.Default
			ap.def = &def
		}
		cp.args = append(cp.args, ap)
	}
	if ret != nil {
		t, err := p.resolve(*ret)
		if err != nil {
			return fmt.Errorf("result: %w", err)
		}
		cp.ret = &t
	}
	frame, err := p.calc.Frame(cp.receiver, args)
	if err != nil {
		return err
	}
	cp.size = frame.Size
	return nil
}

// property plans an accessor pair. It returns nil for members that are not
// visible.
func (p *plan) property(tp *typePlan, prop meta.Property, data, static bool) (*propPlan, error) {
	if !p.visible(prop.Getter) {
		return nil, nil
	}
	t, err := p.resolve(prop.Type)
	if err != nil {
		return nil, err
	}
	if t.shape == shapeTuple {
		return nil, errors.Unsupported(errors.PhaseGenerate, "tuple-typed properties")
	}

	base := exported(goNames.Property, prop.Name)
	if s, ok := stringAttr(prop.Attributes, GoName); ok {
		base = s
	}
	pp := &propPlan{
		member:   prop.Name,
		id:       prop.ID,
		hostName: base,
		libName:  base,
		field:    "prop" + base,
		typ:      t,
		readOnly: prop.Setter == nil || !p.visible(*prop.Setter),
		data:     data,
		doc:      prop.Attributes.Doc(),
	}
	if wrapperMethods[pp.hostName] {
		pp.hostName += "_"
	}
	if static {
		pp.hostName = tp.name + base
		pp.libName = tp.name + base
		pp.field = "static" + base
	}
	if s, ok := stringAttr(prop.Attributes, GoField); ok && data {
		pp.libName = s
	}
	if s, ok := stringAttr(prop.Attributes, GoMethod); ok && !data {
		pp.libName = s
	}
	return pp, nil
}

func (p *plan) resolve(ref meta.TypeRef) (goType, error) {
	return p.resolveDepth(ref, 0)
}

func (p *plan) resolveDepth(ref meta.TypeRef, depth int) (goType, error) {
	if depth > maxAliasDepth {
		return goType{}, errors.Unsupported(errors.PhaseGenerate, "alias chain too deep at "+ref.String())
	}
	switch ref.Kind {
	case meta.RefName, meta.RefID:
		if ref.Kind == meta.RefName {
			if prim, ok := abi.Primitive(ref.Name); ok {
				return goType{shape: shapePrim, wire: prim.GoType()}, nil
			}
		}
		typ, ok := p.pkg.Resolve(ref)
		if !ok {
			return goType{}, errors.NotFound(errors.PhaseGenerate, "type", ref.String())
		}
		if alias, ok := typ.Kind.(*meta.TypeAlias); ok {
			return p.resolveDepth(alias.Target, depth+1)
		}
		if e, ok := p.enumID[typ.ID]; ok {
			return goType{shape: shapeEnum, wire: e.wire, name: e.name}, nil
		}
		if tp, ok := p.byID[typ.ID]; ok {
			return goType{shape: shapeObject, wire: "tangara.Ptr", name: tp.name}, nil
		}
		return goType{}, errors.Unsupported(errors.PhaseGenerate,
			fmt.Sprintf("%s %s is not exposed", typ.Kind.KindName(), typ.FullName()))

	case meta.RefTuple:
		if len(ref.Args) == 0 {
			return goType{}, errors.Unsupported(errors.PhaseGenerate, "empty tuple")
		}
		t := goType{shape: shapeTuple}
		fields := make([]string, len(ref.Args))
		for i, item := range ref.Args {
			it, err := p.resolveDepth(item, depth)
			if err != nil {
				return goType{}, err
			}
			if it.shape != shapePrim {
				return goType{}, errors.Unsupported(errors.PhaseGenerate,
					"tuples may only hold primitives: "+ref.String())
			}
			t.items = append(t.items, it)
			fields[i] = "F" + strconv.Itoa(i) + " " + it.wire
		}
		t.wire = "struct{ " + strings.Join(fields, "; ") + " }"
		return t, nil
	}
	return goType{}, errors.Unsupported(errors.PhaseGenerate, ref.String()+" has no Go form")
}
