package runtime

import (
	"slices"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/tangara"
	"github.com/wippyai/tangara/abi"
	"github.com/wippyai/tangara/errors"
	"github.com/wippyai/tangara/handle"
	"github.com/wippyai/tangara/meta"
	"github.com/wippyai/tangara/registry"
)

// Module calls into a loaded package using its metadata to lay out
// arguments and results.
type Module struct {
	rt     *Runtime
	pkg    *meta.Package
	types  map[uint64]*boundType
	calcMu sync.Mutex
	calc   *abi.Calculator
}

type boundType struct {
	typ   *meta.Type
	funcs *registry.FuncTable
}

// Bind resolves every instantiable, non-generic type of pkg in the
// registry. Members the metadata declares but the library did not register
// are reported together as *errors.MissingSymbolsError.
func (r *Runtime) Bind(pkg *meta.Package) (*Module, error) {
	tt, err := r.ctx.Package(pkg.ID)
	if err != nil {
		return nil, err
	}

	m := &Module{
		rt:    r,
		pkg:   pkg,
		types: make(map[uint64]*boundType),
		calc:  abi.NewCalculator(pkg),
	}

	var missing []string
	for _, typ := range pkg.Types {
		if !typ.Instantiable() {
			continue
		}
		if typ.IsGeneric() {
			r.logger.Warn("skipping generic type", zap.String("type", typ.FullName()))
			continue
		}
		funcs, err := tt.Type(typ.ID)
		if err != nil {
			if typ.Visibility == meta.Public {
				missing = append(missing, typ.FullName()+"#")
			}
			continue
		}
		missing = append(missing, missingMembers(typ, funcs)...)
		m.types[typ.ID] = &boundType{typ: typ, funcs: funcs}
	}
	if len(missing) > 0 {
		return nil, errors.NewMissingSymbolsError(missing)
	}
	return m, nil
}

// missingMembers lists the public members funcs lacks. Members with other
// visibilities are optional.
func missingMembers(typ *meta.Type, funcs *registry.FuncTable) []string {
	var out []string
	key := func(member string) string { return typ.FullName() + "#" + member }

	if len(typ.Constructors()) > 0 {
		if _, err := funcs.Dtor(); err != nil {
			out = append(out, key("drop"))
		}
	}
	for _, c := range typ.Constructors() {
		if c.Visibility != meta.Public {
			continue
		}
		if _, err := funcs.Ctor(c.Index); err != nil {
			out = append(out, key("new#"+strconv.Itoa(c.Index)))
		}
	}
	for _, mt := range typ.Methods() {
		if mt.Kind == meta.Abstract || len(mt.Generics) > 0 || mt.Visibility != meta.Public {
			continue
		}
		if _, err := funcs.Method(mt.ID); err != nil {
			out = append(out, key(mt.Name))
		}
	}
	check := func(p meta.Property, lookup func(uint64) error) {
		if p.Getter != meta.Public {
			return
		}
		if err := lookup(p.ID); err != nil {
			out = append(out, key(p.Name))
		}
	}
	instance := func(id uint64) error {
		_, err := funcs.Property(id)
		return err
	}
	static := func(id uint64) error {
		_, err := funcs.Static(id)
		return err
	}
	for _, p := range typ.Properties() {
		check(p, instance)
	}
	for _, f := range typ.Fields() {
		check(f.AsProperty(), instance)
	}
	for _, p := range typ.StaticProperties() {
		check(p, static)
	}
	for _, f := range typ.StaticFields() {
		check(f.AsProperty(), static)
	}
	return out
}

// Package returns the bound metadata.
func (m *Module) Package() *meta.Package {
	return m.pkg
}

func (m *Module) bound(typeName string) (*boundType, error) {
	typ, ok := m.pkg.Type(typeName)
	if !ok {
		return nil, errors.NotFound(errors.PhaseLookup, "type", typeName)
	}
	bt, ok := m.types[typ.ID]
	if !ok {
		return nil, errors.New(errors.PhaseLookup, errors.KindUnsupported).
			MetaType(typ.FullName()).
			Detail("%s types cannot be called", typ.Kind.KindName()).
			Build()
	}
	return bt, nil
}

func (m *Module) layout(t meta.TypeRef) (abi.Info, error) {
	m.calcMu.Lock()
	defer m.calcMu.Unlock()
	return m.calc.Calculate(t)
}

func (m *Module) frame(receiver bool, args []meta.Argument) (abi.Frame, error) {
	m.calcMu.Lock()
	defer m.calcMu.Unlock()
	return m.calc.Frame(receiver, args)
}

// New calls constructor ctor of typeName and takes ownership of the result.
func (m *Module) New(typeName string, ctor int, args ...any) (*Object, error) {
	bt, err := m.bound(typeName)
	if err != nil {
		return nil, err
	}
	ctors := bt.typ.Constructors()
	if ctor < 0 || ctor >= len(ctors) {
		return nil, errors.OutOfBounds(errors.PhaseLookup, []string{bt.typ.FullName(), "new"}, ctor, len(ctors))
	}
	fn, err := bt.funcs.Ctor(ctor)
	if err != nil {
		return nil, err
	}

	path := []string{bt.typ.FullName(), "new#" + strconv.Itoa(ctor)}
	w, err := m.pack(path, nil, ctors[ctor].Args, args)
	if err != nil {
		return nil, err
	}
	p, err := abi.Object(abi.Call(fn, w))
	if err != nil {
		return nil, errors.NullResult(path, bt.typ.FullName())
	}
	return m.adopt(bt, p)
}

// CallStatic calls a static method of typeName.
func (m *Module) CallStatic(typeName, method string, args ...any) (any, error) {
	bt, err := m.bound(typeName)
	if err != nil {
		return nil, err
	}
	mt, err := resolveMethod(bt.typ, method, len(args), false)
	if err != nil {
		return nil, err
	}
	return m.invoke(bt, mt, nil, args)
}

// GetStatic reads a static property or field of typeName.
func (m *Module) GetStatic(typeName, name string) (any, error) {
	bt, prop, err := m.staticMember(typeName, name)
	if err != nil {
		return nil, err
	}
	acc, err := bt.funcs.Static(prop.ID)
	if err != nil {
		return nil, err
	}
	return m.result([]string{bt.typ.FullName(), name}, &prop.Type, acc.Getter())
}

// SetStatic writes a static property or field of typeName.
func (m *Module) SetStatic(typeName, name string, v any) error {
	bt, prop, err := m.staticMember(typeName, name)
	if err != nil {
		return err
	}
	acc, err := bt.funcs.Static(prop.ID)
	if err != nil {
		return err
	}
	path := []string{bt.typ.FullName(), name}
	if acc.Setter == nil {
		return readOnly(path)
	}
	p, err := m.value(path, prop.Type, v)
	if err != nil {
		return err
	}
	acc.Setter(p)
	return nil
}

func (m *Module) staticMember(typeName, name string) (*boundType, meta.Property, error) {
	bt, err := m.bound(typeName)
	if err != nil {
		return nil, meta.Property{}, err
	}
	for _, p := range bt.typ.StaticProperties() {
		if p.Name == name {
			return bt, p, nil
		}
	}
	for _, f := range bt.typ.StaticFields() {
		if f.Name == name {
			return bt, f.AsProperty(), nil
		}
	}
	return nil, meta.Property{}, errors.NotFound(errors.PhaseLookup, "static property", bt.typ.FullName()+"."+name)
}

// invoke packs args, calls mt and converts its result. this is nil for
// static methods.
func (m *Module) invoke(bt *boundType, mt *meta.Method, this tangara.Ptr, args []any) (any, error) {
	fn, err := bt.funcs.Method(mt.ID)
	if err != nil {
		return nil, err
	}
	path := []string{bt.typ.FullName(), mt.Name}
	var receiver *tangara.Ptr
	if mt.Kind.HasReceiver() {
		receiver = &this
	}
	w, err := m.pack(path, receiver, mt.Args, args)
	if err != nil {
		return nil, err
	}
	return m.result(path, mt.Return, abi.Call(fn, w))
}

func (m *Module) pack(path []string, this *tangara.Ptr, params []meta.Argument, args []any) (*abi.Writer, error) {
	args, err := defaults(path, params, args)
	if err != nil {
		return nil, err
	}
	f, err := m.frame(this != nil, params)
	if err != nil {
		return nil, err
	}

	w := abi.NewWriter(f.Size)
	slots := f.Slots
	if this != nil {
		w.PutThis(*this)
		slots = slots[1:]
	}
	for i, a := range params {
		if err := m.put(w, slices.Concat(path, []string{a.Name}), slots[i], a.Kind.Indirect(), args[i]); err != nil {
			w.Release()
			return nil, err
		}
	}
	return w, nil
}

// result converts a returned Ptr according to the declared return type.
func (m *Module) result(path []string, ret *meta.TypeRef, p tangara.Ptr) (any, error) {
	if ret == nil {
		return nil, abi.MustBeNull(p)
	}
	info, err := m.layout(*ret)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errors.NullResult(path, ret.String())
	}
	if info.Object != nil {
		bt, ok := m.types[info.Object.ID]
		if !ok {
			return p, nil
		}
		return m.adopt(bt, p)
	}
	return m.decode(p, info)
}

// value stores v in caller storage for a setter.
func (m *Module) value(path []string, t meta.TypeRef, v any) (tangara.Ptr, error) {
	info, err := m.layout(t)
	if err != nil {
		return nil, err
	}
	return m.encode(path, info, v)
}

func (m *Module) adopt(bt *boundType, p tangara.Ptr) (*Object, error) {
	h, err := m.rt.objects.Insert(handle.Object{Ptr: p, Funcs: bt.funcs})
	if err != nil {
		return nil, err
	}
	return &Object{mod: m, typ: bt.typ, funcs: bt.funcs, handle: h}, nil
}

// implements reports whether typ lists parent among its parents, directly
// or through an ancestor. Cycles in the parent graph are walked once.
func (m *Module) implements(typ, parent *meta.Type) bool {
	return m.implementsSeen(typ, parent, make(map[uint64]bool))
}

func (m *Module) implementsSeen(typ, parent *meta.Type, seen map[uint64]bool) bool {
	if seen[typ.ID] {
		return false
	}
	seen[typ.ID] = true

	var parents []meta.TypeRef
	switch k := typ.Kind.(type) {
	case *meta.Class:
		parents = k.Parents
	case *meta.Interface:
		parents = k.Parents
	}
	for _, ref := range parents {
		pt, ok := m.pkg.Resolve(ref)
		if !ok {
			continue
		}
		if pt.ID == parent.ID || m.implementsSeen(pt, parent, seen) {
			return true
		}
	}
	return false
}

// resolveMethod finds the overload of name taking n arguments, counting
// omittable defaults.
func resolveMethod(typ *meta.Type, name string, n int, instance bool) (*meta.Method, error) {
	var found *meta.Method
	for _, mt := range typ.Methods() {
		if mt.Name != name || mt.Kind.HasReceiver() != instance {
			continue
		}
		if n > len(mt.Args) || n < required(mt.Args) {
			continue
		}
		if found != nil {
			return nil, errors.New(errors.PhaseLookup, errors.KindInvalidInput).
				Path(typ.FullName(), name).
				Detail("ambiguous overload for %d arguments, use CallID", n).
				Build()
		}
		found = &mt
	}
	if found == nil {
		return nil, errors.NotFound(errors.PhaseLookup, "method", typ.FullName()+"."+name)
	}
	return found, nil
}

func required(args []meta.Argument) int {
	n := 0
	for _, a := range args {
		if a.Kind.Mode != meta.ByDefaultValue {
			n++
		}
	}
	return n
}

func readOnly(path []string) error {
	return errors.New(errors.PhaseCall, errors.KindUnsupported).
		Path(path...).
		Detail("property is read-only").
		Build()
}
