package registry

import (
	"slices"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/tangara"
	"github.com/wippyai/tangara/errors"
)

// Property is the accessor pair of an instance property or field. A nil
// Setter means read-only.
type Property struct {
	Getter tangara.GetterFn
	Setter tangara.SetterFn
}

// StaticProperty is the accessor pair of a static property or field.
type StaticProperty struct {
	Getter tangara.StaticGetterFn
	Setter tangara.StaticSetterFn
}

// TypeTable holds the FuncTables of one package.
type TypeTable struct {
	ctx     *Context
	id      uint64
	retired atomic.Bool
	types   map[uint64]*FuncTable
	order   []uint64
}

func newTypeTable(ctx *Context, id uint64) *TypeTable {
	return &TypeTable{
		ctx:   ctx,
		id:    id,
		types: make(map[uint64]*FuncTable),
	}
}

// ID returns the package ID.
func (t *TypeTable) ID() uint64 { return t.id }

// Alive reports whether the table has not been retired.
func (t *TypeTable) Alive() bool { return !t.retired.Load() }

// AddType creates an empty FuncTable for id, replacing any existing one.
// It panics with errors.KindSealed after Seal.
func (t *TypeTable) AddType(id uint64) *FuncTable {
	f, err := t.TryAddType(id)
	if err != nil {
		panic(err)
	}
	return f
}

// TryAddType is AddType returning errors.KindSealed instead of panicking.
func (t *TypeTable) TryAddType(id uint64) (*FuncTable, error) {
	f := newFuncTable(t, id)
	err := t.ctx.write("type table", func() {
		if old, ok := t.types[id]; ok {
			old.retired.Store(true)
		} else {
			t.order = append(t.order, id)
		}
		t.types[id] = f
	})
	if err != nil {
		return nil, err
	}
	Logger().Debug("type registered", zap.Uint64("package", t.id), zap.Uint64("type", id))
	return f, nil
}

// Type returns the FuncTable registered under id.
func (t *TypeTable) Type(id uint64) (*FuncTable, error) {
	if !t.Alive() {
		return nil, errors.Dangling(errors.PhaseLookup, "package", t.id)
	}
	var f *FuncTable
	var ok bool
	t.ctx.read(func() { f, ok = t.types[id] })
	if !ok {
		return nil, errors.NotFoundID(errors.PhaseLookup, "type", id)
	}
	return f, nil
}

// Types returns the registered type IDs in registration order.
func (t *TypeTable) Types() []uint64 {
	var out []uint64
	t.ctx.read(func() { out = slices.Clone(t.order) })
	return out
}

// FuncTable holds the functions of one type.
type FuncTable struct {
	parent  *TypeTable
	id      uint64
	retired atomic.Bool
	dtor    tangara.DtorFn
	ctors   []tangara.Fn
	methods map[uint64]tangara.Fn
	props   map[uint64]Property
	statics map[uint64]StaticProperty
}

func newFuncTable(parent *TypeTable, id uint64) *FuncTable {
	return &FuncTable{
		parent:  parent,
		id:      id,
		methods: make(map[uint64]tangara.Fn),
		props:   make(map[uint64]Property),
		statics: make(map[uint64]StaticProperty),
	}
}

// ID returns the type ID.
func (f *FuncTable) ID() uint64 { return f.id }

// PackageID returns the ID of the owning package.
func (f *FuncTable) PackageID() uint64 { return f.parent.id }

// Alive reports whether neither this table nor its package was retired.
func (f *FuncTable) Alive() bool {
	return !f.retired.Load() && f.parent.Alive()
}

// SetDtor sets the destructor.
func (f *FuncTable) SetDtor(fn tangara.DtorFn) *FuncTable {
	must(f.TrySetDtor(fn))
	return f
}

// TrySetDtor is SetDtor returning errors.KindSealed instead of panicking.
func (f *FuncTable) TrySetDtor(fn tangara.DtorFn) error {
	return f.parent.ctx.write("destructor", func() { f.dtor = fn })
}

// AddCtor appends a constructor. Constructors are addressed by the order
// they were added in.
func (f *FuncTable) AddCtor(fn tangara.Fn) *FuncTable {
	must(f.TryAddCtor(fn))
	return f
}

// TryAddCtor is AddCtor returning errors.KindSealed instead of panicking.
func (f *FuncTable) TryAddCtor(fn tangara.Fn) error {
	return f.parent.ctx.write("constructor", func() { f.ctors = append(f.ctors, fn) })
}

// AddMethod registers a method under its method ID.
func (f *FuncTable) AddMethod(id uint64, fn tangara.Fn) *FuncTable {
	must(f.TryAddMethod(id, fn))
	return f
}

// TryAddMethod is AddMethod returning errors.KindSealed instead of
// panicking.
func (f *FuncTable) TryAddMethod(id uint64, fn tangara.Fn) error {
	return f.parent.ctx.write("method", func() { f.methods[id] = fn })
}

// AddProperty registers the accessors of an instance property or field.
func (f *FuncTable) AddProperty(id uint64, p Property) *FuncTable {
	must(f.TryAddProperty(id, p))
	return f
}

// TryAddProperty is AddProperty returning errors.KindSealed instead of
// panicking.
func (f *FuncTable) TryAddProperty(id uint64, p Property) error {
	return f.parent.ctx.write("property", func() { f.props[id] = p })
}

// AddStatic registers the accessors of a static property or field.
func (f *FuncTable) AddStatic(id uint64, p StaticProperty) *FuncTable {
	must(f.TryAddStatic(id, p))
	return f
}

// TryAddStatic is AddStatic returning errors.KindSealed instead of
// panicking.
func (f *FuncTable) TryAddStatic(id uint64, p StaticProperty) error {
	return f.parent.ctx.write("static property", func() { f.statics[id] = p })
}

// Dtor returns the destructor.
func (f *FuncTable) Dtor() (tangara.DtorFn, error) {
	if err := f.check(); err != nil {
		return nil, err
	}
	var fn tangara.DtorFn
	f.parent.ctx.read(func() { fn = f.dtor })
	if fn == nil {
		return nil, errors.NotFoundID(errors.PhaseLookup, "destructor", f.id)
	}
	return fn, nil
}

// Ctor returns the constructor at index i. A nil placeholder added to keep
// later indices stable is reported as not found.
func (f *FuncTable) Ctor(i int) (tangara.Fn, error) {
	if err := f.check(); err != nil {
		return nil, err
	}
	var fn tangara.Fn
	var n int
	f.parent.ctx.read(func() {
		n = len(f.ctors)
		if i >= 0 && i < n {
			fn = f.ctors[i]
		}
	})
	if fn == nil {
		return nil, errors.New(errors.PhaseLookup, errors.KindNotFound).
			Detail("constructor %d of type %#016x (have %d)", i, f.id, n).
			Build()
	}
	return fn, nil
}

// Ctors returns the number of registered constructors.
func (f *FuncTable) Ctors() int {
	var n int
	f.parent.ctx.read(func() { n = len(f.ctors) })
	return n
}

// Method returns the method registered under id.
func (f *FuncTable) Method(id uint64) (tangara.Fn, error) {
	if err := f.check(); err != nil {
		return nil, err
	}
	var fn tangara.Fn
	var ok bool
	f.parent.ctx.read(func() { fn, ok = f.methods[id] })
	if !ok {
		return nil, errors.NotFoundID(errors.PhaseLookup, "method", id)
	}
	return fn, nil
}

// Property returns the accessors registered under id.
func (f *FuncTable) Property(id uint64) (Property, error) {
	if err := f.check(); err != nil {
		return Property{}, err
	}
	var p Property
	var ok bool
	f.parent.ctx.read(func() { p, ok = f.props[id] })
	if !ok {
		return Property{}, errors.NotFoundID(errors.PhaseLookup, "property", id)
	}
	return p, nil
}

// Static returns the static accessors registered under id.
func (f *FuncTable) Static(id uint64) (StaticProperty, error) {
	if err := f.check(); err != nil {
		return StaticProperty{}, err
	}
	var p StaticProperty
	var ok bool
	f.parent.ctx.read(func() { p, ok = f.statics[id] })
	if !ok {
		return StaticProperty{}, errors.NotFoundID(errors.PhaseLookup, "static property", id)
	}
	return p, nil
}

func (f *FuncTable) check() error {
	if !f.Alive() {
		return errors.Dangling(errors.PhaseLookup, "type", f.id)
	}
	return nil
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
