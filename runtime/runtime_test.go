package runtime

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/wippyai/tangara"
	"github.com/wippyai/tangara/abi"
	"github.com/wippyai/tangara/builder"
	"github.com/wippyai/tangara/errors"
	"github.com/wippyai/tangara/identity"
	"github.com/wippyai/tangara/meta"
	"github.com/wippyai/tangara/registry"
)

type myStruct struct {
	name string
	peer *myStruct
}

type testLib struct {
	destroyed int
	count     int32
}

func myLibMeta(t *testing.T) *meta.Package {
	t.Helper()
	pkg := builder.NewPackage("MyLib")
	cls := pkg.Class("MyStruct")
	cls.Constructor().Arg(meta.Name("String"), "name").Build().
		Method("get_name").Returns(meta.Name("String")).Build().
		Method("repeat_name").
		Arg(meta.Name("UInt"), "times").
		ArgWith(meta.Name("String"), "sep", meta.DefaultValue(meta.String(""))).
		Returns(meta.Name("String")).Build().
		Method("name_len").ArgWith(meta.Name("Long"), "out", meta.ArgOut).Build().
		Method("clone").Returns(meta.Name("MyStruct")).Build().
		Method("create").Static().Returns(meta.Name("MyStruct")).Build().
		Method("pair").Returns(meta.Tuple(meta.Name("Byte"), meta.Name("String"))).Build().
		Property(meta.Name("String"), "name").ReadWrite().Build().
		Property(meta.Name("MyStruct"), "peer").ReadWrite().Build().
		StaticField(meta.Name("Int"), "count").Build()
	_, err := cls.Build()
	require.NoError(t, err)
	lib, err := pkg.Build()
	require.NoError(t, err)
	return lib
}

func (l *testLib) entry(ctx *registry.Context) {
	self := func(r *abi.Reader) *myStruct { return (*myStruct)(r.This()) }

	ft := ctx.AddPackage(identity.PackageID("MyLib")).
		AddType(identity.TypeID("MyLib.MyStruct"))
	ft.SetDtor(func(tangara.Ptr) { l.destroyed++ }).
		AddCtor(func(args []byte) tangara.Ptr {
			r := abi.NewReader(args)
			return tangara.Ptr(&myStruct{name: abi.Get[string](r)})
		}).
		AddMethod(identity.MethodID("get_name"), func(args []byte) tangara.Ptr {
			return abi.Box(self(abi.NewReader(args)).name)
		}).
		AddMethod(identity.MethodID("repeat_name", meta.Name("UInt"), meta.Name("String")), func(args []byte) tangara.Ptr {
			r := abi.NewReader(args)
			this := self(r)
			times := abi.Get[uint32](r)
			sep := abi.Get[string](r)
			return abi.Box(strings.Repeat(this.name+sep, int(times)))
		}).
		AddMethod(identity.MethodID("name_len", meta.Name("Long")), func(args []byte) tangara.Ptr {
			r := abi.NewReader(args)
			this := self(r)
			*abi.GetRef[int64](r) = int64(len(this.name))
			return nil
		}).
		AddMethod(identity.MethodID("clone"), func(args []byte) tangara.Ptr {
			return tangara.Ptr(&myStruct{name: self(abi.NewReader(args)).name})
		}).
		AddMethod(identity.MethodID("create"), func([]byte) tangara.Ptr {
			return tangara.Ptr(&myStruct{name: "created"})
		}).
		AddMethod(identity.MethodID("pair"), func(args []byte) tangara.Ptr {
			this := self(abi.NewReader(args))
			return abi.Box(struct {
				A uint8
				B string
			}{uint8(len(this.name)), this.name})
		}).
		AddProperty(identity.MemberID("name"), registry.Property{
			Getter: func(this tangara.Ptr) tangara.Ptr { return abi.Box((*myStruct)(this).name) },
			Setter: func(this, v tangara.Ptr) { (*myStruct)(this).name = *(*string)(v) },
		}).
		AddProperty(identity.MemberID("peer"), registry.Property{
			Getter: func(this tangara.Ptr) tangara.Ptr {
				peer := (*myStruct)(this).peer
				if peer == nil {
					return nil
				}
				c := *peer
				return tangara.Ptr(&c)
			},
			Setter: func(this, v tangara.Ptr) {
				src := (*myStruct)(*(*tangara.Ptr)(v))
				if src == nil {
					(*myStruct)(this).peer = nil
					return
				}
				c := *src
				(*myStruct)(this).peer = &c
			},
		}).
		AddStatic(identity.MemberID("count"), registry.StaticProperty{
			Getter: func() tangara.Ptr { return abi.Box(l.count) },
			Setter: func(v tangara.Ptr) { l.count = *(*int32)(v) },
		})
}

func loaded(t *testing.T) (*Runtime, *Module, *testLib) {
	t.Helper()
	lib := &testLib{}
	rt := New(WithLogger(zaptest.NewLogger(t)))
	_, err := rt.LoadStatic("mylib", lib.entry)
	require.NoError(t, err)
	rt.Seal()
	mod, err := rt.Bind(myLibMeta(t))
	require.NoError(t, err)
	return rt, mod, lib
}

func TestLoadStaticRecordsPackages(t *testing.T) {
	rt := New()
	lib, err := rt.LoadStatic("mylib", (&testLib{}).entry)
	require.NoError(t, err)
	assert.Equal(t, []uint64{identity.PackageID("MyLib")}, lib.Packages())
	assert.True(t, lib.Loaded())

	got, err := rt.Library("mylib")
	require.NoError(t, err)
	assert.Same(t, lib, got)

	_, err = rt.LoadStatic("mylib", (&testLib{}).entry)
	assert.True(t, errors.IsKind(err, errors.KindInvalidInput))

	rt.Seal()
	_, err = rt.LoadStatic("other", func(*registry.Context) {})
	assert.True(t, errors.IsKind(err, errors.KindSealed))
}

func TestEntryPointPanic(t *testing.T) {
	rt := New()
	_, err := rt.LoadStatic("bad", func(*registry.Context) { panic("boom") })
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindLoadFailed))
	assert.Empty(t, rt.Libraries())
}

func TestObjectLifecycle(t *testing.T) {
	rt, mod, lib := loaded(t)

	obj, err := mod.New("MyStruct", 0, "Ferris")
	require.NoError(t, err)

	name, err := obj.Call("get_name")
	require.NoError(t, err)
	assert.Equal(t, "Ferris", name)

	rep, err := obj.Call("repeat_name", 2)
	require.NoError(t, err)
	assert.Equal(t, "FerrisFerris", rep)

	rep, err = obj.Call("repeat_name", uint8(2), "-")
	require.NoError(t, err)
	assert.Equal(t, "Ferris-Ferris-", rep)

	require.NoError(t, obj.Set("name", "Crab"))
	got, err := obj.Get("name")
	require.NoError(t, err)
	assert.Equal(t, "Crab", got)

	var n int64
	res, err := obj.Call("name_len", &n)
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.Equal(t, int64(4), n)

	pair, err := obj.Call("pair")
	require.NoError(t, err)
	assert.Equal(t, []any{uint8(4), "Crab"}, pair)

	assert.Equal(t, 1, rt.Objects().Len())
	require.NoError(t, obj.Close())
	assert.Equal(t, 1, lib.destroyed)
	assert.True(t, errors.IsKind(obj.Close(), errors.KindDangling))

	_, err = obj.Call("get_name")
	assert.True(t, errors.IsKind(err, errors.KindDangling))
}

func TestObjectResults(t *testing.T) {
	rt, mod, lib := loaded(t)

	created, err := mod.CallStatic("MyStruct", "create")
	require.NoError(t, err)
	obj, ok := created.(*Object)
	require.True(t, ok)
	name, err := obj.Get("name")
	require.NoError(t, err)
	assert.Equal(t, "created", name)

	clone, err := obj.Call("clone")
	require.NoError(t, err)
	assert.IsType(t, &Object{}, clone)
	assert.Equal(t, 2, rt.Objects().Len())
	require.NoError(t, rt.Close())
	assert.Equal(t, 2, lib.destroyed)
	assert.Equal(t, 0, rt.Objects().Len())
}

func TestObjectProperty(t *testing.T) {
	rt, mod, lib := loaded(t)

	a, err := mod.New("MyStruct", 0, "a")
	require.NoError(t, err)
	b, err := mod.New("MyStruct", 0, "b")
	require.NoError(t, err)

	_, err = a.Get("peer")
	assert.True(t, errors.IsKind(err, errors.KindNullResult))

	require.NoError(t, a.Set("peer", b))
	require.NoError(t, b.Close())
	assert.Equal(t, 1, lib.destroyed)

	// every read hands out a separate object the caller destroys
	first, err := a.Get("peer")
	require.NoError(t, err)
	peer, ok := first.(*Object)
	require.True(t, ok)
	name, err := peer.Call("get_name")
	require.NoError(t, err)
	assert.Equal(t, "b", name)

	second, err := a.Get("peer")
	require.NoError(t, err)
	assert.NotEqual(t, peer.Handle(), second.(*Object).Handle())
	assert.Equal(t, 3, rt.Objects().Len())

	require.NoError(t, peer.Close())
	require.NoError(t, second.(*Object).Close())
	assert.Equal(t, 3, lib.destroyed)

	name, err = a.Call("get_name")
	require.NoError(t, err)
	assert.Equal(t, "a", name)
	require.NoError(t, a.Close())
	assert.Equal(t, 4, lib.destroyed)
	assert.Equal(t, 0, rt.Objects().Len())
}

func TestStatics(t *testing.T) {
	_, mod, lib := loaded(t)

	require.NoError(t, mod.SetStatic("MyStruct", "count", 41))
	assert.Equal(t, int32(41), lib.count)
	v, err := mod.GetStatic("MyStruct", "count")
	require.NoError(t, err)
	assert.Equal(t, int32(41), v)

	err = mod.SetStatic("MyStruct", "count", int64(1)<<40)
	assert.True(t, errors.IsKind(err, errors.KindOverflow))
}

func TestArgumentErrors(t *testing.T) {
	_, mod, _ := loaded(t)

	_, err := mod.New("MyStruct", 0, 42)
	assert.True(t, errors.IsKind(err, errors.KindTypeMismatch))

	_, err = mod.New("MyStruct", 0)
	assert.True(t, errors.IsKind(err, errors.KindNotFound) || errors.IsKind(err, errors.KindInvalidInput))

	_, err = mod.New("MyStruct", 3, "x")
	assert.True(t, errors.IsKind(err, errors.KindOutOfBounds))

	obj, err := mod.New("MyStruct", 0, "x")
	require.NoError(t, err)
	defer obj.Close()

	_, err = obj.Call("repeat_name", -1)
	assert.True(t, errors.IsKind(err, errors.KindOverflow))

	_, err = obj.Call("missing")
	assert.True(t, errors.IsKind(err, errors.KindNotFound))
}

func TestEncodeFloat32Range(t *testing.T) {
	m := &Module{}
	info := abi.Info{Prim: abi.PrimFloat32}

	p, err := m.encode(nil, info, 1.5)
	require.NoError(t, err)
	assert.Equal(t, float32(1.5), *(*float32)(p))

	_, err = m.encode([]string{"x"}, info, 1e39)
	assert.True(t, errors.IsKind(err, errors.KindOverflow))
	_, err = m.encode([]string{"x"}, info, -math.MaxFloat64)
	assert.True(t, errors.IsKind(err, errors.KindOverflow))

	p, err = m.encode(nil, info, math.Inf(-1))
	require.NoError(t, err)
	assert.True(t, math.IsInf(float64(*(*float32)(p)), -1))
}

func TestImplementsCyclicParents(t *testing.T) {
	a := &meta.Type{Name: "A", ID: 1, Kind: &meta.Class{Parents: []meta.TypeRef{meta.Name("B")}}}
	b := &meta.Type{Name: "B", ID: 2, Kind: &meta.Interface{Parents: []meta.TypeRef{meta.Name("A")}}}
	c := &meta.Type{Name: "C", ID: 3, Kind: &meta.Interface{}}
	m := &Module{pkg: &meta.Package{Name: "Cyc", Types: []*meta.Type{a, b, c}}}

	assert.True(t, m.implements(a, b))
	assert.True(t, m.implements(b, a))
	assert.False(t, m.implements(a, c))
	assert.False(t, m.implements(c, a))
}

func TestBindReportsMissingSymbols(t *testing.T) {
	rt := New()
	_, err := rt.LoadStatic("partial", func(ctx *registry.Context) {
		ctx.AddPackage(identity.PackageID("MyLib")).
			AddType(identity.TypeID("MyLib.MyStruct")).
			SetDtor(func(tangara.Ptr) {})
	})
	require.NoError(t, err)

	_, err = rt.Bind(myLibMeta(t))
	var missing *errors.MissingSymbolsError
	require.ErrorAs(t, err, &missing)
	assert.Contains(t, err.Error(), "get_name")
	assert.True(t, errors.IsKind(err, errors.KindNotFound))
}

func TestUnload(t *testing.T) {
	rt, mod, lib := loaded(t)
	loadedLib, err := rt.Library("mylib")
	require.NoError(t, err)

	obj, err := mod.New("MyStruct", 0, "Ferris")
	require.NoError(t, err)

	err = rt.Unload(loadedLib, false)
	assert.True(t, errors.IsKind(err, errors.KindBusy))
	assert.True(t, loadedLib.Loaded())

	require.NoError(t, rt.Unload(loadedLib, true))
	assert.False(t, loadedLib.Loaded())
	assert.Equal(t, 1, lib.destroyed)

	_, err = obj.Call("get_name")
	assert.True(t, errors.IsKind(err, errors.KindDangling))
	_, err = mod.New("MyStruct", 0, "again")
	assert.True(t, errors.IsKind(err, errors.KindDangling))
	_, err = rt.Library("mylib")
	assert.True(t, errors.IsKind(err, errors.KindNotFound))
}

func TestUnloadKeepsBorrowedObjects(t *testing.T) {
	rt, mod, lib := loaded(t)
	loadedLib, err := rt.Library("mylib")
	require.NoError(t, err)

	busy, err := mod.New("MyStruct", 0, "busy")
	require.NoError(t, err)
	idle, err := mod.New("MyStruct", 0, "idle")
	require.NoError(t, err)
	_, err = rt.Objects().Borrow(busy.Handle())
	require.NoError(t, err)

	err = rt.Unload(loadedLib, true)
	assert.True(t, errors.IsKind(err, errors.KindBusy))
	assert.True(t, loadedLib.Loaded())
	assert.Equal(t, 1, lib.destroyed)
	_, err = idle.Call("get_name")
	assert.True(t, errors.IsKind(err, errors.KindDangling))

	require.NoError(t, rt.Objects().Return(busy.Handle()))
	name, err := busy.Call("get_name")
	require.NoError(t, err)
	assert.Equal(t, "busy", name)

	require.NoError(t, rt.Unload(loadedLib, true))
	assert.False(t, loadedLib.Loaded())
	assert.Equal(t, 2, lib.destroyed)
}

func TestLoadPluginMissingFile(t *testing.T) {
	rt := New()
	_, err := rt.LoadPlugin("/nonexistent/lib.so")
	assert.True(t, errors.IsKind(err, errors.KindLoadFailed))
}
