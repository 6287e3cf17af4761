package bindgen

import (
	"context"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wippyai/tangara/builder"
	"github.com/wippyai/tangara/errors"
	"github.com/wippyai/tangara/identity"
	"github.com/wippyai/tangara/meta"
)

var (
	tString = meta.Name("String")
	tInt    = meta.Name("Int")
	tDouble = meta.Name("Double")
)

func libPackage(t *testing.T) *meta.Package {
	t.Helper()
	pkg := builder.NewPackage("MyLib")

	_, err := pkg.Enum("Color").Literal("red").Literal("green").Build()
	require.NoError(t, err)
	_, err = pkg.Bitflags("Perm").Literal("read").Literal("write").Build()
	require.NoError(t, err)

	cls := pkg.Class("MyStruct").Attribute(meta.DocAttribute, meta.String("MyStruct holds a name."))
	cls.Constructor().Arg(tString, "name").Build().
		Constructor().Visibility(meta.Private).Build().
		Constructor().Arg(tInt, "n").Attribute(GoConstructorFunc, meta.String("MakeMyStruct")).Build().
		Method("get_name").Returns(tString).Build().
		Method("area").Arg(tInt, "x").Returns(tDouble).Build().
		Method("area").Arg(tDouble, "x").Returns(tDouble).Build().
		Method("repeat_name").
		Arg(meta.Name("UInt"), "times").
		ArgWith(tString, "sep", meta.DefaultValue(meta.String("-"))).
		Returns(tString).Build().
		Method("name_len").ArgWith(meta.Name("Long"), "out", meta.ArgOut).Build().
		Method("clone").Returns(meta.Name("MyStruct")).Build().
		Method("create").Static().Returns(meta.Name("MyStruct")).Build().
		Method("pair").Returns(meta.Tuple(meta.Name("Byte"), tString)).Build().
		Method("tint").Arg(meta.Name("Color"), "c").Returns(meta.Name("Color")).Build().
		Method("map").Generic("T").Arg(meta.Name("T"), "v").Build().
		Method("apply").Arg(meta.Fn(nil, tInt), "f").Build().
		Method("close").Build().
		Method("hidden").Visibility(meta.Internal).Build().
		Property(tString, "name").ReadWrite().Build().
		Field(meta.Name("Color"), "color").Build().
		StaticField(tInt, "count").Build().
		StaticProperty(meta.Name("MyStruct"), "fallback").Build()
	_, err = cls.Build()
	require.NoError(t, err)

	_, err = pkg.Class("Box").Generic("T").Method("get").Returns(meta.Name("T")).Build().Build()
	require.NoError(t, err)

	ec := pkg.EnumClass("Event")
	ec.Variant("click").Field(tInt, "x").Build().Field(tInt, "y").Build().Build().
		Variant("quit").Build().
		Method("describe").Returns(tString).Build()
	_, err = ec.Build()
	require.NoError(t, err)

	_, err = pkg.Interface("Shape").Method("area").Returns(tDouble).Build().Build()
	require.NoError(t, err)

	lib, err := pkg.Build()
	require.NoError(t, err)
	return lib
}

func generator(t *testing.T, cfg Config) (*Generator, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.WarnLevel)
	return New(cfg).WithLogger(zap.New(core)), logs
}

func parse(t *testing.T, src []byte) *ast.File {
	t.Helper()
	f, err := parser.ParseFile(token.NewFileSet(), "gen.go", src, parser.ParseComments)
	require.NoError(t, err, "generated source:\n%s", src)
	return f
}

// decls returns the names of top-level functions, methods and types.
func decls(f *ast.File) map[string]bool {
	out := make(map[string]bool)
	for _, d := range f.Decls {
		switch d := d.(type) {
		case *ast.FuncDecl:
			name := d.Name.Name
			if d.Recv != nil && len(d.Recv.List) == 1 {
				recv := d.Recv.List[0].Type
				if star, ok := recv.(*ast.StarExpr); ok {
					recv = star.X
				}
				if id, ok := recv.(*ast.Ident); ok {
					name = id.Name + "." + name
				}
			}
			out[name] = true
		case *ast.GenDecl:
			for _, s := range d.Specs {
				switch s := s.(type) {
				case *ast.TypeSpec:
					out[s.Name.Name] = true
				case *ast.ValueSpec:
					for _, n := range s.Names {
						out[n.Name] = true
					}
				}
			}
		}
	}
	return out
}

var blanks = regexp.MustCompile(`[ \t]+`)

// squash collapses runs of blanks, so expectations do not depend on how
// gofmt aligns comments and columns.
func squash(src []byte) string {
	return blanks.ReplaceAllString(string(src), " ")
}

func imports(f *ast.File) []string {
	var out []string
	for _, is := range f.Imports {
		out = append(out, strings.Trim(is.Path.Value, `"`))
	}
	return out
}

func TestEntrypoint(t *testing.T) {
	gen, logs := generator(t, Config{
		PackageName:    "main",
		LibraryPackage: "example.com/mylib",
	})
	src, err := gen.Entrypoint(libPackage(t))
	require.NoError(t, err)

	f := parse(t, src)
	assert.Equal(t, "main", f.Name.Name)
	assert.True(t, strings.HasPrefix(string(src), header))

	names := decls(f)
	for _, want := range []string{"TgLoad", "tgDrop", "tgRegisterMyStruct", "tgRegisterEvent"} {
		assert.True(t, names[want], "missing %s", want)
	}
	assert.False(t, names["tgRegisterBox"], "generic types are not registered")
	assert.False(t, names["tgRegisterShape"], "interfaces are not registered")

	s := squash(src)
	assert.Contains(t, s, hex(identity.PackageID("MyLib")))
	assert.Contains(t, s, hex(identity.TypeID("MyLib.MyStruct")))
	assert.Contains(t, s, "lib.NewMyStruct(name)")
	assert.Contains(t, s, "ft.AddCtor(nil) // new#1 is not exposed")
	assert.Contains(t, s, "lib.MakeMyStruct(n)")
	assert.Contains(t, s, "this.Area(x)")
	assert.Contains(t, s, "this.Area2(x)")
	assert.Contains(t, s, "lib.MyStructCreate()")
	assert.Contains(t, s, "abi.GetRef[int64](r)")
	assert.Contains(t, s, "lib.Color(abi.Get[int32](r))")
	assert.Contains(t, s, "return abi.Box(int32(this.Tint(c)))")
	assert.Contains(t, s, "res0, res1 := this.Pair()")
	assert.Contains(t, s, "lib.MyStructCount = *(*int32)(v)")
	assert.Contains(t, s, "return tangara.Ptr(tgCopy(lib.MyStructFallback()))")
	assert.True(t, names["tgCopy"])
	assert.Contains(t, s, "lib.NewEventClick(x, y)")
	assert.Contains(t, s, "lib.NewEventQuit()")
	assert.Contains(t, s, hex(identity.MethodID("area", tDouble)))
	assert.NotContains(t, s, "Map(")
	assert.NotContains(t, s, "Hidden(")
	assert.Contains(t, imports(f), "example.com/mylib")
	assert.NotContains(t, imports(f), importErrors)

	var skipped []string
	for _, e := range logs.All() {
		if m, ok := e.ContextMap()["member"]; ok {
			skipped = append(skipped, m.(string))
		}
	}
	assert.ElementsMatch(t, []string{"map", "apply"}, skipped)
	assert.Equal(t, 1, logs.FilterMessage("skipping generic type").Len())
}

func TestEntrypointSamePackage(t *testing.T) {
	gen, _ := generator(t, Config{PackageName: "mylib"})
	src, err := gen.Entrypoint(libPackage(t))
	require.NoError(t, err)

	s := squash(src)
	assert.Contains(t, s, "tangara.Ptr(NewMyStruct(name))")
	assert.NotContains(t, s, "lib.")
}

func TestEntrypointEnableInternal(t *testing.T) {
	gen, _ := generator(t, Config{PackageName: "main", EnableInternal: true})
	src, err := gen.Entrypoint(libPackage(t))
	require.NoError(t, err)
	assert.Contains(t, string(src), "this.Hidden()")
}

func TestBindings(t *testing.T) {
	gen, _ := generator(t, Config{PackageName: "mylib"})
	src, err := gen.Bindings(libPackage(t))
	require.NoError(t, err)

	f := parse(t, src)
	names := decls(f)
	for _, want := range []string{
		"PackageID", "Bindings", "Load", "Color", "ColorRed", "ColorGreen", "Perm", "PermWrite",
		"MyStruct", "Event", "Bindings.Alive", "Bindings.loadMyStruct",
		"Bindings.NewMyStruct", "Bindings.MakeMyStruct", "Bindings.MyStructCreate",
		"Bindings.MyStructCount", "Bindings.SetMyStructCount", "Bindings.MyStructFallback",
		"Bindings.NewEventClick", "Bindings.NewEventQuit",
		"MyStruct.GetName", "MyStruct.Area", "MyStruct.Area2", "MyStruct.RepeatName",
		"MyStruct.NameLen", "MyStruct.Clone", "MyStruct.Pair", "MyStruct.Tint",
		"MyStruct.Close_", "MyStruct.Close", "MyStruct.Handle",
		"MyStruct.Name", "MyStruct.SetName", "MyStruct.Color", "MyStruct.SetColor",
		"Event.Describe",
	} {
		assert.True(t, names[want], "missing %s", want)
	}
	assert.False(t, names["Bindings.SetMyStructFallback"], "read-only static property has no setter")
	assert.False(t, names["Box"])
	assert.False(t, names["Bindings.NewMyStruct1"], "private constructor is not bound")

	s := squash(src)
	assert.Contains(t, s, "type Color int32")
	assert.Contains(t, s, "PermWrite Perm = 1")
	assert.Contains(t, s, "// MyStruct holds a name.")
	assert.Contains(t, s, `missing = append(missing, key+"new#2")`)
	assert.Contains(t, s, `const key = "MyLib.MyStruct#"`)
	assert.Contains(t, s, "func (o *MyStruct) Pair() (res0 uint8, res1 string, err error)")
	assert.Contains(t, s, "func (o *MyStruct) NameLen(out *int64) (err error)")
	assert.Contains(t, s, `// The library default for sep is "-".`)
	assert.Contains(t, s, "return nil, errors.NewMissingSymbolsError(missing)")
}

func TestBindingsLoadName(t *testing.T) {
	gen, _ := generator(t, Config{PackageName: "mylib", LoadName: "Open"})
	src, err := gen.Bindings(libPackage(t))
	require.NoError(t, err)
	names := decls(parse(t, src))
	assert.True(t, names["Open"])
	assert.False(t, names["Load"])
}

func TestGoNameAttributes(t *testing.T) {
	pkg := builder.NewPackage("Geo")
	cls := pkg.Class("point_2d").Attribute(GoName, meta.String("Point"))
	cls.Constructor().Build().
		Method("len").Attribute(GoMethod, meta.String("Length")).Returns(tDouble).Build().
		Method("type").Attribute(GoName, meta.String("Kind")).Returns(tInt).Build().
		Field(tDouble, "x").Attribute(GoField, meta.String("PosX")).Build()
	_, err := cls.Build()
	require.NoError(t, err)
	lib, err := pkg.Build()
	require.NoError(t, err)

	gen, _ := generator(t, Config{PackageName: "geo", LibraryPackage: "example.com/geo"})
	entry, err := gen.Entrypoint(lib)
	require.NoError(t, err)
	host, err := gen.Bindings(lib)
	require.NoError(t, err)

	e := squash(entry)
	assert.Contains(t, e, "lib.NewPoint()")
	assert.Contains(t, e, "this.Length()")
	assert.Contains(t, e, "this.Kind()")
	assert.Contains(t, e, "(*lib.Point)(this).PosX")

	names := decls(parse(t, host))
	assert.True(t, names["Point.Len"])
	assert.True(t, names["Point.Kind"])
	assert.True(t, names["Point.X"])
}

func TestGoStd(t *testing.T) {
	std, err := GoStd()
	require.NoError(t, err)
	for _, ref := range []meta.TypeRef{GoName, GoMethod, GoField, GoConstructorFunc, meta.FlagsAttribute} {
		typ, ok := std.Type(ref.Name)
		require.True(t, ok, ref.Name)
		assert.Equal(t, identity.TypeID(ref.Name), typ.ID)
	}
}

func TestConfigValidation(t *testing.T) {
	_, err := New(Config{PackageName: "not valid"}).Entrypoint(libPackage(t))
	assert.True(t, errors.IsKind(err, errors.KindInvalidInput))

	_, err = New(Config{PackageName: "x", LoadName: "load"}).Bindings(libPackage(t))
	assert.True(t, errors.IsKind(err, errors.KindInvalidInput))

	_, err = New(Config{PackageName: "x"}).Bindings(nil)
	assert.True(t, errors.IsKind(err, errors.KindInvalidInput))
}

func TestGenerateConcurrently(t *testing.T) {
	other, err := builder.NewPackage("2nd-Lib").Build()
	require.NoError(t, err)

	out, err := Generate(context.Background(), []*meta.Package{libPackage(t), other}, Config{})
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "mylib", parse(t, out[0].Entrypoint).Name.Name)
	assert.Equal(t, "p2ndlib", parse(t, out[1].Bindings).Name.Name)
	assert.Contains(t, string(out[1].Entrypoint), "ctx.AddPackage(")
}

func TestGenerateFails(t *testing.T) {
	_, err := Generate(context.Background(), []*meta.Package{nil}, Config{})
	assert.True(t, errors.IsKind(err, errors.KindInvalidInput))
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gen", "lib_tangara.go")
	require.NoError(t, WriteFile(path, []byte("package x\n")))
	require.NoError(t, WriteFile(path, []byte("package y\n")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "package y\n", string(got))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestPackageName(t *testing.T) {
	assert.Equal(t, "mylib", PackageName("MyLib"))
	assert.Equal(t, "p2d", PackageName("2D"))
	assert.Equal(t, "generated", PackageName("__"))
}
