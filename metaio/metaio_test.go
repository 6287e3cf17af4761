package metaio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/tangara/builder"
	"github.com/wippyai/tangara/errors"
	"github.com/wippyai/tangara/meta"
)

var equateEmpty = cmpopts.EquateEmpty()

func samplePackage(t *testing.T) *meta.Package {
	t.Helper()
	pkg := builder.NewPackage("MyLib").
		Attribute(meta.DocAttribute, meta.String("sample library"))

	shape := pkg.Interface("Shape")
	shape.Method("area").Returns(meta.Name("Double")).Build().
		Property(meta.Name("String"), "label").Build()
	_, err := shape.Build()
	require.NoError(t, err)

	cls := pkg.Class("MyStruct").Parent(meta.Name("Shape"))
	cls.Generic("T").Where("T", meta.Name("Shape"))
	cls.Constructor().Arg(meta.Name("String"), "name").Build().
		Method("get").Arg(meta.Name("Int"), "i").Returns(meta.Name("String")).Build().
		Method("get").Arg(meta.Name("String"), "key").Returns(meta.Name("String")).Build().
		Method("fill").
		ArgWith(meta.GenericOf(meta.Name("Array"), meta.Name("Int")), "out", meta.ArgOut).
		ArgWith(meta.Name("Long"), "limit", meta.DefaultValue(meta.Int64(-1))).
		Build().
		Method("map").Generic("U").Arg(meta.Fn(meta.Ref(meta.Name("U")), meta.Name("T")), "f").Build().
		Method("area").Virtual().Returns(meta.Name("Double")).Build().
		Property(meta.Name("String"), "name").ReadWrite().Build().
		Property(meta.Name("String"), "label").Build().
		StaticProperty(meta.Name("Int"), "instances").Build().
		Field(meta.Tuple(meta.Name("Int"), meta.Name("Int")), "pos").Build().
		StaticField(meta.Name("Double"), "scale").Default(meta.Float64(1.5)).Build()
	_, err = cls.Build()
	require.NoError(t, err)

	_, err = pkg.Struct("Point").
		Field(meta.Name("Int"), "x").Default(meta.Int32(0)).Build().
		Field(meta.Name("Int"), "y").Build().
		Build()
	require.NoError(t, err)

	_, err = pkg.Enum("Color").Literal("Red").Literal("Green").Variant("Blue", meta.Int32(10)).Build()
	require.NoError(t, err)

	_, err = pkg.Bitflags("Perm").Literal("Read").Literal("Write").Build()
	require.NoError(t, err)

	ec := pkg.EnumClass("Event")
	ec.Variant("Click").Field(meta.Name("Int"), "x").Build().Build().
		Variant("Key").Field(meta.Name("Char"), "code").Build().Build().
		Method("describe").Returns(meta.Name("String")).Build()
	_, err = ec.Build()
	require.NoError(t, err)

	_, err = pkg.Alias("Names", meta.GenericOf(meta.Name("List"), meta.Name("String"))).
		Attribute(meta.Name("Meta"), meta.Object(map[string]meta.Value{
			"tags": meta.Array(meta.String("a"), meta.String("b")),
			"pair": meta.TupleValue(meta.Bool(true), meta.Uint64(1<<63)),
		})).
		Build()
	require.NoError(t, err)

	lib, err := pkg.Build()
	require.NoError(t, err)
	return lib
}

func TestRoundTrip(t *testing.T) {
	pkg := samplePackage(t)

	tests := []struct {
		name   string
		encode func(*meta.Package) ([]byte, error)
		decode func([]byte) (*meta.Package, error)
	}{
		{"msgpack", EncodeMsgpack, DecodeMsgpack},
		{"yaml", EncodeYAML, DecodeYAML},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tt.encode(pkg)
			require.NoError(t, err)

			got, err := tt.decode(data)
			require.NoError(t, err)

			if diff := cmp.Diff(pkg, got, equateEmpty); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestYAMLIsReadable(t *testing.T) {
	data, err := EncodeYAML(samplePackage(t))
	require.NoError(t, err)
	s := string(data)
	assert.Contains(t, s, "name: MyLib")
	assert.Contains(t, s, "type: Array<Int>")
	assert.Contains(t, s, "kind: enum_class")
	assert.Contains(t, s, "mode: out")
}

func TestTypeRefsSurviveTheWire(t *testing.T) {
	refs := []meta.TypeRef{
		meta.Name("Int"),
		meta.RefByID(42),
		meta.GenericOf(meta.Name("Map"), meta.Name("String"), meta.Tuple(meta.Name("Int"))),
		meta.Fn(meta.Ref(meta.Name("Long")), meta.Name("Int")),
		meta.GenericOf(meta.Fn(nil, meta.Name("Int")), meta.Name("Int")),
		meta.GenericOf(meta.Tuple(meta.Name("Int")), meta.Name("Int")),
		meta.Name("std::vec Vec"),
		meta.Fn(meta.Ref(meta.Name("a<b")), meta.GenericOf(meta.Name("List"), meta.Name("x,y"))),
	}
	type holder struct {
		Refs []wireRef `msgpack:"refs" yaml:"refs"`
	}
	var h holder
	for _, r := range refs {
		h.Refs = append(h.Refs, refToWire(r))
	}
	assert.Equal(t, "Int", h.Refs[0].text)
	assert.Nil(t, h.Refs[2].node)
	assert.NotNil(t, h.Refs[4].node)
	assert.NotNil(t, h.Refs[6].node)

	codecs := []struct {
		name      string
		marshal   func(any) ([]byte, error)
		unmarshal func([]byte, any) error
	}{
		{"msgpack", msgpack.Marshal, msgpack.Unmarshal},
		{"yaml", yaml.Marshal, yaml.Unmarshal},
	}
	for _, c := range codecs {
		t.Run(c.name, func(t *testing.T) {
			data, err := c.marshal(h)
			require.NoError(t, err)
			var back holder
			require.NoError(t, c.unmarshal(data, &back))
			require.Len(t, back.Refs, len(refs))

			d := &decoder{}
			for i, want := range refs {
				got := d.ref(back.Refs[i])
				require.NoError(t, d.err)
				assert.True(t, want.Equal(got), "%d: want %s, got %s", i, want, got)
			}
		})
	}
}

func TestDecodeRejectsBadTypeRefNodes(t *testing.T) {
	doc := "version: 1\npackage:\n  name: X\n  types:\n    - name: A\n      kind: alias\n      target: {kind: name, nmae: Int}\n"
	_, err := DecodeYAML([]byte(doc))
	assert.True(t, errors.IsKind(err, errors.KindInvalidData))

	d := &decoder{}
	d.ref(wireRef{node: &wireRefNode{Kind: "array"}})
	assert.True(t, errors.IsKind(d.err, errors.KindInvalidData))
}

func TestDecodeRejectsTamperedIDs(t *testing.T) {
	data, err := EncodeYAML(samplePackage(t))
	require.NoError(t, err)

	tampered := strings.Replace(string(data), "- name: area", "- name: volume", 1)
	_, err = DecodeYAML([]byte(tampered))
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindInvalidData))
	assert.Contains(t, err.Error(), "ID does not match")
}

func TestDecodeRejectsBadVersion(t *testing.T) {
	_, err := DecodeYAML([]byte("version: 99\npackage:\n  name: X\n"))
	assert.True(t, errors.IsKind(err, errors.KindUnsupported))
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	_, err := DecodeYAML([]byte("version: 1\nbogus: true\n"))
	assert.True(t, errors.IsKind(err, errors.KindInvalidData))
}

func TestFiles(t *testing.T) {
	pkg := samplePackage(t)
	dir := t.TempDir()

	for _, name := range []string{"lib.tgm", "lib.msgpack", "lib.yaml", "lib.yml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, WriteFile(path, pkg))
			got, err := ReadFile(path)
			require.NoError(t, err)
			if diff := cmp.Diff(pkg, got, equateEmpty); diff != "" {
				t.Errorf("file round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}

	err := WriteFile(filepath.Join(dir, "lib.json"), pkg)
	assert.True(t, errors.IsKind(err, errors.KindUnsupported))

	_, err = ReadFile(filepath.Join(dir, "missing.yaml"))
	assert.True(t, errors.IsKind(err, errors.KindNotFound))

	garbage := filepath.Join(dir, "garbage.tgm")
	require.NoError(t, os.WriteFile(garbage, []byte{0xc1}, 0o644))
	_, err = ReadFile(garbage)
	assert.True(t, errors.IsKind(err, errors.KindInvalidData))
}
