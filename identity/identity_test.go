package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rawShape []byte

func (s rawShape) AppendShape(dst []byte) []byte { return append(dst, s...) }

func TestIDsAreDeterministic(t *testing.T) {
	for _, s := range []string{"", "MyLib", "My.Lib.MyStruct", "get_name", "ünïcødé"} {
		assert.Equal(t, TypeID(s), TypeID(s), "TypeID(%q)", s)
		assert.Equal(t, PackageID(s), PackageID(s), "PackageID(%q)", s)
		assert.Equal(t, MemberID(s), MemberID(s), "MemberID(%q)", s)
	}
}

// Pinned values guard against accidental changes to the hash domains.
// Every published library depends on them.
func TestIDsArePinned(t *testing.T) {
	assert.Equal(t, uint64(0xaea7c19f2fab8392), PackageID("MyLib"))
	assert.Equal(t, uint64(0xf395676e0d1c63ea), TypeID("MyLib.MyStruct"))
	assert.Equal(t, uint64(0xd94799220f36c5a9), MemberID("name"))
}

func TestDomainsDoNotCollide(t *testing.T) {
	name := "Thing"
	ids := []uint64{PackageID(name), TypeID(name), MemberID(name)}
	assert.NotEqual(t, ids[0], ids[1])
	assert.NotEqual(t, ids[0], ids[2])
	assert.NotEqual(t, ids[1], ids[2])
}

func TestQualifiedTypeID(t *testing.T) {
	assert.Equal(t, TypeID("My.Lib.MyStruct"), QualifiedTypeID("My.Lib", "MyStruct"))
	assert.Equal(t, TypeID("MyStruct"), QualifiedTypeID("", "MyStruct"))
	assert.Equal(t, "a.b", Qualify("a", "b"))
	assert.Equal(t, "b", Qualify("", "b"))
}

func TestMethodID(t *testing.T) {
	t.Run("no params equals member id", func(t *testing.T) {
		assert.Equal(t, MemberID("get"), MethodID("get"))
	})

	t.Run("overloads differ", func(t *testing.T) {
		a := MethodID("get", rawShape("Int"))
		b := MethodID("get", rawShape("String"))
		assert.NotEqual(t, a, b)
		assert.NotEqual(t, MemberID("get"), a)
	})

	t.Run("parameter boundaries matter", func(t *testing.T) {
		a := MethodID("f", rawShape("AB"), rawShape("C"))
		b := MethodID("f", rawShape("A"), rawShape("BC"))
		assert.NotEqual(t, a, b)
	})

	t.Run("order matters", func(t *testing.T) {
		a := MethodID("f", rawShape("Int"), rawShape("String"))
		b := MethodID("f", rawShape("String"), rawShape("Int"))
		assert.NotEqual(t, a, b)
	})

	t.Run("nil shape is accepted", func(t *testing.T) {
		require.NotPanics(t, func() { MethodID("f", nil) })
	})
}

func TestStructuralEquality(t *testing.T) {
	assert.True(t, Equal(rawShape("x"), rawShape("x")))
	assert.False(t, Equal(rawShape("x"), rawShape("y")))
	assert.True(t, Equal(nil, nil))
	assert.Nil(t, StructuralBytes(nil))
	assert.Equal(t, ShapeID(rawShape("x")), ShapeID(rawShape("x")))
}
