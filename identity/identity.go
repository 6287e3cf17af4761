package identity

import (
	"bytes"

	"github.com/cespare/xxhash/v2"
)

// Hash domain keys. Changing any of these changes every ID a library
// publishes, so they are fixed for the lifetime of the wire format.
const (
	packageSeed uint64 = 772
	typeSeed    uint64 = 4900
	memberSeed  uint64 = 18257
)

// paramSep separates parameters when folding a method signature.
const paramSep = 0xFF

// Shape is implemented by values that have a structural byte encoding,
// such as meta.TypeRef.
type Shape interface {
	AppendShape(dst []byte) []byte
}

// PackageID returns the ID of the package with the given name.
func PackageID(name string) uint64 {
	return sum(packageSeed, name)
}

// TypeID returns the ID of a type given its fully qualified name.
func TypeID(fullName string) uint64 {
	return sum(typeSeed, fullName)
}

// QualifiedTypeID returns TypeID(namespace + "." + name), or TypeID(name)
// when namespace is empty.
func QualifiedTypeID(namespace, name string) uint64 {
	return TypeID(Qualify(namespace, name))
}

// Qualify joins a namespace and a name.
func Qualify(namespace, name string) string {
	if namespace == "" {
		return name
	}
	return namespace + "." + name
}

// MemberID returns the ID of a property, field, variant or static.
func MemberID(name string) uint64 {
	return sum(memberSeed, name)
}

// MethodID returns the ID of a method. Each parameter's structural bytes are
// folded in order, so overloads with different signatures get distinct IDs.
// A method with no parameters has the same ID as MemberID(name).
func MethodID(name string, params ...Shape) uint64 {
	if len(params) == 0 {
		return MemberID(name)
	}
	d := xxhash.NewWithSeed(memberSeed)
	_, _ = d.WriteString(name)
	var buf []byte
	for _, p := range params {
		buf = append(buf[:0], paramSep)
		if p != nil {
			buf = p.AppendShape(buf)
		}
		_, _ = d.Write(buf)
	}
	return d.Sum64()
}

// StructuralBytes returns the structural encoding of a shape.
func StructuralBytes(s Shape) []byte {
	if s == nil {
		return nil
	}
	return s.AppendShape(nil)
}

// Equal reports whether two shapes have identical structural bytes.
func Equal(a, b Shape) bool {
	return bytes.Equal(StructuralBytes(a), StructuralBytes(b))
}

// ShapeID hashes a shape in the type domain. Used to key attribute types
// and other references that are compared structurally.
func ShapeID(s Shape) uint64 {
	d := xxhash.NewWithSeed(typeSeed)
	_, _ = d.Write(StructuralBytes(s))
	return d.Sum64()
}

func sum(seed uint64, s string) uint64 {
	d := xxhash.NewWithSeed(seed)
	_, _ = d.WriteString(s)
	return d.Sum64()
}
