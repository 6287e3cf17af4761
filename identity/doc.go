// Package identity maps names and type shapes to stable 64-bit IDs.
//
// Every package, type and member that crosses a library boundary is keyed by
// one of these IDs. They are pure functions of their input: two binaries that
// were compiled separately agree on an ID without any shared table or
// negotiation.
//
// Three keyed hash domains are used so that a package, a type and a member
// that share a textual name never produce the same ID:
//
//	PackageID("MyLib")              // package domain
//	TypeID("My.Lib.MyStruct")       // type domain, namespace-qualified
//	MemberID("name")                // member domain
//	MethodID("get", meta.Name("Int")) // member domain plus parameter shapes
//
// Type references take part through the Shape interface. Two shapes are
// equal exactly when their structural bytes are equal; there is no other
// notion of type equality at the boundary.
package identity
