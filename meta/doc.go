// Package meta defines the reflection metadata model: an immutable,
// language-neutral description of a library's types and members.
//
// A Package holds an ordered list of Types. Each Type has exactly one Kind:
//
//	*Class      constructors, properties, fields, statics, methods, parents
//	*Struct     constructors and fields only
//	*Interface  properties, methods (Abstract by default), parents
//	*Enum       named constant discriminants
//	*EnumClass  payload-carrying variants plus methods
//	*TypeAlias  a single TypeRef
//
// Types and members carry IDs computed by the identity package. Values in
// this package are normally produced by the builder package, which enforces
// construction invariants, or decoded by metaio.
//
// TypeRef is the only way types refer to each other. It is compared by its
// structural bytes, never by resolving names.
package meta
