// Package bindgen generates the Go code on both sides of a tangara
// boundary from a metadata package.
//
// The library side (Entrypoint) gets one glue function per constructor,
// method and accessor. Each glue function unpacks the flat argument buffer,
// calls the library's real Go code and boxes the result. TgLoad registers
// all of them under their identity hashes.
//
// The host side (Bindings) gets a Bindings struct that resolves every
// function once at load time, an object wrapper per class, struct and enum
// class, and a Go type per enum. Wrapper methods pin the object's handle,
// pack arguments, check results and report errors.KindDangling once the
// library has been unloaded.
//
// # Library Conventions
//
// The glue calls library code by name. For a type MyStruct in a library
// imported through Config.LibraryPackage:
//
//	constructor 0          NewMyStruct(args...) *MyStruct
//	constructor i          NewMyStructI(args...) *MyStruct
//	enum class variant V   NewMyStructV(fields...) *MyStruct
//	method get_name        (*MyStruct).GetName(args...)
//	static method create   MyStructCreate(args...)
//	property name          (*MyStruct).Name() and SetName(v)
//	field name             (*MyStruct).Name
//	static field count     var MyStructCount
//	static property p      MyStructP() and SetMyStructP(v)
//	destructor             (*MyStruct).Drop() when defined
//
// Overloads after the first get a numeric suffix. The attributes in GoStd
// override names: Go.Name renames on both sides, Go.Method and Go.Field
// pick the library member, Go.ConstructorFunc the library function.
//
// Primitive types map to fixed-size Go types (Int is int32, Long is int64,
// String is string). Enums cross as their discriminant and convert to the
// library's named type. Tuples of primitives are anonymous structs with
// fields F0, F1, ... and tuple results are multiple return values.
//
// Members the generator cannot express are skipped on both sides with a
// warning: generic types and methods, function-typed references,
// interface-typed references, objects passed by reference.
package bindgen
