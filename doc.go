// Package tangara lets independently compiled Go binaries exchange
// constructible, callable objects.
//
// A library describes its types as metadata. The metadata drives a generator
// that emits boundary glue: functions that unpack flat argument buffers and
// call the real code, plus an entry point that registers every glue function
// in a registry keyed by stable 64-bit IDs. The host loads the library, lets
// the entry point populate its registry, and from then on calls functions it
// only knows by ID.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	tangara/             Root package with the boundary function shapes
//	├── identity/        Keyed hashes for package, type and member IDs
//	├── meta/            Metadata model: Package, Type, members, TypeRef, Value
//	├── builder/         Validating builders for the metadata model
//	├── abi/             Argument buffers, boxed returns, native layouts
//	├── registry/        Context → TypeTable → FuncTable with a sealed phase
//	├── handle/          Host-side table of live owned objects
//	├── runtime/         Library loading, unloading and metadata-driven calls
//	├── metaio/          Metadata persistence (msgpack, YAML)
//	├── bindgen/         Library glue and host bindings generator
//	├── config/          tangara.toml project manifest
//	├── errors/          Structured error types
//	└── cmd/tangara/     CLI: gen, inspect, id, call, convert
//
// # Quick Start
//
// Describe a library:
//
//	pkg := builder.NewPackage("MyLib")
//	cls := pkg.Class("MyStruct")
//	cls.Constructor().Arg(meta.Name("String"), "name").Build()
//	cls.Method("get_name").Returns(meta.Name("String")).Build()
//	cls.Build()
//	lib, err := pkg.Build()
//
// Generate glue for the library and bindings for the host:
//
//	gen := bindgen.New(bindgen.Config{PackageName: "mylib"})
//	entry, err := gen.Entrypoint(lib)
//	host, err := gen.Bindings(lib)
//
// Or let the CLI do it from a tangara.toml manifest:
//
//	tangara gen ./mylib
//
// Load the library and call it from the host:
//
//	rt := runtime.New()
//	lib, err := rt.LoadPlugin("mylib.so")
//	rt.Seal()
//	b, err := mylib.Load(rt.Context(), rt.Objects())
//	obj, err := b.NewMyStruct("Ferris")
//	defer obj.Close()
//	name, err := obj.GetName()
//
// # Calling Convention
//
// Constructors and methods take one packed byte buffer. Arguments are laid
// out in declaration order at their native Go size, with no padding and no
// type tags; a receiver comes first. By-reference arguments (Out, Ref, In)
// occupy a pointer slot. Both sides must agree on order and size bit for bit.
//
// A function that returns nothing returns a nil Ptr. Any other result is
// allocated by the callee and handed to the caller, who takes it exactly once
// (see abi.Owned). Objects are returned as their own address and destroyed
// only through the destructor registered for their type.
//
// # Thread Safety
//
// A registry is populated by one goroutine while a library loads, then
// sealed. After Seal it is safe for concurrent readers. Runtime serializes
// loading and unloading. Generated bindings are safe for concurrent use
// when the library's own types are.
//
// # Unloading
//
// Go plugins cannot be closed, so unloading a library retires its registry
// tables instead. Lookups through retired tables and calls through bindings
// created from them report errors.KindDangling. Unloading is refused while
// objects of the library are still alive, unless forced.
package tangara
