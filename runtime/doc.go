// Package runtime loads libraries into a registry and calls them.
//
// # Quick Start
//
//	rt := runtime.New(runtime.WithLogger(logger))
//	defer rt.Close()
//
//	// Load a library built with -buildmode=plugin
//	lib, err := rt.LoadPlugin("mylib.so")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	rt.Seal()
//
//	// Bind its metadata and call it without generated bindings
//	mod, err := rt.Bind(pkg)
//	obj, err := mod.New("MyStruct", 0, "Ferris")
//	defer obj.Close()
//	name, err := obj.Call("get_name")
//
// # Loading Libraries
//
//	LoadPlugin(path)         - Open a Go plugin and run its TgLoad symbol
//	LoadStatic(name, entry)  - Run an entry point linked into the host
//
// Loading is refused once the runtime is sealed. Generated bindings are
// created from the sealed registry with rt.Context() and rt.Objects().
//
// # Dynamic Calls
//
// Module and Object pack arguments from the metadata at call time. Go
// integers are converted to the declared width and fail with
// errors.KindOverflow if the value does not fit. Arguments declared with a
// default value may be omitted from the end of the list. By-reference
// arguments take a Go pointer of the matching type.
//
// Results are unboxed according to the declared return type:
//
//	Metadata Type    Go Value
//	───────────────────────────
//	Bool             bool
//	SByte/Byte       int8/uint8
//	Short/UShort     int16/uint16
//	Int/UInt         int32/uint32
//	Long/ULong       int64/uint64
//	Float/Double     float32/float64
//	String           string
//	Enum             discriminant integer
//	Class/Struct     *Object
//	Tuple            []any
//
// # Unloading
//
// Go never unmaps a plugin, so Unload retires the library's registry tables
// instead. It is refused while objects of the library are alive unless
// forced; a forced unload destroys them first.
//
// # Thread Safety
//
// Runtime serializes loading and unloading. Modules and Objects are safe for
// concurrent use once the runtime is sealed.
package runtime
