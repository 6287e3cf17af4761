// Package registry maps stable IDs to boundary functions.
//
// A Context owns one TypeTable per package ID, a TypeTable owns one
// FuncTable per type ID, and a FuncTable holds the destructor, the
// positional constructors and the method, property and static property
// functions of one type:
//
//	ctx := registry.NewContext()
//	ft := ctx.AddPackage(identity.PackageID("MyLib")).
//		AddType(identity.TypeID("MyLib.MyStruct"))
//	ft.SetDtor(dtor).
//		AddCtor(newMyStruct).
//		AddMethod(identity.MethodID("get_name"), getName)
//
// Registration happens while a library loads, from a single goroutine.
// Seal ends that phase: afterwards every write is refused and lookups take
// no locks, so any number of goroutines may read concurrently.
//
// Unloading a library retires its tables with Invalidate. A retired table
// still answers Alive with false and fails lookups with errors.KindDangling,
// so callers holding a FuncTable can check before they jump into code that
// is gone.
package registry
