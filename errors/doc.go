// Package errors provides structured error types for the tangara library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the member path, the Go and metadata type names involved,
// and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseCall, errors.KindNullResult).
//		Path("MyLib", "MyStruct", "get_name").
//		MetaType("String").
//		Detail("method returned null").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.NotFound(errors.PhaseLookup, "package", "0x1f2e")
//	err := errors.BuildInvariant([]string{"Shape", "area"}, "interface method cannot be private")
//
// All errors implement the standard error interface and support errors.Is/As.
// IsKind reports whether any error in a chain carries the given Kind.
package errors
