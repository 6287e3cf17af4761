// Package builder constructs validated metadata packages.
//
// Each type kind has a builder. Member operations return a sub-builder
// whose Build appends the member to its parent and returns the parent, so
// a type reads as one chain:
//
//	pkg := builder.NewPackage("MyLib")
//	cls := pkg.Class("MyStruct")
//	cls.Constructor().Arg(meta.Name("String"), "name").Build()
//	cls.Method("repeat_name").Arg(meta.Name("UInt"), "times").Build()
//	cls.Property(meta.Name("String"), "name").ReadWrite().Build()
//	if _, err := cls.Build(); err != nil { ... }
//	lib, err := pkg.Build()
//
// Builders never panic on bad metadata. The first violation is latched on
// the owning type builder (and its package) and returned from Build with
// kind errors.KindBuildInvariant. Err reports it early. Checked invariants:
//
//   - interface methods cannot be Private; interface properties cannot have
//     both getter and setter Private (a missing setter counts as Private)
//   - a where-bound may only name a generic declared on the same builder
//   - a method kind must be supported by the owning type: Interface takes
//     Abstract, sealed Class takes Default and Static, open Class also takes
//     Virtual, EnumClass takes Default and Static
//   - member IDs are unique within a type, type names within a package
//   - arguments with default values are trailing
//
// Default visibilities come from the package's Defaults. A builder is
// consumed by Build; later calls fail.
package builder
