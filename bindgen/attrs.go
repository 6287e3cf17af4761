package bindgen

import (
	"sync"

	"github.com/wippyai/tangara/builder"
	"github.com/wippyai/tangara/meta"
)

// Attributes the generator understands. Each takes one String argument
// naming the Go identifier to use.
var (
	// GoName renames a type or member on both sides of the boundary.
	GoName = meta.Name("Go.Name")
	// GoMethod names the library method a method or property calls.
	GoMethod = meta.Name("Go.Method")
	// GoField names the library struct field a field reads and writes.
	GoField = meta.Name("Go.Field")
	// GoConstructorFunc names the library function a constructor calls.
	GoConstructorFunc = meta.Name("Go.ConstructorFunc")
)

var (
	goStd     *meta.Package
	goStdErr  error
	goStdOnce sync.Once
)

// GoStd returns the package declaring the attribute types above, plus
// Tangara.Flags. Attribute references are matched by structure, so
// metadata may name them without depending on this package.
func GoStd() (*meta.Package, error) {
	goStdOnce.Do(func() {
		pkg := builder.NewPackage("GoStd")
		pkg.Struct("Flags").Namespace("Tangara").
			Constructor().Build().
			Build()
		for _, name := range []string{"Name", "Method", "Field", "ConstructorFunc"} {
			pkg.Struct(name).Namespace("Go").
				Constructor().Arg(meta.Name("String"), "value").Build().
				Field(meta.Name("String"), "value").Build().
				Build()
		}
		goStd, goStdErr = pkg.Build()
	})
	return goStd, goStdErr
}

// stringAttr returns the String argument of the first attribute of type t.
func stringAttr(as meta.Attributes, t meta.TypeRef) (string, bool) {
	a, ok := as.Find(t)
	if !ok || len(a.Args) == 0 || a.Args[0].Kind != meta.ValString || a.Args[0].Str == "" {
		return "", false
	}
	return a.Args[0].Str, true
}
