package bindgen

import (
	"go/token"

	"github.com/wippyai/tangara/errors"
)

// DefaultLoadName is the name of the generated host loader.
const DefaultLoadName = "Load"

// Config controls both generated files.
type Config struct {
	// PackageName is the Go package clause of the generated files. A plugin
	// library needs "main".
	PackageName string
	// LibraryPackage is the import path of the library's own Go code. Empty
	// means the glue lives in the library package itself.
	LibraryPackage string
	// EnableInternal also exposes members with Internal visibility.
	EnableInternal bool
	// LoadName names the host loader function.
	LoadName string
	// Imports are extra blank imports added to the library glue.
	Imports []string
}

func (c Config) withDefaults() Config {
	if c.LoadName == "" {
		c.LoadName = DefaultLoadName
	}
	return c
}

func (c Config) validate() error {
	if !token.IsIdentifier(c.PackageName) {
		return errors.New(errors.PhaseGenerate, errors.KindInvalidInput).
			Detail("package name %q is not a Go identifier", c.PackageName).
			Build()
	}
	if !token.IsIdentifier(c.LoadName) || !token.IsExported(c.LoadName) {
		return errors.New(errors.PhaseGenerate, errors.KindInvalidInput).
			Detail("load function name %q is not an exported Go identifier", c.LoadName).
			Build()
	}
	return nil
}
