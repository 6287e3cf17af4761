package runtime

import (
	"path/filepath"
	"plugin"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/wippyai/tangara"
	"github.com/wippyai/tangara/errors"
	"github.com/wippyai/tangara/registry"
)

// Library is a loaded library and the packages its entry point registered.
type Library struct {
	Name     string
	Path     string
	packages []uint64
	unloaded atomic.Bool
}

// Packages returns the IDs of the packages the library registered.
func (l *Library) Packages() []uint64 {
	return slices.Clone(l.packages)
}

// Loaded reports whether the library has not been unloaded.
func (l *Library) Loaded() bool {
	return !l.unloaded.Load()
}

func openPlugin(path string) (registry.EntryPoint, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, errors.Load("open plugin "+path, err)
	}
	sym, err := p.Lookup(tangara.EntrySymbol)
	if err != nil {
		return nil, errors.New(errors.PhaseLoad, errors.KindNotFound).
			Path(path).
			Detail("plugin does not export %s", tangara.EntrySymbol).
			Cause(err).
			Build()
	}
	switch fn := sym.(type) {
	case func(*registry.Context):
		return fn, nil
	case *registry.EntryPoint:
		return *fn, nil
	case *func(*registry.Context):
		return *fn, nil
	}
	return nil, errors.New(errors.PhaseLoad, errors.KindTypeMismatch).
		Path(path).
		GoType(typeName(sym)).
		Detail("%s must be a func(*registry.Context)", tangara.EntrySymbol).
		Build()
}

func pluginName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
