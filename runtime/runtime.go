package runtime

import (
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/tangara/errors"
	"github.com/wippyai/tangara/handle"
	"github.com/wippyai/tangara/registry"
)

// Runtime owns a registry, the libraries that populated it and the objects
// created through it.
type Runtime struct {
	mu      sync.Mutex
	ctx     *registry.Context
	objects *handle.Table
	libs    map[string]*Library
	order   []string
	logger  *zap.Logger
}

func New(opts ...Option) *Runtime {
	r := &Runtime{
		libs:   make(map[string]*Library),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.ctx == nil {
		r.ctx = registry.NewContext()
	}
	r.objects = handle.NewTable(r.logger)
	return r
}

// Context returns the registry libraries register into.
func (r *Runtime) Context() *registry.Context {
	return r.ctx
}

// Objects returns the table of live objects.
func (r *Runtime) Objects() *handle.Table {
	return r.objects
}

// Seal ends the loading phase.
func (r *Runtime) Seal() {
	r.ctx.Seal()
}

// LoadPlugin opens a Go plugin and runs its entry point. The library is
// named after the file.
func (r *Runtime) LoadPlugin(path string) (*Library, error) {
	entry, err := openPlugin(path)
	if err != nil {
		return nil, err
	}
	lib, err := r.load(pluginName(path), path, entry)
	if err != nil {
		return nil, err
	}
	return lib, nil
}

// LoadStatic runs an entry point linked into the host.
func (r *Runtime) LoadStatic(name string, entry registry.EntryPoint) (*Library, error) {
	if entry == nil {
		return nil, errors.InvalidInput(errors.PhaseLoad, "entry point is nil")
	}
	return r.load(name, "", entry)
}

func (r *Runtime) load(name, path string, entry registry.EntryPoint) (*Library, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ctx.Sealed() {
		return nil, errors.Sealed("runtime")
	}
	if _, dup := r.libs[name]; dup {
		return nil, errors.New(errors.PhaseLoad, errors.KindInvalidInput).
			Detail("library %q already loaded", name).
			Build()
	}

	before := r.ctx.Snapshot()
	if err := runEntry(entry, r.ctx); err != nil {
		return nil, errors.Load(fmt.Sprintf("entry point of %q", name), err)
	}
	after := r.ctx.Snapshot()

	lib := &Library{Name: name, Path: path}
	for _, id := range r.ctx.Packages() {
		t, ok := after[id]
		if !ok || before[id] == t {
			continue
		}
		if prev := r.owner(id); prev != nil {
			r.logger.Warn("package replaced by another library",
				zap.Uint64("package", id),
				zap.String("previous", prev.Name),
				zap.String("library", name))
			prev.packages = slices.DeleteFunc(prev.packages, func(p uint64) bool { return p == id })
		}
		lib.packages = append(lib.packages, id)
	}

	r.libs[name] = lib
	r.order = append(r.order, name)
	r.logger.Debug("library loaded",
		zap.String("library", name),
		zap.String("path", path),
		zap.Int("packages", len(lib.packages)))
	return lib, nil
}

func runEntry(entry registry.EntryPoint, ctx *registry.Context) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if e, ok := rec.(error); ok {
				err = e
				return
			}
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	entry(ctx)
	return nil
}

func (r *Runtime) owner(pkgID uint64) *Library {
	for _, lib := range r.libs {
		if slices.Contains(lib.packages, pkgID) {
			return lib
		}
	}
	return nil
}

// Library returns a loaded library by name.
func (r *Runtime) Library(name string) (*Library, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lib, ok := r.libs[name]
	if !ok {
		return nil, errors.NotFound(errors.PhaseLoad, "library", name)
	}
	return lib, nil
}

// Libraries returns the loaded libraries in load order.
func (r *Runtime) Libraries() []*Library {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Library, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.libs[name])
	}
	return out
}

// Unload retires every package lib registered. While objects of those
// packages are alive it fails with errors.KindBusy, unless force is set,
// in which case the objects are destroyed first. Objects borrowed by a call
// in progress are never destroyed; they keep the library loaded and Unload
// reports errors.KindBusy even when forced.
func (r *Runtime) Unload(lib *Library, force bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if lib == nil || r.libs[lib.Name] != lib {
		return errors.InvalidInput(errors.PhaseLoad, "library is not loaded")
	}

	live := 0
	for _, id := range lib.packages {
		live += r.objects.LiveIn(id)
	}
	if live > 0 && !force {
		return errors.New(errors.PhaseLoad, errors.KindBusy).
			Detail("library %q has %d live objects", lib.Name, live).
			Build()
	}

	var first error
	if live > 0 {
		for _, id := range lib.packages {
			err := r.objects.DropIn(id)
			if err == nil {
				continue
			}
			if errors.IsKind(err, errors.KindBusy) {
				return errors.Wrap(errors.PhaseLoad, errors.KindBusy, err,
					fmt.Sprintf("library %q has objects in use", lib.Name))
			}
			r.logger.Warn("destroying objects during unload",
				zap.String("library", lib.Name),
				zap.Uint64("package", id),
				zap.Error(err))
			if first == nil {
				first = err
			}
		}
	}
	for _, id := range lib.packages {
		r.ctx.Invalidate(id)
	}

	delete(r.libs, lib.Name)
	r.order = slices.DeleteFunc(r.order, func(n string) bool { return n == lib.Name })
	lib.unloaded.Store(true)
	r.logger.Debug("library unloaded",
		zap.String("library", lib.Name),
		zap.Int("destroyed", live))
	return first
}

// Close destroys every live object. Libraries stay mapped.
func (r *Runtime) Close() error {
	return r.objects.Close()
}
