package registry

import (
	"slices"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/tangara/errors"
)

// EntryPoint is the function a library exports to populate a Context.
type EntryPoint func(*Context)

// Context is the root of the registry.
type Context struct {
	mu       sync.RWMutex
	sealed   atomic.Bool
	packages map[uint64]*TypeTable
	order    []uint64
}

// NewContext returns an empty, unsealed context.
func NewContext() *Context {
	return &Context{packages: make(map[uint64]*TypeTable)}
}

// AddPackage creates an empty TypeTable for id, replacing any table already
// registered under it. It panics with errors.KindSealed after Seal; use
// TryAddPackage to get the error instead.
func (c *Context) AddPackage(id uint64) *TypeTable {
	t, err := c.TryAddPackage(id)
	if err != nil {
		panic(err)
	}
	return t
}

// TryAddPackage is AddPackage returning errors.KindSealed instead of
// panicking.
func (c *Context) TryAddPackage(id uint64) (*TypeTable, error) {
	t := newTypeTable(c, id)
	err := c.write("package table", func() {
		if old, ok := c.packages[id]; ok {
			Logger().Debug("replacing package table", zap.Uint64("package", id), zap.Int("types", len(old.types)))
			old.retired.Store(true)
		} else {
			c.order = append(c.order, id)
		}
		c.packages[id] = t
	})
	if err != nil {
		return nil, err
	}
	Logger().Debug("package registered", zap.Uint64("package", id))
	return t, nil
}

// Package returns the TypeTable registered under id.
func (c *Context) Package(id uint64) (*TypeTable, error) {
	t, ok := c.lookup(id)
	if !ok {
		return nil, errors.NotFoundID(errors.PhaseLookup, "package", id)
	}
	if !t.Alive() {
		return nil, errors.Dangling(errors.PhaseLookup, "package", id)
	}
	return t, nil
}

// HasPackage reports whether a live table is registered under id.
func (c *Context) HasPackage(id uint64) bool {
	t, ok := c.lookup(id)
	return ok && t.Alive()
}

// Packages returns the registered package IDs in registration order,
// including retired ones.
func (c *Context) Packages() []uint64 {
	if !c.sealed.Load() {
		c.mu.RLock()
		defer c.mu.RUnlock()
	}
	return slices.Clone(c.order)
}

// Seal ends the registration phase. It is idempotent.
func (c *Context) Seal() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sealed.Swap(true) {
		return
	}
	Logger().Debug("registry sealed", zap.Int("packages", len(c.packages)))
}

// Sealed reports whether Seal has been called.
func (c *Context) Sealed() bool {
	return c.sealed.Load()
}

// Invalidate retires the table registered under id along with every
// TypeTable and FuncTable beneath it. It is allowed after Seal and reports
// whether a live table was retired.
func (c *Context) Invalidate(id uint64) bool {
	t, ok := c.lookup(id)
	if !ok {
		return false
	}
	if t.retired.Swap(true) {
		return false
	}
	Logger().Debug("package invalidated", zap.Uint64("package", id))
	return true
}

// Snapshot returns the live package tables by ID.
func (c *Context) Snapshot() map[uint64]*TypeTable {
	if !c.sealed.Load() {
		c.mu.RLock()
		defer c.mu.RUnlock()
	}
	out := make(map[uint64]*TypeTable, len(c.packages))
	for id, t := range c.packages {
		if t.Alive() {
			out[id] = t
		}
	}
	return out
}

func (c *Context) lookup(id uint64) (*TypeTable, bool) {
	if !c.sealed.Load() {
		c.mu.RLock()
		defer c.mu.RUnlock()
	}
	t, ok := c.packages[id]
	return t, ok
}

// write runs fn under the context lock, refusing once sealed.
func (c *Context) write(what string, fn func()) error {
	if c.sealed.Load() {
		return errors.Sealed(what)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sealed.Load() {
		return errors.Sealed(what)
	}
	fn()
	return nil
}

// read runs fn under the read lock until sealed, and lock-free after.
func (c *Context) read(fn func()) {
	if c.sealed.Load() {
		fn()
		return
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	fn()
}
