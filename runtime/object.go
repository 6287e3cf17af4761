package runtime

import (
	"github.com/wippyai/tangara"
	"github.com/wippyai/tangara/errors"
	"github.com/wippyai/tangara/handle"
	"github.com/wippyai/tangara/meta"
	"github.com/wippyai/tangara/registry"
)

// Object is a live instance owned by the host.
type Object struct {
	mod    *Module
	typ    *meta.Type
	funcs  *registry.FuncTable
	handle handle.Handle
}

// Type returns the object's metadata.
func (o *Object) Type() *meta.Type { return o.typ }

// Handle returns the object's handle in the runtime's object table.
func (o *Object) Handle() handle.Handle { return o.handle }

func (o *Object) ptr() (tangara.Ptr, error) {
	obj, err := o.mod.rt.objects.Get(o.handle)
	if err != nil {
		return nil, err
	}
	return obj.Ptr, nil
}

// borrow pins the object for the duration of one call.
func (o *Object) borrow() (tangara.Ptr, func(), error) {
	obj, err := o.mod.rt.objects.Borrow(o.handle)
	if err != nil {
		return nil, nil, err
	}
	return obj.Ptr, func() { _ = o.mod.rt.objects.Return(o.handle) }, nil
}

// Call calls an instance method by name. When the name is overloaded the
// overload is picked by argument count.
func (o *Object) Call(method string, args ...any) (any, error) {
	mt, err := resolveMethod(o.typ, method, len(args), true)
	if err != nil {
		return nil, err
	}
	return o.call(mt, args)
}

// CallID calls an instance method by method ID.
func (o *Object) CallID(id uint64, args ...any) (any, error) {
	for _, mt := range o.typ.Methods() {
		if mt.ID == id && mt.Kind.HasReceiver() {
			return o.call(&mt, args)
		}
	}
	return nil, errors.NotFoundID(errors.PhaseLookup, "method", id)
}

func (o *Object) call(mt *meta.Method, args []any) (any, error) {
	this, done, err := o.borrow()
	if err != nil {
		return nil, err
	}
	defer done()
	return o.mod.invoke(&boundType{typ: o.typ, funcs: o.funcs}, mt, this, args)
}

// Get reads a property or field.
func (o *Object) Get(name string) (any, error) {
	prop, ok := o.typ.Property(name)
	if !ok {
		return nil, errors.NotFound(errors.PhaseLookup, "property", o.typ.FullName()+"."+name)
	}
	acc, err := o.funcs.Property(prop.ID)
	if err != nil {
		return nil, err
	}
	this, done, err := o.borrow()
	if err != nil {
		return nil, err
	}
	defer done()
	return o.mod.result([]string{o.typ.FullName(), name}, &prop.Type, acc.Getter(this))
}

// Set writes a property or field.
func (o *Object) Set(name string, v any) error {
	prop, ok := o.typ.Property(name)
	if !ok {
		return errors.NotFound(errors.PhaseLookup, "property", o.typ.FullName()+"."+name)
	}
	acc, err := o.funcs.Property(prop.ID)
	if err != nil {
		return err
	}
	path := []string{o.typ.FullName(), name}
	if acc.Setter == nil {
		return readOnly(path)
	}
	p, err := o.mod.value(path, prop.Type, v)
	if err != nil {
		return err
	}
	this, done, err := o.borrow()
	if err != nil {
		return err
	}
	defer done()
	acc.Setter(this, p)
	return nil
}

// Close destroys the object through its type's destructor. Closing twice
// reports errors.KindDangling.
func (o *Object) Close() error {
	return o.mod.rt.objects.Drop(o.handle)
}
