package bindgen

import (
	"strconv"
	"strings"
)

// bindings emits the host side: a Bindings struct holding every function of
// the package, its loader, one wrapper type per object type and the enums.
func (p *plan) bindings() ([]byte, error) {
	f := newFile(p.cfg.PackageName)
	f.use(importTangara, "")
	f.use(importABI, "")
	f.use(importErrors, "")
	f.use(importHandle, "")
	f.use(importRegistry, "")

	f.p("// PackageID identifies %s in a registry.", p.pkg.Name)
	f.p("const PackageID uint64 = %s", hex(p.pkg.ID))
	f.p("")

	for _, e := range p.enums {
		p.hostEnum(f, e)
	}

	f.p("// Bindings calls into a loaded %s library. It is safe for concurrent", p.pkg.Name)
	f.p("// use when the library's own types are.")
	f.p("type Bindings struct {")
	f.p("objects *handle.Table")
	f.p("table *registry.TypeTable")
	for _, tp := range p.types {
		f.p("%s %sFuncs", tp.field, tp.field)
	}
	f.p("}")
	f.p("")

	for _, tp := range p.types {
		f.p("type %sFuncs struct {", tp.field)
		f.p("table *registry.FuncTable")
		for _, cp := range tp.ctors {
			if !cp.skipped {
				f.p("%s tangara.Fn", cp.field)
			}
		}
		for _, cp := range tp.methods {
			f.p("%s tangara.Fn", cp.field)
		}
		for _, pp := range tp.props {
			f.p("%s registry.Property", pp.field)
		}
		for _, pp := range tp.statics {
			f.p("%s registry.StaticProperty", pp.field)
		}
		f.p("}")
		f.p("")
	}

	p.hostLoad(f)
	p.hostHelpers(f)
	for _, tp := range p.types {
		p.hostType(f, tp)
	}
	return f.bytes()
}

func (p *plan) hostEnum(f *file, e *enumPlan) {
	if doc := e.typ.Attributes.Doc(); doc != "" {
		f.doc(doc)
	} else {
		f.p("// %s mirrors %s.", e.name, e.typ.FullName())
	}
	f.p("type %s %s", e.name, e.wire)
	f.p("")
	if len(e.consts) == 0 {
		return
	}
	f.p("const (")
	for _, c := range e.consts {
		if c.doc != "" {
			f.doc(c.doc)
		}
		f.p("%s %s = %s", c.name, e.name, c.value)
	}
	f.p(")")
	f.p("")
}

func (p *plan) hostLoad(f *file) {
	f.p("// %s resolves every %s function in ctx. Objects created through the", p.cfg.LoadName, p.pkg.Name)
	f.p("// returned Bindings are tracked in objects. Functions the library did")
	f.p("// not register are reported together as *errors.MissingSymbolsError.")
	f.p("func %s(ctx *registry.Context, objects *handle.Table) (*Bindings, error) {", p.cfg.LoadName)
	f.p("table, err := ctx.Package(PackageID)")
	f.p("if err != nil {")
	f.p("return nil, err")
	f.p("}")
	f.p("b := &Bindings{objects: objects, table: table}")
	f.p("var missing []string")
	for _, tp := range p.types {
		f.p("missing = append(missing, b.load%s()...)", tp.name)
	}
	f.p("if len(missing) > 0 {")
	f.p("return nil, errors.NewMissingSymbolsError(missing)")
	f.p("}")
	f.p("return b, nil")
	f.p("}")
	f.p("")

	for _, tp := range p.types {
		f.p("func (b *Bindings) load%s() (missing []string) {", tp.name)
		f.p("const key = %q", tp.typ.FullName()+"#")
		f.p("ft, err := b.table.Type(%s)", hex(tp.typ.ID))
		f.p("if err != nil {")
		f.p("return []string{key}")
		f.p("}")
		f.p("b.%s.table = ft", tp.field)
		f.p("if _, err = ft.Dtor(); err != nil {")
		f.p("missing = append(missing, key+\"drop\")")
		f.p("}")
		for _, cp := range tp.ctors {
			if cp.skipped {
				continue
			}
			p.lookup(f, tp, cp.field, "Ctor("+strconv.Itoa(cp.index)+")", "new#"+strconv.Itoa(cp.index))
		}
		for _, cp := range tp.methods {
			p.lookup(f, tp, cp.field, "Method("+hex(cp.id)+")", cp.member)
		}
		for _, pp := range tp.props {
			p.lookup(f, tp, pp.field, "Property("+hex(pp.id)+")", pp.member)
		}
		for _, pp := range tp.statics {
			p.lookup(f, tp, pp.field, "Static("+hex(pp.id)+")", pp.member)
		}
		f.p("return missing")
		f.p("}")
		f.p("")
	}
}

func (p *plan) lookup(f *file, tp *typePlan, field, call, member string) {
	f.p("if b.%s.%s, err = ft.%s; err != nil {", tp.field, field, call)
	f.p("missing = append(missing, key+%q)", member)
	f.p("}")
}

func (p *plan) hostHelpers(f *file) {
	f.p("// Alive reports whether the library is still loaded.")
	f.p("func (b *Bindings) Alive() bool {")
	f.p("return b.table.Alive()")
	f.p("}")
	f.p("")
	f.p("func (b *Bindings) alive(ft *registry.FuncTable) error {")
	f.p("if !ft.Alive() {")
	f.p("return errors.Dangling(errors.PhaseCall, \"type\", ft.ID())")
	f.p("}")
	f.p("return nil")
	f.p("}")
	f.p("")
	f.p("// borrow pins h for the duration of a call.")
	f.p("func (b *Bindings) borrow(h handle.Handle) (tangara.Ptr, error) {")
	f.p("obj, err := b.objects.Borrow(h)")
	f.p("if err != nil {")
	f.p("return nil, err")
	f.p("}")
	f.p("if err := b.alive(obj.Funcs); err != nil {")
	f.p("_ = b.objects.Return(h)")
	f.p("return nil, err")
	f.p("}")
	f.p("return obj.Ptr, nil")
	f.p("}")
	f.p("")
	f.p("func (b *Bindings) release(h handle.Handle) {")
	f.p("_ = b.objects.Return(h)")
	f.p("}")
	f.p("")
}

func (p *plan) hostType(f *file, tp *typePlan) {
	if doc := tp.typ.Attributes.Doc(); doc != "" {
		f.doc(doc)
	} else {
		f.p("// %s is a %s owned by the host. Close destroys it.", tp.name, tp.typ.FullName())
	}
	f.p("type %s struct {", tp.name)
	f.p("b *Bindings")
	f.p("h handle.Handle")
	f.p("}")
	f.p("")
	f.p("func (b *Bindings) wrap%s(p tangara.Ptr) (*%s, error) {", tp.name, tp.name)
	f.p("h, err := b.objects.Insert(handle.Object{Ptr: p, Funcs: b.%s.table})", tp.field)
	f.p("if err != nil {")
	f.p("return nil, err")
	f.p("}")
	f.p("return &%s{b: b, h: h}, nil", tp.name)
	f.p("}")
	f.p("")
	f.p("// Handle returns the object's handle in the Bindings' object table.")
	f.p("func (o *%s) Handle() handle.Handle {", tp.name)
	f.p("return o.h")
	f.p("}")
	f.p("")
	f.p("// Close runs the destructor. The object is invalid afterwards.")
	f.p("func (o *%s) Close() error {", tp.name)
	f.p("return o.b.objects.Drop(o.h)")
	f.p("}")
	f.p("")

	for _, cp := range tp.ctors {
		if !cp.skipped {
			p.hostCall(f, tp, cp, true)
		}
	}
	for _, cp := range tp.methods {
		p.hostCall(f, tp, cp, false)
	}
	for _, pp := range tp.props {
		p.hostProperty(f, tp, pp, false)
	}
	for _, pp := range tp.statics {
		p.hostProperty(f, tp, pp, true)
	}
}

// results returns the named result list of a host function.
func results(ret *goType) string {
	switch {
	case ret == nil:
		return "(err error)"
	case ret.shape == shapeTuple:
		parts := make([]string, 0, len(ret.items)+1)
		for i, it := range ret.items {
			parts = append(parts, "res"+strconv.Itoa(i)+" "+it.wire)
		}
		return "(" + strings.Join(append(parts, "err error"), ", ") + ")"
	}
	return "(res " + ret.host() + ", err error)"
}

func (p *plan) hostCall(f *file, tp *typePlan, cp *callPlan, ctor bool) {
	ret := cp.ret
	if ctor {
		ret = &goType{shape: shapeObject, wire: "tangara.Ptr", name: tp.name}
	}
	params := make([]string, len(cp.args))
	for i, a := range cp.args {
		t := a.typ.host()
		if a.indirect() {
			t = "*" + t
		}
		params[i] = a.name + " " + t
	}

	what := tp.typ.FullName() + "." + cp.member
	if ctor {
		what = tp.typ.FullName() + " constructor " + strconv.Itoa(cp.index)
	}
	f.p("// %s calls %s.", cp.hostName, what)
	if cp.doc != "" {
		f.p("//")
		f.doc(cp.doc)
	}
	for _, a := range cp.args {
		if a.def != nil {
			f.p("// The library default for %s is %s.", a.name, a.def.String())
		}
	}

	bx := "b"
	if cp.receiver {
		bx = "o.b"
		f.p("func (o *%s) %s(%s) %s {", tp.name, cp.hostName, strings.Join(params, ", "), results(ret))
		f.p("var this tangara.Ptr")
		f.p("if this, err = o.b.borrow(o.h); err != nil {")
		f.p("return")
		f.p("}")
		f.p("defer o.b.release(o.h)")
	} else {
		f.p("func (b *Bindings) %s(%s) %s {", cp.hostName, strings.Join(params, ", "), results(ret))
		f.p("if err = b.alive(b.%s.table); err != nil {", tp.field)
		f.p("return")
		f.p("}")
	}

	for _, a := range cp.args {
		switch {
		case a.indirect():
			f.p("if %s == nil {", a.name)
			f.p("err = errors.InvalidInput(errors.PhaseCall, %q)", a.name+" must not be nil")
			f.p("return")
			f.p("}")
		case a.typ.shape == shapeObject:
			f.p("var %sPtr tangara.Ptr", a.name)
			f.p("if %s != nil {", a.name)
			f.p("if %sPtr, err = %s.b.borrow(%s.h); err != nil {", a.name, a.name, a.name)
			f.p("return")
			f.p("}")
			f.p("defer %s.b.release(%s.h)", a.name, a.name)
			f.p("}")
		}
	}

	f.p("w := abi.NewWriter(%d)", cp.size)
	if cp.receiver {
		f.p("w.PutThis(this)")
	}
	for _, a := range cp.args {
		switch {
		case a.indirect():
			f.p("w.PutRef(tangara.Ptr(%s))", a.name)
		case a.typ.shape == shapeObject:
			f.p("w.PutRef(%sPtr)", a.name)
		case a.typ.shape == shapeEnum:
			f.p("abi.Put(w, %s(%s))", a.typ.wire, a.name)
		default:
			f.p("abi.Put(w, %s)", a.name)
		}
	}
	f.p("ret := abi.Call(%s.%s.%s, w)", bx, tp.field, cp.field)
	hostResult(f, bx, ret)
	f.p("return")
	f.p("}")
	f.p("")
}

// hostResult converts ret into the named results.
func hostResult(f *file, bx string, ret *goType) {
	switch {
	case ret == nil:
		f.p("err = abi.MustBeNull(ret)")
	case ret.shape == shapeObject:
		f.p("res, err = %s.wrap%s(ret)", bx, ret.name)
	case ret.shape == shapeEnum:
		f.p("var raw %s", ret.wire)
		f.p("if raw, err = abi.Unbox[%s](ret); err != nil {", ret.wire)
		f.p("return")
		f.p("}")
		f.p("res = %s(raw)", ret.name)
	case ret.shape == shapeTuple:
		f.p("var raw %s", ret.wire)
		f.p("if raw, err = abi.Unbox[%s](ret); err != nil {", ret.wire)
		f.p("return")
		f.p("}")
		vars := make([]string, len(ret.items))
		fields := make([]string, len(ret.items))
		for i := range ret.items {
			vars[i] = "res" + strconv.Itoa(i)
			fields[i] = "raw.F" + strconv.Itoa(i)
		}
		f.p("%s = %s", strings.Join(vars, ", "), strings.Join(fields, ", "))
	default:
		f.p("res, err = abi.Unbox[%s](ret)", ret.wire)
	}
}

func (p *plan) hostProperty(f *file, tp *typePlan, pp *propPlan, static bool) {
	what := tp.typ.FullName() + "." + pp.member
	bx, recv, getter, setter := "o.b", "func (o *"+tp.name+")", "Getter(this)", "Setter(this, "
	if static {
		bx, recv, getter, setter = "b", "func (b *Bindings)", "Getter()", "Setter("
	}
	prelude := func() {
		if static {
			f.p("if err = b.alive(b.%s.table); err != nil {", tp.field)
			f.p("return")
			f.p("}")
			return
		}
		f.p("var this tangara.Ptr")
		f.p("if this, err = o.b.borrow(o.h); err != nil {")
		f.p("return")
		f.p("}")
		f.p("defer o.b.release(o.h)")
	}

	f.p("// %s reads %s.", pp.hostName, what)
	if pp.doc != "" {
		f.p("//")
		f.doc(pp.doc)
	}
	f.p("%s %s() %s {", recv, pp.hostName, results(&pp.typ))
	prelude()
	f.p("ret := %s.%s.%s.%s", bx, tp.field, pp.field, getter)
	hostResult(f, bx, &pp.typ)
	f.p("return")
	f.p("}")
	f.p("")

	if pp.readOnly {
		return
	}
	f.p("// Set%s writes %s.", pp.hostName, what)
	f.p("%s Set%s(v %s) (err error) {", recv, pp.hostName, pp.typ.host())
	prelude()
	switch pp.typ.shape {
	case shapeEnum:
		f.p("raw := %s(v)", pp.typ.wire)
		f.p("%s.%s.%s.%stangara.Ptr(&raw))", bx, tp.field, pp.field, setter)
	case shapeObject:
		f.p("var raw tangara.Ptr")
		f.p("if v != nil {")
		f.p("if raw, err = v.b.borrow(v.h); err != nil {")
		f.p("return")
		f.p("}")
		f.p("defer v.b.release(v.h)")
		f.p("}")
		f.p("%s.%s.%s.%stangara.Ptr(&raw))", bx, tp.field, pp.field, setter)
	default:
		f.p("%s.%s.%s.%stangara.Ptr(&v))", bx, tp.field, pp.field, setter)
	}
	f.p("return")
	f.p("}")
	f.p("")
}
