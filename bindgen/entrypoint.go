package bindgen

import (
	"strconv"
	"strings"
)

// entrypoint emits the library side: one glue function per member and a
// TgLoad that registers them all.
func (p *plan) entrypoint() ([]byte, error) {
	f := newFile(p.cfg.PackageName)
	f.use(importTangara, "")
	f.use(importABI, "")
	f.use(importRegistry, "")
	q := ""
	if p.cfg.LibraryPackage != "" {
		f.use(p.cfg.LibraryPackage, "lib")
		q = "lib."
	}
	for _, imp := range p.cfg.Imports {
		f.use(imp, "_")
	}

	f.p("// TgLoad registers the %s glue in ctx. Plugin builds export it", p.pkg.Name)
	f.p("// as the library entry point.")
	f.p("func TgLoad(ctx *registry.Context) {")
	if len(p.types) == 0 {
		f.p("ctx.AddPackage(%s) // %s", hex(p.pkg.ID), p.pkg.Name)
	} else {
		f.p("pkg := ctx.AddPackage(%s) // %s", hex(p.pkg.ID), p.pkg.Name)
		for _, tp := range p.types {
			f.p("tgRegister%s(pkg.AddType(%s)) // %s", tp.name, hex(tp.typ.ID), tp.typ.FullName())
		}
	}
	f.p("}")
	f.p("")
	f.p("var _ registry.EntryPoint = TgLoad")
	f.p("")
	if len(p.types) > 0 {
		f.p("func tgDrop(v any) {")
		f.p("if d, ok := v.(interface{ Drop() }); ok {")
		f.p("d.Drop()")
		f.p("}")
		f.p("}")
		f.p("")
		f.p("// tgCopy detaches an object read from or written to a property, so")
		f.p("// the receiver and the other side never share one allocation.")
		f.p("func tgCopy[T any](p *T) *T {")
		f.p("if p == nil {")
		f.p("return nil")
		f.p("}")
		f.p("c := *p")
		f.p("return &c")
		f.p("}")
	}

	for _, tp := range p.types {
		f.p("")
		p.glueType(f, q, tp)
	}
	return f.bytes()
}

func (p *plan) glueType(f *file, q string, tp *typePlan) {
	self := "*" + q + tp.name
	f.p("func tgRegister%s(ft *registry.FuncTable) {", tp.name)
	f.p("ft.SetDtor(func(this tangara.Ptr) { tgDrop((%s)(this)) })", self)

	for _, cp := range tp.ctors {
		if cp.skipped {
			f.p("ft.AddCtor(nil) // %s is not exposed", cp.member)
			continue
		}
		f.p("ft.AddCtor(func(args []byte) tangara.Ptr { // %s", cp.member)
		names := p.glueArgs(f, q, self, cp)
		f.p("return tangara.Ptr(%s%s(%s))", q, cp.libName, strings.Join(names, ", "))
		f.p("})")
	}

	for _, cp := range tp.methods {
		f.p("ft.AddMethod(%s, func(args []byte) tangara.Ptr { // %s", hex(cp.id), cp.member)
		names := p.glueArgs(f, q, self, cp)
		target := q
		if cp.receiver {
			target = "this."
		}
		glueReturn(f, target+cp.libName+"("+strings.Join(names, ", ")+")", cp.ret)
		f.p("})")
	}

	for _, pp := range tp.props {
		recv := "(" + self + ")(this)."
		f.p("ft.AddProperty(%s, registry.Property{ // %s", hex(pp.id), pp.member)
		f.p("Getter: func(this tangara.Ptr) tangara.Ptr {")
		f.p("return %s", boxCopy(pp.typ, recv+accessor(pp)))
		f.p("},")
		if !pp.readOnly {
			f.p("Setter: func(this, v tangara.Ptr) {")
			f.p("%s", assign(recv, pp, loadCopy(q, pp.typ, "v")))
			f.p("},")
		}
		f.p("})")
	}

	for _, pp := range tp.statics {
		f.p("ft.AddStatic(%s, registry.StaticProperty{ // %s", hex(pp.id), pp.member)
		f.p("Getter: func() tangara.Ptr {")
		f.p("return %s", boxCopy(pp.typ, q+accessor(pp)))
		f.p("},")
		if !pp.readOnly {
			f.p("Setter: func(v tangara.Ptr) {")
			f.p("%s", assign(q, pp, loadCopy(q, pp.typ, "v")))
			f.p("},")
		}
		f.p("})")
	}
	f.p("}")
}

// glueArgs reads the receiver and arguments out of the buffer and returns
// the expressions to call the library with.
func (p *plan) glueArgs(f *file, q, self string, cp *callPlan) []string {
	if !cp.receiver && len(cp.args) == 0 {
		return nil
	}
	f.p("r := abi.NewReader(args)")
	if cp.receiver {
		f.p("this := (%s)(r.This())", self)
	}
	names := make([]string, len(cp.args))
	for i, a := range cp.args {
		names[i] = a.name
		switch {
		case a.indirect():
			f.p("%s := abi.GetRef[%s](r)", a.name, a.typ.lib(q))
		case a.typ.shape == shapeEnum:
			f.p("%s := %s%s(abi.Get[%s](r))", a.name, q, a.typ.name, a.typ.wire)
		case a.typ.shape == shapeObject:
			f.p("%s := (%s)(abi.Get[tangara.Ptr](r))", a.name, a.typ.lib(q))
		default:
			f.p("%s := abi.Get[%s](r)", a.name, a.typ.wire)
		}
	}
	return names
}

func glueReturn(f *file, call string, ret *goType) {
	switch {
	case ret == nil:
		f.p("%s", call)
		f.p("return nil")
	case ret.shape == shapeTuple:
		vars := make([]string, len(ret.items))
		for i := range vars {
			vars[i] = "res" + strconv.Itoa(i)
		}
		list := strings.Join(vars, ", ")
		f.p("%s := %s", list, call)
		f.p("return abi.Box(%s{%s})", ret.wire, list)
	default:
		f.p("return %s", box(*ret, call))
	}
}

// box converts a library value into a returned Ptr.
func box(t goType, expr string) string {
	switch t.shape {
	case shapeEnum:
		return "abi.Box(" + t.wire + "(" + expr + "))"
	case shapeObject:
		return "tangara.Ptr(" + expr + ")"
	}
	return "abi.Box(" + expr + ")"
}

// boxCopy is box for property reads. Object results are copies the caller
// owns; the receiver keeps its own.
func boxCopy(t goType, expr string) string {
	if t.shape == shapeObject {
		return "tangara.Ptr(tgCopy(" + expr + "))"
	}
	return box(t, expr)
}

// loadCopy is load for property writes. The caller keeps ownership of the
// object it passed, so the receiver stores a copy.
func loadCopy(q string, t goType, ptr string) string {
	if t.shape == shapeObject {
		return "tgCopy(" + load(q, t, ptr) + ")"
	}
	return load(q, t, ptr)
}

// load reads a library value from caller storage at ptr.
func load(q string, t goType, ptr string) string {
	raw := "*(*" + t.wire + ")(" + ptr + ")"
	switch t.shape {
	case shapeEnum:
		return q + t.name + "(" + raw + ")"
	case shapeObject:
		return "(" + t.lib(q) + ")(" + raw + ")"
	}
	return raw
}

func accessor(pp *propPlan) string {
	if pp.data {
		return pp.libName
	}
	return pp.libName + "()"
}

func assign(target string, pp *propPlan, value string) string {
	if pp.data {
		return target + pp.libName + " = " + value
	}
	return target + "Set" + pp.libName + "(" + value + ")"
}
