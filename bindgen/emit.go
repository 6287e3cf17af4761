package bindgen

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"sort"
	"strconv"
	"strings"

	"github.com/wippyai/tangara/errors"
)

const (
	importTangara  = "github.com/wippyai/tangara"
	importABI      = "github.com/wippyai/tangara/abi"
	importErrors   = "github.com/wippyai/tangara/errors"
	importHandle   = "github.com/wippyai/tangara/handle"
	importRegistry = "github.com/wippyai/tangara/registry"
)

const header = "// Code generated by tangara bindgen. DO NOT EDIT.\n"

// file accumulates generated declarations. Every candidate import is
// declared up front and the unused ones are pruned after parsing.
type file struct {
	pkg     string
	imports map[string]string // path to name, "_" for blank imports
	body    strings.Builder
}

func newFile(pkg string) *file {
	return &file{pkg: pkg, imports: make(map[string]string)}
}

func (f *file) use(path, name string) {
	f.imports[path] = name
}

// p writes one line of source. Indentation is left to go/format.
func (f *file) p(format string, args ...any) {
	fmt.Fprintf(&f.body, format, args...)
	f.body.WriteByte('\n')
}

// doc writes text as a comment block.
func (f *file) doc(text string) {
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		f.p("// %s", strings.TrimRight(line, " \t"))
	}
}

func (f *file) bytes() ([]byte, error) {
	var b bytes.Buffer
	b.WriteString(header)
	b.WriteString("\npackage " + f.pkg + "\n\n")

	paths := make([]string, 0, len(f.imports))
	for path := range f.imports {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	if len(paths) > 0 {
		b.WriteString("import (\n")
		for _, path := range paths {
			if name := f.imports[path]; name != "" {
				b.WriteString(name + " ")
			}
			b.WriteString(strconv.Quote(path) + "\n")
		}
		b.WriteString(")\n\n")
	}
	b.WriteString(f.body.String())

	src, err := prune(b.Bytes())
	if err != nil {
		return nil, errors.Wrap(errors.PhaseGenerate, errors.KindInvalidData, err, "generated source does not parse")
	}
	out, err := format.Source(src)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseGenerate, errors.KindInvalidData, err, "format generated source")
	}
	return out, nil
}

// prune drops imports the source never selects from.
func prune(src []byte) ([]byte, error) {
	fset := token.NewFileSet()
	af, err := parser.ParseFile(fset, "", src, parser.ParseComments)
	if err != nil {
		return nil, err
	}

	used := make(map[string]bool)
	ast.Inspect(af, func(n ast.Node) bool {
		if sel, ok := n.(*ast.SelectorExpr); ok {
			if id, ok := sel.X.(*ast.Ident); ok {
				used[id.Name] = true
			}
		}
		return true
	})

	keep := func(spec *ast.ImportSpec) bool {
		if spec.Name != nil {
			return spec.Name.Name == "_" || used[spec.Name.Name]
		}
		path, _ := strconv.Unquote(spec.Path.Value)
		return used[path[strings.LastIndex(path, "/")+1:]]
	}

	decls := af.Decls[:0]
	af.Imports = af.Imports[:0]
	for _, d := range af.Decls {
		gd, ok := d.(*ast.GenDecl)
		if !ok || gd.Tok != token.IMPORT {
			decls = append(decls, d)
			continue
		}
		specs := gd.Specs[:0]
		for _, s := range gd.Specs {
			if is := s.(*ast.ImportSpec); keep(is) {
				specs = append(specs, is)
				af.Imports = append(af.Imports, is)
			}
		}
		if len(specs) > 0 {
			gd.Specs = specs
			decls = append(decls, gd)
		}
	}
	af.Decls = decls

	var b bytes.Buffer
	if err := format.Node(&b, fset, af); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func hex(id uint64) string {
	return fmt.Sprintf("0x%016x", id)
}
