package main

import (
	"fmt"
	"strings"

	"github.com/wippyai/tangara/meta"
	"github.com/wippyai/tangara/metaio"
	"github.com/wippyai/tangara/runtime"
)

// session is a plugin loaded and bound against its metadata.
type session struct {
	rt  *runtime.Runtime
	mod *runtime.Module
	pkg *meta.Package
}

func openSession(pluginPath, metadataPath string) (*session, error) {
	pkg, err := metaio.ReadFile(metadataPath)
	if err != nil {
		return nil, err
	}
	rt := runtime.New(runtime.WithLogger(logger))
	if _, err := rt.LoadPlugin(pluginPath); err != nil {
		_ = rt.Close()
		return nil, err
	}
	rt.Seal()
	mod, err := rt.Bind(pkg)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	return &session{rt: rt, mod: mod, pkg: pkg}, nil
}

func (s *session) Close() error {
	return s.rt.Close()
}

// invoke runs a callable entry. Objects returned by constructors or
// methods are described and closed.
func (s *session) invoke(e entry, raw []string) (string, error) {
	p := newArgParser(s.pkg)
	args, err := p.parse(e.args, raw)
	if err != nil {
		return "", err
	}
	typeName := e.typ.FullName()

	var res any
	switch e.kind {
	case entryCtor:
		res, err = s.mod.New(typeName, e.ctor, args...)
	case entryStaticMethod:
		res, err = s.mod.CallStatic(typeName, e.name, args...)
	case entryStaticProperty, entryStaticField:
		if len(raw) == 0 {
			res, err = s.mod.GetStatic(typeName, e.name)
			break
		}
		v, perr := p.value(e.valueType, raw[0])
		if perr != nil {
			return "", perr
		}
		err = s.mod.SetStatic(typeName, e.name, v)
	default:
		return "", fmt.Errorf("%s %s needs an instance", e.kind, e.name)
	}
	if err != nil {
		return "", err
	}
	return describeResult(res, e.args, args), nil
}

// describeResult formats a result and any by-reference arguments.
func describeResult(res any, params []meta.Argument, args []any) string {
	var b strings.Builder
	b.WriteString(formatValue(res))
	for i, v := range deref(args) {
		if params[i].Kind.Indirect() && params[i].Kind.Mode != meta.ByIn {
			fmt.Fprintf(&b, "\n%s = %v", params[i].Name, v)
		}
	}
	return b.String()
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "(no result)"
	case *runtime.Object:
		s := fmt.Sprintf("%s object %s", x.Type().FullName(), x.Handle())
		if err := x.Close(); err != nil {
			s += fmt.Sprintf(" (close: %v)", err)
		}
		return s
	case string:
		return fmt.Sprintf("%q", x)
	case []any:
		parts := make([]string, len(x))
		for i, item := range x {
			parts[i] = formatValue(item)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	}
	return fmt.Sprintf("%v", v)
}
