package bindgen

import (
	"go/token"
	"strconv"
	"strings"

	"github.com/wippyai/tangara/meta"
)

var goNames = meta.GoConventions

// Locals used by generated bodies. Parameters that collide are suffixed.
var reservedLocals = map[string]bool{
	"args": true, "b": true, "err": true, "o": true, "r": true, "raw": true,
	"res": true, "ret": true, "this": true, "v": true, "w": true,
	"abi": true, "errors": true, "handle": true, "lib": true, "registry": true,
	"tangara": true, "ft": true, "key": true, "missing": true, "table": true,
}

// exported spells name as an exported Go identifier.
func exported(n meta.Naming, name string) string {
	return ident(n.Apply(name), "X")
}

// unexported spells name as an unexported Go identifier.
func unexported(name string) string {
	return ident(goNames.Parameter.Apply(name), "x")
}

func ident(s, prefix string) string {
	if s == "" {
		return prefix
	}
	if !token.IsIdentifier(s) {
		var b strings.Builder
		for _, r := range s {
			if r == '_' || ('0' <= r && r <= '9') || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') {
				b.WriteRune(r)
			}
		}
		s = b.String()
		if s == "" || ('0' <= s[0] && s[0] <= '9') {
			s = prefix + s
		}
	}
	if token.IsKeyword(s) {
		s += "_"
	}
	return s
}

// paramName spells an argument name so it cannot clash with keywords or
// generated locals.
func paramName(name string, i int) string {
	if name == "" {
		return "a" + strconv.Itoa(i)
	}
	s := unexported(name)
	if reservedLocals[s] {
		s += "_"
	}
	return s
}

func typeName(t *meta.Type) string {
	if s, ok := stringAttr(t.Attributes, GoName); ok {
		return s
	}
	return exported(goNames.Type, t.Name)
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
