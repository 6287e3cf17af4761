package meta

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

// RefKind selects the form of a TypeRef.
type RefKind uint8

const (
	RefName RefKind = iota
	RefID
	RefGeneric
	RefTuple
	RefFn
)

// Structural tags, one per RefKind.
const (
	tagName    = 'N'
	tagID      = 'I'
	tagGeneric = 'G'
	tagTuple   = 'T'
	tagFn      = 'F'
)

// TypeRef refers to a type by name, by ID, or by shape.
//
// Field use by kind:
//
//	RefName     Name
//	RefID       ID
//	RefGeneric  Base, Args
//	RefTuple    Args
//	RefFn       Base (return, nil for none), Args (parameters)
type TypeRef struct {
	Kind RefKind
	Name string
	ID   uint64
	Base *TypeRef
	Args []TypeRef
}

// Name returns a reference to a named type.
func Name(name string) TypeRef {
	return TypeRef{Kind: RefName, Name: name}
}

// RefByID returns a reference to a type by its identity hash.
func RefByID(id uint64) TypeRef {
	return TypeRef{Kind: RefID, ID: id}
}

// GenericOf returns base parameterized by args.
func GenericOf(base TypeRef, args ...TypeRef) TypeRef {
	return TypeRef{Kind: RefGeneric, Base: &base, Args: args}
}

// Tuple returns an anonymous product of items.
func Tuple(items ...TypeRef) TypeRef {
	return TypeRef{Kind: RefTuple, Args: items}
}

// Fn returns a function reference. ret may be nil.
func Fn(ret *TypeRef, params ...TypeRef) TypeRef {
	return TypeRef{Kind: RefFn, Base: ret, Args: params}
}

// Ref returns a pointer to a copy of t, for optional returns.
func Ref(t TypeRef) *TypeRef {
	return &t
}

// AppendShape appends the structural encoding of t. Every node is
// self-delimiting, so distinct shapes never share an encoding.
func (t TypeRef) AppendShape(dst []byte) []byte {
	switch t.Kind {
	case RefName:
		dst = append(dst, tagName)
		dst = binary.AppendUvarint(dst, uint64(len(t.Name)))
		dst = append(dst, t.Name...)
	case RefID:
		dst = append(dst, tagID)
		dst = binary.LittleEndian.AppendUint64(dst, t.ID)
	case RefGeneric:
		dst = append(dst, tagGeneric)
		if t.Base != nil {
			dst = t.Base.AppendShape(dst)
		} else {
			dst = Name("").AppendShape(dst)
		}
		dst = appendList(dst, t.Args)
	case RefTuple:
		dst = append(dst, tagTuple)
		dst = appendList(dst, t.Args)
	case RefFn:
		dst = append(dst, tagFn)
		if t.Base != nil {
			dst = append(dst, 1)
			dst = t.Base.AppendShape(dst)
		} else {
			dst = append(dst, 0)
		}
		dst = appendList(dst, t.Args)
	}
	return dst
}

func appendList(dst []byte, refs []TypeRef) []byte {
	dst = binary.AppendUvarint(dst, uint64(len(refs)))
	for _, r := range refs {
		dst = r.AppendShape(dst)
	}
	return dst
}

// Equal reports structural equality.
func (t TypeRef) Equal(o TypeRef) bool {
	return bytes.Equal(t.AppendShape(nil), o.AppendShape(nil))
}

// IsName reports whether t is the named reference n.
func (t TypeRef) IsName(n string) bool {
	return t.Kind == RefName && t.Name == n
}

// IsGeneric reports whether t or any nested reference is generic.
func (t TypeRef) IsGeneric() bool {
	if t.Kind == RefGeneric {
		return true
	}
	if t.Base != nil && t.Base.IsGeneric() {
		return true
	}
	for _, a := range t.Args {
		if a.IsGeneric() {
			return true
		}
	}
	return false
}

func (t TypeRef) String() string {
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (t TypeRef) write(b *strings.Builder) {
	switch t.Kind {
	case RefName:
		b.WriteString(t.Name)
	case RefID:
		fmt.Fprintf(b, "#%016x", t.ID)
	case RefGeneric:
		if t.Base != nil {
			t.Base.write(b)
		}
		b.WriteByte('<')
		writeList(b, t.Args)
		b.WriteByte('>')
	case RefTuple:
		b.WriteByte('(')
		writeList(b, t.Args)
		b.WriteByte(')')
	case RefFn:
		b.WriteString("fn(")
		writeList(b, t.Args)
		b.WriteByte(')')
		if t.Base != nil {
			b.WriteString(" -> ")
			t.Base.write(b)
		}
	default:
		fmt.Fprintf(b, "ref(%d)", t.Kind)
	}
}

func writeList(b *strings.Builder, refs []TypeRef) {
	for i, r := range refs {
		if i > 0 {
			b.WriteString(", ")
		}
		r.write(b)
	}
}

// ParseTypeRef parses the String form of a TypeRef:
//
//	Int
//	#00000000000000ff
//	Array<Int>
//	Map<String, List<Long>>
//	(Int, String)
//	fn(Int, Int) -> Long
func ParseTypeRef(s string) (TypeRef, error) {
	p := refParser{src: s}
	t, err := p.parse()
	if err != nil {
		return TypeRef{}, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return TypeRef{}, p.errorf("unexpected %q", p.src[p.pos:])
	}
	return t, nil
}

// MustParseTypeRef is ParseTypeRef for literals known to be valid.
func MustParseTypeRef(s string) TypeRef {
	t, err := ParseTypeRef(s)
	if err != nil {
		panic(err)
	}
	return t
}

type refParser struct {
	src string
	pos int
}

func (p *refParser) errorf(format string, args ...any) error {
	return fmt.Errorf("typeref %q at %d: %s", p.src, p.pos, fmt.Sprintf(format, args...))
}

func (p *refParser) skipSpace() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func (p *refParser) peek() byte {
	p.skipSpace()
	if p.pos < len(p.src) {
		return p.src[p.pos]
	}
	return 0
}

func (p *refParser) parse() (TypeRef, error) {
	switch c := p.peek(); {
	case c == 0:
		return Name(""), nil
	case c == '#':
		p.pos++
		start := p.pos
		for p.pos < len(p.src) && isHex(p.src[p.pos]) {
			p.pos++
		}
		id, err := strconv.ParseUint(p.src[start:p.pos], 16, 64)
		if err != nil {
			return TypeRef{}, p.errorf("bad id: %v", err)
		}
		return RefByID(id), nil
	case c == '(':
		p.pos++
		items, err := p.list(')')
		if err != nil {
			return TypeRef{}, err
		}
		return Tuple(items...), nil
	}

	name := p.ident()
	if name == "" {
		return TypeRef{}, p.errorf("expected type name")
	}
	if name == "fn" && p.peek() == '(' {
		p.pos++
		params, err := p.list(')')
		if err != nil {
			return TypeRef{}, err
		}
		p.skipSpace()
		if strings.HasPrefix(p.src[p.pos:], "->") {
			p.pos += 2
			ret, err := p.parse()
			if err != nil {
				return TypeRef{}, err
			}
			return Fn(&ret, params...), nil
		}
		return Fn(nil, params...), nil
	}
	if p.peek() == '<' {
		p.pos++
		args, err := p.list('>')
		if err != nil {
			return TypeRef{}, err
		}
		return GenericOf(Name(name), args...), nil
	}
	return Name(name), nil
}

func (p *refParser) list(end byte) ([]TypeRef, error) {
	var out []TypeRef
	if p.peek() == end {
		p.pos++
		return out, nil
	}
	for {
		t, err := p.parse()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
		switch p.peek() {
		case ',':
			p.pos++
		case end:
			p.pos++
			return out, nil
		default:
			return nil, p.errorf("expected ',' or %q", end)
		}
	}
}

func (p *refParser) ident() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '<' || c == '>' || c == '(' || c == ')' || c == ',' || c == ' ' || c == '#' {
			break
		}
		if c == '-' && p.pos+1 < len(p.src) && p.src[p.pos+1] == '>' {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}
