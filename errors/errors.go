package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseBuild    Phase = "build"    // metadata construction
	PhaseRegister Phase = "register" // registry population
	PhaseLookup   Phase = "lookup"   // registry queries
	PhaseCall     Phase = "call"     // boundary calls
	PhaseLoad     Phase = "load"     // library loading
	PhaseGenerate Phase = "generate" // binding generation
	PhaseEncode   Phase = "encode"   // Go to arg buffer or interchange format
	PhaseDecode   Phase = "decode"   // arg buffer or interchange format to Go
	PhaseConfig   Phase = "config"   // manifest loading
)

// Kind categorizes the error
type Kind string

const (
	KindNotFound       Kind = "not_found"
	KindNullResult     Kind = "null_result"
	KindBuildInvariant Kind = "build_invariant"
	KindDangling       Kind = "dangling_symbol"
	KindSealed         Kind = "sealed"
	KindOwnership      Kind = "ownership"
	KindInvalidInput   Kind = "invalid_input"
	KindUnsupported    Kind = "unsupported"
	KindTypeMismatch   Kind = "type_mismatch"
	KindOutOfBounds    Kind = "out_of_bounds"
	KindInvalidData    Kind = "invalid_data"
	KindOverflow       Kind = "overflow"
	KindLoadFailed     Kind = "load_failed"
	KindBusy           Kind = "busy"
)

// Error is the structured error type used throughout tangara
type Error struct {
	Value    any
	Cause    error
	Phase    Phase
	Kind     Kind
	GoType   string
	MetaType string
	Detail   string
	Path     []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	typed := e.GoType != "" || e.MetaType != ""
	if typed {
		b.WriteString(": ")
		switch {
		case e.GoType != "" && e.MetaType != "":
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
			b.WriteString(", meta type ")
			b.WriteString(e.MetaType)
		case e.GoType != "":
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
		default:
			b.WriteString("meta type ")
			b.WriteString(e.MetaType)
		}
	}

	if e.Detail != "" {
		if typed {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// IsKind reports whether any *Error in err's chain has the given kind,
// regardless of phase.
func IsKind(err error, kind Kind) bool {
	for err != nil {
		switch e := err.(type) {
		case *Error:
			if e.Kind == kind {
				return true
			}
		case *MissingSymbolsError:
			if kind == KindNotFound {
				return true
			}
		}
		err = errors.Unwrap(err)
	}
	return false
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the member path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// MetaType sets the metadata type reference
func (b *Builder) MetaType(t string) *Builder {
	b.err.MetaType = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// NotFoundID creates a not-found error for an identity hash
func NotFoundID(phase Phase, what string, id uint64) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %#016x not found", what, id),
		Value:  id,
	}
}

// NullResult reports a value-producing boundary call that returned null
func NullResult(path []string, metaType string) *Error {
	return &Error{
		Phase:    PhaseCall,
		Kind:     KindNullResult,
		Path:     path,
		MetaType: metaType,
		Detail:   "boundary call returned null for a declared value",
	}
}

// BuildInvariant creates a metadata construction error
func BuildInvariant(path []string, detail string, args ...any) *Error {
	if len(args) > 0 {
		detail = fmt.Sprintf(detail, args...)
	}
	return &Error{
		Phase:  PhaseBuild,
		Kind:   KindBuildInvariant,
		Path:   path,
		Detail: detail,
	}
}

// Dangling reports use of a symbol or object after its library was unloaded
func Dangling(phase Phase, what string, id uint64) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindDangling,
		Detail: fmt.Sprintf("%s %#016x belongs to an unloaded library", what, id),
		Value:  id,
	}
}

// Sealed reports a write to a sealed registry
func Sealed(what string) *Error {
	return &Error{
		Phase:  PhaseRegister,
		Kind:   KindSealed,
		Detail: fmt.Sprintf("cannot %s: registry is sealed", what),
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, path []string, goType, metaType string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindTypeMismatch,
		Path:     path,
		GoType:   goType,
		MetaType: metaType,
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, path []string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
		Value:  index,
	}
}

// Overflow creates an overflow error
func Overflow(phase Phase, path []string, value any, targetType string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindOverflow,
		Path:     path,
		MetaType: targetType,
		Detail:   fmt.Sprintf("value %v overflows %s", value, targetType),
		Value:    value,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Load creates a library loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindLoadFailed,
		Detail: detail,
		Cause:  cause,
	}
}

// MissingSymbol is a single boundary function a binding expected but
// the registry did not provide.
type MissingSymbol struct {
	Type   string // e.g. "MyLib.MyStruct"
	Member string // e.g. "get_name"
}

// MissingSymbolsError is returned when bindings cannot be loaded because the
// library registered fewer functions than its metadata declares.
type MissingSymbolsError struct {
	Symbols []MissingSymbol
}

// NewMissingSymbolsError creates an error from "Type#member" keys
func NewMissingSymbolsError(keys []string) *MissingSymbolsError {
	result := &MissingSymbolsError{
		Symbols: make([]MissingSymbol, 0, len(keys)),
	}
	for _, key := range keys {
		typ, member := parseSymbolKey(key)
		result.Symbols = append(result.Symbols, MissingSymbol{
			Type:   typ,
			Member: member,
		})
	}
	return result
}

func parseSymbolKey(key string) (typ, member string) {
	t, m, found := strings.Cut(key, "#")
	if found {
		return t, m
	}
	return key, ""
}

func (e *MissingSymbolsError) Error() string {
	if len(e.Symbols) == 0 {
		return "[lookup] not_found: no symbols specified"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "missing %d boundary function(s):\n", len(e.Symbols))

	byType := make(map[string][]string)
	var order []string
	for _, s := range e.Symbols {
		if _, exists := byType[s.Type]; !exists {
			order = append(order, s.Type)
		}
		byType[s.Type] = append(byType[s.Type], s.Member)
	}

	for _, typ := range order {
		b.WriteString("\n  ")
		b.WriteString(typ)
		b.WriteString(":\n")
		members := byType[typ]
		sort.Strings(members)
		for _, m := range members {
			b.WriteString("    - ")
			b.WriteString(m)
			b.WriteByte('\n')
		}
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// Is reports whether target matches this error type. A MissingSymbolsError
// also matches a lookup NotFound target.
func (e *MissingSymbolsError) Is(target error) bool {
	switch t := target.(type) {
	case *MissingSymbolsError:
		return true
	case *Error:
		return t.Phase == PhaseLookup && t.Kind == KindNotFound
	}
	return false
}
