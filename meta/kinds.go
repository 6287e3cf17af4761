package meta

import (
	"fmt"
	"strings"
)

// Visibility of a type or member.
type Visibility uint8

const (
	Public Visibility = iota
	Protected
	Internal
	Private
)

var visibilityNames = [...]string{"public", "protected", "internal", "private"}

func (v Visibility) String() string {
	if int(v) < len(visibilityNames) {
		return visibilityNames[v]
	}
	return fmt.Sprintf("visibility(%d)", v)
}

// ParseVisibility parses the String form of a Visibility.
func ParseVisibility(s string) (Visibility, error) {
	for i, n := range visibilityNames {
		if strings.EqualFold(s, n) {
			return Visibility(i), nil
		}
	}
	return 0, fmt.Errorf("unknown visibility %q", s)
}

// MethodKind distinguishes instance, static and overridable methods.
type MethodKind uint8

const (
	Default MethodKind = iota
	Abstract
	Virtual
	Static
)

var methodKindNames = [...]string{"default", "abstract", "virtual", "static"}

func (k MethodKind) String() string {
	if int(k) < len(methodKindNames) {
		return methodKindNames[k]
	}
	return fmt.Sprintf("method_kind(%d)", k)
}

// ParseMethodKind parses the String form of a MethodKind.
func ParseMethodKind(s string) (MethodKind, error) {
	for i, n := range methodKindNames {
		if strings.EqualFold(s, n) {
			return MethodKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown method kind %q", s)
}

// HasReceiver reports whether calls of this kind pass `this` first.
func (k MethodKind) HasReceiver() bool {
	return k != Static
}

// PassMode is how an argument travels through the arg buffer.
type PassMode uint8

const (
	ByValue        PassMode = iota // copy of the value
	ByDefaultValue                 // copy, may be omitted by the caller
	ByOut                          // pointer to caller storage, write-only
	ByRef                          // pointer to caller storage, read-write
	ByIn                           // pointer to caller storage, read-only
)

var passModeNames = [...]string{"default", "default_value", "out", "ref", "in"}

func (m PassMode) String() string {
	if int(m) < len(passModeNames) {
		return passModeNames[m]
	}
	return fmt.Sprintf("pass_mode(%d)", m)
}

// ParsePassMode parses the String form of a PassMode.
func ParsePassMode(s string) (PassMode, error) {
	for i, n := range passModeNames {
		if strings.EqualFold(s, n) {
			return PassMode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown argument kind %q", s)
}

// ArgumentKind is a PassMode plus the default value for ByDefaultValue.
type ArgumentKind struct {
	Mode    PassMode
	Default Value
}

// Indirect reports whether the slot holds a pointer to caller storage.
func (k ArgumentKind) Indirect() bool {
	return k.Mode == ByOut || k.Mode == ByRef || k.Mode == ByIn
}

// DefaultValue returns an ArgumentKind that may be omitted by the caller.
func DefaultValue(v Value) ArgumentKind {
	return ArgumentKind{Mode: ByDefaultValue, Default: v}
}

var (
	ArgDefault = ArgumentKind{Mode: ByValue}
	ArgOut     = ArgumentKind{Mode: ByOut}
	ArgRef     = ArgumentKind{Mode: ByRef}
	ArgIn      = ArgumentKind{Mode: ByIn}
)
