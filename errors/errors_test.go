package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:    PhaseCall,
				Kind:     KindTypeMismatch,
				Path:     []string{"MyLib", "MyStruct", "repeat"},
				GoType:   "string",
				MetaType: "UInt",
				Detail:   "cannot pack",
			},
			contains: []string{"[call]", "type_mismatch", "MyLib.MyStruct.repeat", "string", "UInt", "cannot pack"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseLookup,
				Kind:  KindNotFound,
			},
			contains: []string{"[lookup]", "not_found"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseLoad,
				Kind:   KindLoadFailed,
				Detail: "open plugin",
				Cause:  errors.New("no such file"),
			},
			contains: []string{"[load]", "load_failed", "open plugin", "caused by", "no such file"},
		},
		{
			name: "meta type only",
			err: &Error{
				Phase:    PhaseCall,
				Kind:     KindNullResult,
				MetaType: "String",
				Detail:   "null",
			},
			contains: []string{"meta type String - null"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseDecode,
		Kind:  KindInvalidData,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseLookup,
		Kind:  KindNotFound,
		Path:  []string{"foo"},
	}

	if !err.Is(&Error{Phase: PhaseLookup, Kind: KindNotFound}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseCall, Kind: KindNotFound}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseLookup, Kind: KindSealed}) {
		t.Error("Is should not match different kind")
	}

	wrapped := fmt.Errorf("load bindings: %w", err)
	if !errors.Is(wrapped, &Error{Phase: PhaseLookup, Kind: KindNotFound}) {
		t.Error("errors.Is should match through fmt wrapping")
	}
}

func TestIsKind(t *testing.T) {
	inner := NullResult([]string{"T", "m"}, "String")
	outer := Wrap(PhaseCall, KindInvalidInput, inner, "call failed")

	if !IsKind(outer, KindNullResult) {
		t.Error("IsKind should find kind in cause chain")
	}
	if !IsKind(outer, KindInvalidInput) {
		t.Error("IsKind should match outer kind")
	}
	if IsKind(outer, KindSealed) {
		t.Error("IsKind should not match absent kind")
	}
	if IsKind(nil, KindNotFound) {
		t.Error("IsKind(nil) should be false")
	}

	k, ok := KindOf(fmt.Errorf("x: %w", inner))
	if !ok || k != KindNullResult {
		t.Errorf("KindOf = %v, %v", k, ok)
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseCall, KindTypeMismatch).
		Path("MyStruct", "name").
		GoType("int").
		MetaType("String").
		Value(42).
		Cause(cause).
		Detail("expected %s, got %s", "string", "int").
		Build()

	if err.Phase != PhaseCall {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseCall)
	}
	if err.Kind != KindTypeMismatch {
		t.Errorf("Kind = %v, want %v", err.Kind, KindTypeMismatch)
	}
	if len(err.Path) != 2 || err.Path[0] != "MyStruct" || err.Path[1] != "name" {
		t.Errorf("Path = %v, want [MyStruct name]", err.Path)
	}
	if err.GoType != "int" || err.MetaType != "String" {
		t.Errorf("GoType=%v MetaType=%v", err.GoType, err.MetaType)
	}
	if err.Value != 42 {
		t.Errorf("Value = %v, want 42", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "expected string, got int" {
		t.Errorf("Detail = %v, want 'expected string, got int'", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("NotFoundID", func(t *testing.T) {
		err := NotFoundID(PhaseLookup, "package", 9)
		if err.Kind != KindNotFound {
			t.Errorf("Kind = %v, want %v", err.Kind, KindNotFound)
		}
		if !strings.Contains(err.Detail, "0x0000000000000009") {
			t.Errorf("Detail = %v, should contain hex id", err.Detail)
		}
	})

	t.Run("BuildInvariant", func(t *testing.T) {
		err := BuildInvariant([]string{"Shape", "area"}, "method kind %s not allowed", "Virtual")
		if err.Kind != KindBuildInvariant || err.Phase != PhaseBuild {
			t.Errorf("got %v/%v", err.Phase, err.Kind)
		}
		if err.Detail != "method kind Virtual not allowed" {
			t.Errorf("Detail = %q", err.Detail)
		}
	})

	t.Run("Dangling", func(t *testing.T) {
		err := Dangling(PhaseLookup, "type", 3)
		if err.Kind != KindDangling {
			t.Errorf("Kind = %v, want %v", err.Kind, KindDangling)
		}
	})

	t.Run("Sealed", func(t *testing.T) {
		err := Sealed("add package")
		if err.Kind != KindSealed || err.Phase != PhaseRegister {
			t.Errorf("got %v/%v", err.Phase, err.Kind)
		}
	})

	t.Run("OutOfBounds", func(t *testing.T) {
		err := OutOfBounds(PhaseLookup, []string{"ctor"}, 10, 5)
		if err.Value != 10 {
			t.Errorf("Value = %v, want 10", err.Value)
		}
	})

	t.Run("Overflow", func(t *testing.T) {
		err := Overflow(PhaseEncode, []string{"val"}, 300, "Byte")
		if err.Kind != KindOverflow || err.MetaType != "Byte" {
			t.Errorf("got %v %v", err.Kind, err.MetaType)
		}
	})

	t.Run("Load", func(t *testing.T) {
		err := Load("open", errors.New("boom"))
		if err.Kind != KindLoadFailed || err.Phase != PhaseLoad {
			t.Errorf("got %v/%v", err.Phase, err.Kind)
		}
	})
}

func TestMissingSymbolsError(t *testing.T) {
	t.Run("single symbol", func(t *testing.T) {
		err := NewMissingSymbolsError([]string{"MyLib.MyStruct#get_name"})
		if len(err.Symbols) != 1 {
			t.Fatalf("expected 1 symbol, got %d", len(err.Symbols))
		}
		if err.Symbols[0].Type != "MyLib.MyStruct" || err.Symbols[0].Member != "get_name" {
			t.Errorf("symbol = %+v", err.Symbols[0])
		}
	})

	t.Run("grouped by type", func(t *testing.T) {
		err := NewMissingSymbolsError([]string{
			"MyLib.A#x",
			"MyLib.B#y",
			"MyLib.A#w",
		})
		msg := err.Error()
		if !strings.Contains(msg, "missing 3") {
			t.Errorf("error should contain count: %s", msg)
		}
		if strings.Index(msg, "- w") > strings.Index(msg, "- x") {
			t.Errorf("members should be sorted within a type: %s", msg)
		}
		if !strings.Contains(msg, "MyLib.B:") {
			t.Errorf("error should contain second type: %s", msg)
		}
	})

	t.Run("empty", func(t *testing.T) {
		err := NewMissingSymbolsError(nil)
		if !strings.Contains(err.Error(), "no symbols specified") {
			t.Errorf("unexpected message: %s", err.Error())
		}
	})

	t.Run("errors.Is", func(t *testing.T) {
		err := NewMissingSymbolsError([]string{"T#m"})
		if !errors.Is(err, &MissingSymbolsError{}) {
			t.Error("errors.Is should match MissingSymbolsError")
		}
		if !errors.Is(err, &Error{Phase: PhaseLookup, Kind: KindNotFound}) {
			t.Error("errors.Is should match lookup not_found")
		}
		if !IsKind(err, KindNotFound) {
			t.Error("IsKind should report not_found")
		}
	})
}
