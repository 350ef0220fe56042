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
		excludes []string
	}{
		{
			name: "full error",
			err: New(PhaseGuard, KindPolicy).
				Code(CodeCallIndirect).
				At(0x2a).
				Func(3).
				Detail("call_indirect is not permitted").
				Build(),
			contains: []string{"[guard]", "policy", "CALL_INDIRECT(30)", "func 3", "0x2a", "call_indirect is not permitted"},
		},
		{
			name:     "minimal error",
			err:      New(PhaseHeader, KindMalformed).Build(),
			contains: []string{"[header]", "malformed"},
			excludes: []string{"func", "offset"},
		},
		{
			name: "error with cause",
			err: New(PhaseSection, KindTruncated).
				Code(CodeShortHook).
				Cause(errors.New("underlying error")).
				Build(),
			contains: []string{"[section]", "truncated", "caused by", "underlying error"},
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
			for _, s := range tt.excludes {
				if strings.Contains(msg, s) {
					t.Errorf("error message %q should not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := New(PhaseImport, KindTruncated).Cause(cause).Build()

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should see the cause")
	}
}

func TestError_Is(t *testing.T) {
	err := Policy(PhaseImport, CodeImportIllegal, 10, "import %q", "exec")

	if !err.Is(&Error{Phase: PhaseImport, Kind: KindPolicy}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseExport, Kind: KindPolicy}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseImport, Kind: KindMalformed}) {
		t.Error("Is should not match different kind")
	}
	if !errors.Is(err, &Error{Code: CodeImportIllegal}) {
		t.Error("errors.Is should match on code")
	}
	if errors.Is(err, &Error{Code: CodeImportModuleEnv}) {
		t.Error("errors.Is should not match a different code")
	}
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("validate: %w", Limit(PhaseGuard, CodeInstructionExcess, 70000, 65535))

	if !HasCode(err, CodeInstructionExcess) {
		t.Error("HasCode should see through wrapping")
	}
	if HasCode(err, CodeShortHook) {
		t.Error("HasCode matched the wrong code")
	}
	if HasCode(errors.New("plain"), CodeShortHook) {
		t.Error("HasCode matched a plain error")
	}
	if got := CodeOf(err); got != CodeInstructionExcess {
		t.Errorf("CodeOf = %v", got)
	}
	if got := CodeOf(nil); got != 0 {
		t.Errorf("CodeOf(nil) = %v", got)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("Truncated", func(t *testing.T) {
		err := Truncated(PhaseCode, 17, "function body")
		if err.Kind != KindTruncated || err.Code != CodeShortHook {
			t.Errorf("Kind=%v Code=%v", err.Kind, err.Code)
		}
		if err.Offset != 17 || err.Func != NoFunc {
			t.Errorf("Offset=%d Func=%d", err.Offset, err.Func)
		}
	})

	t.Run("Malformed", func(t *testing.T) {
		err := Malformed(PhaseType, CodeTypeInvalid, 4, "form 0x%02x", 0x5f)
		if err.Kind != KindMalformed || err.Detail != "form 0x5f" {
			t.Errorf("Kind=%v Detail=%q", err.Kind, err.Detail)
		}
	})

	t.Run("Limit", func(t *testing.T) {
		err := Limit(PhaseGuard, CodeInstructionExcess, 70000, 65535)
		if err.Kind != KindLimit {
			t.Errorf("Kind = %v", err.Kind)
		}
		if !strings.Contains(err.Detail, "70000") {
			t.Errorf("Detail = %q", err.Detail)
		}
	})
}

func TestCodeTaxonomy(t *testing.T) {
	seen := make(map[string]bool)
	codes := Codes()
	for i, info := range codes {
		if i > 0 && codes[i-1].Code >= info.Code {
			t.Errorf("taxonomy not ordered at %s", info.Name)
		}
		if seen[info.Name] {
			t.Errorf("duplicate name %s", info.Name)
		}
		seen[info.Name] = true
		if info.Code.String() != info.Name {
			t.Errorf("String() = %s, want %s", info.Code.String(), info.Name)
		}
		if info.Code.Description() == "" {
			t.Errorf("%s has no description", info.Name)
		}
	}

	if got := Code(999).String(); got != "CODE_999" {
		t.Errorf("unknown code String() = %s", got)
	}
}
