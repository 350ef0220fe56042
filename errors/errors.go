package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Phase indicates where in verification the error occurred
type Phase string

const (
	PhaseHeader   Phase = "header"   // magic and version
	PhaseSection  Phase = "section"  // top-level section walk
	PhaseImport   Phase = "import"   // import section
	PhaseExport   Phase = "export"   // export section
	PhaseFunction Phase = "function" // function section and index resolution
	PhaseType     Phase = "type"     // type section
	PhaseCode     Phase = "code"     // code section framing and locals
	PhaseGuard    Phase = "guard"    // instruction stream of one function body
)

// Kind categorizes the error
type Kind string

const (
	KindTruncated Kind = "truncated" // input ended early
	KindMalformed Kind = "malformed" // input is not well-formed wasm
	KindPolicy    Kind = "policy"    // well-formed but not an admissible hook
	KindLimit     Kind = "limit"     // a computed bound is too large
)

// NoFunc marks an error that is not tied to a function body.
const NoFunc = -1

// Error is the rejection reason produced by the verifier.
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Offset int
	Func   int
	Code   Code
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Code != 0 {
		fmt.Fprintf(&b, " %s(%d)", e.Code, uint16(e.Code))
	}
	if e.Func != NoFunc {
		fmt.Fprintf(&b, " in func %d", e.Func)
	}
	if e.Offset >= 0 {
		fmt.Fprintf(&b, " at offset 0x%x", e.Offset)
	}

	if e.Detail != "" {
		b.WriteString(": ")
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

// Is reports whether target matches this error. A target carrying a code
// matches on the code alone; otherwise phase and kind must both match.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code != 0 {
		return e.Code == t.Code
	}
	return e.Phase == t.Phase && e.Kind == t.Kind
}

// HasCode reports whether err is, or wraps, an *Error with the given code.
func HasCode(err error, code Code) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Code == code
}

// CodeOf returns the log code of err, or 0 if err is not an *Error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return 0
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase:  phase,
			Kind:   kind,
			Offset: -1,
			Func:   NoFunc,
		},
	}
}

// Code sets the log code
func (b *Builder) Code(c Code) *Builder {
	b.err.Code = c
	return b
}

// At sets the byte offset into the module
func (b *Builder) At(offset int) *Builder {
	b.err.Offset = offset
	return b
}

// Func sets the module-defined function index
func (b *Builder) Func(idx int) *Builder {
	b.err.Func = idx
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

// Policy creates a policy violation error
func Policy(phase Phase, code Code, offset int, detail string, args ...any) *Error {
	return New(phase, KindPolicy).Code(code).At(offset).Detail(detail, args...).Build()
}

// Malformed creates a malformed binary error
func Malformed(phase Phase, code Code, offset int, detail string, args ...any) *Error {
	return New(phase, KindMalformed).Code(code).At(offset).Detail(detail, args...).Build()
}

// Truncated creates an error for input that ends before a declared length
func Truncated(phase Phase, offset int, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTruncated,
		Code:   CodeShortHook,
		Offset: offset,
		Func:   NoFunc,
		Detail: fmt.Sprintf("truncated while reading %s", what),
	}
}

// Limit creates a bound-exceeded error
func Limit(phase Phase, code Code, value, max uint64) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindLimit,
		Code:   code,
		Offset: -1,
		Func:   NoFunc,
		Detail: fmt.Sprintf("value %d exceeds limit %d", value, max),
	}
}
