// Package errors provides the structured rejection error of the hook verifier.
//
// Errors are categorized by Phase (which part of the module was being read)
// and Kind (truncated, malformed, policy or limit). Each error also carries a
// stable numeric Code from a closed taxonomy; the code is what gets written to
// the diagnostic log.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseGuard, errors.KindPolicy).
//		Code(errors.CodeCallIndirect).
//		At(offset).
//		Func(3).
//		Detail("call_indirect is not permitted").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Truncated(errors.PhaseImport, offset, "import name")
//	err := errors.Limit(errors.PhaseGuard, errors.CodeInstructionExcess, wce, max)
//
// All errors implement the standard error interface and support errors.Is/As.
// HasCode is the shortest way to test for one code.
package errors
