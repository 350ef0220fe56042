// Package guard statically verifies hook modules before they are admitted
// for execution.
//
// A hook is a WebAssembly module that may only import functions from the
// host API whitelist under module "env", must import the guard function
// "_g", and must export "hook" (and optionally "cbak") with type
// (i32) -> i64. Every loop must begin with the guard idiom
//
//	i32.const <id>
//	i32.const <max iterations>
//	call $_g
//
// which lets the verifier bound the loop. Calls may only target imports,
// and call_indirect and memory.grow are refused outright.
//
// Validate returns, per entry point, a worst-case instruction count derived
// from the nesting of guarded loops:
//
//	res, err := guard.Validate(code, true, guard.NewZapSink(logger))
//	if err != nil {
//	    // rejected; errors.CodeOf(err) names the reason
//	}
//	fee := price(res.Hook)
//
// The input is treated as hostile. All reads are bounds checked, malformed
// integers are reported rather than panicking, and every section walk is
// guaranteed to advance.
package guard
