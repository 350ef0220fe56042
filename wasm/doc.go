// Package wasm holds the WebAssembly binary-format primitives used by the
// hook verifier: section and opcode constants, a LEB128 codec and a
// bounds-checked Reader.
//
// The package does not build a module tree. Callers
// walk the raw bytes themselves and decide what to keep:
//
//	r := wasm.NewReader(data, 0, len(data))
//	id, err := r.ReadByte()
//	size, err := r.ReadUvarint()
//	body, err := r.Sub(size)
//
// Every Reader method checks the remaining window before touching the
// buffer, and the LEB128 decoders report ErrTruncated and ErrOverflow
// instead of panicking.
package wasm
