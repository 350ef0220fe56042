package guard

import (
	"github.com/wippyai/hook-guard/wasm"
)

// Helpers for assembling test modules byte by byte.

func uv(v uint64) []byte { return wasm.AppendUvarint(nil, v) }

func sv(v int64) []byte { return wasm.AppendSvarint(nil, v) }

func cat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func vec(items ...[]byte) []byte {
	return cat(uv(uint64(len(items))), cat(items...))
}

func name(s string) []byte {
	return cat(uv(uint64(len(s))), []byte(s))
}

func section(id byte, payload []byte) []byte {
	return cat([]byte{id}, uv(uint64(len(payload))), payload)
}

func funcType(params []wasm.ValType, results []wasm.ValType) []byte {
	out := []byte{wasm.FuncTypeByte}
	out = append(out, uv(uint64(len(params)))...)
	for _, p := range params {
		out = append(out, byte(p))
	}
	out = append(out, uv(uint64(len(results)))...)
	for _, r := range results {
		out = append(out, byte(r))
	}
	return out
}

func importFunc(module, field string, typeIdx uint32) []byte {
	return cat(name(module), name(field), []byte{wasm.KindFunc}, uv(uint64(typeIdx)))
}

func export(n string, kind byte, idx uint32) []byte {
	return cat(name(n), []byte{kind}, uv(uint64(idx)))
}

// codeEntry frames a function body with one i32 local.
func codeEntry(instrs ...[]byte) []byte {
	return rawEntry(cat(vec(cat(uv(1), []byte{byte(wasm.ValI32)})), cat(instrs...)))
}

func rawEntry(content []byte) []byte {
	return cat(uv(uint64(len(content))), content)
}

func op(b ...byte) []byte { return b }

func i32c(v int64) []byte { return cat(op(wasm.OpI32Const), sv(v)) }

func i64c(v int64) []byte { return cat(op(wasm.OpI64Const), sv(v)) }

func call(idx uint64) []byte { return cat(op(wasm.OpCall), uv(idx)) }

// loop opens a void loop with the guard idiom for the given bound.
func loop(bound int64, guardIdx uint64) []byte {
	return cat(op(wasm.OpLoop, wasm.BlockVoid), i32c(1), i32c(bound), call(guardIdx))
}

var end = op(wasm.OpEnd)

var (
	hookSig  = funcType([]wasm.ValType{wasm.ValI32}, []wasm.ValType{wasm.ValI64})
	guardSig = funcType([]wasm.ValType{wasm.ValI32, wasm.ValI32}, []wasm.ValType{wasm.ValI32})
)

// testModule describes a hook module section by section. A nil slice
// omits the section.
type testModule struct {
	types   [][]byte
	imports [][]byte
	funcs   []uint32
	exports [][]byte
	bodies  [][]byte
	extra   [][]byte // raw sections appended after code
}

// newHook returns a module importing env._g as function 0 and exporting a
// single hook function (index 1) with the given instructions as its body.
func newHook(instrs ...[]byte) *testModule {
	return &testModule{
		types:   [][]byte{hookSig, guardSig},
		imports: [][]byte{importFunc("env", GuardFunc, 1)},
		funcs:   []uint32{0},
		exports: [][]byte{export(HookExport, wasm.KindFunc, 1)},
		bodies:  [][]byte{codeEntry(instrs...)},
	}
}

func (m *testModule) bytes() []byte {
	out := append([]byte{}, wasm.Header[:]...)
	if m.types != nil {
		out = append(out, section(wasm.SectionType, vec(m.types...))...)
	}
	if m.imports != nil {
		out = append(out, section(wasm.SectionImport, vec(m.imports...))...)
	}
	if m.funcs != nil {
		var idx [][]byte
		for _, f := range m.funcs {
			idx = append(idx, uv(uint64(f)))
		}
		out = append(out, section(wasm.SectionFunction, vec(idx...))...)
	}
	if m.exports != nil {
		out = append(out, section(wasm.SectionExport, vec(m.exports...))...)
	}
	if m.bodies != nil {
		out = append(out, section(wasm.SectionCode, vec(m.bodies...))...)
	}
	for _, s := range m.extra {
		out = append(out, s...)
	}
	return out
}

// Bodies shared across tests.
var (
	// i32.const 0; i64.const 0; return
	simpleBody = [][]byte{i32c(0), i64c(0), op(wasm.OpReturn), end}

	// loop with bound 10 around drop; nop, then i64.const 0
	loopBody = [][]byte{loop(10, 0), op(wasm.OpDrop), op(wasm.OpNop), end, i64c(0), end}
)
