package guard

import (
	"bytes"

	"go.uber.org/zap"

	"github.com/wippyai/hook-guard/errors"
	"github.com/wippyai/hook-guard/wasm"
)

// Result is the verdict for an accepted module: the worst-case instruction
// count of hook and of cbak (0 when cbak is not exported).
type Result struct {
	Hook uint64
	Cbak uint64
}

// Validate decides whether code is an admissible hook module. It returns the
// worst-case bounds on acceptance, or an *errors.Error describing the first
// violation found. The rejection is also written to sink, which may be nil.
//
// In strict mode every function type in the module must declare exactly one
// result. Validate does not retain code and is safe for concurrent use.
func Validate(code []byte, strict bool, sink Sink) (Result, error) {
	res, err := validate(code, strict)
	if err != nil {
		Logger().Debug("hook rejected", zap.Error(err))
		report(sink, err)
		return Result{}, err
	}
	Logger().Debug("hook accepted",
		zap.Uint64("hook_wce", res.Hook),
		zap.Uint64("cbak_wce", res.Cbak),
	)
	return res, nil
}

func validate(code []byte, strict bool) (Result, error) {
	if len(code) < wasm.HeaderSize {
		return Result{}, errors.Malformed(errors.PhaseHeader, errors.CodeWasmTooSmall, 0,
			"module is %d bytes, shorter than the wasm header", len(code))
	}
	if !bytes.Equal(code[:wasm.HeaderSize], wasm.Header[:]) {
		return Result{}, errors.Malformed(errors.PhaseHeader, errors.CodeWasmBadMagic, 0,
			"missing wasm magic or unsupported version")
	}

	m, err := scanMetadata(code)
	if err != nil {
		return Result{}, err
	}
	if err := m.resolve(); err != nil {
		return Result{}, err
	}

	b, err := scanBodies(code, m, strict)
	if err != nil {
		return Result{}, err
	}
	return Result{Hook: b.hook, Cbak: b.cbak}, nil
}
