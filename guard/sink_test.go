package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wippyai/hook-guard/errors"
	"github.com/wippyai/hook-guard/wasm"
)

func TestZapSinkReportsRejection(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	sink := NewZapSink(zap.New(core))

	_, err := Validate(newHook(op(wasm.OpMemoryGrow, 0), end).bytes(), true, sink)
	require.Error(t, err)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, err.Error(), entries[0].Message)

	fields := entries[0].ContextMap()
	assert.Equal(t, uint16(errors.CodeMemoryGrow), fields["code"])
	assert.Equal(t, errors.CodeMemoryGrow.String(), fields["code_name"])
}

func TestSinkSilentOnAccept(t *testing.T) {
	var calls int
	sink := SinkFunc(func(errors.Code, string) { calls++ })

	_, err := Validate(newHook(loopBody...).bytes(), true, sink)
	require.NoError(t, err)
	assert.Zero(t, calls)
}

func TestSinkDoesNotAffectVerdict(t *testing.T) {
	module := newHook(op(wasm.OpCallIndirect), end).bytes()

	var got []errors.Code
	_, withSink := Validate(module, true, SinkFunc(func(code errors.Code, _ string) {
		got = append(got, code)
	}))
	_, withoutSink := Validate(module, true, nil)

	assert.Equal(t, []errors.Code{errors.CodeCallIndirect}, got)
	assert.Equal(t, errors.CodeOf(withSink), errors.CodeOf(withoutSink))
}

func TestNewZapSinkNilLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		NewZapSink(nil).Log(errors.CodeShortHook, "discarded")
	})
}

func TestPackageLoggerTracesSections(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	prev := Logger()
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(prev) })

	_, err := Validate(newHook(simpleBody...).bytes(), true, nil)
	require.NoError(t, err)

	assert.NotZero(t, logs.FilterMessage("section").Len())
	assert.Equal(t, 1, logs.FilterMessage("function verified").Len())
	assert.Equal(t, 1, logs.FilterMessage("hook accepted").Len())
}
