package guard

import (
	"go.uber.org/zap"

	"github.com/wippyai/hook-guard/errors"
)

// Sink receives tagged diagnostic lines. Diagnostics are advisory: nothing
// a sink does can change a verdict.
type Sink interface {
	Log(code errors.Code, msg string)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(code errors.Code, msg string)

// Log calls f(code, msg).
func (f SinkFunc) Log(code errors.Code, msg string) {
	f(code, msg)
}

// ZapSink writes diagnostics to a zap logger at warn level.
type ZapSink struct {
	l *zap.Logger
}

// NewZapSink returns a Sink backed by l. A nil logger discards everything.
func NewZapSink(l *zap.Logger) *ZapSink {
	if l == nil {
		l = zap.NewNop()
	}
	return &ZapSink{l: l}
}

// Log implements Sink.
func (s *ZapSink) Log(code errors.Code, msg string) {
	s.l.Warn(msg,
		zap.Uint16("code", uint16(code)),
		zap.Stringer("code_name", code),
	)
}

// report forwards a rejection to the sink, if any.
func report(sink Sink, err error) {
	if sink == nil || err == nil {
		return
	}
	sink.Log(errors.CodeOf(err), err.Error())
}
