package wasm_test

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/wippyai/hook-guard/wasm"
)

func TestLEB128Unsigned(t *testing.T) {
	tests := []struct {
		encoded []byte
		value   uint64
	}{
		{[]byte{0x00}, 0},
		{[]byte{0x01}, 1},
		{[]byte{0x7f}, 127},
		{[]byte{0x80, 0x01}, 128},
		{[]byte{0xff, 0x01}, 255},
		{[]byte{0x80, 0x02}, 256},
		{[]byte{0xff, 0x7f}, 16383},
		{[]byte{0x80, 0x80, 0x01}, 16384},
		{[]byte{0xe5, 0x8e, 0x26}, 624485},
		{[]byte{0xff, 0xff, 0xff, 0xff, 0x0f}, 0xFFFFFFFF},
		{[]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01}, math.MaxUint64},
	}

	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			enc := wasm.AppendUvarint(nil, tt.value)
			if !bytes.Equal(enc, tt.encoded) {
				t.Errorf("encode %d: got %v, want %v", tt.value, enc, tt.encoded)
			}

			got, next, err := wasm.ReadUvarint(tt.encoded, 0)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got != tt.value {
				t.Errorf("decode: got %d, want %d", got, tt.value)
			}
			if next != len(tt.encoded) {
				t.Errorf("offset: got %d, want %d", next, len(tt.encoded))
			}
		})
	}
}

func TestLEB128Signed(t *testing.T) {
	tests := []struct {
		encoded []byte
		value   int64
	}{
		{[]byte{0x00}, 0},
		{[]byte{0x01}, 1},
		{[]byte{0x7f}, -1},
		{[]byte{0x3f}, 63},
		{[]byte{0xc0, 0x00}, 64},
		{[]byte{0x40}, -64},
		{[]byte{0xbf, 0x7f}, -65},
		{[]byte{0xff, 0x00}, 127},
		{[]byte{0x80, 0x7f}, -128},
		{[]byte{0x80, 0x01}, 128},
		{[]byte{0xff, 0x7e}, -129},
		{[]byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x7f}, math.MinInt64},
		{[]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x00}, math.MaxInt64},
	}

	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			enc := wasm.AppendSvarint(nil, tt.value)
			if !bytes.Equal(enc, tt.encoded) {
				t.Errorf("encode %d: got %v, want %v", tt.value, enc, tt.encoded)
			}

			got, next, err := wasm.ReadSvarint(tt.encoded, 0)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got != tt.value {
				t.Errorf("decode: got %d, want %d", got, tt.value)
			}
			if next != len(tt.encoded) {
				t.Errorf("offset: got %d, want %d", next, len(tt.encoded))
			}
		})
	}
}

func TestLEB128Errors(t *testing.T) {
	tests := []struct {
		name    string
		encoded []byte
		want    error
	}{
		{"empty", nil, wasm.ErrTruncated},
		{"dangling continuation", []byte{0x80}, wasm.ErrTruncated},
		{"long dangling", []byte{0xff, 0xff, 0xff}, wasm.ErrTruncated},
		{"eleven bytes", []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x00}, wasm.ErrOverflow},
		{"bit 64 set", []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x02}, wasm.ErrOverflow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := wasm.ReadUvarint(tt.encoded, 0); !errors.Is(err, tt.want) {
				t.Errorf("unsigned: got %v, want %v", err, tt.want)
			}
			if _, _, err := wasm.ReadSvarint(tt.encoded, 0); !errors.Is(err, tt.want) {
				t.Errorf("signed: got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLEB128Offset(t *testing.T) {
	buf := []byte{0xaa, 0xe5, 0x8e, 0x26, 0x7f}

	v, next, err := wasm.ReadUvarint(buf, 1)
	if err != nil {
		t.Fatal(err)
	}
	if v != 624485 || next != 4 {
		t.Errorf("got (%d, %d), want (624485, 4)", v, next)
	}

	s, next, err := wasm.ReadSvarint(buf, next)
	if err != nil {
		t.Fatal(err)
	}
	if s != -1 || next != 5 {
		t.Errorf("got (%d, %d), want (-1, 5)", s, next)
	}

	if _, _, err := wasm.ReadUvarint(buf, len(buf)); !errors.Is(err, wasm.ErrTruncated) {
		t.Errorf("read at end: got %v", err)
	}
}

func TestLEB128RoundTripProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("unsigned decode inverts encode", prop.ForAll(
		func(v uint64) bool {
			enc := wasm.AppendUvarint(nil, v)
			got, next, err := wasm.ReadUvarint(enc, 0)
			return err == nil && got == v && next == len(enc)
		},
		gen.UInt64(),
	))

	properties.Property("signed decode inverts encode", prop.ForAll(
		func(v int64) bool {
			enc := wasm.AppendSvarint(nil, v)
			got, next, err := wasm.ReadSvarint(enc, 0)
			return err == nil && got == v && next == len(enc)
		},
		gen.Int64(),
	))

	properties.Property("every proper prefix is truncated", prop.ForAll(
		func(v uint64) bool {
			enc := wasm.AppendUvarint(nil, v)
			for i := 0; i < len(enc); i++ {
				if _, _, err := wasm.ReadUvarint(enc[:i], 0); !errors.Is(err, wasm.ErrTruncated) {
					return false
				}
			}
			return true
		},
		gen.UInt64(),
	))

	properties.TestingRun(t)
}
