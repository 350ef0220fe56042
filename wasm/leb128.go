package wasm

import (
	"errors"
)

// LEB128 decoding over a byte slice. The decoders never read past len(buf),
// so callers bound a read by slicing buf to the end of the enclosing region.

var (
	// ErrOverflow is returned when a LEB128 value does not fit in 64 bits.
	ErrOverflow = errors.New("leb128: overflow")

	// ErrTruncated is returned when the buffer ends inside a LEB128 value.
	ErrTruncated = errors.New("leb128: truncated")
)

// maxVarintLen is the longest valid encoding of a 64-bit value.
const maxVarintLen = 10

// ReadUvarint decodes an unsigned LEB128 value starting at buf[off].
// It returns the value and the offset of the first byte after it.
func ReadUvarint(buf []byte, off int) (uint64, int, error) {
	var result uint64
	var shift uint
	for n := 0; ; n++ {
		if off >= len(buf) || off < 0 {
			return 0, off, ErrTruncated
		}
		b := buf[off]
		off++
		group := uint64(b & 0x7f)
		if n == maxVarintLen-1 {
			// Tenth byte holds bit 63 only and must terminate.
			if group > 1 || b&0x80 != 0 {
				return 0, off, ErrOverflow
			}
		}
		result |= group << shift
		if b&0x80 == 0 {
			return result, off, nil
		}
		shift += 7
	}
}

// ReadSvarint decodes a signed LEB128 value starting at buf[off].
// It returns the value and the offset of the first byte after it.
func ReadSvarint(buf []byte, off int) (int64, int, error) {
	var result int64
	var shift uint
	var b byte
	for n := 0; ; n++ {
		if off >= len(buf) || off < 0 {
			return 0, off, ErrTruncated
		}
		b = buf[off]
		off++
		if n == maxVarintLen-1 {
			// Tenth byte carries bit 63 plus sign padding: 0x00 or 0x7f.
			if b != 0x00 && b != 0x7f {
				return 0, off, ErrOverflow
			}
		}
		result |= int64(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			break
		}
	}
	// Sign extend
	if shift < 64 && b&0x40 != 0 {
		result |= ^int64(0) << shift
	}
	return result, off, nil
}

// AppendUvarint appends the unsigned LEB128 encoding of v to dst.
func AppendUvarint(dst []byte, v uint64) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		dst = append(dst, b)
		if v == 0 {
			return dst
		}
	}
}

// AppendSvarint appends the signed LEB128 encoding of v to dst.
func AppendSvarint(dst []byte, v int64) []byte {
	more := true
	for more {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			more = false
		} else {
			b |= 0x80
		}
		dst = append(dst, b)
	}
	return dst
}
