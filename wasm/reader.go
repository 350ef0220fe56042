package wasm

import (
	"encoding/binary"
	"fmt"
)

// Reader is a cursor over an immutable module buffer, confined to a
// [start, end) window. Every read checks the remaining length first, so a
// Reader never indexes outside its window regardless of input.
type Reader struct {
	buf []byte
	pos int
}

// NewReader returns a Reader positioned at start that may read up to end.
// The window is clamped to the buffer.
func NewReader(buf []byte, start, end int) *Reader {
	if end > len(buf) {
		end = len(buf)
	}
	if start > end {
		start = end
	}
	if start < 0 {
		start = 0
	}
	return &Reader{buf: buf[:end], pos: start}
}

// Position returns the current absolute byte offset.
func (r *Reader) Position() int {
	return r.pos
}

// End returns the absolute offset one past the last readable byte.
func (r *Reader) End() int {
	return len(r.buf)
}

// Len returns the number of unread bytes in the window.
func (r *Reader) Len() int {
	return len(r.buf) - r.pos
}

// Seek moves the cursor to an absolute offset inside the window.
func (r *Reader) Seek(pos int) error {
	if pos < 0 || pos > len(r.buf) {
		return r.wrapError(ErrTruncated)
	}
	r.pos = pos
	return nil
}

// Sub returns a Reader over the next n bytes and advances past them.
func (r *Reader) Sub(n uint64) (*Reader, error) {
	if err := r.Require(n); err != nil {
		return nil, err
	}
	start := r.pos
	r.pos += int(n)
	return &Reader{buf: r.buf[:r.pos], pos: start}, nil
}

// Require fails with ErrTruncated unless at least n bytes remain.
func (r *Reader) Require(n uint64) error {
	if uint64(r.Len()) < n {
		return r.wrapError(ErrTruncated)
	}
	return nil
}

// PeekByte returns the next byte without consuming it.
func (r *Reader) PeekByte() (byte, error) {
	if err := r.Require(1); err != nil {
		return 0, err
	}
	return r.buf[r.pos], nil
}

// ReadByte reads a single byte and advances the position.
func (r *Reader) ReadByte() (byte, error) {
	if err := r.Require(1); err != nil {
		return 0, err
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

// Skip advances past n bytes.
func (r *Reader) Skip(n uint64) error {
	if err := r.Require(n); err != nil {
		return err
	}
	r.pos += int(n)
	return nil
}

// ReadBytes returns the next n bytes without copying.
func (r *Reader) ReadBytes(n uint64) ([]byte, error) {
	if err := r.Require(n); err != nil {
		return nil, err
	}
	b := r.buf[r.pos : r.pos+int(n)]
	r.pos += int(n)
	return b, nil
}

// ReadU32LE reads a little-endian uint32 (fixed 4 bytes).
func (r *Reader) ReadU32LE() (uint32, error) {
	b, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadUvarint reads an unsigned LEB128 value.
func (r *Reader) ReadUvarint() (uint64, error) {
	if err := r.Require(1); err != nil {
		return 0, err
	}
	v, next, err := ReadUvarint(r.buf, r.pos)
	if err != nil {
		return 0, r.wrapError(err)
	}
	r.pos = next
	return v, nil
}

// ReadU32 reads an unsigned LEB128 value that must fit in 32 bits.
func (r *Reader) ReadU32() (uint32, error) {
	v, err := r.ReadUvarint()
	if err != nil {
		return 0, err
	}
	if v > 0xFFFFFFFF {
		return 0, r.wrapError(ErrOverflow)
	}
	return uint32(v), nil
}

// ReadSvarint reads a signed LEB128 value.
func (r *Reader) ReadSvarint() (int64, error) {
	if err := r.Require(1); err != nil {
		return 0, err
	}
	v, next, err := ReadSvarint(r.buf, r.pos)
	if err != nil {
		return 0, r.wrapError(err)
	}
	r.pos = next
	return v, nil
}

// ReadName reads a length-prefixed byte string. Names are compared
// byte-wise and are not required to be valid UTF-8.
func (r *Reader) ReadName() (string, error) {
	length, err := r.ReadUvarint()
	if err != nil {
		return "", err
	}
	b, err := r.ReadBytes(length)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *Reader) wrapError(err error) error {
	return &ParseError{Position: r.pos, Err: err}
}

// ParseError represents a decoding failure with position information.
type ParseError struct {
	Err      error
	Position int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("wasm: at position %d: %v", e.Position, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
