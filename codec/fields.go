package codec

import (
	"encoding/binary"
	"fmt"
)

// Fields decodes a sequence of fixed-width little-endian unsigned fields from
// a byte slice. The decoder is error-sticky: after the first out-of-bounds
// access every further accessor returns zero and Err reports the failure, so
// call sites can decode a whole header and check once.
type Fields struct {
	buf []byte
	off int
	err error
}

// NewFields returns a decoder over buf, positioned at the first byte.
func NewFields(buf []byte) *Fields {
	return &Fields{buf: buf}
}

// ensure checks that n more bytes are available.
func (f *Fields) ensure(n int) bool {
	if f.err != nil {
		return false
	}
	if f.off+n > len(f.buf) {
		f.err = fmt.Errorf("field at offset %d: need %d bytes, have %d", f.off, n, len(f.buf)-f.off)
		return false
	}
	return true
}

// Uint8 decodes one byte.
func (f *Fields) Uint8() uint8 {
	if !f.ensure(1) {
		return 0
	}
	v := f.buf[f.off]
	f.off++
	return v
}

// Uint16 decodes a little-endian 16-bit field.
func (f *Fields) Uint16() uint16 {
	if !f.ensure(2) {
		return 0
	}
	v := binary.LittleEndian.Uint16(f.buf[f.off:])
	f.off += 2
	return v
}

// Uint32 decodes a little-endian 32-bit field.
func (f *Fields) Uint32() uint32 {
	if !f.ensure(4) {
		return 0
	}
	v := binary.LittleEndian.Uint32(f.buf[f.off:])
	f.off += 4
	return v
}

// Uint64 decodes a little-endian 64-bit field.
func (f *Fields) Uint64() uint64 {
	if !f.ensure(8) {
		return 0
	}
	v := binary.LittleEndian.Uint64(f.buf[f.off:])
	f.off += 8
	return v
}

// Vint decodes a variable-length integer as used by RAR 5.0 headers: seven
// value bits per byte, high bit set on all but the last byte.
func (f *Fields) Vint() uint64 {
	var v uint64
	for shift := 0; shift < 64; shift += 7 {
		if !f.ensure(1) {
			return 0
		}
		b := f.buf[f.off]
		f.off++
		v |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return v
		}
	}
	f.err = fmt.Errorf("vint at offset %d: does not terminate", f.off)
	return 0
}

// Bytes returns the next n bytes without copying.
func (f *Fields) Bytes(n int) []byte {
	if n < 0 || !f.ensure(n) {
		return nil
	}
	v := f.buf[f.off : f.off+n]
	f.off += n
	return v
}

// Skip advances past n bytes.
func (f *Fields) Skip(n int) {
	if n < 0 {
		return
	}
	if f.ensure(n) {
		f.off += n
	}
}

// Offset returns the current decode position.
func (f *Fields) Offset() int {
	return f.off
}

// Remaining returns the number of undecoded bytes.
func (f *Fields) Remaining() int {
	if f.err != nil {
		return 0
	}
	return len(f.buf) - f.off
}

// Err returns the first decode failure, or nil.
func (f *Fields) Err() error {
	return f.err
}
