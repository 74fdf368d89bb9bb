package per

import (
	"errors"
	"fmt"
)

var (
	ErrCapacityExceeded = errors.New("per: buffer capacity exceeded")
	ErrValueOutOfRange  = errors.New("per: value out of range")
	ErrInvalidWidth     = errors.New("per: invalid bit width")
	ErrInsufficientBits = errors.New("per: insufficient bits")
	ErrLengthTooLarge   = errors.New("per: length determinant too large")
)

// BitWriter appends MSB-first bit fields with no alignment between them.
// A positive capacity (in bytes) bounds the total output.
type BitWriter struct {
	buf      []byte
	nbits    int
	capacity int
}

func NewBitWriter(capacity int) *BitWriter {
	w := &BitWriter{capacity: capacity}
	if capacity > 0 {
		w.buf = make([]byte, 0, capacity)
	}
	return w
}

// WriteBits appends the low n bits of v, most significant first.
func (w *BitWriter) WriteBits(v uint64, n int) error {
	if n < 0 || n > 64 {
		return fmt.Errorf("%w: %d", ErrInvalidWidth, n)
	}
	if n < 64 && v>>uint(n) != 0 {
		return fmt.Errorf("%w: %d does not fit in %d bits", ErrValueOutOfRange, v, n)
	}
	if w.capacity > 0 && w.nbits+n > w.capacity*8 {
		return fmt.Errorf("%w: need %d bits, have %d", ErrCapacityExceeded, w.nbits+n, w.capacity*8)
	}
	for i := n - 1; i >= 0; i-- {
		if w.nbits%8 == 0 {
			w.buf = append(w.buf, 0)
		}
		if (v>>uint(i))&1 == 1 {
			w.buf[w.nbits/8] |= 0x80 >> uint(w.nbits%8)
		}
		w.nbits++
	}
	return nil
}

func (w *BitWriter) WriteBit(b bool) error {
	if b {
		return w.WriteBits(1, 1)
	}
	return w.WriteBits(0, 1)
}

// Len returns the number of bits written.
func (w *BitWriter) Len() int {
	return w.nbits
}

// Bytes returns a copy of the output; trailing bits of the last octet are zero.
func (w *BitWriter) Bytes() []byte {
	out := make([]byte, len(w.buf))
	copy(out, w.buf)
	return out
}
