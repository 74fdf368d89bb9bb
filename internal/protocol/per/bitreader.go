package per

import "fmt"

// BitReader reads MSB-first bit fields written by BitWriter.
type BitReader struct {
	data   []byte
	offset int
}

func NewBitReader(data []byte) *BitReader {
	return &BitReader{data: data}
}

// Remaining returns the number of unread bits, padding included.
func (r *BitReader) Remaining() int {
	return len(r.data)*8 - r.offset
}

// Offset returns the number of bits consumed.
func (r *BitReader) Offset() int {
	return r.offset
}

func (r *BitReader) ReadBits(n int) (uint64, error) {
	if n < 0 || n > 64 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidWidth, n)
	}
	if n > r.Remaining() {
		return 0, fmt.Errorf("%w: want %d, have %d", ErrInsufficientBits, n, r.Remaining())
	}
	var v uint64
	for i := 0; i < n; i++ {
		b := r.data[r.offset/8] >> uint(7-r.offset%8) & 1
		v = v<<1 | uint64(b)
		r.offset++
	}
	return v, nil
}

func (r *BitReader) ReadBit() (bool, error) {
	v, err := r.ReadBits(1)
	return v == 1, err
}
