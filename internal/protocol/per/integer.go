package per

import (
	"fmt"
	"math/bits"
)

// ConstrainedWidth is the X.691 unaligned bit-field width for a whole
// number constrained to [lb, ub]: ceil(log2(ub-lb+1)), zero for a single value.
func ConstrainedWidth(lb, ub int64) int {
	if ub <= lb {
		return 0
	}
	return bits.Len64(uint64(ub - lb))
}

// WriteConstrainedInt encodes v as the offset v-lb in ConstrainedWidth(lb, ub) bits.
func WriteConstrainedInt(w *BitWriter, v, lb, ub int64) error {
	if lb > ub {
		return fmt.Errorf("%w: empty range [%d,%d]", ErrValueOutOfRange, lb, ub)
	}
	if v < lb || v > ub {
		return fmt.Errorf("%w: %d not in [%d,%d]", ErrValueOutOfRange, v, lb, ub)
	}
	return w.WriteBits(uint64(v-lb), ConstrainedWidth(lb, ub))
}

func ReadConstrainedInt(r *BitReader, lb, ub int64) (int64, error) {
	if lb > ub {
		return 0, fmt.Errorf("%w: empty range [%d,%d]", ErrValueOutOfRange, lb, ub)
	}
	off, err := r.ReadBits(ConstrainedWidth(lb, ub))
	if err != nil {
		return 0, err
	}
	v := lb + int64(off)
	if v > ub {
		return 0, fmt.Errorf("%w: %d not in [%d,%d]", ErrValueOutOfRange, v, lb, ub)
	}
	return v, nil
}

// WriteChoiceIndex encodes the index of the chosen alternative among n
// root alternatives. A single alternative costs no bits.
func WriteChoiceIndex(w *BitWriter, idx, n int) error {
	if n < 1 {
		return fmt.Errorf("%w: choice with %d alternatives", ErrValueOutOfRange, n)
	}
	return WriteConstrainedInt(w, int64(idx), 0, int64(n-1))
}

func ReadChoiceIndex(r *BitReader, n int) (int, error) {
	if n < 1 {
		return 0, fmt.Errorf("%w: choice with %d alternatives", ErrValueOutOfRange, n)
	}
	v, err := ReadConstrainedInt(r, 0, int64(n-1))
	return int(v), err
}

// WriteLengthDeterminant encodes an unconstrained count: one octet below
// 128, two octets (10 prefix) below 16384. Fragmented lengths are not
// supported.
func WriteLengthDeterminant(w *BitWriter, n int) error {
	switch {
	case n < 0:
		return fmt.Errorf("%w: negative length %d", ErrValueOutOfRange, n)
	case n < 128:
		return w.WriteBits(uint64(n), 8)
	case n < 16384:
		return w.WriteBits(0x8000|uint64(n), 16)
	default:
		return fmt.Errorf("%w: %d", ErrLengthTooLarge, n)
	}
}

func ReadLengthDeterminant(r *BitReader) (int, error) {
	first, err := r.ReadBits(8)
	if err != nil {
		return 0, err
	}
	switch {
	case first&0x80 == 0:
		return int(first), nil
	case first&0xC0 == 0x80:
		second, err := r.ReadBits(8)
		if err != nil {
			return 0, err
		}
		return int(first&0x3F)<<8 | int(second), nil
	default:
		return 0, fmt.Errorf("%w: fragmented length", ErrLengthTooLarge)
	}
}

// WriteSize encodes a SEQUENCE OF element count against SIZE (lb..ub).
// ub < 0 declares no upper bound and falls back to a length determinant.
func WriteSize(w *BitWriter, count, lb, ub int) error {
	if ub < 0 {
		if count < lb {
			return fmt.Errorf("%w: size %d below %d", ErrValueOutOfRange, count, lb)
		}
		return WriteLengthDeterminant(w, count)
	}
	if count < lb || count > ub {
		return fmt.Errorf("%w: size %d not in [%d,%d]", ErrValueOutOfRange, count, lb, ub)
	}
	return WriteConstrainedInt(w, int64(count), int64(lb), int64(ub))
}

func ReadSize(r *BitReader, lb, ub int) (int, error) {
	if ub < 0 {
		n, err := ReadLengthDeterminant(r)
		if err != nil {
			return 0, err
		}
		if n < lb {
			return 0, fmt.Errorf("%w: size %d below %d", ErrValueOutOfRange, n, lb)
		}
		return n, nil
	}
	v, err := ReadConstrainedInt(r, int64(lb), int64(ub))
	return int(v), err
}
