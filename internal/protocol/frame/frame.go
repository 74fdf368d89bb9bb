package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const HeaderLen = 4

const (
	StageHeader  = "header"
	StagePayload = "payload"
)

// maxStalledWrites bounds consecutive zero-progress writes before giving up.
const maxStalledWrites = 8

var (
	ErrShortHeader     = errors.New("frame: short length header")
	ErrPayloadTooLarge = errors.New("frame: payload too large")
)

// TransportError reports which part of a frame could not be written.
type TransportError struct {
	Stage string
	Err   error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("frame: write %s: %v", e.Stage, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Limits constrains frame encode/decode memory use.
type Limits struct {
	MaxPayloadBytes uint32
}

func DefaultLimits() Limits {
	return Limits{MaxPayloadBytes: 8192}
}

// WriteFrame writes len(payload) as a big-endian uint32 followed by payload.
// Partial writes are resumed until every byte is out or w fails.
func WriteFrame(w io.Writer, payload []byte, limits Limits) (int, error) {
	if uint64(len(payload)) > uint64(limits.MaxPayloadBytes) {
		return 0, fmt.Errorf("%w: %d > %d", ErrPayloadTooLarge, len(payload), limits.MaxPayloadBytes)
	}
	written, err := writeFull(w, EncodeHeader(uint32(len(payload))))
	if err != nil {
		return written, &TransportError{Stage: StageHeader, Err: err}
	}
	n, err := writeFull(w, payload)
	written += n
	if err != nil {
		return written, &TransportError{Stage: StagePayload, Err: err}
	}
	return written, nil
}

func writeFull(w io.Writer, b []byte) (int, error) {
	total := 0
	stalled := 0
	for len(b) > 0 {
		n, err := w.Write(b)
		if n < 0 || n > len(b) {
			return total, io.ErrShortWrite
		}
		total += n
		b = b[n:]
		if err != nil && !(errors.Is(err, io.ErrShortWrite) && n > 0) {
			return total, err
		}
		if n == 0 {
			stalled++
			if stalled >= maxStalledWrites {
				return total, io.ErrNoProgress
			}
			continue
		}
		stalled = 0
	}
	return total, nil
}

// ReadFrame reads one length-prefixed payload.
func ReadFrame(r io.Reader, limits Limits) ([]byte, error) {
	var head [HeaderLen]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrShortHeader
		}
		return nil, err
	}
	n, err := DecodeHeader(head[:])
	if err != nil {
		return nil, err
	}
	if n > limits.MaxPayloadBytes {
		return nil, fmt.Errorf("%w: %d > %d", ErrPayloadTooLarge, n, limits.MaxPayloadBytes)
	}
	payload := make([]byte, n)
	if n > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, err
		}
	}
	return payload, nil
}

func EncodeHeader(n uint32) []byte {
	buf := make([]byte, HeaderLen)
	binary.BigEndian.PutUint32(buf, n)
	return buf
}

func DecodeHeader(b []byte) (uint32, error) {
	if len(b) != HeaderLen {
		return 0, fmt.Errorf("frame: invalid length header size: %d", len(b))
	}
	return binary.BigEndian.Uint32(b), nil
}
