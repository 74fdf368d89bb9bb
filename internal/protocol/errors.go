package protocol

import (
	"errors"
	"fmt"
)

var (
	ErrNilMessage             = errors.New("protocol: nil message")
	ErrUnsupportedAlternative = errors.New("protocol: unsupported choice alternative")
	ErrInvalidSchema          = errors.New("protocol: invalid schema")
	ErrTrailingData           = errors.New("protocol: trailing data after message")
)

// EncodingError names the field whose value or encoding failed. The
// whole encode is abandoned; no bytes are returned alongside it.
type EncodingError struct {
	Field string
	Err   error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("protocol: encode %s: %v", e.Field, e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }

type DecodingError struct {
	Field string
	Err   error
}

func (e *DecodingError) Error() string {
	return fmt.Sprintf("protocol: decode %s: %v", e.Field, e.Err)
}

func (e *DecodingError) Unwrap() error { return e.Err }
