package codec

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformed matches every *MalformedEncodingError via errors.Is.
	ErrMalformed = errors.New("malformed encoding")

	// ErrOverflow is returned when a value does not fit its fixed width.
	ErrOverflow = errors.New("value overflows width")

	// ErrWidth is returned for a fixed unsigned width outside 1..32 bytes.
	ErrWidth = errors.New("unsigned width out of range")
)

// MalformedEncodingError reports bytes that cannot be decoded into the
// requested shape. The bytes at Offset are unusable, but data outside
// the failed value may still be valid.
type MalformedEncodingError struct {
	Offset int
	Reason string
}

func (e *MalformedEncodingError) Error() string {
	return fmt.Sprintf("malformed encoding at offset %d: %s", e.Offset, e.Reason)
}

// Is reports whether target is ErrMalformed.
func (e *MalformedEncodingError) Is(target error) bool {
	return target == ErrMalformed
}

// AsMalformed checks whether err is a MalformedEncodingError and returns it.
func AsMalformed(err error) (*MalformedEncodingError, bool) {
	var m *MalformedEncodingError
	if errors.As(err, &m) {
		return m, true
	}
	return nil, false
}
