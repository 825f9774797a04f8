package chainxt

import (
	"errors"
	"fmt"

	"github.com/blockberries/chainxt/codec"
	"github.com/blockberries/chainxt/types"
)

// ErrUnknownBlock is returned by a block source asked for the event log
// of a hash it does not know.
var ErrUnknownBlock = errors.New("chainxt: unknown block")

// MissingCapabilityError is returned when a call family is built for a
// runtime that lacks a required capability.
type MissingCapabilityError = types.MissingCapabilityError

// MalformedEncodingError is returned when bytes cannot be decoded into
// the expected shape.
type MalformedEncodingError = codec.MalformedEncodingError

// TransportUnavailableError signals a hard failure of the block source
// or submitter. The poller does not retry these; the caller decides
// whether to restart from its last checkpointed cursor.
type TransportUnavailableError struct {
	Op    string
	Index uint32
	Err   error
}

func (e *TransportUnavailableError) Error() string {
	return fmt.Sprintf("transport unavailable: %s at block %d: %v", e.Op, e.Index, e.Err)
}

func (e *TransportUnavailableError) Unwrap() error { return e.Err }

// NewTransportUnavailable creates a new TransportUnavailableError.
func NewTransportUnavailable(op string, index uint32, err error) *TransportUnavailableError {
	return &TransportUnavailableError{Op: op, Index: index, Err: err}
}

// IsTransportUnavailable checks whether an error is a
// TransportUnavailableError and returns it.
func IsTransportUnavailable(err error) (*TransportUnavailableError, bool) {
	var t *TransportUnavailableError
	if errors.As(err, &t) {
		return t, true
	}
	return nil, false
}

// IsMissingCapability checks whether an error is a MissingCapabilityError
// and returns it.
func IsMissingCapability(err error) (*MissingCapabilityError, bool) {
	return types.IsMissingCapability(err)
}

// IsMalformed checks whether an error is a MalformedEncodingError and
// returns it.
func IsMalformed(err error) (*MalformedEncodingError, bool) {
	return codec.AsMalformed(err)
}
