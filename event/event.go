// Package event decodes runtime events from raw log entries.
//
// Decoding distinguishes two outcomes that callers must treat
// differently. A tag mismatch is "no match" and is silent: callers
// routinely try many descriptors against one log. A tag match whose
// payload does not decode is a *DecodeError: the client's schema and the
// runtime's disagree, and the caller needs to know.
package event

import (
	"fmt"

	"github.com/blockberries/chainxt/codec"
	"github.com/blockberries/chainxt/types"
)

// Event is a statically shaped runtime event.
type Event interface {
	// Descriptor returns the (module, event) tag this event decodes from.
	Descriptor() types.EventDescriptor
	// EncodePayload writes the event's fields in declared order.
	EncodePayload(e *codec.Encoder, rt types.Runtime) error
	// DecodePayload reads the event's fields in declared order.
	DecodePayload(d *codec.Decoder, rt types.Runtime) error
}

// DecodeError reports a payload that failed to decode after its tag
// matched.
type DecodeError struct {
	Descriptor types.EventDescriptor
	Err        error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Descriptor, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Decode decodes raw into ev if their tags match exactly. It reports
// matched=false, with no error, on any tag mismatch regardless of the
// payload. On a match, a payload that is short, malformed or carries
// trailing bytes yields a *DecodeError.
func Decode(raw types.RawEvent, ev Event, rt types.Runtime) (matched bool, err error) {
	desc := ev.Descriptor()
	if raw.Module != desc.Module || raw.Name != desc.Event {
		return false, nil
	}
	d := codec.NewDecoder(raw.Payload)
	if err := ev.DecodePayload(d, rt); err != nil {
		return true, &DecodeError{Descriptor: desc, Err: err}
	}
	if err := d.Finish(); err != nil {
		return true, &DecodeError{Descriptor: desc, Err: err}
	}
	return true, nil
}

// As decodes raw into a new E. It returns nil, nil when the tag does
// not match.
func As[E any, P interface {
	*E
	Event
}](raw types.RawEvent, rt types.Runtime) (*E, error) {
	ev := P(new(E))
	matched, err := Decode(raw, ev, rt)
	if !matched || err != nil {
		return nil, err
	}
	return (*E)(ev), nil
}

// Raw encodes ev into a log entry. It fails when a field does not fit
// the shape rt declares for it.
func Raw(ev Event, rt types.Runtime) (types.RawEvent, error) {
	desc := ev.Descriptor()
	e := codec.NewEncoder()
	if err := ev.EncodePayload(e, rt); err != nil {
		return types.RawEvent{}, fmt.Errorf("encode %s: %w", desc, err)
	}
	return types.RawEvent{Module: desc.Module, Name: desc.Event, Payload: e.Bytes()}, nil
}

// MustRaw is like Raw but panics on error.
func MustRaw(ev Event, rt types.Runtime) types.RawEvent {
	raw, err := Raw(ev, rt)
	if err != nil {
		panic(err)
	}
	return raw
}
