package types

import (
	"fmt"
	"iter"

	"github.com/blockberries/chainxt/codec"
)

// EventDescriptor is the (module, event) pair used as a decode filter key.
type EventDescriptor struct {
	Module string `cramberry:"1"`
	Event  string `cramberry:"2"`
}

func (d EventDescriptor) String() string { return d.Module + "." + d.Event }

// RawEvent is one undecoded entry of a block's event log.
type RawEvent struct {
	Module  string `cramberry:"1"`
	Name    string `cramberry:"2"`
	Payload []byte `cramberry:"3"`
}

// Descriptor returns the event's (module, event) tag.
func (r RawEvent) Descriptor() EventDescriptor {
	return EventDescriptor{Module: r.Module, Event: r.Name}
}

// EncodeTo writes moduleNameTag ++ eventNameTag ++ length-prefixed payload.
func (r RawEvent) EncodeTo(e *codec.Encoder) {
	e.PutString(r.Module)
	e.PutString(r.Name)
	e.PutBytes(r.Payload)
}

func (r *RawEvent) DecodeFrom(d *codec.Decoder) error {
	var err error
	if r.Module, err = d.String(); err != nil {
		return err
	}
	if r.Name, err = d.String(); err != nil {
		return err
	}
	payload, err := d.Bytes()
	if err != nil {
		return err
	}
	r.Payload = append([]byte(nil), payload...)
	return nil
}

// Encode returns the wire form of a single log entry.
func (r RawEvent) Encode() []byte { return codec.Encode(r) }

// DecodeRawEvent parses a single log entry.
func DecodeRawEvent(entry []byte) (RawEvent, error) {
	var r RawEvent
	if err := codec.Decode(entry, &r); err != nil {
		return RawEvent{}, err
	}
	return r, nil
}

// ParseEventLog lazily parses log entries in order. A corrupt entry
// yields an error for that entry only; iteration continues with the next.
func ParseEventLog(entries [][]byte) iter.Seq2[RawEvent, error] {
	return func(yield func(RawEvent, error) bool) {
		for i, entry := range entries {
			ev, err := DecodeRawEvent(entry)
			if err != nil {
				err = fmt.Errorf("event log entry %d: %w", i, err)
			}
			if !yield(ev, err) {
				return
			}
		}
	}
}
