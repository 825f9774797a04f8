package event

import (
	"fmt"
	"iter"

	"github.com/blockberries/chainxt/types"
)

// Factory returns a fresh, empty event to decode into.
type Factory func() Event

// For returns a Factory for the event type E.
func For[E any, P interface {
	*E
	Event
}]() Factory {
	return func() Event { return P(new(E)) }
}

// Filter routes raw events to the decoders registered for their tags.
// Register everything before scanning; a Filter is read-only afterwards
// and then safe for concurrent use.
type Filter struct {
	rt        types.Runtime
	factories map[types.EventDescriptor]Factory
	order     []types.EventDescriptor
}

// NewFilter creates an empty filter decoding against rt.
func NewFilter(rt types.Runtime) *Filter {
	return &Filter{rt: rt, factories: make(map[types.EventDescriptor]Factory)}
}

// Register adds an event shape. Two shapes may not share a descriptor.
func (f *Filter) Register(factory Factory) error {
	desc := factory().Descriptor()
	if _, dup := f.factories[desc]; dup {
		return fmt.Errorf("event filter: %s already registered", desc)
	}
	f.factories[desc] = factory
	f.order = append(f.order, desc)
	return nil
}

// MustRegister registers every factory and panics on a duplicate.
func (f *Filter) MustRegister(factories ...Factory) *Filter {
	for _, fac := range factories {
		if err := f.Register(fac); err != nil {
			panic(err)
		}
	}
	return f
}

// Descriptors returns the registered descriptors in registration order.
func (f *Filter) Descriptors() []types.EventDescriptor {
	return append([]types.EventDescriptor(nil), f.order...)
}

// Runtime returns the runtime description payloads are decoded against.
func (f *Filter) Runtime() types.Runtime { return f.rt }

// Match decodes raw with the decoder registered for its tag.
func (f *Filter) Match(raw types.RawEvent) (Event, bool, error) {
	factory, ok := f.factories[raw.Descriptor()]
	if !ok {
		return nil, false, nil
	}
	ev := factory()
	matched, err := Decode(raw, ev, f.rt)
	if err != nil {
		return nil, matched, err
	}
	return ev, matched, nil
}

// Match is one log entry whose tag matched a registered descriptor.
// Exactly one of Event and Err is set.
type Match struct {
	Index int
	Raw   types.RawEvent
	Event Event
	Err   error
}

// ScanResult summarizes one pass over an event log.
type ScanResult struct {
	Matches []Match // In log order.
	Entries int     // Entries seen, including skipped ones.
	Skipped []error // Entries the transport could not parse.
}

// DecodeErrors counts matches whose payload failed to decode.
func (r ScanResult) DecodeErrors() int {
	n := 0
	for _, m := range r.Matches {
		if m.Err != nil {
			n++
		}
	}
	return n
}

// Scan runs the filter over every entry of log. Entries the transport
// failed to parse are recorded and skipped; the scan always runs to the
// end of the log.
func (f *Filter) Scan(log iter.Seq2[types.RawEvent, error]) ScanResult {
	var res ScanResult
	for raw, err := range log {
		idx := res.Entries
		res.Entries++
		if err != nil {
			res.Skipped = append(res.Skipped, err)
			continue
		}
		ev, matched, err := f.Match(raw)
		if !matched {
			continue
		}
		res.Matches = append(res.Matches, Match{Index: idx, Raw: raw, Event: ev, Err: err})
	}
	return res
}
