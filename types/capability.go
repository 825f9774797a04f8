package types

import (
	"errors"
	"fmt"
	"strings"

	"github.com/blockberries/chainxt/codec"
)

// Capabilities is a bitfield of runtime features a call family needs.
type Capabilities uint8

const (
	CapSystem    Capabilities = 1 << iota // 0b001
	CapBalances                           // 0b010
	CapContracts                          // 0b100
)

// orderedCaps lists capabilities in the order they are checked.
var orderedCaps = []Capabilities{CapSystem, CapBalances, CapContracts}

// Has returns true if all bits in cap are set.
func (c Capabilities) Has(cap Capabilities) bool {
	return c&cap == cap
}

// Closure adds the capabilities implied by those in c. Contracts
// requires both System and Balances.
func (c Capabilities) Closure() Capabilities {
	if c.Has(CapContracts) {
		c |= CapSystem | CapBalances
	}
	return c
}

// String returns a human-readable representation.
func (c Capabilities) String() string {
	var caps []string
	if c.Has(CapSystem) {
		caps = append(caps, "System")
	}
	if c.Has(CapBalances) {
		caps = append(caps, "Balances")
	}
	if c.Has(CapContracts) {
		caps = append(caps, "Contracts")
	}
	if len(caps) == 0 {
		return "none"
	}
	return strings.Join(caps, "|")
}

// Runtime describes the shape of a target runtime: the concrete layout
// of its account identifiers, hashes, balances and gas. Capabilities are
// derived from these shapes, never declared by name, so any runtime with
// the right layout qualifies.
type Runtime struct {
	Name      string
	AccountID codec.Shape
	Hash      codec.Shape
	Balance   codec.Shape
	Gas       codec.Shape
}

// DefaultRuntime returns the common layout: 32-byte accounts and hashes,
// u128 balances and u64 gas.
func DefaultRuntime() Runtime {
	return Runtime{
		Name:      "default",
		AccountID: codec.FixedShape(HashLen),
		Hash:      codec.FixedShape(HashLen),
		Balance:   codec.UintShape(16),
		Gas:       codec.UintShape(8),
	}
}

type requirement struct {
	field string
	want  string
	shape func(Runtime) codec.Shape
	ok    func(codec.Shape) bool
}

var requirements = map[Capabilities][]requirement{
	CapSystem: {
		{"AccountID", "[32]byte", func(r Runtime) codec.Shape { return r.AccountID }, isFixed32},
		{"Hash", "[32]byte", func(r Runtime) codec.Shape { return r.Hash }, isFixed32},
	},
	CapBalances: {
		{"Balance", "u8..u256", func(r Runtime) codec.Shape { return r.Balance }, func(s codec.Shape) bool {
			return s.Kind == codec.KindUint && s.Width >= 1 && s.Width <= 32
		}},
	},
	CapContracts: {
		{"Gas", "u64", func(r Runtime) codec.Shape { return r.Gas }, func(s codec.Shape) bool {
			return s.Kind == codec.KindUint && s.Width == 8
		}},
	},
}

func isFixed32(s codec.Shape) bool {
	return s.Kind == codec.KindFixed && s.Width == HashLen
}

// Capabilities returns every capability the runtime's shapes satisfy.
func (rt Runtime) Capabilities() Capabilities {
	var have Capabilities
	for _, c := range orderedCaps {
		if rt.check(c) == nil {
			have |= c
		}
	}
	if have.Has(CapContracts) && !have.Has(CapSystem|CapBalances) {
		have &^= CapContracts
	}
	return have
}

// Require checks that the runtime satisfies every capability in
// required, including implied ones. The first unsatisfied capability is
// reported as a *MissingCapabilityError.
func (rt Runtime) Require(required Capabilities) error {
	required = required.Closure()
	for _, c := range orderedCaps {
		if !required.Has(c) {
			continue
		}
		if err := rt.check(c); err != nil {
			return err
		}
	}
	return nil
}

func (rt Runtime) check(c Capabilities) *MissingCapabilityError {
	for _, req := range requirements[c] {
		got := req.shape(rt)
		if !req.ok(got) {
			return &MissingCapabilityError{
				Capability: c,
				Runtime:    rt.Name,
				Field:      req.field,
				Want:       req.want,
				Got:        got,
			}
		}
	}
	return nil
}

// MissingCapabilityError reports that a runtime does not satisfy a
// capability a call family requires. It is not retryable: pick another
// call family or another runtime.
type MissingCapabilityError struct {
	Capability Capabilities
	Runtime    string
	Field      string
	Want       string
	Got        codec.Shape
}

func (e *MissingCapabilityError) Error() string {
	return fmt.Sprintf("runtime %q lacks capability %s: %s is %s, want %s",
		e.Runtime, e.Capability, e.Field, e.Got, e.Want)
}

// IsMissingCapability checks whether an error is a MissingCapabilityError
// and returns it.
func IsMissingCapability(err error) (*MissingCapabilityError, bool) {
	var m *MissingCapabilityError
	if errors.As(err, &m) {
		return m, true
	}
	return nil, false
}
