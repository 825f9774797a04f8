package types

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/blockberries/chainxt/codec"
)

// Call is an inert, addressed description of a remote operation: a
// (module, function) pair and its already-encoded arguments in order.
// A Call is immutable once constructed.
type Call struct {
	module   string
	function string
	args     [][]byte
}

// NewCall copies args into a new Call.
func NewCall(module, function string, args ...[]byte) Call {
	c := Call{module: module, function: function, args: make([][]byte, len(args))}
	for i, a := range args {
		c.args[i] = bytes.Clone(a)
	}
	return c
}

func (c Call) Module() string   { return c.module }
func (c Call) Function() string { return c.function }

// NumArgs returns the number of encoded arguments.
func (c Call) NumArgs() int { return len(c.args) }

// Arg returns a copy of the i-th encoded argument.
func (c Call) Arg(i int) []byte { return bytes.Clone(c.args[i]) }

func (c Call) String() string {
	return fmt.Sprintf("%s.%s(%d args)", c.module, c.function, len(c.args))
}

// Encode serializes the call as moduleNameTag ++ functionNameTag ++
// args, with no delimiters between arguments.
func (c Call) Encode() EncodedPayload {
	e := codec.NewEncoder()
	e.PutString(c.module)
	e.PutString(c.function)
	for _, a := range c.args {
		e.PutFixed(a)
	}
	return EncodedPayload(e.Bytes())
}

// SplitCall parses an encoded call, cutting the argument bytes at the
// boundaries implied by shapes. It fails if the payload does not hold
// exactly len(shapes) arguments.
func SplitCall(p EncodedPayload, shapes ...codec.Shape) (Call, error) {
	d := codec.NewDecoder(p)
	module, err := d.String()
	if err != nil {
		return Call{}, fmt.Errorf("split call: module tag: %w", err)
	}
	function, err := d.String()
	if err != nil {
		return Call{}, fmt.Errorf("split call: function tag: %w", err)
	}
	args := make([][]byte, len(shapes))
	for i, s := range shapes {
		if args[i], err = d.Segment(s); err != nil {
			return Call{}, fmt.Errorf("split call %s.%s: arg %d (%s): %w", module, function, i, s, err)
		}
	}
	if err := d.Finish(); err != nil {
		return Call{}, fmt.Errorf("split call %s.%s: %w", module, function, err)
	}
	return NewCall(module, function, args...), nil
}

// EncodedPayload is the opaque encoding of a Call, ready for a transport.
type EncodedPayload []byte

// Equal reports byte equality.
func (p EncodedPayload) Equal(o EncodedPayload) bool { return bytes.Equal(p, o) }

func (p EncodedPayload) Hex() string { return "0x" + hex.EncodeToString(p) }
