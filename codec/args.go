package codec

import "github.com/holiman/uint256"

// Argument adapters. Each wraps a Go value with the wire form a call
// argument takes.

// Compact encodes a uint64 in compact form.
type Compact uint64

func (c Compact) EncodeTo(e *Encoder) { e.PutCompact(uint64(c)) }

// Bytes encodes a length-prefixed byte string.
type Bytes []byte

func (b Bytes) EncodeTo(e *Encoder) { e.PutBytes(b) }

// Fixed encodes bytes verbatim, with no length prefix.
type Fixed []byte

func (f Fixed) EncodeTo(e *Encoder) { e.PutFixed(f) }

// Str encodes a length-prefixed UTF-8 string.
type Str string

func (s Str) EncodeTo(e *Encoder) { e.PutString(string(s)) }

type Bool bool

func (b Bool) EncodeTo(e *Encoder) { e.PutBool(bool(b)) }

type compactBig struct{ v *uint256.Int }

func (c compactBig) EncodeTo(e *Encoder) { e.PutCompactBig(c.v) }

// CompactInt encodes a 256-bit unsigned integer in compact form.
func CompactInt(v *uint256.Int) Encodable { return compactBig{v} }
