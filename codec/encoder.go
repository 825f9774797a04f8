package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/holiman/uint256"
)

// Encoder accumulates an encoding. The zero value is ready to use.
type Encoder struct {
	buf []byte
}

// NewEncoder returns an empty Encoder.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// Bytes returns the accumulated encoding.
func (e *Encoder) Bytes() []byte { return e.buf }

// Len returns the number of bytes written so far.
func (e *Encoder) Len() int { return len(e.buf) }

// Put appends the encoding of v.
func (e *Encoder) Put(v Encodable) { v.EncodeTo(e) }

// PutCompact appends v in compact form.
func (e *Encoder) PutCompact(v uint64) { e.buf = AppendCompact(e.buf, v) }

// PutCompactBig appends a 256-bit unsigned integer in compact form.
func (e *Encoder) PutCompactBig(v *uint256.Int) { e.buf = AppendCompactBig(e.buf, v) }

func (e *Encoder) PutU8(v uint8) { e.buf = append(e.buf, v) }

func (e *Encoder) PutU16(v uint16) { e.buf = binary.LittleEndian.AppendUint16(e.buf, v) }

func (e *Encoder) PutU32(v uint32) { e.buf = binary.LittleEndian.AppendUint32(e.buf, v) }

func (e *Encoder) PutU64(v uint64) { e.buf = binary.LittleEndian.AppendUint64(e.buf, v) }

// PutUint appends v as a width-byte little-endian unsigned integer. A
// nil v encodes as zero. Nothing is written when width is outside 1..32
// or v does not fit in width bytes.
func (e *Encoder) PutUint(v *uint256.Int, width int) error {
	if width < 1 || width > 32 {
		return fmt.Errorf("%w: %d", ErrWidth, width)
	}
	var le [32]byte
	if v != nil {
		if v.ByteLen() > width {
			return fmt.Errorf("%w: %s exceeds u%d", ErrOverflow, v.Dec(), width*8)
		}
		be := v.Bytes32()
		for i := range le {
			le[i] = be[31-i]
		}
	}
	e.buf = append(e.buf, le[:width]...)
	return nil
}

func (e *Encoder) PutBool(v bool) {
	if v {
		e.buf = append(e.buf, 1)
		return
	}
	e.buf = append(e.buf, 0)
}

// PutFixed appends b verbatim. Used for fixed-width values whose length
// is implied by the shape, such as hashes and account identifiers.
func (e *Encoder) PutFixed(b []byte) { e.buf = append(e.buf, b...) }

// PutBytes appends b prefixed with its compact length.
func (e *Encoder) PutBytes(b []byte) {
	e.buf = AppendCompact(e.buf, uint64(len(b)))
	e.buf = append(e.buf, b...)
}

// PutString appends s as length-prefixed UTF-8 bytes.
func (e *Encoder) PutString(s string) {
	e.buf = AppendCompact(e.buf, uint64(len(s)))
	e.buf = append(e.buf, s...)
}
