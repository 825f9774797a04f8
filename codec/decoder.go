package codec

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"

	"github.com/holiman/uint256"
)

// Decoder reads values sequentially from a byte slice.
type Decoder struct {
	data []byte
	off  int
}

// NewDecoder returns a Decoder positioned at the start of data.
func NewDecoder(data []byte) *Decoder {
	return &Decoder{data: data}
}

// Offset returns the number of bytes consumed so far.
func (d *Decoder) Offset() int { return d.off }

// Len returns the number of unread bytes.
func (d *Decoder) Len() int { return len(d.data) - d.off }

// Remaining returns the unread bytes without consuming them.
func (d *Decoder) Remaining() []byte { return d.data[d.off:] }

// Finish fails if any bytes remain unread.
func (d *Decoder) Finish() error {
	if n := d.Len(); n != 0 {
		return d.fail("%d trailing bytes", n)
	}
	return nil
}

func (d *Decoder) fail(format string, args ...any) error {
	return &MalformedEncodingError{Offset: d.off, Reason: fmt.Sprintf(format, args...)}
}

func (d *Decoder) take(n int, what string) ([]byte, error) {
	if n < 0 || d.Len() < n {
		return nil, d.fail("%s needs %d bytes, %d remain", what, n, d.Len())
	}
	b := d.data[d.off : d.off+n]
	d.off += n
	return b, nil
}

// compactHeader consumes a compact integer's prefix. For the three small
// classes it returns the value directly; for the big-integer class it
// returns the little-endian magnitude bytes.
func (d *Decoder) compactHeader(maxWidth int) (small uint64, big []byte, err error) {
	start := d.off
	if d.Len() == 0 {
		return 0, nil, d.fail("compact integer needs 1 byte, 0 remain")
	}
	b0 := d.data[d.off]
	switch b0 & 0b11 {
	case modeSingle:
		d.off++
		return uint64(b0 >> 2), nil, nil
	case modeTwo:
		b, err := d.take(2, "compact u16 class")
		if err != nil {
			return 0, nil, err
		}
		v := uint64(binary.LittleEndian.Uint16(b) >> 2)
		if v <= maxSingle {
			d.off = start
			return 0, nil, d.fail("non-canonical compact: %d fits the single-byte class", v)
		}
		return v, nil, nil
	case modeFour:
		b, err := d.take(4, "compact u32 class")
		if err != nil {
			return 0, nil, err
		}
		v := uint64(binary.LittleEndian.Uint32(b) >> 2)
		if v <= maxTwo {
			d.off = start
			return 0, nil, d.fail("non-canonical compact: %d fits the two-byte class", v)
		}
		return v, nil, nil
	}
	n := int(b0>>2) + minBigWidth
	if n > maxWidth {
		return 0, nil, d.fail("compact width class of %d bytes exceeds %d", n, maxWidth)
	}
	d.off++
	b, err := d.take(n, "compact big-integer class")
	if err != nil {
		d.off = start
		return 0, nil, err
	}
	if b[n-1] == 0 {
		d.off = start
		return 0, nil, d.fail("non-canonical compact: zero high byte in %d-byte class", n)
	}
	if n == minBigWidth && binary.LittleEndian.Uint32(b) <= maxFour {
		d.off = start
		return 0, nil, d.fail("non-canonical compact: value fits the four-byte class")
	}
	return 0, b, nil
}

// Compact decodes a compact unsigned integer that must fit in 64 bits.
func (d *Decoder) Compact() (uint64, error) {
	small, big, err := d.compactHeader(8)
	if err != nil {
		return 0, err
	}
	if big == nil {
		return small, nil
	}
	var v uint64
	for i := len(big) - 1; i >= 0; i-- {
		v = v<<8 | uint64(big[i])
	}
	return v, nil
}

// CompactBig decodes a compact unsigned integer of up to 256 bits.
func (d *Decoder) CompactBig() (*uint256.Int, error) {
	small, big, err := d.compactHeader(32)
	if err != nil {
		return nil, err
	}
	if big == nil {
		return uint256.NewInt(small), nil
	}
	if len(big) <= 8 {
		var v uint64
		for i := len(big) - 1; i >= 0; i-- {
			v = v<<8 | uint64(big[i])
		}
		return uint256.NewInt(v), nil
	}
	be := make([]byte, len(big))
	for i, b := range big {
		be[len(big)-1-i] = b
	}
	return new(uint256.Int).SetBytes(be), nil
}

func (d *Decoder) U8() (uint8, error) {
	b, err := d.take(1, "u8")
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *Decoder) U16() (uint16, error) {
	b, err := d.take(2, "u16")
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (d *Decoder) U32() (uint32, error) {
	b, err := d.take(4, "u32")
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (d *Decoder) U64() (uint64, error) {
	b, err := d.take(8, "u64")
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// Uint decodes a little-endian unsigned integer of the given width
// (1 to 32 bytes).
func (d *Decoder) Uint(width int) (*uint256.Int, error) {
	if width < 1 || width > 32 {
		return nil, d.fail("unsigned width %d out of range", width)
	}
	b, err := d.take(width, fmt.Sprintf("u%d", width*8))
	if err != nil {
		return nil, err
	}
	be := make([]byte, width)
	for i, x := range b {
		be[width-1-i] = x
	}
	return new(uint256.Int).SetBytes(be), nil
}

func (d *Decoder) Bool() (bool, error) {
	b, err := d.take(1, "bool")
	if err != nil {
		return false, err
	}
	switch b[0] {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	d.off--
	return false, d.fail("invalid bool discriminant 0x%02x", b[0])
}

// Fixed returns the next n bytes. The slice aliases the input.
func (d *Decoder) Fixed(n int) ([]byte, error) {
	return d.take(n, "fixed bytes")
}

// Bytes decodes a compact length followed by that many bytes. The slice
// aliases the input.
func (d *Decoder) Bytes() ([]byte, error) {
	start := d.off
	n, err := d.Compact()
	if err != nil {
		return nil, err
	}
	if n > uint64(d.Len()) {
		d.off = start
		return nil, d.fail("byte string declares %d bytes, %d remain", n, d.Len()-CompactLen(n))
	}
	return d.take(int(n), "byte string")
}

// String decodes a length-prefixed UTF-8 string.
func (d *Decoder) String() (string, error) {
	start := d.off
	b, err := d.Bytes()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		d.off = start
		return "", d.fail("string is not valid UTF-8")
	}
	return string(b), nil
}

// Segment consumes one value of the given shape and returns its raw
// encoded bytes, prefix included.
func (d *Decoder) Segment(s Shape) ([]byte, error) {
	start := d.off
	var err error
	switch s.Kind {
	case KindCompact:
		_, err = d.CompactBig()
	case KindFixed, KindUint:
		_, err = d.take(s.Width, s.String())
	case KindBytes:
		_, err = d.Bytes()
	default:
		err = d.fail("cannot segment shape %s", s)
	}
	if err != nil {
		return nil, err
	}
	return d.data[start:d.off], nil
}
