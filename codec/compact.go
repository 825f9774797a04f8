package codec

import (
	"encoding/binary"
	"math/bits"

	"github.com/holiman/uint256"
)

// Width class boundaries, selected by the low two bits of the first byte.
const (
	modeSingle = 0b00
	modeTwo    = 0b01
	modeFour   = 0b10
	modeBig    = 0b11

	maxSingle = 1<<6 - 1
	maxTwo    = 1<<14 - 1
	maxFour   = 1<<30 - 1

	// The big-integer class stores (n-4) in six bits.
	minBigWidth = 4
	maxBigWidth = 67
)

// AppendCompact appends the compact encoding of v to dst using the
// smallest width class that can hold it.
func AppendCompact(dst []byte, v uint64) []byte {
	switch {
	case v <= maxSingle:
		return append(dst, byte(v<<2)|modeSingle)
	case v <= maxTwo:
		return binary.LittleEndian.AppendUint16(dst, uint16(v<<2)|modeTwo)
	case v <= maxFour:
		return binary.LittleEndian.AppendUint32(dst, uint32(v<<2)|modeFour)
	}
	n := (bits.Len64(v) + 7) / 8
	dst = append(dst, byte((n-minBigWidth)<<2)|modeBig)
	for i := 0; i < n; i++ {
		dst = append(dst, byte(v>>(8*i)))
	}
	return dst
}

// AppendCompactBig appends the compact encoding of an unsigned 256-bit
// integer. Values that fit in 64 bits encode exactly as AppendCompact.
func AppendCompactBig(dst []byte, v *uint256.Int) []byte {
	if v == nil {
		return AppendCompact(dst, 0)
	}
	if v.IsUint64() {
		return AppendCompact(dst, v.Uint64())
	}
	be := v.Bytes()
	dst = append(dst, byte((len(be)-minBigWidth)<<2)|modeBig)
	for i := len(be) - 1; i >= 0; i-- {
		dst = append(dst, be[i])
	}
	return dst
}

// EncodeCompact returns the compact encoding of v.
func EncodeCompact(v uint64) []byte {
	return AppendCompact(nil, v)
}

// DecodeCompact decodes a compact integer from the front of data and
// returns the value together with the bytes that follow it.
func DecodeCompact(data []byte) (uint64, []byte, error) {
	d := NewDecoder(data)
	v, err := d.Compact()
	if err != nil {
		return 0, data, err
	}
	return v, d.Remaining(), nil
}

// CompactLen returns the number of bytes AppendCompact would write for v.
func CompactLen(v uint64) int {
	switch {
	case v <= maxSingle:
		return 1
	case v <= maxTwo:
		return 2
	case v <= maxFour:
		return 4
	}
	return 1 + (bits.Len64(v)+7)/8
}
