package codec

import (
	"fmt"
	"strings"
)

// Kind classifies how a field is laid out on the wire.
type Kind uint8

const (
	// KindNone marks an absent shape.
	KindNone Kind = iota
	// KindCompact is a compact unsigned integer.
	KindCompact
	// KindFixed is an opaque byte array of Width bytes (hashes, account ids).
	KindFixed
	// KindUint is a little-endian unsigned integer of Width bytes.
	KindUint
	// KindBytes is a compact-length-prefixed byte string.
	KindBytes
)

var kindNames = map[Kind]string{
	KindNone:    "none",
	KindCompact: "compact",
	KindFixed:   "fixed",
	KindUint:    "uint",
	KindBytes:   "bytes",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind parses the lower-case name of a Kind.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return KindNone, fmt.Errorf("codec: unknown shape kind %q", s)
}

// Shape describes the wire layout of a single field.
type Shape struct {
	Kind  Kind
	Width int // Byte width for KindFixed and KindUint; ignored otherwise.
}

func CompactShape() Shape    { return Shape{Kind: KindCompact} }
func BytesShape() Shape      { return Shape{Kind: KindBytes} }
func FixedShape(n int) Shape { return Shape{Kind: KindFixed, Width: n} }
func UintShape(n int) Shape  { return Shape{Kind: KindUint, Width: n} }

// IsZero reports whether the shape is absent.
func (s Shape) IsZero() bool { return s.Kind == KindNone }

func (s Shape) String() string {
	switch s.Kind {
	case KindFixed:
		return fmt.Sprintf("[%d]byte", s.Width)
	case KindUint:
		return fmt.Sprintf("u%d", s.Width*8)
	}
	return s.Kind.String()
}
