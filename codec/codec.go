// Package codec implements the compact binary encoding used for call
// payloads and event records.
//
// Unsigned integers in compact form carry their own width class in the
// low two bits of the first byte, so a decoder always knows how many
// bytes to consume. Structured values are the plain concatenation of
// their fields in declared order, with no padding and no delimiters.
// The same logical value always encodes to the same bytes.
//
// Compact encoding is total and never fails. Fixed-width unsigned
// encoding fails with ErrOverflow when the value does not fit. Decoding is the exact left-inverse
// of encoding and fails with a [*MalformedEncodingError] when the input
// is truncated, non-canonical, or declares an out-of-range width class.
package codec

// Encodable is implemented by values that know how to append their
// canonical encoding to an Encoder.
type Encodable interface {
	EncodeTo(e *Encoder)
}

// Decodable is implemented by values that can populate themselves from
// a Decoder. Implementations must consume exactly their own bytes.
type Decodable interface {
	DecodeFrom(d *Decoder) error
}

// Encode concatenates the encodings of vs in order.
func Encode(vs ...Encodable) []byte {
	e := NewEncoder()
	for _, v := range vs {
		v.EncodeTo(e)
	}
	return e.Bytes()
}

// Decode decodes data into v and requires that every byte is consumed.
func Decode(data []byte, v Decodable) error {
	d := NewDecoder(data)
	if err := v.DecodeFrom(d); err != nil {
		return err
	}
	return d.Finish()
}
