package codec_test

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockberries/chainxt/codec"
)

func TestEncode_ConcatenatesInOrder(t *testing.T) {
	got := codec.Encode(codec.Compact(5), codec.Bytes("ab"), codec.Fixed{1, 2}, codec.Str("x"), codec.Bool(true))
	assert.Equal(t, []byte{0x14, 0x08, 'a', 'b', 0x01, 0x02, 0x04, 'x', 0x01}, got)
}

func TestEncode_Deterministic(t *testing.T) {
	args := []codec.Encodable{codec.Compact(1 << 40), codec.Bytes(make([]byte, 70)), codec.CompactInt(uint256.NewInt(9))}
	assert.Equal(t, codec.Encode(args...), codec.Encode(args...))
}

func TestDecoder_Primitives(t *testing.T) {
	e := codec.NewEncoder()
	e.PutU8(7)
	e.PutU16(0x0102)
	e.PutU32(0x01020304)
	e.PutU64(1 << 60)
	require.NoError(t, e.PutUint(uint256.NewInt(0x0102), 16))
	e.PutBool(false)
	e.PutString("héllo")
	e.PutBytes(nil)

	d := codec.NewDecoder(e.Bytes())
	u8, err := d.U8()
	require.NoError(t, err)
	assert.Equal(t, uint8(7), u8)
	u16, err := d.U16()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0102), u16)
	u32, err := d.U32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x01020304), u32)
	u64, err := d.U64()
	require.NoError(t, err)
	assert.Equal(t, uint64(1<<60), u64)

	assert.Equal(t, []byte{0x02, 0x01, 0, 0}, e.Bytes()[15:19], "uint is little-endian")
	u128, err := d.Uint(16)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0102), u128.Uint64())

	b, err := d.Bool()
	require.NoError(t, err)
	assert.False(t, b)
	s, err := d.String()
	require.NoError(t, err)
	assert.Equal(t, "héllo", s)
	empty, err := d.Bytes()
	require.NoError(t, err)
	assert.Empty(t, empty)
	require.NoError(t, d.Finish())
}

func TestDecoder_Malformed(t *testing.T) {
	t.Run("short fixed", func(t *testing.T) {
		_, err := codec.NewDecoder([]byte{1, 2}).Fixed(3)
		m, ok := codec.AsMalformed(err)
		require.True(t, ok)
		assert.Equal(t, 0, m.Offset)
	})
	t.Run("byte string longer than input", func(t *testing.T) {
		d := codec.NewDecoder([]byte{0x10, 'a'})
		_, err := d.Bytes()
		assert.True(t, errors.Is(err, codec.ErrMalformed))
		assert.Equal(t, 0, d.Offset())
	})
	t.Run("bad bool", func(t *testing.T) {
		_, err := codec.NewDecoder([]byte{2}).Bool()
		assert.True(t, errors.Is(err, codec.ErrMalformed))
	})
	t.Run("invalid utf8", func(t *testing.T) {
		_, err := codec.NewDecoder([]byte{0x04, 0xff}).String()
		assert.True(t, errors.Is(err, codec.ErrMalformed))
	})
	t.Run("trailing bytes", func(t *testing.T) {
		d := codec.NewDecoder([]byte{0x00, 0x01})
		_, err := d.Compact()
		require.NoError(t, err)
		err = d.Finish()
		m, ok := codec.AsMalformed(err)
		require.True(t, ok)
		assert.Equal(t, 1, m.Offset)
	})
	t.Run("uint width out of range", func(t *testing.T) {
		_, err := codec.NewDecoder(make([]byte, 40)).Uint(33)
		assert.True(t, errors.Is(err, codec.ErrMalformed))
	})
}

func TestDecoder_Segment(t *testing.T) {
	payload := codec.Encode(codec.Compact(1<<33), codec.Fixed{9, 9, 9}, codec.Bytes("xyz"))
	d := codec.NewDecoder(payload)

	seg, err := d.Segment(codec.CompactShape())
	require.NoError(t, err)
	assert.Equal(t, codec.EncodeCompact(1<<33), seg)

	seg, err = d.Segment(codec.FixedShape(3))
	require.NoError(t, err)
	assert.Equal(t, []byte{9, 9, 9}, seg)

	seg, err = d.Segment(codec.BytesShape())
	require.NoError(t, err)
	assert.Equal(t, []byte{0x0c, 'x', 'y', 'z'}, seg)

	_, err = d.Segment(codec.Shape{})
	assert.Error(t, err)
}

func TestShape_StringAndParse(t *testing.T) {
	assert.Equal(t, "[32]byte", codec.FixedShape(32).String())
	assert.Equal(t, "u128", codec.UintShape(16).String())
	assert.True(t, codec.Shape{}.IsZero())

	k, err := codec.ParseKind(" Uint ")
	require.NoError(t, err)
	assert.Equal(t, codec.KindUint, k)
	_, err = codec.ParseKind("float")
	assert.Error(t, err)
}

type pair struct {
	a uint64
	b []byte
}

func (p *pair) DecodeFrom(d *codec.Decoder) error {
	var err error
	if p.a, err = d.Compact(); err != nil {
		return err
	}
	p.b, err = d.Bytes()
	return err
}

func TestDecode_RequiresFullConsumption(t *testing.T) {
	var p pair
	require.NoError(t, codec.Decode(codec.Encode(codec.Compact(3), codec.Bytes("q")), &p))
	assert.Equal(t, uint64(3), p.a)
	assert.Equal(t, []byte("q"), p.b)

	err := codec.Decode(append(codec.Encode(codec.Compact(3), codec.Bytes("q")), 0), &p)
	assert.True(t, errors.Is(err, codec.ErrMalformed))
}

func TestEncoder_PutUintRange(t *testing.T) {
	e := codec.NewEncoder()
	require.ErrorIs(t, e.PutUint(uint256.NewInt(0x100), 1), codec.ErrOverflow)
	require.ErrorIs(t, e.PutUint(uint256.NewInt(1), 0), codec.ErrWidth)
	require.ErrorIs(t, e.PutUint(uint256.NewInt(1), 33), codec.ErrWidth)
	assert.Zero(t, e.Len())

	require.NoError(t, e.PutUint(uint256.NewInt(0xff), 1))
	require.NoError(t, e.PutUint(nil, 2))
	assert.Equal(t, []byte{0xff, 0, 0}, e.Bytes())
}
