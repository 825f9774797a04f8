package types_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockberries/chainxt/codec"
	"github.com/blockberries/chainxt/types"
)

func TestCall_EncodeLayout(t *testing.T) {
	c := types.NewCall("M", "f", []byte{0x04}, []byte{0x08, 'h', 'i'})
	want := []byte{0x04, 'M', 0x04, 'f', 0x04, 0x08, 'h', 'i'}
	assert.Equal(t, types.EncodedPayload(want), c.Encode())
	assert.True(t, c.Encode().Equal(want))
	assert.Equal(t, "M.f(2 args)", c.String())
}

func TestCall_Immutable(t *testing.T) {
	arg := []byte{1, 2, 3}
	c := types.NewCall("M", "f", arg)
	arg[0] = 9
	assert.Equal(t, []byte{1, 2, 3}, c.Arg(0))

	got := c.Arg(0)
	got[1] = 9
	assert.Equal(t, []byte{1, 2, 3}, c.Arg(0))
}

func TestSplitCall_RecoversArgs(t *testing.T) {
	arg1 := codec.Encode(codec.Compact(1 << 35))
	arg2 := codec.Encode(codec.Bytes("payload"))
	c := types.NewCall("Contracts", "put_code", arg1, arg2)

	split, err := types.SplitCall(c.Encode(), codec.CompactShape(), codec.BytesShape())
	require.NoError(t, err)
	assert.Equal(t, "Contracts", split.Module())
	assert.Equal(t, "put_code", split.Function())
	require.Equal(t, 2, split.NumArgs())
	assert.Equal(t, arg1, split.Arg(0))
	assert.Equal(t, arg2, split.Arg(1))
}

func TestSplitCall_ShapeMismatch(t *testing.T) {
	c := types.NewCall("M", "f", codec.Encode(codec.Compact(1)))

	_, err := types.SplitCall(c.Encode(), codec.CompactShape(), codec.CompactShape())
	assert.True(t, errors.Is(err, codec.ErrMalformed))

	_, err = types.SplitCall(c.Encode())
	assert.True(t, errors.Is(err, codec.ErrMalformed), "unconsumed args are trailing bytes")
}

func TestHashFromHex(t *testing.T) {
	h := types.Hash{0xAB, 0xCD}
	got, err := types.HashFromHex(h.String())
	require.NoError(t, err)
	assert.Equal(t, h, got)

	_, err = types.HashFromHex("0x1234")
	assert.Error(t, err)

	a, err := types.AccountIDFromHex("ff" + h.String()[4:])
	require.NoError(t, err)
	assert.Equal(t, byte(0xff), a[0])
}

func TestParseBalance(t *testing.T) {
	v, err := types.ParseBalance("340282366920938463463374607431768211455")
	require.NoError(t, err)
	assert.Equal(t, 128, v.BitLen())

	_, err = types.ParseBalance("-1")
	assert.Error(t, err)
}

func TestCursor_Advance(t *testing.T) {
	c := types.NewCursor(4).Resolved(types.Hash{1})
	require.NotNil(t, c.Hash)
	next := c.Advance()
	assert.Equal(t, uint32(5), next.Index)
	assert.Nil(t, next.Hash)
	assert.Equal(t, "#5", next.String())
}
