package event_test

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockberries/chainxt/codec"
	"github.com/blockberries/chainxt/event"
	"github.com/blockberries/chainxt/modules/balances"
	"github.com/blockberries/chainxt/types"
)

func transfer(amount uint64) *balances.TransferEvent {
	return &balances.TransferEvent{
		From:   types.AccountID{1},
		To:     types.AccountID{2},
		Amount: uint256.NewInt(amount),
	}
}

func TestDecode_RoundTrip(t *testing.T) {
	rt := types.DefaultRuntime()
	raw := event.MustRaw(transfer(500), rt)
	assert.Equal(t, "Balances", raw.Module)
	assert.Equal(t, "Transfer", raw.Name)
	assert.Len(t, raw.Payload, 32+32+16)

	var got balances.TransferEvent
	matched, err := event.Decode(raw, &got, rt)
	require.NoError(t, err)
	require.True(t, matched)
	assert.Equal(t, types.AccountID{1}, got.From)
	assert.Equal(t, types.AccountID{2}, got.To)
	assert.Equal(t, uint64(500), got.Amount.Uint64())
}

func TestDecode_TagMismatchIgnoresPayload(t *testing.T) {
	rt := types.DefaultRuntime()
	payloads := [][]byte{nil, {0xff}, make([]byte, 80), make([]byte, 200)}
	tags := []types.EventDescriptor{
		{Module: "System", Event: "Transfer"},
		{Module: "Balances", Event: "Deposit"},
		{Module: "balances", Event: "Transfer"},
		{Module: "Balances", Event: "Transfer "},
	}
	for _, tag := range tags {
		for _, p := range payloads {
			raw := types.RawEvent{Module: tag.Module, Name: tag.Event, Payload: p}
			matched, err := event.Decode(raw, new(balances.TransferEvent), rt)
			assert.False(t, matched, "%s", tag)
			assert.NoError(t, err, "%s", tag)
		}
	}
}

func TestDecode_MalformedPayload(t *testing.T) {
	rt := types.DefaultRuntime()
	good := event.MustRaw(transfer(1), rt)

	cases := map[string][]byte{
		"empty":    nil,
		"short":    good.Payload[:40],
		"trailing": append(append([]byte(nil), good.Payload...), 0x00),
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			raw := good
			raw.Payload = payload
			matched, err := event.Decode(raw, new(balances.TransferEvent), rt)
			assert.True(t, matched)
			var de *event.DecodeError
			require.True(t, errors.As(err, &de), "got %v", err)
			assert.Equal(t, good.Descriptor(), de.Descriptor)
			assert.ErrorIs(t, err, codec.ErrMalformed)
		})
	}
}

func TestDecode_BalanceWidthFollowsRuntime(t *testing.T) {
	rt := types.DefaultRuntime()
	rt.Balance = codec.UintShape(8)
	raw := event.MustRaw(transfer(1<<40), rt)
	assert.Len(t, raw.Payload, 32+32+8)

	got, err := event.As[balances.TransferEvent](raw, rt)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, uint64(1<<40), got.Amount.Uint64())

	// The same payload under a u128 runtime is too short.
	_, err = event.As[balances.TransferEvent](raw, types.DefaultRuntime())
	assert.Error(t, err)
}

func TestAs_NoMatch(t *testing.T) {
	raw := types.RawEvent{Module: "System", Name: "ExtrinsicSuccess"}
	got, err := event.As[balances.TransferEvent](raw, types.DefaultRuntime())
	assert.NoError(t, err)
	assert.Nil(t, got)
}
