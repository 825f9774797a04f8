package calls_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockberries/chainxt/calls"
	"github.com/blockberries/chainxt/codec"
	"github.com/blockberries/chainxt/types"
)

func TestBuilder_Call(t *testing.T) {
	b := calls.NewBuilder(types.DefaultRuntime())
	m := b.Module("Demo", types.CapSystem)
	require.NoError(t, m.Err())
	assert.Equal(t, "Demo", m.Name())
	assert.Equal(t, types.CapSystem, m.Required())

	c, err := m.Call("poke", codec.Compact(64), codec.Bytes("hi"))
	require.NoError(t, err)
	assert.Equal(t, "Demo", c.Module())
	assert.Equal(t, "poke", c.Function())
	assert.Equal(t, []byte{0x01, 0x01}, c.Arg(0))
	assert.Equal(t, []byte{0x08, 'h', 'i'}, c.Arg(1))
}

func TestBuilder_MissingCapabilityBeforeEncoding(t *testing.T) {
	rt := types.DefaultRuntime()
	rt.Name = "no-balances"
	rt.Balance = codec.Shape{}
	b := calls.NewBuilder(rt)
	assert.Equal(t, types.CapSystem, b.Capabilities())

	m := b.Module("Balances", types.CapBalances)
	_, ok := types.IsMissingCapability(m.Err())
	require.True(t, ok)

	_, err := m.Call("transfer", codec.Compact(1))
	me, ok := types.IsMissingCapability(err)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, "no-balances", me.Runtime)
	assert.Contains(t, err.Error(), "Balances.transfer")
}

func TestBuilder_ConcurrentUse(t *testing.T) {
	b := calls.NewBuilder(types.DefaultRuntime())
	m := b.Module("Demo", types.CapSystem)
	want, err := m.Call("poke", codec.Compact(7))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := m.Call("poke", codec.Compact(7))
			assert.NoError(t, err)
			assert.True(t, want.Encode().Equal(got.Encode()))
		}()
	}
	wg.Wait()
}
