package contracts_test

import (
	"bytes"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockberries/chainxt/calls"
	"github.com/blockberries/chainxt/codec"
	"github.com/blockberries/chainxt/event"
	"github.com/blockberries/chainxt/modules/contracts"
	"github.com/blockberries/chainxt/types"
)

func newCalls(t *testing.T) *contracts.Calls {
	t.Helper()
	c := contracts.New(calls.NewBuilder(types.DefaultRuntime()))
	require.NoError(t, c.Err())
	return c
}

func TestStoreCode(t *testing.T) {
	code := []byte{0x00, 0x61, 0x73, 0x6d}
	call, err := newCalls(t).StoreCode(100_000, code)
	require.NoError(t, err)
	assert.Equal(t, "Contracts", call.Module())
	assert.Equal(t, "put_code", call.Function())
	require.Equal(t, 2, call.NumArgs())
	assert.Equal(t, codec.EncodeCompact(100_000), call.Arg(0))
	assert.Equal(t, append([]byte{0x10}, code...), call.Arg(1))

	split, err := types.SplitCall(call.Encode(), contracts.StoreCodeShapes...)
	require.NoError(t, err)
	assert.Equal(t, call, split)
}

func TestCreate(t *testing.T) {
	hash := contracts.CodeHash([]byte("program"))
	call, err := newCalls(t).Create(uint256.NewInt(1_000), 50_000, hash, []byte{0xde, 0xad})
	require.NoError(t, err)
	assert.Equal(t, "create", call.Function())
	require.Equal(t, 4, call.NumArgs())
	assert.Equal(t, hash[:], call.Arg(2))

	split, err := types.SplitCall(call.Encode(), contracts.CreateShapes...)
	require.NoError(t, err)
	assert.Equal(t, call, split)
}

func TestInvoke_Layout(t *testing.T) {
	dest := types.AccountID{0xaa}
	call, err := newCalls(t).Invoke(dest, uint256.NewInt(0), 7, nil)
	require.NoError(t, err)

	var want bytes.Buffer
	want.Write([]byte{0x24})
	want.WriteString("Contracts")
	want.Write([]byte{0x10})
	want.WriteString("call")
	want.Write(dest[:])
	want.Write([]byte{0x00}) // value
	want.Write([]byte{0x1c}) // gas 7
	want.Write([]byte{0x00}) // empty data
	assert.Equal(t, want.Bytes(), []byte(call.Encode()))
}

func TestInvoke_FreshDestBelowExistentialDeposit(t *testing.T) {
	// Existential deposit is enforced by the runtime; a tiny value to an
	// account that does not exist yet still builds.
	fresh := types.AccountID{0x42, 0x42}
	call, err := newCalls(t).Invoke(fresh, uint256.NewInt(1), 1_000, []byte("init"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x04}, call.Arg(1))

	split, err := types.SplitCall(call.Encode(), contracts.InvokeShapes...)
	require.NoError(t, err)
	assert.Equal(t, fresh[:], split.Arg(0))
}

func TestContracts_MissingGasCapability(t *testing.T) {
	rt := types.DefaultRuntime()
	rt.Gas = codec.UintShape(4)
	c := contracts.New(calls.NewBuilder(rt))
	_, err := c.StoreCode(1, nil)
	me, ok := types.IsMissingCapability(err)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, types.CapContracts, me.Capability)
	assert.Equal(t, "Gas", me.Field)
}

func TestContracts_ImpliesBalances(t *testing.T) {
	rt := types.DefaultRuntime()
	rt.Balance = codec.FixedShape(16)
	_, err := contracts.New(calls.NewBuilder(rt)).Invoke(types.AccountID{}, uint256.NewInt(1), 1, nil)
	me, ok := types.IsMissingCapability(err)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, types.CapBalances, me.Capability)
}

func TestCodeHash(t *testing.T) {
	a := contracts.CodeHash([]byte("a"))
	assert.Equal(t, a, contracts.CodeHash([]byte("a")))
	assert.NotEqual(t, a, contracts.CodeHash([]byte("b")))
	assert.NotEqual(t, types.Hash{}, contracts.CodeHash(nil))
}

func TestEvents(t *testing.T) {
	rt := types.DefaultRuntime()
	inst := &contracts.Instantiated{Deployer: types.AccountID{1}, Contract: types.AccountID{2}}
	got, err := event.As[contracts.Instantiated](event.MustRaw(inst, rt), rt)
	require.NoError(t, err)
	assert.Equal(t, inst, got)

	stored := &contracts.CodeStored{Hash: types.Hash{9}}
	gotStored, err := event.As[contracts.CodeStored](event.MustRaw(stored, rt), rt)
	require.NoError(t, err)
	assert.Equal(t, stored, gotStored)

	assert.Len(t, contracts.Events(), 2)
}
