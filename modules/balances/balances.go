// Package balances provides calls and events of the runtime's Balances
// module.
package balances

import (
	"github.com/holiman/uint256"

	"github.com/blockberries/chainxt/calls"
	"github.com/blockberries/chainxt/codec"
	"github.com/blockberries/chainxt/event"
	"github.com/blockberries/chainxt/types"
)

const ModuleName = "Balances"

// Required is the capability set Balances calls need.
const Required = types.CapSystem | types.CapBalances

// Calls builds Balances module calls.
type Calls struct {
	m *calls.ModuleCalls
}

// New binds the Balances call family to b's runtime.
func New(b *calls.Builder) *Calls {
	return &Calls{m: b.Module(ModuleName, Required)}
}

func (c *Calls) Err() error { return c.m.Err() }

// Transfer builds a call moving value from the signer to dest. Whether
// dest may be created by the transfer is decided by the runtime.
func (c *Calls) Transfer(dest types.AccountID, value *uint256.Int) (types.Call, error) {
	return c.m.Call("transfer", dest, codec.CompactInt(value))
}

// TransferShapes are the argument shapes of Transfer.
var TransferShapes = []codec.Shape{codec.FixedShape(types.HashLen), codec.CompactShape()}

// TransferEvent is emitted when a balance moves between accounts.
// Amount is encoded at the runtime's declared balance width.
type TransferEvent struct {
	From   types.AccountID
	To     types.AccountID
	Amount *uint256.Int
}

func (*TransferEvent) Descriptor() types.EventDescriptor {
	return types.EventDescriptor{Module: ModuleName, Event: "Transfer"}
}

func (ev *TransferEvent) EncodePayload(e *codec.Encoder, rt types.Runtime) error {
	ev.From.EncodeTo(e)
	ev.To.EncodeTo(e)
	return e.PutUint(ev.Amount, rt.Balance.Width)
}

func (ev *TransferEvent) DecodePayload(d *codec.Decoder, rt types.Runtime) error {
	if err := ev.From.DecodeFrom(d); err != nil {
		return err
	}
	if err := ev.To.DecodeFrom(d); err != nil {
		return err
	}
	amount, err := d.Uint(rt.Balance.Width)
	if err != nil {
		return err
	}
	ev.Amount = amount
	return nil
}

// Events returns factories for every Balances event.
func Events() []event.Factory {
	return []event.Factory{event.For[TransferEvent]()}
}
