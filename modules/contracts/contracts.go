// Package contracts provides calls and events of the runtime's
// contract-hosting module.
//
// Only call construction happens here. Address derivation for new
// contracts and the existential-deposit minimum are runtime policy and
// are never checked locally.
package contracts

import (
	"github.com/holiman/uint256"
	"golang.org/x/crypto/blake2b"

	"github.com/blockberries/chainxt/calls"
	"github.com/blockberries/chainxt/codec"
	"github.com/blockberries/chainxt/event"
	"github.com/blockberries/chainxt/types"
)

const ModuleName = "Contracts"

// Required is the capability set contract calls need.
const Required = types.CapContracts

// Gas units are u64 so metering can operate on them directly.
type Gas = uint64

// Calls builds contract module calls.
type Calls struct {
	m *calls.ModuleCalls
}

// New binds the contract call family to b's runtime.
func New(b *calls.Builder) *Calls {
	return &Calls{m: b.Module(ModuleName, Required)}
}

func (c *Calls) Err() error { return c.m.Err() }

// StoreCode builds a call that stores code on chain. Once executed, the
// runtime emits CodeStored carrying the hash to pass to Create. The code
// is forwarded as opaque bytes.
func (c *Calls) StoreCode(gasLimit Gas, code []byte) (types.Call, error) {
	return c.m.Call("put_code", codec.Compact(gasLimit), codec.Bytes(code))
}

// Create builds a call that instantiates a contract from stored code.
//
// When executed the runtime derives the destination address from the
// sender and codeHash, transfers endowment to it, and runs data against
// the code referenced by codeHash. The new account's code becomes that
// program.
func (c *Calls) Create(endowment *uint256.Int, gasLimit Gas, codeHash types.Hash, data []byte) (types.Call, error) {
	return c.m.Call("create",
		codec.CompactInt(endowment),
		codec.Compact(gasLimit),
		codeHash,
		codec.Bytes(data),
	)
}

// Invoke builds a call to dest, optionally transferring value.
//
//   - If dest is a contract account its code runs with data and value
//     is transferred.
//   - If dest is a plain account value is transferred.
//   - If dest does not exist and value is at least the runtime's
//     existential deposit, the account is created and value transferred.
func (c *Calls) Invoke(dest types.AccountID, value *uint256.Int, gasLimit Gas, data []byte) (types.Call, error) {
	return c.m.Call("call",
		dest,
		codec.CompactInt(value),
		codec.Compact(gasLimit),
		codec.Bytes(data),
	)
}

// Argument shapes, for splitting encoded payloads.
var (
	StoreCodeShapes = []codec.Shape{codec.CompactShape(), codec.BytesShape()}
	CreateShapes    = []codec.Shape{codec.CompactShape(), codec.CompactShape(), codec.FixedShape(types.HashLen), codec.BytesShape()}
	InvokeShapes    = []codec.Shape{codec.FixedShape(types.HashLen), codec.CompactShape(), codec.CompactShape(), codec.BytesShape()}
)

// CodeHash returns the blake2b-256 hash of code, the reference the
// runtime reports in CodeStored.
func CodeHash(code []byte) types.Hash {
	return types.Hash(blake2b.Sum256(code))
}

// CodeStored is emitted when code has been stored.
type CodeStored struct {
	Hash types.Hash
}

func (*CodeStored) Descriptor() types.EventDescriptor {
	return types.EventDescriptor{Module: ModuleName, Event: "CodeStored"}
}

func (ev *CodeStored) EncodePayload(e *codec.Encoder, _ types.Runtime) error {
	ev.Hash.EncodeTo(e)
	return nil
}

func (ev *CodeStored) DecodePayload(d *codec.Decoder, _ types.Runtime) error {
	return ev.Hash.DecodeFrom(d)
}

// Instantiated is emitted when Deployer created the contract at Contract.
type Instantiated struct {
	Deployer types.AccountID
	Contract types.AccountID
}

func (*Instantiated) Descriptor() types.EventDescriptor {
	return types.EventDescriptor{Module: ModuleName, Event: "Instantiated"}
}

func (ev *Instantiated) EncodePayload(e *codec.Encoder, _ types.Runtime) error {
	ev.Deployer.EncodeTo(e)
	ev.Contract.EncodeTo(e)
	return nil
}

func (ev *Instantiated) DecodePayload(d *codec.Decoder, _ types.Runtime) error {
	if err := ev.Deployer.DecodeFrom(d); err != nil {
		return err
	}
	return ev.Contract.DecodeFrom(d)
}

// Events returns factories for every contract event.
func Events() []event.Factory {
	return []event.Factory{
		event.For[CodeStored](),
		event.For[Instantiated](),
	}
}
