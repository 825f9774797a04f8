// Package system provides calls and events of the runtime's System
// module, which every runtime with accounts and hashes exposes.
package system

import (
	"github.com/blockberries/chainxt/calls"
	"github.com/blockberries/chainxt/codec"
	"github.com/blockberries/chainxt/event"
	"github.com/blockberries/chainxt/types"
)

// ModuleName is the System module's name tag.
const ModuleName = "System"

// Required is the capability set System calls need.
const Required = types.CapSystem

// Calls builds System module calls.
type Calls struct {
	m *calls.ModuleCalls
}

// New binds the System call family to b's runtime.
func New(b *calls.Builder) *Calls {
	return &Calls{m: b.Module(ModuleName, Required)}
}

// Err reports whether the bound runtime lacks a required capability.
func (c *Calls) Err() error { return c.m.Err() }

// Remark builds a call that records data on chain and does nothing else.
func (c *Calls) Remark(data []byte) (types.Call, error) {
	return c.m.Call("remark", codec.Bytes(data))
}

// RemarkShapes are the argument shapes of Remark.
var RemarkShapes = []codec.Shape{codec.BytesShape()}

// ExtrinsicSuccess is emitted for each extrinsic that dispatched cleanly.
type ExtrinsicSuccess struct{}

func (*ExtrinsicSuccess) Descriptor() types.EventDescriptor {
	return types.EventDescriptor{Module: ModuleName, Event: "ExtrinsicSuccess"}
}

func (*ExtrinsicSuccess) EncodePayload(*codec.Encoder, types.Runtime) error { return nil }

func (*ExtrinsicSuccess) DecodePayload(*codec.Decoder, types.Runtime) error { return nil }

// ExtrinsicFailed is emitted when the extrinsic at Index failed to dispatch.
type ExtrinsicFailed struct {
	Index  uint32
	Reason string
}

func (*ExtrinsicFailed) Descriptor() types.EventDescriptor {
	return types.EventDescriptor{Module: ModuleName, Event: "ExtrinsicFailed"}
}

func (ev *ExtrinsicFailed) EncodePayload(e *codec.Encoder, _ types.Runtime) error {
	e.PutU32(ev.Index)
	e.PutString(ev.Reason)
	return nil
}

func (ev *ExtrinsicFailed) DecodePayload(d *codec.Decoder, _ types.Runtime) error {
	var err error
	if ev.Index, err = d.U32(); err != nil {
		return err
	}
	ev.Reason, err = d.String()
	return err
}

// Events returns factories for every System event.
func Events() []event.Factory {
	return []event.Factory{
		event.For[ExtrinsicSuccess](),
		event.For[ExtrinsicFailed](),
	}
}
