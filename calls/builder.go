// Package calls builds encoded calls addressed to runtime modules.
//
// A Builder is bound once to a runtime description. Each call family
// asks the Builder for a ModuleCalls handle naming the capabilities it
// needs; the capability check happens there, before any argument is
// encoded. Builders and the handles they return hold no mutable state
// and are safe for concurrent use.
package calls

import (
	"fmt"

	"github.com/blockberries/chainxt/codec"
	"github.com/blockberries/chainxt/types"
)

// Builder produces call families for one target runtime.
type Builder struct {
	rt   types.Runtime
	caps types.Capabilities
}

// NewBuilder binds a builder to rt. The runtime's capabilities are
// derived once here.
func NewBuilder(rt types.Runtime) *Builder {
	return &Builder{rt: rt, caps: rt.Capabilities()}
}

// Runtime returns the bound runtime description.
func (b *Builder) Runtime() types.Runtime { return b.rt }

// Capabilities returns the capabilities the bound runtime satisfies.
func (b *Builder) Capabilities() types.Capabilities { return b.caps }

// Module returns the call handle for a module requiring the given
// capabilities. If the runtime lacks any of them the handle carries a
// *types.MissingCapabilityError and every call built from it fails.
func (b *Builder) Module(name string, required types.Capabilities) *ModuleCalls {
	return &ModuleCalls{
		module:   name,
		required: required,
		err:      b.rt.Require(required),
	}
}

// ModuleCalls builds calls addressed to a single module.
type ModuleCalls struct {
	module   string
	required types.Capabilities
	err      error
}

// Name returns the module name.
func (m *ModuleCalls) Name() string { return m.module }

// Required returns the capabilities the module was bound with.
func (m *ModuleCalls) Required() types.Capabilities { return m.required }

// Err returns the capability error, if any, without building a call.
func (m *ModuleCalls) Err() error { return m.err }

// Call encodes args in order and addresses them to function. It fails
// only when the module's capability check failed.
func (m *ModuleCalls) Call(function string, args ...codec.Encodable) (types.Call, error) {
	if m.err != nil {
		return types.Call{}, fmt.Errorf("build %s.%s: %w", m.module, function, m.err)
	}
	encoded := make([][]byte, len(args))
	for i, a := range args {
		encoded[i] = codec.Encode(a)
	}
	return types.NewCall(m.module, function, encoded...), nil
}
