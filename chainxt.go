// Package chainxt composes calls against a pluggable state-machine
// runtime and consumes its event log, block by block.
//
// The package itself only declares the boundary to the transport that
// talks to a node. Calls are built in package calls and the module
// families under modules/, events are decoded by package event, and
// package poller drives the block-by-block event loop.
//
// Nothing here executes a call: calls are inert encoded data until a
// Submitter sends them.
package chainxt

import (
	"context"
	"iter"

	"github.com/blockberries/chainxt/types"
)

// BlockSource is the read side of the transport the poller consumes.
//
// Implementations must be safe for use by a single poller goroutine;
// the poller never issues two requests at once.
type BlockSource interface {
	// ResolveBlockHash returns the hash of the block at index, or nil if
	// that block has not been produced yet. A non-nil error is a hard
	// transport failure and is not retried.
	ResolveBlockHash(ctx context.Context, index uint32) (*types.Hash, error)

	// FetchEventLog returns the block's event log as a lazy sequence.
	// Entries that fail to parse at the transport layer are yielded as
	// errors so the caller can skip them and keep scanning.
	FetchEventLog(ctx context.Context, hash types.Hash) (iter.Seq2[types.RawEvent, error], error)
}

// Submitter hands an encoded call to the runtime.
type Submitter interface {
	Submit(ctx context.Context, payload types.EncodedPayload) (types.SubmitResult, error)
}

// Node is a full transport connection to a runtime node. Both the gRPC
// client and the in-process chain implement it.
type Node interface {
	BlockSource
	Submitter

	// Close terminates the connection.
	Close() error
}
