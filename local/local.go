// Package local provides an in-process chain that implements the node
// transport without any serialization to the network.
//
// Chain is append-only: blocks are produced explicitly, each carrying the
// event log handed to Produce plus a System.ExtrinsicSuccess entry for
// every payload submitted since the previous block. It backs tests, the
// gRPC loopback server and local tooling.
package local

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sync"

	"golang.org/x/crypto/blake2b"

	"github.com/blockberries/chainxt"
	"github.com/blockberries/chainxt/codec"
	"github.com/blockberries/chainxt/event"
	"github.com/blockberries/chainxt/modules/system"
	"github.com/blockberries/chainxt/types"
)

// Compile-time interface check.
var _ chainxt.Node = (*Chain)(nil)

// ErrClosed is returned by every call after Close.
var ErrClosed = errors.New("local: chain closed")

type block struct {
	hash       types.Hash
	entries    [][]byte
	extrinsics []types.EncodedPayload
}

// Chain is an in-memory block sequence. Safe for concurrent use.
type Chain struct {
	mu      sync.RWMutex
	blocks  []block
	byHash  map[types.Hash]uint32
	pending []types.EncodedPayload
	closed  bool
}

// New creates a chain holding only the genesis block at index 0.
func New() *Chain {
	c := &Chain{byHash: make(map[types.Hash]uint32)}
	c.appendBlock(nil, nil)
	return c
}

// Height returns the index of the latest block.
func (c *Chain) Height() uint32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return uint32(len(c.blocks) - 1)
}

// Produce appends a block whose log holds events in order, followed by
// one success event per pending extrinsic. It returns the new block's
// index and hash.
func (c *Chain) Produce(events ...types.RawEvent) (uint32, types.Hash) {
	entries := make([][]byte, len(events))
	for i, ev := range events {
		entries[i] = ev.Encode()
	}
	return c.ProduceEntries(entries...)
}

// ProduceEntries is like Produce but takes already encoded log entries,
// which need not be well formed.
func (c *Chain) ProduceEntries(entries ...[]byte) (uint32, types.Hash) {
	c.mu.Lock()
	defer c.mu.Unlock()

	extrinsics := c.pending
	c.pending = nil
	log := make([][]byte, 0, len(entries)+len(extrinsics))
	for _, e := range entries {
		log = append(log, append([]byte(nil), e...))
	}
	success := event.MustRaw(&system.ExtrinsicSuccess{}, types.DefaultRuntime()).Encode()
	for range extrinsics {
		log = append(log, success)
	}
	return c.appendBlock(log, extrinsics)
}

// appendBlock must be called with mu held.
func (c *Chain) appendBlock(entries [][]byte, extrinsics []types.EncodedPayload) (uint32, types.Hash) {
	index := uint32(len(c.blocks))
	e := codec.NewEncoder()
	if index > 0 {
		e.PutFixed(c.blocks[index-1].hash[:])
	}
	e.PutU32(index)
	e.PutCompact(uint64(len(entries)))
	for _, entry := range entries {
		e.PutBytes(entry)
	}
	hash := types.Hash(blake2b.Sum256(e.Bytes()))

	c.blocks = append(c.blocks, block{hash: hash, entries: entries, extrinsics: extrinsics})
	c.byHash[hash] = index
	return index, hash
}

// Pending returns the payloads waiting for the next block.
func (c *Chain) Pending() []types.EncodedPayload {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]types.EncodedPayload(nil), c.pending...)
}

// Extrinsics returns the payloads included in the block at index.
func (c *Chain) Extrinsics(index uint32) []types.EncodedPayload {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if int(index) >= len(c.blocks) {
		return nil
	}
	return append([]types.EncodedPayload(nil), c.blocks[index].extrinsics...)
}

func (c *Chain) ResolveBlockHash(ctx context.Context, index uint32) (*types.Hash, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, ErrClosed
	}
	if int(index) >= len(c.blocks) {
		return nil, nil
	}
	h := c.blocks[index].hash
	return &h, nil
}

// EventLogEntries returns the raw log of the block with the given hash.
func (c *Chain) EventLogEntries(ctx context.Context, hash types.Hash) ([][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, ErrClosed
	}
	index, ok := c.byHash[hash]
	if !ok {
		return nil, fmt.Errorf("%w: %s", chainxt.ErrUnknownBlock, hash)
	}
	return c.blocks[index].entries, nil
}

func (c *Chain) FetchEventLog(ctx context.Context, hash types.Hash) (iter.Seq2[types.RawEvent, error], error) {
	entries, err := c.EventLogEntries(ctx, hash)
	if err != nil {
		return nil, err
	}
	return types.ParseEventLog(entries), nil
}

// Submit queues payload for the next block. The result hash is the
// blake2b-256 of the payload.
func (c *Chain) Submit(ctx context.Context, payload types.EncodedPayload) (types.SubmitResult, error) {
	if err := ctx.Err(); err != nil {
		return types.SubmitResult{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return types.SubmitResult{}, ErrClosed
	}
	c.pending = append(c.pending, append(types.EncodedPayload(nil), payload...))
	return types.SubmitResult{Hash: types.Hash(blake2b.Sum256(payload))}, nil
}

func (c *Chain) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return nil
}
