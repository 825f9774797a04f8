// Package chainxttest provides test utilities for code built on
// chainxt: a configurable mock node, a poller harness and a compliance
// suite for node transports.
package chainxttest

import (
	"context"
	"encoding/binary"
	"fmt"
	"iter"
	"sync"
	"sync/atomic"

	"github.com/blockberries/chainxt"
	"github.com/blockberries/chainxt/types"
)

// Compile-time interface checks.
var (
	_ chainxt.Node = (*MockNode)(nil)
	_ Producer     = (*MockNode)(nil)
)

// MockNode is a configurable node for poller and client tests. Every
// method can be replaced via its function field. Unconfigured methods
// serve the blocks added with AddBlock.
type MockNode struct {
	mu      sync.Mutex
	blocks  map[uint32][][]byte
	misses  map[uint32]int
	pending []types.EncodedPayload

	ResolveBlockHashFn func(context.Context, uint32) (*types.Hash, error)
	FetchEventLogFn    func(context.Context, types.Hash) (iter.Seq2[types.RawEvent, error], error)
	SubmitFn           func(context.Context, types.EncodedPayload) (types.SubmitResult, error)

	// Call counters (atomic for concurrent access).
	ResolveCalls atomic.Int64
	FetchCalls   atomic.Int64
	SubmitCalls  atomic.Int64
}

// HashFor returns the hash the default MockNode reports for index.
func HashFor(index uint32) types.Hash {
	var h types.Hash
	h[0] = 0xb1
	binary.LittleEndian.PutUint32(h[1:], index)
	return h
}

func indexOf(h types.Hash) (uint32, bool) {
	if h[0] != 0xb1 {
		return 0, false
	}
	return binary.LittleEndian.Uint32(h[1:]), true
}

// AddBlock makes the block at index available with the given events.
func (m *MockNode) AddBlock(index uint32, events ...types.RawEvent) {
	entries := make([][]byte, len(events))
	for i, ev := range events {
		entries[i] = ev.Encode()
	}
	m.AddBlockEntries(index, entries...)
}

// AddBlockEntries makes the block at index available with raw log
// entries, which may be corrupt.
func (m *MockNode) AddBlockEntries(index uint32, entries ...[]byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.blocks == nil {
		m.blocks = make(map[uint32][][]byte)
	}
	m.blocks[index] = entries
}

// Produce adds a block one past the highest added so far, starting at
// index 1.
func (m *MockNode) Produce(events ...types.RawEvent) (uint32, types.Hash) {
	m.mu.Lock()
	next := uint32(1)
	for index := range m.blocks {
		if index >= next {
			next = index + 1
		}
	}
	m.mu.Unlock()
	m.AddBlock(next, events...)
	return next, HashFor(next)
}

// Delay makes the block at index unavailable for the next n resolve
// attempts, as if it had not been produced yet.
func (m *MockNode) Delay(index uint32, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.misses == nil {
		m.misses = make(map[uint32]int)
	}
	m.misses[index] = n
}

// Submitted returns every payload accepted by the default Submit.
func (m *MockNode) Submitted() []types.EncodedPayload {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]types.EncodedPayload(nil), m.pending...)
}

func (m *MockNode) ResolveBlockHash(ctx context.Context, index uint32) (*types.Hash, error) {
	m.ResolveCalls.Add(1)
	if m.ResolveBlockHashFn != nil {
		return m.ResolveBlockHashFn(ctx, index)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if n := m.misses[index]; n > 0 {
		m.misses[index] = n - 1
		return nil, nil
	}
	if _, ok := m.blocks[index]; !ok {
		return nil, nil
	}
	h := HashFor(index)
	return &h, nil
}

func (m *MockNode) FetchEventLog(ctx context.Context, hash types.Hash) (iter.Seq2[types.RawEvent, error], error) {
	m.FetchCalls.Add(1)
	if m.FetchEventLogFn != nil {
		return m.FetchEventLogFn(ctx, hash)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	index, ok := indexOf(hash)
	entries, found := m.blocks[index]
	if !ok || !found {
		return nil, fmt.Errorf("%w: %s", chainxt.ErrUnknownBlock, hash)
	}
	return types.ParseEventLog(entries), nil
}

func (m *MockNode) Submit(ctx context.Context, payload types.EncodedPayload) (types.SubmitResult, error) {
	m.SubmitCalls.Add(1)
	if m.SubmitFn != nil {
		return m.SubmitFn(ctx, payload)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = append(m.pending, payload)
	var h types.Hash
	binary.LittleEndian.PutUint32(h[:], uint32(len(m.pending)))
	return types.SubmitResult{Hash: h}, nil
}

func (m *MockNode) Close() error { return nil }
