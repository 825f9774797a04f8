// Package tally is a minimal event consumer that totals balance
// transfers per account. It demonstrates wiring a poller handler to the
// Balances event family and nothing else.
package tally

import (
	"context"
	"encoding/binary"
	"sync"

	"github.com/holiman/uint256"
	"golang.org/x/crypto/blake2b"

	"github.com/blockberries/chainxt/event"
	"github.com/blockberries/chainxt/modules/balances"
	"github.com/blockberries/chainxt/poller"
	"github.com/blockberries/chainxt/types"
)

// Compile-time check that Handle is a poller handler.
var _ poller.Handler = (*Tally)(nil).Handle

// Totals is what an account sent and received.
type Totals struct {
	Sent     uint256.Int
	Received uint256.Int
}

// Tally accumulates Balances.Transfer events block by block.
type Tally struct {
	mu        sync.RWMutex
	accounts  map[types.AccountID]*Totals
	transfers uint64
	next      uint32 // next block index expected
	digest    types.Hash
}

// New creates an empty tally.
func New() *Tally {
	return &Tally{
		accounts: make(map[types.AccountID]*Totals),
		digest:   computeDigest(0, 0),
	}
}

// Register adds the events the tally consumes to f.
func Register(f *event.Filter) error {
	for _, fac := range balances.Events() {
		if err := f.Register(fac); err != nil {
			return err
		}
	}
	return nil
}

// Handle applies one block. Matches that failed to decode are ignored;
// the poller has already logged them.
func (t *Tally) Handle(_ context.Context, ev poller.BlockEvents) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, m := range ev.Matches {
		tr, ok := m.Event.(*balances.TransferEvent)
		if !ok {
			continue
		}
		from, to := t.account(tr.From), t.account(tr.To)
		from.Sent.Add(&from.Sent, tr.Amount)
		to.Received.Add(&to.Received, tr.Amount)
		t.transfers++
	}
	t.next = ev.Cursor.Index + 1
	t.digest = computeDigest(t.next, t.transfers)
	return nil
}

// account must be called with mu held.
func (t *Tally) account(id types.AccountID) *Totals {
	a, ok := t.accounts[id]
	if !ok {
		a = new(Totals)
		t.accounts[id] = a
	}
	return a
}

// Account returns a copy of the totals for id.
func (t *Tally) Account(id types.AccountID) Totals {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if a, ok := t.accounts[id]; ok {
		return *a
	}
	return Totals{}
}

// Transfers returns the number of transfers seen.
func (t *Tally) Transfers() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.transfers
}

// Digest summarizes how far the tally got and how much it saw. Two
// tallies fed the same blocks have the same digest.
func (t *Tally) Digest() types.Hash {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.digest
}

func computeDigest(next uint32, transfers uint64) types.Hash {
	var buf [12]byte
	binary.BigEndian.PutUint32(buf[:4], next)
	binary.BigEndian.PutUint64(buf[4:], transfers)
	return types.Hash(blake2b.Sum256(buf[:]))
}
