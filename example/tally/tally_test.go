package tally

import (
	"testing"

	"github.com/holiman/uint256"

	"github.com/blockberries/chainxt/event"
	"github.com/blockberries/chainxt/local"
	"github.com/blockberries/chainxt/modules/balances"
	chainxttest "github.com/blockberries/chainxt/testing"
	"github.com/blockberries/chainxt/types"
)

var (
	alice = types.AccountID{0xa1}
	bob   = types.AccountID{0xb0}
)

func transfer(from, to types.AccountID, amount uint64) types.RawEvent {
	return event.MustRaw(&balances.TransferEvent{From: from, To: to, Amount: uint256.NewInt(amount)}, types.DefaultRuntime())
}

func newFilter(t *testing.T) *event.Filter {
	t.Helper()
	f := event.NewFilter(types.DefaultRuntime())
	if err := Register(f); err != nil {
		t.Fatalf("register: %v", err)
	}
	return f
}

func TestTally_Transfers(t *testing.T) {
	chain := local.New()
	chain.Produce(transfer(alice, bob, 30))
	chain.Produce(transfer(bob, alice, 5), transfer(alice, bob, 7))

	tl := New()
	h := chainxttest.NewHarness(t, chain, newFilter(t))
	for _, b := range h.Poll(1, 3) {
		if err := tl.Handle(t.Context(), b); err != nil {
			t.Fatalf("handle %s: %v", b.Cursor, err)
		}
	}

	if got := tl.Transfers(); got != 3 {
		t.Fatalf("expected 3 transfers, got %d", got)
	}
	a := tl.Account(alice)
	if a.Sent.Uint64() != 37 || a.Received.Uint64() != 5 {
		t.Errorf("alice: sent %s received %s", &a.Sent, &a.Received)
	}
	b := tl.Account(bob)
	if b.Sent.Uint64() != 5 || b.Received.Uint64() != 37 {
		t.Errorf("bob: sent %s received %s", &b.Sent, &b.Received)
	}
	if got := tl.Account(types.AccountID{0xff}); !got.Sent.IsZero() {
		t.Errorf("unknown account has totals")
	}
}

func TestTally_DigestDeterministic(t *testing.T) {
	chain := local.New()
	chain.Produce(transfer(alice, bob, 1))
	chain.Produce()

	run := func() *Tally {
		tl := New()
		h := chainxttest.NewHarness(t, chain, newFilter(t))
		for _, b := range h.Poll(1, 3) {
			if err := tl.Handle(t.Context(), b); err != nil {
				t.Fatal(err)
			}
		}
		return tl
	}
	a, b := run(), run()
	if a.Digest() != b.Digest() {
		t.Fatalf("digests differ: %s vs %s", a.Digest(), b.Digest())
	}
	if a.Digest() == New().Digest() {
		t.Fatal("digest did not change after blocks")
	}
}
