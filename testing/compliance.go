package chainxttest

import (
	"context"
	"errors"
	"testing"

	"github.com/holiman/uint256"

	"github.com/blockberries/chainxt"
	"github.com/blockberries/chainxt/event"
	"github.com/blockberries/chainxt/modules/balances"
	"github.com/blockberries/chainxt/types"
)

// Producer appends blocks to the chain behind a node under test.
type Producer interface {
	Produce(events ...types.RawEvent) (uint32, types.Hash)
}

// RunNodeComplianceSuite checks that a node transport honors the block
// source contract. The factory must return a fresh node and the producer
// feeding it for each subtest.
func RunNodeComplianceSuite(t *testing.T, factory func(t *testing.T) (chainxt.Node, Producer)) {
	t.Helper()
	ctx := context.Background()
	rt := types.DefaultRuntime()

	t.Run("unproduced_block_resolves_to_nil", func(t *testing.T) {
		node, _ := factory(t)
		h, err := node.ResolveBlockHash(ctx, 1_000_000)
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if h != nil {
			t.Fatalf("expected no hash for unproduced block, got %s", h)
		}
	})

	t.Run("produced_block_resolves", func(t *testing.T) {
		node, prod := factory(t)
		index, want := prod.Produce()
		h, err := node.ResolveBlockHash(ctx, index)
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if h == nil || *h != want {
			t.Fatalf("resolve #%d: got %v, want %s", index, h, want)
		}
	})

	t.Run("event_log_in_order", func(t *testing.T) {
		node, prod := factory(t)
		var events []types.RawEvent
		for i := uint64(1); i <= 3; i++ {
			events = append(events, event.MustRaw(&balances.TransferEvent{
				From:   types.AccountID{byte(i)},
				To:     types.AccountID{byte(i + 1)},
				Amount: uint256.NewInt(i * 100),
			}, rt))
		}
		_, hash := prod.Produce(events...)
		log, err := node.FetchEventLog(ctx, hash)
		if err != nil {
			t.Fatalf("fetch: %v", err)
		}
		f := event.NewFilter(rt).MustRegister(balances.Events()...)
		res := f.Scan(log)
		if len(res.Skipped) != 0 {
			t.Fatalf("unexpected skipped entries: %v", res.Skipped)
		}
		if len(res.Matches) != 3 {
			t.Fatalf("got %d matches, want 3", len(res.Matches))
		}
		for i, m := range res.Matches {
			tr := m.Event.(*balances.TransferEvent)
			if got := tr.Amount.Uint64(); got != uint64(i+1)*100 {
				t.Errorf("match %d: amount %d, want %d", i, got, (i+1)*100)
			}
		}
	})

	t.Run("unknown_hash_is_ErrUnknownBlock", func(t *testing.T) {
		node, prod := factory(t)
		prod.Produce()
		_, err := node.FetchEventLog(ctx, types.Hash{0xde, 0xad})
		if !errors.Is(err, chainxt.ErrUnknownBlock) {
			t.Fatalf("fetch unknown hash: got %v, want ErrUnknownBlock", err)
		}
	})

	t.Run("distinct_blocks_distinct_hashes", func(t *testing.T) {
		node, prod := factory(t)
		a, _ := prod.Produce()
		b, _ := prod.Produce()
		ha, err := node.ResolveBlockHash(ctx, a)
		if err != nil || ha == nil {
			t.Fatalf("resolve #%d: %v %v", a, ha, err)
		}
		hb, err := node.ResolveBlockHash(ctx, b)
		if err != nil || hb == nil {
			t.Fatalf("resolve #%d: %v %v", b, hb, err)
		}
		if *ha == *hb {
			t.Fatalf("blocks #%d and #%d share hash %s", a, b, ha)
		}
	})

	t.Run("submit", func(t *testing.T) {
		node, _ := factory(t)
		res, err := node.Submit(ctx, types.EncodedPayload{0x18, 'S', 'y', 's', 't', 'e', 'm'})
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		if res.Hash == (types.Hash{}) {
			t.Error("submit returned zero hash")
		}
	})
}
