package chainxttest

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/blockberries/chainxt"
	"github.com/blockberries/chainxt/event"
	"github.com/blockberries/chainxt/poller"
)

// Harness runs a poller against a block source without real sleeps and
// records everything it delivers.
type Harness struct {
	t      *testing.T
	Poller *poller.Poller

	mu     sync.Mutex
	sleeps []time.Duration
	blocks []poller.BlockEvents
}

// NewHarness creates a poller over src and filter. The backoff sleeper
// returns immediately and is recorded.
func NewHarness(t *testing.T, src chainxt.BlockSource, filter *event.Filter, opts ...poller.Option) *Harness {
	t.Helper()
	h := &Harness{t: t}
	base := []poller.Option{
		poller.WithLogger(zaptest.NewLogger(t)),
		poller.WithSleeper(h.sleep),
	}
	h.Poller = poller.New(src, filter, append(base, opts...)...)
	return h
}

func (h *Harness) sleep(ctx context.Context, d time.Duration) error {
	h.mu.Lock()
	h.sleeps = append(h.sleeps, d)
	h.mu.Unlock()
	return ctx.Err()
}

func (h *Harness) record(_ context.Context, ev poller.BlockEvents) error {
	h.mu.Lock()
	h.blocks = append(h.blocks, ev)
	h.mu.Unlock()
	return nil
}

// Poll runs the poller from start to limit and fails the test on error.
func (h *Harness) Poll(start, limit uint32) []poller.BlockEvents {
	h.t.Helper()
	before := len(h.Blocks())
	cursor, err := h.Poller.Run(context.Background(), start, limit, h.record)
	if err != nil {
		h.t.Fatalf("poll %d..%d failed at %s: %v", start, limit, cursor, err)
	}
	if cursor.Index != limit {
		h.t.Fatalf("poll stopped at %s, want #%d", cursor, limit)
	}
	return h.Blocks()[before:]
}

// Sleeps returns every backoff the poller requested.
func (h *Harness) Sleeps() []time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]time.Duration(nil), h.sleeps...)
}

// Blocks returns every delivered block in order.
func (h *Harness) Blocks() []poller.BlockEvents {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]poller.BlockEvents(nil), h.blocks...)
}

// Indices returns the index of every delivered block in order.
func (h *Harness) Indices() []uint32 {
	blocks := h.Blocks()
	out := make([]uint32, len(blocks))
	for i, b := range blocks {
		out[i] = b.Cursor.Index
	}
	return out
}
