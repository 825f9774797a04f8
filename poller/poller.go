// Package poller drives the block-by-block event loop.
//
// A Poller trails a growing block sequence. For each index below the
// limit it resolves the block hash, fetches and filters the block's
// event log, hands the matches to a Handler and only then advances the
// cursor. A block that has not been produced yet is retried after a
// fixed backoff. Cancellation never leaves a partially advanced cursor.
//
// The poller persists nothing. Callers that need to resume after a
// restart checkpoint the cursor themselves, for example with package
// checkpoint.
package poller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/blockberries/chainxt"
	"github.com/blockberries/chainxt/event"
	"github.com/blockberries/chainxt/types"
)

// DefaultBackoff is the wait before retrying a block that was not yet
// produced.
const DefaultBackoff = 10 * time.Second

// ErrBusy is returned by Run while another Run on the same Poller is in
// progress.
var ErrBusy = errors.New("poller: already running")

// BlockEvents is everything one block contributed: the filter's matches
// in log order plus the entries that had to be skipped.
type BlockEvents struct {
	Cursor  types.BlockCursor // Index and resolved hash of the block.
	Matches []event.Match
	Entries int
	Skipped []error
}

// Handler receives each block's events in index order. Returning an
// error stops the run without advancing past the block.
type Handler func(ctx context.Context, ev BlockEvents) error

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Option configures a Poller.
type Option func(*Poller)

// WithBackoff sets the retry interval for blocks not yet produced.
func WithBackoff(d time.Duration) Option {
	return func(p *Poller) { p.backoff = d }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(p *Poller) { p.log = l }
}

// WithMetrics records progress in m.
func WithMetrics(m *Metrics) Option {
	return func(p *Poller) { p.metrics = m }
}

// WithSleeper replaces the backoff timer, mostly for tests.
func WithSleeper(s Sleeper) Option {
	return func(p *Poller) { p.sleep = s }
}

// Poller walks a BlockSource one block at a time. Its methods are safe
// for concurrent use, but only one Run may be in progress.
type Poller struct {
	src     chainxt.BlockSource
	filter  *event.Filter
	backoff time.Duration
	log     *zap.Logger
	metrics *Metrics
	sleep   Sleeper

	state   atomic.Uint32
	running atomic.Bool

	mu     sync.Mutex
	cursor types.BlockCursor
}

// New creates a poller reading src and decoding with filter.
func New(src chainxt.BlockSource, filter *event.Filter, opts ...Option) *Poller {
	p := &Poller{
		src:     src,
		filter:  filter,
		backoff: DefaultBackoff,
		log:     zap.NewNop(),
		sleep:   sleepCtx,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// State returns the current lifecycle state.
func (p *Poller) State() State { return State(p.state.Load()) }

// Cursor returns the position of the next block to deliver: the start
// of the current or last run, advanced past every delivered block.
func (p *Poller) Cursor() types.BlockCursor {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cursor
}

func (p *Poller) setCursor(c types.BlockCursor) {
	p.mu.Lock()
	p.cursor = c
	p.mu.Unlock()
	p.metrics.setCursor(c)
}

// Step attempts the block at cursor once. If the block exists it returns
// its filtered events and true. If it has not been produced yet Step
// sleeps for the backoff interval and returns false. Step never delivers
// or advances anything.
func (p *Poller) Step(ctx context.Context, cursor types.BlockCursor) (BlockEvents, bool, error) {
	hash, err := p.src.ResolveBlockHash(ctx, cursor.Index)
	if err != nil {
		return BlockEvents{}, false, p.transportErr(ctx, "resolve block hash", cursor.Index, err)
	}
	if hash == nil {
		p.log.Debug("block not produced yet, backing off",
			zap.Uint32("index", cursor.Index),
			zap.Duration("backoff", p.backoff),
		)
		p.metrics.backoff()
		if err := p.sleep(ctx, p.backoff); err != nil {
			return BlockEvents{}, false, err
		}
		return BlockEvents{}, false, nil
	}

	log, err := p.src.FetchEventLog(ctx, *hash)
	if err != nil {
		return BlockEvents{}, false, p.transportErr(ctx, "fetch event log", cursor.Index, err)
	}
	res := p.filter.Scan(log)
	if err := ctx.Err(); err != nil {
		return BlockEvents{}, false, err
	}

	ev := BlockEvents{
		Cursor:  cursor.Resolved(*hash),
		Matches: res.Matches,
		Entries: res.Entries,
		Skipped: res.Skipped,
	}
	for _, skipped := range res.Skipped {
		p.log.Warn("skipping corrupt event log entry",
			zap.Uint32("index", cursor.Index),
			zap.Error(skipped),
		)
	}
	for _, m := range res.Matches {
		if m.Err != nil {
			p.log.Warn("event payload does not match schema",
				zap.Uint32("index", cursor.Index),
				zap.Int("entry", m.Index),
				zap.Stringer("descriptor", m.Raw.Descriptor()),
				zap.Error(m.Err),
			)
		}
	}
	return ev, true, nil
}

// Run processes blocks from start up to, not including, limit and
// returns the cursor it stopped at. On success that is limit. On error
// it is the first block that was not fully delivered, so a caller can
// restart from it without skipping or repeating a block.
//
// A hard transport error is returned as a *chainxt.TransportUnavailableError.
// Context cancellation and handler errors are returned unchanged.
func (p *Poller) Run(ctx context.Context, start, limit uint32, h Handler) (types.BlockCursor, error) {
	if !p.running.CompareAndSwap(false, true) {
		return types.BlockCursor{}, ErrBusy
	}
	defer p.running.Store(false)

	cursor := types.NewCursor(start)
	p.setCursor(cursor)
	p.state.Store(uint32(StateAwaitingBlock))
	p.log.Info("poller started",
		zap.Uint32("start", start),
		zap.Uint32("limit", limit),
	)

	for cursor.Index < limit {
		ev, ok, err := p.Step(ctx, cursor)
		if err != nil {
			p.state.Store(uint32(StateIdle))
			p.log.Info("poller stopped", zap.Stringer("cursor", cursor), zap.Error(err))
			return cursor, err
		}
		if !ok {
			continue
		}
		if err := h(ctx, ev); err != nil {
			p.state.Store(uint32(StateIdle))
			p.log.Warn("handler failed", zap.Stringer("cursor", cursor), zap.Error(err))
			return cursor, err
		}
		cursor = cursor.Advance()
		p.metrics.delivered(ev, cursor)
		p.setCursor(cursor)
	}

	p.state.Store(uint32(StateDone))
	p.log.Info("poller reached limit", zap.Uint32("limit", limit))
	return cursor, nil
}

func (p *Poller) transportErr(ctx context.Context, op string, index uint32, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if te, ok := chainxt.IsTransportUnavailable(err); ok {
		return chainxt.NewTransportUnavailable(te.Op, index, te.Err)
	}
	return chainxt.NewTransportUnavailable(op, index, err)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
