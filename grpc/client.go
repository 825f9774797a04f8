package chainxtgrpc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/blockberries/chainxt"
	"github.com/blockberries/chainxt/types"
)

// Compile-time interface check.
var _ chainxt.Node = (*Client)(nil)

// Client implements chainxt.Node for a remote node over gRPC using
// cramberry serialization. Every failed RPC is reported as a
// *chainxt.TransportUnavailableError unless the caller's context ended.
type Client struct {
	cc      *grpc.ClientConn
	limiter *rate.Limiter
	log     *zap.Logger
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	dial    []grpc.DialOption
	limiter *rate.Limiter
	log     *zap.Logger
}

// WithDialOptions passes options through to grpc.NewClient.
func WithDialOptions(opts ...grpc.DialOption) Option {
	return func(o *clientOptions) { o.dial = append(o.dial, opts...) }
}

// WithRateLimit caps the client at r requests per second with the given
// burst. Waiting for a token respects the call's context.
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(o *clientOptions) { o.limiter = rate.NewLimiter(r, burst) }
}

// WithLogger sets the client logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *clientOptions) { o.log = l }
}

// Dial creates a client for the node at addr. The connection is
// established lazily on the first call.
func Dial(addr string, opts ...Option) (*Client, error) {
	o := clientOptions{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	dial := append(o.dial, grpc.WithDefaultCallOptions(
		grpc.ForceCodec(CramberryCodec{}),
	))
	cc, err := grpc.NewClient(addr, dial...)
	if err != nil {
		return nil, fmt.Errorf("chainxt client: dial %s: %w", addr, err)
	}
	return &Client{cc: cc, limiter: o.limiter, log: o.log}, nil
}

func (c *Client) Close() error {
	return c.cc.Close()
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

// transportErr classifies an RPC failure. Context errors pass through
// so cancellation is never mistaken for an unavailable node.
func (c *Client) transportErr(ctx context.Context, op string, index uint32, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if st, ok := status.FromError(err); ok && st.Code() == codes.NotFound {
		err = fmt.Errorf("%w: %s", chainxt.ErrUnknownBlock, st.Message())
	}
	c.log.Debug("rpc failed", zap.String("op", op), zap.Uint32("index", index), zap.Error(err))
	return chainxt.NewTransportUnavailable(op, index, err)
}

func (c *Client) ResolveBlockHash(ctx context.Context, index uint32) (*types.Hash, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	resp := new(ResolveBlockHashResponse)
	err := c.cc.Invoke(ctx, fullMethod("ResolveBlockHash"), &ResolveBlockHashRequest{Index: index}, resp)
	if err != nil {
		return nil, c.transportErr(ctx, "resolve block hash", index, err)
	}
	if !resp.Found {
		return nil, nil
	}
	h := resp.Hash
	return &h, nil
}

// FetchEventLog receives the whole log before returning, so a broken
// stream is a transport error rather than a skipped entry. Entries are
// parsed lazily as the sequence is consumed.
func (c *Client) FetchEventLog(ctx context.Context, hash types.Hash) (iter.Seq2[types.RawEvent, error], error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	stream, err := c.cc.NewStream(ctx, &fetchEventLogStream, fullMethod("FetchEventLog"))
	if err != nil {
		return nil, c.transportErr(ctx, "fetch event log", 0, err)
	}
	if err := stream.SendMsg(&FetchEventLogRequest{Hash: hash}); err != nil {
		return nil, c.transportErr(ctx, "fetch event log", 0, err)
	}
	if err := stream.CloseSend(); err != nil {
		return nil, c.transportErr(ctx, "fetch event log", 0, err)
	}

	var entries [][]byte
	for {
		entry := new(EventLogEntry)
		if err := stream.RecvMsg(entry); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, c.transportErr(ctx, "fetch event log", 0, err)
		}
		entries = append(entries, entry.Data)
	}
	return types.ParseEventLog(entries), nil
}

func (c *Client) Submit(ctx context.Context, payload types.EncodedPayload) (types.SubmitResult, error) {
	if err := c.wait(ctx); err != nil {
		return types.SubmitResult{}, err
	}
	resp := new(types.SubmitResult)
	if err := c.cc.Invoke(ctx, fullMethod("Submit"), &SubmitRequest{Payload: payload}, resp); err != nil {
		return types.SubmitResult{}, c.transportErr(ctx, "submit", 0, err)
	}
	return *resp, nil
}
