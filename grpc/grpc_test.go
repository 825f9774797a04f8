package chainxtgrpc_test

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/blockberries/chainxt"
	"github.com/blockberries/chainxt/calls"
	"github.com/blockberries/chainxt/event"
	chainxtgrpc "github.com/blockberries/chainxt/grpc"
	"github.com/blockberries/chainxt/local"
	"github.com/blockberries/chainxt/modules/balances"
	chainxttest "github.com/blockberries/chainxt/testing"
	"github.com/blockberries/chainxt/types"
)

// startServer serves backend on a random port and returns its address.
func startServer(t *testing.T, backend chainxtgrpc.Backend) string {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := grpc.NewServer()
	chainxtgrpc.NewServer(backend, zaptest.NewLogger(t)).Register(s)
	go func() {
		_ = s.Serve(lis)
	}()
	t.Cleanup(s.GracefulStop)
	return lis.Addr().String()
}

func dial(t *testing.T, addr string, opts ...chainxtgrpc.Option) *chainxtgrpc.Client {
	t.Helper()
	opts = append(opts, chainxtgrpc.WithDialOptions(grpc.WithTransportCredentials(insecure.NewCredentials())))
	client, err := chainxtgrpc.Dial(addr, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestGRPC_Compliance(t *testing.T) {
	chainxttest.RunNodeComplianceSuite(t, func(t *testing.T) (chainxt.Node, chainxttest.Producer) {
		chain := local.New()
		return dial(t, startServer(t, chain)), chain
	})
}

func TestGRPC_PollOverLoopback(t *testing.T) {
	chain := local.New()
	client := dial(t, startServer(t, chain))
	rt := types.DefaultRuntime()

	for i := uint64(1); i <= 3; i++ {
		chain.Produce(event.MustRaw(&balances.TransferEvent{
			From:   types.AccountID{1},
			To:     types.AccountID{2},
			Amount: uint256.NewInt(i),
		}, rt))
	}
	chain.ProduceEntries([]byte{0xff})

	h := chainxttest.NewHarness(t, client, event.NewFilter(rt).MustRegister(balances.Events()...))
	blocks := h.Poll(1, 5)
	require.Len(t, blocks, 4)
	for i, b := range blocks[:3] {
		require.Len(t, b.Matches, 1)
		assert.Equal(t, uint64(i+1), b.Matches[0].Event.(*balances.TransferEvent).Amount.Uint64())
	}
	assert.Len(t, blocks[3].Skipped, 1)
	assert.Empty(t, h.Sleeps())
}

func TestGRPC_SubmitReachesChain(t *testing.T) {
	chain := local.New()
	client := dial(t, startServer(t, chain))

	call, err := balances.New(calls.NewBuilder(types.DefaultRuntime())).Transfer(types.AccountID{3}, uint256.NewInt(10))
	require.NoError(t, err)
	payload := call.Encode()

	res, err := client.Submit(context.Background(), payload)
	require.NoError(t, err)
	assert.NotEqual(t, types.Hash{}, res.Hash)
	require.Len(t, chain.Pending(), 1)
	assert.True(t, payload.Equal(chain.Pending()[0]))
}

func TestGRPC_UnknownBlock(t *testing.T) {
	client := dial(t, startServer(t, local.New()))
	_, err := client.FetchEventLog(context.Background(), types.Hash{0x77})
	te, ok := chainxt.IsTransportUnavailable(err)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, "fetch event log", te.Op)
	assert.ErrorIs(t, err, chainxt.ErrUnknownBlock)
}

type failingBackend struct{ err error }

func (f failingBackend) ResolveBlockHash(context.Context, uint32) (*types.Hash, error) {
	return nil, f.err
}

func (f failingBackend) EventLogEntries(context.Context, types.Hash) ([][]byte, error) {
	return nil, f.err
}

func (f failingBackend) Submit(context.Context, types.EncodedPayload) (types.SubmitResult, error) {
	return types.SubmitResult{}, f.err
}

func TestGRPC_BackendFailureIsTransportUnavailable(t *testing.T) {
	client := dial(t, startServer(t, failingBackend{err: errors.New("disk full")}))
	_, err := client.ResolveBlockHash(context.Background(), 1)
	te, ok := chainxt.IsTransportUnavailable(err)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, uint32(1), te.Index)
	assert.Contains(t, err.Error(), "disk full")

	_, err = client.Submit(context.Background(), types.EncodedPayload{0})
	_, ok = chainxt.IsTransportUnavailable(err)
	assert.True(t, ok)
}

func TestGRPC_ServerDown(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := lis.Addr().String()
	require.NoError(t, lis.Close())

	client := dial(t, addr)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err = client.ResolveBlockHash(ctx, 1)
	_, ok := chainxt.IsTransportUnavailable(err)
	assert.True(t, ok, "got %v", err)
}

func TestGRPC_RateLimitRespectsContext(t *testing.T) {
	chain := local.New()
	client := dial(t, startServer(t, chain), chainxtgrpc.WithRateLimit(rate.Every(time.Hour), 1))

	_, err := client.ResolveBlockHash(context.Background(), 0)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = client.ResolveBlockHash(ctx, 0)
	require.Error(t, err)
	_, ok := chainxt.IsTransportUnavailable(err)
	assert.False(t, ok, "rate limit waits are not transport failures")
}
