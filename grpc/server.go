package chainxtgrpc

import (
	"context"
	"errors"
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/blockberries/chainxt"
	"github.com/blockberries/chainxt/types"
)

// Compile-time interface check.
var _ NodeServer = (*Server)(nil)

// Backend is the node-side implementation the server exposes. The
// in-process chain in package local implements it.
type Backend interface {
	ResolveBlockHash(ctx context.Context, index uint32) (*types.Hash, error)
	EventLogEntries(ctx context.Context, hash types.Hash) ([][]byte, error)
	Submit(ctx context.Context, payload types.EncodedPayload) (types.SubmitResult, error)
}

// Server exposes a Backend as the Node gRPC service.
type Server struct {
	backend Backend
	log     *zap.Logger
}

// NewServer creates a server for backend. A nil logger discards.
func NewServer(backend Backend, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{backend: backend, log: log}
}

// Register adds the Node service to a gRPC server.
func (s *Server) Register(gs *grpc.Server) {
	RegisterNodeServer(gs, s)
}

// Serve starts a gRPC server on lis and blocks until it stops.
func (s *Server) Serve(lis net.Listener, opts ...grpc.ServerOption) error {
	gs := grpc.NewServer(opts...)
	s.Register(gs)
	s.log.Info("serving node", zap.Stringer("addr", lis.Addr()))
	return gs.Serve(lis)
}

func (s *Server) ResolveBlockHash(ctx context.Context, req *ResolveBlockHashRequest) (*ResolveBlockHashResponse, error) {
	h, err := s.backend.ResolveBlockHash(ctx, req.Index)
	if err != nil {
		return nil, s.statusErr("ResolveBlockHash", err)
	}
	if h == nil {
		return &ResolveBlockHashResponse{}, nil
	}
	return &ResolveBlockHashResponse{Found: true, Hash: *h}, nil
}

func (s *Server) FetchEventLog(req *FetchEventLogRequest, stream grpc.ServerStream) error {
	entries, err := s.backend.EventLogEntries(stream.Context(), req.Hash)
	if err != nil {
		return s.statusErr("FetchEventLog", err)
	}
	for _, e := range entries {
		if err := stream.SendMsg(&EventLogEntry{Data: e}); err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) Submit(ctx context.Context, req *SubmitRequest) (*types.SubmitResult, error) {
	res, err := s.backend.Submit(ctx, req.Payload)
	if err != nil {
		return nil, s.statusErr("Submit", err)
	}
	return &res, nil
}

func (s *Server) statusErr(method string, err error) error {
	switch {
	case errors.Is(err, chainxt.ErrUnknownBlock):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	}
	s.log.Warn("backend failed", zap.String("method", method), zap.Error(err))
	return status.Error(codes.Unavailable, err.Error())
}
