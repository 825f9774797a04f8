package chainxtgrpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"

	"github.com/blockberries/chainxt/types"
)

const serviceName = "chainxt.v1.Node"

// NodeServer is the server-side interface of the Node service.
type NodeServer interface {
	ResolveBlockHash(context.Context, *ResolveBlockHashRequest) (*ResolveBlockHashResponse, error)
	FetchEventLog(*FetchEventLogRequest, grpc.ServerStream) error
	Submit(context.Context, *SubmitRequest) (*types.SubmitResult, error)
}

// RegisterNodeServer registers srv on a gRPC server.
func RegisterNodeServer(s grpc.ServiceRegistrar, srv NodeServer) {
	s.RegisterService(&serviceDesc, srv)
}

func handlerResolveBlockHash(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	req := new(ResolveBlockHashRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(NodeServer).ResolveBlockHash(ctx, req)
}

func handlerFetchEventLog(srv any, stream grpc.ServerStream) error {
	req := new(FetchEventLogRequest)
	if err := stream.RecvMsg(req); err != nil {
		return err
	}
	return srv.(NodeServer).FetchEventLog(req, stream)
}

func handlerSubmit(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	req := new(SubmitRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(NodeServer).Submit(ctx, req)
}

// fullMethod builds the full gRPC method path.
func fullMethod(method string) string {
	return fmt.Sprintf("/%s/%s", serviceName, method)
}

var fetchEventLogStream = grpc.StreamDesc{
	StreamName:    "FetchEventLog",
	Handler:       handlerFetchEventLog,
	ServerStreams: true,
}

// serviceDesc is the manual gRPC service descriptor for the Node service.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*NodeServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ResolveBlockHash", Handler: handlerResolveBlockHash},
		{MethodName: "Submit", Handler: handlerSubmit},
	},
	Streams:  []grpc.StreamDesc{fetchEventLogStream},
	Metadata: "chainxt/v1/node.cram",
}
