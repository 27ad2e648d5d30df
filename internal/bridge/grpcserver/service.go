// Copyright (c) 2025 Sqlbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

package grpcserver

import (
	"context"

	"sqlbench/cli/internal/bridge/model"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// WorkbenchServer is the server API of the sqlbench.Workbench service.
type WorkbenchServer interface {
	Connect(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Disconnect(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Execute(*structpb.Struct, grpc.ServerStreamingServer[structpb.Struct]) error
	ExecuteLine(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterWorkbenchServer registers srv on s.
func RegisterWorkbenchServer(s grpc.ServiceRegistrar, srv WorkbenchServer) {
	s.RegisterService(&serviceDesc, srv)
}

type unaryMethod func(WorkbenchServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// unaryHandler adapts a WorkbenchServer method to a grpc method handler.
func unaryHandler(fullMethod string, call unaryMethod) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(WorkbenchServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(WorkbenchServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func executeHandler(srv any, stream grpc.ServerStream) error {
	in := new(structpb.Struct)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(WorkbenchServer).Execute(in, &grpc.GenericServerStream[structpb.Struct, structpb.Struct]{ServerStream: stream})
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: model.ServiceName,
	HandlerType: (*WorkbenchServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Connect", Handler: unaryHandler(model.MethodConnect, WorkbenchServer.Connect)},
		{MethodName: "Disconnect", Handler: unaryHandler(model.MethodDisconnect, WorkbenchServer.Disconnect)},
		{MethodName: "ExecuteLine", Handler: unaryHandler(model.MethodExecuteLine, WorkbenchServer.ExecuteLine)},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "Execute", Handler: executeHandler, ServerStreams: true},
	},
	Metadata: "sqlbench/workbench.proto",
}
