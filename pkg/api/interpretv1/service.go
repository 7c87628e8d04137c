// Package interpretv1 defines the fdynamics.interpret.v1.Interpreter gRPC
// service.
//
// The service carries well-known protobuf types (structpb, wrapperspb) so it
// needs no generated message code. The descriptor below is what protoc-gen-go-grpc
// would emit for:
//
//	service Interpreter {
//	  rpc Interpret(google.protobuf.ListValue) returns (google.protobuf.Struct);
//	  rpc InterpretSource(google.protobuf.StringValue) returns (google.protobuf.Struct);
//	}
package interpretv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	ServiceName = "fdynamics.interpret.v1.Interpreter"

	InterpretMethod       = "/" + ServiceName + "/Interpret"
	InterpretSourceMethod = "/" + ServiceName + "/InterpretSource"
)

// InterpreterServer is the server API for the Interpreter service.
type InterpreterServer interface {
	// Interpret decodes a list of feature dynamics names.
	Interpret(context.Context, *structpb.ListValue) (*structpb.Struct, error)
	// InterpretSource decodes every column of the latest stored result for a source.
	InterpretSource(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
}

// UnimplementedInterpreterServer can be embedded for forward compatibility.
type UnimplementedInterpreterServer struct{}

func (UnimplementedInterpreterServer) Interpret(context.Context, *structpb.ListValue) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Interpret not implemented")
}

func (UnimplementedInterpreterServer) InterpretSource(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method InterpretSource not implemented")
}

// RegisterInterpreterServer registers srv on s.
func RegisterInterpreterServer(s grpc.ServiceRegistrar, srv InterpreterServer) {
	s.RegisterService(&Interpreter_ServiceDesc, srv)
}

func interpretHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.ListValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InterpreterServer).Interpret(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: InterpretMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(InterpreterServer).Interpret(ctx, req.(*structpb.ListValue))
	}
	return interceptor(ctx, in, info, handler)
}

func interpretSourceHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InterpreterServer).InterpretSource(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: InterpretSourceMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(InterpreterServer).InterpretSource(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

// Interpreter_ServiceDesc is the grpc.ServiceDesc for the Interpreter service.
var Interpreter_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*InterpreterServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Interpret",
			Handler:    interpretHandler,
		},
		{
			MethodName: "InterpretSource",
			Handler:    interpretSourceHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "fdynamics/interpret/v1/interpret.proto",
}
