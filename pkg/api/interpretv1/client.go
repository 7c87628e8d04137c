package interpretv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// InterpreterClient is the client API for the Interpreter service.
type InterpreterClient interface {
	Interpret(ctx context.Context, in *structpb.ListValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	InterpretSource(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type interpreterClient struct {
	cc grpc.ClientConnInterface
}

func NewInterpreterClient(cc grpc.ClientConnInterface) InterpreterClient {
	return &interpreterClient{cc: cc}
}

func (c *interpreterClient) Interpret(ctx context.Context, in *structpb.ListValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, InterpretMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *interpreterClient) InterpretSource(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, InterpretSourceMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
