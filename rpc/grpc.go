package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// SynchronizerServer is the server API for the Synchronizer gRPC service.
//
// We intentionally use protobuf well-known wrapper types so this package does
// not require a protoc/codegen toolchain.
//
// Proto definition: synchronizer.proto.
type SynchronizerServer interface {
	Execute(context.Context, *wrapperspb.BytesValue) (*wrapperspb.StringValue, error)
	Record(context.Context, *wrapperspb.StringValue) (*wrapperspb.BytesValue, error)
	Balance(context.Context, *wrapperspb.StringValue) (*wrapperspb.UInt64Value, error)
}

// UnimplementedSynchronizerServer can be embedded to have forward compatible
// implementations.
type UnimplementedSynchronizerServer struct{}

func (UnimplementedSynchronizerServer) Execute(context.Context, *wrapperspb.BytesValue) (*wrapperspb.StringValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Execute not implemented")
}
func (UnimplementedSynchronizerServer) Record(context.Context, *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Record not implemented")
}
func (UnimplementedSynchronizerServer) Balance(context.Context, *wrapperspb.StringValue) (*wrapperspb.UInt64Value, error) {
	return nil, status.Error(codes.Unimplemented, "method Balance not implemented")
}

// RegisterSynchronizerServer registers the Synchronizer service on a gRPC
// server.
func RegisterSynchronizerServer(s grpc.ServiceRegistrar, srv SynchronizerServer) {
	s.RegisterService(&Synchronizer_ServiceDesc, srv)
}

// SynchronizerClient is the client API for the Synchronizer gRPC service.
type SynchronizerClient interface {
	Execute(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	Record(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error)
	Balance(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.UInt64Value, error)
}

type synchronizerClient struct{ cc grpc.ClientConnInterface }

func NewSynchronizerClient(cc grpc.ClientConnInterface) SynchronizerClient {
	return &synchronizerClient{cc: cc}
}

func (c *synchronizerClient) Execute(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	err := c.cc.Invoke(ctx, "/xdao.synchronizer.rpc.v1.Synchronizer/Execute", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *synchronizerClient) Record(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	err := c.cc.Invoke(ctx, "/xdao.synchronizer.rpc.v1.Synchronizer/Record", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *synchronizerClient) Balance(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.UInt64Value, error) {
	out := new(wrapperspb.UInt64Value)
	err := c.cc.Invoke(ctx, "/xdao.synchronizer.rpc.v1.Synchronizer/Balance", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func _Synchronizer_Execute_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SynchronizerServer).Execute(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/xdao.synchronizer.rpc.v1.Synchronizer/Execute"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SynchronizerServer).Execute(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _Synchronizer_Record_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SynchronizerServer).Record(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/xdao.synchronizer.rpc.v1.Synchronizer/Record"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SynchronizerServer).Record(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _Synchronizer_Balance_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SynchronizerServer).Balance(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/xdao.synchronizer.rpc.v1.Synchronizer/Balance"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SynchronizerServer).Balance(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

// Synchronizer_ServiceDesc is the grpc.ServiceDesc for the Synchronizer
// service.
var Synchronizer_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "xdao.synchronizer.rpc.v1.Synchronizer",
	HandlerType: (*SynchronizerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Execute", Handler: _Synchronizer_Execute_Handler},
		{MethodName: "Record", Handler: _Synchronizer_Record_Handler},
		{MethodName: "Balance", Handler: _Synchronizer_Balance_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "synchronizer.proto",
}
