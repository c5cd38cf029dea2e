package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const serviceName = "thinkspace.v1.Thinkspace"

// ThinkspaceServer is the read-only RPC surface. Messages are well-known types, so no
// generated code is needed.
type ThinkspaceServer interface {
	GetUser(context.Context, *wrapperspb.UInt64Value) (*structpb.Struct, error)
	GetProject(context.Context, *wrapperspb.UInt64Value) (*structpb.Struct, error)
	ListProjects(context.Context, *structpb.Struct) (*structpb.ListValue, error)
}

var ThinkspaceServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*ThinkspaceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetUser",
			Handler: unaryHandler("GetUser", func() interface{} { return new(wrapperspb.UInt64Value) },
				func(srv ThinkspaceServer, ctx context.Context, req interface{}) (interface{}, error) {
					return srv.GetUser(ctx, req.(*wrapperspb.UInt64Value))
				}),
		},
		{
			MethodName: "GetProject",
			Handler: unaryHandler("GetProject", func() interface{} { return new(wrapperspb.UInt64Value) },
				func(srv ThinkspaceServer, ctx context.Context, req interface{}) (interface{}, error) {
					return srv.GetProject(ctx, req.(*wrapperspb.UInt64Value))
				}),
		},
		{
			MethodName: "ListProjects",
			Handler: unaryHandler("ListProjects", func() interface{} { return new(structpb.Struct) },
				func(srv ThinkspaceServer, ctx context.Context, req interface{}) (interface{}, error) {
					return srv.ListProjects(ctx, req.(*structpb.Struct))
				}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "thinkspace/v1/thinkspace.proto",
}

func RegisterThinkspaceServer(s grpc.ServiceRegistrar, srv ThinkspaceServer) {
	s.RegisterService(&ThinkspaceServiceDesc, srv)
}

type (
	call          func(srv ThinkspaceServer, ctx context.Context, req interface{}) (interface{}, error)
	methodHandler = func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error)
)

func unaryHandler(method string, newReq func() interface{}, fn call) methodHandler {
	fullMethod := "/" + serviceName + "/" + method
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := newReq()
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return fn(srv.(ThinkspaceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return fn(srv.(ThinkspaceServer), ctx, req)
		}
		return interceptor(ctx, in, info, handler)
	}
}

////////

type ThinkspaceClient struct {
	cc grpc.ClientConnInterface
}

func NewThinkspaceClient(cc grpc.ClientConnInterface) *ThinkspaceClient {
	return &ThinkspaceClient{cc: cc}
}

func (c *ThinkspaceClient) GetUser(ctx context.Context, in *wrapperspb.UInt64Value, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/GetUser", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ThinkspaceClient) GetProject(ctx context.Context, in *wrapperspb.UInt64Value, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/GetProject", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ThinkspaceClient) ListProjects(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/ListProjects", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
