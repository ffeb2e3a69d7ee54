package grpc_render

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// The service speaks only well-known protobuf types, so it is described by
// hand instead of through generated stubs.
const (
	ServiceName = "cyclechart.ChartService"

	RenderPNGMethod    = "/" + ServiceName + "/RenderPNG"
	RenderFigureMethod = "/" + ServiceName + "/RenderFigure"
)

// -----------------------------------------------------------------------------
// Server API
// -----------------------------------------------------------------------------

type ChartServer interface {
	RenderPNG(context.Context, *structpb.Struct) (*wrapperspb.BytesValue, error)
	RenderFigure(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// UnimplementedChartServer can be embedded for forward compatibility.
type UnimplementedChartServer struct{}

func (UnimplementedChartServer) RenderPNG(context.Context, *structpb.Struct) (*wrapperspb.BytesValue, error) {
	return nil, status.Error(codes.Unimplemented, "method RenderPNG not implemented")
}

func (UnimplementedChartServer) RenderFigure(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method RenderFigure not implemented")
}

// -----------------------------------------------------------------------------

func RegisterChartServer(s grpc.ServiceRegistrar, srv ChartServer) {
	s.RegisterService(&ChartServiceDesc, srv)
}

var ChartServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ChartServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "RenderPNG",
			Handler:    renderPNGHandler,
		},
		{
			MethodName: "RenderFigure",
			Handler:    renderFigureHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "cyclechart/chart.proto",
}

// -----------------------------------------------------------------------------

func renderPNGHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ChartServer).RenderPNG(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: RenderPNGMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ChartServer).RenderPNG(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func renderFigureHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ChartServer).RenderFigure(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: RenderFigureMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ChartServer).RenderFigure(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// -----------------------------------------------------------------------------
// Client API
// -----------------------------------------------------------------------------

type ChartClient struct {
	cc grpc.ClientConnInterface
}

func NewChartClient(cc grpc.ClientConnInterface) *ChartClient {
	return &ChartClient{cc: cc}
}

func (c *ChartClient) RenderPNG(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	if err := c.cc.Invoke(ctx, RenderPNGMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ChartClient) RenderFigure(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, RenderFigureMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
