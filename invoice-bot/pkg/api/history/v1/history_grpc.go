package historyv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Сообщения передаются как google.protobuf.Struct, поэтому сервис описан без protoc.

const (
	ServiceName                          = "notafacil.history.v1.HistoryService"
	HistoryService_Filter_FullMethodName = "/notafacil.history.v1.HistoryService/Filter"
)

type HistoryServiceServer interface {
	Filter(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

func RegisterHistoryServiceServer(s grpc.ServiceRegistrar, srv HistoryServiceServer) {
	s.RegisterService(&HistoryService_ServiceDesc, srv)
}

func _HistoryService_Filter_Handler(
	srv interface{},
	ctx context.Context,
	dec func(interface{}) error,
	interceptor grpc.UnaryServerInterceptor,
) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(HistoryServiceServer).Filter(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: HistoryService_Filter_FullMethodName,
	}

	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(HistoryServiceServer).Filter(ctx, req.(*structpb.Struct))
	}

	return interceptor(ctx, in, info, handler)
}

var HistoryService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*HistoryServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Filter",
			Handler:    _HistoryService_Filter_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "notafacil/history/v1/history.proto",
}

type HistoryServiceClient interface {
	Filter(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type historyServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewHistoryServiceClient(cc grpc.ClientConnInterface) HistoryServiceClient {
	return &historyServiceClient{cc: cc}
}

func (c *historyServiceClient) Filter(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)

	err := c.cc.Invoke(ctx, HistoryService_Filter_FullMethodName, in, out, opts...)
	if err != nil {
		return nil, err
	}

	return out, nil
}
