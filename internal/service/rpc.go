package service

import (
	"context"

	"google.golang.org/grpc"

	"github.com/fmcut/partitioner/pkg/model"
)

// PartitionServiceServer is the server API for the PartitionService gRPC
// service: a unary Partition call and a server-streaming PartitionStream
// call that reports per-pass cut progress as the driver converges.
type PartitionServiceServer interface {
	Partition(context.Context, *model.PartitionRequest) (*model.PartitionResponse, error)
	PartitionStream(*model.PartitionRequest, PartitionService_PartitionStreamServer) error
}

// PartitionService_PartitionStreamServer is the server-side stream handle
// passed to PartitionStream implementations.
type PartitionService_PartitionStreamServer interface {
	Send(*model.PartitionProgress) error
	grpc.ServerStream
}

type partitionServicePartitionStreamServer struct {
	grpc.ServerStream
}

func (x *partitionServicePartitionStreamServer) Send(m *model.PartitionProgress) error {
	return x.ServerStream.SendMsg(m)
}

func _PartitionService_Partition_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(model.PartitionRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PartitionServiceServer).Partition(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/fmpart.PartitionService/Partition",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PartitionServiceServer).Partition(ctx, req.(*model.PartitionRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _PartitionService_PartitionStream_Handler(srv interface{}, stream grpc.ServerStream) error {
	m := new(model.PartitionRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(PartitionServiceServer).PartitionStream(m, &partitionServicePartitionStreamServer{stream})
}

// PartitionService_ServiceDesc is the grpc.ServiceDesc for PartitionService,
// built by hand in the shape protoc-gen-go-grpc would emit.
var PartitionService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "fmpart.PartitionService",
	HandlerType: (*PartitionServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Partition",
			Handler:    _PartitionService_Partition_Handler,
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "PartitionStream",
			Handler:       _PartitionService_PartitionStream_Handler,
			ServerStreams: true,
		},
	},
	Metadata: "fmpart/partition_service.proto",
}

// RegisterPartitionServiceServer registers srv with s.
func RegisterPartitionServiceServer(s *grpc.Server, srv PartitionServiceServer) {
	s.RegisterService(&PartitionService_ServiceDesc, srv)
}
