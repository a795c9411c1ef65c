package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "sfl.v1.CoverageCollector"

// Full method names.
const (
	MethodStartSession = "/" + ServiceName + "/StartSession"
	MethodTestStarted  = "/" + ServiceName + "/TestStarted"
	MethodTestFinished = "/" + ServiceName + "/TestFinished"
	MethodFinish       = "/" + ServiceName + "/Finish"
	MethodAbort        = "/" + ServiceName + "/Abort"
)

// CoverageCollectorServer is the server API of the collector service.
// Every message is a google.protobuf.Struct; see codec.go for the fields.
type CoverageCollectorServer interface {
	StartSession(context.Context, *structpb.Struct) (*structpb.Struct, error)
	TestStarted(context.Context, *structpb.Struct) (*structpb.Struct, error)
	TestFinished(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Finish(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Abort(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(CoverageCollectorServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryMethod) func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CoverageCollectorServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(CoverageCollectorServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// CoverageCollectorServiceDesc is the grpc.ServiceDesc of the collector.
var CoverageCollectorServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CoverageCollectorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "StartSession", Handler: unaryHandler(MethodStartSession, CoverageCollectorServer.StartSession)},
		{MethodName: "TestStarted", Handler: unaryHandler(MethodTestStarted, CoverageCollectorServer.TestStarted)},
		{MethodName: "TestFinished", Handler: unaryHandler(MethodTestFinished, CoverageCollectorServer.TestFinished)},
		{MethodName: "Finish", Handler: unaryHandler(MethodFinish, CoverageCollectorServer.Finish)},
		{MethodName: "Abort", Handler: unaryHandler(MethodAbort, CoverageCollectorServer.Abort)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "sfl/v1/collector.proto",
}

// RegisterCoverageCollectorServer registers srv on s.
func RegisterCoverageCollectorServer(s grpc.ServiceRegistrar, srv CoverageCollectorServer) {
	s.RegisterService(&CoverageCollectorServiceDesc, srv)
}
