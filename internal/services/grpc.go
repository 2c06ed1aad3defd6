package services

import (
	"context"
	"encoding/json"

	"google.golang.org/genproto/googleapis/api/httpbody"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// TerritoryServiceName is the fully qualified gRPC service name
const TerritoryServiceName = "territory.v1.TerritoryService"

const (
	AssignTerritoriesMethod = "/" + TerritoryServiceName + "/AssignTerritories"
	ContainsPointMethod     = "/" + TerritoryServiceName + "/ContainsPoint"
	ClassifyLocationMethod  = "/" + TerritoryServiceName + "/ClassifyLocation"
	ExportKMLMethod         = "/" + TerritoryServiceName + "/ExportKML"
)

// TerritoryServiceServer is the wire-level server API. Messages are JSON-shaped
// google.protobuf.Struct values so the service needs no generated stubs.
type TerritoryServiceServer interface {
	AssignTerritories(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ContainsPoint(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ClassifyLocation(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ExportKML(context.Context, *structpb.Struct) (*httpbody.HttpBody, error)
}

// RegisterTerritoryServiceServer registers the service on a gRPC server
func RegisterTerritoryServiceServer(s grpc.ServiceRegistrar, svc *TerritoryService) {
	s.RegisterService(&TerritoryService_ServiceDesc, &grpcServer{svc: svc})
}

// TerritoryService_ServiceDesc describes territory.v1.TerritoryService
var TerritoryService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: TerritoryServiceName,
	HandlerType: (*TerritoryServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "AssignTerritories", Handler: unaryHandler(AssignTerritoriesMethod, TerritoryServiceServer.AssignTerritories)},
		{MethodName: "ContainsPoint", Handler: unaryHandler(ContainsPointMethod, TerritoryServiceServer.ContainsPoint)},
		{MethodName: "ClassifyLocation", Handler: unaryHandler(ClassifyLocationMethod, TerritoryServiceServer.ClassifyLocation)},
		{MethodName: "ExportKML", Handler: unaryHandler(ExportKMLMethod, TerritoryServiceServer.ExportKML)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "territory/v1/territory.proto",
}

func unaryHandler[Resp any](fullMethod string, call func(TerritoryServiceServer, context.Context, *structpb.Struct) (Resp, error)) func(interface{}, context.Context, func(interface{}) error, grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(TerritoryServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(TerritoryServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// grpcServer adapts TerritoryService to the wire API
type grpcServer struct {
	svc *TerritoryService
}

func (g *grpcServer) AssignTerritories(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req AssignRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, err
	}
	resp, err := g.svc.AssignTerritories(ctx, &req)
	if err != nil {
		return nil, err
	}
	return toStruct(resp)
}

func (g *grpcServer) ContainsPoint(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req ContainsRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, err
	}
	resp, err := g.svc.ContainsPoint(ctx, &req)
	if err != nil {
		return nil, err
	}
	return toStruct(resp)
}

func (g *grpcServer) ClassifyLocation(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req ClassifyRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, err
	}
	resp, err := g.svc.ClassifyLocation(ctx, &req)
	if err != nil {
		return nil, err
	}
	return toStruct(resp)
}

func (g *grpcServer) ExportKML(ctx context.Context, in *structpb.Struct) (*httpbody.HttpBody, error) {
	var req AssignRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, err
	}
	return g.svc.ExportKML(ctx, &req)
}

// fromStruct decodes a Struct into a JSON-tagged Go value. Struct numbers are
// float64, so integers beyond 2^53 (large numeric ids) arrive rounded.
func fromStruct(in *structpb.Struct, out any) error {
	data, err := protojson.Marshal(in)
	if err != nil {
		return status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
	}
	return nil
}

// toStruct encodes a JSON-tagged Go value as a Struct
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encoding response: %v", err)
	}
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, status.Errorf(codes.Internal, "encoding response: %v", err)
	}
	return out, nil
}

// TerritoryServiceClient calls the service over a gRPC connection
type TerritoryServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewTerritoryServiceClient creates a client on an existing connection
func NewTerritoryServiceClient(cc grpc.ClientConnInterface) *TerritoryServiceClient {
	return &TerritoryServiceClient{cc: cc}
}

// Invoke calls a unary struct method and returns the raw response
func (c *TerritoryServiceClient) Invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// ExportKML calls the KML export method
func (c *TerritoryServiceClient) ExportKML(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*httpbody.HttpBody, error) {
	out := new(httpbody.HttpBody)
	if err := c.cc.Invoke(ctx, ExportKMLMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// AssignTerritories calls AssignTerritories with typed messages
func (c *TerritoryServiceClient) AssignTerritories(ctx context.Context, req *AssignRequest, opts ...grpc.CallOption) (*AssignResponse, error) {
	var resp AssignResponse
	if err := c.call(ctx, AssignTerritoriesMethod, req, &resp, opts...); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ContainsPoint calls ContainsPoint with typed messages
func (c *TerritoryServiceClient) ContainsPoint(ctx context.Context, req *ContainsRequest, opts ...grpc.CallOption) (*ContainsResponse, error) {
	var resp ContainsResponse
	if err := c.call(ctx, ContainsPointMethod, req, &resp, opts...); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *TerritoryServiceClient) call(ctx context.Context, method string, req, resp any, opts ...grpc.CallOption) error {
	in, err := toStruct(req)
	if err != nil {
		return err
	}
	out, err := c.Invoke(ctx, method, in, opts...)
	if err != nil {
		return err
	}
	return fromStruct(out, resp)
}
