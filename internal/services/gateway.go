package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

type gatewayRoute struct {
	pattern string
	method  string
}

var gatewayRoutes = []gatewayRoute{
	{"/api/v1/territories/assign", AssignTerritoriesMethod},
	{"/api/v1/territories/contains", ContainsPointMethod},
	{"/api/v1/territories/classify", ClassifyLocationMethod},
	{"/api/v1/territories/kml", ExportKMLMethod},
}

// RegisterTerritoryServiceHandlerFromEndpoint dials endpoint and registers the
// HTTP routes on mux. The connection is closed when ctx is done.
func RegisterTerritoryServiceHandlerFromEndpoint(ctx context.Context, mux *runtime.ServeMux, endpoint string, opts []grpc.DialOption) (err error) {
	conn, err := grpc.NewClient(endpoint, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if cerr := conn.Close(); cerr != nil {
				log.Error().Err(cerr).Str("endpoint", endpoint).Msg("Failed to close connection")
			}
			return
		}
		go func() {
			<-ctx.Done()
			if cerr := conn.Close(); cerr != nil {
				log.Error().Err(cerr).Str("endpoint", endpoint).Msg("Failed to close connection")
			}
		}()
	}()

	return RegisterTerritoryServiceHandler(ctx, mux, conn)
}

// RegisterTerritoryServiceHandler registers POST routes that proxy JSON bodies to
// the gRPC methods over conn.
func RegisterTerritoryServiceHandler(ctx context.Context, mux *runtime.ServeMux, conn grpc.ClientConnInterface) error {
	client := NewTerritoryServiceClient(conn)
	for _, route := range gatewayRoutes {
		if err := mux.HandlePath(http.MethodPost, route.pattern, proxyHandler(mux, client, route)); err != nil {
			return fmt.Errorf("registering %s: %w", route.pattern, err)
		}
	}
	return nil
}

func proxyHandler(mux *runtime.ServeMux, client *TerritoryServiceClient, route gatewayRoute) runtime.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		inbound, outbound := runtime.MarshalerForRequest(mux, r)

		annotated, err := runtime.AnnotateContext(ctx, mux, r, route.method, runtime.WithHTTPPathPattern(route.pattern))
		if err != nil {
			runtime.HTTPError(ctx, mux, outbound, w, r, err)
			return
		}

		in := new(structpb.Struct)
		if err := inbound.NewDecoder(r.Body).Decode(in); err != nil {
			runtime.HTTPError(annotated, mux, outbound, w, r, status.Errorf(codes.InvalidArgument, "%v", err))
			return
		}

		var md runtime.ServerMetadata
		var resp proto.Message
		if route.method == ExportKMLMethod {
			resp, err = client.ExportKML(annotated, in, grpc.Header(&md.HeaderMD), grpc.Trailer(&md.TrailerMD))
		} else {
			resp, err = client.Invoke(annotated, route.method, in, grpc.Header(&md.HeaderMD), grpc.Trailer(&md.TrailerMD))
		}
		annotated = runtime.NewServerMetadataContext(annotated, md)
		if err != nil {
			runtime.HTTPError(annotated, mux, outbound, w, r, err)
			return
		}

		runtime.ForwardResponseMessage(annotated, mux, outbound, w, r, resp)
	}
}
