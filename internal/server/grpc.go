package server

import (
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"provider-registration/backend/internal/server/interceptors"
)

// quietMethods are probed often and not access-logged.
var quietMethods = map[string]bool{
	healthpb.Health_Check_FullMethodName: true,
	healthpb.Health_Watch_FullMethodName: true,
}

// NewGRPCServer returns a gRPC server exposing grpc.health.v1 backed by hs,
// traced with otelgrpc.
func NewGRPCServer(hs *health.Server, log zerolog.Logger) *grpc.Server {
	s := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(interceptors.LoggingUnary(log, quietMethods)),
		grpc.ChainStreamInterceptor(interceptors.LoggingStream(log, quietMethods)),
	)
	healthpb.RegisterHealthServer(s, hs)
	return s
}
