package grpc

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/atenjiha/MAHSA-LEARN/internal/config"
)

// ServiceName is the health service whose status follows the store probe.
const ServiceName = "mahsa.learn.v1.Learning"

// NewServer builds the gRPC server with the health service registered.
// Every status starts NOT_SERVING until the first store probe reports.
func NewServer(cfg config.Config) (*grpc.Server, *health.Server, error) {
	var opts []grpc.ServerOption
	if cfg.ServiceAuthToken != "" {
		interceptor, err := NewServiceAuthUnaryInterceptor(cfg.ServiceAuthToken)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, grpc.UnaryInterceptor(interceptor))
	}
	server := grpc.NewServer(opts...)

	healthServer := health.NewServer()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	healthServer.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	healthpb.RegisterHealthServer(server, healthServer)

	if cfg.GRPCReflection {
		reflection.Register(server)
	}
	return server, healthServer, nil
}
