// Package gradebook serves the gradebook services over gRPC. A Server wraps
// a grpc.Server whose interceptors are chosen with functional options and
// always run in a fixed order: recovery, request id, tracing, logging, rate
// limit, timeout.
//
//	srv := gradebook.NewServer(
//		gradebook.WithRecovery(log),
//		gradebook.WithRequestID(),
//		gradebook.WithLogging(log),
//		gradebook.WithTimeout(5*time.Second),
//	)
//	srv.Register(api.Services{Students: students})
package gradebook

import (
	"net/http"

	"github.com/Keksclan/gradebook/api"
	"github.com/Keksclan/gradebook/interceptors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Server is a configured gRPC server.
type Server struct {
	grpcServer *grpc.Server
	health     *health.Server
	middleware []string
}

// NewServer applies opts and builds the server. The order of opts does not
// affect the order the interceptors run in.
func NewServer(opts ...Option) *Server {
	var cfg config
	for _, o := range opts {
		o(&cfg)
	}
	pipeline := cfg.pipeline()

	s := &Server{
		grpcServer: grpc.NewServer(pipeline.ServerOptions(interceptors.ChainUnary, interceptors.ChainStream)...),
		health:     health.NewServer(),
		middleware: pipeline.Names(),
	}
	healthpb.RegisterHealthServer(s.grpcServer, s.health)
	return s
}

// GRPC returns the underlying server.
func (s *Server) GRPC() *grpc.Server { return s.grpcServer }

// Register registers the gradebook services and marks each of them as
// serving in the health service.
func (s *Server) Register(svcs api.Services) {
	api.Register(s.grpcServer, svcs)
	for name := range s.grpcServer.GetServiceInfo() {
		if name != healthpb.Health_ServiceDesc.ServiceName {
			s.health.SetServingStatus(name, healthpb.HealthCheckResponse_SERVING)
		}
	}
}

// Health returns the health service, e.g. to report NOT_SERVING during
// shutdown.
func (s *Server) Health() *health.Server { return s.health }

// Middleware returns the names of the active interceptors in execution
// order.
func (s *Server) Middleware() []string { return s.middleware }

// MetricsHandler serves the Prometheus metrics of the default registry,
// including the cache metrics.
func (s *Server) MetricsHandler() http.Handler { return promhttp.Handler() }

// GracefulStop marks every service as not serving and waits for pending
// calls to finish.
func (s *Server) GracefulStop() {
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}
