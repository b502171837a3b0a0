// Package grpc serves the standard gRPC health service so orchestrators can
// probe the process. Serving status follows backend connectivity.
package grpc

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/example/homecook/pkg/connectivity"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health service key for the data-access endpoints.
const ServiceName = "homecook.api"

type HealthServer struct {
	addr   string
	server *grpc.Server
	health *health.Server
	logger *zap.Logger
}

func NewHealthServer(addr string, logger *zap.Logger) *HealthServer {
	logger = logger.Named("grpc")
	srv := grpc.NewServer(grpc.UnaryInterceptor(loggingInterceptor(logger)))
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	reflection.Register(srv)

	s := &HealthServer{addr: addr, server: srv, health: hs, logger: logger}
	s.SetBackendStatus(connectivity.Unknown)
	return s
}

// SetBackendStatus reports SERVING only while the backend is reachable.
func (s *HealthServer) SetBackendStatus(st connectivity.Status) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if st == connectivity.Online {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

// Watch keeps the serving status in step with w.
func (s *HealthServer) Watch(w *connectivity.Watcher) {
	s.SetBackendStatus(w.Status())
	w.Subscribe(func(ev connectivity.Event) {
		s.SetBackendStatus(ev.Status)
	})
}

func (s *HealthServer) Start() error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	s.logger.Info("gRPC health server started", zap.String("address", s.addr))
	return s.server.Serve(lis)
}

func (s *HealthServer) Stop() {
	s.health.Shutdown()
	s.server.GracefulStop()
}

func loggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.Debug("gRPC request",
			zap.String("method", info.FullMethod),
			zap.Duration("latency", time.Since(start)),
			zap.Error(err))
		return resp, err
	}
}
