package grpc

import (
	"context"
	"testing"
	"time"

	"github.com/example/homecook/pkg/connectivity"
	"go.uber.org/zap"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func TestHealthServer_FollowsBackend(t *testing.T) {
	s := NewHealthServer("127.0.0.1:0", zap.NewNop())
	ctx := context.Background()

	check := func() healthpb.HealthCheckResponse_ServingStatus {
		t.Helper()
		resp, err := s.health.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
		if err != nil {
			t.Fatalf("Check: %v", err)
		}
		return resp.GetStatus()
	}

	if got := check(); got != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Fatalf("initial status = %s", got)
	}
	s.SetBackendStatus(connectivity.Online)
	if got := check(); got != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("online status = %s", got)
	}
	s.SetBackendStatus(connectivity.Offline)
	if got := check(); got != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Fatalf("offline status = %s", got)
	}
}

func TestHealthServer_Watch(t *testing.T) {
	s := NewHealthServer("127.0.0.1:0", zap.NewNop())
	w := connectivity.NewWatcher(connectivity.ProberFunc(func(context.Context) error {
		return nil
	}), time.Second, time.Second, zap.NewNop())
	s.Watch(w)

	w.Check(context.Background())
	resp, err := s.health.Check(context.Background(), &healthpb.HealthCheckRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("status = %s", resp.GetStatus())
	}
}
