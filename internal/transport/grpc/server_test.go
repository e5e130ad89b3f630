package grpc

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

func startServer(t *testing.T) (*Server, healthpb.HealthClient) {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := NewServer(slog.New(slog.NewTextHandler(io.Discard, nil)), time.Second)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient(
		"passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial bufconn: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	return srv, healthpb.NewHealthClient(conn)
}

func TestHealth_ReportsServing(t *testing.T) {
	_, client := startServer(t)

	for _, name := range []string{"", ServiceName} {
		resp, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: name})
		if err != nil {
			t.Fatalf("Check(%q) error: %v", name, err)
		}
		if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
			t.Fatalf("Check(%q) = %v, want SERVING", name, resp.GetStatus())
		}
	}
}

func TestHealth_SetServing(t *testing.T) {
	srv, client := startServer(t)

	srv.SetServing(false)
	resp, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		t.Fatalf("Check error: %v", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Fatalf("status = %v, want NOT_SERVING", resp.GetStatus())
	}
}

func waitStatus(t *testing.T, client healthpb.HealthClient, want healthpb.HealthCheckResponse_ServingStatus) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
		if err == nil && resp.GetStatus() == want {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("status = %v (err %v), want %v", resp.GetStatus(), err, want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestWatchReadiness_FollowsCheck(t *testing.T) {
	srv, client := startServer(t)

	var healthy atomic.Bool
	ready := func(ctx context.Context) error {
		if healthy.Load() {
			return nil
		}
		return errors.New("postgres: connection refused")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		srv.WatchReadiness(ctx, 10*time.Millisecond, ready)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	waitStatus(t, client, healthpb.HealthCheckResponse_NOT_SERVING)
	healthy.Store(true)
	waitStatus(t, client, healthpb.HealthCheckResponse_SERVING)
}

func TestHealth_UnknownService(t *testing.T) {
	_, client := startServer(t)

	_, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: "nope"})
	if status.Code(err) != codes.NotFound {
		t.Fatalf("code = %v, want NotFound", status.Code(err))
	}
}

func TestDefaultRequestTimeoutInterceptor(t *testing.T) {
	interceptor := defaultRequestTimeoutInterceptor(50 * time.Millisecond)

	var deadline time.Time
	var ok bool
	_, err := interceptor(context.Background(), nil, &grpc.UnaryServerInfo{}, func(ctx context.Context, req any) (any, error) {
		deadline, ok = ctx.Deadline()
		return nil, nil
	})
	if err != nil {
		t.Fatalf("interceptor error: %v", err)
	}
	if !ok || time.Until(deadline) > 50*time.Millisecond {
		t.Fatalf("deadline = %v, %v", deadline, ok)
	}

	parent, cancel := context.WithTimeout(context.Background(), time.Hour)
	defer cancel()
	want, _ := parent.Deadline()
	_, _ = interceptor(parent, nil, &grpc.UnaryServerInfo{}, func(ctx context.Context, req any) (any, error) {
		deadline, _ = ctx.Deadline()
		return nil, nil
	})
	if !deadline.Equal(want) {
		t.Fatalf("caller deadline replaced: %v, want %v", deadline, want)
	}
}
