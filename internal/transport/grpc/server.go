package grpc

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the name the clinic API reports health under.
const ServiceName = "clinic.v1.Scheduling"

type Server struct {
	*grpc.Server

	health  *health.Server
	log     *slog.Logger
	serving atomic.Bool
}

// NewServer builds a gRPC server exposing grpc.health.v1.Health and server
// reflection. Every unary call gets requestTimeout unless the caller set a
// deadline.
func NewServer(log *slog.Logger, requestTimeout time.Duration) *Server {
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("component", "grpc.health"))

	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			defaultRequestTimeoutInterceptor(requestTimeout),
			loggingInterceptor(log),
		),
	)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	reflection.Register(s)

	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	srv := &Server{Server: s, health: hs, log: log}
	srv.serving.Store(true)
	return srv
}

// SetServing flips the reported status of the clinic service. Only changes
// are logged.
func (s *Server) SetServing(serving bool) {
	if s.serving.Swap(serving) == serving {
		return
	}
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(ServiceName, st)
	s.log.Info("health status changed", slog.String("service", ServiceName), slog.String("status", st.String()))
}

// WatchReadiness runs ready every interval and reports the clinic service as
// serving while it succeeds. It returns when ctx is done.
func (s *Server) WatchReadiness(ctx context.Context, interval time.Duration, ready func(ctx context.Context) error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		err := ready(ctx)
		if err != nil && ctx.Err() == nil {
			s.log.Warn("readiness check failed", slog.Any("err", err))
		}
		if ctx.Err() != nil {
			return
		}
		s.SetServing(err == nil)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Shutdown marks everything not serving and stops the server, forcing a stop
// after timeout.
func (s *Server) Shutdown(timeout time.Duration) {
	s.health.Shutdown()
	s.log.Info("shutting down grpc server", slog.Duration("timeout", timeout))

	done := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		s.log.Info("grpc server stopped")
	case <-timer.C:
		s.log.Warn("grpc graceful shutdown timed out; forcing stop")
		s.Stop()
	}
}

func defaultRequestTimeoutInterceptor(timeout time.Duration) grpc.UnaryServerInterceptor {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if _, ok := ctx.Deadline(); ok {
			return handler(ctx, req)
		}
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		return handler(ctx, req)
	}
}

func loggingInterceptor(log *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		if err != nil {
			log.Warn("rpc failed", slog.String("method", info.FullMethod), slog.Any("err", err))
			return resp, err
		}
		log.Debug("rpc handled", slog.String("method", info.FullMethod), slog.Duration("duration", time.Since(start)))
		return resp, nil
	}
}
