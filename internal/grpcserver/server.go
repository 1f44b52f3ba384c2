// Package grpcserver exposes the store's readiness over the standard gRPC
// health protocol, for probes that speak gRPC rather than HTTP.
package grpcserver

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is reported alongside the overall ("") status.
const ServiceName = "bookshelf"

type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	Store    Pinger
	Interval time.Duration
	Logger   *slog.Logger

	health *health.Server
	grpc   *grpc.Server

	stop     chan struct{}
	stopOnce sync.Once
}

func NewServer(store Pinger) *Server {
	s := &Server{
		Store:    store,
		Interval: 5 * time.Second,
		Logger:   slog.Default(),
		health:   health.NewServer(),
		grpc:     grpc.NewServer(),
		stop:     make(chan struct{}),
	}
	healthpb.RegisterHealthServer(s.grpc, s.health)
	s.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
	return s
}

// Refresh pings the store once and publishes the result.
func (s *Server) Refresh(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := s.Store.Ping(ctx); err != nil {
		s.Logger.WarnContext(ctx, "grpc health: store unavailable", "err", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.setStatus(status)
	return status
}

func (s *Server) setStatus(status healthpb.HealthCheckResponse_ServingStatus) {
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

// Serve refreshes the status every Interval and blocks serving ln until Stop.
func (s *Server) Serve(ln net.Listener) error {
	s.Refresh(context.Background())

	go func() {
		t := time.NewTicker(s.Interval)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				s.Refresh(context.Background())
			case <-s.stop:
				return
			}
		}
	}()

	return s.grpc.Serve(ln)
}

func (s *Server) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.Logger.Info("gRPC health server listening", "addr", ln.Addr().String())
	return s.Serve(ln)
}

func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
		s.health.Shutdown()
		// Watch streams never end on their own, so no graceful drain.
		s.grpc.Stop()
	})
}
