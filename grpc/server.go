// Package grpc serves the standard gRPC health service for the archive.
package grpc

import (
	"context"
	"fmt"
	"log"
	"net"
	"time"

	grpc "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health service name reported next to the overall "" status.
const ServiceName = "archive"

const pingTimeout = 5 * time.Second

// Pinger reports whether the record store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server exposes grpc.health.v1 backed by periodic store pings.
type Server struct {
	srv      *grpc.Server
	health   *health.Server
	store    Pinger
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	serving  bool
}

func NewServer(store Pinger, interval time.Duration) *Server {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		srv:      grpc.NewServer(),
		health:   health.NewServer(),
		store:    store,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
	}
	healthpb.RegisterHealthServer(s.srv, s.health)
	reflection.Register(s.srv)
	return s
}

// Serve checks the store once, starts the check loop and blocks serving lis.
func (s *Server) Serve(lis net.Listener) error {
	s.check()
	go s.loop()
	log.Printf("[gRPC] health service listening on %s", lis.Addr())
	if err := s.srv.Serve(lis); err != nil {
		return fmt.Errorf("serve grpc: %w", err)
	}
	return nil
}

// ListenAndServe listens on addr and calls Serve.
func (s *Server) ListenAndServe(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(lis)
}

// Stop marks every service NOT_SERVING and drains in-flight calls.
func (s *Server) Stop() {
	s.cancel()
	s.health.Shutdown()
	s.srv.GracefulStop()
}

func (s *Server) loop() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.check()
		}
	}
}

func (s *Server) check() {
	ctx, cancel := context.WithTimeout(s.ctx, pingTimeout)
	defer cancel()
	err := s.store.Ping(ctx)
	if s.ctx.Err() != nil {
		return
	}

	status := healthpb.HealthCheckResponse_SERVING
	if err != nil {
		status = healthpb.HealthCheckResponse_NOT_SERVING
		if s.serving {
			log.Printf("[gRPC] store ping failed, reporting NOT_SERVING: %v", err)
		}
	} else if !s.serving {
		log.Printf("[gRPC] store reachable, reporting SERVING")
	}
	s.serving = err == nil
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}
