// Package health exposes the standard gRPC health-checking service so that
// orchestrators can probe the process independently of the HTTP API.
package health

import (
	"context"
	"net"
	"time"

	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/platform/logger"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Check reports whether a dependency is usable.
type Check func(ctx context.Context) error

type Server struct {
	grpc     *grpc.Server
	health   *health.Server
	checks   map[string]Check
	interval time.Duration
	logger   *logger.Logger
}

func NewServer(checks map[string]Check, interval time.Duration, log *logger.Logger) *Server {
	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	return &Server{
		grpc:     grpcServer,
		health:   healthServer,
		checks:   checks,
		interval: interval,
		logger:   log.Named("health"),
	}
}

// Probe runs every check once and updates the overall serving status.
func (s *Server) Probe(ctx context.Context) bool {
	healthy := true
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			s.logger.Warn("Health check failed", zap.String("check", name), zap.Error(err))
			healthy = false
		}
	}
	status := healthpb.HealthCheckResponse_SERVING
	if !healthy {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", status)
	return healthy
}

// Serve listens on port and re-probes every interval until ctx is done.
func (s *Server) Serve(ctx context.Context, port string) error {
	lis, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return err
	}

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			s.Probe(ctx)
			select {
			case <-ctx.Done():
				s.health.Shutdown()
				s.grpc.GracefulStop()
				return
			case <-ticker.C:
			}
		}
	}()

	s.logger.Info("gRPC health server starting", zap.String("port", port))
	return s.grpc.Serve(lis)
}
