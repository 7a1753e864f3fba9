package grpcserver

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service name other services probe.
const ServiceName = "hms.clinic"

type Pinger interface {
	Ping(ctx context.Context) error
}

// Health keeps the grpc.health.v1 status of the clinic in step with its database.
type Health struct {
	srv    *health.Server
	db     Pinger
	logger *zap.Logger
	every  time.Duration
	last   healthpb.HealthCheckResponse_ServingStatus
}

func Register(grpcServer *grpc.Server, db Pinger, logger *zap.Logger, every time.Duration) *Health {
	if every <= 0 {
		every = 10 * time.Second
	}
	h := &Health{srv: health.NewServer(), db: db, logger: logger, every: every}
	h.set(healthpb.HealthCheckResponse_NOT_SERVING)
	healthpb.RegisterHealthServer(grpcServer, h.srv)
	return h
}

// Probe pings the database once and publishes the result.
func (h *Health) Probe(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	status := healthpb.HealthCheckResponse_SERVING
	if err := h.db.Ping(ctx); err != nil {
		status = healthpb.HealthCheckResponse_NOT_SERVING
		if h.last != status {
			h.logger.Warn("clinic not serving", zap.Error(err))
		}
	}
	h.set(status)
}

func (h *Health) Run(ctx context.Context) {
	h.Probe(ctx)
	ticker := time.NewTicker(h.every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			h.srv.Shutdown()
			return
		case <-ticker.C:
			h.Probe(ctx)
		}
	}
}

func (h *Health) set(status healthpb.HealthCheckResponse_ServingStatus) {
	h.last = status
	h.srv.SetServingStatus("", status)
	h.srv.SetServingStatus(ServiceName, status)
}
