package jobs

import (
	"context"
	"log"
	"time"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/atenjiha/MAHSA-LEARN/internal/config"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// StatusSetter is satisfied by *health.Server.
type StatusSetter interface {
	SetServingStatus(service string, servingStatus healthpb.HealthCheckResponse_ServingStatus)
}

// StartHealthProbeJob pings the store once right away and then on every
// interval, mirroring the result into the gRPC health service.
func StartHealthProbeJob(ctx context.Context, cfg config.Config, pinger Pinger, health StatusSetter, services ...string) {
	if pinger == nil || health == nil {
		log.Printf("health probe job disabled: store or health server not configured")
		return
	}
	interval := cfg.HealthProbeInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	timeout := cfg.HealthProbeTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	services = append([]string{""}, services...)

	last := probeStore(ctx, pinger, health, services, timeout, healthpb.HealthCheckResponse_UNKNOWN)
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				last = probeStore(ctx, pinger, health, services, timeout, last)
			}
		}
	}()
}

func probeStore(ctx context.Context, pinger Pinger, health StatusSetter, services []string, timeout time.Duration, previous healthpb.HealthCheckResponse_ServingStatus) healthpb.HealthCheckResponse_ServingStatus {
	tickCtx, cancel := context.WithTimeout(ctx, timeout)
	err := pinger.Ping(tickCtx)
	cancel()

	current := healthpb.HealthCheckResponse_SERVING
	if err != nil {
		current = healthpb.HealthCheckResponse_NOT_SERVING
	}
	for _, service := range services {
		health.SetServingStatus(service, current)
	}
	if current != previous {
		if err != nil {
			log.Printf("health probe: store unavailable: %v", err)
		} else {
			log.Printf("health probe: store serving")
		}
	}
	return current
}
