package catalog

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/kidspark/kidspark-engine/internal/health"
)

// HealthChecker monitors catalog availability. Sources without a
// specialized probe (store-backed, cached) are assumed healthy; the
// store's own checker covers the database.
type HealthChecker struct {
	source       Source
	healthy      atomic.Int32
	log          zerolog.Logger
	probeTimeout time.Duration
}

func NewHealthChecker(source Source, log zerolog.Logger, probeTimeout time.Duration) *HealthChecker {
	hc := &HealthChecker{source: source, log: log, probeTimeout: probeTimeout}
	hc.healthy.Store(0)
	return hc
}

func (hc *HealthChecker) Name() string    { return "catalog" }
func (hc *HealthChecker) IsHealthy() bool { return hc.healthy.Load() == 1 }

func (hc *HealthChecker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	check := func() {
		p, ok := hc.source.(health.HealthPinger)
		if !ok {
			hc.healthy.Store(1)
			return
		}
		to := hc.probeTimeout
		if to <= 0 {
			to = 2 * time.Second
		}
		checkCtx, cancel := context.WithTimeout(ctx, to)
		defer cancel()

		if err := p.HealthPing(checkCtx); err != nil {
			hc.log.Error().Stack().Str("checker", hc.Name()).Err(err).Msg("catalog health check failed")
			hc.healthy.Store(0)
			return
		}
		hc.healthy.Store(1)
	}

	check()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			check()
		}
	}
}
