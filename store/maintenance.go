package store

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	SessionCheckInterval = time.Minute
	OptimizeInterval     = 5 * time.Minute
)

// RunMaintenance checks session expiry and sweeps internal buffers until ctx
// is cancelled. Both jobs are idempotent.
func (s *Store) RunMaintenance(ctx context.Context) {
	sessionTicker := time.NewTicker(SessionCheckInterval)
	optimizeTicker := time.NewTicker(OptimizeInterval)
	defer sessionTicker.Stop()
	defer optimizeTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-sessionTicker.C:
			s.ValidateSession(ctx)
		case <-optimizeTicker.C:
			s.Optimize()
		}
	}
}

// OptimizeReport counts what one sweep released.
type OptimizeReport struct {
	Notifications int
	RateLimitKeys int
	MetricSeries  int
}

// Optimize drops expired notifications, idle rate-limit keys and metric samples.
func (s *Store) Optimize() OptimizeReport {
	s.mu.Lock()
	r := OptimizeReport{Notifications: s.pruneNotifications()}
	s.mu.Unlock()

	r.RateLimitKeys = s.limiter.Sweep(LoginWindow)
	r.MetricSeries = s.metrics.Prune()
	s.log.Debug("optimize sweep",
		zap.Int("notifications", r.Notifications),
		zap.Int("rate_limit_keys", r.RateLimitKeys),
		zap.Int("metric_series", r.MetricSeries),
	)
	return r
}
