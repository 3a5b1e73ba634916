// Package worker runs the background flush daemon that sweeps expired
// tenants on an interval.
package worker

import (
	"context"
	"log/slog"
	"time"

	"vaultnet/internal/lifecycle/service"
	"vaultnet/pkg/requestcontext"
)

// FlushDaemon periodically invokes the auto-flush sweep. It exists for
// liveness only: flushes stay externally triggerable, the daemon just
// guarantees expired tenants are eventually collected without one.
type FlushDaemon struct {
	lifecycle *service.Service
	interval  time.Duration
	logger    *slog.Logger
}

func NewFlushDaemon(lifecycle *service.Service, interval time.Duration, logger *slog.Logger) *FlushDaemon {
	return &FlushDaemon{lifecycle: lifecycle, interval: interval, logger: logger}
}

// Run sweeps once immediately, then on every tick until the context is
// cancelled.
func (d *FlushDaemon) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			d.sweep(ctx)
		}
	}
}

func (d *FlushDaemon) sweep(ctx context.Context) {
	// Pin one timestamp for the whole sweep so every eligibility check in
	// the pass sees the same clock.
	ctx = requestcontext.WithTime(ctx, time.Now())

	sweep, err := d.lifecycle.AutoFlushExpired(ctx)
	if err != nil {
		d.logger.Error("flush sweep failed", "error", err)
		return
	}
	if len(sweep.Flushed) > 0 || len(sweep.Failed) > 0 {
		d.logger.Info("flush sweep complete",
			"scanned", sweep.Scanned,
			"flushed", len(sweep.Flushed),
			"moved_units", sweep.MovedUnits,
			"failed", len(sweep.Failed),
		)
	}
}
