package worker

import (
	"context"
	"time"

	"reservation-api/core/logger"
	"reservation-api/modules/reservation/service"
)

// Sweeper periodically completes reservations whose end time has passed.
// A failed tick is logged and the schedule continues; nothing is carried
// between ticks.
type Sweeper struct {
	service  *service.ReservationService
	interval time.Duration
}

func NewSweeper(svc *service.ReservationService, interval time.Duration) *Sweeper {
	return &Sweeper{
		service:  svc,
		interval: interval,
	}
}

// Run blocks until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	logger.Info("Sweeper:Start", "interval", s.interval.String())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Sweeper:Stop")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	now := time.Now().UTC()

	affected, err := s.service.CompleteExpired(ctx, now)
	if err != nil {
		// Recoverable by the next tick.
		logger.Error("Sweeper:Sweep", "error", err, "now", now)
		return
	}
	if affected > 0 {
		logger.Info("Sweeper:Sweep:Completed", "count", affected, "now", now)
	}
}
