package sweeper

import (
	"context"
	"fmt"
	"time"

	"venue-booking/internal/booking"
	"venue-booking/internal/logger"
)

// Sweeper periodically advances overdue approved events to completed. The
// underlying sweep is idempotent, so the interval only affects latency.
type Sweeper struct {
	Service  *booking.BookingService
	Logger   *logger.Logger
	Interval time.Duration
}

func New(service *booking.BookingService, log *logger.Logger, interval time.Duration) *Sweeper {
	return &Sweeper{Service: service, Logger: log, Interval: interval}
}

// Run sweeps once immediately, then on every tick until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	s.sweep()

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.Logger.LogSweep("sweeper stopped")
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Sweeper) sweep() {
	count, err := s.Service.RunSweep(time.Now())
	if err != nil {
		s.Logger.Error("SWEEP", fmt.Sprintf("sweep error: %v", err))
		return
	}
	if count > 0 {
		s.Logger.LogSweep(fmt.Sprintf("auto-completed %d overdue events", count))
	}
}
