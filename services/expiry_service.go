package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"temple-system/config"
	"temple-system/monitoring"
)

// ExpiryService is the background sweeper that flips stale active bookings
// to expired. Runs once at startup and then on a fixed interval; a failed
// sweep is logged and retried on the next tick.
type ExpiryService struct {
	bookings BookingStore
	interval time.Duration

	stopChan chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
}

func NewExpiryService(bookings BookingStore, cfg *config.Config) *ExpiryService {
	interval := 5 * time.Minute
	if cfg != nil && cfg.ExpirySweepInterval > 0 {
		interval = cfg.ExpirySweepInterval
	}
	return &ExpiryService{
		bookings: bookings,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// ExpirePastBookings expires every active booking whose visit date is
// strictly before now and returns how many were flipped. Idempotent: a
// second run over the same data finds nothing.
func (s *ExpiryService) ExpirePastBookings(ctx context.Context, now time.Time) (int, error) {
	matched, err := s.bookings.FindExpired(ctx, now)
	if err != nil {
		return 0, err
	}
	if len(matched) == 0 {
		return 0, nil
	}

	if err := s.bookings.ExpireBefore(ctx, now); err != nil {
		return 0, err
	}

	monitoring.TrackExpiredBookings(len(matched))
	slog.Info("expired past bookings", "count", len(matched))
	return len(matched), nil
}

// Start launches the sweep loop.
func (s *ExpiryService) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		s.sweep()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-s.stopChan:
				return
			}
		}
	}()

	slog.Info("expiry sweeper started", "interval", s.interval)
}

func (s *ExpiryService) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := s.ExpirePastBookings(ctx, time.Now()); err != nil {
		slog.Error("expiry sweep failed", "error", err)
	}
}

// Shutdown stops the loop and waits for an in-flight sweep to finish.
func (s *ExpiryService) Shutdown() {
	s.once.Do(func() {
		close(s.stopChan)
	})
	s.wg.Wait()
}
