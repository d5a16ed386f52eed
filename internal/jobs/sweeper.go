package jobs

import (
	"context"
	"time"

	"droneworks/opsdesk/internal/logging"
	"droneworks/opsdesk/internal/metrics"
)

// SweepStore moves schedules along the clock-driven part of the
// lifecycle. Satisfied by repositories.ScheduleRepository.
type SweepStore interface {
	Sweep(ctx context.Context, now time.Time) (started, completed int64, err error)
}

// Sweeper advances schedule statuses in the background: ASSIGNED
// becomes IN_PROGRESS once the window opens, IN_PROGRESS becomes
// COMPLETED once it closes. Manual transitions through the API always
// win; the sweeper only catches up with the clock.
type Sweeper struct {
	store    SweepStore
	registry *metrics.MetricsRegistry
}

func NewSweeper(store SweepStore, registry *metrics.MetricsRegistry) *Sweeper {
	return &Sweeper{store: store, registry: registry}
}

// Start runs the sweep loop until the context is cancelled.
func (s *Sweeper) Start(ctx context.Context, interval time.Duration) {
	logging.Info("Schedule sweeper starting", "interval", interval.String())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Run immediately on start
	s.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			logging.Info("Schedule sweeper shutting down")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	started, completed, err := s.store.Sweep(ctx, time.Now().UTC())
	if err != nil {
		logging.Error("Schedule sweep failed", "error", err)
		return
	}
	if started == 0 && completed == 0 {
		return
	}

	if s.registry != nil {
		if started > 0 {
			s.registry.SweeperTransitionsTotal.WithLabelValues("assigned_to_in_progress").Add(float64(started))
		}
		if completed > 0 {
			s.registry.SweeperTransitionsTotal.WithLabelValues("in_progress_to_completed").Add(float64(completed))
		}
	}
	logging.Info("Schedule sweep applied transitions",
		"started", started,
		"completed", completed,
	)
}
