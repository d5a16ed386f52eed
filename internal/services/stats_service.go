package services

import (
	"context"
	"time"

	"droneworks/opsdesk/internal/apperrors"
	"droneworks/opsdesk/internal/metrics"
	"droneworks/opsdesk/internal/models/dtos"
)

type StatsStore interface {
	Overview(ctx context.Context, from, to time.Time) (*dtos.StatisticsOverview, error)
	Jobs(ctx context.Context) (*dtos.JobStats, error)
	Drones(ctx context.Context) (*dtos.DroneStats, error)
}

type StatsService struct {
	store    StatsStore
	registry *metrics.MetricsRegistry
}

func NewStatsService(store StatsStore, registry *metrics.MetricsRegistry) *StatsService {
	return &StatsService{store: store, registry: registry}
}

func (s *StatsService) Overview(ctx context.Context, p dtos.StatisticsParams) (*dtos.StatisticsOverview, error) {
	var from, to time.Time
	if p.From != "" || p.To != "" {
		var err error
		from, err = time.Parse(time.RFC3339, p.From)
		if err != nil {
			return nil, apperrors.Validation("from", "Invalid date format, expected RFC 3339")
		}
		to, err = time.Parse(time.RFC3339, p.To)
		if err != nil {
			return nil, apperrors.Validation("to", "Invalid date format, expected RFC 3339")
		}
		if !to.After(from) {
			return nil, apperrors.Validation("to", "to must be after from")
		}
	}

	out, err := s.store.Overview(ctx, from, to)
	if err != nil {
		return nil, err
	}

	// Export the per-status totals while we have them.
	if s.registry != nil && p.From == "" && p.To == "" {
		for status, n := range out.SchedulesByStatus {
			s.registry.SchedulesByStatus.WithLabelValues(status).Set(float64(n))
		}
	}
	return out, nil
}

func (s *StatsService) Jobs(ctx context.Context) (*dtos.JobStats, error) {
	return s.store.Jobs(ctx)
}

func (s *StatsService) Drones(ctx context.Context) (*dtos.DroneStats, error) {
	return s.store.Drones(ctx)
}
