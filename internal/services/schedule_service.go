package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"droneworks/opsdesk/internal/apperrors"
	"droneworks/opsdesk/internal/common"
	"droneworks/opsdesk/internal/constants"
	"droneworks/opsdesk/internal/metrics"
	"droneworks/opsdesk/internal/models/dtos"
	"droneworks/opsdesk/internal/models/entities"
	"droneworks/opsdesk/internal/scheduling"
	"droneworks/opsdesk/internal/timewindow"
)

// ScheduleStore is the storage contract the schedule service runs on.
// Satisfied by repositories.ScheduleRepository in production.
type ScheduleStore interface {
	Insert(ctx context.Context, s *entities.Schedule) error
	Update(ctx context.Context, id string, apply func(s *entities.Schedule) error) (*entities.Schedule, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*entities.ScheduleRow, error)
	ListByJob(ctx context.Context, jobID string) ([]entities.ScheduleRow, error)
	List(ctx context.Context, p dtos.ScheduleListParams) ([]entities.ScheduleRow, int, error)
	Availability(ctx context.Context, win timewindow.Window) (*scheduling.Snapshot, error)
}

type ScheduleService struct {
	store    ScheduleStore
	cache    common.CacheInterface
	gen      *common.Generation
	registry *metrics.MetricsRegistry
	cacheTTL time.Duration
}

func NewScheduleService(store ScheduleStore, cache common.CacheInterface, registry *metrics.MetricsRegistry, cacheTTL time.Duration) *ScheduleService {
	return &ScheduleService{
		store:    store,
		cache:    cache,
		gen:      common.NewGeneration(cache, "schduale"),
		registry: registry,
		cacheTTL: cacheTTL,
	}
}

// decodeCached coerces a cache value back to its typed form. The
// in-process cache returns the stored value as-is; the Redis cache
// returns raw JSON.
func decodeCached[T any](v interface{}) (*T, bool) {
	switch x := v.(type) {
	case *T:
		return x, true
	case T:
		return &x, true
	case json.RawMessage:
		out := new(T)
		if err := json.Unmarshal(x, out); err == nil {
			return out, true
		}
	case []byte:
		out := new(T)
		if err := json.Unmarshal(x, out); err == nil {
			return out, true
		}
	}
	return nil, false
}

func (s *ScheduleService) Create(ctx context.Context, req dtos.CreateScheduleRequest) (*dtos.ScheduleDTO, error) {
	win, status, err := req.Validate()
	if err != nil {
		return nil, err
	}

	sched := &entities.Schedule{
		JobID:   req.JobID,
		PilotID: req.PilotID,
		DroneID: req.DroneID,
		Status:  status,
		StartAt: win.StartAt,
		EndAt:   win.EndAt,
	}
	if err := s.store.Insert(ctx, sched); err != nil {
		s.countConflict(err)
		return nil, err
	}
	if s.registry != nil {
		s.registry.SchedulesCreatedTotal.Inc()
	}

	s.invalidateLists(sched.JobID)
	return s.refreshDetail(ctx, sched.ID)
}

func (s *ScheduleService) Update(ctx context.Context, id string, req dtos.UpdateScheduleRequest) (*dtos.ScheduleDTO, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Empty() {
		return s.GetByID(ctx, id)
	}

	updated, err := s.store.Update(ctx, id, func(sched *entities.Schedule) error {
		if req.PilotID != nil {
			sched.PilotID = *req.PilotID
		}
		if req.DroneID != nil {
			sched.DroneID = *req.DroneID
		}
		if req.Status != nil {
			sched.Status = constants.ScheduleStatus(*req.Status)
		}

		start, end := sched.StartAt, sched.EndAt
		if req.StartAt != nil {
			t, err := time.Parse(time.RFC3339, *req.StartAt)
			if err != nil {
				return apperrors.Validation("startAt", "Invalid date format, expected RFC 3339")
			}
			start = t
		}
		if req.EndAt != nil {
			t, err := time.Parse(time.RFC3339, *req.EndAt)
			if err != nil {
				return apperrors.Validation("endAt", "Invalid date format, expected RFC 3339")
			}
			end = t
		}
		win, err := timewindow.New(start, end)
		if err != nil {
			return apperrors.Validation("endAt", "endAt must be after startAt")
		}
		sched.StartAt = win.StartAt
		sched.EndAt = win.EndAt
		return nil
	})
	if err != nil {
		s.countConflict(err)
		return nil, err
	}

	s.invalidateLists(updated.JobID)
	return s.refreshDetail(ctx, updated.ID)
}

func (s *ScheduleService) Delete(ctx context.Context, id string) error {
	// The row is fetched first so the owning job's cached detail can be
	// evicted after the delete lands.
	row, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Delete(common.ScheduleDetailKey(id))
	s.invalidateLists(row.JobID)
	return nil
}

func (s *ScheduleService) GetByID(ctx context.Context, id string) (*dtos.ScheduleDTO, error) {
	key := common.ScheduleDetailKey(id)
	if v, ok := s.cache.Get(key); ok {
		if dto, ok := decodeCached[dtos.ScheduleDTO](v); ok {
			s.countCache("schduale:detail", true)
			return dto, nil
		}
	}
	s.countCache("schduale:detail", false)

	v, err := s.cache.GetOrSet(key, s.cacheTTL, func() (any, error) {
		row, err := s.store.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		dto := dtos.NewScheduleDTO(row)
		return &dto, nil
	})
	if err != nil {
		return nil, err
	}
	dto, ok := decodeCached[dtos.ScheduleDTO](v)
	if !ok {
		return nil, fmt.Errorf("unexpected cache value for %s", key)
	}
	return dto, nil
}

func (s *ScheduleService) List(ctx context.Context, p dtos.ScheduleListParams) (*dtos.PagedSchedules, error) {
	key := common.ScheduleListKey(s.gen.Current(), p.CacheKey())
	if v, ok := s.cache.Get(key); ok {
		if page, ok := decodeCached[dtos.PagedSchedules](v); ok {
			s.countCache("schduale:list", true)
			return page, nil
		}
	}
	s.countCache("schduale:list", false)

	v, err := s.cache.GetOrSet(key, s.cacheTTL, func() (any, error) {
		rows, total, err := s.store.List(ctx, p)
		if err != nil {
			return nil, err
		}
		page := &dtos.PagedSchedules{
			Items:      make([]dtos.ScheduleDTO, 0, len(rows)),
			Page:       p.Page,
			PageSize:   p.PageSize,
			Total:      total,
			TotalPages: dtos.TotalPages(int64(total), p.PageSize),
		}
		for i := range rows {
			page.Items = append(page.Items, dtos.NewScheduleDTO(&rows[i]))
		}
		return page, nil
	})
	if err != nil {
		return nil, err
	}
	page, ok := decodeCached[dtos.PagedSchedules](v)
	if !ok {
		return nil, fmt.Errorf("unexpected cache value for %s", key)
	}
	return page, nil
}

func (s *ScheduleService) ListByJob(ctx context.Context, jobID string) (*dtos.ScheduleItems, error) {
	key := common.ScheduleByJobKey(s.gen.Current(), jobID)
	if v, ok := s.cache.Get(key); ok {
		if items, ok := decodeCached[dtos.ScheduleItems](v); ok {
			s.countCache("schduale:byjob", true)
			return items, nil
		}
	}
	s.countCache("schduale:byjob", false)

	v, err := s.cache.GetOrSet(key, s.cacheTTL, func() (any, error) {
		rows, err := s.store.ListByJob(ctx, jobID)
		if err != nil {
			return nil, err
		}
		items := &dtos.ScheduleItems{Items: make([]dtos.ScheduleDTO, 0, len(rows))}
		for i := range rows {
			items.Items = append(items.Items, dtos.NewScheduleDTO(&rows[i]))
		}
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	items, ok := decodeCached[dtos.ScheduleItems](v)
	if !ok {
		return nil, fmt.Errorf("unexpected cache value for %s", key)
	}
	return items, nil
}

// Availability answers "who is free in [startAt, endAt)". Snapshots are
// cached under the current generation so any schedule write invalidates
// them along with the lists.
func (s *ScheduleService) Availability(ctx context.Context, startAt, endAt string) (*scheduling.Snapshot, error) {
	verr := &apperrors.ValidationError{}
	if startAt == "" {
		verr.Add("startAt", "startAt is required")
	}
	if endAt == "" {
		verr.Add("endAt", "endAt is required")
	}
	if len(verr.Fields) > 0 {
		return nil, verr
	}

	win, err := timewindow.Parse(startAt, endAt)
	if err == timewindow.ErrInvalidRange {
		return nil, apperrors.Validation("endAt", "endAt must be after startAt")
	}
	if err != nil {
		return nil, apperrors.Validation("startAt", "Invalid date format, expected RFC 3339")
	}

	if s.registry != nil {
		s.registry.AvailabilityQueriesTotal.Inc()
	}

	key := common.AvailabilityKey(s.gen.Current(),
		win.StartAt.Format(time.RFC3339), win.EndAt.Format(time.RFC3339))
	if v, ok := s.cache.Get(key); ok {
		if snap, ok := decodeCached[scheduling.Snapshot](v); ok {
			s.countCache("availability", true)
			return snap, nil
		}
	}
	s.countCache("availability", false)

	v, err := s.cache.GetOrSet(key, s.cacheTTL, func() (any, error) {
		return s.store.Availability(ctx, win)
	})
	if err != nil {
		return nil, err
	}
	snap, ok := decodeCached[scheduling.Snapshot](v)
	if !ok {
		return nil, fmt.Errorf("unexpected cache value for %s", key)
	}
	return snap, nil
}

// invalidateLists bumps the list generation and evicts the owning job's
// cached detail, which embeds its schedules.
func (s *ScheduleService) invalidateLists(jobID string) {
	s.gen.Bump()
	s.cache.Delete(common.JobDetailKey(jobID))
}

// refreshDetail re-reads the row after a write and replaces the cached
// detail, so the next read sees the new state even mid-TTL.
func (s *ScheduleService) refreshDetail(ctx context.Context, id string) (*dtos.ScheduleDTO, error) {
	row, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := dtos.NewScheduleDTO(row)
	s.cache.Set(common.ScheduleDetailKey(id), &dto, s.cacheTTL)
	return &dto, nil
}

func (s *ScheduleService) countConflict(err error) {
	if s.registry == nil {
		return
	}
	var cerr *apperrors.ConflictError
	if errors.As(err, &cerr) && cerr.Conflict != nil {
		s.registry.ScheduleConflictsTotal.WithLabelValues(cerr.Resource).Inc()
	}
}

func (s *ScheduleService) countCache(pattern string, hit bool) {
	if s.registry == nil {
		return
	}
	if hit {
		s.registry.CacheHitsTotal.WithLabelValues(pattern).Inc()
	} else {
		s.registry.CacheMissesTotal.WithLabelValues(pattern).Inc()
	}
}
