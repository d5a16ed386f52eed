package services

import (
	"context"
	"fmt"
	"time"

	"droneworks/opsdesk/internal/common"
	"droneworks/opsdesk/internal/constants"
	"droneworks/opsdesk/internal/metrics"
	"droneworks/opsdesk/internal/models/dtos"
	"droneworks/opsdesk/internal/models/entities"
)

type JobStore interface {
	Insert(ctx context.Context, job *entities.Job) error
	Update(ctx context.Context, job *entities.Job) error
	GetByID(ctx context.Context, id string) (*entities.Job, error)
	List(ctx context.Context, p dtos.JobListParams) ([]entities.Job, int64, error)
	Delete(ctx context.Context, id string) error
}

type JobService struct {
	store    JobStore
	cache    common.CacheInterface
	gen      *common.Generation
	registry *metrics.MetricsRegistry
	cacheTTL time.Duration
}

// NewJobService shares the schedule generation counter: job renames
// change the denormalized job fields on schedule read models, so job
// writes invalidate schedule lists too.
func NewJobService(store JobStore, cache common.CacheInterface, registry *metrics.MetricsRegistry, cacheTTL time.Duration) *JobService {
	return &JobService{
		store:    store,
		cache:    cache,
		gen:      common.NewGeneration(cache, "schduale"),
		registry: registry,
		cacheTTL: cacheTTL,
	}
}

func (s *JobService) Create(ctx context.Context, req dtos.CreateJobRequest) (*dtos.JobDTO, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	job := &entities.Job{Name: req.Name, SiteID: req.SiteID, Type: constants.JobType(req.Type)}
	if err := s.store.Insert(ctx, job); err != nil {
		return nil, err
	}
	dto := dtos.NewJobDTO(job)
	return &dto, nil
}

func (s *JobService) Update(ctx context.Context, id string, req dtos.UpdateJobRequest) (*dtos.JobDTO, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	job, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		job.Name = *req.Name
	}
	if req.Type != nil {
		job.Type = constants.JobType(*req.Type)
	}
	if err := s.store.Update(ctx, job); err != nil {
		return nil, err
	}

	s.cache.Delete(common.JobDetailKey(id))
	s.gen.Bump()
	dto := dtos.NewJobDTO(job)
	return &dto, nil
}

func (s *JobService) GetByID(ctx context.Context, id string) (*dtos.JobDTO, error) {
	key := common.JobDetailKey(id)
	if v, ok := s.cache.Get(key); ok {
		if dto, ok := decodeCached[dtos.JobDTO](v); ok {
			s.countCache("job:detail", true)
			return dto, nil
		}
	}
	s.countCache("job:detail", false)

	v, err := s.cache.GetOrSet(key, s.cacheTTL, func() (any, error) {
		job, err := s.store.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		dto := dtos.NewJobDTO(job)
		return &dto, nil
	})
	if err != nil {
		return nil, err
	}
	dto, ok := decodeCached[dtos.JobDTO](v)
	if !ok {
		return nil, fmt.Errorf("unexpected cache value for %s", key)
	}
	return dto, nil
}

func (s *JobService) List(ctx context.Context, p dtos.JobListParams) (*dtos.PagedJobs, error) {
	jobs, total, err := s.store.List(ctx, p)
	if err != nil {
		return nil, err
	}
	page := &dtos.PagedJobs{
		Items:      make([]dtos.JobDTO, 0, len(jobs)),
		Page:       p.Page,
		PageSize:   p.PageSize,
		Total:      int(total),
		TotalPages: dtos.TotalPages(total, p.PageSize),
	}
	for i := range jobs {
		page.Items = append(page.Items, dtos.NewJobDTO(&jobs[i]))
	}
	return page, nil
}

func (s *JobService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Delete(common.JobDetailKey(id))
	s.gen.Bump()
	return nil
}

func (s *JobService) countCache(pattern string, hit bool) {
	if s.registry == nil {
		return
	}
	if hit {
		s.registry.CacheHitsTotal.WithLabelValues(pattern).Inc()
	} else {
		s.registry.CacheMissesTotal.WithLabelValues(pattern).Inc()
	}
}
