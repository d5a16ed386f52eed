package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"droneworks/opsdesk/internal/apperrors"
	"droneworks/opsdesk/internal/models/dtos"
	"droneworks/opsdesk/internal/models/entities"
)

type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db}
}

func (r *JobRepository) Insert(ctx context.Context, job *entities.Job) error {
	var exists int64
	if err := r.db.WithContext(ctx).Model(&entities.Site{}).Where("id = ?", job.SiteID).Count(&exists).Error; err != nil {
		return err
	}
	if exists == 0 {
		verr := &apperrors.ValidationError{}
		verr.Add("siteId", "site does not exist")
		return verr
	}
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *JobRepository) Update(ctx context.Context, job *entities.Job) error {
	return r.db.WithContext(ctx).Save(job).Error
}

func (r *JobRepository) GetByID(ctx context.Context, id string) (*entities.Job, error) {
	var job entities.Job
	err := r.db.WithContext(ctx).
		Preload("Site").
		Preload("Schduales").
		First(&job, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *JobRepository) List(ctx context.Context, p dtos.JobListParams) ([]entities.Job, int64, error) {
	var (
		jobs  []entities.Job
		total int64
	)

	q := r.db.WithContext(ctx).Model(&entities.Job{})
	if p.SiteID != "" {
		q = q.Where("site_id = ?", p.SiteID)
	}
	if p.Type != "" {
		q = q.Where("type = ?", p.Type)
	}
	if p.Query != "" {
		q = q.Where("lower(name) LIKE lower(?)", "%"+p.Query+"%")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q = q.Preload("Site")
	if p.IncludeSchedules {
		q = q.Preload("Schduales")
	}
	if err := q.Order("name, id").Limit(p.PageSize).Offset(p.Offset()).Find(&jobs).Error; err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}

// Delete removes a job unless schedules still reference it.
func (r *JobRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var schedules int64
		if err := tx.Model(&entities.Schedule{}).Where("job_id = ?", id).Count(&schedules).Error; err != nil {
			return err
		}
		if schedules > 0 {
			return apperrors.Conflict("job", "Cannot delete job with schedules. Delete its schedules first.")
		}

		res := tx.Delete(&entities.Job{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrNotFound
		}
		return nil
	})
}
