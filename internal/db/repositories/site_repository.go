package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"droneworks/opsdesk/internal/apperrors"
	"droneworks/opsdesk/internal/models/dtos"
	"droneworks/opsdesk/internal/models/entities"
)

type SiteRepository struct {
	db *gorm.DB
}

func NewSiteRepository(db *gorm.DB) *SiteRepository {
	return &SiteRepository{db}
}

func (r *SiteRepository) Insert(ctx context.Context, site *entities.Site) error {
	return r.db.WithContext(ctx).Create(site).Error
}

func (r *SiteRepository) Update(ctx context.Context, site *entities.Site) error {
	return r.db.WithContext(ctx).Save(site).Error
}

// GetByID loads a site with its jobs and their schedules, the shape
// the site details dialog renders.
func (r *SiteRepository) GetByID(ctx context.Context, id string) (*entities.Site, error) {
	var site entities.Site
	err := r.db.WithContext(ctx).
		Preload("Jobs").
		Preload("Jobs.Schduales").
		First(&site, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &site, nil
}

func (r *SiteRepository) List(ctx context.Context, p dtos.SiteListParams) ([]entities.Site, int64, error) {
	var (
		sites []entities.Site
		total int64
	)

	q := r.db.WithContext(ctx).Model(&entities.Site{})
	if p.Query != "" {
		like := "%" + p.Query + "%"
		q = q.Where("lower(name) LIKE lower(?) OR lower(city) LIKE lower(?) OR lower(code) LIKE lower(?)", like, like, like)
	}
	if p.Emirate != "" {
		q = q.Where("emirate = ?", p.Emirate)
	}
	if p.AssetType != "" {
		q = q.Where("asset_type = ?", p.AssetType)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := q.Order("name, id").Limit(p.PageSize).Offset(p.Offset()).Find(&sites).Error; err != nil {
		return nil, 0, err
	}
	return sites, total, nil
}

// Delete removes a site unless jobs still reference it.
func (r *SiteRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var jobs int64
		if err := tx.Model(&entities.Job{}).Where("site_id = ?", id).Count(&jobs).Error; err != nil {
			return err
		}
		if jobs > 0 {
			return apperrors.Conflict("site", "Cannot delete site with jobs. Delete its jobs first.")
		}

		res := tx.Delete(&entities.Site{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrNotFound
		}
		return nil
	})
}
