package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"droneworks/opsdesk/internal/apperrors"
	"droneworks/opsdesk/internal/models/dtos"
	"droneworks/opsdesk/internal/models/entities"
)

type DroneRepository struct {
	db *gorm.DB
}

func NewDroneRepository(db *gorm.DB) *DroneRepository {
	return &DroneRepository{db}
}

func (r *DroneRepository) Insert(ctx context.Context, drone *entities.Drone) error {
	err := r.db.WithContext(ctx).Create(drone).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.Conflict("drone", "A drone with this serial number already exists.")
	}
	return err
}

func (r *DroneRepository) Update(ctx context.Context, drone *entities.Drone) error {
	err := r.db.WithContext(ctx).Save(drone).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.Conflict("drone", "A drone with this serial number already exists.")
	}
	return err
}

func (r *DroneRepository) GetByID(ctx context.Context, id string) (*entities.Drone, error) {
	var drone entities.Drone
	err := r.db.WithContext(ctx).
		Preload("Schduales").
		First(&drone, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &drone, nil
}

func (r *DroneRepository) List(ctx context.Context, p dtos.DroneListParams) ([]entities.Drone, int64, error) {
	var (
		drones []entities.Drone
		total  int64
	)

	q := r.db.WithContext(ctx).Model(&entities.Drone{})
	if p.Status != "" {
		q = q.Where("status = ?", p.Status)
	}
	if p.Query != "" {
		like := "%" + p.Query + "%"
		q = q.Where("lower(name) LIKE lower(?) OR lower(serial_number) LIKE lower(?)", like, like)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if p.IncludeSchedules {
		q = q.Preload("Schduales")
	}
	if err := q.Order("name, id").Limit(p.PageSize).Offset(p.Offset()).Find(&drones).Error; err != nil {
		return nil, 0, err
	}
	return drones, total, nil
}

// Delete removes a drone unless schedules still reference it.
func (r *DroneRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var schedules int64
		if err := tx.Model(&entities.Schedule{}).Where("drone_id = ?", id).Count(&schedules).Error; err != nil {
			return err
		}
		if schedules > 0 {
			return apperrors.Conflict("drone", "Cannot delete drone with schedules. Delete its schedules first.")
		}

		res := tx.Delete(&entities.Drone{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrNotFound
		}
		return nil
	})
}
