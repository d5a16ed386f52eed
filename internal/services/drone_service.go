package services

import (
	"context"

	"droneworks/opsdesk/internal/common"
	"droneworks/opsdesk/internal/constants"
	"droneworks/opsdesk/internal/models/dtos"
	"droneworks/opsdesk/internal/models/entities"
)

type DroneStore interface {
	Insert(ctx context.Context, drone *entities.Drone) error
	Update(ctx context.Context, drone *entities.Drone) error
	GetByID(ctx context.Context, id string) (*entities.Drone, error)
	List(ctx context.Context, p dtos.DroneListParams) ([]entities.Drone, int64, error)
	Delete(ctx context.Context, id string) error
}

type DroneService struct {
	store DroneStore
	gen   *common.Generation
}

func NewDroneService(store DroneStore, cache common.CacheInterface) *DroneService {
	return &DroneService{store: store, gen: common.NewGeneration(cache, "schduale")}
}

func (s *DroneService) Create(ctx context.Context, req dtos.CreateDroneRequest) (*dtos.DroneDTO, error) {
	status, err := req.Validate()
	if err != nil {
		return nil, err
	}
	drone := &entities.Drone{Name: req.Name, SerialNumber: req.SerialNumber, Status: status}
	if err := s.store.Insert(ctx, drone); err != nil {
		return nil, err
	}
	s.gen.Bump() // new drone shows up in availability snapshots
	dto := dtos.NewDroneDTO(drone)
	return &dto, nil
}

func (s *DroneService) Update(ctx context.Context, id string, req dtos.UpdateDroneRequest) (*dtos.DroneDTO, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	drone, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		drone.Name = *req.Name
	}
	if req.SerialNumber != nil {
		drone.SerialNumber = *req.SerialNumber
	}
	if req.Status != nil {
		drone.Status = constants.DroneStatus(*req.Status)
	}
	if err := s.store.Update(ctx, drone); err != nil {
		return nil, err
	}
	s.gen.Bump()
	dto := dtos.NewDroneDTO(drone)
	return &dto, nil
}

func (s *DroneService) GetByID(ctx context.Context, id string) (*dtos.DroneDTO, error) {
	drone, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := dtos.NewDroneDTO(drone)
	return &dto, nil
}

func (s *DroneService) List(ctx context.Context, p dtos.DroneListParams) (*dtos.PagedDrones, error) {
	drones, total, err := s.store.List(ctx, p)
	if err != nil {
		return nil, err
	}
	page := &dtos.PagedDrones{
		Items:      make([]dtos.DroneDTO, 0, len(drones)),
		Page:       p.Page,
		PageSize:   p.PageSize,
		Total:      int(total),
		TotalPages: dtos.TotalPages(total, p.PageSize),
	}
	for i := range drones {
		page.Items = append(page.Items, dtos.NewDroneDTO(&drones[i]))
	}
	return page, nil
}

func (s *DroneService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.gen.Bump()
	return nil
}
