package services

import (
	"context"

	"droneworks/opsdesk/internal/models/dtos"
	"droneworks/opsdesk/internal/models/entities"
)

type SiteStore interface {
	Insert(ctx context.Context, site *entities.Site) error
	Update(ctx context.Context, site *entities.Site) error
	GetByID(ctx context.Context, id string) (*entities.Site, error)
	List(ctx context.Context, p dtos.SiteListParams) ([]entities.Site, int64, error)
	Delete(ctx context.Context, id string) error
}

type SiteService struct {
	store SiteStore
}

func NewSiteService(store SiteStore) *SiteService {
	return &SiteService{store: store}
}

func applySiteRequest(site *entities.Site, req dtos.SiteRequest) {
	site.Name = req.Name
	site.Email = req.Email
	site.Description = req.Description
	site.SiteManager = req.SiteManager
	site.Phone = req.Phone
	site.Code = req.Code
	site.Emirate = req.Emirate
	site.City = req.City
	site.AssetType = req.AssetType
	site.GlassSurfaceType = req.GlassSurfaceType
	site.MaxApprovedPressure = req.MaxApprovedPressure
	site.Height = req.Height
	site.PanelWidth = req.PanelWidth
	site.PanelHeight = req.PanelHeight
	site.TetherRequired = req.TetherRequired
	site.EstimatedTime = req.EstimatedTime
	site.ActualTime = req.ActualTime
	site.AccessConstraints = req.AccessConstraints
}

func (s *SiteService) Create(ctx context.Context, req dtos.SiteRequest) (*dtos.SiteDTO, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	site := &entities.Site{}
	applySiteRequest(site, req)
	if err := s.store.Insert(ctx, site); err != nil {
		return nil, err
	}
	dto := dtos.NewSiteDTO(site)
	return &dto, nil
}

// Update replaces the site profile wholesale; the dashboard form always
// submits the full document.
func (s *SiteService) Update(ctx context.Context, id string, req dtos.SiteRequest) (*dtos.SiteDTO, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	site, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	applySiteRequest(site, req)
	site.Jobs = nil // associations are read-only on this path
	if err := s.store.Update(ctx, site); err != nil {
		return nil, err
	}
	dto := dtos.NewSiteDTO(site)
	return &dto, nil
}

func (s *SiteService) GetByID(ctx context.Context, id string) (*dtos.SiteDTO, error) {
	site, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := dtos.NewSiteDTO(site)
	return &dto, nil
}

func (s *SiteService) List(ctx context.Context, p dtos.SiteListParams) (*dtos.PagedSites, error) {
	sites, total, err := s.store.List(ctx, p)
	if err != nil {
		return nil, err
	}
	page := &dtos.PagedSites{
		Items:      make([]dtos.SiteDTO, 0, len(sites)),
		Page:       p.Page,
		PageSize:   p.PageSize,
		Total:      int(total),
		TotalPages: dtos.TotalPages(total, p.PageSize),
	}
	for i := range sites {
		page.Items = append(page.Items, dtos.NewSiteDTO(&sites[i]))
	}
	return page, nil
}

func (s *SiteService) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}
