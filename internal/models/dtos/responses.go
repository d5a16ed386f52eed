package dtos

import (
	"time"

	"droneworks/opsdesk/internal/models/entities"
)

// SiteRef, JobRef, PilotRef and DroneRef are the denormalized join
// snippets embedded in read models. Populated by the server for
// display, never accepted back on writes.

type SiteRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type JobRef struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	SiteID string   `json:"siteId,omitempty"`
	Type   string   `json:"type,omitempty"`
	Site   *SiteRef `json:"site,omitempty"`
}

type PilotRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type DroneRef struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	SerialNumber string `json:"serialNumber"`
	Status       string `json:"status,omitempty"`
}

// ScheduleDTO is a schedule as the client sees it. The payload key is
// "schduale" for historical reasons the client depends on.
type ScheduleDTO struct {
	ID        string    `json:"id"`
	JobID     string    `json:"jobId"`
	PilotID   string    `json:"pilotId"`
	DroneID   string    `json:"droneId"`
	Status    string    `json:"status"`
	StartAt   time.Time `json:"startAt"`
	EndAt     time.Time `json:"endAt"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Job       *JobRef   `json:"job,omitempty"`
	Pilot     *PilotRef `json:"pilot,omitempty"`
	Drone     *DroneRef `json:"drone,omitempty"`
}

func NewScheduleDTO(row *entities.ScheduleRow) ScheduleDTO {
	dto := ScheduleDTO{
		ID:        row.ID,
		JobID:     row.JobID,
		PilotID:   row.PilotID,
		DroneID:   row.DroneID,
		Status:    string(row.Status),
		StartAt:   row.StartAt.UTC(),
		EndAt:     row.EndAt.UTC(),
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}

	if row.JobName != nil {
		dto.Job = &JobRef{ID: row.JobID, Name: *row.JobName}
		if row.JobType != nil {
			dto.Job.Type = *row.JobType
		}
		if row.SiteID != nil {
			dto.Job.SiteID = *row.SiteID
			if row.SiteName != nil {
				dto.Job.Site = &SiteRef{ID: *row.SiteID, Name: *row.SiteName}
			}
		}
	}
	if row.PilotName != nil {
		dto.Pilot = &PilotRef{ID: row.PilotID, Name: *row.PilotName}
		if row.PilotEmail != nil {
			dto.Pilot.Email = *row.PilotEmail
		}
		if row.PilotPhone != nil {
			dto.Pilot.Phone = *row.PilotPhone
		}
	}
	if row.DroneName != nil {
		dto.Drone = &DroneRef{ID: row.DroneID, Name: *row.DroneName}
		if row.DroneSerial != nil {
			dto.Drone.SerialNumber = *row.DroneSerial
		}
		if row.DroneStatus != nil {
			dto.Drone.Status = *row.DroneStatus
		}
	}
	return dto
}

// PagedSchedules matches the list response of GET /api/schduale.
type PagedSchedules struct {
	Items      []ScheduleDTO `json:"items"`
	Page       int           `json:"page"`
	PageSize   int           `json:"pageSize"`
	Total      int           `json:"total"`
	TotalPages int           `json:"totalPages"`
}

type ScheduleItems struct {
	Items []ScheduleDTO `json:"items"`
}

/* ---------- Jobs ---------- */

type JobDTO struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	SiteID    string        `json:"siteId"`
	Type      string        `json:"type"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
	Site      *SiteRef      `json:"site,omitempty"`
	Schduales []ScheduleDTO `json:"schduales,omitempty"`
}

func NewJobDTO(job *entities.Job) JobDTO {
	dto := JobDTO{
		ID:        job.ID,
		Name:      job.Name,
		SiteID:    job.SiteID,
		Type:      string(job.Type),
		CreatedAt: job.CreatedAt.UTC(),
		UpdatedAt: job.UpdatedAt.UTC(),
	}
	if job.Site != nil {
		dto.Site = &SiteRef{ID: job.Site.ID, Name: job.Site.Name}
	}
	for i := range job.Schduales {
		s := &job.Schduales[i]
		dto.Schduales = append(dto.Schduales, ScheduleDTO{
			ID:        s.ID,
			JobID:     s.JobID,
			PilotID:   s.PilotID,
			DroneID:   s.DroneID,
			Status:    string(s.Status),
			StartAt:   s.StartAt.UTC(),
			EndAt:     s.EndAt.UTC(),
			CreatedAt: s.CreatedAt.UTC(),
			UpdatedAt: s.UpdatedAt.UTC(),
		})
	}
	return dto
}

type PagedJobs struct {
	Items      []JobDTO `json:"items"`
	Page       int      `json:"page"`
	PageSize   int      `json:"pageSize"`
	Total      int      `json:"total"`
	TotalPages int      `json:"totalPages"`
}

/* ---------- Drones ---------- */

type DroneDTO struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	SerialNumber string        `json:"serialNumber"`
	Status       string        `json:"status"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
	Schduals     []ScheduleDTO `json:"schduals,omitempty"`
}

func NewDroneDTO(d *entities.Drone) DroneDTO {
	dto := DroneDTO{
		ID:           d.ID,
		Name:         d.Name,
		SerialNumber: d.SerialNumber,
		Status:       string(d.Status),
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
	for i := range d.Schduales {
		s := &d.Schduales[i]
		dto.Schduals = append(dto.Schduals, ScheduleDTO{
			ID:        s.ID,
			JobID:     s.JobID,
			PilotID:   s.PilotID,
			DroneID:   s.DroneID,
			Status:    string(s.Status),
			StartAt:   s.StartAt.UTC(),
			EndAt:     s.EndAt.UTC(),
			CreatedAt: s.CreatedAt.UTC(),
			UpdatedAt: s.UpdatedAt.UTC(),
		})
	}
	return dto
}

type PagedDrones struct {
	Items      []DroneDTO `json:"items"`
	Page       int        `json:"page"`
	PageSize   int        `json:"pageSize"`
	Total      int        `json:"total"`
	TotalPages int        `json:"totalPages"`
}

/* ---------- Sites ---------- */

type SiteDTO struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	Email               string   `json:"email,omitempty"`
	Description         string   `json:"Description,omitempty"`
	SiteManager         string   `json:"siteManager"`
	Phone               string   `json:"phone"`
	Code                string   `json:"code,omitempty"`
	Emirate             string   `json:"emirate,omitempty"`
	City                string   `json:"city,omitempty"`
	AssetType           string   `json:"assetType,omitempty"`
	GlassSurfaceType    string   `json:"glassSurfaceType,omitempty"`
	MaxApprovedPressure *float64 `json:"maxApprovedPressure,omitempty"`
	Height              *float64 `json:"height,omitempty"`
	PanelWidth          *float64 `json:"panelWidth,omitempty"`
	PanelHeight         *float64 `json:"panelHeight,omitempty"`
	TetherRequired      *bool    `json:"tetherRequired,omitempty"`
	EstimatedTime       *float64 `json:"estimatedTime,omitempty"`
	ActualTime          *float64 `json:"actualTime,omitempty"`
	AccessConstraints   []string `json:"accessConstraints,omitempty"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
	Jobs                []JobDTO  `json:"jobs,omitempty"`
}

func NewSiteDTO(s *entities.Site) SiteDTO {
	dto := SiteDTO{
		ID:                  s.ID,
		Name:                s.Name,
		Email:               s.Email,
		Description:         s.Description,
		SiteManager:         s.SiteManager,
		Phone:               s.Phone,
		Code:                s.Code,
		Emirate:             s.Emirate,
		City:                s.City,
		AssetType:           s.AssetType,
		GlassSurfaceType:    s.GlassSurfaceType,
		MaxApprovedPressure: s.MaxApprovedPressure,
		Height:              s.Height,
		PanelWidth:          s.PanelWidth,
		PanelHeight:         s.PanelHeight,
		TetherRequired:      s.TetherRequired,
		EstimatedTime:       s.EstimatedTime,
		ActualTime:          s.ActualTime,
		AccessConstraints:   s.AccessConstraints,
		CreatedAt:           s.CreatedAt.UTC(),
		UpdatedAt:           s.UpdatedAt.UTC(),
	}
	for i := range s.Jobs {
		dto.Jobs = append(dto.Jobs, NewJobDTO(&s.Jobs[i]))
	}
	return dto
}

type PagedSites struct {
	Items      []SiteDTO `json:"items"`
	Page       int       `json:"page"`
	PageSize   int       `json:"pageSize"`
	Total      int       `json:"total"`
	TotalPages int       `json:"totalPages"`
}

/* ---------- Auth ---------- */

type UserDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func NewUserDTO(u *entities.User) UserDTO {
	return UserDTO{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone}
}

/* ---------- Statistics ---------- */

type StatisticsOverview struct {
	TotalUsers        int64            `json:"totalUsers"`
	TotalSites        int64            `json:"totalSites"`
	TotalJobs         int64            `json:"totalJobs"`
	SchedulesByStatus map[string]int64 `json:"schedulesByStatus"`
	TotalSchedules    int64            `json:"totalSchedules"`
	DronesByStatus    map[string]int64 `json:"dronesByStatus"`
	TotalDrones       int64            `json:"totalDrones"`
	DateRange         *DateRange       `json:"dateRange,omitempty"`
}

type DateRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type JobStats struct {
	Total  int64            `json:"total"`
	ByType map[string]int64 `json:"byType"`
}

type DroneStats struct {
	Total    int64            `json:"total"`
	ByStatus map[string]int64 `json:"byStatus"`
}

func TotalPages(total int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	pages := int(total) / pageSize
	if int(total)%pageSize != 0 {
		pages++
	}
	return pages
}
