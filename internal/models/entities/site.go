package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Site is an asset location (facade, solar farm, hangar, apron) that
// jobs are carried out on. Pure metadata, no interval logic.
type Site struct {
	ID          string `db:"id" gorm:"type:uuid;primaryKey"`
	Name        string `db:"name" gorm:"not null"`
	Email       string `db:"email"`
	Description string `db:"description"`
	SiteManager string `db:"site_manager" gorm:"not null"`
	Phone       string `db:"phone" gorm:"not null"`

	// Location
	Code    string `db:"code"`
	Emirate string `db:"emirate"`
	City    string `db:"city"`

	// Asset profile
	AssetType           string   `db:"asset_type"`
	GlassSurfaceType    string   `db:"glass_surface_type"`
	MaxApprovedPressure *float64 `db:"max_approved_pressure"`
	Height              *float64 `db:"height"`
	PanelWidth          *float64 `db:"panel_width"`
	PanelHeight         *float64 `db:"panel_height"`
	TetherRequired      *bool    `db:"tether_required"`
	EstimatedTime       *float64 `db:"estimated_time"`
	ActualTime          *float64 `db:"actual_time"`
	AccessConstraints   []string `db:"-" gorm:"serializer:json"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	Jobs []Job `db:"-" gorm:"foreignKey:SiteID"`
}

func (s *Site) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
