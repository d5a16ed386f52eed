package entities

import (
	"time"

	"droneworks/opsdesk/internal/constants"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Job is the unit of work at a site. Owns zero or more schedules;
// cannot be deleted while any schedule still references it.
type Job struct {
	ID        string            `db:"id" gorm:"type:uuid;primaryKey"`
	Name      string            `db:"name" gorm:"not null"`
	SiteID    string            `db:"site_id" gorm:"type:uuid;not null;index"`
	Type      constants.JobType `db:"type" gorm:"type:varchar(16);not null"`
	CreatedAt time.Time         `db:"created_at"`
	UpdatedAt time.Time         `db:"updated_at"`

	Site      *Site      `db:"-" gorm:"foreignKey:SiteID"`
	Schduales []Schedule `db:"-" gorm:"foreignKey:JobID"`
}

func (j *Job) BeforeCreate(tx *gorm.DB) error {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	return nil
}
