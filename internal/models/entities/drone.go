package entities

import (
	"time"

	"droneworks/opsdesk/internal/constants"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Drone is a fleet asset. SerialNumber is unique across the fleet;
// deletion is blocked while schedules reference the drone.
type Drone struct {
	ID           string                `db:"id" gorm:"type:uuid;primaryKey"`
	Name         string                `db:"name" gorm:"not null"`
	SerialNumber string                `db:"serial_number" gorm:"uniqueIndex;not null"`
	Status       constants.DroneStatus `db:"status" gorm:"type:varchar(16);not null;default:AVAILABLE"`
	CreatedAt    time.Time             `db:"created_at"`
	UpdatedAt    time.Time             `db:"updated_at"`

	Schduales []Schedule `db:"-" gorm:"foreignKey:DroneID"`
}

func (d *Drone) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}
