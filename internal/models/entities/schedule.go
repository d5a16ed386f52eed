package entities

import (
	"time"

	"droneworks/opsdesk/internal/constants"
	"droneworks/opsdesk/internal/timewindow"
)

// Schedule is the write model: a pilot and a drone committed to a job
// for a half-open window [StartAt, EndAt). The historical table name
// "schduales" is load-bearing: the dashboard client depends on the
// same spelling in routes and payload keys.
type Schedule struct {
	ID        string                   `db:"id" gorm:"type:uuid;primaryKey"`
	JobID     string                   `db:"job_id" gorm:"type:uuid;not null;index"`
	PilotID   string                   `db:"pilot_id" gorm:"type:uuid;not null;index"`
	DroneID   string                   `db:"drone_id" gorm:"type:uuid;not null;index"`
	Status    constants.ScheduleStatus `db:"status" gorm:"type:varchar(16);not null;default:ASSIGNED"`
	StartAt   time.Time                `db:"start_at" gorm:"not null"`
	EndAt     time.Time                `db:"end_at" gorm:"not null"`
	CreatedAt time.Time                `db:"created_at"`
	UpdatedAt time.Time                `db:"updated_at"`
}

func (Schedule) TableName() string { return "schduales" }

// Window returns the schedule's interval. The stored bounds are always
// valid (end after start), enforced on every write path.
func (s *Schedule) Window() timewindow.Window {
	return timewindow.Window{StartAt: s.StartAt.UTC(), EndAt: s.EndAt.UTC()}
}

// ScheduleRow is the read model for list and detail views: the
// schedule plus denormalized join fields assembled at query time.
// Never written back.
type ScheduleRow struct {
	Schedule
	JobName     *string `db:"job_name"`
	JobType     *string `db:"job_type"`
	SiteID      *string `db:"site_id"`
	SiteName    *string `db:"site_name"`
	PilotName   *string `db:"pilot_name"`
	PilotEmail  *string `db:"pilot_email"`
	PilotPhone  *string `db:"pilot_phone"`
	DroneName   *string `db:"drone_name"`
	DroneSerial *string `db:"drone_serial"`
	DroneStatus *string `db:"drone_status"`
}
