package constants

// ScheduleStatus is the lifecycle state of a schedule. ASSIGNED and
// IN_PROGRESS count toward overlap accounting; COMPLETED and CANCELLED
// free the pilot and drone.
type ScheduleStatus string

const (
	ScheduleAssigned   ScheduleStatus = "ASSIGNED"
	ScheduleInProgress ScheduleStatus = "IN_PROGRESS"
	ScheduleCompleted  ScheduleStatus = "COMPLETED"
	ScheduleCancelled  ScheduleStatus = "CANCELLED"
)

func (s ScheduleStatus) Valid() bool {
	switch s {
	case ScheduleAssigned, ScheduleInProgress, ScheduleCompleted, ScheduleCancelled:
		return true
	}
	return false
}

// Active reports whether the schedule blocks its pilot and drone.
func (s ScheduleStatus) Active() bool {
	return s == ScheduleAssigned || s == ScheduleInProgress
}

// Terminal reports whether the schedule has released its resources.
func (s ScheduleStatus) Terminal() bool {
	return s == ScheduleCompleted || s == ScheduleCancelled
}

type JobType string

const (
	JobInspection JobType = "INSPECTION"
	JobCleaning   JobType = "CLEANING"
)

func (t JobType) Valid() bool {
	return t == JobInspection || t == JobCleaning
}

type DroneStatus string

const (
	DroneAvailable    DroneStatus = "AVAILABLE"
	DroneMaintenance  DroneStatus = "MAINTENANCE"
	DroneOutOfService DroneStatus = "OUT_OF_SERVICE"
)

func (s DroneStatus) Valid() bool {
	switch s {
	case DroneAvailable, DroneMaintenance, DroneOutOfService:
		return true
	}
	return false
}

// Resource dimensions reported in overlap conflicts. Pilot conflicts
// are reported first when both dimensions collide.
const (
	ResourcePilot = "pilot"
	ResourceDrone = "drone"
)
