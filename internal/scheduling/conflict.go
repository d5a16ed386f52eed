// Package scheduling holds the overlap rules the schedule store
// enforces inside its write transaction and the availability query
// evaluates at read time. Pure functions over fetched rows, so the
// same rules back both paths.
package scheduling

import (
	"droneworks/opsdesk/internal/apperrors"
	"droneworks/opsdesk/internal/constants"
	"droneworks/opsdesk/internal/models/entities"
	"droneworks/opsdesk/internal/timewindow"
)

// FindConflict returns the 409 that blocks booking pilotID+droneID over
// win, or nil when the slot is free. candidates are the already-stored
// schedules to check against; terminal ones and the schedule being
// updated (selfID) are skipped. When both dimensions collide the pilot
// conflict wins: the client checks pilot availability first.
func FindConflict(win timewindow.Window, pilotID, droneID, selfID string, candidates []entities.Schedule) *apperrors.ConflictError {
	var droneHit *entities.Schedule

	for i := range candidates {
		c := &candidates[i]
		if c.ID == selfID || !c.Status.Active() {
			continue
		}
		if !win.Overlaps(c.Window()) {
			continue
		}
		if c.PilotID == pilotID {
			return apperrors.Overlap(constants.ResourcePilot, conflictOf(c))
		}
		if c.DroneID == droneID && droneHit == nil {
			droneHit = c
		}
	}

	if droneHit != nil {
		return apperrors.Overlap(constants.ResourceDrone, conflictOf(droneHit))
	}
	return nil
}

func conflictOf(s *entities.Schedule) apperrors.ScheduleConflict {
	return apperrors.ScheduleConflict{
		ID:      s.ID,
		StartAt: s.StartAt.UTC(),
		EndAt:   s.EndAt.UTC(),
		JobID:   s.JobID,
	}
}

// NeedsConflictCheck reports whether applying the update requires
// re-running FindConflict: any change to the window or the assigned
// resources, and any transition that re-activates a terminal schedule
// (its slot may have been taken while it was cancelled or completed).
func NeedsConflictCheck(old, updated *entities.Schedule) bool {
	if !updated.Status.Active() {
		return false
	}
	if old.Status.Terminal() {
		return true
	}
	return updated.PilotID != old.PilotID ||
		updated.DroneID != old.DroneID ||
		!updated.StartAt.Equal(old.StartAt) ||
		!updated.EndAt.Equal(old.EndAt)
}
