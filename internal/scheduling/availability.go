package scheduling

import (
	"sort"
	"time"

	"droneworks/opsdesk/internal/models/entities"
	"droneworks/opsdesk/internal/timewindow"
)

// PilotSlot is a pilot as reported in an availability snapshot.
type PilotSlot struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// DroneSlot is a drone as reported in an availability snapshot.
type DroneSlot struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	SerialNumber string `json:"serialNumber"`
	Status       string `json:"status"`
}

// BusyResources lists the ids excluded from a snapshot.
type BusyResources struct {
	Pilots []string `json:"pilots"`
	Drones []string `json:"drones"`
}

// Snapshot is the computed, non-persisted result of evaluating all
// active schedules against a candidate window.
type Snapshot struct {
	StartAt         time.Time     `json:"startAt"`
	EndAt           time.Time     `json:"endAt"`
	AvailablePilots []PilotSlot   `json:"availablePilots"`
	AvailableDrones []DroneSlot   `json:"availableDrones"`
	Busy            BusyResources `json:"busy"`
}

// BuildSnapshot partitions pilots and drones into available and busy
// for the candidate window. active must hold the schedules whose
// status still counts toward overlap; terminal ones are skipped here
// too so callers may pass unfiltered rows. Resources with no schedules
// at all are always available. Output order follows name then id, so
// repeated queries over the same state render identically.
func BuildSnapshot(win timewindow.Window, pilots []entities.User, drones []entities.Drone, active []entities.Schedule) Snapshot {
	busyPilots := make(map[string]bool)
	busyDrones := make(map[string]bool)

	for i := range active {
		s := &active[i]
		if !s.Status.Active() || !win.Overlaps(s.Window()) {
			continue
		}
		busyPilots[s.PilotID] = true
		busyDrones[s.DroneID] = true
	}

	snap := Snapshot{
		StartAt:         win.StartAt,
		EndAt:           win.EndAt,
		AvailablePilots: []PilotSlot{},
		AvailableDrones: []DroneSlot{},
		Busy:            BusyResources{Pilots: []string{}, Drones: []string{}},
	}

	sort.Slice(pilots, func(i, j int) bool {
		if pilots[i].Name != pilots[j].Name {
			return pilots[i].Name < pilots[j].Name
		}
		return pilots[i].ID < pilots[j].ID
	})
	sort.Slice(drones, func(i, j int) bool {
		if drones[i].Name != drones[j].Name {
			return drones[i].Name < drones[j].Name
		}
		return drones[i].ID < drones[j].ID
	})

	for _, p := range pilots {
		if busyPilots[p.ID] {
			snap.Busy.Pilots = append(snap.Busy.Pilots, p.ID)
			continue
		}
		snap.AvailablePilots = append(snap.AvailablePilots, PilotSlot{
			ID:    p.ID,
			Name:  p.Name,
			Email: p.Email,
			Phone: p.Phone,
		})
	}

	for _, d := range drones {
		if busyDrones[d.ID] {
			snap.Busy.Drones = append(snap.Busy.Drones, d.ID)
			continue
		}
		snap.AvailableDrones = append(snap.AvailableDrones, DroneSlot{
			ID:           d.ID,
			Name:         d.Name,
			SerialNumber: d.SerialNumber,
			Status:       string(d.Status),
		})
	}

	return snap
}
