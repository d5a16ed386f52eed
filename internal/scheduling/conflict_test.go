package scheduling

import (
	"testing"
	"time"

	"droneworks/opsdesk/internal/constants"
	"droneworks/opsdesk/internal/models/entities"
	"droneworks/opsdesk/internal/timewindow"
)

func win(t *testing.T, start, end string) timewindow.Window {
	t.Helper()
	w, err := timewindow.Parse(start, end)
	if err != nil {
		t.Fatalf("Parse(%s, %s): %v", start, end, err)
	}
	return w
}

func sched(id, pilotID, droneID string, status constants.ScheduleStatus, start, end string) entities.Schedule {
	s, _ := time.Parse(time.RFC3339, start)
	e, _ := time.Parse(time.RFC3339, end)
	return entities.Schedule{
		ID:      id,
		JobID:   "job-" + id,
		PilotID: pilotID,
		DroneID: droneID,
		Status:  status,
		StartAt: s,
		EndAt:   e,
	}
}

func TestFindConflict_PilotOverlap(t *testing.T) {
	existing := []entities.Schedule{
		sched("A", "p1", "d1", constants.ScheduleAssigned, "2024-01-01T09:00:00Z", "2024-01-01T11:00:00Z"),
	}

	got := FindConflict(win(t, "2024-01-01T10:30:00Z", "2024-01-01T10:45:00Z"), "p1", "d2", "", existing)
	if got == nil {
		t.Fatal("expected a conflict")
	}
	if got.Resource != constants.ResourcePilot {
		t.Errorf("resource = %q, want pilot", got.Resource)
	}
	if got.Conflict == nil || got.Conflict.ID != "A" {
		t.Errorf("conflict payload = %+v, want schedule A", got.Conflict)
	}
	if got.Conflict.JobID != "job-A" {
		t.Errorf("conflict jobId = %q, want job-A", got.Conflict.JobID)
	}
}

func TestFindConflict_DroneOverlap(t *testing.T) {
	existing := []entities.Schedule{
		sched("A", "p1", "d1", constants.ScheduleInProgress, "2024-01-01T09:00:00Z", "2024-01-01T11:00:00Z"),
	}

	got := FindConflict(win(t, "2024-01-01T10:00:00Z", "2024-01-01T12:00:00Z"), "p2", "d1", "", existing)
	if got == nil {
		t.Fatal("expected a conflict")
	}
	if got.Resource != constants.ResourceDrone {
		t.Errorf("resource = %q, want drone", got.Resource)
	}
}

func TestFindConflict_PilotReportedBeforeDrone(t *testing.T) {
	// Drone collision stored first; pilot must still win the tie-break.
	existing := []entities.Schedule{
		sched("D", "p9", "d1", constants.ScheduleAssigned, "2024-01-01T09:00:00Z", "2024-01-01T11:00:00Z"),
		sched("P", "p1", "d9", constants.ScheduleAssigned, "2024-01-01T09:30:00Z", "2024-01-01T10:30:00Z"),
	}

	got := FindConflict(win(t, "2024-01-01T10:00:00Z", "2024-01-01T10:15:00Z"), "p1", "d1", "", existing)
	if got == nil {
		t.Fatal("expected a conflict")
	}
	if got.Resource != constants.ResourcePilot {
		t.Errorf("resource = %q, want pilot first when both collide", got.Resource)
	}
	if got.Conflict.ID != "P" {
		t.Errorf("conflict id = %q, want P", got.Conflict.ID)
	}
}

func TestFindConflict_TouchingIsLegal(t *testing.T) {
	existing := []entities.Schedule{
		sched("A", "p1", "d1", constants.ScheduleAssigned, "2024-01-01T09:00:00Z", "2024-01-01T11:00:00Z"),
	}

	if got := FindConflict(win(t, "2024-01-01T11:00:00Z", "2024-01-01T13:00:00Z"), "p1", "d1", "", existing); got != nil {
		t.Errorf("back-to-back booking rejected: %v", got)
	}
	if got := FindConflict(win(t, "2024-01-01T08:00:00Z", "2024-01-01T09:00:00Z"), "p1", "d1", "", existing); got != nil {
		t.Errorf("booking ending at existing start rejected: %v", got)
	}
}

func TestFindConflict_TerminalSchedulesFreeTheResource(t *testing.T) {
	w := win(t, "2024-01-01T09:00:00Z", "2024-01-01T11:00:00Z")

	for _, status := range []constants.ScheduleStatus{constants.ScheduleCancelled, constants.ScheduleCompleted} {
		existing := []entities.Schedule{
			sched("A", "p1", "d1", status, "2024-01-01T09:00:00Z", "2024-01-01T11:00:00Z"),
		}
		if got := FindConflict(w, "p1", "d1", "", existing); got != nil {
			t.Errorf("%s schedule still blocks: %v", status, got)
		}
	}
}

func TestFindConflict_ExcludesSelfOnUpdate(t *testing.T) {
	existing := []entities.Schedule{
		sched("A", "p1", "d1", constants.ScheduleAssigned, "2024-01-01T09:00:00Z", "2024-01-01T11:00:00Z"),
	}

	// Widening A's own window must not collide with A itself.
	if got := FindConflict(win(t, "2024-01-01T09:00:00Z", "2024-01-01T12:00:00Z"), "p1", "d1", "A", existing); got != nil {
		t.Errorf("schedule conflicts with itself: %v", got)
	}
}

func TestFindConflict_UnrelatedResourcesIgnored(t *testing.T) {
	existing := []entities.Schedule{
		sched("A", "p1", "d1", constants.ScheduleAssigned, "2024-01-01T09:00:00Z", "2024-01-01T11:00:00Z"),
	}

	if got := FindConflict(win(t, "2024-01-01T09:00:00Z", "2024-01-01T11:00:00Z"), "p2", "d2", "", existing); got != nil {
		t.Errorf("unrelated pilot and drone rejected: %v", got)
	}
}

func TestNeedsConflictCheck(t *testing.T) {
	base := sched("A", "p1", "d1", constants.ScheduleAssigned, "2024-01-01T09:00:00Z", "2024-01-01T11:00:00Z")

	cases := []struct {
		name   string
		mutate func(s *entities.Schedule)
		old    constants.ScheduleStatus
		want   bool
	}{
		{"no change", func(s *entities.Schedule) {}, constants.ScheduleAssigned, false},
		{"pilot changed", func(s *entities.Schedule) { s.PilotID = "p2" }, constants.ScheduleAssigned, true},
		{"drone changed", func(s *entities.Schedule) { s.DroneID = "d2" }, constants.ScheduleAssigned, true},
		{"start moved", func(s *entities.Schedule) { s.StartAt = s.StartAt.Add(time.Hour) }, constants.ScheduleAssigned, true},
		{"end moved", func(s *entities.Schedule) { s.EndAt = s.EndAt.Add(time.Hour) }, constants.ScheduleAssigned, true},
		{"cancelling skips check", func(s *entities.Schedule) { s.Status = constants.ScheduleCancelled }, constants.ScheduleAssigned, false},
		{"completing skips check", func(s *entities.Schedule) { s.Status = constants.ScheduleCompleted }, constants.ScheduleInProgress, false},
		{"reactivating cancelled rechecks", func(s *entities.Schedule) { s.Status = constants.ScheduleAssigned }, constants.ScheduleCancelled, true},
		{"reactivating completed rechecks", func(s *entities.Schedule) { s.Status = constants.ScheduleInProgress }, constants.ScheduleCompleted, true},
		{"window moved on terminal stays unchecked", func(s *entities.Schedule) {
			s.Status = constants.ScheduleCancelled
			s.StartAt = s.StartAt.Add(time.Hour)
		}, constants.ScheduleCancelled, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			old := base
			old.Status = tc.old
			updated := base
			tc.mutate(&updated)
			if got := NeedsConflictCheck(&old, &updated); got != tc.want {
				t.Errorf("NeedsConflictCheck = %v, want %v", got, tc.want)
			}
		})
	}
}
