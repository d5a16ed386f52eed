package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"droneworks/opsdesk/internal/apperrors"
	"droneworks/opsdesk/internal/constants"
	"droneworks/opsdesk/internal/models/dtos"
	"droneworks/opsdesk/internal/models/entities"
	"droneworks/opsdesk/internal/scheduling"
	"droneworks/opsdesk/internal/timewindow"
)

// ScheduleRepository owns the schduales table. Writes run the conflict
// check inside the same transaction as the insert or update, with row
// locks on the pilot and drone serializing concurrent checks per
// resource. A btree_gist exclusion constraint (migrations/001_init.sql)
// backs the same invariant at the storage layer, so a bug here cannot
// double-book either.
type ScheduleRepository struct {
	db *sqlx.DB
}

func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db}
}

// Insert creates a schedule after an in-transaction conflict check.
// Returns *apperrors.ConflictError when the window collides with an
// active schedule on the same pilot or drone.
func (r *ScheduleRepository) Insert(ctx context.Context, s *entities.Schedule) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() // safe even after Commit

	if err := r.validateRefs(ctx, tx, s); err != nil {
		return err
	}
	// A schedule born terminal never blocks anything, so it skips the
	// conflict check entirely.
	if s.Status.Active() {
		if err := lockResources(ctx, tx, s.PilotID, s.DroneID); err != nil {
			return err
		}
		if conflict := findConflictLocked(ctx, tx, s, ""); conflict != nil {
			return conflict
		}
	}

	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if err := tx.QueryRowxContext(ctx, constants.InsertSchedule,
		s.ID, s.JobID, s.PilotID, s.DroneID, s.Status, s.StartAt, s.EndAt,
	).StructScan(s); err != nil {
		return fmt.Errorf("insert schedule: %w", err)
	}

	return tx.Commit()
}

// Update applies already-validated changes to an existing schedule.
// The conflict check re-runs when the window, the resources, or a
// terminal status going active demand it; the schedule's own row is
// excluded from the check.
func (r *ScheduleRepository) Update(ctx context.Context, id string, apply func(s *entities.Schedule) error) (*entities.Schedule, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var current entities.Schedule
	if err := tx.QueryRowxContext(ctx, constants.GetScheduleForUpdate, id).StructScan(&current); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}

	updated := current
	if err := apply(&updated); err != nil {
		return nil, err
	}

	if updated.PilotID != current.PilotID || updated.DroneID != current.DroneID {
		if err := r.validateRefs(ctx, tx, &updated); err != nil {
			return nil, err
		}
	}

	if scheduling.NeedsConflictCheck(&current, &updated) {
		if err := lockResources(ctx, tx, updated.PilotID, updated.DroneID); err != nil {
			return nil, err
		}
		if conflict := findConflictLocked(ctx, tx, &updated, updated.ID); conflict != nil {
			return nil, conflict
		}
	}

	if err := tx.QueryRowxContext(ctx, constants.UpdateSchedule,
		updated.ID, updated.PilotID, updated.DroneID, updated.Status, updated.StartAt, updated.EndAt,
	).StructScan(&updated); err != nil {
		return nil, fmt.Errorf("update schedule: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *ScheduleRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, constants.DeleteSchedule, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *ScheduleRepository) GetByID(ctx context.Context, id string) (*entities.ScheduleRow, error) {
	var row entities.ScheduleRow
	if err := r.db.QueryRowxContext(ctx, constants.GetScheduleByID, id).StructScan(&row); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (r *ScheduleRepository) ListByJob(ctx context.Context, jobID string) ([]entities.ScheduleRow, error) {
	rows := []entities.ScheduleRow{}
	if err := r.db.SelectContext(ctx, &rows, constants.ListSchedulesByJob, jobID); err != nil {
		return nil, err
	}
	return rows, nil
}

// List returns one page of schedules plus the unpaged total.
func (r *ScheduleRepository) List(ctx context.Context, p dtos.ScheduleListParams) ([]entities.ScheduleRow, int, error) {
	where := []string{}
	args := []interface{}{}

	add := func(clause string, val interface{}) {
		args = append(args, val)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}

	if p.JobID != "" {
		add("s.job_id = $%d", p.JobID)
	}
	if p.SiteID != "" {
		add("j.site_id = $%d", p.SiteID)
	}
	if p.PilotID != "" {
		add("s.pilot_id = $%d", p.PilotID)
	}
	if p.DroneID != "" {
		add("s.drone_id = $%d", p.DroneID)
	}
	if p.Status != "" {
		add("s.status = $%d", p.Status)
	}
	if p.From != "" {
		if from, err := time.Parse(time.RFC3339, p.From); err == nil {
			add("s.start_at >= $%d", from)
		}
	}
	if p.To != "" {
		if to, err := time.Parse(time.RFC3339, p.To); err == nil {
			add("s.end_at <= $%d", to)
		}
	}

	filter := ""
	if len(where) > 0 {
		filter = " WHERE " + strings.Join(where, " AND ")
	}

	countQuery := `SELECT COUNT(*) FROM schduales s LEFT JOIN jobs j ON j.id = s.job_id` + filter
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	query := constants.ScheduleSelectBase + filter +
		fmt.Sprintf(" ORDER BY s.start_at, s.id LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, p.PageSize, p.Offset())

	rows := []entities.ScheduleRow{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Availability computes the snapshot for a candidate window. Read-only
// and side-effect free; slightly stale results are acceptable, the
// write path re-checks authoritatively.
func (r *ScheduleRepository) Availability(ctx context.Context, win timewindow.Window) (*scheduling.Snapshot, error) {
	pilots := []entities.User{}
	if err := r.db.SelectContext(ctx, &pilots, constants.ListAllPilots); err != nil {
		return nil, err
	}

	drones := []entities.Drone{}
	if err := r.db.SelectContext(ctx, &drones, constants.ListAllDrones); err != nil {
		return nil, err
	}

	active := []entities.Schedule{}
	if err := r.db.SelectContext(ctx, &active, constants.ActiveSchedulesInWindow, win.StartAt, win.EndAt); err != nil {
		return nil, err
	}

	snap := scheduling.BuildSnapshot(win, pilots, drones, active)
	return &snap, nil
}

// Sweep advances lifecycle statuses past their window bounds:
// ASSIGNED schedules whose start has passed go IN_PROGRESS, and
// IN_PROGRESS schedules whose end has passed go COMPLETED.
func (r *ScheduleRepository) Sweep(ctx context.Context, now time.Time) (started, completed int64, err error) {
	res, err := r.db.ExecContext(ctx, constants.SweepComplete, now)
	if err != nil {
		return 0, 0, err
	}
	completed, _ = res.RowsAffected()

	res, err = r.db.ExecContext(ctx, constants.SweepStart, now)
	if err != nil {
		return 0, completed, err
	}
	started, _ = res.RowsAffected()

	return started, completed, nil
}

// StatusCounts feeds the schedules-by-status gauge.
func (r *ScheduleRepository) StatusCounts(ctx context.Context) (map[string]int64, error) {
	rows := []struct {
		Status string `db:"status"`
		Count  int64  `db:"count"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, constants.ScheduleStatusCounts); err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *ScheduleRepository) validateRefs(ctx context.Context, tx *sqlx.Tx, s *entities.Schedule) error {
	checks := []struct {
		query string
		id    string
		path  string
		msg   string
	}{
		{constants.JobExists, s.JobID, "jobId", "Job not found"},
		{constants.PilotExists, s.PilotID, "pilotId", "Pilot not found"},
		{constants.DroneExists, s.DroneID, "droneId", "Drone not found"},
	}

	for _, c := range checks {
		var ok bool
		if err := tx.GetContext(ctx, &ok, c.query, c.id); err != nil {
			return err
		}
		if !ok {
			return apperrors.Validation(c.path, c.msg)
		}
	}
	return nil
}

// lockResources takes FOR UPDATE locks on the pilot and drone rows,
// always in the same order so two writers cannot deadlock.
func lockResources(ctx context.Context, tx *sqlx.Tx, pilotID, droneID string) error {
	var id string
	if err := tx.GetContext(ctx, &id, constants.LockPilot, pilotID); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	if err := tx.GetContext(ctx, &id, constants.LockDrone, droneID); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	return nil
}

func findConflictLocked(ctx context.Context, tx *sqlx.Tx, s *entities.Schedule, selfID string) *apperrors.ConflictError {
	candidates := []entities.Schedule{}
	if err := tx.SelectContext(ctx, &candidates, constants.ActiveSchedulesForResources, s.PilotID, s.DroneID); err != nil {
		// Fail closed: a failed check must not let the write through.
		return apperrors.Conflict("schedule", "could not verify availability: "+err.Error())
	}
	return scheduling.FindConflict(s.Window(), s.PilotID, s.DroneID, selfID, candidates)
}
