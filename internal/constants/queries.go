package constants

// Raw SQL for the schedule repository. The schduales table keeps the
// historical name the dashboard client already depends on in routes
// and payload keys.

const (
	// ScheduleSelectBase joins the denormalized display fields the
	// read models carry. LEFT JOINs so a row still renders if a
	// referenced entity disappears mid-query.
	ScheduleSelectBase = `
	SELECT s.id, s.job_id, s.pilot_id, s.drone_id, s.status,
	       s.start_at, s.end_at, s.created_at, s.updated_at,
	       j.name AS job_name, j.type AS job_type, j.site_id AS site_id,
	       st.name AS site_name,
	       u.name AS pilot_name, u.email AS pilot_email, u.phone AS pilot_phone,
	       d.name AS drone_name, d.serial_number AS drone_serial, d.status AS drone_status
	FROM schduales s
	LEFT JOIN jobs j ON j.id = s.job_id
	LEFT JOIN sites st ON st.id = j.site_id
	LEFT JOIN users u ON u.id = s.pilot_id
	LEFT JOIN drones d ON d.id = s.drone_id
	`

	GetScheduleByID = ScheduleSelectBase + `
	WHERE s.id = $1
	`

	ListSchedulesByJob = ScheduleSelectBase + `
	WHERE s.job_id = $1
	ORDER BY s.start_at, s.id
	`

	InsertSchedule = `
	INSERT INTO schduales (id, job_id, pilot_id, drone_id, status, start_at, end_at, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
	RETURNING id, job_id, pilot_id, drone_id, status, start_at, end_at, created_at, updated_at
	`

	UpdateSchedule = `
	UPDATE schduales
	SET pilot_id = $2, drone_id = $3, status = $4, start_at = $5, end_at = $6, updated_at = now()
	WHERE id = $1
	RETURNING id, job_id, pilot_id, drone_id, status, start_at, end_at, created_at, updated_at
	`

	DeleteSchedule = `
	DELETE FROM schduales WHERE id = $1
	`

	GetScheduleForUpdate = `
	SELECT id, job_id, pilot_id, drone_id, status, start_at, end_at, created_at, updated_at
	FROM schduales WHERE id = $1 FOR UPDATE
	`

	// LockPilot/LockDrone serialize concurrent conflict checks per
	// resource: two writers targeting the same pilot or drone queue on
	// the parent row, so the second one re-validates against the first
	// one's committed write.
	LockPilot = `SELECT id FROM users WHERE id = $1 FOR UPDATE`
	LockDrone = `SELECT id FROM drones WHERE id = $1 FOR UPDATE`

	// ActiveSchedulesForResources fetches the overlap candidates for a
	// conflict check, after the resource locks are held.
	ActiveSchedulesForResources = `
	SELECT id, job_id, pilot_id, drone_id, status, start_at, end_at, created_at, updated_at
	FROM schduales
	WHERE (pilot_id = $1 OR drone_id = $2)
	  AND status IN ('ASSIGNED', 'IN_PROGRESS')
	ORDER BY start_at, id
	`

	// ActiveSchedulesInWindow feeds availability snapshots.
	ActiveSchedulesInWindow = `
	SELECT id, job_id, pilot_id, drone_id, status, start_at, end_at, created_at, updated_at
	FROM schduales
	WHERE status IN ('ASSIGNED', 'IN_PROGRESS')
	  AND start_at < $2 AND end_at > $1
	`

	ListAllPilots = `
	SELECT id, name, email, phone, password_hash, created_at, updated_at
	FROM users ORDER BY name, id
	`

	ListAllDrones = `
	SELECT id, name, serial_number, status, created_at, updated_at
	FROM drones ORDER BY name, id
	`

	JobExists   = `SELECT EXISTS (SELECT 1 FROM jobs WHERE id = $1)`
	PilotExists = `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`
	DroneExists = `SELECT EXISTS (SELECT 1 FROM drones WHERE id = $1)`

	SweepStart = `
	UPDATE schduales SET status = 'IN_PROGRESS', updated_at = now()
	WHERE status = 'ASSIGNED' AND start_at <= $1
	`

	SweepComplete = `
	UPDATE schduales SET status = 'COMPLETED', updated_at = now()
	WHERE status = 'IN_PROGRESS' AND end_at <= $1
	`

	ScheduleStatusCounts = `
	SELECT status, COUNT(*) AS count FROM schduales GROUP BY status
	`
)
