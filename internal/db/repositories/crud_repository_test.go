package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"droneworks/opsdesk/internal/apperrors"
	"droneworks/opsdesk/internal/constants"
	"droneworks/opsdesk/internal/models/dtos"
	"droneworks/opsdesk/internal/models/entities"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&entities.User{},
		&entities.Site{},
		&entities.Job{},
		&entities.Drone{},
		&entities.Schedule{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedSite(t *testing.T, db *gorm.DB, name string) *entities.Site {
	t.Helper()
	site := &entities.Site{Name: name, SiteManager: "Manager", Phone: "+971500000000", City: "Dubai"}
	if err := db.Create(site).Error; err != nil {
		t.Fatalf("seed site: %v", err)
	}
	return site
}

func seedJob(t *testing.T, db *gorm.DB, siteID, name string) *entities.Job {
	t.Helper()
	job := &entities.Job{Name: name, SiteID: siteID, Type: constants.JobCleaning}
	if err := db.Create(job).Error; err != nil {
		t.Fatalf("seed job: %v", err)
	}
	return job
}

func TestSiteRepositoryDeleteGuard(t *testing.T) {
	db := openTestDB(t)
	repo := NewSiteRepository(db)
	ctx := context.Background()

	site := seedSite(t, db, "Marina Tower")
	seedJob(t, db, site.ID, "Facade clean")

	err := repo.Delete(ctx, site.ID)
	if !apperrors.IsConflict(err) {
		t.Fatalf("delete with jobs: want conflict, got %v", err)
	}

	var remaining int64
	db.Model(&entities.Site{}).Count(&remaining)
	if remaining != 1 {
		t.Fatalf("site deleted despite guard, remaining = %d", remaining)
	}

	if err := db.Where("site_id = ?", site.ID).Delete(&entities.Job{}).Error; err != nil {
		t.Fatalf("clear jobs: %v", err)
	}
	if err := repo.Delete(ctx, site.ID); err != nil {
		t.Fatalf("delete without jobs: %v", err)
	}
	if err := repo.Delete(ctx, site.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("delete again: want ErrNotFound, got %v", err)
	}
}

func TestSiteRepositoryListFilters(t *testing.T) {
	db := openTestDB(t)
	repo := NewSiteRepository(db)
	ctx := context.Background()

	a := seedSite(t, db, "Marina Tower")
	a.Emirate = "Dubai"
	a.AssetType = "FACADE"
	db.Save(a)

	b := seedSite(t, db, "Solar Park")
	b.Emirate = "Abu Dhabi"
	b.AssetType = "SOLAR"
	db.Save(b)

	sites, total, err := repo.List(ctx, dtos.SiteListParams{Page: 1, PageSize: 20, Query: "marina"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(sites) != 1 || sites[0].Name != "Marina Tower" {
		t.Fatalf("q=marina: got total=%d sites=%v", total, sites)
	}

	sites, total, err = repo.List(ctx, dtos.SiteListParams{Page: 1, PageSize: 20, Emirate: "Abu Dhabi"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || sites[0].Name != "Solar Park" {
		t.Fatalf("emirate filter: got total=%d", total)
	}
}

func TestJobRepositoryValidatesSite(t *testing.T) {
	db := openTestDB(t)
	repo := NewJobRepository(db)
	ctx := context.Background()

	err := repo.Insert(ctx, &entities.Job{Name: "Orphan", SiteID: uuid.NewString(), Type: constants.JobInspection})
	if !apperrors.IsValidation(err) {
		t.Fatalf("insert with missing site: want validation error, got %v", err)
	}

	site := seedSite(t, db, "Hangar 3")
	job := &entities.Job{Name: "Roof survey", SiteID: site.ID, Type: constants.JobInspection}
	if err := repo.Insert(ctx, job); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := repo.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Site == nil || got.Site.Name != "Hangar 3" {
		t.Fatalf("site not preloaded: %+v", got.Site)
	}
}

func TestJobRepositoryDeleteGuard(t *testing.T) {
	db := openTestDB(t)
	repo := NewJobRepository(db)
	ctx := context.Background()

	site := seedSite(t, db, "Hangar 3")
	job := seedJob(t, db, site.ID, "Roof survey")

	sched := &entities.Schedule{
		ID:      uuid.NewString(),
		JobID:   job.ID,
		PilotID: uuid.NewString(),
		DroneID: uuid.NewString(),
		Status:  constants.ScheduleAssigned,
		StartAt: time.Now().UTC(),
		EndAt:   time.Now().UTC().Add(time.Hour),
	}
	if err := db.Create(sched).Error; err != nil {
		t.Fatalf("seed schedule: %v", err)
	}

	if err := repo.Delete(ctx, job.ID); !apperrors.IsConflict(err) {
		t.Fatalf("delete with schedules: want conflict, got %v", err)
	}

	if err := db.Delete(&entities.Schedule{}, "id = ?", sched.ID).Error; err != nil {
		t.Fatalf("clear schedule: %v", err)
	}
	if err := repo.Delete(ctx, job.ID); err != nil {
		t.Fatalf("delete without schedules: %v", err)
	}
}

func TestDroneRepositoryDuplicateSerial(t *testing.T) {
	db := openTestDB(t)
	repo := NewDroneRepository(db)
	ctx := context.Background()

	if err := repo.Insert(ctx, &entities.Drone{Name: "Falcon 1", SerialNumber: "SN-001"}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	err := repo.Insert(ctx, &entities.Drone{Name: "Falcon 2", SerialNumber: "SN-001"})
	if !apperrors.IsConflict(err) {
		t.Fatalf("duplicate serial: want conflict, got %v", err)
	}
}

func TestDroneRepositoryListPagination(t *testing.T) {
	db := openTestDB(t)
	repo := NewDroneRepository(db)
	ctx := context.Background()

	names := []string{"Alpha", "Bravo", "Charlie"}
	for i, name := range names {
		d := &entities.Drone{Name: name, SerialNumber: "SN-" + name, Status: constants.DroneAvailable}
		if i == 2 {
			d.Status = constants.DroneMaintenance
		}
		if err := repo.Insert(ctx, d); err != nil {
			t.Fatalf("insert %s: %v", name, err)
		}
	}

	drones, total, err := repo.List(ctx, dtos.DroneListParams{Page: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 || len(drones) != 2 {
		t.Fatalf("page 1: total=%d len=%d", total, len(drones))
	}
	if drones[0].Name != "Alpha" || drones[1].Name != "Bravo" {
		t.Fatalf("page 1 order: %s, %s", drones[0].Name, drones[1].Name)
	}

	drones, _, err = repo.List(ctx, dtos.DroneListParams{Page: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	if len(drones) != 1 || drones[0].Name != "Charlie" {
		t.Fatalf("page 2: %+v", drones)
	}

	drones, total, err = repo.List(ctx, dtos.DroneListParams{Page: 1, PageSize: 20, Status: "MAINTENANCE"})
	if err != nil {
		t.Fatalf("list by status: %v", err)
	}
	if total != 1 || drones[0].Name != "Charlie" {
		t.Fatalf("status filter: total=%d", total)
	}
}

func TestDroneRepositoryDeleteGuard(t *testing.T) {
	db := openTestDB(t)
	repo := NewDroneRepository(db)
	ctx := context.Background()

	site := seedSite(t, db, "Apron West")
	job := seedJob(t, db, site.ID, "Thermal scan")

	drone := &entities.Drone{Name: "Falcon 1", SerialNumber: "SN-001"}
	if err := repo.Insert(ctx, drone); err != nil {
		t.Fatalf("insert drone: %v", err)
	}

	sched := &entities.Schedule{
		ID:      uuid.NewString(),
		JobID:   job.ID,
		PilotID: uuid.NewString(),
		DroneID: drone.ID,
		Status:  constants.ScheduleCompleted,
		StartAt: time.Now().UTC(),
		EndAt:   time.Now().UTC().Add(time.Hour),
	}
	if err := db.Create(sched).Error; err != nil {
		t.Fatalf("seed schedule: %v", err)
	}

	// Terminal schedules still pin the drone: history references it.
	if err := repo.Delete(ctx, drone.ID); !apperrors.IsConflict(err) {
		t.Fatalf("delete with history: want conflict, got %v", err)
	}
}

func TestUserRepositoryDuplicateEmail(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := &entities.User{Name: "Lina", Email: "lina@example.com", PasswordHash: "x"}
	if err := repo.Insert(ctx, u); err != nil {
		t.Fatalf("insert: %v", err)
	}
	err := repo.Insert(ctx, &entities.User{Name: "Lina B", Email: "lina@example.com", PasswordHash: "y"})
	if !apperrors.IsConflict(err) {
		t.Fatalf("duplicate email: want conflict, got %v", err)
	}

	got, err := repo.FindByEmail(ctx, "lina@example.com")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.ID != u.ID {
		t.Fatalf("find: got %s want %s", got.ID, u.ID)
	}

	if _, err := repo.FindByID(ctx, uuid.NewString()); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("missing id: want ErrNotFound, got %v", err)
	}
}

func TestStatsRepositoryOverview(t *testing.T) {
	db := openTestDB(t)
	repo := NewStatsRepository(db)
	ctx := context.Background()

	site := seedSite(t, db, "Marina Tower")
	job := seedJob(t, db, site.ID, "Facade clean")
	db.Create(&entities.Drone{Name: "Falcon 1", SerialNumber: "SN-001", Status: constants.DroneAvailable})
	db.Create(&entities.Drone{Name: "Falcon 2", SerialNumber: "SN-002", Status: constants.DroneMaintenance})

	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	for i, status := range []constants.ScheduleStatus{constants.ScheduleAssigned, constants.ScheduleAssigned, constants.ScheduleCompleted} {
		db.Create(&entities.Schedule{
			ID:      uuid.NewString(),
			JobID:   job.ID,
			PilotID: uuid.NewString(),
			DroneID: uuid.NewString(),
			Status:  status,
			StartAt: base.Add(time.Duration(i) * 24 * time.Hour),
			EndAt:   base.Add(time.Duration(i)*24*time.Hour + 2*time.Hour),
		})
	}

	out, err := repo.Overview(ctx, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if out.TotalSites != 1 || out.TotalJobs != 1 || out.TotalDrones != 2 {
		t.Fatalf("counts: %+v", out)
	}
	if out.TotalSchedules != 3 || out.SchedulesByStatus["ASSIGNED"] != 2 || out.SchedulesByStatus["COMPLETED"] != 1 {
		t.Fatalf("schedule counts: %+v", out.SchedulesByStatus)
	}
	if out.DronesByStatus["AVAILABLE"] != 1 || out.DronesByStatus["MAINTENANCE"] != 1 {
		t.Fatalf("drone counts: %+v", out.DronesByStatus)
	}
	if out.DateRange != nil {
		t.Fatalf("unbounded overview should have no dateRange")
	}

	// Restrict to day one only.
	out, err = repo.Overview(ctx, base, base.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("bounded overview: %v", err)
	}
	if out.TotalSchedules != 1 || out.DateRange == nil {
		t.Fatalf("bounded: total=%d dateRange=%v", out.TotalSchedules, out.DateRange)
	}
}
