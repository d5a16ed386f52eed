package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"droneworks/opsdesk/internal/apperrors"
	"droneworks/opsdesk/internal/common"
	"droneworks/opsdesk/internal/constants"
	"droneworks/opsdesk/internal/models/dtos"
	"droneworks/opsdesk/internal/models/entities"
	"droneworks/opsdesk/internal/scheduling"
	"droneworks/opsdesk/internal/timewindow"
)

type fakeScheduleStore struct {
	insertFunc       func(ctx context.Context, s *entities.Schedule) error
	updateFunc       func(ctx context.Context, id string, apply func(s *entities.Schedule) error) (*entities.Schedule, error)
	deleteFunc       func(ctx context.Context, id string) error
	getByIDFunc      func(ctx context.Context, id string) (*entities.ScheduleRow, error)
	listByJobFunc    func(ctx context.Context, jobID string) ([]entities.ScheduleRow, error)
	listFunc         func(ctx context.Context, p dtos.ScheduleListParams) ([]entities.ScheduleRow, int, error)
	availabilityFunc func(ctx context.Context, win timewindow.Window) (*scheduling.Snapshot, error)

	listCalls int
}

func (f *fakeScheduleStore) Insert(ctx context.Context, s *entities.Schedule) error {
	return f.insertFunc(ctx, s)
}

func (f *fakeScheduleStore) Update(ctx context.Context, id string, apply func(s *entities.Schedule) error) (*entities.Schedule, error) {
	return f.updateFunc(ctx, id, apply)
}

func (f *fakeScheduleStore) Delete(ctx context.Context, id string) error {
	return f.deleteFunc(ctx, id)
}

func (f *fakeScheduleStore) GetByID(ctx context.Context, id string) (*entities.ScheduleRow, error) {
	return f.getByIDFunc(ctx, id)
}

func (f *fakeScheduleStore) ListByJob(ctx context.Context, jobID string) ([]entities.ScheduleRow, error) {
	return f.listByJobFunc(ctx, jobID)
}

func (f *fakeScheduleStore) List(ctx context.Context, p dtos.ScheduleListParams) ([]entities.ScheduleRow, int, error) {
	f.listCalls++
	return f.listFunc(ctx, p)
}

func (f *fakeScheduleStore) Availability(ctx context.Context, win timewindow.Window) (*scheduling.Snapshot, error) {
	return f.availabilityFunc(ctx, win)
}

func testRow(id, jobID string) *entities.ScheduleRow {
	return &entities.ScheduleRow{
		Schedule: entities.Schedule{
			ID:      id,
			JobID:   jobID,
			PilotID: "11111111-1111-1111-1111-111111111111",
			DroneID: "22222222-2222-2222-2222-222222222222",
			Status:  constants.ScheduleAssigned,
			StartAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
			EndAt:   time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC),
		},
	}
}

func newTestService(store *fakeScheduleStore) (*ScheduleService, common.CacheInterface) {
	cache := common.NewCacheService(60, 120)
	return NewScheduleService(store, cache, nil, time.Minute), cache
}

func TestCreateRejectsBadRequestBeforeStore(t *testing.T) {
	called := false
	store := &fakeScheduleStore{
		insertFunc: func(ctx context.Context, s *entities.Schedule) error {
			called = true
			return nil
		},
	}
	svc, _ := newTestService(store)

	cases := []dtos.CreateScheduleRequest{
		{}, // everything missing
		{
			JobID:   "33333333-3333-3333-3333-333333333333",
			PilotID: "11111111-1111-1111-1111-111111111111",
			DroneID: "22222222-2222-2222-2222-222222222222",
			StartAt: "2026-03-01T11:00:00Z",
			EndAt:   "2026-03-01T09:00:00Z", // inverted
		},
		{
			JobID:   "not-a-uuid",
			PilotID: "11111111-1111-1111-1111-111111111111",
			DroneID: "22222222-2222-2222-2222-222222222222",
			StartAt: "2026-03-01T09:00:00Z",
			EndAt:   "2026-03-01T11:00:00Z",
		},
	}
	for i, req := range cases {
		if _, err := svc.Create(context.Background(), req); !apperrors.IsValidation(err) {
			t.Errorf("case %d: want validation error, got %v", i, err)
		}
	}
	if called {
		t.Fatal("store reached despite invalid request")
	}
}

func TestCreatePassesConflictThrough(t *testing.T) {
	want := apperrors.Overlap(constants.ResourcePilot, apperrors.ScheduleConflict{ID: "blocker"})
	store := &fakeScheduleStore{
		insertFunc: func(ctx context.Context, s *entities.Schedule) error { return want },
	}
	svc, _ := newTestService(store)

	_, err := svc.Create(context.Background(), dtos.CreateScheduleRequest{
		JobID:   "33333333-3333-3333-3333-333333333333",
		PilotID: "11111111-1111-1111-1111-111111111111",
		DroneID: "22222222-2222-2222-2222-222222222222",
		StartAt: "2026-03-01T09:00:00Z",
		EndAt:   "2026-03-01T11:00:00Z",
	})
	if !apperrors.IsConflict(err) {
		t.Fatalf("want conflict, got %v", err)
	}
}

func TestListCachesUntilWrite(t *testing.T) {
	jobID := "33333333-3333-3333-3333-333333333333"
	store := &fakeScheduleStore{
		listFunc: func(ctx context.Context, p dtos.ScheduleListParams) ([]entities.ScheduleRow, int, error) {
			return []entities.ScheduleRow{*testRow("s1", jobID)}, 1, nil
		},
		insertFunc: func(ctx context.Context, s *entities.Schedule) error {
			s.ID = "s2"
			return nil
		},
		getByIDFunc: func(ctx context.Context, id string) (*entities.ScheduleRow, error) {
			return testRow(id, jobID), nil
		},
	}
	svc, _ := newTestService(store)

	params := dtos.ScheduleListParams{Page: 1, PageSize: 20}
	if _, err := svc.List(context.Background(), params); err != nil {
		t.Fatalf("list: %v", err)
	}
	if _, err := svc.List(context.Background(), params); err != nil {
		t.Fatalf("list: %v", err)
	}
	if store.listCalls != 1 {
		t.Fatalf("second list should be served from cache, store hit %d times", store.listCalls)
	}

	// A write bumps the generation; the next list misses the cache.
	if _, err := svc.Create(context.Background(), dtos.CreateScheduleRequest{
		JobID:   jobID,
		PilotID: "11111111-1111-1111-1111-111111111111",
		DroneID: "22222222-2222-2222-2222-222222222222",
		StartAt: "2026-03-01T12:00:00Z",
		EndAt:   "2026-03-01T13:00:00Z",
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.List(context.Background(), params); err != nil {
		t.Fatalf("list: %v", err)
	}
	if store.listCalls != 2 {
		t.Fatalf("list after write should refetch, store hit %d times", store.listCalls)
	}
}

func TestCreateEvictsJobDetail(t *testing.T) {
	jobID := "33333333-3333-3333-3333-333333333333"
	store := &fakeScheduleStore{
		insertFunc: func(ctx context.Context, s *entities.Schedule) error {
			s.ID = "s1"
			return nil
		},
		getByIDFunc: func(ctx context.Context, id string) (*entities.ScheduleRow, error) {
			return testRow(id, jobID), nil
		},
	}
	svc, cache := newTestService(store)

	cache.Set(common.JobDetailKey(jobID), "stale", time.Minute)
	if _, err := svc.Create(context.Background(), dtos.CreateScheduleRequest{
		JobID:   jobID,
		PilotID: "11111111-1111-1111-1111-111111111111",
		DroneID: "22222222-2222-2222-2222-222222222222",
		StartAt: "2026-03-01T09:00:00Z",
		EndAt:   "2026-03-01T11:00:00Z",
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, ok := cache.Get(common.JobDetailKey(jobID)); ok {
		t.Fatal("job detail should be evicted after a schedule write")
	}
	// The fresh detail is cached for the next read.
	if _, ok := cache.Get(common.ScheduleDetailKey("s1")); !ok {
		t.Fatal("schedule detail should be primed after create")
	}
}

func TestUpdateEmptyPatchReturnsCurrent(t *testing.T) {
	jobID := "33333333-3333-3333-3333-333333333333"
	updateCalled := false
	store := &fakeScheduleStore{
		updateFunc: func(ctx context.Context, id string, apply func(s *entities.Schedule) error) (*entities.Schedule, error) {
			updateCalled = true
			return nil, errors.New("should not be called")
		},
		getByIDFunc: func(ctx context.Context, id string) (*entities.ScheduleRow, error) {
			return testRow(id, jobID), nil
		},
	}
	svc, _ := newTestService(store)

	dto, err := svc.Update(context.Background(), "s1", dtos.UpdateScheduleRequest{})
	if err != nil {
		t.Fatalf("empty patch: %v", err)
	}
	if updateCalled {
		t.Fatal("empty patch should not reach the store")
	}
	if dto.ID != "s1" {
		t.Fatalf("got %s", dto.ID)
	}
}

func TestUpdateRejectsInvertedWindow(t *testing.T) {
	jobID := "33333333-3333-3333-3333-333333333333"
	store := &fakeScheduleStore{
		updateFunc: func(ctx context.Context, id string, apply func(s *entities.Schedule) error) (*entities.Schedule, error) {
			sched := testRow(id, jobID).Schedule
			if err := apply(&sched); err != nil {
				return nil, err
			}
			return &sched, nil
		},
	}
	svc, _ := newTestService(store)

	early := "2026-03-01T08:00:00Z"
	_, err := svc.Update(context.Background(), "s1", dtos.UpdateScheduleRequest{EndAt: &early})
	if !apperrors.IsValidation(err) {
		t.Fatalf("end before existing start: want validation error, got %v", err)
	}
}

func TestDeleteEvictsDetailAndBumps(t *testing.T) {
	jobID := "33333333-3333-3333-3333-333333333333"
	store := &fakeScheduleStore{
		deleteFunc: func(ctx context.Context, id string) error { return nil },
		getByIDFunc: func(ctx context.Context, id string) (*entities.ScheduleRow, error) {
			return testRow(id, jobID), nil
		},
	}
	svc, cache := newTestService(store)

	cache.Set(common.ScheduleDetailKey("s1"), "stale", time.Minute)
	cache.Set(common.JobDetailKey(jobID), "stale", time.Minute)

	if err := svc.Delete(context.Background(), "s1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := cache.Get(common.ScheduleDetailKey("s1")); ok {
		t.Fatal("schedule detail should be evicted")
	}
	if _, ok := cache.Get(common.JobDetailKey(jobID)); ok {
		t.Fatal("job detail should be evicted")
	}
}

func TestAvailabilityValidation(t *testing.T) {
	store := &fakeScheduleStore{
		availabilityFunc: func(ctx context.Context, win timewindow.Window) (*scheduling.Snapshot, error) {
			t.Fatal("store reached despite invalid request")
			return nil, nil
		},
	}
	svc, _ := newTestService(store)

	cases := []struct{ start, end string }{
		{"", ""},
		{"2026-03-01T09:00:00Z", ""},
		{"2026-03-01T11:00:00Z", "2026-03-01T09:00:00Z"},
		{"2026-03-01T09:00:00Z", "2026-03-01T09:00:00Z"},
		{"yesterday", "tomorrow"},
	}
	for i, c := range cases {
		if _, err := svc.Availability(context.Background(), c.start, c.end); !apperrors.IsValidation(err) {
			t.Errorf("case %d: want validation error, got %v", i, err)
		}
	}
}

func TestAvailabilityNormalizesWindowKey(t *testing.T) {
	calls := 0
	store := &fakeScheduleStore{
		availabilityFunc: func(ctx context.Context, win timewindow.Window) (*scheduling.Snapshot, error) {
			calls++
			return &scheduling.Snapshot{
				AvailablePilots: []scheduling.PilotSlot{},
				AvailableDrones: []scheduling.DroneSlot{},
			}, nil
		},
	}
	svc, _ := newTestService(store)

	// Same instant expressed in two offsets hits the same cache entry.
	if _, err := svc.Availability(context.Background(), "2026-03-01T09:00:00Z", "2026-03-01T11:00:00Z"); err != nil {
		t.Fatalf("availability: %v", err)
	}
	if _, err := svc.Availability(context.Background(), "2026-03-01T13:00:00+04:00", "2026-03-01T15:00:00+04:00"); err != nil {
		t.Fatalf("availability: %v", err)
	}
	if calls != 1 {
		t.Fatalf("want one store call, got %d", calls)
	}
}
