package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"droneworks/opsdesk/internal/models/dtos"
	"droneworks/opsdesk/internal/models/entities"
)

type StatsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) *StatsRepository {
	return &StatsRepository{db}
}

type statusCount struct {
	Key   string `gorm:"column:key"`
	Count int64  `gorm:"column:count"`
}

// Overview aggregates fleet-wide counts. When from/to are non-zero the
// schedule counts are restricted to windows overlapping [from, to).
func (r *StatsRepository) Overview(ctx context.Context, from, to time.Time) (*dtos.StatisticsOverview, error) {
	out := &dtos.StatisticsOverview{
		SchedulesByStatus: map[string]int64{},
		DronesByStatus:    map[string]int64{},
	}

	if err := r.db.WithContext(ctx).Model(&entities.User{}).Count(&out.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(&entities.Site{}).Count(&out.TotalSites).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(&entities.Job{}).Count(&out.TotalJobs).Error; err != nil {
		return nil, err
	}

	sched := r.db.WithContext(ctx).Model(&entities.Schedule{})
	if !from.IsZero() && !to.IsZero() {
		sched = sched.Where("start_at < ? AND ? < end_at", to, from)
		out.DateRange = &dtos.DateRange{
			From: from.UTC().Format(time.RFC3339),
			To:   to.UTC().Format(time.RFC3339),
		}
	}
	var rows []statusCount
	if err := sched.Select("status AS key, count(*) AS count").Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out.SchedulesByStatus[row.Key] = row.Count
		out.TotalSchedules += row.Count
	}

	rows = rows[:0]
	if err := r.db.WithContext(ctx).Model(&entities.Drone{}).
		Select("status AS key, count(*) AS count").Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out.DronesByStatus[row.Key] = row.Count
		out.TotalDrones += row.Count
	}

	return out, nil
}

func (r *StatsRepository) Jobs(ctx context.Context) (*dtos.JobStats, error) {
	out := &dtos.JobStats{ByType: map[string]int64{}}

	var rows []statusCount
	if err := r.db.WithContext(ctx).Model(&entities.Job{}).
		Select("type AS key, count(*) AS count").Group("type").Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out.ByType[row.Key] = row.Count
		out.Total += row.Count
	}
	return out, nil
}

func (r *StatsRepository) Drones(ctx context.Context) (*dtos.DroneStats, error) {
	out := &dtos.DroneStats{ByStatus: map[string]int64{}}

	var rows []statusCount
	if err := r.db.WithContext(ctx).Model(&entities.Drone{}).
		Select("status AS key, count(*) AS count").Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out.ByStatus[row.Key] = row.Count
		out.Total += row.Count
	}
	return out, nil
}
