package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"droneworks/opsdesk/internal/models/entities"
)

var PgDB *gorm.DB

func InitPostgresORM(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	PgDB = gdb
	return gdb, nil
}

// AutoMigrate creates or updates the CRUD tables. The schduales table
// additionally carries exclusion constraints that GORM cannot express;
// those live in migrations/001_init.sql.
func AutoMigrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&entities.User{},
		&entities.Site{},
		&entities.Job{},
		&entities.Drone{},
		&entities.Schedule{},
	)
}
