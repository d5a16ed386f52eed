package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"droneworks/opsdesk/internal/api"
	"droneworks/opsdesk/internal/config"
	"droneworks/opsdesk/internal/db"
	"droneworks/opsdesk/internal/jobs"
	"droneworks/opsdesk/internal/logging"
	"droneworks/opsdesk/internal/routes"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	if err := logging.Init(cfg.AppEnv); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logging.Close()

	logging.Info("Opsdesk starting up",
		"environment", cfg.AppEnv,
		"timestamp", time.Now().Format(time.RFC3339),
	)

	// Connect to DB with sqlx (schedule repository)
	if err := db.InitPostgres(cfg.PostgresDSN()); err != nil {
		logging.Error("Failed to connect to Postgres (sqlx)", "error", err.Error())
		log.Fatalf("failed to connect to Postgres (sqlx): %v", err)
	}
	logging.Info("Connected to Postgres (sqlx)")

	// Connect to DB with GORM (entity repositories)
	gdb, err := db.InitPostgresORM(cfg.PostgresDSN())
	if err != nil {
		logging.Error("Failed to connect to Postgres (GORM)", "error", err.Error())
		log.Fatalf("failed to connect to Postgres (GORM): %v", err)
	}
	if err := db.AutoMigrate(gdb); err != nil {
		logging.Error("Failed to migrate schema", "error", err.Error())
		log.Fatalf("failed to migrate schema: %v", err)
	}
	logging.Info("Connected to Postgres (GORM)")

	deps, err := api.InitDependencies(cfg)
	if err != nil {
		logging.Error("Failed to initialize dependencies", "error", err.Error())
		log.Fatalf("failed to initialize dependencies: %v", err)
	}

	sweeper := jobs.NewSweeper(deps.Repo.Schedule, deps.Metrics)
	go sweeper.Start(context.Background(), cfg.SweepInterval)

	upSince := time.Now()
	router := routes.RegisterRoutes(deps, upSince)

	// Metrics endpoint lives outside the chi router, unauthenticated
	// and unmetered.
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", router)
	logging.Info("Prometheus metrics endpoint registered at /metrics")

	logging.Info("Server starting",
		"port", cfg.Port,
		"environment", cfg.AppEnv,
	)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, mux))
}
