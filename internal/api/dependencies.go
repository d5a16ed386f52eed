package api

import (
	"droneworks/opsdesk/internal/auth"
	"droneworks/opsdesk/internal/common"
	"droneworks/opsdesk/internal/config"
	"droneworks/opsdesk/internal/db"
	"droneworks/opsdesk/internal/db/repositories"
	"droneworks/opsdesk/internal/logging"
	"droneworks/opsdesk/internal/metrics"
	"droneworks/opsdesk/internal/services"
)

type Repositories struct {
	Schedule *repositories.ScheduleRepository
	User     *repositories.UserRepository
	Site     *repositories.SiteRepository
	Job      *repositories.JobRepository
	Drone    *repositories.DroneRepository
	Stats    *repositories.StatsRepository
}

type Services struct {
	Cache    common.CacheInterface
	Schedule *services.ScheduleService
	Auth     *services.AuthService
	Site     *services.SiteService
	Job      *services.JobService
	Drone    *services.DroneService
	Stats    *services.StatsService
}

type Dependencies struct {
	Config  *config.Config
	Repo    *Repositories
	Service *Services
	Metrics *metrics.MetricsRegistry
	Issuer  *auth.TokenIssuer
}

// InitDependencies wires the whole graph. Redis backs the cache and
// refresh sessions when REDIS_HOST resolves; otherwise the in-process
// cache keeps a single node fully functional.
func InitDependencies(cfg *config.Config) (*Dependencies, error) {
	repos := &Repositories{
		Schedule: repositories.NewScheduleRepository(db.DB),
		User:     repositories.NewUserRepository(db.PgDB),
		Site:     repositories.NewSiteRepository(db.PgDB),
		Job:      repositories.NewJobRepository(db.PgDB),
		Drone:    repositories.NewDroneRepository(db.PgDB),
		Stats:    repositories.NewStatsRepository(db.PgDB),
	}

	registry := metrics.NewMetricsRegistry()
	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.AccessTokenTTL)

	var cache common.CacheInterface
	redisClient := common.NewRedisClient(cfg.RedisAddr(), cfg.RedisPassword)
	if redisCache, err := common.NewRedisCacheService(redisClient); err == nil {
		cache = redisCache
		logging.Info("Using Redis cache", "addr", cfg.RedisAddr())
	} else {
		cache = common.NewCacheService(int(cfg.CacheTTL.Seconds()), 600)
		logging.Warn("Redis unavailable, using in-process cache", "error", err)
	}

	sessions := common.NewSessionService(redisClient, cfg.RefreshTTL)

	svcs := &Services{
		Cache:    cache,
		Schedule: services.NewScheduleService(repos.Schedule, cache, registry, cfg.CacheTTL),
		Auth:     services.NewAuthService(repos.User, sessions, issuer),
		Site:     services.NewSiteService(repos.Site),
		Job:      services.NewJobService(repos.Job, cache, registry, cfg.CacheTTL),
		Drone:    services.NewDroneService(repos.Drone, cache),
		Stats:    services.NewStatsService(repos.Stats, registry),
	}

	return &Dependencies{
		Config:  cfg,
		Repo:    repos,
		Service: svcs,
		Metrics: registry,
		Issuer:  issuer,
	}, nil
}
