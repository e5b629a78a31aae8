package main

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/velion-digital/dkn-backend/config"
	"github.com/velion-digital/dkn-backend/internal/auth"
	"github.com/velion-digital/dkn-backend/internal/bootstrap"
	"github.com/velion-digital/dkn-backend/internal/db"
	cronjob "github.com/velion-digital/dkn-backend/internal/governance/cron"
	"github.com/velion-digital/dkn-backend/internal/governance/engine"
	govstore "github.com/velion-digital/dkn-backend/internal/governance/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	bootstrap.SetGinMode(cfg.App.Environment)

	ctx := context.Background()

	database, err := db.Open(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer database.Close()

	if err := database.Init(ctx); err != nil {
		log.Fatalf("db init: %v", err)
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Printf("redis unreachable, caching disabled: %v", err)
			redisClient = nil
		}
		cancel()
	}

	store := govstore.New(database.Pool)
	eng := engine.New(store)
	issuer := auth.NewTokenIssuer(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLHrs)*time.Hour)

	if cfg.App.CronEnabled {
		scheduler := cronjob.NewScheduler(store)
		scheduler.Start()
		defer scheduler.Stop()
	}

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName: "dkn-backend",
		Cfg:         cfg,
		DB:          database.Pool,
		Redis:       redisClient,
		GovStore:    store,
		GovEngine:   eng,
		Issuer:      issuer,
	})

	log.Printf("DKN backend listening on port %s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
