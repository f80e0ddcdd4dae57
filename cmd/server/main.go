// @title        Marketplace Auth API
// @version      1.0
// @description  Authentication, sessions, and role-based access for the freelancer marketplace.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/freelaz/marketplace-api/docs"
	"github.com/freelaz/marketplace-api/internal/api"
	"github.com/freelaz/marketplace-api/internal/core/service"
	"github.com/freelaz/marketplace-api/internal/infrastructure/config"
	mongodb "github.com/freelaz/marketplace-api/internal/infrastructure/db/mongo"
	"github.com/freelaz/marketplace-api/internal/infrastructure/db/postgres"
	redisdb "github.com/freelaz/marketplace-api/internal/infrastructure/db/redis"
	"github.com/freelaz/marketplace-api/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("mongo index creation failed")
	}

	pg, err := postgres.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connection failed")
	}
	defer func() { _ = pg.Close() }()

	if err := postgres.Migrate(ctx, pg); err != nil {
		log.Fatal().Err(err).Msg("postgres migration failed")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	provisioner := service.NewProvisioner(
		postgres.NewProfileRepository(pg),
		postgres.NewRoleRepository(pg),
		postgres.NewFreelancerRepository(pg),
		log,
	)
	provisioner.Start(ctx)

	e := api.NewRouter(db, pg, rdb, cfg, provisioner, log)

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
