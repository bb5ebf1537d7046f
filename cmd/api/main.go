package main

import (
	"context"
	"fmt"
	stdlog "log"
	"os/signal"
	"syscall"

	"watchpost/config"
	"watchpost/internals/app"
	"watchpost/internals/server"
	"watchpost/pkg/db"
	"watchpost/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig("env.yaml")
	if err != nil {
		stdlog.Fatalf("failed to load config: %v", err)
	}

	// signal-aware root context, its Done channel closes on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := logger.Init(cfg)
	log.Info().Msg("logger initialized")

	dbPool, err := db.ConnectToDB(ctx, &cfg.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize db pool")
	}
	log.Info().Msg("database pool initialized")

	if err := db.Migrate(ctx, dbPool); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}
	log.Info().Msg("schema migrated")

	container, err := app.NewContainer(ctx, dbPool, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize dependencies")
	}
	log.Info().Msg("dependencies initialized")

	// dispatcher, check timers and retention sweep
	if err := container.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start background workers")
	}
	log.Info().Msg("background workers started")

	router := app.RegisterRoutes(container)

	srv := server.New(fmt.Sprintf(":%d", cfg.Port), router, log)
	srv.Start()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	// stop accepting requests first, then drain workers and close infra
	if err := srv.Shutdown(context.Background()); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}

	if err := container.Shutdown(); err != nil {
		log.Error().Err(err).Msg("dependencies shutdown failed")
	}

	log.Info().Msg("graceful shutdown complete")
}
