package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/airsante/airwatch/internal/api"
	"github.com/airsante/airwatch/internal/config"
	"github.com/airsante/airwatch/internal/dataset"
	"github.com/airsante/airwatch/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger := logging.New(cfg.Debug)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var store dataset.Store
	if cfg.DatabaseURL != "" {
		pg, err := dataset.NewPostgresStore(ctx, cfg.DatabaseURL, cfg.Schema)
		if err != nil {
			log.Fatalf("store error: %v", err)
		}
		defer pg.Close()
		store = pg
	} else {
		csv, err := dataset.NewCSVStore(cfg.DataDir)
		if err != nil {
			log.Fatalf("store error: %v", err)
		}
		store = csv
	}

	srv := api.New(cfg, store, logger)
	logger.Info("query API listening on %s", cfg.ListenAddr())

	if err := srv.Run(ctx); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
